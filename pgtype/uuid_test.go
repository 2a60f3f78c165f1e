package pgtype_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgcodec/pgtype"
	"github.com/jackc/pgcodec/pgtype/testutil"
	"github.com/stretchr/testify/assert"
)

func TestUUIDCodec(t *testing.T) {
	u := uuid.MustParse("00010203-0405-0607-0809-0a0b0c0d0e0f")
	testutil.RunRoundTripTests[uuid.UUID](t, pgtype.UUIDCodec{}, []testutil.RoundTripTest[uuid.UUID]{
		{Value: u, Text: "00010203-0405-0607-0809-0a0b0c0d0e0f", Binary: []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}},
		{Value: uuid.Nil, Text: "00000000-0000-0000-0000-000000000000"},
	})
	testutil.RequireNotNull[uuid.UUID](t, pgtype.UUIDCodec{})

	assert.Equal(t, u, testutil.MustDecodeText[uuid.UUID](t, pgtype.UUIDCodec{}, "000102030405060708090A0B0C0D0E0F"))
	testutil.RequireDecodeError[uuid.UUID](t, pgtype.UUIDCodec{}, pgtype.BinaryFormatCode, make([]byte, 15))
	testutil.RequireDecodeError[uuid.UUID](t, pgtype.UUIDCodec{}, pgtype.TextFormatCode, []byte("not-a-uuid"))
}
