package pgtype_test

import (
	"testing"

	"github.com/jackc/pgcodec/pgtype"
	"github.com/jackc/pgcodec/pgtype/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseBits(t testing.TB, s string) pgtype.Bits {
	t.Helper()
	b, err := pgtype.ParseBits(s)
	require.NoError(t, err)
	return b
}

func TestBitsCodec(t *testing.T) {
	for _, c := range []pgtype.BitsCodec{{}, {T: mustType(t, pgtype.BitOID)}} {
		t.Run(c.Type().Name, func(t *testing.T) {
			testutil.RunRoundTripTests[pgtype.Bits](t, c, []testutil.RoundTripTest[pgtype.Bits]{
				{Value: mustParseBits(t, ""), Text: "", Binary: []byte{0, 0, 0, 0}},
				{Value: mustParseBits(t, "101"), Text: "101", Binary: []byte{0, 0, 0, 3, 0xa0}},
				{Value: mustParseBits(t, "11111111"), Text: "11111111", Binary: []byte{0, 0, 0, 8, 0xff}},
				{Value: mustParseBits(t, "000000001"), Text: "000000001", Binary: []byte{0, 0, 0, 9, 0, 0x80}},
			})
		})
	}
}

func TestBitsCodecErrors(t *testing.T) {
	testutil.RequireDecodeError[pgtype.Bits](t, pgtype.BitsCodec{}, pgtype.TextFormatCode, []byte("102"))
	testutil.RequireDecodeError[pgtype.Bits](t, pgtype.BitsCodec{}, pgtype.BinaryFormatCode, []byte{0, 0, 0, 9, 0xff})
	testutil.RequireDecodeError[pgtype.Bits](t, pgtype.BitsCodec{}, pgtype.BinaryFormatCode, []byte{0xff, 0xff, 0xff, 0xff})

	_, err := pgtype.Encode(pgtype.BitsCodec{}, pgtype.BinaryFormatCode, pgtype.Bits{Bytes: []byte{1}, Len: 9})
	require.Error(t, err)
}

func TestBitsBit(t *testing.T) {
	b := mustParseBits(t, "0100")
	assert.False(t, b.Bit(0))
	assert.True(t, b.Bit(1))
	assert.Equal(t, "0100", b.String())
}
