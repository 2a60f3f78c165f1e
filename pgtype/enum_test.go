package pgtype_test

import (
	"testing"

	"github.com/jackc/pgcodec/pgtype"
	"github.com/jackc/pgcodec/pgtype/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mood string

func TestEnumCodec(t *testing.T) {
	r := pgtype.NewRegistry()
	typ, err := r.RegisterEnum(16800, "mood")
	require.NoError(t, err)

	c := pgtype.EnumCodec[mood]{T: typ, Labels: []mood{"sad", "ok", "happy"}}
	testutil.RunRoundTripTests[mood](t, c, []testutil.RoundTripTest[mood]{
		{Value: "ok", Text: "ok", Binary: []byte("ok")},
		{Value: "happy", Text: "happy"},
	})
	testutil.RequireNotNull[mood](t, c)

	testutil.RequireDecodeError[mood](t, c, pgtype.TextFormatCode, []byte("angry"))
	_, err = pgtype.Encode[mood](c, pgtype.TextFormatCode, "angry")
	var encodeErr *pgtype.EncodeError
	require.ErrorAs(t, err, &encodeErr)

	open := pgtype.EnumCodec[mood]{T: typ}
	assert.Equal(t, mood("angry"), testutil.MustDecodeText[mood](t, open, "angry"))
}

func TestEnumArrayCodec(t *testing.T) {
	r := pgtype.NewRegistry()
	typ, err := r.RegisterEnum(16800, "mood")
	require.NoError(t, err)
	arrayType, err := r.RegisterArray(16799, "_mood", typ)
	require.NoError(t, err)

	c := pgtype.ArrayCodec[mood]{Element: pgtype.EnumCodec[mood]{T: typ}, ArrayType: arrayType}
	testutil.RunRoundTripTests[pgtype.Array[mood]](t, c, []testutil.RoundTripTest[pgtype.Array[mood]]{
		{Value: pgtype.NewArray([]mood{"sad", "happy"}), Text: "{sad,happy}"},
	})
}
