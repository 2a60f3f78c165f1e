package pgtype_test

import (
	"math"
	"testing"

	"github.com/jackc/pgcodec/pgtype"
	"github.com/jackc/pgcodec/pgtype/testutil"
	"github.com/stretchr/testify/assert"
)

func TestFloat4Codec(t *testing.T) {
	testutil.RunRoundTripTests[float32](t, pgtype.Float4Codec{}, []testutil.RoundTripTest[float32]{
		{Value: -1, Text: "-1"},
		{Value: 0, Text: "0", Binary: []byte{0, 0, 0, 0}},
		{Value: 0.00001, Text: "1e-05"},
		{Value: 1.5, Text: "1.5", Binary: []byte{0x3f, 0xc0, 0, 0}},
		{Value: float32(math.Inf(1)), Text: "Infinity"},
		{Value: float32(math.Inf(-1)), Text: "-Infinity"},
	})
	testutil.RequireNotNull[float32](t, pgtype.Float4Codec{})
}

func TestFloat8Codec(t *testing.T) {
	testutil.RunRoundTripTests[float64](t, pgtype.Float8Codec{}, []testutil.RoundTripTest[float64]{
		{Value: -1, Text: "-1"},
		{Value: 0, Text: "0"},
		{Value: 1.5, Text: "1.5", Binary: []byte{0x3f, 0xf8, 0, 0, 0, 0, 0, 0}},
		{Value: 123456789.123456789, Text: "1.2345678912345679e+08"},
		{Value: math.Inf(1), Text: "Infinity"},
		{Value: math.Inf(-1), Text: "-Infinity"},
	})
}

func TestFloat8CodecNaN(t *testing.T) {
	for _, format := range testutil.Formats {
		buf := testutil.MustEncode[float64](t, pgtype.Float8Codec{}, format.Code, math.NaN())
		f, err := pgtype.Decode[float64](pgtype.Float8Codec{}, format.Code, buf)
		assert.NoError(t, err)
		assert.True(t, math.IsNaN(f), format.Name)
	}
	assert.Equal(t, "NaN", string(testutil.MustEncode[float64](t, pgtype.Float8Codec{}, pgtype.TextFormatCode, math.NaN())))
}

func TestFloat8CodecDecodeText(t *testing.T) {
	assert.Equal(t, math.Inf(1), testutil.MustDecodeText[float64](t, pgtype.Float8Codec{}, "infinity"))
	assert.Equal(t, math.Inf(-1), testutil.MustDecodeText[float64](t, pgtype.Float8Codec{}, "-inf"))
	assert.Equal(t, 3.25, testutil.MustDecodeText[float64](t, pgtype.Float8Codec{}, " 3.25 "))
	testutil.RequireDecodeError[float64](t, pgtype.Float8Codec{}, pgtype.TextFormatCode, []byte("1.2.3"))
}
