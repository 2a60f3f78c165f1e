package pgtype_test

import (
	"math"
	"testing"

	"github.com/jackc/pgcodec/pgtype"
	"github.com/jackc/pgcodec/pgtype/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInt2Codec(t *testing.T) {
	testutil.RunRoundTripTests[int16](t, pgtype.Int2Codec{}, []testutil.RoundTripTest[int16]{
		{Value: math.MinInt16, Text: "-32768", Binary: []byte{0x80, 0}},
		{Value: -1, Text: "-1", Binary: []byte{0xff, 0xff}},
		{Value: 0, Text: "0"},
		{Value: 1, Text: "1", Binary: []byte{0, 1}},
		{Value: math.MaxInt16, Text: "32767"},
	})
	testutil.RequireNotNull[int16](t, pgtype.Int2Codec{})
}

func TestInt4Codec(t *testing.T) {
	testutil.RunRoundTripTests[int32](t, pgtype.Int4Codec{}, []testutil.RoundTripTest[int32]{
		{Value: math.MinInt32, Text: "-2147483648"},
		{Value: -1, Text: "-1", Binary: []byte{0xff, 0xff, 0xff, 0xff}},
		{Value: 0, Text: "0"},
		{Value: 42, Text: "42", Binary: []byte{0, 0, 0, 42}},
		{Value: math.MaxInt32, Text: "2147483647"},
	})
	testutil.RequireNotNull[int32](t, pgtype.Int4Codec{})
}

func TestInt8Codec(t *testing.T) {
	testutil.RunRoundTripTests[int64](t, pgtype.Int8Codec{}, []testutil.RoundTripTest[int64]{
		{Value: math.MinInt64, Text: "-9223372036854775808"},
		{Value: 0, Text: "0", Binary: []byte{0, 0, 0, 0, 0, 0, 0, 0}},
		{Value: math.MaxInt64, Text: "9223372036854775807"},
	})
	testutil.RequireNotNull[int64](t, pgtype.Int8Codec{})
}

func TestIntCodecRejectsOutOfRangeText(t *testing.T) {
	testutil.RequireDecodeError[int16](t, pgtype.Int2Codec{}, pgtype.TextFormatCode, []byte("32768"))
	testutil.RequireDecodeError[int32](t, pgtype.Int4Codec{}, pgtype.TextFormatCode, []byte("-2147483649"))
	testutil.RequireDecodeError[int64](t, pgtype.Int8Codec{}, pgtype.TextFormatCode, []byte("9223372036854775808"))
	testutil.RequireDecodeError[int32](t, pgtype.Int4Codec{}, pgtype.TextFormatCode, []byte("12a"))
}

func TestIntCodecRejectsWrongBinaryLength(t *testing.T) {
	decodeErr := testutil.RequireDecodeError[int32](t, pgtype.Int4Codec{}, pgtype.BinaryFormatCode, []byte{0, 0, 0, 0, 1})
	assert.EqualValues(t, pgtype.Int4OID, decodeErr.OID)
	assert.Equal(t, "int32", decodeErr.Target)

	testutil.RequireDecodeError[int16](t, pgtype.Int2Codec{}, pgtype.BinaryFormatCode, []byte{1})
	testutil.RequireDecodeError[int64](t, pgtype.Int8Codec{}, pgtype.BinaryFormatCode, []byte{0, 0, 0, 1})
}

func TestIntCodecUnknownFormat(t *testing.T) {
	_, err := pgtype.Encode[int32](pgtype.Int4Codec{}, 7, 1)
	require.Error(t, err)

	_, err = pgtype.Decode[int32](pgtype.Int4Codec{}, 7, []byte{0, 0, 0, 1})
	require.Error(t, err)
}
