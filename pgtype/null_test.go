package pgtype_test

import (
	"math"
	"testing"

	"github.com/jackc/pgcodec/pgtype"
	"github.com/jackc/pgcodec/pgtype/testutil"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullableCodec(t *testing.T) {
	c := pgtype.Nullable[int32](pgtype.Int4Codec{})
	assert.Equal(t, pgtype.Int4Codec{}.Type(), c.Type())

	for _, format := range testutil.Formats {
		v, err := pgtype.Decode[*int32](c, format.Code, nil)
		require.NoError(t, err, format.Name)
		assert.Nil(t, v, format.Name)

		buf, err := pgtype.Encode[*int32](c, format.Code, nil)
		require.NoError(t, err, format.Name)
		assert.Nil(t, buf, format.Name)
	}

	testutil.RunRoundTripTests[*int32](t, c, []testutil.RoundTripTest[*int32]{
		{Value: int32Ptr(5), Text: "5", Binary: []byte{0, 0, 0, 5}},
	})

	testutil.RequireDecodeError[*int32](t, c, pgtype.TextFormatCode, []byte("five"))
}

func intCodec() pgtype.ConvertCodec[int32, int] {
	return pgtype.ConvertCodec[int32, int]{
		Codec: pgtype.Int4Codec{},
		From:  func(v int32) (int, error) { return int(v), nil },
		To: func(v int) (int32, error) {
			if v > math.MaxInt32 || v < math.MinInt32 {
				return 0, errors.Errorf("%d is out of range for int4", v)
			}
			return int32(v), nil
		},
	}
}

func TestConvertCodec(t *testing.T) {
	c := intCodec()
	testutil.RunRoundTripTests[int](t, c, []testutil.RoundTripTest[int]{
		{Value: 42, Text: "42", Binary: []byte{0, 0, 0, 42}},
		{Value: math.MinInt32},
	})

	_, err := pgtype.Encode[int](c, pgtype.BinaryFormatCode, math.MaxInt32+1)
	var encodeErr *pgtype.EncodeError
	require.ErrorAs(t, err, &encodeErr)
	assert.Contains(t, err.Error(), "out of range")

	positive := pgtype.ConvertCodec[int32, uint]{
		Codec: pgtype.Int4Codec{},
		From: func(v int32) (uint, error) {
			if v < 0 {
				return 0, errors.New("negative")
			}
			return uint(v), nil
		},
		To: func(v uint) (int32, error) { return int32(v), nil },
	}
	testutil.RequireDecodeError[uint](t, positive, pgtype.TextFormatCode, []byte("-1"))
}

func TestErase(t *testing.T) {
	c := pgtype.Erase[int32](pgtype.Int4Codec{})
	assert.EqualValues(t, pgtype.Int4OID, c.Type().OID)
	assert.EqualValues(t, pgtype.BinaryFormatCode, c.PreferredFormat())

	buf, err := c.EncodeAny(pgtype.TextFormatCode, int32(5), nil)
	require.NoError(t, err)
	assert.Equal(t, "5", string(buf))

	buf, err = c.EncodeAny(pgtype.TextFormatCode, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, buf)

	_, err = c.EncodeAny(pgtype.TextFormatCode, "5", nil)
	var encodeErr *pgtype.EncodeError
	require.ErrorAs(t, err, &encodeErr)

	v, err := c.DecodeAny(pgtype.Int4OID, pgtype.BinaryFormatCode, []byte{0, 0, 0, 9})
	require.NoError(t, err)
	assert.Equal(t, int32(9), v)
}

func TestValueOf(t *testing.T) {
	v := pgtype.ValueOf[int32](pgtype.Int4Codec{}, 7)
	assert.EqualValues(t, pgtype.Int4OID, v.OID())
	assert.EqualValues(t, pgtype.BinaryFormatCode, v.PreferredFormat())
	assert.Equal(t, "7", v.(interface{ String() string }).String())

	buf, err := pgtype.EncodeValue(v, pgtype.BinaryFormatCode)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 7}, buf)

	buf, err = pgtype.EncodeValue(v, pgtype.TextFormatCode)
	require.NoError(t, err)
	assert.Equal(t, "7", string(buf))

	_, err = pgtype.EncodeValue(v, 3)
	assert.Error(t, err)

	null := pgtype.NullValue{T: pgtype.TextOID}
	assert.EqualValues(t, pgtype.TextOID, null.OID())
	for _, format := range testutil.Formats {
		buf, err := pgtype.EncodeValue(null, format.Code)
		require.NoError(t, err)
		assert.Nil(t, buf)
	}
}
