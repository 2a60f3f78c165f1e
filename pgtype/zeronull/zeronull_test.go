package zeronull_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgcodec/pgtype"
	"github.com/jackc/pgcodec/pgtype/zeronull"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroEncodesAsNull(t *testing.T) {
	for _, format := range []int16{pgtype.TextFormatCode, pgtype.BinaryFormatCode} {
		buf, err := pgtype.Encode[int32](zeronull.Int4(), format, 0)
		require.NoError(t, err)
		assert.Nil(t, buf)

		buf, err = pgtype.Encode[string](zeronull.Text(), format, "")
		require.NoError(t, err)
		assert.Nil(t, buf)

		buf, err = pgtype.Encode[uuid.UUID](zeronull.UUID(), format, uuid.UUID{})
		require.NoError(t, err)
		assert.Nil(t, buf)

		buf, err = pgtype.Encode[time.Time](zeronull.Timestamptz(), format, time.Time{})
		require.NoError(t, err)
		assert.Nil(t, buf)
	}
}

func TestNullDecodesAsZero(t *testing.T) {
	n, err := pgtype.Decode[int64](zeronull.Int8(), pgtype.BinaryFormatCode, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	f, err := pgtype.Decode[float64](zeronull.Float8(), pgtype.TextFormatCode, nil)
	require.NoError(t, err)
	assert.Zero(t, f)

	ts, err := pgtype.Decode[time.Time](zeronull.Timestamp(), pgtype.BinaryFormatCode, nil)
	require.NoError(t, err)
	assert.True(t, ts.IsZero())
}

func TestNonZeroRoundTrip(t *testing.T) {
	buf, err := pgtype.Encode[int16](zeronull.Int2(), pgtype.TextFormatCode, 42)
	require.NoError(t, err)
	assert.Equal(t, "42", string(buf))

	n, err := pgtype.Decode[int16](zeronull.Int2(), pgtype.TextFormatCode, buf)
	require.NoError(t, err)
	assert.EqualValues(t, 42, n)

	when := time.Date(2021, 3, 4, 5, 6, 7, 8000, time.UTC)
	buf, err = pgtype.Encode[time.Time](zeronull.Timestamp(), pgtype.BinaryFormatCode, when)
	require.NoError(t, err)
	got, err := pgtype.Decode[time.Time](zeronull.Timestamp(), pgtype.BinaryFormatCode, buf)
	require.NoError(t, err)
	assert.True(t, when.Equal(got))
}

func TestTimestampInfinityIsAnError(t *testing.T) {
	_, err := pgtype.Decode[time.Time](zeronull.Timestamp(), pgtype.TextFormatCode, []byte("infinity"))
	require.Error(t, err)
}
