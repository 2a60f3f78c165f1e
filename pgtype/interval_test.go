package pgtype_test

import (
	"math"
	"testing"
	"time"

	"github.com/jackc/pgcodec/pgtype"
	"github.com/jackc/pgcodec/pgtype/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalCodec(t *testing.T) {
	us := func(d time.Duration) int64 { return d.Microseconds() }

	testutil.RunRoundTripTests[pgtype.Interval](t, pgtype.IntervalCodec{}, []testutil.RoundTripTest[pgtype.Interval]{
		{Value: pgtype.Interval{}, Text: "00:00:00", Binary: make([]byte, 16)},
		{Value: pgtype.NewInterval(0, 0, 1), Text: "00:00:00.000001"},
		{Value: pgtype.NewInterval(0, 0, us(time.Second)), Text: "00:00:01"},
		{Value: pgtype.NewInterval(0, 1, 0), Text: "1 day"},
		{Value: pgtype.NewInterval(1, 0, 0), Text: "1 mon"},
		{Value: pgtype.NewInterval(12, 0, 0), Text: "1 year"},
		{
			Value: pgtype.NewInterval(14, 3, us(4*time.Hour+5*time.Minute+6*time.Second+7*time.Microsecond)),
			Text:  "1 year 2 mons 3 days 04:05:06.000007",
		},
		{Value: pgtype.NewInterval(-14, 0, 0), Text: "-1 years -2 mons"},
		{Value: pgtype.NewInterval(0, -1, -us(90*time.Minute)), Text: "-1 days -01:30:00"},
		{Value: pgtype.NewInterval(0, 0, us(100*time.Hour+500*time.Millisecond)), Text: "100:00:00.5"},
		{
			Value:  pgtype.NewInterval(1, 2, 3),
			Binary: []byte{0, 0, 0, 0, 0, 0, 0, 3, 0, 0, 0, 2, 0, 0, 0, 1},
		},
	})
	testutil.RequireNotNull[pgtype.Interval](t, pgtype.IntervalCodec{})
}

func TestNewIntervalNormalizes(t *testing.T) {
	i := pgtype.NewInterval(26, 40, (25*time.Hour + 61*time.Second).Microseconds())
	assert.Equal(t, pgtype.Interval{Years: 2, Months: 2, Days: 40, Hours: 25, Minutes: 1, Seconds: 1}, i)
	assert.EqualValues(t, 26, i.TotalMonths())
	assert.Equal(t, (25*time.Hour + 61*time.Second).Microseconds(), i.TotalMicroseconds())
}

func TestIntervalDuration(t *testing.T) {
	assert.Equal(t, 90*time.Minute, pgtype.IntervalFromDuration(90*time.Minute).Duration())
	assert.Equal(t, 31*24*time.Hour, pgtype.NewInterval(1, 1, 0).Duration())
}

func TestParseInterval(t *testing.T) {
	tests := []struct {
		s string
		i pgtype.Interval
	}{
		{s: "3 days", i: pgtype.NewInterval(0, 3, 0)},
		{s: "  2 years 1 month ", i: pgtype.NewInterval(25, 0, 0)},
		{s: "+01:02:03", i: pgtype.NewInterval(0, 0, (time.Hour + 2*time.Minute + 3*time.Second).Microseconds())},
		{s: "1 mons 00:00:00.25", i: pgtype.NewInterval(1, 0, 250000)},
	}
	for _, tt := range tests {
		i, err := pgtype.ParseInterval(tt.s)
		require.NoError(t, err, tt.s)
		assert.Equal(t, tt.i, i, tt.s)
	}

	for _, s := range []string{"", "1 fortnight", "01:60:00", "1 day 2", "00:00:00.1234567"} {
		_, err := pgtype.ParseInterval(s)
		assert.Error(t, err, s)
	}
}

func TestIntervalCodecRejectsWrongBinaryLength(t *testing.T) {
	testutil.RequireDecodeError[pgtype.Interval](t, pgtype.IntervalCodec{}, pgtype.BinaryFormatCode, make([]byte, 12))
}

func TestIntervalCodecRejectsOutOfRange(t *testing.T) {
	i, err := pgtype.ParseInterval("2562047788:00:54.775807")
	require.NoError(t, err)
	assert.EqualValues(t, math.MaxInt64, i.TotalMicroseconds())

	i, err = pgtype.ParseInterval("-2562047788:00:54.775807")
	require.NoError(t, err)
	assert.EqualValues(t, -math.MaxInt64, i.TotalMicroseconds())

	for _, s := range []string{
		"9223372036854775807:00:00",
		"2562047789:00:00",
		"2562047788:00:54.775808",
		"-2562047789:00:00",
		"3000000000 years",
		"768614336404564651 years",
	} {
		testutil.RequireDecodeError[pgtype.Interval](t, pgtype.IntervalCodec{}, pgtype.TextFormatCode, []byte(s))
	}
}
