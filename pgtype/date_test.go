package pgtype_test

import (
	"testing"
	"time"

	"github.com/jackc/pgcodec/pgtype"
	"github.com/jackc/pgcodec/pgtype/testutil"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) pgtype.Date {
	return pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func checkDate(t testing.TB, expected, actual pgtype.Date) {
	assert.Equal(t, expected.InfinityModifier, actual.InfinityModifier)
	assert.Truef(t, expected.Time.Equal(actual.Time), "expected %v, got %v", expected.Time, actual.Time)
}

func TestDateCodec(t *testing.T) {
	testutil.RunRoundTripTestsFunc(t, pgtype.DateCodec{}, []testutil.RoundTripTest[pgtype.Date]{
		{Value: date(2000, 1, 1), Text: "2000-01-01", Binary: []byte{0, 0, 0, 0}},
		{Value: date(1999, 12, 31), Text: "1999-12-31", Binary: []byte{0xff, 0xff, 0xff, 0xff}},
		{Value: date(2000, 1, 2), Binary: []byte{0, 0, 0, 1}},
		{Value: date(1900, 1, 1), Text: "1900-01-01"},
		{Value: date(2200, 12, 31), Text: "2200-12-31"},
		{Value: date(2020, 2, 29), Text: "2020-02-29"},
		{Value: date(1, 1, 1), Text: "0001-01-01"},
		{Value: date(0, 12, 31), Text: "0001-12-31 BC"},
		{Value: date(-99, 6, 15), Text: "0100-06-15 BC"},
		{Value: date(10000, 1, 1), Text: "10000-01-01"},
		{Value: date(123456, 2, 29), Text: "123456-02-29"},
		{Value: date(-9999, 3, 1), Text: "10000-03-01 BC"},
		{Value: pgtype.Date{InfinityModifier: pgtype.Infinity}, Text: "infinity", Binary: []byte{0x7f, 0xff, 0xff, 0xff}},
		{Value: pgtype.Date{InfinityModifier: pgtype.NegativeInfinity}, Text: "-infinity", Binary: []byte{0x80, 0, 0, 0}},
	}, checkDate)
	testutil.RequireNotNull[pgtype.Date](t, pgtype.DateCodec{})
}

func TestDateCodecDecodeErrors(t *testing.T) {
	for _, s := range []string{"", "2000-13-01", "2000-02-30", "yesterday", "10001-02-29", "10000-13-01", "1-01-01"} {
		testutil.RequireDecodeError[pgtype.Date](t, pgtype.DateCodec{}, pgtype.TextFormatCode, []byte(s))
	}
	testutil.RequireDecodeError[pgtype.Date](t, pgtype.DateCodec{}, pgtype.BinaryFormatCode, []byte{0, 0, 0})
}

func TestNewDate(t *testing.T) {
	loc := time.FixedZone("x", -5*3600)
	d := pgtype.NewDate(time.Date(2021, 6, 30, 23, 0, 0, 0, loc))
	checkDate(t, date(2021, 6, 30), d)
}
