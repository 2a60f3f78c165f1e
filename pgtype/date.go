package pgtype

import (
	"encoding/binary"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgio"
	"github.com/pkg/errors"
)

// Date is a calendar date. Time is midnight UTC of the date when InfinityModifier is Finite.
type Date struct {
	Time             time.Time
	InfinityModifier InfinityModifier
}

// NewDate returns the date of t in t's location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

const (
	negativeInfinityDayOffset = -2147483648
	infinityDayOffset         = 2147483647
)

// postgresEpoch is 2000-01-01, the zero point of the binary date and timestamp formats.
var postgresEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// postgresEpochJulianDay is the Julian day number of 2000-01-01.
const postgresEpochJulianDay = 2451545

// DateCodec is the codec for date.
type DateCodec struct{}

func (DateCodec) Type() *Type {
	return builtinType(DateOID)
}

func (DateCodec) PreferredFormat() int16 {
	return BinaryFormatCode
}

func (DateCodec) Decode(oid uint32, format int16, src []byte) (Date, error) {
	if src == nil {
		return Date{}, newNotNullError[Date](oid)
	}

	switch format {
	case BinaryFormatCode:
		if len(src) != 4 {
			return Date{}, newDecodeError[Date](oid, format, src, errInvalidLength("date", 4, len(src)))
		}

		dayOffset := int32(binary.BigEndian.Uint32(src))
		switch dayOffset {
		case infinityDayOffset:
			return Date{InfinityModifier: Infinity}, nil
		case negativeInfinityDayOffset:
			return Date{InfinityModifier: NegativeInfinity}, nil
		default:
			return Date{Time: postgresEpoch.AddDate(0, 0, int(dayOffset))}, nil
		}
	case TextFormatCode:
		d, err := parseDate(string(src))
		if err != nil {
			return Date{}, newDecodeError[Date](oid, format, src, err)
		}
		return d, nil
	default:
		return Date{}, newDecodeError[Date](oid, format, src, errUnknownFormat(format))
	}
}

func (DateCodec) Encode(format int16, v Date, buf []byte) ([]byte, error) {
	switch format {
	case BinaryFormatCode:
		var daysSinceDateEpoch int32
		switch v.InfinityModifier {
		case Finite:
			y, m, d := v.Time.Date()
			days := julianDay(y, int(m), d) - postgresEpochJulianDay
			if days >= infinityDayOffset || days <= negativeInfinityDayOffset {
				return nil, newEncodeError(DateOID, "", errors.Errorf("date %v is out of range", v.Time))
			}
			daysSinceDateEpoch = int32(days)
		case Infinity:
			daysSinceDateEpoch = infinityDayOffset
		case NegativeInfinity:
			daysSinceDateEpoch = negativeInfinityDayOffset
		}
		return pgio.AppendInt32(buf, daysSinceDateEpoch), nil
	case TextFormatCode:
		switch v.InfinityModifier {
		case Infinity:
			return append(buf, "infinity"...), nil
		case NegativeInfinity:
			return append(buf, "-infinity"...), nil
		}
		return appendDate(buf, v.Time), nil
	default:
		return nil, errUnknownFormat(format)
	}
}

// appendDate appends t's date as YYYY-MM-DD with a " BC" suffix for years before 1.
func appendDate(buf []byte, t time.Time) []byte {
	y := t.Year()
	bc := y <= 0
	if bc {
		t = t.AddDate(-2*y+1, 0, 0)
	}
	buf = t.AppendFormat(buf, "2006-01-02")
	if bc {
		buf = append(buf, " BC"...)
	}
	return buf
}

func parseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "infinity":
		return Date{InfinityModifier: Infinity}, nil
	case "-infinity":
		return Date{InfinityModifier: NegativeInfinity}, nil
	}

	bc := strings.HasSuffix(s, " BC")
	s = strings.TrimSuffix(s, " BC")

	t, err := parseLongYear(s, func(s string) (time.Time, error) {
		return time.ParseInLocation("2006-01-02", s, time.UTC)
	})
	if err != nil {
		return Date{}, errors.Errorf("invalid date %q", s)
	}
	if bc {
		t = t.AddDate(-2*t.Year()+1, 0, 0)
	}
	return Date{Time: t}, nil
}

// parseLongYear calls parse on s, which starts with a year. time.Parse only accepts four digit years so a longer year
// is replaced by 2000 for parse and applied to the result afterwards.
func parseLongYear(s string, parse func(string) (time.Time, error)) (time.Time, error) {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	if n <= 4 {
		return parse(s)
	}

	year, err := strconv.Atoi(s[:n])
	if err != nil {
		return time.Time{}, err
	}
	t, err := parse("2000" + s[n:])
	if err != nil {
		return time.Time{}, err
	}

	moved := time.Date(year, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if moved.Day() != t.Day() {
		return time.Time{}, errors.Errorf("day %d is out of range for year %d", t.Day(), year)
	}
	return moved, nil
}

// julianDay returns the Julian day number of a proleptic Gregorian date.
func julianDay(year, month, day int) int64 {
	a := int64((14 - month) / 12)
	y := int64(year) + 4800 - a
	m := int64(month) + 12*a - 3
	return int64(day) + (153*m+2)/5 + 365*y + floorDiv(y, 4) - floorDiv(y, 100) + floorDiv(y, 400) - 32045
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
