package pgtype

import (
	"encoding/binary"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgio"
	"github.com/pkg/errors"
)

const (
	microsecondsPerSecond = 1000000
	microsecondsPerMinute = 60 * microsecondsPerSecond
	microsecondsPerHour   = 60 * microsecondsPerMinute
	microsecondsPerDay    = 24 * microsecondsPerHour
	microsecondsPerMonth  = 30 * microsecondsPerDay
)

// Interval is a normalized interval. The server stores months, days and microseconds independently; Years and
// Months are derived from the month count and Hours through Microseconds from the microsecond count, all with the
// sign of their source.
type Interval struct {
	Years        int32
	Months       int32
	Days         int32
	Hours        int64
	Minutes      int32
	Seconds      int32
	Microseconds int32
}

// NewInterval normalizes the three stored components.
func NewInterval(months, days int32, microseconds int64) Interval {
	us := microseconds
	return Interval{
		Years:        months / 12,
		Months:       months % 12,
		Days:         days,
		Hours:        us / microsecondsPerHour,
		Minutes:      int32(us % microsecondsPerHour / microsecondsPerMinute),
		Seconds:      int32(us % microsecondsPerMinute / microsecondsPerSecond),
		Microseconds: int32(us % microsecondsPerSecond),
	}
}

// IntervalFromDuration returns an interval with only a time part.
func IntervalFromDuration(d time.Duration) Interval {
	return NewInterval(0, 0, d.Microseconds())
}

func (i Interval) TotalMonths() int32 {
	return i.Years*12 + i.Months
}

func (i Interval) TotalMicroseconds() int64 {
	return i.Hours*microsecondsPerHour +
		int64(i.Minutes)*microsecondsPerMinute +
		int64(i.Seconds)*microsecondsPerSecond +
		int64(i.Microseconds)
}

// Duration converts i assuming 30 day months and 24 hour days, as the server does when justifying intervals.
func (i Interval) Duration() time.Duration {
	us := int64(i.TotalMonths())*microsecondsPerMonth + int64(i.Days)*microsecondsPerDay + i.TotalMicroseconds()
	return time.Duration(us) * time.Microsecond
}

// String returns the interval in the postgres interval style, such as "1 year 2 mons 3 days 04:05:06.000007".
func (i Interval) String() string {
	var parts []string
	unit := func(n int64, singular, plural string) {
		if n == 0 {
			return
		}
		name := plural
		if n == 1 {
			name = singular
		}
		parts = append(parts, strconv.FormatInt(n, 10)+" "+name)
	}
	unit(int64(i.Years), "year", "years")
	unit(int64(i.Months), "mon", "mons")
	unit(int64(i.Days), "day", "days")

	us := i.TotalMicroseconds()
	if us != 0 || len(parts) == 0 {
		var sb strings.Builder
		if us < 0 {
			sb.WriteByte('-')
			us = -us
		}
		hours := us / microsecondsPerHour
		if hours < 10 {
			sb.WriteByte('0')
		}
		sb.WriteString(strconv.FormatInt(hours, 10))
		sb.WriteByte(':')
		writeTwoDigits(&sb, us%microsecondsPerHour/microsecondsPerMinute)
		sb.WriteByte(':')
		writeTwoDigits(&sb, us%microsecondsPerMinute/microsecondsPerSecond)
		if frac := us % microsecondsPerSecond; frac != 0 {
			sb.WriteByte('.')
			sb.WriteString(strings.TrimRight(strconv.FormatInt(frac+microsecondsPerSecond, 10)[1:], "0"))
		}
		parts = append(parts, sb.String())
	}

	return strings.Join(parts, " ")
}

func writeTwoDigits(sb *strings.Builder, n int64) {
	if n < 10 {
		sb.WriteByte('0')
	}
	sb.WriteString(strconv.FormatInt(n, 10))
}

var intervalRegexp = regexp.MustCompile(`^\s*` +
	`(?:([+-]?\d+)\s+years?\s*)?` +
	`(?:([+-]?\d+)\s+(?:mons?|months?)\s*)?` +
	`(?:([+-]?\d+)\s+days?\s*)?` +
	`(?:([+-]?)(\d+):(\d{1,2}):(\d{1,2})(?:\.(\d{1,6}))?)?` +
	`\s*$`)

// ParseInterval parses the postgres interval style.
func ParseInterval(s string) (Interval, error) {
	m := intervalRegexp.FindStringSubmatch(s)
	if m == nil || strings.TrimSpace(s) == "" {
		return Interval{}, errors.Errorf("invalid interval %q", s)
	}

	atoi := func(s string) (int64, error) {
		if s == "" {
			return 0, nil
		}
		return strconv.ParseInt(s, 10, 64)
	}

	var n [7]int64
	for idx, g := range []int{1, 2, 3, 5, 6, 7} {
		v, err := atoi(m[g])
		if err != nil {
			return Interval{}, errors.Errorf("invalid interval %q", s)
		}
		n[idx] = v
	}
	years, months, days, hours, minutes, seconds := n[0], n[1], n[2], n[3], n[4], n[5]
	if minutes > 59 || seconds > 59 {
		return Interval{}, errors.Errorf("invalid interval time %q", s)
	}

	var micros int64
	if frac := m[8]; frac != "" {
		micros, _ = strconv.ParseInt(frac+strings.Repeat("0", 6-len(frac)), 10, 64)
	}

	if years > math.MaxInt32 || years < math.MinInt32 {
		return Interval{}, errors.Errorf("interval out of range %q", s)
	}
	totalMonths := years*12 + months
	if totalMonths > 1<<31-1 || totalMonths < -1<<31 || days > 1<<31-1 || days < -1<<31 {
		return Interval{}, errors.Errorf("interval out of range %q", s)
	}

	us := minutes*microsecondsPerMinute + seconds*microsecondsPerSecond + micros
	if hours > (math.MaxInt64-us)/microsecondsPerHour {
		return Interval{}, errors.Errorf("interval out of range %q", s)
	}
	us += hours * microsecondsPerHour
	if m[4] == "-" {
		us = -us
	}

	return NewInterval(int32(totalMonths), int32(days), us), nil
}

// IntervalCodec is the codec for interval.
type IntervalCodec struct{}

func (IntervalCodec) Type() *Type {
	return builtinType(IntervalOID)
}

func (IntervalCodec) PreferredFormat() int16 {
	return BinaryFormatCode
}

func (IntervalCodec) Decode(oid uint32, format int16, src []byte) (Interval, error) {
	if src == nil {
		return Interval{}, newNotNullError[Interval](oid)
	}

	switch format {
	case BinaryFormatCode:
		if len(src) != 16 {
			return Interval{}, newDecodeError[Interval](oid, format, src, errInvalidLength("interval", 16, len(src)))
		}
		microseconds := int64(binary.BigEndian.Uint64(src))
		days := int32(binary.BigEndian.Uint32(src[8:]))
		months := int32(binary.BigEndian.Uint32(src[12:]))
		return NewInterval(months, days, microseconds), nil
	case TextFormatCode:
		i, err := ParseInterval(string(src))
		if err != nil {
			return Interval{}, newDecodeError[Interval](oid, format, src, err)
		}
		return i, nil
	default:
		return Interval{}, newDecodeError[Interval](oid, format, src, errUnknownFormat(format))
	}
}

func (IntervalCodec) Encode(format int16, v Interval, buf []byte) ([]byte, error) {
	switch format {
	case BinaryFormatCode:
		buf = pgio.AppendInt64(buf, v.TotalMicroseconds())
		buf = pgio.AppendInt32(buf, v.Days)
		buf = pgio.AppendInt32(buf, v.TotalMonths())
		return buf, nil
	case TextFormatCode:
		return append(buf, v.String()...), nil
	default:
		return nil, errUnknownFormat(format)
	}
}
