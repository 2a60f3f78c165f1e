package pgtype

import (
	"encoding/binary"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgio"
	"github.com/pkg/errors"
)

// Time is a time of day without time zone, as microseconds since midnight. 24:00:00 is a valid value.
type Time struct {
	Microseconds int64
}

// NewTime returns the time of day of t.
func NewTime(t time.Time) Time {
	return Time{Microseconds: int64(t.Hour())*microsecondsPerHour +
		int64(t.Minute())*microsecondsPerMinute +
		int64(t.Second())*microsecondsPerSecond +
		int64(t.Nanosecond())/1000}
}

func (t Time) String() string {
	us := t.Microseconds
	var sb strings.Builder
	writeTwoDigits(&sb, us/microsecondsPerHour)
	sb.WriteByte(':')
	writeTwoDigits(&sb, us%microsecondsPerHour/microsecondsPerMinute)
	sb.WriteByte(':')
	writeTwoDigits(&sb, us%microsecondsPerMinute/microsecondsPerSecond)
	if frac := us % microsecondsPerSecond; frac != 0 {
		sb.WriteByte('.')
		sb.WriteString(strings.TrimRight(strconv.FormatInt(frac+microsecondsPerSecond, 10)[1:], "0"))
	}
	return sb.String()
}

func parseTime(s string) (Time, error) {
	s = strings.TrimSpace(s)
	if len(s) < 8 || s[2] != ':' || s[5] != ':' || !isDigits(s[0:2]) || !isDigits(s[3:5]) || !isDigits(s[6:8]) {
		return Time{}, errors.Errorf("invalid time %q", s)
	}

	hours, err1 := strconv.ParseInt(s[0:2], 10, 64)
	minutes, err2 := strconv.ParseInt(s[3:5], 10, 64)
	seconds, err3 := strconv.ParseInt(s[6:8], 10, 64)
	if err1 != nil || err2 != nil || err3 != nil || minutes > 59 || seconds > 59 {
		return Time{}, errors.Errorf("invalid time %q", s)
	}

	var micros int64
	if len(s) > 8 {
		frac := s[9:]
		if s[8] != '.' || len(frac) == 0 || len(frac) > 6 || !isDigits(frac) {
			return Time{}, errors.Errorf("invalid time %q", s)
		}
		n, err := strconv.ParseInt(frac+strings.Repeat("0", 6-len(frac)), 10, 64)
		if err != nil {
			return Time{}, errors.Errorf("invalid time %q", s)
		}
		micros = n
	}

	us := hours*microsecondsPerHour + minutes*microsecondsPerMinute + seconds*microsecondsPerSecond + micros
	if us > microsecondsPerDay {
		return Time{}, errors.Errorf("time out of range %q", s)
	}
	return Time{Microseconds: us}, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// TimeCodec is the codec for time (time without time zone).
type TimeCodec struct{}

func (TimeCodec) Type() *Type {
	return builtinType(TimeOID)
}

func (TimeCodec) PreferredFormat() int16 {
	return BinaryFormatCode
}

func (TimeCodec) Decode(oid uint32, format int16, src []byte) (Time, error) {
	if src == nil {
		return Time{}, newNotNullError[Time](oid)
	}

	switch format {
	case BinaryFormatCode:
		if len(src) != 8 {
			return Time{}, newDecodeError[Time](oid, format, src, errInvalidLength("time", 8, len(src)))
		}
		us := int64(binary.BigEndian.Uint64(src))
		if us < 0 || us > microsecondsPerDay {
			return Time{}, newDecodeError[Time](oid, format, src, errors.Errorf("time out of range: %d", us))
		}
		return Time{Microseconds: us}, nil
	case TextFormatCode:
		t, err := parseTime(string(src))
		if err != nil {
			return Time{}, newDecodeError[Time](oid, format, src, err)
		}
		return t, nil
	default:
		return Time{}, newDecodeError[Time](oid, format, src, errUnknownFormat(format))
	}
}

func (TimeCodec) Encode(format int16, v Time, buf []byte) ([]byte, error) {
	if v.Microseconds < 0 || v.Microseconds > microsecondsPerDay {
		return nil, newEncodeError(TimeOID, "", errors.Errorf("time out of range: %d", v.Microseconds))
	}

	switch format {
	case BinaryFormatCode:
		return pgio.AppendInt64(buf, v.Microseconds), nil
	case TextFormatCode:
		return append(buf, v.String()...), nil
	default:
		return nil, errUnknownFormat(format)
	}
}
