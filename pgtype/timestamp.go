package pgtype

import (
	"encoding/binary"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgio"
	"github.com/pkg/errors"
)

const (
	infinityMicrosecondOffset         = math.MaxInt64
	negativeInfinityMicrosecondOffset = math.MinInt64

	pgTimestampFormat   = "2006-01-02 15:04:05.999999"
	pgTimestamptzFormat = "2006-01-02 15:04:05.999999Z07:00"
)

// Timestamp is a timestamp without time zone. Time is in UTC when InfinityModifier is Finite.
type Timestamp struct {
	Time             time.Time
	InfinityModifier InfinityModifier
}

// Timestamptz is a timestamp with time zone.
type Timestamptz struct {
	Time             time.Time
	InfinityModifier InfinityModifier
}

// TimestampCodec is the codec for timestamp (timestamp without time zone).
type TimestampCodec struct{}

func (TimestampCodec) Type() *Type {
	return builtinType(TimestampOID)
}

func (TimestampCodec) PreferredFormat() int16 {
	return BinaryFormatCode
}

func (TimestampCodec) Decode(oid uint32, format int16, src []byte) (Timestamp, error) {
	if src == nil {
		return Timestamp{}, newNotNullError[Timestamp](oid)
	}
	t, im, err := decodeTimestamp(format, src, false)
	if err != nil {
		return Timestamp{}, newDecodeError[Timestamp](oid, format, src, err)
	}
	return Timestamp{Time: t, InfinityModifier: im}, nil
}

// Encode encodes v. The wall clock of v.Time is encoded; its location is discarded.
func (TimestampCodec) Encode(format int16, v Timestamp, buf []byte) ([]byte, error) {
	t := v.Time
	if v.InfinityModifier == Finite {
		t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	}
	return encodeTimestamp(format, t, v.InfinityModifier, buf, pgTimestampFormat)
}

// TimestamptzCodec is the codec for timestamptz (timestamp with time zone).
type TimestamptzCodec struct{}

func (TimestamptzCodec) Type() *Type {
	return builtinType(TimestamptzOID)
}

func (TimestamptzCodec) PreferredFormat() int16 {
	return BinaryFormatCode
}

func (TimestamptzCodec) Decode(oid uint32, format int16, src []byte) (Timestamptz, error) {
	if src == nil {
		return Timestamptz{}, newNotNullError[Timestamptz](oid)
	}
	t, im, err := decodeTimestamp(format, src, true)
	if err != nil {
		return Timestamptz{}, newDecodeError[Timestamptz](oid, format, src, err)
	}
	return Timestamptz{Time: t, InfinityModifier: im}, nil
}

func (TimestamptzCodec) Encode(format int16, v Timestamptz, buf []byte) ([]byte, error) {
	return encodeTimestamp(format, v.Time.UTC(), v.InfinityModifier, buf, pgTimestamptzFormat)
}

// TimeTimestamptzCodec returns a timestamptz codec over time.Time. Infinite values cannot be decoded.
func TimeTimestamptzCodec() ConvertCodec[Timestamptz, time.Time] {
	return ConvertCodec[Timestamptz, time.Time]{
		Codec: TimestamptzCodec{},
		From: func(ts Timestamptz) (time.Time, error) {
			if ts.InfinityModifier != Finite {
				return time.Time{}, errors.Errorf("cannot represent %s as time.Time", ts.InfinityModifier)
			}
			return ts.Time, nil
		},
		To: func(t time.Time) (Timestamptz, error) {
			return Timestamptz{Time: t}, nil
		},
	}
}

func decodeTimestamp(format int16, src []byte, withZone bool) (time.Time, InfinityModifier, error) {
	switch format {
	case BinaryFormatCode:
		if len(src) != 8 {
			return time.Time{}, Finite, errInvalidLength("timestamp", 8, len(src))
		}
		microsecSinceY2K := int64(binary.BigEndian.Uint64(src))
		switch microsecSinceY2K {
		case infinityMicrosecondOffset:
			return time.Time{}, Infinity, nil
		case negativeInfinityMicrosecondOffset:
			return time.Time{}, NegativeInfinity, nil
		}
		microsecSinceUnixEpoch := postgresEpoch.Unix()*microsecondsPerSecond + microsecSinceY2K
		t := time.Unix(microsecSinceUnixEpoch/microsecondsPerSecond, (microsecSinceUnixEpoch%microsecondsPerSecond)*1000).UTC()
		return t, Finite, nil
	case TextFormatCode:
		s := strings.TrimSpace(string(src))
		switch s {
		case "infinity":
			return time.Time{}, Infinity, nil
		case "-infinity":
			return time.Time{}, NegativeInfinity, nil
		}

		bc := strings.HasSuffix(s, " BC")
		s = strings.TrimSuffix(s, " BC")

		var t time.Time
		var err error
		if withZone {
			t, err = parseLongYear(s, parseTimestamptzText)
		} else {
			t, err = parseLongYear(s, func(s string) (time.Time, error) {
				return time.ParseInLocation(pgTimestampFormat, s, time.UTC)
			})
		}
		if err != nil {
			return time.Time{}, Finite, errors.Errorf("invalid timestamp %q", s)
		}
		if bc {
			t = t.AddDate(-2*t.Year()+1, 0, 0)
		}
		return t, Finite, nil
	default:
		return time.Time{}, Finite, errUnknownFormat(format)
	}
}

// parseTimestamptzText accepts zone offsets in hours, hours and minutes, or hours, minutes and seconds.
func parseTimestamptzText(s string) (time.Time, error) {
	var err error
	for _, layout := range []string{
		"2006-01-02 15:04:05.999999999Z07:00:00",
		"2006-01-02 15:04:05.999999999Z07:00",
		"2006-01-02 15:04:05.999999999Z07",
	} {
		var t time.Time
		t, err = time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func encodeTimestamp(format int16, t time.Time, im InfinityModifier, buf []byte, layout string) ([]byte, error) {
	switch format {
	case BinaryFormatCode:
		var microsecSinceY2K int64
		switch im {
		case Finite:
			microsecSinceY2K = t.Unix()*microsecondsPerSecond + int64(t.Nanosecond())/1000 - postgresEpoch.Unix()*microsecondsPerSecond
		case Infinity:
			microsecSinceY2K = infinityMicrosecondOffset
		case NegativeInfinity:
			microsecSinceY2K = negativeInfinityMicrosecondOffset
		}
		return pgio.AppendInt64(buf, microsecSinceY2K), nil
	case TextFormatCode:
		switch im {
		case Infinity:
			return append(buf, "infinity"...), nil
		case NegativeInfinity:
			return append(buf, "-infinity"...), nil
		}
		t = t.Truncate(time.Microsecond)
		bc := t.Year() <= 0
		if bc {
			t = t.AddDate(-2*t.Year()+1, 0, 0)
		}
		buf = t.AppendFormat(buf, layout)
		if bc {
			buf = append(buf, " BC"...)
		}
		return buf, nil
	default:
		return nil, errUnknownFormat(format)
	}
}
