package zeronull

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgcodec/pgtype"
	"github.com/pkg/errors"
)

// Codec wraps a codec so that NULL decodes to the zero value of T and the zero value of T encodes as NULL.
type Codec[T comparable] struct {
	Codec pgtype.Codec[T]
}

// Of wraps c.
func Of[T comparable](c pgtype.Codec[T]) Codec[T] {
	return Codec[T]{Codec: c}
}

func (c Codec[T]) Type() *pgtype.Type {
	return c.Codec.Type()
}

func (c Codec[T]) PreferredFormat() int16 {
	return c.Codec.PreferredFormat()
}

func (c Codec[T]) Decode(oid uint32, format int16, src []byte) (T, error) {
	if src == nil {
		var zero T
		return zero, nil
	}
	return c.Codec.Decode(oid, format, src)
}

func (c Codec[T]) Encode(format int16, v T, buf []byte) ([]byte, error) {
	var zero T
	if v == zero {
		return nil, nil
	}
	return c.Codec.Encode(format, v, buf)
}

func Int2() Codec[int16] { return Of[int16](pgtype.Int2Codec{}) }

func Int4() Codec[int32] { return Of[int32](pgtype.Int4Codec{}) }

func Int8() Codec[int64] { return Of[int64](pgtype.Int8Codec{}) }

func Float8() Codec[float64] { return Of[float64](pgtype.Float8Codec{}) }

func Text() Codec[string] { return Of[string](pgtype.TextCodec{}) }

func UUID() Codec[uuid.UUID] { return Of[uuid.UUID](pgtype.UUIDCodec{}) }

// Timestamp decodes timestamp values as UTC wall clock times. Infinite values cannot be decoded.
func Timestamp() Codec[time.Time] {
	return Of[time.Time](pgtype.ConvertCodec[pgtype.Timestamp, time.Time]{
		Codec: pgtype.TimestampCodec{},
		From: func(ts pgtype.Timestamp) (time.Time, error) {
			if ts.InfinityModifier != pgtype.Finite {
				return time.Time{}, errors.Errorf("cannot represent %s as time.Time", ts.InfinityModifier)
			}
			return ts.Time, nil
		},
		To: func(t time.Time) (pgtype.Timestamp, error) {
			return pgtype.Timestamp{Time: t}, nil
		},
	})
}

func Timestamptz() Codec[time.Time] {
	return Of[time.Time](pgtype.TimeTimestamptzCodec())
}
