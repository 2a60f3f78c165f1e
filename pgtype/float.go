package pgtype

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/jackc/pgio"
	"github.com/pkg/errors"
)

// Float4Codec is the codec for float4 (real).
type Float4Codec struct{}

func (Float4Codec) Type() *Type {
	return builtinType(Float4OID)
}

func (Float4Codec) PreferredFormat() int16 {
	return BinaryFormatCode
}

func (Float4Codec) Decode(oid uint32, format int16, src []byte) (float32, error) {
	if src == nil {
		return 0, newNotNullError[float32](oid)
	}

	var err error
	switch format {
	case BinaryFormatCode:
		if len(src) != 4 {
			err = errInvalidLength("float4", 4, len(src))
			break
		}
		return math.Float32frombits(binary.BigEndian.Uint32(src)), nil
	case TextFormatCode:
		var f float64
		f, err = parseFloat(string(src), 32)
		if err == nil {
			return float32(f), nil
		}
	default:
		err = errUnknownFormat(format)
	}
	return 0, newDecodeError[float32](oid, format, src, err)
}

func (Float4Codec) Encode(format int16, v float32, buf []byte) ([]byte, error) {
	switch format {
	case BinaryFormatCode:
		return pgio.AppendUint32(buf, math.Float32bits(v)), nil
	case TextFormatCode:
		return appendFloat(buf, float64(v), 32), nil
	default:
		return nil, errUnknownFormat(format)
	}
}

// Float8Codec is the codec for float8 (double precision).
type Float8Codec struct{}

func (Float8Codec) Type() *Type {
	return builtinType(Float8OID)
}

func (Float8Codec) PreferredFormat() int16 {
	return BinaryFormatCode
}

func (Float8Codec) Decode(oid uint32, format int16, src []byte) (float64, error) {
	if src == nil {
		return 0, newNotNullError[float64](oid)
	}

	var err error
	switch format {
	case BinaryFormatCode:
		if len(src) != 8 {
			err = errInvalidLength("float8", 8, len(src))
			break
		}
		return math.Float64frombits(binary.BigEndian.Uint64(src)), nil
	case TextFormatCode:
		var f float64
		f, err = parseFloat(string(src), 64)
		if err == nil {
			return f, nil
		}
	default:
		err = errUnknownFormat(format)
	}
	return 0, newDecodeError[float64](oid, format, src, err)
}

func (Float8Codec) Encode(format int16, v float64, buf []byte) ([]byte, error) {
	switch format {
	case BinaryFormatCode:
		return pgio.AppendUint64(buf, math.Float64bits(v)), nil
	case TextFormatCode:
		return appendFloat(buf, v, 64), nil
	default:
		return nil, errUnknownFormat(format)
	}
}

func parseFloat(s string, bitSize int) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "nan":
		return math.NaN(), nil
	case "infinity", "inf", "+infinity", "+inf":
		return math.Inf(1), nil
	case "-infinity", "-inf":
		return math.Inf(-1), nil
	}
	f, err := strconv.ParseFloat(s, bitSize)
	if err != nil {
		return 0, errors.Errorf("invalid float%d %q", bitSize/8, s)
	}
	return f, nil
}

// appendFloat appends the shortest representation of f that reads back to the same value.
func appendFloat(buf []byte, f float64, bitSize int) []byte {
	switch {
	case math.IsNaN(f):
		return append(buf, "NaN"...)
	case math.IsInf(f, 1):
		return append(buf, "Infinity"...)
	case math.IsInf(f, -1):
		return append(buf, "-Infinity"...)
	}
	return strconv.AppendFloat(buf, f, 'g', -1, bitSize)
}
