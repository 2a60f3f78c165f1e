package pgtype

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/jackc/pgio"
	"github.com/pkg/errors"
)

// Int2Codec is the codec for int2 (smallint).
type Int2Codec struct{}

func (Int2Codec) Type() *Type {
	return builtinType(Int2OID)
}

func (Int2Codec) PreferredFormat() int16 {
	return BinaryFormatCode
}

func (Int2Codec) Decode(oid uint32, format int16, src []byte) (int16, error) {
	if src == nil {
		return 0, newNotNullError[int16](oid)
	}
	n, err := decodeInt(format, src, 2)
	if err != nil {
		return 0, newDecodeError[int16](oid, format, src, err)
	}
	return int16(n), nil
}

func (Int2Codec) Encode(format int16, v int16, buf []byte) ([]byte, error) {
	switch format {
	case BinaryFormatCode:
		return pgio.AppendInt16(buf, v), nil
	case TextFormatCode:
		return strconv.AppendInt(buf, int64(v), 10), nil
	default:
		return nil, errUnknownFormat(format)
	}
}

// Int4Codec is the codec for int4 (integer).
type Int4Codec struct{}

func (Int4Codec) Type() *Type {
	return builtinType(Int4OID)
}

func (Int4Codec) PreferredFormat() int16 {
	return BinaryFormatCode
}

func (Int4Codec) Decode(oid uint32, format int16, src []byte) (int32, error) {
	if src == nil {
		return 0, newNotNullError[int32](oid)
	}
	n, err := decodeInt(format, src, 4)
	if err != nil {
		return 0, newDecodeError[int32](oid, format, src, err)
	}
	return int32(n), nil
}

func (Int4Codec) Encode(format int16, v int32, buf []byte) ([]byte, error) {
	switch format {
	case BinaryFormatCode:
		return pgio.AppendInt32(buf, v), nil
	case TextFormatCode:
		return strconv.AppendInt(buf, int64(v), 10), nil
	default:
		return nil, errUnknownFormat(format)
	}
}

// Int8Codec is the codec for int8 (bigint).
type Int8Codec struct{}

func (Int8Codec) Type() *Type {
	return builtinType(Int8OID)
}

func (Int8Codec) PreferredFormat() int16 {
	return BinaryFormatCode
}

func (Int8Codec) Decode(oid uint32, format int16, src []byte) (int64, error) {
	if src == nil {
		return 0, newNotNullError[int64](oid)
	}
	n, err := decodeInt(format, src, 8)
	if err != nil {
		return 0, newDecodeError[int64](oid, format, src, err)
	}
	return n, nil
}

func (Int8Codec) Encode(format int16, v int64, buf []byte) ([]byte, error) {
	switch format {
	case BinaryFormatCode:
		return pgio.AppendInt64(buf, v), nil
	case TextFormatCode:
		return strconv.AppendInt(buf, v, 10), nil
	default:
		return nil, errUnknownFormat(format)
	}
}

// decodeInt decodes a size byte integer. Text values outside the range of size are rejected.
func decodeInt(format int16, src []byte, size int) (int64, error) {
	switch format {
	case BinaryFormatCode:
		if len(src) != size {
			return 0, errInvalidLength("int"+strconv.Itoa(size), size, len(src))
		}
		switch size {
		case 2:
			return int64(int16(binary.BigEndian.Uint16(src))), nil
		case 4:
			return int64(int32(binary.BigEndian.Uint32(src))), nil
		default:
			return int64(binary.BigEndian.Uint64(src)), nil
		}
	case TextFormatCode:
		n, err := strconv.ParseInt(strings.TrimSpace(string(src)), 10, size*8)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return 0, errors.Errorf("%s is out of range for int%d", src, size)
			}
			return 0, errors.Errorf("invalid int%d %q", size, src)
		}
		return n, nil
	default:
		return 0, errUnknownFormat(format)
	}
}
