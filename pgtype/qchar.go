package pgtype

import (
	"strconv"

	"github.com/pkg/errors"
)

// QCharCodec is the codec for the internal "char" type, a single byte. It is unrelated to char(n).
type QCharCodec struct{}

func (QCharCodec) Type() *Type {
	return builtinType(QCharOID)
}

func (QCharCodec) PreferredFormat() int16 {
	return BinaryFormatCode
}

func (QCharCodec) Decode(oid uint32, format int16, src []byte) (byte, error) {
	if src == nil {
		return 0, newNotNullError[byte](oid)
	}

	var err error
	switch format {
	case BinaryFormatCode:
		if len(src) > 1 {
			err = errInvalidLength("char", 1, len(src))
			break
		}
		if len(src) == 0 {
			return 0, nil
		}
		return src[0], nil
	case TextFormatCode:
		switch {
		case len(src) == 0:
			return 0, nil
		case len(src) == 1:
			return src[0], nil
		case len(src) == 4 && src[0] == '\\':
			var n uint64
			n, err = strconv.ParseUint(string(src[1:]), 8, 8)
			if err == nil {
				return byte(n), nil
			}
		default:
			err = errors.Errorf("invalid char %q", src)
		}
	default:
		err = errUnknownFormat(format)
	}
	return 0, newDecodeError[byte](oid, format, src, err)
}

func (QCharCodec) Encode(format int16, v byte, buf []byte) ([]byte, error) {
	switch format {
	case BinaryFormatCode:
		return append(buf, v), nil
	case TextFormatCode:
		switch {
		case v == 0:
			return buf, nil
		case v >= 0x80:
			return append(buf, '\\', '0'+(v>>6), '0'+((v>>3)&7), '0'+(v&7)), nil
		default:
			return append(buf, v), nil
		}
	default:
		return nil, errUnknownFormat(format)
	}
}
