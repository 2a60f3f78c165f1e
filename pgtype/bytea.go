package pgtype

import (
	"encoding/hex"

	"github.com/pkg/errors"
)

// ByteaCodec is the codec for bytea. Decoded values never share memory with the source buffer.
type ByteaCodec struct{}

func (ByteaCodec) Type() *Type {
	return builtinType(ByteaOID)
}

func (ByteaCodec) PreferredFormat() int16 {
	return BinaryFormatCode
}

func (ByteaCodec) Decode(oid uint32, format int16, src []byte) ([]byte, error) {
	if src == nil {
		return nil, newNotNullError[[]byte](oid)
	}

	switch format {
	case BinaryFormatCode:
		return append(make([]byte, 0, len(src)), src...), nil
	case TextFormatCode:
		b, err := decodeByteaText(src)
		if err != nil {
			return nil, newDecodeError[[]byte](oid, format, src, err)
		}
		return b, nil
	default:
		return nil, newDecodeError[[]byte](oid, format, src, errUnknownFormat(format))
	}
}

// Encode encodes v. A nil v is encoded as an empty bytea; use Nullable for NULL.
func (ByteaCodec) Encode(format int16, v []byte, buf []byte) ([]byte, error) {
	switch format {
	case BinaryFormatCode:
		return append(buf, v...), nil
	case TextFormatCode:
		buf = append(buf, `\x`...)
		n := len(buf)
		buf = append(buf, make([]byte, hex.EncodedLen(len(v)))...)
		hex.Encode(buf[n:], v)
		return buf, nil
	default:
		return nil, errUnknownFormat(format)
	}
}

// decodeByteaText decodes the hex format (\x0a0b) or the escape format (\\ and \ooo escapes).
func decodeByteaText(src []byte) ([]byte, error) {
	if len(src) >= 2 && src[0] == '\\' && src[1] == 'x' {
		b := make([]byte, hex.DecodedLen(len(src)-2))
		if _, err := hex.Decode(b, src[2:]); err != nil {
			return nil, errors.Wrap(err, "invalid hex bytea")
		}
		return b, nil
	}

	b := make([]byte, 0, len(src))
	for i := 0; i < len(src); i++ {
		if src[i] != '\\' {
			b = append(b, src[i])
			continue
		}
		if i+1 < len(src) && src[i+1] == '\\' {
			b = append(b, '\\')
			i++
			continue
		}
		if i+3 >= len(src) {
			return nil, errors.New("invalid escape bytea")
		}
		o := src[i+1 : i+4]
		if o[0] < '0' || o[0] > '3' || o[1] < '0' || o[1] > '7' || o[2] < '0' || o[2] > '7' {
			return nil, errors.Errorf("invalid escape sequence %q", src[i:i+4])
		}
		b = append(b, (o[0]-'0')<<6|(o[1]-'0')<<3|(o[2]-'0'))
		i += 3
	}
	return b, nil
}
