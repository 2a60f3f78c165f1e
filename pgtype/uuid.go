package pgtype

import (
	"strings"

	"github.com/google/uuid"
)

// UUIDCodec is the codec for uuid.
type UUIDCodec struct{}

func (UUIDCodec) Type() *Type {
	return builtinType(UUIDOID)
}

func (UUIDCodec) PreferredFormat() int16 {
	return BinaryFormatCode
}

func (UUIDCodec) Decode(oid uint32, format int16, src []byte) (uuid.UUID, error) {
	if src == nil {
		return uuid.UUID{}, newNotNullError[uuid.UUID](oid)
	}

	switch format {
	case BinaryFormatCode:
		u, err := uuid.FromBytes(src)
		if err != nil {
			return uuid.UUID{}, newDecodeError[uuid.UUID](oid, format, src, errInvalidLength("uuid", 16, len(src)))
		}
		return u, nil
	case TextFormatCode:
		u, err := uuid.Parse(strings.TrimSpace(string(src)))
		if err != nil {
			return uuid.UUID{}, newDecodeError[uuid.UUID](oid, format, src, err)
		}
		return u, nil
	default:
		return uuid.UUID{}, newDecodeError[uuid.UUID](oid, format, src, errUnknownFormat(format))
	}
}

func (UUIDCodec) Encode(format int16, v uuid.UUID, buf []byte) ([]byte, error) {
	switch format {
	case BinaryFormatCode:
		return append(buf, v[:]...), nil
	case TextFormatCode:
		return append(buf, v.String()...), nil
	default:
		return nil, errUnknownFormat(format)
	}
}
