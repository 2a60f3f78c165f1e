package pgtype

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/jackc/pgio"
	"github.com/pkg/errors"
)

// Uint32Codec is the codec for the unsigned 32 bit types oid, xid and cid.
type Uint32Codec struct {
	// T is the declared type. nil means oid.
	T *Type
}

func (c Uint32Codec) Type() *Type {
	if c.T == nil {
		return builtinType(OIDOID)
	}
	return c.T
}

func (Uint32Codec) PreferredFormat() int16 {
	return BinaryFormatCode
}

func (Uint32Codec) Decode(oid uint32, format int16, src []byte) (uint32, error) {
	if src == nil {
		return 0, newNotNullError[uint32](oid)
	}

	var err error
	switch format {
	case BinaryFormatCode:
		if len(src) != 4 {
			err = errInvalidLength("uint32", 4, len(src))
			break
		}
		return binary.BigEndian.Uint32(src), nil
	case TextFormatCode:
		var n uint64
		n, err = strconv.ParseUint(strings.TrimSpace(string(src)), 10, 32)
		if err == nil {
			return uint32(n), nil
		}
		err = errors.Errorf("invalid uint32 %q", src)
	default:
		err = errUnknownFormat(format)
	}
	return 0, newDecodeError[uint32](oid, format, src, err)
}

func (Uint32Codec) Encode(format int16, v uint32, buf []byte) ([]byte, error) {
	switch format {
	case BinaryFormatCode:
		return pgio.AppendUint32(buf, v), nil
	case TextFormatCode:
		return strconv.AppendUint(buf, uint64(v), 10), nil
	default:
		return nil, errUnknownFormat(format)
	}
}
