package pgtype

import (
	"strings"

	"github.com/pkg/errors"
)

// BoolCodec is the codec for bool.
type BoolCodec struct{}

func (BoolCodec) Type() *Type {
	return builtinType(BoolOID)
}

func (BoolCodec) PreferredFormat() int16 {
	return BinaryFormatCode
}

func (BoolCodec) Decode(oid uint32, format int16, src []byte) (bool, error) {
	if src == nil {
		return false, newNotNullError[bool](oid)
	}

	var v bool
	var err error
	switch format {
	case BinaryFormatCode:
		if len(src) != 1 {
			err = errInvalidLength("bool", 1, len(src))
			break
		}
		v = src[0] == 1
	case TextFormatCode:
		v, err = parseBool(string(src))
	default:
		err = errUnknownFormat(format)
	}
	if err != nil {
		return false, newDecodeError[bool](oid, format, src, err)
	}
	return v, nil
}

func (BoolCodec) Encode(format int16, v bool, buf []byte) ([]byte, error) {
	switch format {
	case BinaryFormatCode:
		if v {
			return append(buf, 1), nil
		}
		return append(buf, 0), nil
	case TextFormatCode:
		if v {
			return append(buf, 't'), nil
		}
		return append(buf, 'f'), nil
	default:
		return nil, errUnknownFormat(format)
	}
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "t", "true", "y", "yes", "on", "1":
		return true, nil
	case "f", "false", "n", "no", "off", "0":
		return false, nil
	default:
		return false, errors.Errorf("invalid bool %q", s)
	}
}
