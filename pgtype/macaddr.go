package pgtype

import (
	"net"

	"github.com/pkg/errors"
)

// MacaddrCodec is the codec for macaddr (6 bytes) and macaddr8 (8 bytes).
type MacaddrCodec struct {
	// T is the declared type. nil means macaddr.
	T *Type
}

func (c MacaddrCodec) Type() *Type {
	if c.T == nil {
		return builtinType(MacaddrOID)
	}
	return c.T
}

func (c MacaddrCodec) size() int {
	if c.Type().OID == Macaddr8OID {
		return 8
	}
	return 6
}

func (MacaddrCodec) PreferredFormat() int16 {
	return BinaryFormatCode
}

func (c MacaddrCodec) Decode(oid uint32, format int16, src []byte) (net.HardwareAddr, error) {
	if src == nil {
		return nil, newNotNullError[net.HardwareAddr](oid)
	}

	switch format {
	case BinaryFormatCode:
		if len(src) != c.size() {
			return nil, newDecodeError[net.HardwareAddr](oid, format, src, errInvalidLength("macaddr", c.size(), len(src)))
		}
		return net.HardwareAddr(copyBytes(src)), nil
	case TextFormatCode:
		addr, err := net.ParseMAC(string(src))
		if err == nil && len(addr) != c.size() {
			err = errors.Errorf("expected %d byte address, got %d", c.size(), len(addr))
		}
		if err != nil {
			return nil, newDecodeError[net.HardwareAddr](oid, format, src, err)
		}
		return addr, nil
	default:
		return nil, newDecodeError[net.HardwareAddr](oid, format, src, errUnknownFormat(format))
	}
}

func (c MacaddrCodec) Encode(format int16, v net.HardwareAddr, buf []byte) ([]byte, error) {
	if len(v) != c.size() {
		return nil, newEncodeError(c.Type().OID, "", errors.Errorf("expected %d byte address, got %d", c.size(), len(v)))
	}

	switch format {
	case BinaryFormatCode:
		return append(buf, v...), nil
	case TextFormatCode:
		return append(buf, v.String()...), nil
	default:
		return nil, errUnknownFormat(format)
	}
}
