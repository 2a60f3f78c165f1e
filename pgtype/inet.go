package pgtype

import (
	"net/netip"
	"strings"

	"github.com/pkg/errors"
)

// Address families as the server encodes them. They follow the server's socket.h, not the client's.
const (
	pgAFInet  = 2
	pgAFInet6 = 3
)

// InetCodec is the codec for inet and cidr. Values are netip.Prefix; an inet without a netmask decodes to a
// prefix of the full address length.
type InetCodec struct {
	// T is the declared type. nil means inet.
	T *Type
}

func (c InetCodec) Type() *Type {
	if c.T == nil {
		return builtinType(InetOID)
	}
	return c.T
}

func (c InetCodec) isCIDR() bool {
	return c.Type().OID == CIDROID
}

func (InetCodec) PreferredFormat() int16 {
	return BinaryFormatCode
}

func (c InetCodec) Decode(oid uint32, format int16, src []byte) (netip.Prefix, error) {
	if src == nil {
		return netip.Prefix{}, newNotNullError[netip.Prefix](oid)
	}

	var p netip.Prefix
	var err error
	switch format {
	case BinaryFormatCode:
		p, err = decodeInetBinary(src)
	case TextFormatCode:
		p, err = parseInet(strings.TrimSpace(string(src)))
	default:
		err = errUnknownFormat(format)
	}
	if err != nil {
		return netip.Prefix{}, newDecodeError[netip.Prefix](oid, format, src, err)
	}
	return p, nil
}

func decodeInetBinary(src []byte) (netip.Prefix, error) {
	if len(src) != 8 && len(src) != 20 {
		return netip.Prefix{}, errors.Errorf("invalid inet length %d", len(src))
	}

	family, bits, addrLen := src[0], int(src[1]), int(src[3])
	if addrLen != len(src)-4 {
		return netip.Prefix{}, errors.Errorf("inet address length %d does not match %d bytes", addrLen, len(src)-4)
	}
	addr, ok := netip.AddrFromSlice(src[4:])
	if !ok {
		return netip.Prefix{}, errors.Errorf("invalid inet address % x", src[4:])
	}
	if (family == pgAFInet) != addr.Is4() {
		return netip.Prefix{}, errors.Errorf("inet family %d does not match address length %d", family, addrLen)
	}
	if bits > addr.BitLen() {
		return netip.Prefix{}, errors.Errorf("invalid inet netmask %d", bits)
	}
	return netip.PrefixFrom(addr, bits), nil
}

func parseInet(s string) (netip.Prefix, error) {
	if !strings.Contains(s, "/") {
		addr, err := netip.ParseAddr(s)
		if err != nil {
			return netip.Prefix{}, errors.Wrap(err, "invalid inet")
		}
		return netip.PrefixFrom(addr, addr.BitLen()), nil
	}
	p, err := netip.ParsePrefix(s)
	if err != nil {
		return netip.Prefix{}, errors.Wrap(err, "invalid inet")
	}
	return p, nil
}

// Encode encodes v. A cidr value must not have bits set to the right of its netmask.
func (c InetCodec) Encode(format int16, v netip.Prefix, buf []byte) ([]byte, error) {
	if !v.IsValid() {
		return nil, newEncodeError(c.Type().OID, "invalid prefix", nil)
	}
	cidr := c.isCIDR()
	if cidr && v.Masked() != v {
		return nil, newEncodeError(c.Type().OID, "", errors.Errorf("%s has bits set to the right of its netmask", v))
	}

	switch format {
	case BinaryFormatCode:
		addr := v.Addr()
		family := byte(pgAFInet6)
		if addr.Is4() {
			family = pgAFInet
		}
		buf = append(buf, family, byte(v.Bits()))
		if cidr {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
		b := addr.AsSlice()
		buf = append(buf, byte(len(b)))
		return append(buf, b...), nil
	case TextFormatCode:
		if !cidr && v.IsSingleIP() {
			return v.Addr().AppendTo(buf), nil
		}
		return v.AppendTo(buf), nil
	default:
		return nil, errUnknownFormat(format)
	}
}
