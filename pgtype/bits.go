package pgtype

import (
	"encoding/binary"

	"github.com/jackc/pgio"
	"github.com/pkg/errors"
)

// Bits is a bit string. Len is the number of bits; bits past Len in the last byte are zero.
type Bits struct {
	Bytes []byte
	Len   int32
}

// ParseBits parses a string of '0' and '1' characters.
func ParseBits(s string) (Bits, error) {
	b := Bits{Bytes: make([]byte, (len(s)+7)/8), Len: int32(len(s))}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
		case '1':
			b.Bytes[i/8] |= 0x80 >> (i % 8)
		default:
			return Bits{}, errors.Errorf("invalid bit %q at offset %d", s[i], i)
		}
	}
	return b, nil
}

// Bit returns the bit at index i.
func (b Bits) Bit(i int) bool {
	return b.Bytes[i/8]&(0x80>>(i%8)) != 0
}

func (b Bits) String() string {
	buf := make([]byte, b.Len)
	for i := range buf {
		if b.Bit(i) {
			buf[i] = '1'
		} else {
			buf[i] = '0'
		}
	}
	return string(buf)
}

// BitsCodec is the codec for bit and varbit.
type BitsCodec struct {
	// T is the declared type. nil means varbit.
	T *Type
}

func (c BitsCodec) Type() *Type {
	if c.T == nil {
		return builtinType(VarbitOID)
	}
	return c.T
}

func (BitsCodec) PreferredFormat() int16 {
	return BinaryFormatCode
}

func (BitsCodec) Decode(oid uint32, format int16, src []byte) (Bits, error) {
	if src == nil {
		return Bits{}, newNotNullError[Bits](oid)
	}

	switch format {
	case BinaryFormatCode:
		if len(src) < 4 {
			return Bits{}, newDecodeError[Bits](oid, format, src, errShortBuffer("bit length", 4, len(src)))
		}
		bitLen := int32(binary.BigEndian.Uint32(src))
		if bitLen < 0 {
			return Bits{}, newDecodeError[Bits](oid, format, src, errors.Errorf("negative bit length %d", bitLen))
		}
		if want := 4 + (int(bitLen)+7)/8; len(src) != want {
			return Bits{}, newDecodeError[Bits](oid, format, src, errInvalidLength("bit", want, len(src)))
		}
		return Bits{Bytes: copyBytes(src[4:]), Len: bitLen}, nil
	case TextFormatCode:
		b, err := ParseBits(string(src))
		if err != nil {
			return Bits{}, newDecodeError[Bits](oid, format, src, err)
		}
		return b, nil
	default:
		return Bits{}, newDecodeError[Bits](oid, format, src, errUnknownFormat(format))
	}
}

func (c BitsCodec) Encode(format int16, v Bits, buf []byte) ([]byte, error) {
	if v.Len < 0 || int(v.Len) > len(v.Bytes)*8 {
		return nil, newEncodeError(c.Type().OID, "", errors.Errorf("bit length %d does not fit %d bytes", v.Len, len(v.Bytes)))
	}

	switch format {
	case BinaryFormatCode:
		buf = pgio.AppendInt32(buf, v.Len)
		return append(buf, v.Bytes[:(v.Len+7)/8]...), nil
	case TextFormatCode:
		return append(buf, v.String()...), nil
	default:
		return nil, errUnknownFormat(format)
	}
}
