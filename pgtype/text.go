package pgtype

import (
	"golang.org/x/text/encoding"
)

// TextCodec is the codec for text and the other character types (varchar, bpchar, name, unknown). Text and binary
// formats are identical.
type TextCodec struct {
	// T is the declared type. nil means text.
	T *Type

	// Charset converts between the client encoding and UTF-8. nil means the client encoding is UTF8 and every decoded
	// value is validated as UTF-8.
	Charset encoding.Encoding
}

func (c TextCodec) Type() *Type {
	if c.T == nil {
		return builtinType(TextOID)
	}
	return c.T
}

func (TextCodec) PreferredFormat() int16 {
	return TextFormatCode
}

func (c TextCodec) Decode(oid uint32, format int16, src []byte) (string, error) {
	if src == nil {
		return "", newNotNullError[string](oid)
	}
	if format != TextFormatCode && format != BinaryFormatCode {
		return "", newDecodeError[string](oid, format, src, errUnknownFormat(format))
	}

	if c.Charset != nil {
		b, err := c.Charset.NewDecoder().Bytes(src)
		if err != nil {
			return "", newDecodeError[string](oid, format, src, err)
		}
		return string(b), nil
	}

	if err := checkUTF8(src); err != nil {
		return "", newDecodeError[string](oid, format, src, err)
	}
	return string(src), nil
}

func (c TextCodec) Encode(format int16, v string, buf []byte) ([]byte, error) {
	if format != TextFormatCode && format != BinaryFormatCode {
		return nil, errUnknownFormat(format)
	}
	if c.Charset != nil {
		b, err := c.Charset.NewEncoder().Bytes([]byte(v))
		if err != nil {
			return nil, newEncodeError(c.Type().OID, "client encoding", err)
		}
		return append(buf, b...), nil
	}
	return append(buf, v...), nil
}

// VarcharCodec, BPCharCodec and NameCodec return text codecs declared as the respective builtin types.
func VarcharCodec() TextCodec { return TextCodec{T: builtinType(VarcharOID)} }
func BPCharCodec() TextCodec { return TextCodec{T: builtinType(BPCharOID)} }
func NameCodec() TextCodec { return TextCodec{T: builtinType(NameOID)} }
