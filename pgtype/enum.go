package pgtype

import (
	"github.com/pkg/errors"
)

// EnumCodec is the codec for enum types. The text and binary formats are both the label. When Labels is not empty,
// values outside it are rejected in both directions.
type EnumCodec[T ~string] struct {
	T      *Type
	Labels []T
}

func (c EnumCodec[T]) Type() *Type {
	return c.T
}

func (EnumCodec[T]) PreferredFormat() int16 {
	return TextFormatCode
}

func (c EnumCodec[T]) valid(v T) bool {
	if len(c.Labels) == 0 {
		return true
	}
	for _, l := range c.Labels {
		if l == v {
			return true
		}
	}
	return false
}

func (c EnumCodec[T]) Decode(oid uint32, format int16, src []byte) (T, error) {
	if src == nil {
		return "", newNotNullError[T](oid)
	}
	s, err := versionedText(format, 0, src)
	if err != nil {
		return "", newDecodeError[T](oid, format, src, err)
	}
	v := T(s)
	if !c.valid(v) {
		return "", newDecodeError[T](oid, format, src, errors.Errorf("invalid label %q for %s", s, c.T))
	}
	return v, nil
}

func (c EnumCodec[T]) Encode(format int16, v T, buf []byte) ([]byte, error) {
	if !c.valid(v) {
		return nil, newEncodeError(c.T.OID, "", errors.Errorf("invalid label %q for %s", string(v), c.T))
	}
	return appendVersionedText(format, 0, buf, string(v))
}
