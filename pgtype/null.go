package pgtype

import (
	"fmt"
	"sync/atomic"

	"github.com/pkg/errors"
)

// NullableCodec wraps a codec so that the SQL value NULL is decoded to and encoded from a nil pointer.
type NullableCodec[T any] struct {
	Codec Codec[T]
}

// Nullable returns a codec over *T that maps NULL to nil.
func Nullable[T any](c Codec[T]) NullableCodec[T] {
	return NullableCodec[T]{Codec: c}
}

func (c NullableCodec[T]) Type() *Type {
	return c.Codec.Type()
}

func (c NullableCodec[T]) PreferredFormat() int16 {
	return c.Codec.PreferredFormat()
}

func (c NullableCodec[T]) Decode(oid uint32, format int16, src []byte) (*T, error) {
	if src == nil {
		return nil, nil
	}
	v, err := c.Codec.Decode(oid, format, src)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (c NullableCodec[T]) Encode(format int16, v *T, buf []byte) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return c.Codec.Encode(format, *v, buf)
}

// ErrUnboundCodec is returned by a LazyCodec that is used before Bind.
var ErrUnboundCodec = errors.New("lazy codec used before Bind")

// LazyCodec is a codec whose implementation is supplied after construction. It allows record types that refer to
// each other, or to themselves, to share codecs.
type LazyCodec[T any] struct {
	t     *Type
	codec atomic.Pointer[Codec[T]]
}

// NewLazyCodec returns an unbound codec for values of type t.
func NewLazyCodec[T any](t *Type) *LazyCodec[T] {
	return &LazyCodec[T]{t: t}
}

// Bind sets the codec c delegates to. Binding twice is a programming error and panics.
func (c *LazyCodec[T]) Bind(codec Codec[T]) {
	if !c.codec.CompareAndSwap(nil, &codec) {
		panic(fmt.Sprintf("pgtype: lazy codec for %s bound twice", c.t))
	}
}

func (c *LazyCodec[T]) Type() *Type {
	return c.t
}

// PreferredFormat is always binary. It does not consult the bound codec, which may refer back to c.
func (c *LazyCodec[T]) PreferredFormat() int16 {
	return BinaryFormatCode
}

func (c *LazyCodec[T]) Decode(oid uint32, format int16, src []byte) (T, error) {
	p := c.codec.Load()
	if p == nil {
		var zero T
		return zero, errors.Wrapf(ErrUnboundCodec, "decode %s", c.t)
	}
	return (*p).Decode(oid, format, src)
}

func (c *LazyCodec[T]) Encode(format int16, v T, buf []byte) ([]byte, error) {
	p := c.codec.Load()
	if p == nil {
		return nil, errors.Wrapf(ErrUnboundCodec, "encode %s", c.t)
	}
	return (*p).Encode(format, v, buf)
}

// ConvertCodec adapts a codec over A to values of type B.
type ConvertCodec[A, B any] struct {
	Codec Codec[A]
	// From converts a decoded A.
	From func(A) (B, error)
	// To converts a B before encoding.
	To func(B) (A, error)
}

func (c ConvertCodec[A, B]) Type() *Type {
	return c.Codec.Type()
}

func (c ConvertCodec[A, B]) PreferredFormat() int16 {
	return c.Codec.PreferredFormat()
}

func (c ConvertCodec[A, B]) Decode(oid uint32, format int16, src []byte) (B, error) {
	a, err := c.Codec.Decode(oid, format, src)
	if err != nil {
		var zero B
		return zero, err
	}
	b, err := c.From(a)
	if err != nil {
		return b, newDecodeError[B](oid, format, src, err)
	}
	return b, nil
}

func (c ConvertCodec[A, B]) Encode(format int16, v B, buf []byte) ([]byte, error) {
	a, err := c.To(v)
	if err != nil {
		return nil, newEncodeError(c.Codec.Type().OID, fmt.Sprintf("convert %s", typeNameOf[B]()), err)
	}
	return c.Codec.Encode(format, a, buf)
}

// TextParsedCodec is a codec for types whose binary format is their text format, optionally preceded by a version
// byte. Both formats are decoded through Parse and encoded through Format.
type TextParsedCodec[T any] struct {
	T *Type
	// Version is the leading byte of the binary format. Zero means there is none.
	Version   byte
	Preferred int16
	Parse     func(s string) (T, error)
	Format    func(v T) (string, error)
}

func (c TextParsedCodec[T]) Type() *Type {
	return c.T
}

func (c TextParsedCodec[T]) PreferredFormat() int16 {
	return c.Preferred
}

func (c TextParsedCodec[T]) Decode(oid uint32, format int16, src []byte) (T, error) {
	var zero T
	if src == nil {
		return zero, newNotNullError[T](oid)
	}
	text, err := versionedText(format, c.Version, src)
	if err != nil {
		return zero, newDecodeError[T](oid, format, src, err)
	}
	v, err := c.Parse(text)
	if err != nil {
		return zero, newDecodeError[T](oid, format, src, err)
	}
	return v, nil
}

func (c TextParsedCodec[T]) Encode(format int16, v T, buf []byte) ([]byte, error) {
	s, err := c.Format(v)
	if err != nil {
		return nil, newEncodeError(c.T.OID, "", err)
	}
	return appendVersionedText(format, c.Version, buf, s)
}

// versionedText validates src as UTF-8 text. In the binary format a non-zero version byte must lead src.
func versionedText(format int16, version byte, src []byte) (string, error) {
	switch format {
	case TextFormatCode:
	case BinaryFormatCode:
		if version != 0 {
			if len(src) == 0 {
				return "", errors.New("missing version byte")
			}
			if src[0] != version {
				return "", errors.Errorf("unknown version %d", src[0])
			}
			src = src[1:]
		}
	default:
		return "", errUnknownFormat(format)
	}
	if err := checkUTF8(src); err != nil {
		return "", err
	}
	return string(src), nil
}

func appendVersionedText(format int16, version byte, buf []byte, s string) ([]byte, error) {
	switch format {
	case TextFormatCode:
	case BinaryFormatCode:
		if version != 0 {
			buf = append(buf, version)
		}
	default:
		return nil, errUnknownFormat(format)
	}
	return append(buf, s...), nil
}

// AnyCodec is a Codec with its Go type erased. It is used where the Go type is only known at run time.
type AnyCodec interface {
	Type() *Type
	PreferredFormat() int16
	DecodeAny(oid uint32, format int16, src []byte) (any, error)
	EncodeAny(format int16, v any, buf []byte) ([]byte, error)
}

type erasedCodec[T any] struct {
	c Codec[T]
}

// Erase hides the Go type of c.
func Erase[T any](c Codec[T]) AnyCodec {
	return erasedCodec[T]{c: c}
}

func (e erasedCodec[T]) Type() *Type {
	return e.c.Type()
}

func (e erasedCodec[T]) PreferredFormat() int16 {
	return e.c.PreferredFormat()
}

func (e erasedCodec[T]) DecodeAny(oid uint32, format int16, src []byte) (any, error) {
	return e.c.Decode(oid, format, src)
}

func (e erasedCodec[T]) EncodeAny(format int16, v any, buf []byte) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	tv, ok := v.(T)
	if !ok {
		return nil, newEncodeError(e.c.Type().OID, fmt.Sprintf("%T is not %s", v, typeNameOf[T]()), nil)
	}
	return e.c.Encode(format, tv, buf)
}
