package pgtype

import (
	"fmt"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// ErrEmptyRange is returned when decoding an empty range. Range has no representation for the empty range.
var ErrEmptyRange = errors.New("empty range is not supported")

const maxErrorSrcLen = 64

// DecodeError is returned when a wire value cannot be decoded into the requested Go type.
type DecodeError struct {
	OID    uint32
	Format int16
	Target string
	// Src is a copy of the offending value, truncated to 64 bytes.
	Src []byte
	Err error
}

func newDecodeError[T any](oid uint32, format int16, src []byte, err error) error {
	switch err.(type) {
	case *DecodeError, *NotNullError:
		return err
	}

	n := len(src)
	if n > maxErrorSrcLen {
		n = maxErrorSrcLen
	}
	srcCopy := make([]byte, n)
	copy(srcCopy, src)

	return &DecodeError{OID: oid, Format: format, Target: typeNameOf[T](), Src: srcCopy, Err: err}
}

func (e *DecodeError) Error() string {
	var src string
	if e.Format == TextFormatCode && utf8.Valid(e.Src) {
		src = fmt.Sprintf("%q", e.Src)
	} else {
		src = fmt.Sprintf("%x", e.Src)
	}
	return fmt.Sprintf("cannot decode %s %s value %s into %s: %v", TypeName(e.OID), formatName(e.Format), src, e.Target, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// NotNullError is returned when the SQL value NULL is decoded by a codec whose Go type cannot represent it. Use
// Nullable to accept NULL.
type NotNullError struct {
	OID    uint32
	Target string
}

func newNotNullError[T any](oid uint32) error {
	return &NotNullError{OID: oid, Target: typeNameOf[T]()}
}

func (e *NotNullError) Error() string {
	return fmt.Sprintf("cannot decode NULL %s into %s", TypeName(e.OID), e.Target)
}

// EncodeError is returned when a Go value cannot be represented in the requested type or format.
type EncodeError struct {
	OID uint32
	Msg string
	Err error
}

func newEncodeError(oid uint32, msg string, err error) error {
	switch err.(type) {
	case *EncodeError:
		return err
	}
	return &EncodeError{OID: oid, Msg: msg, Err: err}
}

func (e *EncodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("cannot encode %s: %s", TypeName(e.OID), e.Msg)
	}
	if e.Msg == "" {
		return fmt.Sprintf("cannot encode %s: %v", TypeName(e.OID), e.Err)
	}
	return fmt.Sprintf("cannot encode %s: %s: %v", TypeName(e.OID), e.Msg, e.Err)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// TextEncodingError is returned when text is not valid in the client encoding.
type TextEncodingError struct {
	// Offset is the index of the first invalid byte.
	Offset int
	Src    []byte
}

func (e *TextEncodingError) Error() string {
	return fmt.Sprintf("invalid byte sequence at offset %d", e.Offset)
}

func checkUTF8(src []byte) error {
	for i := 0; i < len(src); {
		if src[i] < utf8.RuneSelf {
			i++
			continue
		}
		r, size := utf8.DecodeRune(src[i:])
		if r == utf8.RuneError && size <= 1 {
			n := len(src) - i
			if n > maxErrorSrcLen {
				n = maxErrorSrcLen
			}
			return &TextEncodingError{Offset: i, Src: append([]byte(nil), src[i:i+n]...)}
		}
		i += size
	}
	return nil
}

func formatName(format int16) string {
	switch format {
	case TextFormatCode:
		return "text"
	case BinaryFormatCode:
		return "binary"
	default:
		return fmt.Sprintf("format %d", format)
	}
}

func errInvalidLength(typeName string, expected, actual int) error {
	return errors.Errorf("invalid length for %s: expected %d, got %d", typeName, expected, actual)
}

func errTrailingBytes(n int) error {
	return errors.Errorf("%d trailing bytes", n)
}

func errShortBuffer(what string, need, have int) error {
	return errors.Errorf("%s: need %d bytes, have %d", what, need, have)
}
