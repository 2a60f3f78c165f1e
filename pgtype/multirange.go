package pgtype

import (
	"encoding/binary"

	"github.com/jackc/pgio"
	"github.com/pkg/errors"
)

// Multirange is an ordered list of non-empty ranges.
type Multirange[T any] []Range[T]

// MultirangeCodec is the codec for multiranges over the element type of Element.
type MultirangeCodec[T any] struct {
	Element Codec[T]

	// MultirangeType is the multirange type. Its Elem must be the range type. When nil it is the builtin multirange
	// type of the element type.
	MultirangeType *Type
}

func (c MultirangeCodec[T]) rangeCodec() RangeCodec[T] {
	if c.MultirangeType != nil {
		return RangeCodec[T]{Element: c.Element, RangeType: c.MultirangeType.Elem}
	}
	return RangeCodec[T]{Element: c.Element}
}

func (c MultirangeCodec[T]) Type() *Type {
	if c.MultirangeType != nil {
		return c.MultirangeType
	}
	rt := c.rangeCodec().Type()
	if t, ok := MultirangeTypeOf(rt.OID); ok {
		return t
	}
	return &Type{Name: rt.Name + "_multirange", Category: MultirangeCategory, Elem: rt}
}

func (c MultirangeCodec[T]) PreferredFormat() int16 {
	return c.Element.PreferredFormat()
}

func (c MultirangeCodec[T]) Decode(oid uint32, format int16, src []byte) (Multirange[T], error) {
	if src == nil {
		return nil, newNotNullError[Multirange[T]](oid)
	}

	var mr Multirange[T]
	var err error
	switch format {
	case BinaryFormatCode:
		mr, err = c.decodeBinary(src)
	case TextFormatCode:
		mr, err = c.decodeText(string(src))
	default:
		err = errUnknownFormat(format)
	}
	if err != nil {
		return nil, newDecodeError[Multirange[T]](oid, format, src, err)
	}
	return mr, nil
}

func (c MultirangeCodec[T]) decodeBinary(src []byte) (Multirange[T], error) {
	if len(src) < 4 {
		return nil, errShortBuffer("multirange count", 4, len(src))
	}
	count := int(int32(binary.BigEndian.Uint32(src)))
	rp := 4
	if count < 0 || count > (len(src)-rp)/5 {
		return nil, errors.Errorf("invalid multirange count %d", count)
	}

	rc := c.rangeCodec()
	mr := make(Multirange[T], 0, count)
	for i := 0; i < count; i++ {
		if len(src[rp:]) < 4 {
			return nil, errShortBuffer("range length", 4, len(src[rp:]))
		}
		n := int(int32(binary.BigEndian.Uint32(src[rp:])))
		rp += 4
		if n < 0 || len(src[rp:]) < n {
			return nil, errors.Errorf("invalid range length %d", n)
		}
		r, err := rc.decodeBinary(src[rp : rp+n])
		if err != nil {
			return nil, errors.Wrapf(err, "range %d", i)
		}
		mr = append(mr, r)
		rp += n
	}

	if rp != len(src) {
		return nil, errTrailingBytes(len(src) - rp)
	}
	return mr, nil
}

// decodeText splits "{[1,3),[5,7)}" into ranges and decodes each with the range text decoder.
func (c MultirangeCodec[T]) decodeText(src string) (Multirange[T], error) {
	rc := c.rangeCodec()
	mr := Multirange[T]{}

	pos := 0
	skip := func() {
		for pos < len(src) && isArraySpace(src[pos]) {
			pos++
		}
	}

	skip()
	if pos >= len(src) || src[pos] != '{' {
		return nil, errors.New("multirange must start with '{'")
	}
	pos++
	skip()
	if pos < len(src) && src[pos] == '}' {
		pos++
		skip()
		if pos != len(src) {
			return nil, errors.New("unexpected data after multirange end")
		}
		return mr, nil
	}

	for {
		skip()
		start := pos
		if pos >= len(src) || (src[pos] != '[' && src[pos] != '(') {
			return nil, errors.Errorf("range must start with '[' or '(' at offset %d", pos)
		}
		pos++

		inQuotes := false
		for ; pos < len(src); pos++ {
			ch := src[pos]
			if ch == '\\' {
				pos++
				continue
			}
			if ch == '"' {
				inQuotes = !inQuotes
				continue
			}
			if !inQuotes && (ch == ']' || ch == ')') {
				break
			}
		}
		if pos >= len(src) {
			return nil, errors.New("unterminated range in multirange")
		}
		pos++

		r, err := rc.decodeText(src[start:pos])
		if err != nil {
			return nil, errors.Wrapf(err, "range %d", len(mr))
		}
		mr = append(mr, r)

		skip()
		if pos >= len(src) {
			return nil, errors.New("multirange must end with '}'")
		}
		switch src[pos] {
		case ',':
			pos++
			continue
		case '}':
			pos++
			skip()
			if pos != len(src) {
				return nil, errors.New("unexpected data after multirange end")
			}
			return mr, nil
		default:
			return nil, errors.Errorf("unexpected %q in multirange", src[pos])
		}
	}
}

func (c MultirangeCodec[T]) Encode(format int16, mr Multirange[T], buf []byte) ([]byte, error) {
	rc := c.rangeCodec()

	switch format {
	case BinaryFormatCode:
		buf = pgio.AppendInt32(buf, int32(len(mr)))
		for i, r := range mr {
			sp := len(buf)
			buf = pgio.AppendInt32(buf, 0)
			newBuf, err := rc.encodeBinary(r, buf)
			if err != nil {
				return nil, errors.Wrapf(err, "range %d", i)
			}
			buf = newBuf
			pgio.SetInt32(buf[sp:], int32(len(buf[sp:])-4))
		}
		return buf, nil
	case TextFormatCode:
		buf = append(buf, '{')
		for i, r := range mr {
			if i > 0 {
				buf = append(buf, ',')
			}
			newBuf, err := rc.encodeText(r, buf)
			if err != nil {
				return nil, errors.Wrapf(err, "range %d", i)
			}
			buf = newBuf
		}
		return append(buf, '}'), nil
	default:
		return nil, errUnknownFormat(format)
	}
}
