package pgtype

import (
	"encoding/binary"
	"strings"

	"github.com/jackc/pgio"
	"github.com/pkg/errors"
)

type BoundType byte

const (
	Unbounded BoundType = iota
	Inclusive
	Exclusive
)

func (bt BoundType) String() string {
	switch bt {
	case Unbounded:
		return "unbounded"
	case Inclusive:
		return "inclusive"
	case Exclusive:
		return "exclusive"
	default:
		return "invalid"
	}
}

// Bound is one end of a Range. Value is meaningless when Type is Unbounded.
type Bound[T any] struct {
	Type  BoundType
	Value T
}

func Included[T any](v T) Bound[T] {
	return Bound[T]{Type: Inclusive, Value: v}
}

func Excluded[T any](v T) Bound[T] {
	return Bound[T]{Type: Exclusive, Value: v}
}

func NoBound[T any]() Bound[T] {
	return Bound[T]{Type: Unbounded}
}

// Range is a non-empty PostgreSQL range. The zero value is unbounded in both directions.
type Range[T any] struct {
	Lower Bound[T]
	Upper Bound[T]
}

const (
	emptyMask          = 1
	lowerInclusiveMask = 2
	upperInclusiveMask = 4
	lowerUnboundedMask = 8
	upperUnboundedMask = 16
)

// RangeCodec is the codec for ranges over the element type of Element.
type RangeCodec[T any] struct {
	Element Codec[T]

	// RangeType is the range type. When nil it is the builtin range type of the element type.
	RangeType *Type
}

func (c RangeCodec[T]) Type() *Type {
	if c.RangeType != nil {
		return c.RangeType
	}
	elem := c.Element.Type()
	if t, ok := RangeTypeOf(elem.OID); ok {
		return t
	}
	return &Type{Name: elem.Name + "range", Category: RangeCategory, Elem: elem}
}

func (c RangeCodec[T]) PreferredFormat() int16 {
	return c.Element.PreferredFormat()
}

func (c RangeCodec[T]) elementOID() uint32 {
	if c.RangeType != nil && c.RangeType.Elem != nil {
		return c.RangeType.Elem.OID
	}
	return c.Element.Type().OID
}

func (c RangeCodec[T]) Decode(oid uint32, format int16, src []byte) (Range[T], error) {
	if src == nil {
		return Range[T]{}, newNotNullError[Range[T]](oid)
	}

	var r Range[T]
	var err error
	switch format {
	case BinaryFormatCode:
		r, err = c.decodeBinary(src)
	case TextFormatCode:
		r, err = c.decodeText(string(src))
	default:
		err = errUnknownFormat(format)
	}
	if err != nil {
		return Range[T]{}, newDecodeError[Range[T]](oid, format, src, err)
	}
	return r, nil
}

func (c RangeCodec[T]) decodeBinary(src []byte) (Range[T], error) {
	var r Range[T]
	if len(src) == 0 {
		return r, errShortBuffer("range flags", 1, 0)
	}

	flags := src[0]
	rp := 1

	if flags&emptyMask != 0 {
		return r, ErrEmptyRange
	}

	readBound := func(which string) (T, error) {
		var zero T
		if len(src[rp:]) < 4 {
			return zero, errShortBuffer(which+" bound length", 4, len(src[rp:]))
		}
		n := int(int32(binary.BigEndian.Uint32(src[rp:])))
		rp += 4
		if n < 0 {
			return zero, errors.Errorf("%s bound is NULL", which)
		}
		if len(src[rp:]) < n {
			return zero, errShortBuffer(which+" bound", n, len(src[rp:]))
		}
		v, err := c.Element.Decode(c.elementOID(), BinaryFormatCode, src[rp:rp+n])
		rp += n
		return v, errors.Wrapf(err, "%s bound", which)
	}

	if flags&lowerUnboundedMask == 0 {
		v, err := readBound("lower")
		if err != nil {
			return r, err
		}
		r.Lower = Bound[T]{Type: Exclusive, Value: v}
		if flags&lowerInclusiveMask != 0 {
			r.Lower.Type = Inclusive
		}
	}

	if flags&upperUnboundedMask == 0 {
		v, err := readBound("upper")
		if err != nil {
			return r, err
		}
		r.Upper = Bound[T]{Type: Exclusive, Value: v}
		if flags&upperInclusiveMask != 0 {
			r.Upper.Type = Inclusive
		}
	}

	if rp != len(src) {
		return r, errTrailingBytes(len(src) - rp)
	}
	return r, nil
}

func (c RangeCodec[T]) decodeText(src string) (Range[T], error) {
	var r Range[T]

	utr, err := parseUntypedTextRange(src)
	if err != nil {
		return r, err
	}

	elemOID := c.elementOID()
	if utr.LowerType != Unbounded {
		v, err := c.Element.Decode(elemOID, TextFormatCode, []byte(utr.Lower))
		if err != nil {
			return r, errors.Wrap(err, "lower bound")
		}
		r.Lower = Bound[T]{Type: utr.LowerType, Value: v}
	}
	if utr.UpperType != Unbounded {
		v, err := c.Element.Decode(elemOID, TextFormatCode, []byte(utr.Upper))
		if err != nil {
			return r, errors.Wrap(err, "upper bound")
		}
		r.Upper = Bound[T]{Type: utr.UpperType, Value: v}
	}
	return r, nil
}

func (c RangeCodec[T]) Encode(format int16, r Range[T], buf []byte) ([]byte, error) {
	switch format {
	case BinaryFormatCode:
		return c.encodeBinary(r, buf)
	case TextFormatCode:
		return c.encodeText(r, buf)
	default:
		return nil, errUnknownFormat(format)
	}
}

func (c RangeCodec[T]) encodeBinary(r Range[T], buf []byte) ([]byte, error) {
	var flags byte
	switch r.Lower.Type {
	case Inclusive:
		flags |= lowerInclusiveMask
	case Unbounded:
		flags |= lowerUnboundedMask
	case Exclusive:
	default:
		return nil, newEncodeError(c.Type().OID, "", errors.Errorf("unknown lower bound type %d", r.Lower.Type))
	}
	switch r.Upper.Type {
	case Inclusive:
		flags |= upperInclusiveMask
	case Unbounded:
		flags |= upperUnboundedMask
	case Exclusive:
	default:
		return nil, newEncodeError(c.Type().OID, "", errors.Errorf("unknown upper bound type %d", r.Upper.Type))
	}

	buf = append(buf, flags)

	appendBound := func(which string, v T) error {
		sp := len(buf)
		buf = pgio.AppendInt32(buf, -1)
		newBuf, err := c.Element.Encode(BinaryFormatCode, v, buf)
		if err != nil {
			return errors.Wrapf(err, "%s bound", which)
		}
		if newBuf == nil {
			return newEncodeError(c.Type().OID, which+" bound cannot be NULL", nil)
		}
		buf = newBuf
		pgio.SetInt32(buf[sp:], int32(len(buf[sp:])-4))
		return nil
	}

	if r.Lower.Type != Unbounded {
		if err := appendBound("lower", r.Lower.Value); err != nil {
			return nil, err
		}
	}
	if r.Upper.Type != Unbounded {
		if err := appendBound("upper", r.Upper.Value); err != nil {
			return nil, err
		}
	}

	return buf, nil
}

func (c RangeCodec[T]) encodeText(r Range[T], buf []byte) ([]byte, error) {
	switch r.Lower.Type {
	case Exclusive, Unbounded:
		buf = append(buf, '(')
	case Inclusive:
		buf = append(buf, '[')
	default:
		return nil, newEncodeError(c.Type().OID, "", errors.Errorf("unknown lower bound type %d", r.Lower.Type))
	}

	appendBound := func(which string, v T) error {
		elemBuf, err := c.Element.Encode(TextFormatCode, v, make([]byte, 0, 32))
		if err != nil {
			return errors.Wrapf(err, "%s bound", which)
		}
		if elemBuf == nil {
			return newEncodeError(c.Type().OID, which+" bound cannot be NULL", nil)
		}
		buf = append(buf, quoteRangeElementIfNeeded(string(elemBuf))...)
		return nil
	}

	if r.Lower.Type != Unbounded {
		if err := appendBound("lower", r.Lower.Value); err != nil {
			return nil, err
		}
	}

	buf = append(buf, ',')

	if r.Upper.Type != Unbounded {
		if err := appendBound("upper", r.Upper.Value); err != nil {
			return nil, err
		}
	}

	switch r.Upper.Type {
	case Exclusive, Unbounded:
		buf = append(buf, ')')
	case Inclusive:
		buf = append(buf, ']')
	default:
		return nil, newEncodeError(c.Type().OID, "", errors.Errorf("unknown upper bound type %d", r.Upper.Type))
	}

	return buf, nil
}

type untypedTextRange struct {
	Lower     string
	Upper     string
	LowerType BoundType
	UpperType BoundType
}

// parseUntypedTextRange parses the range text format such as "[1,10)". Bounds may be double quoted, with "" or a
// backslash escaping a quote. Whitespace around unquoted bounds is ignored and an omitted bound is unbounded.
func parseUntypedTextRange(src string) (*untypedTextRange, error) {
	s := strings.TrimSpace(src)
	if strings.EqualFold(s, "empty") {
		return nil, ErrEmptyRange
	}
	if len(s) < 3 {
		return nil, errors.Errorf("invalid range %q", src)
	}

	utr := &untypedTextRange{}

	switch s[0] {
	case '[':
		utr.LowerType = Inclusive
	case '(':
		utr.LowerType = Exclusive
	default:
		return nil, errors.Errorf("range must start with '[' or '(': %q", src)
	}
	switch s[len(s)-1] {
	case ']':
		utr.UpperType = Inclusive
	case ')':
		utr.UpperType = Exclusive
	default:
		return nil, errors.Errorf("range must end with ']' or ')': %q", src)
	}

	inner := s[1 : len(s)-1]
	pos := 0

	var present bool
	var err error
	utr.Lower, present, pos, err = parseRangeBound(inner, pos, ',')
	if err != nil {
		return nil, err
	}
	if !present {
		utr.LowerType = Unbounded
	}
	if pos >= len(inner) || inner[pos] != ',' {
		return nil, errors.Errorf("missing ',' in range %q", src)
	}
	pos++

	utr.Upper, present, pos, err = parseRangeBound(inner, pos, 0)
	if err != nil {
		return nil, err
	}
	if !present {
		utr.UpperType = Unbounded
	}
	if pos != len(inner) {
		return nil, errors.Errorf("unexpected data in range %q", src)
	}

	return utr, nil
}

// parseRangeBound reads one bound starting at pos up to stop or the end of s. A bound that is entirely absent is
// reported as not present; a quoted empty string is present.
func parseRangeBound(s string, pos int, stop byte) (value string, present bool, newPos int, err error) {
	var sb strings.Builder
	for pos < len(s) && isArraySpace(s[pos]) {
		pos++
	}

	keep := 0
	for pos < len(s) {
		ch := s[pos]
		if stop != 0 && ch == stop {
			break
		}
		switch ch {
		case '"':
			present = true
			pos++
			for {
				if pos >= len(s) {
					return "", false, pos, errors.New("unterminated quoted range bound")
				}
				ch = s[pos]
				if ch == '"' {
					if pos+1 < len(s) && s[pos+1] == '"' {
						sb.WriteByte('"')
						pos += 2
						continue
					}
					break
				}
				if ch == '\\' {
					pos++
					if pos >= len(s) {
						return "", false, pos, errors.New("unterminated quoted range bound")
					}
					ch = s[pos]
				}
				sb.WriteByte(ch)
				pos++
			}
			keep = sb.Len()
		case '\\':
			pos++
			if pos >= len(s) {
				return "", false, pos, errors.New("unexpected end of range")
			}
			sb.WriteByte(s[pos])
			keep = sb.Len()
			present = true
		default:
			sb.WriteByte(ch)
			if !isArraySpace(ch) {
				keep = sb.Len()
				present = true
			}
		}
		pos++
	}

	return sb.String()[:keep], present, pos, nil
}

func quoteRangeElementIfNeeded(src string) string {
	if src == "" || strings.ContainsAny(src, "()[],\"\\ \t\n\r\v\f") {
		return `"` + quoteArrayReplacer.Replace(src) + `"`
	}
	return src
}
