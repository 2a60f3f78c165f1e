package pgtype

import (
	"encoding/binary"
	"strconv"

	"github.com/jackc/pgio"
	"github.com/pkg/errors"
)

// ArrayCodec is the codec for arrays of any element type. Element is used for every element; NULL elements require
// a nullable element codec.
type ArrayCodec[T any] struct {
	Element Codec[T]

	// ArrayType is the array type. When nil it is the builtin array type of the element type.
	ArrayType *Type
}

func (c ArrayCodec[T]) Type() *Type {
	if c.ArrayType != nil {
		return c.ArrayType
	}
	elem := c.Element.Type()
	if t, ok := ArrayTypeOf(elem.OID); ok {
		return t
	}
	return &Type{Name: "_" + elem.Name, Category: ArrayCategory, Elem: elem}
}

func (c ArrayCodec[T]) PreferredFormat() int16 {
	return c.Element.PreferredFormat()
}

func (c ArrayCodec[T]) elementType() *Type {
	if c.ArrayType != nil && c.ArrayType.Elem != nil {
		return c.ArrayType.Elem
	}
	return c.Element.Type()
}

func (c ArrayCodec[T]) Decode(oid uint32, format int16, src []byte) (Array[T], error) {
	if src == nil {
		return Array[T]{}, newNotNullError[Array[T]](oid)
	}

	var a Array[T]
	var err error
	switch format {
	case BinaryFormatCode:
		a, err = c.decodeBinary(src)
	case TextFormatCode:
		a, err = c.decodeText(string(src))
	default:
		err = errUnknownFormat(format)
	}
	if err != nil {
		return Array[T]{}, newDecodeError[Array[T]](oid, format, src, err)
	}
	return a, nil
}

func (c ArrayCodec[T]) decodeBinary(src []byte) (Array[T], error) {
	var arrayHeader ArrayHeader
	rp, err := arrayHeader.DecodeBinary(src)
	if err != nil {
		return Array[T]{}, err
	}

	elementCount, err := checkedCardinality(arrayHeader.Dimensions)
	if err != nil {
		return Array[T]{}, err
	}
	if elementCount > (len(src)-rp)/4 {
		return Array[T]{}, errors.Errorf("array declares %d elements but has only %d bytes of data", elementCount, len(src)-rp)
	}

	a := Array[T]{Dims: arrayHeader.Dimensions, Elements: make([]T, elementCount)}
	for i := 0; i < elementCount; i++ {
		if len(src[rp:]) < 4 {
			return Array[T]{}, errShortBuffer("array element length", 4, len(src[rp:]))
		}
		elemLen := int(int32(binary.BigEndian.Uint32(src[rp:])))
		rp += 4

		var elemSrc []byte
		if elemLen >= 0 {
			if len(src[rp:]) < elemLen {
				return Array[T]{}, errShortBuffer("array element", elemLen, len(src[rp:]))
			}
			elemSrc = src[rp : rp+elemLen]
			rp += elemLen
		}

		a.Elements[i], err = c.Element.Decode(arrayHeader.ElementOID, BinaryFormatCode, elemSrc)
		if err != nil {
			return Array[T]{}, errors.Wrapf(err, "array element %d", i)
		}
	}

	if rp != len(src) {
		return Array[T]{}, errTrailingBytes(len(src) - rp)
	}

	return a, nil
}

func (c ArrayCodec[T]) decodeText(src string) (Array[T], error) {
	elemType := c.elementType()
	uta, err := parseUntypedTextArray(src, elemType.delimiter())
	if err != nil {
		return Array[T]{}, err
	}

	a := Array[T]{Dims: uta.Dimensions, Elements: make([]T, len(uta.Elements))}
	for i, s := range uta.Elements {
		var elemSrc []byte
		if !uta.Null[i] {
			elemSrc = []byte(s)
		}
		a.Elements[i], err = c.Element.Decode(elemType.OID, TextFormatCode, elemSrc)
		if err != nil {
			return Array[T]{}, errors.Wrapf(err, "array element %d", i)
		}
	}

	return a, nil
}

func (c ArrayCodec[T]) Encode(format int16, a Array[T], buf []byte) ([]byte, error) {
	elementCount, err := checkedCardinality(a.Dims)
	if err != nil {
		return nil, newEncodeError(c.Type().OID, "", err)
	}
	if len(a.Elements) != elementCount {
		return nil, newEncodeError(c.Type().OID, "", errors.Errorf("array has %d elements but dimensions describe %d", len(a.Elements), elementCount))
	}

	switch format {
	case BinaryFormatCode:
		return c.encodeBinary(a, buf)
	case TextFormatCode:
		return c.encodeText(a, buf)
	default:
		return nil, errUnknownFormat(format)
	}
}

func (c ArrayCodec[T]) encodeBinary(a Array[T], buf []byte) ([]byte, error) {
	arrayHeader := ArrayHeader{
		ElementOID: c.elementType().OID,
		Dimensions: a.Dims,
	}

	containsNullIndex := len(buf) + 4

	buf = arrayHeader.EncodeBinary(buf)

	for i := range a.Elements {
		sp := len(buf)
		buf = pgio.AppendInt32(buf, -1)

		elemBuf, err := c.Element.Encode(BinaryFormatCode, a.Elements[i], buf)
		if err != nil {
			return nil, errors.Wrapf(err, "array element %d", i)
		}
		if elemBuf == nil {
			pgio.SetInt32(buf[containsNullIndex:], 1)
		} else {
			buf = elemBuf
			pgio.SetInt32(buf[sp:], int32(len(buf[sp:])-4))
		}
	}

	return buf, nil
}

func (c ArrayCodec[T]) encodeText(a Array[T], buf []byte) ([]byte, error) {
	elementCount := len(a.Elements)
	if elementCount == 0 {
		return append(buf, '{', '}'), nil
	}

	for _, d := range a.Dims {
		if d.LowerBound != 1 {
			for _, d := range a.Dims {
				buf = append(buf, '[')
				buf = strconv.AppendInt(buf, int64(d.LowerBound), 10)
				buf = append(buf, ':')
				buf = strconv.AppendInt(buf, int64(d.LowerBound)+int64(d.Length)-1, 10)
				buf = append(buf, ']')
			}
			buf = append(buf, '=')
			break
		}
	}

	delim := c.elementType().delimiter()

	// dimElemCounts is the multiples of elements that each array lies on. For
	// example, a single dimension array of length 4 would have a dimElemCounts of
	// [4]. A multi-dimensional array of lengths [3,5,2] would have a
	// dimElemCounts of [30,10,2]. This is used to simplify when to render a '{'
	// or '}'.
	dimElemCounts := make([]int, len(a.Dims))
	dimElemCounts[len(a.Dims)-1] = int(a.Dims[len(a.Dims)-1].Length)
	for i := len(a.Dims) - 2; i > -1; i-- {
		dimElemCounts[i] = int(a.Dims[i].Length) * dimElemCounts[i+1]
	}

	inElemBuf := make([]byte, 0, 32)
	for i := 0; i < elementCount; i++ {
		if i > 0 {
			buf = append(buf, delim)
		}

		for _, dec := range dimElemCounts {
			if i%dec == 0 {
				buf = append(buf, '{')
			}
		}

		elemBuf, err := c.Element.Encode(TextFormatCode, a.Elements[i], inElemBuf)
		if err != nil {
			return nil, errors.Wrapf(err, "array element %d", i)
		}
		if elemBuf == nil {
			buf = append(buf, `NULL`...)
		} else {
			buf = append(buf, quoteArrayElementIfNeeded(string(elemBuf), delim)...)
		}

		for _, dec := range dimElemCounts {
			if (i+1)%dec == 0 {
				buf = append(buf, '}')
			}
		}
	}

	return buf, nil
}
