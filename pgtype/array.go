package pgtype

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jackc/pgio"
	"github.com/pkg/errors"
)

// Information on the internals of PostgreSQL arrays can be found in
// src/include/utils/array.h and src/backend/utils/adt/arrayfuncs.c. Of
// particular interest is the array_send function.

type ArrayDimension struct {
	Length     int32
	LowerBound int32
}

// Array is a possibly multi-dimensional PostgreSQL array. Elements are stored in row-major order. An empty array has
// no dimensions.
type Array[T any] struct {
	Elements []T
	Dims     []ArrayDimension
}

// NewArray returns a one-dimensional array with lower bound 1.
func NewArray[T any](elements []T) Array[T] {
	if len(elements) == 0 {
		return Array[T]{Elements: elements}
	}
	return Array[T]{Elements: elements, Dims: []ArrayDimension{{Length: int32(len(elements)), LowerBound: 1}}}
}

func (a Array[T]) NumDims() int {
	return len(a.Dims)
}

// Len returns the number of elements the dimensions describe.
func (a Array[T]) Len() int {
	return cardinality(a.Dims)
}

// Offset returns the position in Elements of the element at idx, one index per dimension using the array's lower
// bounds. It panics if idx does not address an element.
func (a Array[T]) Offset(idx ...int) int {
	if len(idx) != len(a.Dims) {
		panic(fmt.Sprintf("pgtype: %d indexes for %d dimensional array", len(idx), len(a.Dims)))
	}

	offset := 0
	stride := 1
	for k := len(a.Dims) - 1; k >= 0; k-- {
		d := a.Dims[k]
		i := idx[k] - int(d.LowerBound)
		if i < 0 || i >= int(d.Length) {
			panic(fmt.Sprintf("pgtype: index %d out of range [%d:%d] in dimension %d", idx[k], d.LowerBound, int(d.LowerBound)+int(d.Length)-1, k+1))
		}
		offset += i * stride
		stride *= int(d.Length)
	}
	return offset
}

// Index returns the element at idx. See Offset.
func (a Array[T]) Index(idx ...int) T {
	return a.Elements[a.Offset(idx...)]
}

func cardinality(dimensions []ArrayDimension) int {
	if len(dimensions) == 0 {
		return 0
	}

	elementCount := int(dimensions[0].Length)
	for _, d := range dimensions[1:] {
		elementCount *= int(d.Length)
	}

	return elementCount
}

// MaxArraySize is the largest number of elements an array may have.
const MaxArraySize = math.MaxInt32 / 4

// checkedCardinality is cardinality for dimensions that have not been validated. It fails rather than overflowing.
func checkedCardinality(dimensions []ArrayDimension) (int, error) {
	if len(dimensions) == 0 {
		return 0, nil
	}

	elementCount := int64(1)
	for i, d := range dimensions {
		if d.Length < 0 {
			return 0, errors.Errorf("invalid length %d for array dimension %d", d.Length, i+1)
		}
		elementCount *= int64(d.Length)
		if elementCount > MaxArraySize {
			return 0, errors.Errorf("array size exceeds the maximum allowed (%d)", MaxArraySize)
		}
	}

	return int(elementCount), nil
}

type ArrayHeader struct {
	ContainsNull bool
	ElementOID   uint32
	Dimensions   []ArrayDimension
}

// maxArrayDims is the server's MAXDIM.
const maxArrayDims = 6

func (dst *ArrayHeader) DecodeBinary(src []byte) (int, error) {
	if len(src) < 12 {
		return 0, errShortBuffer("array header", 12, len(src))
	}

	rp := 0

	numDims := int(int32(binary.BigEndian.Uint32(src[rp:])))
	rp += 4
	if numDims < 0 || numDims > maxArrayDims {
		return 0, errors.Errorf("invalid number of array dimensions: %d", numDims)
	}

	if numDims > 0 {
		dst.Dimensions = make([]ArrayDimension, numDims)
	} else {
		dst.Dimensions = nil
	}
	if len(src) < 12+numDims*8 {
		return 0, errShortBuffer("array dimensions", 12+numDims*8, len(src))
	}

	dst.ContainsNull = binary.BigEndian.Uint32(src[rp:]) != 0
	rp += 4

	dst.ElementOID = binary.BigEndian.Uint32(src[rp:])
	rp += 4

	for i := range dst.Dimensions {
		dst.Dimensions[i].Length = int32(binary.BigEndian.Uint32(src[rp:]))
		rp += 4

		dst.Dimensions[i].LowerBound = int32(binary.BigEndian.Uint32(src[rp:]))
		rp += 4
	}

	if _, err := checkedCardinality(dst.Dimensions); err != nil {
		return 0, err
	}

	return rp, nil
}

func (src ArrayHeader) EncodeBinary(buf []byte) []byte {
	buf = pgio.AppendInt32(buf, int32(len(src.Dimensions)))

	var containsNull int32
	if src.ContainsNull {
		containsNull = 1
	}
	buf = pgio.AppendInt32(buf, containsNull)

	buf = pgio.AppendUint32(buf, src.ElementOID)

	for i := range src.Dimensions {
		buf = pgio.AppendInt32(buf, src.Dimensions[i].Length)
		buf = pgio.AppendInt32(buf, src.Dimensions[i].LowerBound)
	}

	return buf
}

// untypedTextArray is the text format of an array split into element strings.
type untypedTextArray struct {
	Elements   []string
	Null       []bool
	Dimensions []ArrayDimension
}

type arrayTextParser struct {
	src   string
	pos   int
	delim byte

	uta       *untypedTextArray
	lengths   []int
	leafDepth int
}

// parseUntypedTextArray parses the array text format: an optional dimension decoration such as "[0:1][1:3]="
// followed by brace enclosed, delim separated elements. Elements may be double quoted; backslash escapes the next
// character. An unquoted NULL (in any case) is the SQL value NULL.
func parseUntypedTextArray(src string, delim byte) (*untypedTextArray, error) {
	p := &arrayTextParser{src: src, delim: delim, uta: &untypedTextArray{}, leafDepth: -1}

	p.skipWhitespace()

	var explicitDimensions []ArrayDimension
	if p.peek() == '[' {
		for p.peek() == '[' {
			p.pos++
			lower, err := p.parseInteger()
			if err != nil {
				return nil, err
			}
			upper := lower
			if p.peek() == ':' {
				p.pos++
				upper, err = p.parseInteger()
				if err != nil {
					return nil, err
				}
			} else {
				lower = 1
			}
			if p.next() != ']' {
				return nil, errors.Errorf("invalid array dimensions %q", src)
			}
			if upper < lower-1 {
				return nil, errors.Errorf("array upper bound %d is below lower bound %d", upper, lower)
			}
			explicitDimensions = append(explicitDimensions, ArrayDimension{LowerBound: int32(lower), Length: int32(upper - lower + 1)})
			p.skipWhitespace()
		}
		if p.next() != '=' {
			return nil, errors.Errorf("missing '=' after array dimensions in %q", src)
		}
		p.skipWhitespace()
	}

	if p.next() != '{' {
		return nil, errors.Errorf("array must start with '{': %q", src)
	}
	if err := p.parseLevel(0); err != nil {
		return nil, err
	}
	p.skipWhitespace()
	if p.pos < len(p.src) {
		return nil, errors.Errorf("unexpected data after array end: %q", p.src[p.pos:])
	}

	if len(p.uta.Elements) > 0 {
		p.uta.Dimensions = make([]ArrayDimension, len(p.lengths))
		for i, n := range p.lengths {
			p.uta.Dimensions[i] = ArrayDimension{Length: int32(n), LowerBound: 1}
		}
	}

	if explicitDimensions != nil {
		if len(explicitDimensions) != len(p.uta.Dimensions) {
			return nil, errors.Errorf("array has %d dimensions but decoration declares %d", len(p.uta.Dimensions), len(explicitDimensions))
		}
		for i := range explicitDimensions {
			if explicitDimensions[i].Length != p.uta.Dimensions[i].Length {
				return nil, errors.Errorf("array dimension %d has %d elements but decoration declares %d", i+1, p.uta.Dimensions[i].Length, explicitDimensions[i].Length)
			}
		}
		p.uta.Dimensions = explicitDimensions
	}

	return p.uta, nil
}

// parseLevel parses the contents of a brace pair at depth. The opening brace has been consumed.
func (p *arrayTextParser) parseLevel(depth int) error {
	if depth >= maxArrayDims {
		return errors.Errorf("array has more than %d dimensions", maxArrayDims)
	}

	p.skipWhitespace()
	if p.peek() == '}' {
		p.pos++
		if depth > 0 {
			return errors.New("empty sub-array")
		}
		return nil
	}

	count := 0
	for {
		p.skipWhitespace()
		if p.peek() == '{' {
			p.pos++
			if p.leafDepth != -1 && p.leafDepth <= depth {
				return errors.New("array elements and sub-arrays are mixed at the same level")
			}
			if err := p.parseLevel(depth + 1); err != nil {
				return err
			}
		} else {
			if p.leafDepth == -1 {
				p.leafDepth = depth
			} else if p.leafDepth != depth {
				return errors.New("multidimensional arrays must have sub-arrays with matching dimensions")
			}
			value, null, err := p.parseElement()
			if err != nil {
				return err
			}
			p.uta.Elements = append(p.uta.Elements, value)
			p.uta.Null = append(p.uta.Null, null)
		}
		count++

		p.skipWhitespace()
		switch c := p.next(); c {
		case p.delim:
			continue
		case '}':
		case 0:
			return errors.New("unexpected end of array")
		default:
			return errors.Errorf("unexpected %q in array", c)
		}
		break
	}

	for len(p.lengths) <= depth {
		p.lengths = append(p.lengths, -1)
	}
	if p.lengths[depth] == -1 {
		p.lengths[depth] = count
	} else if p.lengths[depth] != count {
		return errors.New("multidimensional arrays must have sub-arrays with matching dimensions")
	}
	return nil
}

func (p *arrayTextParser) parseElement() (value string, null bool, err error) {
	var sb strings.Builder

	if p.peek() == '"' {
		p.pos++
		for {
			if p.pos >= len(p.src) {
				return "", false, errors.New("unterminated quoted array element")
			}
			c := p.src[p.pos]
			p.pos++
			switch c {
			case '\\':
				if p.pos >= len(p.src) {
					return "", false, errors.New("unterminated quoted array element")
				}
				sb.WriteByte(p.src[p.pos])
				p.pos++
			case '"':
				return sb.String(), false, nil
			default:
				sb.WriteByte(c)
			}
		}
	}

	// Trailing whitespace is not part of an unquoted element but escaped whitespace is.
	keep := 0
	escaped := false
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == p.delim || c == '}' {
			break
		}
		switch c {
		case '{', '"':
			return "", false, errors.Errorf("unexpected %q in array element", c)
		case '\\':
			p.pos++
			if p.pos >= len(p.src) {
				return "", false, errors.New("unexpected end of array")
			}
			sb.WriteByte(p.src[p.pos])
			keep = sb.Len()
			escaped = true
		default:
			sb.WriteByte(c)
			if !isArraySpace(c) {
				keep = sb.Len()
			}
		}
		p.pos++
	}

	s := sb.String()[:keep]
	if s == "" {
		return "", false, errors.New("empty unquoted array element")
	}
	return s, !escaped && strings.EqualFold(s, "NULL"), nil
}

func (p *arrayTextParser) parseInteger() (int, error) {
	start := p.pos
	if p.peek() == '-' || p.peek() == '+' {
		p.pos++
	}
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	n, err := strconv.ParseInt(p.src[start:p.pos], 10, 32)
	if err != nil {
		return 0, errors.Errorf("invalid array bound %q", p.src[start:p.pos])
	}
	return int(n), nil
}

func (p *arrayTextParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *arrayTextParser) next() byte {
	c := p.peek()
	if p.pos < len(p.src) {
		p.pos++
	}
	return c
}

func (p *arrayTextParser) skipWhitespace() {
	for p.pos < len(p.src) && isArraySpace(p.src[p.pos]) {
		p.pos++
	}
}

func isArraySpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// quoteArrayElementIfNeeded returns src in the form it must take inside the text format of an array.
func quoteArrayElementIfNeeded(src string, delim byte) string {
	if src == "" || strings.EqualFold(src, "null") || arrayElementNeedsQuotes(src, delim) {
		return quoteArrayElement(src)
	}
	return src
}

func arrayElementNeedsQuotes(src string, delim byte) bool {
	for i := 0; i < len(src); i++ {
		switch c := src[i]; c {
		case '{', '}', '"', '\\':
			return true
		default:
			if c == delim || isArraySpace(c) {
				return true
			}
		}
	}
	return false
}

var quoteArrayReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quoteArrayElement(src string) string {
	return `"` + quoteArrayReplacer.Replace(src) + `"`
}
