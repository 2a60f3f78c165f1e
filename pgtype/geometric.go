package pgtype

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/jackc/pgio"
	"github.com/pkg/errors"
)

type Point struct {
	X, Y float64
}

// Line is the infinite line Ax + By + C = 0.
type Line struct {
	A, B, C float64
}

// Lseg is a line segment between two points.
type Lseg struct {
	P [2]Point
}

// Box is a rectangle given by two opposite corners. The server stores the upper right corner first.
type Box struct {
	P [2]Point
}

type Path struct {
	P      []Point
	Closed bool
}

type Polygon struct {
	P []Point
}

type Circle struct {
	P Point
	R float64
}

// geometricFloats returns every number in s. Parentheses, brackets, braces, angle brackets, commas and whitespace
// all separate numbers, so the punctuation of each geometric text format is checked by the caller only where it
// carries meaning.
func geometricFloats(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case '(', ')', '[', ']', '{', '}', '<', '>', ',', ' ', '\t', '\n', '\r':
			return true
		}
		return false
	})
	fs := make([]float64, len(fields))
	for i, f := range fields {
		v, err := parseFloat(f, 64)
		if err != nil {
			return nil, errors.Errorf("invalid number %q", f)
		}
		fs[i] = v
	}
	return fs, nil
}

func geometricFloatsN(s string, n int, name string) ([]float64, error) {
	fs, err := geometricFloats(s)
	if err != nil {
		return nil, err
	}
	if len(fs) != n {
		return nil, errors.Errorf("invalid %s %q: expected %d numbers, got %d", name, s, n, len(fs))
	}
	return fs, nil
}

func pointsFromFloats(fs []float64) []Point {
	ps := make([]Point, len(fs)/2)
	for i := range ps {
		ps[i] = Point{X: fs[2*i], Y: fs[2*i+1]}
	}
	return ps
}

func decodeFloat8s(src []byte, n int, name string) ([]float64, error) {
	if len(src) != 8*n {
		return nil, errInvalidLength(name, 8*n, len(src))
	}
	fs := make([]float64, n)
	for i := range fs {
		fs[i] = math.Float64frombits(binary.BigEndian.Uint64(src[8*i:]))
	}
	return fs, nil
}

func appendFloat8s(buf []byte, fs ...float64) []byte {
	for _, f := range fs {
		buf = pgio.AppendUint64(buf, math.Float64bits(f))
	}
	return buf
}

func appendGeometricFloat(buf []byte, f float64) []byte {
	return strconv.AppendFloat(buf, f, 'f', -1, 64)
}

func appendPoint(buf []byte, p Point) []byte {
	buf = append(buf, '(')
	buf = appendGeometricFloat(buf, p.X)
	buf = append(buf, ',')
	buf = appendGeometricFloat(buf, p.Y)
	return append(buf, ')')
}

func appendPoints(buf []byte, ps []Point) []byte {
	for i, p := range ps {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = appendPoint(buf, p)
	}
	return buf
}

// geometricCodec implements Codec for a geometric type given its binary and text conversions.
type geometricCodec[T any] struct {
	oid          uint32
	decodeBinary func(src []byte) (T, error)
	decodeText   func(s string) (T, error)
	appendBinary func(buf []byte, v T) []byte
	appendText   func(buf []byte, v T) []byte
}

func (c geometricCodec[T]) Type() *Type {
	return builtinType(c.oid)
}

func (geometricCodec[T]) PreferredFormat() int16 {
	return BinaryFormatCode
}

func (c geometricCodec[T]) Decode(oid uint32, format int16, src []byte) (T, error) {
	var v T
	if src == nil {
		return v, newNotNullError[T](oid)
	}

	var err error
	switch format {
	case BinaryFormatCode:
		v, err = c.decodeBinary(src)
	case TextFormatCode:
		v, err = c.decodeText(string(src))
	default:
		err = errUnknownFormat(format)
	}
	if err != nil {
		return v, newDecodeError[T](oid, format, src, err)
	}
	return v, nil
}

func (c geometricCodec[T]) Encode(format int16, v T, buf []byte) ([]byte, error) {
	switch format {
	case BinaryFormatCode:
		return c.appendBinary(buf, v), nil
	case TextFormatCode:
		return c.appendText(buf, v), nil
	default:
		return nil, errUnknownFormat(format)
	}
}

// PointCodec returns the codec for point. The text format is "(x,y)".
func PointCodec() Codec[Point] {
	return geometricCodec[Point]{
		oid: PointOID,
		decodeBinary: func(src []byte) (Point, error) {
			fs, err := decodeFloat8s(src, 2, "point")
			if err != nil {
				return Point{}, err
			}
			return Point{X: fs[0], Y: fs[1]}, nil
		},
		decodeText: func(s string) (Point, error) {
			fs, err := geometricFloatsN(s, 2, "point")
			if err != nil {
				return Point{}, err
			}
			return Point{X: fs[0], Y: fs[1]}, nil
		},
		appendBinary: func(buf []byte, v Point) []byte {
			return appendFloat8s(buf, v.X, v.Y)
		},
		appendText: appendPoint,
	}
}

// LineCodec returns the codec for line. The text format is "{A,B,C}".
func LineCodec() Codec[Line] {
	fromFloats := func(fs []float64) Line {
		return Line{A: fs[0], B: fs[1], C: fs[2]}
	}
	return geometricCodec[Line]{
		oid: LineOID,
		decodeBinary: func(src []byte) (Line, error) {
			fs, err := decodeFloat8s(src, 3, "line")
			if err != nil {
				return Line{}, err
			}
			return fromFloats(fs), nil
		},
		decodeText: func(s string) (Line, error) {
			fs, err := geometricFloatsN(s, 3, "line")
			if err != nil {
				return Line{}, err
			}
			return fromFloats(fs), nil
		},
		appendBinary: func(buf []byte, v Line) []byte {
			return appendFloat8s(buf, v.A, v.B, v.C)
		},
		appendText: func(buf []byte, v Line) []byte {
			buf = append(buf, '{')
			buf = appendGeometricFloat(buf, v.A)
			buf = append(buf, ',')
			buf = appendGeometricFloat(buf, v.B)
			buf = append(buf, ',')
			buf = appendGeometricFloat(buf, v.C)
			return append(buf, '}')
		},
	}
}

func twoPoints(fs []float64) [2]Point {
	return [2]Point{{X: fs[0], Y: fs[1]}, {X: fs[2], Y: fs[3]}}
}

// LsegCodec returns the codec for lseg. The text format is "[(x1,y1),(x2,y2)]".
func LsegCodec() Codec[Lseg] {
	return geometricCodec[Lseg]{
		oid: LsegOID,
		decodeBinary: func(src []byte) (Lseg, error) {
			fs, err := decodeFloat8s(src, 4, "lseg")
			if err != nil {
				return Lseg{}, err
			}
			return Lseg{P: twoPoints(fs)}, nil
		},
		decodeText: func(s string) (Lseg, error) {
			fs, err := geometricFloatsN(s, 4, "lseg")
			if err != nil {
				return Lseg{}, err
			}
			return Lseg{P: twoPoints(fs)}, nil
		},
		appendBinary: func(buf []byte, v Lseg) []byte {
			return appendFloat8s(buf, v.P[0].X, v.P[0].Y, v.P[1].X, v.P[1].Y)
		},
		appendText: func(buf []byte, v Lseg) []byte {
			buf = append(buf, '[')
			buf = appendPoints(buf, v.P[:])
			return append(buf, ']')
		},
	}
}

// BoxCodec returns the codec for box. The text format is "(x1,y1),(x2,y2)".
func BoxCodec() Codec[Box] {
	return geometricCodec[Box]{
		oid: BoxOID,
		decodeBinary: func(src []byte) (Box, error) {
			fs, err := decodeFloat8s(src, 4, "box")
			if err != nil {
				return Box{}, err
			}
			return Box{P: twoPoints(fs)}, nil
		},
		decodeText: func(s string) (Box, error) {
			fs, err := geometricFloatsN(s, 4, "box")
			if err != nil {
				return Box{}, err
			}
			return Box{P: twoPoints(fs)}, nil
		},
		appendBinary: func(buf []byte, v Box) []byte {
			return appendFloat8s(buf, v.P[0].X, v.P[0].Y, v.P[1].X, v.P[1].Y)
		},
		appendText: func(buf []byte, v Box) []byte {
			return appendPoints(buf, v.P[:])
		},
	}
}

func decodePointList(src []byte, name string) ([]Point, error) {
	if len(src) < 4 {
		return nil, errShortBuffer(name+" point count", 4, len(src))
	}
	n := int(int32(binary.BigEndian.Uint32(src)))
	if n < 0 || len(src)-4 != 16*n {
		return nil, errors.Errorf("invalid %s: %d points in %d bytes", name, n, len(src)-4)
	}
	fs, err := decodeFloat8s(src[4:], 2*n, name)
	if err != nil {
		return nil, err
	}
	return pointsFromFloats(fs), nil
}

func appendPointList(buf []byte, ps []Point) []byte {
	buf = pgio.AppendInt32(buf, int32(len(ps)))
	for _, p := range ps {
		buf = appendFloat8s(buf, p.X, p.Y)
	}
	return buf
}

func parsePointList(s, name string) ([]Point, error) {
	fs, err := geometricFloats(s)
	if err != nil {
		return nil, err
	}
	if len(fs)%2 != 0 {
		return nil, errors.Errorf("invalid %s %q: odd number of coordinates", name, s)
	}
	return pointsFromFloats(fs), nil
}

// PathCodec returns the codec for path. The text format is "[(x1,y1),...]" for an open path and "((x1,y1),...)"
// for a closed one.
func PathCodec() Codec[Path] {
	return geometricCodec[Path]{
		oid: PathOID,
		decodeBinary: func(src []byte) (Path, error) {
			if len(src) < 1 {
				return Path{}, errShortBuffer("path closed flag", 1, 0)
			}
			ps, err := decodePointList(src[1:], "path")
			if err != nil {
				return Path{}, err
			}
			return Path{P: ps, Closed: src[0] == 1}, nil
		},
		decodeText: func(s string) (Path, error) {
			s = strings.TrimSpace(s)
			if s == "" {
				return Path{}, errors.New("invalid path: empty")
			}
			ps, err := parsePointList(s, "path")
			if err != nil {
				return Path{}, err
			}
			return Path{P: ps, Closed: s[0] != '['}, nil
		},
		appendBinary: func(buf []byte, v Path) []byte {
			closed := byte(0)
			if v.Closed {
				closed = 1
			}
			buf = append(buf, closed)
			return appendPointList(buf, v.P)
		},
		appendText: func(buf []byte, v Path) []byte {
			lb, rb := byte('('), byte(')')
			if !v.Closed {
				lb, rb = '[', ']'
			}
			buf = append(buf, lb)
			buf = appendPoints(buf, v.P)
			return append(buf, rb)
		},
	}
}

// PolygonCodec returns the codec for polygon. The text format is "((x1,y1),...)".
func PolygonCodec() Codec[Polygon] {
	return geometricCodec[Polygon]{
		oid: PolygonOID,
		decodeBinary: func(src []byte) (Polygon, error) {
			ps, err := decodePointList(src, "polygon")
			if err != nil {
				return Polygon{}, err
			}
			return Polygon{P: ps}, nil
		},
		decodeText: func(s string) (Polygon, error) {
			ps, err := parsePointList(s, "polygon")
			if err != nil {
				return Polygon{}, err
			}
			return Polygon{P: ps}, nil
		},
		appendBinary: func(buf []byte, v Polygon) []byte {
			return appendPointList(buf, v.P)
		},
		appendText: func(buf []byte, v Polygon) []byte {
			buf = append(buf, '(')
			buf = appendPoints(buf, v.P)
			return append(buf, ')')
		},
	}
}

// CircleCodec returns the codec for circle. The text format is "<(x,y),r>".
func CircleCodec() Codec[Circle] {
	fromFloats := func(fs []float64) Circle {
		return Circle{P: Point{X: fs[0], Y: fs[1]}, R: fs[2]}
	}
	return geometricCodec[Circle]{
		oid: CircleOID,
		decodeBinary: func(src []byte) (Circle, error) {
			fs, err := decodeFloat8s(src, 3, "circle")
			if err != nil {
				return Circle{}, err
			}
			return fromFloats(fs), nil
		},
		decodeText: func(s string) (Circle, error) {
			fs, err := geometricFloatsN(s, 3, "circle")
			if err != nil {
				return Circle{}, err
			}
			return fromFloats(fs), nil
		},
		appendBinary: func(buf []byte, v Circle) []byte {
			return appendFloat8s(buf, v.P.X, v.P.Y, v.R)
		},
		appendText: func(buf []byte, v Circle) []byte {
			buf = append(buf, '<')
			buf = appendPoint(buf, v.P)
			buf = append(buf, ',')
			buf = appendGeometricFloat(buf, v.R)
			return append(buf, '>')
		},
	}
}
