package pgtype

import (
	"fmt"
	"reflect"
)

// PostgreSQL oids for builtin types
const (
	BoolOID                = 16
	ByteaOID               = 17
	QCharOID               = 18
	NameOID                = 19
	Int8OID                = 20
	Int2OID                = 21
	Int4OID                = 23
	TextOID                = 25
	OIDOID                 = 26
	TIDOID                 = 27
	XIDOID                 = 28
	CIDOID                 = 29
	JSONOID                = 114
	XMLOID                 = 142
	XMLArrayOID            = 143
	JSONArrayOID           = 199
	PointOID               = 600
	LsegOID                = 601
	PathOID                = 602
	BoxOID                 = 603
	PolygonOID             = 604
	LineOID                = 628
	LineArrayOID           = 629
	CIDROID                = 650
	CIDRArrayOID           = 651
	Float4OID              = 700
	Float8OID              = 701
	CircleOID              = 718
	CircleArrayOID         = 719
	UnknownOID             = 705
	Macaddr8OID            = 774
	Macaddr8ArrayOID       = 775
	MoneyOID               = 790
	MoneyArrayOID          = 791
	MacaddrOID             = 829
	InetOID                = 869
	BoolArrayOID           = 1000
	ByteaArrayOID          = 1001
	QCharArrayOID          = 1002
	NameArrayOID           = 1003
	Int2ArrayOID           = 1005
	Int4ArrayOID           = 1007
	TextArrayOID           = 1009
	TIDArrayOID            = 1010
	XIDArrayOID            = 1011
	CIDArrayOID            = 1012
	BPCharArrayOID         = 1014
	VarcharArrayOID        = 1015
	Int8ArrayOID           = 1016
	PointArrayOID          = 1017
	LsegArrayOID           = 1018
	PathArrayOID           = 1019
	BoxArrayOID            = 1020
	Float4ArrayOID         = 1021
	Float8ArrayOID         = 1022
	PolygonArrayOID        = 1027
	OIDArrayOID            = 1028
	MacaddrArrayOID        = 1040
	InetArrayOID           = 1041
	BPCharOID              = 1042
	VarcharOID             = 1043
	DateOID                = 1082
	TimeOID                = 1083
	TimestampOID           = 1114
	TimestampArrayOID      = 1115
	DateArrayOID           = 1182
	TimeArrayOID           = 1183
	TimestamptzOID         = 1184
	TimestamptzArrayOID    = 1185
	IntervalOID            = 1186
	IntervalArrayOID       = 1187
	NumericArrayOID        = 1231
	TimetzOID              = 1266
	TimetzArrayOID         = 1270
	BitOID                 = 1560
	BitArrayOID            = 1561
	VarbitOID              = 1562
	VarbitArrayOID         = 1563
	NumericOID             = 1700
	RecordOID              = 2249
	RecordArrayOID         = 2287
	UUIDOID                = 2950
	UUIDArrayOID           = 2951
	JSONBOID               = 3802
	JSONBArrayOID          = 3807
	DaterangeOID           = 3912
	DaterangeArrayOID      = 3913
	Int4rangeOID           = 3904
	Int4rangeArrayOID      = 3905
	NumrangeOID            = 3906
	NumrangeArrayOID       = 3907
	TsrangeOID             = 3908
	TsrangeArrayOID        = 3909
	TstzrangeOID           = 3910
	TstzrangeArrayOID      = 3911
	Int8rangeOID           = 3926
	Int8rangeArrayOID      = 3927
	JSONPathOID            = 4072
	JSONPathArrayOID       = 4073
	Int4multirangeOID      = 4451
	NummultirangeOID       = 4532
	TsmultirangeOID        = 4533
	TstzmultirangeOID      = 4534
	DatemultirangeOID      = 4535
	Int8multirangeOID      = 4536
	Int4multirangeArrayOID = 6150
	NummultirangeArrayOID  = 6151
	TsmultirangeArrayOID   = 6152
	TstzmultirangeArrayOID = 6153
	DatemultirangeArrayOID = 6155
	Int8multirangeArrayOID = 6157
)

const (
	TextFormatCode   = 0
	BinaryFormatCode = 1
)

type InfinityModifier int8

const (
	Infinity         InfinityModifier = 1
	Finite           InfinityModifier = 0
	NegativeInfinity InfinityModifier = -Infinity
)

func (im InfinityModifier) String() string {
	switch im {
	case Finite:
		return "finite"
	case Infinity:
		return "infinity"
	case NegativeInfinity:
		return "-infinity"
	default:
		return "invalid"
	}
}

// Codec converts between the PostgreSQL wire formats of a type and the Go type T. Implementations must be safe for
// concurrent use; all codecs in this package are stateless values.
type Codec[T any] interface {
	// Type returns the PostgreSQL type values are encoded as.
	Type() *Type

	// PreferredFormat returns the preferred format.
	PreferredFormat() int16

	// Decode decodes src into a T. oid is the type the server declared for src. A nil src is the SQL value NULL.
	// src is borrowed and must not be retained by the result.
	Decode(oid uint32, format int16, src []byte) (T, error)

	// Encode appends the format encoding of v to buf. If v is the SQL value NULL then append nothing and return
	// (nil, nil). buf must not be nil so that an empty value can be told apart from NULL.
	Encode(format int16, v T, buf []byte) (newBuf []byte, err error)
}

// Encode encodes v with c into a new buffer. A nil result is NULL.
func Encode[T any](c Codec[T], format int16, v T) ([]byte, error) {
	return c.Encode(format, v, make([]byte, 0, 32))
}

// Decode decodes src with c assuming src was declared as c's type.
func Decode[T any](c Codec[T], format int16, src []byte) (T, error) {
	return c.Decode(c.Type().OID, format, src)
}

// Value is a native value bound to the codec that knows how to encode it. It is the unit of query parameters and
// heterogeneous field lists.
type Value interface {
	// OID is the type the value is encoded as.
	OID() uint32

	PreferredFormat() int16

	// EncodeText appends the text encoding. A nil result is NULL.
	EncodeText(buf []byte) (newBuf []byte, err error)

	// EncodeBinary appends the binary encoding. A nil result is NULL.
	EncodeBinary(buf []byte) (newBuf []byte, err error)
}

type codecValue[T any] struct {
	codec Codec[T]
	v     T
}

// ValueOf binds v to c.
func ValueOf[T any](c Codec[T], v T) Value {
	return codecValue[T]{codec: c, v: v}
}

func (cv codecValue[T]) OID() uint32 {
	return cv.codec.Type().OID
}

func (cv codecValue[T]) PreferredFormat() int16 {
	return cv.codec.PreferredFormat()
}

func (cv codecValue[T]) EncodeText(buf []byte) ([]byte, error) {
	return cv.codec.Encode(TextFormatCode, cv.v, buf)
}

func (cv codecValue[T]) EncodeBinary(buf []byte) ([]byte, error) {
	return cv.codec.Encode(BinaryFormatCode, cv.v, buf)
}

func (cv codecValue[T]) String() string {
	return fmt.Sprintf("%v", cv.v)
}

// NullValue is a Value that is always NULL. The zero value has OID 0 so the server infers the type.
type NullValue struct {
	T uint32
}

func (n NullValue) OID() uint32 { return n.T }
func (NullValue) PreferredFormat() int16 { return TextFormatCode }
func (NullValue) EncodeText(buf []byte) ([]byte, error) { return nil, nil }
func (NullValue) EncodeBinary(buf []byte) ([]byte, error) { return nil, nil }
func (NullValue) String() string { return "NULL" }

// EncodeValue encodes v in format into a new buffer. A nil result is NULL.
func EncodeValue(v Value, format int16) ([]byte, error) {
	buf := make([]byte, 0, 32)
	switch format {
	case TextFormatCode:
		return v.EncodeText(buf)
	case BinaryFormatCode:
		return v.EncodeBinary(buf)
	default:
		return nil, errUnknownFormat(format)
	}
}

func errUnknownFormat(format int16) error {
	return fmt.Errorf("unknown format code %d", format)
}

func typeNameOf[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}
