package pgcodec

import (
	"net/netip"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgcodec/pgtype"
	"github.com/pkg/errors"
)

const structTagKey = "db"

// defaultStructCodecs are the codecs StructSchema uses for field types. Pointer types are nullable.
var defaultStructCodecs = map[reflect.Type]pgtype.AnyCodec{}

// RegisterStructCodec makes StructSchema use c for fields of type T, *T, pgtype.Array[T] and pgtype.Array[*T]. It is
// meant to be called from init functions and must not be called concurrently with StructSchema.
func RegisterStructCodec[T any](c pgtype.Codec[T]) {
	defaultStructCodecs[reflect.TypeOf((*T)(nil)).Elem()] = pgtype.Erase(c)
	defaultStructCodecs[reflect.TypeOf((**T)(nil)).Elem()] = pgtype.Erase[*T](pgtype.Nullable(c))
	defaultStructCodecs[reflect.TypeOf((*pgtype.Array[T])(nil)).Elem()] = pgtype.Erase[pgtype.Array[T]](pgtype.ArrayCodec[T]{Element: c})
	defaultStructCodecs[reflect.TypeOf((*pgtype.Array[*T])(nil)).Elem()] = pgtype.Erase[pgtype.Array[*T]](pgtype.ArrayCodec[*T]{Element: pgtype.Nullable(c)})
}

func init() {
	RegisterStructCodec[bool](pgtype.BoolCodec{})
	RegisterStructCodec[int16](pgtype.Int2Codec{})
	RegisterStructCodec[int32](pgtype.Int4Codec{})
	RegisterStructCodec[int64](pgtype.Int8Codec{})
	RegisterStructCodec[float32](pgtype.Float4Codec{})
	RegisterStructCodec[float64](pgtype.Float8Codec{})
	RegisterStructCodec[string](pgtype.TextCodec{})
	RegisterStructCodec[[]byte](pgtype.ByteaCodec{})
	RegisterStructCodec[time.Time](pgtype.TimeTimestamptzCodec())
	RegisterStructCodec[pgtype.Date](pgtype.DateCodec{})
	RegisterStructCodec[pgtype.Timestamp](pgtype.TimestampCodec{})
	RegisterStructCodec[pgtype.Timestamptz](pgtype.TimestamptzCodec{})
	RegisterStructCodec[pgtype.Interval](pgtype.IntervalCodec{})
	RegisterStructCodec[pgtype.Numeric](pgtype.NumericCodec{})
	RegisterStructCodec[uuid.UUID](pgtype.UUIDCodec{})
	RegisterStructCodec[netip.Prefix](pgtype.InetCodec{})
}

// FieldCodec overrides the codec StructSchema uses for one struct field.
type FieldCodec struct {
	Field string
	Codec pgtype.AnyCodec
}

// WithFieldCodec uses c for the struct field named field.
func WithFieldCodec[F any](field string, c pgtype.Codec[F]) FieldCodec {
	return FieldCodec{Field: field, Codec: pgtype.Erase(c)}
}

type structColumn[R any] struct {
	name   string
	config columnConfig
	codec  pgtype.AnyCodec
	index  []int
}

func (c *structColumn[R]) Name() string       { return c.name }
func (c *structColumn[R]) ColumnName() string { return c.config.column }
func (c *structColumn[R]) Type() *pgtype.Type { return c.codec.Type() }
func (c *structColumn[R]) Flags() ColumnFlags { return c.config.flags }

func (c *structColumn[R]) field(r *R) reflect.Value {
	return reflect.ValueOf(r).Elem().FieldByIndex(c.index)
}

func (c *structColumn[R]) decodeInto(dst *R, f RawField) error {
	v, err := c.codec.DecodeAny(f.OID, f.Format, f.Bytes)
	if err != nil {
		return errors.Wrapf(err, "field %s", f.Name)
	}
	fv := c.field(dst)
	if v == nil {
		fv.Set(reflect.Zero(fv.Type()))
		return nil
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(fv.Type()) {
		return errors.Errorf("field %s: cannot assign %s to %s", f.Name, rv.Type(), fv.Type())
	}
	fv.Set(rv)
	return nil
}

func (c *structColumn[R]) reset(dst *R) {
	fv := c.field(dst)
	fv.Set(reflect.Zero(fv.Type()))
}

func (c *structColumn[R]) value(src *R) pgtype.Value {
	return anyValue{codec: c.codec, v: c.field(src).Interface()}
}

func (c *structColumn[R]) compositeField() pgtype.CompositeField[R] {
	return structCompositeField[R]{c: c}
}

type anyValue struct {
	codec pgtype.AnyCodec
	v     any
}

func (v anyValue) OID() uint32            { return v.codec.Type().OID }
func (v anyValue) PreferredFormat() int16 { return v.codec.PreferredFormat() }

func (v anyValue) EncodeText(buf []byte) ([]byte, error) {
	return v.codec.EncodeAny(pgtype.TextFormatCode, v.v, buf)
}

func (v anyValue) EncodeBinary(buf []byte) ([]byte, error) {
	return v.codec.EncodeAny(pgtype.BinaryFormatCode, v.v, buf)
}

type structCompositeField[R any] struct {
	c *structColumn[R]
}

func (f structCompositeField[R]) Name() string           { return f.c.config.column }
func (f structCompositeField[R]) Type() *pgtype.Type     { return f.c.codec.Type() }
func (f structCompositeField[R]) PreferredFormat() int16 { return f.c.codec.PreferredFormat() }
func (f structCompositeField[R]) Reset(dst *R)           { f.c.reset(dst) }

func (f structCompositeField[R]) DecodeInto(dst *R, oid uint32, format int16, src []byte) error {
	return f.c.decodeInto(dst, RawField{Name: f.c.config.column, OID: oid, Format: format, Bytes: src})
}

func (f structCompositeField[R]) EncodeFrom(src *R, format int16, buf []byte) ([]byte, error) {
	return f.c.codec.EncodeAny(format, f.c.field(src).Interface(), buf)
}

// StructSchema builds the schema of the struct R by reflection. Every exported field is a column. The column name
// is the field name, or the first element of the "db" struct tag. The remaining comma separated tag elements are
// flags: default, optional, virtual and pk. Fields tagged "-" are ignored. Embedded structs contribute their fields.
//
// Field types with a builtin codec are bool, int16, int32, int64, float32, float64, string, []byte, time.Time,
// uuid.UUID, netip.Prefix and the pgtype Date, Timestamp, Timestamptz, Interval and Numeric types, pointers to any of
// them for nullable columns, and pgtype.Array of any of them. Other types need a FieldCodec.
func StructSchema[R any](name string, codecs ...FieldCodec) (*Schema[R], error) {
	rt := reflect.TypeOf((*R)(nil)).Elem()
	if rt.Kind() != reflect.Struct {
		return nil, errors.Errorf("%s is not a struct", rt)
	}

	overrides := make(map[string]pgtype.AnyCodec, len(codecs))
	for _, fc := range codecs {
		overrides[fc.Field] = fc.Codec
	}

	columns, err := appendStructColumns[R](nil, rt, nil, overrides)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}

	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if _, present := seen[c.Name()]; present {
			return nil, errors.Errorf("%s: duplicate field %s", name, c.Name())
		}
		seen[c.Name()] = struct{}{}
	}

	return NewSchema(name, columns...), nil
}

// MustStructSchema is like StructSchema but panics on error.
func MustStructSchema[R any](name string, codecs ...FieldCodec) *Schema[R] {
	s, err := StructSchema[R](name, codecs...)
	if err != nil {
		panic(err)
	}
	return s
}

func appendStructColumns[R any](columns []Column[R], rt reflect.Type, index []int, overrides map[string]pgtype.AnyCodec) ([]Column[R], error) {
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if sf.PkgPath != "" && !sf.Anonymous {
			continue
		}

		fieldIndex := append(append([]int(nil), index...), i)

		dbTag, dbTagPresent := sf.Tag.Lookup(structTagKey)
		if dbTag == "-" {
			continue
		}

		// Handle anonymous struct embedding, but do not try to handle embedded pointers.
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct && !dbTagPresent {
			var err error
			columns, err = appendStructColumns[R](columns, sf.Type, fieldIndex, overrides)
			if err != nil {
				return nil, err
			}
			continue
		}
		if sf.PkgPath != "" {
			continue
		}

		c := &structColumn[R]{name: sf.Name, index: fieldIndex}
		tagName, tagFlags, _ := strings.Cut(dbTag, ",")
		c.config.column = tagName
		if c.config.column == "" {
			c.config.column = sf.Name
		}
		if tagFlags != "" {
			for _, flag := range strings.Split(tagFlags, ",") {
				switch strings.TrimSpace(flag) {
				case "default":
					c.config.flags |= DefaultIfMissing
				case "optional":
					c.config.flags |= Optional
				case "virtual":
					c.config.flags |= Virtual
				case "pk":
					c.config.flags |= PrimaryKey
				default:
					return nil, errors.Errorf("field %s: unknown db tag option %q", sf.Name, flag)
				}
			}
		}

		var ok bool
		c.codec, ok = overrides[sf.Name]
		if !ok {
			c.codec, ok = defaultStructCodecs[sf.Type]
		}
		if !ok {
			return nil, errors.Errorf("field %s: no codec for %s", sf.Name, sf.Type)
		}

		columns = append(columns, c)
	}

	return columns, nil
}
