package pgcodec

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgcodec/pgtype"
	"github.com/pkg/errors"
)

// Column is one field of a record type R mapped to a result column. Columns are created with Col or StructSchema.
type Column[R any] interface {
	// Name is the name of the field. It is used by EncodeField and CheckPrimaryKey.
	Name() string

	// ColumnName is the name of the result column the field is read from. It defaults to Name.
	ColumnName() string

	Type() *pgtype.Type
	Flags() ColumnFlags

	decodeInto(dst *R, f RawField) error
	reset(dst *R)
	value(src *R) pgtype.Value
	compositeField() pgtype.CompositeField[R]
}

// ColumnFlags describe how a column is read and written.
type ColumnFlags uint8

const (
	// DefaultIfMissing sets the field to its zero value when the column is not in the row.
	DefaultIfMissing ColumnFlags = 1 << iota

	// Optional leaves the field untouched when the column is not in the row.
	Optional

	// Virtual columns are read but never written. They are excluded from StoredValues and EncodeField.
	Virtual

	// PrimaryKey columns identify a record. See PrimaryKeyValues.
	PrimaryKey
)

func (f ColumnFlags) Has(flag ColumnFlags) bool {
	return f&flag == flag
}

func (f ColumnFlags) String() string {
	var names []string
	for _, n := range []struct {
		flag ColumnFlags
		name string
	}{
		{DefaultIfMissing, "default"},
		{Optional, "optional"},
		{Virtual, "virtual"},
		{PrimaryKey, "pk"},
	} {
		if f.Has(n.flag) {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, ",")
}

// ColumnOption configures a column created by Col. ColumnFlags are options.
type ColumnOption interface {
	apply(*columnConfig)
}

type columnConfig struct {
	column string
	flags  ColumnFlags
}

func (f ColumnFlags) apply(cc *columnConfig) {
	cc.flags |= f
}

type columnNameOption string

func (n columnNameOption) apply(cc *columnConfig) {
	cc.column = string(n)
}

// ColumnName reads the field from the named column instead of the column with the field's name.
func ColumnName(name string) ColumnOption {
	return columnNameOption(name)
}

type column[R, F any] struct {
	name   string
	config columnConfig
	codec  pgtype.Codec[F]
	field  func(*R) *F
}

// Col maps the field of R returned by field to a column. codec decodes the column and encodes the field for writes.
func Col[R, F any](name string, codec pgtype.Codec[F], field func(*R) *F, opts ...ColumnOption) Column[R] {
	c := &column[R, F]{name: name, codec: codec, field: field}
	for _, o := range opts {
		o.apply(&c.config)
	}
	if c.config.column == "" {
		c.config.column = name
	}
	return c
}

func (c *column[R, F]) Name() string       { return c.name }
func (c *column[R, F]) ColumnName() string { return c.config.column }
func (c *column[R, F]) Type() *pgtype.Type { return c.codec.Type() }
func (c *column[R, F]) Flags() ColumnFlags { return c.config.flags }

func (c *column[R, F]) decodeInto(dst *R, f RawField) error {
	v, err := DecodeField(f, c.codec)
	if err != nil {
		return err
	}
	*c.field(dst) = v
	return nil
}

func (c *column[R, F]) reset(dst *R) {
	var zero F
	*c.field(dst) = zero
}

func (c *column[R, F]) value(src *R) pgtype.Value {
	return pgtype.ValueOf(c.codec, *c.field(src))
}

func (c *column[R, F]) compositeField() pgtype.CompositeField[R] {
	return pgtype.Field(c.config.column, c.codec, c.field)
}

// MissingFieldError is returned when a row lacks the column of a field that is neither optional nor defaulted.
type MissingFieldError struct {
	Schema string
	Field  string
	Column string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: cannot find column %s for field %s in row", e.Schema, e.Column, e.Field)
}

// Schema describes how a record type R is read from rows and written as parameters. A Schema is immutable and safe
// for concurrent use.
type Schema[R any] struct {
	name    string
	columns []Column[R]
	byName  map[string]int
	pk      []int
}

// NewSchema returns the schema of the record type name. It panics if two columns have the same field name.
func NewSchema[R any](name string, columns ...Column[R]) *Schema[R] {
	s := &Schema[R]{
		name:    name,
		columns: columns,
		byName:  make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if _, present := s.byName[c.Name()]; present {
			panic(fmt.Sprintf("%s: duplicate field %s", name, c.Name()))
		}
		s.byName[c.Name()] = i
		if c.Flags().Has(PrimaryKey) {
			s.pk = append(s.pk, i)
		}
	}
	return s
}

func (s *Schema[R]) Name() string {
	return s.name
}

// Columns returns the columns in declaration order.
func (s *Schema[R]) Columns() []Column[R] {
	return s.columns
}

// Column returns the column of the named field.
func (s *Schema[R]) Column(name string) (Column[R], bool) {
	i, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return s.columns[i], true
}

// resolve finds the position of every column in rs. Missing columns are -1.
func (s *Schema[R]) resolve(rs RawResultSet) ([]int, error) {
	positions := make([]int, len(s.columns))
	for i, c := range s.columns {
		positions[i] = FieldIndex(rs, c.ColumnName())
		if positions[i] < 0 && !c.Flags().Has(Optional) && !c.Flags().Has(DefaultIfMissing) {
			return nil, &MissingFieldError{Schema: s.name, Field: c.Name(), Column: c.ColumnName()}
		}
	}
	return positions, nil
}

func (s *Schema[R]) decodeRow(dst *R, row RowView, positions []int) error {
	for i, c := range s.columns {
		pos := positions[i]
		if pos < 0 {
			if c.Flags().Has(DefaultIfMissing) {
				c.reset(dst)
			}
			continue
		}
		if err := c.decodeInto(dst, row.Field(pos)); err != nil {
			return errors.Wrap(err, s.name)
		}
	}
	return nil
}

// DecodeRecord decodes every field of a new R from row.
func (s *Schema[R]) DecodeRecord(row RowView) (R, error) {
	var r R
	if err := s.DecodeRecordInto(&r, row); err != nil {
		var zero R
		return zero, err
	}
	return r, nil
}

// DecodeRecordInto decodes row into dst. Fields of optional columns missing from the row keep their value in dst.
func (s *Schema[R]) DecodeRecordInto(dst *R, row RowView) error {
	positions, err := s.resolve(row.rs)
	if err != nil {
		return err
	}
	return s.decodeRow(dst, row, positions)
}

// MissingColumns reports the optional and defaulted columns that rs does not have.
func (s *Schema[R]) MissingColumns(rs RawResultSet) (defaulted, absent []string) {
	for _, c := range s.columns {
		if FieldIndex(rs, c.ColumnName()) >= 0 {
			continue
		}
		switch {
		case c.Flags().Has(DefaultIfMissing):
			defaulted = append(defaulted, c.ColumnName())
		case c.Flags().Has(Optional):
			absent = append(absent, c.ColumnName())
		}
	}
	return defaulted, absent
}

func (s *Schema[R]) traceMissingColumns(ctx context.Context, tracer RecordTracer, rs RawResultSet) {
	if tracer == nil {
		return
	}
	defaulted, absent := s.MissingColumns(rs)
	if len(defaulted) == 0 && len(absent) == 0 {
		return
	}
	tracer.TraceMissingColumns(ctx, TraceMissingColumnsData{Schema: s.name, Defaulted: defaulted, Absent: absent})
}

// EncodeField returns the named field of rec as a Value. It returns false for virtual and unknown fields.
func (s *Schema[R]) EncodeField(rec *R, name string) (pgtype.Value, bool) {
	c, ok := s.Column(name)
	if !ok || c.Flags().Has(Virtual) {
		return nil, false
	}
	return c.value(rec), true
}

// StoredValues returns the column names and values of every non-virtual field of rec, in declaration order.
func (s *Schema[R]) StoredValues(rec *R) ([]string, []pgtype.Value) {
	names := make([]string, 0, len(s.columns))
	values := make([]pgtype.Value, 0, len(s.columns))
	for _, c := range s.columns {
		if c.Flags().Has(Virtual) {
			continue
		}
		names = append(names, c.ColumnName())
		values = append(values, c.value(rec))
	}
	return names, values
}

// PrimaryKey returns the primary key fields in declaration order.
func (s *Schema[R]) PrimaryKey() []string {
	names := make([]string, len(s.pk))
	for i, idx := range s.pk {
		names[i] = s.columns[idx].Name()
	}
	return names
}

// PrimaryKeyValues returns the values of the primary key fields of rec in declaration order.
func (s *Schema[R]) PrimaryKeyValues(rec *R) []pgtype.Value {
	values := make([]pgtype.Value, len(s.pk))
	for i, idx := range s.pk {
		values[i] = s.columns[idx].value(rec)
	}
	return values
}

// CheckPrimaryKey panics unless fields is exactly the set of primary key fields. Order does not matter.
func (s *Schema[R]) CheckPrimaryKey(fields ...string) {
	want := s.PrimaryKey()
	got := append([]string(nil), fields...)
	sort.Strings(want)
	sort.Strings(got)
	if strings.Join(want, ",") != strings.Join(got, ",") {
		panic(fmt.Sprintf("%s: primary key is (%s) but got (%s)", s.name, strings.Join(want, ", "), strings.Join(got, ", ")))
	}
}

// CompositeCodec returns a codec for the composite type t whose attributes are the non-virtual columns of s in
// declaration order, such as the row type of the table the schema reads.
func (s *Schema[R]) CompositeCodec(t *pgtype.Type) pgtype.CompositeCodec[R] {
	fields := make([]pgtype.CompositeField[R], 0, len(s.columns))
	for _, c := range s.columns {
		if c.Flags().Has(Virtual) {
			continue
		}
		fields = append(fields, c.compositeField())
	}
	return pgtype.CompositeCodec[R]{T: t, Fields: fields}
}
