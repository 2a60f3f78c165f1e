package pgcodec

import (
	"strings"

	"github.com/jackc/pgcodec/pgtype"
	"github.com/pkg/errors"
)

// RawResultSet is a complete result set as received from the server. Values are left in their wire format. Byte
// slices returned by Value are owned by the result set and must not be modified or retained past its lifetime.
type RawResultSet interface {
	RowCount() int
	FieldCount() int
	FieldName(i int) string
	FieldType(i int) uint32
	FieldFormat(i int) int16

	// Value returns the wire value of column col in row. nil is the SQL value NULL.
	Value(row, col int) []byte
}

// RawField is one undecoded field of a row.
type RawField struct {
	Name   string
	OID    uint32
	Format int16
	// Bytes is borrowed from the result set. nil is NULL.
	Bytes []byte
}

func (f RawField) IsNull() bool {
	return f.Bytes == nil
}

// RowView is a borrowed view of one row of a RawResultSet.
type RowView struct {
	rs  RawResultSet
	row int
}

// NewRowView returns the view of row. It panics if row is out of range.
func NewRowView(rs RawResultSet, row int) RowView {
	if row < 0 || row >= rs.RowCount() {
		panic(errors.Errorf("row %d out of range for result set with %d rows", row, rs.RowCount()))
	}
	return RowView{rs: rs, row: row}
}

// Index returns the position of the row in its result set.
func (r RowView) Index() int {
	return r.row
}

// Len returns the number of fields.
func (r RowView) Len() int {
	return r.rs.FieldCount()
}

func (r RowView) Field(i int) RawField {
	return RawField{
		Name:   r.rs.FieldName(i),
		OID:    r.rs.FieldType(i),
		Format: r.rs.FieldFormat(i),
		Bytes:  r.rs.Value(r.row, i),
	}
}

// FieldByName returns the first field whose name matches name. The match is case-insensitive.
func (r RowView) FieldByName(name string) (RawField, bool) {
	i := FieldIndex(r.rs, name)
	if i < 0 {
		return RawField{}, false
	}
	return r.Field(i), true
}

// Fields returns all fields of the row.
func (r RowView) Fields() []RawField {
	fields := make([]RawField, r.Len())
	for i := range fields {
		fields[i] = r.Field(i)
	}
	return fields
}

// FieldIndex returns the position of the first field of rs named name, or -1. The match is case-insensitive.
func FieldIndex(rs RawResultSet, name string) int {
	for i := 0; i < rs.FieldCount(); i++ {
		if strings.EqualFold(rs.FieldName(i), name) {
			return i
		}
	}
	return -1
}

// Rows returns a view of every row of rs.
func Rows(rs RawResultSet) []RowView {
	views := make([]RowView, rs.RowCount())
	for i := range views {
		views[i] = RowView{rs: rs, row: i}
	}
	return views
}

// ForEachRow calls fn for each row of rs in order. It stops at the first error.
func ForEachRow(rs RawResultSet, fn func(row RowView) error) error {
	for i := 0; i < rs.RowCount(); i++ {
		if err := fn(RowView{rs: rs, row: i}); err != nil {
			return err
		}
	}
	return nil
}

// DecodeField decodes f with c. Errors are annotated with the field name.
func DecodeField[T any](f RawField, c pgtype.Codec[T]) (T, error) {
	v, err := c.Decode(f.OID, f.Format, f.Bytes)
	if err != nil {
		return v, errors.Wrapf(err, "field %s", f.Name)
	}
	return v, nil
}
