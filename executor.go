package pgcodec

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgcodec/pgtype"
	"github.com/pkg/errors"
)

// Param is one encoded query parameter.
type Param struct {
	// OID is the parameter type. 0 lets the server infer it.
	OID    uint32
	Format int16
	// Bytes is the encoded value. nil is NULL.
	Bytes []byte
}

// Executor sends a statement with encoded parameters to the server and returns its complete result set. Executors
// that also implement RecordTracer are told about optional and defaulted columns missing from results of Query and
// QueryOne.
type Executor interface {
	Send(ctx context.Context, sql string, params []Param) (RawResultSet, error)
}

// EncodeParams encodes values in their preferred formats.
func EncodeParams(values ...pgtype.Value) ([]Param, error) {
	params := make([]Param, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		format := v.PreferredFormat()
		buf, err := pgtype.EncodeValue(v, format)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter $%d", i+1)
		}
		params[i] = Param{OID: v.OID(), Format: format, Bytes: buf}
	}
	return params, nil
}

func send(ctx context.Context, ex Executor, sql string, args []pgtype.Value) (RawResultSet, error) {
	params, err := EncodeParams(args...)
	if err != nil {
		return nil, err
	}
	return ex.Send(ctx, sql, params)
}

func recordTracer(ex Executor) RecordTracer {
	rt, _ := ex.(RecordTracer)
	return rt
}

// Exec sends sql with args and discards the result.
func Exec(ctx context.Context, ex Executor, sql string, args ...pgtype.Value) error {
	_, err := send(ctx, ex, sql, args)
	return err
}

// Query sends sql with args and decodes every row of the result with s.
func Query[R any](ctx context.Context, ex Executor, s *Schema[R], sql string, args ...pgtype.Value) ([]R, error) {
	rs, err := send(ctx, ex, sql, args)
	if err != nil {
		return nil, err
	}
	s.traceMissingColumns(ctx, recordTracer(ex), rs)
	return CollectRecords(rs, s)
}

// QueryOne sends sql with args and decodes the first row of the result with s. If there are no rows it returns an
// error where errors.Is(ErrNoRows) is true.
func QueryOne[R any](ctx context.Context, ex Executor, s *Schema[R], sql string, args ...pgtype.Value) (R, error) {
	rs, err := send(ctx, ex, sql, args)
	if err != nil {
		var zero R
		return zero, err
	}
	s.traceMissingColumns(ctx, recordTracer(ex), rs)
	return CollectOneRecord(rs, s)
}

// InsertSQL returns the insert statement for the stored columns of s into table along with the parameters for rec.
func InsertSQL[R any](table Identifier, s *Schema[R], rec *R) (string, []pgtype.Value) {
	names, values := s.StoredValues(rec)

	var sb strings.Builder
	sb.WriteString("insert into ")
	sb.WriteString(table.Sanitize())
	sb.WriteString(" (")
	for i, n := range names {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(quoteIdentifier(n))
	}
	sb.WriteString(") values (")
	for i := range values {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('$')
		sb.WriteString(strconv.Itoa(i + 1))
	}
	sb.WriteString(") returning *")

	return sb.String(), values
}

// Insert writes the stored fields of rec to table and returns the inserted row as decoded by s, including
// virtual columns computed by the server.
func Insert[R any](ctx context.Context, ex Executor, table Identifier, s *Schema[R], rec *R) (R, error) {
	sql, args := InsertSQL(table, s, rec)
	return QueryOne(ctx, ex, s, sql, args...)
}

// Identifier is a PostgreSQL identifier or name. Identifiers can be composed of
// multiple parts such as ["schema", "table"] or ["table", "column"].
type Identifier []string

// Sanitize returns a sanitized string safe for SQL interpolation.
func (ident Identifier) Sanitize() string {
	parts := make([]string, len(ident))
	for i := range ident {
		parts[i] = quoteIdentifier(ident[i])
	}
	return strings.Join(parts, ".")
}

func quoteIdentifier(s string) string {
	s = strings.ReplaceAll(s, string([]byte{0}), "")
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
