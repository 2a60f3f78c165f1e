package pgcodec_test

import (
	"context"
	"testing"

	"github.com/jackc/pgcodec"
	"github.com/jackc/pgcodec/pgtype"
	"github.com/stretchr/testify/require"
)

type testField struct {
	name   string
	oid    uint32
	format int16
}

// testResultSet is an in-memory pgcodec.RawResultSet.
type testResultSet struct {
	fields []testField
	rows   [][][]byte
}

func (rs *testResultSet) RowCount() int            { return len(rs.rows) }
func (rs *testResultSet) FieldCount() int          { return len(rs.fields) }
func (rs *testResultSet) FieldName(i int) string   { return rs.fields[i].name }
func (rs *testResultSet) FieldType(i int) uint32   { return rs.fields[i].oid }
func (rs *testResultSet) FieldFormat(i int) int16  { return rs.fields[i].format }
func (rs *testResultSet) Value(row, col int) []byte { return rs.rows[row][col] }

func textField(name string, oid uint32) testField {
	return testField{name: name, oid: oid, format: pgtype.TextFormatCode}
}

func binaryField(name string, oid uint32) testField {
	return testField{name: name, oid: oid, format: pgtype.BinaryFormatCode}
}

func textRow(values ...any) [][]byte {
	row := make([][]byte, len(values))
	for i, v := range values {
		switch v := v.(type) {
		case nil:
		case string:
			row[i] = []byte(v)
		case []byte:
			row[i] = v
		default:
			panic("unsupported test value")
		}
	}
	return row
}

type sentQuery struct {
	sql    string
	params []pgcodec.Param
}

// testExecutor records every statement and answers with a fixed result set.
type testExecutor struct {
	result *testResultSet
	err    error
	sent   []sentQuery

	missing []pgcodec.TraceMissingColumnsData
}

func (ex *testExecutor) Send(ctx context.Context, sql string, params []pgcodec.Param) (pgcodec.RawResultSet, error) {
	ex.sent = append(ex.sent, sentQuery{sql: sql, params: params})
	if ex.err != nil {
		return nil, ex.err
	}
	return ex.result, nil
}

type tracingExecutor struct {
	*testExecutor
}

func (ex tracingExecutor) TraceMissingColumns(ctx context.Context, data pgcodec.TraceMissingColumnsData) {
	ex.missing = append(ex.missing, data)
}

func requireSingleRow(t testing.TB, rs pgcodec.RawResultSet) pgcodec.RowView {
	t.Helper()
	require.Equal(t, 1, rs.RowCount())
	return pgcodec.NewRowView(rs, 0)
}
