package pgwire_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/jackc/pgcodec"
	"github.com/jackc/pgcodec/pgtype"
	"github.com/jackc/pgcodec/pgwire"
	"github.com/jackc/pgproto3/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeBackendMessages(msgs ...pgproto3.BackendMessage) []byte {
	var buf []byte
	for _, msg := range msgs {
		buf = msg.Encode(buf)
	}
	return buf
}

func TestReadResultSet(t *testing.T) {
	t.Parallel()

	src := encodeBackendMessages(
		&pgproto3.ParseComplete{},
		&pgproto3.BindComplete{},
		usersRowDescription(),
		&pgproto3.DataRow{Values: [][]byte{{0, 0, 0, 1}, []byte("ann")}},
		&pgproto3.DataRow{Values: [][]byte{{0, 0, 0, 2}, {}}},
		&pgproto3.DataRow{Values: [][]byte{{0, 0, 0, 3}, nil}},
		&pgproto3.CommandComplete{CommandTag: []byte("SELECT 3")},
		&pgproto3.ReadyForQuery{TxStatus: 'I'},
	)

	r := bytes.NewReader(src)
	rs, err := pgwire.ReadResultSet(r)
	require.NoError(t, err)

	assert.Equal(t, "SELECT 3", rs.CommandTag())
	assert.EqualValues(t, 3, rs.RowsAffected())
	require.Equal(t, 3, rs.RowCount())
	assert.Equal(t, "id", rs.FieldName(0))
	assert.EqualValues(t, pgtype.Int4OID, rs.FieldType(0))
	assert.Equal(t, []byte("ann"), rs.Value(0, 1))

	empty := rs.Value(1, 1)
	assert.NotNil(t, empty)
	assert.Len(t, empty, 0)
	assert.Nil(t, rs.Value(2, 1))

	// Values do not alias each other.
	_ = append(rs.Value(0, 0), 0xff)
	assert.Equal(t, []byte{0, 0, 0, 1}, rs.Value(0, 0))
	assert.Equal(t, []byte("ann"), rs.Value(0, 1))

	users, err := pgcodec.CollectRecords(rs, userSchema)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "", *users[1].Name)
	assert.Nil(t, users[2].Name)
}

func TestReadResultSetEmptyQuery(t *testing.T) {
	t.Parallel()

	rs, err := pgwire.ReadResultSet(bytes.NewReader(encodeBackendMessages(&pgproto3.EmptyQueryResponse{})))
	require.NoError(t, err)
	assert.Equal(t, 0, rs.RowCount())
	assert.Equal(t, 0, rs.FieldCount())
	assert.EqualValues(t, 0, rs.RowsAffected())
}

func TestReadResultSetErrors(t *testing.T) {
	t.Parallel()

	_, err := pgwire.ReadResultSet(bytes.NewReader(encodeBackendMessages(
		&pgproto3.ErrorResponse{Severity: "ERROR", Code: "42P01", Message: `relation "nope" does not exist`, TableName: "nope"},
	)))
	var pgErr *pgwire.PgError
	require.True(t, errors.As(err, &pgErr))
	assert.Equal(t, "42P01", pgErr.Code)
	assert.Equal(t, "nope", pgErr.TableName)

	_, err = pgwire.ReadResultSet(bytes.NewReader(encodeBackendMessages(
		&pgproto3.DataRow{Values: [][]byte{[]byte("1")}},
	)))
	var protocolErr *pgwire.ProtocolError
	require.True(t, errors.As(err, &protocolErr))
	assert.Equal(t, "protocol violation: DataRow without RowDescription", err.Error())

	_, err = pgwire.ReadResultSet(bytes.NewReader(encodeBackendMessages(
		usersRowDescription(),
		&pgproto3.DataRow{Values: [][]byte{[]byte("1")}},
	)))
	require.True(t, errors.As(err, &protocolErr))

	_, err = pgwire.ReadResultSet(bytes.NewReader(encodeBackendMessages(
		usersRowDescription(),
		&pgproto3.DataRow{Values: [][]byte{{0, 0, 0, 1}, []byte("ann")}},
	)))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
