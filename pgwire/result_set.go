package pgwire

import (
	"io"
	"strconv"
	"strings"

	"github.com/jackc/chunkreader/v2"
	"github.com/jackc/pgcodec"
	"github.com/jackc/pgproto3/v2"
	"github.com/pkg/errors"
)

// ResultSet is a complete result set built from RowDescription and DataRow messages. It owns all of its data.
type ResultSet struct {
	names   []string
	oids    []uint32
	formats []int16
	rows    [][][]byte

	commandTag string
}

var _ pgcodec.RawResultSet = (*ResultSet)(nil)

func (rs *ResultSet) setFields(msg *pgproto3.RowDescription) {
	rs.names = make([]string, len(msg.Fields))
	rs.oids = make([]uint32, len(msg.Fields))
	rs.formats = make([]int16, len(msg.Fields))
	for i, fd := range msg.Fields {
		rs.names[i] = string(fd.Name)
		rs.oids[i] = fd.DataTypeOID
		rs.formats[i] = fd.Format
	}
}

// appendRow copies the values of msg. They are borrowed from the read buffer and only valid until the next message is
// received.
func (rs *ResultSet) appendRow(msg *pgproto3.DataRow) error {
	if rs.names == nil {
		return &ProtocolError{msg: "DataRow without RowDescription"}
	}
	if len(msg.Values) != len(rs.names) {
		return &ProtocolError{msg: "DataRow has " + strconv.Itoa(len(msg.Values)) + " values but RowDescription has " + strconv.Itoa(len(rs.names)) + " fields"}
	}

	size := 0
	for _, v := range msg.Values {
		size += len(v)
	}
	buf := make([]byte, 0, size)

	row := make([][]byte, len(msg.Values))
	for i, v := range msg.Values {
		if v == nil {
			continue
		}
		start := len(buf)
		buf = append(buf, v...)
		row[i] = buf[start:len(buf):len(buf)]
	}
	rs.rows = append(rs.rows, row)
	return nil
}

func (rs *ResultSet) RowCount() int {
	return len(rs.rows)
}

func (rs *ResultSet) FieldCount() int {
	return len(rs.names)
}

func (rs *ResultSet) FieldName(i int) string {
	return rs.names[i]
}

func (rs *ResultSet) FieldType(i int) uint32 {
	return rs.oids[i]
}

func (rs *ResultSet) FieldFormat(i int) int16 {
	return rs.formats[i]
}

func (rs *ResultSet) Value(row, col int) []byte {
	return rs.rows[row][col]
}

// CommandTag returns the tag of the CommandComplete message such as "SELECT 2" or "INSERT 0 1".
func (rs *ResultSet) CommandTag() string {
	return rs.commandTag
}

// RowsAffected returns the number of rows affected. If the CommandTag was not for a row affecting command (e.g.
// "CREATE TABLE") then it returns 0.
func (rs *ResultSet) RowsAffected() int64 {
	index := strings.LastIndex(rs.commandTag, " ")
	if index == -1 {
		return 0
	}
	n, _ := strconv.ParseInt(rs.commandTag[index+1:], 10, 64)
	return n
}

// ReadResultSet reads backend messages from r up to and including CommandComplete or EmptyQueryResponse. An
// ErrorResponse is returned as *PgError. Messages that do not describe the result such as ParseComplete or
// ParameterStatus are skipped.
func ReadResultSet(r io.Reader) (*ResultSet, error) {
	frontend := pgproto3.NewFrontend(chunkreader.New(r), nil)

	rs := &ResultSet{}
	for {
		msg, err := frontend.Receive()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}

		switch msg := msg.(type) {
		case *pgproto3.RowDescription:
			rs.setFields(msg)
		case *pgproto3.DataRow:
			if err := rs.appendRow(msg); err != nil {
				return nil, err
			}
		case *pgproto3.CommandComplete:
			rs.commandTag = string(msg.CommandTag)
			return rs, nil
		case *pgproto3.EmptyQueryResponse:
			return rs, nil
		case *pgproto3.ErrorResponse:
			return nil, errorResponseToPgError(msg)
		}
	}
}
