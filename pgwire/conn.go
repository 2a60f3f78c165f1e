// Package pgwire is a minimal pgcodec.Executor over an established PostgreSQL connection.
//
// Conn does not connect or authenticate. It is handed a stream on which the startup exchange has already completed
// and runs each statement with the extended query protocol: Parse, Bind, Describe, Execute and Sync of the unnamed
// statement and portal. The complete result is read into a ResultSet before Send returns.
package pgwire

import (
	"context"
	"io"
	"net"
	"sync"
	"time"

	"github.com/jackc/chunkreader/v2"
	"github.com/jackc/pgcodec"
	"github.com/jackc/pgcodec/pgtype"
	"github.com/jackc/pgcodec/tracelog"
	"github.com/jackc/pgproto3/v2"
	"golang.org/x/text/encoding"
)

// Conn runs statements over a single PostgreSQL protocol stream. It is not safe for concurrent use.
type Conn struct {
	rw       io.ReadWriter
	netConn  net.Conn
	frontend *pgproto3.Frontend

	config   *Config
	tracer   pgcodec.QueryTracer
	registry *pgtype.Registry
	charset  encoding.Encoding

	parameterStatuses map[string]string
	txStatus          byte
	closed            bool

	wbuf []byte
}

var _ pgcodec.Executor = (*Conn)(nil)

// NewConn returns a Conn using rw. rw must be positioned after the server's first ReadyForQuery. If rw is a net.Conn
// context cancellation and deadlines interrupt blocked reads and writes. A nil config is DefaultConfig().
func NewConn(rw io.ReadWriter, config *Config) (*Conn, error) {
	if config == nil {
		config = DefaultConfig()
	}

	charset, err := pgtype.ClientEncoding(config.ClientEncoding)
	if err != nil {
		return nil, err
	}

	registry := pgtype.NewRegistry()
	if config.ServerVersion != "" {
		registry, err = pgtype.NewRegistryForServer(config.ServerVersion)
		if err != nil {
			return nil, err
		}
	}

	c := &Conn{
		rw:                rw,
		frontend:          pgproto3.NewFrontend(chunkreader.New(rw), rw),
		config:            config,
		tracer:            config.Tracer,
		registry:          registry,
		charset:           charset,
		parameterStatuses: make(map[string]string),
		txStatus:          'I',
	}
	if netConn, ok := rw.(net.Conn); ok {
		c.netConn = netConn
	}
	if c.tracer == nil && config.Logger != nil {
		c.tracer = &tracelog.TraceLog{Logger: config.Logger, LogLevel: config.LogLevel}
	}

	return c, nil
}

// Config returns the config c was created with. It must not be modified.
func (c *Conn) Config() *Config {
	return c.config
}

// Registry returns the type registry of the connection. Extension and user types should be registered before the
// first statement is sent.
func (c *Conn) Registry() *pgtype.Registry {
	return c.registry
}

// TextCodec returns a text codec converting to and from the client encoding of the connection.
func (c *Conn) TextCodec() pgtype.TextCodec {
	return pgtype.TextCodec{Charset: c.charset}
}

// ParameterStatus returns the value of a parameter reported by the server (e.g. server_version). Returns an empty
// string for unknown parameters.
func (c *Conn) ParameterStatus(key string) string {
	return c.parameterStatuses[key]
}

// TxStatus returns the transaction status reported by the last ReadyForQuery: 'I' idle, 'T' in a transaction block or
// 'E' in a failed transaction block.
func (c *Conn) TxStatus() byte {
	return c.txStatus
}

// IsClosed reports if the connection has been closed.
func (c *Conn) IsClosed() bool {
	return c.closed
}

// Send implements pgcodec.Executor. Every parameter is bound with its own OID and format and every result column is
// requested in Config.ResultFormat. An ErrorResponse from the server is returned as *PgError and leaves the connection
// usable; any other failure closes it.
func (c *Conn) Send(ctx context.Context, sql string, params []pgcodec.Param) (pgcodec.RawResultSet, error) {
	if c.tracer != nil {
		ctx = c.tracer.TraceQueryStart(ctx, pgcodec.TraceQueryStartData{SQL: sql, Params: params})
	}

	rs, err := c.send(ctx, sql, params)

	if c.tracer != nil {
		var rowCount int
		if rs != nil {
			rowCount = rs.RowCount()
		}
		c.tracer.TraceQueryEnd(ctx, pgcodec.TraceQueryEndData{RowCount: rowCount, Err: err})
	}

	if err != nil {
		return nil, err
	}
	return rs, nil
}

// TraceMissingColumns forwards to the configured tracer if it is a pgcodec.RecordTracer.
func (c *Conn) TraceMissingColumns(ctx context.Context, data pgcodec.TraceMissingColumnsData) {
	if rt, ok := c.tracer.(pgcodec.RecordTracer); ok {
		rt.TraceMissingColumns(ctx, data)
	}
}

func (c *Conn) send(ctx context.Context, sql string, params []pgcodec.Param) (*ResultSet, error) {
	if c.closed {
		return nil, ErrConnClosed
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	cleanup := c.watchContext(ctx)
	defer cleanup()

	buf := c.wbuf[:0]
	buf = c.appendExtendedQuery(buf, sql, params)
	c.wbuf = buf

	if _, err := c.rw.Write(buf); err != nil {
		c.die()
		return nil, preferContextOverNetTimeoutError(ctx, err)
	}

	rs := &ResultSet{}
	var pgErr *PgError
	for {
		msg, err := c.receiveMessage()
		if err != nil {
			c.die()
			return nil, preferContextOverNetTimeoutError(ctx, err)
		}

		switch msg := msg.(type) {
		case *pgproto3.RowDescription:
			rs.setFields(msg)
		case *pgproto3.DataRow:
			if pgErr != nil {
				continue
			}
			if err := rs.appendRow(msg); err != nil {
				c.die()
				return nil, err
			}
		case *pgproto3.CommandComplete:
			rs.commandTag = string(msg.CommandTag)
		case *pgproto3.ErrorResponse:
			if pgErr == nil {
				pgErr = errorResponseToPgError(msg)
			}
		case *pgproto3.ReadyForQuery:
			c.txStatus = msg.TxStatus
			if pgErr != nil {
				return nil, pgErr
			}
			return rs, nil
		}
	}
}

func (c *Conn) appendExtendedQuery(buf []byte, sql string, params []pgcodec.Param) []byte {
	var paramOIDs []uint32
	var paramFormats []int16
	var paramValues [][]byte
	if len(params) > 0 {
		paramOIDs = make([]uint32, len(params))
		paramFormats = make([]int16, len(params))
		paramValues = make([][]byte, len(params))
		for i, p := range params {
			paramOIDs[i] = p.OID
			paramFormats[i] = p.Format
			paramValues[i] = p.Bytes
		}
	}

	buf = (&pgproto3.Parse{Query: sql, ParameterOIDs: paramOIDs}).Encode(buf)
	buf = (&pgproto3.Bind{
		ParameterFormatCodes: paramFormats,
		Parameters:           paramValues,
		ResultFormatCodes:    []int16{c.config.ResultFormat},
	}).Encode(buf)
	buf = (&pgproto3.Describe{ObjectType: 'P'}).Encode(buf)
	buf = (&pgproto3.Execute{}).Encode(buf)
	buf = (&pgproto3.Sync{}).Encode(buf)
	return buf
}

// receiveMessage receives a message and handles the ones that may arrive asynchronously at any time.
func (c *Conn) receiveMessage() (pgproto3.BackendMessage, error) {
	for {
		msg, err := c.frontend.Receive()
		if err != nil {
			return nil, err
		}

		switch msg := msg.(type) {
		case *pgproto3.ParameterStatus:
			c.parameterStatuses[msg.Name] = msg.Value
		case *pgproto3.NoticeResponse:
			if c.config.OnNotice != nil {
				c.config.OnNotice(c, noticeResponseToNotice(msg))
			}
		case *pgproto3.NotificationResponse:
		case *pgproto3.ErrorResponse:
			if msg.Severity == "FATAL" || msg.Severity == "PANIC" {
				c.die()
				return nil, errorResponseToPgError(msg)
			}
			return msg, nil
		default:
			return msg, nil
		}
	}
}

// watchContext interrupts blocked reads and writes on the net.Conn when ctx is done by moving its deadline into the
// past. ctx.Err() is always set by the time the interrupted call returns. The returned cleanup must be called before
// the connection is used again.
func (c *Conn) watchContext(ctx context.Context) (cleanup func()) {
	if c.netConn == nil || ctx.Done() == nil {
		return func() {}
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
			c.netConn.SetDeadline(time.Unix(1, 0))
		case <-stop:
		}
	}()

	return func() {
		close(stop)
		wg.Wait()
		c.netConn.SetDeadline(time.Time{})
	}
}

func (c *Conn) die() {
	if c.closed {
		return
	}
	c.closed = true
	if closer, ok := c.rw.(io.Closer); ok {
		closer.Close()
	}
}

// Close sends Terminate and closes the underlying stream if it is an io.Closer. It is safe to call Close on an already
// closed connection.
func (c *Conn) Close(ctx context.Context) error {
	if c.closed {
		return nil
	}
	c.closed = true

	cleanup := c.watchContext(ctx)
	defer cleanup()

	_, err := c.rw.Write((&pgproto3.Terminate{}).Encode(nil))
	if closer, ok := c.rw.(io.Closer); ok {
		if closeErr := closer.Close(); err == nil {
			err = closeErr
		}
	}
	return preferContextOverNetTimeoutError(ctx, err)
}
