package kitlogadapter_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/jackc/pgcodec"
	"github.com/jackc/pgcodec/log/kitlogadapter"
	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	tests := []struct {
		level pgcodec.LogLevel
		want  string
	}{
		{pgcodec.LogLevelError, "level=error"},
		{pgcodec.LogLevelWarn, "level=warn"},
		{pgcodec.LogLevelInfo, "level=info"},
		{pgcodec.LogLevelDebug, "level=debug"},
		{pgcodec.LogLevelTrace, "level=trace"},
	}

	for i, tt := range tests {
		var buf bytes.Buffer
		logger := kitlogadapter.NewLogger(log.NewLogfmtLogger(&buf))
		logger.Log(context.Background(), tt.level, "Query", map[string]any{"sql": "select 1", "rowCount": 1, "time": time.Second})
		assert.Equalf(t, tt.want+" msg=Query rowCount=1 sql=\"select 1\" time=1s\n", buf.String(), "%d", i)
	}
}

func TestLoggerMissingColumns(t *testing.T) {
	var buf bytes.Buffer
	logger := kitlogadapter.NewLogger(log.NewLogfmtLogger(&buf))
	logger.Log(context.Background(), pgcodec.LogLevelDebug, "MissingColumns", map[string]any{"schema": "users", "absent": []string{"email"}})
	assert.Contains(t, buf.String(), "msg=MissingColumns")
	assert.Contains(t, buf.String(), "schema=users")
	assert.Contains(t, buf.String(), "absent=")
}

func TestLoggerNone(t *testing.T) {
	var buf bytes.Buffer
	logger := kitlogadapter.NewLogger(log.NewLogfmtLogger(&buf))
	logger.Log(context.Background(), pgcodec.LogLevelNone, "Query", nil)
	assert.Empty(t, buf.String())
}
