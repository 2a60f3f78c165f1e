package logrusadapter_test

import (
	"context"
	"testing"

	"github.com/jackc/pgcodec"
	"github.com/jackc/pgcodec/log/logrusadapter"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)
	logger := logrusadapter.NewLogger(l)

	logger.Log(context.Background(), pgcodec.LogLevelInfo, "Query", map[string]interface{}{"sql": "select 1"})
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "Query", entry.Message)
	assert.Equal(t, "select 1", entry.Data["sql"])

	logger.Log(context.Background(), pgcodec.LogLevelTrace, "MissingColumns", nil)
	entry = hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, pgcodec.LogLevelTrace, entry.Data["PGCODEC_LOG_LEVEL"])

	logger.Log(context.Background(), pgcodec.LogLevel(42), "bad", nil)
	entry = hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, pgcodec.LogLevel(42), entry.Data["INVALID_PGCODEC_LOG_LEVEL"])
}
