package pgcodec_test

import (
	"context"
	"testing"

	"github.com/jackc/pgcodec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevelFromString(t *testing.T) {
	t.Parallel()

	for _, level := range []pgcodec.LogLevel{
		pgcodec.LogLevelTrace,
		pgcodec.LogLevelDebug,
		pgcodec.LogLevelInfo,
		pgcodec.LogLevelWarn,
		pgcodec.LogLevelError,
		pgcodec.LogLevelNone,
	} {
		parsed, err := pgcodec.LogLevelFromString(level.String())
		require.NoError(t, err)
		assert.Equal(t, level, parsed)
	}

	_, err := pgcodec.LogLevelFromString("loud")
	assert.EqualError(t, err, `invalid log level "loud"`)
	assert.Equal(t, "invalid level 0", pgcodec.LogLevel(0).String())
}

func TestLoggerFunc(t *testing.T) {
	t.Parallel()

	var got []string
	var logger pgcodec.Logger = pgcodec.LoggerFunc(func(ctx context.Context, level pgcodec.LogLevel, msg string, data map[string]any) {
		got = append(got, level.String()+" "+msg)
	})
	logger.Log(context.Background(), pgcodec.LogLevelWarn, "careful", nil)
	assert.Equal(t, []string{"warn careful"}, got)
}
