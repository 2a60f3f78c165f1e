// Package kitlogadapter provides a logger that writes to a github.com/go-kit/log.Logger.
package kitlogadapter

import (
	"context"
	"sort"

	"github.com/go-kit/log"
	kitlevel "github.com/go-kit/log/level"
	"github.com/jackc/pgcodec"
)

type Logger struct {
	l log.Logger
}

func NewLogger(l log.Logger) *Logger {
	return &Logger{l: l}
}

// Log writes msg and data as one record. Keys are written in sorted order after msg. go-kit has no trace level so
// trace records carry level=trace without a level filter value.
func (l *Logger) Log(ctx context.Context, level pgcodec.LogLevel, msg string, data map[string]any) {
	var logger log.Logger
	switch level {
	case pgcodec.LogLevelTrace:
		logger = log.With(l.l, "level", "trace")
	case pgcodec.LogLevelDebug:
		logger = kitlevel.Debug(l.l)
	case pgcodec.LogLevelInfo:
		logger = kitlevel.Info(l.l)
	case pgcodec.LogLevelWarn:
		logger = kitlevel.Warn(l.l)
	case pgcodec.LogLevelError:
		logger = kitlevel.Error(l.l)
	case pgcodec.LogLevelNone:
		return
	default:
		logger = log.With(l.l, "INVALID_PGCODEC_LOG_LEVEL", level)
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	keyvals := make([]any, 0, 2+2*len(data))
	keyvals = append(keyvals, "msg", msg)
	for _, k := range keys {
		keyvals = append(keyvals, k, data[k])
	}
	logger.Log(keyvals...)
}
