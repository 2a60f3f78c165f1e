// Package logrusadapter provides a logger that writes to a github.com/sirupsen/logrus.Logger
// log.
package logrusadapter

import (
	"context"

	"github.com/jackc/pgcodec"
	"github.com/sirupsen/logrus"
)

type Logger struct {
	l logrus.FieldLogger
}

func NewLogger(l logrus.FieldLogger) *Logger {
	return &Logger{l: l}
}

func (l *Logger) Log(ctx context.Context, level pgcodec.LogLevel, msg string, data map[string]interface{}) {
	var logger logrus.FieldLogger
	if data != nil {
		logger = l.l.WithFields(data)
	} else {
		logger = l.l
	}

	switch level {
	case pgcodec.LogLevelTrace:
		logger.WithField("PGCODEC_LOG_LEVEL", level).Debug(msg)
	case pgcodec.LogLevelDebug:
		logger.Debug(msg)
	case pgcodec.LogLevelInfo:
		logger.Info(msg)
	case pgcodec.LogLevelWarn:
		logger.Warn(msg)
	case pgcodec.LogLevelError:
		logger.Error(msg)
	default:
		logger.WithField("INVALID_PGCODEC_LOG_LEVEL", level).Error(msg)
	}
}
