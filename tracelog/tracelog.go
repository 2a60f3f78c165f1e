// Package tracelog provides a tracer that acts as a traditional logger.
package tracelog

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgcodec"
)

func logParams(params []pgcodec.Param) []any {
	logArgs := make([]any, 0, len(params))

	for _, p := range params {
		var a any
		switch {
		case p.Bytes == nil:
		case p.Format == 0:
			v := string(p.Bytes)
			if len(v) > 64 {
				l := 0
				for w := 0; l < 64; l += w {
					_, w = utf8.DecodeRuneInString(v[l:])
				}
				if len(v) > l {
					v = fmt.Sprintf("%s (truncated %d bytes)", v[:l], len(v)-l)
				}
			}
			a = v
		default:
			if len(p.Bytes) < 64 {
				a = hex.EncodeToString(p.Bytes)
			} else {
				a = fmt.Sprintf("%x (truncated %d bytes)", p.Bytes[:64], len(p.Bytes)-64)
			}
		}
		logArgs = append(logArgs, a)
	}

	return logArgs
}

// TraceLogConfig holds the configuration for key names
type TraceLogConfig struct {
	TimeKey string
}

// DefaultTraceLogConfig returns the default configuration for TraceLog
func DefaultTraceLogConfig() *TraceLogConfig {
	return &TraceLogConfig{
		TimeKey: "time",
	}
}

// TraceLog implements pgcodec.QueryTracer and pgcodec.RecordTracer. Logger and LogLevel are required. Config will be
// automatically initialized on the first use if nil.
type TraceLog struct {
	Logger   pgcodec.Logger
	LogLevel pgcodec.LogLevel

	Config           *TraceLogConfig
	ensureConfigOnce sync.Once
}

// ensureConfig initializes the Config field with default values if it is nil.
func (tl *TraceLog) ensureConfig() {
	tl.ensureConfigOnce.Do(
		func() {
			if tl.Config == nil {
				tl.Config = DefaultTraceLogConfig()
			}
		},
	)
}

type ctxKey int

const (
	_ ctxKey = iota
	tracelogQueryCtxKey
)

type traceQueryData struct {
	startTime time.Time
	sql       string
	params    []pgcodec.Param
}

func (tl *TraceLog) TraceQueryStart(ctx context.Context, data pgcodec.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, tracelogQueryCtxKey, &traceQueryData{
		startTime: time.Now(),
		sql:       data.SQL,
		params:    data.Params,
	})
}

func (tl *TraceLog) TraceQueryEnd(ctx context.Context, data pgcodec.TraceQueryEndData) {
	tl.ensureConfig()
	queryData, ok := ctx.Value(tracelogQueryCtxKey).(*traceQueryData)
	if !ok {
		return
	}

	interval := time.Since(queryData.startTime)

	if data.Err != nil {
		if tl.shouldLog(pgcodec.LogLevelError) {
			tl.log(ctx, pgcodec.LogLevelError, "Query", map[string]any{"sql": queryData.sql, "args": logParams(queryData.params), "err": data.Err, tl.Config.TimeKey: interval})
		}
		return
	}

	if tl.shouldLog(pgcodec.LogLevelInfo) {
		tl.log(ctx, pgcodec.LogLevelInfo, "Query", map[string]any{"sql": queryData.sql, "args": logParams(queryData.params), tl.Config.TimeKey: interval, "rowCount": data.RowCount})
	}
}

func (tl *TraceLog) TraceMissingColumns(ctx context.Context, data pgcodec.TraceMissingColumnsData) {
	if !tl.shouldLog(pgcodec.LogLevelDebug) {
		return
	}

	logData := map[string]any{"schema": data.Schema}
	if len(data.Defaulted) > 0 {
		logData["defaulted"] = data.Defaulted
	}
	if len(data.Absent) > 0 {
		logData["absent"] = data.Absent
	}
	tl.log(ctx, pgcodec.LogLevelDebug, "MissingColumns", logData)
}

func (tl *TraceLog) shouldLog(lvl pgcodec.LogLevel) bool {
	return tl.LogLevel >= lvl
}

func (tl *TraceLog) log(ctx context.Context, lvl pgcodec.LogLevel, msg string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}

	tl.Logger.Log(ctx, lvl, msg, data)
}
