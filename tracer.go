package pgcodec

import (
	"context"
)

// QueryTracer traces statements sent by an Executor.
type QueryTracer interface {
	// TraceQueryStart is called at the beginning of Send calls. The returned context is used for the rest of the call
	// and will be passed to TraceQueryEnd.
	TraceQueryStart(ctx context.Context, data TraceQueryStartData) context.Context

	TraceQueryEnd(ctx context.Context, data TraceQueryEndData)
}

type TraceQueryStartData struct {
	SQL    string
	Params []Param
}

type TraceQueryEndData struct {
	// RowCount is the number of rows in the result set.
	RowCount int
	Err      error
}

// RecordTracer traces record materialization.
type RecordTracer interface {
	// TraceMissingColumns is called once per result set that lacks columns a schema declares as optional or
	// defaulted.
	TraceMissingColumns(ctx context.Context, data TraceMissingColumnsData)
}

type TraceMissingColumnsData struct {
	Schema string
	// Defaulted columns are set to the zero value of their field.
	Defaulted []string
	// Absent columns leave their field untouched.
	Absent []string
}

// MultiTracer can combine several tracers into one.
type MultiTracer struct {
	QueryTracers  []QueryTracer
	RecordTracers []RecordTracer
}

// NewMultiTracer returns a new MultiTracer from tracers. Each tracer is registered for every tracer interface it
// implements.
func NewMultiTracer(tracers ...any) *MultiTracer {
	var t MultiTracer

	for _, tracer := range tracers {
		if qt, ok := tracer.(QueryTracer); ok {
			t.QueryTracers = append(t.QueryTracers, qt)
		}
		if rt, ok := tracer.(RecordTracer); ok {
			t.RecordTracers = append(t.RecordTracers, rt)
		}
	}

	return &t
}

func (t *MultiTracer) TraceQueryStart(ctx context.Context, data TraceQueryStartData) context.Context {
	for _, tracer := range t.QueryTracers {
		ctx = tracer.TraceQueryStart(ctx, data)
	}
	return ctx
}

func (t *MultiTracer) TraceQueryEnd(ctx context.Context, data TraceQueryEndData) {
	for _, tracer := range t.QueryTracers {
		tracer.TraceQueryEnd(ctx, data)
	}
}

func (t *MultiTracer) TraceMissingColumns(ctx context.Context, data TraceMissingColumnsData) {
	for _, tracer := range t.RecordTracers {
		tracer.TraceMissingColumns(ctx, data)
	}
}
