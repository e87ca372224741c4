package cmdstream

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/gogpu/cmdstream"

// Queue serializes replay against one ExecutionContext.
//
// Submit may be called from any goroutine. Submissions are replayed one at
// a time in the order Submit acquires the queue, and the buffers of one
// submission in argument order, so replay of an earlier buffer always
// completes before replay of a later one starts.
type Queue struct {
	mu     sync.Mutex
	ctx    ExecutionContext
	tracer trace.Tracer
	opts   options

	submitted uint64
}

// NewQueue creates a queue replaying into ctx. Honors WithTracerProvider
// and WithErrorHandler.
func NewQueue(ctx ExecutionContext, opts ...Option) *Queue {
	o := applyOptions(opts)
	tp := o.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Queue{
		ctx:    ctx,
		tracer: tp.Tracer(tracerName, trace.WithInstrumentationVersion(Version)),
		opts:   o,
	}
}

// Context returns the execution context the queue replays into.
func (q *Queue) Context() ExecutionContext {
	return q.ctx
}

// Submitted returns the number of command buffers replayed so far.
func (q *Queue) Submitted() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.submitted
}

// Submit replays cbs in order. Every buffer must be Ended and must not be
// recorded into until Submit returns. A buffer that is not ended or failed
// while recording is skipped and reported; the others still run. The
// returned error joins every failure.
//
// ctx is only used for tracing; replay itself cannot be cancelled.
func (q *Queue) Submit(ctx context.Context, cbs ...*CommandBuffer) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	_, span := q.tracer.Start(ctx, "cmdstream.Submit",
		trace.WithAttributes(attribute.Int("cmdstream.buffers", len(cbs))))
	defer span.End()

	records := 0
	var errs []error
	for i, cb := range cbs {
		if cb == nil {
			continue
		}
		n, err := q.replay(cb)
		records += n
		if err != nil {
			span.AddEvent("replay failed", trace.WithAttributes(
				attribute.Int("cmdstream.index", i),
				attribute.String("cmdstream.label", cb.Label()),
			))
			errs = append(errs, err)
		}
		q.submitted++
	}
	span.SetAttributes(attribute.Int("cmdstream.records", records))

	err := errors.Join(errs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "replay failed")
		Logger().Warn("cmdstream: submit", slog.Int("buffers", len(cbs)), slog.Any("err", err))
	}
	return err
}

// replay runs cb and returns the number of records it replayed.
func (q *Queue) replay(cb *CommandBuffer) (int, error) {
	if err := cb.replayable(); err != nil {
		return 0, err
	}
	h := cb.opts.errorHandler
	if h == nil {
		h = q.opts.errorHandler
	}
	return cb.records, cb.replay(q.ctx, h)
}
