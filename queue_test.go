package cmdstream

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestQueue(ctx ExecutionContext, opts ...Option) (*Queue, *tracetest.SpanRecorder) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	return NewQueue(ctx, append(opts, WithTracerProvider(tp))...), sr
}

func attr(span sdktrace.ReadOnlySpan, key attribute.Key) attribute.Value {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return kv.Value
		}
	}
	return attribute.Value{}
}

func TestQueueSubmitOrder(t *testing.T) {
	ctx := newMockContext()
	q, sr := newTestQueue(ctx)

	a := NewCommandBuffer()
	a.Begin()
	a.Annotation("a", 0)
	a.End()
	b := NewCommandBuffer()
	b.Begin()
	b.Annotation("b", 0)
	b.Annotation("b2", 0)
	b.End()

	if err := q.Submit(context.Background(), a, nil, b); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	var names []string
	for _, c := range ctx.calls {
		names = append(names, c.Args[0].(string))
	}
	if want := []string{"a", "b", "b2"}; !reflect.DeepEqual(names, want) {
		t.Errorf("replayed %v, want %v", names, want)
	}
	if q.Submitted() != 2 {
		t.Errorf("Submitted() = %d, want 2", q.Submitted())
	}
	if q.Context() != ExecutionContext(ctx) {
		t.Error("Context() returned a different context")
	}

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("%d spans, want 1", len(spans))
	}
	span := spans[0]
	if span.Name() != "cmdstream.Submit" {
		t.Errorf("span name = %q", span.Name())
	}
	if got := attr(span, "cmdstream.buffers").AsInt64(); got != 3 {
		t.Errorf("cmdstream.buffers = %d, want 3", got)
	}
	// Two annotations plus End for b, one plus End for a.
	if got := attr(span, "cmdstream.records").AsInt64(); got != 5 {
		t.Errorf("cmdstream.records = %d, want 5", got)
	}
	if span.Status().Code == codes.Error {
		t.Errorf("span status = %v, want unset", span.Status())
	}
}

func TestQueueSubmitFailures(t *testing.T) {
	errNative := errors.New("native failure")
	var queueHandled, cbHandled int

	ctx := newMockContext()
	ctx.failOn[OpDraw] = errNative
	q, sr := newTestQueue(ctx, WithErrorHandler(func(*ReplayError) { queueHandled++ }))

	notEnded := NewCommandBuffer(WithLabel("open"))
	notEnded.Begin()

	own := recordFrame(t, WithErrorHandler(func(*ReplayError) { cbHandled++ }))
	shared := recordFrame(t, WithLabel("shared"))

	err := q.Submit(context.Background(), notEnded, own, shared)
	if !errors.Is(err, ErrNotEnded) || !errors.Is(err, errNative) {
		t.Fatalf("Submit() = %v, want ErrNotEnded and native failure", err)
	}
	if cbHandled != 2 {
		t.Errorf("command buffer handler called %d times, want 2", cbHandled)
	}
	if queueHandled != 2 {
		t.Errorf("queue handler called %d times, want 2", queueHandled)
	}
	if len(ctx.calls) != 10 {
		t.Errorf("%d calls, want 10", len(ctx.calls))
	}

	span := sr.Ended()[0]
	if span.Status().Code != codes.Error {
		t.Errorf("span status = %v, want Error", span.Status())
	}
	var failed int
	for _, ev := range span.Events() {
		if ev.Name == "replay failed" {
			failed++
		}
	}
	if failed != 3 {
		t.Errorf("%d replay failed events, want 3", failed)
	}
}

func TestQueueSubmitCountsReplayedRecords(t *testing.T) {
	open := NewCommandBuffer()
	open.Begin()
	open.Annotation("pending", 0)
	open.Annotation("pending", 0)

	full := NewCommandBuffer(WithMaxSize(64))
	full.Begin()
	for range 16 {
		full.Draw(DrawDesc{VertexNum: 3, InstanceNum: 1})
	}
	full.End()

	tests := []struct {
		name string
		cbs  []*CommandBuffer
		want int64
	}{
		{"ended", []*CommandBuffer{recordFrame(t)}, 6},
		{"not ended", []*CommandBuffer{open, recordFrame(t)}, 6},
		{"failed while recording", []*CommandBuffer{full}, 0},
		{"empty", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, sr := newTestQueue(newMockContext())
			_ = q.Submit(context.Background(), tt.cbs...)
			span := sr.Ended()[0]
			if got := attr(span, "cmdstream.records").AsInt64(); got != tt.want {
				t.Errorf("cmdstream.records = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestQueueConcurrentSubmit(t *testing.T) {
	ctx := newMockContext()
	q, _ := newTestQueue(ctx)

	const submitters = 8
	var wg sync.WaitGroup
	for i := range submitters {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cb := NewCommandBuffer()
			cb.Begin()
			cb.BeginAnnotation("frame", uint32(i))
			cb.Draw(DrawDesc{VertexNum: uint32(i)})
			cb.EndAnnotation()
			cb.End()
			if err := q.Submit(context.Background(), cb); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	if q.Submitted() != submitters {
		t.Fatalf("Submitted() = %d, want %d", q.Submitted(), submitters)
	}
	// Buffers never interleave.
	for i := 0; i < len(ctx.calls); i += 3 {
		begin, draw, end := ctx.calls[i], ctx.calls[i+1], ctx.calls[i+2]
		if begin.Op != OpBeginAnnotation || draw.Op != OpDraw || end.Op != OpEndAnnotation {
			t.Fatalf("calls %d..%d interleaved: %v %v %v", i, i+2, begin, draw, end)
		}
		if begin.Args[1].(uint32) != draw.Args[0].(DrawDesc).VertexNum {
			t.Fatalf("calls %d..%d mix buffers", i, i+2)
		}
	}
}

func TestQueueDefaultTracerProvider(t *testing.T) {
	q := NewQueue(NullContext{})
	if err := q.Submit(context.Background(), recordFrame(t)); err != nil {
		t.Errorf("Submit() = %v", err)
	}
}
