package cmdstream

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestCommandBufferScenario(t *testing.T) {
	vp := Viewport{X: 0, Y: 0, Width: 1920, Height: 1080, MinDepth: 0, MaxDepth: 1}

	cb := NewCommandBuffer()
	cb.Begin()
	cb.SetViewports(vp)
	cb.Draw(DrawDesc{VertexNum: 3, InstanceNum: 1, BaseVertex: 0, BaseInstance: 0})
	if err := cb.End(); err != nil {
		t.Fatalf("End() error = %v", err)
	}

	ctx := newMockContext()
	if err := cb.Replay(ctx); err != nil {
		t.Fatalf("Replay() error = %v", err)
	}

	want := []call{
		{Op: OpSetViewports, Args: []any{[]Viewport{vp}}},
		{Op: OpDraw, Args: []any{DrawDesc{VertexNum: 3, InstanceNum: 1}}},
	}
	if !reflect.DeepEqual(ctx.calls, want) {
		t.Errorf("calls = %v, want %v", ctx.calls, want)
	}
}

func TestCommandBufferZeroScissors(t *testing.T) {
	cb := NewCommandBuffer()
	cb.Begin()
	cb.SetScissors()
	if err := cb.End(); err != nil {
		t.Fatal(err)
	}

	ctx := newMockContext()
	if err := cb.Replay(ctx); err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if len(ctx.calls) != 1 || ctx.calls[0].Op != OpSetScissors {
		t.Fatalf("calls = %v, want one SetScissors", ctx.calls)
	}
	rects, ok := ctx.calls[0].Args[0].([]Rect)
	if !ok || rects == nil || len(rects) != 0 {
		t.Errorf("SetScissors rects = %#v, want empty non-nil slice", ctx.calls[0].Args[0])
	}
}

func TestCommandBufferPreservesOrder(t *testing.T) {
	cb := NewCommandBuffer()
	cb.Begin()
	var want []Opcode
	for i := range 100 {
		switch i % 3 {
		case 0:
			cb.SetStencilReference(uint8(i), uint8(i))
			want = append(want, OpSetStencilReference)
		case 1:
			cb.Draw(DrawDesc{VertexNum: uint32(i)})
			want = append(want, OpDraw)
		case 2:
			cb.Annotation(fmt.Sprintf("marker %d", i), uint32(i))
			want = append(want, OpAnnotation)
		}
	}
	if err := cb.End(); err != nil {
		t.Fatal(err)
	}

	ctx := newMockContext()
	if err := cb.Replay(ctx); err != nil {
		t.Fatal(err)
	}
	if got := ctx.ops(); !reflect.DeepEqual(got, want) {
		t.Fatalf("ops = %v, want %v", got, want)
	}
	for i, c := range ctx.calls {
		switch c.Op {
		case OpDraw:
			if d := c.Args[0].(DrawDesc); d.VertexNum != uint32(i) {
				t.Errorf("call %d VertexNum = %d, want %d", i, d.VertexNum, i)
			}
		case OpAnnotation:
			if name := c.Args[0].(string); name != fmt.Sprintf("marker %d", i) {
				t.Errorf("call %d name = %q", i, name)
			}
		}
	}
}

func TestCommandBufferStates(t *testing.T) {
	cb := NewCommandBuffer()
	if cb.State() != StateInitial {
		t.Errorf("new State() = %v, want Initial", cb.State())
	}
	cb.Begin()
	if cb.State() != StateRecording {
		t.Errorf("State() after Begin = %v, want Recording", cb.State())
	}
	if err := cb.End(); err != nil {
		t.Fatal(err)
	}
	if cb.State() != StateEnded {
		t.Errorf("State() after End = %v, want Ended", cb.State())
	}
	if cb.NumRecords() != 1 {
		t.Errorf("NumRecords() = %d, want 1 (End)", cb.NumRecords())
	}
	cb.Reset()
	if cb.State() != StateInitial || cb.Len() != 0 || cb.NumRecords() != 0 {
		t.Errorf("after Reset: state %v, len %d, records %d", cb.State(), cb.Len(), cb.NumRecords())
	}
}

func TestCommandBufferReplayRequiresEnded(t *testing.T) {
	cb := NewCommandBuffer()
	if err := cb.Replay(NullContext{}); !errors.Is(err, ErrNotEnded) {
		t.Errorf("Replay() on Initial = %v, want ErrNotEnded", err)
	}
	cb.Begin()
	cb.Draw(DrawDesc{VertexNum: 3})
	if err := cb.Replay(NullContext{}); !errors.Is(err, ErrNotEnded) {
		t.Errorf("Replay() on Recording = %v, want ErrNotEnded", err)
	}
}

func TestCommandBufferMisuseWithoutValidation(t *testing.T) {
	logs := captureLogs(t)

	cb := NewCommandBuffer(WithLabel("frame"))
	cb.Draw(DrawDesc{VertexNum: 3})
	if err := cb.End(); err == nil {
		t.Error("End() before Begin = nil, want usage error")
	}
	cb.Begin()
	cb.Begin()
	if cb.State() != StateRecording {
		t.Errorf("State() = %v, want Recording", cb.State())
	}
	if err := cb.End(); err != nil {
		t.Fatal(err)
	}
	cb.Draw(DrawDesc{VertexNum: 3})
	cb.Append(EndCmd{})
	cb.Append(nil)

	if cb.NumRecords() != 1 {
		t.Errorf("NumRecords() = %d, want 1", cb.NumRecords())
	}
	out := logs.String()
	for _, want := range []string{"method=Draw", "method=Begin", "label=frame", "not recording"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}

func TestCommandBufferEndReturnsUsageError(t *testing.T) {
	cb := NewCommandBuffer(WithLabel("x"))
	err := cb.End()
	var ue *UsageError
	if !errors.As(err, &ue) {
		t.Fatalf("End() = %v, want *UsageError", err)
	}
	if ue.Method != "End" || ue.Label != "x" {
		t.Errorf("UsageError = %+v", ue)
	}
}

// mustPanic runs fn and returns the *UsageError it panicked with.
func mustPanic(t *testing.T, fn func()) (ue *UsageError) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		var ok bool
		if ue, ok = r.(*UsageError); !ok {
			t.Fatalf("panic value = %#v, want *UsageError", r)
		}
	}()
	fn()
	return nil
}

func TestCommandBufferValidation(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(cb *CommandBuffer)
		misuse func(cb *CommandBuffer)
		method string
	}{
		{
			name:   "record after End",
			setup:  func(cb *CommandBuffer) { cb.End() },
			misuse: func(cb *CommandBuffer) { cb.SetStencilReference(1, 1) },
			method: "SetStencilReference",
		},
		{
			name:   "double Begin",
			misuse: func(cb *CommandBuffer) { cb.Begin() },
			method: "Begin",
		},
		{
			name:   "nil pipeline",
			misuse: func(cb *CommandBuffer) { cb.SetPipeline(nil) },
			method: "SetPipeline",
		},
		{
			name:   "descriptor set without layout",
			misuse: func(cb *CommandBuffer) { cb.SetDescriptorSet(0, testSet, nil) },
			method: "SetDescriptorSet",
		},
		{
			name:   "draw without pipeline",
			setup:  func(cb *CommandBuffer) { cb.BeginRendering(AttachmentsDesc{}) },
			misuse: func(cb *CommandBuffer) { cb.Draw(DrawDesc{VertexNum: 3}) },
			method: "Draw",
		},
		{
			name:   "draw outside rendering",
			setup:  func(cb *CommandBuffer) { cb.SetPipeline(graphicsPipeline) },
			misuse: func(cb *CommandBuffer) { cb.Draw(DrawDesc{VertexNum: 3}) },
			method: "Draw",
		},
		{
			name:   "dispatch with graphics pipeline",
			setup:  func(cb *CommandBuffer) { cb.SetPipeline(graphicsPipeline) },
			misuse: func(cb *CommandBuffer) { cb.Dispatch(DispatchDesc{X: 1, Y: 1, Z: 1}) },
			method: "Dispatch",
		},
		{
			name: "dispatch inside rendering",
			setup: func(cb *CommandBuffer) {
				cb.SetPipeline(computePipeline)
				cb.BeginRendering(AttachmentsDesc{})
			},
			misuse: func(cb *CommandBuffer) { cb.Dispatch(DispatchDesc{X: 1, Y: 1, Z: 1}) },
			method: "Dispatch",
		},
		{
			name:   "copy inside rendering",
			setup:  func(cb *CommandBuffer) { cb.BeginRendering(AttachmentsDesc{}) },
			misuse: func(cb *CommandBuffer) { cb.CopyBuffer(testBufferA, 0, testBufferB, 0, 4) },
			method: "CopyBuffer",
		},
		{
			name:   "nested rendering",
			setup:  func(cb *CommandBuffer) { cb.BeginRendering(AttachmentsDesc{}) },
			misuse: func(cb *CommandBuffer) { cb.BeginRendering(AttachmentsDesc{}) },
			method: "BeginRendering",
		},
		{
			name:   "end rendering without begin",
			misuse: func(cb *CommandBuffer) { cb.EndRendering() },
			method: "EndRendering",
		},
		{
			name:   "clear outside rendering",
			misuse: func(cb *CommandBuffer) { cb.ClearAttachments(nil, nil) },
			method: "ClearAttachments",
		},
		{
			name:   "unbalanced annotation",
			misuse: func(cb *CommandBuffer) { cb.EndAnnotation() },
			method: "EndAnnotation",
		},
		{
			name:   "End inside rendering",
			setup:  func(cb *CommandBuffer) { cb.BeginRendering(AttachmentsDesc{}) },
			misuse: func(cb *CommandBuffer) { cb.End() },
			method: "End",
		},
		{
			name:   "Append End",
			misuse: func(cb *CommandBuffer) { cb.Append(EndCmd{}) },
			method: "Append",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb := NewCommandBuffer(WithValidation(true), WithLabel(tt.name))
			cb.Begin()
			if tt.setup != nil {
				tt.setup(cb)
			}
			n := cb.NumRecords()
			ue := mustPanic(t, func() { tt.misuse(cb) })
			if ue.Method != tt.method {
				t.Errorf("UsageError.Method = %q, want %q", ue.Method, tt.method)
			}
			if ue.Label != tt.name {
				t.Errorf("UsageError.Label = %q, want %q", ue.Label, tt.name)
			}
			if tt.method != "End" && cb.NumRecords() != n {
				t.Errorf("NumRecords() = %d after rejected call, want %d", cb.NumRecords(), n)
			}
		})
	}
}

func TestCommandBufferUnvalidatedKeepsSemanticErrors(t *testing.T) {
	cb := NewCommandBuffer()
	cb.Begin()
	cb.Draw(DrawDesc{VertexNum: 3})
	cb.EndRendering()
	cb.Dispatch(DispatchDesc{X: 1})
	if err := cb.End(); err != nil {
		t.Fatal(err)
	}
	if cb.NumRecords() != 4 {
		t.Errorf("NumRecords() = %d, want 4", cb.NumRecords())
	}
}

func TestCommandBufferImmutableAfterEnd(t *testing.T) {
	cb := NewCommandBuffer(WithValidation(true))
	cb.Begin()
	cb.SetViewports(Viewport{Width: 64, Height: 64, MaxDepth: 1})
	cb.SetPipeline(graphicsPipeline)
	cb.BeginRendering(AttachmentsDesc{Colors: []Descriptor{testColorView}})
	cb.Draw(DrawDesc{VertexNum: 6, InstanceNum: 1})
	cb.EndRendering()
	if err := cb.End(); err != nil {
		t.Fatal(err)
	}
	words := append([]uint64(nil), cb.buf.Words()...)

	mustPanic(t, func() { cb.Draw(DrawDesc{VertexNum: 3}) })

	first, second := newMockContext(), newMockContext()
	if err := cb.Replay(first); err != nil {
		t.Fatal(err)
	}
	if err := cb.Replay(second); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first.calls, second.calls) {
		t.Errorf("second replay differs:\n%v\n%v", first.calls, second.calls)
	}
	if !reflect.DeepEqual(cb.buf.Words(), words) {
		t.Error("stream changed after End")
	}
}

func TestCommandBufferReuse(t *testing.T) {
	cb := NewCommandBuffer()
	for i := range 3 {
		cb.Begin()
		for j := 0; j <= i; j++ {
			cb.Draw(DrawDesc{VertexNum: uint32(j + 1), InstanceNum: 1})
		}
		if err := cb.End(); err != nil {
			t.Fatalf("pass %d: End() error = %v", i, err)
		}
		ctx := newMockContext()
		if err := cb.Replay(ctx); err != nil {
			t.Fatalf("pass %d: Replay() error = %v", i, err)
		}
		if len(ctx.calls) != i+1 {
			t.Errorf("pass %d: %d calls, want %d", i, len(ctx.calls), i+1)
		}
	}
}

func TestCommandBufferReuseKeepsStorage(t *testing.T) {
	cb := NewCommandBuffer()
	record := func() {
		cb.Begin()
		for range 64 {
			cb.SetViewports(Viewport{Width: 1, Height: 1})
		}
		cb.End()
	}
	record()
	capacity := cb.buf.Cap()
	record()
	if cb.buf.Cap() != capacity {
		t.Errorf("Cap() = %d after reuse, want %d", cb.buf.Cap(), capacity)
	}
}

func TestCommandBufferConcurrentRecording(t *testing.T) {
	const workers = 8
	cbs := make([]*CommandBuffer, workers)
	var wg sync.WaitGroup
	for w := range workers {
		cbs[w] = NewCommandBuffer(WithLabel(fmt.Sprintf("worker %d", w)))
		wg.Add(1)
		go func(cb *CommandBuffer, w int) {
			defer wg.Done()
			buf := &testObject{fmt.Sprintf("buffer %d", w)}
			cb.Begin()
			for i := range 200 {
				cb.SetVertexBuffers(0, VertexBuffer{Buffer: buf, Offset: uint64(i)})
				cb.Draw(DrawDesc{VertexNum: uint32(w), InstanceNum: uint32(i)})
			}
			cb.End()
		}(cbs[w], w)
	}
	wg.Wait()

	for w, cb := range cbs {
		ctx := newMockContext()
		if err := cb.Replay(ctx); err != nil {
			t.Fatalf("worker %d: %v", w, err)
		}
		if len(ctx.calls) != 400 {
			t.Fatalf("worker %d: %d calls, want 400", w, len(ctx.calls))
		}
		for i := 0; i < len(ctx.calls); i += 2 {
			vbs := ctx.calls[i].Args[1].([]VertexBuffer)
			if got := vbs[0].Buffer.(*testObject).name; got != fmt.Sprintf("buffer %d", w) {
				t.Fatalf("worker %d call %d: buffer %q", w, i, got)
			}
			if d := ctx.calls[i+1].Args[0].(DrawDesc); d.VertexNum != uint32(w) || d.InstanceNum != uint32(i/2) {
				t.Fatalf("worker %d call %d: draw %+v", w, i+1, d)
			}
		}
	}
}

func TestCommandBufferBufferFullIsSticky(t *testing.T) {
	cb := NewCommandBuffer(WithMaxSize(64))
	cb.Begin()
	for range 16 {
		cb.Draw(DrawDesc{VertexNum: 3, InstanceNum: 1})
	}
	if !errors.Is(cb.Err(), ErrBufferFull) {
		t.Fatalf("Err() = %v, want ErrBufferFull", cb.Err())
	}
	n := cb.NumRecords()
	if n == 0 || n >= 16 {
		t.Errorf("NumRecords() = %d, want a partial recording", n)
	}
	cb.SetStencilReference(1, 1)
	if cb.NumRecords() != n {
		t.Errorf("record after failure was kept")
	}

	if err := cb.End(); !errors.Is(err, ErrBufferFull) {
		t.Errorf("End() = %v, want ErrBufferFull", err)
	}
	if cb.Size() > 64 {
		t.Errorf("Size() = %d, want <= 64", cb.Size())
	}
	if err := cb.Replay(NullContext{}); !errors.Is(err, ErrBufferFull) {
		t.Errorf("Replay() = %v, want ErrBufferFull", err)
	}

	// A new recording clears the failure.
	cb.Begin()
	cb.Draw(DrawDesc{VertexNum: 3})
	if err := cb.End(); err != nil {
		t.Errorf("End() after Begin = %v, want nil", err)
	}
}

func TestCommandBufferBufferFullDropsObjects(t *testing.T) {
	cb := NewCommandBuffer(WithMaxSize(32))
	cb.Begin()
	cb.SetVertexBuffers(0, VertexBuffer{Buffer: testBufferA}, VertexBuffer{Buffer: testBufferB},
		VertexBuffer{Buffer: testBufferA}, VertexBuffer{Buffer: testBufferB})
	if !errors.Is(cb.Err(), ErrBufferFull) {
		t.Fatalf("Err() = %v, want ErrBufferFull", cb.Err())
	}
	if cb.objs.len() != 0 {
		t.Errorf("objects = %d after failed record, want 0", cb.objs.len())
	}
}

func TestCommandBufferBufferFullWithOpenBrackets(t *testing.T) {
	cb := NewCommandBuffer(WithValidation(true), WithMaxSize(64))
	cb.Begin()
	cb.SetPipeline(graphicsPipeline)
	cb.BeginRendering(AttachmentsDesc{})
	for range 16 {
		cb.Draw(DrawDesc{VertexNum: 3, InstanceNum: 1})
	}
	cb.EndRendering()
	if !cb.InRendering() {
		t.Fatal("EndRendering after the failure was applied")
	}
	// End reports the failure instead of panicking about the open bracket.
	if err := cb.End(); !errors.Is(err, ErrBufferFull) {
		t.Errorf("End() = %v, want ErrBufferFull", err)
	}
}

func TestCommandBufferAccessors(t *testing.T) {
	cb := NewCommandBuffer(WithLabel("pass"))
	cb.Begin()
	cb.SetPipelineLayout(testLayout)
	cb.SetDescriptorPool(testPool)
	cb.SetPipeline(graphicsPipeline)
	cb.BeginRendering(AttachmentsDesc{})

	if cb.Label() != "pass" {
		t.Errorf("Label() = %q", cb.Label())
	}
	if cb.Pipeline() != Pipeline(graphicsPipeline) {
		t.Errorf("Pipeline() = %v", cb.Pipeline())
	}
	if cb.PipelineLayout() != PipelineLayout(testLayout) {
		t.Errorf("PipelineLayout() = %v", cb.PipelineLayout())
	}
	if cb.DescriptorPool() != DescriptorPool(testPool) {
		t.Errorf("DescriptorPool() = %v", cb.DescriptorPool())
	}
	if !cb.InRendering() {
		t.Error("InRendering() = false")
	}
	cb.EndRendering()
	if cb.InRendering() {
		t.Error("InRendering() = true after EndRendering")
	}
	if cb.Size() != cb.Len()*8 {
		t.Errorf("Size() = %d, Len() = %d", cb.Size(), cb.Len())
	}
}

func TestCommandBufferCopiesArguments(t *testing.T) {
	vps := []Viewport{{Width: 10, Height: 10}}
	data := []byte{1, 2, 3}

	cb := NewCommandBuffer()
	cb.Begin()
	cb.SetViewports(vps...)
	cb.SetRootConstants(0, data)
	cb.End()

	vps[0].Width = 99
	data[0] = 99

	ctx := newMockContext()
	if err := cb.Replay(ctx); err != nil {
		t.Fatal(err)
	}
	if got := ctx.calls[0].Args[0].([]Viewport)[0].Width; got != 10 {
		t.Errorf("viewport width = %v, want 10", got)
	}
	if got := ctx.calls[1].Args[2].([]byte)[0]; got != 1 {
		t.Errorf("root constant = %d, want 1", got)
	}
}

func TestCommandBufferWalkReRecord(t *testing.T) {
	src := NewCommandBuffer()
	src.Begin()
	src.SetBlendConstants(gputypes.Color{R: 1})
	src.Draw(DrawDesc{VertexNum: 3})
	src.End()

	dst := NewCommandBuffer()
	dst.Begin()
	err := src.Walk(func(_ int, rec Record) error {
		if rec.Op() == OpEnd {
			return nil
		}
		dst.Append(rec)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	dst.End()

	a, b := newMockContext(), newMockContext()
	src.Replay(a)
	dst.Replay(b)
	if !reflect.DeepEqual(a.calls, b.calls) {
		t.Errorf("re-recorded buffer replays %v, want %v", b.calls, a.calls)
	}
}

func TestCommandBufferAppendPointerRecords(t *testing.T) {
	cb := NewCommandBuffer(WithValidation(true))
	cb.Begin()
	cb.Append(&SetPipelineCmd{Pipeline: graphicsPipeline})
	cb.Append(&BeginRenderingCmd{})
	cb.Append(&BeginAnnotationCmd{Name: "pass"})

	if cb.Pipeline() != Pipeline(graphicsPipeline) {
		t.Errorf("Pipeline() = %v, want %v", cb.Pipeline(), graphicsPipeline)
	}
	if !cb.InRendering() {
		t.Error("InRendering() = false after appending *BeginRenderingCmd")
	}
	cb.Draw(DrawDesc{VertexNum: 3})
	cb.Append(&EndRenderingCmd{})
	cb.Append(&EndAnnotationCmd{})
	if err := cb.End(); err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if cb.NumRecords() != 7 {
		t.Errorf("NumRecords() = %d, want 7", cb.NumRecords())
	}
}

func TestCommandBufferAppendPointerMisuse(t *testing.T) {
	tests := []struct {
		name   string
		rec    Record
		reason string
	}{
		{"nil pipeline", &SetPipelineCmd{}, "nil pipeline"},
		{"unbalanced EndRendering", &EndRenderingCmd{}, "no rendering to end"},
		{"End record", &EndCmd{}, "the End record is written by End"},
		{"nil pointer", (*DrawCmd)(nil), "nil record"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb := NewCommandBuffer(WithValidation(true))
			cb.Begin()
			ue := mustPanic(t, func() { cb.Append(tt.rec) })
			if ue.Reason != tt.reason {
				t.Errorf("Reason = %q, want %q", ue.Reason, tt.reason)
			}
			if cb.NumRecords() != 0 {
				t.Errorf("NumRecords() = %d, want 0", cb.NumRecords())
			}
		})
	}
}

func TestCommandBufferWalkStops(t *testing.T) {
	cb := NewCommandBuffer()
	cb.Begin()
	for range 5 {
		cb.Draw(DrawDesc{})
	}
	cb.End()

	stop := errors.New("stop here")
	seen := 0
	err := cb.Walk(func(i int, _ Record) error {
		seen++
		if i == 2 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) || seen != 3 {
		t.Errorf("Walk() = %v after %d records, want stop after 3", err, seen)
	}
}
