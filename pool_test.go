package cmdstream

import (
	"sync"
	"testing"
)

func TestAllocatorGetPut(t *testing.T) {
	alloc := NewAllocator(WithLabel("pooled"), WithValidation(true))

	cb := alloc.Get()
	if cb.State() != StateInitial {
		t.Errorf("Get() state = %v, want Initial", cb.State())
	}
	if cb.Label() != "pooled" {
		t.Errorf("Label() = %q, want pooled", cb.Label())
	}
	cb.Begin()
	cb.SetViewports(Viewport{Width: 1, Height: 1})
	cb.End()
	alloc.Put(cb)

	if cb.State() != StateInitial || cb.NumRecords() != 0 {
		t.Errorf("Put() left state %v with %d records", cb.State(), cb.NumRecords())
	}
	if len(cb.objs.objects) != 0 {
		t.Errorf("Put() kept %d objects", len(cb.objs.objects))
	}

	alloc.Put(nil)
}

func TestAllocatorWarmupAndReuse(t *testing.T) {
	alloc := NewAllocator(WithInitialCapacity(1024))
	alloc.Warmup(4)

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cb := alloc.Get()
			defer alloc.Put(cb)
			cb.Begin()
			cb.Draw(DrawDesc{VertexNum: uint32(i)})
			if err := cb.End(); err != nil {
				t.Error(err)
				return
			}
			ctx := newMockContext()
			if err := cb.Replay(ctx); err != nil {
				t.Error(err)
				return
			}
			if len(ctx.calls) != 1 || ctx.calls[0].Args[0].(DrawDesc).VertexNum != uint32(i) {
				t.Errorf("goroutine %d replayed %v", i, ctx.calls)
			}
		}(i)
	}
	wg.Wait()
}

func BenchmarkRecordFrame(b *testing.B) {
	alloc := NewAllocator()
	alloc.Warmup(1)
	b.ReportAllocs()
	for b.Loop() {
		cb := alloc.Get()
		cb.Begin()
		cb.SetPipeline(graphicsPipeline)
		cb.BeginRendering(AttachmentsDesc{})
		for i := range 64 {
			cb.SetVertexBuffers(0, VertexBuffer{Buffer: testBufferA, Offset: uint64(i) * 64})
			cb.Draw(DrawDesc{VertexNum: 3, InstanceNum: 1})
		}
		cb.EndRendering()
		cb.End()
		alloc.Put(cb)
	}
}

func BenchmarkReplayFrame(b *testing.B) {
	cb := NewCommandBuffer()
	cb.Begin()
	cb.SetPipeline(graphicsPipeline)
	cb.BeginRendering(AttachmentsDesc{})
	for range 64 {
		cb.SetViewports(Viewport{Width: 64, Height: 64, MaxDepth: 1})
		cb.Draw(DrawDesc{VertexNum: 3, InstanceNum: 1})
	}
	cb.EndRendering()
	cb.End()

	b.ReportAllocs()
	for b.Loop() {
		if err := cb.Replay(NullContext{}); err != nil {
			b.Fatal(err)
		}
	}
}
