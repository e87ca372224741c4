package trace

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/cmdstream"
)

type named string

func (n named) String() string { return string(n) }

type pipeline struct {
	name string
	bp   cmdstream.BindPoint
}

func (p *pipeline) BindPoint() cmdstream.BindPoint { return p.bp }
func (p *pipeline) String() string                 { return p.name }

func TestRegistered(t *testing.T) {
	if !cmdstream.IsContextRegistered("trace") {
		t.Fatal("trace context not registered")
	}
	ctx, err := cmdstream.NewContext("trace")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ctx.(*Context); !ok {
		t.Errorf("NewContext(trace) = %T, want *Context", ctx)
	}
	if name, _ := cmdstream.BestContext(); name != "trace" {
		t.Errorf("BestContext() = %q, want trace", name)
	}
}

func TestScenario(t *testing.T) {
	cb := cmdstream.NewCommandBuffer()
	cb.Begin()
	cb.SetViewports(cmdstream.Viewport{Width: 1920, Height: 1080, MaxDepth: 1})
	cb.Draw(cmdstream.DrawDesc{VertexNum: 3, InstanceNum: 1})
	if err := cb.End(); err != nil {
		t.Fatal(err)
	}

	ctx := New()
	if err := cb.Replay(ctx); err != nil {
		t.Fatal(err)
	}
	want := "SetViewports [{0 0 1920 1080 0 1}]\n" +
		"Draw {VertexNum:3 InstanceNum:1 BaseVertex:0 BaseInstance:0}\n"
	if got := ctx.String(); got != want {
		t.Errorf("trace:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatting(t *testing.T) {
	gfx := &pipeline{name: "opaque", bp: cmdstream.BindPointGraphics}
	vb := named("vertices")

	cb := cmdstream.NewCommandBuffer(cmdstream.WithValidation(true))
	cb.Begin()
	cb.BeginAnnotation("frame", 0xff8800)
	cb.SetStencilReference(1, 2)
	cb.SetPipeline(gfx)
	cb.BeginRendering(cmdstream.AttachmentsDesc{Colors: []cmdstream.Descriptor{named("swapchain")}})
	cb.SetVertexBuffers(0, cmdstream.VertexBuffer{Buffer: vb, Offset: 64})
	cb.SetIndexBuffer(named("indices"), 0, gputypes.IndexFormatUint16)
	cb.EndRendering()
	cb.CopyBuffer(named("dst"), 8, named("src"), 0, 256)
	cb.EndAnnotation()
	if err := cb.End(); err != nil {
		t.Fatal(err)
	}

	ctx := New()
	if err := cb.Replay(ctx); err != nil {
		t.Fatal(err)
	}
	want := []string{
		`BeginAnnotation "frame" color=0xff8800`,
		`SetStencilReference front=1 back=2`,
		`SetPipeline opaque Graphics stencil=1/2 blend={0 0 0 0}`,
		`BeginRendering colors=[swapchain] depth=nil`,
		`SetVertexBuffers base=0 [vertices+64]`,
		`SetIndexBuffer indices offset=0 format=Uint16`,
		`EndRendering`,
		`CopyBuffer dst+8 <- src+0 size=256`,
		`EndAnnotation`,
	}
	got := strings.Split(strings.TrimSuffix(ctx.String(), "\n"), "\n")
	if !reflect.DeepEqual(got, want) {
		t.Errorf("trace:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestFailOn(t *testing.T) {
	errBoom := errors.New("boom")
	ctx := New()
	ctx.FailOn(cmdstream.OpDraw, errBoom)

	cb := cmdstream.NewCommandBuffer()
	cb.Begin()
	cb.Draw(cmdstream.DrawDesc{VertexNum: 1})
	cb.Annotation("after", 0)
	cb.End()

	err := cb.Replay(ctx)
	if !errors.Is(err, errBoom) {
		t.Fatalf("Replay() = %v, want boom", err)
	}
	if want := []cmdstream.Opcode{cmdstream.OpDraw, cmdstream.OpAnnotation}; !reflect.DeepEqual(ctx.Ops(), want) {
		t.Errorf("Ops() = %v, want %v", ctx.Ops(), want)
	}

	ctx.FailOn(cmdstream.OpDraw, nil)
	ctx.Reset()
	if err := cb.Replay(ctx); err != nil {
		t.Errorf("Replay() after clearing = %v", err)
	}
	if ctx.Len() != 2 {
		t.Errorf("Len() = %d, want 2", ctx.Len())
	}
}

func TestWriteTo(t *testing.T) {
	ctx := New()
	_ = ctx.Dispatch(cmdstream.DispatchDesc{X: 8, Y: 8, Z: 1})
	_ = ctx.Barrier(cmdstream.BarrierGroup{Buffers: make([]cmdstream.BufferBarrier, 2)})

	var buf bytes.Buffer
	n, err := ctx.WriteTo(&buf)
	if err != nil {
		t.Fatal(err)
	}
	want := "Dispatch 8x8x1\nBarrier globals=0 buffers=2 textures=0\n"
	if buf.String() != want || n != int64(len(want)) {
		t.Errorf("WriteTo() = %d, %q, want %q", n, buf.String(), want)
	}
}

func TestConcurrentUse(t *testing.T) {
	ctx := New()
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				_ = ctx.Annotation("x", 0)
			}
		}()
	}
	wg.Wait()
	if ctx.Len() != 400 {
		t.Errorf("Len() = %d, want 400", ctx.Len())
	}
}
