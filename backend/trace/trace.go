// Package trace provides an execution context that records every call it
// receives as text instead of talking to a GPU.
//
// It is useful for tests, for golden-file comparisons of replayed streams
// and for inspecting what a renderer submits:
//
//	ctx := trace.New()
//	if err := cb.Replay(ctx); err != nil {
//	    return err
//	}
//	ctx.WriteTo(os.Stdout)
//
// Importing the package registers the context as "trace":
//
//	import _ "github.com/gogpu/cmdstream/backend/trace"
package trace

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/cmdstream"
)

func init() {
	cmdstream.RegisterContext("trace", func() cmdstream.ExecutionContext {
		return New()
	})
}

// Call is one recorded invocation. Args is the formatted argument list.
type Call struct {
	Op   cmdstream.Opcode
	Args string
}

func (c Call) String() string {
	if c.Args == "" {
		return c.Op.String()
	}
	return c.Op.String() + " " + c.Args
}

// Context records calls. It is safe for concurrent use, although a Queue
// already serializes replay.
type Context struct {
	mu     sync.Mutex
	calls  []Call
	failOn map[cmdstream.Opcode]error
}

var _ cmdstream.ExecutionContext = (*Context)(nil)

// New creates an empty trace context.
func New() *Context {
	return &Context{}
}

// FailOn makes every later call for op record normally and then return err.
// A nil err clears the failure.
func (c *Context) FailOn(op cmdstream.Opcode, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.failOn, op)
		return
	}
	if c.failOn == nil {
		c.failOn = make(map[cmdstream.Opcode]error)
	}
	c.failOn[op] = err
}

// Calls returns a copy of the recorded calls.
func (c *Context) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// Ops returns the opcodes of the recorded calls in order.
func (c *Context) Ops() []cmdstream.Opcode {
	c.mu.Lock()
	defer c.mu.Unlock()
	ops := make([]cmdstream.Opcode, len(c.calls))
	for i, call := range c.calls {
		ops[i] = call.Op
	}
	return ops
}

// Len returns the number of recorded calls.
func (c *Context) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// Reset drops the recorded calls. Failures set with FailOn are kept.
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = c.calls[:0]
}

// WriteTo writes one line per recorded call.
func (c *Context) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	for _, call := range c.Calls() {
		sb.WriteString(call.String())
		sb.WriteByte('\n')
	}
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

// String returns the same text WriteTo writes.
func (c *Context) String() string {
	var sb strings.Builder
	_, _ = c.WriteTo(&sb)
	return sb.String()
}

func (c *Context) add(op cmdstream.Opcode, format string, args ...any) error {
	call := Call{Op: op}
	if format != "" {
		call.Args = fmt.Sprintf(format, args...)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
	return c.failOn[op]
}

// obj formats a native object. Objects that implement fmt.Stringer print
// themselves; others print their type.
func obj(o any) string {
	switch v := o.(type) {
	case nil:
		return "nil"
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%T", o)
	}
}

func objs[T any](list []T) string {
	parts := make([]string, len(list))
	for i, o := range list {
		parts[i] = obj(o)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func region(r cmdstream.TextureRegion) string {
	return fmt.Sprintf("{%d,%d,%d %dx%dx%d mip=%d layer=%d}",
		r.X, r.Y, r.Z, r.Width, r.Height, r.Depth, r.MipOffset, r.LayerOffset)
}

// The ExecutionContext methods below append one Call each. See FailOn.

func (c *Context) SetPipelineLayout(l cmdstream.PipelineLayout) error {
	return c.add(cmdstream.OpSetPipelineLayout, "%s", obj(l))
}

func (c *Context) SetPipeline(p cmdstream.Pipeline, dyn *cmdstream.DynamicState) error {
	bp := "none"
	if p != nil {
		bp = p.BindPoint().String()
	}
	return c.add(cmdstream.OpSetPipeline, "%s %s stencil=%d/%d blend=%v",
		obj(p), bp, dyn.StencilFront, dyn.StencilBack, dyn.BlendConstants)
}

func (c *Context) SetDescriptorPool(p cmdstream.DescriptorPool) error {
	return c.add(cmdstream.OpSetDescriptorPool, "%s", obj(p))
}

func (c *Context) SetDescriptorSet(bp cmdstream.BindPoint, idx uint32, set cmdstream.DescriptorSet, offsets []uint32) error {
	return c.add(cmdstream.OpSetDescriptorSet, "%s set=%d %s offsets=%v", bp, idx, obj(set), offsets)
}

func (c *Context) SetRootConstants(bp cmdstream.BindPoint, idx uint32, data []byte) error {
	return c.add(cmdstream.OpSetRootConstants, "%s index=%d data=[% x]", bp, idx, data)
}

func (c *Context) SetRootDescriptor(bp cmdstream.BindPoint, idx uint32, d cmdstream.Descriptor) error {
	return c.add(cmdstream.OpSetRootDescriptor, "%s index=%d %s", bp, idx, obj(d))
}

func (c *Context) SetViewports(v []cmdstream.Viewport) error {
	return c.add(cmdstream.OpSetViewports, "%v", v)
}

func (c *Context) SetScissors(r []cmdstream.Rect) error {
	return c.add(cmdstream.OpSetScissors, "%v", r)
}

func (c *Context) SetStencilReference(front, back uint8) error {
	return c.add(cmdstream.OpSetStencilReference, "front=%d back=%d", front, back)
}

func (c *Context) SetDepthBounds(minBound, maxBound float32) error {
	return c.add(cmdstream.OpSetDepthBounds, "min=%g max=%g", minBound, maxBound)
}

func (c *Context) SetBlendConstants(col gputypes.Color) error {
	return c.add(cmdstream.OpSetBlendConstants, "%v", col)
}

func (c *Context) SetSampleLocations(l []cmdstream.SampleLocation, n uint8) error {
	return c.add(cmdstream.OpSetSampleLocations, "samples=%d %v", n, l)
}

func (c *Context) SetShadingRate(d cmdstream.ShadingRateDesc) error {
	return c.add(cmdstream.OpSetShadingRate, "%+v", d)
}

func (c *Context) SetDepthBias(d cmdstream.DepthBiasDesc) error {
	return c.add(cmdstream.OpSetDepthBias, "%+v", d)
}

func (c *Context) BeginRendering(d cmdstream.AttachmentsDesc) error {
	return c.add(cmdstream.OpBeginRendering, "colors=%s depth=%s", objs(d.Colors), obj(d.DepthStencil))
}

func (c *Context) EndRendering() error {
	return c.add(cmdstream.OpEndRendering, "")
}

func (c *Context) ClearAttachments(clears []cmdstream.ClearDesc, rects []cmdstream.Rect) error {
	return c.add(cmdstream.OpClearAttachments, "%+v rects=%v", clears, rects)
}

func (c *Context) SetIndexBuffer(b cmdstream.Buffer, off uint64, f gputypes.IndexFormat) error {
	return c.add(cmdstream.OpSetIndexBuffer, "%s offset=%d format=%s", obj(b), off, f)
}

func (c *Context) SetVertexBuffers(base uint32, vbs []cmdstream.VertexBuffer) error {
	parts := make([]string, len(vbs))
	for i, vb := range vbs {
		parts[i] = fmt.Sprintf("%s+%d", obj(vb.Buffer), vb.Offset)
	}
	return c.add(cmdstream.OpSetVertexBuffers, "base=%d [%s]", base, strings.Join(parts, " "))
}

func (c *Context) Draw(d cmdstream.DrawDesc) error {
	return c.add(cmdstream.OpDraw, "%+v", d)
}

func (c *Context) DrawIndexed(d cmdstream.DrawIndexedDesc) error {
	return c.add(cmdstream.OpDrawIndexed, "%+v", d)
}

func (c *Context) DrawIndirect(d cmdstream.IndirectDesc) error {
	return c.add(cmdstream.OpDrawIndirect, "%s offset=%d draws=%d stride=%d count=%s+%d",
		obj(d.Buffer), d.Offset, d.DrawNum, d.Stride, obj(d.CountBuffer), d.CountOffset)
}

func (c *Context) DrawIndexedIndirect(d cmdstream.IndirectDesc) error {
	return c.add(cmdstream.OpDrawIndexedIndirect, "%s offset=%d draws=%d stride=%d count=%s+%d",
		obj(d.Buffer), d.Offset, d.DrawNum, d.Stride, obj(d.CountBuffer), d.CountOffset)
}

func (c *Context) Dispatch(d cmdstream.DispatchDesc) error {
	return c.add(cmdstream.OpDispatch, "%dx%dx%d", d.X, d.Y, d.Z)
}

func (c *Context) DispatchIndirect(b cmdstream.Buffer, off uint64) error {
	return c.add(cmdstream.OpDispatchIndirect, "%s offset=%d", obj(b), off)
}

func (c *Context) CopyBuffer(dst cmdstream.Buffer, dstOff uint64, src cmdstream.Buffer, srcOff, size uint64) error {
	return c.add(cmdstream.OpCopyBuffer, "%s+%d <- %s+%d size=%d", obj(dst), dstOff, obj(src), srcOff, size)
}

func (c *Context) CopyTexture(dst cmdstream.Texture, dr cmdstream.TextureRegion, src cmdstream.Texture, sr cmdstream.TextureRegion) error {
	return c.add(cmdstream.OpCopyTexture, "%s%s <- %s%s", obj(dst), region(dr), obj(src), region(sr))
}

func (c *Context) UploadBufferToTexture(dst cmdstream.Texture, dr cmdstream.TextureRegion, src cmdstream.Buffer, l cmdstream.TextureDataLayout) error {
	return c.add(cmdstream.OpUploadBufferToTexture, "%s%s <- %s%+v", obj(dst), region(dr), obj(src), l)
}

func (c *Context) ReadbackTextureToBuffer(dst cmdstream.Buffer, l cmdstream.TextureDataLayout, src cmdstream.Texture, sr cmdstream.TextureRegion) error {
	return c.add(cmdstream.OpReadbackTextureToBuffer, "%s%+v <- %s%s", obj(dst), l, obj(src), region(sr))
}

func (c *Context) ZeroBuffer(b cmdstream.Buffer, off, size uint64) error {
	return c.add(cmdstream.OpZeroBuffer, "%s+%d size=%d", obj(b), off, size)
}

func (c *Context) ResolveTexture(dst cmdstream.Texture, dr cmdstream.TextureRegion, src cmdstream.Texture, sr cmdstream.TextureRegion) error {
	return c.add(cmdstream.OpResolveTexture, "%s%s <- %s%s", obj(dst), region(dr), obj(src), region(sr))
}

func (c *Context) ClearStorage(d cmdstream.Descriptor, v cmdstream.ClearStorageValue) error {
	return c.add(cmdstream.OpClearStorage, "%s %v", obj(d), v)
}

func (c *Context) Barrier(g cmdstream.BarrierGroup) error {
	return c.add(cmdstream.OpBarrier, "globals=%d buffers=%d textures=%d",
		len(g.Globals), len(g.Buffers), len(g.Textures))
}

func (c *Context) ResetQueries(p cmdstream.QueryPool, off, num uint32) error {
	return c.add(cmdstream.OpResetQueries, "%s offset=%d num=%d", obj(p), off, num)
}

func (c *Context) BeginQuery(p cmdstream.QueryPool, off uint32) error {
	return c.add(cmdstream.OpBeginQuery, "%s offset=%d", obj(p), off)
}

func (c *Context) EndQuery(p cmdstream.QueryPool, off uint32) error {
	return c.add(cmdstream.OpEndQuery, "%s offset=%d", obj(p), off)
}

func (c *Context) CopyQueries(p cmdstream.QueryPool, off, num uint32, dst cmdstream.Buffer, dstOff uint64) error {
	return c.add(cmdstream.OpCopyQueries, "%s offset=%d num=%d -> %s+%d", obj(p), off, num, obj(dst), dstOff)
}

func (c *Context) BeginAnnotation(name string, color uint32) error {
	return c.add(cmdstream.OpBeginAnnotation, "%q color=%#06x", name, color)
}

func (c *Context) EndAnnotation() error {
	return c.add(cmdstream.OpEndAnnotation, "")
}

func (c *Context) Annotation(name string, color uint32) error {
	return c.add(cmdstream.OpAnnotation, "%q color=%#06x", name, color)
}
