package cmdstream

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/cmdstream/internal/wire"
)

// CommandBuffer records GPU commands into a private word stream and replays
// them later against an ExecutionContext.
//
// A CommandBuffer moves through Initial, Recording and Ended. Record
// methods are only valid while Recording; End seals the stream, after which
// it may be replayed any number of times. Begin on an ended buffer starts
// over, keeping the allocated storage.
//
// A CommandBuffer is not safe for concurrent use, but distinct command
// buffers share no state and may be recorded on different goroutines at
// the same time. Replay of an ended buffer only reads it.
//
// Example:
//
//	cb := cmdstream.NewCommandBuffer()
//	cb.Begin()
//	cb.SetViewports(cmdstream.Viewport{Width: 1920, Height: 1080, MaxDepth: 1})
//	cb.Draw(cmdstream.DrawDesc{VertexNum: 3, InstanceNum: 1})
//	if err := cb.End(); err != nil {
//	    return err
//	}
//	return queue.Submit(ctx, cb)
type CommandBuffer struct {
	opts options

	buf  *wire.Buffer
	enc  *wire.Encoder
	w    writer
	objs objectTable

	state   State
	rs      recordState
	records int

	// err is the first resource failure of the current recording.
	err error
}

// NewCommandBuffer creates a command buffer in the Initial state.
func NewCommandBuffer(opts ...Option) *CommandBuffer {
	cb := &CommandBuffer{}
	cb.init(applyOptions(opts))
	return cb
}

func (cb *CommandBuffer) init(o options) {
	cb.opts = o
	cb.buf = wire.NewBuffer(wire.WordsFor(o.initialCapacity))
	limit := o.maxSize / wire.WordSize
	if o.maxSize > 0 && limit == 0 {
		limit = 1
	}
	cb.buf.SetLimit(limit)
	cb.enc = wire.NewEncoder(cb.buf)
	cb.w = writer{e: cb.enc, objs: &cb.objs}
}

// Label returns the label set with WithLabel.
func (cb *CommandBuffer) Label() string {
	return cb.opts.label
}

// State returns the lifecycle state.
func (cb *CommandBuffer) State() State {
	return cb.state
}

// Err returns the resource failure that broke the current recording, if
// any. Once set, further records are dropped, End returns it and Replay
// refuses the buffer.
func (cb *CommandBuffer) Err() error {
	return cb.err
}

// Len returns the length of the recorded stream in words.
func (cb *CommandBuffer) Len() int {
	return cb.buf.Len()
}

// Size returns the length of the recorded stream in bytes.
func (cb *CommandBuffer) Size() int {
	return cb.buf.Len() * wire.WordSize
}

// NumRecords returns the number of records in the stream, including the
// terminal End record of an ended buffer.
func (cb *CommandBuffer) NumRecords() int {
	return cb.records
}

// Pipeline returns the pipeline most recently bound while recording.
func (cb *CommandBuffer) Pipeline() Pipeline {
	return cb.rs.pipeline
}

// PipelineLayout returns the pipeline layout most recently set while
// recording.
func (cb *CommandBuffer) PipelineLayout() PipelineLayout {
	return cb.rs.layout
}

// DescriptorPool returns the descriptor pool most recently set while
// recording.
func (cb *CommandBuffer) DescriptorPool() DescriptorPool {
	return cb.rs.pool
}

// InRendering reports whether a rendering bracket is open.
func (cb *CommandBuffer) InRendering() bool {
	return cb.rs.rendering
}

// Begin starts a new recording. Any previous contents are discarded; the
// allocated storage is kept.
func (cb *CommandBuffer) Begin() {
	if cb.state == StateRecording {
		cb.misuse("Begin", "already recording")
		return
	}
	cb.clear()
	cb.state = StateRecording
	Logger().Debug("cmdstream: begin",
		slog.String("label", cb.opts.label),
		slog.Int("capacity", cb.buf.Cap()))
}

// End finishes the recording and seals the stream. It returns the resource
// failure of the recording, if any.
func (cb *CommandBuffer) End() error {
	if cb.state != StateRecording {
		return cb.misuse("End", "not recording (state "+cb.state.String()+")")
	}
	// Brackets left open by a resource failure are not misuse.
	if cb.opts.validation && cb.err == nil {
		if cb.rs.rendering {
			cb.misuse("End", "rendering not ended")
		}
		if cb.rs.annotationDepth > 0 {
			cb.misuse("End", "annotation not ended")
		}
	}
	if cb.err == nil {
		cb.encode(EndCmd{})
	}
	cb.buf.Seal()
	cb.state = StateEnded
	Logger().Debug("cmdstream: end",
		slog.String("label", cb.opts.label),
		slog.Int("records", cb.records),
		slog.Int("words", cb.buf.Len()))
	return cb.err
}

// Reset returns the command buffer to the Initial state and drops its
// references to recorded objects.
func (cb *CommandBuffer) Reset() {
	cb.clear()
	cb.state = StateInitial
}

func (cb *CommandBuffer) clear() {
	cb.buf.Reset()
	cb.objs.reset()
	cb.rs.reset()
	cb.records = 0
	cb.err = nil
}

// Replay executes the recorded commands against ctx in recorded order.
//
// Native failures are logged, handed to the ErrorHandler and skipped; the
// remaining records still run. Replay returns all of them joined. A stream
// that cannot be decoded stops replay with an error wrapping ErrCorrupt.
//
// The buffer must be Ended and must not have failed while recording.
// Replay never mutates the buffer, but it is not safe to replay one buffer
// from two goroutines against the same context.
func (cb *CommandBuffer) Replay(ctx ExecutionContext) error {
	if err := cb.replayable(); err != nil {
		return err
	}
	return cb.replay(ctx, cb.opts.errorHandler)
}

func (cb *CommandBuffer) replayable() error {
	if cb.state != StateEnded {
		return fmt.Errorf("%w (state %s)", ErrNotEnded, cb.state)
	}
	if cb.err != nil {
		return fmt.Errorf("cmdstream: command buffer failed while recording: %w", cb.err)
	}
	return nil
}

// Walk decodes the recorded stream and calls fn for every record in order,
// stopping at the first error fn returns. Records passed to fn alias the
// buffer and are only valid during the call.
func (cb *CommandBuffer) Walk(fn func(index int, rec Record) error) error {
	return walk(cb.buf.Words(), &cb.objs, nil, nil, fn)
}

// Append records rec as if the matching record method had been called.
// It can re-record records obtained from Walk. A pointer to a record is
// recorded as the record it points to.
func (cb *CommandBuffer) Append(rec Record) {
	if v := reflect.ValueOf(rec); v.Kind() == reflect.Pointer {
		if v.IsNil() {
			cb.misuse("Append", "nil record")
			return
		}
		rec = v.Elem().Interface().(Record)
	}
	switch {
	case rec == nil:
		cb.misuse("Append", "nil record")
	case rec.Op() == OpEnd:
		cb.misuse("Append", "the End record is written by End")
	default:
		cb.record(rec)
	}
}

func (cb *CommandBuffer) misuse(method, reason string) error {
	err := &UsageError{Method: method, Label: cb.opts.label, Reason: reason}
	if cb.opts.validation {
		panic(err)
	}
	Logger().Warn("cmdstream: usage error",
		slog.String("method", method),
		slog.String("label", cb.opts.label),
		slog.String("reason", reason))
	return err
}

// record validates and encodes one record. Calls outside Recording, and
// calls after a resource failure, are dropped.
func (cb *CommandBuffer) record(rec Record) {
	op := rec.Op()
	if cb.state != StateRecording {
		cb.misuse(op.String(), "not recording (state "+cb.state.String()+")")
		return
	}
	if cb.err != nil {
		return
	}
	if cb.opts.validation {
		if reason := cb.rs.check(rec); reason != "" {
			cb.misuse(op.String(), reason)
			return
		}
	}
	if cb.encode(rec) {
		cb.rs.update(rec)
	}
}

func (cb *CommandBuffer) encode(rec Record) bool {
	objs := cb.objs.len()
	cb.enc.Begin(uint32(rec.Op()))
	rec.encode(&cb.w)
	if err := cb.enc.End(); err != nil {
		cb.objs.truncate(objs)
		cb.err = fmt.Errorf("cmdstream: %s: %w", rec.Op(), err)
		Logger().Warn("cmdstream: recording failed",
			slog.String("label", cb.opts.label),
			slog.String("op", rec.Op().String()),
			slog.Any("err", err))
		return false
	}
	cb.records++
	return true
}

// check returns why rec may not be recorded in the current state, or "".
func (s *recordState) check(rec Record) string {
	switch c := rec.(type) {
	case SetPipelineCmd:
		if c.Pipeline == nil {
			return "nil pipeline"
		}
	case SetDescriptorSetCmd, SetRootConstantsCmd, SetRootDescriptorCmd:
		if s.layout == nil {
			return "no pipeline layout set"
		}
	case BeginRenderingCmd:
		if s.rendering {
			return "rendering already begun"
		}
	case EndRenderingCmd:
		if !s.rendering {
			return "no rendering to end"
		}
	case ClearAttachmentsCmd:
		if !s.rendering {
			return "outside rendering"
		}
	case EndAnnotationCmd:
		if s.annotationDepth == 0 {
			return "no annotation to end"
		}
	}

	op := rec.Op()
	switch {
	case op.IsDraw():
		if bp, ok := s.bindPoint(); !ok || bp != BindPointGraphics {
			return "no graphics pipeline bound"
		}
		if !s.rendering {
			return "outside rendering"
		}
	case op.Category() == CategoryCompute:
		if bp, ok := s.bindPoint(); !ok || bp != BindPointCompute {
			return "no compute pipeline bound"
		}
		if s.rendering {
			return "inside rendering"
		}
	case op.IsCopy(), op == OpBarrier:
		if s.rendering {
			return "inside rendering"
		}
	}
	return ""
}

// update applies the side effects of a recorded rec.
func (s *recordState) update(rec Record) {
	switch c := rec.(type) {
	case SetPipelineCmd:
		s.pipeline = c.Pipeline
	case SetPipelineLayoutCmd:
		s.layout = c.Layout
	case SetDescriptorPoolCmd:
		s.pool = c.Pool
	case BeginRenderingCmd:
		s.rendering = true
	case EndRenderingCmd:
		s.rendering = false
	case BeginAnnotationCmd:
		s.annotationDepth++
	case EndAnnotationCmd:
		if s.annotationDepth > 0 {
			s.annotationDepth--
		}
	}
}

// SetPipelineLayout sets the pipeline layout used by later descriptor set
// and root bindings.
func (cb *CommandBuffer) SetPipelineLayout(layout PipelineLayout) {
	cb.record(SetPipelineLayoutCmd{Layout: layout})
}

// SetPipeline binds a graphics or compute pipeline. Later bindings apply to
// its bind point.
func (cb *CommandBuffer) SetPipeline(p Pipeline) {
	cb.record(SetPipelineCmd{Pipeline: p})
}

// SetDescriptorPool selects the descriptor pool.
func (cb *CommandBuffer) SetDescriptorPool(pool DescriptorPool) {
	cb.record(SetDescriptorPoolCmd{Pool: pool})
}

// SetDescriptorSet binds set at setIndex. dynamicOffsets is copied.
func (cb *CommandBuffer) SetDescriptorSet(setIndex uint32, set DescriptorSet, dynamicOffsets []uint32) {
	cb.record(SetDescriptorSetCmd{SetIndex: setIndex, Set: set, DynamicOffsets: dynamicOffsets})
}

// SetRootConstants writes push constants at the given root index. data is
// copied.
func (cb *CommandBuffer) SetRootConstants(index uint32, data []byte) {
	cb.record(SetRootConstantsCmd{Index: index, Data: data})
}

// SetRootDescriptor binds d directly at the given root index.
func (cb *CommandBuffer) SetRootDescriptor(index uint32, d Descriptor) {
	cb.record(SetRootDescriptorCmd{Index: index, Descriptor: d})
}

// SetViewports sets viewports starting at slot 0.
func (cb *CommandBuffer) SetViewports(viewports ...Viewport) {
	cb.record(SetViewportsCmd{Viewports: viewports})
}

// SetScissors sets scissor rectangles starting at slot 0. Zero rectangles
// is valid and is still replayed.
func (cb *CommandBuffer) SetScissors(rects ...Rect) {
	cb.record(SetScissorsCmd{Rects: rects})
}

// SetStencilReference sets the front and back stencil reference values.
func (cb *CommandBuffer) SetStencilReference(front, back uint8) {
	cb.record(SetStencilReferenceCmd{Front: front, Back: back})
}

// SetDepthBounds sets the depth bounds test range.
func (cb *CommandBuffer) SetDepthBounds(minBound, maxBound float32) {
	cb.record(SetDepthBoundsCmd{Min: minBound, Max: maxBound})
}

// SetBlendConstants sets the constant color used by blend factors.
func (cb *CommandBuffer) SetBlendConstants(c gputypes.Color) {
	cb.record(SetBlendConstantsCmd{Color: c})
}

// SetSampleLocations sets custom sample positions for sampleNum samples
// per pixel. The slice is copied.
func (cb *CommandBuffer) SetSampleLocations(locations []SampleLocation, sampleNum uint8) {
	cb.record(SetSampleLocationsCmd{Locations: locations, SampleNum: sampleNum})
}

// SetShadingRate sets the variable shading rate.
func (cb *CommandBuffer) SetShadingRate(desc ShadingRateDesc) {
	cb.record(SetShadingRateCmd{desc})
}

// SetDepthBias sets the depth bias applied to rasterized primitives.
func (cb *CommandBuffer) SetDepthBias(desc DepthBiasDesc) {
	cb.record(SetDepthBiasCmd{desc})
}

// BeginRendering opens a rendering bracket on the given attachments.
func (cb *CommandBuffer) BeginRendering(desc AttachmentsDesc) {
	cb.record(BeginRenderingCmd{Attachments: desc})
}

// EndRendering closes the rendering bracket.
func (cb *CommandBuffer) EndRendering() {
	cb.record(EndRenderingCmd{})
}

// ClearAttachments clears rects of the current attachments.
func (cb *CommandBuffer) ClearAttachments(clears []ClearDesc, rects []Rect) {
	cb.record(ClearAttachmentsCmd{Clears: clears, Rects: rects})
}

// SetIndexBuffer binds the index buffer for indexed draws.
func (cb *CommandBuffer) SetIndexBuffer(buf Buffer, offset uint64, format gputypes.IndexFormat) {
	cb.record(SetIndexBufferCmd{Buffer: buf, Offset: offset, Format: format})
}

// SetVertexBuffers binds vertex buffers starting at baseSlot.
func (cb *CommandBuffer) SetVertexBuffers(baseSlot uint32, buffers ...VertexBuffer) {
	cb.record(SetVertexBuffersCmd{BaseSlot: baseSlot, Buffers: buffers})
}

// Draw records a non-indexed draw. It needs a graphics pipeline and an
// open rendering bracket.
func (cb *CommandBuffer) Draw(desc DrawDesc) {
	cb.record(DrawCmd{desc})
}

// DrawIndexed records an indexed draw using the bound index buffer.
func (cb *CommandBuffer) DrawIndexed(desc DrawIndexedDesc) {
	cb.record(DrawIndexedCmd{desc})
}

// DrawIndirect records up to desc.DrawNum draws whose arguments are read
// from desc.Buffer.
func (cb *CommandBuffer) DrawIndirect(desc IndirectDesc) {
	cb.record(DrawIndirectCmd{desc})
}

// DrawIndexedIndirect is the indexed form of DrawIndirect.
func (cb *CommandBuffer) DrawIndexedIndirect(desc IndirectDesc) {
	cb.record(DrawIndexedIndirectCmd{desc})
}

// Dispatch records a compute dispatch. It needs a compute pipeline and
// must be outside rendering.
func (cb *CommandBuffer) Dispatch(desc DispatchDesc) {
	cb.record(DispatchCmd{desc})
}

// DispatchIndirect reads the group counts from buf at offset.
func (cb *CommandBuffer) DispatchIndirect(buf Buffer, offset uint64) {
	cb.record(DispatchIndirectCmd{Buffer: buf, Offset: offset})
}

// CopyBuffer copies size bytes from src to dst.
func (cb *CommandBuffer) CopyBuffer(dst Buffer, dstOffset uint64, src Buffer, srcOffset uint64, size uint64) {
	cb.record(CopyBufferCmd{Dst: dst, DstOffset: dstOffset, Src: src, SrcOffset: srcOffset, Size: size})
}

// CopyTexture copies a texture region.
func (cb *CommandBuffer) CopyTexture(dst Texture, dstRegion TextureRegion, src Texture, srcRegion TextureRegion) {
	cb.record(CopyTextureCmd{Dst: dst, DstRegion: dstRegion, Src: src, SrcRegion: srcRegion})
}

// UploadBufferToTexture copies buffer data laid out as layout into a
// texture region.
func (cb *CommandBuffer) UploadBufferToTexture(dst Texture, dstRegion TextureRegion, src Buffer, layout TextureDataLayout) {
	cb.record(UploadBufferToTextureCmd{Dst: dst, DstRegion: dstRegion, Src: src, Layout: layout})
}

// ReadbackTextureToBuffer is the reverse of UploadBufferToTexture.
func (cb *CommandBuffer) ReadbackTextureToBuffer(dst Buffer, layout TextureDataLayout, src Texture, srcRegion TextureRegion) {
	cb.record(ReadbackTextureToBufferCmd{Dst: dst, Layout: layout, Src: src, SrcRegion: srcRegion})
}

// ZeroBuffer fills size bytes of buf at offset with zeros.
func (cb *CommandBuffer) ZeroBuffer(buf Buffer, offset, size uint64) {
	cb.record(ZeroBufferCmd{Buffer: buf, Offset: offset, Size: size})
}

// ResolveTexture resolves a multisampled region of src into dst.
func (cb *CommandBuffer) ResolveTexture(dst Texture, dstRegion TextureRegion, src Texture, srcRegion TextureRegion) {
	cb.record(ResolveTextureCmd{Dst: dst, DstRegion: dstRegion, Src: src, SrcRegion: srcRegion})
}

// ClearStorage clears the storage resource behind d to value.
func (cb *CommandBuffer) ClearStorage(d Descriptor, value ClearStorageValue) {
	cb.record(ClearStorageCmd{Descriptor: d, Value: value})
}

// Barrier records a group of barriers. The group's slices are copied.
func (cb *CommandBuffer) Barrier(group BarrierGroup) {
	cb.record(BarrierCmd{group})
}

// ResetQueries resets num queries of pool starting at offset.
func (cb *CommandBuffer) ResetQueries(pool QueryPool, offset, num uint32) {
	cb.record(ResetQueriesCmd{Pool: pool, Offset: offset, Num: num})
}

// BeginQuery starts the query at offset.
func (cb *CommandBuffer) BeginQuery(pool QueryPool, offset uint32) {
	cb.record(BeginQueryCmd{Pool: pool, Offset: offset})
}

// EndQuery ends the query at offset.
func (cb *CommandBuffer) EndQuery(pool QueryPool, offset uint32) {
	cb.record(EndQueryCmd{Pool: pool, Offset: offset})
}

// CopyQueries writes num query results into dst at dstOffset.
func (cb *CommandBuffer) CopyQueries(pool QueryPool, offset, num uint32, dst Buffer, dstOffset uint64) {
	cb.record(CopyQueriesCmd{Pool: pool, Offset: offset, Num: num, Dst: dst, DstOffset: dstOffset})
}

// BeginAnnotation opens a named debug region. color is 0xRRGGBB.
func (cb *CommandBuffer) BeginAnnotation(name string, color uint32) {
	cb.record(BeginAnnotationCmd{Name: name, Color: color})
}

// EndAnnotation closes the innermost debug region.
func (cb *CommandBuffer) EndAnnotation() {
	cb.record(EndAnnotationCmd{})
}

// Annotation inserts a named debug marker.
func (cb *CommandBuffer) Annotation(name string, color uint32) {
	cb.record(AnnotationCmd{Name: name, Color: color})
}
