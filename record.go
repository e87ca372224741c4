package cmdstream

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/cmdstream/internal/wire"
)

// Record is one decoded command. The set of implementations is closed: it
// is exactly the XxxCmd types of this package, one per Opcode.
//
// Records returned by CommandBuffer.Walk alias the command buffer's storage
// and are only valid until the walk callback returns.
type Record interface {
	// Op returns the opcode the record is encoded with.
	Op() Opcode

	encode(w *writer)
	apply(p *replayer) error
}

// Wire forms of argument blocks that reference objects. Objects are stored
// as refs into the command buffer's object table; everything here is plain
// data.
type (
	refArg struct {
		Ref ObjectRef
	}
	indexRefArg struct {
		Index uint32
		Ref   ObjectRef
	}
	indexArg struct {
		Index uint32
	}
	stencilArg struct {
		Front, Back uint8
	}
	depthBoundsArg struct {
		Min, Max float32
	}
	sampleArg struct {
		SampleNum uint8
	}
	indexBufferArg struct {
		Buffer ObjectRef
		Format gputypes.IndexFormat
		Offset uint64
	}
	vertexBufferArg struct {
		Buffer ObjectRef
		_      uint32
		Offset uint64
	}
	indirectArg struct {
		Buffer      ObjectRef
		CountBuffer ObjectRef
		DrawNum     uint32
		Stride      uint32
		Offset      uint64
		CountOffset uint64
	}
	bufferRangeArg struct {
		Buffer ObjectRef
		_      uint32
		Offset uint64
		Size   uint64
	}
	copyBufferArg struct {
		Dst, Src  ObjectRef
		DstOffset uint64
		SrcOffset uint64
		Size      uint64
	}
	textureCopyArg struct {
		Dst, Src  ObjectRef
		DstRegion TextureRegion
		SrcRegion TextureRegion
	}
	textureTransferArg struct {
		Texture ObjectRef
		Buffer  ObjectRef
		Region  TextureRegion
		Layout  TextureDataLayout
	}
	clearStorageArg struct {
		Descriptor ObjectRef
		Value      ClearStorageValue
	}
	bufferBarrierArg struct {
		Buffer ObjectRef
		_      uint32
		Before gputypes.BufferUsage
		After  gputypes.BufferUsage
	}
	textureBarrierArg struct {
		Texture     ObjectRef
		MipOffset   uint32
		MipNum      uint32
		LayerOffset uint32
		LayerNum    uint32
		Aspect      gputypes.TextureAspect
		Before      gputypes.TextureUsage
		After       gputypes.TextureUsage
	}
	queryArg struct {
		Pool        ObjectRef
		Offset, Num uint32
	}
	copyQueriesArg struct {
		Pool        ObjectRef
		Offset, Num uint32
		Dst         ObjectRef
		DstOffset   uint64
	}
	colorArg struct {
		Color uint32
	}
)

// writer encodes records into a command buffer. Its slices are reused
// between records to convert object arrays into their wire form.
type writer struct {
	e    *wire.Encoder
	objs *objectTable

	refs []ObjectRef
	vbs  []vertexBufferArg
	bbs  []bufferBarrierArg
	tbs  []textureBarrierArg
}

func (w *writer) ref(obj any) ObjectRef {
	return w.objs.add(obj)
}

// reader decodes the records of one walk. The first failure sticks; later
// reads return zero values. Its slices back the resolved object arrays of
// the current record.
type reader struct {
	d    *wire.Decoder
	objs *objectTable
	err  error

	colors []Descriptor
	vbs    []VertexBuffer
	bbs    []BufferBarrier
	tbs    []TextureBarrier
}

func fixed[T any](r *reader) T {
	var v T
	if r.err != nil {
		return v
	}
	v, r.err = wire.ReadFixed[T](r.d)
	return v
}

func array[E any](r *reader) []E {
	if r.err != nil {
		return nil
	}
	s, err := wire.ReadArray[E](r.d)
	r.err = err
	return s
}

func object[T any](r *reader, ref ObjectRef) T {
	var v T
	if r.err != nil {
		return v
	}
	v, r.err = lookup[T](r.objs, ref)
	return v
}

// finish checks that the record was consumed exactly.
func (r *reader) finish() error {
	if r.err == nil && r.d.Remaining() != 0 {
		r.err = fmt.Errorf("%d unread words", r.d.Remaining())
	}
	return r.err
}

// codec decodes one opcode either into a Record or straight into a replay
// step. The replay path keeps the typed record off the heap.
type codec struct {
	decode func(*reader) Record
	replay func(*reader, *replayer) error
}

func codecFor[R Record](dec func(*reader) R) codec {
	return codec{
		decode: func(r *reader) Record {
			rec := dec(r)
			if r.finish() != nil {
				return nil
			}
			return rec
		},
		replay: func(r *reader, p *replayer) error {
			rec := dec(r)
			if r.finish() != nil {
				return nil
			}
			return rec.apply(p)
		},
	}
}

var codecs = [opcodeCount]codec{
	OpSetPipelineLayout: codecFor(func(r *reader) SetPipelineLayoutCmd {
		a := fixed[refArg](r)
		return SetPipelineLayoutCmd{Layout: object[PipelineLayout](r, a.Ref)}
	}),
	OpSetPipeline: codecFor(func(r *reader) SetPipelineCmd {
		a := fixed[refArg](r)
		return SetPipelineCmd{Pipeline: object[Pipeline](r, a.Ref)}
	}),
	OpSetDescriptorPool: codecFor(func(r *reader) SetDescriptorPoolCmd {
		a := fixed[refArg](r)
		return SetDescriptorPoolCmd{Pool: object[DescriptorPool](r, a.Ref)}
	}),
	OpSetDescriptorSet: codecFor(func(r *reader) SetDescriptorSetCmd {
		a := fixed[indexRefArg](r)
		offsets := array[uint32](r)
		return SetDescriptorSetCmd{SetIndex: a.Index, Set: object[DescriptorSet](r, a.Ref), DynamicOffsets: offsets}
	}),
	OpSetRootConstants: codecFor(func(r *reader) SetRootConstantsCmd {
		a := fixed[indexArg](r)
		return SetRootConstantsCmd{Index: a.Index, Data: array[byte](r)}
	}),
	OpSetRootDescriptor: codecFor(func(r *reader) SetRootDescriptorCmd {
		a := fixed[indexRefArg](r)
		return SetRootDescriptorCmd{Index: a.Index, Descriptor: object[Descriptor](r, a.Ref)}
	}),
	OpSetViewports: codecFor(func(r *reader) SetViewportsCmd {
		return SetViewportsCmd{Viewports: array[Viewport](r)}
	}),
	OpSetScissors: codecFor(func(r *reader) SetScissorsCmd {
		return SetScissorsCmd{Rects: array[Rect](r)}
	}),
	OpSetStencilReference: codecFor(func(r *reader) SetStencilReferenceCmd {
		a := fixed[stencilArg](r)
		return SetStencilReferenceCmd{Front: a.Front, Back: a.Back}
	}),
	OpSetDepthBounds: codecFor(func(r *reader) SetDepthBoundsCmd {
		a := fixed[depthBoundsArg](r)
		return SetDepthBoundsCmd{Min: a.Min, Max: a.Max}
	}),
	OpSetBlendConstants: codecFor(func(r *reader) SetBlendConstantsCmd {
		return SetBlendConstantsCmd{Color: fixed[gputypes.Color](r)}
	}),
	OpSetSampleLocations: codecFor(func(r *reader) SetSampleLocationsCmd {
		a := fixed[sampleArg](r)
		return SetSampleLocationsCmd{Locations: array[SampleLocation](r), SampleNum: a.SampleNum}
	}),
	OpSetShadingRate: codecFor(func(r *reader) SetShadingRateCmd {
		return SetShadingRateCmd{fixed[ShadingRateDesc](r)}
	}),
	OpSetDepthBias: codecFor(func(r *reader) SetDepthBiasCmd {
		return SetDepthBiasCmd{fixed[DepthBiasDesc](r)}
	}),
	OpBeginRendering: codecFor(decodeBeginRendering),
	OpEndRendering: codecFor(func(*reader) EndRenderingCmd {
		return EndRenderingCmd{}
	}),
	OpClearAttachments: codecFor(func(r *reader) ClearAttachmentsCmd {
		clears := array[ClearDesc](r)
		return ClearAttachmentsCmd{Clears: clears, Rects: array[Rect](r)}
	}),
	OpSetIndexBuffer: codecFor(func(r *reader) SetIndexBufferCmd {
		a := fixed[indexBufferArg](r)
		return SetIndexBufferCmd{Buffer: object[Buffer](r, a.Buffer), Offset: a.Offset, Format: a.Format}
	}),
	OpSetVertexBuffers: codecFor(decodeSetVertexBuffers),
	OpDraw: codecFor(func(r *reader) DrawCmd {
		return DrawCmd{fixed[DrawDesc](r)}
	}),
	OpDrawIndexed: codecFor(func(r *reader) DrawIndexedCmd {
		return DrawIndexedCmd{fixed[DrawIndexedDesc](r)}
	}),
	OpDrawIndirect: codecFor(func(r *reader) DrawIndirectCmd {
		return DrawIndirectCmd{decodeIndirect(r)}
	}),
	OpDrawIndexedIndirect: codecFor(func(r *reader) DrawIndexedIndirectCmd {
		return DrawIndexedIndirectCmd{decodeIndirect(r)}
	}),
	OpDispatch: codecFor(func(r *reader) DispatchCmd {
		return DispatchCmd{fixed[DispatchDesc](r)}
	}),
	OpDispatchIndirect: codecFor(func(r *reader) DispatchIndirectCmd {
		a := fixed[bufferRangeArg](r)
		return DispatchIndirectCmd{Buffer: object[Buffer](r, a.Buffer), Offset: a.Offset}
	}),
	OpCopyBuffer: codecFor(func(r *reader) CopyBufferCmd {
		a := fixed[copyBufferArg](r)
		return CopyBufferCmd{
			Dst:       object[Buffer](r, a.Dst),
			DstOffset: a.DstOffset,
			Src:       object[Buffer](r, a.Src),
			SrcOffset: a.SrcOffset,
			Size:      a.Size,
		}
	}),
	OpCopyTexture: codecFor(func(r *reader) CopyTextureCmd {
		return CopyTextureCmd(decodeTextureCopy(r))
	}),
	OpUploadBufferToTexture: codecFor(func(r *reader) UploadBufferToTextureCmd {
		a := fixed[textureTransferArg](r)
		return UploadBufferToTextureCmd{
			Dst:       object[Texture](r, a.Texture),
			DstRegion: a.Region,
			Src:       object[Buffer](r, a.Buffer),
			Layout:    a.Layout,
		}
	}),
	OpReadbackTextureToBuffer: codecFor(func(r *reader) ReadbackTextureToBufferCmd {
		a := fixed[textureTransferArg](r)
		return ReadbackTextureToBufferCmd{
			Dst:       object[Buffer](r, a.Buffer),
			Layout:    a.Layout,
			Src:       object[Texture](r, a.Texture),
			SrcRegion: a.Region,
		}
	}),
	OpZeroBuffer: codecFor(func(r *reader) ZeroBufferCmd {
		a := fixed[bufferRangeArg](r)
		return ZeroBufferCmd{Buffer: object[Buffer](r, a.Buffer), Offset: a.Offset, Size: a.Size}
	}),
	OpResolveTexture: codecFor(func(r *reader) ResolveTextureCmd {
		return ResolveTextureCmd(decodeTextureCopy(r))
	}),
	OpClearStorage: codecFor(func(r *reader) ClearStorageCmd {
		a := fixed[clearStorageArg](r)
		return ClearStorageCmd{Descriptor: object[Descriptor](r, a.Descriptor), Value: a.Value}
	}),
	OpBarrier: codecFor(decodeBarrier),
	OpResetQueries: codecFor(func(r *reader) ResetQueriesCmd {
		a := fixed[queryArg](r)
		return ResetQueriesCmd{Pool: object[QueryPool](r, a.Pool), Offset: a.Offset, Num: a.Num}
	}),
	OpBeginQuery: codecFor(func(r *reader) BeginQueryCmd {
		a := fixed[queryArg](r)
		return BeginQueryCmd{Pool: object[QueryPool](r, a.Pool), Offset: a.Offset}
	}),
	OpEndQuery: codecFor(func(r *reader) EndQueryCmd {
		a := fixed[queryArg](r)
		return EndQueryCmd{Pool: object[QueryPool](r, a.Pool), Offset: a.Offset}
	}),
	OpCopyQueries: codecFor(func(r *reader) CopyQueriesCmd {
		a := fixed[copyQueriesArg](r)
		return CopyQueriesCmd{
			Pool:      object[QueryPool](r, a.Pool),
			Offset:    a.Offset,
			Num:       a.Num,
			Dst:       object[Buffer](r, a.Dst),
			DstOffset: a.DstOffset,
		}
	}),
	OpBeginAnnotation: codecFor(func(r *reader) BeginAnnotationCmd {
		a := fixed[colorArg](r)
		return BeginAnnotationCmd{Name: string(array[byte](r)), Color: a.Color}
	}),
	OpEndAnnotation: codecFor(func(*reader) EndAnnotationCmd {
		return EndAnnotationCmd{}
	}),
	OpAnnotation: codecFor(func(r *reader) AnnotationCmd {
		a := fixed[colorArg](r)
		return AnnotationCmd{Name: string(array[byte](r)), Color: a.Color}
	}),
	OpEnd: codecFor(func(*reader) EndCmd {
		return EndCmd{}
	}),
}

func decodeBeginRendering(r *reader) BeginRenderingCmd {
	a := fixed[refArg](r)
	refs := array[ObjectRef](r)
	colors := r.colors[:0]
	if colors == nil {
		colors = []Descriptor{}
	}
	for _, ref := range refs {
		colors = append(colors, object[Descriptor](r, ref))
	}
	r.colors = colors
	return BeginRenderingCmd{AttachmentsDesc{
		Colors:       colors,
		DepthStencil: object[Descriptor](r, a.Ref),
	}}
}

func decodeSetVertexBuffers(r *reader) SetVertexBuffersCmd {
	a := fixed[indexArg](r)
	args := array[vertexBufferArg](r)
	vbs := r.vbs[:0]
	if vbs == nil {
		vbs = []VertexBuffer{}
	}
	for _, arg := range args {
		vbs = append(vbs, VertexBuffer{Buffer: object[Buffer](r, arg.Buffer), Offset: arg.Offset})
	}
	r.vbs = vbs
	return SetVertexBuffersCmd{BaseSlot: a.Index, Buffers: vbs}
}

func decodeIndirect(r *reader) IndirectDesc {
	a := fixed[indirectArg](r)
	return IndirectDesc{
		Buffer:      object[Buffer](r, a.Buffer),
		Offset:      a.Offset,
		DrawNum:     a.DrawNum,
		Stride:      a.Stride,
		CountBuffer: object[Buffer](r, a.CountBuffer),
		CountOffset: a.CountOffset,
	}
}

// textureCopy is the shared shape of CopyTextureCmd and ResolveTextureCmd.
type textureCopy struct {
	Dst       Texture
	DstRegion TextureRegion
	Src       Texture
	SrcRegion TextureRegion
}

func decodeTextureCopy(r *reader) textureCopy {
	a := fixed[textureCopyArg](r)
	return textureCopy{
		Dst:       object[Texture](r, a.Dst),
		DstRegion: a.DstRegion,
		Src:       object[Texture](r, a.Src),
		SrcRegion: a.SrcRegion,
	}
}

func (c textureCopy) encode(w *writer) {
	wire.Fixed(w.e, &textureCopyArg{
		Dst:       w.ref(c.Dst),
		Src:       w.ref(c.Src),
		DstRegion: c.DstRegion,
		SrcRegion: c.SrcRegion,
	})
}

func decodeBarrier(r *reader) BarrierCmd {
	globals := array[GlobalBarrier](r)
	bargs := array[bufferBarrierArg](r)
	targs := array[textureBarrierArg](r)

	bbs := r.bbs[:0]
	if bbs == nil {
		bbs = []BufferBarrier{}
	}
	for _, a := range bargs {
		bbs = append(bbs, BufferBarrier{Buffer: object[Buffer](r, a.Buffer), Before: a.Before, After: a.After})
	}
	r.bbs = bbs

	tbs := r.tbs[:0]
	if tbs == nil {
		tbs = []TextureBarrier{}
	}
	for _, a := range targs {
		tbs = append(tbs, TextureBarrier{
			Texture:     object[Texture](r, a.Texture),
			Before:      a.Before,
			After:       a.After,
			MipOffset:   a.MipOffset,
			MipNum:      a.MipNum,
			LayerOffset: a.LayerOffset,
			LayerNum:    a.LayerNum,
			Aspect:      a.Aspect,
		})
	}
	r.tbs = tbs

	return BarrierCmd{BarrierGroup{Globals: globals, Buffers: bbs, Textures: tbs}}
}

// SetPipelineLayoutCmd sets the pipeline layout used by later bindings.
type SetPipelineLayoutCmd struct {
	Layout PipelineLayout
}

// SetPipelineCmd binds a graphics or compute pipeline.
type SetPipelineCmd struct {
	Pipeline Pipeline
}

// SetDescriptorPoolCmd selects the descriptor pool for later bindings.
type SetDescriptorPoolCmd struct {
	Pool DescriptorPool
}

// SetDescriptorSetCmd binds a descriptor set at SetIndex of the current
// pipeline layout.
type SetDescriptorSetCmd struct {
	SetIndex       uint32
	Set            DescriptorSet
	DynamicOffsets []uint32
}

// SetRootConstantsCmd writes push constants.
type SetRootConstantsCmd struct {
	Index uint32
	Data  []byte
}

// SetRootDescriptorCmd binds a descriptor directly to a root slot.
type SetRootDescriptorCmd struct {
	Index      uint32
	Descriptor Descriptor
}

// SetViewportsCmd sets the viewports starting at slot 0.
type SetViewportsCmd struct {
	Viewports []Viewport
}

// SetScissorsCmd sets the scissor rectangles starting at slot 0.
type SetScissorsCmd struct {
	Rects []Rect
}

// SetStencilReferenceCmd sets the front and back stencil reference values.
type SetStencilReferenceCmd struct {
	Front, Back uint8
}

// SetDepthBoundsCmd sets the depth bounds test range.
type SetDepthBoundsCmd struct {
	Min, Max float32
}

// SetBlendConstantsCmd sets the blend constant color.
type SetBlendConstantsCmd struct {
	Color gputypes.Color
}

// SetSampleLocationsCmd sets programmable sample positions.
type SetSampleLocationsCmd struct {
	Locations []SampleLocation
	SampleNum uint8
}

// SetShadingRateCmd sets the fragment shading rate.
type SetShadingRateCmd struct {
	ShadingRateDesc
}

// SetDepthBiasCmd sets dynamic depth bias.
type SetDepthBiasCmd struct {
	DepthBiasDesc
}

// BeginRenderingCmd opens a rendering bracket.
type BeginRenderingCmd struct {
	Attachments AttachmentsDesc
}

// EndRenderingCmd closes the rendering bracket.
type EndRenderingCmd struct{}

// ClearAttachmentsCmd clears regions of the current attachments.
type ClearAttachmentsCmd struct {
	Clears []ClearDesc
	Rects  []Rect
}

// SetIndexBufferCmd binds the index buffer.
type SetIndexBufferCmd struct {
	Buffer Buffer
	Offset uint64
	Format gputypes.IndexFormat
}

// SetVertexBuffersCmd binds vertex buffers starting at BaseSlot.
type SetVertexBuffersCmd struct {
	BaseSlot uint32
	Buffers  []VertexBuffer
}

// DrawCmd is a non-indexed draw.
type DrawCmd struct {
	DrawDesc
}

// DrawIndexedCmd is an indexed draw.
type DrawIndexedCmd struct {
	DrawIndexedDesc
}

// DrawIndirectCmd is a non-indexed (multi-)draw with GPU-side arguments.
type DrawIndirectCmd struct {
	IndirectDesc
}

// DrawIndexedIndirectCmd is an indexed (multi-)draw with GPU-side
// arguments.
type DrawIndexedIndirectCmd struct {
	IndirectDesc
}

// DispatchCmd launches a compute grid.
type DispatchCmd struct {
	DispatchDesc
}

// DispatchIndirectCmd launches a compute grid sized from GPU memory.
type DispatchIndirectCmd struct {
	Buffer Buffer
	Offset uint64
}

// CopyBufferCmd copies Size bytes between buffers.
type CopyBufferCmd struct {
	Dst       Buffer
	DstOffset uint64
	Src       Buffer
	SrcOffset uint64
	Size      uint64
}

// CopyTextureCmd copies a region between textures.
type CopyTextureCmd textureCopy

// UploadBufferToTextureCmd copies linear texel data from a buffer into a
// texture region.
type UploadBufferToTextureCmd struct {
	Dst       Texture
	DstRegion TextureRegion
	Src       Buffer
	Layout    TextureDataLayout
}

// ReadbackTextureToBufferCmd copies a texture region into linear buffer
// memory.
type ReadbackTextureToBufferCmd struct {
	Dst       Buffer
	Layout    TextureDataLayout
	Src       Texture
	SrcRegion TextureRegion
}

// ZeroBufferCmd fills a buffer range with zeros.
type ZeroBufferCmd struct {
	Buffer Buffer
	Offset uint64
	Size   uint64
}

// ResolveTextureCmd resolves a multisampled texture region.
type ResolveTextureCmd textureCopy

// ClearStorageCmd clears a storage descriptor to a raw value.
type ClearStorageCmd struct {
	Descriptor Descriptor
	Value      ClearStorageValue
}

// BarrierCmd records global, buffer and texture barriers.
type BarrierCmd struct {
	BarrierGroup
}

// ResetQueriesCmd resets Num queries starting at Offset.
type ResetQueriesCmd struct {
	Pool   QueryPool
	Offset uint32
	Num    uint32
}

// BeginQueryCmd starts the query at Offset.
type BeginQueryCmd struct {
	Pool   QueryPool
	Offset uint32
}

// EndQueryCmd ends the query at Offset.
type EndQueryCmd struct {
	Pool   QueryPool
	Offset uint32
}

// CopyQueriesCmd copies query results into a buffer.
type CopyQueriesCmd struct {
	Pool      QueryPool
	Offset    uint32
	Num       uint32
	Dst       Buffer
	DstOffset uint64
}

// BeginAnnotationCmd opens a named debug region.
type BeginAnnotationCmd struct {
	Name  string
	Color uint32
}

// EndAnnotationCmd closes the innermost debug region.
type EndAnnotationCmd struct{}

// AnnotationCmd inserts a named debug marker.
type AnnotationCmd struct {
	Name  string
	Color uint32
}

// EndCmd terminates a finished command buffer.
type EndCmd struct{}

func (SetPipelineLayoutCmd) Op() Opcode       { return OpSetPipelineLayout }
func (SetPipelineCmd) Op() Opcode             { return OpSetPipeline }
func (SetDescriptorPoolCmd) Op() Opcode       { return OpSetDescriptorPool }
func (SetDescriptorSetCmd) Op() Opcode        { return OpSetDescriptorSet }
func (SetRootConstantsCmd) Op() Opcode        { return OpSetRootConstants }
func (SetRootDescriptorCmd) Op() Opcode       { return OpSetRootDescriptor }
func (SetViewportsCmd) Op() Opcode            { return OpSetViewports }
func (SetScissorsCmd) Op() Opcode             { return OpSetScissors }
func (SetStencilReferenceCmd) Op() Opcode     { return OpSetStencilReference }
func (SetDepthBoundsCmd) Op() Opcode          { return OpSetDepthBounds }
func (SetBlendConstantsCmd) Op() Opcode       { return OpSetBlendConstants }
func (SetSampleLocationsCmd) Op() Opcode      { return OpSetSampleLocations }
func (SetShadingRateCmd) Op() Opcode          { return OpSetShadingRate }
func (SetDepthBiasCmd) Op() Opcode            { return OpSetDepthBias }
func (BeginRenderingCmd) Op() Opcode          { return OpBeginRendering }
func (EndRenderingCmd) Op() Opcode            { return OpEndRendering }
func (ClearAttachmentsCmd) Op() Opcode        { return OpClearAttachments }
func (SetIndexBufferCmd) Op() Opcode          { return OpSetIndexBuffer }
func (SetVertexBuffersCmd) Op() Opcode        { return OpSetVertexBuffers }
func (DrawCmd) Op() Opcode                    { return OpDraw }
func (DrawIndexedCmd) Op() Opcode             { return OpDrawIndexed }
func (DrawIndirectCmd) Op() Opcode            { return OpDrawIndirect }
func (DrawIndexedIndirectCmd) Op() Opcode     { return OpDrawIndexedIndirect }
func (DispatchCmd) Op() Opcode                { return OpDispatch }
func (DispatchIndirectCmd) Op() Opcode        { return OpDispatchIndirect }
func (CopyBufferCmd) Op() Opcode              { return OpCopyBuffer }
func (CopyTextureCmd) Op() Opcode             { return OpCopyTexture }
func (UploadBufferToTextureCmd) Op() Opcode   { return OpUploadBufferToTexture }
func (ReadbackTextureToBufferCmd) Op() Opcode { return OpReadbackTextureToBuffer }
func (ZeroBufferCmd) Op() Opcode              { return OpZeroBuffer }
func (ResolveTextureCmd) Op() Opcode          { return OpResolveTexture }
func (ClearStorageCmd) Op() Opcode            { return OpClearStorage }
func (BarrierCmd) Op() Opcode                 { return OpBarrier }
func (ResetQueriesCmd) Op() Opcode            { return OpResetQueries }
func (BeginQueryCmd) Op() Opcode              { return OpBeginQuery }
func (EndQueryCmd) Op() Opcode                { return OpEndQuery }
func (CopyQueriesCmd) Op() Opcode             { return OpCopyQueries }
func (BeginAnnotationCmd) Op() Opcode         { return OpBeginAnnotation }
func (EndAnnotationCmd) Op() Opcode           { return OpEndAnnotation }
func (AnnotationCmd) Op() Opcode              { return OpAnnotation }
func (EndCmd) Op() Opcode                     { return OpEnd }

func (c SetPipelineLayoutCmd) encode(w *writer) {
	wire.Fixed(w.e, &refArg{Ref: w.ref(c.Layout)})
}

func (c SetPipelineCmd) encode(w *writer) {
	wire.Fixed(w.e, &refArg{Ref: w.ref(c.Pipeline)})
}

func (c SetDescriptorPoolCmd) encode(w *writer) {
	wire.Fixed(w.e, &refArg{Ref: w.ref(c.Pool)})
}

func (c SetDescriptorSetCmd) encode(w *writer) {
	wire.Fixed(w.e, &indexRefArg{Index: c.SetIndex, Ref: w.ref(c.Set)})
	wire.Array(w.e, c.DynamicOffsets)
}

func (c SetRootConstantsCmd) encode(w *writer) {
	wire.Fixed(w.e, &indexArg{Index: c.Index})
	wire.Bytes(w.e, c.Data)
}

func (c SetRootDescriptorCmd) encode(w *writer) {
	wire.Fixed(w.e, &indexRefArg{Index: c.Index, Ref: w.ref(c.Descriptor)})
}

func (c SetViewportsCmd) encode(w *writer) {
	wire.Array(w.e, c.Viewports)
}

func (c SetScissorsCmd) encode(w *writer) {
	wire.Array(w.e, c.Rects)
}

func (c SetStencilReferenceCmd) encode(w *writer) {
	wire.Fixed(w.e, &stencilArg{Front: c.Front, Back: c.Back})
}

func (c SetDepthBoundsCmd) encode(w *writer) {
	wire.Fixed(w.e, &depthBoundsArg{Min: c.Min, Max: c.Max})
}

func (c SetBlendConstantsCmd) encode(w *writer) {
	wire.Fixed(w.e, &c.Color)
}

func (c SetSampleLocationsCmd) encode(w *writer) {
	wire.Fixed(w.e, &sampleArg{SampleNum: c.SampleNum})
	wire.Array(w.e, c.Locations)
}

func (c SetShadingRateCmd) encode(w *writer) {
	wire.Fixed(w.e, &c.ShadingRateDesc)
}

func (c SetDepthBiasCmd) encode(w *writer) {
	wire.Fixed(w.e, &c.DepthBiasDesc)
}

func (c BeginRenderingCmd) encode(w *writer) {
	wire.Fixed(w.e, &refArg{Ref: w.ref(c.Attachments.DepthStencil)})
	refs := w.refs[:0]
	for _, d := range c.Attachments.Colors {
		refs = append(refs, w.ref(d))
	}
	w.refs = refs
	wire.Array(w.e, refs)
}

func (EndRenderingCmd) encode(*writer) {}

func (c ClearAttachmentsCmd) encode(w *writer) {
	wire.Array(w.e, c.Clears)
	wire.Array(w.e, c.Rects)
}

func (c SetIndexBufferCmd) encode(w *writer) {
	wire.Fixed(w.e, &indexBufferArg{Buffer: w.ref(c.Buffer), Format: c.Format, Offset: c.Offset})
}

func (c SetVertexBuffersCmd) encode(w *writer) {
	wire.Fixed(w.e, &indexArg{Index: c.BaseSlot})
	vbs := w.vbs[:0]
	for _, vb := range c.Buffers {
		vbs = append(vbs, vertexBufferArg{Buffer: w.ref(vb.Buffer), Offset: vb.Offset})
	}
	w.vbs = vbs
	wire.Array(w.e, vbs)
}

func (c DrawCmd) encode(w *writer) {
	wire.Fixed(w.e, &c.DrawDesc)
}

func (c DrawIndexedCmd) encode(w *writer) {
	wire.Fixed(w.e, &c.DrawIndexedDesc)
}

func (c DrawIndirectCmd) encode(w *writer) {
	encodeIndirect(w, &c.IndirectDesc)
}

func (c DrawIndexedIndirectCmd) encode(w *writer) {
	encodeIndirect(w, &c.IndirectDesc)
}

func encodeIndirect(w *writer, d *IndirectDesc) {
	wire.Fixed(w.e, &indirectArg{
		Buffer:      w.ref(d.Buffer),
		CountBuffer: w.ref(d.CountBuffer),
		DrawNum:     d.DrawNum,
		Stride:      d.Stride,
		Offset:      d.Offset,
		CountOffset: d.CountOffset,
	})
}

func (c DispatchCmd) encode(w *writer) {
	wire.Fixed(w.e, &c.DispatchDesc)
}

func (c DispatchIndirectCmd) encode(w *writer) {
	wire.Fixed(w.e, &bufferRangeArg{Buffer: w.ref(c.Buffer), Offset: c.Offset})
}

func (c CopyBufferCmd) encode(w *writer) {
	wire.Fixed(w.e, &copyBufferArg{
		Dst:       w.ref(c.Dst),
		Src:       w.ref(c.Src),
		DstOffset: c.DstOffset,
		SrcOffset: c.SrcOffset,
		Size:      c.Size,
	})
}

func (c CopyTextureCmd) encode(w *writer) {
	textureCopy(c).encode(w)
}

func (c UploadBufferToTextureCmd) encode(w *writer) {
	wire.Fixed(w.e, &textureTransferArg{
		Texture: w.ref(c.Dst),
		Buffer:  w.ref(c.Src),
		Region:  c.DstRegion,
		Layout:  c.Layout,
	})
}

func (c ReadbackTextureToBufferCmd) encode(w *writer) {
	wire.Fixed(w.e, &textureTransferArg{
		Texture: w.ref(c.Src),
		Buffer:  w.ref(c.Dst),
		Region:  c.SrcRegion,
		Layout:  c.Layout,
	})
}

func (c ZeroBufferCmd) encode(w *writer) {
	wire.Fixed(w.e, &bufferRangeArg{Buffer: w.ref(c.Buffer), Offset: c.Offset, Size: c.Size})
}

func (c ResolveTextureCmd) encode(w *writer) {
	textureCopy(c).encode(w)
}

func (c ClearStorageCmd) encode(w *writer) {
	wire.Fixed(w.e, &clearStorageArg{Descriptor: w.ref(c.Descriptor), Value: c.Value})
}

func (c BarrierCmd) encode(w *writer) {
	wire.Array(w.e, c.Globals)

	bbs := w.bbs[:0]
	for _, b := range c.Buffers {
		bbs = append(bbs, bufferBarrierArg{Buffer: w.ref(b.Buffer), Before: b.Before, After: b.After})
	}
	w.bbs = bbs
	wire.Array(w.e, bbs)

	tbs := w.tbs[:0]
	for _, t := range c.Textures {
		tbs = append(tbs, textureBarrierArg{
			Texture:     w.ref(t.Texture),
			MipOffset:   t.MipOffset,
			MipNum:      t.MipNum,
			LayerOffset: t.LayerOffset,
			LayerNum:    t.LayerNum,
			Aspect:      t.Aspect,
			Before:      t.Before,
			After:       t.After,
		})
	}
	w.tbs = tbs
	wire.Array(w.e, tbs)
}

func (c ResetQueriesCmd) encode(w *writer) {
	wire.Fixed(w.e, &queryArg{Pool: w.ref(c.Pool), Offset: c.Offset, Num: c.Num})
}

func (c BeginQueryCmd) encode(w *writer) {
	wire.Fixed(w.e, &queryArg{Pool: w.ref(c.Pool), Offset: c.Offset})
}

func (c EndQueryCmd) encode(w *writer) {
	wire.Fixed(w.e, &queryArg{Pool: w.ref(c.Pool), Offset: c.Offset})
}

func (c CopyQueriesCmd) encode(w *writer) {
	wire.Fixed(w.e, &copyQueriesArg{
		Pool:      w.ref(c.Pool),
		Offset:    c.Offset,
		Num:       c.Num,
		Dst:       w.ref(c.Dst),
		DstOffset: c.DstOffset,
	})
}

func (c BeginAnnotationCmd) encode(w *writer) {
	wire.Fixed(w.e, &colorArg{Color: c.Color})
	wire.String(w.e, c.Name)
}

func (EndAnnotationCmd) encode(*writer) {}

func (c AnnotationCmd) encode(w *writer) {
	wire.Fixed(w.e, &colorArg{Color: c.Color})
	wire.String(w.e, c.Name)
}

func (EndCmd) encode(*writer) {}
