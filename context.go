package cmdstream

import "github.com/gogpu/gputypes"

// ExecutionContext is the single native object replay drives. It stands in
// for an immediate context: it has no notion of independent command
// streams and receives the records of every submitted command buffer in
// submission order.
//
// Every method reports failure through its error. Replay logs the failure
// and continues with the next record. Slices passed to a method alias the
// command buffer and must not be retained after the method returns.
//
// Implementations need not be safe for concurrent use; a Queue serializes
// access.
type ExecutionContext interface {
	// Pipeline and binding state.
	SetPipelineLayout(layout PipelineLayout) error
	SetPipeline(p Pipeline, dyn *DynamicState) error
	SetDescriptorPool(pool DescriptorPool) error
	SetDescriptorSet(bp BindPoint, setIndex uint32, set DescriptorSet, dynamicOffsets []uint32) error
	SetRootConstants(bp BindPoint, index uint32, data []byte) error
	SetRootDescriptor(bp BindPoint, index uint32, d Descriptor) error

	// Fixed-function state.
	SetViewports(viewports []Viewport) error
	SetScissors(rects []Rect) error
	SetStencilReference(front, back uint8) error
	SetDepthBounds(minBound, maxBound float32) error
	SetBlendConstants(c gputypes.Color) error
	SetSampleLocations(locations []SampleLocation, sampleNum uint8) error
	SetShadingRate(desc ShadingRateDesc) error
	SetDepthBias(desc DepthBiasDesc) error

	// Rendering bracket and vertex input.
	BeginRendering(desc AttachmentsDesc) error
	EndRendering() error
	ClearAttachments(clears []ClearDesc, rects []Rect) error
	SetIndexBuffer(buf Buffer, offset uint64, format gputypes.IndexFormat) error
	SetVertexBuffers(baseSlot uint32, buffers []VertexBuffer) error

	// Draws.
	Draw(desc DrawDesc) error
	DrawIndexed(desc DrawIndexedDesc) error
	DrawIndirect(desc IndirectDesc) error
	DrawIndexedIndirect(desc IndirectDesc) error

	// Compute.
	Dispatch(desc DispatchDesc) error
	DispatchIndirect(buf Buffer, offset uint64) error

	// Copies.
	CopyBuffer(dst Buffer, dstOffset uint64, src Buffer, srcOffset uint64, size uint64) error
	CopyTexture(dst Texture, dstRegion TextureRegion, src Texture, srcRegion TextureRegion) error
	UploadBufferToTexture(dst Texture, dstRegion TextureRegion, src Buffer, layout TextureDataLayout) error
	ReadbackTextureToBuffer(dst Buffer, layout TextureDataLayout, src Texture, srcRegion TextureRegion) error
	ZeroBuffer(buf Buffer, offset, size uint64) error
	ResolveTexture(dst Texture, dstRegion TextureRegion, src Texture, srcRegion TextureRegion) error
	ClearStorage(d Descriptor, value ClearStorageValue) error

	// Synchronization.
	Barrier(group BarrierGroup) error

	// Queries.
	ResetQueries(pool QueryPool, offset, num uint32) error
	BeginQuery(pool QueryPool, offset uint32) error
	EndQuery(pool QueryPool, offset uint32) error
	CopyQueries(pool QueryPool, offset, num uint32, dst Buffer, dstOffset uint64) error

	// Annotations.
	BeginAnnotation(name string, color uint32) error
	EndAnnotation() error
	Annotation(name string, color uint32) error
}

// UnsupportedContext implements every ExecutionContext method by returning
// ErrUnsupported. Embed it in adapters that only provide a subset of the
// native primitives.
type UnsupportedContext struct{}

var _ ExecutionContext = UnsupportedContext{}

func (UnsupportedContext) SetPipelineLayout(PipelineLayout) error           { return ErrUnsupported }
func (UnsupportedContext) SetPipeline(Pipeline, *DynamicState) error        { return ErrUnsupported }
func (UnsupportedContext) SetDescriptorPool(DescriptorPool) error           { return ErrUnsupported }
func (UnsupportedContext) SetRootConstants(BindPoint, uint32, []byte) error { return ErrUnsupported }
func (UnsupportedContext) SetViewports([]Viewport) error                    { return ErrUnsupported }
func (UnsupportedContext) SetScissors([]Rect) error                         { return ErrUnsupported }
func (UnsupportedContext) SetStencilReference(uint8, uint8) error           { return ErrUnsupported }
func (UnsupportedContext) SetDepthBounds(float32, float32) error            { return ErrUnsupported }
func (UnsupportedContext) SetBlendConstants(gputypes.Color) error           { return ErrUnsupported }
func (UnsupportedContext) SetShadingRate(ShadingRateDesc) error             { return ErrUnsupported }
func (UnsupportedContext) SetDepthBias(DepthBiasDesc) error                 { return ErrUnsupported }
func (UnsupportedContext) BeginRendering(AttachmentsDesc) error             { return ErrUnsupported }
func (UnsupportedContext) EndRendering() error                              { return ErrUnsupported }
func (UnsupportedContext) ClearAttachments([]ClearDesc, []Rect) error       { return ErrUnsupported }
func (UnsupportedContext) SetVertexBuffers(uint32, []VertexBuffer) error    { return ErrUnsupported }
func (UnsupportedContext) Draw(DrawDesc) error                              { return ErrUnsupported }
func (UnsupportedContext) DrawIndexed(DrawIndexedDesc) error                { return ErrUnsupported }
func (UnsupportedContext) DrawIndirect(IndirectDesc) error                  { return ErrUnsupported }
func (UnsupportedContext) DrawIndexedIndirect(IndirectDesc) error           { return ErrUnsupported }
func (UnsupportedContext) Dispatch(DispatchDesc) error                      { return ErrUnsupported }
func (UnsupportedContext) DispatchIndirect(Buffer, uint64) error            { return ErrUnsupported }
func (UnsupportedContext) ZeroBuffer(Buffer, uint64, uint64) error          { return ErrUnsupported }
func (UnsupportedContext) ClearStorage(Descriptor, ClearStorageValue) error { return ErrUnsupported }
func (UnsupportedContext) Barrier(BarrierGroup) error                       { return ErrUnsupported }
func (UnsupportedContext) ResetQueries(QueryPool, uint32, uint32) error     { return ErrUnsupported }
func (UnsupportedContext) BeginQuery(QueryPool, uint32) error               { return ErrUnsupported }
func (UnsupportedContext) EndQuery(QueryPool, uint32) error                 { return ErrUnsupported }
func (UnsupportedContext) BeginAnnotation(string, uint32) error             { return ErrUnsupported }
func (UnsupportedContext) EndAnnotation() error                             { return ErrUnsupported }
func (UnsupportedContext) Annotation(string, uint32) error                  { return ErrUnsupported }

func (UnsupportedContext) SetDescriptorSet(BindPoint, uint32, DescriptorSet, []uint32) error {
	return ErrUnsupported
}

func (UnsupportedContext) SetRootDescriptor(BindPoint, uint32, Descriptor) error {
	return ErrUnsupported
}

func (UnsupportedContext) SetSampleLocations([]SampleLocation, uint8) error {
	return ErrUnsupported
}

func (UnsupportedContext) SetIndexBuffer(Buffer, uint64, gputypes.IndexFormat) error {
	return ErrUnsupported
}

func (UnsupportedContext) CopyBuffer(Buffer, uint64, Buffer, uint64, uint64) error {
	return ErrUnsupported
}

func (UnsupportedContext) CopyTexture(Texture, TextureRegion, Texture, TextureRegion) error {
	return ErrUnsupported
}

func (UnsupportedContext) UploadBufferToTexture(Texture, TextureRegion, Buffer, TextureDataLayout) error {
	return ErrUnsupported
}

func (UnsupportedContext) ReadbackTextureToBuffer(Buffer, TextureDataLayout, Texture, TextureRegion) error {
	return ErrUnsupported
}

func (UnsupportedContext) ResolveTexture(Texture, TextureRegion, Texture, TextureRegion) error {
	return ErrUnsupported
}

func (UnsupportedContext) CopyQueries(QueryPool, uint32, uint32, Buffer, uint64) error {
	return ErrUnsupported
}

// NullContext accepts every call and does nothing. It is registered as
// "null" and is handy for measuring record and replay overhead.
type NullContext struct{}

var _ ExecutionContext = NullContext{}

func (NullContext) SetPipelineLayout(PipelineLayout) error                             { return nil }
func (NullContext) SetPipeline(Pipeline, *DynamicState) error                          { return nil }
func (NullContext) SetDescriptorPool(DescriptorPool) error                             { return nil }
func (NullContext) SetDescriptorSet(BindPoint, uint32, DescriptorSet, []uint32) error  { return nil }
func (NullContext) SetRootConstants(BindPoint, uint32, []byte) error                   { return nil }
func (NullContext) SetRootDescriptor(BindPoint, uint32, Descriptor) error              { return nil }
func (NullContext) SetViewports([]Viewport) error                                      { return nil }
func (NullContext) SetScissors([]Rect) error                                           { return nil }
func (NullContext) SetStencilReference(uint8, uint8) error                             { return nil }
func (NullContext) SetDepthBounds(float32, float32) error                              { return nil }
func (NullContext) SetBlendConstants(gputypes.Color) error                             { return nil }
func (NullContext) SetSampleLocations([]SampleLocation, uint8) error                   { return nil }
func (NullContext) SetShadingRate(ShadingRateDesc) error                               { return nil }
func (NullContext) SetDepthBias(DepthBiasDesc) error                                   { return nil }
func (NullContext) BeginRendering(AttachmentsDesc) error                               { return nil }
func (NullContext) EndRendering() error                                                { return nil }
func (NullContext) ClearAttachments([]ClearDesc, []Rect) error                         { return nil }
func (NullContext) SetIndexBuffer(Buffer, uint64, gputypes.IndexFormat) error          { return nil }
func (NullContext) SetVertexBuffers(uint32, []VertexBuffer) error                      { return nil }
func (NullContext) Draw(DrawDesc) error                                                { return nil }
func (NullContext) DrawIndexed(DrawIndexedDesc) error                                  { return nil }
func (NullContext) DrawIndirect(IndirectDesc) error                                    { return nil }
func (NullContext) DrawIndexedIndirect(IndirectDesc) error                             { return nil }
func (NullContext) Dispatch(DispatchDesc) error                                        { return nil }
func (NullContext) DispatchIndirect(Buffer, uint64) error                              { return nil }
func (NullContext) CopyBuffer(Buffer, uint64, Buffer, uint64, uint64) error            { return nil }
func (NullContext) CopyTexture(Texture, TextureRegion, Texture, TextureRegion) error   { return nil }
func (NullContext) ZeroBuffer(Buffer, uint64, uint64) error                            { return nil }
func (NullContext) ClearStorage(Descriptor, ClearStorageValue) error                   { return nil }
func (NullContext) Barrier(BarrierGroup) error                                         { return nil }
func (NullContext) ResetQueries(QueryPool, uint32, uint32) error                       { return nil }
func (NullContext) BeginQuery(QueryPool, uint32) error                                 { return nil }
func (NullContext) EndQuery(QueryPool, uint32) error                                   { return nil }
func (NullContext) CopyQueries(QueryPool, uint32, uint32, Buffer, uint64) error        { return nil }
func (NullContext) BeginAnnotation(string, uint32) error                               { return nil }
func (NullContext) EndAnnotation() error                                               { return nil }
func (NullContext) Annotation(string, uint32) error                                    { return nil }

func (NullContext) UploadBufferToTexture(Texture, TextureRegion, Buffer, TextureDataLayout) error {
	return nil
}

func (NullContext) ReadbackTextureToBuffer(Buffer, TextureDataLayout, Texture, TextureRegion) error {
	return nil
}

func (NullContext) ResolveTexture(Texture, TextureRegion, Texture, TextureRegion) error {
	return nil
}
