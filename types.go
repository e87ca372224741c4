package cmdstream

import "github.com/gogpu/gputypes"

// BindPoint selects which pipeline kind a binding applies to.
type BindPoint uint32

const (
	// BindPointGraphics binds to the graphics pipeline.
	BindPointGraphics BindPoint = iota
	// BindPointCompute binds to the compute pipeline.
	BindPointCompute
)

// String returns the bind point name.
func (bp BindPoint) String() string {
	switch bp {
	case BindPointGraphics:
		return "Graphics"
	case BindPointCompute:
		return "Compute"
	default:
		return "Unknown"
	}
}

// Viewport maps normalized device coordinates to a framebuffer region.
type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

// Rect is an integer rectangle in framebuffer coordinates.
type Rect struct {
	X, Y          int32
	Width, Height uint32
}

// SampleLocation is a programmable sample position in 1/16 pixel units.
type SampleLocation struct {
	X, Y int8
}

// ShadingRate is a fragment shading rate.
type ShadingRate uint8

// Shading rates.
const (
	ShadingRate1x1 ShadingRate = iota
	ShadingRate1x2
	ShadingRate2x1
	ShadingRate2x2
	ShadingRate2x4
	ShadingRate4x2
	ShadingRate4x4
)

// ShadingRateCombiner combines shading rates from different sources.
type ShadingRateCombiner uint8

// Shading rate combiners.
const (
	ShadingRateCombinerKeep ShadingRateCombiner = iota
	ShadingRateCombinerReplace
	ShadingRateCombinerMin
	ShadingRateCombinerMax
	ShadingRateCombinerSum
)

// ShadingRateDesc sets the pipeline shading rate and its combiners.
type ShadingRateDesc struct {
	Rate               ShadingRate
	PrimitiveCombiner  ShadingRateCombiner
	AttachmentCombiner ShadingRateCombiner
}

// DepthBiasDesc sets dynamic depth bias.
type DepthBiasDesc struct {
	Constant float32
	Clamp    float32
	Slope    float32
}

// DrawDesc describes a non-indexed draw.
type DrawDesc struct {
	VertexNum    uint32
	InstanceNum  uint32
	BaseVertex   uint32
	BaseInstance uint32
}

// DrawIndexedDesc describes an indexed draw.
type DrawIndexedDesc struct {
	IndexNum     uint32
	InstanceNum  uint32
	BaseIndex    uint32
	BaseVertex   int32
	BaseInstance uint32
}

// DispatchDesc is a compute grid size in workgroups.
type DispatchDesc struct {
	X, Y, Z uint32
}

// IndirectDesc describes a (multi-)draw whose arguments live in GPU memory.
// Arguments for draw i are read at Offset + i*Stride. When CountBuffer is
// set, the draw count is read from it at CountOffset and clamped to DrawNum.
type IndirectDesc struct {
	Buffer      Buffer
	Offset      uint64
	DrawNum     uint32
	Stride      uint32
	CountBuffer Buffer
	CountOffset uint64
}

// TextureRegion selects a box inside one mip level of a texture.
// A zero Width, Height or Depth means "to the end of that dimension".
type TextureRegion struct {
	X, Y, Z       uint32
	Width, Height uint32
	Depth         uint32
	MipOffset     uint32
	LayerOffset   uint32
	Aspect        gputypes.TextureAspect
}

// TextureDataLayout describes texel data stored linearly in a buffer.
type TextureDataLayout struct {
	Offset     uint64
	RowPitch   uint32
	SlicePitch uint32
}

// AttachmentPlanes selects the planes a clear applies to.
type AttachmentPlanes uint8

// Attachment planes.
const (
	PlaneColor AttachmentPlanes = 1 << iota
	PlaneDepth
	PlaneStencil
)

// ClearDesc clears one attachment inside the current rendering bracket.
type ClearDesc struct {
	Value                gputypes.Color
	Depth                float32
	Stencil              uint8
	Planes               AttachmentPlanes
	ColorAttachmentIndex uint32
}

// ClearStorageValue is the raw value written by ClearStorage.
type ClearStorageValue [4]uint32

// AttachmentsDesc lists the attachments of a rendering bracket.
type AttachmentsDesc struct {
	Colors       []Descriptor
	DepthStencil Descriptor
}

// VertexBuffer binds a buffer range to a vertex input slot.
type VertexBuffer struct {
	Buffer Buffer
	Offset uint64
}

// AccessBits describes how a resource is accessed.
type AccessBits uint32

// Access bits.
const (
	AccessNone        AccessBits = 0
	AccessIndexBuffer AccessBits = 1 << (iota - 1)
	AccessVertexBuffer
	AccessConstantBuffer
	AccessShaderResource
	AccessShaderStorage
	AccessArgumentBuffer
	AccessColorAttachment
	AccessDepthStencilWrite
	AccessCopySource
	AccessCopyDestination
)

// StageBits describes pipeline stages.
type StageBits uint32

// Stage bits.
const (
	StageAll        StageBits = 0
	StageIndexInput StageBits = 1 << (iota - 1)
	StageVertexShader
	StageFragmentShader
	StageComputeShader
	StageColorAttachment
	StageDepthStencilAttachment
	StageIndirect
	StageCopy
)

// AccessStage pairs an access with the stages performing it.
type AccessStage struct {
	Access AccessBits
	Stages StageBits
}

// GlobalBarrier orders memory accesses across all resources.
type GlobalBarrier struct {
	Before AccessStage
	After  AccessStage
}

// BufferBarrier transitions one buffer between usages.
type BufferBarrier struct {
	Buffer Buffer
	Before gputypes.BufferUsage
	After  gputypes.BufferUsage
}

// TextureBarrier transitions a subresource range of one texture.
// Zero MipNum or LayerNum means "all remaining".
type TextureBarrier struct {
	Texture     Texture
	Before      gputypes.TextureUsage
	After       gputypes.TextureUsage
	MipOffset   uint32
	MipNum      uint32
	LayerOffset uint32
	LayerNum    uint32
	Aspect      gputypes.TextureAspect
}

// BarrierGroup is the argument of one Barrier call.
type BarrierGroup struct {
	Globals  []GlobalBarrier
	Buffers  []BufferBarrier
	Textures []TextureBarrier
}

// DynamicState is the dynamic fixed-function state in effect at a point of
// replay. Contexts that bake this state into pipeline objects receive it
// with every pipeline change. Slices alias the command buffer and are only
// valid for the duration of the call.
type DynamicState struct {
	StencilFront    uint8
	StencilBack     uint8
	BlendConstants  gputypes.Color
	DepthBoundsMin  float32
	DepthBoundsMax  float32
	DepthBias       DepthBiasDesc
	SampleLocations []SampleLocation
	SampleNum       uint8
	ShadingRate     ShadingRateDesc
}

func defaultDynamicState() DynamicState {
	return DynamicState{
		DepthBoundsMax: 1,
	}
}
