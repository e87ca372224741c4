package cmdstream

// Opcode identifies the operation a record represents.
// The zero value is not a valid opcode.
type Opcode uint32

// Opcode constants. The numeric values are private to one process: buffers
// are never persisted, so the order carries no meaning.
const (
	// Pipeline and binding state.
	OpSetPipelineLayout Opcode = iota + 1 // 1 ref
	OpSetPipeline                         // 1 ref
	OpSetDescriptorPool                   // 1 ref
	OpSetDescriptorSet                    // set index, ref; []uint32 dynamic offsets
	OpSetRootConstants                    // index; []byte data
	OpSetRootDescriptor                   // index, ref

	// Fixed-function state.
	OpSetViewports        // []Viewport
	OpSetScissors         // []Rect
	OpSetStencilReference // front, back
	OpSetDepthBounds      // min, max
	OpSetBlendConstants   // gputypes.Color
	OpSetSampleLocations  // sample count; []SampleLocation
	OpSetShadingRate      // ShadingRateDesc
	OpSetDepthBias        // DepthBiasDesc

	// Rendering bracket and vertex input.
	OpBeginRendering   // depth-stencil ref; []ref colors
	OpEndRendering     // no args
	OpClearAttachments // []ClearDesc; []Rect
	OpSetIndexBuffer   // ref, offset, format
	OpSetVertexBuffers // base slot; []vertexBufferArg

	// Draws.
	OpDraw                // DrawDesc
	OpDrawIndexed         // DrawIndexedDesc
	OpDrawIndirect        // indirectArg
	OpDrawIndexedIndirect // indirectArg

	// Compute.
	OpDispatch         // DispatchDesc
	OpDispatchIndirect // ref, offset

	// Copies.
	OpCopyBuffer              // dst ref, src ref, offsets, size
	OpCopyTexture             // dst ref, src ref, regions
	OpUploadBufferToTexture   // dst ref, src ref, region, layout
	OpReadbackTextureToBuffer // dst ref, src ref, layout, region
	OpZeroBuffer              // ref, offset, size
	OpResolveTexture          // dst ref, src ref, regions
	OpClearStorage            // ref, ClearStorageValue

	// Synchronization.
	OpBarrier // []GlobalBarrier; []bufferBarrierArg; []textureBarrierArg

	// Queries.
	OpResetQueries // ref, offset, num
	OpBeginQuery   // ref, offset
	OpEndQuery     // ref, offset
	OpCopyQueries  // ref, offset, num, dst ref, dst offset

	// Annotations.
	OpBeginAnnotation // color; []byte name
	OpEndAnnotation   // no args
	OpAnnotation      // color; []byte name

	// OpEnd terminates a finished buffer. No args.
	OpEnd

	opcodeCount
)

var opcodeNames = [...]string{
	OpSetPipelineLayout:       "SetPipelineLayout",
	OpSetPipeline:             "SetPipeline",
	OpSetDescriptorPool:       "SetDescriptorPool",
	OpSetDescriptorSet:        "SetDescriptorSet",
	OpSetRootConstants:        "SetRootConstants",
	OpSetRootDescriptor:       "SetRootDescriptor",
	OpSetViewports:            "SetViewports",
	OpSetScissors:             "SetScissors",
	OpSetStencilReference:     "SetStencilReference",
	OpSetDepthBounds:          "SetDepthBounds",
	OpSetBlendConstants:       "SetBlendConstants",
	OpSetSampleLocations:      "SetSampleLocations",
	OpSetShadingRate:          "SetShadingRate",
	OpSetDepthBias:            "SetDepthBias",
	OpBeginRendering:          "BeginRendering",
	OpEndRendering:            "EndRendering",
	OpClearAttachments:        "ClearAttachments",
	OpSetIndexBuffer:          "SetIndexBuffer",
	OpSetVertexBuffers:        "SetVertexBuffers",
	OpDraw:                    "Draw",
	OpDrawIndexed:             "DrawIndexed",
	OpDrawIndirect:            "DrawIndirect",
	OpDrawIndexedIndirect:     "DrawIndexedIndirect",
	OpDispatch:                "Dispatch",
	OpDispatchIndirect:        "DispatchIndirect",
	OpCopyBuffer:              "CopyBuffer",
	OpCopyTexture:             "CopyTexture",
	OpUploadBufferToTexture:   "UploadBufferToTexture",
	OpReadbackTextureToBuffer: "ReadbackTextureToBuffer",
	OpZeroBuffer:              "ZeroBuffer",
	OpResolveTexture:          "ResolveTexture",
	OpClearStorage:            "ClearStorage",
	OpBarrier:                 "Barrier",
	OpResetQueries:            "ResetQueries",
	OpBeginQuery:              "BeginQuery",
	OpEndQuery:                "EndQuery",
	OpCopyQueries:             "CopyQueries",
	OpBeginAnnotation:         "BeginAnnotation",
	OpEndAnnotation:           "EndAnnotation",
	OpAnnotation:              "Annotation",
	OpEnd:                     "End",
}

// String returns the opcode name.
func (op Opcode) String() string {
	if op.Valid() {
		return opcodeNames[op]
	}
	return "Unknown"
}

// Valid reports whether op belongs to the opcode table.
func (op Opcode) Valid() bool {
	return op > 0 && op < opcodeCount
}

// Opcodes returns every valid opcode in table order.
func Opcodes() []Opcode {
	ops := make([]Opcode, 0, opcodeCount-1)
	for op := Opcode(1); op < opcodeCount; op++ {
		ops = append(ops, op)
	}
	return ops
}

// Category groups opcodes by the kind of work they describe.
type Category uint8

// Category constants.
const (
	CategoryControl Category = iota
	CategoryState
	CategoryFixedFunction
	CategoryRendering
	CategoryDraw
	CategoryCompute
	CategoryCopy
	CategoryBarrier
	CategoryQuery
	CategoryAnnotation
)

var categoryNames = [...]string{
	CategoryControl:       "Control",
	CategoryState:         "State",
	CategoryFixedFunction: "FixedFunction",
	CategoryRendering:     "Rendering",
	CategoryDraw:          "Draw",
	CategoryCompute:       "Compute",
	CategoryCopy:          "Copy",
	CategoryBarrier:       "Barrier",
	CategoryQuery:         "Query",
	CategoryAnnotation:    "Annotation",
}

// String returns the category name.
func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "Unknown"
}

// Category returns the group op belongs to.
func (op Opcode) Category() Category {
	switch {
	case op >= OpSetPipelineLayout && op <= OpSetRootDescriptor:
		return CategoryState
	case op >= OpSetViewports && op <= OpSetDepthBias:
		return CategoryFixedFunction
	case op >= OpBeginRendering && op <= OpSetVertexBuffers:
		return CategoryRendering
	case op >= OpDraw && op <= OpDrawIndexedIndirect:
		return CategoryDraw
	case op == OpDispatch || op == OpDispatchIndirect:
		return CategoryCompute
	case op >= OpCopyBuffer && op <= OpClearStorage:
		return CategoryCopy
	case op == OpBarrier:
		return CategoryBarrier
	case op >= OpResetQueries && op <= OpCopyQueries:
		return CategoryQuery
	case op >= OpBeginAnnotation && op <= OpAnnotation:
		return CategoryAnnotation
	default:
		return CategoryControl
	}
}

// IsDraw reports whether op issues draw work.
func (op Opcode) IsDraw() bool {
	return op.Category() == CategoryDraw
}

// IsCopy reports whether op transfers or clears resource contents outside
// a rendering bracket.
func (op Opcode) IsCopy() bool {
	return op.Category() == CategoryCopy
}
