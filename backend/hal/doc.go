// Package hal provides an execution context that replays command streams
// into a gogpu/wgpu hal.CommandEncoder.
//
// # Architecture Overview
//
//	CommandBuffer -> Replay -> hal.Context -> hal.CommandEncoder -> Vulkan/Metal/DX12/GLES
//
// The context maps the stream's explicit rendering bracket onto WebGPU
// passes:
//
//   - BeginRendering opens a render pass on the given attachments and
//     re-applies the bound graphics pipeline, bind groups, vertex and index
//     buffers, viewport, scissor, blend constant and stencil reference.
//   - Dispatch opens a compute pass lazily; the next copy, barrier or
//     BeginRendering closes it.
//   - Multi-draw indirect is emulated with one indirect draw per command.
//
// Primitives WebGPU does not expose (root constants, depth bounds, sample
// locations, shading rate, attachment clears, resolves, storage clears,
// occlusion query brackets) fail with cmdstream.ErrUnsupported. Replay
// logs the failure and continues.
//
// # Objects
//
// Records carry wgpu hal objects directly:
//
//   - Pipelines: *RenderPipeline or *ComputePipeline
//   - Descriptor sets: hal.BindGroup
//   - Buffers: hal.Buffer; textures: hal.Texture; query pools: hal.QuerySet
//   - Attachments: hal.TextureView (load and store), *ColorAttachment or
//     *DepthStencilAttachment
//
// # Registration
//
// The context needs an open encoder, so the package cannot register a
// zero-argument factory. Applications that want it picked by
// cmdstream.BestContext register a closure themselves:
//
//	cmdstream.RegisterContext("hal", func() cmdstream.ExecutionContext {
//	    return hal.NewContext(encoder)
//	})
//
// # Thread Safety
//
// A Context is not safe for concurrent use. Submit through a
// cmdstream.Queue to serialize replays.
package hal
