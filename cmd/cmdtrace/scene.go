package main

import (
	"fmt"

	"github.com/gogpu/gputypes"
	wgpuhal "github.com/gogpu/wgpu/hal"

	"github.com/gogpu/cmdstream"
	"github.com/gogpu/cmdstream/backend/hal"
)

const (
	width, height = 1280, 720
	cubeIndices   = 36
)

// device is the subset of hal.Device the demo scene is built from.
type device interface {
	CreateBuffer(desc *wgpuhal.BufferDescriptor) (wgpuhal.Buffer, error)
	CreateTexture(desc *wgpuhal.TextureDescriptor) (wgpuhal.Texture, error)
	CreateTextureView(texture wgpuhal.Texture, desc *wgpuhal.TextureViewDescriptor) (wgpuhal.TextureView, error)
	CreateBindGroup(desc *wgpuhal.BindGroupDescriptor) (wgpuhal.BindGroup, error)
	CreatePipelineLayout(desc *wgpuhal.PipelineLayoutDescriptor) (wgpuhal.PipelineLayout, error)
	CreateRenderPipeline(desc *wgpuhal.RenderPipelineDescriptor) (wgpuhal.RenderPipeline, error)
	CreateComputePipeline(desc *wgpuhal.ComputePipelineDescriptor) (wgpuhal.ComputePipeline, error)
	CreateCommandEncoder(desc *wgpuhal.CommandEncoderDescriptor) (wgpuhal.CommandEncoder, error)
}

// The named wrappers keep the hal interfaces and give the trace output
// readable object names.

type buffer struct {
	wgpuhal.Buffer
	name string
}

func (b *buffer) String() string { return b.name }

type texture struct {
	wgpuhal.Texture
	name string
}

func (t *texture) String() string { return t.name }

type view struct {
	wgpuhal.TextureView
	name string
}

func (v *view) String() string { return v.name }

type bindGroup struct {
	wgpuhal.BindGroup
	name string
}

func (g *bindGroup) String() string { return g.name }

type layout struct {
	wgpuhal.PipelineLayout
	name string
}

func (l *layout) String() string { return l.name }

// scene holds the resources every frame records against.
type scene struct {
	layout *layout
	opaque *hal.RenderPipeline
	cull   *hal.ComputePipeline
	frame  *bindGroup

	vertices *buffer
	indices  *buffer
	args     *buffer
	staging  *buffer

	albedo *texture
	color  *view
	depth  *view
}

func newScene(dev device) (*scene, error) {
	s := &scene{}
	var err error
	newBuffer := func(name string, size uint64, usage gputypes.BufferUsage) *buffer {
		if err != nil {
			return nil
		}
		var b wgpuhal.Buffer
		b, err = dev.CreateBuffer(&wgpuhal.BufferDescriptor{Label: name, Size: size, Usage: usage})
		return &buffer{Buffer: b, name: name}
	}
	s.vertices = newBuffer("vertices", 64<<10, gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	s.indices = newBuffer("indices", 16<<10, gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst)
	s.args = newBuffer("draw-args", 4<<10, gputypes.BufferUsageIndirect|gputypes.BufferUsageStorage)
	s.staging = newBuffer("staging", 256<<10, gputypes.BufferUsageCopySrc|gputypes.BufferUsageMapWrite)
	if err != nil {
		return nil, fmt.Errorf("create buffers: %w", err)
	}

	albedo, err := dev.CreateTexture(&wgpuhal.TextureDescriptor{
		Label:         "albedo",
		Size:          wgpuhal.Extent3D{Width: 256, Height: 256, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create albedo: %w", err)
	}
	s.albedo = &texture{Texture: albedo, name: "albedo"}

	newTarget := func(name string, format gputypes.TextureFormat) (*view, error) {
		t, err := dev.CreateTexture(&wgpuhal.TextureDescriptor{
			Label:         name,
			Size:          wgpuhal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     gputypes.TextureDimension2D,
			Format:        format,
			Usage:         gputypes.TextureUsageRenderAttachment,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", name, err)
		}
		v, err := dev.CreateTextureView(t, &wgpuhal.TextureViewDescriptor{Label: name})
		if err != nil {
			return nil, fmt.Errorf("create %s view: %w", name, err)
		}
		return &view{TextureView: v, name: name}, nil
	}
	if s.color, err = newTarget("backbuffer", gputypes.TextureFormatRGBA8Unorm); err != nil {
		return nil, err
	}
	if s.depth, err = newTarget("depth", gputypes.TextureFormatDepth24Plus); err != nil {
		return nil, err
	}

	pl, err := dev.CreatePipelineLayout(&wgpuhal.PipelineLayoutDescriptor{Label: "main"})
	if err != nil {
		return nil, fmt.Errorf("create pipeline layout: %w", err)
	}
	s.layout = &layout{PipelineLayout: pl, name: "main"}

	group, err := dev.CreateBindGroup(&wgpuhal.BindGroupDescriptor{Label: "frame"})
	if err != nil {
		return nil, fmt.Errorf("create bind group: %w", err)
	}
	s.frame = &bindGroup{BindGroup: group, name: "frame"}

	rp, err := dev.CreateRenderPipeline(&wgpuhal.RenderPipelineDescriptor{Label: "opaque"})
	if err != nil {
		return nil, fmt.Errorf("create render pipeline: %w", err)
	}
	s.opaque = &hal.RenderPipeline{Pipeline: rp, Label: "opaque"}

	cp, err := dev.CreateComputePipeline(&wgpuhal.ComputePipelineDescriptor{Label: "cull"})
	if err != nil {
		return nil, fmt.Errorf("create compute pipeline: %w", err)
	}
	s.cull = &hal.ComputePipeline{Pipeline: cp, Label: "cull"}
	return s, nil
}

// recordFrame records one frame: a culling dispatch that fills the indirect
// arguments, a texture upload, and an opaque pass with direct and indirect
// indexed draws.
func recordFrame(cb *cmdstream.CommandBuffer, s *scene, frame, draws int) error {
	cb.Begin()
	cb.BeginAnnotation(fmt.Sprintf("frame %d", frame), 0x3366cc)
	cb.SetPipelineLayout(s.layout)

	cb.SetPipeline(s.cull)
	cb.SetDescriptorSet(0, s.frame, nil)
	cb.Dispatch(cmdstream.DispatchDesc{X: uint32(draws+63) / 64, Y: 1, Z: 1})
	cb.Barrier(cmdstream.BarrierGroup{
		Buffers: []cmdstream.BufferBarrier{{
			Buffer: s.args,
			Before: gputypes.BufferUsageStorage,
			After:  gputypes.BufferUsageIndirect,
		}},
	})

	cb.UploadBufferToTexture(s.albedo, cmdstream.TextureRegion{Width: 256, Height: 256},
		s.staging, cmdstream.TextureDataLayout{Offset: uint64(frame) * 1024, RowPitch: 1024, SlicePitch: 256 * 1024})

	cb.SetPipeline(s.opaque)
	cb.SetDescriptorSet(0, s.frame, []uint32{uint32(frame) * 256})
	cb.SetVertexBuffers(0, cmdstream.VertexBuffer{Buffer: s.vertices})
	cb.SetIndexBuffer(s.indices, 0, gputypes.IndexFormatUint16)
	cb.BeginRendering(cmdstream.AttachmentsDesc{
		Colors: []cmdstream.Descriptor{&hal.ColorAttachment{
			View:       s.color,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0.1, G: 0.2, B: 0.4, A: 1},
		}},
		DepthStencil: s.depth,
	})
	cb.SetViewports(cmdstream.Viewport{Width: width, Height: height, MaxDepth: 1})
	cb.SetScissors(cmdstream.Rect{Width: width, Height: height})
	for d := range draws {
		cb.DrawIndexed(cmdstream.DrawIndexedDesc{
			IndexNum:    cubeIndices,
			InstanceNum: 1,
			BaseIndex:   uint32(d) * cubeIndices,
		})
	}
	if draws > 0 {
		cb.DrawIndexedIndirect(cmdstream.IndirectDesc{Buffer: s.args, DrawNum: uint32(draws)})
	}
	cb.EndRendering()
	cb.EndAnnotation()
	return cb.End()
}
