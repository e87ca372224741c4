package hal

import (
	"github.com/gogpu/gputypes"
	wgpuhal "github.com/gogpu/wgpu/hal"

	"github.com/gogpu/cmdstream"
)

// RenderPipeline wraps a hal render pipeline so it can be recorded as a
// cmdstream.Pipeline.
type RenderPipeline struct {
	Pipeline wgpuhal.RenderPipeline
	Label    string
}

// BindPoint returns cmdstream.BindPointGraphics.
func (*RenderPipeline) BindPoint() cmdstream.BindPoint { return cmdstream.BindPointGraphics }

func (p *RenderPipeline) String() string { return "render:" + p.Label }

// ComputePipeline wraps a hal compute pipeline.
type ComputePipeline struct {
	Pipeline wgpuhal.ComputePipeline
	Label    string
}

// BindPoint returns cmdstream.BindPointCompute.
func (*ComputePipeline) BindPoint() cmdstream.BindPoint { return cmdstream.BindPointCompute }

func (p *ComputePipeline) String() string { return "compute:" + p.Label }

// ColorAttachment describes a color attachment with explicit load and
// store behavior. A bare hal.TextureView loads and stores.
type ColorAttachment struct {
	View          wgpuhal.TextureView
	ResolveTarget wgpuhal.TextureView
	LoadOp        gputypes.LoadOp
	StoreOp       gputypes.StoreOp
	ClearValue    gputypes.Color
}

// DepthStencilAttachment describes the depth-stencil attachment.
type DepthStencilAttachment struct {
	View              wgpuhal.TextureView
	DepthLoadOp       gputypes.LoadOp
	DepthStoreOp      gputypes.StoreOp
	DepthClearValue   float32
	DepthReadOnly     bool
	StencilLoadOp     gputypes.LoadOp
	StencilStoreOp    gputypes.StoreOp
	StencilClearValue uint32
	StencilReadOnly   bool
}

func colorAttachment(d cmdstream.Descriptor) (wgpuhal.RenderPassColorAttachment, error) {
	switch v := d.(type) {
	case *ColorAttachment:
		return wgpuhal.RenderPassColorAttachment{
			View:          v.View,
			ResolveTarget: v.ResolveTarget,
			LoadOp:        v.LoadOp,
			StoreOp:       v.StoreOp,
			ClearValue:    v.ClearValue,
		}, nil
	case wgpuhal.TextureView:
		return wgpuhal.RenderPassColorAttachment{
			View:    v,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}, nil
	default:
		return wgpuhal.RenderPassColorAttachment{}, wrongObject("color attachment", d)
	}
}

func depthAttachment(d cmdstream.Descriptor) (*wgpuhal.RenderPassDepthStencilAttachment, error) {
	switch v := d.(type) {
	case nil:
		return nil, nil
	case *DepthStencilAttachment:
		return &wgpuhal.RenderPassDepthStencilAttachment{
			View:              v.View,
			DepthLoadOp:       v.DepthLoadOp,
			DepthStoreOp:      v.DepthStoreOp,
			DepthClearValue:   v.DepthClearValue,
			DepthReadOnly:     v.DepthReadOnly,
			StencilLoadOp:     v.StencilLoadOp,
			StencilStoreOp:    v.StencilStoreOp,
			StencilClearValue: v.StencilClearValue,
			StencilReadOnly:   v.StencilReadOnly,
		}, nil
	case wgpuhal.TextureView:
		return &wgpuhal.RenderPassDepthStencilAttachment{
			View:           v,
			DepthLoadOp:    gputypes.LoadOpLoad,
			DepthStoreOp:   gputypes.StoreOpStore,
			StencilLoadOp:  gputypes.LoadOpLoad,
			StencilStoreOp: gputypes.StoreOpStore,
		}, nil
	default:
		return nil, wrongObject("depth-stencil attachment", d)
	}
}

// as asserts a native object to the hal type T. A nil object is an error.
func as[T any](what string, obj any) (T, error) {
	v, ok := obj.(T)
	if !ok {
		var zero T
		return zero, wrongObject(what, obj)
	}
	return v, nil
}
