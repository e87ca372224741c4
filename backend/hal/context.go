package hal

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/gogpu/gputypes"
	wgpuhal "github.com/gogpu/wgpu/hal"

	"github.com/gogpu/cmdstream"
)

const (
	// maxBindGroups is the WebGPU limit on bind group slots.
	maxBindGroups = 4
	// maxVertexBuffers is the WebGPU limit on vertex buffer slots.
	maxVertexBuffers = 8

	drawIndirectStride        = 16
	drawIndexedIndirectStride = 20
)

type boundGroup struct {
	group   wgpuhal.BindGroup
	offsets []uint32
}

type vertexBinding struct {
	buffer wgpuhal.Buffer
	offset uint64
}

type indexBinding struct {
	buffer wgpuhal.Buffer
	format gputypes.IndexFormat
	offset uint64
}

// Context replays records into a hal command encoder. The encoder must be
// between BeginEncoding and EndEncoding.
//
// Bound state (pipelines, bind groups, vertex and index buffers, viewport,
// scissor, blend constant and stencil reference) outlives passes and is
// applied again to every render or compute pass the context opens.
type Context struct {
	enc   wgpuhal.CommandEncoder
	label string

	render  wgpuhal.RenderPassEncoder
	compute wgpuhal.ComputePassEncoder

	graphics       *RenderPipeline
	computePipe    *ComputePipeline
	graphicsGroups [maxBindGroups]boundGroup
	computeGroups  [maxBindGroups]boundGroup

	vertex  [maxVertexBuffers]vertexBinding
	index   indexBinding
	stencil uint32
	blend   gputypes.Color

	viewport    cmdstream.Viewport
	hasViewport bool
	scissor     cmdstream.Rect
	hasScissor  bool

	// Scratch for Barrier.
	bufferBarriers  []wgpuhal.BufferBarrier
	textureBarriers []wgpuhal.TextureBarrier
}

var _ cmdstream.ExecutionContext = (*Context)(nil)

// NewContext creates a context that encodes into enc.
func NewContext(enc wgpuhal.CommandEncoder) *Context {
	return &Context{enc: enc}
}

// SetLabel sets the label given to passes the context opens.
func (c *Context) SetLabel(label string) {
	c.label = label
}

// Encoder returns the wrapped command encoder.
func (c *Context) Encoder() wgpuhal.CommandEncoder {
	return c.enc
}

// InRenderPass reports whether a render pass is open.
func (c *Context) InRenderPass() bool {
	return c.render != nil
}

// Flush ends any open pass. Call it before using the encoder directly.
func (c *Context) Flush() {
	c.endCompute()
	if c.render != nil {
		cmdstream.Logger().Debug("hal: closing render pass left open by replay")
		c.render.End()
		c.render = nil
	}
}

// Finish ends any open pass and finishes the encoder.
func (c *Context) Finish() (wgpuhal.CommandBuffer, error) {
	c.Flush()
	cmd, err := c.enc.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("hal: end encoding: %w", err)
	}
	return cmd, nil
}

// Reset ends open passes and forgets all bound state.
func (c *Context) Reset() {
	c.Flush()
	*c = Context{
		enc:             c.enc,
		label:           c.label,
		bufferBarriers:  c.bufferBarriers[:0],
		textureBarriers: c.textureBarriers[:0],
	}
}

func wrongObject(what string, obj any) error {
	return fmt.Errorf("%w: %s is %T", ErrWrongObject, what, obj)
}

func unsupported(what string) error {
	return fmt.Errorf("%w: %s", cmdstream.ErrUnsupported, what)
}

func (c *Context) endCompute() {
	if c.compute != nil {
		c.compute.End()
		c.compute = nil
	}
}

// applyRenderState binds the remembered graphics state to a new render pass.
func (c *Context) applyRenderState() {
	p := c.render
	if c.graphics != nil {
		p.SetPipeline(c.graphics.Pipeline)
	}
	for i, g := range c.graphicsGroups {
		if g.group != nil {
			p.SetBindGroup(uint32(i), g.group, g.offsets)
		}
	}
	for slot, vb := range c.vertex {
		if vb.buffer != nil {
			p.SetVertexBuffer(uint32(slot), vb.buffer, vb.offset)
		}
	}
	if c.index.buffer != nil {
		p.SetIndexBuffer(c.index.buffer, c.index.format, c.index.offset)
	}
	if c.hasViewport {
		c.applyViewport()
	}
	if c.hasScissor {
		c.applyScissor()
	}
	p.SetBlendConstant(&c.blend)
	p.SetStencilReference(c.stencil)
}

func (c *Context) applyViewport() {
	v := c.viewport
	c.render.SetViewport(v.X, v.Y, v.Width, v.Height, v.MinDepth, v.MaxDepth)
}

func (c *Context) applyScissor() {
	r := c.scissor
	c.render.SetScissorRect(uint32(max(r.X, 0)), uint32(max(r.Y, 0)), r.Width, r.Height)
}

// SetPipelineLayout is a no-op: WebGPU bakes the layout into the pipeline.
func (c *Context) SetPipelineLayout(cmdstream.PipelineLayout) error {
	return nil
}

// SetPipeline binds p and re-applies the dynamic state WebGPU keeps
// outside the pipeline.
func (c *Context) SetPipeline(p cmdstream.Pipeline, dyn *cmdstream.DynamicState) error {
	c.blend = dyn.BlendConstants
	c.stencil = uint32(dyn.StencilFront)

	switch v := p.(type) {
	case *RenderPipeline:
		c.graphics = v
		if c.render != nil {
			c.render.SetPipeline(v.Pipeline)
			c.render.SetBlendConstant(&c.blend)
			c.render.SetStencilReference(c.stencil)
		}
	case *ComputePipeline:
		c.computePipe = v
		if c.compute != nil {
			c.compute.SetPipeline(v.Pipeline)
		}
	default:
		return wrongObject("pipeline", p)
	}
	return nil
}

// SetDescriptorPool is a no-op: bind groups are allocated by the device.
func (c *Context) SetDescriptorPool(cmdstream.DescriptorPool) error {
	return nil
}

// SetDescriptorSet binds a bind group for bp. The binding is kept and
// reapplied when the next pass of that kind opens.
func (c *Context) SetDescriptorSet(bp cmdstream.BindPoint, idx uint32, set cmdstream.DescriptorSet, offsets []uint32) error {
	if idx >= maxBindGroups {
		return fmt.Errorf("hal: bind group index %d exceeds maximum (%d)", idx, maxBindGroups-1)
	}
	group, err := as[wgpuhal.BindGroup]("descriptor set", set)
	if err != nil {
		return err
	}
	bound := boundGroup{group: group, offsets: slices.Clone(offsets)}

	switch bp {
	case cmdstream.BindPointCompute:
		c.computeGroups[idx] = bound
		if c.compute != nil {
			c.compute.SetBindGroup(idx, group, bound.offsets)
		}
	default:
		c.graphicsGroups[idx] = bound
		if c.render != nil {
			c.render.SetBindGroup(idx, group, bound.offsets)
		}
	}
	return nil
}

// SetRootConstants reports cmdstream.ErrUnsupported.
func (c *Context) SetRootConstants(cmdstream.BindPoint, uint32, []byte) error {
	return unsupported("root constants")
}

// SetRootDescriptor reports cmdstream.ErrUnsupported.
func (c *Context) SetRootDescriptor(cmdstream.BindPoint, uint32, cmdstream.Descriptor) error {
	return unsupported("root descriptors")
}

// SetViewports applies the first viewport. WebGPU has a single viewport,
// so more than one is reported as unsupported after the first is applied.
func (c *Context) SetViewports(v []cmdstream.Viewport) error {
	if len(v) == 0 {
		return nil
	}
	c.viewport, c.hasViewport = v[0], true
	if c.render != nil {
		c.applyViewport()
	}
	if len(v) > 1 {
		return unsupported(fmt.Sprintf("%d viewports", len(v)))
	}
	return nil
}

// SetScissors applies the first rectangle. Negative origins are clamped
// to zero.
func (c *Context) SetScissors(r []cmdstream.Rect) error {
	if len(r) == 0 {
		return nil
	}
	c.scissor, c.hasScissor = r[0], true
	if c.render != nil {
		c.applyScissor()
	}
	if len(r) > 1 {
		return unsupported(fmt.Sprintf("%d scissor rects", len(r)))
	}
	return nil
}

// SetStencilReference applies front. WebGPU has one reference for both
// faces.
func (c *Context) SetStencilReference(front, _ uint8) error {
	c.stencil = uint32(front)
	if c.render != nil {
		c.render.SetStencilReference(c.stencil)
	}
	return nil
}

// SetDepthBounds reports cmdstream.ErrUnsupported.
func (c *Context) SetDepthBounds(float32, float32) error {
	return unsupported("depth bounds")
}

// SetBlendConstants sets the blend constant of the current and later
// render passes.
func (c *Context) SetBlendConstants(col gputypes.Color) error {
	c.blend = col
	if c.render != nil {
		c.render.SetBlendConstant(&c.blend)
	}
	return nil
}

// SetSampleLocations reports cmdstream.ErrUnsupported.
func (c *Context) SetSampleLocations([]cmdstream.SampleLocation, uint8) error {
	return unsupported("sample locations")
}

// SetShadingRate reports cmdstream.ErrUnsupported.
func (c *Context) SetShadingRate(cmdstream.ShadingRateDesc) error {
	return unsupported("shading rate")
}

// SetDepthBias reports cmdstream.ErrUnsupported; depth bias is pipeline state.
func (c *Context) SetDepthBias(cmdstream.DepthBiasDesc) error {
	return unsupported("dynamic depth bias")
}

// BeginRendering opens a render pass. A compute pass left open by an
// earlier dispatch is ended first.
func (c *Context) BeginRendering(d cmdstream.AttachmentsDesc) error {
	if c.render != nil {
		return ErrRenderPassOpen
	}
	desc := wgpuhal.RenderPassDescriptor{
		Label:            c.label,
		ColorAttachments: make([]wgpuhal.RenderPassColorAttachment, len(d.Colors)),
	}
	for i, att := range d.Colors {
		ca, err := colorAttachment(att)
		if err != nil {
			return err
		}
		desc.ColorAttachments[i] = ca
	}
	ds, err := depthAttachment(d.DepthStencil)
	if err != nil {
		return err
	}
	desc.DepthStencilAttachment = ds

	c.endCompute()
	c.render = c.enc.BeginRenderPass(&desc)
	c.applyRenderState()
	return nil
}

// EndRendering ends the open render pass.
func (c *Context) EndRendering() error {
	if c.render == nil {
		return ErrNoRenderPass
	}
	c.render.End()
	c.render = nil
	return nil
}

// ClearAttachments reports cmdstream.ErrUnsupported. Use load ops instead.
func (c *Context) ClearAttachments([]cmdstream.ClearDesc, []cmdstream.Rect) error {
	return unsupported("attachment clears inside a pass")
}

// SetIndexBuffer binds buf as the index buffer. A nil buf clears it.
func (c *Context) SetIndexBuffer(buf cmdstream.Buffer, offset uint64, format gputypes.IndexFormat) error {
	if buf == nil {
		c.index = indexBinding{}
		return nil
	}
	b, err := as[wgpuhal.Buffer]("index buffer", buf)
	if err != nil {
		return err
	}
	c.index = indexBinding{buffer: b, format: format, offset: offset}
	if c.render != nil {
		c.render.SetIndexBuffer(b, format, offset)
	}
	return nil
}

// SetVertexBuffers binds vertex buffers from baseSlot on. Nil entries
// clear their slot.
func (c *Context) SetVertexBuffers(baseSlot uint32, vbs []cmdstream.VertexBuffer) error {
	if int(baseSlot)+len(vbs) > maxVertexBuffers {
		return fmt.Errorf("hal: vertex buffer slots %d..%d exceed maximum (%d)",
			baseSlot, int(baseSlot)+len(vbs)-1, maxVertexBuffers-1)
	}
	for i, vb := range vbs {
		slot := baseSlot + uint32(i)
		if vb.Buffer == nil {
			c.vertex[slot] = vertexBinding{}
			continue
		}
		b, err := as[wgpuhal.Buffer]("vertex buffer", vb.Buffer)
		if err != nil {
			return err
		}
		c.vertex[slot] = vertexBinding{buffer: b, offset: vb.Offset}
		if c.render != nil {
			c.render.SetVertexBuffer(slot, b, vb.Offset)
		}
	}
	return nil
}

// Draw issues a draw in the open render pass.
func (c *Context) Draw(d cmdstream.DrawDesc) error {
	if c.render == nil {
		return ErrNoRenderPass
	}
	c.render.Draw(d.VertexNum, d.InstanceNum, d.BaseVertex, d.BaseInstance)
	return nil
}

// DrawIndexed issues an indexed draw in the open render pass.
func (c *Context) DrawIndexed(d cmdstream.DrawIndexedDesc) error {
	if c.render == nil {
		return ErrNoRenderPass
	}
	c.render.DrawIndexed(d.IndexNum, d.InstanceNum, d.BaseIndex, d.BaseVertex, d.BaseInstance)
	return nil
}

// DrawIndirect issues desc.DrawNum indirect draws.
func (c *Context) DrawIndirect(d cmdstream.IndirectDesc) error {
	if c.render == nil {
		return ErrNoRenderPass
	}
	return c.drawIndirect(d, drawIndirectStride, c.render.DrawIndirect)
}

// DrawIndexedIndirect issues desc.DrawNum indexed indirect draws.
func (c *Context) DrawIndexedIndirect(d cmdstream.IndirectDesc) error {
	if c.render == nil {
		return ErrNoRenderPass
	}
	return c.drawIndirect(d, drawIndexedIndirectStride, c.render.DrawIndexedIndirect)
}

// drawIndirect issues one indirect draw per command. WebGPU has no
// multi-draw, and a count buffer cannot be read on the CPU, so DrawNum
// draws are always issued.
func (c *Context) drawIndirect(d cmdstream.IndirectDesc, defaultStride uint32, draw func(wgpuhal.Buffer, uint64)) error {
	buf, err := as[wgpuhal.Buffer]("indirect buffer", d.Buffer)
	if err != nil {
		return err
	}
	stride := d.Stride
	if stride == 0 {
		stride = defaultStride
	}
	if d.Offset%4 != 0 || stride%4 != 0 {
		return ErrIndirectOffsetNotAligned
	}
	if d.DrawNum > 1 || d.CountBuffer != nil {
		cmdstream.Logger().Debug("hal: emulating multi-draw indirect",
			slog.Uint64("draws", uint64(d.DrawNum)),
			slog.Bool("count_buffer_ignored", d.CountBuffer != nil))
	}
	for i := range d.DrawNum {
		draw(buf, d.Offset+uint64(i)*uint64(stride))
	}
	return nil
}

// computePass returns the open compute pass, opening one if needed.
func (c *Context) computePass() (wgpuhal.ComputePassEncoder, error) {
	if c.render != nil {
		return nil, ErrRenderPassOpen
	}
	if c.computePipe == nil {
		return nil, ErrNoPipeline
	}
	if c.compute == nil {
		c.compute = c.enc.BeginComputePass(&wgpuhal.ComputePassDescriptor{Label: c.label})
		c.compute.SetPipeline(c.computePipe.Pipeline)
		for i, g := range c.computeGroups {
			if g.group != nil {
				c.compute.SetBindGroup(uint32(i), g.group, g.offsets)
			}
		}
	}
	return c.compute, nil
}

// Dispatch runs workgroups in the compute pass, opening it if needed.
func (c *Context) Dispatch(d cmdstream.DispatchDesc) error {
	pass, err := c.computePass()
	if err != nil {
		return err
	}
	pass.Dispatch(d.X, d.Y, d.Z)
	return nil
}

// DispatchIndirect reads the workgroup counts from buf. offset must be a
// multiple of 4.
func (c *Context) DispatchIndirect(buf cmdstream.Buffer, offset uint64) error {
	b, err := as[wgpuhal.Buffer]("indirect buffer", buf)
	if err != nil {
		return err
	}
	if offset%4 != 0 {
		return ErrIndirectOffsetNotAligned
	}
	pass, err := c.computePass()
	if err != nil {
		return err
	}
	pass.DispatchIndirect(b, offset)
	return nil
}

// transfer prepares the encoder for a command outside any pass.
func (c *Context) transfer() error {
	if c.render != nil {
		return ErrRenderPassOpen
	}
	c.endCompute()
	return nil
}

func buffers(dst, src cmdstream.Buffer) (d, s wgpuhal.Buffer, err error) {
	if d, err = as[wgpuhal.Buffer]("destination buffer", dst); err != nil {
		return nil, nil, err
	}
	if s, err = as[wgpuhal.Buffer]("source buffer", src); err != nil {
		return nil, nil, err
	}
	return d, s, nil
}

func textures(dst, src cmdstream.Texture) (d, s wgpuhal.Texture, err error) {
	if d, err = as[wgpuhal.Texture]("destination texture", dst); err != nil {
		return nil, nil, err
	}
	if s, err = as[wgpuhal.Texture]("source texture", src); err != nil {
		return nil, nil, err
	}
	return d, s, nil
}

// imageCopy maps a region to a hal copy location. Array layers are
// addressed through the origin's Z, as WebGPU does for 2D arrays.
func imageCopy(t wgpuhal.Texture, r cmdstream.TextureRegion) wgpuhal.ImageCopyTexture {
	aspect := r.Aspect
	if aspect == 0 {
		aspect = gputypes.TextureAspectAll
	}
	return wgpuhal.ImageCopyTexture{
		Texture:  t,
		MipLevel: r.MipOffset,
		Origin:   wgpuhal.Origin3D{X: r.X, Y: r.Y, Z: r.Z + r.LayerOffset},
		Aspect:   aspect,
	}
}

func extent(r cmdstream.TextureRegion) wgpuhal.Extent3D {
	return wgpuhal.Extent3D{Width: r.Width, Height: r.Height, DepthOrArrayLayers: max(r.Depth, 1)}
}

func dataLayout(l cmdstream.TextureDataLayout) wgpuhal.ImageDataLayout {
	var rows uint32
	if l.RowPitch != 0 {
		rows = l.SlicePitch / l.RowPitch
	}
	return wgpuhal.ImageDataLayout{Offset: l.Offset, BytesPerRow: l.RowPitch, RowsPerImage: rows}
}

// CopyBuffer copies size bytes between buffers.
func (c *Context) CopyBuffer(dst cmdstream.Buffer, dstOffset uint64, src cmdstream.Buffer, srcOffset, size uint64) error {
	if err := c.transfer(); err != nil {
		return err
	}
	d, s, err := buffers(dst, src)
	if err != nil {
		return err
	}
	c.enc.CopyBufferToBuffer(s, d, []wgpuhal.BufferCopy{{SrcOffset: srcOffset, DstOffset: dstOffset, Size: size}})
	return nil
}

// CopyTexture copies srcRegion of src to dstRegion of dst.
func (c *Context) CopyTexture(dst cmdstream.Texture, dstRegion cmdstream.TextureRegion, src cmdstream.Texture, srcRegion cmdstream.TextureRegion) error {
	if err := c.transfer(); err != nil {
		return err
	}
	d, s, err := textures(dst, src)
	if err != nil {
		return err
	}
	c.enc.CopyTextureToTexture(s, d, []wgpuhal.TextureCopy{{
		SrcBase: imageCopy(s, srcRegion),
		DstBase: imageCopy(d, dstRegion),
		Size:    extent(srcRegion),
	}})
	return nil
}

// UploadBufferToTexture copies buffer rows into a texture region.
func (c *Context) UploadBufferToTexture(dst cmdstream.Texture, dstRegion cmdstream.TextureRegion, src cmdstream.Buffer, layout cmdstream.TextureDataLayout) error {
	if err := c.transfer(); err != nil {
		return err
	}
	t, err := as[wgpuhal.Texture]("destination texture", dst)
	if err != nil {
		return err
	}
	b, err := as[wgpuhal.Buffer]("source buffer", src)
	if err != nil {
		return err
	}
	c.enc.CopyBufferToTexture(b, t, []wgpuhal.BufferTextureCopy{{
		BufferLayout: dataLayout(layout),
		TextureBase:  imageCopy(t, dstRegion),
		Size:         extent(dstRegion),
	}})
	return nil
}

// ReadbackTextureToBuffer copies a texture region into buffer rows.
func (c *Context) ReadbackTextureToBuffer(dst cmdstream.Buffer, layout cmdstream.TextureDataLayout, src cmdstream.Texture, srcRegion cmdstream.TextureRegion) error {
	if err := c.transfer(); err != nil {
		return err
	}
	b, err := as[wgpuhal.Buffer]("destination buffer", dst)
	if err != nil {
		return err
	}
	t, err := as[wgpuhal.Texture]("source texture", src)
	if err != nil {
		return err
	}
	c.enc.CopyTextureToBuffer(t, b, []wgpuhal.BufferTextureCopy{{
		BufferLayout: dataLayout(layout),
		TextureBase:  imageCopy(t, srcRegion),
		Size:         extent(srcRegion),
	}})
	return nil
}

// ZeroBuffer clears a buffer range.
func (c *Context) ZeroBuffer(buf cmdstream.Buffer, offset, size uint64) error {
	if err := c.transfer(); err != nil {
		return err
	}
	b, err := as[wgpuhal.Buffer]("buffer", buf)
	if err != nil {
		return err
	}
	c.enc.ClearBuffer(b, offset, size)
	return nil
}

// ResolveTexture reports cmdstream.ErrUnsupported.
func (c *Context) ResolveTexture(cmdstream.Texture, cmdstream.TextureRegion, cmdstream.Texture, cmdstream.TextureRegion) error {
	return unsupported("explicit resolve, use a resolve target")
}

// ClearStorage reports cmdstream.ErrUnsupported.
func (c *Context) ClearStorage(cmdstream.Descriptor, cmdstream.ClearStorageValue) error {
	return unsupported("storage clears")
}

// Barrier transitions the listed buffers and textures. Global barriers have
// no hal equivalent and are skipped.
func (c *Context) Barrier(g cmdstream.BarrierGroup) error {
	if err := c.transfer(); err != nil {
		return err
	}
	if len(g.Globals) > 0 {
		cmdstream.Logger().Debug("hal: global barriers skipped", slog.Int("count", len(g.Globals)))
	}

	c.bufferBarriers = c.bufferBarriers[:0]
	for _, b := range g.Buffers {
		buf, err := as[wgpuhal.Buffer]("barrier buffer", b.Buffer)
		if err != nil {
			return err
		}
		c.bufferBarriers = append(c.bufferBarriers, wgpuhal.BufferBarrier{
			Buffer: buf,
			Usage:  wgpuhal.BufferUsageTransition{OldUsage: b.Before, NewUsage: b.After},
		})
	}
	c.textureBarriers = c.textureBarriers[:0]
	for _, t := range g.Textures {
		tex, err := as[wgpuhal.Texture]("barrier texture", t.Texture)
		if err != nil {
			return err
		}
		c.textureBarriers = append(c.textureBarriers, wgpuhal.TextureBarrier{
			Texture: tex,
			Range: wgpuhal.TextureRange{
				Aspect:          t.Aspect,
				BaseMipLevel:    t.MipOffset,
				MipLevelCount:   t.MipNum,
				BaseArrayLayer:  t.LayerOffset,
				ArrayLayerCount: t.LayerNum,
			},
			Usage: wgpuhal.TextureUsageTransition{OldUsage: t.Before, NewUsage: t.After},
		})
	}

	if len(c.bufferBarriers) > 0 {
		c.enc.TransitionBuffers(c.bufferBarriers)
	}
	if len(c.textureBarriers) > 0 {
		c.enc.TransitionTextures(c.textureBarriers)
	}
	return nil
}

// ResetQueries is a no-op: WebGPU query sets need no reset.
func (c *Context) ResetQueries(cmdstream.QueryPool, uint32, uint32) error {
	return nil
}

// BeginQuery reports cmdstream.ErrUnsupported.
func (c *Context) BeginQuery(cmdstream.QueryPool, uint32) error {
	return unsupported("query brackets")
}

// EndQuery reports cmdstream.ErrUnsupported.
func (c *Context) EndQuery(cmdstream.QueryPool, uint32) error {
	return unsupported("query brackets")
}

// CopyQueries resolves num query results into dst.
func (c *Context) CopyQueries(pool cmdstream.QueryPool, offset, num uint32, dst cmdstream.Buffer, dstOffset uint64) error {
	if err := c.transfer(); err != nil {
		return err
	}
	qs, err := as[wgpuhal.QuerySet]("query pool", pool)
	if err != nil {
		return err
	}
	b, err := as[wgpuhal.Buffer]("destination buffer", dst)
	if err != nil {
		return err
	}
	c.enc.ResolveQuerySet(qs, offset, num, b, dstOffset)
	return nil
}

// hal exposes no debug markers; annotations only reach the log.

// BeginAnnotation logs name at debug level.
func (c *Context) BeginAnnotation(name string, color uint32) error {
	cmdstream.Logger().Debug("hal: annotation begin", slog.String("name", name), slog.Uint64("color", uint64(color)))
	return nil
}

// EndAnnotation does nothing.
func (c *Context) EndAnnotation() error {
	return nil
}

// Annotation logs name at debug level.
func (c *Context) Annotation(name string, color uint32) error {
	cmdstream.Logger().Debug("hal: annotation", slog.String("name", name), slog.Uint64("color", uint64(color)))
	return nil
}
