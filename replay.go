package cmdstream

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/cmdstream/internal/wire"
)

// Replay executes the records of cb against ctx in recorded order.
// It is shorthand for cb.Replay(ctx).
func Replay(cb *CommandBuffer, ctx ExecutionContext) error {
	return cb.Replay(ctx)
}

// replayer drives one replay pass.
type replayer struct {
	ctx   ExecutionContext
	state replayState
}

// errStop ends a walk without error.
var errStop = errors.New("stop")

// walk decodes every record of words in order. With p set, records are
// applied to p and apply failures go to onFail; otherwise each decoded
// record is passed to fn. A decode failure stops the walk and is returned
// as a *ReplayError wrapping ErrCorrupt.
func walk(words []uint64, objs *objectTable, p *replayer, onFail func(*ReplayError), fn func(int, Record) error) error {
	var d wire.Decoder
	d.Reset(words)
	r := reader{d: &d, objs: objs}

	for i := 0; d.Next(); i++ {
		op := Opcode(d.Op())
		if !op.Valid() {
			return &ReplayError{Index: i, Op: op, Err: fmt.Errorf("%w: unknown opcode %d at word %d", ErrCorrupt, d.Op(), d.Offset())}
		}
		c := &codecs[op]
		r.err = nil

		if p != nil {
			if op == OpEnd {
				return nil
			}
			err := c.replay(&r, p)
			if r.err != nil {
				return corruptRecord(i, op, &d, r.err)
			}
			if err != nil && onFail != nil {
				onFail(&ReplayError{Index: i, Op: op, Err: err})
			}
			continue
		}

		rec := c.decode(&r)
		if r.err != nil {
			return corruptRecord(i, op, &d, r.err)
		}
		if err := fn(i, rec); err != nil {
			if errors.Is(err, errStop) {
				return nil
			}
			return err
		}
	}
	if err := d.Err(); err != nil {
		return &ReplayError{Index: -1, Err: err}
	}
	return nil
}

func corruptRecord(i int, op Opcode, d *wire.Decoder, err error) error {
	if !errors.Is(err, ErrCorrupt) {
		err = fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return &ReplayError{Index: i, Op: op, Err: fmt.Errorf("record at word %d: %w", d.Offset(), err)}
}

// replay runs one pass over cb. Native failures are collected and the pass
// continues; a corrupt record ends it.
func (cb *CommandBuffer) replay(ctx ExecutionContext, handler ErrorHandler) error {
	p := replayer{ctx: ctx, state: newReplayState()}
	log := Logger()

	var errs []error
	onFail := func(re *ReplayError) {
		log.Warn("cmdstream: native call failed",
			slog.String("label", cb.opts.label),
			slog.Int("index", re.Index),
			slog.String("op", re.Op.String()),
			slog.Any("err", re.Err),
			p.state.attrs())
		if handler != nil {
			handler(re)
		}
		errs = append(errs, re)
	}

	if err := walk(cb.buf.Words(), &cb.objs, &p, onFail, nil); err != nil {
		log.Warn("cmdstream: replay aborted", slog.String("label", cb.opts.label), slog.Any("err", err))
		errs = append(errs, err)
	} else if p.state.rendering {
		log.Warn("cmdstream: replay ended inside rendering", slog.String("label", cb.opts.label), p.state.attrs())
	}

	log.Debug("cmdstream: replayed",
		slog.String("label", cb.opts.label),
		slog.Int("records", cb.records),
		slog.Int("failures", len(errs)))
	return errors.Join(errs...)
}

func (c SetPipelineLayoutCmd) apply(p *replayer) error {
	p.state.layout = c.Layout
	return p.ctx.SetPipelineLayout(c.Layout)
}

func (c SetPipelineCmd) apply(p *replayer) error {
	p.state.pipeline = c.Pipeline
	return p.ctx.SetPipeline(c.Pipeline, &p.state.dyn)
}

func (c SetDescriptorPoolCmd) apply(p *replayer) error {
	p.state.pool = c.Pool
	return p.ctx.SetDescriptorPool(c.Pool)
}

func (c SetDescriptorSetCmd) apply(p *replayer) error {
	return p.ctx.SetDescriptorSet(p.state.bindPoint(), c.SetIndex, c.Set, c.DynamicOffsets)
}

func (c SetRootConstantsCmd) apply(p *replayer) error {
	return p.ctx.SetRootConstants(p.state.bindPoint(), c.Index, c.Data)
}

func (c SetRootDescriptorCmd) apply(p *replayer) error {
	return p.ctx.SetRootDescriptor(p.state.bindPoint(), c.Index, c.Descriptor)
}

func (c SetViewportsCmd) apply(p *replayer) error {
	return p.ctx.SetViewports(c.Viewports)
}

func (c SetScissorsCmd) apply(p *replayer) error {
	return p.ctx.SetScissors(c.Rects)
}

func (c SetStencilReferenceCmd) apply(p *replayer) error {
	p.state.dyn.StencilFront, p.state.dyn.StencilBack = c.Front, c.Back
	return p.ctx.SetStencilReference(c.Front, c.Back)
}

func (c SetDepthBoundsCmd) apply(p *replayer) error {
	p.state.dyn.DepthBoundsMin, p.state.dyn.DepthBoundsMax = c.Min, c.Max
	return p.ctx.SetDepthBounds(c.Min, c.Max)
}

func (c SetBlendConstantsCmd) apply(p *replayer) error {
	p.state.dyn.BlendConstants = c.Color
	return p.ctx.SetBlendConstants(c.Color)
}

func (c SetSampleLocationsCmd) apply(p *replayer) error {
	p.state.dyn.SampleLocations, p.state.dyn.SampleNum = c.Locations, c.SampleNum
	return p.ctx.SetSampleLocations(c.Locations, c.SampleNum)
}

func (c SetShadingRateCmd) apply(p *replayer) error {
	p.state.dyn.ShadingRate = c.ShadingRateDesc
	return p.ctx.SetShadingRate(c.ShadingRateDesc)
}

func (c SetDepthBiasCmd) apply(p *replayer) error {
	p.state.dyn.DepthBias = c.DepthBiasDesc
	return p.ctx.SetDepthBias(c.DepthBiasDesc)
}

func (c BeginRenderingCmd) apply(p *replayer) error {
	p.state.rendering = true
	return p.ctx.BeginRendering(c.Attachments)
}

func (EndRenderingCmd) apply(p *replayer) error {
	p.state.rendering = false
	return p.ctx.EndRendering()
}

func (c ClearAttachmentsCmd) apply(p *replayer) error {
	return p.ctx.ClearAttachments(c.Clears, c.Rects)
}

func (c SetIndexBufferCmd) apply(p *replayer) error {
	return p.ctx.SetIndexBuffer(c.Buffer, c.Offset, c.Format)
}

func (c SetVertexBuffersCmd) apply(p *replayer) error {
	return p.ctx.SetVertexBuffers(c.BaseSlot, c.Buffers)
}

func (c DrawCmd) apply(p *replayer) error {
	return p.ctx.Draw(c.DrawDesc)
}

func (c DrawIndexedCmd) apply(p *replayer) error {
	return p.ctx.DrawIndexed(c.DrawIndexedDesc)
}

func (c DrawIndirectCmd) apply(p *replayer) error {
	return p.ctx.DrawIndirect(c.IndirectDesc)
}

func (c DrawIndexedIndirectCmd) apply(p *replayer) error {
	return p.ctx.DrawIndexedIndirect(c.IndirectDesc)
}

func (c DispatchCmd) apply(p *replayer) error {
	return p.ctx.Dispatch(c.DispatchDesc)
}

func (c DispatchIndirectCmd) apply(p *replayer) error {
	return p.ctx.DispatchIndirect(c.Buffer, c.Offset)
}

func (c CopyBufferCmd) apply(p *replayer) error {
	return p.ctx.CopyBuffer(c.Dst, c.DstOffset, c.Src, c.SrcOffset, c.Size)
}

func (c CopyTextureCmd) apply(p *replayer) error {
	return p.ctx.CopyTexture(c.Dst, c.DstRegion, c.Src, c.SrcRegion)
}

func (c UploadBufferToTextureCmd) apply(p *replayer) error {
	return p.ctx.UploadBufferToTexture(c.Dst, c.DstRegion, c.Src, c.Layout)
}

func (c ReadbackTextureToBufferCmd) apply(p *replayer) error {
	return p.ctx.ReadbackTextureToBuffer(c.Dst, c.Layout, c.Src, c.SrcRegion)
}

func (c ZeroBufferCmd) apply(p *replayer) error {
	return p.ctx.ZeroBuffer(c.Buffer, c.Offset, c.Size)
}

func (c ResolveTextureCmd) apply(p *replayer) error {
	return p.ctx.ResolveTexture(c.Dst, c.DstRegion, c.Src, c.SrcRegion)
}

func (c ClearStorageCmd) apply(p *replayer) error {
	return p.ctx.ClearStorage(c.Descriptor, c.Value)
}

func (c BarrierCmd) apply(p *replayer) error {
	return p.ctx.Barrier(c.BarrierGroup)
}

func (c ResetQueriesCmd) apply(p *replayer) error {
	return p.ctx.ResetQueries(c.Pool, c.Offset, c.Num)
}

func (c BeginQueryCmd) apply(p *replayer) error {
	return p.ctx.BeginQuery(c.Pool, c.Offset)
}

func (c EndQueryCmd) apply(p *replayer) error {
	return p.ctx.EndQuery(c.Pool, c.Offset)
}

func (c CopyQueriesCmd) apply(p *replayer) error {
	return p.ctx.CopyQueries(c.Pool, c.Offset, c.Num, c.Dst, c.DstOffset)
}

func (c BeginAnnotationCmd) apply(p *replayer) error {
	return p.ctx.BeginAnnotation(c.Name, c.Color)
}

func (EndAnnotationCmd) apply(p *replayer) error {
	return p.ctx.EndAnnotation()
}

func (c AnnotationCmd) apply(p *replayer) error {
	return p.ctx.Annotation(c.Name, c.Color)
}

// EndCmd is consumed by the dispatcher and never reaches the context.
func (EndCmd) apply(*replayer) error {
	return nil
}
