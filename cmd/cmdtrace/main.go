// Command cmdtrace records demo frames on several goroutines, submits them
// through a cmdstream.Queue and prints what the execution context received.
//
// Usage:
//
//	cmdtrace [-frames 4] [-workers 2] [-draws 3] [-context trace|hal|null]
//
// Every flag has a CMDSTREAM_* environment counterpart; flags win. The hal
// context replays into the wgpu noop backend, which exercises the real
// adapter without a GPU.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	wgpuhal "github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/cmdstream"
	"github.com/gogpu/cmdstream/backend/hal"
	"github.com/gogpu/cmdstream/backend/trace"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "cmdtrace: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(args, stderr)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	cmdstream.SetLogger(log)
	defer cmdstream.SetLogger(nil)

	shutdown, err := setupTracing(ctx, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			log.Warn("tracing shutdown failed", slog.Any("err", err))
		}
	}()

	dev := &noop.Device{}
	s, err := newScene(dev)
	if err != nil {
		return err
	}
	execCtx, finish, err := openContext(cfg.Context, dev)
	if err != nil {
		return err
	}

	cbs, err := recordFrames(cfg, s)
	if err != nil {
		return err
	}

	if cfg.Disasm {
		for _, cb := range cbs {
			if err := cmdstream.Disassemble(stdout, cb); err != nil {
				return fmt.Errorf("disassemble %s: %w", cb.Label(), err)
			}
		}
	}

	var failures atomic.Int64
	q := cmdstream.NewQueue(execCtx, cmdstream.WithErrorHandler(func(*cmdstream.ReplayError) {
		failures.Add(1)
	}))
	submitErr := q.Submit(ctx, cbs...)
	log.Info("submitted",
		slog.String("context", cfg.Context),
		slog.Int("frames", len(cbs)),
		slog.Uint64("buffers", q.Submitted()),
		slog.Int64("failures", failures.Load()))

	if err := finish(stdout); err != nil {
		return err
	}
	return submitErr
}

// recordFrames records cfg.Frames command buffers on cfg.Workers goroutines.
func recordFrames(cfg config, s *scene) ([]*cmdstream.CommandBuffer, error) {
	cbs := make([]*cmdstream.CommandBuffer, cfg.Frames)
	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for i := range cbs {
		g.Go(func() error {
			cb := cmdstream.NewCommandBuffer(
				cmdstream.WithLabel(fmt.Sprintf("frame-%d", i)),
				cmdstream.WithValidation(cfg.Validate),
				cmdstream.WithMaxSize(cfg.MaxSize),
			)
			cbs[i] = cb
			if err := recordFrame(cb, s, i, cfg.Draws); err != nil {
				return fmt.Errorf("record frame %d: %w", i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cbs, nil
}

// openContext resolves name through the context registry. The hal context
// needs an open encoder, so it is registered over a fresh one for the
// lookup only and removed again before returning.
// finish writes whatever the context collected.
func openContext(name string, dev device) (cmdstream.ExecutionContext, func(io.Writer) error, error) {
	if name == "hal" && !cmdstream.IsContextRegistered("hal") {
		enc, err := dev.CreateCommandEncoder(&wgpuhal.CommandEncoderDescriptor{Label: "cmdtrace"})
		if err != nil {
			return nil, nil, fmt.Errorf("create encoder: %w", err)
		}
		if err := enc.BeginEncoding("cmdtrace"); err != nil {
			return nil, nil, fmt.Errorf("begin encoding: %w", err)
		}
		cmdstream.RegisterContext("hal", func() cmdstream.ExecutionContext {
			return hal.NewContext(enc)
		})
		defer cmdstream.UnregisterContext("hal")
	}

	ctx, err := cmdstream.NewContext(name)
	if err != nil {
		return nil, nil, fmt.Errorf("%w (available: %v)", err, cmdstream.Contexts())
	}

	finish := func(w io.Writer) error {
		switch c := ctx.(type) {
		case *trace.Context:
			_, err := c.WriteTo(w)
			return err
		case *hal.Context:
			cmd, err := c.Finish()
			if err != nil {
				return err
			}
			cmd.Destroy()
			_, err = fmt.Fprintln(w, "hal: command buffer finished")
			return err
		default:
			return nil
		}
	}
	return ctx, finish, nil
}
