// Package cmdstream records GPU commands on any goroutine and replays them
// in order against one single-threaded execution context.
//
// # Overview
//
// Some native graphics APIs only accept work through one immediate
// context. cmdstream gives such backends explicit, multi-threaded command
// recording: every CommandBuffer serializes its commands into a private,
// self-describing word stream, and a Queue later replays the finished
// streams one after another on the context that owns the device.
//
// # Quick Start
//
//	cb := cmdstream.NewCommandBuffer(cmdstream.WithLabel("frame"))
//	cb.Begin()
//	cb.SetViewports(cmdstream.Viewport{Width: 1920, Height: 1080, MaxDepth: 1})
//	cb.Draw(cmdstream.DrawDesc{VertexNum: 3, InstanceNum: 1})
//	if err := cb.End(); err != nil {
//	    log.Fatal(err)
//	}
//
//	queue := cmdstream.NewQueue(ctx)
//	if err := queue.Submit(context.Background(), cb); err != nil {
//	    log.Print(err)
//	}
//
// # Architecture
//
// The package is organized into:
//   - Opcode table and typed records: one XxxCmd type per Opcode
//   - CommandBuffer: the recording session with one method per opcode
//   - Replay: decodes records into typed values and calls ExecutionContext
//   - Allocator and Queue: pooling and ordered submission
//   - internal/wire: the word store, encoder and decoder
//
// Execution contexts live in backend packages. backend/trace records every
// call it receives; backend/hal drives a github.com/gogpu/wgpu/hal command
// encoder.
//
// # Errors
//
// API misuse at record time panics with a *UsageError when validation is
// enabled and is logged otherwise. Running out of buffer space
// (WithMaxSize) fails the recording; End and Replay report it. Native
// failures during replay are reported as *ReplayError values and do not
// stop the remaining records.
package cmdstream

// Version is the current version of the library.
const Version = "0.1.0"
