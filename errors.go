package cmdstream

import (
	"errors"
	"fmt"

	"github.com/gogpu/cmdstream/internal/wire"
)

// Sentinel errors. Use errors.Is to test for them.
var (
	// ErrBufferFull is returned when a record would grow a command buffer
	// past its configured maximum size.
	ErrBufferFull = wire.ErrBufferFull

	// ErrCorrupt is returned when replay meets a record it cannot decode.
	ErrCorrupt = wire.ErrCorrupt

	// ErrTruncated is returned when a record is shorter than its opcode's
	// argument shape.
	ErrTruncated = wire.ErrTruncated

	// ErrNotEnded is returned when replaying a command buffer that is not
	// in the Ended state.
	ErrNotEnded = errors.New("cmdstream: command buffer not ended")

	// ErrUnsupported is returned by execution contexts for primitives the
	// native layer does not provide.
	ErrUnsupported = errors.New("cmdstream: unsupported by execution context")

	// ErrInvalidObject is returned when a record references an object of
	// the wrong kind or outside the command buffer's object table.
	ErrInvalidObject = errors.New("cmdstream: invalid object reference")
)

// UsageError reports API misuse detected at record time.
//
// With validation enabled the offending call panics with a *UsageError.
// Without it the error is logged and the call is dropped.
type UsageError struct {
	// Method is the CommandBuffer method that was misused.
	Method string
	// Label is the command buffer label, if any.
	Label  string
	Reason string
}

func (e *UsageError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("cmdstream: %s (%s): %s", e.Method, e.Label, e.Reason)
	}
	return fmt.Sprintf("cmdstream: %s: %s", e.Method, e.Reason)
}

// ReplayError reports the failure of one record during replay.
type ReplayError struct {
	// Index is the position of the record in the command buffer.
	Index int
	Op    Opcode
	Err   error
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("cmdstream: replay record %d (%s): %v", e.Index, e.Op, e.Err)
}

func (e *ReplayError) Unwrap() error {
	return e.Err
}

// ErrorHandler receives native failures as replay reports them.
// It runs on the replaying goroutine.
type ErrorHandler func(*ReplayError)
