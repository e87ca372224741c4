package hal

import "errors"

var (
	// ErrNoRenderPass is returned by draw and render-state calls that need
	// an open render pass.
	ErrNoRenderPass = errors.New("hal: no render pass open")

	// ErrRenderPassOpen is returned by compute, copy and barrier calls made
	// inside a render pass, and by a nested BeginRendering.
	ErrRenderPassOpen = errors.New("hal: render pass is open")

	// ErrNoPipeline is returned by dispatches without a compute pipeline.
	ErrNoPipeline = errors.New("hal: no compute pipeline bound")

	// ErrWrongObject is returned when a record carries an object this
	// context cannot use, such as a foreign pipeline type.
	ErrWrongObject = errors.New("hal: unexpected object type")

	// ErrIndirectOffsetNotAligned is returned when an indirect offset or
	// stride is not 4-byte aligned.
	ErrIndirectOffsetNotAligned = errors.New("hal: indirect offset must be 4-byte aligned")
)
