package cmdstream

import "log/slog"

// State is the lifecycle state of a CommandBuffer.
type State uint8

const (
	// StateInitial is the state of a new command buffer.
	StateInitial State = iota
	// StateRecording is entered by Begin.
	StateRecording
	// StateEnded is entered by End. The buffer is immutable until the next
	// Begin.
	StateEnded
)

var stateNames = [...]string{
	StateInitial:   "Initial",
	StateRecording: "Recording",
	StateEnded:     "Ended",
}

// String returns the state name.
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

// recordState is the shadow state a session keeps while recording. It only
// serves record-time validation and accessors and is never written to the
// buffer.
type recordState struct {
	pipeline        Pipeline
	layout          PipelineLayout
	pool            DescriptorPool
	rendering       bool
	annotationDepth int
}

func (s *recordState) reset() {
	*s = recordState{}
}

func (s *recordState) bindPoint() (BindPoint, bool) {
	if s.pipeline == nil {
		return 0, false
	}
	return s.pipeline.BindPoint(), true
}

// replayState is built fresh for every replay pass and dropped at its end.
// The bind point for resource bindings follows the current pipeline.
type replayState struct {
	pipeline  Pipeline
	layout    PipelineLayout
	pool      DescriptorPool
	rendering bool
	dyn       DynamicState
}

func newReplayState() replayState {
	return replayState{dyn: defaultDynamicState()}
}

// bindPoint returns the bind point of the current pipeline, or graphics
// when none is bound.
func (s *replayState) bindPoint() BindPoint {
	if s.pipeline == nil {
		return BindPointGraphics
	}
	return s.pipeline.BindPoint()
}

// attrs describes the state for log records.
func (s *replayState) attrs() slog.Attr {
	return slog.Group("state",
		slog.String("bind_point", s.bindPoint().String()),
		slog.Bool("pipeline", s.pipeline != nil),
		slog.Bool("layout", s.layout != nil),
		slog.Bool("pool", s.pool != nil),
		slog.Bool("rendering", s.rendering))
}
