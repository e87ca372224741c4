package cmdstream

import (
	"go.opentelemetry.io/otel/trace"
)

// Option configures a CommandBuffer, an Allocator or a Queue.
//
// Example:
//
//	cb := cmdstream.NewCommandBuffer(
//	    cmdstream.WithLabel("shadow pass"),
//	    cmdstream.WithValidation(true),
//	    cmdstream.WithMaxSize(1<<20),
//	)
type Option func(*options)

// options holds optional configuration. Not every field applies to every
// consumer; unused fields are ignored.
type options struct {
	label           string
	validation      bool
	maxSize         int
	initialCapacity int
	errorHandler    ErrorHandler
	tracerProvider  trace.TracerProvider
}

func defaultOptions() options {
	return options{
		initialCapacity: 256,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLabel names a command buffer in logs and errors.
func WithLabel(label string) Option {
	return func(o *options) {
		o.label = label
	}
}

// WithValidation makes record-time usage errors panic with a *UsageError
// instead of being logged and dropped.
func WithValidation(enabled bool) Option {
	return func(o *options) {
		o.validation = enabled
	}
}

// WithMaxSize bounds a command buffer to the given number of bytes. A record
// that would exceed it fails with ErrBufferFull. Zero means unbounded.
func WithMaxSize(bytes int) Option {
	return func(o *options) {
		if bytes < 0 {
			bytes = 0
		}
		o.maxSize = bytes
	}
}

// WithInitialCapacity preallocates room for the given number of bytes.
func WithInitialCapacity(bytes int) Option {
	return func(o *options) {
		if bytes < 0 {
			bytes = 0
		}
		o.initialCapacity = bytes
	}
}

// WithErrorHandler installs a callback that receives every native failure
// reported during replay.
func WithErrorHandler(h ErrorHandler) Option {
	return func(o *options) {
		o.errorHandler = h
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider used by a
// Queue. The global provider is used when unset.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}
