package cmdstream

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/gpucontext"
)

// ContextFactory creates an execution context.
// Factories are registered via RegisterContext and called by NewContext.
type ContextFactory func() ExecutionContext

// registerMu makes the duplicate check and the registration one step.
var (
	registerMu sync.Mutex
	contexts   = gpucontext.NewRegistry[ExecutionContext](
		gpucontext.WithPriority("hal", "trace", "null"),
	)
)

func init() {
	RegisterContext("null", func() ExecutionContext { return NullContext{} })
}

// RegisterContext registers an execution context factory under name.
// Backend packages call it from init(), following the database/sql
// driver pattern:
//
//	func init() {
//	    cmdstream.RegisterContext("trace", func() cmdstream.ExecutionContext {
//	        return New()
//	    })
//	}
//
// RegisterContext panics if factory is nil or name is already registered.
func RegisterContext(name string, factory ContextFactory) {
	registerMu.Lock()
	defer registerMu.Unlock()

	if factory == nil {
		panic("cmdstream: RegisterContext factory is nil")
	}
	if contexts.Has(name) {
		panic("cmdstream: RegisterContext called twice for " + name)
	}
	contexts.Register(name, factory)
}

// UnregisterContext removes a factory. It is a no-op for unknown names.
func UnregisterContext(name string) {
	registerMu.Lock()
	defer registerMu.Unlock()
	contexts.Unregister(name)
}

// NewContext creates an execution context by name.
//
// Example:
//
//	import _ "github.com/gogpu/cmdstream/backend/trace"
//
//	ctx, err := cmdstream.NewContext("trace")
func NewContext(name string) (ExecutionContext, error) {
	if !contexts.Has(name) {
		return nil, fmt.Errorf("cmdstream: unknown execution context %q (forgotten import?)", name)
	}
	ctx := contexts.Get(name)
	if ctx == nil {
		return nil, fmt.Errorf("cmdstream: execution context %q factory returned nil", name)
	}
	return ctx, nil
}

// BestContext creates the highest-priority registered execution context
// and returns its name. Priority is hal, then trace, then null.
func BestContext() (string, ExecutionContext) {
	name := contexts.BestName()
	if name == "" {
		return "", nil
	}
	return name, contexts.Get(name)
}

// Contexts returns the registered names, sorted.
func Contexts() []string {
	names := contexts.Available()
	sort.Strings(names)
	return names
}

// IsContextRegistered reports whether name is registered.
func IsContextRegistered(name string) bool {
	return contexts.Has(name)
}
