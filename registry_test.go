package cmdstream

import (
	"slices"
	"strings"
	"testing"
)

func TestRegistryNullIsBuiltin(t *testing.T) {
	if !IsContextRegistered("null") {
		t.Fatal("null context not registered")
	}
	ctx, err := NewContext("null")
	if err != nil {
		t.Fatalf("NewContext(null) error = %v", err)
	}
	if _, ok := ctx.(NullContext); !ok {
		t.Errorf("NewContext(null) = %T, want NullContext", ctx)
	}
}

func TestRegistryUnknown(t *testing.T) {
	_, err := NewContext("vulkan")
	if err == nil {
		t.Fatal("NewContext(vulkan) = nil error")
	}
	if !strings.Contains(err.Error(), "forgotten import") {
		t.Errorf("error = %q, want import hint", err)
	}
}

func TestRegistryRegisterAndPriority(t *testing.T) {
	ctx := newMockContext()
	RegisterContext("trace", func() ExecutionContext { return ctx })
	t.Cleanup(func() { UnregisterContext("trace") })

	if !slices.Contains(Contexts(), "trace") {
		t.Errorf("Contexts() = %v, want trace", Contexts())
	}
	if !slices.IsSorted(Contexts()) {
		t.Errorf("Contexts() = %v, want sorted", Contexts())
	}

	name, best := BestContext()
	if name != "trace" || best != ExecutionContext(ctx) {
		t.Errorf("BestContext() = %q, %T, want trace", name, best)
	}

	UnregisterContext("trace")
	if name, _ := BestContext(); name != "null" {
		t.Errorf("BestContext() after unregister = %q, want null", name)
	}
}

func TestRegistryPanics(t *testing.T) {
	tests := []struct {
		name    string
		factory ContextFactory
	}{
		{"null", func() ExecutionContext { return NullContext{} }},
		{"nil-factory", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("RegisterContext(%q) did not panic", tt.name)
				}
			}()
			RegisterContext(tt.name, tt.factory)
		})
	}
	if IsContextRegistered("nil-factory") {
		t.Error("nil factory was registered")
	}
}

func TestRegistryNilFactoryResult(t *testing.T) {
	RegisterContext("broken", func() ExecutionContext { return nil })
	t.Cleanup(func() { UnregisterContext("broken") })

	if _, err := NewContext("broken"); err == nil {
		t.Error("NewContext(broken) = nil error, want factory error")
	}
}
