package cmdstream

import "fmt"

// Native objects are created by the resource layer of the surrounding
// abstraction and are opaque to cmdstream. They are never written into the
// word stream; records hold an ObjectRef into the command buffer's object
// table instead.
type (
	// PipelineLayout describes the binding layout shared by pipelines.
	PipelineLayout any
	// DescriptorPool is the pool descriptor sets are allocated from.
	DescriptorPool any
	// DescriptorSet is a group of bound resources.
	DescriptorSet any
	// Descriptor is a single resource view (texture view, buffer view,
	// storage image).
	Descriptor any
	// Buffer is a GPU buffer.
	Buffer any
	// Texture is a GPU texture.
	Texture any
	// QueryPool holds GPU queries.
	QueryPool any
)

// Pipeline is a graphics or compute pipeline object.
type Pipeline interface {
	BindPoint() BindPoint
}

// ObjectRef indexes a command buffer's object table. The zero value means
// no object.
type ObjectRef uint32

// NoObject is the reference used for optional objects that are absent.
const NoObject ObjectRef = 0

// objectTable keeps the objects referenced by one command buffer in record
// order.
type objectTable struct {
	objects []any
}

func (t *objectTable) add(obj any) ObjectRef {
	if obj == nil {
		return NoObject
	}
	t.objects = append(t.objects, obj)
	return ObjectRef(len(t.objects))
}

func (t *objectTable) len() int {
	return len(t.objects)
}

// truncate drops entries added after a record failed to encode.
func (t *objectTable) truncate(n int) {
	clear(t.objects[n:])
	t.objects = t.objects[:n]
}

func (t *objectTable) reset() {
	t.truncate(0)
}

func (t *objectTable) get(ref ObjectRef) (any, error) {
	if ref == NoObject {
		return nil, nil
	}
	if int(ref) > len(t.objects) {
		return nil, fmt.Errorf("%w: ref %d of %d", ErrInvalidObject, ref, len(t.objects))
	}
	return t.objects[ref-1], nil
}

// lookup resolves ref and asserts the object's type.
func lookup[T any](t *objectTable, ref ObjectRef) (T, error) {
	var zero T
	obj, err := t.get(ref)
	if err != nil || obj == nil {
		return zero, err
	}
	v, ok := obj.(T)
	if !ok {
		return zero, fmt.Errorf("%w: ref %d is %T, want %T", ErrInvalidObject, ref, obj, zero)
	}
	return v, nil
}
