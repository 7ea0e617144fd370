package output

import (
	"iter"

	"deedles.dev/xiter"
	"golang.org/x/exp/slices"
)

// Registry holds the live outputs keyed by device. Iteration follows
// insertion order.
type Registry struct {
	outputs map[DeviceID]*Output
	order   []DeviceID
}

func NewRegistry() *Registry {
	return &Registry{
		outputs: make(map[DeviceID]*Output),
	}
}

// Add inserts out. It fails if a record for the same device is
// already present.
func (r *Registry) Add(out *Output) error {
	id := out.ID()
	if _, ok := r.outputs[id]; ok {
		return ErrDuplicate
	}

	r.outputs[id] = out
	r.order = append(r.order, id)
	return nil
}

// Remove deletes and returns the record for id, if there is one.
func (r *Registry) Remove(id DeviceID) (*Output, bool) {
	out, ok := r.outputs[id]
	if !ok {
		return nil, false
	}

	delete(r.outputs, id)
	i := slices.Index(r.order, id)
	r.order = slices.Delete(r.order, i, i+1)
	return out, true
}

func (r *Registry) Get(id DeviceID) (*Output, bool) {
	out, ok := r.outputs[id]
	return out, ok
}

func (r *Registry) Contains(id DeviceID) bool {
	_, ok := r.outputs[id]
	return ok
}

func (r *Registry) Len() int {
	return len(r.order)
}

// All yields a snapshot of the registry, so removing records while
// iterating is allowed.
func (r *Registry) All() iter.Seq[*Output] {
	live := xiter.Filter(xiter.Of(slices.Clone(r.order)...), r.Contains)
	return xiter.Map(live, func(id DeviceID) *Output { return r.outputs[id] })
}
