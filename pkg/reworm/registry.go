package reworm

import (
	"sync"

	"github.com/pedronauck/reworm/pkg/value"
)

// Registry maps store identifiers to their initial values.
//
// It is a bootstrap table: entries are written when a store is created and
// read by binding layers when they mount. Writes through Store.Set never
// touch it.
type Registry struct {
	mu      sync.RWMutex
	initial map[string]value.Value
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		initial: make(map[string]value.Value),
	}
}

// SetInitial records the initial value for id. An existing entry is
// overwritten and replaced reports true.
func (r *Registry) SetInitial(id string, v value.Value) (replaced bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, replaced = r.initial[id]
	r.initial[id] = v
	if !replaced {
		r.order = append(r.order, id)
	}
	return replaced
}

// Initial returns a copy of the identifier to initial value table.
func (r *Registry) Initial() map[string]value.Value {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]value.Value, len(r.initial))
	for id, v := range r.initial {
		out[id] = v
	}
	return out
}

// Lookup returns the initial value registered for id.
func (r *Registry) Lookup(id string) (value.Value, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.initial[id]
	return v, ok
}

// IDs returns registered identifiers in first-registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered stores.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.initial)
}
