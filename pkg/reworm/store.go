package reworm

import (
	"sync"

	"github.com/pedronauck/reworm/pkg/value"
)

// Render receives a store value (or a projection of it) and produces
// whatever the binding layer renders.
type Render func(v value.Value) any

// View is a read function bound to a store and a selector.
type View func(render Render) any

// Store is the handle for one store identifier.
type Store struct {
	id string
	c  *Container
}

// ID returns the store identifier.
func (s *Store) ID() string {
	return s.id
}

// Phase returns the lifecycle state of the store.
func (s *Store) Phase() Phase {
	return s.c.Phase(s.id)
}

// Value returns the current value, or nil when the store was never created.
func (s *Store) Value() value.Value {
	v, _, ok := s.c.read(s.id)
	if !ok {
		s.c.logger.Debug("read of unknown store", "store", s.id, "code", ErrUnknownStore.Code)
	}
	return v
}

// Get passes the current value to render and returns its result.
func (s *Store) Get(render Render) any {
	return render(s.Value())
}

// Select returns a view that projects the current value through sel before
// handing it to the renderer. The projection is computed on every call.
func (s *Store) Select(sel Selector) View {
	return func(render Render) any {
		return render(sel.Apply(s.Value()))
	}
}

// Set writes v. Records patch record stores; any other value replaces the
// current one. Equal results are not broadcast. A record written to a
// non-record store, or the reverse, fails with ErrTypeMismatch.
func (s *Store) Set(v value.Value) error {
	return s.c.write(s.id, func(value.Value) (value.Value, error) {
		return v, nil
	})
}

// SetAny converts x with value.Of and writes it.
func (s *Store) SetAny(x any) error {
	v, err := value.Of(x)
	if err != nil {
		return err
	}
	return s.Set(v)
}

// Update writes fn(current). fn may run more than once if another writer
// changes the store concurrently, so it must not have side effects.
func (s *Store) Update(fn func(current value.Value) value.Value) error {
	return s.c.write(s.id, func(current value.Value) (value.Value, error) {
		return fn(current), nil
	})
}

// Subscribe calls fn with every new value broadcast for this store and
// returns a function that stops the subscription. Calling it more than
// once is safe.
func (s *Store) Subscribe(fn func(next value.Value)) (unsubscribe func()) {
	id := s.id
	token := s.c.emitter.Subscribe(ListenerFunc(func(selected string, next value.Value) {
		if selected == id {
			fn(next)
		}
	}))
	s.c.Activate(id)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.c.emitter.Unsubscribe(token)
		})
	}
}
