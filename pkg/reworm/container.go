package reworm

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	rerrors "github.com/pedronauck/reworm/internal/errors"
	"github.com/pedronauck/reworm/pkg/value"
)

// Phase is the lifecycle state of a store identifier.
type Phase uint8

const (
	// PhaseUninitialized means no store was created for the identifier.
	PhaseUninitialized Phase = iota
	// PhaseInitialized means the store is registered but nothing follows it.
	PhaseInitialized
	// PhaseActive means a subscriber or binding is receiving its broadcasts.
	PhaseActive
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseInitialized:
		return "initialized"
	case PhaseActive:
		return "active"
	default:
		return "uninitialized"
	}
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithEmitter broadcasts through an existing emitter, so listeners
// registered on it before the container exists receive its writes. The
// emitter reports to this container's observers from then on.
func WithEmitter(e *Emitter) Option {
	return func(c *Container) {
		if e != nil {
			c.emitter = e
		}
	}
}

// WithObserver adds an observer. May be given more than once.
func WithObserver(obs Observer) Option {
	return func(c *Container) {
		if obs != nil {
			c.observers = append(c.observers, obs)
		}
	}
}

// WithRegistry uses an existing registry instead of a fresh one.
// Entries already present are seeded as live values.
func WithRegistry(r *Registry) Option {
	return func(c *Container) {
		if r != nil {
			c.registry = r
		}
	}
}

// Container is the composition root of a set of stores. It owns the
// registry of initial values, the emitter and the live values written by
// Store.Set. Independent containers share nothing.
type Container struct {
	mu       sync.Mutex
	live     map[string]value.Value
	versions map[string]uint64
	phases   map[string]Phase

	registry  *Registry
	emitter   *Emitter
	logger    *slog.Logger
	observers Observers
	observer  Observer
}

// NewContainer creates a container.
func NewContainer(opts ...Option) *Container {
	c := &Container{
		live:     make(map[string]value.Value),
		versions: make(map[string]uint64),
		phases:   make(map[string]Phase),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	base := c.logger
	c.logger = base.With("component", "reworm")
	switch len(c.observers) {
	case 0:
		c.observer = NopObserver{}
	case 1:
		c.observer = c.observers[0]
	default:
		c.observer = c.observers
	}

	if c.registry == nil {
		c.registry = NewRegistry()
	}
	for id, v := range c.registry.Initial() {
		c.live[id] = v
		c.phases[id] = PhaseInitialized
	}

	if c.emitter == nil {
		c.emitter = NewEmitter(base)
	}
	c.emitter.setObserver(c.observer)

	return c
}

// Registry returns the bootstrap table of initial values.
func (c *Container) Registry() *Registry {
	return c.registry
}

// Emitter returns the broadcast hub.
func (c *Container) Emitter() *Emitter {
	return c.emitter
}

// Logger returns the container's logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}

// Create registers a store and returns its handle.
//
// An empty id is replaced by a generated one. A nil initial value becomes
// an empty record. Creating an identifier that already exists overwrites
// its initial and live values and logs a W001 warning. The overwrite is
// broadcast when it changes the live value.
func (c *Container) Create(id string, initial value.Value) *Store {
	if id == "" {
		id = "store-" + uuid.NewString()
	}
	if initial == nil {
		initial = value.Record{}
	}

	replaced := c.registry.SetInitial(id, initial)

	c.mu.Lock()
	previous, existed := c.live[id]
	c.live[id] = initial
	c.versions[id]++
	if c.phases[id] == PhaseUninitialized {
		c.phases[id] = PhaseInitialized
	}
	c.mu.Unlock()

	if replaced {
		warning := rerrors.New("W001").WithStore(id)
		c.logger.Warn(warning.Message, "store", id, "code", warning.Code)
	} else {
		c.logger.Debug("store created", "store", id, "kind", value.KindOf(initial).String())
	}
	c.observer.StoreCreated(id, replaced)

	// Bindings already following id must not keep the overwritten value.
	if existed && !value.Equal(previous, initial) {
		start := time.Now()
		delivered := c.emitter.Emit(id, initial)
		c.observer.Broadcast(id, delivered, time.Since(start))
	}

	return &Store{id: id, c: c}
}

// CreateAny converts initial with value.Of and creates the store.
func (c *Container) CreateAny(id string, initial any) (*Store, error) {
	if initial == nil {
		return c.Create(id, nil), nil
	}
	v, err := value.Of(initial)
	if err != nil {
		return nil, err
	}
	return c.Create(id, v), nil
}

// Use returns a handle for id without registering anything. Reads of an
// identifier that was never created return nil.
func (c *Container) Use(id string) *Store {
	return &Store{id: id, c: c}
}

// Snapshot returns a copy of every live value.
func (c *Container) Snapshot() map[string]value.Value {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]value.Value, len(c.live))
	for id, v := range c.live {
		out[id] = v
	}
	return out
}

// Phase returns the lifecycle state of id.
func (c *Container) Phase(id string) Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phases[id]
}

// Activate marks a created store as followed by a subscriber or binding.
// Uninitialized identifiers stay uninitialized.
func (c *Container) Activate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phases[id] == PhaseInitialized {
		c.phases[id] = PhaseActive
	}
}

// read returns the live value of id and its version.
func (c *Container) read(id string) (value.Value, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.live[id]
	return v, c.versions[id], ok
}

// write applies produce to the live value of id and broadcasts the result
// when it changed. produce runs without the lock held so it may read other
// stores; if another write lands first, produce runs again on the new value.
func (c *Container) write(id string, produce func(current value.Value) (value.Value, error)) error {
	for {
		current, version, known := c.read(id)
		if !known {
			c.logger.Debug("write to unknown store", "store", id, "code", ErrUnknownStore.Code)
		}

		candidate, err := produce(current)
		if err == nil {
			candidate, err = value.ComputeNext(current, candidate)
		}
		if err != nil {
			if re, ok := err.(*rerrors.ReworkError); ok && re.Store == "" {
				re.WithStore(id)
			}
			c.observer.SetFailed(id, err)
			return err
		}

		if value.Equal(current, candidate) {
			c.observer.Suppressed(id)
			return nil
		}

		c.mu.Lock()
		if c.versions[id] != version {
			c.mu.Unlock()
			continue
		}
		c.live[id] = candidate
		c.versions[id]++
		c.mu.Unlock()

		start := time.Now()
		delivered := c.emitter.Emit(id, candidate)
		c.observer.Broadcast(id, delivered, time.Since(start))
		return nil
	}
}
