package reworm

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	rerrors "github.com/pedronauck/reworm/internal/errors"
	"github.com/pedronauck/reworm/pkg/value"
)

// Listener receives broadcasts from an Emitter.
type Listener interface {
	// Notify is called with the store identifier and its new value.
	Notify(id string, next value.Value)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(id string, next value.Value)

// Notify calls f(id, next).
func (f ListenerFunc) Notify(id string, next value.Value) {
	f(id, next)
}

// Token identifies one registration on an Emitter.
type Token uint64

// listenerEntry is one registration. removed is set on Unsubscribe so a
// broadcast already holding a snapshot skips it.
type listenerEntry struct {
	token    Token
	listener Listener
	removed  atomic.Bool
}

// Emitter is a publish/subscribe hub holding an ordered list of listeners.
// It does no filtering by identifier; every listener sees every broadcast.
type Emitter struct {
	mu        sync.Mutex
	entries   []*listenerEntry
	nextToken Token

	// generations counts Emit calls per identifier.
	generations map[string]uint64

	logger   *slog.Logger
	observer Observer
}

// NewEmitter creates an emitter. A nil logger uses slog.Default().
func NewEmitter(logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{
		generations: make(map[string]uint64),
		logger:      logger.With("component", "emitter"),
		observer:    NopObserver{},
	}
}

// Subscribe appends l to the listener list and returns the token of this
// registration. Registering the same listener twice yields two tokens and
// two notifications per broadcast.
func (e *Emitter) Subscribe(l Listener) Token {
	e.mu.Lock()
	e.nextToken++
	entry := &listenerEntry{token: e.nextToken, listener: l}
	e.entries = append(e.entries, entry)
	n := len(e.entries)
	observer := e.observer
	e.mu.Unlock()

	observer.ListenersChanged(n)
	return entry.token
}

// Unsubscribe removes the registration identified by token.
// Unknown or already removed tokens are ignored.
func (e *Emitter) Unsubscribe(token Token) {
	e.mu.Lock()
	removed := false
	for i, entry := range e.entries {
		if entry.token == token {
			entry.removed.Store(true)
			// Keep order: broadcasts are delivered in registration order.
			e.entries = append(e.entries[:i:i], e.entries[i+1:]...)
			removed = true
			break
		}
	}
	n := len(e.entries)
	observer := e.observer
	e.mu.Unlock()

	if removed {
		observer.ListenersChanged(n)
	}
}

// setObserver replaces the observer notified by this emitter.
func (e *Emitter) setObserver(obs Observer) {
	e.mu.Lock()
	e.observer = obs
	e.mu.Unlock()
}

// Len returns the number of registered listeners.
func (e *Emitter) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.entries)
}

// Emit delivers (id, next) to every listener registered when the call
// starts, in registration order, and returns how many were invoked.
//
// A listener may cause another Emit for the same id (a Set from inside a
// listener). The nested broadcast reaches every listener with the newer
// value, so the outer one stops there instead of handing the remaining
// listeners a superseded value.
func (e *Emitter) Emit(id string, next value.Value) int {
	// Copy entries while holding lock
	e.mu.Lock()
	snapshot := make([]*listenerEntry, len(e.entries))
	copy(snapshot, e.entries)
	e.generations[id]++
	generation := e.generations[id]
	observer := e.observer
	e.mu.Unlock()

	delivered := 0
	for _, entry := range snapshot {
		if e.superseded(id, generation) {
			e.logger.Debug("broadcast superseded", "store", id, "delivered", delivered)
			break
		}
		if entry.removed.Load() {
			continue
		}
		e.deliver(observer, entry, id, next)
		delivered++
	}
	return delivered
}

func (e *Emitter) superseded(id string, generation uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generations[id] != generation
}

// deliver invokes one listener, isolating panics.
func (e *Emitter) deliver(observer Observer, entry *listenerEntry, id string, next value.Value) {
	defer func() {
		if r := recover(); r != nil {
			err := rerrors.New("R020").WithStore(id).WithDetail(fmt.Sprint(r))
			if cause, ok := r.(error); ok {
				err.Wrap(cause)
			}
			e.logger.Error("listener panicked",
				"store", id,
				"token", uint64(entry.token),
				"error", err,
			)
			observer.ListenerPanicked(id, err)
		}
	}()
	entry.listener.Notify(id, next)
}
