// Package binding is a reference binding layer for reworm containers.
//
// A Provider plays the role of the component at the root of a UI tree: it
// seeds local render state from the container when mounted, follows every
// broadcast, and re-renders the Consumers whose projection of a store
// actually changed.
//
//	p := binding.Mount(container)
//	defer p.Unmount()
//
//	names := p.Consume("userStore", reworm.Field("list"), func(v value.Value) any {
//	    return renderList(v)
//	})
//	names.Output() // latest render result
//
// Rendering itself (trees, diffing, scheduling) belongs to the host
// framework; the Provider only decides when a consumer must re-render.
package binding

import (
	"log/slog"
	"sync"

	"github.com/pedronauck/reworm/pkg/reworm"
	"github.com/pedronauck/reworm/pkg/value"
)

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the provider logger. Default: the container's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Provider holds the render-side copy of every store value.
type Provider struct {
	container *reworm.Container
	token     reworm.Token
	logger    *slog.Logger

	mu        sync.Mutex
	state     map[string]value.Value
	consumers map[string][]*Consumer
	mounted   bool
}

// Mount seeds a provider from the container's registry, overlays the live
// values written so far, and starts following broadcasts.
func Mount(c *reworm.Container, opts ...Option) *Provider {
	p := &Provider{
		container: c,
		logger:    c.Logger(),
		state:     c.Registry().Initial(),
		consumers: make(map[string][]*Consumer),
		mounted:   true,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "binding")

	for id, v := range c.Snapshot() {
		p.state[id] = v
	}
	for id := range p.state {
		c.Activate(id)
	}

	p.token = c.Emitter().Subscribe(reworm.ListenerFunc(p.handleUpdate))
	p.logger.Debug("provider mounted", "stores", len(p.state))
	return p
}

// Unmount stops following broadcasts. Stores keep living in the container.
// Calling Unmount more than once is safe.
func (p *Provider) Unmount() {
	p.mu.Lock()
	if !p.mounted {
		p.mu.Unlock()
		return
	}
	p.mounted = false
	p.mu.Unlock()

	p.container.Emitter().Unsubscribe(p.token)
	p.logger.Debug("provider unmounted")
}

// Mounted reports whether the provider still follows broadcasts.
func (p *Provider) Mounted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mounted
}

// State returns the provider's copy of a store value.
func (p *Provider) State(id string) value.Value {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state[id]
}

// Consume binds render to the projection of store id through sel. The
// consumer renders once immediately and again whenever a broadcast changes
// its projection.
func (p *Provider) Consume(id string, sel reworm.Selector, render reworm.Render) *Consumer {
	p.mu.Lock()
	current := sel.Apply(p.state[id])
	c := &Consumer{
		provider:  p,
		id:        id,
		selector:  sel,
		render:    render,
		projected: current,
	}
	p.consumers[id] = append(p.consumers[id], c)
	p.mu.Unlock()

	c.rerender(current)
	return c
}

// handleUpdate applies a broadcast to local state and re-renders affected
// consumers outside the lock.
func (p *Provider) handleUpdate(id string, next value.Value) {
	p.mu.Lock()
	if !p.mounted {
		p.mu.Unlock()
		return
	}
	p.state[id] = next

	type pending struct {
		consumer  *Consumer
		projected value.Value
	}
	var dirty []pending
	for _, c := range p.consumers[id] {
		projected := c.selector.Apply(next)
		if value.Equal(projected, c.projected) {
			continue
		}
		c.projected = projected
		dirty = append(dirty, pending{consumer: c, projected: projected})
	}
	p.mu.Unlock()

	for _, d := range dirty {
		d.consumer.rerender(d.projected)
	}
}

// release detaches c from the provider.
func (p *Provider) release(c *Consumer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	list := p.consumers[c.id]
	for i, existing := range list {
		if existing == c {
			p.consumers[c.id] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}
