package binding

import (
	"sync"

	"github.com/pedronauck/reworm/pkg/reworm"
	"github.com/pedronauck/reworm/pkg/value"
)

// Consumer is one render function bound to a store projection.
type Consumer struct {
	provider *Provider
	id       string
	selector reworm.Selector
	render   reworm.Render

	// projected is guarded by the provider mutex.
	projected value.Value

	mu      sync.Mutex
	output  any
	renders int
}

// Store returns the identifier the consumer reads.
func (c *Consumer) Store() string {
	return c.id
}

// Output returns the result of the latest render.
func (c *Consumer) Output() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.output
}

// Renders returns how many times the consumer has rendered.
func (c *Consumer) Renders() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.renders
}

// Release stops re-rendering the consumer.
func (c *Consumer) Release() {
	c.provider.release(c)
}

func (c *Consumer) rerender(projected value.Value) {
	out := c.render(projected)

	c.mu.Lock()
	c.output = out
	c.renders++
	c.mu.Unlock()
}
