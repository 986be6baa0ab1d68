package fragment

import (
	"context"
	"html/template"
	"sync"
)

// Container is a mount target. Each load takes a new generation; only the
// newest generation may mount.
type Container struct {
	ID string

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	name    string
	content template.HTML

	ready     chan struct{}
	readyOnce sync.Once
}

// NewContainer creates an empty container.
func NewContainer(id string) *Container {
	return &Container{ID: id, ready: make(chan struct{})}
}

// begin starts a new generation and cancels the load it supersedes.
func (c *Container) begin(parent context.Context) (uint64, context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	c.cancel = cancel
	return c.gen, ctx, cancel
}

// current reports whether gen is still the newest generation.
func (c *Container) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen == gen
}

// commit replaces the content if gen is still current.
func (c *Container) commit(gen uint64, name string, content template.HTML) error {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return ErrSuperseded
	}
	c.name = name
	c.content = content
	c.cancel = nil
	c.mu.Unlock()

	c.readyOnce.Do(func() { close(c.ready) })
	return nil
}

// Content returns the mounted fragment name and its rendered markup.
func (c *Container) Content() (string, template.HTML) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name, c.content
}

// Generation returns the number of loads started so far.
func (c *Container) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// Ready is closed after the first successful mount.
func (c *Container) Ready() <-chan struct{} {
	return c.ready
}

// Wait blocks until the container has mounted once or ctx is done.
func (c *Container) Wait(ctx context.Context) error {
	select {
	case <-c.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
