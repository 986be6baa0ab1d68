// Package fragment loads named HTML fragments into containers. Loads into
// the same container may overlap; a newer load cancels the older one and
// the older one can never overwrite newer content.
package fragment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"sync"
)

var (
	// ErrNotFound is returned for unknown fragment names.
	ErrNotFound = errors.New("fragment not found")

	// ErrSuperseded is returned by a load that lost to a newer load of
	// the same container.
	ErrSuperseded = errors.New("fragment load superseded")
)

// Params carries request values to bindings.
type Params map[string]string

// Binding produces the template data for a fragment after it is fetched.
type Binding func(ctx context.Context, p Params) (any, error)

// Loader fetches, binds and mounts fragments.
type Loader struct {
	source Source

	mu       sync.RWMutex
	bindings map[string]Binding
	funcs    template.FuncMap

	// Debug logs every mount.
	Debug bool
}

// NewLoader creates a loader over source.
func NewLoader(source Source) *Loader {
	return &Loader{
		source:   source,
		bindings: make(map[string]Binding),
		funcs:    make(template.FuncMap),
	}
}

// Bind registers the binding run for the named fragment.
func (l *Loader) Bind(name string, b Binding) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bindings[name] = b
}

// AddFunc registers a template function available to every fragment.
func (l *Loader) AddFunc(name string, fn any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.funcs[name] = fn
}

// Raw returns the unrendered fragment markup.
func (l *Loader) Raw(ctx context.Context, name string) ([]byte, error) {
	return l.source.Fetch(ctx, name)
}

// Load fetches the named fragment, runs its binding and mounts the result
// into c. If another load of c starts meanwhile, this one returns
// ErrSuperseded and leaves c alone.
func (l *Loader) Load(ctx context.Context, c *Container, name string, p Params) error {
	gen, ctx, cancel := c.begin(ctx)
	defer cancel()

	content, err := l.render(ctx, name, p)
	if err != nil {
		if !c.current(gen) {
			return ErrSuperseded
		}
		return err
	}
	if err := c.commit(gen, name, content); err != nil {
		log.Printf("[Fragment] Dropped stale load of %s into %s", name, c.ID)
		return err
	}
	if l.Debug {
		log.Printf("[Fragment] Mounted %s into %s (gen %d)", name, c.ID, gen)
	}
	return nil
}

func (l *Loader) render(ctx context.Context, name string, p Params) (template.HTML, error) {
	raw, err := l.source.Fetch(ctx, name)
	if err != nil {
		return "", err
	}

	l.mu.RLock()
	binding := l.bindings[name]
	tmpl, err := template.New(name).Funcs(l.funcs).Parse(string(raw))
	l.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("parsing fragment %s: %w", name, err)
	}

	var data any
	if binding != nil {
		if data, err = binding(ctx, p); err != nil {
			return "", fmt.Errorf("binding fragment %s: %w", name, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering fragment %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}
