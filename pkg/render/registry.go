package render

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

var (
	// ErrRendererNotFound is wrapped by Get when no renderer has the name.
	ErrRendererNotFound = errors.New("render: renderer not found")
	// ErrDuplicateRenderer is wrapped by Register when the name is taken.
	ErrDuplicateRenderer = errors.New("render: duplicate renderer")
)

// Registry holds renderers by name. The HTTP surface picks one per request
// from the Accept header, the CLI picks one from a flag.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Renderer
	names  []string // kept sorted
}

// NewRegistry returns a registry holding renderers.
func NewRegistry(renderers ...Renderer) (*Registry, error) {
	r := &Registry{byName: make(map[string]Renderer, len(renderers))}
	for _, renderer := range renderers {
		if err := r.Register(renderer); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds renderer under its Name.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return errors.New("render: nil renderer")
	}
	name := renderer.Name()
	if name == "" {
		return errors.New("render: renderer has no name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byName[name]; taken {
		return fmt.Errorf("%w: %q", ErrDuplicateRenderer, name)
	}
	r.byName[name] = renderer
	at, _ := slices.BinarySearch(r.names, name)
	r.names = slices.Insert(r.names, at, name)
	return nil
}

// Get returns the renderer registered as name.
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	renderer, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("render: renderer %q not found: %w", name, ErrRendererNotFound)
	}
	return renderer, nil
}

// ForContentType returns the first renderer, by name, whose ContentType has
// the media type mediaType. Parameters such as charset are ignored.
func (r *Registry) ForContentType(mediaType string) (Renderer, bool) {
	mediaType = MediaType(mediaType)

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range r.names {
		if renderer := r.byName[name]; MediaType(renderer.ContentType()) == mediaType {
			return renderer, true
		}
	}
	return nil, false
}

// List returns the registered names in order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.names)
}

// Len reports how many renderers are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}

// MediaType strips parameters from a Content-Type or Accept entry and
// lowercases the rest.
func MediaType(contentType string) string {
	contentType, _, _ = strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(contentType))
}
