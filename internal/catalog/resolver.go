package catalog

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

type source interface {
	Load() ([]byte, error)
	Path() string
}

type fileSource struct {
	path string
}

func (f fileSource) Load() ([]byte, error) {
	return os.ReadFile(f.path)
}

func (f fileSource) Path() string {
	return f.path
}

// Resolver holds the active catalog. Call Reload to pick up on-disk changes;
// a reload that fails validation keeps the previous catalog.
type Resolver struct {
	mu      sync.RWMutex
	src     source
	current *Catalog
}

// Load builds a Resolver for the catalog file at path, or for the built-in
// roster when path is empty.
func Load(path string) (*Resolver, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return NewResolver(nil)
	}
	return NewResolver(fileSource{path: trimmed})
}

// NewResolver constructs a Resolver from src. Tests supply in-memory sources;
// a nil source serves Default.
func NewResolver(src source) (*Resolver, error) {
	r := &Resolver{src: src, current: Default()}
	if src == nil {
		return r, nil
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Static wraps a fixed catalog.
func Static(c *Catalog) *Resolver {
	if c == nil {
		c = Default()
	}
	return &Resolver{current: c}
}

func (r *Resolver) Current() *Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Path reports the backing file, empty for built-in or static catalogs.
func (r *Resolver) Path() string {
	if r.src == nil {
		return ""
	}
	return r.src.Path()
}

func (r *Resolver) Reload() error {
	if r.src == nil {
		return nil
	}
	data, err := r.src.Load()
	if err != nil {
		return fmt.Errorf("catalog: load %s: %w", r.src.Path(), err)
	}
	next, err := Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", r.src.Path(), err)
	}
	r.mu.Lock()
	r.current = next
	r.mu.Unlock()
	return nil
}
