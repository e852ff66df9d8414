package dialogue

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Factory builds a Generator
type Factory func() (Generator, error)

// Registry maps provider names to factories
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// defaultRegistry holds the built-in providers
var defaultRegistry = newDefaultRegistry()

func newDefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register("echo", func() (Generator, error) { return Echo{}, nil })
	_ = r.Register("dummy", func() (Generator, error) { return Dummy{}, nil })
	return r
}

// Register adds a provider to the default registry
func Register(name string, factory Factory) error {
	return defaultRegistry.Register(name, factory)
}

// New builds the named provider from the default registry
func New(name string) (Generator, error) {
	return defaultRegistry.New(name)
}

// Providers returns the names in the default registry
func Providers() []string {
	return defaultRegistry.List()
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a provider. Names are case-insensitive.
func (r *Registry) Register(name string, factory Factory) error {
	key := normalize(name)
	if key == "" {
		return fmt.Errorf("provider name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("provider factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("provider %q already registered", key)
	}
	r.factories[key] = factory
	return nil
}

// New builds the named provider
func (r *Registry) New(name string) (Generator, error) {
	r.mu.RLock()
	factory, exists := r.factories[normalize(name)]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown provider %q (available: %s)", name, strings.Join(r.List(), ", "))
	}
	return factory()
}

// Has checks if a provider is registered
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.factories[normalize(name)]
	return exists
}

// List returns the registered names, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
