package configstore

import (
	"fmt"
	"sort"
	"sync"
)

// FactoryFunc adapts a constructor function to Factory.
type FactoryFunc struct {
	TypeName string
	New      func(name string, config map[string]interface{}) (Store, error)
}

// Name returns TypeName.
func (f FactoryFunc) Name() string { return f.TypeName }

// Create calls New.
func (f FactoryFunc) Create(name string, config map[string]interface{}) (Store, error) {
	return f.New(name, config)
}

// Registry maps store type names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds f under f.Name(), replacing any previous factory.
func (r *Registry) Register(f Factory) {
	r.RegisterAs(f.Name(), f)
}

// RegisterAs adds f under an alias.
func (r *Registry) RegisterAs(typeName string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[typeName] = f
}

// Create builds a store named name using the factory for typeName.
func (r *Registry) Create(typeName, name string, config map[string]interface{}) (Store, error) {
	r.mu.RLock()
	factory, exists := r.factories[typeName]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown store type: %s", typeName)
	}
	return factory.Create(name, config)
}

// Types returns the registered type names, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// IsSupported checks if a store type is registered
func (r *Registry) IsSupported(typeName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.factories[typeName]
	return exists
}
