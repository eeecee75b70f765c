package generators

import (
	"fmt"
	"sort"
	"sync"

	"pandaskit/internal/logging"
)

// Registry holds the available generators.
// It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	generators map[string]*Generator
}

// NewRegistry creates a new empty generator registry.
func NewRegistry() *Registry {
	return &Registry{generators: make(map[string]*Generator)}
}

// DefaultRegistry returns a registry holding every built-in generator.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(AtCommand())
	r.MustRegister(ScriptCommand())
	r.MustRegister(MapFlag())
	r.MustRegister(BattleConfig())
	r.MustRegister(NpcEvent())
	return r
}

// Register adds a generator to the registry.
// Returns an error if a generator with the same name already exists.
func (r *Registry) Register(g *Generator) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("invalid generator: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.generators[g.Name]; exists {
		return fmt.Errorf("%w: %s", ErrGeneratorAlreadyRegistered, g.Name)
	}
	r.generators[g.Name] = g

	logging.GuideDebug("Registered generator: %s (%d points)", g.Name, len(g.Points))
	return nil
}

// MustRegister registers a generator and panics on error.
func (r *Registry) MustRegister(g *Generator) {
	if err := r.Register(g); err != nil {
		panic(fmt.Sprintf("failed to register generator %s: %v", g.Name, err))
	}
}

// Get returns a generator by name, or nil if not found.
func (r *Registry) Get(name string) *Generator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generators[name]
}

// Has returns true if a generator with the given name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.generators[name]
	return ok
}

// All returns all registered generators ordered by name.
func (r *Registry) All() []*Generator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Generator, 0, len(r.generators))
	for _, g := range r.generators {
		result = append(result, g)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Names returns all registered generator names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.generators))
	for name := range r.generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered generators.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.generators)
}
