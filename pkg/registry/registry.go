package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/tablewatch/pkg/domain"
)

// ErrUnitNotFound is returned when a unit name is not registered.
var ErrUnitNotFound = errors.New("unit not found")

// DuplicateUnitError means the same unit name was registered twice.
type DuplicateUnitError struct {
	Name string
}

func (e *DuplicateUnitError) Error() string {
	return fmt.Sprintf("duplicate unit name: %q", e.Name)
}

// DependencyNotFoundError means a unit depends on a name that is neither a unit nor an external spec.
type DependencyNotFoundError struct {
	Unit string
	Dep  string
}

func (e *DependencyNotFoundError) Error() string {
	return fmt.Sprintf("unit %q depends on unknown %q", e.Unit, e.Dep)
}

// Registry holds the processing units and external specs the host loads at startup.
type Registry struct {
	mu       sync.RWMutex
	units    map[string]domain.ProcessingUnit
	order    []string
	external map[string]domain.ExternalSpec
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		units:    make(map[string]domain.ProcessingUnit),
		external: make(map[string]domain.ExternalSpec),
	}
}

// Register adds a unit to the registry.
// Returns *DuplicateUnitError if the name is already taken by a unit or an external spec.
func (r *Registry) Register(u domain.ProcessingUnit) error {
	if u.Name == "" {
		return fmt.Errorf("unit name cannot be empty")
	}
	if u.Body == nil {
		return fmt.Errorf("unit %q has no body", u.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.taken(u.Name) {
		return &DuplicateUnitError{Name: u.Name}
	}
	r.units[u.Name] = u
	r.order = append(r.order, u.Name)
	return nil
}

// RegisterExternal declares an upstream produced outside this registry.
func (r *Registry) RegisterExternal(spec domain.ExternalSpec) error {
	if spec.Name == "" {
		return fmt.Errorf("external spec name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.taken(spec.Name) {
		return &DuplicateUnitError{Name: spec.Name}
	}
	r.external[spec.Name] = spec
	return nil
}

func (r *Registry) taken(name string) bool {
	_, isUnit := r.units[name]
	_, isExternal := r.external[name]
	return isUnit || isExternal
}

// Validate checks that every unit dependency resolves to a unit or an external spec.
func (r *Registry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		for _, dep := range r.units[name].Deps {
			if !r.taken(dep) {
				return &DependencyNotFoundError{Unit: name, Dep: dep}
			}
		}
	}
	return nil
}

// Get returns the unit registered under name.
func (r *Registry) Get(name string) (domain.ProcessingUnit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.units[name]
	return u, ok
}

// Units returns all units in registration order.
func (r *Registry) Units() []domain.ProcessingUnit {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.ProcessingUnit, len(r.order))
	for i, name := range r.order {
		out[i] = r.units[name]
	}
	return out
}

// External returns the external specs sorted by name.
func (r *Registry) External() []domain.ExternalSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.ExternalSpec, 0, len(r.external))
	for _, spec := range r.external {
		out = append(out, spec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of registered units.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Materialize looks up a unit by name and runs its body.
// Returns an error wrapping ErrUnitNotFound if the unit is not registered.
func (r *Registry) Materialize(ctx context.Context, name string) (string, error) {
	u, ok := r.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnitNotFound, name)
	}
	return u.Body(ctx)
}
