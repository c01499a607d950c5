package flows

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is a catalog of flow families keyed by name.
//
// Param-size aggregation and chain construction both look flows up here, so
// the size a network is built for always matches what the factory consumes.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]Spec
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]Spec)}
}

// Register adds a flow family. The name must be unique.
func (r *Registry) Register(spec Spec) error {
	if spec.Name == "" || spec.ParamSize == nil || spec.Factory == nil {
		return fmt.Errorf("%w: %q", ErrInvalidSpec, spec.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.specs[spec.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateFlow, spec.Name)
	}
	r.specs[spec.Name] = spec
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(spec Spec) {
	if err := r.Register(spec); err != nil {
		panic(err)
	}
}

// Get returns the flow family called name, or an *UnknownFlowError.
func (r *Registry) Get(name string) (Spec, error) {
	r.mu.RLock()
	spec, ok := r.specs[name]
	r.mu.RUnlock()

	if !ok {
		return Spec{}, &UnknownFlowError{Name: name, Known: r.Names()}
	}
	return spec, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that every name is registered.
func (r *Registry) Validate(names []string) error {
	for _, name := range names {
		if _, err := r.Get(name); err != nil {
			return err
		}
	}
	return nil
}

var defaultRegistry = NewRegistry()

func init() {
	defaultRegistry.MustRegister(Spec{Name: "identity", ParamSize: identityParamSize, Factory: NewIdentity})
	defaultRegistry.MustRegister(Spec{Name: "affine", ParamSize: affineParamSize, Factory: NewAffine})
	defaultRegistry.MustRegister(Spec{Name: "planar", ParamSize: planarParamSize, Factory: NewPlanar})
	defaultRegistry.MustRegister(Spec{Name: "radial", ParamSize: radialParamSize, Factory: NewRadial})
}

// DefaultRegistry returns the process-wide registry holding the built-in
// families: identity, affine, planar and radial.
func DefaultRegistry() *Registry {
	return defaultRegistry
}
