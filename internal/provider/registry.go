package provider

import (
	"fmt"
	"strings"
)

// Registry holds the available Source implementations.
type Registry struct {
	sources []Source
}

// NewRegistry creates an empty source registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a Source to the registry.
func (r *Registry) Register(s Source) {
	r.sources = append(r.sources, s)
}

// Get looks up a registered source by its Name().
func (r *Registry) Get(name string) (Source, error) {
	for _, s := range r.sources {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("no registered provider with name %q (available: %s)", name, strings.Join(r.Names(), ", "))
}

// Names returns the registered source names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for _, s := range r.sources {
		names = append(names, s.Name())
	}
	return names
}
