// Package buildscript renders a descriptor's build plan as a snippet for the
// host build tool, so the wiring can be pasted rather than written by hand.
package buildscript

import (
	"sort"

	"github.com/platinummonkey/flare/pkg/descriptor"
)

// Generator renders a build plan for one build tool
type Generator interface {
	// Name is the format name used on the command line
	Name() string

	// FileName is the build file the snippet belongs in
	FileName() string

	// Render produces the snippet
	Render(plan *descriptor.Plan) ([]byte, error)
}

// Registry manages build script generators
type Registry struct {
	generators map[string]Generator
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		generators: make(map[string]Generator),
	}
}

// DefaultRegistry returns a registry holding every built-in generator
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewGradleGenerator())
	r.Register(NewMavenGenerator())
	return r
}

// Register adds a generator, replacing any with the same name
func (r *Registry) Register(gen Generator) {
	r.generators[gen.Name()] = gen
}

// Get retrieves a generator by name
func (r *Registry) Get(name string) (Generator, error) {
	gen, ok := r.generators[name]
	if !ok {
		return nil, NewGeneratorNotFoundError(name)
	}
	return gen, nil
}

// Names returns the registered generator names in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.generators))
	for name := range r.generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
