// Package descriptor holds the platform-agnostic description of a plugin.
//
// A PluginDescriptor is constructed once per generation run, validated by the
// caller, and then treated as immutable. Every generated artifact is derived
// from it and nothing else.
package descriptor

import (
	"strings"

	"github.com/platinummonkey/flare/pkg/codegen/config"
	"github.com/platinummonkey/flare/pkg/codegen/platforms"
)

// PluginDescriptor describes a plugin's identity, authorship, dependencies
// and target platforms
type PluginDescriptor struct {
	// EntryPoint is the fully qualified name of the platform-independent entry class
	EntryPoint string `json:"entry_point" yaml:"entry_point"`

	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Version     string `json:"version" yaml:"version"`
	Website     string `json:"website" yaml:"website"`

	// Order is preserved for all three lists
	Authors              []string `json:"authors" yaml:"authors"`
	Dependencies         []string `json:"dependencies" yaml:"dependencies"`
	OptionalDependencies []string `json:"optional_dependencies" yaml:"optional_dependencies"`

	Platforms []Target `json:"platforms" yaml:"platforms"`

	// SDKVersion is the runtime SDK version the host build depends on
	SDKVersion string `json:"sdk_version" yaml:"sdk_version"`
}

// Target is one platform the plugin is built for
type Target struct {
	Kind platforms.Kind `json:"kind" yaml:"kind"`
	// Dependency is the compile-only platform API coordinate, e.g.
	// "org.spigotmc:spigot-api:1.20.4-R0.1-SNAPSHOT"
	Dependency string `json:"dependency,omitempty" yaml:"dependency,omitempty"`
}

// Project carries the host build's identity, used for defaults
type Project struct {
	Name    string
	Version string
}

// WithDefaults returns a copy with Name and Version filled from the project
// when unset. Other fields default to empty.
func (d *PluginDescriptor) WithDefaults(project Project) *PluginDescriptor {
	out := d.Clone()
	if out.Name == "" {
		out.Name = project.Name
	}
	if out.Version == "" {
		out.Version = project.Version
	}
	return out
}

// Clone returns a deep copy of the descriptor
func (d *PluginDescriptor) Clone() *PluginDescriptor {
	out := *d
	out.Authors = cloneStrings(d.Authors)
	out.Dependencies = cloneStrings(d.Dependencies)
	out.OptionalDependencies = cloneStrings(d.OptionalDependencies)
	if d.Platforms != nil {
		out.Platforms = make([]Target, len(d.Platforms))
		copy(out.Platforms, d.Platforms)
	}
	return &out
}

// Kinds returns the declared platform kinds in declaration order
func (d *PluginDescriptor) Kinds() []platforms.Kind {
	kinds := make([]platforms.Kind, 0, len(d.Platforms))
	for _, t := range d.Platforms {
		kinds = append(kinds, t.Kind)
	}
	return kinds
}

// EntryPackage returns the package of the entry point, e.g. "com.example"
func (d *PluginDescriptor) EntryPackage() string {
	idx := strings.LastIndex(d.EntryPoint, ".")
	if idx < 0 {
		return ""
	}
	return d.EntryPoint[:idx]
}

// EntrySimpleName returns the unqualified entry class name
func (d *PluginDescriptor) EntrySimpleName() string {
	return d.EntryPoint[strings.LastIndex(d.EntryPoint, ".")+1:]
}

// AdapterPackage returns the package every generated adapter is placed in
func (d *PluginDescriptor) AdapterPackage() string {
	return d.EntryPackage() + "." + config.PlatformPackageSuffix
}

// AdapterPackagePath returns AdapterPackage as a slash-separated directory path
func (d *PluginDescriptor) AdapterPackagePath() string {
	return strings.ReplaceAll(d.AdapterPackage(), ".", "/")
}

// AdapterClass returns the fully qualified adapter class name for a platform
func (d *PluginDescriptor) AdapterClass(md *platforms.Metadata) string {
	return d.AdapterPackage() + "." + md.ClassName()
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
