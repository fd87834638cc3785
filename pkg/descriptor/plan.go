package descriptor

import (
	"fmt"

	"github.com/platinummonkey/flare/pkg/codegen/config"
	"github.com/platinummonkey/flare/pkg/codegen/platforms"
)

// Plan describes the dependency wiring a host build performs around a
// generation run. It is informational; nothing here is executed.
type Plan struct {
	Repositories []Repository `json:"repositories" yaml:"repositories"`
	Dependencies []Dependency `json:"dependencies" yaml:"dependencies"`
	SourceDirs   []string     `json:"source_dirs" yaml:"source_dirs"`
	ResourceDirs []string     `json:"resource_dirs" yaml:"resource_dirs"`
}

// Repository is a maven repository the host must declare
type Repository struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

// Dependency is a dependency declaration in a host configuration
type Dependency struct {
	Configuration string `json:"configuration" yaml:"configuration"` // "implementation", "compileOnly"
	Coordinate    string `json:"coordinate" yaml:"coordinate"`
}

// BuildPlan returns the repositories, dependencies and generated directories
// the host build needs for this descriptor
func (d *PluginDescriptor) BuildPlan() (*Plan, error) {
	if d.SDKVersion == "" {
		return nil, NewMissingFieldError("sdk_version")
	}

	plan := &Plan{
		Repositories: make([]Repository, 0, len(d.Platforms)),
		Dependencies: []Dependency{{
			Configuration: "implementation",
			Coordinate:    fmt.Sprintf("%s:%s:%s", config.SDKGroup, config.SDKArtifact, d.SDKVersion),
		}},
		SourceDirs:   []string{config.SourcesDir},
		ResourceDirs: []string{config.ResourcesDir},
	}

	for _, t := range d.Platforms {
		md, err := platforms.Lookup(t.Kind)
		if err != nil {
			return nil, err
		}

		plan.Repositories = append(plan.Repositories, Repository{
			Name: md.ID,
			URL:  md.RepositoryURL,
		})

		if t.Dependency != "" {
			plan.Dependencies = append(plan.Dependencies, Dependency{
				Configuration: "compileOnly",
				Coordinate:    t.Dependency,
			})
		}
	}

	return plan, nil
}
