package manifest

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/flare/pkg/codegen/platforms"
	"github.com/platinummonkey/flare/pkg/descriptor"
)

// yamlManifest is shared by plugin.yml and bungee.yml. Field order is the
// emitted key order.
type yamlManifest struct {
	Main        string   `yaml:"main"`
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	Description string   `yaml:"description"`
	Website     string   `yaml:"website"`
	Authors     []string `yaml:"authors"`
	SoftDepend  []string `yaml:"softdepend"`
	Depend      []string `yaml:"depend"`
}

func encodeYAML(d *descriptor.PluginDescriptor, md *platforms.Metadata) ([]byte, error) {
	m := yamlManifest{
		Main:        d.AdapterClass(md),
		Name:        d.Name,
		Version:     d.Version,
		Description: d.Description,
		Website:     d.Website,
		Authors:     nonNil(d.Authors),
		SoftDepend:  nonNil(d.OptionalDependencies),
		Depend:      nonNil(d.Dependencies),
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&m); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
