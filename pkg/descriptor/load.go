package descriptor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/flare/pkg/codegen/platforms"
)

// Load reads a descriptor file. YAML and JSON are both accepted.
func Load(path string) (*PluginDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor %s: %w", path, err)
	}

	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Parse decodes a descriptor document. Unknown keys are rejected and
// platform names are normalized through platforms.ParseKind.
func Parse(data []byte) (*PluginDescriptor, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var d PluginDescriptor
	if err := dec.Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidDescriptorFile)
		}
		if platforms.IsUnsupportedPlatformError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidDescriptorFile, err)
	}

	return &d, nil
}

// UnmarshalYAML accepts either a bare platform name or a mapping with kind
// and dependency.
func (t *Target) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Kind       string `yaml:"kind"`
		Dependency string `yaml:"dependency"`
	}

	switch value.Kind {
	case yaml.ScalarNode:
		raw.Kind = value.Value
	case yaml.MappingNode:
		if err := value.Decode(&raw); err != nil {
			return err
		}
	default:
		return fmt.Errorf("line %d: platform must be a name or a mapping", value.Line)
	}

	kind, err := platforms.ParseKind(raw.Kind)
	if err != nil {
		return err
	}

	t.Kind = kind
	t.Dependency = raw.Dependency
	return nil
}
