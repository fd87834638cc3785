// Package manifest renders the declarative metadata file each platform's
// plugin loader reads.
package manifest

import (
	"errors"
	"fmt"
	"path"

	"github.com/platinummonkey/flare/pkg/codegen"
	"github.com/platinummonkey/flare/pkg/codegen/config"
	"github.com/platinummonkey/flare/pkg/codegen/platforms"
	"github.com/platinummonkey/flare/pkg/descriptor"
)

// ErrEncodingFailed is returned when a manifest cannot be serialized
var ErrEncodingFailed = errors.New("manifest encoding failed")

// EncodingVersion identifies the YAML and JSON layouts below. Bump it
// whenever key order, quoting or indentation change.
const EncodingVersion = "manifest-v1"

// Emit renders the manifest for one platform
func Emit(d *descriptor.PluginDescriptor, kind platforms.Kind) (*codegen.Artifact, error) {
	if d == nil {
		return nil, descriptor.NewMissingFieldError("descriptor")
	}
	if d.EntryPoint == "" {
		return nil, descriptor.NewMissingFieldError("entry_point")
	}

	md, err := platforms.Lookup(kind)
	if err != nil {
		return nil, err
	}

	var content []byte
	switch md.ManifestFormat {
	case platforms.FormatYAML:
		content, err = encodeYAML(d, md)
	case platforms.FormatJSON:
		content, err = encodeJSON(d, md)
	default:
		return nil, fmt.Errorf("%w: no encoder for format %q", ErrEncodingFailed, md.ManifestFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrEncodingFailed, md.ManifestFile, err)
	}

	return &codegen.Artifact{
		Platform: kind,
		Kind:     codegen.KindManifest,
		Path:     Path(md),
		Content:  content,
	}, nil
}

// Path returns the manifest location relative to the output root
func Path(md *platforms.Metadata) string {
	return path.Join(config.ResourcesDir, md.ManifestFile)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
