package manifest

import (
	"bytes"
	"encoding/json"

	"github.com/platinummonkey/flare/pkg/codegen/platforms"
	"github.com/platinummonkey/flare/pkg/descriptor"
)

// jsonManifest is velocity-plugin.json. Field order is the emitted key order.
type jsonManifest struct {
	Main         string           `json:"main"`
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Version      string           `json:"version"`
	Description  string           `json:"description"`
	Authors      []string         `json:"authors"`
	Dependencies []jsonDependency `json:"dependencies"`
	URL          string           `json:"url"`
}

type jsonDependency struct {
	ID       string `json:"id"`
	Optional bool   `json:"optional"`
}

func encodeJSON(d *descriptor.PluginDescriptor, md *platforms.Metadata) ([]byte, error) {
	deps := make([]jsonDependency, 0, len(d.Dependencies)+len(d.OptionalDependencies))
	for _, id := range d.Dependencies {
		deps = append(deps, jsonDependency{ID: id, Optional: false})
	}
	for _, id := range d.OptionalDependencies {
		deps = append(deps, jsonDependency{ID: id, Optional: true})
	}

	m := jsonManifest{
		Main:         d.AdapterClass(md),
		ID:           platforms.VelocityPluginID(d.Name),
		Name:         d.Name,
		Version:      d.Version,
		Description:  d.Description,
		Authors:      nonNil(d.Authors),
		Dependencies: deps,
		URL:          d.Website,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(&m); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
