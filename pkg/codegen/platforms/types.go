package platforms

import "strings"

// Kind identifies a target server runtime
type Kind string

const (
	// Spigot is the Bukkit-derivative server runtime
	Spigot Kind = "spigot"
	// BungeeCord is the proxy that reads a YAML manifest
	BungeeCord Kind = "bungeecord"
	// Velocity is the proxy that registers plugins through Java annotations
	Velocity Kind = "velocity"
)

// ManifestFormat is the serialization used by a platform's manifest
type ManifestFormat string

const (
	FormatYAML ManifestFormat = "yaml"
	FormatJSON ManifestFormat = "json"
)

// Metadata holds the fixed facts about a platform
type Metadata struct {
	Kind           Kind           `json:"kind" yaml:"kind"`
	ID             string         `json:"id" yaml:"id"`                     // "spigot"
	DisplayName    string         `json:"display_name" yaml:"display_name"` // "Spigot", used in class names
	SDKType        string         `json:"sdk_type" yaml:"sdk_type"`         // PlatformType constant in the runtime SDK
	ManifestFile   string         `json:"manifest_file" yaml:"manifest_file"`
	ManifestFormat ManifestFormat `json:"manifest_format" yaml:"manifest_format"`
	RepositoryURL  string         `json:"repository_url" yaml:"repository_url"`
}

// ClassName returns the simple name of the generated adapter class
func (m *Metadata) ClassName() string {
	return m.DisplayName + "Entry"
}

// String returns the kind identifier
func (k Kind) String() string {
	return string(k)
}

// velocityIDMaxLen is the longest id Velocity accepts
const velocityIDMaxLen = 64

// VelocityPluginID derives a Velocity plugin id from a display name. The
// result matches [a-z][a-z0-9-_]{0,63}: lower case, every other character
// replaced by '-', prefixed with 'p' when it does not start with a letter,
// and truncated to 64 characters. An empty name yields "", which the
// descriptor validation rejects before Velocity output is rendered.
func VelocityPluginID(name string) string {
	if name == "" {
		return ""
	}
	out := []rune(strings.ToLower(name))
	for i, r := range out {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' && r != '_' {
			out[i] = '-'
		}
	}
	id := string(out)
	if id[0] < 'a' || id[0] > 'z' {
		id = "p" + id
	}
	if len(id) > velocityIDMaxLen {
		id = id[:velocityIDMaxLen]
	}
	return id
}
