// Package platforms is the closed registry of supported server runtimes.
//
// The set is fixed at compile time. Every lookup is total over it and any
// other value is reported as ErrUnsupportedPlatform rather than skipped.
package platforms

import (
	"strings"
)

var registry = map[Kind]Metadata{
	Spigot: {
		Kind:           Spigot,
		ID:             "spigot",
		DisplayName:    "Spigot",
		SDKType:        "SPIGOT",
		ManifestFile:   "plugin.yml",
		ManifestFormat: FormatYAML,
		RepositoryURL:  "https://hub.spigotmc.org/nexus/content/repositories/snapshots",
	},
	BungeeCord: {
		Kind:           BungeeCord,
		ID:             "bungeecord",
		DisplayName:    "BungeeCord",
		SDKType:        "BUNGEECORD",
		ManifestFile:   "bungee.yml",
		ManifestFormat: FormatYAML,
		RepositoryURL:  "https://oss.sonatype.org/content/repositories/snapshots",
	},
	Velocity: {
		Kind:           Velocity,
		ID:             "velocity",
		DisplayName:    "Velocity",
		SDKType:        "VELOCITY",
		ManifestFile:   "velocity-plugin.json",
		ManifestFormat: FormatJSON,
		RepositoryURL:  "https://repo.papermc.io/repository/maven-public/",
	},
}

// declaration order
var kinds = []Kind{Spigot, BungeeCord, Velocity}

var aliases = map[string]Kind{
	"spigot":     Spigot,
	"bukkit":     Spigot,
	"bungeecord": BungeeCord,
	"bungee":     BungeeCord,
	"velocity":   Velocity,
}

// Lookup returns the metadata for a kind. The returned value is a copy.
func Lookup(kind Kind) (*Metadata, error) {
	md, ok := registry[kind]
	if !ok {
		return nil, NewUnsupportedPlatformError(string(kind))
	}
	return &md, nil
}

// ParseKind parses a platform name case-insensitively, accepting the
// "bukkit" and "bungee" aliases.
func ParseKind(s string) (Kind, error) {
	kind, ok := aliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", NewUnsupportedPlatformError(s)
	}
	return kind, nil
}

// All returns every supported kind in declaration order
func All() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// List returns metadata for every supported kind in declaration order
func List() []*Metadata {
	out := make([]*Metadata, 0, len(kinds))
	for _, k := range kinds {
		md := registry[k]
		out = append(out, &md)
	}
	return out
}

// Valid reports whether kind belongs to the closed set
func (k Kind) Valid() bool {
	_, ok := registry[k]
	return ok
}

// Ordinal returns the declaration index of kind, or -1 when unsupported
func (k Kind) Ordinal() int {
	for i, candidate := range kinds {
		if candidate == k {
			return i
		}
	}
	return -1
}
