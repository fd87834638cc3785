package descriptor

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"sort"
	"strconv"

	"github.com/platinummonkey/flare/pkg/codegen/platforms"
)

// fingerprintVersion is mixed into every fingerprint. Bump it whenever the
// canonical encoding below changes. Template and encoder changes are covered
// by the engine's output digest, not here.
const fingerprintVersion = "flare-fingerprint-v1"

// Fingerprint returns a sha256 over a canonical encoding of the descriptor
//
// CRITICAL INVARIANT: platforms are hashed sorted by kind so declaration order
// does not change the result. List fields keep their order because it is
// visible in the generated output.
//
// Encoding: each field is written as name + \0 + value + \0; lists are
// prefixed with their length so ["a,b"] and ["a","b"] hash differently.
//
// CHANGING THIS ENCODING INVALIDATES EVERY CACHED RENDER
func (d *PluginDescriptor) Fingerprint() string {
	h := sha256.New()

	writeField(h, "version", fingerprintVersion)
	writeField(h, "entry_point", d.EntryPoint)
	writeField(h, "name", d.Name)
	writeField(h, "description", d.Description)
	writeField(h, "plugin_version", d.Version)
	writeField(h, "website", d.Website)
	writeList(h, "authors", d.Authors)
	writeList(h, "dependencies", d.Dependencies)
	writeList(h, "optional_dependencies", d.OptionalDependencies)

	// SDKVersion and target dependency coordinates only feed the build plan,
	// never the rendered artifacts, so they stay out of the key.
	kinds := make([]platforms.Kind, len(d.Platforms))
	for i, t := range d.Platforms {
		kinds[i] = t.Kind
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	writeList(h, "platforms", names)

	return hex.EncodeToString(h.Sum(nil))
}

func writeField(h hash.Hash, name, value string) {
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write([]byte(value))
	h.Write([]byte{0})
}

func writeList(h hash.Hash, name string, values []string) {
	writeField(h, name, strconv.Itoa(len(values)))
	for _, v := range values {
		h.Write([]byte(v))
		h.Write([]byte{0})
	}
}
