package descriptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/platinummonkey/flare/pkg/codegen/platforms"
)

func TestFingerprint_Stable(t *testing.T) {
	a := testDescriptor().Fingerprint()
	b := testDescriptor().Fingerprint()

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestFingerprint_SensitiveToRenderedFields(t *testing.T) {
	base := testDescriptor().Fingerprint()

	mutations := map[string]func(d *PluginDescriptor){
		"entry point":  func(d *PluginDescriptor) { d.EntryPoint = "com.example.Other" },
		"name":         func(d *PluginDescriptor) { d.Name = "Other" },
		"description":  func(d *PluginDescriptor) { d.Description = "" },
		"version":      func(d *PluginDescriptor) { d.Version = "1.0.1" },
		"website":      func(d *PluginDescriptor) { d.Website = "https://example.org" },
		"author order": func(d *PluginDescriptor) { d.Authors = []string{"bob", "alice"} },
		"list split":   func(d *PluginDescriptor) { d.Authors = []string{"alice\x00bob"} },
		"dep moved":    func(d *PluginDescriptor) { d.Dependencies, d.OptionalDependencies = d.OptionalDependencies, d.Dependencies },
		"platform set": func(d *PluginDescriptor) { d.Platforms = d.Platforms[:1] },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			d := testDescriptor()
			mutate(d)
			assert.NotEqual(t, base, d.Fingerprint())
		})
	}
}

func TestFingerprint_IgnoresBuildOnlyFields(t *testing.T) {
	base := testDescriptor().Fingerprint()

	d := testDescriptor()
	d.SDKVersion = "9.9.9"
	d.Platforms[0].Dependency = "org.spigotmc:spigot-api:1.21-R0.1-SNAPSHOT"

	assert.Equal(t, base, d.Fingerprint())
}

func TestFingerprint_PlatformOrderIndependent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		kinds := rapid.Permutation(platforms.All()).Draw(t, "kinds")
		n := rapid.IntRange(0, len(kinds)).Draw(t, "n")
		kinds = kinds[:n]

		forward := testDescriptor()
		forward.Platforms = nil
		for _, k := range kinds {
			forward.Platforms = append(forward.Platforms, Target{Kind: k})
		}

		reversed := forward.Clone()
		for i, j := 0, len(reversed.Platforms)-1; i < j; i, j = i+1, j-1 {
			reversed.Platforms[i], reversed.Platforms[j] = reversed.Platforms[j], reversed.Platforms[i]
		}

		if forward.Fingerprint() != reversed.Fingerprint() {
			t.Fatalf("fingerprint depends on platform order: %v", kinds)
		}
	})
}
