package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/flare/pkg/descriptor"
)

func TestPlanCommand_YAML(t *testing.T) {
	path := writeDescriptor(t, t.TempDir(), testDescriptorYAML)

	out, err := execute(t, "plan", path)
	require.NoError(t, err)

	var plan descriptor.Plan
	require.NoError(t, yaml.Unmarshal([]byte(out), &plan))
	assert.Len(t, plan.Repositories, 3)
	assert.Contains(t, plan.Dependencies, descriptor.Dependency{
		Configuration: "implementation",
		Coordinate:    "com.flare:sdk:2.1.0",
	})
	assert.Contains(t, plan.Dependencies, descriptor.Dependency{
		Configuration: "compileOnly",
		Coordinate:    "org.spigotmc:spigot-api:1.20.4-R0.1-SNAPSHOT",
	})
	assert.Equal(t, []string{"generated/sources"}, plan.SourceDirs)
	assert.Equal(t, []string{"generated/resources"}, plan.ResourceDirs)
}

func TestPlanCommand_JSON(t *testing.T) {
	path := writeDescriptor(t, t.TempDir(), testDescriptorYAML)

	out, err := execute(t, "plan", path, "--format", "json")
	require.NoError(t, err)

	var plan descriptor.Plan
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.Len(t, plan.Repositories, 3)
}

func TestPlanCommand_BuildScripts(t *testing.T) {
	path := writeDescriptor(t, t.TempDir(), testDescriptorYAML)

	out, err := execute(t, "plan", path, "--format", "gradle")
	require.NoError(t, err)
	assert.Contains(t, out, `implementation("com.flare:sdk:2.1.0")`)
	assert.Contains(t, out, `compileOnly("org.spigotmc:spigot-api:1.20.4-R0.1-SNAPSHOT")`)
	assert.Contains(t, out, `java.srcDir("generated/sources")`)

	out, err = execute(t, "plan", path, "--format", "maven")
	require.NoError(t, err)
	assert.Contains(t, out, "<artifactId>spigot-api</artifactId>")
	assert.Contains(t, out, "<scope>provided</scope>")
}

func TestPlanCommand_UnknownFormat(t *testing.T) {
	path := writeDescriptor(t, t.TempDir(), testDescriptorYAML)

	_, err := execute(t, "plan", path, "--format", "toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}
