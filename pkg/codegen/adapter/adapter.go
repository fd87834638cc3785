// Package adapter renders the Java adapter sources that bind each platform's
// plugin lifecycle to the platform-independent runtime.
package adapter

import (
	"bytes"
	"embed"
	"path"
	"text/template"

	"github.com/platinummonkey/flare/pkg/codegen"
	"github.com/platinummonkey/flare/pkg/codegen/config"
	"github.com/platinummonkey/flare/pkg/codegen/platforms"
	"github.com/platinummonkey/flare/pkg/descriptor"
)

//go:embed *.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("adapter").Funcs(funcMap).ParseFS(templateFS, "*.tmpl"))

// one template per kind; no reflection-based dispatch
var platformTemplates = map[platforms.Kind]string{
	platforms.Spigot:     "spigot.java.tmpl",
	platforms.BungeeCord: "bungeecord.java.tmpl",
	platforms.Velocity:   "velocity.java.tmpl",
}

const supportTemplate = "platformutil.java.tmpl"

// dataDirectory is the Java expression each adapter returns from getDataDirectory
var dataDirectory = map[platforms.Kind]string{
	platforms.Spigot:     "getDataFolder().toPath()",
	platforms.BungeeCord: "getDataFolder().toPath()",
	platforms.Velocity:   "dataDirectory",
}

type templateData struct {
	Header     string
	Package    string
	ClassName  string
	EntryPoint string

	Name                 string
	Description          string
	Version              string
	Website              string
	Authors              []string
	Dependencies         []string
	OptionalDependencies []string

	SDKType       string
	DataDirectory string

	PluginID             string
	VelocityDependencies []velocityDependency
}

type velocityDependency struct {
	ID       string
	Optional bool
}

// Emit renders the adapter source for one platform
func Emit(d *descriptor.PluginDescriptor, kind platforms.Kind) (*codegen.Artifact, error) {
	if err := checkDescriptor(d); err != nil {
		return nil, err
	}

	md, err := platforms.Lookup(kind)
	if err != nil {
		return nil, err
	}

	name, ok := platformTemplates[kind]
	if !ok {
		return nil, ErrTemplateNotFound
	}

	data := newTemplateData(d, md.ClassName())
	data.SDKType = md.SDKType
	data.DataDirectory = dataDirectory[kind]
	if kind == platforms.Velocity {
		data.PluginID = platforms.VelocityPluginID(d.Name)
		data.VelocityDependencies = velocityDependencies(d)
	}

	content, err := execute(name, data)
	if err != nil {
		return nil, err
	}

	return &codegen.Artifact{
		Platform: kind,
		Kind:     codegen.KindSource,
		Path:     SourcePath(d, md.ClassName()),
		Content:  content,
	}, nil
}

// EmitSupport renders the shared PlatformUtil source
func EmitSupport(d *descriptor.PluginDescriptor) (*codegen.Artifact, error) {
	if err := checkDescriptor(d); err != nil {
		return nil, err
	}

	content, err := execute(supportTemplate, newTemplateData(d, config.SupportClassName))
	if err != nil {
		return nil, err
	}

	return &codegen.Artifact{
		Kind:    codegen.KindSupport,
		Path:    SourcePath(d, config.SupportClassName),
		Content: content,
	}, nil
}

// SourcePath returns the location of a generated class relative to the output root
func SourcePath(d *descriptor.PluginDescriptor, className string) string {
	return path.Join(config.SourcesDir, d.AdapterPackagePath(), className+".java")
}

func checkDescriptor(d *descriptor.PluginDescriptor) error {
	if d == nil {
		return descriptor.NewMissingFieldError("descriptor")
	}
	// the entry point is emitted as a class literal, so it must be a valid name
	return descriptor.ValidateEntryPoint(d.EntryPoint)
}

func newTemplateData(d *descriptor.PluginDescriptor, className string) *templateData {
	return &templateData{
		Header:               config.GeneratedHeader,
		Package:              d.AdapterPackage(),
		ClassName:            className,
		EntryPoint:           d.EntryPoint,
		Name:                 d.Name,
		Description:          d.Description,
		Version:              d.Version,
		Website:              d.Website,
		Authors:              d.Authors,
		Dependencies:         d.Dependencies,
		OptionalDependencies: d.OptionalDependencies,
	}
}

// velocityDependencies lists required dependencies first, then optional
// ones, each group in declaration order
func velocityDependencies(d *descriptor.PluginDescriptor) []velocityDependency {
	deps := make([]velocityDependency, 0, len(d.Dependencies)+len(d.OptionalDependencies))
	for _, id := range d.Dependencies {
		deps = append(deps, velocityDependency{ID: id})
	}
	for _, id := range d.OptionalDependencies {
		deps = append(deps, velocityDependency{ID: id, Optional: true})
	}
	return deps
}

func execute(name string, data *templateData) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, NewTemplateExecutionFailedError(name, err)
	}
	return buf.Bytes(), nil
}
