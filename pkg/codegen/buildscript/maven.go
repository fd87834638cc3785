package buildscript

import (
	"bytes"
	_ "embed"
	"encoding/xml"
	"strings"
	"text/template"

	"github.com/platinummonkey/flare/pkg/descriptor"
)

//go:embed pom.xml.tmpl
var pomTemplate string

var pomTmpl = template.Must(template.New("pom.xml").Funcs(template.FuncMap{
	"xml": escapeXML,
}).Parse(pomTemplate))

// mavenScopes maps Gradle configurations onto Maven scopes
var mavenScopes = map[string]string{
	"implementation": "compile",
	"compileOnly":    "provided",
}

type pomDependency struct {
	Coordinate
	Scope string
}

type pomData struct {
	Repositories []descriptor.Repository
	Dependencies []pomDependency
	SourceDirs   []string
	ResourceDirs []string
}

// MavenGenerator renders pom.xml fragments
type MavenGenerator struct{}

// NewMavenGenerator creates a new Maven generator
func NewMavenGenerator() *MavenGenerator {
	return &MavenGenerator{}
}

// Name returns the format name
func (g *MavenGenerator) Name() string {
	return "maven"
}

// FileName returns the build file the snippet belongs in
func (g *MavenGenerator) FileName() string {
	return "pom.xml"
}

// Render produces repositories, dependencies and build sections
func (g *MavenGenerator) Render(plan *descriptor.Plan) ([]byte, error) {
	data := pomData{
		Repositories: plan.Repositories,
		Dependencies: make([]pomDependency, 0, len(plan.Dependencies)),
		SourceDirs:   plan.SourceDirs,
		ResourceDirs: plan.ResourceDirs,
	}

	for _, dep := range plan.Dependencies {
		coord, err := ParseCoordinate(dep.Coordinate)
		if err != nil {
			return nil, err
		}
		scope, ok := mavenScopes[dep.Configuration]
		if !ok {
			scope = "compile"
		}
		data.Dependencies = append(data.Dependencies, pomDependency{Coordinate: coord, Scope: scope})
	}

	var buf bytes.Buffer
	if err := pomTmpl.Execute(&buf, data); err != nil {
		return nil, NewTemplateExecutionFailedError(g.FileName(), err)
	}
	return buf.Bytes(), nil
}

func escapeXML(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
