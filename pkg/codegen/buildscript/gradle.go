package buildscript

import (
	"bytes"
	_ "embed"
	"strconv"
	"strings"
	"text/template"

	"github.com/platinummonkey/flare/pkg/descriptor"
)

//go:embed gradle.kts.tmpl
var gradleTemplate string

var gradleTmpl = template.Must(template.New("build.gradle.kts").Funcs(template.FuncMap{
	"quote": kotlinString,
}).Parse(gradleTemplate))

// kotlinString quotes s as a Kotlin string literal. '$' starts a template in
// Kotlin, so it is escaped too.
func kotlinString(s string) string {
	return strings.ReplaceAll(strconv.Quote(s), "$", `\$`)
}

// GradleGenerator renders Kotlin DSL for build.gradle.kts
type GradleGenerator struct{}

// NewGradleGenerator creates a new Gradle generator
func NewGradleGenerator() *GradleGenerator {
	return &GradleGenerator{}
}

// Name returns the format name
func (g *GradleGenerator) Name() string {
	return "gradle"
}

// FileName returns the build file the snippet belongs in
func (g *GradleGenerator) FileName() string {
	return "build.gradle.kts"
}

// Render produces repositories, dependencies and sourceSets blocks
func (g *GradleGenerator) Render(plan *descriptor.Plan) ([]byte, error) {
	for _, dep := range plan.Dependencies {
		if _, err := ParseCoordinate(dep.Coordinate); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := gradleTmpl.Execute(&buf, plan); err != nil {
		return nil, NewTemplateExecutionFailedError(g.FileName(), err)
	}
	return buf.Bytes(), nil
}
