package adapter

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/platinummonkey/flare/pkg/codegen/config"
)

var funcMap = template.FuncMap{
	"javaString": javaString,
	"javaList":   javaList,
}

// javaString renders s as a Java string literal. Escaping backslashes keeps
// a value like \u0022 from turning into a unicode escape. Control characters
// use octal escapes since javac translates unicode escapes before lexing.
func javaString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\%03o`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// javaList renders values as a PlatformUtil.listOf call with one string
// literal per element, so commas and empty strings survive unchanged
func javaList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = javaString(v)
	}
	return config.SupportClassName + ".listOf(" + strings.Join(quoted, ", ") + ")"
}
