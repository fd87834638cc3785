package descriptor

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/platinummonkey/flare/pkg/codegen/platforms"
)

// isJavaIdentifier follows Character.isJavaIdentifierStart/Part: letters,
// letter numbers, currency symbols and connectors may start a name; digits
// and combining marks may follow.
func isJavaIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		start := unicode.IsLetter(r) || unicode.In(r, unicode.Nl, unicode.Sc, unicode.Pc)
		if i == 0 {
			if !start {
				return false
			}
			continue
		}
		if !start && !unicode.IsDigit(r) && !unicode.In(r, unicode.Mn, unicode.Mc) {
			return false
		}
	}
	return true
}

var javaKeywords = map[string]struct{}{
	"abstract": {}, "assert": {}, "boolean": {}, "break": {}, "byte": {}, "case": {},
	"catch": {}, "char": {}, "class": {}, "const": {}, "continue": {}, "default": {},
	"do": {}, "double": {}, "else": {}, "enum": {}, "extends": {}, "final": {},
	"finally": {}, "float": {}, "for": {}, "goto": {}, "if": {}, "implements": {},
	"import": {}, "instanceof": {}, "int": {}, "interface": {}, "long": {}, "native": {},
	"new": {}, "package": {}, "private": {}, "protected": {}, "public": {}, "return": {},
	"short": {}, "static": {}, "strictfp": {}, "super": {}, "switch": {},
	"synchronized": {}, "this": {}, "throw": {}, "throws": {}, "transient": {}, "try": {},
	"void": {}, "volatile": {}, "while": {}, "true": {}, "false": {}, "null": {},
	"_": {},
}

// ValidateEntryPoint checks that name is a qualified Java class name with at
// least one package segment
func ValidateEntryPoint(name string) error {
	if name == "" {
		return NewMissingFieldError("entry_point")
	}

	segments := strings.Split(name, ".")
	if len(segments) < 2 {
		return NewInvalidEntryPointError(name, "class must be in a package")
	}

	for _, seg := range segments {
		if !isJavaIdentifier(seg) {
			return NewInvalidEntryPointError(name, fmt.Sprintf("segment %q is not a Java identifier", seg))
		}
		if _, reserved := javaKeywords[seg]; reserved {
			return NewInvalidEntryPointError(name, fmt.Sprintf("segment %q is a reserved word", seg))
		}
	}

	return nil
}

// ValidateForEngine performs the checks the generation engine relies on:
// a valid entry point, no duplicate platform kinds and only supported kinds.
// Velocity output also needs a name to derive the plugin id from. An empty
// platform set is accepted.
func (d *PluginDescriptor) ValidateForEngine() error {
	if d == nil {
		return NewMissingFieldError("descriptor")
	}

	if err := ValidateEntryPoint(d.EntryPoint); err != nil {
		return err
	}

	seen := make(map[platforms.Kind]struct{}, len(d.Platforms))
	for _, t := range d.Platforms {
		if !t.Kind.Valid() {
			return platforms.NewUnsupportedPlatformError(string(t.Kind))
		}
		if _, dup := seen[t.Kind]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicatePlatform, t.Kind)
		}
		seen[t.Kind] = struct{}{}
	}

	if _, ok := seen[platforms.Velocity]; ok && strings.TrimSpace(d.Name) == "" {
		return NewMissingFieldError("name")
	}

	return nil
}

// Validate performs full caller-side validation. In addition to the engine
// checks it requires an SDK version and at least one platform.
func (d *PluginDescriptor) Validate() error {
	if err := d.ValidateForEngine(); err != nil {
		return err
	}

	if strings.TrimSpace(d.SDKVersion) == "" {
		return NewMissingFieldError("sdk_version")
	}

	if len(d.Platforms) == 0 {
		return ErrNoPlatforms
	}

	return nil
}
