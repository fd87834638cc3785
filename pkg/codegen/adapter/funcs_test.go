package adapter

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// unquoteJava decodes a Java string literal using the escapes javaString emits
func unquoteJava(t *rapid.T, lit string) string {
	if len(lit) < 2 || lit[0] != '"' || lit[len(lit)-1] != '"' {
		t.Fatalf("not a quoted literal: %q", lit)
	}
	body := lit[1 : len(lit)-1]

	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '"' || c == '\n' || c == '\r' {
			t.Fatalf("raw %q inside literal %q", c, lit)
		}
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		default:
			n, err := strconv.ParseUint(body[i:i+3], 8, 8)
			if err != nil {
				t.Fatalf("bad escape in %q: %v", lit, err)
			}
			b.WriteByte(byte(n))
			i += 2
		}
	}
	return b.String()
}

func TestJavaString(t *testing.T) {
	tests := map[string]string{
		"":              `""`,
		"plain":         `"plain"`,
		`say "hi"`:      `"say \"hi\""`,
		`C:\path`:       `"C:\\path"`,
		"a\nb\tc":       `"a\nb\tc"`,
		"nul\x00":       `"nul\000"`,
		"bell\x07":      `"bell\007"`,
		"del\x7f":       `"del\177"`,
		`\u0022`:        `"\\u0022"`,
		"ünïcödé ✓":     `"ünïcödé ✓"`,
		"\b\f\r":        `"\b\f\r"`,
		"*/ /* // code": `"*/ /* // code"`,
	}

	for input, want := range tests {
		assert.Equal(t, want, javaString(input), "%q", input)
	}
}

func TestJavaString_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "s")
		got := unquoteJava(t, javaString(s))
		if got != s {
			t.Fatalf("round trip mismatch: %q != %q", got, s)
		}
	})
}

func TestJavaList(t *testing.T) {
	assert.Equal(t, `PlatformUtil.listOf()`, javaList(nil))
	assert.Equal(t, `PlatformUtil.listOf("a", "b")`, javaList([]string{"a", "b"}))
	assert.Equal(t, `PlatformUtil.listOf("say \"hi\"")`, javaList([]string{`say "hi"`}))
	assert.Equal(t, `PlatformUtil.listOf("Smith, John", "")`, javaList([]string{"Smith, John", ""}))
}

// every element comes back out of the call unchanged, whatever it contains
func TestJavaList_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		values := rapid.SliceOf(rapid.String()).Draw(t, "values")
		call := javaList(values)

		const prefix = "PlatformUtil.listOf("
		if !strings.HasPrefix(call, prefix) || !strings.HasSuffix(call, ")") {
			t.Fatalf("unexpected call %q", call)
		}
		args := call[len(prefix) : len(call)-1]

		var got []string
		for args != "" {
			end := closingQuote(t, args)
			got = append(got, unquoteJava(t, args[:end+1]))
			args = strings.TrimPrefix(args[end+1:], ", ")
		}
		if len(got) != len(values) {
			t.Fatalf("got %d elements, want %d: %q", len(got), len(values), call)
		}
		for i := range values {
			if got[i] != values[i] {
				t.Fatalf("element %d: %q != %q", i, got[i], values[i])
			}
		}
	})
}

// closingQuote returns the index of the quote ending the literal at s[0]
func closingQuote(t *rapid.T, s string) int {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	t.Fatalf("unterminated literal in %q", s)
	return -1
}
