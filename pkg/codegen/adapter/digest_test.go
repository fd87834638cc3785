package adapter

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
)

func TestTemplateDigest(t *testing.T) {
	digest := TemplateDigest()
	assert.Len(t, digest, 64)
	assert.Equal(t, digest, digestTemplates(templateFS))
}

func TestDigestTemplates_ChangesWithContent(t *testing.T) {
	base := fstest.MapFS{
		"a.tmpl": {Data: []byte("class A {}")},
		"b.tmpl": {Data: []byte("class B {}")},
	}
	edited := fstest.MapFS{
		"a.tmpl": {Data: []byte("class A { }")},
		"b.tmpl": {Data: []byte("class B {}")},
	}
	renamed := fstest.MapFS{
		"a.tmpl": {Data: []byte("class A {}")},
		"c.tmpl": {Data: []byte("class B {}")},
	}

	assert.Equal(t, digestTemplates(base), digestTemplates(base))
	assert.NotEqual(t, digestTemplates(base), digestTemplates(edited))
	assert.NotEqual(t, digestTemplates(base), digestTemplates(renamed))
}
