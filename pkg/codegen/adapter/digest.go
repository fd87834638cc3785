package adapter

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"sort"
	"sync"

	"github.com/platinummonkey/flare/pkg/codegen/config"
)

// sourceEncodingVersion covers what the templates cannot: the escaping done
// by funcMap. Bump it whenever javaString or javaList change their output.
const sourceEncodingVersion = "java-source-v2"

var templateDigest = sync.OnceValue(func() string {
	return digestTemplates(templateFS)
})

// TemplateDigest returns a sha256 over every embedded template, the
// generated-file header and the source encoding version. Two builds that
// render differently for the same descriptor have different digests.
func TemplateDigest() string {
	return templateDigest()
}

func digestTemplates(fsys fs.FS) string {
	names, err := fs.Glob(fsys, "*.tmpl")
	if err != nil {
		panic(err)
	}
	sort.Strings(names)

	h := sha256.New()
	h.Write([]byte(sourceEncodingVersion))
	h.Write([]byte{0})
	h.Write([]byte(config.GeneratedHeader))
	h.Write([]byte{0})
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			panic(err)
		}
		h.Write([]byte(name))
		h.Write([]byte{0})
		h.Write(data)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
