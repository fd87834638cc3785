package artifacts

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/platinummonkey/flare/pkg/codegen"
	"github.com/platinummonkey/flare/pkg/codegen/platforms"
)

func sampleArtifacts() []codegen.Artifact {
	return []codegen.Artifact{
		{
			Platform: platforms.Velocity,
			Kind:     codegen.KindManifest,
			Path:     "generated/resources/velocity-plugin.json",
			Content:  []byte(`{"main":"com.example.platform.VelocityEntry"}` + "\n"),
		},
		{
			Platform: platforms.Spigot,
			Kind:     codegen.KindManifest,
			Path:     "generated/resources/plugin.yml",
			Content:  []byte("main: com.example.platform.SpigotEntry\n"),
		},
		{
			Kind:    codegen.KindSupport,
			Path:    "generated/sources/com/example/platform/PlatformUtil.java",
			Content: []byte("// Code generated by flare. DO NOT EDIT.\n"),
		},
	}
}

func TestPack_RoundTrip(t *testing.T) {
	input := sampleArtifacts()

	data, hash, err := Pack(input)
	require.NoError(t, err)
	assert.Len(t, hash, 64)
	assert.Equal(t, Checksum(data), hash)

	out, err := Unpack(data)
	require.NoError(t, err)

	want := codegen.CloneArtifacts(input)
	codegen.SortArtifacts(want)
	assert.Equal(t, want, out)
}

func TestPack_Deterministic(t *testing.T) {
	first, firstHash, err := Pack(sampleArtifacts())
	require.NoError(t, err)

	reversed := sampleArtifacts()
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}

	second, secondHash, err := Pack(reversed)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, firstHash, secondHash)
}

func TestPack_DoesNotMutateInput(t *testing.T) {
	input := sampleArtifacts()
	_, _, err := Pack(input)
	require.NoError(t, err)
	assert.Equal(t, sampleArtifacts(), input)
}

func TestPack_EntryHeaders(t *testing.T) {
	data, _, err := Pack(sampleArtifacts())
	require.NoError(t, err)

	gz, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	tr := tar.NewReader(gz)

	var names []string
	for {
		header, err := tr.Next()
		if err != nil {
			break
		}
		names = append(names, header.Name)
		assert.True(t, header.ModTime.Equal(time.Unix(0, 0)), header.Name)
		assert.Equal(t, int64(0o644), header.Mode)
	}
	assert.Equal(t, []string{
		"generated/resources/plugin.yml",
		"generated/resources/velocity-plugin.json",
		"generated/sources/com/example/platform/PlatformUtil.java",
	}, names)
}

func TestPack_Empty(t *testing.T) {
	data, _, err := Pack(nil)
	require.NoError(t, err)

	out, err := Unpack(data)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestUnpack_Invalid(t *testing.T) {
	_, err := Unpack([]byte("not a gzip stream"))
	assert.ErrorIs(t, err, ErrDecompressionFailed)
}

func TestUnpack_RejectsUnsafeEntries(t *testing.T) {
	build := func(header *tar.Header, content []byte) []byte {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		tw := tar.NewWriter(gz)
		require.NoError(t, tw.WriteHeader(header))
		if len(content) > 0 {
			_, err := tw.Write(content)
			require.NoError(t, err)
		}
		require.NoError(t, tw.Close())
		require.NoError(t, gz.Close())
		return buf.Bytes()
	}

	tests := []struct {
		name   string
		header *tar.Header
	}{
		{
			name:   "parent traversal",
			header: &tar.Header{Typeflag: tar.TypeReg, Name: "../escape.yml", Mode: 0o644, Size: 1},
		},
		{
			name:   "absolute path",
			header: &tar.Header{Typeflag: tar.TypeReg, Name: "/etc/passwd", Mode: 0o644, Size: 1},
		},
		{
			name:   "symlink",
			header: &tar.Header{Typeflag: tar.TypeSymlink, Name: "generated/link", Linkname: "/etc/passwd"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var content []byte
			if tt.header.Size > 0 {
				content = []byte("x")
			}
			_, err := Unpack(build(tt.header, content))
			assert.ErrorIs(t, err, ErrDecompressionFailed)
		})
	}
}

func TestPack_RoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		names := rapid.SliceOfNDistinct(
			rapid.StringMatching(`[a-z]{1,8}(/[a-z]{1,8}){0,3}\.(yml|json|java)`),
			0, 8, func(s string) string { return s },
		).Draw(t, "paths")

		input := make([]codegen.Artifact, 0, len(names))
		for i, name := range names {
			input = append(input, codegen.Artifact{
				Platform: platforms.All()[i%len(platforms.All())],
				Kind:     codegen.KindSource,
				Path:     name,
				Content:  []byte(rapid.String().Draw(t, "content")),
			})
		}

		data, hash, err := Pack(input)
		if err != nil {
			t.Fatalf("pack: %v", err)
		}
		if Checksum(data) != hash {
			t.Fatalf("hash mismatch")
		}

		out, err := Unpack(data)
		if err != nil {
			t.Fatalf("unpack: %v", err)
		}

		want := codegen.CloneArtifacts(input)
		codegen.SortArtifacts(want)
		if len(out) != len(want) {
			t.Fatalf("got %d artifacts, want %d", len(out), len(want))
		}
		for i := range want {
			if out[i].Path != want[i].Path || out[i].Platform != want[i].Platform ||
				out[i].Kind != want[i].Kind || !bytes.Equal(out[i].Content, want[i].Content) {
				t.Fatalf("artifact %d differs: got %+v want %+v", i, out[i], want[i])
			}
		}
	})
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, ValidateKey("3f2a9c"))
	assert.NoError(t, ValidateKey("my-plugin_1.0"))

	for _, key := range []string{"", "../x", "a/b", ".hidden", "a b"} {
		assert.ErrorIs(t, ValidateKey(key), ErrInvalidKey, key)
	}
}
