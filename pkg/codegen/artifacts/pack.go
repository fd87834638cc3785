package artifacts

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/platinummonkey/flare/pkg/codegen"
	"github.com/platinummonkey/flare/pkg/codegen/platforms"
)

// archiveEpoch is stamped on every entry so identical inputs give identical bytes
var archiveEpoch = time.Unix(0, 0).UTC()

// Pack writes artifacts into a tar.gz archive and returns it with the
// hex sha256 of the compressed bytes.
//
// Entries are sorted by path and carry no timestamps or ownership, so the
// same artifact set always packs to the same bytes.
func Pack(artifacts []codegen.Artifact) ([]byte, string, error) {
	sorted := codegen.CloneArtifacts(artifacts)
	codegen.SortArtifacts(sorted)

	var buf bytes.Buffer
	hasher := sha256.New()

	gzWriter := gzip.NewWriter(io.MultiWriter(&buf, hasher))
	tarWriter := tar.NewWriter(gzWriter)

	for _, a := range sorted {
		header := &tar.Header{
			Typeflag:   tar.TypeReg,
			Name:       a.Path,
			Mode:       0o644,
			Size:       int64(len(a.Content)),
			ModTime:    archiveEpoch,
			PAXRecords: map[string]string{paxKind: string(a.Kind)},
			Format:     tar.FormatPAX,
		}
		// support artifacts belong to no platform
		if a.Platform != "" {
			header.PAXRecords[paxPlatform] = string(a.Platform)
		}

		if err := tarWriter.WriteHeader(header); err != nil {
			return nil, "", fmt.Errorf("%w: %s: %v", ErrCompressionFailed, a.Path, err)
		}
		if _, err := tarWriter.Write(a.Content); err != nil {
			return nil, "", fmt.Errorf("%w: %s: %v", ErrCompressionFailed, a.Path, err)
		}
	}

	// Close writers to flush
	if err := tarWriter.Close(); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrCompressionFailed, err)
	}
	if err := gzWriter.Close(); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrCompressionFailed, err)
	}

	return buf.Bytes(), hex.EncodeToString(hasher.Sum(nil)), nil
}

// PAX record names carrying artifact classification
const (
	paxPlatform = "FLARE.platform"
	paxKind     = "FLARE.kind"
)

// Unpack reads an archive produced by Pack. Entries that are not regular
// files or whose paths leave the archive root are rejected.
func Unpack(data []byte) ([]codegen.Artifact, error) {
	gzReader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompressionFailed, err)
	}
	defer gzReader.Close()

	tarReader := tar.NewReader(gzReader)

	artifacts := []codegen.Artifact{}
	for {
		header, err := tarReader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecompressionFailed, err)
		}

		if header.Typeflag != tar.TypeReg {
			return nil, fmt.Errorf("%w: %s: unsupported entry type %q", ErrDecompressionFailed, header.Name, header.Typeflag)
		}
		if !isArchivePath(header.Name) {
			return nil, fmt.Errorf("%w: %s: path escapes archive root", ErrDecompressionFailed, header.Name)
		}

		content, err := io.ReadAll(tarReader)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrDecompressionFailed, header.Name, err)
		}

		artifacts = append(artifacts, codegen.Artifact{
			Platform: platforms.Kind(header.PAXRecords[paxPlatform]),
			Kind:     codegen.ArtifactKind(header.PAXRecords[paxKind]),
			Path:     header.Name,
			Content:  content,
		})
	}

	codegen.SortArtifacts(artifacts)
	return artifacts, nil
}

// Checksum returns the hex sha256 of data
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func isArchivePath(name string) bool {
	if name == "" || strings.Contains(name, `\`) || path.Clean(name) != name {
		return false
	}
	return filepath.IsLocal(filepath.FromSlash(name))
}
