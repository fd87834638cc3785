package codegen

import (
	"sort"
	"time"

	"github.com/platinummonkey/flare/pkg/codegen/platforms"
)

// ArtifactKind classifies a generated file
type ArtifactKind string

const (
	// KindManifest is a platform manifest placed under the resources directory
	KindManifest ArtifactKind = "manifest"
	// KindSource is a per-platform adapter compilation unit
	KindSource ArtifactKind = "source"
	// KindSupport is the shared list-parsing helper, written once per run
	KindSupport ArtifactKind = "support"
)

// Artifact is one generated file held in memory
type Artifact struct {
	// Platform is empty for support artifacts
	Platform platforms.Kind `json:"platform,omitempty"`
	Kind     ArtifactKind   `json:"kind"`
	Path     string         `json:"path"` // Slash-separated, relative to the output root
	Content  []byte         `json:"content"`
}

// Size returns the content length in bytes
func (a *Artifact) Size() int64 {
	return int64(len(a.Content))
}

// Written records one artifact persisted by a generation run
type Written struct {
	Platform platforms.Kind `json:"platform,omitempty"`
	Kind     ArtifactKind   `json:"kind"`
	Path     string         `json:"path"` // Absolute path on disk
	Size     int64          `json:"size"`
}

// Result represents the outcome of a generation run
type Result struct {
	RunID       string        `json:"run_id"`
	Fingerprint string        `json:"fingerprint"`
	Artifacts   []Written     `json:"artifacts"`
	CacheHit    bool          `json:"cache_hit"`
	Duration    time.Duration `json:"duration"`
}

// SortArtifacts orders artifacts by path in place
func SortArtifacts(artifacts []Artifact) {
	sort.SliceStable(artifacts, func(i, j int) bool {
		return artifacts[i].Path < artifacts[j].Path
	})
}

// CloneArtifacts returns a deep copy so cached sets cannot be mutated by callers
func CloneArtifacts(artifacts []Artifact) []Artifact {
	if artifacts == nil {
		return nil
	}
	out := make([]Artifact, len(artifacts))
	for i, a := range artifacts {
		out[i] = a
		out[i].Content = append([]byte(nil), a.Content...)
	}
	return out
}

// Filter returns the artifacts of the given kind, preserving order
func Filter(artifacts []Artifact, kind ArtifactKind) []Artifact {
	var out []Artifact
	for _, a := range artifacts {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}
