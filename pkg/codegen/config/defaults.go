// Package config provides default configuration values for the codegen system
//
// CENTRALIZED DEFAULTS: All magic constants should be defined here
//
// This file is the single source of truth for default values across the
// generation engine, its caches and the archive managers. Output layout
// constants live here too because both the engine and the CLI's build plan
// must agree on them.
package config

import (
	"time"
)

// Output Layout
const (
	// GeneratedDir is the directory below the output root that holds every
	// generated file.
	GeneratedDir = "generated"

	// ResourcesDir holds manifests. Packaging includes it verbatim.
	ResourcesDir = GeneratedDir + "/resources"

	// SourcesDir holds adapter sources. It is added to the compilable source set.
	SourcesDir = GeneratedDir + "/sources"

	// PlatformPackageSuffix is appended to the entry point's package to form
	// the package of every generated adapter.
	PlatformPackageSuffix = "platform"

	// SupportClassName is the shared list-parsing helper emitted once per run.
	SupportClassName = "PlatformUtil"

	// GeneratedHeader is the first line of every generated source file.
	GeneratedHeader = "// Code generated by flare. DO NOT EDIT."
)

// Runtime SDK Coordinates
const (
	// SDKGroup and SDKArtifact identify the platform-independent runtime the
	// adapters delegate to.
	SDKGroup    = "com.flare"
	SDKArtifact = "sdk"
)

// Cache Configuration Defaults
const (
	// DefaultCacheMaxEntries is the maximum number of rendered artifact sets
	// kept by the in-memory cache.
	//
	// A rendered set is a handful of small text files, so the bound is on
	// entries rather than bytes.
	DefaultCacheMaxEntries = 128

	// DefaultCacheTTL is the time-to-live for in-memory cache entries
	// Default: 10 minutes
	DefaultCacheTTL = 10 * time.Minute

	// DefaultRedisTTL is the time-to-live for shared Redis cache entries
	// Default: 24 hours
	DefaultRedisTTL = 24 * time.Hour

	// DefaultRedisPrefix namespaces cache keys in a shared Redis database.
	DefaultRedisPrefix = "flare:render"
)

// Engine Configuration Defaults
const (
	// DefaultMaxParallelWorkers bounds concurrent per-platform rendering.
	// There are only a few platforms, so this rarely limits anything.
	DefaultMaxParallelWorkers = 4

	// DefaultDirPerm and DefaultFilePerm are used for every directory and
	// file the engine creates.
	DefaultDirPerm  = 0o755
	DefaultFilePerm = 0o644
)

// Archive Configuration Defaults
const (
	// DefaultS3Prefix is prepended to every archive key stored in S3.
	DefaultS3Prefix = "flare/generated/"

	// ArchiveExtension is the file extension of generated-tree archives.
	ArchiveExtension = ".tar.gz"

	// ChecksumExtension is appended to an archive name for its sha256 file.
	ChecksumExtension = ".sha256"
)

// Watch Configuration Defaults
const (
	// DefaultWatchDebounce coalesces bursts of editor writes into one run.
	DefaultWatchDebounce = 300 * time.Millisecond
)
