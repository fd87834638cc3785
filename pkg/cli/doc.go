// Package cli implements the flare command-line interface.
//
// # Commands
//
// generate: Render manifests and adapter sources into an output root
//
//	flare generate flare.yaml \
//		--output build \
//		--source-dir src/main/java \
//		--archive-dir .flare-cache \
//		--metrics-file build/flare.prom
//
// watch: Regenerate whenever the descriptor changes
//
//	flare watch flare.yaml --output build --metrics-addr :9090
//
// plan: Print the repositories, dependencies and generated directories a
// host build must wire in
//
//	flare plan flare.yaml --format yaml
//
// platforms: List supported platforms
//
//	flare platforms
//
// # Configuration
//
// Flags override FLARE_* environment variables, which override .flare.yaml,
// which overrides built-in defaults. See pkg/config.
//
// # Exit Codes
//
// Any error, including a partially written tree, exits with status 1.
package cli
