// Package codegen turns one platform-agnostic plugin descriptor into the
// artifacts each supported Minecraft server runtime needs.
//
// # Overview
//
// A generation run takes a validated descriptor and a set of target platforms
// and produces, per platform, a manifest the platform loader reads and a Java
// adapter source that forwards lifecycle calls into the platform-independent
// entry point. One shared support source is written per run.
//
// # Architecture
//
// The generation system consists of six components:
//
//  1. Platforms (pkg/codegen/platforms): Closed registry of supported runtimes
//  2. Manifest (pkg/codegen/manifest): plugin.yml, bungee.yml and velocity-plugin.json
//  3. Adapter (pkg/codegen/adapter): Template-driven Java adapter sources
//  4. Orchestrator (pkg/codegen/orchestrator): Render fan-out and atomic writes
//  5. Cache (pkg/codegen/cache): Two-tier render cache (in-memory L1 + Redis L2)
//  6. Artifacts (pkg/codegen/artifacts): Archived generated trees, local or S3
//
// # Output Layout
//
//	<root>/generated/resources/plugin.yml
//	<root>/generated/resources/bungee.yml
//	<root>/generated/resources/velocity-plugin.json
//	<root>/generated/sources/<pkg path>/platform/SpigotEntry.java
//	<root>/generated/sources/<pkg path>/platform/BungeeCordEntry.java
//	<root>/generated/sources/<pkg path>/platform/VelocityEntry.java
//	<root>/generated/sources/<pkg path>/platform/PlatformUtil.java
//
// Resources are packaged verbatim by the host build; sources are added to its
// compilable source set.
//
// # Determinism
//
// Rendering is a pure function of the descriptor. Artifacts are sorted by
// path and written sequentially, so re-running with an unchanged descriptor
// reproduces byte-identical files.
//
// # Usage
//
//	engine := orchestrator.NewEngine(orchestrator.DefaultConfig(),
//		orchestrator.WithLogger(logger))
//	result, err := engine.Generate(ctx, desc, "/path/to/project/build")
//	if err != nil {
//		return err
//	}
//	for _, w := range result.Artifacts {
//		fmt.Println(w.Path)
//	}
package codegen
