// Package orchestrator runs generation: it renders every requested platform
// concurrently and then writes the results under an output root.
package orchestrator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/flare/pkg/codegen"
	"github.com/platinummonkey/flare/pkg/codegen/adapter"
	"github.com/platinummonkey/flare/pkg/codegen/cache"
	"github.com/platinummonkey/flare/pkg/codegen/manifest"
	"github.com/platinummonkey/flare/pkg/codegen/platforms"
	"github.com/platinummonkey/flare/pkg/descriptor"
	"github.com/platinummonkey/flare/pkg/observability"
)

// Engine generates platform artifacts from plugin descriptors
//
// IMPORTANT: Use NewEngine() to create instances. The zero value is not usable.
// An Engine holds no per-run state and is safe for concurrent use.
type Engine struct {
	config  *Config
	logger  *logrus.Logger
	metrics *observability.Metrics
	cache   cache.Cache
	tracer  trace.Tracer

	// outputDigest identifies this build's templates and encoders
	outputDigest string
}

// NewEngine creates a new generation engine
func NewEngine(cfg *Config, opts ...Option) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	e := &Engine{
		config:       cfg,
		logger:       observability.NewNopLogger(),
		tracer:       observability.Tracer(),
		outputDigest: OutputDigest(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OutputDigest identifies how this build renders: the embedded adapter
// templates, the generated-file header and the manifest encoding.
func OutputDigest() string {
	return adapter.TemplateDigest() + ":" + manifest.EncodingVersion
}

// Fingerprint returns the key under which d's rendered output is cached and
// archived. It combines the descriptor fingerprint with the output digest, so
// a build with different templates never reuses another build's output.
func (e *Engine) Fingerprint(d *descriptor.PluginDescriptor) string {
	h := sha256.New()
	h.Write([]byte(d.Fingerprint()))
	h.Write([]byte{0})
	h.Write([]byte(e.outputDigest))
	return hex.EncodeToString(h.Sum(nil))
}

// Render produces every artifact for the descriptor without touching disk.
// The result is sorted by path; an empty platform set yields no artifacts.
func (e *Engine) Render(ctx context.Context, d *descriptor.PluginDescriptor) ([]codegen.Artifact, error) {
	ctx, span := e.tracer.Start(ctx, "flare.Render")
	defer span.End()

	artifacts, err := e.render(ctx, d)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("flare.artifacts", len(artifacts)))
	return artifacts, nil
}

func (e *Engine) render(ctx context.Context, d *descriptor.PluginDescriptor) ([]codegen.Artifact, error) {
	if err := d.ValidateForEngine(); err != nil {
		return nil, err
	}

	kinds := d.Kinds()
	if len(kinds) == 0 {
		return []codegen.Artifact{}, nil
	}

	maxWorkers := e.config.MaxParallelWorkers
	if maxWorkers <= 0 {
		maxWorkers = 1
	}

	// each slot is written by exactly one goroutine
	perPlatform := make([][]codegen.Artifact, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for i, kind := range kinds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := renderPlatform(d, kind)
			if err != nil {
				return fmt.Errorf("%s: %w", kind, err)
			}
			perPlatform[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	support, err := adapter.EmitSupport(d)
	if err != nil {
		return nil, err
	}

	artifacts := make([]codegen.Artifact, 0, 2*len(kinds)+1)
	for _, out := range perPlatform {
		artifacts = append(artifacts, out...)
	}
	artifacts = append(artifacts, *support)

	codegen.SortArtifacts(artifacts)
	return artifacts, nil
}

func renderPlatform(d *descriptor.PluginDescriptor, kind platforms.Kind) ([]codegen.Artifact, error) {
	m, err := manifest.Emit(d, kind)
	if err != nil {
		return nil, err
	}

	src, err := adapter.Emit(d, kind)
	if err != nil {
		return nil, err
	}

	return []codegen.Artifact{*m, *src}, nil
}

// Generate renders the descriptor and writes every artifact under outputRoot,
// overwriting earlier generations.
//
// Writes are atomic per file and continue past failures. When any write
// fails, the returned error is a *WriteError listing every failed path and
// the result lists only the artifacts that were written.
func (e *Engine) Generate(ctx context.Context, d *descriptor.PluginDescriptor, outputRoot string) (*codegen.Result, error) {
	start := time.Now()
	runID := uuid.NewString()

	ctx, span := e.tracer.Start(ctx, "flare.Generate", trace.WithAttributes(
		attribute.String("flare.run_id", runID),
		attribute.String("flare.output_root", outputRoot),
	))
	defer span.End()

	log := observability.WithTraceContext(ctx, e.logger.WithField("run_id", runID))

	result, err := e.generate(ctx, log, d, outputRoot)
	if result != nil {
		result.RunID = runID
		result.Duration = time.Since(start)
	}

	status := observability.StatusSuccess
	if err != nil {
		status = observability.StatusFailure
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.WithError(err).Error("generation failed")
	} else {
		span.SetAttributes(
			attribute.Int("flare.artifacts", len(result.Artifacts)),
			attribute.Bool("flare.cache_hit", result.CacheHit),
		)
		log.WithFields(logrus.Fields{
			"artifacts": len(result.Artifacts),
			"cache_hit": result.CacheHit,
			"duration":  result.Duration,
		}).Info("generation complete")
	}
	e.metrics.RecordGeneration(status, time.Since(start))

	return result, err
}

func (e *Engine) generate(ctx context.Context, log *logrus.Entry, d *descriptor.PluginDescriptor, outputRoot string) (*codegen.Result, error) {
	if outputRoot == "" {
		return nil, ErrInvalidOutputRoot
	}
	root, err := filepath.Abs(outputRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutputRoot, err)
	}

	if err := d.ValidateForEngine(); err != nil {
		return nil, err
	}

	fingerprint := e.Fingerprint(d)
	log = log.WithField("fingerprint", fingerprint[:12])

	artifacts, cacheHit, err := e.renderCached(ctx, log, d, fingerprint)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &codegen.Result{
		Fingerprint: fingerprint,
		Artifacts:   make([]codegen.Written, 0, len(artifacts)),
		CacheHit:    cacheHit,
	}

	var failures []WriteFailure
	for _, a := range artifacts {
		target, err := e.writeArtifact(root, a)
		if err != nil {
			failures = append(failures, WriteFailure{Path: target, Err: err})
			e.metrics.RecordWriteError()
			log.WithError(err).WithField("path", target).Warn("failed to write artifact")
			continue
		}

		result.Artifacts = append(result.Artifacts, codegen.Written{
			Platform: a.Platform,
			Kind:     a.Kind,
			Path:     target,
			Size:     a.Size(),
		})
		e.metrics.RecordArtifact(string(a.Platform), string(a.Kind))
		log.WithFields(logrus.Fields{
			"platform": a.Platform,
			"path":     target,
		}).Debug("wrote artifact")
	}

	if len(failures) > 0 {
		return result, &WriteError{Failures: failures}
	}
	return result, nil
}

// renderCached consults the cache before rendering. Cache failures are
// logged and treated as misses.
func (e *Engine) renderCached(ctx context.Context, log *logrus.Entry, d *descriptor.PluginDescriptor, fingerprint string) ([]codegen.Artifact, bool, error) {
	if e.cache == nil {
		artifacts, err := e.Render(ctx, d)
		return artifacts, false, err
	}

	artifacts, err := e.cache.Get(ctx, fingerprint)
	if err == nil {
		e.metrics.RecordCacheRequest(observability.CacheHit)
		return artifacts, true, nil
	}
	e.metrics.RecordCacheRequest(observability.CacheMiss)
	if !errors.Is(err, cache.ErrCacheMiss) {
		log.WithError(err).Warn("render cache lookup failed")
	}

	artifacts, err = e.Render(ctx, d)
	if err != nil {
		return nil, false, err
	}

	if err := e.cache.Set(ctx, fingerprint, artifacts); err != nil {
		log.WithError(err).Warn("failed to store render in cache")
	}
	return artifacts, false, nil
}

// writeArtifact writes a to its path under root through a temp file and a
// rename, so an interrupted run never leaves a truncated file behind. It
// returns the absolute target path, also on failure.
func (e *Engine) writeArtifact(root string, a codegen.Artifact) (string, error) {
	rel := filepath.FromSlash(a.Path)
	target := filepath.Join(root, rel)
	if !filepath.IsLocal(rel) {
		return target, fmt.Errorf("artifact path %q escapes the output root", a.Path)
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, e.config.DirPerm); err != nil {
		return target, err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return target, err
	}
	tmpName := tmp.Name()

	_, writeErr := tmp.Write(a.Content)
	closeErr := tmp.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		_ = os.Remove(tmpName)
		return target, err
	}

	if err := os.Chmod(tmpName, e.config.FilePerm); err != nil {
		_ = os.Remove(tmpName)
		return target, err
	}

	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return target, err
	}

	return target, nil
}
