package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/platinummonkey/flare/pkg/codegen"
	"github.com/platinummonkey/flare/pkg/httputil"
	"github.com/platinummonkey/flare/pkg/observability"
)

const watchShutdownTimeout = 10 * time.Second

func newWatchCmd(a *app) *cobra.Command {
	var (
		output     string
		sourceDirs []string
	)

	cmd := &cobra.Command{
		Use:   "watch [descriptor]",
		Short: "Regenerate whenever the descriptor changes",
		Long: "Watch generates once, then regenerates every time the descriptor file is\n" +
			"written. Bursts of writes are coalesced. With --metrics-addr it also serves\n" +
			"/metrics, /healthz, /readyz and /status.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWatch(cmd, descriptorPath(args), output, sourceDirs)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&output, "output", "o", ".", "output root; files are written below <output>/generated")
	f.StringSliceVar(&sourceDirs, "source-dir", nil, "source directory expected to contain the entry point (repeatable)")
	f.Duration("debounce", 0, "quiet period after a write before regenerating")
	f.String("metrics-addr", "", "serve metrics and health endpoints on this address")
	f.Int("max-workers", 0, "maximum number of platforms rendered concurrently")

	return cmd
}

func (a *app) runWatch(cmd *cobra.Command, path, output string, sourceDirs []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	svc, err := a.newServices(ctx)
	if err != nil {
		return err
	}

	health := observability.NewHealthChecker(svc.redis, Version)

	w, err := newWatcher(a, svc, health, path, output, sourceDirs)
	if err != nil {
		_ = svc.Close(ctx)
		return err
	}

	var server *http.Server
	if addr := a.cfg.Watch.MetricsAddr; addr != "" {
		server = &http.Server{
			Addr:              addr,
			Handler:           newWatchRouter(svc.metrics, health, w),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	sm := observability.NewShutdownManager(a.logger, server, watchShutdownTimeout)
	sm.RegisterShutdownFunc(svc.Close)

	if server != nil {
		go func() {
			defer observability.RecoverPanic(a.logger, "metrics server")
			a.logger.WithField("addr", server.Addr).Info("serving metrics and health endpoints")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.WithError(err).Error("metrics server failed")
				cancel()
			}
		}()
	}

	runErr := make(chan error, 1)
	go func() {
		defer cancel()
		runErr <- w.Run(ctx)
	}()

	shutdownErr := sm.WaitForShutdown(ctx)
	cancel()
	return errors.Join(<-runErr, shutdownErr)
}

// newWatchRouter exposes metrics, health probes and the last run's status
func newWatchRouter(metrics *observability.Metrics, health *observability.HealthChecker, w *watcher) http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", health.Liveness).Methods(http.MethodGet)
	r.HandleFunc("/readyz", health.Readiness).Methods(http.MethodGet)
	r.HandleFunc("/status", w.serveStatus).Methods(http.MethodGet)

	return httputil.Chain(
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(w.logger),
		httputil.RecoveryMiddleware(w.logger),
	)(r)
}

// runStatus describes the most recent regeneration
type runStatus struct {
	Runs        int       `json:"runs"`
	LastRun     time.Time `json:"last_run,omitempty"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Artifacts   int       `json:"artifacts"`
	CacheHit    bool      `json:"cache_hit"`
	Error       string    `json:"error,omitempty"`
}

// watcher regenerates the output tree when its descriptor file changes
type watcher struct {
	app        *app
	svc        *services
	health     *observability.HealthChecker
	path       string
	output     string
	sourceDirs []string
	debounce   time.Duration
	logger     *logrus.Entry

	mu     sync.RWMutex
	status runStatus
}

func newWatcher(a *app, svc *services, health *observability.HealthChecker, path, output string, sourceDirs []string) (*watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	return &watcher{
		app:        a,
		svc:        svc,
		health:     health,
		path:       abs,
		output:     output,
		sourceDirs: sourceDirs,
		debounce:   a.cfg.Watch.Debounce,
		logger:     a.logger.WithField("descriptor", abs),
	}, nil
}

// Run generates once, then on every change until ctx is done. It watches the
// descriptor's directory because editors often replace files by rename.
func (w *watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}

	w.logger.Info("started watching descriptor")
	w.regenerate(ctx)

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("stopped watching descriptor")
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.logger.WithField("op", event.Op.String()).Debug("descriptor changed")
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			w.regenerate(ctx)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.WithError(err).Warn("watcher error")
		}
	}
}

// regenerate runs one generation. Failures are logged and reported to the
// health checker; the watch loop keeps going.
func (w *watcher) regenerate(ctx context.Context) {
	defer observability.RecoverPanicWithCallback(w.logger, "watch regeneration", func() {
		err := errors.New("generation panicked")
		w.health.RecordGeneration(err)
		w.record(nil, err)
	})

	var result *codegen.Result
	d, err := w.app.loadDescriptor(w.path, w.sourceDirs)
	if err == nil {
		result, err = w.svc.engine.Generate(ctx, d, w.output)
		if err == nil {
			w.logger.WithFields(logrus.Fields{
				"artifacts":   len(result.Artifacts),
				"fingerprint": result.Fingerprint[:12],
				"cache_hit":   result.CacheHit,
			}).Info("regenerated")
		}
	}

	w.health.RecordGeneration(err)
	w.record(result, err)
	if err != nil {
		w.logger.WithError(err).Error("regeneration failed")
	}
}

func (w *watcher) record(result *codegen.Result, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.status.Runs++
	w.status.LastRun = time.Now().UTC()
	w.status.Error = ""
	if err != nil {
		w.status.Error = err.Error()
		return
	}
	w.status.Fingerprint = result.Fingerprint
	w.status.Artifacts = len(result.Artifacts)
	w.status.CacheHit = result.CacheHit
}

func (w *watcher) snapshot() runStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.status
}

func (w *watcher) serveStatus(rw http.ResponseWriter, r *http.Request) {
	st := w.snapshot()
	code := http.StatusOK
	if st.Error != "" {
		code = http.StatusServiceUnavailable
	}
	_ = httputil.WriteJSON(rw, code, st)
}
