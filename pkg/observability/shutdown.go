package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrShutdownTimeout is returned when resources are still closing after the timeout
var ErrShutdownTimeout = errors.New("shutdown timeout reached")

// defaultShutdownTimeout bounds Shutdown when no timeout is given
const defaultShutdownTimeout = 30 * time.Second

// ShutdownFunc releases one resource
type ShutdownFunc func(context.Context) error

// ShutdownManager stops a long-running command: the optional HTTP server
// first, then every registered resource in reverse registration order, so
// something registered early (tracing) outlives what was registered after it.
type ShutdownManager struct {
	logger  *logrus.Logger
	server  *http.Server
	timeout time.Duration

	mu    sync.Mutex
	funcs []ShutdownFunc
}

// NewShutdownManager creates a new shutdown manager. server may be nil.
func NewShutdownManager(logger *logrus.Logger, server *http.Server, timeout time.Duration) *ShutdownManager {
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	return &ShutdownManager{
		logger:  logger,
		server:  server,
		timeout: timeout,
	}
}

// RegisterShutdownFunc adds fn to the resources closed by Shutdown
func (sm *ShutdownManager) RegisterShutdownFunc(fn ShutdownFunc) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.funcs = append(sm.funcs, fn)
}

// WaitForShutdown blocks until ctx is done, then shuts down. Callers cancel
// ctx on SIGINT/SIGTERM (see signal.NotifyContext).
func (sm *ShutdownManager) WaitForShutdown(ctx context.Context) error {
	<-ctx.Done()
	sm.logger.WithField("cause", context.Cause(ctx)).Info("shutting down")
	return sm.Shutdown()
}

// Shutdown runs the shutdown sequence once, bounded by the manager's
// timeout. Every step runs even when an earlier one fails.
func (sm *ShutdownManager) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), sm.timeout)
	defer cancel()

	sm.mu.Lock()
	funcs := make([]ShutdownFunc, len(sm.funcs))
	copy(funcs, sm.funcs)
	sm.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		defer RecoverPanicWithCallback(sm.logger, "shutdown", func() {
			done <- errors.New("shutdown panicked")
		})
		done <- sm.run(ctx, funcs)
	}()

	select {
	case err := <-done:
		if err != nil {
			return err
		}
		sm.logger.Debug("shutdown complete")
		return nil
	case <-ctx.Done():
		sm.logger.WithField("timeout", sm.timeout).Warn("shutdown timed out")
		return fmt.Errorf("%w after %s", ErrShutdownTimeout, sm.timeout)
	}
}

func (sm *ShutdownManager) run(ctx context.Context, funcs []ShutdownFunc) error {
	var errs []error

	if sm.server != nil {
		if err := sm.server.Shutdown(ctx); err != nil {
			sm.logger.WithError(err).Error("http server shutdown failed")
			errs = append(errs, fmt.Errorf("http server: %w", err))
		}
	}

	for i := len(funcs) - 1; i >= 0; i-- {
		if err := funcs[i](ctx); err != nil {
			sm.logger.WithError(err).WithField("index", i).Error("shutdown function failed")
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown completed with %d error(s): %w", len(errs), errors.Join(errs...))
	}
	return nil
}
