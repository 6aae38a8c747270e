// Package lifecycle sequences the teardown of the server's backends:
// the HTTP listener, the store handles and the background sweeps are
// registered as they come up and closed in the opposite order.
package lifecycle

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ShutdownFunc closes one component. It must respect ctx's deadline.
type ShutdownFunc func(ctx context.Context) error

type closer struct {
	name string
	stop ShutdownFunc
}

// Manager collects shutdown callbacks and drains them on termination.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	closers []closer
}

// New creates a manager. The timeout bounds the whole drain, not each
// individual callback.
func New(timeout time.Duration, logger *zap.Logger) *Manager {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{timeout: timeout, logger: logger}
}

// Register appends a shutdown callback. Callbacks run last-in
// first-out, so dependents registered later close before the stores
// they depend on.
func (m *Manager) Register(name string, fn ShutdownFunc) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	m.closers = append(m.closers, closer{name: name, stop: fn})
	m.mu.Unlock()
}

// Shutdown drains every registered callback and joins their errors.
// A failing callback does not stop the drain.
func (m *Manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		c := m.closers[i]
		if err := c.stop(ctx); err != nil {
			m.logger.Error("component refused to stop",
				zap.String("component", c.name), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		m.logger.Info("component stopped", zap.String("component", c.name))
	}
	return errors.Join(errs...)
}

// Listen watches for SIGTERM/SIGINT in the background and fires the
// cancel function once on the first signal.
func (m *Manager) Listen(cancel context.CancelFunc) {
	if cancel == nil {
		return
	}
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		defer signal.Stop(sigCh)
		sig := <-sigCh
		m.logger.Info("termination signal received", zap.String("signal", sig.String()))
		cancel()
	}()
}
