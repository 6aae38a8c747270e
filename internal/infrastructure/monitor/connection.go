package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CheckFunc probes a single backend. A nil error means healthy.
type CheckFunc func(ctx context.Context) error

// Monitor periodically probes the configured store backends and caches
// the result for the health endpoint.
type Monitor struct {
	checks map[string]CheckFunc

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	logger   *zap.Logger
}

func New(checks map[string]CheckFunc, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		checks:   checks,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

// Start probes once synchronously, so a health check issued right
// after startup sees a real status, then keeps refreshing in the
// background.
func (m *Monitor) Start() {
	m.refresh()
	go m.loop()
}

func (m *Monitor) Stop() {
	close(m.stopCh)
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Healthy
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.refresh()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) refresh() {
	status := Status{
		Healthy:   true,
		Backends:  make(map[string]bool, len(m.checks)),
		LastCheck: time.Now(),
	}

	for name, check := range m.checks {
		ok := m.probe(name, check)
		status.Backends[name] = ok
		if !ok {
			status.Healthy = false
		}
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
}

func (m *Monitor) probe(name string, check CheckFunc) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := check(ctx); err != nil {
		m.logger.Warn("backend health check failed", zap.String("backend", name), zap.Error(err))
		return false
	}
	return true
}
