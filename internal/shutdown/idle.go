// Package shutdown provides idle monitoring for scale-to-zero deployments.
package shutdown

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// IdleMonitor tracks request activity and signals when the server has seen
// no traffic for a configurable duration. Platforms like Fly.io can then
// stop the machine and restart it on the next request.
type IdleMonitor struct {
	timeout      time.Duration
	logger       *slog.Logger
	excludePaths []string

	inFlight     int64
	mu           sync.RWMutex
	lastActivity time.Time

	idleChan chan struct{}
	stopChan chan struct{}
}

// NewIdleMonitor creates an idle monitor. A timeout of 0 disables it.
// Paths in excludePaths (prefix match) do not count as activity, so
// health probes don't keep an otherwise idle machine alive.
func NewIdleMonitor(timeout time.Duration, logger *slog.Logger, excludePaths ...string) *IdleMonitor {
	return &IdleMonitor{
		timeout:      timeout,
		logger:       logger,
		excludePaths: excludePaths,
		lastActivity: time.Now(),
		idleChan:     make(chan struct{}),
		stopChan:     make(chan struct{}),
	}
}

// Start begins the monitoring loop. No-op when disabled.
func (m *IdleMonitor) Start() {
	if m.timeout <= 0 {
		return
	}
	m.logger.Info("idle monitoring started", "timeout", m.timeout, "exclude_paths", m.excludePaths)
	go m.run()
}

// Stop halts the monitoring loop.
func (m *IdleMonitor) Stop() {
	if m.timeout <= 0 {
		return
	}
	close(m.stopChan)
}

// IdleChan returns a channel that is closed once the idle timeout elapses.
func (m *IdleMonitor) IdleChan() <-chan struct{} {
	return m.idleChan
}

// Middleware records request activity for non-excluded paths.
func (m *IdleMonitor) Middleware(next http.Handler) http.Handler {
	if m.timeout <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.excluded(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		atomic.AddInt64(&m.inFlight, 1)
		m.touch()
		defer func() {
			atomic.AddInt64(&m.inFlight, -1)
			m.touch()
		}()
		next.ServeHTTP(w, r)
	})
}

func (m *IdleMonitor) excluded(path string) bool {
	for _, p := range m.excludePaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func (m *IdleMonitor) touch() {
	m.mu.Lock()
	m.lastActivity = time.Now()
	m.mu.Unlock()
}

func (m *IdleMonitor) run() {
	// Poll well inside the timeout so the signal fires promptly
	interval := m.timeout / 6
	if interval < 5*time.Second {
		interval = 5 * time.Second
	}
	if interval > 30*time.Second {
		interval = 30 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			if atomic.LoadInt64(&m.inFlight) > 0 {
				m.touch()
				continue
			}
			m.mu.RLock()
			idle := time.Since(m.lastActivity)
			m.mu.RUnlock()
			if idle >= m.timeout {
				m.logger.Info("idle timeout reached, signaling shutdown", "idle", idle)
				close(m.idleChan)
				return
			}
		}
	}
}
