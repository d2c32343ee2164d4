// Package collector feeds traces from live and static data sources.
package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mikaelreiersolmoen/tracedog/internal/trace"
	"go.uber.org/zap"
)

// Status values sent on the status channel
const (
	StatusRunning = "running"
	StatusStopped = "stopped"
	StatusError   = "error"
)

// Source produces one sample per call
type Source interface {
	Collect(ctx context.Context) (trace.Point, error)
}

// Manager polls a source at a fixed latency and adds every sample to a trace
type Manager struct {
	source     Source
	trace      *trace.Trace
	latency    time.Duration
	logger     *zap.Logger
	statusChan chan string

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a polling collector. Latency <= 0 defaults to 100ms.
func NewManager(source Source, tr *trace.Trace, latency time.Duration, logger *zap.Logger) *Manager {
	if latency <= 0 {
		latency = 100 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		source:     source,
		trace:      tr,
		latency:    latency,
		logger:     logger.With(zap.String("trace", tr.Name())),
		statusChan: make(chan string, 10),
	}
}

// Start begins collecting in the background
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		return fmt.Errorf("collector already running")
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.wg.Add(1)
	go m.run(ctx)

	m.sendStatus(StatusRunning)
	m.logger.Info("collector started", zap.Duration("latency", m.latency))
	return nil
}

// Stop halts collection and waits for the collecting goroutine to exit.
// Stopping a stopped manager is a no-op.
func (m *Manager) Stop() error {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	m.wg.Wait()

	m.sendStatus(StatusStopped)
	m.logger.Info("collector stopped")
	return nil
}

// Running reports whether the collector goroutine is active
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancel != nil
}

// StatusChan returns the channel for receiving status updates
func (m *Manager) StatusChan() <-chan string {
	return m.statusChan
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.latency)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p, err := m.source.Collect(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				m.logger.Warn("collect failed", zap.Error(err))
				m.sendStatus(StatusError)
				continue
			}
			m.trace.Add(p)
		}
	}
}

// sendStatus never blocks; a full channel drops the update
func (m *Manager) sendStatus(status string) {
	select {
	case m.statusChan <- status:
	default:
	}
}
