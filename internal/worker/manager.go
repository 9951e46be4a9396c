package worker

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Worker is a long-running background component with an explicit lifecycle.
// Start must not block; Stop must wait until the worker has exited.
type Worker interface {
	Start(ctx context.Context) error
	Stop()
	Name() string
}

// Manager starts and stops a group of workers together
type Manager struct {
	workers []Worker
	started []Worker
	logger  *zap.Logger
	mu      sync.Mutex
}

// NewManager creates a new worker manager
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		workers: make([]Worker, 0),
		logger:  logger,
	}
}

// Register adds workers to be managed, in start order
func (m *Manager) Register(ws ...Worker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workers = append(m.workers, ws...)
}

// StartAll starts every registered worker. If one fails, the workers
// already started are stopped again and the error is returned.
func (m *Manager) StartAll(ctx context.Context) error {
	m.mu.Lock()
	workers := append([]Worker(nil), m.workers...)
	m.mu.Unlock()

	for _, w := range workers {
		if err := w.Start(ctx); err != nil {
			m.logger.Error("Failed to start worker",
				zap.String("name", w.Name()),
				zap.Error(err))
			m.StopAll()
			return fmt.Errorf("start %s: %w", w.Name(), err)
		}

		m.mu.Lock()
		m.started = append(m.started, w)
		m.mu.Unlock()
		m.logger.Debug("Worker started", zap.String("name", w.Name()))
	}
	return nil
}

// StopAll stops the started workers in reverse order
func (m *Manager) StopAll() {
	m.mu.Lock()
	started := m.started
	m.started = nil
	m.mu.Unlock()

	for i := len(started) - 1; i >= 0; i-- {
		w := started[i]
		w.Stop()
		m.logger.Debug("Worker stopped", zap.String("name", w.Name()))
	}
}

// Count returns the number of registered workers
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.workers)
}
