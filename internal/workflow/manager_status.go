package workflow

import (
	"context"

	"toksmith/internal/logging"
	"toksmith/internal/metrics"
	"toksmith/internal/queue"
)

// StatusSummary represents lightweight worker pool diagnostics.
type StatusSummary struct {
	Running   bool
	Workers   int
	Busy      int
	LastError string
	LastJob   *queue.Job
	JobStats  []queue.StatusCount
}

// Status returns the latest workflow information.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	m.mu.RLock()
	summary := StatusSummary{Running: m.running, Workers: m.workers, Busy: m.busy}
	if m.lastErr != nil {
		summary.LastError = m.lastErr.Error()
	}
	if m.lastJob != nil {
		copy := *m.lastJob
		summary.LastJob = &copy
	}
	m.mu.RUnlock()

	stats, err := m.store.JobStats(ctx)
	if err != nil {
		m.logger.Warn("failed to read job stats", logging.Error(err))
	}
	summary.JobStats = stats
	return summary
}

func (m *Manager) setBusy(delta int) {
	m.mu.Lock()
	m.busy += delta
	m.mu.Unlock()
	metrics.WorkersBusy.Add(float64(delta))
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastJob(job *queue.Job) {
	m.mu.Lock()
	if job != nil {
		copy := *job
		m.lastJob = &copy
	} else {
		m.lastJob = nil
	}
	m.mu.Unlock()
}
