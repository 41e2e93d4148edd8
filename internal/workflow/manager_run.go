package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"toksmith/internal/content"
	"toksmith/internal/logging"
	"toksmith/internal/metrics"
	"toksmith/internal/queue"
	"toksmith/internal/services"
)

// Start fails abandoned jobs and launches the workers.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	m.mu.Unlock()

	abandoned, err := m.store.FailAbandonedJobs(ctx)
	if err != nil {
		return err
	}
	if abandoned > 0 {
		logging.WarnWithContext(m.logger, "failed jobs abandoned by a previous process", "jobs_abandoned",
			logging.Int64("count", abandoned),
			logging.String(logging.FieldImpact, "abandoned jobs are not retried"),
			logging.String(logging.FieldErrorHint, "re-enqueue the URLs to try again"),
		)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return errors.New("workflow already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(m.workers)
	for i := range m.workers {
		go m.runWorker(runCtx, m.logger.With(logging.Int("worker", i)))
	}
	m.logger.Info("workflow started", logging.Int("workers", m.workers))
	return nil
}

// Stop cancels the workers and waits for them to exit.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) runWorker(ctx context.Context, logger *slog.Logger) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := m.store.ClaimNextJob(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			m.handleClaimError(ctx, logger, err)
			continue
		}
		if job == nil {
			m.waitForJobOrShutdown(ctx)
			continue
		}
		m.processJob(ctx, logger, job)
	}
}

func (m *Manager) processJob(ctx context.Context, logger *slog.Logger, job *queue.Job) {
	m.setBusy(1)
	defer m.setBusy(-1)
	metrics.JobTransitionsTotal.WithLabelValues(string(queue.JobProcessing)).Inc()

	jobCtx := services.WithJobID(ctx, job.ID)
	logger = logging.WithContext(jobCtx, logger)
	logger.Info("job started", logging.String(logging.FieldSource, job.Source), logging.String("url", job.URL))

	source := content.Source(job.Source)
	scraped, err := m.fetcher.Fetch(jobCtx, &source, job.URL)

	// Persist the outcome even when shutdown cancelled the fetch.
	persistCtx := context.WithoutCancel(jobCtx)
	if err != nil {
		message := err.Error()
		if ctx.Err() != nil {
			message = queue.DaemonStopReason
		}
		m.failJob(persistCtx, logger, job, message, err)
		return
	}

	payload, err := scraped.Encode()
	if err != nil {
		m.failJob(persistCtx, logger, job, err.Error(), err)
		return
	}
	if err := m.store.CompleteJob(persistCtx, job.ID, string(payload)); err != nil {
		m.recordError(logger, job, err)
		return
	}
	job.Status = queue.JobCompleted
	m.setLastJob(job)
	metrics.JobTransitionsTotal.WithLabelValues(string(queue.JobCompleted)).Inc()
	logger.Info("job completed",
		logging.String("title", scraped.Title),
		logging.Int("comments", content.CountComments(scraped.Comments)),
	)
	m.notifyJob(persistCtx, logger, job, scraped.Title, "")
}

func (m *Manager) failJob(ctx context.Context, logger *slog.Logger, job *queue.Job, message string, cause error) {
	if err := m.store.FailJob(ctx, job.ID, message); err != nil {
		m.recordError(logger, job, err)
		return
	}
	job.Status = queue.JobFailed
	job.ErrorMessage = message
	m.setLastJob(job)
	m.setLastError(cause)
	metrics.JobTransitionsTotal.WithLabelValues(string(queue.JobFailed)).Inc()
	logging.WarnWithContext(logger, "job failed", "job_failed",
		logging.String(logging.FieldErrorKind, services.Kind(cause)),
		logging.Error(cause),
		logging.String(logging.FieldImpact, "job will not be retried"),
		logging.String(logging.FieldErrorHint, "check the URL and source credentials, then enqueue again"),
	)
	m.notifyJob(ctx, logger, job, "", message)
}

func (m *Manager) recordError(logger *slog.Logger, job *queue.Job, err error) {
	m.setLastError(err)
	logging.ErrorWithContext(logger, "failed to persist job outcome", "job_persist_failed",
		logging.String(logging.FieldJobID, job.ID),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check queue database access"),
	)
}

func (m *Manager) handleClaimError(ctx context.Context, logger *slog.Logger, err error) {
	m.setLastError(err)
	logging.ErrorWithContext(logger, "failed to claim next job", "queue_claim_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check queue database access"),
	)
	select {
	case <-ctx.Done():
	case <-time.After(m.retryInterval):
	}
}

func (m *Manager) waitForJobOrShutdown(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-m.wake:
	case <-time.After(m.idleInterval()):
	}
}

func (m *Manager) idleInterval() time.Duration {
	if m.pollInterval <= 0 {
		return 50 * time.Millisecond
	}
	return m.pollInterval
}
