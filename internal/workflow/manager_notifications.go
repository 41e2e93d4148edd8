package workflow

import (
	"context"
	"log/slog"

	"toksmith/internal/logging"
	"toksmith/internal/notifications"
	"toksmith/internal/queue"
)

// notifyJob publishes a job outcome. Publish failures never fail the job.
func (m *Manager) notifyJob(ctx context.Context, logger *slog.Logger, job *queue.Job, title, errMessage string) {
	event := notifications.EventJobCompleted
	payload := notifications.Payload{
		"job_id": job.ID,
		"source": job.Source,
		"url":    job.URL,
		"status": string(job.Status),
	}
	if job.Status == queue.JobFailed {
		event = notifications.EventJobFailed
		payload["error_message"] = errMessage
	} else if title != "" {
		payload["title"] = title
	}
	if err := m.notifier.Publish(ctx, event, payload); err != nil {
		logger.Debug("job notification failed", logging.String("event", string(event)), logging.Error(err))
	}
}
