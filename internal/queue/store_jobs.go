package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"toksmith/internal/services"
)

// NewJob inserts a pending job and returns it.
func (s *Store) NewJob(ctx context.Context, source, url string) (*Job, error) {
	source = strings.TrimSpace(source)
	url = strings.TrimSpace(url)
	if source == "" || url == "" {
		return nil, services.Wrap(services.ErrValidation, "queue", "new job", "source and url are required", nil)
	}
	now := s.timestamp()
	job := &Job{
		ID:     uuid.NewString(),
		Source: source,
		URL:    url,
		Status: JobPending,
	}
	if _, err := s.exec(ctx,
		`INSERT INTO jobs (job_id, source, url, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		job.ID, job.Source, job.URL, job.Status, now, now,
	); err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	job.CreatedAt, _ = parseTimeString(now)
	job.UpdatedAt = job.CreatedAt
	return job, nil
}

// ClaimNextJob moves the oldest pending job to processing and returns it.
// It returns nil when no job is pending. The claim is one statement, so two
// callers can never receive the same job.
func (s *Store) ClaimNextJob(ctx context.Context) (*Job, error) {
	var job *Job
	err := s.queryRow(ctx, func(row *sql.Row) error {
		var scanErr error
		job, scanErr = scanJob(row)
		return scanErr
	},
		`UPDATE jobs SET status = ?, updated_at = ?
         WHERE job_id = (SELECT job_id FROM jobs WHERE status = ? ORDER BY created_at, job_id LIMIT 1)
           AND status = ?
         RETURNING `+jobColumns,
		JobProcessing, s.timestamp(), JobPending, JobPending,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim job: %w", err)
	}
	return job, nil
}

// CompleteJob stores scraped data and marks a processing job completed.
func (s *Store) CompleteJob(ctx context.Context, id, scrapedJSON string) error {
	res, err := s.exec(ctx,
		`UPDATE jobs SET status = ?, scraped_data = ?, error_message = NULL, updated_at = ?
         WHERE job_id = ? AND status = ?`,
		JobCompleted, nullableString(scrapedJSON), s.timestamp(), id, JobProcessing,
	)
	if err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	return s.checkJobTransition(ctx, res, id, "complete")
}

// FailJob records the failure reason and marks a processing job failed.
func (s *Store) FailJob(ctx context.Context, id, message string) error {
	res, err := s.exec(ctx,
		`UPDATE jobs SET status = ?, error_message = ?, updated_at = ?
         WHERE job_id = ? AND status = ?`,
		JobFailed, nullableString(message), s.timestamp(), id, JobProcessing,
	)
	if err != nil {
		return fmt.Errorf("fail job: %w", err)
	}
	return s.checkJobTransition(ctx, res, id, "fail")
}

func (s *Store) checkJobTransition(ctx context.Context, res sql.Result, id, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s job: %w", op, err)
	}
	if affected == 1 {
		return nil
	}
	current, err := s.GetJob(ctx, id)
	if err != nil {
		return err
	}
	return services.Wrap(services.ErrConflict, "queue", op+" job",
		fmt.Sprintf("job %s is %s, not processing", id, current.Status), nil)
}

// GetJob fetches a job by id.
func (s *Store) GetJob(ctx context.Context, id string) (*Job, error) {
	var job *Job
	err := s.queryRow(ctx, func(row *sql.Row) error {
		var scanErr error
		job, scanErr = scanJob(row)
		return scanErr
	}, `SELECT `+jobColumns+` FROM jobs WHERE job_id = ?`, strings.TrimSpace(id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "queue", "get job", fmt.Sprintf("job %s not found", id), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// ListJobs returns jobs newest first, optionally filtered by status.
func (s *Store) ListJobs(ctx context.Context, statuses ...JobStatus) ([]*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs`
	args := statusArgs(statuses)
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + makePlaceholders(len(statuses)) + `)`
	}
	query += ` ORDER BY created_at DESC, job_id`

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}

// PruneJobs deletes terminal jobs with the given statuses. A zero olderThan
// removes them regardless of age.
func (s *Store) PruneJobs(ctx context.Context, olderThan time.Duration, statuses ...JobStatus) (int64, error) {
	terminal := make([]JobStatus, 0, len(statuses))
	for _, status := range statuses {
		if status.IsTerminal() {
			terminal = append(terminal, status)
		}
	}
	if len(terminal) == 0 {
		return 0, services.Wrap(services.ErrValidation, "queue", "prune jobs", "only completed or failed jobs can be pruned", nil)
	}
	query := `DELETE FROM jobs WHERE status IN (` + makePlaceholders(len(terminal)) + `)`
	args := statusArgs(terminal)
	if olderThan > 0 {
		query += ` AND updated_at < ?`
		args = append(args, s.now().Add(-olderThan).Format(timestampLayout))
	}
	res, err := s.exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("prune jobs: %w", err)
	}
	return res.RowsAffected()
}

// FailAbandonedJobs marks jobs left processing by a dead process as failed.
// They are not requeued, because that would retry them implicitly.
func (s *Store) FailAbandonedJobs(ctx context.Context) (int64, error) {
	res, err := s.exec(ctx,
		`UPDATE jobs SET status = ?, error_message = ?, updated_at = ? WHERE status = ?`,
		JobFailed, DaemonStopReason, s.timestamp(), JobProcessing,
	)
	if err != nil {
		return 0, fmt.Errorf("fail abandoned jobs: %w", err)
	}
	return res.RowsAffected()
}

// HasPendingJobs reports whether any job is waiting to be claimed.
func (s *Store) HasPendingJobs(ctx context.Context) (bool, error) {
	var count int
	err := s.queryRow(ctx, func(row *sql.Row) error {
		return row.Scan(&count)
	}, `SELECT COUNT(1) FROM jobs WHERE status = ?`, JobPending)
	if err != nil {
		return false, fmt.Errorf("count pending jobs: %w", err)
	}
	return count > 0, nil
}

// JobStats returns job counts per status.
func (s *Store) JobStats(ctx context.Context) ([]StatusCount, error) {
	return s.stats(ctx, `SELECT status, COUNT(1) FROM jobs GROUP BY status ORDER BY status`)
}

func (s *Store) stats(ctx context.Context, query string) ([]StatusCount, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), query)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	defer rows.Close()
	var out []StatusCount
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}
