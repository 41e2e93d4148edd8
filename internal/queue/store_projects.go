package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"toksmith/internal/services"
)

// NewProjectParams describes a project to create.
type NewProjectParams struct {
	SourceURL   string
	SourceType  string
	Status      ProjectStatus
	Title       string
	Resolution  string
	ScrapedJSON string
}

// NewProject inserts a project. Status defaults to pending.
func (s *Store) NewProject(ctx context.Context, params NewProjectParams) (*Project, error) {
	if strings.TrimSpace(params.SourceType) == "" {
		return nil, services.Wrap(services.ErrValidation, "queue", "new project", "source type is required", nil)
	}
	status := params.Status
	if status == "" {
		status = ProjectPending
	}
	resolution := strings.TrimSpace(params.Resolution)
	if resolution == "" {
		resolution = defaultResolution
	}
	now := s.timestamp()
	p := &Project{
		ID:          uuid.NewString(),
		SourceURL:   strings.TrimSpace(params.SourceURL),
		SourceType:  params.SourceType,
		Status:      status,
		Title:       strings.TrimSpace(params.Title),
		Resolution:  resolution,
		ScrapedJSON: params.ScrapedJSON,
		Version:     1,
	}
	if _, err := s.exec(ctx,
		`INSERT INTO projects (id, source_url, source_type, status, title, resolution, scraped_data, version, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.SourceURL, p.SourceType, p.Status, nullableString(p.Title), p.Resolution,
		nullableString(p.ScrapedJSON), p.Version, now, now,
	); err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	p.CreatedAt, _ = parseTimeString(now)
	p.UpdatedAt = p.CreatedAt
	return p, nil
}

// GetProject fetches a project by id.
func (s *Store) GetProject(ctx context.Context, id string) (*Project, error) {
	var p *Project
	err := s.queryRow(ctx, func(row *sql.Row) error {
		var scanErr error
		p, scanErr = scanProject(row)
		return scanErr
	}, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, strings.TrimSpace(id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "queue", "get project", fmt.Sprintf("project %s not found", id), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// ListProjects returns projects newest first, optionally filtered by status.
func (s *Store) ListProjects(ctx context.Context, statuses ...ProjectStatus) ([]*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	args := statusArgs(statuses)
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + makePlaceholders(len(statuses)) + `)`
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

// UpdateProject writes p back if nobody else changed it since it was read.
// A stale Version or a backwards status change fails with services.ErrConflict.
// On success p.Version and p.UpdatedAt are refreshed.
func (s *Store) UpdateProject(ctx context.Context, p *Project) error {
	if p == nil {
		return errors.New("update project: nil project")
	}
	current, err := s.GetProject(ctx, p.ID)
	if err != nil {
		return err
	}
	if current.Version != p.Version {
		return services.Wrap(services.ErrConflict, "queue", "update project",
			fmt.Sprintf("project %s changed concurrently (version %d, have %d)", p.ID, current.Version, p.Version), nil)
	}
	if !current.Status.CanTransition(p.Status) {
		return services.Wrap(services.ErrConflict, "queue", "update project",
			fmt.Sprintf("project %s cannot move from %s to %s", p.ID, current.Status, p.Status), nil)
	}

	now := s.timestamp()
	res, err := s.exec(ctx,
		`UPDATE projects
         SET status = ?, title = ?, resolution = ?, scraped_data = ?, script_data = ?, last_error = ?,
             version = version + 1, updated_at = ?
         WHERE id = ? AND version = ? AND status = ?`,
		p.Status, nullableString(p.Title), p.Resolution, nullableString(p.ScrapedJSON),
		nullableString(p.ScriptJSON), nullableString(p.LastError), now,
		p.ID, p.Version, current.Status,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if affected != 1 {
		return services.Wrap(services.ErrConflict, "queue", "update project",
			fmt.Sprintf("project %s changed concurrently", p.ID), nil)
	}
	p.Version++
	p.UpdatedAt, _ = parseTimeString(now)
	return nil
}

// ProjectStats returns project counts per status.
func (s *Store) ProjectStats(ctx context.Context) ([]StatusCount, error) {
	return s.stats(ctx, `SELECT status, COUNT(1) FROM projects GROUP BY status ORDER BY status`)
}
