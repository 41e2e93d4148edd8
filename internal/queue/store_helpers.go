package queue

import (
	"database/sql"
	"errors"
	"strings"
	"time"
)

const (
	jobColumns     = "job_id, source, url, status, scraped_data, error_message, created_at, updated_at"
	projectColumns = "id, source_url, source_type, status, title, resolution, scraped_data, script_data, last_error, version, created_at, updated_at"
)

type rowScanner interface{ Scan(dest ...any) error }

func scanJob(scanner rowScanner) (*Job, error) {
	var (
		job          Job
		status       string
		scraped      sql.NullString
		errorMessage sql.NullString
		createdRaw   string
		updatedRaw   string
	)
	if err := scanner.Scan(
		&job.ID,
		&job.Source,
		&job.URL,
		&status,
		&scraped,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	job.Status = JobStatus(status)
	job.ScrapedJSON = scraped.String
	job.ErrorMessage = errorMessage.String
	job.CreatedAt, _ = parseTimeString(createdRaw)
	job.UpdatedAt, _ = parseTimeString(updatedRaw)
	return &job, nil
}

func scanProject(scanner rowScanner) (*Project, error) {
	var (
		p          Project
		status     string
		title      sql.NullString
		scraped    sql.NullString
		script     sql.NullString
		lastError  sql.NullString
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(
		&p.ID,
		&p.SourceURL,
		&p.SourceType,
		&status,
		&title,
		&p.Resolution,
		&scraped,
		&script,
		&lastError,
		&p.Version,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	p.Status = ProjectStatus(status)
	p.Title = title.String
	p.ScrapedJSON = scraped.String
	p.ScriptJSON = script.String
	p.LastError = lastError.String
	p.CreatedAt, _ = parseTimeString(createdRaw)
	p.UpdatedAt, _ = parseTimeString(updatedRaw)
	return &p, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", count), ",")
}

func statusArgs[S ~string](statuses []S) []any {
	args := make([]any, 0, len(statuses))
	for _, s := range statuses {
		args = append(args, string(s))
	}
	return args
}
