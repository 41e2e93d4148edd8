package api

import (
	"toksmith/internal/audio"
	"toksmith/internal/content"
	"toksmith/internal/script"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// JobView describes a scrape job. Data is set only once the job completed.
type JobView struct {
	JobID        string                  `json:"job_id"`
	Source       string                  `json:"source"`
	URL          string                  `json:"url"`
	Status       string                  `json:"status"`
	Data         *content.ScrapedContent `json:"data"`
	ErrorMessage string                  `json:"error_message,omitempty"`
	CreatedAt    string                  `json:"created_at,omitempty"`
	UpdatedAt    string                  `json:"updated_at,omitempty"`
}

// ProjectView describes a video project.
type ProjectView struct {
	ID          string                  `json:"id"`
	SourceURL   string                  `json:"source_url,omitempty"`
	SourceType  string                  `json:"source_type"`
	Status      string                  `json:"status"`
	Title       string                  `json:"title,omitempty"`
	Resolution  string                  `json:"resolution"`
	ScrapedData *content.ScrapedContent `json:"scraped_data"`
	ScriptData  *script.Script          `json:"script_data"`
	LastError   string                  `json:"last_error,omitempty"`
	Version     int64                   `json:"version"`
	CreatedAt   string                  `json:"created_at,omitempty"`
	UpdatedAt   string                  `json:"updated_at,omitempty"`
}

// ScrapeRequest is the body of POST /input/scrape.
type ScrapeRequest struct {
	Source string `json:"source"`
	URL    string `json:"url"`
	Script string `json:"script"`
}

// ScrapeResponse answers POST /input/scrape.
type ScrapeResponse struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	JobID   string                  `json:"job_id,omitempty"`
	Data    *content.ScrapedContent `json:"data,omitempty"`
}

// BatchRequest is the body of POST /input/scrape/batch.
type BatchRequest struct {
	Requests []struct {
		Source string `json:"source"`
		URL    string `json:"url"`
	} `json:"requests"`
}

// BatchResponse carries the successful batch items in request order.
type BatchResponse struct {
	Success   bool                      `json:"success"`
	Requested int                       `json:"requested"`
	Items     []*content.ScrapedContent `json:"items"`
}

// ProjectInitRequest is the body of POST /projects/init.
type ProjectInitRequest struct {
	URL        string `json:"url"`
	Source     string `json:"source"`
	Script     string `json:"script"`
	Title      string `json:"title"`
	Resolution string `json:"resolution"`
}

// AudioResponse answers POST /projects/:id/audio.
type AudioResponse struct {
	Project ProjectView  `json:"project"`
	Result  audio.Result `json:"result"`
}

// WorkflowStatus summarizes the worker pool.
type WorkflowStatus struct {
	Running   bool           `json:"running"`
	Workers   int            `json:"workers"`
	Busy      int            `json:"busy"`
	JobStats  map[string]int `json:"job_stats"`
	LastError string         `json:"last_error,omitempty"`
	LastJob   *JobView       `json:"last_job,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}
