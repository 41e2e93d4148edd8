package queue

import (
	"strings"
	"time"
)

// JobStatus represents the lifecycle of a scrape job.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// DaemonStopReason is recorded on jobs abandoned by a stopped process.
const DaemonStopReason = "Daemon stopped"

var jobStatuses = []JobStatus{JobPending, JobProcessing, JobCompleted, JobFailed}

// JobStatuses lists every job status.
func JobStatuses() []JobStatus {
	out := make([]JobStatus, len(jobStatuses))
	copy(out, jobStatuses)
	return out
}

// ParseJobStatus maps user input onto a job status.
func ParseJobStatus(value string) (JobStatus, bool) {
	normalized := JobStatus(strings.ToLower(strings.TrimSpace(value)))
	for _, s := range jobStatuses {
		if s == normalized {
			return s, true
		}
	}
	return "", false
}

// IsTerminal reports whether no further transition is possible.
func (s JobStatus) IsTerminal() bool {
	return s == JobCompleted || s == JobFailed
}

// Job is a persisted scrape request.
type Job struct {
	ID           string
	Source       string
	URL          string
	Status       JobStatus
	ScrapedJSON  string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProjectStatus represents the lifecycle of a video project.
type ProjectStatus string

const (
	ProjectPending         ProjectStatus = "pending"
	ProjectScraped         ProjectStatus = "scraped"
	ProjectScriptGenerated ProjectStatus = "script_generated"
	ProjectAudioGenerated  ProjectStatus = "audio_generated"
	ProjectVideoRendering  ProjectStatus = "video_rendering"
	ProjectCompleted       ProjectStatus = "completed"
	ProjectFailed          ProjectStatus = "failed"
)

// projectOrder ranks forward progress. FAILED sits outside the ranking.
var projectOrder = map[ProjectStatus]int{
	ProjectPending:         0,
	ProjectScraped:         1,
	ProjectScriptGenerated: 2,
	ProjectAudioGenerated:  3,
	ProjectVideoRendering:  4,
	ProjectCompleted:       5,
}

// ProjectStatuses lists every project status in lifecycle order.
func ProjectStatuses() []ProjectStatus {
	return []ProjectStatus{
		ProjectPending,
		ProjectScraped,
		ProjectScriptGenerated,
		ProjectAudioGenerated,
		ProjectVideoRendering,
		ProjectCompleted,
		ProjectFailed,
	}
}

// ParseProjectStatus maps user input onto a project status.
func ParseProjectStatus(value string) (ProjectStatus, bool) {
	normalized := ProjectStatus(strings.ToLower(strings.TrimSpace(value)))
	for _, s := range ProjectStatuses() {
		if s == normalized {
			return s, true
		}
	}
	return "", false
}

// IsTerminal reports whether the project can no longer change.
func (s ProjectStatus) IsTerminal() bool {
	return s == ProjectCompleted || s == ProjectFailed
}

// CanTransition reports whether moving from s to next keeps the lifecycle
// monotonic. Staying in place is allowed; FAILED is reachable from any
// non-terminal state.
func (s ProjectStatus) CanTransition(next ProjectStatus) bool {
	if s == next {
		return true
	}
	if s.IsTerminal() {
		return false
	}
	if next == ProjectFailed {
		return true
	}
	from, okFrom := projectOrder[s]
	to, okTo := projectOrder[next]
	return okFrom && okTo && to > from
}

// Project is a persisted video project.
type Project struct {
	ID          string
	SourceURL   string
	SourceType  string
	Status      ProjectStatus
	Title       string
	Resolution  string
	ScrapedJSON string
	ScriptJSON  string
	LastError   string
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StatusCount is a status histogram entry.
type StatusCount struct {
	Status string
	Count  int
}
