package api

import (
	"time"

	"toksmith/internal/content"
	"toksmith/internal/project"
	"toksmith/internal/queue"
	"toksmith/internal/workflow"
)

// FromJob converts a queue job into its transport form.
func FromJob(job *queue.Job) JobView {
	view := JobView{
		JobID:        job.ID,
		Source:       job.Source,
		URL:          job.URL,
		Status:       string(job.Status),
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    formatTime(job.CreatedAt),
		UpdatedAt:    formatTime(job.UpdatedAt),
	}
	if job.Status == queue.JobCompleted {
		if sc, err := content.Decode([]byte(job.ScrapedJSON)); err == nil {
			view.Data = sc
		}
	}
	return view
}

// FromJobs converts a list of jobs.
func FromJobs(jobs []*queue.Job) []JobView {
	out := make([]JobView, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, FromJob(job))
	}
	return out
}

// FromProject converts a project into its transport form. Unreadable stored
// payloads are omitted rather than failing the request.
func FromProject(p *queue.Project) ProjectView {
	view := ProjectView{
		ID:         p.ID,
		SourceURL:  p.SourceURL,
		SourceType: p.SourceType,
		Status:     string(p.Status),
		Title:      p.Title,
		Resolution: p.Resolution,
		LastError:  p.LastError,
		Version:    p.Version,
		CreatedAt:  formatTime(p.CreatedAt),
		UpdatedAt:  formatTime(p.UpdatedAt),
	}
	if sc, err := content.Decode([]byte(p.ScrapedJSON)); err == nil {
		view.ScrapedData = sc
	}
	if s, err := project.DecodeScript(p.ScriptJSON); err == nil {
		view.ScriptData = s
	}
	return view
}

// FromProjects converts a list of projects.
func FromProjects(projects []*queue.Project) []ProjectView {
	out := make([]ProjectView, 0, len(projects))
	for _, p := range projects {
		out = append(out, FromProject(p))
	}
	return out
}

// FromStatusSummary converts worker pool diagnostics.
func FromStatusSummary(summary workflow.StatusSummary) WorkflowStatus {
	status := WorkflowStatus{
		Running:   summary.Running,
		Workers:   summary.Workers,
		Busy:      summary.Busy,
		LastError: summary.LastError,
		JobStats:  make(map[string]int, len(summary.JobStats)),
	}
	for _, sc := range summary.JobStats {
		status.JobStats[sc.Status] = sc.Count
	}
	if summary.LastJob != nil {
		view := FromJob(summary.LastJob)
		status.LastJob = &view
	}
	return status
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
