package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toksmith_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "toksmith_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	SourceFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toksmith_source_fetches_total",
			Help: "Source adapter fetches by outcome",
		},
		[]string{"source", "outcome"},
	)

	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "toksmith_source_fetch_duration_seconds",
			Help:    "Source adapter fetch latency",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"source"},
	)

	JobTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toksmith_job_transitions_total",
			Help: "Scrape job state transitions",
		},
		[]string{"status"},
	)

	ScriptGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toksmith_script_generations_total",
			Help: "Script generation attempts by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	AudioLinesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toksmith_audio_lines_total",
			Help: "Dialogue lines processed by the audio synthesizer",
		},
		[]string{"outcome"},
	)

	ProjectStagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toksmith_project_stages_total",
			Help: "Project stage completions and failures",
		},
		[]string{"stage", "outcome"},
	)

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "toksmith_events_published_total",
			Help: "NATS events published by subject",
		},
		[]string{"subject", "status"},
	)

	WorkersBusy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "toksmith_workers_busy",
			Help: "Scrape workers currently processing a job",
		},
	)

	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "toksmith_build_info",
			Help: "Build information",
		},
		[]string{"version"},
	)
)

// Init records static build labels.
func Init(version string) {
	BuildInfo.WithLabelValues(version).Set(1)
}

// ObserveFetch records one adapter fetch.
func ObserveFetch(source string, started time.Time, err error) {
	SourceFetchDuration.WithLabelValues(source).Observe(time.Since(started).Seconds())
	SourceFetchesTotal.WithLabelValues(source, outcome(err)).Inc()
}

// ObserveStage records a project stage result.
func ObserveStage(stage string, err error) {
	ProjectStagesTotal.WithLabelValues(stage, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
