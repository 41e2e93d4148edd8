package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"toksmith/internal/content"
	"toksmith/internal/queue"
	"toksmith/internal/services"
	"toksmith/internal/sources"
)

const maxBatchRequests = 50

func (s *server) listSources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sources": s.deps.Sources.Sources()})
}

func (s *server) scrape(c *gin.Context) {
	var req ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest("input", "invalid scrape request", err))
		return
	}
	source, err := optionalSource(req.Source)
	if err != nil {
		s.fail(c, err)
		return
	}

	url := strings.TrimSpace(req.URL)
	if (source != nil && *source == content.SourceScript) || (source == nil && url == "" && req.Script != "") {
		sc, err := content.FromScript(req.Script, s.logger)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, ScrapeResponse{Success: true, Message: "Script processed successfully", Data: sc})
		return
	}
	if url == "" {
		s.fail(c, services.Wrap(services.ErrValidation, "input", "scrape", "url is required for URL sources", nil))
		return
	}

	job, err := s.deps.Queue.Enqueue(c.Request.Context(), source, url)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ScrapeResponse{Success: true, Message: "Job queued successfully", JobID: job.ID})
}

func (s *server) scrapeBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest("input", "invalid batch request", err))
		return
	}
	switch {
	case len(req.Requests) == 0:
		s.fail(c, services.Wrap(services.ErrValidation, "input", "batch", "requests must not be empty", nil))
		return
	case len(req.Requests) > maxBatchRequests:
		s.fail(c, services.Wrap(services.ErrValidation, "input", "batch", "too many requests in one batch", nil))
		return
	}

	requests := make([]sources.Request, 0, len(req.Requests))
	for _, item := range req.Requests {
		source, err := optionalSource(item.Source)
		if err != nil {
			s.fail(c, err)
			return
		}
		requests = append(requests, sources.Request{Source: source, URL: strings.TrimSpace(item.URL)})
	}

	ctx, cancel := s.requestContext(c)
	defer cancel()
	results := s.deps.Sources.FetchMany(ctx, requests)

	items := make([]*content.ScrapedContent, 0, len(results))
	for _, sc := range results {
		if sc != nil {
			items = append(items, sc)
		}
	}
	c.JSON(http.StatusOK, BatchResponse{Success: true, Requested: len(requests), Items: items})
}

func (s *server) getJob(c *gin.Context) {
	job, err := s.deps.Jobs.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, FromJob(job))
}

func (s *server) listJobs(c *gin.Context) {
	var statuses []queue.JobStatus
	for _, value := range queryList(c, "status") {
		status, ok := queue.ParseJobStatus(value)
		if !ok {
			s.fail(c, services.Wrap(services.ErrValidation, "input", "list jobs", "unknown job status "+value, nil))
			return
		}
		statuses = append(statuses, status)
	}
	jobs, err := s.deps.Jobs.ListJobs(c.Request.Context(), statuses...)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": FromJobs(jobs)})
}

func optionalSource(value string) (*content.Source, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	source, err := content.ParseSource(value)
	if err != nil {
		return nil, err
	}
	return &source, nil
}

// queryList accepts both repeated and comma separated query values.
func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, raw := range c.QueryArray(key) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
