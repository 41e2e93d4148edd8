package api

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"toksmith/internal/audio"
	"toksmith/internal/config"
	"toksmith/internal/content"
	"toksmith/internal/logging"
	"toksmith/internal/project"
	"toksmith/internal/queue"
	"toksmith/internal/sources"
	"toksmith/internal/workflow"
)

const serviceName = "toksmith"

// SourceCatalog lists sources and runs synchronous fetches.
type SourceCatalog interface {
	Sources() []sources.Descriptor
	FetchMany(ctx context.Context, requests []sources.Request) []*content.ScrapedContent
}

// JobQueue accepts scrape requests for background processing.
type JobQueue interface {
	Enqueue(ctx context.Context, source *content.Source, url string) (*queue.Job, error)
	Status(ctx context.Context) workflow.StatusSummary
}

// JobReader reads persisted jobs.
type JobReader interface {
	GetJob(ctx context.Context, id string) (*queue.Job, error)
	ListJobs(ctx context.Context, statuses ...queue.JobStatus) ([]*queue.Job, error)
}

// Projects drives the project lifecycle.
type Projects interface {
	Init(ctx context.Context, url string, opts project.InitOptions) (*queue.Project, error)
	InitFromScript(ctx context.Context, text string, opts project.InitOptions) (*queue.Project, error)
	Confirm(ctx context.Context, id string) (*queue.Project, error)
	GenerateAudio(ctx context.Context, id string) (*queue.Project, audio.Result, error)
	Get(ctx context.Context, id string) (*queue.Project, error)
	List(ctx context.Context, statuses ...queue.ProjectStatus) ([]*queue.Project, error)
}

// Dependencies wires the router to the rest of the daemon.
type Dependencies struct {
	Config   *config.Config
	Version  string
	Sources  SourceCatalog
	Queue    JobQueue
	Jobs     JobReader
	Projects Projects
	Logger   *slog.Logger
}

type server struct {
	deps    Dependencies
	logger  *slog.Logger
	timeout time.Duration
}

// NewRouter builds the gin engine serving every route.
func NewRouter(deps Dependencies) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &server{deps: deps, logger: logging.NewComponentLogger(logger, "api")}
	if deps.Config != nil && deps.Config.API.RequestTimeout > 0 {
		s.timeout = time.Duration(deps.Config.API.RequestTimeout) * time.Second
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestMetrics(), s.accessLog())
	router.Use(cors.New(corsConfig(deps.Config)))

	router.GET("/health", s.health)
	if deps.Config == nil || deps.Config.Metrics.Enabled {
		router.GET(metricsPath(deps.Config), gin.WrapH(promhttp.Handler()))
	}

	v1 := router.Group("/api/v1")
	v1.GET("/status", s.status)

	input := v1.Group("/input")
	input.GET("/sources", s.listSources)
	input.POST("/scrape", s.scrape)
	input.POST("/scrape/batch", s.scrapeBatch)
	input.GET("/jobs", s.listJobs)
	input.GET("/jobs/:id", s.getJob)

	projects := v1.Group("/projects")
	projects.POST("/init", s.initProject)
	projects.GET("", s.listProjects)
	projects.GET("/:id", s.getProject)
	projects.POST("/:id/confirm", s.confirmProject)
	projects.POST("/:id/audio", s.generateAudio)

	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.DefaultConfig()
	c.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader}
	c.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	c.ExposeHeaders = []string{requestIDHeader}
	var origins []string
	if cfg != nil {
		origins = cfg.API.AllowedOrigins
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	return c
}

func metricsPath(cfg *config.Config) string {
	if cfg == nil || strings.TrimSpace(cfg.Metrics.Path) == "" {
		return "/metrics"
	}
	return cfg.Metrics.Path
}

// requestContext bounds long running handlers with the configured timeout.
func (s *server) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	ctx := c.Request.Context()
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": s.deps.Version,
	})
}

func (s *server) status(c *gin.Context) {
	if s.deps.Queue == nil {
		c.JSON(http.StatusOK, WorkflowStatus{JobStats: map[string]int{}})
		return
	}
	c.JSON(http.StatusOK, FromStatusSummary(s.deps.Queue.Status(c.Request.Context())))
}
