package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"toksmith/internal/project"
	"toksmith/internal/queue"
	"toksmith/internal/services"
)

func (s *server) initProject(c *gin.Context) {
	var req ProjectInitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest("project", "invalid init request", err))
		return
	}
	source, err := optionalSource(req.Source)
	if err != nil {
		s.fail(c, err)
		return
	}
	opts := project.InitOptions{Source: source, Title: req.Title, Resolution: req.Resolution}

	ctx, cancel := s.requestContext(c)
	defer cancel()

	var p *queue.Project
	if strings.TrimSpace(req.URL) == "" && req.Script != "" {
		p, err = s.deps.Projects.InitFromScript(ctx, req.Script, opts)
	} else {
		p, err = s.deps.Projects.Init(ctx, req.URL, opts)
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, FromProject(p))
}

func (s *server) confirmProject(c *gin.Context) {
	ctx, cancel := s.requestContext(c)
	defer cancel()
	p, err := s.deps.Projects.Confirm(ctx, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, FromProject(p))
}

func (s *server) generateAudio(c *gin.Context) {
	ctx, cancel := s.requestContext(c)
	defer cancel()
	p, result, err := s.deps.Projects.GenerateAudio(ctx, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, AudioResponse{Project: FromProject(p), Result: result})
}

func (s *server) getProject(c *gin.Context) {
	p, err := s.deps.Projects.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, FromProject(p))
}

func (s *server) listProjects(c *gin.Context) {
	var statuses []queue.ProjectStatus
	for _, value := range queryList(c, "status") {
		status, ok := queue.ParseProjectStatus(value)
		if !ok {
			s.fail(c, services.Wrap(services.ErrValidation, "project", "list projects", "unknown project status "+value, nil))
			return
		}
		statuses = append(statuses, status)
	}
	projects, err := s.deps.Projects.List(c.Request.Context(), statuses...)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": FromProjects(projects)})
}
