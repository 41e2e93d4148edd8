// Package api serves the HTTP surface with gin.
//
// Routes live under /api/v1 plus /health and the Prometheus endpoint. Handlers
// translate internal models into snake_case transport types (JobView,
// ProjectView) and map error markers from the services package onto HTTP
// status codes through one table, so every route reports failures the same
// way: {"error": message, "kind": kind}.
//
// URL scrapes are queued and answered with a job id; direct script text is
// answered synchronously. The batch endpoint fetches inline and returns only
// the items that succeeded.
package api
