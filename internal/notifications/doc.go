// Package notifications publishes pipeline events to NATS.
//
// Subjects are derived from the configured prefix (toksmith by default):
// <prefix>.jobs.completed, <prefix>.jobs.failed and <prefix>.projects.stage.
// When no NATS URL is configured a no-op Service is returned, so workflow
// code depends only on the Service interface and never checks for nil.
package notifications
