// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics
