// Package preflight provides readiness checks for the filesystem paths and
// external services Toksmith depends on.
//
// `toksmith doctor` runs RunAll and prints one line per Result. Checks for
// optional integrations (NATS) are skipped when the integration is not
// configured. Network checks use short timeouts and a single attempt.
package preflight
