// Package daemon coordinates the long-running Toksmith process.
//
// It owns the single-instance flock, starts the scrape worker pool, and serves
// the HTTP router on the configured bind address. Shutdown cancels workers,
// drains in-flight requests, and releases the lock. Wiring of concrete
// services lives in daemonrun; this package only drives the lifecycle.
package daemon
