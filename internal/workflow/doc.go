// Package workflow runs the scrape job worker pool.
//
// Enqueue resolves a source before anything is written, inserts a pending
// job, and wakes the pool. Each worker claims the oldest pending job with a
// single conditional UPDATE, fetches it through the source registry, and
// records either the scraped payload or the error message. There is no
// automatic retry; a failed job stays failed until someone enqueues it again.
//
// On Start the manager fails jobs left processing by a previous process, since
// nothing else will ever finish them. Completion and failure are published as
// notifications events when a broker is configured.
package workflow
