// Package queue persists scrape jobs and video projects in SQLite.
//
// Jobs move pending -> processing -> completed|failed. ClaimNextJob is a single
// conditional UPDATE so concurrent workers, including workers in another
// process sharing the database file, never claim the same job. Completion and
// failure only apply while the job is still processing.
//
// Projects carry an optimistic version counter. UpdateProject rejects stale
// versions with services.ErrConflict and refuses status changes that would move
// a project backwards through its lifecycle.
//
// Busy database errors are retried briefly with backoff; all other errors are
// returned to the caller.
package queue
