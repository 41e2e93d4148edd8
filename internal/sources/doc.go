// Package sources resolves content URLs to adapters and fetches them.
//
// Each supported site lives in its own sub-package (reddit, twitter,
// stackoverflow) implementing Adapter. The Registry picks an adapter either
// from an explicit source or by testing URL patterns in a fixed order, then
// runs the fetch under a timeout. FetchMany fans out a batch with bounded
// parallelism and tolerates individual failures.
package sources
