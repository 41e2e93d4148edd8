// Package logging builds the slog loggers used across toksmith.
//
// Two handlers are available: a compact console format for operators (with
// level colours when attached to a terminal) and JSON for log shipping.
// Helpers in this package standardize field names so job, project, stage,
// and correlation identifiers read the same in every component.
package logging
