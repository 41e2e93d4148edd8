// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, project IDs, stage names, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures with errors.Is regardless of which adapter or provider raised
//     them.
//   - GenerationError, which keeps the raw provider payload attached to a
//     failed script generation.
//
// Provider clients live in sub-packages (llm, anthropic, hume).
package services
