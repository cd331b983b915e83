// Package services defines shared utilities consumed by the extraction
// stages and the batch runner.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, subjects, row numbers, and stage
//     names for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent row outcomes.
//
// Use these helpers when wiring new stage logic so error classification and
// log shape stay uniform across the pipeline.
package services
