// Package services defines shared utilities consumed by the pipeline stages and
// the generation backends.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, episode numbers, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures as
//     backend, validation, or configuration problems.
//
// Use these helpers when wiring new stage logic so operational behaviour (error
// handling, observability, retries) stays uniform across the pipeline.
package services
