// Package logging assembles structured slog loggers and formatting helpers used
// across dramagen.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with run IDs, stages, and episode numbers. When a log directory is
// configured, records are teed to a JSON log file alongside the console.
// A no-op logger is provided for tests and wiring code that cannot fail.
package logging
