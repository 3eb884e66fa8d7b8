// Package logging assembles structured slog loggers and formatting helpers used
// across dupicheck.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, tags every record of an invocation with a session id, and exposes
// a no-op logger for tests and wiring code that cannot fail.
//
// Per-item failures in the pipeline are reported through WarnWithContext so
// each warning carries an event_type, an error_hint, and an impact.
package logging
