// Package logging assembles structured slog loggers and attribute helpers used
// across filmtrack services.
//
// It owns the console and JSON handlers, the rotating log file sink, and the
// session handler that stamps every record with the process session id. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits records with the same keys (component, event_type, error_hint,
// impact) and the same routing.
package logging
