// Package logging configures the process-wide structured logger.
//
// Setup builds a log/slog logger from configuration and installs it as the
// slog default, so packages obtain component loggers with
// slog.Default().With("component", ...). Context helpers carry the request
// ID through handler chains so every log line of a request can be
// correlated.
package logging
