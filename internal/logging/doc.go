// Package logging builds the slog loggers used across reelpick.
//
// Output format (console or json) and level come from configuration. Batch
// commands log to stderr so stdout stays reserved for machine-readable
// output such as execution plans and manifests.
package logging
