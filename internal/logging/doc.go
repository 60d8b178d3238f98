// Package logging builds the application's slog loggers. The console handler
// prints a compact single-line format with the component folded into the
// prefix; the JSON handler emits machine-readable records for log shipping.
package logging
