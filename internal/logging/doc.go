// Package logging builds slog loggers for the daemon and CLI.
//
// Two formats are supported: a compact console handler for interactive use
// and a JSON handler for machine consumption. Output fans out to stdout and
// the daemon log file. Helpers standardize attribute keys (component, game
// and job identifiers, source tags) so log lines stay greppable across
// packages.
package logging
