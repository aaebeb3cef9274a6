// Package log provides structured logging for the pyt application.
//
// It wraps [log/slog] with a small [Logger] facade that adds a Trace level,
// selectable output formats (JSON or text), optional colorized pretty
// printing, and functional-option configuration. A package-level default
// logger is available through [Config] and the package-level logging
// functions so that early startup code (flag parsing, config resolution)
// can log before any component has built its own Logger.
package log
