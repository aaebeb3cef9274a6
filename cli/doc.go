// Package cli contains the command line interface for pyt.
//
// # Usage
//
// The CLI provides logging and profiling configuration:
//
//	pyt --log-level=debug --pprof-mode=cpu template.pyt
//
// # Commands
//
//   - render (default): compile template units and write rendered
//     output to the configured sink
//   - check: parse, rewrite, and compile units without executing them,
//     reporting diagnostics (including import cycle hazards)
//   - repl: evaluate template expressions interactively against a
//     persistent shared namespace
//   - init: write a default configuration file from current flag values
//
// # Configuration
//
// Flags may be persisted in a YAML configuration file under the user
// configuration directory. Flag names with hyphens (e.g., "log-level")
// may use underscores in the file (e.g., "log_level"). Command-line
// flags override configuration file values.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu,
//     goroutine, heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory
package cli
