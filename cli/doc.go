// Package cli contains the command line interface for nia.
//
// # Usage
//
// The CLI provides logging and profiling configuration:
//
//	nia --log-level=debug --pprof-mode=cpu
//
// # Subcommands
//
//   - init: write a default configuration file capturing current flag values
//   - fmt: evaluate source forms and print results as native nia syntax,
//     JSON, or YAML
//   - eval: load a source file and call one named top-level definition with
//     arguments read as nia literals
//   - repl: start an interactive read-eval-print loop
//
// # Configuration Loader
//
// The package includes a Kong configuration loader ([resolve]) that
// evaluates a nia script and reads its top-level "config" variable (an
// object literal) as Kong flag defaults.
//
// Example configuration file:
//
//	(defv config {:log-level "debug" :log-format "json" :log-pretty #t})
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-callsite: Include caller information in log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o nia .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default: ~/.cache/nia/pprof)
//
// # Examples
//
//	# Debug logging with CPU profiling
//	nia --log-level=debug --pprof-mode=cpu eval -f source.nia main
//
//	# Text format with heap profiling
//	nia --log-format=text --pprof-mode=heap fmt source.nia
//
//	# Custom profile directory
//	nia --pprof-mode=allocs --pprof-dir=/tmp/profiles repl
package cli
