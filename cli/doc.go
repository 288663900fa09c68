// Package cli contains the command line interface for lispy.
//
// # Usage
//
// Without a command, lispy starts the REPL. The other commands evaluate or
// format source files:
//
//	lispy                          # interactive REPL
//	lispy eval prog.scm -e '(main)'
//	echo '(* 6 7)' | lispy eval
//	lispy fmt json prog.scm
//	lispy init --format yaml
//
// Sources named with --source are evaluated into every session before the
// command runs. Names that do not exist relative to the working directory
// are searched for in the --include directories, then in the directories
// listed by LISPY_PATH.
//
// # Configuration Files
//
// Flag defaults are read from the first of these files found in the user
// configuration directory (for example ~/.config/lispy):
//
//   - config.json: a JSON object of flag names to values
//   - config.yaml: a YAML mapping of flag names to values
//   - config: a lispy form of (flag value...) entries
//
// For example:
//
//	(config
//	  (log-level debug)
//	  (max-depth 5000)
//	  (include lib))
//
// Flags given on the command line take precedence. The init command writes
// the current flag values in any of the three formats.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, etc.)
//   - --[no-]log-caller: Include caller information in log output
//   - --[no-]log-pretty: Colorize log output
//
// --trace logs every evaluation step at trace level, filtered by an
// expression over the step's fields:
//
//	lispy --trace 'depth > 3 && kind == "list"' eval prog.scm
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o lispy .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/lispy/pprof)
package cli
