// Package profile provides optional runtime profiling of the interpreter
// through [github.com/pkg/profile].
//
// Profiling is compiled in only with the pprof build tag:
//
//	go build -tags pprof ./...
//
// Without the tag, [Modes] is empty and [Profiler.Start] returns a no-op
// handle, so callers never need their own build constraints.
//
// # Modes
//
//   - allocs:    memory allocation profiling (all allocations)
//   - block:     blocking profiling
//   - clock:     wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: goroutine profiling
//   - heap:      heap profiling (live allocations)
//   - mem:       general memory profiling
//   - mutex:     mutex contention profiling
//   - thread:    thread creation profiling
//   - trace:     execution tracing
//
// # Usage
//
//	p := profile.New(profile.WithMode("cpu"), profile.WithPath(dir))
//	defer p.Start().Stop()
//
// Inspect the output with go tool pprof, or go tool trace for trace mode.
package profile
