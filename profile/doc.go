// Package profile provides optional runtime profiling for the pyt
// application.
//
// The package integrates [github.com/pkg/profile] behind conditional
// compilation: profiling must be enabled at build time with the "pprof"
// build tag. When built without the tag (the default), every operation
// is a no-op with zero runtime overhead.
//
// # Available Profiling Modes
//
// The following modes are supported when built with the pprof tag:
//
//   - allocs:    Memory allocation profiling (all allocations)
//   - block:     Block (synchronization) profiling
//   - clock:     Wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: Goroutine profiling
//   - heap:      Heap memory profiling (live allocations)
//   - mem:       General memory profiling
//   - mutex:     Mutex contention profiling
//   - thread:    Thread creation profiling
//   - trace:     Execution trace profiling
//
// Use [Modes] to retrieve the list programmatically.
//
// # Usage
//
//	cfg := profile.Config(func() (string, string, bool) {
//	    return "cpu", "/tmp/profiles", true
//	})
//	defer cfg.Start().Stop()
//
// Profile files are written to the configured directory with names
// matching the profiling mode (e.g., cpu.pprof, mem.pprof). Analyze
// them with:
//
//	go tool pprof ./pyt /tmp/profiles/cpu.pprof
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
