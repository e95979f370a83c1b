// Package workload synthesizes key-value benchmark workloads.
//
// A run writes a fixed header, a preamble of WRITE commands seeding half of
// the key namespace, the "end preamble" sentinel, and then exactly NumOps
// main commands:
//
//	operation | key | value
//	w key17 value482910345
//	...
//	end preamble
//	r key17
//	d key3
//
// Each main step samples a command kind with READ weighted by the target
// read percentage (WRITE and DELETE split the rest) and redraws until the
// command is feasible: deletes need a live key, reads need a live key whose
// last write is at most MaxReadDistance operations old. After every main
// command the read-ratio corrector injects extra reads while the running
// ratio is at or below the target. Each injected read probes at most five
// random keys and otherwise falls back to the last written key, which may
// be outside the distance window.
//
// Generation is deterministic for a given seed:
//
//	g, err := workload.New(params, workload.WithSeed(42))
//	snap, err := g.Run(ctx, sink)
package workload
