// Package metrics collects statistics about a workload generation run.
//
// The generator records every emitted command by kind, every read injected
// by the read-ratio corrector (and whether it used the last-written-key
// fallback), and every infeasible sample that had to be redrawn.
//
//	m := metrics.New()
//	m.RecordWrite()
//	m.RecordInjectedRead(false)
//	snap := m.Snapshot()
//	fmt.Println(snap.Report("balanced"))
//
// Counters are atomic so that snapshots can be taken from another goroutine
// (progress logging, the workload server) while a run is in flight.
package metrics
