// Package worker provides a goroutine pool for running independent jobs.
//
// The batch runner uses it to generate several workload files at once;
// every job is one complete, single-threaded generation run.
//
//	pool := worker.NewPool(4)
//	pool.Start(ctx)
//	pool.Submit(worker.Job{Name: "a", Run: func(ctx context.Context) error { ... }})
//	err := pool.Wait() // joined errors of every failed job
//
// Submit blocks while the queue is full. Jobs still queued when the
// context is cancelled are not run and report the context error.
package worker
