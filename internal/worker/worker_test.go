package worker

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewWorkerPool(t *testing.T) {
	pool := NewPool(4)
	if pool.NumWorkers() != 4 {
		t.Errorf("expected 4 workers, got %d", pool.NumWorkers())
	}

	// Zero should default to CPU count
	pool2 := NewPool(0)
	if pool2.NumWorkers() != runtime.NumCPU() {
		t.Errorf("expected %d workers, got %d", runtime.NumCPU(), pool2.NumWorkers())
	}
}

func TestWorkerPoolNegativeWorkers(t *testing.T) {
	pool := NewPool(-5)
	if pool.NumWorkers() != runtime.NumCPU() {
		t.Errorf("expected %d workers for negative input, got %d", runtime.NumCPU(), pool.NumWorkers())
	}
}

func TestWorkerPoolRunsAllJobs(t *testing.T) {
	pool := NewPool(2)
	pool.Start(context.Background())
	// Double start should be no-op
	pool.Start(context.Background())

	var counter atomic.Int32
	for range 10 {
		ok := pool.Submit(Job{Run: func(context.Context) error {
			counter.Add(1)
			return nil
		}})
		if !ok {
			t.Fatal("expected Submit to succeed")
		}
	}

	if err := pool.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counter.Load() != 10 {
		t.Errorf("expected 10 jobs completed, got %d", counter.Load())
	}
	if pool.Completed() != 10 {
		t.Errorf("expected Completed() = 10, got %d", pool.Completed())
	}
}

func TestWorkerPoolCollectsErrors(t *testing.T) {
	pool := NewPool(3)
	pool.Start(context.Background())

	errBoom := errors.New("boom")
	pool.Submit(Job{Name: "ok", Run: func(context.Context) error { return nil }})
	pool.Submit(Job{Name: "bad-1", Run: func(context.Context) error { return errBoom }})
	pool.Submit(Job{Name: "bad-2", Run: func(context.Context) error { return errBoom }})

	err := pool.Wait()
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected joined error to wrap errBoom, got %v", err)
	}
	for _, name := range []string{"bad-1", "bad-2"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("expected error to mention %s: %v", name, err)
		}
	}
	if strings.Contains(err.Error(), "ok:") {
		t.Errorf("successful job should not be reported: %v", err)
	}
}

func TestWorkerPoolSubmitAfterWait(t *testing.T) {
	pool := NewPool(2)
	pool.Start(context.Background())
	if err := pool.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Double wait should be no-op
	if err := pool.Wait(); err != nil {
		t.Errorf("unexpected error from second Wait: %v", err)
	}

	if pool.Submit(Job{Run: func(context.Context) error { return nil }}) {
		t.Error("expected Submit to return false after Wait")
	}
}

func TestWorkerPoolSubmitBeforeStart(t *testing.T) {
	pool := NewPool(1)
	if pool.Submit(Job{Run: func(context.Context) error { return nil }}) {
		t.Error("expected Submit to return false before Start")
	}
	if err := pool.Wait(); err != nil {
		t.Errorf("Wait before Start should be a no-op, got %v", err)
	}
}

func TestWorkerPoolContextCancel(t *testing.T) {
	pool := NewPool(1)
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	started := make(chan struct{})
	var ran atomic.Int32

	pool.Submit(Job{Name: "blocking", Run: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}})
	pool.Submit(Job{Name: "queued", Run: func(context.Context) error {
		ran.Add(1)
		return nil
	}})

	<-started
	cancel()

	done := make(chan error, 1)
	go func() { done <- pool.Wait() }()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for pool")
	}

	if ran.Load() != 0 {
		t.Error("queued job should not run after cancellation")
	}
	if pool.Submit(Job{Run: func(context.Context) error { return nil }}) {
		t.Error("expected Submit to return false after cancel")
	}
}

func TestWorkerPoolConcurrentSubmit(t *testing.T) {
	pool := NewPool(4)
	pool.Start(context.Background())

	var counter atomic.Int32
	const numGoroutines = 10
	const jobsPerGoroutine = 50

	var submitted atomic.Int32
	submitted.Store(numGoroutines)

	for range numGoroutines {
		go func() {
			for range jobsPerGoroutine {
				pool.Submit(Job{Run: func(context.Context) error {
					counter.Add(1)
					return nil
				}})
			}
			submitted.Add(-1)
		}()
	}

	for submitted.Load() > 0 {
		time.Sleep(time.Millisecond)
	}

	if err := pool.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := int32(numGoroutines * jobsPerGoroutine)
	if counter.Load() != expected {
		t.Errorf("expected %d jobs completed, got %d", expected, counter.Load())
	}
}
