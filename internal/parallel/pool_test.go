// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPool_Create(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}
	if !pool.IsRunning() {
		t.Error("pool should be running after creation")
	}
}

func TestWorkerPool_DefaultWorkers(t *testing.T) {
	for _, n := range []int{0, -3} {
		pool := NewWorkerPool(n)
		if pool.Workers() != runtime.GOMAXPROCS(0) {
			t.Errorf("NewWorkerPool(%d).Workers() = %d, want GOMAXPROCS", n, pool.Workers())
		}
		pool.Close()
	}
}

func TestWorkerPool_ExecuteAll(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter atomic.Int64
	work := make([]func(), 100)
	for i := range work {
		work[i] = func() { counter.Add(1) }
	}
	pool.ExecuteAll(work)

	if counter.Load() != 100 {
		t.Errorf("counter = %d, want 100", counter.Load())
	}
}

func TestWorkerPool_ExecuteAll_Empty(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	pool.ExecuteAll(nil)
	pool.ExecuteAll([]func(){})
}

func TestWorkerPool_ExecuteAfterClose(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()
	pool.Close()

	if pool.IsRunning() {
		t.Fatal("pool should not be running after Close")
	}

	ran := false
	pool.ExecuteAll([]func(){func() { ran = true }})
	if !ran {
		t.Error("closed pool should run work inline")
	}
}

func TestWorkerPool_CloseDuringExecuteAll(t *testing.T) {
	for range 50 {
		pool := NewWorkerPool(4)

		var counter atomic.Int64
		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				work := make([]func(), 64)
				for i := range work {
					work[i] = func() { counter.Add(1) }
				}
				pool.ExecuteAll(work)
			}()
		}
		go pool.Close()

		finished := make(chan struct{})
		go func() {
			wg.Wait()
			close(finished)
		}()
		select {
		case <-finished:
		case <-time.After(10 * time.Second):
			t.Fatal("ExecuteAll did not return after a concurrent Close")
		}
		if got := counter.Load(); got != 8*64 {
			t.Fatalf("counter = %d, want %d", got, 8*64)
		}
		pool.Close()
	}
}

func TestWorkerPool_DispatchCoversGrid(t *testing.T) {
	tests := []struct {
		name    string
		gx, gy  uint32
		workers int
	}{
		{"1x1", 1, 1, 1},
		{"odd grid", 7, 5, 3},
		{"wide", 64, 2, 4},
		{"tall", 2, 64, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := NewWorkerPool(tt.workers)
			defer pool.Close()

			var mu sync.Mutex
			seen := make(map[[2]uint32]int)
			err := pool.Dispatch(context.Background(), tt.gx, tt.gy, func(x, y uint32) {
				mu.Lock()
				seen[[2]uint32{x, y}]++
				mu.Unlock()
			})
			if err != nil {
				t.Fatalf("Dispatch: %v", err)
			}
			if len(seen) != int(tt.gx*tt.gy) {
				t.Fatalf("visited %d workgroups, want %d", len(seen), tt.gx*tt.gy)
			}
			for k, n := range seen {
				if n != 1 {
					t.Errorf("workgroup %v ran %d times", k, n)
				}
				if k[0] >= tt.gx || k[1] >= tt.gy {
					t.Errorf("workgroup %v outside grid", k)
				}
			}
		})
	}
}

func TestWorkerPool_DispatchEmptyGrid(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	calls := 0
	if err := pool.Dispatch(context.Background(), 0, 4, func(_, _ uint32) { calls++ }); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}

func TestWorkerPool_DispatchCancelled(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	err := pool.Dispatch(ctx, 4, 4, func(_, _ uint32) { calls.Add(1) })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if calls.Load() != 0 {
		t.Errorf("calls = %d after cancellation, want 0", calls.Load())
	}
}

func BenchmarkWorkerPool_Dispatch(b *testing.B) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	var sink atomic.Uint32
	ctx := context.Background()
	b.ResetTimer()
	for range b.N {
		_ = pool.Dispatch(ctx, 64, 64, func(x, y uint32) { sink.Add(x ^ y) })
	}
}
