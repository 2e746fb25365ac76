// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package parallel provides the goroutine worker pool that executes compute
// dispatches on the CPU.
//
// A dispatch is a 2D grid of workgroups. The pool runs every workgroup of a
// grid exactly once and returns only after all of them finished, which gives
// CPU dispatches the same "dispatch N+1 observes all writes of dispatch N"
// ordering a GPU compute pass boundary gives.
package parallel

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool is a pool of goroutines executing grid dispatches.
//
// Each worker owns a queue. An idle worker steals from the other queues
// before blocking on its own, which keeps long workgroup rows from
// serializing a dispatch behind one worker.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers int
	queues  []chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool

	// submit is held for reading while ExecuteAll queues work and for
	// writing while Close stops the workers, so no task is queued after
	// the workers drained their queues.
	submit sync.RWMutex
}

// NewWorkerPool creates a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := max(workers*4, 8)

	p := &WorkerPool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), queueSize)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	own := p.queues[id]
	for {
		select {
		case <-p.done:
			p.drain(own)
			return
		case fn := <-own:
			fn()
			continue
		default:
		}

		if fn := p.steal(id); fn != nil {
			fn()
			continue
		}

		select {
		case <-p.done:
			p.drain(own)
			return
		case fn := <-own:
			fn()
		}
	}
}

func (p *WorkerPool) drain(queue chan func()) {
	for {
		select {
		case fn := <-queue:
			fn()
		default:
			return
		}
	}
}

func (p *WorkerPool) steal(id int) func() {
	for i := range p.workers {
		if i == id {
			continue
		}
		select {
		case fn := <-p.queues[i]:
			return fn
		default:
		}
	}
	return nil
}

// ExecuteAll runs every function in work and waits for all of them.
// A closed pool runs the work on the calling goroutine.
func (p *WorkerPool) ExecuteAll(work []func()) {
	if len(work) == 0 {
		return
	}

	p.submit.RLock()
	if !p.running.Load() {
		p.submit.RUnlock()
		for _, fn := range work {
			fn()
		}
		return
	}

	var pending sync.WaitGroup
	pending.Add(len(work))
	for i, fn := range work {
		p.queues[i%p.workers] <- func() {
			defer pending.Done()
			fn()
		}
	}
	p.submit.RUnlock()
	pending.Wait()
}

// Dispatch invokes fn once for every workgroup (x, y) with x < groupsX and
// y < groupsY, and returns when all invocations have completed.
//
// Work is queued one workgroup row at a time. The context is checked before
// each row starts; when it is cancelled the remaining rows are skipped and
// the context error is returned. A cancelled dispatch leaves its buffers in
// an undefined state.
func (p *WorkerPool) Dispatch(ctx context.Context, groupsX, groupsY uint32, fn func(x, y uint32)) error {
	if groupsX == 0 || groupsY == 0 {
		return ctx.Err()
	}

	rows := make([]func(), groupsY)
	for y := range groupsY {
		rows[y] = func() {
			if ctx.Err() != nil {
				return
			}
			for x := range groupsX {
				fn(x, y)
			}
		}
	}
	p.ExecuteAll(rows)
	return ctx.Err()
}

// Close stops the workers after the queued work has run.
// Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	p.submit.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.submit.Unlock()
		return
	}
	close(p.done)
	p.submit.Unlock()
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool still accepts work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}
