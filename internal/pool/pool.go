// Package pool provides the bounded worker pool shared by all hazard
// calculations. Callers submit a unit of work and receive a Handle that
// resolves to the task's eventual error.
package pool

import (
	"context"
	"sync"

	"github.com/pmpowers-usgs/nshmp-sha/internal/ctxlog"
)

// Task is a single unit of work executed on one of the pool's workers.
type Task func(ctx context.Context) error

// Handle tracks the eventual completion of a submitted Task.
type Handle struct {
	done chan struct{}
	err  error
}

// Wait blocks until the task completes, returning its error, or until ctx is
// done. A ctx error does not stop the task; it keeps running on its worker.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done returns a channel that is closed when the task has completed.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

type submission struct {
	ctx    context.Context
	task   Task
	handle *Handle
}

// Pool executes submitted tasks on a fixed number of workers. A Pool is
// shared freely across concurrent calculations; bounding the worker count is
// the only backpressure mechanism the calculation layer relies on.
type Pool struct {
	tasks     chan submission
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New starts a pool with the given number of workers. A count below one is
// raised to one.
func New(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{tasks: make(chan submission)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(i)
	}
	return p
}

// worker is the core processing loop for a single concurrent worker.
func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for s := range p.tasks {
		logger := ctxlog.FromContext(s.ctx)
		logger.Debug("Worker picked up task.", "workerID", id)
		s.handle.err = s.task(s.ctx)
		close(s.handle.done)
	}
}

// Submit enqueues a task and returns its Handle. Submit blocks while every
// worker is busy. Submitting to a closed pool panics.
func (p *Pool) Submit(ctx context.Context, task Task) *Handle {
	h := &Handle{done: make(chan struct{})}
	p.tasks <- submission{ctx: ctx, task: task, handle: h}
	return h
}

// Close stops accepting tasks and waits for in-flight tasks to finish.
func (p *Pool) Close() {
	p.closeOnce.Do(func() { close(p.tasks) })
	p.wg.Wait()
}
