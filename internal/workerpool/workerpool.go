// Package workerpool implements the opaque submit/drain collaborator
// spec.md §4.3 describes: a fixed pool of nproc worker slots, tasks
// submitted between drains all run exactly once, and drain is a
// barrier returning only once every submitted task has completed.
package workerpool

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Task is a unit of work submitted to the pool. threadIndex is in
// [0, nproc) and is exclusive to the task for its duration — no two
// concurrently running tasks observe the same index.
type Task func(threadIndex int) error

// Pool is a fixed-size worker pool built on golang.org/x/sync's
// errgroup (structured concurrency, first-error propagation), a
// weighted semaphore (bounding concurrency to nproc), and a
// mutex-guarded free list handing out thread indices.
type Pool struct {
	nproc  int
	sem    *semaphore.Weighted
	parent context.Context
	cancel context.CancelFunc

	group *errgroup.Group
	ctx   context.Context

	mu        sync.Mutex
	freeSlots []int
}

// New returns a pool of nproc worker slots. ctx bounds the whole
// pool's lifetime; canceling it (directly, or via Shutdown) causes any
// task still waiting for a free slot to abort with ctx.Err() instead
// of starting.
func New(ctx context.Context, nproc int) *Pool {
	if nproc < 1 {
		nproc = 1
	}
	parent, cancel := context.WithCancel(ctx)
	p := &Pool{
		nproc:     nproc,
		sem:       semaphore.NewWeighted(int64(nproc)),
		parent:    parent,
		cancel:    cancel,
		freeSlots: make([]int, nproc),
	}
	for i := 0; i < nproc; i++ {
		p.freeSlots[i] = i
	}
	p.resetGroup()
	return p
}

// NProc returns the pool's fixed worker count.
func (p *Pool) NProc() int { return p.nproc }

func (p *Pool) resetGroup() {
	p.group, p.ctx = errgroup.WithContext(p.parent)
}

func (p *Pool) acquireSlot() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx := p.freeSlots[len(p.freeSlots)-1]
	p.freeSlots = p.freeSlots[:len(p.freeSlots)-1]
	return idx
}

func (p *Pool) releaseSlot(idx int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.freeSlots = append(p.freeSlots, idx)
}

// Submit enqueues task to run on some worker goroutine. Tasks
// submitted between Drain calls all run, each exactly once; there is
// no ordering guarantee between concurrently running tasks.
func (p *Pool) Submit(task Task) {
	p.group.Go(func() error {
		if err := p.sem.Acquire(p.parent, 1); err != nil {
			return err
		}
		idx := p.acquireSlot()
		defer func() {
			p.releaseSlot(idx)
			p.sem.Release(1)
		}()
		return task(idx)
	})
}

// Drain blocks until every task submitted since the last Drain (or
// pool creation) has completed, and returns the first error any of
// them returned, if any. The pool is ready to accept further Submits
// for a new round immediately after Drain returns.
func (p *Pool) Drain() error {
	err := p.group.Wait()
	p.resetGroup()
	return err
}

// Shutdown cancels the pool's context. Tasks already running are not
// interrupted, but any task still waiting on a free slot aborts
// immediately instead of starting — the "drop pending tasks" behavior
// spec.md §5 attributes to fini_workers(force). Callers that want to
// wait for already-started tasks to finish should call Drain after
// Shutdown.
func (p *Pool) Shutdown() {
	p.cancel()
}
