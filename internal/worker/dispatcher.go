// Package worker runs session pipelines: tasks for the same key run one at a
// time in submission order, tasks for different keys run concurrently up to a
// global limit.
package worker

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Task is one unit of work for a key.
type Task func(ctx context.Context)

// Dispatcher keeps a FIFO per key and one goroutine per busy key.
type Dispatcher[K comparable] struct {
	ctx    context.Context
	sem    *semaphore.Weighted
	mu     sync.Mutex
	queues map[K][]Task
	active int
	wg     sync.WaitGroup
}

// New returns a dispatcher whose tasks receive ctx and of which at most
// maxWorkers run at once.
func New[K comparable](ctx context.Context, maxWorkers int) *Dispatcher[K] {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &Dispatcher[K]{
		ctx:    ctx,
		sem:    semaphore.NewWeighted(int64(maxWorkers)),
		queues: make(map[K][]Task),
	}
}

// Submit queues task behind earlier tasks for key and returns immediately.
func (d *Dispatcher[K]) Submit(key K, task Task) {
	d.mu.Lock()
	q, busy := d.queues[key]
	d.queues[key] = append(q, task)
	if !busy {
		d.wg.Add(1)
		go d.drain(key)
	}
	d.mu.Unlock()
}

func (d *Dispatcher[K]) drain(key K) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		q := d.queues[key]
		if len(q) == 0 {
			delete(d.queues, key)
			d.mu.Unlock()
			return
		}
		task := q[0]
		q[0] = nil
		d.queues[key] = q[1:]
		d.mu.Unlock()

		if err := d.sem.Acquire(d.ctx, 1); err != nil {
			slog.Warn("task dropped", "key", key, "error", err)
			continue
		}
		d.run(key, task)
		d.sem.Release(1)
	}
}

func (d *Dispatcher[K]) run(key K, task Task) {
	d.mu.Lock()
	d.active++
	d.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic recovered in task",
				"key", key,
				"panic", r,
				"stack", string(debug.Stack()),
			)
		}
		d.mu.Lock()
		d.active--
		d.mu.Unlock()
	}()

	task(d.ctx)
}

// Wait blocks until every queued task has run or been dropped.
func (d *Dispatcher[K]) Wait() {
	d.wg.Wait()
}

// Stats reports keys with queued or running work and tasks currently running.
func (d *Dispatcher[K]) Stats() (keys, running int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queues), d.active
}
