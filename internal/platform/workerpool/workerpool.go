// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package workerpool provides a bounded pool of goroutines for CPU-bound work.

It keeps expensive computations (password hashing) off the goroutines that
serve HTTP requests. Callers hand a job to the pool and suspend until the
result arrives, the queue rejects the job, or their context ends.

Semantics:

  - Bounded: at most Workers jobs run at once, at most Queue jobs wait.
  - Non-blocking admission: a full queue fails fast with [ErrPoolExhausted].
  - Detached execution: a caller that gives up does not cancel its running job,
    the result is simply discarded.
*/
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrPoolExhausted is returned when every worker is busy and the queue is full.
	ErrPoolExhausted = errors.New("workerpool: pool exhausted")

	// ErrPoolClosed is returned when a job is submitted after [Pool.Close].
	ErrPoolClosed = errors.New("workerpool: pool closed")
)

// Pool runs submitted jobs on a fixed set of goroutines.
//
// Admission is counted by slots, which holds one token per job that is
// running or waiting. jobs has the same capacity, so a job that won a slot
// is handed over without blocking.
type Pool struct {
	jobs   chan func()
	slots  chan struct{}
	group  errgroup.Group
	mu     sync.RWMutex
	closed bool
}

// New starts a pool with the given number of workers and queue capacity.
// A non-positive worker count is raised to one.
func New(workers, queue int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queue < 0 {
		queue = 0
	}

	capacity := workers + queue
	pool := &Pool{
		jobs:  make(chan func(), capacity),
		slots: make(chan struct{}, capacity),
	}

	for range workers {
		pool.group.Go(func() error {
			for job := range pool.jobs {
				job()
			}
			return nil
		})
	}

	return pool
}

// Close stops accepting jobs, drains the queue, and waits for the workers to exit.
// It is safe to call more than once.
func (pool *Pool) Close() error {
	pool.mu.Lock()
	if !pool.closed {
		pool.closed = true
		close(pool.jobs)
	}
	pool.mu.Unlock()

	return pool.group.Wait()
}

// enqueue admits job without blocking.
func (pool *Pool) enqueue(job func()) error {
	pool.mu.RLock()
	defer pool.mu.RUnlock()

	if pool.closed {
		return ErrPoolClosed
	}

	select {
	case pool.slots <- struct{}{}:
	default:
		return ErrPoolExhausted
	}

	pool.jobs <- job
	return nil
}

// release frees the slot taken by a finished job.
func (pool *Pool) release() {
	<-pool.slots
}

type result[T any] struct {
	value T
	err   error
}

/*
Do runs fn on the pool and waits for its result.

Parameters:
  - ctx: context.Context (bounds the wait, not the job)
  - pool: *Pool
  - fn: func() (T, error)

Returns:
  - T: Value produced by fn
  - error: fn's error, ErrPoolExhausted, ErrPoolClosed, a recovered panic, or ctx.Err()
*/
func Do[T any](ctx context.Context, pool *Pool, fn func() (T, error)) (T, error) {
	var zero T

	if err := ctx.Err(); err != nil {
		return zero, err
	}

	// Buffered so a worker never blocks on a caller that already left.
	done := make(chan result[T], 1)

	// The slot is freed before the result is delivered, so a caller that
	// submits again right after Do returns sees the capacity it left.
	job := func() {
		outcome := run(fn)
		pool.release()
		done <- outcome
	}

	if err := pool.enqueue(job); err != nil {
		return zero, err
	}

	select {
	case outcome := <-done:
		return outcome.value, outcome.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// run calls fn and turns a panic into an error.
func run[T any](fn func() (T, error)) (outcome result[T]) {
	defer func() {
		if recovered := recover(); recovered != nil {
			outcome = result[T]{err: fmt.Errorf("workerpool: job panicked: %v", recovered)}
		}
	}()
	value, err := fn()
	return result[T]{value: value, err: err}
}
