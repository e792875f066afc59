// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"sync"
	"time"

	"crosspair/internal/extract"
	"crosspair/internal/observability"
	"crosspair/internal/pairs"
)

// WorkerPool fans entities across pairing workers. Pair generation is pure
// per entity (the only shared state is the classifier memo, which is
// concurrent-read safe), so scheduling cannot change any entity's pair set,
// only the order entities complete in.
type WorkerPool struct {
	workers  int
	cfg      pairs.Config
	jobs     chan *Job
	results  chan *Result
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	observer *observability.StandardObserver
}

// Job is one entity awaiting pair generation.
type Job struct {
	Entity extract.EntityRecord
}

// Result is the pair set produced for one entity.
type Result struct {
	EntityID  string
	NameCount int
	Pairs     []pairs.NamePair
	Duration  time.Duration
}

// NewWorkerPool creates a pool with a fixed worker count.
func NewWorkerPool(workers int, cfg pairs.Config, observer *observability.StandardObserver) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		workers:  workers,
		cfg:      cfg,
		jobs:     make(chan *Job, workers*2),
		results:  make(chan *Result, workers*2),
		ctx:      ctx,
		cancel:   cancel,
		observer: observer,
	}
}

// Start initializes worker goroutines
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop waits for in-flight jobs, closes the results channel, and releases
// the pool context. Callers must have closed the job queue first.
func (wp *WorkerPool) Stop() {
	wp.wg.Wait()
	close(wp.results)
	wp.cancel()
}

// Submit adds an entity to the queue.
func (wp *WorkerPool) Submit(job *Job) {
	select {
	case wp.jobs <- job:
	case <-wp.ctx.Done():
	}
}

// CloseJobs signals that no further entities will be submitted.
func (wp *WorkerPool) CloseJobs() {
	close(wp.jobs)
}

// Results returns the results channel
func (wp *WorkerPool) Results() <-chan *Result {
	return wp.results
}

// worker processes jobs from the queue
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobs {
		result := wp.processJob(job, id)

		select {
		case wp.results <- result:
		case <-wp.ctx.Done():
			return
		}
	}
}

// processJob generates the capped pair set for a single entity.
func (wp *WorkerPool) processJob(job *Job, workerID int) *Result {
	start := time.Now()

	var finishTiming func(bool, map[string]interface{})
	if wp.observer != nil {
		finishTiming = wp.observer.StartTiming("worker_pool", "generate_pairs", job.Entity.EntityID)
	}

	generated := pairs.GeneratePairs(job.Entity, wp.cfg)
	duration := time.Since(start)

	if wp.observer != nil && wp.observer.DebugObserver != nil {
		wp.observer.DebugObserver.LogEntity(job.Entity.EntityID, len(job.Entity.Names), len(generated))
	}

	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{
			"worker_id":   workerID,
			"name_count":  len(job.Entity.Names),
			"pair_count":  len(generated),
			"duration_ms": duration.Milliseconds(),
		})
	}

	return &Result{
		EntityID:  job.Entity.EntityID,
		NameCount: len(job.Entity.Names),
		Pairs:     generated,
		Duration:  duration,
	}
}
