// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"io"
	"runtime"
	"time"

	"crosspair/internal/extract"
	"crosspair/internal/observability"
	"crosspair/internal/pairs"
)

// EntitySource is the stream boundary the processor pulls from. Satisfied
// by *extract.Stream.
type EntitySource interface {
	Next() (*extract.EntityRecord, error)
}

// Processor drives the stream-to-pool pipeline: pull one entity, pair it,
// hand the result to the caller, discard it. The whole dataset is never
// materialized.
type Processor struct {
	workerPool *WorkerPool
	observer   *observability.StandardObserver
}

// ProcessingStats tracks pipeline statistics for one run.
type ProcessingStats struct {
	TotalEntities int           `json:"total_entities"`
	TotalPairs    int           `json:"total_pairs"`
	TotalDuration time.Duration `json:"total_duration_ms"`
	WorkerCount   int           `json:"worker_count"`
	AvgEntityTime time.Duration `json:"avg_entity_time_ms"`
}

// DefaultWorkers picks the worker count: NumCPU capped at 8 to avoid
// resource exhaustion on large hosts.
func DefaultWorkers() int {
	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}
	return workers
}

// NewProcessor creates a processor with the given worker count; zero or
// negative means DefaultWorkers.
func NewProcessor(workers int, cfg pairs.Config, observer *observability.StandardObserver) *Processor {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	return &Processor{
		workerPool: NewWorkerPool(workers, cfg, observer),
		observer:   observer,
	}
}

// ResultHandler receives each entity's result as it completes. Handlers run
// on the collector goroutine, never concurrently.
type ResultHandler func(*Result)

// Run streams entities from source through the pool until the source is
// exhausted, invoking handle for every completed entity. A source error
// (malformed input) cancels the run and is returned; results already
// handled stay handled.
func (p *Processor) Run(source EntitySource, handle ResultHandler) (*ProcessingStats, error) {
	start := time.Now()

	var finishTiming func(bool, map[string]interface{})
	if p.observer != nil {
		finishTiming = p.observer.StartTiming("processor", "run", "stream")
	}

	p.workerPool.Start()

	// Submit from the stream in a separate goroutine so collection can keep
	// the results channel drained.
	errCh := make(chan error, 1)
	go func() {
		defer p.workerPool.CloseJobs()
		for {
			rec, err := source.Next()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- err
				return
			}
			p.workerPool.Submit(&Job{Entity: *rec})
		}
	}()
	go p.workerPool.Stop()

	stats := &ProcessingStats{WorkerCount: p.workerPool.workers}
	var entityDuration time.Duration
	for result := range p.workerPool.Results() {
		stats.TotalEntities++
		stats.TotalPairs += len(result.Pairs)
		entityDuration += result.Duration
		if handle != nil {
			handle(result)
		}
	}

	stats.TotalDuration = time.Since(start)
	if stats.TotalEntities > 0 {
		stats.AvgEntityTime = entityDuration / time.Duration(stats.TotalEntities)
	}

	var streamErr error
	select {
	case streamErr = <-errCh:
	default:
	}

	if finishTiming != nil {
		finishTiming(streamErr == nil, map[string]interface{}{
			"total_entities": stats.TotalEntities,
			"total_pairs":    stats.TotalPairs,
			"worker_count":   stats.WorkerCount,
			"duration_ms":    stats.TotalDuration.Milliseconds(),
		})
	}

	return stats, streamErr
}
