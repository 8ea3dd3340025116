package workerpool

import (
	"context"
	"sync"
)

// Job represents the job to be run
type Job[T any] struct {
	Task func(ctx context.Context) (T, error)
}

// JobResult represents the result of a job
type JobResult[T any] struct {
	Result T
	Err    error
}

// Dispatcher runs jobs on a bounded number of workers.
type Dispatcher[T any] struct {
	MaxWorkers int
}

func NewDispatcher[T any](maxWorkers int) *Dispatcher[T] {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	return &Dispatcher[T]{
		MaxWorkers: maxWorkers,
	}
}

// Run executes all jobs and blocks until they complete.
// Results are returned in job order. Jobs not started before the context
// is done are not run and report the context error.
func (d *Dispatcher[T]) Run(ctx context.Context, jobs []Job[T]) []JobResult[T] {
	results := make([]JobResult[T], len(jobs))
	if len(jobs) == 0 {
		return results
	}

	numWorkers := d.MaxWorkers
	if numWorkers > len(jobs) {
		numWorkers = len(jobs)
	}

	jobQueue := make(chan int)

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go func() {
			defer wg.Done()
			for idx := range jobQueue {
				result, err := jobs[idx].Task(ctx)
				results[idx] = JobResult[T]{Result: result, Err: err}
			}
		}()
	}

	next := 0
dispatch:
	for ; next < len(jobs); next++ {
		select {
		case jobQueue <- next:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobQueue)

	for ; next < len(jobs); next++ {
		results[next] = JobResult[T]{Err: ctx.Err()}
	}

	wg.Wait()

	return results
}
