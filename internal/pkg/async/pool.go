// Package async runs independent named tasks on a bounded worker pool
// and collects their results by name. Used for the read-only query
// fan-out behind the dashboard and public-counter endpoints.
package async

import (
	"context"
	"sync"
)

// Task is a unit of work identified by name.
type Task struct {
	Name    string
	Execute func() (interface{}, error)
}

// Result carries a task's outcome.
type Result struct {
	Name string
	Data interface{}
	Err  error
}

// Pool executes batches of tasks with at most workerCount running at once.
type Pool struct {
	workerCount int
}

// NewPool creates a pool with the given concurrency limit.
func NewPool(workerCount int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool{workerCount: workerCount}
}

// Execute runs all tasks and returns their results keyed by task name.
// Tasks not started before ctx is cancelled are omitted from the result
// map; callers treat a missing entry like a zero result.
func (p *Pool) Execute(ctx context.Context, tasks []Task) map[string]Result {
	queue := make(chan Task)
	results := make(chan Result, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < p.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range queue {
				data, err := task.Execute()
				results <- Result{Name: task.Name, Data: data, Err: err}
			}
		}()
	}

	go func() {
		defer close(queue)
		for _, task := range tasks {
			select {
			case queue <- task:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make(map[string]Result, len(tasks))
	for r := range results {
		out[r.Name] = r
	}
	return out
}
