// Package settle runs independent tasks concurrently and reports every
// task's outcome, so one failure never discards its siblings' results.
package settle

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one task.
type Result[T any] struct {
	Value T
	Err   error
}

// Task is a unit of work passed to All.
type Task[T any] func(ctx context.Context) (T, error)

// All starts every task, waits for all of them and returns their results in
// task order. limit bounds how many run at once; zero or less means all
// start together. A task's error is recorded in its Result and does not
// cancel the context seen by the others.
func All[T any](ctx context.Context, limit int, tasks []Task[T]) []Result[T] {
	results := make([]Result[T], len(tasks))
	if len(tasks) == 0 {
		return results
	}

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			v, err := task(ctx)
			results[i] = Result[T]{Value: v, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Failed counts results carrying an error.
func Failed[T any](results []Result[T]) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
