package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Run starts every task in its own goroutine with a shared context. The
// context is cancelled as soon as one task fails; Run returns that first
// error after all tasks have returned.
func Run(ctx context.Context, tasks ...func(context.Context) error) error {
	group, gctx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		if task == nil {
			continue
		}
		group.Go(func() error {
			return task(gctx)
		})
	}
	return group.Wait()
}

// Concurrent runs the action function for each element in a separate goroutine.
// It waits for all goroutines to finish. If action returns an error, it returns the first error encountered.
func Concurrent[T any](items []T, action func(T) error) error {
	errGroup := errgroup.Group{}
	for _, value := range items {
		errGroup.Go(func() error {
			return action(value)
		})
	}
	return errGroup.Wait()
}

// ParallelMap applies mapFn to each element in parallel, preserving order.
// The workers parameter caps the number of goroutines; values below one mean one.
func ParallelMap[T any, R any](items []T, workers int, mapFn func(T) R) []R {
	out := make([]R, len(items))
	errGroup := errgroup.Group{}
	errGroup.SetLimit(max(workers, 1))
	for idx, val := range items {
		errGroup.Go(func() error {
			out[idx] = mapFn(val)
			return nil
		})
	}
	_ = errGroup.Wait()
	return out
}
