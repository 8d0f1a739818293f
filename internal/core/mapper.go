package core

// mapper.go fans row-level work for one chunk out to a fixed pool of
// goroutines.
//
// Work is dispatched as (index, item) messages and results come back as
// (index, result) messages, so results are reassembled in input order no
// matter which worker finishes first. The pool lives for a single call.

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

type indexed[T any] struct {
	index int
	value T
}

// OrderedMap applies fn to every item using up to workers goroutines and
// returns the results in item order. With workers <= 1 the items are
// processed inline on the calling goroutine.
//
// The first error (or panic) stops dispatch of further items; items already
// handed to a worker are allowed to finish, and the error is returned with
// no results.
func OrderedMap[I, O any](ctx context.Context, workers int, items []I, fn func(context.Context, I) (O, error)) ([]O, error) {
	out := make([]O, len(items))
	if len(items) == 0 {
		return out, nil
	}

	if workers <= 1 {
		for i, item := range items {
			o, err := callSafely(ctx, fn, item)
			if err != nil {
				return nil, err
			}
			out[i] = o
		}
		return out, nil
	}
	workers = min(workers, len(items))

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan indexed[I])
	results := make(chan indexed[O], workers)

	// Dispatcher
	g.Go(func() error {
		defer close(jobs)
		for i, item := range items {
			select {
			case jobs <- indexed[I]{index: i, value: item}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			for job := range jobs {
				o, err := callSafely(gctx, fn, job.value)
				if err != nil {
					return err
				}
				results <- indexed[O]{index: job.index, value: o}
			}
			return nil
		})
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		out[r.index] = r.value
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// callSafely runs fn, converting a panic into an error.
func callSafely[I, O any](ctx context.Context, fn func(context.Context, I) (O, error), item I) (o O, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in worker: %v", r)
		}
	}()
	return fn(ctx, item)
}
