// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package async

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/azure/teamsfx/internal"
	"golang.org/x/sync/semaphore"
)

// ActionFunc is invoked once per item by [RunWithLimitedConcurrency].
// Actions report their own failures; the runner never inspects outcomes.
type ActionFunc[T any] func(ctx context.Context, item T)

// RunWithLimitedConcurrency invokes action for every item while keeping at most limit invocations in flight.
//
// Items are dispatched in input order and a new item is dispatched as soon as a running invocation settles.
// A failing (or panicking) invocation does not affect its siblings or the remaining items.
//
// When ctx is cancelled no further items are dispatched, in-flight invocations are awaited and ctx.Err() is returned.
// The call only returns once every dispatched invocation has settled.
func RunWithLimitedConcurrency[T any](ctx context.Context, items []T, limit int, action ActionFunc[T]) error {
	if limit < 1 {
		return fmt.Errorf("concurrency limit must be at least 1, got %d: %w", limit, internal.ErrInvalidArgument)
	}

	if len(items) == 0 {
		return nil
	}

	slots := semaphore.NewWeighted(int64(limit))
	var wg sync.WaitGroup
	var dispatchErr error

	for index, item := range items {
		// Acquire may succeed on a cancelled context when a slot is free, so check first.
		if err := ctx.Err(); err != nil {
			dispatchErr = err
			break
		}

		if err := slots.Acquire(ctx, 1); err != nil {
			dispatchErr = err
			break
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer slots.Release(1)
			defer func() {
				if r := recover(); r != nil {
					log.Printf("recovered panic while processing item %d: %v", index, r)
				}
			}()

			action(ctx, item)
		}()
	}

	wg.Wait()

	if dispatchErr != nil {
		log.Printf("stopped dispatching items: %v", dispatchErr)
		return dispatchErr
	}

	return nil
}
