// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package async

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/azure/teamsfx/internal"
	"github.com/stretchr/testify/require"
)

func TestRunWithLimitedConcurrency(t *testing.T) {
	t.Run("NeverExceedsLimit", func(t *testing.T) {
		for _, limit := range []int{1, 2, 3, 7} {
			items := make([]int, 25)
			var active, maxActive int32

			err := RunWithLimitedConcurrency(context.Background(), items, limit, func(ctx context.Context, _ int) {
				current := atomic.AddInt32(&active, 1)
				for {
					observed := atomic.LoadInt32(&maxActive)
					if current <= observed || atomic.CompareAndSwapInt32(&maxActive, observed, current) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				atomic.AddInt32(&active, -1)
			})

			require.NoError(t, err)
			require.LessOrEqual(t, int(maxActive), limit)
			require.Equal(t, int32(0), atomic.LoadInt32(&active))
		}
	})

	t.Run("EveryItemSettlesExactlyOnce", func(t *testing.T) {
		items := []string{"a", "b", "c", "d", "e", "f"}
		counts := map[string]int{}
		var mu sync.Mutex

		err := RunWithLimitedConcurrency(context.Background(), items, 4, func(ctx context.Context, item string) {
			time.Sleep(time.Millisecond)
			mu.Lock()
			counts[item]++
			mu.Unlock()
		})

		require.NoError(t, err)
		require.Len(t, counts, len(items))
		for _, item := range items {
			require.Equal(t, 1, counts[item], item)
		}
	})

	t.Run("LimitOfOneRunsInInputOrder", func(t *testing.T) {
		items := []int{5, 4, 3, 2, 1}
		var seen []int

		err := RunWithLimitedConcurrency(context.Background(), items, 1, func(ctx context.Context, item int) {
			seen = append(seen, item)
		})

		require.NoError(t, err)
		require.Equal(t, items, seen)
	})

	t.Run("EmptyItems", func(t *testing.T) {
		called := false
		err := RunWithLimitedConcurrency(context.Background(), []int{}, 3, func(ctx context.Context, _ int) {
			called = true
		})

		require.NoError(t, err)
		require.False(t, called)
	})

	t.Run("InvalidLimit", func(t *testing.T) {
		for _, limit := range []int{0, -1} {
			called := false
			err := RunWithLimitedConcurrency(context.Background(), []int{1}, limit, func(ctx context.Context, _ int) {
				called = true
			})

			require.ErrorIs(t, err, internal.ErrInvalidArgument)
			require.False(t, called)
		}
	})

	t.Run("PanicDoesNotStopSiblings", func(t *testing.T) {
		items := []int{1, 2, 3, 4, 5}
		var completed int32

		err := RunWithLimitedConcurrency(context.Background(), items, 2, func(ctx context.Context, item int) {
			if item == 3 {
				panic("boom")
			}
			atomic.AddInt32(&completed, 1)
		})

		require.NoError(t, err)
		require.Equal(t, int32(4), atomic.LoadInt32(&completed))
	})

	t.Run("CancellationStopsDispatch", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		items := make([]int, 10)
		var started int32
		release := make(chan struct{})

		done := make(chan error, 1)
		go func() {
			done <- RunWithLimitedConcurrency(ctx, items, 2, func(ctx context.Context, _ int) {
				atomic.AddInt32(&started, 1)
				<-release
			})
		}()

		require.Eventually(t, func() bool {
			return atomic.LoadInt32(&started) == 2
		}, time.Second, time.Millisecond)

		cancel()
		close(release)

		err := <-done
		require.ErrorIs(t, err, context.Canceled)
		require.Equal(t, int32(2), atomic.LoadInt32(&started))
	})

	t.Run("AlreadyCancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		called := false
		err := RunWithLimitedConcurrency(ctx, []int{1, 2}, 2, func(ctx context.Context, _ int) {
			called = true
		})

		require.ErrorIs(t, err, context.Canceled)
		require.False(t, called)
	})
}
