// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package lazy

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Lazy_GetValue(t *testing.T) {
	callCount := 0
	instance := NewLazy(func(ctx context.Context) ([]string, error) {
		callCount++
		return []string{"bot", "tab"}, nil
	})
	require.Equal(t, 0, callCount)

	first, err := instance.GetValue(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"bot", "tab"}, first)

	second, err := instance.GetValue(context.Background())
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, callCount)
}

func Test_Lazy_GetValue_With_Error(t *testing.T) {
	callCount := 0
	instance := NewLazy(func(ctx context.Context) (string, error) {
		callCount++
		if callCount == 1 {
			return "", errors.New("offline")
		}
		return "online", nil
	})

	_, err := instance.GetValue(context.Background())
	require.Error(t, err)

	// failures are not cached
	value, err := instance.GetValue(context.Background())
	require.NoError(t, err)
	require.Equal(t, "online", value)
	require.Equal(t, 2, callCount)
}

func Test_Lazy_Concurrent_Callers(t *testing.T) {
	var calls atomic.Int32
	instance := NewLazy(func(ctx context.Context) (int, error) {
		return int(calls.Add(1)), nil
	})

	values := make([]int, 20)
	var wg sync.WaitGroup
	for i := range values {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			values[i], _ = instance.GetValue(context.Background())
		}(i)
	}
	wg.Wait()

	require.Equal(t, int32(1), calls.Load())
	for _, v := range values {
		require.Equal(t, 1, v)
	}
}

func Test_Lazy_SetValue_And_Reset(t *testing.T) {
	ran := false
	instance := NewLazy(func(ctx context.Context) (string, error) {
		ran = true
		return "initialized", nil
	})

	instance.SetValue("override")
	value, err := instance.GetValue(context.Background())
	require.NoError(t, err)
	require.Equal(t, "override", value)
	require.False(t, ran)

	instance.Reset()
	value, err = instance.GetValue(context.Background())
	require.NoError(t, err)
	require.Equal(t, "initialized", value)
	require.True(t, ran)
}
