// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package lazy

import (
	"context"
	"sync"
)

type InitializerFn[T any] func(ctx context.Context) (T, error)

// Lazy loads a value on first use from the specified initializer and caches it.
// A failed initialization is not cached; the next caller retries it.
type Lazy[T any] struct {
	initialized bool
	initializer InitializerFn[T]
	value       T
	mutex       sync.Mutex
}

func NewLazy[T any](initializerFn InitializerFn[T]) *Lazy[T] {
	return &Lazy[T]{
		initializer: initializerFn,
	}
}

// GetValue returns the cached value or runs the initializer.
// Concurrent callers block until the running initialization completes.
func (l *Lazy[T]) GetValue(ctx context.Context) (T, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.initialized {
		return l.value, nil
	}

	value, err := l.initializer(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	l.value = value
	l.initialized = true
	return l.value, nil
}

// SetValue overrides the value, skipping the initializer.
func (l *Lazy[T]) SetValue(value T) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.value = value
	l.initialized = true
}

// Reset drops the cached value so the next GetValue runs the initializer again.
func (l *Lazy[T]) Reset() {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	var zero T
	l.value = zero
	l.initialized = false
}
