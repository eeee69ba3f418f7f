// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package async

// Progress carries updates from a running operation to a single observer. Create it with [NewProgress].
type Progress[T any] struct {
	updates chan T
}

func NewProgress[T any]() *Progress[T] {
	return &Progress[T]{updates: make(chan T)}
}

// Progress is the receiving side of the updates. It is closed by [Progress.Done].
func (p *Progress[T]) Progress() <-chan T {
	return p.updates
}

// Done ends reporting. SetProgress must not be called afterwards.
func (p *Progress[T]) Done() {
	close(p.updates)
}

// SetProgress blocks until the observer has taken the update. Goroutines may call it concurrently.
func (p *Progress[T]) SetProgress(progress T) {
	p.updates <- progress
}

// RunWithProgress runs f and hands every update it reports to observer on a separate goroutine, one at a time
// and in the order they were sent. It returns once f has returned and the observer has seen every update.
func RunWithProgress[T any, R any](observer func(T), f func(*Progress[T]) (R, error)) (R, error) {
	progress := NewProgress[T]()

	observed := make(chan struct{})
	go func() {
		defer close(observed)
		for update := range progress.Progress() {
			observer(update)
		}
	}()

	result, err := f(progress)
	progress.Done()
	<-observed

	return result, err
}
