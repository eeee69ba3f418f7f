// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package httputil

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/azure/teamsfx/internal"
	"github.com/sethvargo/go-retry"
)

// RetryPolicy bounds the attempts made by [Retry].
type RetryPolicy struct {
	// The maximum number of attempts, including the first one. Must be at least 1.
	MaxAttempts int
	// Initial delay between attempts, doubled after each retry. Zero retries immediately.
	Backoff time.Duration
	// Upper bound for a single delay. Zero leaves the delay uncapped.
	MaxBackoff time.Duration
}

// DefaultRetryPolicy returns the policy used for sample downloads.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 2,
		Backoff:     250 * time.Millisecond,
		MaxBackoff:  5 * time.Second,
	}
}

// Validate returns an error wrapping internal.ErrInvalidArgument for unusable policies.
func (p RetryPolicy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d: %w", p.MaxAttempts, internal.ErrInvalidArgument)
	}
	if p.Backoff < 0 || p.MaxBackoff < 0 {
		return fmt.Errorf("retry delays cannot be negative: %w", internal.ErrInvalidArgument)
	}

	return nil
}

// FetchExhaustedError is returned by [Retry] once every allowed attempt failed with a retryable error.
type FetchExhaustedError struct {
	Attempts int
	Err      error
}

func (e *FetchExhaustedError) Error() string {
	return fmt.Sprintf("giving up after %d attempt(s): %v", e.Attempts, e.Err)
}

// Unwrap returns the error of the last attempt
func (e *FetchExhaustedError) Unwrap() error {
	return e.Err
}

// ResponseError is returned when the server answers with a non-2xx status code.
type ResponseError struct {
	Url        string
	StatusCode int
	Status     string
	// Delay requested by the server through retry-after headers, if any.
	RetryAfter time.Duration
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %s", e.Url, e.Status)
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsRetryable reports whether another attempt could succeed after err.
//
// Cancellation, invalid arguments, errors marked with [Permanent] and client errors (4xx other than 408 and 429)
// are permanent. Everything else, including transport failures and 5xx responses, is retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if errors.Is(err, internal.ErrInvalidArgument) {
		return false
	}

	var permanent *permanentError
	if errors.As(err, &permanent) {
		return false
	}

	var responseErr *ResponseError
	if errors.As(err, &responseErr) {
		switch {
		case responseErr.StatusCode == http.StatusRequestTimeout,
			responseErr.StatusCode == http.StatusTooManyRequests,
			responseErr.StatusCode >= 500:
			return true
		default:
			return false
		}
	}

	return true
}

// Retry invokes operation until it succeeds, fails permanently or policy.MaxAttempts attempts were made.
//
// The first successful result is returned. When every attempt failed with a retryable error the result is a
// [*FetchExhaustedError] carrying the last error. Permanent and cancellation errors are returned as is.
func Retry[T any](ctx context.Context, policy RetryPolicy, operation func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if err := policy.Validate(); err != nil {
		return zero, err
	}

	var (
		result   T
		lastErr  error
		attempts int
		hint     time.Duration
	)

	err := retry.Do(ctx, policy.backoff(&hint), func(ctx context.Context) error {
		attempts++

		value, err := operation(ctx)
		if err == nil {
			result = value
			return nil
		}

		lastErr = err
		if !IsRetryable(err) {
			return err
		}

		var responseErr *ResponseError
		if errors.As(err, &responseErr) {
			hint = responseErr.RetryAfter
		}

		log.Printf("attempt %d of %d failed: %v", attempts, policy.MaxAttempts, err)
		return retry.RetryableError(err)
	})

	switch {
	case err == nil:
		return result, nil
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return zero, err
	case !IsRetryable(err):
		return zero, err
	default:
		return zero, &FetchExhaustedError{Attempts: attempts, Err: lastErr}
	}
}

// backoff builds the go-retry backoff for the policy. Server supplied delays stored in hint take precedence over a
// shorter computed delay, but only when the policy has a delay at all.
func (p RetryPolicy) backoff(hint *time.Duration) retry.Backoff {
	if p.Backoff == 0 {
		return retry.WithMaxRetries(uint64(p.MaxAttempts-1), retry.BackoffFunc(func() (time.Duration, bool) {
			return 0, false
		}))
	}

	base := retry.WithJitterPercent(10, retry.NewExponential(p.Backoff))
	if p.MaxBackoff > 0 {
		base = retry.WithCappedDuration(p.MaxBackoff, base)
	}

	withHint := retry.BackoffFunc(func() (time.Duration, bool) {
		next, stop := base.Next()
		if stop {
			return 0, true
		}

		requested := *hint
		*hint = 0
		if p.MaxBackoff > 0 && requested > p.MaxBackoff {
			requested = p.MaxBackoff
		}
		if requested > next {
			next = requested
		}

		return next, false
	})

	return retry.WithMaxRetries(uint64(p.MaxAttempts-1), withHint)
}
