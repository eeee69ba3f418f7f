// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"
)

const defaultUserAgent = "teamsfx-go"

// Client performs GET requests for raw remote content.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
}

type ClientOption func(*Client)

// WithHttpClient sets the underlying transport client.
func WithHttpClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRateLimit limits the client to requestsPerSecond requests, allowing bursts of up to burst requests.
// A non-positive rate disables limiting.
func WithRateLimit(requestsPerSecond float64, burst int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

func NewClient(options ...ClientOption) *Client {
	client := &Client{
		httpClient: http.DefaultClient,
		userAgent:  defaultUserAgent,
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// Get performs a single GET request and returns the response body.
// Non-2xx responses are reported as [*ResponseError].
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			// the limiter refuses to wait past the context deadline
			return nil, fmt.Errorf("waiting for rate limiter: %w: %w", context.DeadlineExceeded, err)
		}
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, Permanent(fmt.Errorf("creating request: %w", err))
	}
	request.Header.Set("User-Agent", c.userAgent)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("executing http request: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, &ResponseError{
			Url:        url,
			StatusCode: response.StatusCode,
			Status:     response.Status,
			RetryAfter: RetryAfter(response),
		}
	}

	return body, nil
}

// GetWithRetry performs [Client.Get] under the given retry policy.
func (c *Client) GetWithRetry(ctx context.Context, url string, policy RetryPolicy) ([]byte, error) {
	return Retry(ctx, policy, func(ctx context.Context) ([]byte, error) {
		return c.Get(ctx, url)
	})
}
