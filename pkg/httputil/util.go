// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package httputil

import (
	"net/http"
	"strconv"
	"time"
)

// Retry hint headers, most precise first. Only retry-after may carry an HTTP date.
var retryAfterHeaders = []struct {
	name  string
	units time.Duration
}{
	{name: "retry-after-ms", units: time.Millisecond},
	{name: "x-ms-retry-after-ms", units: time.Millisecond},
	{name: "retry-after", units: time.Second},
}

// RetryAfter returns how long the server asked the client to wait before trying again, or zero when the
// response carries no usable hint.
func RetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}

	for _, header := range retryAfterHeaders {
		value := resp.Header.Get(header.name)
		if value == "" {
			continue
		}

		if count, err := strconv.Atoi(value); err == nil && count > 0 {
			return time.Duration(count) * header.units
		}

		if header.name == "retry-after" {
			if at, err := http.ParseTime(value); err == nil {
				if wait := time.Until(at); wait > 0 {
					return wait
				}
			}
		}
	}

	return 0
}
