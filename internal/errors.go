// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package internal

import "errors"

// ErrInvalidArgument is returned when a caller supplies an out-of-range limit, budget or option.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrorWithSuggestion is a custom error type that includes a suggestion for the user
type ErrorWithSuggestion struct {
	Suggestion string
	Err        error
}

// Error returns the error message
func (es *ErrorWithSuggestion) Error() string {
	return es.Err.Error()
}

// Unwrap returns the wrapped error
func (es *ErrorWithSuggestion) Unwrap() error {
	return es.Err
}
