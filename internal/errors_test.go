// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package internal

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorWithSuggestion(t *testing.T) {
	inner := fmt.Errorf("limit must be positive: %w", ErrInvalidArgument)
	err := fmt.Errorf("running command: %w", &ErrorWithSuggestion{
		Suggestion: "Pass --concurrency with a value greater than zero.",
		Err:        inner,
	})

	var suggestionErr *ErrorWithSuggestion
	require.True(t, errors.As(err, &suggestionErr))
	require.Equal(t, "Pass --concurrency with a value greater than zero.", suggestionErr.Suggestion)
	require.ErrorIs(t, err, ErrInvalidArgument)
	require.Equal(t, inner.Error(), suggestionErr.Error())
}
