// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package chat

import (
	"context"

	"github.com/azure/teamsfx/pkg/llm"
)

// StreamMarkdown sends request to the model and forwards the answer to stream as it arrives.
// The full answer is returned.
func StreamMarkdown(ctx context.Context, client *llm.Client, request llm.Request, stream ResponseStream) (string, error) {
	return client.Stream(ctx, request, func(chunk string) error {
		stream.Markdown(chunk)
		return nil
	})
}
