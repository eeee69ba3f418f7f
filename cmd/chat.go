// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"context"
	"strings"

	"github.com/azure/teamsfx/pkg/chat"
	"github.com/azure/teamsfx/pkg/output"
)

type chatOutput struct {
	Result chat.Result `json:"result"`
	Parts  []chat.Part `json:"parts"`
}

// runChat sends one prompt to handler. Parts are printed as they arrive, unless a structured output format is
// selected, in which case they are printed at the end together with the result. The answer's markdown is
// returned.
func runChat(ctx context.Context, handler chat.Handler, request chat.Request) (string, error) {
	formatter := output.GetFormatter(ctx)
	writer := output.GetWriter(ctx)

	recording := chat.NewRecordingStream()
	var stream chat.ResponseStream = recording
	if formatter.Kind() == output.NoneFormat {
		stream = chat.Tee(chat.NewConsoleStream(writer), recording)
	}

	result, err := handler.Handle(ctx, request, stream)
	if err != nil {
		return "", err
	}

	if formatter.Kind() == output.NoneFormat {
		if text := recording.MarkdownText(); text != "" && !strings.HasSuffix(text, "\n") {
			_, _ = writer.Write([]byte("\n"))
		}
	} else if err := formatter.Format(chatOutput{Result: result, Parts: recording.Parts()}, writer); err != nil {
		return "", err
	}

	return recording.MarkdownText(), nil
}
