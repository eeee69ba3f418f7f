// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package chat

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/azure/teamsfx/pkg/llm"
)

// IntentTarget is a handler the model may route a prompt to.
type IntentTarget struct {
	Name        string
	Description string
}

var intentSystemPrompt = heredoc.Doc(`
	You are an expert in determining which of the following categories a user's prompt belongs to.
	Reply with the name of the single best matching category and nothing else.
	If none of the categories match, reply with "none".

	Categories:
	%s`)

// DetectIntent asks the model which target matches the request prompt. Up to historyTurns earlier turns are
// sent as context. An unknown or missing answer yields no target.
func DetectIntent(
	ctx context.Context,
	client *llm.Client,
	targets []IntentTarget,
	request Request,
	historyTurns int,
) (IntentTarget, bool, error) {
	var categories strings.Builder
	for _, target := range targets {
		fmt.Fprintf(&categories, "- %s: %s\n", target.Name, target.Description)
	}

	answer, err := client.Complete(ctx, llm.Request{
		Model:   llm.ModelGpt4,
		System:  fmt.Sprintf(intentSystemPrompt, categories.String()),
		History: request.LastTurns(historyTurns),
		User:    request.Prompt,
	})
	if err != nil {
		return IntentTarget{}, false, err
	}

	answer = strings.Trim(strings.TrimSpace(answer), "`\"'.")
	for _, target := range targets {
		if strings.EqualFold(answer, target.Name) {
			return target, true, nil
		}
	}

	log.Printf("no intent matched model answer '%s'", answer)
	return IntentTarget{}, false, nil
}
