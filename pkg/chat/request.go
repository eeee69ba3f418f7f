// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package chat defines the request, response and history types shared by teamsfx chat commands.
package chat

import (
	"github.com/azure/teamsfx/pkg/llm"
	"github.com/google/uuid"
)

// Turn is one exchange entry: the user prompt or the assistant's markdown answer.
type Turn struct {
	Role    llm.Role `json:"role"`
	Content string   `json:"content"`
}

func UserTurn(content string) Turn {
	return Turn{Role: llm.RoleUser, Content: content}
}

func AssistantTurn(content string) Turn {
	return Turn{Role: llm.RoleAssistant, Content: content}
}

type Request struct {
	Id      string
	Prompt  string
	Command string
	// History holds earlier turns of the conversation, oldest first.
	History []Turn
}

// NewRequest creates a request with a fresh id.
func NewRequest(command string, prompt string, history []Turn) Request {
	return Request{
		Id:      uuid.NewString(),
		Prompt:  prompt,
		Command: command,
		History: history,
	}
}

// WithPrompt returns a copy of the request with a different prompt.
func (r Request) WithPrompt(prompt string) Request {
	r.Prompt = prompt
	return r
}

// LastTurns converts up to n trailing history turns to model messages.
func (r Request) LastTurns(n int) []llm.Message {
	return ToMessages(lastN(r.History, n))
}

type Result struct {
	Command  string         `json:"command"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func ToMessages(turns []Turn) []llm.Message {
	messages := make([]llm.Message, 0, len(turns))
	for _, turn := range turns {
		if turn.Content == "" {
			continue
		}
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
	}
	return messages
}

func lastN[T any](items []T, n int) []T {
	if n <= 0 {
		return nil
	}
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}
