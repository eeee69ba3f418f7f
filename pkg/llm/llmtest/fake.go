// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package llmtest provides a scripted language model for tests.
package llmtest

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"
)

// Call is one recorded GenerateContent call.
type Call struct {
	System string
	User   string
	// History holds the text of every message between the system and the last user message.
	History []string
}

// Responder produces the response for a call.
type Responder func(call Call) (string, error)

// FakeModel answers GenerateContent calls with a Responder and records them. Streaming callers receive the
// response split on spaces.
type FakeModel struct {
	respond Responder
	mu      sync.Mutex
	calls   []Call
}

var _ llms.Model = (*FakeModel)(nil)

func NewFakeModel(respond Responder) *FakeModel {
	return &FakeModel{respond: respond}
}

// Respond answers every call with text.
func Respond(text string) *FakeModel {
	return NewFakeModel(func(Call) (string, error) { return text, nil })
}

// Route answers with the value of the longest key contained in the system prompt, or fallback.
func Route(routes map[string]string, fallback string) *FakeModel {
	keys := make([]string, 0, len(routes))
	for key := range routes {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return len(keys[i]) > len(keys[j]) || len(keys[i]) == len(keys[j]) && keys[i] < keys[j]
	})

	return NewFakeModel(func(call Call) (string, error) {
		for _, key := range keys {
			if strings.Contains(call.System, key) {
				return routes[key], nil
			}
		}
		return fallback, nil
	})
}

func (m *FakeModel) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

func (m *FakeModel) GenerateContent(
	ctx context.Context,
	messages []llms.MessageContent,
	options ...llms.CallOption,
) (*llms.ContentResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	call := toCall(messages)
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()

	text, err := m.respond(call)
	if err != nil {
		return nil, err
	}

	callOptions := llms.CallOptions{}
	for _, option := range options {
		option(&callOptions)
	}

	if callOptions.StreamingFunc != nil {
		words := strings.SplitAfter(text, " ")
		for _, word := range words {
			if err := callOptions.StreamingFunc(ctx, []byte(word)); err != nil {
				return nil, err
			}
		}
	}

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: text}},
	}, nil
}

func (m *FakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", errors.New("deprecated, call GenerateContent")
}

func toCall(messages []llms.MessageContent) Call {
	var call Call
	for i, message := range messages {
		text := textOf(message)
		switch {
		case message.Role == llms.ChatMessageTypeSystem && i == 0:
			call.System = text
		case i == len(messages)-1 && message.Role == llms.ChatMessageTypeHuman:
			call.User = text
		default:
			call.History = append(call.History, text)
		}
	}
	return call
}

func textOf(message llms.MessageContent) string {
	var sb strings.Builder
	for _, part := range message.Parts {
		if text, ok := part.(llms.TextContent); ok {
			sb.WriteString(text.Text)
		}
	}
	return sb.String()
}
