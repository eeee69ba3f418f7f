// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package llm sends chat prompts to the configured language model provider.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/azure/teamsfx/internal/tracing"
	"github.com/tmc/langchaingo/llms"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// Request is a single prompt: a system instruction, optional earlier turns and the user message.
type Request struct {
	Model   ModelID
	System  string
	History []Message
	User    string
}

func (r Request) messages() []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(r.History)+2)
	if r.System != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, r.System))
	}

	for _, message := range r.History {
		messageType := llms.ChatMessageTypeHuman
		if message.Role == RoleAssistant {
			messageType = llms.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(messageType, message.Content))
	}

	if r.User != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, r.User))
	}

	return messages
}

var ErrEmptyResponse = errors.New("language model returned no choices")

// Client resolves models lazily and caches one per model id.
type Client struct {
	provider ModelProvider
	mu       sync.Mutex
	models   map[ModelID]llms.Model
}

func NewClient(provider ModelProvider) *Client {
	return &Client{
		provider: provider,
		models:   map[ModelID]llms.Model{},
	}
}

// NewClientWithModel serves every model id with model.
func NewClientWithModel(model llms.Model) *Client {
	return NewClient(staticProvider{model: model})
}

func (c *Client) model(ctx context.Context, id ModelID) (llms.Model, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if model, has := c.models[id]; has {
		return model, nil
	}

	model, err := c.provider.CreateModel(ctx, id)
	if err != nil {
		return nil, err
	}

	c.models[id] = model
	return model, nil
}

// Complete returns the full response text.
func (c *Client) Complete(ctx context.Context, request Request) (string, error) {
	return c.generate(ctx, request, nil)
}

// Stream delivers the response in chunks as they arrive and returns the full text. Returning an error from
// onChunk stops generation.
func (c *Client) Stream(ctx context.Context, request Request, onChunk func(chunk string) error) (string, error) {
	return c.generate(ctx, request, onChunk)
}

func (c *Client) generate(ctx context.Context, request Request, onChunk func(string) error) (result string, err error) {
	ctx, span := tracing.Start(ctx, "llm.generate", tracing.ModelKey.String(string(request.Model)))
	defer func() { tracing.End(span, err) }()

	model, err := c.model(ctx, request.Model)
	if err != nil {
		return "", err
	}

	var options []llms.CallOption
	if onChunk != nil {
		options = append(options, llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			return onChunk(string(chunk))
		}))
	}

	response, err := model.GenerateContent(ctx, request.messages(), options...)
	if err != nil {
		return "", fmt.Errorf("calling %s: %w", request.Model, err)
	}
	if len(response.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	content := response.Choices[0].Content
	log.Printf("%s responded with %d characters", request.Model, len(content))
	return strings.TrimSpace(content), nil
}

type staticProvider struct {
	model llms.Model
}

func (p staticProvider) Type() LlmType {
	return ""
}

func (p staticProvider) CreateModel(context.Context, ModelID) (llms.Model, error) {
	return p.model, nil
}
