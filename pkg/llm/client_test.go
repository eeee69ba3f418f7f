// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/azure/teamsfx/pkg/llm/llmtest"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func TestClientComplete(t *testing.T) {
	model := llmtest.Respond("  Azure Functions  ")
	client := NewClientWithModel(model)

	result, err := client.Complete(context.Background(), Request{
		Model:  ModelGpt4,
		System: "You are an Azure expert.",
		History: []Message{
			{Role: RoleUser, Content: "What hosts a bot?"},
			{Role: RoleAssistant, Content: "Azure Bot Service."},
		},
		User: "And an API?",
	})
	require.NoError(t, err)
	require.Equal(t, "Azure Functions", result)

	calls := model.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "You are an Azure expert.", calls[0].System)
	require.Equal(t, "And an API?", calls[0].User)
	require.Equal(t, []string{"What hosts a bot?", "Azure Bot Service."}, calls[0].History)
}

func TestClientStream(t *testing.T) {
	client := NewClientWithModel(llmtest.Respond("use Azure Static Web Apps"))

	var chunks []string
	result, err := client.Stream(context.Background(), Request{Model: ModelGpt35Turbo, User: "host my tab"},
		func(chunk string) error {
			chunks = append(chunks, chunk)
			return nil
		})
	require.NoError(t, err)
	require.Equal(t, "use Azure Static Web Apps", result)
	require.Greater(t, len(chunks), 1)
	require.Equal(t, result, strings.Join(chunks, ""))

	stop := errors.New("stop")
	_, err = client.Stream(context.Background(), Request{Model: ModelGpt35Turbo, User: "again"},
		func(string) error { return stop })
	require.ErrorIs(t, err, stop)
}

func TestClientErrors(t *testing.T) {
	t.Run("ModelError", func(t *testing.T) {
		boom := errors.New("rate limited")
		client := NewClientWithModel(llmtest.NewFakeModel(func(llmtest.Call) (string, error) { return "", boom }))

		_, err := client.Complete(context.Background(), Request{Model: ModelGpt4, User: "hi"})
		require.ErrorIs(t, err, boom)
	})

	t.Run("NoChoices", func(t *testing.T) {
		client := NewClientWithModel(emptyModel{})
		_, err := client.Complete(context.Background(), Request{Model: ModelGpt4, User: "hi"})
		require.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := NewClientWithModel(llmtest.Respond("never"))
		_, err := client.Complete(ctx, Request{Model: ModelGpt4, User: "hi"})
		require.ErrorIs(t, err, context.Canceled)
	})
}

type countingProvider struct {
	created map[ModelID]int
}

func (p *countingProvider) Type() LlmType {
	return LlmTypeOllama
}

func (p *countingProvider) CreateModel(_ context.Context, id ModelID) (llms.Model, error) {
	p.created[id]++
	return llmtest.Respond(string(id)), nil
}

func TestClientCachesModels(t *testing.T) {
	provider := &countingProvider{created: map[ModelID]int{}}
	client := NewClient(provider)

	for i := 0; i < 3; i++ {
		result, err := client.Complete(context.Background(), Request{Model: ModelGpt4, User: "hi"})
		require.NoError(t, err)
		require.Equal(t, "gpt-4", result)
	}
	_, err := client.Complete(context.Background(), Request{Model: ModelGpt35Turbo, User: "hi"})
	require.NoError(t, err)

	require.Equal(t, map[ModelID]int{ModelGpt4: 1, ModelGpt35Turbo: 1}, provider.created)
}

type emptyModel struct{}

func (emptyModel) GenerateContent(
	context.Context, []llms.MessageContent, ...llms.CallOption) (*llms.ContentResponse, error) {
	return &llms.ContentResponse{}, nil
}

func (emptyModel) Call(context.Context, string, ...llms.CallOption) (string, error) {
	return "", nil
}
