// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/azure/teamsfx/internal"
	"github.com/azure/teamsfx/pkg/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// ModelID names the model family a prompt was written for.
type ModelID string

const (
	ModelGpt4       ModelID = "gpt-4"
	ModelGpt35Turbo ModelID = "gpt-35-turbo"
)

type LlmType string

const (
	LlmTypeOpenAIAzure LlmType = "azure"
	LlmTypeOpenAI      LlmType = "openai"
	LlmTypeOllama      LlmType = "ollama"
)

const (
	llmTypeEnvVar      = "TEAMSFX_LLM_TYPE"
	azureUrlEnvVar     = "TEAMSFX_AZURE_OPENAI_URL"
	azureVersionEnvVar = "TEAMSFX_AZURE_OPENAI_VERSION"
	apiKeyEnvVar       = "OPENAI_API_KEY"
	ollamaHostEnvVar   = "OLLAMA_HOST"

	defaultAzureApiVersion = "2024-02-01"
	defaultOllamaModel     = "llama3"
)

// ModelProvider creates the model that serves a model id.
type ModelProvider interface {
	Type() LlmType
	CreateModel(ctx context.Context, id ModelID) (llms.Model, error)
}

// ModelSettings are the optional per provider settings stored under "ai.<provider>" in the user config.
type ModelSettings struct {
	Temperature *float64 `json:"temperature"`
	MaxTokens   *int     `json:"maxTokens"`
}

func (s ModelSettings) callOptions() []llms.CallOption {
	var options []llms.CallOption
	if s.Temperature != nil {
		options = append(options, llms.WithTemperature(*s.Temperature))
	}
	if s.MaxTokens != nil {
		options = append(options, llms.WithMaxTokens(*s.MaxTokens))
	}
	return options
}

// NewModelProvider selects the provider from TEAMSFX_LLM_TYPE, then "ai.provider", defaulting to Azure OpenAI.
func NewModelProvider(userConfig config.Config) (ModelProvider, error) {
	llmType := LlmType(strings.ToLower(os.Getenv(llmTypeEnvVar)))
	if llmType == "" {
		if configured, has := userConfig.GetString(config.KeyAiProvider); has {
			llmType = LlmType(strings.ToLower(configured))
		}
	}
	if llmType == "" {
		llmType = LlmTypeOpenAIAzure
	}

	var settings ModelSettings
	if _, err := userConfig.GetSection("ai."+string(llmType), &settings); err != nil {
		return nil, err
	}

	base := providerBase{config: userConfig, settings: settings}
	switch llmType {
	case LlmTypeOpenAIAzure:
		return &azureOpenAiProvider{base}, nil
	case LlmTypeOpenAI:
		return &openAiProvider{base}, nil
	case LlmTypeOllama:
		return &ollamaProvider{base}, nil
	default:
		return nil, &internal.ErrorWithSuggestion{
			Err: fmt.Errorf("unsupported language model provider '%s'", llmType),
			Suggestion: fmt.Sprintf(
				"Set '%s' to one of azure, openai or ollama: teamsfx config set %s azure",
				config.KeyAiProvider, config.KeyAiProvider),
		}
	}
}

type providerBase struct {
	config   config.Config
	settings ModelSettings
}

// modelName maps a model id to a deployment or model name through "ai.models.<id>".
func (p providerBase) modelName(id ModelID, fallback string) string {
	if name, has := p.config.GetString(config.KeyAiModels + "." + string(id)); has && name != "" {
		return name
	}
	return fallback
}

type azureOpenAiProvider struct {
	providerBase
}

func (p *azureOpenAiProvider) Type() LlmType {
	return LlmTypeOpenAIAzure
}

func (p *azureOpenAiProvider) CreateModel(_ context.Context, id ModelID) (llms.Model, error) {
	var missing []string
	endpoint := os.Getenv(azureUrlEnvVar)
	if endpoint == "" {
		missing = append(missing, azureUrlEnvVar)
	}
	apiKey := os.Getenv(apiKeyEnvVar)
	if apiKey == "" {
		missing = append(missing, apiKeyEnvVar)
	}
	if len(missing) > 0 {
		return nil, &internal.ErrorWithSuggestion{
			Err: fmt.Errorf("missing required environment variable(s): %s", strings.Join(missing, ", ")),
			Suggestion: fmt.Sprintf(
				"Set them in your shell or in ~/.teamsfx/.env, or switch provider with '%s=ollama'", llmTypeEnvVar),
		}
	}

	apiVersion := os.Getenv(azureVersionEnvVar)
	if apiVersion == "" {
		apiVersion = defaultAzureApiVersion
	}

	// the deployment name defaults to the model id
	model, err := openai.New(
		openai.WithModel(p.modelName(id, string(id))),
		openai.WithAPIType(openai.APITypeAzure),
		openai.WithAPIVersion(apiVersion),
		openai.WithBaseURL(endpoint),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure OpenAI model: %w", err)
	}

	return NewModel(model, p.settings.callOptions()...), nil
}

type openAiProvider struct {
	providerBase
}

func (p *openAiProvider) Type() LlmType {
	return LlmTypeOpenAI
}

var openAiModelNames = map[ModelID]string{
	ModelGpt4:       "gpt-4",
	ModelGpt35Turbo: "gpt-3.5-turbo",
}

func (p *openAiProvider) CreateModel(_ context.Context, id ModelID) (llms.Model, error) {
	apiKey := os.Getenv(apiKeyEnvVar)
	if apiKey == "" {
		return nil, &internal.ErrorWithSuggestion{
			Err:        fmt.Errorf("missing required environment variable: %s", apiKeyEnvVar),
			Suggestion: "Create an API key at https://platform.openai.com/api-keys and export it as " + apiKeyEnvVar,
		}
	}

	fallback, has := openAiModelNames[id]
	if !has {
		fallback = string(id)
	}

	model, err := openai.New(
		openai.WithModel(p.modelName(id, fallback)),
		openai.WithToken(apiKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI model: %w", err)
	}

	return NewModel(model, p.settings.callOptions()...), nil
}

type ollamaProvider struct {
	providerBase
}

func (p *ollamaProvider) Type() LlmType {
	return LlmTypeOllama
}

func (p *ollamaProvider) CreateModel(_ context.Context, id ModelID) (llms.Model, error) {
	options := []ollama.Option{
		ollama.WithModel(p.modelName(id, defaultOllamaModel)),
	}
	if host := os.Getenv(ollamaHostEnvVar); host != "" {
		options = append(options, ollama.WithServerURL(host))
	}

	model, err := ollama.New(options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama model: %w", err)
	}

	return NewModel(model, p.settings.callOptions()...), nil
}
