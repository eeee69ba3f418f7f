// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package llm

import (
	"context"
	"errors"

	"github.com/tmc/langchaingo/llms"
)

var _ llms.Model = (*Model)(nil)

// Model wraps a langchaingo model with call options fixed at creation time, such as temperature.
type Model struct {
	model   llms.Model
	options []llms.CallOption
}

func NewModel(model llms.Model, options ...llms.CallOption) *Model {
	return &Model{
		model:   model,
		options: options,
	}
}

// GenerateContent applies the fixed options first so per call options win.
func (m *Model) GenerateContent(
	ctx context.Context,
	messages []llms.MessageContent,
	options ...llms.CallOption,
) (*llms.ContentResponse, error) {
	allOptions := make([]llms.CallOption, 0, len(m.options)+len(options))
	allOptions = append(allOptions, m.options...)
	allOptions = append(allOptions, options...)

	return m.model.GenerateContent(ctx, messages, allOptions...)
}

func (m *Model) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", errors.New("deprecated, call GenerateContent")
}
