// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package codetocloud implements the "codetocloud" chat command, which recommends Azure resources for the
// project in the workspace and refines the recommendation on request.
package codetocloud

import (
	"context"

	"github.com/azure/teamsfx/internal/tracing"
	"github.com/azure/teamsfx/pkg/chat"
	"github.com/azure/teamsfx/pkg/llm"
)

const (
	CommandName = "codetocloud"

	recommendCommandName        = "recommend"
	improveRecommendCommandName = "improveRecommend"

	intentHistoryTurns  = 2
	improveHistoryTurns = 4

	recommendDescription = "Recommend Azure Resources for your app, " +
		"this is the first step to migrate your app to cloud."

	improveRecommendDescription = "Improve, Add, Modify or Remove Azure Resources for your app. " +
		"Used for improving the previous recommended Azure Resources for your app."
)

type Handler struct {
	client *llm.Client
	// context is nil when no workspace folder is open.
	context     *Context
	subCommands *chat.SlashCommands
}

// NewHandler creates the handler. codeContext may be nil when no workspace is open.
func NewHandler(client *llm.Client, codeContext *Context) *Handler {
	h := &Handler{client: client, context: codeContext}

	h.subCommands = chat.NewSlashCommands(
		chat.SlashCommand{
			Name:             recommendCommandName,
			ShortDescription: recommendDescription,
			LongDescription:  recommendDescription,
			Handler:          chat.HandlerFunc(h.recommend),
		},
		chat.SlashCommand{
			Name:             improveRecommendCommandName,
			ShortDescription: improveRecommendDescription,
			LongDescription:  improveRecommendDescription,
			Handler:          chat.HandlerFunc(h.improveRecommend),
		},
	)

	return h
}

func (h *Handler) SlashCommand() chat.SlashCommand {
	return chat.SlashCommand{
		Name:             CommandName,
		ShortDescription: "code to cloud",
		LongDescription:  "Recommend and refine the Azure resources that host the project in the workspace.",
		Handler:          h,
	}
}

// SubCommands lists the operations the handler routes prompts to.
func (h *Handler) SubCommands() []chat.SlashCommand {
	return h.subCommands.List()
}

func (h *Handler) Handle(
	ctx context.Context,
	request chat.Request,
	stream chat.ResponseStream,
) (result chat.Result, err error) {
	ctx, span := tracing.Start(ctx, "chat.codetocloud",
		tracing.CommandKey.String(CommandName),
		tracing.RequestIdKey.String(request.Id),
	)
	defer func() { tracing.End(span, err) }()

	if h.context == nil {
		stream.Markdown("No workspace folder is opened.\n")
		return chat.Result{Command: CommandName}, nil
	}

	target, found, err := h.detectIntent(ctx, request)
	if err != nil {
		return chat.Result{Command: CommandName}, err
	}
	if !found {
		stream.Markdown("Sorry, I can't help with that right now.\n")
		return chat.Result{Command: CommandName}, nil
	}

	span.SetAttributes(tracing.SubCommandKey.String(target.Name))
	subRequest := request
	subRequest.Command = target.Name
	return h.subCommands.Dispatch(ctx, subRequest, stream)
}

// detectIntent picks the sub command. Once resources were recommended the prompt is framed as a change to them.
func (h *Handler) detectIntent(ctx context.Context, request chat.Request) (chat.IntentTarget, bool, error) {
	prompt := request.Prompt
	if h.context.Recommendations().Len() > 0 {
		prompt = "You have recommend some azure resources for me. And now my expectation is " + prompt
	}

	return chat.DetectIntent(ctx, h.client, h.subCommands.IntentTargets(), request.WithPrompt(prompt), intentHistoryTurns)
}
