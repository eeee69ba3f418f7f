// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package create implements the "create" chat command, which finds a Teams template or sample matching an
// app description.
package create

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/azure/teamsfx/internal/tracing"
	"github.com/azure/teamsfx/pkg/chat"
	"github.com/azure/teamsfx/pkg/filetree"
	"github.com/azure/teamsfx/pkg/llm"
	"github.com/azure/teamsfx/pkg/samples"
	"github.com/benbjohnson/clock"
)

const (
	CommandName = "create"

	// ScaffoldSampleCommand copies a downloaded sample into a project folder.
	ScaffoldSampleCommand = "teamsfx sample scaffold"
	// CreateTemplateCommand creates a project from a Teams template with the Teams Toolkit CLI.
	CreateTemplateCommand = "teamsapp new"

	maxListedProjects = 3
)

// SampleSource lists samples and downloads their files. *samples.Provider implements it.
type SampleSource interface {
	SampleCollection(ctx context.Context) (*samples.SampleCollection, error)
	Download(
		ctx context.Context,
		sampleId string,
		destination string,
		onProgress func(samples.DownloadProgress),
	) (*samples.BuildResult, error)
}

type Handler struct {
	client  *llm.Client
	samples SampleSource
	clock   clock.Clock
	tempDir func() (string, error)
}

type HandlerOption func(*Handler)

func WithClock(c clock.Clock) HandlerOption {
	return func(h *Handler) {
		h.clock = c
	}
}

// WithTempDir sets how the folder receiving a previewed sample is created.
func WithTempDir(tempDir func() (string, error)) HandlerOption {
	return func(h *Handler) {
		h.tempDir = tempDir
	}
}

func NewHandler(client *llm.Client, source SampleSource, options ...HandlerOption) *Handler {
	h := &Handler{
		client:  client,
		samples: source,
		clock:   clock.New(),
		tempDir: func() (string, error) {
			return os.MkdirTemp("", "teamsfx-sample-")
		},
	}

	for _, option := range options {
		option(h)
	}

	return h
}

// SlashCommand registers the handler under the "create" name.
func (h *Handler) SlashCommand() chat.SlashCommand {
	return chat.SlashCommand{
		Name:             CommandName,
		ShortDescription: "Create a new Teams app from a template or a sample",
		LongDescription:  "Describe the app you want to build and get the Teams templates and samples that match it.",
		Handler:          h,
	}
}

func (h *Handler) Handle(
	ctx context.Context,
	request chat.Request,
	stream chat.ResponseStream,
) (result chat.Result, err error) {
	start := h.clock.Now()
	ctx, span := tracing.Start(ctx, "chat.create",
		tracing.CommandKey.String(CommandName),
		tracing.RequestIdKey.String(request.Id),
	)
	defer func() {
		span.SetAttributes(tracing.ElapsedMsKey.Int64(h.clock.Since(start).Milliseconds()))
		tracing.End(span, err)
	}()

	result = chat.Result{Command: CommandName}

	candidates, err := h.candidates(ctx)
	if err != nil {
		return result, err
	}

	matched, err := matchProject(ctx, h.client, candidates, request.Prompt)
	if err != nil {
		return result, fmt.Errorf("matching projects: %w", err)
	}
	span.SetAttributes(tracing.MatchCountKey.Int(len(matched)))

	ids := make([]string, 0, len(matched))
	for _, project := range matched {
		ids = append(ids, project.Id)
	}
	result.Metadata = map[string]any{"matches": ids}

	switch len(matched) {
	case 0:
		stream.Markdown("Sorry, I can't help with that right now. Please try to describe your app scenario.\n")
		return result, nil
	case 1:
		folder, err := h.describeProject(ctx, matched[0], stream)
		if folder != "" {
			result.Metadata["folder"] = folder
		}
		return result, err
	default:
		listed := matched[:min(len(matched), maxListedProjects)]
		stream.Markdown(fmt.Sprintf("I found %d projects that match your description.\n", len(listed)))
		for _, project := range listed {
			stream.Markdown(fmt.Sprintf("- %s: ", project.Name))
			if _, err := chat.StreamMarkdown(ctx, h.client, llm.Request{
				Model:  llm.ModelGpt35Turbo,
				System: briefDescribeProjectPrompt,
				User:   projectUserPrompt(project),
			}, stream); err != nil {
				return result, err
			}
			stream.Markdown("\n")
			stream.Button(projectButton(project, nil))
		}
		return result, nil
	}
}

func (h *Handler) candidates(ctx context.Context) ([]ProjectMetadata, error) {
	candidates, err := TemplateProjects()
	if err != nil {
		return nil, err
	}

	collection, err := h.samples.SampleCollection(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading samples: %w", err)
	}

	return append(candidates, SampleProjects(collection)...), nil
}

// describeProject streams a full description of project. A sample is downloaded into a temporary folder whose
// path is returned, and its files are shown.
func (h *Handler) describeProject(
	ctx context.Context,
	project ProjectMetadata,
	stream chat.ResponseStream,
) (string, error) {
	if _, err := chat.StreamMarkdown(ctx, h.client, llm.Request{
		Model:  llm.ModelGpt35Turbo,
		System: describeProjectPrompt,
		User:   projectUserPrompt(project),
	}, stream); err != nil {
		return "", err
	}

	if project.Type != ProjectTypeSample {
		stream.Button(projectButton(project, nil))
		return "", nil
	}

	folder, err := h.showFileTree(ctx, project, stream)
	if err != nil {
		return "", err
	}

	stream.Button(projectButton(project, []any{"--source", folder}))
	return folder, nil
}

func (h *Handler) showFileTree(ctx context.Context, project ProjectMetadata, stream chat.ResponseStream) (string, error) {
	stream.Markdown("\nHere is the files of the sample project.")

	tempFolder, err := h.tempDir()
	if err != nil {
		return "", fmt.Errorf("creating sample folder: %w", err)
	}

	ctx, span := tracing.Start(ctx, "samples.download", tracing.SampleIdKey.String(project.Id))
	result, err := h.samples.Download(ctx, project.Id, tempFolder, nil)
	if result != nil {
		span.SetAttributes(
			tracing.FileCountKey.Int(len(filetree.Paths(result.Nodes))),
			tracing.FailureCountKey.Int(len(result.Failures)),
		)
	}
	tracing.End(span, err)
	if err != nil {
		return "", fmt.Errorf("downloading sample '%s': %w", project.Id, err)
	}

	stream.FileTree(result.Nodes, result.Folder)
	if len(result.Failures) > 0 {
		log.Printf("sample '%s' downloaded with failures: %v", project.Id, result.Err())
		stream.Markdown(fmt.Sprintf("\n%d files of the sample could not be downloaded.\n", len(result.Failures)))
	}

	return result.Folder, nil
}

func projectButton(project ProjectMetadata, extra []any) chat.Button {
	if project.Type == ProjectTypeSample {
		return chat.Button{
			Title:     "Scaffold this sample",
			Command:   ScaffoldSampleCommand,
			Arguments: append([]any{project.Id}, extra...),
		}
	}

	return chat.Button{
		Title:     "Create this template",
		Command:   CreateTemplateCommand,
		Arguments: []any{"--capability", project.Data["capabilities"]},
	}
}
