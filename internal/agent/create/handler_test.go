// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package create

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/azure/teamsfx/internal/tracing"
	"github.com/azure/teamsfx/pkg/chat"
	"github.com/azure/teamsfx/pkg/filetree"
	"github.com/azure/teamsfx/pkg/llm"
	"github.com/azure/teamsfx/pkg/llm/llmtest"
	"github.com/azure/teamsfx/pkg/samples"
	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type fakeSamples struct {
	collection *samples.SampleCollection
	onList     func()
	downloads  []string
	failures   []samples.DownloadFailure
	err        error
}

func (f *fakeSamples) SampleCollection(ctx context.Context) (*samples.SampleCollection, error) {
	if f.onList != nil {
		f.onList()
	}
	return f.collection, nil
}

func (f *fakeSamples) Download(
	ctx context.Context,
	sampleId string,
	destination string,
	onProgress func(samples.DownloadProgress),
) (*samples.BuildResult, error) {
	f.downloads = append(f.downloads, sampleId)
	if f.err != nil {
		return nil, f.err
	}

	root := filetree.NewDir(sampleId)
	if err := root.Insert("src/index.ts"); err != nil {
		return nil, err
	}
	return &samples.BuildResult{
		Nodes:    root.Children,
		Failures: f.failures,
		Folder:   filepath.Join(destination, sampleId),
	}, nil
}

func newFakeSamples() *fakeSamples {
	return &fakeSamples{
		collection: &samples.SampleCollection{Samples: []samples.Sample{
			{
				Id:              "bot-sso",
				Title:           "Bot App with SSO Enabled",
				FullDescription: "This sample shows single sign on in a bot.",
			},
			{
				Id:              "hello-world-tab-with-backend",
				Title:           "Tab App with Azure Backend",
				FullDescription: "A tab calling an Azure Function.",
			},
		}},
	}
}

func newModel(matchAnswer string) *llmtest.FakeModel {
	return llmtest.Route(map[string]string{
		"pick the projects":     matchAnswer,
		"in a few sentences":    "This project signs users in.",
		"single short sentence": "Signs users in.",
	}, "")
}

func TestHandle(t *testing.T) {
	t.Run("NoMatch", func(t *testing.T) {
		stream := chat.NewRecordingStream()
		handler := NewHandler(llm.NewClientWithModel(newModel(`{"app": []}`)), newFakeSamples())

		result, err := handler.Handle(context.Background(), chat.NewRequest(CommandName, "a fridge controller", nil), stream)
		require.NoError(t, err)
		require.Equal(t, CommandName, result.Command)
		require.Equal(t,
			"Sorry, I can't help with that right now. Please try to describe your app scenario.\n",
			stream.MarkdownText())
		require.Empty(t, stream.Buttons())
	})

	t.Run("SingleSample", func(t *testing.T) {
		source := newFakeSamples()
		tempDir := t.TempDir()
		stream := chat.NewRecordingStream()
		handler := NewHandler(
			llm.NewClientWithModel(newModel("```json\n{\"app\": [\"bot-sso\"]}\n```")),
			source,
			WithTempDir(func() (string, error) { return tempDir, nil }),
		)

		result, err := handler.Handle(context.Background(), chat.NewRequest(CommandName, "a bot with sso", nil), stream)
		require.NoError(t, err)
		require.Equal(t, []string{"bot-sso"}, source.downloads)

		folder := filepath.Join(tempDir, "bot-sso")
		require.Equal(t, folder, result.Metadata["folder"])
		require.Equal(t,
			"This project signs users in.\nHere is the files of the sample project.",
			stream.MarkdownText())

		var tree *chat.Part
		for _, part := range stream.Parts() {
			if part.Kind == chat.FileTreePart {
				tree = &part
			}
		}
		require.NotNil(t, tree)
		require.Equal(t, folder, tree.BaseFolder)
		require.Equal(t, []string{"src/index.ts"}, filetree.Paths(tree.Nodes))

		require.Equal(t, []chat.Button{{
			Title:     "Scaffold this sample",
			Command:   ScaffoldSampleCommand,
			Arguments: []any{"bot-sso", "--source", folder},
		}}, stream.Buttons())
	})

	t.Run("SampleWithFailures", func(t *testing.T) {
		source := newFakeSamples()
		source.failures = []samples.DownloadFailure{{Path: "bot-sso/README.md", Err: errors.New("500")}}
		stream := chat.NewRecordingStream()
		handler := NewHandler(
			llm.NewClientWithModel(newModel(`{"app": ["bot-sso"]}`)),
			source,
			WithTempDir(func() (string, error) { return t.TempDir(), nil }),
		)

		_, err := handler.Handle(context.Background(), chat.NewRequest(CommandName, "a bot with sso", nil), stream)
		require.NoError(t, err)
		require.Contains(t, stream.MarkdownText(), "1 files of the sample could not be downloaded.")
	})

	t.Run("DownloadError", func(t *testing.T) {
		source := newFakeSamples()
		source.err = samples.ErrSampleNotFound
		handler := NewHandler(
			llm.NewClientWithModel(newModel(`{"app": ["bot-sso"]}`)),
			source,
			WithTempDir(func() (string, error) { return t.TempDir(), nil }),
		)

		_, err := handler.Handle(context.Background(), chat.NewRequest(CommandName, "a bot", nil), chat.NewRecordingStream())
		require.ErrorIs(t, err, samples.ErrSampleNotFound)
	})

	t.Run("SingleTemplate", func(t *testing.T) {
		source := newFakeSamples()
		stream := chat.NewRecordingStream()
		handler := NewHandler(llm.NewClientWithModel(newModel(`{"app": ["notification"]}`)), source)

		_, err := handler.Handle(context.Background(), chat.NewRequest(CommandName, "notify my team", nil), stream)
		require.NoError(t, err)
		require.Empty(t, source.downloads)
		require.Equal(t, []chat.Button{{
			Title:     "Create this template",
			Command:   CreateTemplateCommand,
			Arguments: []any{"--capability", "notification"},
		}}, stream.Buttons())
	})

	t.Run("Multiple", func(t *testing.T) {
		stream := chat.NewRecordingStream()
		handler := NewHandler(
			llm.NewClientWithModel(newModel(`{"app": ["bot", "unknown", "bot-sso", "bot", "notification", "tab-non-sso"]}`)),
			newFakeSamples(),
		)

		result, err := handler.Handle(context.Background(), chat.NewRequest(CommandName, "some bot", nil), stream)
		require.NoError(t, err)
		require.Equal(t, []string{"bot", "bot-sso", "notification", "tab-non-sso"}, result.Metadata["matches"])

		require.Equal(t,
			"I found 3 projects that match your description.\n"+
				"- Basic Bot: Signs users in.\n"+
				"- Bot App with SSO Enabled: Signs users in.\n"+
				"- Chat Notification Message: Signs users in.\n",
			stream.MarkdownText())

		buttons := stream.Buttons()
		require.Len(t, buttons, 3)
		require.Equal(t, "Create this template", buttons[0].Title)
		require.Equal(t, []any{"bot-sso"}, buttons[1].Arguments)
	})

	t.Run("KeywordFallback", func(t *testing.T) {
		handler := NewHandler(llm.NewClientWithModel(newModel("I think the notification template fits.")), newFakeSamples())

		result, err := handler.Handle(
			context.Background(),
			chat.NewRequest(CommandName, "send notification messages on a schedule", nil),
			chat.NewRecordingStream())
		require.NoError(t, err)
		require.Equal(t, "notification", result.Metadata["matches"].([]string)[0])
	})

	t.Run("ModelError", func(t *testing.T) {
		boom := errors.New("throttled")
		model := llmtest.NewFakeModel(func(llmtest.Call) (string, error) { return "", boom })
		handler := NewHandler(llm.NewClientWithModel(model), newFakeSamples())

		_, err := handler.Handle(context.Background(), chat.NewRequest(CommandName, "a bot", nil), chat.NewRecordingStream())
		require.ErrorIs(t, err, boom)
	})
}

func TestHandleRecordsElapsedTime(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	mockClock := clock.NewMock()
	source := newFakeSamples()
	source.onList = func() { mockClock.Add(1500 * time.Millisecond) }

	handler := NewHandler(llm.NewClientWithModel(newModel(`{"app": []}`)), source, WithClock(mockClock))
	_, err := handler.Handle(context.Background(), chat.NewRequest(CommandName, "a bot", nil), chat.NewRecordingStream())
	require.NoError(t, err)

	var found bool
	for _, span := range recorder.Ended() {
		if span.Name() != "chat.create" {
			continue
		}
		found = true
		require.Contains(t, span.Attributes(), tracing.ElapsedMsKey.Int64(1500))
		require.Contains(t, span.Attributes(), tracing.MatchCountKey.Int(0))
	}
	require.True(t, found)
}

func TestRankByKeywords(t *testing.T) {
	candidates := []ProjectMetadata{
		{Id: "notification", Name: "Chat Notification Message", Description: "Sends notification messages on a schedule."},
		{Id: "command-bot", Name: "Chat Command", Description: "Responds to commands in chat."},
		{Id: "dashboard-tab", Name: "Dashboard", Description: "Shows widgets."},
	}

	tests := []struct {
		name     string
		prompt   string
		limit    int
		expected []string
	}{
		{name: "BestFirst", prompt: "chat notification on a schedule", limit: 3, expected: []string{"notification", "command-bot"}},
		{name: "Limit", prompt: "chat notification", limit: 1, expected: []string{"notification"}},
		{name: "NoOverlap", prompt: "a weather forecast", limit: 3, expected: []string{}},
		{name: "OnlyStopWords", prompt: "create a new app for teams", limit: 3, expected: nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, rankByKeywords(candidates, test.prompt, test.limit))
		})
	}
}

func TestTemplateProjects(t *testing.T) {
	projects, err := TemplateProjects()
	require.NoError(t, err)
	require.NotEmpty(t, projects)

	for _, project := range projects {
		require.Equal(t, ProjectTypeTemplate, project.Type)
		require.Equal(t, project.Id, project.Data["capabilities"])
		require.NotEmpty(t, project.Data["project-type"])
	}
}
