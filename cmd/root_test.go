// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/azure/teamsfx/internal"
	"github.com/azure/teamsfx/pkg/chat"
	"github.com/azure/teamsfx/pkg/config"
	"github.com/azure/teamsfx/pkg/llm"
	"github.com/azure/teamsfx/pkg/llm/llmtest"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

const testSamplesConfig = `{
  "samples": [
    { "id": "bot-sso", "title": "Bot App with SSO Enabled", "fullDescription": "A bot that signs users in." },
    { "id": "dashboard", "title": "Dashboard", "fullDescription": "A tab with widgets." }
  ]
}`

const testGitTree = `{
  "tree": [
    { "path": "bot-sso/package.json", "type": "blob" },
    { "path": "bot-sso/src", "type": "tree" },
    { "path": "bot-sso/src/index.ts", "type": "blob" },
    { "path": "dashboard/package.json", "type": "blob" }
  ]
}`

type fakeModelProvider struct {
	model llms.Model
}

func (p fakeModelProvider) Type() llm.LlmType {
	return llm.LlmTypeOpenAI
}

func (p fakeModelProvider) CreateModel(context.Context, llm.ModelID) (llms.Model, error) {
	return p.model, nil
}

func newTestDependencies(t *testing.T, model llms.Model) *dependencies {
	t.Setenv("TEAMSFX_CONFIG_DIR", t.TempDir())

	mux := http.NewServeMux()
	mux.HandleFunc("/config.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testSamplesConfig))
	})
	mux.HandleFunc("/repos/OfficeDev/TeamsFx-Samples/git/trees/v3", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testGitTree))
	})
	mux.HandleFunc("/raw/OfficeDev/TeamsFx-Samples/v3/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("content of " + strings.TrimPrefix(r.URL.Path, "/raw/OfficeDev/TeamsFx-Samples/v3/")))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	deps := newDependencies(&internal.GlobalCommandOptions{})
	deps.httpClient = server.Client()
	deps.gitHubApiUrl = server.URL
	deps.rawContentUrl = server.URL + "/raw"
	deps.modelProvider = func(config.Config) (llm.ModelProvider, error) {
		return fakeModelProvider{model: model}, nil
	}

	_, err := execute(t, deps, "config", "set", config.KeySamplesConfigUrl, server.URL+"/config.json")
	require.NoError(t, err)
	return deps
}

func execute(t *testing.T, deps *dependencies, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	rootCmd := newRootCmd(deps)
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestVersion(t *testing.T) {
	deps := newDependencies(&internal.GlobalCommandOptions{})

	out, err := execute(t, deps, "version")
	require.NoError(t, err)
	require.Equal(t, "teamsfx version "+internal.Version+"\n", out)

	out, err = execute(t, newDependencies(&internal.GlobalCommandOptions{}), "version", "--output", "json")
	require.NoError(t, err)
	require.JSONEq(t, `{"version": "`+internal.Version+`", "dev": true}`, out)
}

func TestUnsupportedOutput(t *testing.T) {
	_, err := execute(t, newDependencies(&internal.GlobalCommandOptions{}), "version", "-o", "xml")
	require.Error(t, err)
}

func TestConfigCommands(t *testing.T) {
	t.Setenv("TEAMSFX_CONFIG_DIR", t.TempDir())
	run := func(args ...string) (string, error) {
		return execute(t, newDependencies(&internal.GlobalCommandOptions{}), args...)
	}

	_, err := run("config", "set", config.KeyAiProvider, "ollama")
	require.NoError(t, err)
	_, err = run("config", "set", config.KeyDownloadWorkers, "5")
	require.NoError(t, err)

	out, err := run("config", "get", config.KeyDownloadWorkers)
	require.NoError(t, err)
	require.JSONEq(t, "5", out)

	out, err = run("config", "show")
	require.NoError(t, err)
	require.JSONEq(t, `{"ai": {"provider": "ollama"}, "download": {"concurrency": 5}}`, out)

	out, err = run("config", "show", "-o", "yaml")
	require.NoError(t, err)
	require.Contains(t, out, "provider: ollama")

	_, err = run("config", "unset", config.KeyAiProvider)
	require.NoError(t, err)
	_, err = run("config", "get", config.KeyAiProvider)
	require.Error(t, err)
}

func TestSampleCommands(t *testing.T) {
	deps := newTestDependencies(t, llmtest.Respond(""))

	t.Run("List", func(t *testing.T) {
		out, err := execute(t, deps, "sample", "list")
		require.NoError(t, err)
		require.Equal(t, "bot-sso  Bot App with SSO Enabled\ndashboard  Dashboard\n", out)
	})

	t.Run("Tree", func(t *testing.T) {
		out, err := execute(t, deps, "sample", "tree", "bot-sso")
		require.NoError(t, err)
		require.Contains(t, out, "bot-sso/\n")
		require.Contains(t, out, "src/\n")
		require.Contains(t, out, "index.ts\n")
		require.Contains(t, out, "package.json\n")
	})

	t.Run("Download", func(t *testing.T) {
		dir := t.TempDir()
		_, err := execute(t, deps, "sample", "download", "bot-sso", dir)
		require.NoError(t, err)

		content, err := os.ReadFile(filepath.Join(dir, "bot-sso", "src", "index.ts"))
		require.NoError(t, err)
		require.Equal(t, "content of bot-sso/src/index.ts", string(content))
	})

	t.Run("Scaffold", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "my-bot")
		out, err := execute(t, deps, "sample", "scaffold", "bot-sso", dir)
		require.NoError(t, err)
		require.Contains(t, out, "Sample 'bot-sso' scaffolded in "+dir)
		require.FileExists(t, filepath.Join(dir, "package.json"))
		require.FileExists(t, filepath.Join(dir, "src", "index.ts"))
	})

	t.Run("UnknownSample", func(t *testing.T) {
		_, err := execute(t, deps, "sample", "tree", "missing")
		require.Error(t, err)
	})
}

func TestCreate(t *testing.T) {
	model := llmtest.Route(map[string]string{
		"pick the projects":  `{"app": ["notification"]}`,
		"in a few sentences": "A bot that posts notifications.",
	}, "")
	deps := newTestDependencies(t, model)

	out, err := execute(t, deps, "create", "notify", "my", "team")
	require.NoError(t, err)
	require.Contains(t, out, "A bot that posts notifications.")
	require.Contains(t, out, "[Create this template] teamsapp new --capability notification")

	require.Equal(t, "notify my team", model.Calls()[0].User)
}

func TestCodeToCloud(t *testing.T) {
	project := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(project, "package.json"), []byte(`{}`), 0600))

	deps := newTestDependencies(t, llmtest.Respond("none"))
	deps.options.Cwd = project

	out, err := execute(t, deps, "codetocloud", "--cwd", project, "tell", "me", "a", "joke")
	require.NoError(t, err)
	require.Equal(t, "Sorry, I can't help with that right now.\n", out)

	store := chat.NewHistoryStore(project)
	conversation, err := store.Load("codetocloud")
	require.NoError(t, err)
	require.Equal(t, []chat.Turn{
		chat.UserTurn("tell me a joke"),
		chat.AssistantTurn("Sorry, I can't help with that right now.\n"),
	}, conversation.Turns())

	_, err = execute(t, deps, "codetocloud", "--cwd", project, "--reset", "again")
	require.NoError(t, err)
	conversation, err = store.Load("codetocloud")
	require.NoError(t, err)
	require.Equal(t, 2, conversation.Len())
	require.Equal(t, chat.UserTurn("again"), conversation.Turns()[0])
}

func TestCreateJsonOutput(t *testing.T) {
	deps := newTestDependencies(t, llmtest.Route(map[string]string{"pick the projects": `{"app": []}`}, ""))

	out, err := execute(t, deps, "create", "-o", "json", "a", "fridge")
	require.NoError(t, err)
	require.Contains(t, out, `"command": "create"`)
	require.Contains(t, out, `"kind": "markdown"`)
}
