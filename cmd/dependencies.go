// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/azure/teamsfx/internal"
	"github.com/azure/teamsfx/pkg/config"
	"github.com/azure/teamsfx/pkg/httputil"
	"github.com/azure/teamsfx/pkg/llm"
	"github.com/azure/teamsfx/pkg/samples"
)

// dependencies builds the services commands need from the global options and user configuration.
type dependencies struct {
	options *internal.GlobalCommandOptions

	httpClient    *http.Client
	modelProvider func(config.Config) (llm.ModelProvider, error)
	// gitHubApiUrl and rawContentUrl replace the GitHub endpoints when set.
	gitHubApiUrl  string
	rawContentUrl string
}

func newDependencies(options *internal.GlobalCommandOptions) *dependencies {
	return &dependencies{
		options:       options,
		httpClient:    http.DefaultClient,
		modelProvider: llm.NewModelProvider,
	}
}

func (d *dependencies) configManager() (*config.UserConfigManager, error) {
	dir, err := config.GetUserConfigDir()
	if err != nil {
		return nil, err
	}

	return config.NewUserConfigManager(dir), nil
}

func (d *dependencies) userConfig() (config.Config, error) {
	manager, err := d.configManager()
	if err != nil {
		return nil, err
	}

	return manager.Load()
}

// workingDirectory is --cwd when set, otherwise the process working directory.
func (d *dependencies) workingDirectory() (string, error) {
	if d.options.Cwd != "" {
		return filepath.Abs(d.options.Cwd)
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return wd, nil
}

func (d *dependencies) samplesProvider(userConfig config.Config) (*samples.Provider, error) {
	settings, err := config.GetDownloadSettings(userConfig)
	if err != nil {
		return nil, &internal.ErrorWithSuggestion{
			Err: err,
			Suggestion: "Fix the value with 'teamsfx config set <path> <value>' " +
				"or remove it with 'teamsfx config unset <path>'.",
		}
	}

	client := httputil.NewClient(
		httputil.WithHttpClient(d.httpClient),
		httputil.WithUserAgent(internal.UserAgent()),
		httputil.WithRateLimit(settings.RequestsPerSecond, settings.Concurrency),
	)

	options := []samples.ProviderOption{
		samples.WithDownloadLimits(settings.MaxAttempts, settings.Concurrency, settings.Backoff),
	}
	if configUrl, has := userConfig.GetString(config.KeySamplesConfigUrl); has && configUrl != "" {
		options = append(options, samples.WithConfigUrl(configUrl))
	}
	if d.gitHubApiUrl != "" && d.rawContentUrl != "" {
		options = append(options, samples.WithGitHubEndpoints(d.gitHubApiUrl, d.rawContentUrl))
	}

	return samples.NewProvider(client, options...), nil
}

func (d *dependencies) llmClient(userConfig config.Config) (*llm.Client, error) {
	provider, err := d.modelProvider(userConfig)
	if err != nil {
		return nil, err
	}

	return llm.NewClient(provider), nil
}
