// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_SetGetUnset(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		value any
	}{
		{name: "RootValue", path: "telemetry", value: "off"},
		{name: "NestedValue", path: "ai.provider", value: "ollama"},
		{name: "DeepValue", path: "ai.models.gpt-4", value: "llama3"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := NewEmptyConfig()
			require.NoError(t, c.Set(test.path, test.value))

			value, ok := c.Get(test.path)
			require.True(t, ok)
			require.Equal(t, test.value, value)

			require.NoError(t, c.Unset(test.path))
			value, ok = c.Get(test.path)
			require.False(t, ok)
			require.Nil(t, value)
		})
	}
}

func Test_UnsetMissingPathIsNoop(t *testing.T) {
	c := NewConfig(map[string]any{"ai": map[string]any{"provider": "azure"}})
	require.NoError(t, c.Unset("download.backoff"))
	require.NoError(t, c.Unset("ai.models.gpt-4"))
	require.Equal(t, []string{"ai.provider"}, c.Paths())
}

func Test_SetThroughScalarFails(t *testing.T) {
	c := NewConfig(map[string]any{"ai": "azure"})
	require.Error(t, c.Set("ai.provider", "ollama"))
	require.Error(t, c.Set("ai..provider", "ollama"))
}

func Test_GetSection(t *testing.T) {
	c := NewEmptyConfig()
	require.NoError(t, c.Set("ai.models.gpt-4", "gpt-4o"))
	require.NoError(t, c.Set("ai.models.gpt-35-turbo", "gpt-4o-mini"))

	var models map[string]string
	found, err := c.GetSection(KeyAiModels, &models)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, map[string]string{"gpt-4": "gpt-4o", "gpt-35-turbo": "gpt-4o-mini"}, models)

	found, err = c.GetSection("missing", &models)
	require.NoError(t, err)
	require.False(t, found)
}

func Test_GetDownloadSettings(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		settings, err := GetDownloadSettings(NewEmptyConfig())
		require.NoError(t, err)
		require.Equal(t, DefaultDownloadSettings(), settings)
	})

	t.Run("StringAndNumberValues", func(t *testing.T) {
		c := NewEmptyConfig()
		require.NoError(t, c.Set(KeyDownloadAttempts, "4"))
		require.NoError(t, c.Set(KeyDownloadWorkers, float64(8)))
		require.NoError(t, c.Set(KeyDownloadBackoff, "250ms"))
		require.NoError(t, c.Set(KeyDownloadRateLimit, "12.5"))

		settings, err := GetDownloadSettings(c)
		require.NoError(t, err)
		require.Equal(t, 4, settings.MaxAttempts)
		require.Equal(t, 8, settings.Concurrency)
		require.Equal(t, "250ms", settings.Backoff.String())
		require.Equal(t, 12.5, settings.RequestsPerSecond)
	})

	t.Run("InvalidValue", func(t *testing.T) {
		c := NewEmptyConfig()
		require.NoError(t, c.Set(KeyDownloadAttempts, "many"))
		_, err := GetDownloadSettings(c)
		require.Error(t, err)
	})
}
