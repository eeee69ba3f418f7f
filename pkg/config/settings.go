// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package config

import (
	"fmt"
	"strconv"
	"time"
)

const (
	KeyAiProvider        = "ai.provider"
	KeyAiModels          = "ai.models"
	KeySamplesConfigUrl  = "samples.configUrl"
	KeyDownloadAttempts  = "download.maxAttempts"
	KeyDownloadWorkers   = "download.concurrency"
	KeyDownloadBackoff   = "download.backoff"
	KeyDownloadRateLimit = "download.requestsPerSecond"
)

// DownloadSettings tunes sample downloads.
type DownloadSettings struct {
	MaxAttempts       int
	Concurrency       int
	Backoff           time.Duration
	RequestsPerSecond float64
}

func DefaultDownloadSettings() DownloadSettings {
	return DownloadSettings{
		MaxAttempts: 2,
		Concurrency: 20,
	}
}

// GetDownloadSettings reads the download section over the defaults.
func GetDownloadSettings(c Config) (DownloadSettings, error) {
	settings := DefaultDownloadSettings()

	var err error
	if settings.MaxAttempts, err = getInt(c, KeyDownloadAttempts, settings.MaxAttempts); err != nil {
		return settings, err
	}
	if settings.Concurrency, err = getInt(c, KeyDownloadWorkers, settings.Concurrency); err != nil {
		return settings, err
	}
	if settings.RequestsPerSecond, err = getFloat(c, KeyDownloadRateLimit, settings.RequestsPerSecond); err != nil {
		return settings, err
	}

	if raw, has := c.Get(KeyDownloadBackoff); has {
		backoff, err := time.ParseDuration(fmt.Sprint(raw))
		if err != nil {
			return settings, fmt.Errorf("'%s' must be a duration such as 500ms: %w", KeyDownloadBackoff, err)
		}
		settings.Backoff = backoff
	}

	return settings, nil
}

// getInt accepts JSON numbers as well as numeric strings, since `teamsfx config set` stores strings.
func getInt(c Config, path string, fallback int) (int, error) {
	value, has := c.Get(path)
	if !has {
		return fallback, nil
	}

	switch v := value.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case string:
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return fallback, fmt.Errorf("'%s' must be an integer: %w", path, err)
		}
		return parsed, nil
	default:
		return fallback, fmt.Errorf("'%s' must be an integer, got %T", path, value)
	}
}

func getFloat(c Config, path string, fallback float64) (float64, error) {
	value, has := c.Get(path)
	if !has {
		return fallback, nil
	}

	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fallback, fmt.Errorf("'%s' must be a number: %w", path, err)
		}
		return parsed, nil
	default:
		return fallback, fmt.Errorf("'%s' must be a number, got %T", path, value)
	}
}
