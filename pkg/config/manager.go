// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/azure/teamsfx/pkg/osutil"
	"github.com/gofrs/flock"
	"github.com/joho/godotenv"
)

const (
	configDirName  = ".teamsfx"
	configFileName = "config.json"
	dotEnvFileName = ".env"
)

// Save writes config as indented JSON.
func Save(c Config, writer io.Writer) error {
	configJson, err := json.MarshalIndent(c.Raw(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling config JSON: %w", err)
	}

	if _, err := writer.Write(configJson); err != nil {
		return fmt.Errorf("writing configuration data: %w", err)
	}

	return nil
}

// Load reads a JSON configuration. An empty document is an empty configuration.
func Load(reader io.Reader) (Config, error) {
	jsonBytes, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}

	return Parse(jsonBytes)
}

func Parse(configJson []byte) (Config, error) {
	if strings.TrimSpace(string(configJson)) == "" {
		return NewEmptyConfig(), nil
	}

	var data map[string]any
	if err := json.Unmarshal(configJson, &data); err != nil {
		return nil, fmt.Errorf("unmarshalling configuration JSON: %w", err)
	}

	return NewConfig(data), nil
}

// GetUserConfigDir returns ~/.teamsfx, or TEAMSFX_CONFIG_DIR when set. The directory is created if missing.
func GetUserConfigDir() (string, error) {
	configDir := os.Getenv("TEAMSFX_CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine current home directory: %w", err)
		}

		configDir = filepath.Join(homeDir, configDirName)
	}

	if err := os.MkdirAll(configDir, osutil.PermissionDirectoryOwnerOnly); err != nil {
		return configDir, fmt.Errorf("creating config directory: %w", err)
	}

	return configDir, nil
}

// UserConfigManager loads and saves the user configuration file inside a config directory.
type UserConfigManager struct {
	dir string
}

func NewUserConfigManager(dir string) *UserConfigManager {
	return &UserConfigManager{dir: dir}
}

func (m *UserConfigManager) FilePath() string {
	return filepath.Join(m.dir, configFileName)
}

// Load returns the saved configuration, or an empty one when nothing has been saved yet.
func (m *UserConfigManager) Load() (Config, error) {
	file, err := os.Open(m.FilePath())
	if errors.Is(err, os.ErrNotExist) {
		return NewEmptyConfig(), nil
	} else if err != nil {
		return nil, fmt.Errorf("opening configuration file: %w", err)
	}
	defer file.Close()

	return Load(file)
}

// Save writes the configuration while holding a file lock, so concurrent teamsfx processes never
// interleave writes.
func (m *UserConfigManager) Save(c Config) error {
	if err := os.MkdirAll(m.dir, osutil.PermissionDirectoryOwnerOnly); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	fl := flock.New(m.FilePath() + ".lock")
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("locking configuration file: %w", err)
	}
	defer func() {
		if err := fl.Unlock(); err != nil {
			log.Printf("failed to unlock configuration file: %v", err)
		}
	}()

	var sb strings.Builder
	if err := Save(c, &sb); err != nil {
		return err
	}

	return osutil.WriteFileAtomic(m.FilePath(), []byte(sb.String()), osutil.PermissionFileOwnerOnly)
}

// LoadDotEnv loads <dir>/.env into the process environment. Variables that are already set win.
// A missing file is ignored.
func (m *UserConfigManager) LoadDotEnv() error {
	path := filepath.Join(m.dir, dotEnvFileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	return nil
}
