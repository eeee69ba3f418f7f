// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/azure/teamsfx/pkg/config"
	"github.com/azure/teamsfx/pkg/output"
	"github.com/spf13/cobra"
)

func newConfigCmd(deps *dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage teamsfx configuration.",
		Long: heredoc.Docf(`
			Manage the user configuration stored in config.json under $TEAMSFX_CONFIG_DIR, or ~/.teamsfx when
			it is not set.

			Available settings:
			  %s         azure, openai or ollama
			  %s.<id>    model or deployment name for gpt-4 and gpt-35-turbo
			  %s   samples configuration document
			  %s  attempts per downloaded file
			  %s  parallel downloads
			  %s      delay before the first retry, such as 500ms
			  %s  request rate limit`,
			config.KeyAiProvider,
			config.KeyAiModels,
			config.KeySamplesConfigUrl,
			config.KeyDownloadAttempts,
			config.KeyDownloadWorkers,
			config.KeyDownloadBackoff,
			config.KeyDownloadRateLimit,
		),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show all configuration values.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userConfig, err := deps.userConfig()
			if err != nil {
				return err
			}

			formatter := output.GetFormatter(cmd.Context())
			if formatter.Kind() == output.NoneFormat {
				formatter = &output.JsonFormatter{}
			}
			return formatter.Format(userConfig.Raw(), output.GetWriter(cmd.Context()))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <path>",
		Short: "Get a configuration value.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userConfig, err := deps.userConfig()
			if err != nil {
				return err
			}

			value, has := userConfig.Get(args[0])
			if !has {
				return fmt.Errorf("no value stored at path '%s'", args[0])
			}

			formatter := output.GetFormatter(cmd.Context())
			if formatter.Kind() == output.NoneFormat {
				formatter = &output.JsonFormatter{}
			}
			return formatter.Format(value, output.GetWriter(cmd.Context()))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <path> <value>",
		Short: "Set a configuration value. JSON values are stored as JSON, anything else as a string.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateConfig(deps, func(c config.Config) error {
				var value any
				if err := json.Unmarshal([]byte(args[1]), &value); err != nil {
					value = args[1]
				}
				return c.Set(args[0], value)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "unset <path>",
		Short: "Remove a configuration value.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateConfig(deps, func(c config.Config) error {
				return c.Unset(args[0])
			})
		},
	})

	return cmd
}

func updateConfig(deps *dependencies, update func(config.Config) error) error {
	manager, err := deps.configManager()
	if err != nil {
		return err
	}

	userConfig, err := manager.Load()
	if err != nil {
		return err
	}

	if err := update(userConfig); err != nil {
		return err
	}

	return manager.Save(userConfig)
}
