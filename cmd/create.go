// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/azure/teamsfx/internal/agent/create"
	"github.com/azure/teamsfx/pkg/chat"
	"github.com/spf13/cobra"
)

func newCreateCmd(deps *dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "create <description...>",
		Short: "Find Teams templates and samples that match an app description.",
		Long: heredoc.Doc(`
			Describe the Teams app you want to build. Matching templates and samples are described, and a
			single matching sample is downloaded so you can browse its files before scaffolding it.`),
		Example: `teamsfx create "a bot that answers questions about our HR policies"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userConfig, err := deps.userConfig()
			if err != nil {
				return err
			}

			client, err := deps.llmClient(userConfig)
			if err != nil {
				return err
			}

			provider, err := deps.samplesProvider(userConfig)
			if err != nil {
				return err
			}

			handler := create.NewHandler(client, provider)
			request := chat.NewRequest(create.CommandName, strings.Join(args, " "), nil)
			_, err = runChat(cmd.Context(), handler, request)
			return err
		},
	}
}
