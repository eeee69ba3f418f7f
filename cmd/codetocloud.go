// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/azure/teamsfx/internal/agent/codetocloud"
	"github.com/azure/teamsfx/pkg/chat"
	"github.com/azure/teamsfx/pkg/workspace"
	"github.com/spf13/cobra"
)

const recommendationsHistoryKey = codetocloud.CommandName + ".recommendations"

type codeToCloudFlags struct {
	reset bool
}

func newCodeToCloudCmd(deps *dependencies) *cobra.Command {
	flags := &codeToCloudFlags{}

	cmd := &cobra.Command{
		Use:   "codetocloud <prompt...>",
		Short: "Recommend Azure resources for the project in the current folder.",
		Long: heredoc.Doc(`
			Analyzes the project in the working folder and recommends the Azure resources to host it. Follow up
			prompts refine the recommendation. The conversation is kept in .teamsfx/chat-history.json inside
			the project; use --reset to start over.`),
		Example: heredoc.Doc(`
			teamsfx codetocloud "recommend azure resources for my app"
			teamsfx codetocloud "use Cosmos DB instead of SQL"`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder, err := deps.workingDirectory()
			if err != nil {
				return err
			}

			ws, err := workspace.NewContext(folder)
			if err != nil {
				return err
			}

			store := chat.NewHistoryStore(folder)
			if flags.reset {
				if err := store.Clear(codetocloud.CommandName); err != nil {
					return err
				}
				if err := store.Clear(recommendationsHistoryKey); err != nil {
					return err
				}
			}

			conversation, err := store.Load(codetocloud.CommandName)
			if err != nil {
				return err
			}
			recommendations, err := store.Load(recommendationsHistoryKey)
			if err != nil {
				return err
			}

			userConfig, err := deps.userConfig()
			if err != nil {
				return err
			}
			client, err := deps.llmClient(userConfig)
			if err != nil {
				return err
			}

			prompt := strings.Join(args, " ")
			handler := codetocloud.NewHandler(client, codetocloud.NewContext(ws, recommendations))
			answer, err := runChat(
				cmd.Context(),
				handler,
				chat.NewRequest(codetocloud.CommandName, prompt, conversation.Turns()),
			)
			if err != nil {
				return err
			}

			conversation.Add(chat.UserTurn(prompt), chat.AssistantTurn(answer))
			if err := store.Save(codetocloud.CommandName, conversation); err != nil {
				return err
			}
			return store.Save(recommendationsHistoryKey, recommendations)
		},
	}

	cmd.Flags().BoolVar(&flags.reset, "reset", false, "Forget the earlier conversation before sending the prompt.")
	return cmd
}
