// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/azure/teamsfx/internal"
	"github.com/azure/teamsfx/pkg/output"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// NewRootCmd creates the teamsfx command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(newDependencies(&internal.GlobalCommandOptions{}))
}

func newRootCmd(deps *dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "teamsfx <command> [options]",
		Short: "Find, preview and scaffold Teams apps, and plan their Azure hosting.",
		Long: heredoc.Doc(`
			teamsfx helps you start Microsoft Teams apps and move them to Azure.

			Describe an app with 'teamsfx create' to find matching templates and samples, preview and scaffold
			samples with 'teamsfx sample', and ask 'teamsfx codetocloud' for Azure resources that fit the
			project in the current folder.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := output.NewFormatter(deps.options.Output)
			if err != nil {
				return err
			}

			ctx := output.WithFormatter(cmd.Context(), formatter)
			ctx = output.WithWriter(ctx, cmd.OutOrStdout())
			cmd.SetContext(ctx)
			return nil
		},
	}

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	bindGlobalFlags(rootCmd.PersistentFlags(), deps.options)

	rootCmd.AddCommand(newCreateCmd(deps))
	rootCmd.AddCommand(newCodeToCloudCmd(deps))
	rootCmd.AddCommand(newSampleCmd(deps))
	rootCmd.AddCommand(newConfigCmd(deps))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func bindGlobalFlags(flags *pflag.FlagSet, options *internal.GlobalCommandOptions) {
	flags.StringVarP(&options.Cwd, "cwd", "C", "", "Sets the current working directory.")
	flags.BoolVar(&options.EnableDebugLogging, "debug", false, "Enables debugging and diagnostics logging.")
	flags.StringVarP(
		&options.Output,
		"output",
		"o",
		string(output.NoneFormat),
		"The output format (the supported formats are none, json, yaml).",
	)
}
