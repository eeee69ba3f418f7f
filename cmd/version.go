// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"fmt"

	"github.com/azure/teamsfx/internal"
	"github.com/azure/teamsfx/pkg/output"
	"github.com/spf13/cobra"
)

type versionResult struct {
	Version string `json:"version"`
	Dev     bool   `json:"dev"`
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of teamsfx.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			writer := output.GetWriter(cmd.Context())
			formatter := output.GetFormatter(cmd.Context())
			if formatter.Kind() != output.NoneFormat {
				return formatter.Format(versionResult{Version: internal.Version, Dev: internal.IsDevVersion()}, writer)
			}

			_, err := fmt.Fprintf(writer, "teamsfx version %s\n", internal.Version)
			return err
		},
	}
}
