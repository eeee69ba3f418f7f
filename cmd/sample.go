// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/azure/teamsfx/internal/tracing"
	"github.com/azure/teamsfx/pkg/filetree"
	"github.com/azure/teamsfx/pkg/output"
	"github.com/azure/teamsfx/pkg/samples"
	"github.com/spf13/cobra"
)

func newSampleCmd(deps *dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Browse, download and scaffold Teams samples.",
	}

	cmd.AddCommand(newSampleListCmd(deps))
	cmd.AddCommand(newSampleTreeCmd(deps))
	cmd.AddCommand(newSampleDownloadCmd(deps))
	cmd.AddCommand(newSampleScaffoldCmd(deps))
	return cmd
}

func (d *dependencies) loadSamplesProvider() (*samples.Provider, error) {
	userConfig, err := d.userConfig()
	if err != nil {
		return nil, err
	}

	return d.samplesProvider(userConfig)
}

func newSampleListCmd(deps *dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available samples.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := deps.loadSamplesProvider()
			if err != nil {
				return err
			}

			collection, err := provider.SampleCollection(cmd.Context())
			if err != nil {
				return err
			}

			writer := output.GetWriter(cmd.Context())
			formatter := output.GetFormatter(cmd.Context())
			if formatter.Kind() != output.NoneFormat {
				return formatter.Format(collection.Samples, writer)
			}

			for _, sample := range collection.Samples {
				fmt.Fprintf(writer, "%s  %s\n", output.WithHighLightFormat("%s", sample.Id), sample.Title)
			}
			return nil
		},
	}
}

// downloadSample fetches a sample into destination, reporting progress to progressWriter.
func downloadSample(
	ctx context.Context,
	provider *samples.Provider,
	sampleId string,
	destination string,
	progressWriter io.Writer,
) (result *samples.BuildResult, err error) {
	ctx, span := tracing.Start(ctx, "samples.download", tracing.SampleIdKey.String(sampleId))
	defer func() {
		if result != nil {
			span.SetAttributes(
				tracing.FileCountKey.Int(len(filetree.Paths(result.Nodes))),
				tracing.FailureCountKey.Int(len(result.Failures)),
			)
		}
		tracing.End(span, err)
	}()

	return provider.Download(ctx, sampleId, destination, func(progress samples.DownloadProgress) {
		status := "done"
		if progress.Err != nil {
			status = output.WithErrorFormat("failed")
		}
		fmt.Fprintf(progressWriter, "[%d/%d] %s %s\n", progress.Completed, progress.Total, progress.Path, status)
	})
}

func printBuildResult(writer io.Writer, result *samples.BuildResult) error {
	root := &filetree.Node{Name: result.Folder, Children: result.Nodes}
	if root.Children == nil {
		root.Children = []*filetree.Node{}
	}
	if err := filetree.Render(writer, root, filetree.RenderOptions{Markers: true, DirSuffix: true}); err != nil {
		return err
	}

	for _, failure := range result.Failures {
		fmt.Fprintln(writer, output.WithWarningFormat("warning: %s", failure.Error()))
	}
	return nil
}

func newSampleTreeCmd(deps *dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "tree <sample-id>",
		Short: "Show the files of a sample.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := deps.loadSamplesProvider()
			if err != nil {
				return err
			}

			tempDir, err := os.MkdirTemp("", "teamsfx-sample-")
			if err != nil {
				return err
			}
			defer func() {
				if err := os.RemoveAll(tempDir); err != nil {
					log.Printf("failed to remove '%s': %v", tempDir, err)
				}
			}()

			result, err := downloadSample(cmd.Context(), provider, args[0], tempDir, io.Discard)
			if err != nil {
				return err
			}

			writer := output.GetWriter(cmd.Context())
			formatter := output.GetFormatter(cmd.Context())
			if formatter.Kind() != output.NoneFormat {
				return formatter.Format(result.Nodes, writer)
			}

			result.Folder = args[0]
			return printBuildResult(writer, result)
		},
	}
}

func newSampleDownloadCmd(deps *dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "download <sample-id> <directory>",
		Short: "Download the files of a sample into a directory.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := deps.loadSamplesProvider()
			if err != nil {
				return err
			}

			result, err := downloadSample(cmd.Context(), provider, args[0], args[1], cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if err := printBuildResult(output.GetWriter(cmd.Context()), result); err != nil {
				return err
			}
			if err := result.Err(); err != nil {
				return fmt.Errorf("%d files of sample '%s' failed to download: %w", len(result.Failures), args[0], err)
			}
			return nil
		},
	}
}

type sampleScaffoldFlags struct {
	source string
	force  bool
}

func newSampleScaffoldCmd(deps *dependencies) *cobra.Command {
	flags := &sampleScaffoldFlags{}

	cmd := &cobra.Command{
		Use:   "scaffold <sample-id> [directory]",
		Short: "Create a project from a sample.",
		Long: "Copies a sample into a directory, by default a folder named after the sample in the working " +
			"directory. Files that already exist are kept unless --force is set.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sampleId := args[0]

			destination := ""
			if len(args) == 2 {
				destination = args[1]
			} else {
				wd, err := deps.workingDirectory()
				if err != nil {
					return err
				}
				destination = filepath.Join(wd, sampleId)
			}

			source := flags.source
			if source == "" {
				provider, err := deps.loadSamplesProvider()
				if err != nil {
					return err
				}

				tempDir, err := os.MkdirTemp("", "teamsfx-sample-")
				if err != nil {
					return err
				}
				defer os.RemoveAll(tempDir)

				result, err := downloadSample(cmd.Context(), provider, sampleId, tempDir, cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				if err := result.Err(); err != nil {
					return fmt.Errorf("downloading sample '%s': %w", sampleId, err)
				}
				source = result.Folder
			}

			if err := samples.Scaffold(source, destination, flags.force); err != nil {
				return err
			}

			fmt.Fprintln(
				output.GetWriter(cmd.Context()),
				output.WithSuccessFormat("Sample '%s' scaffolded in %s", sampleId, destination))
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.source, "source", "", "Use an already downloaded sample folder.")
	cmd.Flags().BoolVar(&flags.force, "force", false, "Overwrite existing files.")
	return cmd
}
