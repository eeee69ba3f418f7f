// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package internal

type GlobalCommandOptions struct {
	// Cwd overrides the working directory, which is also the workspace folder for chat commands.
	Cwd string

	// EnableDebugLogging routes library logging to stderr. Set with `--debug` or TEAMSFX_DEBUG.
	EnableDebugLogging bool

	// Output selects the result format: none, json or yaml.
	Output string
}
