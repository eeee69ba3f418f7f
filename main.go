// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/azure/teamsfx/cmd"
	"github.com/azure/teamsfx/internal"
	"github.com/azure/teamsfx/internal/tracing"
	"github.com/azure/teamsfx/pkg/config"
	"github.com/azure/teamsfx/pkg/output"
	"github.com/mattn/go-colorable"
	"github.com/spf13/pflag"
)

func main() {
	ctx := context.Background()

	restoreColorMode := colorable.EnableColorsStdout(nil)
	defer restoreColorMode()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if !isDebugEnabled() {
		log.SetOutput(io.Discard)
	}

	loadDotEnv()

	shutdownTracing, err := tracing.Initialize(os.Stderr)
	if err != nil {
		log.Printf("tracing disabled: %v", err)
	}

	rootCmd := cmd.NewRootCmd()
	rootCmd.SetOut(colorable.NewColorableStdout())
	rootCmd.SetErr(colorable.NewColorableStderr())
	cmdErr := rootCmd.ExecuteContext(ctx)

	if err := shutdownTracing(ctx); err != nil {
		log.Printf("non-graceful tracing shutdown: %v", err)
	}

	if cmdErr != nil {
		printError(cmdErr)
		os.Exit(1)
	}
}

func printError(err error) {
	stderr := colorable.NewColorableStderr()
	fmt.Fprintln(stderr, output.WithErrorFormat("ERROR: %s", err.Error()))

	var suggestion *internal.ErrorWithSuggestion
	if errors.As(err, &suggestion) && suggestion.Suggestion != "" {
		fmt.Fprintln(stderr, suggestion.Suggestion)
	}
}

// loadDotEnv loads .env from the configuration directory before any command reads the environment.
func loadDotEnv() {
	dir, err := config.GetUserConfigDir()
	if err != nil {
		log.Printf("could not resolve config directory: %v", err)
		return
	}

	if err := config.NewUserConfigManager(dir).LoadDotEnv(); err != nil {
		log.Printf("%v", err)
	}
}

func isDebugEnabled() bool {
	if debug, err := strconv.ParseBool(os.Getenv("TEAMSFX_DEBUG")); err == nil && debug {
		return true
	}

	debug := false
	help := false
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)

	// The full command line carries flags of the command that will run; skip those instead of failing.
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.BoolVar(&debug, "debug", false, "")

	// pflag returns ErrHelp for --help unless the flag is defined.
	flags.BoolVarP(&help, "help", "h", false, "")

	if err := flags.Parse(os.Args[1:]); err != nil {
		log.Printf("could not parse flags: %v", err)
	}

	return debug
}
