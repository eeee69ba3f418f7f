//go:build mage
// +build mage

// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
)

type TeamsFx mg.Namespace

// Build compiles teamsfx into ./bin. TEAMSFX_VERSION, when set, is stamped into the binary.
func (TeamsFx) Build(ctx context.Context) error {
	args := []string{"build", "-o", "./bin/teamsfx"}
	if version := os.Getenv("TEAMSFX_VERSION"); version != "" {
		args = append(args, "-ldflags", "-X github.com/azure/teamsfx/internal.Version="+version)
	}

	return run(ctx, "go", append(args, ".")...)
}

// Test runs every package test with the race detector.
func (TeamsFx) Test(ctx context.Context) error {
	return run(ctx, "go", "test", "-race", "./...")
}

// Vet reports suspicious constructs.
func (TeamsFx) Vet(ctx context.Context) error {
	return run(ctx, "go", "vet", "./...")
}

func run(ctx context.Context, name string, args ...string) error {
	c := exec.CommandContext(ctx, name, args...)
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	fmt.Println(c.String())
	return c.Run()
}
