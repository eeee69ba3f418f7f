// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownCommand = errors.New("unknown chat command")

type Handler interface {
	Handle(ctx context.Context, request Request, stream ResponseStream) (Result, error)
}

type HandlerFunc func(ctx context.Context, request Request, stream ResponseStream) (Result, error)

func (f HandlerFunc) Handle(ctx context.Context, request Request, stream ResponseStream) (Result, error) {
	return f(ctx, request, stream)
}

type SlashCommand struct {
	Name             string
	ShortDescription string
	LongDescription  string
	// IntentDescription is offered to intent detection. ShortDescription is used when it is empty.
	IntentDescription string
	Handler           Handler
}

// SlashCommands maps command names to handlers.
type SlashCommands struct {
	commands map[string]SlashCommand
}

func NewSlashCommands(commands ...SlashCommand) *SlashCommands {
	registry := &SlashCommands{commands: map[string]SlashCommand{}}
	for _, command := range commands {
		registry.Register(command)
	}
	return registry
}

func (r *SlashCommands) Register(command SlashCommand) {
	r.commands[command.Name] = command
}

func (r *SlashCommands) Get(name string) (SlashCommand, bool) {
	command, has := r.commands[name]
	return command, has
}

// List returns the commands sorted by name.
func (r *SlashCommands) List() []SlashCommand {
	commands := make([]SlashCommand, 0, len(r.commands))
	for _, command := range r.commands {
		commands = append(commands, command)
	}
	sort.Slice(commands, func(i, j int) bool { return commands[i].Name < commands[j].Name })
	return commands
}

// IntentTargets describes every command for intent detection.
func (r *SlashCommands) IntentTargets() []IntentTarget {
	var targets []IntentTarget
	for _, command := range r.List() {
		description := command.IntentDescription
		if description == "" {
			description = command.ShortDescription
		}
		targets = append(targets, IntentTarget{Name: command.Name, Description: description})
	}
	return targets
}

// Dispatch runs the handler registered for request.Command.
func (r *SlashCommands) Dispatch(ctx context.Context, request Request, stream ResponseStream) (Result, error) {
	command, has := r.Get(request.Command)
	if !has {
		return Result{}, fmt.Errorf("'%s': %w", request.Command, ErrUnknownCommand)
	}

	return command.Handler.Handle(ctx, request, stream)
}
