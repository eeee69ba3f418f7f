// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package chat

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/azure/teamsfx/pkg/filetree"
	"github.com/azure/teamsfx/pkg/output"
	"github.com/mattn/go-isatty"
)

// Button is an action offered to the user, such as scaffolding a sample.
type Button struct {
	Title     string `json:"title"`
	Command   string `json:"command"`
	Arguments []any  `json:"arguments,omitempty"`
}

// ResponseStream receives the parts of a chat answer as they are produced.
type ResponseStream interface {
	Markdown(text string)
	Progress(text string)
	Button(button Button)
	FileTree(nodes []*filetree.Node, baseFolder string)
}

// ConsoleStream writes parts to a terminal or any writer. Colors are used only for terminals.
type ConsoleStream struct {
	mu      sync.Mutex
	writer  io.Writer
	colored bool
}

func NewConsoleStream(writer io.Writer) *ConsoleStream {
	colored := false
	if file, ok := writer.(*os.File); ok {
		colored = isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
	}

	return &ConsoleStream{writer: writer, colored: colored}
}

func (s *ConsoleStream) style(format func(string, ...any) string, text string) string {
	if !s.colored {
		return text
	}
	return format("%s", text)
}

func (s *ConsoleStream) write(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = io.WriteString(s.writer, text)
}

func (s *ConsoleStream) Markdown(text string) {
	s.write(text)
}

func (s *ConsoleStream) Progress(text string) {
	s.write(s.style(output.WithGrayFormat, "> "+text) + "\n")
}

func (s *ConsoleStream) Button(button Button) {
	command := button.Command
	for _, argument := range button.Arguments {
		command += " " + fmt.Sprint(argument)
	}

	s.write(fmt.Sprintf("\n[%s] %s\n",
		s.style(output.WithBold, button.Title),
		s.style(output.WithLinkFormat, command)))
}

func (s *ConsoleStream) FileTree(nodes []*filetree.Node, baseFolder string) {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(s.style(output.WithHighLightFormat, baseFolder))
	sb.WriteString("\n")
	_ = filetree.RenderNodes(&sb, nodes, filetree.RenderOptions{Markers: true, DirSuffix: true})
	s.write(sb.String())
}

type PartKind string

const (
	MarkdownPart PartKind = "markdown"
	ProgressPart PartKind = "progress"
	ButtonPart   PartKind = "button"
	FileTreePart PartKind = "filetree"
)

type Part struct {
	Kind       PartKind         `json:"kind"`
	Text       string           `json:"text,omitempty"`
	Button     *Button          `json:"button,omitempty"`
	Nodes      []*filetree.Node `json:"nodes,omitempty"`
	BaseFolder string           `json:"baseFolder,omitempty"`
}

// RecordingStream keeps every part in order. It backs structured output and tests.
type RecordingStream struct {
	mu    sync.Mutex
	parts []Part
}

func NewRecordingStream() *RecordingStream {
	return &RecordingStream{}
}

func (s *RecordingStream) add(part Part) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parts = append(s.parts, part)
}

func (s *RecordingStream) Markdown(text string) {
	s.add(Part{Kind: MarkdownPart, Text: text})
}

func (s *RecordingStream) Progress(text string) {
	s.add(Part{Kind: ProgressPart, Text: text})
}

func (s *RecordingStream) Button(button Button) {
	s.add(Part{Kind: ButtonPart, Button: &button})
}

func (s *RecordingStream) FileTree(nodes []*filetree.Node, baseFolder string) {
	s.add(Part{Kind: FileTreePart, Nodes: nodes, BaseFolder: baseFolder})
}

func (s *RecordingStream) Parts() []Part {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Part(nil), s.parts...)
}

// MarkdownText returns the concatenated markdown parts.
func (s *RecordingStream) MarkdownText() string {
	var sb strings.Builder
	for _, part := range s.Parts() {
		if part.Kind == MarkdownPart {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

func (s *RecordingStream) Buttons() []Button {
	var buttons []Button
	for _, part := range s.Parts() {
		if part.Kind == ButtonPart {
			buttons = append(buttons, *part.Button)
		}
	}
	return buttons
}

// Tee forwards every part to all streams.
func Tee(streams ...ResponseStream) ResponseStream {
	return teeStream(streams)
}

type teeStream []ResponseStream

func (t teeStream) Markdown(text string) {
	for _, s := range t {
		s.Markdown(text)
	}
}

func (t teeStream) Progress(text string) {
	for _, s := range t {
		s.Progress(text)
	}
}

func (t teeStream) Button(button Button) {
	for _, s := range t {
		s.Button(button)
	}
}

func (t teeStream) FileTree(nodes []*filetree.Node, baseFolder string) {
	for _, s := range t {
		s.FileTree(nodes, baseFolder)
	}
}
