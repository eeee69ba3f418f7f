// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-colorable"
	"go.yaml.in/yaml/v3"
)

type Format string

const (
	JsonFormat Format = "json"
	YamlFormat Format = "yaml"
	NoneFormat Format = "none"
)

// SupportedFormats lists the values accepted by --output.
var SupportedFormats = []Format{NoneFormat, JsonFormat, YamlFormat}

type Formatter interface {
	Kind() Format
	Format(obj any, writer io.Writer) error
}

func NewFormatter(format string) (Formatter, error) {
	switch Format(strings.ToLower(format)) {
	case JsonFormat:
		return &JsonFormatter{}, nil
	case YamlFormat:
		return &YamlFormatter{}, nil
	case NoneFormat, "":
		return &NoneFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format '%s', expected one of none, json or yaml", format)
	}
}

type JsonFormatter struct{}

func (f *JsonFormatter) Kind() Format {
	return JsonFormat
}

func (f *JsonFormatter) Format(obj any, writer io.Writer) error {
	b, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return err
	}

	if _, err := writer.Write(append(b, '\n')); err != nil {
		return err
	}

	return nil
}

type YamlFormatter struct{}

func (f *YamlFormatter) Kind() Format {
	return YamlFormat
}

func (f *YamlFormatter) Format(obj any, writer io.Writer) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(obj); err != nil {
		return err
	}

	return encoder.Close()
}

// NoneFormatter is selected when the command renders its own human readable output.
type NoneFormatter struct{}

func (f *NoneFormatter) Kind() Format {
	return NoneFormat
}

func (f *NoneFormatter) Format(any, io.Writer) error {
	return nil
}

var (
	_ Formatter = (*JsonFormatter)(nil)
	_ Formatter = (*YamlFormatter)(nil)
	_ Formatter = (*NoneFormatter)(nil)
)

type contextKey string

const (
	formatterContextKey contextKey = "formatter"
	writerContextKey    contextKey = "writer"
)

func WithFormatter(ctx context.Context, formatter Formatter) context.Context {
	return context.WithValue(ctx, formatterContextKey, formatter)
}

func GetFormatter(ctx context.Context) Formatter {
	formatter, ok := ctx.Value(formatterContextKey).(Formatter)
	if !ok {
		return &NoneFormatter{}
	}

	return formatter
}

func WithWriter(ctx context.Context, writer io.Writer) context.Context {
	return context.WithValue(ctx, writerContextKey, writer)
}

func GetWriter(ctx context.Context) io.Writer {
	writer, ok := ctx.Value(writerContextKey).(io.Writer)
	if !ok {
		return colorable.NewColorableStdout()
	}

	return writer
}
