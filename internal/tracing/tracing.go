// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package tracing wires OpenTelemetry spans around commands, downloads and model calls.
package tracing

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/azure/teamsfx/internal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/azure/teamsfx"
	serviceName         = "teamsfx"

	// TraceEnvVar selects an exporter. "stdout" prints finished spans; anything else disables tracing.
	TraceEnvVar = "TEAMSFX_TRACE"
)

func newResource() *resource.Resource {
	attributes := []attribute.KeyValue{
		semconv.ServiceNameKey.String(serviceName),
		semconv.ServiceVersionKey.String(internal.Version),
	}

	r, err := resource.Merge(resource.Default(), resource.NewWithAttributes(semconv.SchemaURL, attributes...))
	if err != nil {
		// schema URLs differ between SDK releases
		return resource.NewSchemaless(attributes...)
	}
	return r
}

// Initialize installs the global tracer provider according to TEAMSFX_TRACE. The returned function flushes and
// stops it; it is always safe to call.
func Initialize(writer io.Writer) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	exporterName := os.Getenv(TraceEnvVar)
	switch exporterName {
	case "":
		return noop, nil
	case "stdout":
	default:
		log.Printf("unknown %s value '%s', tracing disabled", TraceEnvVar, exporterName)
		return noop, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(writer), stdouttrace.WithPrettyPrint())
	if err != nil {
		return noop, fmt.Errorf("creating trace exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(newResource()),
	)
	otel.SetTracerProvider(provider)

	return provider.Shutdown, nil
}

// Start begins a span from the global provider.
func Start(ctx context.Context, name string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, name, trace.WithAttributes(attributes...))
}

// End records err, when set, as the span status and ends the span.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
