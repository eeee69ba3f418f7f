// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package tracing

import "go.opentelemetry.io/otel/attribute"

// Attribute keys set on teamsfx spans.
var (
	CommandKey      = attribute.Key("teamsfx.command")
	SubCommandKey   = attribute.Key("teamsfx.subcommand")
	RequestIdKey    = attribute.Key("teamsfx.request.id")
	SampleIdKey     = attribute.Key("teamsfx.sample.id")
	ModelKey        = attribute.Key("teamsfx.llm.model")
	MatchCountKey   = attribute.Key("teamsfx.create.matches")
	FileCountKey    = attribute.Key("teamsfx.download.files")
	FailureCountKey = attribute.Key("teamsfx.download.failures")
	ElapsedMsKey    = attribute.Key("teamsfx.elapsed_ms")
)
