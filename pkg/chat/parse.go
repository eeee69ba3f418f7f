// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/tidwall/gjson"
)

var ErrNoJson = errors.New("response contains no JSON document")

// ParseOutcome is the result of parsing a model response. Fallback is set when parsing failed and Value came
// from the fallback instead, in which case Err holds the parse failure.
type ParseOutcome[T any] struct {
	Value    T
	Fallback bool
	Err      error
}

// ParseOr parses raw, or uses fallback when parsing fails.
func ParseOr[T any](raw string, parse func(string) (T, error), fallback func() T) ParseOutcome[T] {
	value, err := parse(raw)
	if err == nil {
		return ParseOutcome[T]{Value: value}
	}

	log.Printf("model response could not be parsed, using fallback: %v", err)
	return ParseOutcome[T]{Value: fallback(), Fallback: true, Err: err}
}

// ExtractJson returns the JSON document inside a model response, dropping markdown code fences and any prose
// around the outermost object or array.
func ExtractJson(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if fenced, found := strings.CutPrefix(text, "```"); found {
		// drop the info string, e.g. ```json
		if newline := strings.IndexByte(fenced, '\n'); newline >= 0 {
			fenced = fenced[newline+1:]
		}
		if end := strings.LastIndex(fenced, "```"); end >= 0 {
			fenced = fenced[:end]
		}
		text = strings.TrimSpace(fenced)
	}

	if gjson.Valid(text) && (strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[")) {
		return text, nil
	}

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return "", ErrNoJson
	}
	closing := "}"
	if text[start] == '[' {
		closing = "]"
	}
	end := strings.LastIndex(text, closing)
	if end <= start {
		return "", ErrNoJson
	}

	candidate := text[start : end+1]
	if !gjson.Valid(candidate) {
		return "", ErrNoJson
	}
	return candidate, nil
}

// ParseJson decodes the JSON document inside a model response into T.
func ParseJson[T any](raw string) (T, error) {
	var value T
	document, err := ExtractJson(raw)
	if err != nil {
		return value, err
	}

	if err := json.Unmarshal([]byte(document), &value); err != nil {
		return value, fmt.Errorf("decoding model response: %w", err)
	}
	return value, nil
}
