// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package config stores user wide teamsfx settings as a JSON document addressed with dotted paths,
// for example "download.maxAttempts".
package config

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

type Config interface {
	Raw() map[string]any
	Get(path string) (any, bool)
	GetString(path string) (string, bool)
	GetSection(path string, section any) (bool, error)
	Set(path string, value any) error
	Unset(path string) error
	// Paths lists every leaf path, sorted.
	Paths() []string
	IsEmpty() bool
}

func NewEmptyConfig() Config {
	return NewConfig(nil)
}

// NewConfig creates a configuration backed by data. A nil map starts an empty configuration.
func NewConfig(data map[string]any) Config {
	if data == nil {
		data = map[string]any{}
	}

	return &config{data: data}
}

type config struct {
	data map[string]any
}

func (c *config) IsEmpty() bool {
	return len(c.data) == 0
}

func (c *config) Raw() map[string]any {
	return c.data
}

func (c *config) Paths() []string {
	all := leafPaths(c.data)
	sort.Strings(all)
	return all
}

func leafPaths(node map[string]any) []string {
	var all []string
	for key, value := range node {
		if child, isNode := value.(map[string]any); isNode && len(child) > 0 {
			for _, nested := range leafPaths(child) {
				all = append(all, key+"."+nested)
			}
			continue
		}
		all = append(all, key)
	}
	return all
}

// parent walks to the map holding the last segment of path. With create set, missing intermediate
// nodes are created; otherwise a missing node returns nil.
func (c *config) parent(path string, create bool) (map[string]any, string, error) {
	parts := strings.Split(path, ".")
	for _, part := range parts {
		if part == "" {
			return nil, "", fmt.Errorf("invalid config path '%s'", path)
		}
	}

	current := c.data
	for _, part := range parts[:len(parts)-1] {
		value, has := current[part]
		if !has || value == nil {
			if !create {
				return nil, "", nil
			}
			next := map[string]any{}
			current[part] = next
			current = next
			continue
		}

		next, ok := value.(map[string]any)
		if !ok {
			return nil, "", fmt.Errorf("value at '%s' in path '%s' is not an object", part, path)
		}
		current = next
	}

	return current, parts[len(parts)-1], nil
}

// Set stores value at path, creating intermediate objects as needed.
func (c *config) Set(path string, value any) error {
	node, key, err := c.parent(path, true)
	if err != nil {
		return err
	}

	node[key] = value
	return nil
}

// Unset removes the value or whole object at path. A missing path is not an error.
func (c *config) Unset(path string) error {
	node, key, err := c.parent(path, false)
	if err != nil || node == nil {
		return err
	}

	delete(node, key)
	return nil
}

func (c *config) Get(path string) (any, bool) {
	node, key, err := c.parent(path, false)
	if err != nil || node == nil {
		return nil, false
	}

	value, has := node[key]
	return value, has
}

func (c *config) GetString(path string) (string, bool) {
	value, ok := c.Get(path)
	if !ok {
		return "", false
	}

	str, ok := value.(string)
	return str, ok
}

// GetSection decodes the value at path into section through a JSON round trip.
func (c *config) GetSection(path string, section any) (bool, error) {
	value, ok := c.Get(path)
	if !ok {
		return false, nil
	}

	jsonBytes, err := json.Marshal(value)
	if err != nil {
		return true, fmt.Errorf("marshalling section '%s': %w", path, err)
	}

	if err := json.Unmarshal(jsonBytes, section); err != nil {
		return true, fmt.Errorf("unmarshalling section '%s': %w", path, err)
	}

	return true, nil
}
