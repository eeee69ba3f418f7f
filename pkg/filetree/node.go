// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package filetree provides an ordered, in-memory directory tree built incrementally from relative file paths.
package filetree

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrPathConflict is returned when a path needs a directory where a file exists, or the reverse.
	ErrPathConflict = errors.New("path conflicts with an existing entry")
	// ErrInvalidPath is returned for empty paths and paths that leave their root.
	ErrInvalidPath = errors.New("invalid relative path")
)

// Node is one path segment. A node without children (nil) is a file; a directory always has a non-nil,
// possibly empty, children slice. Children keep the order in which they were first added.
type Node struct {
	Name     string
	Children []*Node
}

// NewDir creates an empty directory node.
func NewDir(name string) *Node {
	return &Node{Name: name, Children: []*Node{}}
}

// NewFile creates a file node.
func NewFile(name string) *Node {
	return &Node{Name: name}
}

func (n *Node) IsDir() bool {
	return n.Children != nil
}

// Child returns the direct child with the given name, or nil.
func (n *Node) Child(name string) *Node {
	for _, child := range n.Children {
		if child.Name == name {
			return child
		}
	}

	return nil
}

// Insert adds relativePath below n, creating missing intermediate directories and reusing existing ones.
// Adding a file that already exists is a no-op. Insert is not safe for concurrent use; see [Tree].
func (n *Node) Insert(relativePath string) error {
	if !n.IsDir() {
		return fmt.Errorf("inserting '%s' below file '%s': %w", relativePath, n.Name, ErrPathConflict)
	}

	segments, err := splitPath(relativePath)
	if err != nil {
		return err
	}

	// validate before mutating so a conflict never leaves half-created directories behind
	parent := n
	for i, segment := range segments {
		child := parent.Child(segment)
		if child == nil {
			break
		}

		last := i == len(segments)-1
		if last && child.IsDir() || !last && !child.IsDir() {
			return fmt.Errorf("adding '%s': %w", relativePath, ErrPathConflict)
		}
		if last {
			return nil
		}

		parent = child
	}

	parent = n
	for _, segment := range segments[:len(segments)-1] {
		child := parent.Child(segment)
		if child == nil {
			child = NewDir(segment)
			parent.Children = append(parent.Children, child)
		}
		parent = child
	}

	parent.Children = append(parent.Children, NewFile(segments[len(segments)-1]))
	return nil
}

// InsertDir adds relativePath below n as a directory, creating missing parents. An existing directory is
// reused.
func (n *Node) InsertDir(relativePath string) error {
	if !n.IsDir() {
		return fmt.Errorf("inserting '%s' below file '%s': %w", relativePath, n.Name, ErrPathConflict)
	}

	segments, err := splitPath(relativePath)
	if err != nil {
		return err
	}

	parent := n
	for _, segment := range segments {
		child := parent.Child(segment)
		if child == nil {
			child = NewDir(segment)
			parent.Children = append(parent.Children, child)
		} else if !child.IsDir() {
			return fmt.Errorf("adding directory '%s': %w", relativePath, ErrPathConflict)
		}
		parent = child
	}

	return nil
}

// splitPath splits a slash or OS separated relative path, dropping "." and empty segments.
func splitPath(relativePath string) ([]string, error) {
	normalized := strings.ReplaceAll(filepath.ToSlash(relativePath), "\\", "/")

	var segments []string
	for _, segment := range strings.Split(normalized, "/") {
		switch segment {
		case "", ".":
			continue
		case "..":
			return nil, fmt.Errorf("'%s' leaves its root: %w", relativePath, ErrInvalidPath)
		}
		segments = append(segments, segment)
	}

	if len(segments) == 0 {
		return nil, fmt.Errorf("'%s' has no file name: %w", relativePath, ErrInvalidPath)
	}

	return segments, nil
}

// Prune removes directories that (recursively) contain no files. The node itself is never removed.
func Prune(n *Node) {
	if !n.IsDir() {
		return
	}

	kept := n.Children[:0]
	for _, child := range n.Children {
		Prune(child)
		if child.IsDir() && len(child.Children) == 0 {
			continue
		}
		kept = append(kept, child)
	}
	n.Children = kept
}

// Paths returns the slash separated paths of every file below nodes, depth first, in tree order.
func Paths(nodes []*Node) []string {
	var paths []string
	var walk func(prefix string, nodes []*Node)
	walk = func(prefix string, nodes []*Node) {
		for _, node := range nodes {
			path := node.Name
			if prefix != "" {
				path = prefix + "/" + node.Name
			}
			if node.IsDir() {
				walk(path, node.Children)
			} else {
				paths = append(paths, path)
			}
		}
	}
	walk("", nodes)

	return paths
}

type fileJson struct {
	Name string `json:"name" yaml:"name"`
}

type dirJson struct {
	Name     string  `json:"name" yaml:"name"`
	Children []*Node `json:"children" yaml:"children"`
}

// MarshalJSON always writes "children" for directories, even empty ones, so files and directories stay distinct.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n.IsDir() {
		return json.Marshal(dirJson{Name: n.Name, Children: n.Children})
	}

	return json.Marshal(fileJson{Name: n.Name})
}

func (n *Node) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name     string   `json:"name"`
		Children *[]*Node `json:"children"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	n.Name = raw.Name
	n.Children = nil
	if raw.Children != nil {
		n.Children = *raw.Children
		if n.Children == nil {
			n.Children = []*Node{}
		}
	}

	return nil
}

func (n *Node) MarshalYAML() (any, error) {
	if n.IsDir() {
		return dirJson{Name: n.Name, Children: n.Children}, nil
	}

	return fileJson{Name: n.Name}, nil
}
