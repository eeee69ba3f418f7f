// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package filetree

import "sync"

// Tree is a directory tree that can be populated from multiple goroutines.
// Every insertion holds the tree lock for its full duration.
type Tree struct {
	mu   sync.Mutex
	root *Node
}

// NewTree creates a tree with an empty root directory named rootName.
func NewTree(rootName string) *Tree {
	return &Tree{root: NewDir(rootName)}
}

// Add inserts relativePath below the root. Safe for concurrent use.
func (t *Tree) Add(relativePath string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.root.Insert(relativePath)
}

// Root returns the root node. Callers must not mutate it while insertions are in progress.
func (t *Tree) Root() *Node {
	return t.root
}

// Nodes returns the root's children, which is the caller visible result of a build.
func (t *Tree) Nodes() []*Node {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.root.Children
}
