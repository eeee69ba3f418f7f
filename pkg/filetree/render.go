// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package filetree

import (
	"fmt"
	"io"
	"strings"
)

type RenderOptions struct {
	// Draw box characters (├── └── │) before entries. Without markers entries are only indented.
	Markers bool
	// Append "/" to directory names.
	DirSuffix bool
}

// Render writes root's name followed by its descendants, one entry per line.
func Render(w io.Writer, root *Node, options RenderOptions) error {
	if _, err := fmt.Fprintln(w, displayName(root, options)); err != nil {
		return err
	}

	return RenderNodes(w, root.Children, options)
}

// RenderNodes writes nodes and their descendants without a root line.
func RenderNodes(w io.Writer, nodes []*Node, options RenderOptions) error {
	return renderLevel(w, nodes, "", options)
}

// Sprint renders nodes to a string.
func Sprint(nodes []*Node, options RenderOptions) string {
	var sb strings.Builder
	_ = RenderNodes(&sb, nodes, options)
	return sb.String()
}

func renderLevel(w io.Writer, nodes []*Node, prefix string, options RenderOptions) error {
	for i, node := range nodes {
		last := i == len(nodes)-1

		marker, childPrefix := "  ", prefix+"  "
		if options.Markers {
			marker, childPrefix = "├── ", prefix+"│   "
			if last {
				marker, childPrefix = "└── ", prefix+"    "
			}
		}

		if _, err := fmt.Fprintf(w, "%s%s%s\n", prefix, marker, displayName(node, options)); err != nil {
			return err
		}

		if node.IsDir() {
			if err := renderLevel(w, node.Children, childPrefix, options); err != nil {
				return err
			}
		}
	}

	return nil
}

func displayName(node *Node, options RenderOptions) string {
	if options.DirSuffix && node.IsDir() {
		return node.Name + "/"
	}

	return node.Name
}
