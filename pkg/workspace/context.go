// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package workspace scans a local project folder into the file tree and file lists used in model prompts.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/azure/teamsfx/pkg/filetree"
	"github.com/azure/teamsfx/pkg/lazy"
)

var ErrNoWorkspace = errors.New("no workspace folder is opened")

// Context is the scanned view of one workspace folder. The scan runs once, on first use.
type Context struct {
	folder           string
	fsys             fs.FS
	excludedNames    []string
	excludedPatterns []string
	tree             *lazy.Lazy[*filetree.Node]
}

type Option func(*Context)

// WithFS scans fsys instead of the folder on disk.
func WithFS(fsys fs.FS) Option {
	return func(c *Context) {
		c.fsys = fsys
	}
}

func WithExcludedNames(names ...string) Option {
	return func(c *Context) {
		c.excludedNames = names
	}
}

func WithExcludedPatterns(patterns ...string) Option {
	return func(c *Context) {
		c.excludedPatterns = patterns
	}
}

// NewContext creates the context of folder. An empty folder means no workspace is open.
func NewContext(folder string, options ...Option) (*Context, error) {
	if folder == "" {
		return nil, ErrNoWorkspace
	}

	c := &Context{
		folder:           folder,
		excludedNames:    DefaultExcludedNames,
		excludedPatterns: DefaultExcludedPatterns,
	}
	for _, option := range options {
		option(c)
	}

	if c.fsys == nil {
		info, err := os.Stat(folder)
		if err != nil {
			return nil, fmt.Errorf("opening workspace: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("workspace '%s' is not a directory", folder)
		}
		c.fsys = os.DirFS(folder)
	}

	c.tree = lazy.NewLazy(c.scan)
	return c, nil
}

func (c *Context) Folder() string {
	return c.folder
}

// Tree returns the workspace tree without excluded entries and empty directories.
func (c *Context) Tree(ctx context.Context) (*filetree.Node, error) {
	return c.tree.GetValue(ctx)
}

// Refresh drops the cached scan.
func (c *Context) Refresh() {
	c.tree.Reset()
}

func (c *Context) scan(ctx context.Context) (*filetree.Node, error) {
	excl, err := newExclusions(c.fsys, c.folder, c.excludedNames, c.excludedPatterns)
	if err != nil {
		return nil, err
	}

	root := filetree.NewDir(filepath.Base(c.folder))
	err = fs.WalkDir(c.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if p == "." {
			return nil
		}

		if excl.excluded(p, d.IsDir()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return root.InsertDir(p)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return root.Insert(p)
	})
	if err != nil {
		return nil, fmt.Errorf("scanning workspace '%s': %w", c.folder, err)
	}

	filetree.Prune(root)
	return root, nil
}

// TreeString renders the workspace tree without box markers, directories suffixed with "/".
func (c *Context) TreeString(ctx context.Context) (string, error) {
	root, err := c.Tree(ctx)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := filetree.Render(&sb, root, filetree.RenderOptions{DirSuffix: true}); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// Files picks up to limit files from the tree, keeping one file per directory and base name so that
// variants such as index.ts and index.js count once. A limit below 1 returns every candidate.
func (c *Context) Files(ctx context.Context, limit int) ([]string, error) {
	root, err := c.Tree(ctx)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	var files []string
	for _, file := range filetree.Paths(root.Children) {
		base := path.Base(file)
		key := path.Join(path.Dir(file), strings.TrimSuffix(base, path.Ext(base)))
		if _, has := seen[key]; has {
			continue
		}
		seen[key] = struct{}{}

		files = append(files, file)
		if limit > 0 && len(files) == limit {
			break
		}
	}

	return files, nil
}

// Verify keeps the relative paths that name existing files, normalized to slash form.
func (c *Context) Verify(paths []string) []string {
	var existing []string
	for _, p := range paths {
		normalized := normalize(p)
		if !fs.ValidPath(normalized) {
			log.Printf("skipping invalid workspace path '%s'", p)
			continue
		}

		info, err := fs.Stat(c.fsys, normalized)
		if err != nil || !info.Mode().IsRegular() {
			log.Printf("skipping missing workspace file '%s'", p)
			continue
		}

		existing = append(existing, normalized)
	}

	return existing
}

// ReadFile reads a workspace file by relative path.
func (c *Context) ReadFile(relativePath string) ([]byte, error) {
	normalized := normalize(relativePath)
	if !fs.ValidPath(normalized) {
		return nil, fmt.Errorf("invalid workspace path '%s'", relativePath)
	}

	return fs.ReadFile(c.fsys, normalized)
}

func normalize(p string) string {
	p = strings.ReplaceAll(filepath.ToSlash(p), "\\", "/")
	p = strings.TrimPrefix(p, "./")
	return strings.TrimPrefix(p, "/")
}
