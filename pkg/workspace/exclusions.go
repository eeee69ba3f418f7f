// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package workspace

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/denormal/go-gitignore"
)

// DefaultExcludedNames are file and directory names that never carry information about how an app is hosted.
var DefaultExcludedNames = []string{
	".git",
	"node_modules",
	"dist",
	"infra",
	"Deployment",
	".github",
	".vscode",
	".gitignore",
	".npmignore",
	".babelrc",
	"package-lock.json",
	"LICENSE",
	"LICENSE.md",
	"SECURITY.md",
	"CODE_OF_CONDUCT.md",
	"teamsapp.local.yml",
	"teamsapp.yml",
	"azure.yaml",
	// teamsfx chat history
	".teamsfx",
}

// DefaultExcludedPatterns skip assets, binaries and generated files.
var DefaultExcludedPatterns = []string{
	"**/*.css",
	"**/*.resx",
	"**/*.zip",
	"**/*.pbix",
	"**/*.idx",
	"**/*.pack",
	"**/*.rev",
	"**/*.png",
	"**/*.jpg",
	"**/*.jpeg",
	"**/*.gif",
	"**/*.bicep",
	"**/*.tf",
	"**/*.txt",
	"**/*.html",
	"**/*.d.ts",
	"**/*.dll",
}

// exclusions decides which workspace paths are left out of a scan.
type exclusions struct {
	names     []string
	patterns  []string
	gitignore gitignore.GitIgnore
}

func newExclusions(fsys fs.FS, base string, names []string, patterns []string) (*exclusions, error) {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern '%s'", pattern)
		}
	}

	e := &exclusions{names: names, patterns: patterns}

	data, err := fs.ReadFile(fsys, ".gitignore")
	if err == nil {
		e.gitignore = gitignore.New(bytes.NewReader(data), base, nil)
	} else if !errors.Is(err, fs.ErrNotExist) {
		log.Printf("failed reading .gitignore: %v", err)
	}

	return e, nil
}

// excluded reports whether the slash separated relative path should be skipped.
func (e *exclusions) excluded(relativePath string, isDir bool) bool {
	if slices.Contains(e.names, path.Base(relativePath)) {
		return true
	}

	if !isDir {
		for _, pattern := range e.patterns {
			if matched, _ := doublestar.Match(pattern, relativePath); matched {
				return true
			}
		}
	}

	if e.gitignore != nil {
		if match := e.gitignore.Relative(relativePath, isDir); match != nil && match.Ignore() {
			return true
		}
	}

	return false
}
