// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package workspace

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/azure/teamsfx/pkg/filetree"
	"github.com/psanford/memfs"
	"github.com/stretchr/testify/require"
)

func newTestFS(t *testing.T, files map[string]string) *memfs.FS {
	fsys := memfs.New()
	for name, content := range files {
		if dir := filepath.ToSlash(filepath.Dir(name)); dir != "." {
			require.NoError(t, fsys.MkdirAll(dir, 0755))
		}
		require.NoError(t, fsys.WriteFile(name, []byte(content), 0644))
	}
	return fsys
}

var botProject = map[string]string{
	"package.json":                  `{"name":"bot"}`,
	"package-lock.json":             `{}`,
	"teamsapp.yml":                  "version: 1.0",
	"src/index.ts":                  "import express",
	"src/index.js":                  "compiled",
	"src/bot.ts":                    "class Bot",
	"src/styles/app.css":            "body {}",
	"src/types/global.d.ts":         "declare",
	"node_modules/express/index.js": "module",
	"infra/azure.bicep":             "resource",
	"appPackage/color.png":          "png",
	"appPackage/manifest.json":      "{}",
	"assets/logo.png":               "png",
	"secrets/.env.local":            "KEY=1",
	".gitignore":                    "secrets/\n*.log\n",
	"debug.log":                     "log",
}

func TestScan(t *testing.T) {
	wc, err := NewContext("/projects/bot", WithFS(newTestFS(t, botProject)))
	require.NoError(t, err)

	root, err := wc.Tree(context.Background())
	require.NoError(t, err)
	require.Equal(t, "bot", root.Name)

	require.ElementsMatch(t, []string{
		"package.json",
		"src/index.ts",
		"src/index.js",
		"src/bot.ts",
		"appPackage/manifest.json",
	}, filetree.Paths(root.Children))

	// directories whose files were all excluded are pruned
	for _, name := range []string{"assets", "node_modules", "infra", "secrets"} {
		require.Nil(t, root.Child(name), name)
	}
	require.Nil(t, root.Child("src").Child("styles"))
	require.Nil(t, root.Child("src").Child("types"))
}

func TestTreeString(t *testing.T) {
	wc, err := NewContext("/projects/bot", WithFS(newTestFS(t, map[string]string{
		"src/bot/index.ts": "",
	})))
	require.NoError(t, err)

	tree, err := wc.TreeString(context.Background())
	require.NoError(t, err)
	require.Equal(t, "bot/\n  src/\n    bot/\n      index.ts\n", tree)
	require.NotContains(t, tree, "├")
}

func TestRefresh(t *testing.T) {
	fsys := newTestFS(t, map[string]string{"src/index.ts": ""})
	wc, err := NewContext("/projects/bot", WithFS(fsys))
	require.NoError(t, err)

	before, err := wc.TreeString(context.Background())
	require.NoError(t, err)

	require.NoError(t, fsys.WriteFile("src/bot.ts", nil, 0644))
	cached, err := wc.TreeString(context.Background())
	require.NoError(t, err)
	require.Equal(t, before, cached)

	wc.Refresh()
	refreshed, err := wc.TreeString(context.Background())
	require.NoError(t, err)
	require.Contains(t, refreshed, "bot.ts")
}

func TestFiles(t *testing.T) {
	wc, err := NewContext("/projects/bot", WithFS(newTestFS(t, botProject)))
	require.NoError(t, err)

	files, err := wc.Files(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, files, 4)
	require.Contains(t, files, "src/bot.ts")

	indexes := 0
	for _, f := range files {
		if strings.HasPrefix(f, "src/index.") {
			indexes++
		}
	}
	require.Equal(t, 1, indexes)

	limited, err := wc.Files(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
}

func TestVerify(t *testing.T) {
	wc, err := NewContext("/projects/bot", WithFS(newTestFS(t, botProject)))
	require.NoError(t, err)

	verified := wc.Verify([]string{
		"src/index.ts",
		"./package.json",
		"/src/bot.ts",
		"src/missing.ts",
		"src",
		"../outside.ts",
	})
	require.Equal(t, []string{"src/index.ts", "package.json", "src/bot.ts"}, verified)

	data, err := wc.ReadFile("src/bot.ts")
	require.NoError(t, err)
	require.Equal(t, "class Bot", string(data))
}

func TestNewContext(t *testing.T) {
	t.Run("NoWorkspace", func(t *testing.T) {
		_, err := NewContext("")
		require.ErrorIs(t, err, ErrNoWorkspace)
	})

	t.Run("DiskFolder", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "app.py"), []byte("print()"), 0600))

		wc, err := NewContext(dir)
		require.NoError(t, err)

		root, err := wc.Tree(context.Background())
		require.NoError(t, err)
		require.Equal(t, []string{"src/app.py"}, filetree.Paths(root.Children))
	})

	t.Run("NotADirectory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file.txt")
		require.NoError(t, os.WriteFile(file, nil, 0600))
		_, err := NewContext(file)
		require.Error(t, err)
	})

	t.Run("CustomExclusions", func(t *testing.T) {
		wc, err := NewContext("/projects/bot",
			WithFS(newTestFS(t, map[string]string{"notes.txt": "keep", "build/out.js": "drop"})),
			WithExcludedNames("build"),
			WithExcludedPatterns(),
		)
		require.NoError(t, err)

		root, err := wc.Tree(context.Background())
		require.NoError(t, err)
		require.Equal(t, []string{"notes.txt"}, filetree.Paths(root.Children))
	})
}
