// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package samples

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/azure/teamsfx/internal"
	"github.com/azure/teamsfx/pkg/async"
	"github.com/azure/teamsfx/pkg/filetree"
	"github.com/azure/teamsfx/pkg/httputil"
	"github.com/azure/teamsfx/pkg/osutil"
	"go.uber.org/multierr"
)

// ErrOutsideRoot is recorded for a listed path that is not below the build's root label.
var ErrOutsideRoot = errors.New("path is outside of the sample root")

// Fetcher downloads the raw bytes behind a URL, retrying per policy. [*httputil.Client] implements it.
type Fetcher interface {
	GetWithRetry(ctx context.Context, url string, policy httputil.RetryPolicy) ([]byte, error)
}

type BuildOptions struct {
	// UrlPrefix is prepended to every path to form its download URL.
	UrlPrefix string
	// Paths are slash separated repository paths, all expected below RootLabel.
	Paths []string
	// Destination is the local directory files are written under, at Destination/<path>.
	Destination string
	// RootLabel names the tree root. It is stripped from each path to form the tree entry.
	RootLabel string
	// MaxAttempts is the total number of download attempts per file.
	MaxAttempts int
	// Concurrency bounds the number of files downloaded at once.
	Concurrency int
	// Backoff is the delay before the first retry. Zero retries immediately.
	Backoff    time.Duration
	MaxBackoff time.Duration
	// OnProgress, when set, is called once per settled path, one call at a time.
	OnProgress func(DownloadProgress)
}

func (o BuildOptions) validate() error {
	if o.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d: %w", o.MaxAttempts, internal.ErrInvalidArgument)
	}
	if o.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d: %w", o.Concurrency, internal.ErrInvalidArgument)
	}
	if o.Destination == "" {
		return fmt.Errorf("destination is required: %w", internal.ErrInvalidArgument)
	}

	return nil
}

type DownloadProgress struct {
	Path      string
	Completed int
	Total     int
	// Err is set when Path failed.
	Err error
}

// DownloadFailure pairs a path with the reason it was not materialized.
type DownloadFailure struct {
	Path string
	Err  error
}

func (f DownloadFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Path, f.Err)
}

func (f DownloadFailure) Unwrap() error {
	return f.Err
}

// FilesystemError reports a local disk failure while materializing a single file.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}

type BuildResult struct {
	// Nodes are the children of the root label, covering every file written to disk.
	Nodes []*filetree.Node
	// Failures lists the paths that were not materialized, in input order.
	Failures []DownloadFailure
	// Folder is Destination/RootLabel, the local copy of the root.
	Folder string
}

// Err combines all failures, or returns nil when every path succeeded.
func (r *BuildResult) Err() error {
	var errs []error
	for _, failure := range r.Failures {
		errs = append(errs, failure)
	}

	return multierr.Combine(errs...)
}

// BuildFileTree downloads every path in options.Paths with bounded concurrency, writes each file under
// options.Destination and returns the tree of files that made it to disk.
//
// A failing path never aborts the batch; it is reported in BuildResult.Failures. When ctx is cancelled no
// further downloads start and the partial result is returned together with ctx.Err().
func BuildFileTree(ctx context.Context, fetcher Fetcher, options BuildOptions) (*BuildResult, error) {
	if err := options.validate(); err != nil {
		return nil, err
	}

	policy := httputil.RetryPolicy{
		MaxAttempts: options.MaxAttempts,
		Backoff:     options.Backoff,
		MaxBackoff:  options.MaxBackoff,
	}
	tree := filetree.NewTree(options.RootLabel)

	paths := uniquePaths(options.Paths)
	indexes := make(map[string]int, len(paths))
	for i, samplePath := range paths {
		indexes[samplePath] = i
	}
	errs := make([]error, len(paths))

	observer := options.OnProgress
	if observer == nil {
		observer = func(DownloadProgress) {}
	}

	var mu sync.Mutex
	completed := 0

	_, runErr := async.RunWithProgress(observer,
		func(progress *async.Progress[DownloadProgress]) (struct{}, error) {
			err := async.RunWithLimitedConcurrency(ctx, paths, options.Concurrency,
				func(ctx context.Context, samplePath string) {
					err := materializeRecovering(ctx, fetcher, policy, options, tree, samplePath)
					if err != nil {
						log.Printf("failed materializing '%s': %v", samplePath, err)
					}

					mu.Lock()
					defer mu.Unlock()

					if err != nil {
						errs[indexes[samplePath]] = err
					}
					completed++
					progress.SetProgress(DownloadProgress{
						Path:      samplePath,
						Completed: completed,
						Total:     len(paths),
						Err:       err,
					})
				})
			return struct{}{}, err
		})

	result := &BuildResult{
		Nodes:  tree.Nodes(),
		Folder: filepath.Join(options.Destination, filepath.FromSlash(options.RootLabel)),
	}
	for i, err := range errs {
		if err != nil {
			result.Failures = append(result.Failures, DownloadFailure{Path: paths[i], Err: err})
		}
	}

	if runErr != nil {
		return result, runErr
	}

	return result, nil
}

// uniquePaths drops repeated paths, keeping the first occurrence. Two writers of one destination would race
// on its partial file.
func uniquePaths(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	unique := make([]string, 0, len(paths))
	for _, samplePath := range paths {
		if _, has := seen[samplePath]; has {
			continue
		}
		seen[samplePath] = struct{}{}
		unique = append(unique, samplePath)
	}
	return unique
}

// materializeRecovering turns a panic raised while materializing samplePath into its failure.
func materializeRecovering(
	ctx context.Context,
	fetcher Fetcher,
	policy httputil.RetryPolicy,
	options BuildOptions,
	tree *filetree.Tree,
	samplePath string,
) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while materializing '%s': %v", samplePath, r)
		}
	}()

	return materialize(ctx, fetcher, policy, options, tree, samplePath)
}

func materialize(
	ctx context.Context,
	fetcher Fetcher,
	policy httputil.RetryPolicy,
	options BuildOptions,
	tree *filetree.Tree,
	samplePath string,
) error {
	relativePath, err := relativeToRoot(samplePath, options.RootLabel)
	if err != nil {
		return err
	}

	data, err := fetcher.GetWithRetry(ctx, options.UrlPrefix+samplePath, policy)
	if err != nil {
		return fmt.Errorf("downloading '%s': %w", samplePath, err)
	}

	dst := filepath.Join(options.Destination, filepath.FromSlash(samplePath))
	if err := osutil.EnsureParentDir(dst); err != nil {
		return &FilesystemError{Op: "mkdir", Path: filepath.Dir(dst), Err: err}
	}

	if err := osutil.WriteFileAtomic(dst, data, osutil.PermissionFile); err != nil {
		return &FilesystemError{Op: "write", Path: dst, Err: err}
	}

	// only files that are on disk are listed
	return tree.Add(relativePath)
}

// relativeToRoot strips "<root>/" from a slash separated path.
func relativeToRoot(samplePath string, root string) (string, error) {
	if !filepath.IsLocal(filepath.FromSlash(samplePath)) || slices.Contains(strings.Split(samplePath, "/"), "..") {
		return "", fmt.Errorf("'%s': %w", samplePath, ErrOutsideRoot)
	}

	root = strings.Trim(root, "/")
	if root == "" {
		return samplePath, nil
	}

	relativePath, found := strings.CutPrefix(samplePath, root+"/")
	if !found || relativePath == "" {
		return "", fmt.Errorf("'%s' is not below '%s': %w", samplePath, root, ErrOutsideRoot)
	}

	return relativePath, nil
}
