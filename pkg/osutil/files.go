// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package osutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// PartialSuffix is appended to a destination path while its content is being written. It is specific to
// teamsfx so that it never collides with files of a sample repository.
const PartialSuffix = ".teamsfx-part"

// WriteFileAtomic writes data next to path with the partial suffix, syncs it and renames it over path,
// so readers never observe a truncated file. An existing file at path is replaced.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp := path + PartialSuffix
	file, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		_ = os.Remove(tmp)
		return err
	}

	if err := file.Sync(); err != nil {
		_ = file.Close()
		_ = os.Remove(tmp)
		return err
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return nil
}

// EnsureParentDir creates the parent directory of path. An already existing directory is not an error.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, PermissionDirectory); err != nil && !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("creating directory '%s': %w", dir, err)
	}

	return nil
}

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
