// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package samples

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/azure/teamsfx/pkg/osutil"
	"github.com/otiai10/copy"
)

// Scaffold copies a downloaded sample folder into a project directory. Files that already exist in the
// project are kept unless overwrite is set. Symlinks and partially written files are never copied.
func Scaffold(src string, dst string, overwrite bool) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("reading sample folder: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("sample folder '%s' is not a directory", src)
	}

	err = copy.Copy(src, dst, copy.Options{
		OnSymlink: func(string) copy.SymlinkAction {
			return copy.Skip
		},
		Skip: func(info os.FileInfo, src, dest string) (bool, error) {
			if info.IsDir() {
				return false, nil
			}

			if strings.HasSuffix(info.Name(), osutil.PartialSuffix) {
				return true, nil
			}

			if !overwrite && osutil.FileExists(dest) {
				log.Printf("keeping existing file '%s'", dest)
				return true, nil
			}

			return false, nil
		},
	})
	if err != nil {
		return fmt.Errorf("copying sample into '%s': %w", dst, err)
	}

	return nil
}
