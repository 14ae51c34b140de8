/*
Copyright The reg-publish-bitrise Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package fileutil writes files so that readers never see partial content.
package fileutil

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// DefaultFileMode is the mode of files written by WriteFile.
const DefaultFileMode os.FileMode = 0644

// WriteFile creates the parent directories of name and atomically replaces
// name with data.
func WriteFile(name string, data []byte) error {
	if err := EnsureDir(filepath.Dir(name)); err != nil {
		return err
	}
	return AtomicWriteFile(name, bytes.NewReader(data), DefaultFileMode)
}

// AtomicWriteFile atomically (as atomic as os.Rename allows) writes a file to a
// disk. The content is synced before the rename, and an existing file at
// filename is replaced. The temporary file is removed on every error.
func AtomicWriteFile(filename string, reader io.Reader, mode os.FileMode) (err error) {
	dir, base := filepath.Split(filename)
	if dir == "" {
		dir = "."
	}
	tempFile, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return err
	}
	tempName := tempFile.Name()
	defer func() {
		if err != nil {
			tempFile.Close() // already failing, the close error adds nothing
			os.Remove(tempName)
		}
	}()

	if _, err = io.Copy(tempFile, reader); err != nil {
		return err
	}
	if err = tempFile.Sync(); err != nil {
		return err
	}
	if err = tempFile.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tempName, mode); err != nil {
		return err
	}
	return os.Rename(tempName, filename)
}

// EnsureDir creates dir and any missing parents. It fails if dir exists and
// is not a directory.
func EnsureDir(dir string) error {
	fi, err := os.Stat(dir)
	if err == nil {
		if !fi.IsDir() {
			return &os.PathError{Op: "mkdir", Path: dir, Err: os.ErrExist}
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// DirExists reports whether dir exists and is a directory.
func DirExists(dir string) bool {
	fi, err := os.Stat(dir)
	return err == nil && fi.IsDir()
}
