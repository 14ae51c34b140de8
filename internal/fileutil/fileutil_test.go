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

package fileutil

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "snapshots", "actual", "a.png")

	if err := WriteFile(name, []byte("png")); err != nil {
		t.Fatalf("WriteFile error: %s", err)
	}
	got, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "png" {
		t.Fatalf("expected: png, got: %s", got)
	}
	fi, err := os.Stat(name)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode() != DefaultFileMode {
		t.Fatalf("expected mode %s, got %s", DefaultFileMode, fi.Mode())
	}
}

func TestAtomicWriteFileMode(t *testing.T) {
	name := filepath.Join(t.TempDir(), "artifact.zip")

	if err := AtomicWriteFile(name, bytes.NewReader([]byte("zip")), 0600); err != nil {
		t.Fatal(err)
	}
	fi, err := os.Stat(name)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode() != 0600 {
		t.Fatalf("expected mode 0600, got %s", fi.Mode())
	}
}

func TestAtomicWriteFileOverwrites(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "artifact.zip")

	if err := os.WriteFile(name, []byte("old content that is longer"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := AtomicWriteFile(name, bytes.NewReader([]byte("new")), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new" {
		t.Fatalf("expected: new, got: %s", got)
	}
	assertEntries(t, dir, 1)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestAtomicWriteFileCleansUp(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "artifact.zip")

	if err := AtomicWriteFile(name, failingReader{}, 0644); err == nil {
		t.Fatal("expected the read error")
	}
	assertEntries(t, dir, 0)
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	if err := EnsureDir(dir); err != nil {
		t.Fatal(err)
	}
	// idempotent
	if err := EnsureDir(dir); err != nil {
		t.Fatal(err)
	}
	if !DirExists(dir) {
		t.Fatalf("expected %s to exist", dir)
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := EnsureDir(file); err == nil {
		t.Fatal("expected an error for a path that is a file")
	}
	if DirExists(file) {
		t.Fatal("a file is not a directory")
	}
	if DirExists(filepath.Join(dir, "missing")) {
		t.Fatal("expected a missing directory to be reported")
	}
}

func assertEntries(t *testing.T, dir string, want int) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != want {
		t.Fatalf("expected %d entries in %s, found %d", want, dir, len(entries))
	}
}
