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

package files

import (
	"io/fs"
	"mime"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"

	"github.com/novr/reg-publish-bitrise/pkg/errs"
)

// DefaultPattern selects every file below the root.
const DefaultPattern = "**/*"

// LockFileName is the advisory lock taken on a working directory. It is
// never listed.
const LockFileName = ".reg-publish-bitrise.lock"

const defaultContentType = "application/octet-stream"

// LocalFile is a file found below a working directory.
type LocalFile struct {
	// RelativePath is slash separated and relative to the listing root.
	RelativePath string
	AbsolutePath string
	ContentType  string
}

// New builds a LocalFile for rel under root.
func New(root, rel string) LocalFile {
	rel = filepath.ToSlash(rel)
	return LocalFile{
		RelativePath: rel,
		AbsolutePath: filepath.Join(root, filepath.FromSlash(rel)),
		ContentType:  ContentType(rel),
	}
}

// ContentType guesses the MIME type of name from its extension.
func ContentType(name string) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return defaultContentType
}

// List walks root and returns the regular files whose relative path matches
// pattern, sorted by relative path. An empty pattern means DefaultPattern.
//
// A leading "**/" also matches files directly in root, so "**/*.png" selects
// "a.png" as well as "x/y/a.png".
func List(root, pattern string) ([]LocalFile, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	match, err := compile(pattern)
	if err != nil {
		return nil, err
	}

	var out []LocalFile
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return errs.IO(err, "listing %s", p)
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return errs.IO(err, "listing %s", p)
		}
		rel = filepath.ToSlash(rel)
		if rel == LockFileName || !match(rel) {
			return nil
		}
		out = append(out, New(root, rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].RelativePath < out[j].RelativePath })
	return out, nil
}

// WithPrefix returns a copy of list with every relative path nested under
// prefix. An empty prefix returns list unchanged.
func WithPrefix(list []LocalFile, prefix string) []LocalFile {
	prefix = strings.Trim(path.Clean("/"+filepath.ToSlash(prefix)), "/")
	if prefix == "" {
		return list
	}
	out := make([]LocalFile, len(list))
	for i, f := range list {
		f.RelativePath = path.Join(prefix, f.RelativePath)
		out[i] = f
	}
	return out
}

// Without returns the files of list other than the one at path, compared by
// absolute path. It keeps an archive written into the directory it was packed
// from out of the next archive.
func Without(list []LocalFile, path string) []LocalFile {
	abs, err := filepath.Abs(path)
	if err != nil {
		return list
	}
	out := make([]LocalFile, 0, len(list))
	for _, f := range list {
		if fa, err := filepath.Abs(f.AbsolutePath); err == nil && fa == abs {
			continue
		}
		out = append(out, f)
	}
	return out
}

func compile(pattern string) (func(string) bool, error) {
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, errors.Wrapf(err, "invalid pattern %q", pattern)
	}
	if !strings.HasPrefix(pattern, "**/") {
		return g.Match, nil
	}
	top, err := glob.Compile(strings.TrimPrefix(pattern, "**/"), '/')
	if err != nil {
		return nil, errors.Wrapf(err, "invalid pattern %q", pattern)
	}
	return func(name string) bool {
		return g.Match(name) || top.Match(name)
	}, nil
}
