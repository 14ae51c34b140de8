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

package materialize

import (
	"path/filepath"
	"sort"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/novr/reg-publish-bitrise/internal/fileutil"
	"github.com/novr/reg-publish-bitrise/pkg/errs"
)

// Target is where unpacked entries are written.
type Target struct {
	// Root is the directory entries are resolved against.
	Root string
	// StripPrefix, when set, is removed from entries that start with
	// StripPrefix followed by "/".
	StripPrefix string
}

// Rel returns the path of entry relative to t.Root.
func (t Target) Rel(entry string) string {
	entry = filepath.ToSlash(entry)
	if t.StripPrefix == "" {
		return entry
	}
	prefix := strings.TrimSuffix(filepath.ToSlash(t.StripPrefix), "/") + "/"
	return strings.TrimPrefix(entry, prefix)
}

// Write writes every entry to disk below target.Root, creating parent
// directories as needed and replacing existing files. It returns the paths
// written, in entry order.
//
// Entries are written in sorted order. A failure stops the write; files
// written before it are left in place.
func Write(entries map[string][]byte, target Target) ([]string, error) {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	written := make([]string, 0, len(names))
	for _, name := range names {
		dest, err := securejoin.SecureJoin(target.Root, filepath.FromSlash(target.Rel(name)))
		if err != nil {
			return written, errs.IO(err, "resolving %s", name)
		}
		if err := fileutil.WriteFile(dest, entries[name]); err != nil {
			return written, errs.IO(err, "writing %s", dest)
		}
		written = append(written, dest)
	}
	return written, nil
}
