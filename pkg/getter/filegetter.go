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

package getter

import (
	"bytes"
	"net/url"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/novr/reg-publish-bitrise/pkg/errs"
)

// FileGetter reads file:// URLs from the local disk.
type FileGetter struct{}

// Get returns the contents of the file named by href.
func (g *FileGetter) Get(href string, _ ...Option) (*bytes.Buffer, error) {
	u, err := url.Parse(href)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse URL getting from")
	}
	if u.Scheme != "file" {
		return nil, errors.Errorf("not a file URL: %s", href)
	}
	name := filepath.FromSlash(u.Path)
	if u.Host != "" && u.Host != "localhost" {
		// file://relative/path is read relative to the working directory.
		name = filepath.Join(u.Host, name)
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, errs.IO(err, "reading %s", name)
	}
	return bytes.NewBuffer(b), nil
}

// NewFileGetter constructs a Getter for file:// URLs.
func NewFileGetter(_ ...Option) (Getter, error) {
	return &FileGetter{}, nil
}
