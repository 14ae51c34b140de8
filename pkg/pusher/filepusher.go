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

package pusher

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/novr/reg-publish-bitrise/internal/fileutil"
	"github.com/novr/reg-publish-bitrise/pkg/errs"
)

// FilePusher writes archives into a local directory, such as the deploy
// directory Bitrise collects artifacts from.
type FilePusher struct {
	opts options
}

// Push writes data to href/name atomically and returns the file path.
func (pusher *FilePusher) Push(name string, data []byte, href string, options ...Option) (string, error) {
	for _, opt := range options {
		opt(&pusher.opts)
	}
	dir, err := localDir(href)
	if err != nil {
		return "", err
	}
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", errors.Errorf("invalid archive name %q", name)
	}
	if err := fileutil.EnsureDir(dir); err != nil {
		return "", errs.IO(err, "creating %s", dir)
	}
	dest := filepath.Join(dir, name)
	if err := fileutil.WriteFile(dest, data); err != nil {
		return "", errs.IO(err, "writing %s", dest)
	}
	return dest, nil
}

func localDir(href string) (string, error) {
	if !strings.HasPrefix(href, "file://") {
		return filepath.Clean(href), nil
	}
	u, err := url.Parse(href)
	if err != nil {
		return "", errors.Wrapf(err, "invalid upload location %q", href)
	}
	return filepath.Clean(filepath.FromSlash(u.Host + u.Path)), nil
}

// NewFilePusher constructs a Pusher writing to a local directory.
func NewFilePusher(options ...Option) (Pusher, error) {
	var client FilePusher
	for _, opt := range options {
		opt(&client.opts)
	}
	return &client, nil
}
