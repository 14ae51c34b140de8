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
	"bytes"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/novr/reg-publish-bitrise/internal/version"
	"github.com/novr/reg-publish-bitrise/pkg/errs"
)

// HTTPPusher uploads archives with a PUT below a base URL.
type HTTPPusher struct {
	opts options
}

// Push performs a PUT of data to href/name and returns the resulting URL.
func (pusher *HTTPPusher) Push(name string, data []byte, href string, options ...Option) (string, error) {
	opts := pusher.opts
	for _, opt := range options {
		opt(&opts)
	}

	target := strings.TrimSuffix(href, "/") + "/" + url.PathEscape(name)
	req, err := http.NewRequest(http.MethodPut, target, bytes.NewReader(data))
	if err != nil {
		return "", errors.Wrapf(err, "invalid upload location %q", href)
	}
	if opts.contentType != "" {
		req.Header.Set("Content-Type", opts.contentType)
	}
	req.Header.Set("User-Agent", version.GetUserAgent())
	if opts.userAgent != "" {
		req.Header.Set("User-Agent", opts.userAgent)
	}

	client := &http.Client{Timeout: opts.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", errs.RemoteCall(err, "uploading %s", name)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errs.RemoteCall(nil, "failed to upload %s: %s", name, resp.Status)
	}
	return target, nil
}

// NewHTTPPusher constructs a Pusher uploading over http/https.
func NewHTTPPusher(options ...Option) (Pusher, error) {
	var client HTTPPusher
	for _, opt := range options {
		opt(&client.opts)
	}
	return &client, nil
}
