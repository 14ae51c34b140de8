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
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/novr/reg-publish-bitrise/internal/version"
	"github.com/novr/reg-publish-bitrise/pkg/errs"
)

// HTTPGetter downloads artifact archives over HTTP(S), typically from the
// expiring URL Bitrise hands out for an artifact. The URL carries its own
// signature, so no credentials are ever sent.
type HTTPGetter struct {
	opts getterOptions
}

// Get downloads href and returns the body. Options given here apply to this
// call only.
func (g *HTTPGetter) Get(href string, options ...Option) (*bytes.Buffer, error) {
	opts := g.opts
	for _, opt := range options {
		opt(&opts)
	}
	return opts.get(href)
}

func (opts getterOptions) get(href string) (*bytes.Buffer, error) {
	target, err := url.Parse(href)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse URL getting from")
	}
	req, err := http.NewRequest(http.MethodGet, href, nil)
	if err != nil {
		return nil, err
	}
	if opts.acceptHeader != "" {
		req.Header.Set("Accept", opts.acceptHeader)
	}
	req.Header.Set("User-Agent", version.GetUserAgent())
	if opts.userAgent != "" {
		req.Header.Set("User-Agent", opts.userAgent)
	}

	resp, err := opts.client().Do(req)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return nil, errs.RemoteCall(err, "downloading %s", redact(target))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errs.RemoteCall(nil, "failed to fetch %s : %s", redact(target), resp.Status)
	}
	if opts.maxBytes > 0 && resp.ContentLength > opts.maxBytes {
		return nil, errs.RemoteCall(nil, "%s is %d bytes, larger than the limit of %d", redact(target), resp.ContentLength, opts.maxBytes)
	}

	var body io.Reader = resp.Body
	if opts.maxBytes > 0 {
		// One byte over the limit tells a body of exactly maxBytes apart
		// from a longer one.
		body = io.LimitReader(resp.Body, opts.maxBytes+1)
	}
	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, body); err != nil {
		return nil, errs.RemoteCall(err, "downloading %s", redact(target))
	}
	if opts.maxBytes > 0 && int64(buf.Len()) > opts.maxBytes {
		return nil, errs.RemoteCall(nil, "%s exceeds the limit of %d bytes", redact(target), opts.maxBytes)
	}
	return buf, nil
}

func (opts getterOptions) client() *http.Client {
	transport := opts.transport
	if transport == nil {
		transport = &http.Transport{
			DisableCompression: true,
			Proxy:              http.ProxyFromEnvironment,
		}
	}
	return &http.Client{Transport: transport, Timeout: opts.timeout}
}

// redact drops the query string, which carries the signature of an expiring
// download URL, and any user info.
func redact(u *url.URL) string {
	c := *u
	c.RawQuery = ""
	c.User = nil
	return c.String()
}

// NewHTTPGetter constructs a valid http/https client as a Getter
func NewHTTPGetter(options ...Option) (Getter, error) {
	var client HTTPGetter

	for _, opt := range options {
		opt(&client.opts)
	}

	return &client, nil
}
