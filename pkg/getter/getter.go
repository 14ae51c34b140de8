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
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/pkg/errors"
)

// getterOptions are generic parameters to be provided to the getter during instantiation.
//
// Getters may or may not ignore these parameters as they are passed in.
type getterOptions struct {
	acceptHeader string
	userAgent    string
	timeout      time.Duration
	maxBytes     int64
	transport    http.RoundTripper
}

// Option allows specifying various settings configurable by the user for overriding the defaults
// used when performing Get operations with the Getter.
type Option func(*getterOptions)

// WithAcceptHeader sets the request's Accept header.
func WithAcceptHeader(header string) Option {
	return func(opts *getterOptions) {
		opts.acceptHeader = header
	}
}

// WithUserAgent sets the request's User-Agent header to use the provided agent name.
func WithUserAgent(userAgent string) Option {
	return func(opts *getterOptions) {
		opts.userAgent = userAgent
	}
}

// WithTimeout sets the timeout for requests
func WithTimeout(timeout time.Duration) Option {
	return func(opts *getterOptions) {
		opts.timeout = timeout
	}
}

// WithMaxBytes caps the size of a download. Zero or less means no limit.
func WithMaxBytes(n int64) Option {
	return func(opts *getterOptions) {
		opts.maxBytes = n
	}
}

// WithTransport sets the http.RoundTripper to allow overwriting the HTTPGetter default.
func WithTransport(transport http.RoundTripper) Option {
	return func(opts *getterOptions) {
		opts.transport = transport
	}
}

// Getter is an interface to support GET to the specified URL.
type Getter interface {
	// Get file content by url string
	Get(url string, options ...Option) (*bytes.Buffer, error)
}

// Constructor is the function for every getter which creates a specific instance
// according to the configuration
type Constructor func(options ...Option) (Getter, error)

// Provider represents any getter and the schemes that it supports.
//
// For example, an HTTP provider may provide one getter that handles both
// 'http' and 'https' schemes.
type Provider struct {
	Schemes []string
	New     Constructor
}

// Provides returns true if the given scheme is supported by this Provider.
func (p Provider) Provides(scheme string) bool {
	return slices.Contains(p.Schemes, scheme)
}

// Providers is a collection of Provider objects.
type Providers []Provider

// ByScheme returns a Provider that handles the given scheme.
//
// If no provider handles this scheme, this will return an error.
func (p Providers) ByScheme(scheme string) (Getter, error) {
	for _, pp := range p {
		if pp.Provides(scheme) {
			return pp.New()
		}
	}
	return nil, errors.Errorf("scheme %q not supported", scheme)
}

// ForURL returns a Getter for the scheme of href.
func (p Providers) ForURL(href string) (Getter, error) {
	u, err := url.Parse(href)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid download URL")
	}
	return p.ByScheme(u.Scheme)
}

const (
	// DefaultHTTPTimeout bounds a whole download, in seconds. Artifact
	// archives can be large, so this is generous.
	DefaultHTTPTimeout = 600
	// DefaultMaxBytes caps a download at 2 GiB, the largest file Bitrise
	// accepts as a build artifact.
	DefaultMaxBytes int64 = 2 << 30
)

var defaultOptions = []Option{
	WithTimeout(time.Second * DefaultHTTPTimeout),
	WithMaxBytes(DefaultMaxBytes),
}

// All returns the built-in getters: HTTP(S) and local files.
func All(extraOpts ...Option) Providers {
	return Providers{
		Provider{
			Schemes: []string{"http", "https"},
			New: func(options ...Option) (Getter, error) {
				opts := append([]Option{}, defaultOptions...)
				opts = append(opts, extraOpts...)
				opts = append(opts, options...)
				return NewHTTPGetter(opts...)
			},
		},
		Provider{
			Schemes: []string{"file"},
			New: func(options ...Option) (Getter, error) {
				return NewFileGetter(options...)
			},
		},
	}
}
