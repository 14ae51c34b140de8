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

// Package pusher uploads a packed archive to where the CI picks it up.
package pusher

import (
	"net/url"
	"slices"
	"time"

	"github.com/pkg/errors"
)

// options are generic parameters to be provided to the pusher during instantiation.
//
// Pushers may or may not ignore these parameters as they are passed in.
type options struct {
	contentType string
	userAgent   string
	timeout     time.Duration
}

// Option allows specifying various settings configurable by the user for overriding the defaults
// used when performing Push operations with the Pusher.
type Option func(*options)

// WithContentType sets the media type sent along with the upload.
func WithContentType(contentType string) Option {
	return func(opts *options) {
		opts.contentType = contentType
	}
}

// WithUserAgent sets the request's User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(opts *options) {
		opts.userAgent = userAgent
	}
}

// WithTimeout sets the timeout for uploads.
func WithTimeout(timeout time.Duration) Option {
	return func(opts *options) {
		opts.timeout = timeout
	}
}

// Pusher is an interface to support upload to the specified URL.
type Pusher interface {
	// Push stores data as name below href and returns where it ended up.
	Push(name string, data []byte, href string, options ...Option) (string, error)
}

// Constructor is the function for every pusher which creates a specific instance
// according to the configuration
type Constructor func(options ...Option) (Pusher, error)

// Provider represents any pusher and the schemes that it supports.
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
func (p Providers) ByScheme(scheme string) (Pusher, error) {
	for _, pp := range p {
		if pp.Provides(scheme) {
			return pp.New()
		}
	}
	return nil, errors.Errorf("scheme %q not supported", scheme)
}

// ForURL returns a Pusher for the scheme of href. A plain path without a
// scheme is a local directory.
func (p Providers) ForURL(href string) (Pusher, error) {
	u, err := url.Parse(href)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid upload location %q", href)
	}
	scheme := u.Scheme
	// A single letter scheme is a Windows drive.
	if len(scheme) <= 1 {
		scheme = "file"
	}
	return p.ByScheme(scheme)
}

var fileProvider = Provider{
	Schemes: []string{"file"},
	New:     NewFilePusher,
}

var httpProvider = Provider{
	Schemes: []string{"http", "https"},
	New:     NewHTTPPusher,
}

// All finds all of the registered pushers as a list of Provider instances.
func All() Providers {
	return Providers{fileProvider, httpProvider}
}
