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

/*
Package bitrise is a small client for the parts of the Bitrise REST API used to
locate build artifacts: listing builds, listing a build's artifacts and
showing one artifact.

Listings are cursor paginated and are returned as paginate.Page values.
*/
package bitrise

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/novr/reg-publish-bitrise/internal/version"
	"github.com/novr/reg-publish-bitrise/pkg/errs"
	"github.com/novr/reg-publish-bitrise/pkg/paginate"
)

// DefaultBaseURL is the public Bitrise API endpoint.
const DefaultBaseURL = "https://api.bitrise.io/v0.1"

// DefaultTimeout bounds a single API request.
const DefaultTimeout = 60 * time.Second

// maxErrorBody caps how much of an error response is kept in the error.
const maxErrorBody = 512

type options struct {
	baseURL   string
	token     string
	userAgent string
	timeout   time.Duration
}

// Option configures a Client.
type Option func(*options)

// WithBaseURL points the client at a different API root.
func WithBaseURL(baseURL string) Option {
	return func(opts *options) {
		opts.baseURL = baseURL
	}
}

// WithToken sets the personal access token sent with each request.
func WithToken(token string) Option {
	return func(opts *options) {
		opts.token = token
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(opts *options) {
		opts.userAgent = userAgent
	}
}

// WithTimeout sets the per request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(opts *options) {
		opts.timeout = timeout
	}
}

// Client talks to the Bitrise API.
type Client struct {
	opts options
	base *url.URL
	http *http.Client
}

// NewClient creates a Client. Without options it targets DefaultBaseURL
// anonymously.
func NewClient(options ...Option) (*Client, error) {
	c := &Client{opts: defaultOptions()}
	for _, opt := range options {
		opt(&c.opts)
	}
	u, err := url.Parse(strings.TrimSuffix(c.opts.baseURL, "/"))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid API URL %q", c.opts.baseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("invalid API URL %q: scheme must be http or https", c.opts.baseURL)
	}
	c.base = u
	c.http = &http.Client{
		Timeout:   c.opts.timeout,
		Transport: &http.Transport{Proxy: http.ProxyFromEnvironment},
	}
	return c, nil
}

func defaultOptions() options {
	return options{
		baseURL:   DefaultBaseURL,
		userAgent: version.GetUserAgent(),
		timeout:   DefaultTimeout,
	}
}

// ListBuilds returns one page of an app's builds, newest first.
func (c *Client) ListBuilds(ctx context.Context, appSlug string, o BuildListOptions) (paginate.Page[Build], error) {
	q := url.Values{}
	if o.Status != nil {
		q.Set("status", strconv.Itoa(int(*o.Status)))
	}
	setPaging(q, o.Next, o.Limit)

	var resp buildListResponse
	if err := c.get(ctx, q, &resp, "apps", appSlug, "builds"); err != nil {
		return paginate.Page[Build]{}, err
	}
	return paginate.Page[Build]{Items: resp.Data, Next: resp.Paging.Next}, nil
}

// ListArtifacts returns one page of a build's artifacts.
func (c *Client) ListArtifacts(ctx context.Context, appSlug, buildSlug, next string) (paginate.Page[ArtifactSummary], error) {
	q := url.Values{}
	setPaging(q, next, 0)

	var resp artifactListResponse
	if err := c.get(ctx, q, &resp, "apps", appSlug, "builds", buildSlug, "artifacts"); err != nil {
		return paginate.Page[ArtifactSummary]{}, err
	}
	return paginate.Page[ArtifactSummary]{Items: resp.Data, Next: resp.Paging.Next}, nil
}

// ShowArtifact returns a single artifact including its expiring download URL.
func (c *Client) ShowArtifact(ctx context.Context, appSlug, buildSlug, artifactSlug string) (*ArtifactDetail, error) {
	var resp artifactShowResponse
	if err := c.get(ctx, nil, &resp, "apps", appSlug, "builds", buildSlug, "artifacts", artifactSlug); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func setPaging(q url.Values, next string, limit int) {
	if next != "" {
		q.Set("next", next)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
}

func (c *Client) endpoint(q url.Values, segments ...string) string {
	u := *c.base
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	u.Path = strings.TrimSuffix(c.base.Path, "/") + "/" + strings.Join(segments, "/")
	u.RawPath = strings.TrimSuffix(c.base.EscapedPath(), "/") + "/" + strings.Join(escaped, "/")
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Client) get(ctx context.Context, q url.Values, into interface{}, segments ...string) error {
	href := c.endpoint(q, segments...)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, href, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.opts.userAgent)
	if c.opts.token != "" {
		req.Header.Set("Authorization", c.opts.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errs.RemoteCall(err, "GET %s", href)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errs.RemoteCall(nil, "GET %s: %s%s", href, resp.Status, errorMessage(resp.Body))
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return errs.RemoteCall(err, "decoding response from GET %s", href)
	}
	return nil
}

func errorMessage(body io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if len(b) == 0 {
		return ""
	}
	var e errorResponse
	if err := json.Unmarshal(b, &e); err == nil && e.Message != "" {
		return ": " + e.Message
	}
	return ": " + strings.TrimSpace(string(b))
}
