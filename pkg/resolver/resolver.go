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
Package resolver finds the artifact a previous build published for a key.

Resolution walks the app's builds page by page until one has a commit hash
starting with the key's leading segment, then walks that build's artifacts
until one has a title starting with the artifact name. Only the matched
artifact is fetched in detail to learn its download URL.
*/
package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/novr/reg-publish-bitrise/internal/logging"
	"github.com/novr/reg-publish-bitrise/pkg/bitrise"
	"github.com/novr/reg-publish-bitrise/pkg/errs"
	"github.com/novr/reg-publish-bitrise/pkg/paginate"
)

// FilterMode selects where the successful-builds-only filter is applied.
type FilterMode string

const (
	// FilterRequest sends the status as a listing request parameter.
	FilterRequest FilterMode = "request"
	// FilterClient lists every build and skips unsuccessful ones locally.
	FilterClient FilterMode = "client"
)

// ParseFilterMode parses a FilterMode. The empty string is FilterRequest.
func ParseFilterMode(s string) (FilterMode, error) {
	switch FilterMode(s) {
	case "", FilterRequest:
		return FilterRequest, nil
	case FilterClient:
		return FilterClient, nil
	default:
		return "", errors.Errorf("invalid filter mode %q: must be %q or %q", s, FilterRequest, FilterClient)
	}
}

// Service is the part of the Bitrise API the resolver needs.
type Service interface {
	ListBuilds(ctx context.Context, appSlug string, opts bitrise.BuildListOptions) (paginate.Page[bitrise.Build], error)
	ListArtifacts(ctx context.Context, appSlug, buildSlug, next string) (paginate.Page[bitrise.ArtifactSummary], error)
	ShowArtifact(ctx context.Context, appSlug, buildSlug, artifactSlug string) (*bitrise.ArtifactDetail, error)
}

var _ Service = (*bitrise.Client)(nil)

// DownloadInfo describes a resolved artifact.
type DownloadInfo struct {
	BuildSlug    string
	CommitHash   string
	ArtifactSlug string
	Title        string
	URL          string
}

// Resolver finds artifacts for keys.
type Resolver struct {
	Client       Service
	AppSlug      string
	ArtifactName string
	SuccessOnly  bool
	Filter       FilterMode
	// PageSize is the number of builds requested per page. Zero leaves it
	// to the server.
	PageSize int
	Log      logrus.FieldLogger
}

// BuildKeyPrefix returns the part of key before its first "/", or key when
// it has none. Build commit hashes are compared against this prefix.
func BuildKeyPrefix(key string) string {
	if i := strings.IndexByte(key, '/'); i >= 0 {
		return key[:i]
	}
	return key
}

// Resolve returns the download information for key. The boolean is false,
// with a nil error, when no build or artifact matches.
//
// Errors returned by the Client are passed through unchanged.
func (r *Resolver) Resolve(ctx context.Context, key string) (DownloadInfo, bool, error) {
	if r.AppSlug == "" {
		return DownloadInfo{}, false, errs.NotFound("the app slug is missing")
	}
	log := r.logger().WithField("app", r.AppSlug)
	prefix := BuildKeyPrefix(key)

	build, ok, err := r.findBuild(ctx, log, prefix)
	if err != nil {
		return DownloadInfo{}, false, err
	}
	if !ok {
		log.WithField("prefix", prefix).Debug("no build matches")
		return DownloadInfo{}, false, nil
	}
	log = log.WithField("build", build.Slug)
	log.WithField("commit", build.CommitHash).Debug("found build")

	art, ok, err := paginate.First(ctx,
		func(ctx context.Context, cursor string) (paginate.Page[bitrise.ArtifactSummary], error) {
			return r.Client.ListArtifacts(ctx, r.AppSlug, build.Slug, cursor)
		},
		func(a bitrise.ArtifactSummary) bool { return strings.HasPrefix(a.Title, r.ArtifactName) },
		pageLogger(log, "artifacts"),
	)
	if err != nil {
		return DownloadInfo{}, false, err
	}
	if !ok {
		log.WithField("name", r.ArtifactName).Debug("no artifact matches")
		return DownloadInfo{}, false, nil
	}

	detail, err := r.Client.ShowArtifact(ctx, r.AppSlug, build.Slug, art.Slug)
	if err != nil {
		return DownloadInfo{}, false, err
	}
	if detail.ExpiringDownloadURL == "" {
		log.WithField("artifact", art.Slug).Warn("artifact has no download URL")
		return DownloadInfo{}, false, nil
	}

	return DownloadInfo{
		BuildSlug:    build.Slug,
		CommitHash:   build.CommitHash,
		ArtifactSlug: art.Slug,
		Title:        art.Title,
		URL:          detail.ExpiringDownloadURL,
	}, true, nil
}

func (r *Resolver) findBuild(ctx context.Context, log logrus.FieldLogger, prefix string) (bitrise.Build, bool, error) {
	opts := bitrise.BuildListOptions{Limit: r.PageSize}
	clientSide := false
	if r.SuccessOnly {
		if r.Filter == FilterClient {
			clientSide = true
		} else {
			status := bitrise.StatusSuccess
			opts.Status = &status
		}
	}

	return paginate.First(ctx,
		func(ctx context.Context, cursor string) (paginate.Page[bitrise.Build], error) {
			o := opts
			o.Next = cursor
			return r.Client.ListBuilds(ctx, r.AppSlug, o)
		},
		func(b bitrise.Build) bool {
			if clientSide && !b.Succeeded() {
				return false
			}
			return strings.HasPrefix(b.CommitHash, prefix)
		},
		pageLogger(log, "builds"),
	)
}

func (r *Resolver) logger() logrus.FieldLogger {
	if r.Log != nil {
		return r.Log
	}
	return logging.Discard()
}

func pageLogger(log logrus.FieldLogger, collection string) paginate.Observer {
	return func(cursor string, items int, next string) {
		log.WithFields(logrus.Fields{
			"cursor": cursor,
			"items":  items,
			"next":   next,
		}).Debug(fmt.Sprintf("fetched %s page", collection))
	}
}
