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

package action

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/novr/reg-publish-bitrise/pkg/archive"
	"github.com/novr/reg-publish-bitrise/pkg/cli"
	"github.com/novr/reg-publish-bitrise/pkg/getter"
	"github.com/novr/reg-publish-bitrise/pkg/materialize"
	"github.com/novr/reg-publish-bitrise/pkg/resolver"
)

// Fetch is the action for restoring the working directory from the archive
// a previous build published.
//
// It provides the implementation of 'reg-publish-bitrise fetch'.
type Fetch struct {
	ArtifactOptions

	cfg *Configuration

	Settings *cli.EnvSettings

	// NoEmit skips the fetch entirely.
	NoEmit bool
	// StripPrefix is removed from archive entry paths before writing.
	StripPrefix string
	// Destination is the directory files are restored into. Empty means the
	// working directory.
	Destination string
}

// FetchResult describes a finished fetch. A zero result means nothing was
// restored.
type FetchResult struct {
	// Artifact is the resolved artifact. Nil when none matched.
	Artifact *resolver.DownloadInfo
	// Files are the written file paths.
	Files []string
}

// NewFetch creates a new Fetch object with the given configuration.
func NewFetch(cfg *Configuration) *Fetch {
	return &Fetch{cfg: cfg}
}

// Run executes 'reg-publish-bitrise fetch' for key.
func (f *Fetch) Run(ctx context.Context, key string) (*FetchResult, error) {
	if f.NoEmit {
		return &FetchResult{}, nil
	}
	log := f.cfg.Logger().WithField("key", key)

	r, err := f.resolver(f.cfg, f.Settings)
	if err != nil {
		return nil, err
	}
	info, ok, err := r.Resolve(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		log.Info("no artifact found, nothing to restore")
		return &FetchResult{}, nil
	}
	log = log.WithFields(logrus.Fields{"build": info.BuildSlug, "artifact": info.ArtifactSlug})

	bar := f.cfg.progress()
	bar.Start(1)
	defer bar.Stop()

	g, err := f.cfg.Getters.ForURL(info.URL)
	if err != nil {
		return nil, err
	}
	buf, err := g.Get(info.URL, getter.WithAcceptHeader(archive.ContentType+",application/octet-stream"))
	if err != nil {
		return nil, err
	}
	entries, err := archive.Unpack(buf.Bytes())
	if err != nil {
		return nil, err
	}

	target := materialize.Target{Root: f.destination(), StripPrefix: f.StripPrefix}
	written, err := materialize.Write(entries, target)
	if err != nil {
		return nil, err
	}
	bar.Increment(1)
	log.WithField("files", len(written)).Info("restored artifact")

	return &FetchResult{Artifact: &info, Files: written}, nil
}

func (f *Fetch) destination() string {
	if f.Destination != "" {
		return f.Destination
	}
	return f.Settings.WorkingDir
}
