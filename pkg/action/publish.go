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
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/novr/reg-publish-bitrise/pkg/archive"
	"github.com/novr/reg-publish-bitrise/pkg/cli"
	"github.com/novr/reg-publish-bitrise/pkg/files"
	"github.com/novr/reg-publish-bitrise/pkg/pusher"
)

// Publish is the action for packing the working directory into one archive
// and handing it to Bitrise.
//
// It provides the implementation of 'reg-publish-bitrise publish'.
type Publish struct {
	cfg *Configuration

	Settings *cli.EnvSettings

	// Pattern selects the files to publish. Empty means every file.
	Pattern string
	// PathPrefix nests every archive entry under this directory.
	PathPrefix string
	// ArtifactName is the archive base name.
	ArtifactName string
	// UploadURL is where the archive is pushed. Empty means the deploy
	// directory.
	UploadURL string
}

// PublishResult describes a finished publish.
type PublishResult struct {
	// ReportURL points at the build's artifact tab. Empty when the build URL
	// is unknown.
	ReportURL string
	// Location is where the archive was stored.
	Location string
	// Files are the packed files.
	Files []files.LocalFile
}

// NewPublish creates a new Publish object with the given configuration.
func NewPublish(cfg *Configuration) *Publish {
	return &Publish{cfg: cfg}
}

// Run executes 'reg-publish-bitrise publish' for key.
func (p *Publish) Run(ctx context.Context, key string) (*PublishResult, error) {
	name := p.archiveName()
	dest := p.UploadURL
	if dest == "" {
		dest = p.Settings.DeployDirOrDefault()
	}
	log := p.cfg.Logger().WithFields(logrus.Fields{"key": key, "path": p.Settings.WorkingDir})

	list, err := files.List(p.Settings.WorkingDir, p.Pattern)
	if err != nil {
		return nil, err
	}
	// The deploy directory may be the working directory.
	list = files.WithPrefix(files.Without(list, filepath.Join(dest, name)), p.PathPrefix)
	log.WithField("files", len(list)).Debug("packing working directory")

	bar := p.cfg.progress()
	bar.Start(1)
	defer bar.Stop()

	blob, err := archive.Pack(list)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	push, err := p.cfg.Pushers.ForURL(dest)
	if err != nil {
		return nil, err
	}
	location, err := push.Push(name, blob, dest,
		pusher.WithContentType(archive.ContentType),
		pusher.WithTimeout(p.Settings.Timeout),
	)
	if err != nil {
		return nil, err
	}
	bar.Increment(1)
	log.WithField("location", location).Info("published archive")

	return &PublishResult{
		ReportURL: p.reportURL(),
		Location:  location,
		Files:     list,
	}, nil
}

func (p *Publish) archiveName() string {
	n := p.ArtifactName
	if n == "" {
		n = DefaultArtifactName
	}
	return n + archive.Extension
}

func (p *Publish) reportURL() string {
	if p.Settings.BuildURL == "" {
		return ""
	}
	return p.Settings.BuildURL + "/?tab=artifacts"
}
