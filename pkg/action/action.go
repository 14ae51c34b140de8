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

// Package action implements the publish and fetch transfers on top of the
// Bitrise client, the archive codec and the blob getters and pushers.
package action

import (
	"github.com/pkg/errors"

	"github.com/novr/reg-publish-bitrise/internal/logging"
	"github.com/novr/reg-publish-bitrise/internal/version"
	"github.com/novr/reg-publish-bitrise/pkg/bitrise"
	"github.com/novr/reg-publish-bitrise/pkg/cli"
	"github.com/novr/reg-publish-bitrise/pkg/getter"
	"github.com/novr/reg-publish-bitrise/pkg/progress"
	"github.com/novr/reg-publish-bitrise/pkg/pusher"
	"github.com/novr/reg-publish-bitrise/pkg/resolver"
)

// DefaultArtifactName is the archive base name and the artifact title prefix
// used when none is configured.
const DefaultArtifactName = "artifact"

// Configuration injects the dependencies that all actions share.
type Configuration struct {
	// Service lists builds and artifacts.
	Service resolver.Service

	// Getters download artifact archives.
	Getters getter.Providers

	// Pushers store published archives.
	Pushers pusher.Providers

	// Progress receives one unit per transfer.
	Progress progress.Reporter

	// Embed a LogHolder to provide logger functionality
	logging.LogHolder
}

// Init fills cfg from settings: a Bitrise client for the configured
// endpoint and the built-in getters and pushers.
func (cfg *Configuration) Init(settings *cli.EnvSettings) error {
	client, err := bitrise.NewClient(
		bitrise.WithBaseURL(settings.BaseURL),
		bitrise.WithToken(settings.APIToken),
		bitrise.WithTimeout(settings.Timeout),
		bitrise.WithUserAgent(version.GetUserAgent()),
	)
	if err != nil {
		return errors.Wrap(err, "creating Bitrise client")
	}
	cfg.Service = client
	cfg.Getters = getter.All(getter.WithTimeout(settings.Timeout))
	cfg.Pushers = pusher.All()
	return nil
}

func (cfg *Configuration) progress() progress.Reporter {
	if cfg.Progress == nil {
		return progress.Nop
	}
	return cfg.Progress
}

// ArtifactOptions select the artifact a fetch or resolve looks for.
type ArtifactOptions struct {
	ArtifactName string
	SuccessOnly  bool
	Filter       resolver.FilterMode
	PageSize     int
}

func (o ArtifactOptions) artifactName() string {
	if o.ArtifactName == "" {
		return DefaultArtifactName
	}
	return o.ArtifactName
}

func (o ArtifactOptions) resolver(cfg *Configuration, settings *cli.EnvSettings) (*resolver.Resolver, error) {
	if cfg.Service == nil {
		return nil, errors.New("no Bitrise client configured")
	}
	return &resolver.Resolver{
		Client:       cfg.Service,
		AppSlug:      settings.AppSlug,
		ArtifactName: o.artifactName(),
		SuccessOnly:  o.SuccessOnly,
		Filter:       o.Filter,
		PageSize:     o.PageSize,
		Log:          cfg.Logger(),
	}, nil
}
