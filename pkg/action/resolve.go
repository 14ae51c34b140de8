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

	"github.com/novr/reg-publish-bitrise/pkg/cli"
	"github.com/novr/reg-publish-bitrise/pkg/resolver"
)

// Resolve is the action for looking up the artifact a fetch would restore,
// without downloading it.
//
// It provides the implementation of 'reg-publish-bitrise resolve'.
type Resolve struct {
	ArtifactOptions

	cfg *Configuration

	Settings *cli.EnvSettings
}

// NewResolve creates a new Resolve object with the given configuration.
func NewResolve(cfg *Configuration) *Resolve {
	return &Resolve{cfg: cfg}
}

// Run resolves key. The result is nil, with a nil error, when no artifact
// matches.
func (r *Resolve) Run(ctx context.Context, key string) (*resolver.DownloadInfo, error) {
	res, err := r.resolver(r.cfg, r.Settings)
	if err != nil {
		return nil, err
	}
	info, ok, err := res.Resolve(ctx, key)
	if err != nil || !ok {
		return nil, err
	}
	return &info, nil
}
