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

package cmd

import (
	"context"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/novr/reg-publish-bitrise/internal/fileutil"
	"github.com/novr/reg-publish-bitrise/pkg/action"
	"github.com/novr/reg-publish-bitrise/pkg/errs"
	"github.com/novr/reg-publish-bitrise/pkg/files"
	"github.com/novr/reg-publish-bitrise/pkg/resolver"
)

const (
	artifactNameFlag = "artifact-name"
	successOnlyFlag  = "success-only"
	filterFlag       = "filter"
	pageSizeFlag     = "page-size"
	stripPrefixFlag  = "strip-prefix"
	patternFlag      = "pattern"
	pathPrefixFlag   = "path-prefix"
)

// lockTimeout bounds the wait for another publish or fetch on the same
// working directory.
const lockTimeout = 30 * time.Second

func addArtifactFlags(f *pflag.FlagSet, o *action.ArtifactOptions) {
	f.StringVar(&o.ArtifactName, artifactNameFlag, action.DefaultArtifactName, "title prefix of the artifact to look for")
	f.BoolVar(&o.SuccessOnly, successOnlyFlag, true, "only consider successful builds")
	f.Var(newFilterValue(resolver.FilterRequest, &o.Filter), filterFlag, `where the success filter is applied: "request" (API parameter) or "client"`)
	f.IntVar(&o.PageSize, pageSizeFlag, 0, "number of builds requested per page of the build list (0 uses the server default)")
}

// applyArtifactFileOptions fills the artifact options from the config file
// where the matching flag was not set on the command line.
func applyArtifactFileOptions(f *pflag.FlagSet, o *action.ArtifactOptions) error {
	if fileOptions == nil {
		return nil
	}
	if !f.Changed(artifactNameFlag) && fileOptions.ArtifactName != "" {
		o.ArtifactName = fileOptions.ArtifactName
	}
	if !f.Changed(successOnlyFlag) {
		o.SuccessOnly = fileOptions.SuccessOnlyOrDefault()
	}
	if !f.Changed(filterFlag) && fileOptions.Filter != "" {
		mode, err := resolver.ParseFilterMode(fileOptions.Filter)
		if err != nil {
			return err
		}
		o.Filter = mode
	}
	return nil
}

// fileOption returns the config file value for a string flag that was not
// set on the command line.
func fileOption(f *pflag.FlagSet, flag, current, fromFile string) string {
	if f.Changed(flag) || fromFile == "" {
		return current
	}
	return fromFile
}

type filterValue resolver.FilterMode

func newFilterValue(defaultValue resolver.FilterMode, p *resolver.FilterMode) *filterValue {
	*p = defaultValue
	return (*filterValue)(p)
}

func (v *filterValue) String() string {
	if v == nil {
		return ""
	}
	return string(*v)
}

func (v *filterValue) Set(s string) error {
	mode, err := resolver.ParseFilterMode(s)
	if err != nil {
		return err
	}
	*v = filterValue(mode)
	return nil
}

func (v *filterValue) Type() string {
	return "filter"
}

// lockWorkdir takes the advisory lock publish and fetch share on dir and
// returns the function releasing it. With create unset a missing dir is
// not created and nothing is locked.
func lockWorkdir(ctx context.Context, dir string, create bool) (func(), error) {
	if !create {
		if !fileutil.DirExists(dir) {
			return func() {}, nil
		}
	}
	if err := fileutil.EnsureDir(dir); err != nil {
		return nil, errs.IO(err, "creating %s", dir)
	}

	fileLock := flock.New(filepath.Join(dir, files.LockFileName))
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()
	locked, err := fileLock.TryLockContext(lockCtx, time.Second)
	if err != nil {
		return nil, errors.Wrapf(err, "locking %s", dir)
	}
	if !locked {
		return nil, errors.Errorf("%s is locked by another process", dir)
	}
	return func() { fileLock.Unlock() }, nil
}
