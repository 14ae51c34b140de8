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

// Package version reports the build of reg-publish-bitrise and the user
// agent it sends to Bitrise and artifact hosts.
package version

import (
	"flag"
	"runtime"
	"runtime/debug"
	"strings"
)

var (
	// version is the current version of reg-publish-bitrise.
	// Update this whenever making a new release.
	// The version is of the format Major.Minor.Patch[-Prerelease][+BuildMetadata]
	version = "v0.3.0"

	// metadata is extra build time data
	metadata = ""
	// gitCommit is the git sha1, set with -ldflags. Builds from a checkout
	// without ldflags fall back to the VCS stamp of the Go toolchain.
	gitCommit = ""
	// gitTreeState is "clean" or "dirty", set alongside gitCommit.
	gitTreeState = ""
)

// BuildInfo describes the compile time information.
type BuildInfo struct {
	// Version is the current semver.
	Version string `json:"version,omitempty"`
	// GitCommit is the git sha1.
	GitCommit string `json:"git_commit,omitempty"`
	// GitTreeState is the state of the git tree.
	GitTreeState string `json:"git_tree_state,omitempty"`
	// GoVersion is the version of the Go compiler used.
	GoVersion string `json:"go_version,omitempty"`
	// Platform is GOOS/GOARCH of the binary.
	Platform string `json:"platform,omitempty"`
}

// GetVersion returns the semver string of the version
func GetVersion() string {
	if metadata == "" {
		return version
	}
	return version + "+" + metadata
}

// GetUserAgent returns the User-Agent sent with every request, for example
// "reg-publish-bitrise/0.3.0 (linux/amd64)".
func GetUserAgent() string {
	return "reg-publish-bitrise/" + strings.TrimPrefix(GetVersion(), "v") + " (" + platform() + ")"
}

// Get returns build info
func Get() BuildInfo {
	v := BuildInfo{
		Version:      GetVersion(),
		GitCommit:    gitCommit,
		GitTreeState: gitTreeState,
		GoVersion:    runtime.Version(),
		Platform:     platform(),
	}
	if v.GitCommit == "" {
		v.GitCommit, v.GitTreeState = vcsStamp()
	}

	// strip out GoVersion during a test run for consistent test output
	if flag.Lookup("test.v") != nil {
		v.GoVersion = ""
	}
	return v
}

func platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

// vcsStamp reads the revision the toolchain embeds when building inside a
// git checkout.
func vcsStamp() (commit, treeState string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			commit = s.Value
		case "vcs.modified":
			treeState = "clean"
			if s.Value == "true" {
				treeState = "dirty"
			}
		}
	}
	return commit, treeState
}
