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

package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetUserAgent(t *testing.T) {
	ua := GetUserAgent()
	assert.True(t, strings.HasPrefix(ua, "reg-publish-bitrise/"+strings.TrimPrefix(version, "v")+" "), ua)
	assert.True(t, strings.HasSuffix(ua, "("+runtime.GOOS+"/"+runtime.GOARCH+")"), ua)
}

func TestGetVersionMetadata(t *testing.T) {
	defer func(m string) { metadata = m }(metadata)

	metadata = ""
	assert.Equal(t, version, GetVersion())

	metadata = "ci.42"
	assert.Equal(t, version+"+ci.42", GetVersion())
	assert.Contains(t, GetUserAgent(), "/0.3.0+ci.42 ")
}

func TestGet(t *testing.T) {
	info := Get()
	assert.Equal(t, GetVersion(), info.Version)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.Empty(t, info.GoVersion, "GoVersion is stripped during tests")
}

func TestGetLinkerValues(t *testing.T) {
	defer func(c, s string) { gitCommit, gitTreeState = c, s }(gitCommit, gitTreeState)

	gitCommit, gitTreeState = "ff52399e51bb880526e9cd0ed8386f6433b74da1", "clean"
	info := Get()
	assert.Equal(t, gitCommit, info.GitCommit)
	assert.Equal(t, "clean", info.GitTreeState)
}
