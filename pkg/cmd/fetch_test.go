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
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novr/reg-publish-bitrise/pkg/bitrise"
	"github.com/novr/reg-publish-bitrise/pkg/bitrise/bitrisetest"
)

func newTestServer(t *testing.T) *bitrisetest.Server {
	t.Helper()
	srv := bitrisetest.NewServer("app")
	srv.Token = "secret-token"
	t.Cleanup(srv.Stop)

	srv.AddBuild(bitrise.Build{Slug: "b0", CommitHash: "abc123", Status: bitrise.StatusFailed},
		bitrisetest.Artifact{Title: "artifact.zip", Data: zipTree(t, map[string]string{"failed.txt": "f"})})
	srv.AddBuild(bitrise.Build{Slug: "b1", CommitHash: "abc123", Status: bitrise.StatusSuccess},
		bitrisetest.Artifact{Title: "build.log", Data: []byte("log")},
		bitrisetest.Artifact{Title: "artifact.zip", Data: zipTree(t, map[string]string{
			"snapshots/actual/a.png": "png",
			"snapshots/b/c.txt":      "y",
		})})
	return srv
}

func remoteFlags(srv *bitrisetest.Server, workdir string) string {
	return fmt.Sprintf("--api-url %s --api-token %s --app-slug %s --workdir %s", srv.URL(), srv.Token, srv.AppSlug, workdir)
}

func TestFetchCmd(t *testing.T) {
	srv := newTestServer(t)
	work := t.TempDir()
	anyDir := t.TempDir()
	clientDir := t.TempDir()
	strippedDir := t.TempDir()
	never := filepath.Join(t.TempDir(), "never")

	tests := []cmdTestCase{
		{
			name:     "fetch from the successful build",
			cmd:      "fetch abc123/expected " + remoteFlags(srv, work),
			contains: []string{"Restored 2 files from build b1 (artifact.zip)", "  snapshots/actual/a.png", "  snapshots/b/c.txt", "fetch 1/1"},
		},
		{
			name:     "fetch including failed builds",
			cmd:      "fetch abc --success-only=false --destination " + anyDir + " " + remoteFlags(srv, work),
			contains: []string{"Restored 1 files from build b0", "  failed.txt"},
		},
		{
			name:     "fetch with client side filter",
			cmd:      "fetch abc --filter client -d " + clientDir + " " + remoteFlags(srv, work),
			contains: []string{"from build b1"},
		},
		{
			name:     "fetch with strip prefix",
			cmd:      "fetch abc --strip-prefix snapshots -d " + strippedDir + " " + remoteFlags(srv, work),
			contains: []string{"  actual/a.png", "  b/c.txt"},
		},
		{
			name:     "no build for the commit",
			cmd:      "fetch fff " + remoteFlags(srv, work),
			contains: []string{"Nothing to restore for fff"},
		},
		{
			name:     "no artifact with the name",
			cmd:      "fetch abc --artifact-name report " + remoteFlags(srv, work),
			contains: []string{"Nothing to restore for abc"},
		},
		{
			name:     "no emit",
			cmd:      "fetch abc --no-emit --workdir " + never,
			contains: []string{"Nothing to restore for abc"},
		},
		{
			name:      "invalid filter",
			cmd:       "fetch abc --filter server " + remoteFlags(srv, work),
			wantError: true,
			contains:  []string{"server"},
		},
		{
			name:      "missing app slug",
			cmd:       fmt.Sprintf("fetch abc --api-url %s --api-token t --workdir %s", srv.URL(), work),
			wantError: true,
			contains:  []string{"BITRISE_APP_SLUG"},
		},
		{
			name:      "wrong token",
			cmd:       fmt.Sprintf("fetch abc --api-url %s --api-token nope --app-slug app --workdir %s", srv.URL(), work),
			wantError: true,
			contains:  []string{"401"},
		},
	}
	runTestCmd(t, tests)

	restored := map[string]string{"snapshots/actual/a.png": "png", "snapshots/b/c.txt": "y"}
	assert.Equal(t, restored, readTree(t, work))
	assert.Equal(t, restored, readTree(t, clientDir))
	assert.Equal(t, map[string]string{"failed.txt": "f"}, readTree(t, anyDir))
	assert.Equal(t, map[string]string{"actual/a.png": "png", "b/c.txt": "y"}, readTree(t, strippedDir))
	assert.NoDirExists(t, never)
}

func TestFetchCmdConfigFile(t *testing.T) {
	defer resetEnv()()

	srv := newTestServer(t)
	work := t.TempDir()
	config := filepath.Join(t.TempDir(), "regconfig.json")
	require.NoError(t, os.WriteFile(config, []byte(fmt.Sprintf(`{
  "pathPrefix": "snapshots",
  "basePath": %q,
  "apiKey": %q,
  "appSlug": "app"
}`, srv.URL(), srv.Token)), 0644))

	_, out, err := executeActionCommand(fmt.Sprintf("fetch abc --workdir %s --config %s", work, config))
	require.NoError(t, err, out)
	assert.Equal(t, map[string]string{"actual/a.png": "png", "b/c.txt": "y"}, readTree(t, work))
}

func TestFetchCmdEnv(t *testing.T) {
	defer resetEnv()()

	srv := newTestServer(t)
	work := t.TempDir()
	os.Setenv("BITRISE_API_URL", srv.URL())
	os.Setenv("BITRISE_API_TOKEN", srv.Token)
	os.Setenv("BITRISE_APP_SLUG", srv.AppSlug)
	os.Setenv("REG_BITRISE_WORKDIR", work)
	resetSettings()

	_, out, err := executeActionCommand("fetch abc123")
	require.NoError(t, err, out)
	assert.Contains(t, out, "from build b1")
	assert.FileExists(t, filepath.Join(work, "snapshots", "actual", "a.png"))
}
