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
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/novr/reg-publish-bitrise/internal/logging"
	"github.com/novr/reg-publish-bitrise/pkg/archive"
	"github.com/novr/reg-publish-bitrise/pkg/bitrise/bitrisetest"
	"github.com/novr/reg-publish-bitrise/pkg/cli"
	"github.com/novr/reg-publish-bitrise/pkg/files"
)

var verbose = flag.Bool("test.log", false, "enable test logging (debug by default)")

const testAppSlug = "app"

// recorder is a progress.Reporter that remembers what it was told.
type recorder struct {
	total, done, starts, stops int
}

func (r *recorder) Start(total int) { r.total = total; r.starts++ }
func (r *recorder) Increment(n int) { r.done += n }
func (r *recorder) Stop()           { r.stops++ }

func actionConfigFixture(t *testing.T, srv *bitrisetest.Server) (*Configuration, *cli.EnvSettings, *recorder) {
	t.Helper()

	settings := &cli.EnvSettings{
		BaseURL:    srv.URL(),
		AppSlug:    testAppSlug,
		WorkingDir: t.TempDir(),
		DeployDir:  t.TempDir(),
		Timeout:    10 * time.Second,
	}

	cfg := &Configuration{}
	require.NoError(t, cfg.Init(settings))
	logger := logging.NewLogger(func() bool { return *verbose })
	if !*verbose {
		logger = logging.Discard()
	}
	cfg.SetLogger(logger)

	rec := &recorder{}
	cfg.Progress = rec
	return cfg, settings, rec
}

func newServer(t *testing.T) *bitrisetest.Server {
	t.Helper()
	srv := bitrisetest.NewServer(testAppSlug)
	t.Cleanup(srv.Stop)
	return srv
}

// writeTree creates the files in tree below dir.
func writeTree(t *testing.T, dir string, tree map[string]string) {
	t.Helper()
	for name, content := range tree {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
}

// zipTree packs tree the way publish does.
func zipTree(t *testing.T, tree map[string]string) []byte {
	t.Helper()
	dir := t.TempDir()
	writeTree(t, dir, tree)
	list, err := files.List(dir, "")
	require.NoError(t, err)
	blob, err := archive.Pack(list)
	require.NoError(t, err)
	return blob
}

// readTree returns the contents of every file below dir.
func readTree(t *testing.T, dir string) map[string]string {
	t.Helper()
	list, err := files.List(dir, "")
	require.NoError(t, err)
	out := map[string]string{}
	for _, f := range list {
		b, err := os.ReadFile(f.AbsolutePath)
		require.NoError(t, err)
		out[f.RelativePath] = string(b)
	}
	return out
}
