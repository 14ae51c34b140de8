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
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	shellwords "github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novr/reg-publish-bitrise/pkg/action"
	"github.com/novr/reg-publish-bitrise/pkg/archive"
	"github.com/novr/reg-publish-bitrise/pkg/cli"
	"github.com/novr/reg-publish-bitrise/pkg/files"
)

func runTestCmd(t *testing.T, tests []cmdTestCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer resetEnv()()

			t.Logf("running cmd: %s", tt.cmd)
			_, out, err := executeActionCommandC(tt.cmd)
			if tt.wantError && err == nil {
				t.Errorf("expected error, got success with the following output:\n%s", out)
			}
			if !tt.wantError && err != nil {
				t.Errorf("expected no error, got: '%v'", err)
			}
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func executeActionCommandC(cmd string) (*cobra.Command, string, error) {
	args, err := shellwords.Parse(cmd)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)

	actionConfig := &action.Configuration{}

	root, err := newRootCmdWithConfig(actionConfig, buf, args)
	if err != nil {
		return nil, "", err
	}

	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	c, err := root.ExecuteC()

	result := buf.String()

	return c, result, err
}

// cmdTestCase describes a test case that runs one command line.
type cmdTestCase struct {
	name      string
	cmd       string
	wantError bool
	// contains are substrings expected in the combined output.
	contains    []string
	notContains []string
}

func executeActionCommand(cmd string) (*cobra.Command, string, error) {
	return executeActionCommandC(cmd)
}

// resetEnv clears the variables the settings read, and restores the
// environment and the settings when the returned function is called.
func resetEnv() func() {
	origEnv := os.Environ()
	for e := range cli.New().EnvVars() {
		os.Unsetenv(e)
	}
	settings = cli.New()
	return func() {
		os.Clearenv()
		for _, pair := range origEnv {
			kv := strings.SplitN(pair, "=", 2)
			os.Setenv(kv[0], kv[1])
		}
		settings = cli.New()
		fileOptions = nil
	}
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

// zipTree packs tree into an archive.
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

// resetSettings rereads the settings from the current environment.
func resetSettings() {
	settings = cli.New()
}
