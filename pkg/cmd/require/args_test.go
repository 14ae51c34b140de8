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

package require

import (
	"io"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		validateFunc cobra.PositionalArgs
		wantError    string
	}{
		{name: "no args", validateFunc: NoArgs},
		{name: "unexpected arg", args: []string{"abc"}, validateFunc: NoArgs, wantError: `"fetch" accepts no arguments`},
		{name: "exact", args: []string{"abc"}, validateFunc: ExactArgs(1)},
		{name: "missing key", validateFunc: ExactArgs(1), wantError: `"fetch" requires 1 argument`},
		{name: "missing two", validateFunc: ExactArgs(2), wantError: `"fetch" requires 2 arguments`},
		{name: "at most", args: []string{"abc"}, validateFunc: MaximumNArgs(1)},
		{name: "too many", args: []string{"abc", "def"}, validateFunc: MaximumNArgs(1), wantError: `"fetch" accepts at most 1 argument`},
		{name: "too few", validateFunc: MinimumNArgs(1), wantError: `"fetch" requires at least 1 argument`},
		{name: "at least", args: []string{"abc", "def"}, validateFunc: MinimumNArgs(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{
				Use:  "fetch",
				Run:  func(*cobra.Command, []string) {},
				Args: tt.validateFunc,
			}
			cmd.SetArgs(tt.args)
			cmd.SetOut(io.Discard)
			cmd.SetErr(io.Discard)

			err := cmd.Execute()
			if tt.wantError == "" {
				assert.NoError(t, err)
				return
			}
			if !assert.Error(t, err) {
				return
			}
			assert.Contains(t, err.Error(), tt.wantError)
			assert.Contains(t, err.Error(), "Usage:")
		})
	}
}
