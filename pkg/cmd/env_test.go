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
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnv(t *testing.T) {
	tests := []cmdTestCase{{
		name:     "completion for env",
		cmd:      "__complete env ''",
		contains: []string{"BITRISE_API_TOKEN", "REG_BITRISE_WORKDIR"},
	}, {
		name:     "env defaults",
		cmd:      "env",
		contains: []string{`BITRISE_API_URL="https://api.bitrise.io/v0.1"`, `REG_BITRISE_WORKDIR=".reg"`, `BITRISE_API_TOKEN=""`},
	}, {
		name:     "single variable",
		cmd:      "env REG_BITRISE_TIMEOUT",
		contains: []string{"10m0s"},
	}, {
		name:      "too many arguments",
		cmd:       "env A B",
		wantError: true,
	}}
	runTestCmd(t, tests)
}

func TestInvalidTimeoutEnvRejected(t *testing.T) {
	defer resetEnv()()

	os.Setenv("REG_BITRISE_TIMEOUT", "ten minutes")
	resetSettings()

	_, _, err := executeActionCommand("env")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REG_BITRISE_TIMEOUT")
}

func TestEnvHidesToken(t *testing.T) {
	defer resetEnv()()

	os.Setenv("BITRISE_API_TOKEN", "very-secret")
	resetSettings()

	_, out, err := executeActionCommand("env")
	require.NoError(t, err)
	assert.Contains(t, out, `BITRISE_API_TOKEN="[HIDDEN]"`)
	assert.NotContains(t, out, "very-secret")
}
