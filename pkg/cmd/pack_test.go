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
)

func TestPackUnpackCmd(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"actual/a.png": "png",
		"actual/b.txt": "txt",
	})
	out := t.TempDir()
	zip := filepath.Join(out, "snap.zip")
	dest := filepath.Join(out, "restored")

	tests := []cmdTestCase{
		{
			name:     "pack with prefix",
			cmd:      fmt.Sprintf("pack %s %s --pattern '**/*.png' --path-prefix report", src, zip),
			contains: []string{"Packed 1 files into " + zip},
		},
		{
			name:     "unpack stripping the prefix",
			cmd:      fmt.Sprintf("unpack %s %s --strip-prefix report", zip, dest),
			contains: []string{"Unpacked 1 files into " + dest},
		},
		{
			name:      "unpack missing archive",
			cmd:       fmt.Sprintf("unpack %s %s", filepath.Join(out, "missing.zip"), dest),
			wantError: true,
		},
		{
			name:      "pack needs two arguments",
			cmd:       "pack " + src,
			wantError: true,
			contains:  []string{"requires 2 arguments"},
		},
	}
	runTestCmd(t, tests)

	assert.Equal(t, map[string]string{"actual/a.png": "png"}, readTree(t, dest))
}

func TestPackIntoSourceDir(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"actual/a.png": "png",
		"actual/b.txt": "txt",
	})
	zip := filepath.Join(src, "snap.zip")
	dest := filepath.Join(t.TempDir(), "restored")

	pack := fmt.Sprintf("pack %s %s", src, zip)
	runTestCmd(t, []cmdTestCase{{
		name:     "first pack",
		cmd:      pack,
		contains: []string{"Packed 2 files into " + zip},
	}})
	first, err := os.ReadFile(zip)
	require.NoError(t, err)

	runTestCmd(t, []cmdTestCase{
		{
			name:     "repack skips the previous archive",
			cmd:      pack,
			contains: []string{"Packed 2 files into " + zip},
		},
		{
			name:     "unpack",
			cmd:      fmt.Sprintf("unpack %s %s", zip, dest),
			contains: []string{"Unpacked 2 files"},
		},
	})
	second, err := os.ReadFile(zip)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, map[string]string{"actual/a.png": "png", "actual/b.txt": "txt"}, readTree(t, dest))
}
