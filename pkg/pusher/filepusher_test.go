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

package pusher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novr/reg-publish-bitrise/pkg/errs"
)

func TestFilePusher(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "deploy")

	p, err := NewFilePusher()
	require.NoError(t, err)

	loc, err := p.Push("snapshots.zip", []byte("zip"), dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "snapshots.zip"), loc)

	b, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "zip", string(b))

	// A second push replaces the first.
	_, err = p.Push("snapshots.zip", []byte("zip2"), "file://"+filepath.ToSlash(dir))
	require.NoError(t, err)
	b, err = os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "zip2", string(b))
}

func TestFilePusherErrors(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	p, err := NewFilePusher()
	require.NoError(t, err)

	_, err = p.Push("a.zip", []byte("zip"), blocker)
	require.Error(t, err)
	assert.True(t, errs.IsIO(err))

	_, err = p.Push("../a.zip", []byte("zip"), dir)
	assert.Error(t, err)

	_, err = p.Push("", []byte("zip"), dir)
	assert.Error(t, err)
}
