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

package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	debug := false
	logger := NewLogger(func() bool { return debug })
	buf := &bytes.Buffer{}
	logger.Out = buf

	logger.WithField("build", "b1").Info("resolved build")
	assert.Contains(t, buf.String(), "resolved build")
	assert.Contains(t, buf.String(), "build=b1")
	assert.NotContains(t, buf.String(), "time=")

	buf.Reset()
	logger.Debug("listing page")
	assert.Empty(t, buf.String())

	// The setting is read at log time.
	debug = true
	logger.Debug("listing page")
	assert.Contains(t, buf.String(), "level=debug")
	assert.Contains(t, buf.String(), "listing page")
}

func TestNewLoggerNilDebugFunc(t *testing.T) {
	logger := NewLogger(nil)
	buf := &bytes.Buffer{}
	logger.Out = buf

	logger.Debug("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogHolder_Logger(t *testing.T) {
	t.Run("should return the logger that was set", func(t *testing.T) {
		holder := &LogHolder{}
		buf := &bytes.Buffer{}
		logger := logrus.New()
		logger.Out = buf

		holder.SetLogger(logger)
		holder.Logger().Info("test message")
		assert.Contains(t, buf.String(), "test message")
	})

	t.Run("should return a discarding logger when none is set", func(t *testing.T) {
		holder := &LogHolder{}
		logger := holder.Logger()

		assert.NotNil(t, logger)
		logger.Info("dropped")
	})
}

func TestLogHolder_SetLogger(t *testing.T) {
	t.Run("sets discard logger with nil logger", func(t *testing.T) {
		holder := &LogHolder{}

		holder.SetLogger(nil)
		assert.NotNil(t, holder.Logger())
	})

	t.Run("can replace existing logger", func(t *testing.T) {
		holder := &LogHolder{}

		first := logrus.New()
		holder.SetLogger(first)
		assert.Same(t, first, holder.Logger())

		second := logrus.New()
		holder.SetLogger(second)
		assert.Same(t, second, holder.Logger())
	})
}
