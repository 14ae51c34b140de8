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
	"io"
	"os"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// DebugEnabledFunc is a function type that determines if debug logging is enabled
// We use a function because we want to check the setting at log time, not when the logger is created
type DebugEnabledFunc func() bool

// DebugCheckFormatter checks settings.Debug at log time. Entries it drops
// are formatted to nothing.
type DebugCheckFormatter struct {
	formatter    logrus.Formatter
	debugEnabled DebugEnabledFunc
}

// Format implements logrus.Formatter.Format
func (f *DebugCheckFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	if entry.Level >= logrus.DebugLevel {
		if f.debugEnabled == nil || !f.debugEnabled() {
			return nil, nil
		}
	}
	return f.formatter.Format(entry)
}

// NewLogger creates a new logger with dynamic debug checking
func NewLogger(debugEnabled DebugEnabledFunc) *logrus.Logger {
	logger := logrus.New()
	logger.Out = os.Stderr
	// Always use DebugLevel here to allow all messages through
	// Our formatter will do the filtering
	logger.Level = logrus.DebugLevel
	logger.Formatter = &DebugCheckFormatter{
		formatter: &logrus.TextFormatter{
			DisableTimestamp: true,
			DisableColors:    true,
		},
		debugEnabled: debugEnabled,
	}
	return logger
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.Out = io.Discard
	logger.Level = logrus.PanicLevel
	return logger
}

// LoggerSetterGetter is an interface that can set and get a logger
type LoggerSetterGetter interface {
	// SetLogger sets a new logger
	SetLogger(logger logrus.FieldLogger)
	// Logger returns the logger, never nil
	Logger() logrus.FieldLogger
}

type LogHolder struct {
	// logger is an atomic.Pointer to store the logger
	// We use atomic.Pointer for thread safety
	logger atomic.Pointer[logrus.FieldLogger]
}

// Logger returns the logger for the LogHolder. If unset, returns a discarding logger.
func (l *LogHolder) Logger() logrus.FieldLogger {
	if lg := l.logger.Load(); lg != nil {
		return *lg
	}
	return Discard()
}

// SetLogger sets the logger for the LogHolder. A nil logger discards logs.
func (l *LogHolder) SetLogger(logger logrus.FieldLogger) {
	if logger == nil {
		logger = Discard()
	}
	l.logger.Store(&logger)
}

// Ensure LogHolder implements LoggerSetterGetter
var _ LoggerSetterGetter = &LogHolder{}
