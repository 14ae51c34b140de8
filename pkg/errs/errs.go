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

/*
Package errs defines the error kinds surfaced by the transfer core.

Local disk failures are IO errors, bad archive bytes are CorruptArchive
errors, missing required settings are NotFound errors and failures reported
by the Bitrise API or a blob host are RemoteCall errors. A missing build or
artifact is not an error at all.
*/
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies an Error.
type Kind int

const (
	KindIO Kind = iota + 1
	KindCorruptArchive
	KindNotFound
	KindRemoteCall
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindCorruptArchive:
		return "corrupt archive"
	case KindNotFound:
		return "not found"
	case KindRemoteCall:
		return "remote call"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a classified error with a message giving the failing path,
// archive or request.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, err error, format string, arg ...interface{}) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, arg...), Err: err}
}

// IO wraps a local disk read or write failure.
func IO(err error, format string, arg ...interface{}) error {
	return newError(KindIO, err, format, arg...)
}

// CorruptArchive reports bytes that are not a valid archive.
func CorruptArchive(err error, format string, arg ...interface{}) error {
	return newError(KindCorruptArchive, err, format, arg...)
}

// NotFound reports a missing required field, such as the app slug.
func NotFound(format string, arg ...interface{}) error {
	return newError(KindNotFound, nil, format, arg...)
}

// RemoteCall wraps a failure from the listing service or a blob host.
func RemoteCall(err error, format string, arg ...interface{}) error {
	return newError(KindRemoteCall, err, format, arg...)
}

func is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}

// IsIO reports whether err, or any error it wraps, is an IO error.
func IsIO(err error) bool { return is(err, KindIO) }

// IsCorruptArchive reports whether err wraps a CorruptArchive error.
func IsCorruptArchive(err error) bool { return is(err, KindCorruptArchive) }

// IsNotFound reports whether err wraps a NotFound error.
func IsNotFound(err error) bool { return is(err, KindNotFound) }

// IsRemoteCall reports whether err wraps a RemoteCall error.
func IsRemoteCall(err error) bool { return is(err, KindRemoteCall) }
