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

package cli

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"

	"github.com/novr/reg-publish-bitrise/pkg/resolver"
)

var validate = validator.New()

// MissingConfigError reports a setting that a command needs but was not given.
type MissingConfigError struct {
	Field string
	Env   string
	Flag  string
}

func (e MissingConfigError) Error() string {
	return fmt.Sprintf("missing config error: %s is not set (use $%s or --%s)", e.Field, e.Env, e.Flag)
}

// Validate checks the settings and returns every problem found, or nil.
func (s *EnvSettings) Validate() error {
	var result *multierror.Error
	if s.envErr != nil {
		result = multierror.Append(result, s.envErr)
	}
	result = multierror.Append(result, structErrors(s)...)
	return result.ErrorOrNil()
}

// RequireRemote checks the settings a command talking to the Bitrise API
// needs on top of Validate.
func (s *EnvSettings) RequireRemote() error {
	var result *multierror.Error
	if err := s.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if s.APIToken == "" {
		result = multierror.Append(result, MissingConfigError{Field: "API token", Env: "BITRISE_API_TOKEN", Flag: "api-token"})
	}
	if s.AppSlug == "" {
		result = multierror.Append(result, MissingConfigError{Field: "app slug", Env: "BITRISE_APP_SLUG", Flag: "app-slug"})
	}
	return result.ErrorOrNil()
}

// Validate checks the options read from a config file.
func (o *Options) Validate() error {
	var result *multierror.Error
	result = multierror.Append(result, structErrors(o)...)
	if o.Filter != "" {
		if _, err := resolver.ParseFilterMode(o.Filter); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// structErrors runs the validate struct tags and flattens the result into
// one error per field.
func structErrors(v interface{}) []error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []error{err}
	}
	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, fmt.Errorf("invalid %s: failed %q check", fe.Field(), fe.Tag()))
	}
	return errs
}
