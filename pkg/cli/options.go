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
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/xeipuuv/gojsonschema"
	"sigs.k8s.io/yaml"
)

//go:embed options.schema.json
var optionsSchema []byte

// Options are the publisher options kept in a config file. The keys match
// the reg-suit plugin configuration.
type Options struct {
	// Pattern selects the files to publish, relative to the working directory.
	Pattern string `json:"pattern,omitempty" toml:"pattern"`
	// PathPrefix nests the published files under this directory inside the
	// archive, and is stripped again on fetch.
	PathPrefix string `json:"pathPrefix,omitempty" toml:"pathPrefix"`
	// BasePath overrides the Bitrise API endpoint.
	BasePath string `json:"basePath,omitempty" toml:"basePath" validate:"omitempty,url"`
	// APIKey is the Bitrise personal access token.
	APIKey string `json:"apiKey,omitempty" toml:"apiKey"`
	// AppSlug identifies the Bitrise app.
	AppSlug string `json:"appSlug,omitempty" toml:"appSlug"`
	// SuccessOnly restricts fetches to successful builds. Unset means true.
	SuccessOnly *bool `json:"successOnly,omitempty" toml:"successOnly"`
	// ArtifactName is the archive base name and the title prefix searched for.
	ArtifactName string `json:"artifactName,omitempty" toml:"artifactName"`
	// Filter is "request" or "client".
	Filter string `json:"filter,omitempty" toml:"filter"`
	// StripPrefix is removed from archive entry paths on fetch.
	StripPrefix string `json:"stripPrefix,omitempty" toml:"stripPrefix"`
}

// LoadConfigFile reads options from a YAML, JSON or TOML file. The format is
// chosen by extension, with YAML (a superset of JSON) as the fallback.
func LoadConfigFile(filename string) (*Options, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config file %s", filename)
	}
	opts, err := parseOptions(data, strings.ToLower(filepath.Ext(filename)) == ".toml")
	if err != nil {
		return nil, errors.Wrapf(err, "config file %s", filename)
	}
	return opts, nil
}

func parseOptions(data []byte, isTOML bool) (*Options, error) {
	var doc []byte
	if isTOML {
		var m map[string]interface{}
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		b, err := json.Marshal(m)
		if err != nil {
			return nil, err
		}
		doc = b
	} else {
		b, err := yaml.YAMLToJSON(data)
		if err != nil {
			return nil, err
		}
		doc = b
	}
	if bytes.Equal(bytes.TrimSpace(doc), []byte("null")) {
		doc = []byte("{}")
	}

	if err := validateAgainstSchema(doc); err != nil {
		return nil, err
	}

	opts := &Options{}
	if err := json.Unmarshal(doc, opts); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// validateAgainstSchema checks that doc does not violate the structure laid
// out in the embedded options schema.
func validateAgainstSchema(doc []byte) error {
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(optionsSchema), gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return err
	}
	if !result.Valid() {
		var sb strings.Builder
		for _, desc := range result.Errors() {
			sb.WriteString(fmt.Sprintf("- %s\n", desc))
		}
		return errors.New(sb.String())
	}
	return nil
}

// Apply copies the connection options into s. A value given by a flag that
// was set on the command line or by its environment variable wins over the
// file.
func (o *Options) Apply(s *EnvSettings, fs *pflag.FlagSet) {
	set := func(field *string, value, flag, env string) {
		if value == "" {
			return
		}
		if fs != nil && fs.Changed(flag) {
			return
		}
		if _, ok := os.LookupEnv(env); ok {
			return
		}
		*field = value
	}
	set(&s.BaseURL, o.BasePath, "api-url", "BITRISE_API_URL")
	set(&s.APIToken, o.APIKey, "api-token", "BITRISE_API_TOKEN")
	set(&s.AppSlug, o.AppSlug, "app-slug", "BITRISE_APP_SLUG")
}

// SuccessOnlyOrDefault returns SuccessOnly, which defaults to true.
func (o *Options) SuccessOnlyOrDefault() bool {
	if o == nil || o.SuccessOnly == nil {
		return true
	}
	return *o.SuccessOnly
}
