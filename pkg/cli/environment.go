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
Package cli describes the operating environment for the reg-publish-bitrise CLI.

The environment holds the Bitrise connection settings and the locations the
commands read from and write to. Values come from flags, environment
variables, a .env file and an optional config file, in that order of
precedence.
*/
package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/novr/reg-publish-bitrise/pkg/bitrise"
)

const (
	// DefaultWorkingDir is the reg-suit working directory.
	DefaultWorkingDir = ".reg"
	// DefaultTimeout bounds API calls and transfers.
	DefaultTimeout = 10 * time.Minute
)

// EnvSettings describes all of the environment settings.
type EnvSettings struct {
	// APIToken is the Bitrise personal access token.
	APIToken string
	// BaseURL is the Bitrise API endpoint.
	BaseURL string `validate:"required,url"`
	// AppSlug identifies the Bitrise app whose builds are searched.
	AppSlug string
	// DeployDir is where published archives are written for Bitrise to collect.
	DeployDir string
	// BuildURL is the URL of the running build, used for the report link.
	BuildURL string `validate:"omitempty,url"`
	// WorkingDir is the directory that is published and restored.
	WorkingDir string `validate:"required"`
	// ConfigFile is the path to an optional options file.
	ConfigFile string
	// Debug indicates whether or not the CLI is running in Debug mode.
	Debug bool
	// Timeout bounds each API call and transfer.
	Timeout time.Duration `validate:"gte=0"`

	// envErr records an environment variable that could not be parsed.
	envErr error
}

func New() *EnvSettings {
	env := &EnvSettings{
		APIToken:   os.Getenv("BITRISE_API_TOKEN"),
		BaseURL:    envOr("BITRISE_API_URL", bitrise.DefaultBaseURL),
		AppSlug:    os.Getenv("BITRISE_APP_SLUG"),
		DeployDir:  os.Getenv("BITRISE_DEPLOY_DIR"),
		BuildURL:   os.Getenv("BITRISE_BUILD_URL"),
		WorkingDir: envOr("REG_BITRISE_WORKDIR", DefaultWorkingDir),
		ConfigFile: os.Getenv("REG_BITRISE_CONFIG"),
	}
	env.Timeout, env.envErr = envDurationOr("REG_BITRISE_TIMEOUT", DefaultTimeout)
	env.Debug, _ = strconv.ParseBool(os.Getenv("REG_BITRISE_DEBUG"))
	return env
}

// LoadDotEnv loads KEY=value pairs from the given files (".env" when none
// are given) into the process environment. Variables that are already set
// win, and missing files are ignored.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		if _, err := os.Stat(name); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return errors.Wrapf(err, "loading %s", name)
		}
	}
	return nil
}

// AddFlags binds flags to the given flagset.
func (s *EnvSettings) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&s.APIToken, "api-token", s.APIToken, "Bitrise personal access token")
	fs.StringVar(&s.BaseURL, "api-url", s.BaseURL, "Bitrise API endpoint")
	fs.StringVar(&s.AppSlug, "app-slug", s.AppSlug, "slug of the Bitrise app to search for builds")
	fs.StringVar(&s.DeployDir, "deploy-dir", s.DeployDir, "directory Bitrise collects artifacts from (defaults to the working directory)")
	fs.StringVar(&s.BuildURL, "build-url", s.BuildURL, "URL of the running build, used for the report link")
	fs.StringVar(&s.WorkingDir, "workdir", s.WorkingDir, "directory to publish from and restore into")
	fs.StringVar(&s.ConfigFile, "config", s.ConfigFile, "path to a YAML, JSON or TOML options file")
	fs.BoolVar(&s.Debug, "debug", s.Debug, "enable verbose output")
	fs.DurationVar(&s.Timeout, "timeout", s.Timeout, "time to wait for each API call and transfer")
}

// DeployDirOrDefault returns the deploy directory, falling back to the
// working directory like a local run outside of Bitrise.
func (s *EnvSettings) DeployDirOrDefault() string {
	if s.DeployDir != "" {
		return s.DeployDir
	}
	return s.WorkingDir
}

func envOr(name, def string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return def
}

// envDurationOr returns def, along with an error naming the variable, when
// the value does not parse.
func envDurationOr(name string, def time.Duration) (time.Duration, error) {
	envVal, ok := os.LookupEnv(name)
	if !ok || envVal == "" {
		return def, nil
	}
	d, err := time.ParseDuration(envVal)
	if err != nil {
		return def, errors.Wrapf(err, "invalid $%s", name)
	}
	return d, nil
}

// EnvVars returns the environment variables the settings are read from. The
// API token is never echoed.
func (s *EnvSettings) EnvVars() map[string]string {
	token := ""
	if s.APIToken != "" {
		token = "[HIDDEN]"
	}
	return map[string]string{
		"BITRISE_API_TOKEN":   token,
		"BITRISE_API_URL":     s.BaseURL,
		"BITRISE_APP_SLUG":    s.AppSlug,
		"BITRISE_DEPLOY_DIR":  s.DeployDir,
		"BITRISE_BUILD_URL":   s.BuildURL,
		"REG_BITRISE_WORKDIR": s.WorkingDir,
		"REG_BITRISE_CONFIG":  s.ConfigFile,
		"REG_BITRISE_DEBUG":   fmt.Sprint(s.Debug),
		"REG_BITRISE_TIMEOUT": s.Timeout.String(),
	}
}
