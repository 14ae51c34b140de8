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
	"io"

	"github.com/spf13/cobra"

	"github.com/novr/reg-publish-bitrise/internal/logging"
	"github.com/novr/reg-publish-bitrise/pkg/action"
	"github.com/novr/reg-publish-bitrise/pkg/cli"
)

var globalUsage = `Publish reg-suit working directories as Bitrise build artifacts.

The working directory is packed into a single zip archive that the Bitrise
deploy step attaches to the build. A later build restores it by finding the
build whose commit hash starts with the key and downloading its archive.

Common actions:

- reg-publish-bitrise publish KEY:  pack the working directory into the deploy directory
- reg-publish-bitrise fetch KEY:    restore the working directory from an earlier build
- reg-publish-bitrise resolve KEY:  show which artifact fetch would restore

Environment variables:

| Name                 | Description                                                          |
|----------------------|----------------------------------------------------------------------|
| $BITRISE_API_TOKEN   | set the personal access token used for the Bitrise API.              |
| $BITRISE_API_URL     | set the Bitrise API endpoint (default "https://api.bitrise.io/v0.1"). |
| $BITRISE_APP_SLUG    | set the app whose builds are searched.                               |
| $BITRISE_DEPLOY_DIR  | set the directory published archives are written to.                 |
| $BITRISE_BUILD_URL   | set the URL of the running build, used for the report link.          |
| $REG_BITRISE_WORKDIR | set the working directory (default ".reg").                          |
| $REG_BITRISE_CONFIG  | set the path to a YAML, JSON or TOML options file.                   |
| $REG_BITRISE_DEBUG   | indicate whether or not to print debug output.                       |
| $REG_BITRISE_TIMEOUT | set the time to wait for each API call and transfer (default 10m).   |

Variables from a .env file in the current directory are read at start up.
Variables already set in the environment win over the file.
`

var settings = cli.New()

// fileOptions are the options read from --config, nil without a config file.
var fileOptions *cli.Options

// NewRootCmd loads .env from the current directory, reads the settings from
// the environment and returns the root command.
func NewRootCmd(out io.Writer, args []string) (*cobra.Command, error) {
	if err := cli.LoadDotEnv(); err != nil {
		return nil, err
	}
	settings = cli.New()

	actionConfig := new(action.Configuration)
	return newRootCmdWithConfig(actionConfig, out, args)
}

func newRootCmdWithConfig(actionConfig *action.Configuration, out io.Writer, _ []string) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:          "reg-publish-bitrise",
		Short:        "Publish reg-suit snapshots as Bitrise build artifacts.",
		Long:         globalUsage,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initActionConfig(cmd, actionConfig)
		},
	}

	flags := cmd.PersistentFlags()
	settings.AddFlags(flags)

	cmd.AddCommand(
		newPublishCmd(actionConfig, out),
		newFetchCmd(actionConfig, out),
		newResolveCmd(actionConfig, out),
		newPackCmd(out),
		newUnpackCmd(out),
		newEnvCmd(out),
		newVersionCmd(out),
	)

	return cmd, nil
}

// initActionConfig reads the config file, sets up logging and builds the
// Bitrise client once flags are parsed.
func initActionConfig(cmd *cobra.Command, actionConfig *action.Configuration) error {
	fileOptions = nil
	if settings.ConfigFile != "" {
		opts, err := cli.LoadConfigFile(settings.ConfigFile)
		if err != nil {
			return err
		}
		opts.Apply(settings, cmd.Flags())
		fileOptions = opts
	}

	logger := logging.NewLogger(func() bool { return settings.Debug })
	logger.Out = cmd.ErrOrStderr()
	actionConfig.SetLogger(logger)

	if err := settings.Validate(); err != nil {
		return err
	}
	if actionConfig.Service == nil {
		return actionConfig.Init(settings)
	}
	return nil
}
