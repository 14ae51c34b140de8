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
	"io"

	"github.com/spf13/cobra"

	"github.com/novr/reg-publish-bitrise/pkg/action"
	"github.com/novr/reg-publish-bitrise/pkg/cmd/require"
	"github.com/novr/reg-publish-bitrise/pkg/files"
	"github.com/novr/reg-publish-bitrise/pkg/progress"
)

const publishDesc = `
This command packs the files of the working directory into one zip archive
named after --artifact-name and writes it to the Bitrise deploy directory,
where the deploy step attaches it to the build. With --upload-url the archive
is uploaded with a PUT below that URL instead.

KEY is the reg-suit snapshot key, usually the commit hash of the build.

The printed report URL points at the artifacts tab of the running build.
`

func newPublishCmd(cfg *action.Configuration, out io.Writer) *cobra.Command {
	client := action.NewPublish(cfg)

	cmd := &cobra.Command{
		Use:   "publish KEY",
		Short: "pack the working directory and publish it as a build artifact",
		Long:  publishDesc,
		Args:  require.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client.Settings = settings
			if fileOptions != nil {
				f := cmd.Flags()
				client.Pattern = fileOption(f, patternFlag, client.Pattern, fileOptions.Pattern)
				client.PathPrefix = fileOption(f, pathPrefixFlag, client.PathPrefix, fileOptions.PathPrefix)
				client.ArtifactName = fileOption(f, artifactNameFlag, client.ArtifactName, fileOptions.ArtifactName)
			}

			unlock, err := lockWorkdir(cmd.Context(), settings.WorkingDir, false)
			if err != nil {
				return err
			}
			defer unlock()

			cfg.Progress = progress.NewBar(cmd.ErrOrStderr(), "publish")
			res, err := client.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Published %d files to %s\n", len(res.Files), res.Location)
			if res.ReportURL != "" {
				fmt.Fprintf(out, "Report: %s\n", res.ReportURL)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&client.Pattern, patternFlag, files.DefaultPattern, "glob selecting the files to publish, relative to the working directory")
	f.StringVar(&client.PathPrefix, pathPrefixFlag, "", "directory to nest the files under inside the archive")
	f.StringVar(&client.ArtifactName, artifactNameFlag, action.DefaultArtifactName, "archive name without the .zip extension")
	f.StringVar(&client.UploadURL, "upload-url", "", "upload the archive below this http(s) URL instead of the deploy directory")

	return cmd
}
