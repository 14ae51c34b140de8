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
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/novr/reg-publish-bitrise/pkg/action"
	"github.com/novr/reg-publish-bitrise/pkg/cmd/require"
	"github.com/novr/reg-publish-bitrise/pkg/progress"
)

const fetchDesc = `
This command restores the working directory from the archive an earlier
build published.

Builds of the app are searched, newest first, for one whose commit hash starts
with the part of KEY before the first "/". The first artifact of that build
whose title starts with --artifact-name is downloaded and unpacked.

Finding nothing is not an error: the command reports that there is nothing to
restore and exits successfully.
`

func newFetchCmd(cfg *action.Configuration, out io.Writer) *cobra.Command {
	client := action.NewFetch(cfg)

	cmd := &cobra.Command{
		Use:   "fetch KEY",
		Short: "restore the working directory from an earlier build's artifact",
		Long:  fetchDesc,
		Args:  require.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client.Settings = settings
			if !client.NoEmit {
				if err := settings.RequireRemote(); err != nil {
					return err
				}
			}
			f := cmd.Flags()
			if err := applyArtifactFileOptions(f, &client.ArtifactOptions); err != nil {
				return err
			}
			if fileOptions != nil {
				strip := fileOptions.StripPrefix
				if strip == "" {
					strip = fileOptions.PathPrefix
				}
				client.StripPrefix = fileOption(f, stripPrefixFlag, client.StripPrefix, strip)
			}

			dest := client.Destination
			if dest == "" {
				dest = settings.WorkingDir
			}
			unlock, err := lockWorkdir(cmd.Context(), dest, !client.NoEmit)
			if err != nil {
				return err
			}
			defer unlock()

			cfg.Progress = progress.NewBar(cmd.ErrOrStderr(), "fetch")
			res, err := client.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if res.Artifact == nil {
				fmt.Fprintf(out, "Nothing to restore for %s\n", args[0])
				return nil
			}
			fmt.Fprintf(out, "Restored %d files from build %s (%s)\n", len(res.Files), res.Artifact.BuildSlug, res.Artifact.Title)
			for _, p := range res.Files {
				if rel, err := filepath.Rel(dest, p); err == nil {
					p = rel
				}
				fmt.Fprintf(out, "  %s\n", filepath.ToSlash(p))
			}
			return nil
		},
	}

	f := cmd.Flags()
	addArtifactFlags(f, &client.ArtifactOptions)
	f.StringVar(&client.StripPrefix, stripPrefixFlag, "", "directory removed from the start of archive entry paths")
	f.BoolVar(&client.NoEmit, "no-emit", false, "do nothing and report that there is nothing to restore")
	f.StringVarP(&client.Destination, "destination", "d", "", "directory to restore into (defaults to the working directory)")

	return cmd
}
