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

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/novr/reg-publish-bitrise/pkg/action"
	"github.com/novr/reg-publish-bitrise/pkg/cmd/require"
	"github.com/novr/reg-publish-bitrise/pkg/resolver"
)

const resolveDesc = `
This command looks up the artifact fetch would restore for KEY and prints it
without downloading anything.

The download URL expires and grants access to the artifact, so it is only
shown with --show-url.
`

type resolveOptions struct {
	showURL     bool
	maxColWidth uint
}

func newResolveCmd(cfg *action.Configuration, out io.Writer) *cobra.Command {
	client := action.NewResolve(cfg)
	o := &resolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve KEY",
		Short: "show the artifact fetch would restore",
		Long:  resolveDesc,
		Args:  require.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client.Settings = settings
			if err := settings.RequireRemote(); err != nil {
				return err
			}
			if err := applyArtifactFileOptions(cmd.Flags(), &client.ArtifactOptions); err != nil {
				return err
			}
			info, err := client.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if info == nil {
				fmt.Fprintf(out, "No artifact found for %s\n", args[0])
				return nil
			}
			fmt.Fprintln(out, o.formatInfo(info))
			return nil
		},
	}

	f := cmd.Flags()
	addArtifactFlags(f, &client.ArtifactOptions)
	f.BoolVar(&o.showURL, "show-url", false, "print the expiring download URL")
	f.UintVar(&o.maxColWidth, "max-col-width", 50, "maximum column width for output table")

	return cmd
}

func (o *resolveOptions) formatInfo(info *resolver.DownloadInfo) string {
	table := uitable.New()
	table.MaxColWidth = o.maxColWidth
	table.AddRow("BUILD", "COMMIT", "ARTIFACT", "TITLE")
	table.AddRow(info.BuildSlug, info.CommitHash, info.ArtifactSlug, info.Title)
	if o.showURL {
		return table.String() + "\n\nURL: " + info.URL
	}
	return table.String()
}
