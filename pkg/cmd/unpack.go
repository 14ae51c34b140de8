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

	"github.com/novr/reg-publish-bitrise/pkg/archive"
	"github.com/novr/reg-publish-bitrise/pkg/cmd/require"
	"github.com/novr/reg-publish-bitrise/pkg/materialize"
)

const unpackDesc = `
This command writes the entries of the zip archive FILE below DIR, the same
way fetch restores a downloaded artifact. Existing files are overwritten and
files not in the archive are left alone.
`

func newUnpackCmd(out io.Writer) *cobra.Command {
	var target materialize.Target

	cmd := &cobra.Command{
		Use:   "unpack FILE DIR",
		Short: "unpack a zip archive into a directory",
		Long:  unpackDesc,
		Args:  require.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			entries, err := archive.LoadFile(args[0])
			if err != nil {
				return err
			}
			target.Root = args[1]
			written, err := materialize.Write(entries, target)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Unpacked %d files into %s\n", len(written), args[1])
			return nil
		},
	}

	cmd.Flags().StringVar(&target.StripPrefix, stripPrefixFlag, "", "directory removed from the start of archive entry paths")

	return cmd
}
