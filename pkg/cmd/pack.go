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
	"github.com/novr/reg-publish-bitrise/pkg/files"
)

const packDesc = `
This command packs the files below DIR into the zip archive FILE, the same
way publish does, without talking to Bitrise.

The archive is reproducible: packing the same files twice yields the same
bytes. When FILE lies inside DIR, a previous FILE is not packed.
`

type packOptions struct {
	pattern    string
	pathPrefix string
}

func newPackCmd(out io.Writer) *cobra.Command {
	o := &packOptions{}

	cmd := &cobra.Command{
		Use:   "pack DIR FILE",
		Short: "pack a directory into a zip archive",
		Long:  packDesc,
		Args:  require.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return o.run(out, args[0], args[1])
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.pattern, patternFlag, files.DefaultPattern, "glob selecting the files to pack, relative to DIR")
	f.StringVar(&o.pathPrefix, pathPrefixFlag, "", "directory to nest the files under inside the archive")

	return cmd
}

func (o *packOptions) run(out io.Writer, dir, dest string) error {
	list, err := files.List(dir, o.pattern)
	if err != nil {
		return err
	}
	list = files.WithPrefix(files.Without(list, dest), o.pathPrefix)
	blob, err := archive.Pack(list)
	if err != nil {
		return err
	}
	if err := archive.WriteFile(dest, blob); err != nil {
		return err
	}
	fmt.Fprintf(out, "Packed %d files into %s\n", len(list), dest)
	return nil
}
