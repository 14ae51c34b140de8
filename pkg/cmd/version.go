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
	"text/template"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/novr/reg-publish-bitrise/internal/version"
	"github.com/novr/reg-publish-bitrise/pkg/cmd/require"
)

const versionDesc = `
Show the version of reg-publish-bitrise and the User-Agent it sends to the
Bitrise API and to artifact hosts.

The output will look something like this:

    Version:     v0.3.0
    Git commit:  ff52399e51bb880526e9cd0ed8386f6433b74da1
    Tree state:  clean
    Go version:  go1.24.0
    Platform:    linux/amd64
    User agent:  reg-publish-bitrise/0.3.0 (linux/amd64)

Git commit and tree state come from the release ldflags, or from the VCS
stamp of a build inside a git checkout; rows without a value are left out.

--short prints the version alone, followed by the abbreviated commit when
one is known, for example 'v0.3.0+gff52399'.

When using the --template flag the following properties are available to use in
the template:

- .Version contains the semantic version
- .GitCommit is the git commit
- .GitTreeState is "clean" or "dirty"
- .GoVersion contains the version of Go that the binary was compiled with
- .Platform contains GOOS/GOARCH
- .UserAgent is the User-Agent header sent with every request

For example, --template='{{.UserAgent}}' outputs
'reg-publish-bitrise/0.3.0 (linux/amd64)'.
`

// versionInfo is the data the version command renders.
type versionInfo struct {
	version.BuildInfo
	UserAgent string
}

type versionOptions struct {
	short    bool
	template string
}

func newVersionCmd(out io.Writer) *cobra.Command {
	o := &versionOptions{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "print the version and user agent",
		Long:  versionDesc,
		Args:  require.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return o.run(out)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&o.short, "short", false, "print the version number")
	f.StringVar(&o.template, "template", "", "template for version string format")

	return cmd
}

func (o *versionOptions) run(out io.Writer) error {
	info := versionInfo{BuildInfo: version.Get(), UserAgent: version.GetUserAgent()}
	if o.template != "" {
		tt, err := template.New("_").Parse(o.template)
		if err != nil {
			return err
		}
		return tt.Execute(out, info)
	}
	if o.short {
		fmt.Fprintln(out, shortVersion(info.BuildInfo))
		return nil
	}
	fmt.Fprintln(out, formatVersion(info))
	return nil
}

func shortVersion(v version.BuildInfo) string {
	if len(v.GitCommit) >= 7 {
		return fmt.Sprintf("%s+g%s", v.Version, v.GitCommit[:7])
	}
	return v.Version
}

func formatVersion(info versionInfo) string {
	table := uitable.New()
	row := func(label, value string) {
		if value != "" {
			table.AddRow(label+":", value)
		}
	}
	row("Version", info.Version)
	row("Git commit", info.GitCommit)
	row("Tree state", info.GitTreeState)
	row("Go version", info.GoVersion)
	row("Platform", info.Platform)
	row("User agent", info.UserAgent)
	return table.String()
}
