// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"runtime"
	rdebug "runtime/debug"

	"github.com/spf13/cobra"
)

// buildVersion resolves the module version and VCS details stamped into
// the binary. Outside a module-aware build everything stays at "dev".
func buildVersion() (version, revision, when string, dirty bool) {
	version = "dev"
	info, ok := rdebug.ReadBuildInfo()
	if !ok {
		return version, revision, when, dirty
	}
	if info.Main.Version != "" {
		version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.time":
			when = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	return version, revision, when, dirty
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			version, revision, when, dirty := buildVersion()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "osmcat %s (%s, %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
			if revision != "" {
				mark := ""
				if dirty {
					mark = "+dirty"
				}
				fmt.Fprintf(out, "  revision %s%s %s\n", revision, mark, when)
			}
		},
	}
}
