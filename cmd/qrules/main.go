// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command qrules inspects and checks locale documents.
package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/Fayti1703/qrules/locale"
	"github.com/Fayti1703/qrules/reporter"
)

// globals holds the flags shared by every command.
type globals struct {
	dir        string
	bufferSize int
	verbose    int
	noColor    bool
}

// loader returns a loader for the selected locale directory, or for the
// embedded locales.
func (g *globals) loader(rep reporter.Reporter) *locale.Loader {
	l := &locale.Loader{Reporter: rep, BlockSize: g.bufferSize}
	if g.dir != "" {
		l.Resolver = locale.DirResolver(g.dir)
	}
	return l
}

// available lists the locales of the selected directory.
func (g *globals) available() ([]string, error) {
	if g.dir == "" {
		return locale.Embedded().Available()
	}
	return locale.Available(os.DirFS(g.dir), ".")
}

func main() {
	g := &globals{}
	rootCmd := &cobra.Command{
		Use:           "qrules",
		Short:         "Inspect and check qrules locale documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonlog.Configure(g.verbose, nil)
			if g.noColor {
				color.NoColor = true
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&g.dir, "dir", "", "directory of locale documents (default: the embedded locales)")
	flags.IntVar(&g.bufferSize, "buffer-size", 0, "size of the block buffer documents are read through (default 4096)")
	flags.CountVarP(&g.verbose, "verbose", "v", "log more; repeat for debug output")
	flags.BoolVar(&g.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newMetaCmd(g))
	rootCmd.AddCommand(newCheckCmd(g))
	rootCmd.AddCommand(newTranslateCmd(g))
	rootCmd.AddCommand(newDumpCmd(g))
	rootCmd.AddCommand(newTokensCmd(g))

	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
