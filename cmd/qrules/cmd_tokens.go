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

package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Fayti1703/qrules/blockjson"
)

func newTokensCmd(g *globals) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the token stream of a document",
		Long: `Tokenize a document through a block buffer of --buffer-size bytes and
print one token per line: its position, depth, kind and value.

Comments and trailing commas are accepted unless --strict is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			size := g.bufferSize
			if size <= 0 {
				size = blockjson.DefaultBlockSize
			}
			opts := blockjson.Options{}
			if !strict {
				opts.AllowComments, opts.AllowTrailingCommas = true, true
			}

			w := bufio.NewWriter(os.Stdout)
			defer w.Flush()
			t := blockjson.NewTokenizer(f, make([]byte, size), opts)
			for {
				ok, err := t.ReadToken()
				if err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
				if !ok {
					return nil
				}
				tok := t.Token()
				fmt.Fprintf(w, "%v\t%d\t%v", tok.Pos, tok.Depth, tok.Kind)
				switch tok.Kind {
				case blockjson.PropertyName, blockjson.String:
					fmt.Fprintf(w, "\t%q", tok.Value)
				case blockjson.Number:
					fmt.Fprintf(w, "\t%s", tok.Value)
				}
				fmt.Fprintln(w)
			}
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "reject comments and trailing commas")

	return cmd
}
