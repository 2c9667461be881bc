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
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newDumpCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <locale> [key...]",
		Short: "Print compiled rules as YAML",
		Long: `Load a locale and print the compiled rule of each key as YAML, in
document order. With keys given, only those are printed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := g.loader(nil).LoadData(args[0])
			if err != nil {
				return err
			}
			keys := args[1:]
			if len(keys) == 0 {
				keys = d.Keys()
			}

			doc := &yaml.Node{Kind: yaml.MappingNode}
			for _, key := range keys {
				stmt, ok := d.Statement(key)
				if !ok {
					return fmt.Errorf("locale %q has no rule for %q", args[0], key)
				}
				var k, v yaml.Node
				if err := k.Encode(key); err != nil {
					return err
				}
				if err := v.Encode(stmt); err != nil {
					return fmt.Errorf("encode %q: %w", key, err)
				}
				doc.Content = append(doc.Content, &k, &v)
			}

			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			if err := enc.Encode(doc); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
