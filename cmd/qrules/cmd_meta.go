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

func newMetaCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "meta <locale>",
		Short: "Print the metadata of a locale",
		Long: `Print the $meta block of a locale as YAML.

Only the metadata is read; the rules of the locale are not compiled.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := g.loader(nil).LoadMeta(args[0])
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			if err := enc.Encode(meta); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			return enc.Close()
		},
	}
}
