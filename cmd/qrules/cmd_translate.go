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
	"strings"

	"github.com/spf13/cobra"
)

func newTranslateCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "translate <locale> <key> [name=value...]",
		Short: "Translate a key",
		Long: `Load a locale and translate one key with the given variables.

A key the locale has no rule for translates to itself, with a warning.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			vars := make(map[string]string, len(args)-2)
			for _, arg := range args[2:] {
				name, value, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("expected name=value, got %q", arg)
				}
				vars[name] = value
			}

			d, err := g.loader(nil).LoadData(args[0])
			if err != nil {
				return err
			}
			text, err := d.Translate(args[1], vars)
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		},
	}
}
