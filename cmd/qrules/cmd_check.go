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
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Fayti1703/qrules/locale"
	"github.com/Fayti1703/qrules/reporter"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow)
	okColor   = color.New(color.FgGreen)
)

func newCheckCmd(g *globals) *cobra.Command {
	var parallelism int

	cmd := &cobra.Command{
		Use:   "check [locale...]",
		Short: "Load locales and report every problem found",
		Long: `Load the given locales, or every available locale, in parallel.

Every error and warning is printed; a broken locale does not stop the others
from being checked. Each locale is then listed as failed or ok; for those that
load, the number of translation keys and the BLAKE3 digest of its document are
printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := args
			if len(ids) == 0 {
				var err error
				if ids, err = g.available(); err != nil {
					return err
				}
			}

			var (
				mu       sync.Mutex
				errCount int
			)
			rep := reporter.NewReporter(
				func(err reporter.ErrorWithPath) error {
					mu.Lock()
					defer mu.Unlock()
					errCount++
					errColor.Fprintln(os.Stderr, err)
					return nil
				},
				func(err reporter.ErrorWithPath) {
					mu.Lock()
					defer mu.Unlock()
					warnColor.Fprintln(os.Stderr, "warning:", err)
				},
			)

			l := g.loader(rep)
			l.MaxParallelism = parallelism
			all, err := l.LoadAll(context.Background(), ids...)
			if err != nil && !errors.Is(err, reporter.ErrInvalidSource) {
				return err
			}
			failed := printStatus(os.Stdout, ids, all)
			if err != nil {
				return fmt.Errorf("%d error(s) in %d locale(s)", errCount, failed)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&parallelism, "jobs", "j", 0, "number of locales loaded at once (default: number of CPUs)")

	return cmd
}

// printStatus lists each locale as ok or failed, returning how many failed.
// all holds the result of each of ids, nil where loading failed.
func printStatus(w io.Writer, ids []string, all []*locale.Data) int {
	failed := 0
	for i, d := range all {
		if d == nil {
			failed++
			fmt.Fprintf(w, "%s %s\n", errColor.Sprint("failed"), ids[i])
			continue
		}
		fmt.Fprintf(w, "%s %s: %d keys, blake3 %x\n", okColor.Sprint("ok"), d.Meta().ID, len(d.Keys()), d.Digest())
	}
	return failed
}
