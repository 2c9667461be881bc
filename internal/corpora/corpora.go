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

// Package corpora provides a mechanism for managing test corpora, i.e.,
// a collection of files that each define a locale loading test.
package corpora

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
)

// A Corpus describes a test data corpus. This is essentially a way for doing
// table-driven tests where the "table" is in your file system.
type Corpus struct {
	// The root of the test data directory. This path is relative to the file
	// that calls [Corpus.Run].
	Root string

	// An environment variable to check with regards to whether to run in
	// "refresh" mode or not. Its value is a glob of the cases to refresh.
	Refresh string

	// The file extension (without a dot) of files which define a test case,
	// e.g. "yaml".
	Extension string
	// Possible outputs of the test, which are found using Outputs.Extension.
	// If the file for a particular output is missing, it is implicitly
	// treated as being expected to be empty.
	Outputs []Output

	// Variants, if set, runs each case once per variant. Every variant must
	// produce the same outputs as the first, which are then compared with
	// the expected outputs.
	Variants []int

	// Test executes one test case from the corpus, for the given variant (0
	// when there are no variants). Returns a slice of strings corresponding
	// to the elements of Outputs.
	Test func(t *testing.T, path, text string, variant int) []string
}

// Run runs every case of the corpus as a subtest.
func (c Corpus) Run(t *testing.T) {
	testDir := callerDir(0)
	root := filepath.Join(testDir, c.Root)
	t.Logf("corpora: searching for files in %q", root)

	tests, err := doublestar.Glob(os.DirFS(root), "**/*."+c.Extension, doublestar.WithFilesOnly())
	if err != nil {
		t.Fatal("corpora: error while searching test data:", err)
	}
	if len(tests) == 0 {
		t.Fatalf("corpora: no *.%s files in %q", c.Extension, root)
	}

	var refresh string
	if c.Refresh != "" {
		refresh = os.Getenv(c.Refresh)
		if !doublestar.ValidatePattern(refresh) {
			t.Fatalf("corpora: invalid glob in %s: %q", c.Refresh, refresh)
		}
	}
	if refresh != "" {
		t.Logf("corpora: refreshing test data because %s=%s", c.Refresh, refresh)
		t.Fail()
	}

	variants := c.Variants
	if len(variants) == 0 {
		variants = []int{0}
	}

	for _, name := range tests {
		path := filepath.Join(root, filepath.FromSlash(name))
		t.Run(name, func(t *testing.T) {
			bytes, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("corpora: error while loading input file %q: %v", path, err)
			}
			input := string(bytes)

			results := c.Test(t, name, input, variants[0])
			for _, v := range variants[1:] {
				got := c.Test(t, name, input, v)
				for i, output := range c.Outputs {
					if diff := defaultCompare(got[i], results[i]); diff != "" {
						t.Fatalf("corpora: variant %d changed the %s output:\n%s", v, output.Extension, diff)
					}
				}
			}

			refresh, _ := doublestar.Match(refresh, name)
			for i, output := range c.Outputs {
				c.check(t, path, output, results[i], refresh)
			}
		})
	}
}

func (c Corpus) check(t *testing.T, path string, output Output, result string, refresh bool) {
	path = fmt.Sprint(path, ".", output.Extension)

	if refresh {
		if result == "" {
			err := os.Remove(path)
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				t.Errorf("corpora: error while deleting output file %q: %v", path, err)
			}
			return
		}
		if err := os.WriteFile(path, []byte(result), 0o644); err != nil {
			t.Errorf("corpora: error while writing output file %q: %v", path, err)
		}
		return
	}

	bytes, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		t.Errorf("corpora: error while loading output file %q: %v", path, err)
		return
	}

	cmp := output.Compare
	if cmp == nil {
		cmp = defaultCompare
	}
	if diff := cmp(result, string(bytes)); diff != "" {
		t.Errorf("output mismatch for %q:\n%s", path, diff)
	}
}

// Output represents the output of a test case.
type Output struct {
	// The extension of the output. This is a suffix to the name of the
	// testcase's main file; so if Corpus.Extension is "yaml", and this is
	// "warnings", for a test "foo.yaml" the test runner will look for files
	// named "foo.yaml.warnings".
	Extension string

	// The comparison function for this output. May be nil, in which case the
	// values will be compared byte-for-byte.
	Compare Compare
}

// Compare is a comparison function between strings, used in [Output].
//
// Returns empty string if the strings match, otherwise returns an error message.
type Compare func(got, want string) string

var (
	added   = color.New(color.FgHiGreen, color.Bold)
	removed = color.New(color.FgHiRed, color.Bold)
)

func defaultCompare(got, want string) string {
	if got == want {
		return ""
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	if err != nil {
		return err.Error()
	}

	lines := strings.Split(diff, "\n")
	for i, s := range lines {
		switch {
		case strings.HasPrefix(s, "+"):
			lines[i] = added.Sprint(s)
		case strings.HasPrefix(s, "-"):
			lines[i] = removed.Sprint(s)
		}
	}
	return strings.Join(lines, "\n")
}

func callerDir(skip int) string {
	_, file, _, ok := runtime.Caller(skip + 2)
	if !ok {
		panic("corpora: could not determine test file's directory")
	}
	return filepath.Dir(file)
}
