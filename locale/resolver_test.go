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

package locale

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tinyDoc = `{"$meta": {"displayName": "Tiny", "selfName": "Tiny"}, "k": "v"}`

func readAll(t *testing.T, sr SearchResult) string {
	t.Helper()
	b, err := io.ReadAll(sr.Source)
	require.NoError(t, err)
	if c, ok := sr.Source.(io.Closer); ok {
		require.NoError(t, c.Close())
	}
	return string(b)
}

func TestSourceResolver(t *testing.T) {
	t.Parallel()
	first, second := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(second, "xx_YY.json"), []byte(tinyDoc), 0o644))

	r := &SourceResolver{Dirs: []string{first, second}}
	sr, err := r.FindLocale("xx_YY")
	require.NoError(t, err)
	assert.Equal(t, tinyDoc, readAll(t, sr))

	_, err = r.FindLocale("zz_ZZ")
	assert.ErrorIs(t, err, ErrNotFound)

	for _, id := range []string{"", "../xx_YY", "a/b", `a\b`} {
		_, err = r.FindLocale(id)
		assert.ErrorContains(t, err, "invalid locale identifier", "%q", id)
	}

	d, err := (&Loader{Resolver: DirResolver(second)}).LoadData("xx_YY")
	require.NoError(t, err)
	assert.Equal(t, "Tiny", d.Meta().DisplayName)
}

func TestSourceResolverAccessor(t *testing.T) {
	t.Parallel()
	var opened []string
	r := &SourceResolver{
		Dirs: []string{"a", "b"},
		Accessor: func(path string) (io.ReadCloser, error) {
			opened = append(opened, filepath.ToSlash(path))
			return nil, os.ErrPermission
		},
	}
	_, err := r.FindLocale("en_US")
	// Errors other than a missing file stop the search.
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Equal(t, []string{"a/en_US.json"}, opened)
}

func TestFSResolver(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{
		"locales/fr_FR.json":   {Data: []byte(tinyDoc)},
		"locales/en_GB.json":   {Data: []byte(tinyDoc)},
		"locales/notes.txt":    {Data: []byte("x")},
		"locales/old/it.json":  {Data: []byte(tinyDoc)},
		"elsewhere/es_ES.json": {Data: []byte(tinyDoc)},
	}
	r := FSResolver{FS: fsys, Dir: "locales"}

	ids, err := r.Available()
	require.NoError(t, err)
	assert.Equal(t, []string{"en_GB", "fr_FR"}, ids)

	sr, err := r.FindLocale("fr_FR")
	require.NoError(t, err)
	assert.Equal(t, tinyDoc, readAll(t, sr))

	_, err = r.FindLocale("es_ES")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompositeResolver(t *testing.T) {
	t.Parallel()
	_, err := CompositeResolver(nil).FindLocale("en_US")
	assert.ErrorIs(t, err, ErrNotFound)

	boom := errors.New("boom")
	failing := ResolverFunc(func(string) (SearchResult, error) {
		return SearchResult{}, boom
	})
	r := CompositeResolver{failing, Embedded()}
	sr, err := r.FindLocale("en_US")
	require.NoError(t, err)
	assert.Contains(t, readAll(t, sr), `"$meta"`)

	_, err = r.FindLocale("xx_XX")
	assert.ErrorIs(t, err, boom)
}
