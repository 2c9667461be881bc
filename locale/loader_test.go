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
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"

	"github.com/Fayti1703/qrules/blockjson"
	"github.com/Fayti1703/qrules/qrules"
	"github.com/Fayti1703/qrules/reporter"
)

// collect returns a reporter that records warnings, and errors if lenient.
func collect(lenient bool) (reporter.Reporter, *[]string, *[]string) {
	var (
		mu       sync.Mutex
		errs     []string
		warnings []string
	)
	var errFn reporter.ErrorReporter
	if lenient {
		errFn = func(err reporter.ErrorWithPath) error {
			mu.Lock()
			defer mu.Unlock()
			errs = append(errs, err.Error())
			return nil
		}
	}
	rep := reporter.NewReporter(errFn, func(err reporter.ErrorWithPath) {
		mu.Lock()
		defer mu.Unlock()
		warnings = append(warnings, err.Error())
	})
	return rep, &errs, &warnings
}

func TestLoadEmbedded(t *testing.T) {
	t.Parallel()
	rep, _, warnings := collect(false)
	l := &Loader{Reporter: rep}

	d, err := l.LoadData("en_US")
	require.NoError(t, err)
	assert.Empty(t, *warnings)
	assert.Equal(t, &Meta{
		ID:          "en_US",
		DisplayName: "English (United States)",
		SelfName:    "English (United States)",
		Maintainers: []string{"Fayti1703"},
	}, d.Meta())

	testCases := []struct {
		key  string
		vars map[string]string
		want string
	}{
		{key: "menu.title", want: "Quality of Life"},
		{key: "menu.settings.reset", want: "Reset to defaults"},
		{key: "greeting", vars: map[string]string{"name": "Ada"}, want: "Hello, Ada!"},
		{key: "discount", vars: map[string]string{"percent": "15"}, want: "15% off"},
		{key: "items.count", want: "some items"},
		{key: "items.count", vars: map[string]string{"count": "1"}, want: "one item"},
		{key: "items.count", vars: map[string]string{"count": "3"}, want: "3 items"},
		{key: "inventory.summary", vars: map[string]string{"count": "0"}, want: "You are carrying nothing."},
		{key: "inventory.summary", vars: map[string]string{"count": "2"}, want: "You are carrying 2 items."},
		{key: "days.left", vars: map[string]string{"days": "-1"}, want: "The deadline has passed."},
		{key: "days.left", vars: map[string]string{"days": "30"}, want: "More than a week left."},
	}
	for _, tc := range testCases {
		got, err := d.Translate(tc.key, tc.vars)
		require.NoError(t, err, tc.key)
		assert.Equal(t, tc.want, got, "%s %v", tc.key, tc.vars)
	}

	assert.True(t, d.HasTranslation("menu.open"))
	assert.False(t, d.HasTranslation("menu"))
	assert.False(t, d.HasTranslation("$meta"))
	assert.Contains(t, d.Keys(), "menu.settings.language")

	stmt, ok := d.Statement("items.count")
	require.True(t, ok)
	assert.IsType(t, &qrules.IntSwitch{}, stmt)

	raw, err := embedded.ReadFile("data/en_US.json")
	require.NoError(t, err)
	sum := blake3.Sum256(raw)
	assert.Equal(t, sum[:], d.Digest())
}

func TestEmbeddedLocalesAgree(t *testing.T) {
	t.Parallel()
	ids, err := Embedded().Available()
	require.NoError(t, err)
	assert.Equal(t, []string{"de_DE", "en_US"}, ids)

	all, err := (&Loader{}).LoadAll(context.Background(), ids...)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "de_DE", all[0].Meta().ID)
	assert.Equal(t, "Deutsch (Deutschland)", all[0].Meta().SelfName)
	assert.Equal(t, []string{""}, all[0].Meta().Maintainers)

	// Every locale translates the keys of the reference locale.
	if diff := cmp.Diff(all[1].Keys(), all[0].Keys()); diff != "" {
		t.Errorf("de_DE keys differ from en_US (-want +got):\n%s", diff)
	}
}

func TestLoadMeta(t *testing.T) {
	t.Parallel()
	meta, err := LoadMeta("de_DE")
	require.NoError(t, err)
	assert.Equal(t, "German (Germany)", meta.DisplayName)

	// Reading stops at $meta: what follows is never looked at.
	l := &Loader{Resolver: docResolver(`{"$meta": {"displayName": "T", "selfName": "S"}, "a": `)}
	meta, err = l.LoadMeta("test")
	require.NoError(t, err)
	assert.Equal(t, &Meta{ID: "test", DisplayName: "T", SelfName: "S", Maintainers: []string{""}}, meta)

	_, err = l.LoadData("test")
	var synErr *blockjson.SyntaxError
	assert.ErrorAs(t, err, &synErr)

	_, err = LoadMeta("xx_XX")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadMetaErrors(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name string
		doc  string
		path string
		msg  string
	}{
		{name: "not an object", doc: `[]`, path: "%", msg: "must be an object"},
		{name: "no meta", doc: `{"a": {"b": "c"}}`, path: "%", msg: "no $meta object"},
		{name: "meta not object", doc: `{"$meta": "x"}`, path: "%.$meta", msg: "must be an object"},
		{name: "missing display name", doc: `{"$meta": {"selfName": "x"}}`, path: "%.$meta", msg: "missing displayName"},
		{name: "missing self name", doc: `{"$meta": {"displayName": "x"}}`, path: "%.$meta", msg: "missing selfName"},
		{name: "bad name", doc: `{"$meta": {"displayName": 1}}`, path: "%.$meta.displayName", msg: "must be a string"},
		{name: "bad maintainers", doc: `{"$meta": {"maintainers": "x"}}`, path: "%.$meta.maintainers", msg: "must be an array"},
		{name: "bad maintainer", doc: `{"$meta": {"maintainers": [null, 2]}}`, path: "%.$meta.maintainers[1]", msg: "string or null"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			l := &Loader{Resolver: docResolver(tc.doc)}
			_, err := l.LoadMeta("test")
			var ewp reporter.ErrorWithPath
			require.ErrorAs(t, err, &ewp)
			assert.Equal(t, "test", ewp.GetLocale())
			assert.Equal(t, tc.path, ewp.GetPath())
			assert.Contains(t, ewp.Unwrap().Error(), tc.msg)
		})
	}
}

func TestLoadDataWithMeta(t *testing.T) {
	t.Parallel()
	doc := `{"$meta": {"displayName": "A", "selfName": "B", "extra": 1}, "k": "v"}`
	rep, _, warnings := collect(false)
	l := &Loader{Resolver: docResolver(doc), Reporter: rep}

	meta, err := l.LoadMeta("test")
	require.NoError(t, err)
	require.Len(t, *warnings, 1)

	d, err := l.LoadDataWithMeta(meta)
	require.NoError(t, err)
	assert.Same(t, meta, d.Meta())
	// $meta is not read again, so its warning is not repeated.
	assert.Len(t, *warnings, 1)

	got, err := d.Translate("k", nil)
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestTranslateWarnsOnce(t *testing.T) {
	t.Parallel()
	rep, _, warnings := collect(false)
	d, err := (&Loader{Reporter: rep}).LoadData("en_US")
	require.NoError(t, err)

	for range 2 {
		got, err := d.Translate("unknown.key", nil)
		require.NoError(t, err)
		assert.Equal(t, "unknown.key", got)
	}
	assert.Equal(t, []string{`locale "en_US" at "%.unknown.key": unassigned translation key`}, *warnings)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := d.Translate("greeting", map[string]string{"nom": "x"})
			assert.NoError(t, err)
			assert.Equal(t, "Hello, %name%!", got)
		}()
	}
	wg.Wait()
	assert.Equal(t, []string{
		`locale "en_US" at "%.unknown.key": unassigned translation key`,
		`locale "en_US" at "%.greeting": unassigned variable "name"`,
	}, *warnings)
}

func TestTranslateRuntimeError(t *testing.T) {
	t.Parallel()
	doc := `{"$meta": {"displayName": "T", "selfName": "T"}, "k": {"type": "int-switch", "on": "n", "cases": {"1": "one"}}}`
	d, err := (&Loader{Resolver: docResolver(doc)}).LoadData("test")
	require.NoError(t, err)

	got, err := d.Translate("k", map[string]string{"n": "2"})
	assert.Equal(t, "k", got)
	assert.Equal(t, qrules.Runtime, qrules.KindOf(err))
}

func TestLoadBlockSize(t *testing.T) {
	t.Parallel()
	doc := `{"$meta": {"displayName": "T", "selfName": "T"}, "long": "` + strings.Repeat("x", 100) + `"}`
	_, err := (&Loader{Resolver: docResolver(doc), BlockSize: 64}).LoadData("test")
	assert.ErrorIs(t, err, blockjson.ErrValueTooLarge)
	var ewp reporter.ErrorWithPath
	require.ErrorAs(t, err, &ewp)
	assert.Equal(t, "%.long", ewp.GetPath())

	_, err = (&Loader{Resolver: docResolver(doc), BlockSize: 128}).LoadData("test")
	assert.NoError(t, err)
}

func TestLoadAllLenient(t *testing.T) {
	t.Parallel()
	docs := map[string]string{
		"good":  `{"$meta": {"displayName": "G", "selfName": "G"}, "k": "v"}`,
		"bad":   `{"$meta": {"displayName": "B", "selfName": "B"}, "k": {"type": "nope"}}`,
		"worse": `{"k": "v"}`,
	}
	resolver := ResolverFunc(func(id string) (SearchResult, error) {
		doc, ok := docs[id]
		if !ok {
			return SearchResult{}, ErrNotFound
		}
		return SearchResult{Source: strings.NewReader(doc)}, nil
	})

	rep, errs, _ := collect(true)
	l := &Loader{Resolver: resolver, Reporter: rep, MaxParallelism: 2}
	all, err := l.LoadAll(context.Background(), "good", "bad", "good", "worse")
	assert.ErrorIs(t, err, reporter.ErrInvalidSource)
	require.Len(t, all, 4)
	require.NotNil(t, all[0])
	assert.Equal(t, "good", all[0].Meta().ID)
	assert.Same(t, all[0], all[2])
	assert.Nil(t, all[1])
	assert.Nil(t, all[3])
	assert.ElementsMatch(t, []string{
		`qrules syntax error in locale "bad" at "%.k.type": unknown statement type "nope" (known types: [int-switch set])`,
		`locale "worse" at "%": locale document has no $meta object`,
	}, *errs)

	// Without a lenient reporter, the first error is the result.
	l = &Loader{Resolver: resolver}
	_, err = l.LoadAll(context.Background(), "good", "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	all, err = l.LoadAll(context.Background(), "good", "good")
	require.NoError(t, err)
	assert.Same(t, all[0], all[1])
}

func TestLoadAllCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Loader{}).LoadAll(ctx, "en_US")
	assert.True(t, errors.Is(err, context.Canceled))
}
