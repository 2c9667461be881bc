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
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrNotFound is returned by resolvers that have no document for a locale.
var ErrNotFound = errors.New("locale not found")

// Extension is the file extension of locale documents.
const Extension = ".json"

// Resolver is used by the loader to find the document of a locale. Locale
// identifiers look like "en_US".
type Resolver interface {
	FindLocale(id string) (SearchResult, error)
}

// SearchResult is the outcome of a resolver search.
type SearchResult struct {
	// The locale document. If it is also an io.Closer, the loader closes it
	// once it is done reading.
	Source io.Reader
}

// ResolverFunc is a simple function type that implements Resolver.
type ResolverFunc func(string) (SearchResult, error)

var _ Resolver = ResolverFunc(nil)

// FindLocale implements Resolver.
func (f ResolverFunc) FindLocale(id string) (SearchResult, error) {
	return f(id)
}

// CompositeResolver is a slice of resolvers, consulted in order until one
// can supply a result. If none of the constituent resolvers can supply a
// result, the error returned by the first resolver is returned. If the slice
// of resolvers is empty, ErrNotFound is returned.
type CompositeResolver []Resolver

var _ Resolver = CompositeResolver(nil)

// FindLocale implements Resolver.
func (f CompositeResolver) FindLocale(id string) (SearchResult, error) {
	if len(f) == 0 {
		return SearchResult{}, ErrNotFound
	}
	var firstErr error
	for _, res := range f {
		r, err := res.FindLocale(id)
		if err == nil {
			return r, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return SearchResult{}, firstErr
}

// SourceResolver can resolve locale documents from the file system. The
// document of locale "en_US" is the file "en_US.json" in one of Dirs.
type SourceResolver struct {
	// Directories searched in order. If empty, the document is looked up
	// relative to the working directory.
	Dirs []string

	// Optional function for returning a file's contents. If nil, then
	// os.Open is used to open files on the file system.
	Accessor func(path string) (io.ReadCloser, error)
}

var _ Resolver = (*SourceResolver)(nil)

// DirResolver returns a resolver for the documents in dir.
func DirResolver(dir string) *SourceResolver {
	return &SourceResolver{Dirs: []string{dir}}
}

// FindLocale implements Resolver.
func (r *SourceResolver) FindLocale(id string) (SearchResult, error) {
	if err := checkID(id); err != nil {
		return SearchResult{}, err
	}
	name := id + Extension
	if len(r.Dirs) == 0 {
		reader, err := r.accessFile(name)
		if err != nil {
			return SearchResult{}, notFound(id, err)
		}
		return SearchResult{Source: reader}, nil
	}

	var e error
	for _, dir := range r.Dirs {
		reader, err := r.accessFile(filepath.Join(dir, name))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				e = err
				continue
			}
			return SearchResult{}, err
		}
		return SearchResult{Source: reader}, nil
	}
	return SearchResult{}, notFound(id, e)
}

func (r *SourceResolver) accessFile(path string) (io.ReadCloser, error) {
	if r.Accessor != nil {
		return r.Accessor(path)
	}
	return os.Open(path)
}

// FSResolver resolves locale documents from a file system, such as an
// [embed.FS].
type FSResolver struct {
	FS fs.FS
	// The directory of the documents within FS. Empty means the root.
	Dir string
}

var _ Resolver = FSResolver{}

// FindLocale implements Resolver.
func (r FSResolver) FindLocale(id string) (SearchResult, error) {
	if err := checkID(id); err != nil {
		return SearchResult{}, err
	}
	f, err := r.FS.Open(path.Join(r.dir(), id+Extension))
	if err != nil {
		return SearchResult{}, notFound(id, err)
	}
	return SearchResult{Source: f}, nil
}

// Available lists the locales FS has documents for, sorted.
func (r FSResolver) Available() ([]string, error) {
	return Available(r.FS, r.dir())
}

func (r FSResolver) dir() string {
	if r.Dir == "" {
		return "."
	}
	return r.Dir
}

//go:embed data/*.json
var embedded embed.FS

// Embedded returns the resolver for the locales built into this package.
func Embedded() FSResolver {
	return FSResolver{FS: embedded, Dir: "data"}
}

// Available lists the identifiers of the locale documents in dir of fsys,
// sorted.
func Available(fsys fs.FS, dir string) ([]string, error) {
	if dir != "" && dir != "." {
		sub, err := fs.Sub(fsys, dir)
		if err != nil {
			return nil, err
		}
		fsys = sub
	}
	matches, err := doublestar.Glob(fsys, "*"+Extension, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, strings.TrimSuffix(path.Base(m), Extension))
	}
	slices.Sort(ids)
	return ids, nil
}

func checkID(id string) error {
	if id == "" || !fs.ValidPath(id) || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("invalid locale identifier %q", id)
	}
	return nil
}

func notFound(id string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return err
}
