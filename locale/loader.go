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
	"io"
	"runtime"
	"sync"

	"github.com/zeebo/blake3"
	"golang.org/x/sync/semaphore"

	"github.com/Fayti1703/qrules/blockjson"
	"github.com/Fayti1703/qrules/reporter"
)

// Loader handles loading locale documents. The zero value loads the embedded
// locales, logging warnings and failing on the first error.
//
// A Loader must not be copied after first use.
type Loader struct {
	// Resolver is how the loader finds locale documents. If nil, the
	// [Embedded] locales are used.
	Resolver Resolver

	// Reporter is called on errors and warnings. If nil, loading fails on
	// the first error and warnings are logged.
	Reporter reporter.Reporter

	// The size of the buffers documents are read through, which bounds the
	// largest single token a document may contain. Defaults to
	// [blockjson.DefaultBlockSize].
	BlockSize int

	// The maximum number of locales LoadAll loads at once. Defaults to the
	// minimum of runtime.GOMAXPROCS(-1) and runtime.NumCPU().
	MaxParallelism int

	once   sync.Once
	blocks *blockjson.BlockPool
}

// Locale documents allow comments and trailing commas.
var documentOptions = blockjson.Options{AllowComments: true, AllowTrailingCommas: true}

var defaultLoader Loader

// LoadMeta reads the metadata of an embedded locale.
func LoadMeta(id string) (*Meta, error) {
	return defaultLoader.LoadMeta(id)
}

// LoadData loads an embedded locale.
func LoadData(id string) (*Data, error) {
	return defaultLoader.LoadData(id)
}

func (l *Loader) pool() *blockjson.BlockPool {
	l.once.Do(func() {
		size := l.BlockSize
		if size <= 0 {
			size = blockjson.DefaultBlockSize
		}
		l.blocks = &blockjson.BlockPool{Size: size}
	})
	return l.blocks
}

func (l *Loader) resolver() Resolver {
	if l.Resolver == nil {
		return Embedded()
	}
	return l.Resolver
}

// open finds the document of id. The returned function closes it.
func (l *Loader) open(id string) (io.Reader, func(), error) {
	sr, err := l.resolver().FindLocale(id)
	if err != nil {
		return nil, nil, err
	}
	if sr.Source == nil {
		return nil, nil, reporter.Errorf(id, "", "resolver returned no source")
	}
	return sr.Source, func() {
		if c, ok := sr.Source.(io.Closer); ok {
			_ = c.Close()
		}
	}, nil
}

// LoadMeta reads the metadata of a locale, without compiling its rules.
// Reading stops at the "$meta" object.
func (l *Loader) LoadMeta(id string) (*Meta, error) {
	h := reporter.NewHandler(l.Reporter)
	src, done, err := l.open(id)
	if err != nil {
		return nil, err
	}
	defer done()

	pool := l.pool()
	buf := pool.Rent(pool.Size)
	defer pool.Return(buf)

	t := blockjson.NewTokenizer(src, buf, documentOptions)
	meta, err := findMeta(t, id, h)
	if err != nil {
		return nil, handle(h, err)
	}
	return meta, nil
}

// LoadData loads a locale: its metadata and the compiled rule of every key.
// Any error aborts the load; there are no partially loaded locales.
func (l *Loader) LoadData(id string) (*Data, error) {
	return l.loadOne(id, nil)
}

// LoadDataWithMeta loads the rules of the locale meta describes, reusing
// meta instead of reading the "$meta" object again.
func (l *Loader) LoadDataWithMeta(meta *Meta) (*Data, error) {
	return l.loadOne(meta.ID, meta)
}

func (l *Loader) loadOne(id string, meta *Meta) (*Data, error) {
	h := reporter.NewHandler(l.Reporter)
	d, err := l.load(id, meta, h)
	if err != nil {
		return nil, handle(h, err)
	}
	return d, nil
}

// handle reports err and returns what loading should fail with. A reporter
// that swallows the error still fails the locale.
func handle(h *reporter.Handler, err error) error {
	if rerr := h.HandleError(err); rerr != nil {
		return rerr
	}
	return reporter.ErrInvalidSource
}

func (l *Loader) load(id string, meta *Meta, h *reporter.Handler) (*Data, error) {
	src, done, err := l.open(id)
	if err != nil {
		return nil, err
	}
	defer done()

	hasher := blake3.New()
	tee := io.TeeReader(src, hasher)

	pool := l.pool()
	buf := pool.Rent(pool.Size)
	defer pool.Return(buf)

	doc := newDocument(id, blockjson.NewTokenizer(tee, buf, documentOptions), h, pool, meta)
	if err := doc.read(); err != nil {
		return nil, err
	}
	if _, err := io.Copy(io.Discard, tee); err != nil {
		return nil, err
	}

	return &Data{
		meta:   doc.meta,
		rules:  doc.rules,
		keys:   doc.keys,
		digest: hasher.Sum(nil),
		warned: make(map[uint64]struct{}),
		h:      h,
	}, nil
}

// LoadAll loads the given locales, in parallel, returning them in the order
// given. If the Reporter lets loading go on after an error, every locale is
// still attempted. LoadAll then returns the locales that loaded, with nil in
// place of the others, along with [reporter.ErrInvalidSource].
func (l *Loader) LoadAll(ctx context.Context, ids ...string) ([]*Data, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	par := l.MaxParallelism
	if par <= 0 {
		par = runtime.GOMAXPROCS(-1)
		cpus := runtime.NumCPU()
		if par > cpus {
			par = cpus
		}
	}

	e := executor{
		l:       l,
		h:       reporter.NewHandler(l.Reporter),
		s:       semaphore.NewWeighted(int64(par)),
		results: map[string]*result{},
	}

	results := make([]*result, len(ids))
	for i, id := range ids {
		results[i] = e.load(ctx, id)
	}

	data := make([]*Data, len(ids))
	for i, r := range results {
		select {
		case <-r.ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if r.err != nil {
			return nil, r.err
		}
		data[i] = r.res
	}

	if err := e.h.Error(); err != nil {
		if errors.Is(err, reporter.ErrInvalidSource) {
			return data, err
		}
		return nil, err
	}
	return data, nil
}

type result struct {
	ready chan struct{}
	res   *Data
	err   error
}

func (r *result) fail(err error) {
	r.err = err
	close(r.ready)
}

func (r *result) complete(d *Data) {
	r.res = d
	close(r.ready)
}

type executor struct {
	l *Loader
	h *reporter.Handler
	s *semaphore.Weighted

	mu      sync.Mutex
	results map[string]*result
}

func (e *executor) load(ctx context.Context, id string) *result {
	e.mu.Lock()
	defer e.mu.Unlock()
	r := e.results[id]
	if r != nil {
		return r
	}

	r = &result{
		ready: make(chan struct{}),
	}
	e.results[id] = r
	go func() {
		e.doLoad(ctx, id, r)
	}()
	return r
}

func (e *executor) doLoad(ctx context.Context, id string, r *result) {
	if err := e.s.Acquire(ctx, 1); err != nil {
		r.fail(err)
		return
	}
	defer e.s.Release(1)

	d, err := e.l.load(id, nil, e.h)
	if err != nil {
		if err := e.h.HandleError(err); err != nil {
			r.fail(err)
			return
		}
	}
	r.complete(d)
}
