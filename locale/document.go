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
	"fmt"

	"github.com/Fayti1703/qrules/blockjson"
	"github.com/Fayti1703/qrules/qrules"
	"github.com/Fayti1703/qrules/reporter"
)

const rootPath = "%"

// document walks a locale document, compiling each translation key's rule as
// it is reached.
//
// Nested objects that are not statements are namespaces: their keys are
// joined to the enclosing key with dots, so {"menu": {"open": "Open"}}
// defines "menu.open".
type document struct {
	id     string
	t      *blockjson.Tokenizer
	h      *reporter.Handler
	blocks *blockjson.BlockPool

	meta      *Meta
	knownMeta bool
	metaCount int

	rules map[string]qrules.Statement
	keys  []string
}

func newDocument(id string, t *blockjson.Tokenizer, h *reporter.Handler, blocks *blockjson.BlockPool, meta *Meta) *document {
	return &document{
		id:        id,
		t:         t,
		h:         h,
		blocks:    blocks,
		meta:      meta,
		knownMeta: meta != nil,
		rules:     make(map[string]qrules.Statement),
	}
}

func (d *document) read() error {
	t := d.t
	if err := blockjson.Next(t); err != nil {
		return d.wrap(rootPath, err)
	}
	if t.Kind() != blockjson.StartObject {
		return reporter.Errorf(d.id, rootPath, "locale document must be an object, found %v", t.Kind())
	}

	// The prefixes of the enclosing namespaces.
	var outer []string
	prefix := ""
	advance := true
	for {
		if advance {
			if err := blockjson.Next(t); err != nil {
				return d.wrap(namespacePath(prefix), err)
			}
		}
		advance = true

		if t.Kind() == blockjson.EndObject {
			if len(outer) == 0 {
				return d.finish()
			}
			prefix, outer = outer[len(outer)-1], outer[:len(outer)-1]
			continue
		}

		name := t.Token().Value
		key := prefix + name
		path := "%." + key
		if err := blockjson.Next(t); err != nil {
			return d.wrap(path, err)
		}

		switch {
		case name == CommentKey:
			if err := blockjson.Skip(t); err != nil {
				return d.wrap(path, err)
			}

		case name == MetaKey && prefix == "":
			if err := d.readMeta(path); err != nil {
				return err
			}

		case name == "type" && prefix != "" && t.Kind() == blockjson.String:
			return &qrules.Error{
				Kind:   qrules.Syntax,
				Locale: d.id,
				Path:   path,
				Err:    errors.New("`type` must be the first property of a statement object; objects without it first are key namespaces"),
			}

		default:
			namespace, err := d.value(key)
			if err != nil {
				return err
			}
			if namespace {
				outer = append(outer, prefix)
				prefix = key + "."
				// The peek already moved onto the namespace's first
				// property.
				advance = false
			}
		}
	}
}

func (d *document) readMeta(path string) error {
	d.metaCount++
	if d.metaCount > 1 || d.knownMeta {
		if d.metaCount > 1 {
			d.h.HandleWarning(d.id, path, fmt.Errorf("more than one %s object, using the first", MetaKey))
		}
		if err := blockjson.Skip(d.t); err != nil {
			return d.wrap(path, err)
		}
		return nil
	}
	meta, err := readMeta(d.t, d.id, d.h)
	if err != nil {
		return err
	}
	d.meta = meta
	return nil
}

// value compiles the value of key that t is on. If the value is a namespace
// rather than a statement, it returns true, leaving t on the namespace's
// first property.
func (d *document) value(key string) (bool, error) {
	t := d.t
	path := "%." + key
	switch t.Kind() {
	case blockjson.String, blockjson.StartArray:
		stmt, err := qrules.LoadStatement(t, d.context(key))
		if err != nil {
			return false, d.wrap(path, err)
		}
		d.add(key, stmt)

	case blockjson.StartObject:
		p, err := qrules.PeekObject(t)
		if err != nil {
			return false, d.wrap(path, err)
		}
		if tok := p.Token(); tok.Kind != blockjson.PropertyName || tok.Value != "type" {
			p.Cancel()
			return true, nil
		}
		stmt, err := p.Load(d.context(key))
		if err != nil {
			return false, d.wrap(path, err)
		}
		d.add(key, stmt)

	default:
		d.h.HandleWarning(d.id, path, fmt.Errorf("unsupported value %v for a translation, ignoring", t.Kind()))
	}
	return false, nil
}

func (d *document) context(key string) *qrules.LoadContext {
	return qrules.NewLoadContext(key, d.id, d.h, d.blocks)
}

func (d *document) add(key string, stmt qrules.Statement) {
	if _, ok := d.rules[key]; ok {
		d.h.HandleWarning(d.id, "%."+key, errors.New("duplicate translation key, ignoring"))
		return
	}
	d.rules[key] = stmt
	d.keys = append(d.keys, key)
}

// finish checks the document ends after its top-level object.
func (d *document) finish() error {
	if _, err := d.t.ReadToken(); err != nil {
		return d.wrap(rootPath, err)
	}
	if d.metaCount == 0 {
		return reporter.Errorf(d.id, rootPath, "locale document has no %s object", MetaKey)
	}
	return nil
}

// wrap attaches path to errors that carry no location of their own.
func (d *document) wrap(path string, err error) error {
	var (
		ewp    reporter.ErrorWithPath
		synErr *blockjson.SyntaxError
	)
	switch {
	case errors.As(err, &ewp):
		return err
	case errors.As(err, &synErr), errors.Is(err, blockjson.ErrUnexpectedEnd):
		return &qrules.Error{Kind: qrules.Syntax, Locale: d.id, Path: path, Err: err}
	default:
		return reporter.Error(d.id, path, err)
	}
}

func namespacePath(prefix string) string {
	if prefix == "" {
		return rootPath
	}
	return "%." + prefix[:len(prefix)-1]
}

// findMeta reads a document up to its "$meta" object and returns the
// metadata.
func findMeta(t *blockjson.Tokenizer, id string, h *reporter.Handler) (*Meta, error) {
	d := &document{id: id, t: t, h: h}
	if err := blockjson.Next(t); err != nil {
		return nil, d.wrap(rootPath, err)
	}
	if t.Kind() != blockjson.StartObject {
		return nil, reporter.Errorf(id, rootPath, "locale document must be an object, found %v", t.Kind())
	}
	for {
		if err := blockjson.Next(t); err != nil {
			return nil, d.wrap(rootPath, err)
		}
		if t.Kind() == blockjson.EndObject {
			return nil, reporter.Errorf(id, rootPath, "locale document has no %s object", MetaKey)
		}
		name := t.Token().Value
		if err := blockjson.Next(t); err != nil {
			return nil, d.wrap("%."+name, err)
		}
		if name == MetaKey {
			return readMeta(t, id, h)
		}
		if err := blockjson.Skip(t); err != nil {
			return nil, d.wrap("%."+name, err)
		}
	}
}
