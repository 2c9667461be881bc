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
	"slices"
	"sync"

	"github.com/segmentio/fasthash/fnv1a"

	"github.com/Fayti1703/qrules/qrules"
	"github.com/Fayti1703/qrules/reporter"
)

// ErrMissingKey is the warning for a translation of a key the locale has no
// rule for.
var ErrMissingKey = errors.New("unassigned translation key")

// Data is a loaded locale: the compiled rule of each translation key. It is
// immutable and safe for concurrent use.
type Data struct {
	meta   *Meta
	rules  map[string]qrules.Statement
	keys   []string
	digest []byte

	// Warnings already reported, so repeated translations log each problem
	// once.
	mu     sync.Mutex
	warned map[uint64]struct{}
	h      *reporter.Handler
}

// Meta returns the locale's metadata.
func (d *Data) Meta() *Meta {
	return d.meta
}

// Keys returns the translation keys in document order.
func (d *Data) Keys() []string {
	return slices.Clone(d.keys)
}

// Statement returns the compiled rule of key.
func (d *Data) Statement(key string) (qrules.Statement, bool) {
	stmt, ok := d.rules[key]
	return stmt, ok
}

// Digest returns the BLAKE3 hash of the locale document.
func (d *Data) Digest() []byte {
	return slices.Clone(d.digest)
}

// HasTranslation returns whether the locale has a rule for key.
func (d *Data) HasTranslation(key string) bool {
	_, ok := d.rules[key]
	return ok
}

// Translate evaluates the rule of key with the given variables.
//
// A key without a rule translates to itself, and a missing variable is left
// in place as %name%; both are reported as warnings, once per key and
// variable. If the rule fails, Translate returns the key along with the error.
func (d *Data) Translate(key string, vars map[string]string) (string, error) {
	stmt, ok := d.rules[key]
	if !ok {
		d.warn(key, "", ErrMissingKey)
		return key, nil
	}

	c := qrules.NewContext(key, d.meta.ID, vars, d.warn)
	if err := stmt.Run(c); err != nil {
		return key, err
	}
	if !c.HasValue() {
		// The rule only assigned variables.
		return "", nil
	}
	return c.Consume()
}

func (d *Data) warn(key, name string, err error) {
	h := fnv1a.AddString64(fnv1a.HashString64(key), "\x00"+name+"\x00"+err.Error())

	d.mu.Lock()
	_, seen := d.warned[h]
	if !seen {
		d.warned[h] = struct{}{}
	}
	d.mu.Unlock()
	if seen {
		return
	}

	if name != "" {
		err = fmt.Errorf("%w %q", err, name)
	}
	d.h.HandleWarningWithPath(reporter.Error(d.meta.ID, "%."+key, err))
}
