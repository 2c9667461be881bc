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

package qrules

import (
	"fmt"
	"maps"
)

// WarnFunc receives the warnings raised while evaluating a rule: name is the
// variable concerned, if any.
type WarnFunc func(key, name string, err error)

// Context is the state of one evaluation: the variables in scope and the
// value slot statements produce into and consume from.
//
// The slot holds at most one value. Producing a value while one is pending
// is an error, as is consuming from an empty slot.
type Context struct {
	// The translation key being evaluated.
	Key string
	// The locale the rule belongs to.
	Locale string

	vars  map[string]string
	owned bool // vars was allocated by this context and may be written.

	value string
	full  bool

	warn WarnFunc
}

// NewContext returns a context evaluating key with the given variables. The
// map is never modified; assignments go to a private copy. warn may be nil.
func NewContext(key, locale string, vars map[string]string, warn WarnFunc) *Context {
	return &Context{Key: key, Locale: locale, vars: vars, warn: warn}
}

// Variable returns the value bound to name. A missing variable is reported
// as an [ErrMissingVariable] warning.
func (c *Context) Variable(name string) (string, bool) {
	return c.lookup(name, false)
}

func (c *Context) lookup(name string, allowMissing bool) (string, bool) {
	v, ok := c.vars[name]
	if !ok && !allowMissing {
		c.Warn(name, ErrMissingVariable)
	}
	return v, ok
}

// SetVariable binds name to value, replacing any earlier binding.
func (c *Context) SetVariable(name, value string) {
	if !c.owned {
		c.vars = maps.Clone(c.vars)
		if c.vars == nil {
			c.vars = make(map[string]string, 1)
		}
		c.owned = true
	}
	c.vars[name] = value
}

// Provide puts v in the value slot.
func (c *Context) Provide(v string) error {
	if c.full {
		return c.errorf(Internal, "cannot provide a value here; a previous statement's value has not been consumed")
	}
	c.value, c.full = v, true
	return nil
}

// HasValue returns whether the value slot is full.
func (c *Context) HasValue() bool {
	return c.full
}

// Consume empties the value slot and returns what was in it.
func (c *Context) Consume() (string, error) {
	if !c.full {
		return "", c.errorf(Runtime, "cannot consume a value here; the previous statement did not provide one")
	}
	v := c.value
	c.value, c.full = "", false
	return v, nil
}

// Warn reports a warning about this evaluation.
func (c *Context) Warn(name string, err error) {
	if c.warn != nil {
		c.warn(c.Key, name, err)
	}
}

func (c *Context) errorf(kind ErrorKind, format string, args ...any) error {
	return &Error{
		Kind:   kind,
		Locale: c.Locale,
		Path:   "%." + c.Key,
		Err:    fmt.Errorf(format, args...),
	}
}
