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
	"errors"
	"fmt"
	"strconv"

	"github.com/Fayti1703/qrules/blockjson"
	"github.com/Fayti1703/qrules/reporter"
)

var defaultBlocks blockjson.BlockPool

// LoadContext is the state of compiling the rule of one translation key. It
// tracks the path to the value being compiled, for diagnostics.
type LoadContext struct {
	// The translation key whose rule is being compiled.
	Key string
	// The locale being loaded.
	Locale string

	path  string
	stack []string

	handler *reporter.Handler
	blocks  *blockjson.BlockPool
}

// NewLoadContext returns a context for compiling the rule of key. Warnings go
// to h, or are logged if h is nil. Block buffers for replaying recorded
// objects come from blocks, or from a shared pool if it is nil.
func NewLoadContext(key, locale string, h *reporter.Handler, blocks *blockjson.BlockPool) *LoadContext {
	if h == nil {
		h = reporter.NewHandler(nil)
	}
	if blocks == nil {
		blocks = &defaultBlocks
	}
	return &LoadContext{
		Key:     key,
		Locale:  locale,
		path:    "%." + key,
		handler: h,
		blocks:  blocks,
	}
}

// Path returns the path to the current value.
func (lc *LoadContext) Path() string {
	return lc.path
}

// EnterProperty descends into the named property.
func (lc *LoadContext) EnterProperty(name string) {
	lc.stack = append(lc.stack, lc.path)
	lc.path += "." + name
}

// EnterItem descends into the array element at index.
func (lc *LoadContext) EnterItem(index int) {
	lc.stack = append(lc.stack, lc.path)
	lc.path += "[" + strconv.Itoa(index) + "]"
}

// Exit undoes the last EnterProperty or EnterItem.
func (lc *LoadContext) Exit() {
	n := len(lc.stack)
	if n == 0 {
		return
	}
	lc.path = lc.stack[n-1]
	lc.stack = lc.stack[:n-1]
}

func (lc *LoadContext) depth() int {
	return len(lc.stack)
}

// Errorf returns an error of the given kind at the current path.
func (lc *LoadContext) Errorf(kind ErrorKind, format string, args ...any) error {
	return lc.ErrorAt(kind, "", format, args...)
}

// ErrorAt returns an error of the given kind at the current path extended by
// suffix.
func (lc *LoadContext) ErrorAt(kind ErrorKind, suffix, format string, args ...any) error {
	return &Error{
		Kind:   kind,
		Locale: lc.Locale,
		Path:   lc.path + suffix,
		Err:    fmt.Errorf(format, args...),
	}
}

// Warnf reports a warning at the current path.
func (lc *LoadContext) Warnf(format string, args ...any) {
	lc.handler.HandleWarning(lc.Locale, lc.path, fmt.Errorf(format, args...))
}

// wrap attaches the current path to errors from the token stream.
func (lc *LoadContext) wrap(err error) error {
	var (
		qerr   *Error
		synErr *blockjson.SyntaxError
	)
	switch {
	case err == nil, errors.As(err, &qerr):
		return err
	case errors.As(err, &synErr), errors.Is(err, blockjson.ErrUnexpectedEnd):
		return &Error{Kind: Syntax, Locale: lc.Locale, Path: lc.path, Err: err}
	default:
		return err
	}
}
