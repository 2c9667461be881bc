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

	"github.com/Fayti1703/qrules/reporter"
)

// ErrorKind classifies an [Error].
type ErrorKind int

const (
	// Syntax errors are malformed rules: the wrong token where a value,
	// property or type is expected.
	Syntax ErrorKind = iota + 1
	// Semantic errors are well-formed rules that break a rule of the
	// language, such as a value produced in the middle of a sequence.
	Semantic
	// Runtime errors happen while evaluating a rule.
	Runtime
	// Internal errors mean the loader or evaluator broke its own invariants.
	Internal
)

func (k ErrorKind) String() string {
	switch k {
	case Syntax:
		return "syntax"
	case Semantic:
		return "semantic"
	case Runtime:
		return "runtime"
	case Internal:
		return "internal"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

var (
	// ErrMissingVariable is the warning for a template referring to a
	// variable that is not bound.
	ErrMissingVariable = errors.New("unassigned variable")
	// ErrUnfinishedVariable is the warning for a template that ends inside
	// a variable reference.
	ErrUnfinishedVariable = errors.New("unfinished variable substitution")
)

// Error is an error loading or evaluating a rule.
type Error struct {
	Kind ErrorKind
	// The locale the rule belongs to, if known.
	Locale string
	// Where the rule is: "%." followed by the translation key and the path
	// inside the rule, like "%.greeting.cases[1;Inf[".
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Locale == "" && e.Path == "" {
		return fmt.Sprintf("qrules %v error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("qrules %v error in locale %q at %q: %v", e.Kind, e.Locale, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// GetLocale implements [reporter.ErrorWithPath].
func (e *Error) GetLocale() string {
	return e.Locale
}

// GetPath implements [reporter.ErrorWithPath].
func (e *Error) GetPath() string {
	return e.Path
}

var _ reporter.ErrorWithPath = (*Error)(nil)

// KindOf returns the kind of the first [Error] in err's chain, or zero if there
// is none.
func KindOf(err error) ErrorKind {
	var qerr *Error
	if errors.As(err, &qerr) {
		return qerr.Kind
	}
	return 0
}
