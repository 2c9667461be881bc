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
	"maps"
	"slices"

	"github.com/Fayti1703/qrules/blockjson"
)

// Statement is a compiled rule.
type Statement interface {
	// Run evaluates the statement against c.
	Run(c *Context) error
	// ProducesValue returns whether Run leaves a value in c's value slot.
	ProducesValue() bool
}

// Partial builds one statement from a token stream, one step at a time.
//
// Continue is first called with j on the first token inside the statement:
// the first property of an object, or the first element of an array. It
// returns nil to ask for a nested statement, leaving j on the first token of
// that statement; the next call then receives the nested statement as prev,
// with j on the token after it. Once the statement is complete, Continue
// returns it, leaving j on the statement's closing token.
type Partial interface {
	Continue(j *blockjson.Joiner, lc *LoadContext, prev Statement) (Statement, error)
}

// CommentKey is the property ignored wherever it appears in a document.
const CommentKey = "__comment"

// The "type" of each object statement.
var kinds = map[string]func() Partial{
	"set":        func() Partial { return &assignPartial{} },
	"int-switch": func() Partial { return &intSwitchPartial{} },
}

// Kinds returns the names of the object statement types, sorted.
func Kinds() []string {
	return slices.Sorted(maps.Keys(kinds))
}
