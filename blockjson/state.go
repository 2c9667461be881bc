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

package blockjson

import "fmt"

// MaxDepth is the deepest container nesting a [Tokenizer] accepts.
const MaxDepth = 64

// mode is what the grammar allows next.
type mode byte

const (
	modeValue           mode = iota // The top-level value.
	modeValueOrEnd                  // Just after '['.
	modeNameOrEnd                   // Just after '{'.
	modeValueAfterComma             // An array element after ','.
	modeNameAfterComma              // A property after ','.
	modeValueAfterColon             // A property's value.
	modeCommaOrEnd                  // Just after a value inside a container.
	modeDone                        // The top-level value is complete.
)

type comment byte

const (
	commentNone comment = iota
	commentLine
	commentBlock
)

// Position is a location in a document.
type Position struct {
	Offset int64 // Byte offset from the start of the document.
	Line   int   // 1-based line number.
	Column int   // 1-based column, counted in bytes.
}

// String implements [fmt.Stringer].
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// State is the resumable grammar state of a [Tokenizer]: the open containers,
// what is expected next, and the position in the document.
//
// A State does not refer to any buffer. It may be attached to a new tokenizer
// reading from a different buffer and source, provided that source yields
// exactly the bytes that followed the point the State was taken at.
//
// The zero State is the start of a document.
type State struct {
	containers uint64 // Bit i is set if the container at depth i+1 is an object.
	depth      int
	mode       mode
	comment    comment
	star       bool // Inside a block comment, the previous byte was '*'.

	offset    int64
	lines     int
	lineStart int64
}

// Depth returns the number of containers open at this point.
func (s State) Depth() int {
	return s.depth
}

// Position returns the document position this state refers to.
func (s State) Position() Position {
	return Position{
		Offset: s.offset,
		Line:   s.lines + 1,
		Column: int(s.offset-s.lineStart) + 1,
	}
}

func (s State) inObject() bool {
	return s.depth > 0 && s.containers&(1<<(s.depth-1)) != 0
}

func (s *State) push(object bool) bool {
	if s.depth >= MaxDepth {
		return false
	}
	if object {
		s.containers |= 1 << s.depth
	} else {
		s.containers &^= 1 << s.depth
	}
	s.depth++
	if object {
		s.mode = modeNameOrEnd
	} else {
		s.mode = modeValueOrEnd
	}
	return true
}

func (s *State) pop() {
	s.depth--
	s.afterValue()
}

func (s *State) afterValue() {
	if s.depth == 0 {
		s.mode = modeDone
	} else {
		s.mode = modeCommaOrEnd
	}
}
