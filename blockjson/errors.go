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

import (
	"errors"
	"fmt"
)

var (
	// ErrValueTooLarge is returned when a single token does not fit in a
	// tokenizer's block buffer. This is a configuration problem: use a larger
	// buffer or a smaller value.
	ErrValueTooLarge = errors.New("blockjson: value exceeds the bounds of the block buffer")

	// ErrUnexpectedEnd is returned by [Next] and [Skip] when the token stream
	// ends where more tokens are required.
	ErrUnexpectedEnd = errors.New("blockjson: unexpected end of JSON data")

	// ErrDetached is returned when finishing a [Recorder] that is no longer
	// attached to its tokenizer.
	ErrDetached = errors.New("blockjson: recorder is not attached to this tokenizer")

	// errNeedMore is the scanner's signal that the data ends mid-token.
	errNeedMore = errors.New("blockjson: need more data")
)

// SyntaxError is a malformed document.
type SyntaxError struct {
	Pos Position
	Msg string
}

// Error implements [error].
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %v (offset %d): %s", e.Pos, e.Pos.Offset, e.Msg)
}
