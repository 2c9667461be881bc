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

// Package blockjson is an incremental tokenizer for JSON-syntax documents
// that reads through a fixed-size, caller-owned block buffer.
//
// A [Tokenizer] never holds more of its source than fits in its buffer. When
// the buffer runs dry it moves the unconsumed tail to the front, refills the
// rest from the source, and picks up where it left off. Because of this, the
// only hard limit on document size is that every individual token must fit in
// the buffer; [ErrValueTooLarge] is returned otherwise.
//
// Two helpers build on the tokenizer:
//
//   - A [Recorder] tees the bytes a tokenizer consumes into a replayable
//     buffer, across any number of refills.
//   - A [Joiner] stitches a tokenizer over replayed bytes to a tokenizer over
//     the live continuation, presenting one logical token stream.
//
// Together these allow a parser to look ahead through an object for a
// discriminating property and then re-read the object from its start, without
// ever building a document tree.
package blockjson
