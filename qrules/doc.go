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

// Package qrules implements QRules, the small rule language used by locale
// documents to pick grammatical forms and substitute variables.
//
// A rule is one of four statements:
//
//   - a [Literal], a string template such as "Hello %name%!";
//   - a [Sequence], written as a JSON array, running its elements in order;
//   - an [Assign], {"type": "set", "var": ..., "to": ...}, binding a variable;
//   - an [IntSwitch], {"type": "int-switch", "on": ..., "cases": {...}},
//     choosing a case by integer ranges.
//
// Statements are compiled straight from a [blockjson.Tokenizer] by
// [LoadStatement], without building a document tree and without recursion:
// nested statements are tracked on an explicit stack of frames. An object's
// "type" may appear after other properties, so objects are first scanned for
// it while their bytes are recorded, and the recording is then replayed to
// the builder for that type.
//
// Compiled statements are immutable and safe for concurrent use. Each
// evaluation runs against its own [Context].
package qrules
