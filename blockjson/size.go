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
	"bytes"
	"io"
)

// MinBlockSize returns the smallest block buffer a [Tokenizer] needs to read
// the document in src: the longest token, counting the byte that ends a
// number. It reads all of src into memory.
func MinBlockSize(src io.Reader, opts Options) (int, error) {
	doc, err := io.ReadAll(src)
	if err != nil {
		return 0, err
	}

	size := 1
	t := NewTokenizer(bytes.NewReader(doc), make([]byte, len(doc)+1), opts)
	for {
		ok, err := t.ReadToken()
		if err != nil {
			return 0, err
		}
		if !ok {
			return size, nil
		}
		n := int(t.State().Position().Offset - t.Token().Pos.Offset)
		if t.Kind() == Number {
			n++
		}
		size = max(size, n)
	}
}
