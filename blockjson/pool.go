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
	"sync"
)

// DefaultBlockSize is the block buffer size used when none is configured.
const DefaultBlockSize = 4096

// Recordings larger than this are not kept for reuse.
const maxPooledRecording = 64 << 10

var recordings = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

func getRecording() *bytes.Buffer {
	buf := recordings.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// ReleaseRecording hands a buffer returned by [Recorder.Finish] back for
// reuse. The buffer must not be used afterwards.
func ReleaseRecording(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > maxPooledRecording {
		return
	}
	recordings.Put(buf)
}

// BlockPool hands out block buffers of a fixed maximum size.
//
// The zero value is ready to use and rents buffers of [DefaultBlockSize].
type BlockPool struct {
	// The capacity of pooled buffers. Zero means DefaultBlockSize.
	Size int

	pool sync.Pool
}

func (p *BlockPool) size() int {
	if p.Size <= 0 {
		return DefaultBlockSize
	}
	return p.Size
}

// Rent returns a buffer of length min(n, Size). The contents are undefined.
func (p *BlockPool) Rent(n int) []byte {
	size := p.size()
	n = min(max(n, 1), size)
	if b, ok := p.pool.Get().(*[]byte); ok && cap(*b) >= size {
		return (*b)[:n]
	}
	return make([]byte, n, size)
}

// Return gives a buffer obtained from [BlockPool.Rent] back to the pool.
func (p *BlockPool) Return(b []byte) {
	if cap(b) != p.size() {
		return
	}
	b = b[:cap(b)]
	p.pool.Put(&b)
}
