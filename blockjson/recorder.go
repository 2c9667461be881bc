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

import "bytes"

// Recorder copies the raw bytes a [Tokenizer] consumes into a separate
// buffer, so that a range of the document can be tokenized a second time.
//
// Several recorders may be attached to one tokenizer at once. Each one
// survives refills of the block buffer independently.
type Recorder struct {
	t   *Tokenizer
	off int // Bytes of t.data already copied out.
	buf *bytes.Buffer
}

// Record starts recording at the end of the current token: the first byte
// recorded is the first byte after it.
func (t *Tokenizer) Record() *Recorder {
	r := &Recorder{t: t, off: t.pos, buf: getRecording()}
	t.recorders = append(t.recorders, r)
	return r
}

func (r *Recorder) tee(b []byte) {
	r.buf.Write(b)
}

// Finish stops recording and returns the bytes consumed since the recording
// began, up to the start of the tokenizer's current token. The current token
// itself, and anything the tokenizer skipped to reach it, is not included.
//
// The returned buffer belongs to the caller, who may hand it back with
// [ReleaseRecording] once done with it.
func (r *Recorder) Finish() (*bytes.Buffer, error) {
	if r.buf == nil || !r.t.detach(r) {
		return nil, ErrDetached
	}

	end := max(r.t.prev, r.off)
	if _, err := r.buf.Write(r.t.data[r.off:end]); err != nil {
		r.t.recorders = append(r.t.recorders, r)
		return nil, err
	}

	buf := r.buf
	r.buf = nil
	return buf, nil
}

// Cancel stops recording and discards what was recorded. Cancelling a
// finished or cancelled recorder does nothing.
func (r *Recorder) Cancel() {
	r.t.detach(r)
	if r.buf != nil {
		ReleaseRecording(r.buf)
		r.buf = nil
	}
}
