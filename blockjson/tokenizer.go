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
	"io"
	"slices"
)

// ErrBufferMismatch is returned by [Resume] when a checkpoint is resumed
// against a buffer other than the one it was taken from.
var ErrBufferMismatch = errors.New("blockjson: checkpoint resumed against a different buffer")

type stage byte

const (
	stageInit    stage = iota // Nothing has been read from the source.
	stageReading              // The source may have more bytes.
	stageFinal                // The source is exhausted; the buffer holds the last chunk.
	stageClosed               // The last token has been served.
)

// Tokenizer is a pull tokenizer that reads a document from an [io.Reader]
// through a fixed, caller-owned buffer.
//
// The buffer is reused for every refill and never grows: a single token that
// does not fit in it fails with [ErrValueTooLarge]. The caller must not use
// the buffer while the tokenizer is in use.
//
// A Tokenizer starts before the first token; call [Tokenizer.ReadToken] to
// move to it.
type Tokenizer struct {
	src  io.Reader
	buf  []byte
	data []byte // The valid part of buf.
	pos  int    // Bytes of data consumed.
	prev int    // Bytes of data consumed before the current token was scanned.

	st    State
	opts  Options
	stage stage
	eof   bool

	tok Token
	err error

	recorders []*Recorder
}

// NewTokenizer returns a tokenizer reading a whole document from src, using
// buf as its block buffer.
func NewTokenizer(src io.Reader, buf []byte, opts Options) *Tokenizer {
	return NewTokenizerAt(src, buf, State{}, opts)
}

// NewTokenizerAt returns a tokenizer that continues a document from st. The
// source must yield the bytes that followed the point st was taken at.
func NewTokenizerAt(src io.Reader, buf []byte, st State, opts Options) *Tokenizer {
	return &Tokenizer{
		src:  src,
		buf:  buf,
		data: buf[:0],
		st:   st,
		opts: opts,
	}
}

// ReadToken advances to the next token.
//
// It returns false once the document is exhausted; the tokenizer is then
// closed and [Tokenizer.Kind] reports [None]. Errors are sticky: once
// ReadToken fails, every later call fails the same way.
func (t *Tokenizer) ReadToken() (bool, error) {
	if t.err != nil {
		return false, t.err
	}
	if t.stage == stageClosed {
		return false, nil
	}

	t.prev = t.pos
	for {
		if t.stage == stageInit {
			if err := t.refill(); err != nil {
				return false, t.fail(err)
			}
		}

		tok, n, st, err := scan(t.data[t.pos:], t.st, t.eof, &t.opts)
		t.pos += n
		t.st = st

		switch err {
		case nil:
			t.tok = tok
			return true, nil

		case io.EOF:
			t.tok = Token{}
			t.stage = stageClosed
			return false, nil

		case errNeedMore:
			if err := t.refill(); err != nil {
				return false, t.fail(err)
			}

		default:
			return false, t.fail(err)
		}
	}
}

func (t *Tokenizer) fail(err error) error {
	t.err = err
	t.tok = Token{}
	return err
}

// refill moves the unconsumed tail of the buffer to the front and fills the
// rest from the source.
func (t *Tokenizer) refill() error {
	tail := len(t.data) - t.pos
	if t.stage != stageInit && tail == len(t.buf) {
		return ErrValueTooLarge
	}

	for _, r := range t.recorders {
		r.tee(t.data[r.off:t.pos])
		r.off = 0
	}

	copy(t.buf, t.data[t.pos:])
	t.pos, t.prev = 0, 0

	n, err := io.ReadFull(t.src, t.buf[tail:])
	t.data = t.buf[:tail+n]
	switch {
	case err == io.EOF, err == io.ErrUnexpectedEOF:
		t.eof = true
		t.stage = stageFinal
	case err != nil:
		return err
	case tail == len(t.buf):
		// An empty buffer reads nothing and can never make progress.
		return ErrValueTooLarge
	default:
		t.stage = stageReading
	}
	return nil
}

// Token returns the current token.
func (t *Tokenizer) Token() Token {
	return t.tok
}

// Kind returns the kind of the current token.
func (t *Tokenizer) Kind() Kind {
	return t.tok.Kind
}

// State returns the grammar state after the current token.
func (t *Tokenizer) State() State {
	return t.st
}

// Closed returns whether the document has been exhausted.
func (t *Tokenizer) Closed() bool {
	return t.stage == stageClosed
}

// Options returns the options this tokenizer was created with.
func (t *Tokenizer) Options() Options {
	return t.opts
}

// Checkpoint is a saved tokenizer position. It is only meaningful together
// with the buffer it was taken from and the source the tokenizer was reading.
type Checkpoint struct {
	tok   Token
	st    State
	buf   []byte
	start int
	end   int
	stage stage
	eof   bool
}

// State returns the grammar state saved in the checkpoint.
func (c Checkpoint) State() State {
	return c.st
}

// Checkpoint saves the tokenizer's position.
func (t *Tokenizer) Checkpoint() Checkpoint {
	return Checkpoint{
		tok:   t.tok,
		st:    t.st,
		buf:   t.buf,
		start: t.pos,
		end:   len(t.data),
		stage: t.stage,
		eof:   t.eof,
	}
}

// Resume rebuilds a tokenizer from a checkpoint. buf must be the buffer the
// checkpoint was taken with, still holding the same bytes, and src must
// continue where the checkpointed tokenizer's source left off.
func Resume(src io.Reader, buf []byte, cp Checkpoint, opts Options) (*Tokenizer, error) {
	if !sameBuffer(buf, cp.buf) {
		return nil, ErrBufferMismatch
	}
	return &Tokenizer{
		src:   src,
		buf:   buf,
		data:  buf[:cp.end],
		pos:   cp.start,
		prev:  cp.start,
		st:    cp.st,
		opts:  opts,
		stage: cp.stage,
		eof:   cp.eof,
		tok:   cp.tok,
	}, nil
}

func sameBuffer(a, b []byte) bool {
	if len(a) != len(b) || cap(a) != cap(b) {
		return false
	}
	return cap(a) == 0 || &a[:1][0] == &b[:1][0]
}

func (t *Tokenizer) detach(r *Recorder) bool {
	i := slices.Index(t.recorders, r)
	if i < 0 {
		return false
	}
	t.recorders = slices.Delete(t.recorders, i, i+1)
	return true
}
