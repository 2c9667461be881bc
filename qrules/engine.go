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
	"bytes"

	"github.com/Fayti1703/qrules/blockjson"
)

// frame is one statement under construction.
type frame struct {
	partial Partial

	// The object's bytes up to its "type", to be replayed from start, and the
	// buffer the replay is read through.
	recording *bytes.Buffer
	start     blockjson.State
	block     []byte
	replay    *blockjson.Tokenizer

	// The tokenizer that continues where the recording ends. It is shared
	// with the enclosing frame, so reading from it moves that frame along.
	next *blockjson.Tokenizer

	joiner *blockjson.Joiner

	// The path depth when the frame was pushed.
	depth int
}

func (f *frame) open(blocks *blockjson.BlockPool) error {
	if f.recording != nil {
		opts := f.next.Options()
		opts.Fragment = true
		f.block = blocks.Rent(f.recording.Len())
		f.replay = blockjson.NewTokenizerAt(bytes.NewReader(f.recording.Bytes()), f.block, f.start, opts)
	}
	j, err := blockjson.NewJoiner(f.replay, f.next)
	if err != nil {
		return err
	}
	f.joiner = j
	return nil
}

// release returns the frame's buffers. The replay must not be read again.
func (f *frame) release(blocks *blockjson.BlockPool) {
	if f.block != nil {
		blocks.Return(f.block)
		f.block = nil
	}
	if f.recording != nil {
		blockjson.ReleaseRecording(f.recording)
		f.recording = nil
	}
}

// LoadStatement compiles the statement t is positioned on: a string, an array
// or an object with a "type".
//
// On success, t is left on the last token of the statement, so the caller's
// next ReadToken moves past it.
func LoadStatement(t *blockjson.Tokenizer, lc *LoadContext) (Statement, error) {
	switch t.Kind() {
	case blockjson.String:
		return NewLiteral(t.Token().Value), nil

	case blockjson.StartArray:
		if err := blockjson.Next(t); err != nil {
			return nil, lc.wrap(err)
		}
		return lc.run(&frame{partial: &sequencePartial{}, next: t, depth: lc.depth()})

	case blockjson.StartObject:
		p, err := PeekObject(t)
		if err != nil {
			return nil, lc.wrap(err)
		}
		return p.Load(lc)

	default:
		return nil, lc.Errorf(Syntax, "cannot load a statement here (string, array or object required), found %v", t.Kind())
	}
}

// run drives frames until the first one is complete.
func (lc *LoadContext) run(first *frame) (Statement, error) {
	stack := []*frame{first}
	defer func() {
		for _, f := range stack {
			f.release(lc.blocks)
		}
	}()

	var result Statement
	for {
		f := stack[len(stack)-1]
		if f.joiner == nil {
			if err := f.open(lc.blocks); err != nil {
				return nil, lc.wrap(err)
			}
		}

		stmt, err := f.partial.Continue(f.joiner, lc, result)
		if err != nil {
			return nil, lc.wrap(err)
		}
		result = nil

		if f.replay != nil && !f.joiner.OnReplay() {
			// The replay is drained: nothing will read from it again.
			f.release(lc.blocks)
		}

		if stmt != nil {
			if lc.depth() != f.depth {
				return nil, lc.Errorf(Internal, "statement finished at path depth %d, expected %d", lc.depth(), f.depth)
			}
			f.release(lc.blocks)
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				// The caller moves past the closing token.
				return stmt, nil
			}
			if err := blockjson.Next(stack[len(stack)-1].joiner); err != nil {
				return nil, lc.wrap(err)
			}
			result = stmt
			continue
		}

		j := f.joiner
		switch j.Kind() {
		case blockjson.String:
			// Strings never need a frame.
			result = NewLiteral(j.Token().Value)
			if err := blockjson.Next(j); err != nil {
				return nil, lc.wrap(err)
			}

		case blockjson.StartArray:
			if err := blockjson.Next(j); err != nil {
				return nil, lc.wrap(err)
			}
			stack = append(stack, &frame{
				partial: &sequencePartial{},
				next:    j.Current(),
				depth:   lc.depth(),
			})

		case blockjson.StartObject:
			p, err := PeekObject(j.Current())
			if err != nil {
				return nil, lc.wrap(err)
			}
			child, err := p.frame(lc)
			if err != nil {
				return nil, err
			}
			child.depth = lc.depth()
			stack = append(stack, child)

		default:
			return nil, lc.Errorf(Syntax, "cannot load a statement here (string, array or object required), found %v", j.Kind())
		}
	}
}

// ObjectPeek is an object being scanned for its "type" property. Its bytes
// are recorded as it is scanned, so that it can be compiled from its start.
type ObjectPeek struct {
	t     *blockjson.Tokenizer
	start blockjson.State
	rec   *blockjson.Recorder
}

// PeekObject begins peeking into the object t is positioned on. It moves t to
// the object's first property, or to its end if it is empty.
func PeekObject(t *blockjson.Tokenizer) (*ObjectPeek, error) {
	p := &ObjectPeek{t: t, start: t.State(), rec: t.Record()}
	if err := blockjson.Next(t); err != nil {
		p.Cancel()
		return nil, err
	}
	return p, nil
}

// Token returns the token the peek is on.
func (p *ObjectPeek) Token() blockjson.Token {
	return p.t.Token()
}

// Cancel abandons the peek. The tokenizer stays where it is.
func (p *ObjectPeek) Cancel() {
	p.rec.Cancel()
}

// Load compiles the object as a statement. t is left on the object's closing
// token, as with [LoadStatement].
func (p *ObjectPeek) Load(lc *LoadContext) (Statement, error) {
	f, err := p.frame(lc)
	if err != nil {
		return nil, err
	}
	f.depth = lc.depth()
	return lc.run(f)
}

// frame finds the object's "type" and returns the frame that builds it.
func (p *ObjectPeek) frame(lc *LoadContext) (f *frame, err error) {
	defer func() {
		if err != nil {
			p.Cancel()
			err = lc.wrap(err)
		}
	}()

	t := p.t
	for {
		switch t.Kind() {
		case blockjson.EndObject:
			return nil, lc.Errorf(Syntax, "statement is missing the `type` key")

		case blockjson.PropertyName:
			if t.Token().Value != "type" {
				if err := blockjson.Skip(t); err != nil {
					return nil, err
				}
				if err := blockjson.Next(t); err != nil {
					return nil, err
				}
				continue
			}

			if err := blockjson.Next(t); err != nil {
				return nil, err
			}
			if t.Kind() != blockjson.String {
				return nil, lc.ErrorAt(Syntax, ".type", "statement `type` must be a string")
			}
			name := t.Token().Value
			newPartial, ok := kinds[name]
			if !ok {
				return nil, lc.ErrorAt(Syntax, ".type", "unknown statement type %q (known types: %v)", name, Kinds())
			}

			// Step onto the token after the type, so the recording stops
			// right after it and the continuation resumes right there.
			if err := blockjson.Next(t); err != nil {
				return nil, err
			}
			rec, err := p.rec.Finish()
			if err != nil {
				return nil, err
			}
			return &frame{
				partial:   newPartial(),
				recording: rec,
				start:     p.start,
				next:      t,
			}, nil

		default:
			return nil, lc.Errorf(Internal, "unexpected %v in object", t.Kind())
		}
	}
}
