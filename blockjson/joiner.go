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

// Joiner serves the tokens of two tokenizers as one stream: first all the
// tokens of a finite replay, then the tokens of a continuation.
//
// The switch from the first tokenizer to the second happens once, the moment
// the first one is exhausted, and is never undone.
type Joiner struct {
	first  *Tokenizer
	second *Tokenizer
	replay bool
}

// NewJoiner joins first and second. first may be nil, in which case the
// joiner only forwards second.
//
// A joiner always starts on a token: a tokenizer that has not yet read one is
// advanced once.
func NewJoiner(first, second *Tokenizer) (*Joiner, error) {
	j := &Joiner{first: first, second: second, replay: first != nil}
	if !j.replay {
		return j, j.bump()
	}

	if first.Kind() != None {
		return j, nil
	}
	ok, err := first.ReadToken()
	if err != nil {
		return nil, err
	}
	if !ok {
		j.replay = false
		return j, j.bump()
	}
	return j, nil
}

func (j *Joiner) bump() error {
	if j.second.Kind() != None {
		return nil
	}
	_, err := j.second.ReadToken()
	return err
}

// ReadToken advances to the next token, returning false when both
// tokenizers are exhausted.
func (j *Joiner) ReadToken() (bool, error) {
	if !j.replay {
		return j.second.ReadToken()
	}

	ok, err := j.first.ReadToken()
	if err != nil || ok {
		return ok, err
	}

	j.replay = false
	if err := j.bump(); err != nil {
		return false, err
	}
	return j.second.Kind() != None, nil
}

// Token returns the current token.
func (j *Joiner) Token() Token {
	return j.Current().Token()
}

// Kind returns the kind of the current token.
func (j *Joiner) Kind() Kind {
	return j.Current().Kind()
}

// Current returns the tokenizer the current token came from.
func (j *Joiner) Current() *Tokenizer {
	if j.replay {
		return j.first
	}
	return j.second
}

// OnReplay returns whether tokens are still being served from the first
// tokenizer.
func (j *Joiner) OnReplay() bool {
	return j.replay
}
