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

// Reader is a stream of tokens. Both [Tokenizer] and [Joiner] are Readers.
type Reader interface {
	ReadToken() (bool, error)
	Token() Token
	Kind() Kind
}

var (
	_ Reader = (*Tokenizer)(nil)
	_ Reader = (*Joiner)(nil)
)

// Next advances r to its next token. Running out of tokens is an error:
// [ErrUnexpectedEnd].
func Next(r Reader) error {
	ok, err := r.ReadToken()
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnexpectedEnd
	}
	return nil
}

// Skip moves past the value r is positioned on, leaving r on the last token
// of that value. If r is on a property name, the property's value is skipped.
// Scalars are a single token, so skipping one does not move r at all.
func Skip(r Reader) error {
	if r.Kind() == PropertyName {
		if err := Next(r); err != nil {
			return err
		}
	}

	switch r.Kind() {
	case StartObject, StartArray:
	default:
		return nil
	}

	depth := r.Token().Depth
	for {
		if err := Next(r); err != nil {
			return err
		}
		switch r.Kind() {
		case EndObject, EndArray:
			if r.Token().Depth == depth {
				return nil
			}
		}
	}
}
