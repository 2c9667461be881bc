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
	"fmt"
	"io"
	"unicode/utf16"
	"unicode/utf8"
)

// Options configures the dialect a [Tokenizer] accepts.
type Options struct {
	// Accept a comma after the last element of an array or object.
	AllowTrailingCommas bool
	// Skip // line comments and /* block comments */.
	AllowComments bool
	// Stop silently when the source is exhausted, even if the document is
	// incomplete. This is how recorded byte ranges are replayed.
	Fragment bool
}

// scanner performs a single tokenization step over a window of data.
//
// It tracks a commit point (mark) separately from its cursor: when the data
// ends in the middle of a token, everything up to the mark is reported as
// consumed and the rest must be presented again after a refill.
type scanner struct {
	data  []byte
	i     int
	final bool
	opts  *Options
	st    State
	base  int64

	markI  int
	markSt State
}

// scan reads one token from data, starting in state st.
//
// On success it returns the token, the number of bytes consumed and the state
// after the token. If data ends before a token is complete and final is false,
// it returns errNeedMore along with the bytes of whitespace and comments that
// could be consumed regardless. If final is true and the document is
// complete, it returns io.EOF.
func scan(data []byte, st State, final bool, opts *Options) (Token, int, State, error) {
	s := scanner{data: data, final: final, opts: opts, st: st, base: st.offset}
	s.mark()

	tok, err := s.token()
	switch err {
	case nil:
		s.st.offset = s.base + int64(s.i)
		return tok, s.i, s.st, nil
	case errNeedMore, io.EOF:
		st := s.markSt
		st.offset = s.base + int64(s.markI)
		return Token{}, s.markI, st, err
	default:
		return Token{}, 0, st, err
	}
}

func (s *scanner) mark() {
	s.markI = s.i
	s.markSt = s.st
}

func (s *scanner) needMore(commit bool) error {
	if commit {
		s.mark()
	}
	return errNeedMore
}

func (s *scanner) pos(i int) Position {
	offset := s.base + int64(i)
	return Position{
		Offset: offset,
		Line:   s.st.lines + 1,
		Column: int(offset-s.st.lineStart) + 1,
	}
}

func (s *scanner) errorf(i int, format string, args ...any) error {
	return &SyntaxError{Pos: s.pos(i), Msg: fmt.Sprintf(format, args...)}
}

func (s *scanner) newline(i int) {
	s.st.lines++
	s.st.lineStart = s.base + int64(i) + 1
}

// token scans whitespace, separators and one token.
func (s *scanner) token() (Token, error) {
	for {
		if err := s.skip(true); err != nil {
			return Token{}, err
		}
		s.mark()

		if s.i == len(s.data) {
			if !s.final {
				return Token{}, errNeedMore
			}
			if s.st.mode == modeDone || s.opts.Fragment {
				return Token{}, io.EOF
			}
			return Token{}, s.errorf(s.i, "unexpected end of input")
		}

		c := s.data[s.i]
		switch s.st.mode {
		case modeDone:
			return Token{}, s.errorf(s.i, "unexpected %s after top-level value", describe(c))

		case modeCommaOrEnd:
			object := s.st.inObject()
			switch {
			case c == ',':
				s.i++
				if object {
					s.st.mode = modeNameAfterComma
				} else {
					s.st.mode = modeValueAfterComma
				}
				continue
			case c == '}' && object, c == ']' && !object:
				return s.end()
			}
			if object {
				return Token{}, s.errorf(s.i, "expected ',' or '}', found %s", describe(c))
			}
			return Token{}, s.errorf(s.i, "expected ',' or ']', found %s", describe(c))

		case modeNameOrEnd, modeNameAfterComma:
			if c == '}' && (s.st.mode == modeNameOrEnd || s.opts.AllowTrailingCommas) {
				return s.end()
			}
			if c == '"' {
				return s.name()
			}
			return Token{}, s.errorf(s.i, "expected property name or '}', found %s", describe(c))

		case modeValueOrEnd, modeValueAfterComma:
			if c == ']' && (s.st.mode == modeValueOrEnd || s.opts.AllowTrailingCommas) {
				return s.end()
			}
			return s.value()

		default:
			return s.value()
		}
	}
}

// skip consumes whitespace and comments. If commit is set, running out of
// data commits everything skipped so far.
func (s *scanner) skip(commit bool) error {
	for {
		switch s.st.comment {
		case commentLine:
			k := bytes.IndexByte(s.data[s.i:], '\n')
			if k < 0 {
				s.i = len(s.data)
				if s.final {
					s.st.comment = commentNone
					return nil
				}
				return s.needMore(commit)
			}
			s.i += k
			s.st.comment = commentNone
			continue

		case commentBlock:
			for s.i < len(s.data) && s.st.comment == commentBlock {
				c := s.data[s.i]
				if c == '\n' {
					s.newline(s.i)
				}
				s.i++
				if s.st.star && c == '/' {
					s.st.comment = commentNone
					s.st.star = false
				} else {
					s.st.star = c == '*'
				}
			}
			if s.st.comment == commentBlock {
				if s.final && s.opts.Fragment {
					return nil
				}
				if s.final {
					return s.errorf(s.i, "unterminated block comment")
				}
				return s.needMore(commit)
			}
			continue
		}

		if s.i >= len(s.data) {
			return nil
		}
		switch s.data[s.i] {
		case ' ', '\t', '\r':
			s.i++
		case '\n':
			s.newline(s.i)
			s.i++
		case '/':
			if !s.opts.AllowComments {
				return s.errorf(s.i, "unexpected '/' (comments are not allowed)")
			}
			if s.i+1 >= len(s.data) {
				if s.final {
					return s.errorf(s.i, "invalid character '/'")
				}
				return s.needMore(commit)
			}
			switch s.data[s.i+1] {
			case '/':
				s.st.comment = commentLine
			case '*':
				s.st.comment = commentBlock
				s.st.star = false
			default:
				return s.errorf(s.i, "invalid character '/'")
			}
			s.i += 2
		default:
			return nil
		}
	}
}

func (s *scanner) end() (Token, error) {
	kind := EndObject
	if s.data[s.i] == ']' {
		kind = EndArray
	}
	pos := s.pos(s.i)
	s.i++
	s.st.pop()
	return Token{Kind: kind, Depth: s.st.depth, Pos: pos}, nil
}

func (s *scanner) name() (Token, error) {
	pos := s.pos(s.i)
	str, err := s.string()
	if err != nil {
		return Token{}, err
	}

	// The colon belongs to the property name; anything skipped on the way is
	// only committed together with it.
	if err := s.skip(false); err != nil {
		return Token{}, err
	}
	if s.i == len(s.data) {
		if !s.final {
			return Token{}, errNeedMore
		}
		return Token{}, s.errorf(s.i, "unexpected end of input after property name")
	}
	if c := s.data[s.i]; c != ':' {
		return Token{}, s.errorf(s.i, "expected ':' after property name, found %s", describe(c))
	}
	s.i++

	s.st.mode = modeValueAfterColon
	return Token{Kind: PropertyName, Value: str, Depth: s.st.depth, Pos: pos}, nil
}

func (s *scanner) value() (Token, error) {
	pos := s.pos(s.i)
	depth := s.st.depth
	c := s.data[s.i]

	var tok Token
	switch {
	case c == '{', c == '[':
		if !s.st.push(c == '{') {
			return Token{}, s.errorf(s.i, "maximum nesting depth of %d exceeded", MaxDepth)
		}
		s.i++
		tok.Kind = StartArray
		if c == '{' {
			tok.Kind = StartObject
		}
		tok.Depth, tok.Pos = depth, pos
		return tok, nil

	case c == '"':
		str, err := s.string()
		if err != nil {
			return Token{}, err
		}
		tok = Token{Kind: String, Value: str}

	case c == '-' || isDigit(c):
		num, err := s.number()
		if err != nil {
			return Token{}, err
		}
		tok = Token{Kind: Number, Value: num}

	case c == 't':
		if err := s.literal("true"); err != nil {
			return Token{}, err
		}
		tok.Kind = True
	case c == 'f':
		if err := s.literal("false"); err != nil {
			return Token{}, err
		}
		tok.Kind = False
	case c == 'n':
		if err := s.literal("null"); err != nil {
			return Token{}, err
		}
		tok.Kind = Null

	default:
		return Token{}, s.errorf(s.i, "expected a value, found %s", describe(c))
	}

	s.st.afterValue()
	tok.Depth, tok.Pos = depth, pos
	return tok, nil
}

// string scans a quoted string starting at the cursor and returns its
// unescaped contents.
func (s *scanner) string() (string, error) {
	start := s.i
	j := s.i + 1
	seg := j
	var buf []byte

	for {
		if j >= len(s.data) {
			if !s.final {
				return "", errNeedMore
			}
			return "", s.errorf(start, "unterminated string")
		}

		c := s.data[j]
		switch {
		case c == '"':
			if !utf8.Valid(s.data[seg:j]) {
				return "", s.errorf(seg, "invalid UTF-8 in string")
			}
			s.i = j + 1
			if buf == nil {
				return string(s.data[seg:j]), nil
			}
			return string(append(buf, s.data[seg:j]...)), nil

		case c == '\\':
			if j+1 >= len(s.data) {
				if !s.final {
					return "", errNeedMore
				}
				return "", s.errorf(start, "unterminated string")
			}
			if !utf8.Valid(s.data[seg:j]) {
				return "", s.errorf(seg, "invalid UTF-8 in string")
			}
			buf = append(buf, s.data[seg:j]...)

			size := 2
			switch e := s.data[j+1]; e {
			case '"', '\\', '/':
				buf = append(buf, e)
			case 'b':
				buf = append(buf, '\b')
			case 'f':
				buf = append(buf, '\f')
			case 'n':
				buf = append(buf, '\n')
			case 'r':
				buf = append(buf, '\r')
			case 't':
				buf = append(buf, '\t')
			case 'u':
				r, n, err := s.unicode(j)
				if err != nil {
					return "", err
				}
				buf = utf8.AppendRune(buf, r)
				size = n
			default:
				return "", s.errorf(j, "invalid escape sequence '\\%c'", e)
			}
			j += size
			seg = j

		case c < 0x20:
			return "", s.errorf(j, "invalid control character %#02x in string", c)

		default:
			j++
		}
	}
}

// unicode decodes the \uXXXX escape at j, combining it with a following low
// surrogate escape if there is one. Unpaired surrogates decode to U+FFFD.
func (s *scanner) unicode(j int) (rune, int, error) {
	if j+6 > len(s.data) {
		if !s.final {
			return 0, 0, errNeedMore
		}
		return 0, 0, s.errorf(j, "unterminated unicode escape")
	}
	r1, ok := hex4(s.data[j+2 : j+6])
	if !ok {
		return 0, 0, s.errorf(j, "invalid unicode escape %q", s.data[j:j+6])
	}
	if !utf16.IsSurrogate(r1) {
		return r1, 6, nil
	}

	// Look for the other half of the pair.
	rest := s.data[j+6:]
	if (len(rest) > 0 && rest[0] != '\\') || (len(rest) > 1 && rest[1] != 'u') {
		return utf8.RuneError, 6, nil
	}
	if len(rest) < 6 {
		if !s.final {
			return 0, 0, errNeedMore
		}
		return utf8.RuneError, 6, nil
	}
	r2, ok := hex4(rest[2:6])
	if !ok {
		return 0, 0, s.errorf(j+6, "invalid unicode escape %q", rest[:6])
	}
	if r := utf16.DecodeRune(r1, r2); r != utf8.RuneError {
		return r, 12, nil
	}
	return utf8.RuneError, 6, nil
}

func (s *scanner) number() (string, error) {
	j := s.i
	for j < len(s.data) && isNumberByte(s.data[j]) {
		j++
	}
	if j == len(s.data) && !s.final {
		return "", errNeedMore
	}
	text := s.data[s.i:j]
	if !validNumber(text) {
		return "", s.errorf(s.i, "invalid number %q", text)
	}
	s.i = j
	return string(text), nil
}

func (s *scanner) literal(word string) error {
	rest := s.data[s.i:]
	if len(rest) < len(word) {
		if !s.final && bytes.HasPrefix([]byte(word), rest) {
			return errNeedMore
		}
		return s.errorf(s.i, "invalid literal, expected %q", word)
	}
	if string(rest[:len(word)]) != word {
		return s.errorf(s.i, "invalid literal, expected %q", word)
	}
	s.i += len(word)
	return nil
}

func validNumber(b []byte) bool {
	i := 0
	if i < len(b) && b[i] == '-' {
		i++
	}
	switch {
	case i >= len(b):
		return false
	case b[i] == '0':
		i++
	case isDigit(b[i]):
		for i < len(b) && isDigit(b[i]) {
			i++
		}
	default:
		return false
	}

	if i < len(b) && b[i] == '.' {
		i++
		start := i
		for i < len(b) && isDigit(b[i]) {
			i++
		}
		if i == start {
			return false
		}
	}

	if i < len(b) && (b[i] == 'e' || b[i] == 'E') {
		i++
		if i < len(b) && (b[i] == '+' || b[i] == '-') {
			i++
		}
		start := i
		for i < len(b) && isDigit(b[i]) {
			i++
		}
		if i == start {
			return false
		}
	}
	return i == len(b)
}

func hex4(b []byte) (rune, bool) {
	var r rune
	for _, c := range b {
		switch {
		case isDigit(c):
			r = r<<4 | rune(c-'0')
		case 'a' <= c && c <= 'f':
			r = r<<4 | rune(c-'a'+10)
		case 'A' <= c && c <= 'F':
			r = r<<4 | rune(c-'A'+10)
		default:
			return 0, false
		}
	}
	return r, true
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isNumberByte(c byte) bool {
	return isDigit(c) || c == '-' || c == '+' || c == '.' || c == 'e' || c == 'E'
}

func describe(c byte) string {
	if c < 0x20 || c >= 0x7f {
		return fmt.Sprintf("byte %#02x", c)
	}
	return fmt.Sprintf("'%c'", c)
}
