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
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lenient = Options{AllowComments: true, AllowTrailingCommas: true}

const sample = `// A sample document.
{
	"a": [1, -2.5e3, true, false, null, "x\ny"], /* block
	comment */ "b": {},
	"c": {"d": [[], {}], "e": "é😀"}, // trailing
}
`

func tokenize(t *testing.T, input string, size int, opts Options) []Token {
	t.Helper()
	tok := NewTokenizer(strings.NewReader(input), make([]byte, size), opts)
	return drain(t, tok)
}

func drain(t *testing.T, r Reader) []Token {
	t.Helper()
	var toks []Token
	for {
		ok, err := r.ReadToken()
		require.NoError(t, err)
		if !ok {
			return toks
		}
		toks = append(toks, r.Token())
	}
}

// shape drops positions, for comparisons that only care about structure.
var shape = cmpopts.IgnoreFields(Token{}, "Pos")

func TestTokenizer(t *testing.T) {
	toks := tokenize(t, sample, 1024, lenient)

	expected := []Token{
		{Kind: StartObject, Depth: 0},
		{Kind: PropertyName, Value: "a", Depth: 1},
		{Kind: StartArray, Depth: 1},
		{Kind: Number, Value: "1", Depth: 2},
		{Kind: Number, Value: "-2.5e3", Depth: 2},
		{Kind: True, Depth: 2},
		{Kind: False, Depth: 2},
		{Kind: Null, Depth: 2},
		{Kind: String, Value: "x\ny", Depth: 2},
		{Kind: EndArray, Depth: 1},
		{Kind: PropertyName, Value: "b", Depth: 1},
		{Kind: StartObject, Depth: 1},
		{Kind: EndObject, Depth: 1},
		{Kind: PropertyName, Value: "c", Depth: 1},
		{Kind: StartObject, Depth: 1},
		{Kind: PropertyName, Value: "d", Depth: 2},
		{Kind: StartArray, Depth: 2},
		{Kind: StartArray, Depth: 3},
		{Kind: EndArray, Depth: 3},
		{Kind: StartObject, Depth: 3},
		{Kind: EndObject, Depth: 3},
		{Kind: EndArray, Depth: 2},
		{Kind: PropertyName, Value: "e", Depth: 2},
		{Kind: String, Value: "é😀", Depth: 2},
		{Kind: EndObject, Depth: 1},
		{Kind: EndObject, Depth: 0},
	}
	if diff := cmp.Diff(expected, toks, shape); diff != "" {
		t.Errorf("unexpected tokens (-want +got):\n%s", diff)
	}
}

func TestTokenizerBufferSizes(t *testing.T) {
	expected := tokenize(t, sample, len(sample), lenient)
	minSize, err := MinBlockSize(strings.NewReader(sample), lenient)
	require.NoError(t, err)
	for size := minSize; size <= len(sample); size++ {
		toks := tokenize(t, sample, size, lenient)
		if diff := cmp.Diff(expected, toks); diff != "" {
			t.Fatalf("buffer size %d: tokens differ (-want +got):\n%s", size, diff)
		}
	}
}

func TestMinBlockSize(t *testing.T) {
	// The longest token in the sample is the string "é😀".
	size, err := MinBlockSize(strings.NewReader(sample), lenient)
	require.NoError(t, err)
	assert.Equal(t, 8, size)

	tok := NewTokenizer(strings.NewReader(sample), make([]byte, size-1), lenient)
	for {
		ok, err := tok.ReadToken()
		if err != nil {
			assert.ErrorIs(t, err, ErrValueTooLarge)
			break
		}
		require.True(t, ok, "document read with a buffer of %d bytes", size-1)
	}

	// A number is ended by the byte after it.
	size, err = MinBlockSize(strings.NewReader(`[12345, "a"]`), Options{})
	require.NoError(t, err)
	assert.Equal(t, 6, size)

	_, err = MinBlockSize(strings.NewReader(`[1,`), Options{})
	var synErr *SyntaxError
	assert.ErrorAs(t, err, &synErr)
}

func TestTokenizerPositions(t *testing.T) {
	toks := tokenize(t, "{\n  \"a\": 1\n}", 4, Options{})
	require.Len(t, toks, 4)
	assert.Equal(t, Position{Offset: 0, Line: 1, Column: 1}, toks[0].Pos)
	assert.Equal(t, Position{Offset: 4, Line: 2, Column: 3}, toks[1].Pos)
	assert.Equal(t, Position{Offset: 9, Line: 2, Column: 8}, toks[2].Pos)
	assert.Equal(t, Position{Offset: 11, Line: 3, Column: 1}, toks[3].Pos)
	assert.Equal(t, "2:8", toks[2].Pos.String())
}

func TestTokenizerEscapes(t *testing.T) {
	toks := tokenize(t, `["\"\\\/\b\f\n\r\t", "\ud800x", "Aß"]`, 64, Options{})
	require.Len(t, toks, 5)
	assert.Equal(t, "\"\\/\b\f\n\r\t", toks[1].Value)
	assert.Equal(t, "\uFFFDx", toks[2].Value)
	assert.Equal(t, "Aß", toks[3].Value)
}

func TestTokenizerErrors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		opts  Options
		msg   string
	}{
		{name: "missing colon", input: `{"a" 1}`, msg: "expected ':' after property name"},
		{name: "missing comma", input: `[1 2]`, msg: "expected ',' or ']'"},
		{name: "trailing comma", input: `[1,]`, msg: "expected a value"},
		{name: "trailing comma object", input: `{"a": 1,}`, msg: "expected property name or '}'"},
		{name: "comment", input: `[1] // no`, msg: "comments are not allowed"},
		{name: "after value", input: `{} x`, msg: "after top-level value"},
		{name: "unterminated string", input: `{"a": "abc`, msg: "unterminated string"},
		{name: "unterminated comment", input: `[1] /* no`, opts: lenient, msg: "unterminated block comment"},
		{name: "truncated document", input: `[1,`, msg: "unexpected end of input"},
		{name: "bad number", input: `[01]`, msg: "invalid number"},
		{name: "bad literal", input: `[nul]`, msg: "invalid literal"},
		{name: "bad escape", input: `["\q"]`, msg: "invalid escape sequence"},
		{name: "control character", input: "[\"a\tb\"]", msg: "invalid control character"},
		{name: "invalid utf8", input: "[\"\xff\"]", msg: "invalid UTF-8"},
		{name: "too deep", input: strings.Repeat("[", MaxDepth+1), msg: "maximum nesting depth"},
		{name: "name in array", input: `[1, "a": 2]`, msg: "expected ',' or ']'"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tok := NewTokenizer(strings.NewReader(tc.input), make([]byte, 64), tc.opts)
			var err error
			for {
				var ok bool
				ok, err = tok.ReadToken()
				if err != nil || !ok {
					break
				}
			}
			var synErr *SyntaxError
			require.ErrorAs(t, err, &synErr)
			assert.Contains(t, synErr.Msg, tc.msg)

			// Errors are sticky.
			ok, again := tok.ReadToken()
			assert.False(t, ok)
			assert.Equal(t, err, again)
			assert.Equal(t, None, tok.Kind())
		})
	}
}

func TestTokenizerValueTooLarge(t *testing.T) {
	tok := NewTokenizer(strings.NewReader(`["abcdefghijklmnop"]`), make([]byte, 8), Options{})
	ok, err := tok.ReadToken()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StartArray, tok.Kind())

	_, err = tok.ReadToken()
	assert.ErrorIs(t, err, ErrValueTooLarge)

	// A token cut short by the end of the source is a syntax error, however
	// small the buffer.
	tok = NewTokenizer(strings.NewReader(`["abc`), make([]byte, 8), Options{})
	_, err = tok.ReadToken()
	require.NoError(t, err)
	_, err = tok.ReadToken()
	var synErr *SyntaxError
	assert.ErrorAs(t, err, &synErr)
	assert.False(t, errors.Is(err, ErrValueTooLarge))
}

func TestTokenizerEmptyBuffer(t *testing.T) {
	tok := NewTokenizer(strings.NewReader(`[]`), nil, Options{})
	_, err := tok.ReadToken()
	assert.ErrorIs(t, err, ErrValueTooLarge)
}

func TestTokenizerClosed(t *testing.T) {
	tok := NewTokenizer(strings.NewReader(` 1 `), make([]byte, 4), Options{})
	ok, err := tok.ReadToken()
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, tok.Closed())

	for range 2 {
		ok, err = tok.ReadToken()
		require.NoError(t, err)
		assert.False(t, ok)
		assert.True(t, tok.Closed())
		assert.Equal(t, None, tok.Kind())
	}
}

func TestTokenizerFragment(t *testing.T) {
	// A fragment may stop anywhere between tokens.
	toks := tokenize(t, `{"a": 1, "b": `, 64, Options{Fragment: true})
	assert.Len(t, toks, 4)

	tok := NewTokenizer(strings.NewReader(`{"a": 1, "b": `), make([]byte, 64), Options{})
	_, err := tok.ReadToken()
	require.NoError(t, err)
	for err == nil {
		_, err = tok.ReadToken()
	}
	assert.Error(t, err)
}

func TestTokenizerAt(t *testing.T) {
	doc := `{"a": [1, 2], "b": true}`
	cut := strings.Index(doc, `2`)

	head := NewTokenizer(strings.NewReader(doc[:cut]), make([]byte, 8), Options{Fragment: true})
	before := drain(t, head)
	tail := NewTokenizerAt(strings.NewReader(doc[cut:]), make([]byte, 8), head.State(), Options{})
	after := drain(t, tail)

	expected := tokenize(t, doc, 64, Options{})
	if diff := cmp.Diff(expected, append(before, after...)); diff != "" {
		t.Errorf("tokens differ (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, head.State().Depth())
}

func TestCheckpoint(t *testing.T) {
	doc := `{"a": [1, 2, 3], "b": {"c": null}}`
	buf := make([]byte, 64)
	src := strings.NewReader(doc)
	tok := NewTokenizer(src, buf, Options{})
	for range 4 {
		_, err := tok.ReadToken()
		require.NoError(t, err)
	}
	cp := tok.Checkpoint()
	assert.Equal(t, 2, cp.State().Depth())
	rest := drain(t, tok)

	resumed, err := Resume(src, buf, cp, Options{})
	require.NoError(t, err)
	assert.Equal(t, Number, resumed.Kind())
	if diff := cmp.Diff(rest, drain(t, resumed)); diff != "" {
		t.Errorf("tokens differ (-want +got):\n%s", diff)
	}

	_, err = Resume(src, make([]byte, 64), cp, Options{})
	assert.ErrorIs(t, err, ErrBufferMismatch)
}

func TestSkip(t *testing.T) {
	tok := NewTokenizer(strings.NewReader(`{"a": {"b": [1, {"c": 2}]}, "d": 3, "e": "f"}`), make([]byte, 8), Options{})
	require.NoError(t, Next(tok))
	require.NoError(t, Next(tok))
	require.Equal(t, PropertyName, tok.Kind())

	require.NoError(t, Skip(tok))
	assert.Equal(t, EndObject, tok.Kind())
	assert.Equal(t, 1, tok.Token().Depth)

	require.NoError(t, Next(tok))
	assert.Equal(t, PropertyName, tok.Kind())
	assert.Equal(t, "d", tok.Token().Value)

	require.NoError(t, Skip(tok))
	assert.Equal(t, Number, tok.Kind())

	require.NoError(t, Next(tok))
	require.NoError(t, Next(tok))
	require.NoError(t, Skip(tok))
	assert.Equal(t, String, tok.Kind())

	require.NoError(t, Next(tok))
	assert.Equal(t, EndObject, tok.Kind())
	assert.ErrorIs(t, Next(tok), ErrUnexpectedEnd)
}

func TestBlockPool(t *testing.T) {
	var pool BlockPool
	b := pool.Rent(10)
	assert.Len(t, b, 10)
	assert.Equal(t, DefaultBlockSize, cap(b))
	pool.Return(b)

	small := &BlockPool{Size: 16}
	assert.Len(t, small.Rent(100), 16)
	assert.Len(t, small.Rent(0), 1)
}
