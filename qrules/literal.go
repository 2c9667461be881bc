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
	"strings"
	"sync"
)

// Literal is a string template. Text between a pair of '%' is a variable
// reference, replaced with the variable's value; "%%" outside a reference is
// a literal '%'.
//
// An unbound variable is left in the output as "%name%". A reference that is
// still open at the end of the text is kept verbatim, opening '%' included.
type Literal struct {
	Text string

	once       sync.Once
	parts      []part
	unfinished bool
}

type part struct {
	text  string
	isVar bool
}

// NewLiteral returns a template for text.
func NewLiteral(text string) *Literal {
	return &Literal{Text: text}
}

func (l *Literal) ProducesValue() bool {
	return true
}

func (l *Literal) Run(c *Context) error {
	l.once.Do(func() {
		l.parts, l.unfinished = parseTemplate(l.Text)
	})
	if l.unfinished {
		c.Warn("", ErrUnfinishedVariable)
	}

	var b strings.Builder
	b.Grow(len(l.Text))
	for _, p := range l.parts {
		if !p.isVar {
			b.WriteString(p.text)
			continue
		}
		if v, ok := c.Variable(p.text); ok {
			b.WriteString(v)
		} else {
			b.WriteByte('%')
			b.WriteString(p.text)
			b.WriteByte('%')
		}
	}
	return c.Provide(b.String())
}

func (l *Literal) MarshalYAML() (any, error) {
	return l.Text, nil
}

const (
	inText = iota
	afterPercent
	inVariable
)

// parseTemplate splits text into literal text and variable references. It
// also reports whether the text ends inside a reference.
func parseTemplate(text string) ([]part, bool) {
	var (
		parts []part
		buf   strings.Builder
		state = inText
	)
	literal := func(s string) {
		if s == "" {
			return
		}
		if n := len(parts); n > 0 && !parts[n-1].isVar {
			parts[n-1].text += s
			return
		}
		parts = append(parts, part{text: s})
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch state {
		case inText:
			if c == '%' {
				state = afterPercent
			} else {
				buf.WriteByte(c)
			}
		case afterPercent:
			if c == '%' {
				buf.WriteByte('%')
				state = inText
				continue
			}
			literal(buf.String())
			buf.Reset()
			buf.WriteByte(c)
			state = inVariable
		case inVariable:
			if c == '%' {
				parts = append(parts, part{text: buf.String(), isVar: true})
				buf.Reset()
				state = inText
			} else {
				buf.WriteByte(c)
			}
		}
	}

	switch state {
	case afterPercent:
		buf.WriteByte('%')
	case inVariable:
		name := buf.String()
		buf.Reset()
		literal("%" + name)
	}
	literal(buf.String())
	return parts, state != inText
}
