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
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Fayti1703/qrules/blockjson"
)

// Range is the key of an [IntSwitch] case: either the NaN case, or the
// integers from Min to Max inclusive. An open end is math.MinInt or
// math.MaxInt.
type Range struct {
	NaN      bool
	Min, Max int
}

// Contains returns whether v falls in r. The NaN case contains nothing.
func (r Range) Contains(v int) bool {
	return !r.NaN && r.Min <= v && v <= r.Max
}

func (r Range) exact() bool {
	return !r.NaN && r.Min == r.Max
}

// String returns r in case key syntax.
func (r Range) String() string {
	switch {
	case r.NaN:
		return "NaN"
	case r.exact():
		return strconv.Itoa(r.Min)
	}
	lo, hi := "[", "]"
	lower, upper := strconv.Itoa(r.Min), strconv.Itoa(r.Max)
	if r.Min == math.MinInt {
		lo, lower = "]", "-Inf"
	}
	if r.Max == math.MaxInt {
		hi, upper = "[", "Inf"
	}
	return lo + lower + ";" + upper + hi
}

// ParseRange parses a case key: "NaN", an integer, or a range such as
// "[1;Inf[". A '[' facing the range includes its bound, a ']' facing away
// excludes it. "-Inf" and "Inf" leave the lower and upper end open.
//
// A range that cannot contain any integer is reported with ok set to false.
func ParseRange(key string) (r Range, ok bool, err error) {
	if key == "NaN" {
		return Range{NaN: true}, true, nil
	}
	if v, err := strconv.Atoi(strings.TrimSpace(key)); err == nil {
		return Range{Min: v, Max: v}, true, nil
	}

	n := len(key)
	if n < 2 || (key[0] != '[' && key[0] != ']') || (key[n-1] != '[' && key[n-1] != ']') {
		return Range{}, false, fmt.Errorf("cannot parse this range: invalid format (must be a single integer or a range indicated with square brackets)")
	}
	sep := strings.IndexByte(key, ';')
	if sep < 0 {
		return Range{}, false, fmt.Errorf("cannot parse this range: missing `;` separator")
	}

	lower, lowerOpen, err := parseBound(key[1:sep], true)
	if err != nil {
		return Range{}, false, err
	}
	upper, upperOpen, err := parseBound(key[sep+1:n-1], false)
	if err != nil {
		return Range{}, false, err
	}

	// Integer bounds make exclusive ends inclusive ends one step inwards.
	if key[0] == ']' && !lowerOpen {
		if lower == math.MaxInt {
			return Range{}, false, nil
		}
		lower++
	}
	if key[n-1] == '[' && !upperOpen {
		if upper == math.MinInt {
			return Range{}, false, nil
		}
		upper--
	}
	if lower > upper {
		return Range{}, false, nil
	}
	return Range{Min: lower, Max: upper}, true, nil
}

func parseBound(s string, lower bool) (v int, open bool, err error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.Atoi(s); err == nil {
		return v, false, nil
	}
	switch s {
	case "-Inf":
		if lower {
			return math.MinInt, true, nil
		}
		return 0, false, fmt.Errorf("cannot parse this range: `-Inf` is not a valid maximum value")
	case "Inf":
		if !lower {
			return math.MaxInt, true, nil
		}
		return 0, false, fmt.Errorf("cannot parse this range: `Inf` is not a valid minimum value")
	}
	if lower {
		return 0, false, fmt.Errorf("cannot parse this range: `%s` is not a valid minimum value", s)
	}
	return 0, false, fmt.Errorf("cannot parse this range: `%s` is not a valid maximum value", s)
}

// Case is one case of an [IntSwitch].
type Case struct {
	Range     Range
	Statement Statement
}

// IntSwitch runs the case matching the integer value of a variable.
//
// If the variable is unbound or not an integer, the NaN case runs. Otherwise
// a case for exactly that value wins; failing that, the first range
// containing the value, in declaration order.
type IntSwitch struct {
	On    string
	Cases []Case

	exact map[int]Statement
	nan   Statement
}

// NewIntSwitch returns a switch over cases. Where two cases share a key, the
// first one is used.
func NewIntSwitch(on string, cases []Case) *IntSwitch {
	s := &IntSwitch{On: on, Cases: cases, exact: make(map[int]Statement)}
	for _, c := range cases {
		switch {
		case c.Range.NaN:
			if s.nan == nil {
				s.nan = c.Statement
			}
		case c.Range.exact():
			if _, ok := s.exact[c.Range.Min]; !ok {
				s.exact[c.Range.Min] = c.Statement
			}
		}
	}
	return s
}

func (s *IntSwitch) ProducesValue() bool {
	return len(s.Cases) > 0 && s.Cases[0].Statement.ProducesValue()
}

func (s *IntSwitch) Run(c *Context) error {
	raw, ok := c.lookup(s.On, true)
	var v int
	if ok {
		var err error
		v, err = strconv.Atoi(strings.TrimSpace(raw))
		ok = err == nil
	}

	if !ok {
		if s.nan == nil {
			return c.errorf(Runtime, "unhandled 'NaN' case in int-switch on %q", s.On)
		}
		return s.nan.Run(c)
	}
	if stmt, ok := s.exact[v]; ok {
		return stmt.Run(c)
	}
	for _, cs := range s.Cases {
		if cs.Range.Contains(v) {
			return cs.Statement.Run(c)
		}
	}
	return c.errorf(Runtime, "cannot find a case for '%d' in int-switch on %q", v, s.On)
}

func (s *IntSwitch) MarshalYAML() (any, error) {
	cases := &yaml.Node{Kind: yaml.MappingNode}
	for _, c := range s.Cases {
		var key, value yaml.Node
		if err := key.Encode(c.Range.String()); err != nil {
			return nil, err
		}
		if err := value.Encode(c.Statement); err != nil {
			return nil, err
		}
		cases.Content = append(cases.Content, &key, &value)
	}
	return struct {
		Type  string     `yaml:"type"`
		On    string     `yaml:"on"`
		Cases *yaml.Node `yaml:"cases"`
	}{"int-switch", s.On, cases}, nil
}

type intSwitchPartial struct {
	on    string
	hasOn bool

	cases    []Case
	seen     map[Range]bool
	hasCases bool
	inCases  bool

	current   Range
	reachable bool

	produces    bool
	hasProduces bool
}

func (p *intSwitchPartial) Continue(j *blockjson.Joiner, lc *LoadContext, prev Statement) (Statement, error) {
	if prev != nil {
		if !p.hasProduces {
			p.produces, p.hasProduces = prev.ProducesValue(), true
		} else if p.produces != prev.ProducesValue() {
			should := "should not"
			if p.produces {
				should = "should"
			}
			return nil, lc.Errorf(Semantic, "inconsistent value production in `int-switch` (this statement %s produce a value to align with previous cases)", should)
		}
		if p.reachable {
			if p.seen[p.current] {
				lc.Warnf("duplicate case in int-switch statement, ignoring")
			} else {
				p.seen[p.current] = true
				p.cases = append(p.cases, Case{Range: p.current, Statement: prev})
			}
		}
		lc.Exit()
	}

	for {
		if p.inCases {
			switch j.Kind() {
			case blockjson.PropertyName:
				key := j.Token().Value
				if key == CommentKey {
					if err := blockjson.Skip(j); err != nil {
						return nil, err
					}
					if err := blockjson.Next(j); err != nil {
						return nil, err
					}
					continue
				}
				lc.EnterProperty(key)
				r, ok, err := ParseRange(key)
				if err != nil {
					return nil, lc.Errorf(Syntax, "%v", err)
				}
				if !ok {
					lc.Warnf("this range will never be matched and will be ignored")
				}
				p.current, p.reachable = r, ok
				if err := blockjson.Next(j); err != nil {
					return nil, err
				}
				return nil, nil

			case blockjson.EndObject:
				p.inCases = false
				lc.Exit()
				if err := blockjson.Next(j); err != nil {
					return nil, err
				}
				continue
			}
			return nil, lc.Errorf(Internal, "unexpected %v in `cases`", j.Kind())
		}

		switch j.Kind() {
		case blockjson.EndObject:
			if !p.hasOn {
				return nil, lc.Errorf(Syntax, "missing variable name to switch `on`")
			}
			if !p.hasCases {
				return nil, lc.Errorf(Syntax, "missing switch `cases`")
			}
			return NewIntSwitch(p.on, p.cases), nil

		case blockjson.PropertyName:
			name := j.Token().Value
			if err := blockjson.Next(j); err != nil {
				return nil, err
			}
			switch name {
			case "on":
				if j.Kind() != blockjson.String {
					return nil, lc.ErrorAt(Syntax, ".on", "`on` must be a variable-name string")
				}
				p.on, p.hasOn = j.Token().Value, true
			case "cases":
				if p.hasCases {
					return nil, lc.ErrorAt(Syntax, ".cases", "duplicate switch `cases`")
				}
				lc.EnterProperty("cases")
				if j.Kind() != blockjson.StartObject {
					return nil, lc.Errorf(Syntax, "`cases` must be an object")
				}
				if err := blockjson.Next(j); err != nil {
					return nil, err
				}
				if j.Kind() == blockjson.EndObject {
					lc.Warnf("empty cases object")
				}
				p.hasCases, p.inCases = true, true
				p.seen = make(map[Range]bool)
				continue
			default:
				if err := blockjson.Skip(j); err != nil {
					return nil, err
				}
			}
			if err := blockjson.Next(j); err != nil {
				return nil, err
			}

		default:
			return nil, lc.Errorf(Internal, "unexpected %v in `int-switch` statement", j.Kind())
		}
	}
}
