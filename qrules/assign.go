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

import "github.com/Fayti1703/qrules/blockjson"

// Assign evaluates a value-producing statement and binds its value to a
// variable. It produces no value itself.
type Assign struct {
	Var string
	To  Statement
}

func (a *Assign) ProducesValue() bool {
	return false
}

func (a *Assign) Run(c *Context) error {
	if err := a.To.Run(c); err != nil {
		return err
	}
	v, err := c.Consume()
	if err != nil {
		return err
	}
	c.SetVariable(a.Var, v)
	return nil
}

func (a *Assign) MarshalYAML() (any, error) {
	return struct {
		Type string    `yaml:"type"`
		Var  string    `yaml:"var"`
		To   Statement `yaml:"to"`
	}{"set", a.Var, a.To}, nil
}

type assignPartial struct {
	name    string
	hasName bool
	to      Statement
}

func (p *assignPartial) Continue(j *blockjson.Joiner, lc *LoadContext, prev Statement) (Statement, error) {
	if prev != nil {
		if !prev.ProducesValue() {
			return nil, lc.Errorf(Semantic, "value statement must produce a value")
		}
		lc.Exit()
		p.to = prev
	}

	for {
		switch j.Kind() {
		case blockjson.EndObject:
			if !p.hasName {
				return nil, lc.Errorf(Syntax, "missing variable name (`var`) in `set` statement")
			}
			if p.to == nil {
				return nil, lc.Errorf(Syntax, "missing value statement (`to`) in `set` statement")
			}
			return &Assign{Var: p.name, To: p.to}, nil

		case blockjson.PropertyName:
			name := j.Token().Value
			if err := blockjson.Next(j); err != nil {
				return nil, err
			}
			switch name {
			case "var":
				if j.Kind() != blockjson.String {
					return nil, lc.ErrorAt(Syntax, ".var", "variable name to set must be a string")
				}
				p.name, p.hasName = j.Token().Value, true
			case "to":
				if p.to != nil {
					return nil, lc.ErrorAt(Syntax, ".to", "duplicate value statement (`to`) in `set` statement")
				}
				lc.EnterProperty("to")
				return nil, nil
			default:
				if err := blockjson.Skip(j); err != nil {
					return nil, err
				}
			}
			if err := blockjson.Next(j); err != nil {
				return nil, err
			}

		default:
			return nil, lc.Errorf(Internal, "unexpected %v in `set` statement", j.Kind())
		}
	}
}
