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

// Sequence runs statements in order. Only its last statement may produce a
// value, which becomes the value of the sequence.
type Sequence struct {
	Statements []Statement
}

func (s *Sequence) ProducesValue() bool {
	n := len(s.Statements)
	return n > 0 && s.Statements[n-1].ProducesValue()
}

func (s *Sequence) Run(c *Context) error {
	for _, stmt := range s.Statements {
		if err := stmt.Run(c); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sequence) MarshalYAML() (any, error) {
	if s.Statements == nil {
		return []Statement{}, nil
	}
	return s.Statements, nil
}

type sequencePartial struct {
	statements []Statement
}

func (p *sequencePartial) Continue(j *blockjson.Joiner, lc *LoadContext, prev Statement) (Statement, error) {
	if prev != nil {
		p.statements = append(p.statements, prev)
		if j.Kind() != blockjson.EndArray && prev.ProducesValue() {
			return nil, lc.Errorf(Semantic, "non-final statement in a sequence may not produce a value")
		}
		lc.Exit()
	}

	if j.Kind() == blockjson.EndArray {
		return &Sequence{Statements: p.statements}, nil
	}
	lc.EnterItem(len(p.statements))
	return nil, nil
}
