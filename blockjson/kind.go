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

import "fmt"

const (
	None Kind = iota // No token has been read yet.

	StartObject  // An opening brace.
	EndObject    // A closing brace.
	StartArray   // An opening bracket.
	EndArray     // A closing bracket.
	PropertyName // An object key, including its trailing colon.
	String       // A string value.
	Number       // A number value.
	True         // The literal true.
	False        // The literal false.
	Null         // The literal null.
)

// Kind identifies what kind of token a particular [Token] is.
type Kind byte

// IsScalar returns whether this kind is a complete value on its own.
func (k Kind) IsScalar() bool {
	switch k {
	case String, Number, True, False, Null:
		return true
	default:
		return false
	}
}

// String implements [fmt.Stringer].
func (k Kind) String() string {
	switch k {
	case None:
		return "None"
	case StartObject:
		return "StartObject"
	case EndObject:
		return "EndObject"
	case StartArray:
		return "StartArray"
	case EndArray:
		return "EndArray"
	case PropertyName:
		return "PropertyName"
	case String:
		return "String"
	case Number:
		return "Number"
	case True:
		return "True"
	case False:
		return "False"
	case Null:
		return "Null"
	default:
		return fmt.Sprintf("blockjson.Kind(%d)", int(k))
	}
}

// Token is a single lexical element of a document.
type Token struct {
	Kind Kind

	// The unescaped text of a PropertyName or String token, or the raw text of
	// a Number token. Empty for every other kind.
	Value string

	// The nesting depth of the token. Start and end tokens report the depth of
	// the container they open or close, not the depth inside it.
	Depth int

	// Where the token begins in the document.
	Pos Position
}

// String implements [fmt.Stringer].
func (t Token) String() string {
	switch t.Kind {
	case PropertyName, String:
		return fmt.Sprintf("%v %q", t.Kind, t.Value)
	case Number:
		return fmt.Sprintf("%v %s", t.Kind, t.Value)
	default:
		return t.Kind.String()
	}
}
