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

package locale

import (
	"fmt"

	"github.com/Fayti1703/qrules/blockjson"
	"github.com/Fayti1703/qrules/qrules"
	"github.com/Fayti1703/qrules/reporter"
)

// Document keys with a reserved meaning.
const (
	MetaKey    = "$meta"
	CommentKey = qrules.CommentKey
)

// Meta describes a locale.
type Meta struct {
	// The locale identifier, such as "en_US".
	ID string `yaml:"id"`
	// The name of the language in English.
	DisplayName string `yaml:"displayName"`
	// The name of the language in the language itself.
	SelfName string `yaml:"selfName"`
	// The people maintaining the locale. An empty entry is an anonymous
	// maintainer.
	Maintainers []string `yaml:"maintainers"`
}

const metaPath = "%." + MetaKey

// readMeta reads the $meta object t is positioned on. It leaves t on the
// object's closing brace.
func readMeta(t *blockjson.Tokenizer, id string, h *reporter.Handler) (*Meta, error) {
	if t.Kind() != blockjson.StartObject {
		return nil, reporter.Errorf(id, metaPath, "locale metadata must be an object, found %v", t.Kind())
	}
	meta := &Meta{ID: id}
	var haveDisplay, haveSelf bool
	for {
		if err := blockjson.Next(t); err != nil {
			return nil, reporter.Error(id, metaPath, err)
		}
		if t.Kind() == blockjson.EndObject {
			break
		}
		name := t.Token().Value
		path := metaPath + "." + name
		if err := blockjson.Next(t); err != nil {
			return nil, reporter.Error(id, path, err)
		}

		switch name {
		case CommentKey:
			if err := blockjson.Skip(t); err != nil {
				return nil, reporter.Error(id, path, err)
			}
		case "displayName", "selfName":
			if t.Kind() != blockjson.String {
				return nil, reporter.Errorf(id, path, "%s must be a string, found %v", name, t.Kind())
			}
			if name == "displayName" {
				meta.DisplayName, haveDisplay = t.Token().Value, true
			} else {
				meta.SelfName, haveSelf = t.Token().Value, true
			}
		case "maintainers":
			m, err := readMaintainers(t, id, path)
			if err != nil {
				return nil, err
			}
			meta.Maintainers = m
		default:
			h.HandleWarning(id, path, fmt.Errorf("unknown metadata key %q, ignoring", name))
			if err := blockjson.Skip(t); err != nil {
				return nil, reporter.Error(id, path, err)
			}
		}
	}

	if !haveDisplay {
		return nil, reporter.Errorf(id, metaPath, "locale metadata is missing displayName")
	}
	if !haveSelf {
		return nil, reporter.Errorf(id, metaPath, "locale metadata is missing selfName")
	}
	if meta.Maintainers == nil {
		meta.Maintainers = []string{""}
	}
	return meta, nil
}

func readMaintainers(t *blockjson.Tokenizer, id, path string) ([]string, error) {
	if t.Kind() != blockjson.StartArray {
		return nil, reporter.Errorf(id, path, "maintainers must be an array, found %v", t.Kind())
	}
	maintainers := []string{}
	for i := 0; ; i++ {
		if err := blockjson.Next(t); err != nil {
			return nil, reporter.Error(id, path, err)
		}
		switch t.Kind() {
		case blockjson.EndArray:
			return maintainers, nil
		case blockjson.Null:
			maintainers = append(maintainers, "")
		case blockjson.String:
			maintainers = append(maintainers, t.Token().Value)
		default:
			return nil, reporter.Errorf(id, fmt.Sprintf("%s[%d]", path, i), "maintainer must be a string or null, found %v", t.Kind())
		}
	}
}
