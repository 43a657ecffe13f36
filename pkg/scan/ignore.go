// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package scan

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// 🔍 Matcher decides which source files are never transferred. Patterns use
// doublestar syntax and are matched against the slash separated path
// relative to the source root, and against the bare base name.
type Matcher struct {
	patterns []string
}

// NewMatcher validates patterns. A nil or empty list matches nothing.
func NewMatcher(patterns []string) (*Matcher, error) {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("invalid ignore pattern %q", pattern)
		}
	}
	return &Matcher{patterns: patterns}, nil
}

// Match reports whether rel should be ignored
func (m *Matcher) Match(rel string) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}
	rel = filepath.ToSlash(rel)
	base := filepath.Base(rel)
	for _, pattern := range m.patterns {
		if doublestar.MatchUnvalidated(pattern, rel) || doublestar.MatchUnvalidated(pattern, base) {
			return true
		}
	}
	return false
}
