package dbg

import (
	"strings"
	"unicode"
)

// ParseSpec splits an enable specification into include and exclude patterns.
// Tokens are separated by commas and/or whitespace; a token starting with '-'
// is an exclude (the dash is stripped). Empty or blank input enables nothing.
// Parsing never fails: anything left after splitting is a pattern.
func ParseSpec(spec string) Spec {
	var s Spec
	tokens := strings.FieldsFunc(spec, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	for _, token := range tokens {
		if token[0] == EXCLUDE_PREFIX {
			s.Excludes = append(s.Excludes, token[1:])
		} else {
			s.Includes = append(s.Includes, token)
		}
	}
	return s
}

// String serializes the spec back: every include, then every exclude prefixed
// with '-', comma-joined. ParseSpec(s.String()) gives back the same lists.
func (s Spec) String() string {
	parts := make([]string, 0, len(s.Includes)+len(s.Excludes))
	parts = append(parts, s.Includes...)
	for _, exclude := range s.Excludes {
		parts = append(parts, string(EXCLUDE_PREFIX)+exclude)
	}
	return strings.Join(parts, DEFAULT_SPEC_SEP)
}

// IsEmpty is true when the spec enables nothing.
func (s Spec) IsEmpty() bool {
	return len(s.Includes) == 0
}

// Enabled applies the spec to one name: an exclude match always wins and is
// checked first, then any include match enables.
func (s Spec) Enabled(name string) bool {
	for _, exclude := range s.Excludes {
		if Matches(name, exclude) {
			return false
		}
	}
	for _, include := range s.Includes {
		if Matches(name, include) {
			return true
		}
	}
	return false
}
