// Package pattern provides the glob matching used by every pipeline
// stage: * within a segment, ? for a single non-slash character, **/
// for zero or more directory segments, and a trailing ** matching
// anything remaining. Matching is full-string anchored against
// forward-slash normalized paths.
package pattern

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Match reports whether path matches the glob pattern. Malformed
// patterns never match.
func Match(pattern, path string) bool {
	pattern = strings.ReplaceAll(pattern, "\\", "/")
	path = strings.ReplaceAll(path, "\\", "/")
	ok, err := doublestar.Match(pattern, path)
	return err == nil && ok
}

// MatchAny reports whether path matches any of the given patterns.
// An empty pattern list matches nothing.
func MatchAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if Match(p, path) {
			return true
		}
	}
	return false
}

// List coerces a pattern option value to a list of patterns. Accepted
// inputs are a single string, []string, or []any of strings.
func List(v any) []string {
	switch val := v.(type) {
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
