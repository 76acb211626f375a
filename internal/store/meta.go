package store

import "time"

// Metadata accessors. Frontmatter fields arrive as whatever the YAML or
// TOML parser produced, so stages read them through these dynamic
// helpers rather than asserting concrete types everywhere.

// String returns the string value under key, or "" if the key is absent
// or not a string.
func (f *File) String(key string) string {
	if v, ok := f.Metadata[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Bool returns the boolean value under key, or false if the key is
// absent or not a boolean.
func (f *File) Bool(key string) bool {
	if v, ok := f.Metadata[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// Time returns the time value under key. YAML parsers hand back
// time.Time for date scalars; string values are tried against the
// common ISO layouts. The zero time means absent or unparseable.
func (f *File) Time(key string) time.Time {
	v, ok := f.Metadata[key]
	if !ok {
		return time.Time{}
	}
	return ToTime(v)
}

// Int returns the integer value under key, converting from the numeric
// types YAML and TOML parsers produce. Zero means absent or non-numeric.
func (f *File) Int(key string) int {
	v, ok := f.Metadata[key]
	if !ok {
		return 0
	}
	n, _ := ToInt(v)
	return n
}

// StringSlice returns the value under key coerced to a string slice.
// A single string becomes a one-element slice; absent or mixed-type
// values return nil.
func (f *File) StringSlice(key string) []string {
	v, ok := f.Metadata[key]
	if !ok {
		return nil
	}
	s, _ := ToStringSlice(v)
	return s
}

var timeLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05-07:00",
	time.RFC3339,
}

// ToTime converts a dynamic value to a time.Time. Bare YYYY-MM-DD dates
// parse as UTC midnight.
func ToTime(v any) time.Time {
	switch val := v.(type) {
	case time.Time:
		return val
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, val); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

// ToInt converts a dynamic numeric value to int.
func ToInt(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		return int(val), true
	}
	return 0, false
}

// ToStringSlice converts a dynamic value to []string. It handles
// []string, []any with string elements, and a bare string.
func ToStringSlice(v any) ([]string, bool) {
	switch val := v.(type) {
	case []string:
		return val, true
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	case string:
		return []string{val}, true
	}
	return nil, false
}
