// Package plugins provides the built-in pipeline stages: content
// decoding, visibility filtering, aggregation, path rewriting, layout
// rendering, and output synthesis. Every stage implements
// pipeline.Stage and is registered by name in the config loader.
package plugins

import (
	"sort"
	"strings"
	"time"

	"github.com/aellingwood/janos/internal/pipeline"
	"github.com/aellingwood/janos/internal/store"
)

// patterns coerces a glob option (string, []string, or []any) to a
// pattern list, falling back to def when the option is unset.
func patterns(v any, def ...string) []string {
	if v == nil {
		return def
	}
	if list := listOf(v); len(list) > 0 {
		return list
	}
	return def
}

func listOf(v any) []string {
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

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func intOr(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}

func stringOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// isExternal reports whether a reference points outside the site.
func isExternal(ref string) bool {
	return strings.HasPrefix(ref, "http://") ||
		strings.HasPrefix(ref, "https://") ||
		strings.HasPrefix(ref, "//") ||
		strings.HasPrefix(ref, "data:") ||
		strings.HasPrefix(ref, "mailto:")
}

// permalinkFor returns the human-facing URL path for a file: the
// permalink metadata when the permalinks stage has run, otherwise the
// key with a trailing index.html stripped and a leading slash added.
func permalinkFor(f *store.File) string {
	if p := f.String("permalink"); p != "" {
		return p
	}
	return keyPermalink(f.Path)
}

func keyPermalink(key string) string {
	p := strings.TrimSuffix(key, "index.html")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// absoluteURL joins the site base URL with an absolute path, avoiding
// a double slash at the seam.
func absoluteURL(base, path string) string {
	base = strings.TrimRight(base, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// snapshot builds a collection item from a file: its key, source key,
// all metadata, and a decoded contents string.
func snapshot(f *store.File) map[string]any {
	item := make(map[string]any, len(f.Metadata)+3)
	for k, v := range f.Metadata {
		item[k] = v
	}
	item["path"] = f.Path
	item["sourcePath"] = f.SourcePath
	item["contents"] = string(f.Contents)
	return item
}

// compareValues orders two dynamic metadata values: times by instant,
// numbers numerically, strings lexically. Nil sorts last.
func compareValues(a, b any) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return 1
	}
	if b == nil {
		return -1
	}
	if at, bt := store.ToTime(a), store.ToTime(b); !at.IsZero() && !bt.IsZero() {
		switch {
		case at.Before(bt):
			return -1
		case at.After(bt):
			return 1
		}
		return 0
	}
	if an, aok := toFloat(a); aok {
		if bn, bok := toFloat(b); bok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(toString(a), toString(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	if t, ok := v.(time.Time); ok {
		return t.Format(time.RFC3339)
	}
	return ""
}

// sortItems orders collection items by the given metadata key,
// optionally reversed. The sort is stable so ties keep their relative
// order.
func sortItems(items []map[string]any, sortBy string, reverse bool) {
	sort.SliceStable(items, func(i, j int) bool {
		c := compareValues(items[i][sortBy], items[j][sortBy])
		if reverse {
			return c > 0
		}
		return c < 0
	})
}

// collectionsFrom reads the collections map out of the global
// metadata, tolerating an unset value.
func collectionsFrom(pc *pipeline.Context) map[string][]map[string]any {
	if m, ok := pc.Metadata["collections"].(map[string][]map[string]any); ok {
		return m
	}
	return nil
}
