package plugins

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/aellingwood/janos/internal/pipeline"
	"github.com/aellingwood/janos/internal/pattern"
	"github.com/aellingwood/janos/internal/slug"
	"github.com/aellingwood/janos/internal/store"
)

// Linkset binds a permalink pattern to a group of files selected by
// match criteria. Linksets are order-sensitive; the first whose
// criteria all match wins.
type Linkset struct {
	// Match holds the criteria: the reserved key "pattern" is a glob
	// (or list) tested against the file key; every other key must
	// equal the file's metadata value, with membership semantics when
	// the metadata value is a list.
	Match map[string]any `json:"match"`
	// Pattern is the permalink pattern with :placeholder substitution.
	Pattern string `json:"pattern"`
	// TrailingSlash overrides the stage-level setting for this group.
	TrailingSlash *bool `json:"trailingSlash"`
	// Slug overrides the placeholder slug function. Code-only.
	Slug func(string) string `json:"-"`
}

// PermalinksOptions configures the permalinks stage.
type PermalinksOptions struct {
	// Match selects the files to rewrite; default **/*.html.
	Match any `json:"match"`
	// Pattern is the global permalink pattern. Empty means strip the
	// extension.
	Pattern string `json:"pattern"`
	// TrailingSlash emits directory-style URLs ending in /index.html.
	// Default true.
	TrailingSlash *bool `json:"trailingSlash"`
	// Linksets are consulted before the global pattern.
	Linksets []Linkset `json:"linksets"`
}

type permalinksStage struct {
	opts PermalinksOptions
}

// Permalinks returns the path-rewriting stage. It re-keys each
// matching file to its final URL-shaped path and records the
// human-facing permalink in metadata.
func Permalinks(opts PermalinksOptions) pipeline.Stage {
	return &permalinksStage{opts: opts}
}

func (s *permalinksStage) Name() string { return "permalinks" }

func (s *permalinksStage) Process(ctx context.Context, files *store.Store, pc *pipeline.Context) error {
	globs := patterns(s.opts.Match, "**/*.html")

	for _, key := range files.Keys() {
		if !pattern.MatchAny(globs, key) {
			continue
		}
		if path.Base(key) == "index.html" {
			continue
		}
		f := files.Get(key)

		pat, trailing, slugFn := s.resolvePattern(f)
		newKey := s.buildKey(f, pat, trailing, slugFn)
		newKey = uniqueKey(files, key, newKey)

		if newKey != key {
			if err := files.Rename(key, newKey); err != nil {
				return err
			}
		}
		f.Metadata["permalink"] = keyPermalink(newKey)
	}
	return nil
}

// resolvePattern picks the permalink pattern for a file: explicit
// metadata wins, then the first matching linkset, then the global
// pattern. An empty result means strip-extension.
func (s *permalinksStage) resolvePattern(f *store.File) (pat string, trailing bool, slugFn func(string) string) {
	trailing = boolOr(s.opts.TrailingSlash, true)
	slugFn = slug.Make

	if p := f.String("permalink"); p != "" {
		return p, trailing, slugFn
	}
	for _, ls := range s.opts.Linksets {
		if linksetMatches(ls, f) {
			if ls.TrailingSlash != nil {
				trailing = *ls.TrailingSlash
			}
			if ls.Slug != nil {
				slugFn = ls.Slug
			}
			return ls.Pattern, trailing, slugFn
		}
	}
	return s.opts.Pattern, trailing, slugFn
}

func linksetMatches(ls Linkset, f *store.File) bool {
	if len(ls.Match) == 0 {
		return false
	}
	for key, want := range ls.Match {
		if key == "pattern" {
			if !pattern.MatchAny(pattern.List(want), f.Path) {
				return false
			}
			continue
		}
		if !metadataMatches(f.Metadata[key], want) {
			return false
		}
	}
	return true
}

// metadataMatches tests equality, treating a list-valued metadata
// entry as a membership test.
func metadataMatches(have, want any) bool {
	switch v := have.(type) {
	case []any:
		for _, item := range v {
			if item == want {
				return true
			}
		}
		return false
	case []string:
		ws, ok := want.(string)
		if !ok {
			return false
		}
		for _, item := range v {
			if item == ws {
				return true
			}
		}
		return false
	}
	return have == want
}

var placeholderRe = regexp.MustCompile(`:(\w+)`)

func (s *permalinksStage) buildKey(f *store.File, pat string, trailing bool, slugFn func(string) string) string {
	var p string
	if pat == "" {
		p = strings.TrimSuffix(f.Path, path.Ext(f.Path))
	} else {
		p = placeholderRe.ReplaceAllStringFunc(pat, func(m string) string {
			return slugSegments(placeholderValue(f, m[1:]), slugFn)
		})
	}

	p = strings.TrimPrefix(store.NormalizePath(p), "/")
	if trailing {
		p = strings.TrimSuffix(p, "/") + "/index.html"
	} else if !strings.HasSuffix(p, ".html") {
		p += ".html"
	}
	return p
}

// slugSegments slugs a substituted value one path segment at a time,
// so multi-segment values like :date and :dir keep their slashes.
func slugSegments(v string, slugFn func(string) string) string {
	parts := strings.Split(v, "/")
	for i, p := range parts {
		parts[i] = slugFn(p)
	}
	return strings.Join(parts, "/")
}

func placeholderValue(f *store.File, name string) string {
	switch name {
	case "basename":
		base := path.Base(f.Path)
		return strings.TrimSuffix(base, path.Ext(base))
	case "directory", "dir":
		if d := path.Dir(f.Path); d != "." {
			return d
		}
		return ""
	case "slug":
		if v := f.String("slug"); v != "" {
			return v
		}
		return f.String("title")
	case "year":
		return dateComponent(f, "2006")
	case "month":
		return dateComponent(f, "01")
	case "day":
		return dateComponent(f, "02")
	case "date":
		return dateComponent(f, "2006/01/02")
	}
	if v := f.String(name); v != "" {
		return v
	}
	if v, ok := f.Metadata[name]; ok {
		return fmt.Sprint(v)
	}
	return ""
}

func dateComponent(f *store.File, layout string) string {
	t := f.Time("date")
	if t.IsZero() {
		return ""
	}
	return t.Format(layout)
}

// uniqueKey resolves collisions by suffixing the basename with -1, -2
// and so on until the key is free. The file's own current key never
// counts as a collision.
func uniqueKey(files *store.Store, current, key string) string {
	if key == current || !files.Has(key) {
		return key
	}
	dir, base := path.Dir(key), path.Base(key)
	for n := 1; ; n++ {
		var candidate string
		if base == "index.html" {
			candidate = path.Join(fmt.Sprintf("%s-%d", dir, n), "index.html")
		} else {
			ext := path.Ext(base)
			stem := strings.TrimSuffix(base, ext)
			candidate = path.Join(dir, fmt.Sprintf("%s-%d%s", stem, n, ext))
		}
		if candidate == current || !files.Has(candidate) {
			return candidate
		}
	}
}
