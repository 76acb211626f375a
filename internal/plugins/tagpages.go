package plugins

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/aellingwood/janos/internal/pipeline"
	"github.com/aellingwood/janos/internal/store"
)

// TagPagesOptions configures the tag-pages stage.
type TagPagesOptions struct {
	// Path is the key pattern per tag, with :tag substituted by the
	// tag slug. Default "topics/:tag/index.html".
	Path string `json:"path"`
	// Title is the page title pattern, with :tag substituted by the
	// tag name. Default ":tag".
	Title string `json:"title"`
	// Layout is assigned to every synthesized page.
	Layout string `json:"layout"`
	// SortBy orders the tag's items, default "date".
	SortBy string `json:"sortBy"`
	// Reverse inverts the sort order.
	Reverse bool `json:"reverse"`
	// PerPage paginates the tag pages when positive; zero emits one
	// page per tag.
	PerPage int `json:"perPage"`
	// Metadata is merged into every synthesized page.
	Metadata map[string]any `json:"metadata"`
}

type tagPagesStage struct {
	opts TagPagesOptions
}

// TagPages returns the stage that synthesizes one listing page (or a
// paginated run of pages) per unique tag, and publishes a tagPages
// index in the global metadata.
func TagPages(opts TagPagesOptions) pipeline.Stage {
	return &tagPagesStage{opts: opts}
}

func (s *tagPagesStage) Name() string { return "tagpages" }

func (s *tagPagesStage) Process(ctx context.Context, files *store.Store, pc *pipeline.Context) error {
	pathPattern := stringOr(s.opts.Path, "topics/:tag/index.html")
	titlePattern := stringOr(s.opts.Title, ":tag")
	sortBy := stringOr(s.opts.SortBy, "date")

	type tagGroup struct {
		name  string
		slug  string
		items []map[string]any
	}
	groups := make(map[string]*tagGroup) // by slug

	for _, f := range files.Files() {
		tags, ok := f.Metadata["tags"].([]map[string]any)
		if !ok {
			continue
		}
		for _, t := range tags {
			name, _ := t["name"].(string)
			sl, _ := t["slug"].(string)
			if sl == "" {
				continue
			}
			g := groups[sl]
			if g == nil {
				g = &tagGroup{name: name, slug: sl}
				groups[sl] = g
			}
			g.items = append(g.items, snapshot(f))
		}
	}

	slugs := make([]string, 0, len(groups))
	for sl := range groups {
		slugs = append(slugs, sl)
	}
	sort.Strings(slugs)

	index := make([]map[string]any, 0, len(groups))
	for _, sl := range slugs {
		g := groups[sl]
		sortItems(g.items, sortBy, s.opts.Reverse)

		first := strings.ReplaceAll(pathPattern, ":tag", g.slug)
		perPage := s.opts.PerPage
		if perPage <= 0 {
			perPage = len(g.items)
		}
		numPattern := tagPagePattern(first)

		for _, page := range paginate(g.items, perPage, first, numPattern) {
			key := pagePath(page["current"].(int), first, numPattern)
			f := store.NewFile(key, nil)
			for k, v := range s.opts.Metadata {
				f.Metadata[k] = v
			}
			if s.opts.Layout != "" {
				f.Metadata["layout"] = s.opts.Layout
			}
			f.Metadata["title"] = strings.ReplaceAll(titlePattern, ":tag", g.name)
			f.Metadata["tag"] = map[string]any{"name": g.name, "slug": g.slug}
			f.Metadata["pagination"] = page
			files.Set(key, f)
		}

		index = append(index, map[string]any{
			"name":  g.name,
			"slug":  g.slug,
			"count": len(g.items),
		})
	}

	pc.Metadata["tagPages"] = index
	return nil
}

// tagPagePattern derives the :num pattern for pages after the first:
// the first page's directory gains a page/:num segment.
func tagPagePattern(first string) string {
	dir, base := path.Dir(first), path.Base(first)
	if dir == "." {
		return fmt.Sprintf("page/:num/%s", base)
	}
	return fmt.Sprintf("%s/page/:num/%s", dir, base)
}
