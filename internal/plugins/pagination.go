package plugins

import (
	"context"
	"strconv"
	"strings"

	"github.com/aellingwood/janos/internal/pipeline"
	"github.com/aellingwood/janos/internal/store"
)

// PaginateConfig configures pagination for one collection reference.
type PaginateConfig struct {
	// PerPage is the page size, default 10.
	PerPage int `json:"perPage"`
	// First is the key for page 1, e.g. "index.html".
	First string `json:"first"`
	// Path is the key pattern for subsequent pages, with :num
	// substituted by the page number, e.g. "page/:num/index.html".
	Path string `json:"path"`
	// Layout is assigned to every synthesized page.
	Layout string `json:"layout"`
	// PageMetadata is merged into every synthesized page's metadata.
	PageMetadata map[string]any `json:"pageMetadata"`
	// NoPageOne suppresses the page-1 variant at the :num path; the
	// First key is still emitted.
	NoPageOne bool `json:"noPageOne"`
	// Filter drops items before paging. Code-only.
	Filter func(item map[string]any) bool `json:"-"`
}

type paginationStage struct {
	// configs is keyed by dotted collection reference, e.g.
	// "collections.posts".
	configs map[string]PaginateConfig
}

// Pagination returns the stage that slices collections into pages and
// synthesizes one file per page carrying PaginationData.
func Pagination(configs map[string]PaginateConfig) pipeline.Stage {
	return &paginationStage{configs: configs}
}

func (s *paginationStage) Name() string { return "pagination" }

func (s *paginationStage) Process(ctx context.Context, files *store.Store, pc *pipeline.Context) error {
	collections := collectionsFrom(pc)

	for ref, cfg := range s.configs {
		name := strings.TrimPrefix(ref, "collections.")
		items := collections[name]
		if cfg.Filter != nil {
			kept := items[:0:0]
			for _, item := range items {
				if cfg.Filter(item) {
					kept = append(kept, item)
				}
			}
			items = kept
		}
		if len(items) == 0 {
			pc.Log.Debugf("pagination: collection %s is missing or empty, skipping", name)
			continue
		}

		perPage := intOr(cfg.PerPage, 10)
		first := stringOr(cfg.First, "index.html")
		pathPattern := stringOr(cfg.Path, "page/:num/index.html")

		for _, page := range paginate(items, perPage, first, pathPattern) {
			num := page["current"].(int)
			key := pagePath(num, first, pathPattern)
			if cfg.NoPageOne && num == 1 && key != first {
				continue
			}

			f := store.NewFile(key, nil)
			for k, v := range cfg.PageMetadata {
				f.Metadata[k] = v
			}
			if cfg.Layout != "" {
				f.Metadata["layout"] = cfg.Layout
			}
			f.Metadata["pagination"] = page
			files.Set(key, f)
		}
	}
	return nil
}

func pagePath(num int, first, pattern string) string {
	if num == 1 {
		return first
	}
	return strings.ReplaceAll(pattern, ":num", strconv.Itoa(num))
}

// paginate slices items into PaginationData maps, one per page. Each
// carries the shared pages index plus current, total, next, and
// previous references.
func paginate(items []map[string]any, perPage int, first, pattern string) []map[string]any {
	total := (len(items) + perPage - 1) / perPage

	pages := make([]map[string]any, total)
	for i := range pages {
		pages[i] = map[string]any{
			"num":  i + 1,
			"path": pagePath(i+1, first, pattern),
		}
	}

	out := make([]map[string]any, total)
	for i := range out {
		start := i * perPage
		end := min(start+perPage, len(items))

		var next, previous any
		if i+1 < total {
			next = pages[i+1]
		}
		if i > 0 {
			previous = pages[i-1]
		}
		out[i] = map[string]any{
			"files":    items[start:end],
			"pages":    pages,
			"current":  i + 1,
			"total":    total,
			"next":     next,
			"previous": previous,
		}
	}
	return out
}
