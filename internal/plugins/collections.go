package plugins

import (
	"context"

	"github.com/aellingwood/janos/internal/pipeline"
	"github.com/aellingwood/janos/internal/pattern"
	"github.com/aellingwood/janos/internal/store"
)

// CollectionConfig configures one named collection.
type CollectionConfig struct {
	// Pattern adds files whose key matches; glob or list of globs.
	Pattern any `json:"pattern"`
	// SortBy is the metadata key to order by, default "date".
	SortBy string `json:"sortBy"`
	// Reverse inverts the sort order.
	Reverse bool `json:"reverse"`
	// Refer back-references the collection name on each member file's
	// metadata. Default true.
	Refer *bool `json:"refer"`
	// Limit caps the collection length when positive.
	Limit int `json:"limit"`
	// Filter drops items for which it returns false. Not reachable
	// from JSON config; registered stages may set it in code.
	Filter func(item map[string]any) bool `json:"-"`
}

type collectionsStage struct {
	configs map[string]CollectionConfig
}

// Collections returns the aggregator stage that groups files into
// named, ordered collections of metadata snapshots and assigns the
// result to the global metadata under "collections".
func Collections(configs map[string]CollectionConfig) pipeline.Stage {
	if configs == nil {
		configs = map[string]CollectionConfig{}
	}
	return &collectionsStage{configs: configs}
}

func (s *collectionsStage) Name() string { return "collections" }

func (s *collectionsStage) Process(ctx context.Context, files *store.Store, pc *pipeline.Context) error {
	collections := make(map[string][]map[string]any, len(s.configs))
	members := make(map[string]map[string]bool) // name -> file keys present
	for name := range s.configs {
		collections[name] = []map[string]any{}
		members[name] = map[string]bool{}
	}

	add := func(name string, f *store.File) {
		cfg := s.configs[name]
		if members[name] == nil {
			members[name] = map[string]bool{}
		}
		if members[name][f.Path] {
			return
		}
		item := snapshot(f)
		if cfg.Filter != nil && !cfg.Filter(item) {
			return
		}
		members[name][f.Path] = true
		collections[name] = append(collections[name], item)

		if boolOr(cfg.Refer, true) {
			refs := f.StringSlice("collections")
			refs = append(refs, name)
			f.Metadata["collections"] = refs
			if _, ok := f.Metadata["collection"]; !ok {
				f.Metadata["collection"] = name
			}
		}
	}

	// Metadata-declared membership first, then pattern matches.
	for _, f := range files.Files() {
		for _, name := range listOf(f.Metadata["collection"]) {
			add(name, f)
		}
	}
	for name, cfg := range s.configs {
		globs := pattern.List(cfg.Pattern)
		if len(globs) == 0 {
			continue
		}
		for _, f := range files.Files() {
			if pattern.MatchAny(globs, f.Path) {
				add(name, f)
			}
		}
	}

	for name, items := range collections {
		cfg := s.configs[name]
		sortItems(items, stringOr(cfg.SortBy, "date"), cfg.Reverse)
		if cfg.Limit > 0 && len(items) > cfg.Limit {
			items = items[:cfg.Limit]
		}
		collections[name] = items
		pc.Log.Debugf("collections: %s has %d items", name, len(items))
	}

	pc.Metadata["collections"] = collections
	return nil
}
