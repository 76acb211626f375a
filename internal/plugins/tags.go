package plugins

import (
	"context"
	"sort"
	"strings"

	"github.com/aellingwood/janos/internal/pipeline"
	"github.com/aellingwood/janos/internal/slug"
	"github.com/aellingwood/janos/internal/store"
)

// TagsOptions configures the tags stage.
type TagsOptions struct {
	// Fields lists the metadata fields to normalize; default ["tags"].
	Fields []string `json:"fields"`
}

type tagsStage struct {
	opts TagsOptions
}

// Tags returns the stage that normalizes tag metadata to a list of
// {name, slug} pairs and publishes allTags and a tag cloud in the
// global metadata.
func Tags(opts TagsOptions) pipeline.Stage {
	return &tagsStage{opts: opts}
}

func (s *tagsStage) Name() string { return "tags" }

func (s *tagsStage) Process(ctx context.Context, files *store.Store, pc *pipeline.Context) error {
	fields := s.opts.Fields
	if len(fields) == 0 {
		fields = []string{"tags"}
	}

	counts := make(map[string]int) // name -> occurrences
	for _, f := range files.Files() {
		for _, field := range fields {
			raw, ok := f.Metadata[field]
			if !ok {
				continue
			}
			tags := normalizeTags(raw)
			f.Metadata[field] = tags
			if field == "tags" {
				for _, t := range tags {
					counts[t["name"].(string)]++
				}
			}
		}
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	all := make([]map[string]any, 0, len(names))
	cloud := make(map[string]any, len(names))
	for _, name := range names {
		all = append(all, map[string]any{"name": name, "slug": slug.Tag(name)})
		cloud[name] = map[string]any{
			"urlSafe": slug.Tag(name),
			"length":  counts[name],
		}
	}

	pc.Metadata["allTags"] = all
	pc.Metadata["tags"] = cloud
	pc.Metadata["tagCloud"] = cloud
	return nil
}

// normalizeTags coerces the accepted tag shapes to a list of
// {name, slug} maps: a list of strings, a comma-separated string, a
// single string, or a list of objects carrying a name.
func normalizeTags(raw any) []map[string]any {
	var names []string
	switch v := raw.(type) {
	case string:
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				names = append(names, part)
			}
		}
	case []string:
		names = v
	case []any:
		for _, item := range v {
			switch t := item.(type) {
			case string:
				names = append(names, t)
			case map[string]any:
				if name, ok := t["name"].(string); ok && name != "" {
					names = append(names, name)
				}
			}
		}
	case []map[string]any:
		for _, t := range v {
			if name, ok := t["name"].(string); ok && name != "" {
				names = append(names, name)
			}
		}
	}

	tags := make([]map[string]any, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		tags = append(tags, map[string]any{"name": name, "slug": slug.Tag(name)})
	}
	return tags
}
