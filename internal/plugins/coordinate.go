package plugins

import (
	"context"

	"github.com/aellingwood/janos/internal/pipeline"
	"github.com/aellingwood/janos/internal/store"
)

type coordinateStage struct{}

// Coordinate returns the stage that reconciles collection items with
// the file keys rewritten by the permalinks stage. It must run after
// every path-altering stage whose output collections should reflect.
// Each item's path is replaced through a sourcePath-to-key map and its
// permalink recomputed; items carrying a navpath keep it as their
// permalink. Collections are additionally mirrored as top-level global
// metadata keys so templates can reach them without the collections
// prefix.
func Coordinate() pipeline.Stage {
	return coordinateStage{}
}

func (coordinateStage) Name() string { return "coordinate" }

func (coordinateStage) Process(ctx context.Context, files *store.Store, pc *pipeline.Context) error {
	collections := collectionsFrom(pc)
	if collections == nil {
		return nil
	}

	bySource := make(map[string]string, files.Len())
	for _, f := range files.Files() {
		if f.SourcePath != "" {
			bySource[f.SourcePath] = f.Path
		}
	}

	for name, items := range collections {
		for _, item := range items {
			if np, ok := item["navpath"].(string); ok && np != "" {
				item["permalink"] = np
				continue
			}
			key := lookupKey(files, bySource, item)
			if key == "" {
				pc.Log.Debugf("coordinate: no file for collection item %v in %s", item["path"], name)
				continue
			}
			item["path"] = key
			item["permalink"] = keyPermalink(key)
		}
	}

	for name, items := range collections {
		switch name {
		case "site", "build", "collections":
			pc.Log.Warnf("coordinate: collection %q shadows a reserved key, not mirrored", name)
		default:
			pc.Metadata[name] = items
		}
	}
	return nil
}

func lookupKey(files *store.Store, bySource map[string]string, item map[string]any) string {
	if sp, ok := item["sourcePath"].(string); ok {
		if key, ok := bySource[sp]; ok {
			return key
		}
	}
	if p, ok := item["path"].(string); ok {
		if files.Has(p) {
			return p
		}
		if key, ok := bySource[p]; ok {
			return key
		}
	}
	return ""
}
