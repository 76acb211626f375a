package plugins

import (
	"context"
	"strings"

	"github.com/aellingwood/janos/internal/pipeline"
	"github.com/aellingwood/janos/internal/store"
)

// AssetPair maps a source prefix to a destination prefix.
type AssetPair struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

type assetsStage struct {
	pairs []AssetPair
}

// Assets returns the stage that copies every file under each source
// prefix to the matching destination prefix, cloning metadata and
// keeping the original in place.
func Assets(pairs ...AssetPair) pipeline.Stage {
	return &assetsStage{pairs: pairs}
}

func (s *assetsStage) Name() string { return "assets" }

func (s *assetsStage) Process(ctx context.Context, files *store.Store, pc *pipeline.Context) error {
	for _, pair := range s.pairs {
		src := strings.Trim(pair.Source, "/")
		dst := strings.Trim(pair.Destination, "/")
		if src == "" {
			continue
		}

		var copied int
		for _, key := range files.Keys() {
			rel, ok := strings.CutPrefix(key, src+"/")
			if !ok {
				continue
			}
			f := files.Get(key)
			clone := f.Clone()
			files.Set(dst+"/"+rel, clone)
			copied++
		}
		pc.Log.Debugf("assets: copied %d files from %s to %s", copied, src, dst)
	}
	return nil
}
