package plugins

import (
	"context"
	"strings"

	"github.com/aellingwood/janos/internal/pipeline"
	"github.com/aellingwood/janos/internal/pattern"
	"github.com/aellingwood/janos/internal/store"
)

// ExcerptsOptions configures the excerpts stage.
type ExcerptsOptions struct {
	// Pattern selects files to scan; defaults to **/*.html and **/*.md.
	Pattern any `json:"pattern"`
	// Marker is the split marker, default "<!-- more -->".
	Marker string `json:"marker"`
	// Trim trims whitespace around the excerpt. Default true.
	Trim *bool `json:"trim"`
	// RemoveMarker removes the marker from the body. Default true.
	RemoveMarker *bool `json:"removeMarker"`
}

type excerptsStage struct {
	opts ExcerptsOptions
}

// Excerpts returns the stage that splits each matching file on the
// first occurrence of the marker, storing the leading substring as
// metadata.excerpt. Files without a marker are left unchanged.
func Excerpts(opts ExcerptsOptions) pipeline.Stage {
	return &excerptsStage{opts: opts}
}

func (s *excerptsStage) Name() string { return "excerpts" }

func (s *excerptsStage) Process(ctx context.Context, files *store.Store, pc *pipeline.Context) error {
	globs := patterns(s.opts.Pattern, "**/*.html", "**/*.md")
	marker := stringOr(s.opts.Marker, "<!-- more -->")
	trim := boolOr(s.opts.Trim, true)
	remove := boolOr(s.opts.RemoveMarker, true)

	for _, f := range files.Files() {
		if !pattern.MatchAny(globs, f.Path) {
			continue
		}
		body := string(f.Contents)
		i := strings.Index(body, marker)
		if i < 0 {
			continue
		}

		excerpt := body[:i]
		if trim {
			excerpt = strings.TrimSpace(excerpt)
		}
		f.Metadata["excerpt"] = excerpt

		if remove {
			f.Contents = []byte(body[:i] + body[i+len(marker):])
		}
	}
	return nil
}
