package plugins

import (
	"bytes"
	"context"
	"strings"

	"github.com/aellingwood/janos/internal/pipeline"
	"github.com/aellingwood/janos/internal/pattern"
	"github.com/aellingwood/janos/internal/store"
)

// CSSURLsOptions configures the css-urls stage.
type CSSURLsOptions struct {
	// Pattern selects the stylesheets to rewrite; default **/*.css.
	Pattern any `json:"pattern"`
}

type cssURLsStage struct {
	opts CSSURLsOptions
}

// CSSURLs returns the stage that prefixes root-relative url()
// references in stylesheets with the site root path, for sites served
// from a subdirectory. It is a no-op when site.rootpath is unset or /.
func CSSURLs(opts CSSURLsOptions) pipeline.Stage {
	return &cssURLsStage{opts: opts}
}

func (s *cssURLsStage) Name() string { return "cssurls" }

func (s *cssURLsStage) Process(ctx context.Context, files *store.Store, pc *pipeline.Context) error {
	root := pc.Site.RootPath
	if root == "" || root == "/" {
		return nil
	}
	if !strings.HasSuffix(root, "/") {
		root += "/"
	}
	replacement := []byte("url(" + root)

	globs := patterns(s.opts.Pattern, "**/*.css")
	for _, f := range files.Files() {
		if !pattern.MatchAny(globs, f.Path) {
			continue
		}
		f.Contents = bytes.ReplaceAll(f.Contents, []byte("url(/"), replacement)
	}
	return nil
}
