package plugins

import (
	"bytes"
	"context"
	"path"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/svg"

	"github.com/aellingwood/janos/internal/pipeline"
	"github.com/aellingwood/janos/internal/pattern"
	"github.com/aellingwood/janos/internal/store"
)

// MinifyOptions configures the minify stage.
type MinifyOptions struct {
	// Pattern selects the files to minify; default HTML, CSS, JS, and
	// SVG outputs.
	Pattern any `json:"pattern"`
}

type minifyStage struct {
	opts MinifyOptions
	m    *minify.M
}

// Minify returns the stage that minifies text outputs by extension.
// A file that fails to minify keeps its original contents with a
// warning.
func Minify(opts MinifyOptions) pipeline.Stage {
	m := minify.New()
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("application/javascript", js.Minify)
	m.AddFunc("image/svg+xml", svg.Minify)
	return &minifyStage{opts: opts, m: m}
}

func (s *minifyStage) Name() string { return "minify" }

var minifyMIME = map[string]string{
	".html": "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".svg":  "image/svg+xml",
}

func (s *minifyStage) Process(ctx context.Context, files *store.Store, pc *pipeline.Context) error {
	globs := patterns(s.opts.Pattern, "**/*.html", "**/*.css", "**/*.js", "**/*.svg")

	for _, f := range files.Files() {
		if !pattern.MatchAny(globs, f.Path) {
			continue
		}
		mime, ok := minifyMIME[strings.ToLower(path.Ext(f.Path))]
		if !ok {
			continue
		}
		var out bytes.Buffer
		if err := s.m.Minify(mime, &out, bytes.NewReader(f.Contents)); err != nil {
			pc.Log.Warnf("minify: %s: %v", f.Path, err)
			continue
		}
		f.Contents = out.Bytes()
	}
	return nil
}
