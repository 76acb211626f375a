package plugins

import (
	"context"
	"strings"

	"github.com/aellingwood/janos/internal/frontmatter"
	"github.com/aellingwood/janos/internal/markdown"
	"github.com/aellingwood/janos/internal/pipeline"
	"github.com/aellingwood/janos/internal/pattern"
	"github.com/aellingwood/janos/internal/store"
)

// MarkdownOptions configures the markdown stage.
type MarkdownOptions struct {
	// Pattern selects input files; defaults to **/*.md and **/*.markdown.
	Pattern any `json:"pattern"`
	// Extension is the output extension, default ".html".
	Extension string `json:"extension"`
	// StripHTML drops raw HTML from the Markdown source instead of
	// passing it through.
	StripHTML bool `json:"stripHtml"`
	// Highlight enables server-side syntax highlighting of fenced code
	// blocks. When off, blocks keep their language-<lang> class for
	// client-side highlighters.
	Highlight bool `json:"highlight"`
}

type markdownStage struct {
	opts     MarkdownOptions
	renderer *markdown.Renderer
}

// Markdown returns the stage that splits frontmatter from each
// matching file, converts the Markdown body to HTML, and re-keys the
// file to the output extension. Frontmatter failures and conversion
// failures leave the body untouched; the former is a warning, the
// latter an error log entry.
func Markdown(opts MarkdownOptions) pipeline.Stage {
	return &markdownStage{
		opts: opts,
		renderer: markdown.New(markdown.Options{
			StripHTML: opts.StripHTML,
			Highlight: opts.Highlight,
		}),
	}
}

func (s *markdownStage) Name() string { return "markdown" }

func (s *markdownStage) Process(ctx context.Context, files *store.Store, pc *pipeline.Context) error {
	globs := patterns(s.opts.Pattern, "**/*.md", "**/*.markdown")
	ext := stringOr(s.opts.Extension, ".html")

	for _, key := range files.Keys() {
		if !pattern.MatchAny(globs, key) {
			continue
		}
		f := files.Get(key)

		meta, body, err := frontmatter.Parse(key, f.Contents)
		if err != nil {
			pc.Log.Warnf("frontmatter: %v", err)
			continue
		}
		for k, v := range meta {
			f.Metadata[k] = v
		}

		html, err := s.renderer.Convert(body)
		if err != nil {
			pc.Log.Errorf("markdown: %v", &pipeline.FileProcessingError{Path: key, Err: err})
			continue
		}
		f.Contents = html

		newKey := replaceExt(key, ext)
		if newKey != key {
			if err := files.Rename(key, newKey); err != nil {
				return err
			}
		}
	}
	return nil
}

func replaceExt(key, ext string) string {
	if i := strings.LastIndexByte(key, '.'); i > strings.LastIndexByte(key, '/') {
		return key[:i] + ext
	}
	return key + ext
}
