package plugins

import (
	"context"
	"strings"

	"github.com/aellingwood/janos/internal/pipeline"
	"github.com/aellingwood/janos/internal/pattern"
	"github.com/aellingwood/janos/internal/store"
)

// LayoutsOptions configures the layouts stage.
type LayoutsOptions struct {
	// Directory prefixes layout keys in the store; default "_layouts".
	Directory string `json:"directory"`
	// Default is the layout used when a file declares none.
	Default string `json:"default"`
	// Pattern selects the content files to render; default **/*.html.
	Pattern any `json:"pattern"`
}

type layoutsStage struct {
	opts LayoutsOptions
}

// Layouts returns the rendering stage. Each matching content file is
// rendered through its resolved layout template; the rendered bytes
// replace the file contents. A missing layout is a warning and a
// render failure an error log, both leaving the pre-render body.
func Layouts(opts LayoutsOptions) pipeline.Stage {
	return &layoutsStage{opts: opts}
}

func (s *layoutsStage) Name() string { return "layouts" }

// storeBinder is implemented by engines whose template loader resolves
// names against the file store.
type storeBinder interface {
	BindStore(files *store.Store, layoutsDir string)
}

func (s *layoutsStage) Process(ctx context.Context, files *store.Store, pc *pipeline.Context) error {
	dir := stringOr(s.opts.Directory, "_layouts")
	globs := patterns(s.opts.Pattern, "**/*.html")

	for _, e := range pc.Engines() {
		if b, ok := e.(storeBinder); ok {
			b.BindStore(files, dir)
		}
	}

	for _, f := range files.Files() {
		if strings.HasPrefix(f.Path, dir+"/") {
			continue
		}
		if !pattern.MatchAny(globs, f.Path) {
			continue
		}

		layout, ok := layoutName(f, s.opts.Default)
		if !ok {
			continue
		}

		resolved := resolveLayout(files, dir, layout)
		if resolved == "" {
			pc.Log.Warnf("layouts: %v", &pipeline.LayoutNotFoundError{Layout: layout, Path: f.Path})
			continue
		}

		engine, err := pc.EngineFor(resolved)
		if err != nil {
			return err
		}

		rendered, err := engine.RenderFile(resolved, templateData(f, pc))
		if err != nil {
			pc.Log.Errorf("layouts: render %s with %s: %v", f.Path, resolved, err)
			continue
		}
		f.Contents = []byte(rendered)
	}
	return nil
}

// layoutName returns the layout to use for a file. layout: false
// suppresses rendering; an absent layout falls back to the default.
func layoutName(f *store.File, def string) (string, bool) {
	switch v := f.Metadata["layout"].(type) {
	case bool:
		if !v {
			return "", false
		}
	case string:
		if v != "" {
			return v, true
		}
	}
	if def != "" {
		return def, true
	}
	return "", false
}

var layoutSuffixes = []string{"", ".njk", ".nunjucks", ".html"}

// resolveLayout finds the store key for a layout name, trying the name
// verbatim and with known suffixes, both under the layouts directory
// and bare. Empty means not found.
func resolveLayout(files *store.Store, dir, name string) string {
	for _, suffix := range layoutSuffixes {
		candidate := name + suffix
		if !strings.HasPrefix(candidate, dir+"/") {
			if prefixed := dir + "/" + candidate; files.Has(prefixed) {
				return prefixed
			}
		}
		if files.Has(candidate) {
			return candidate
		}
	}
	return ""
}

// templateData builds the merged render context: global metadata under
// file metadata, the pre-render body as contents and content, page as
// an alias for the file metadata, plus site, now, and flattened
// site_<key> primitives.
func templateData(f *store.File, pc *pipeline.Context) map[string]any {
	data := make(map[string]any, len(pc.Metadata)+len(f.Metadata)+8)
	for k, v := range pc.Metadata {
		data[k] = v
	}
	for k, v := range f.Metadata {
		data[k] = v
	}

	body := string(f.Contents)
	data["contents"] = body
	data["content"] = body
	data["page"] = f.Metadata
	data["path"] = f.Path
	data["now"] = pc.Now

	if site, ok := pc.Metadata["site"].(map[string]any); ok {
		data["site"] = site
		for k, v := range site {
			switch v.(type) {
			case string, bool, int, int64, float64:
				data["site_"+k] = v
			}
		}
	}
	return data
}
