package plugins

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aellingwood/janos/internal/pipeline"
	"github.com/aellingwood/janos/internal/pattern"
	"github.com/aellingwood/janos/internal/store"
)

// InlineSourceOptions configures the inline-source stage.
type InlineSourceOptions struct {
	// Pattern selects the HTML files to process; default **/*.html.
	Pattern any `json:"pattern"`
	// MaxSize is the inlining size gate in bytes, default 50000.
	// Larger referenced files stay external.
	MaxSize int `json:"maxSize"`
}

type inlineStage struct {
	opts InlineSourceOptions
}

// InlineSource returns the stage that folds small local scripts,
// stylesheets, and images into the referencing HTML document. The
// transform is structural rather than textual, so malformed references
// never corrupt surrounding markup. External and oversized references
// are left alone.
func InlineSource(opts InlineSourceOptions) pipeline.Stage {
	return &inlineStage{opts: opts}
}

func (s *inlineStage) Name() string { return "inlinesource" }

func (s *inlineStage) Process(ctx context.Context, files *store.Store, pc *pipeline.Context) error {
	globs := patterns(s.opts.Pattern, "**/*.html")
	maxSize := intOr(s.opts.MaxSize, 50000)

	for _, f := range files.Files() {
		if !pattern.MatchAny(globs, f.Path) {
			continue
		}
		out, changed, err := s.inline(f, files, maxSize)
		if err != nil {
			pc.Log.Warnf("inlinesource: %s: %v", f.Path, err)
			continue
		}
		if changed {
			f.Contents = out
		}
	}
	return nil
}

func (s *inlineStage) inline(f *store.File, files *store.Store, maxSize int) ([]byte, bool, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(f.Contents))
	if err != nil {
		return nil, false, fmt.Errorf("parse: %w", err)
	}

	changed := false
	lookup := func(ref string) *store.File {
		key := resolveRef(f.Path, ref)
		if key == "" {
			return nil
		}
		target := files.Get(key)
		if target == nil || len(target.Contents) > maxSize {
			return nil
		}
		return target
	}

	doc.Find("script[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		if target := lookup(src); target != nil {
			sel.RemoveAttr("src")
			sel.SetAttr("type", "text/javascript")
			sel.SetHtml(string(target.Contents))
			changed = true
		}
	})

	doc.Find(`link[rel="stylesheet"][href]`).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if target := lookup(href); target != nil {
			sel.ReplaceWithHtml("<style>" + string(target.Contents) + "</style>")
			changed = true
		}
	})

	doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		if target := lookup(src); target != nil {
			mime := mimeForExt(path.Ext(target.Path))
			if mime == "" {
				return
			}
			encoded := base64.StdEncoding.EncodeToString(target.Contents)
			sel.SetAttr("src", "data:"+mime+";base64,"+encoded)
			changed = true
		}
	})

	if !changed {
		return nil, false, nil
	}
	out, err := doc.Html()
	if err != nil {
		return nil, false, fmt.Errorf("serialize: %w", err)
	}
	return []byte(out), true, nil
}

// resolveRef turns an href or src into a store key, relative to the
// referencing page. External references resolve to "".
func resolveRef(page, ref string) string {
	if ref == "" || isExternal(ref) {
		return ""
	}
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	if strings.HasPrefix(ref, "/") {
		return store.NormalizePath(ref)
	}
	return store.NormalizePath(path.Join(path.Dir(page), ref))
}

func mimeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".svg":
		return "image/svg+xml"
	case ".webp":
		return "image/webp"
	}
	return ""
}
