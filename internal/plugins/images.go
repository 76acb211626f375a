package plugins

import (
	"context"
	"errors"
	"fmt"
	"html"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/aellingwood/janos/internal/imaging"
	"github.com/aellingwood/janos/internal/pipeline"
	"github.com/aellingwood/janos/internal/pattern"
	"github.com/aellingwood/janos/internal/store"
)

// ImagesOptions configures the responsive-images stage.
type ImagesOptions struct {
	// Pattern selects the files to transform; default **/*.md and
	// **/*.html.
	Pattern any `json:"pattern"`
	// Formats are the output encodings in preference order; unknown
	// formats are skipped. Default ["webp", "jpg"].
	Formats []string `json:"formats"`
	// Sizes are the variant widths; default [640, 1024, 1920].
	Sizes []int `json:"sizes"`
	// Quality for lossy encoders, default 80.
	Quality int `json:"quality"`
	// Dir is the store prefix for generated variants, default
	// "images/generated".
	Dir string `json:"dir"`
	// Concurrency bounds the parallel codec calls, default 8.
	Concurrency int `json:"concurrency"`
}

// ImageCodec produces resized image variants. imaging.Codec is the
// production implementation.
type ImageCodec interface {
	IsSupported(data []byte) bool
	Process(data []byte, opts imaging.Options) (*imaging.Variant, error)
}

type imagesStage struct {
	opts  ImagesOptions
	codec ImageCodec
}

// Images returns the stage that rewrites Markdown image references
// into <picture> elements with per-format srcsets, generating the
// variants through the codec and storing them in the file store.
func Images(opts ImagesOptions) pipeline.Stage {
	return ImagesWithCodec(opts, imaging.NewCodec())
}

// ImagesWithCodec is Images with an explicit codec.
func ImagesWithCodec(opts ImagesOptions, codec ImageCodec) pipeline.Stage {
	return &imagesStage{opts: opts, codec: codec}
}

func (s *imagesStage) Name() string { return "images" }

// mdImageRe matches ![alt](url "title") with an optional title.
var mdImageRe = regexp.MustCompile(`!\[([^\]]*)\]\(\s*([^)\s]+)(?:\s+"([^"]*)")?\s*\)`)

type imageRef struct {
	alt, title string
	sourceKey  string
}

func (s *imagesStage) Process(ctx context.Context, files *store.Store, pc *pipeline.Context) error {
	globs := patterns(s.opts.Pattern, "**/*.md", "**/*.html")
	formats := s.opts.Formats
	if len(formats) == 0 {
		formats = []string{"webp", "jpg"}
	}
	sizes := s.opts.Sizes
	if len(sizes) == 0 {
		sizes = []int{640, 1024, 1920}
	}
	dir := stringOr(s.opts.Dir, "images/generated")

	// First pass: find every internal, supported image referenced by a
	// matching file.
	refs := make(map[string]imageRef) // by source key
	var pages []*store.File
	for _, f := range files.Files() {
		if !pattern.MatchAny(globs, f.Path) {
			continue
		}
		pages = append(pages, f)
		for _, m := range mdImageRe.FindAllStringSubmatch(string(f.Contents), -1) {
			alt, url, title := m[1], m[2], m[3]
			if isExternal(url) {
				continue
			}
			key := resolveRef(f.Path, url)
			src := files.Get(key)
			if src == nil || !s.codec.IsSupported(src.Contents) {
				continue
			}
			if _, seen := refs[key]; !seen {
				refs[key] = imageRef{alt: alt, title: title, sourceKey: key}
			}
		}
	}
	if len(refs) == 0 {
		return nil
	}

	// Second pass: generate variants concurrently, committing to the
	// store only after all tasks finish.
	type generated struct {
		key      string
		variants []storedVariant
	}
	results := make([]generated, 0, len(refs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(intOr(s.opts.Concurrency, 8))
	for key := range refs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src := files.Get(key)
			variants := s.generate(src.Contents, key, dir, formats, sizes, pc)
			mu.Lock()
			results = append(results, generated{key: key, variants: variants})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	cache := make(map[string]string, len(results)) // source key -> html
	for _, r := range results {
		ref := refs[r.key]
		for _, v := range r.variants {
			files.Set(v.key, store.NewFile(v.key, v.data))
		}
		cache[r.key] = pictureHTML(ref, r.variants)
	}

	// Third pass: rewrite the references, sharing cached HTML for
	// duplicate references to the same source.
	for _, f := range pages {
		body := mdImageRe.ReplaceAllStringFunc(string(f.Contents), func(m string) string {
			sub := mdImageRe.FindStringSubmatch(m)
			if isExternal(sub[2]) {
				return m
			}
			key := resolveRef(f.Path, sub[2])
			if html, ok := cache[key]; ok {
				return html
			}
			return m
		})
		f.Contents = []byte(body)
	}
	return nil
}

type storedVariant struct {
	key    string
	data   []byte
	width  int
	height int
	format string
}

// generate produces one variant per format and size. Encoder gaps and
// per-variant failures degrade gracefully: the formats that fail are
// simply absent from the result.
func (s *imagesStage) generate(data []byte, sourceKey, dir string, formats []string, sizes []int, pc *pipeline.Context) []storedVariant {
	// The full source path keeps variants of same-named images in
	// different directories apart.
	stem := strings.TrimSuffix(sourceKey, path.Ext(sourceKey))

	var variants []storedVariant
	for _, format := range formats {
		widths := make(map[int]bool)
		for _, size := range sizes {
			v, err := s.codec.Process(data, imaging.Options{
				Format:  format,
				Width:   size,
				Quality: s.opts.Quality,
			})
			if err != nil {
				if errors.Is(err, imaging.ErrUnsupportedFormat) {
					pc.Log.Debugf("images: no %s encoder, skipping for %s", format, sourceKey)
				} else {
					pc.Log.Warnf("images: %s at %dw: %v", sourceKey, size, err)
				}
				break
			}
			// The codec never upscales, so several sizes can collapse
			// to the source width.
			if widths[v.Width] {
				continue
			}
			widths[v.Width] = true
			variants = append(variants, storedVariant{
				key:    fmt.Sprintf("%s/%s-%d.%s", dir, stem, v.Width, v.Format),
				data:   v.Data,
				width:  v.Width,
				height: v.Height,
				format: v.Format,
			})
		}
	}
	return variants
}

// formatRank orders formats most-modern first for <source> elements.
var formatRank = map[string]int{"avif": 0, "webp": 1, "jpg": 2, "jpeg": 2, "png": 3, "gif": 4}

func sourceMIME(format string) string {
	if format == "jpg" {
		format = "jpeg"
	}
	return "image/" + format
}

// pictureHTML renders a <picture> element with one <source> per
// format and a lazy <img> fallback on the least modern format's
// largest variant. With no variants at all the original reference
// degrades to a plain picture-wrapped img.
func pictureHTML(ref imageRef, variants []storedVariant) string {
	var b strings.Builder
	b.WriteString("<picture>")

	byFormat := make(map[string][]storedVariant)
	var formats []string
	for _, v := range variants {
		if _, ok := byFormat[v.format]; !ok {
			formats = append(formats, v.format)
		}
		byFormat[v.format] = append(byFormat[v.format], v)
	}
	sort.SliceStable(formats, func(i, j int) bool {
		return formatRank[formats[i]] < formatRank[formats[j]]
	})

	for _, format := range formats {
		group := byFormat[format]
		srcset := make([]string, len(group))
		for i, v := range group {
			srcset[i] = fmt.Sprintf("/%s %dw", v.key, v.width)
		}
		fmt.Fprintf(&b, `<source type="%s" srcset="%s">`, sourceMIME(format), strings.Join(srcset, ", "))
	}

	src := "/" + ref.sourceKey
	var dims string
	if len(formats) > 0 {
		group := byFormat[formats[len(formats)-1]]
		largest := group[len(group)-1]
		src = "/" + largest.key
		dims = fmt.Sprintf(` width="%d" height="%d"`, largest.width, largest.height)
	}

	fmt.Fprintf(&b, `<img src="%s" alt="%s"`, src, html.EscapeString(ref.alt))
	if ref.title != "" {
		fmt.Fprintf(&b, ` title="%s"`, html.EscapeString(ref.title))
	}
	b.WriteString(dims)
	b.WriteString(` loading="lazy" decoding="async">`)
	b.WriteString("</picture>")
	return b.String()
}
