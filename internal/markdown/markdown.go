// Package markdown converts Markdown source to HTML using goldmark
// with GitHub Flavored Markdown semantics.
package markdown

import (
	"bytes"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"go.abhg.dev/goldmark/toc"
)

// Options controls renderer construction.
type Options struct {
	// StripHTML drops raw HTML from the output instead of passing it
	// through.
	StripHTML bool
	// Highlight enables chroma syntax highlighting for fenced code
	// blocks. When false, fenced blocks keep goldmark's plain
	// language-<lang> class annotation.
	Highlight bool
}

// Renderer converts Markdown source into HTML. GFM tables,
// strikethrough, task lists, autolinks, and fenced code blocks are
// always enabled.
type Renderer struct {
	md goldmark.Markdown
}

// New creates a Renderer with the given options.
func New(opts Options) *Renderer {
	extensions := []goldmark.Extender{extension.GFM}
	if opts.Highlight {
		extensions = append(extensions, highlighting.NewHighlighting(
			highlighting.WithFormatOptions(
				chromahtml.WithClasses(true),
			),
		))
	}

	rendererOpts := []goldmark.Option{
		goldmark.WithExtensions(extensions...),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	}
	if !opts.StripHTML {
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(html.WithUnsafe()))
	}

	return &Renderer{md: goldmark.New(rendererOpts...)}
}

// Convert renders Markdown source bytes into HTML.
func (r *Renderer) Convert(source []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(source, &buf); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	return buf.Bytes(), nil
}

// ConvertWithTOC renders Markdown source into HTML and also produces a
// table of contents as a nested HTML list. The TOC may be empty when
// the document has no headings.
func (r *Renderer) ConvertWithTOC(source []byte) (htmlOut []byte, tocOut []byte, err error) {
	doc := r.md.Parser().Parse(text.NewReader(source))

	tocTree, err := toc.Inspect(doc, source)
	if err != nil {
		return nil, nil, fmt.Errorf("toc inspect: %w", err)
	}
	if tocList := toc.RenderList(tocTree); tocList != nil {
		var tocBuf bytes.Buffer
		if err := r.md.Renderer().Render(&tocBuf, source, tocList); err != nil {
			return nil, nil, fmt.Errorf("toc render: %w", err)
		}
		tocOut = tocBuf.Bytes()
	}

	var contentBuf bytes.Buffer
	if err := r.md.Renderer().Render(&contentBuf, source, doc); err != nil {
		return nil, nil, fmt.Errorf("markdown render: %w", err)
	}
	return contentBuf.Bytes(), tocOut, nil
}
