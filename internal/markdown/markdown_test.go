package markdown

import (
	"strings"
	"testing"
)

func TestConvertBasic(t *testing.T) {
	r := New(Options{})
	out, err := r.Convert([]byte("# About\n\nSome *text*.\n"))
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	html := string(out)
	if !strings.Contains(html, "<h1") || !strings.Contains(html, ">About</h1>") {
		t.Errorf("output missing heading: %s", html)
	}
	if !strings.Contains(html, "<em>text</em>") {
		t.Errorf("output missing emphasis: %s", html)
	}
}

func TestConvertGFM(t *testing.T) {
	r := New(Options{})
	src := strings.Join([]string{
		"| a | b |",
		"|---|---|",
		"| 1 | 2 |",
		"",
		"~~gone~~",
		"",
		"- [x] done",
		"",
		"https://example.com",
		"",
	}, "\n")

	out, err := r.Convert([]byte(src))
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	html := string(out)
	for _, want := range []string{"<table>", "<del>gone</del>", `type="checkbox"`, `<a href="https://example.com"`} {
		if !strings.Contains(html, want) {
			t.Errorf("output missing %q:\n%s", want, html)
		}
	}
}

func TestConvertFencedCodeLanguageClass(t *testing.T) {
	r := New(Options{})
	out, err := r.Convert([]byte("```go\nfmt.Println(\"hi\")\n```\n"))
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !strings.Contains(string(out), `class="language-go"`) {
		t.Errorf("fenced block missing language class:\n%s", out)
	}
}

func TestConvertRawHTML(t *testing.T) {
	src := []byte("<div class=\"note\">raw</div>\n")

	passthrough, err := New(Options{}).Convert(src)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !strings.Contains(string(passthrough), `<div class="note">`) {
		t.Errorf("raw HTML should pass through by default:\n%s", passthrough)
	}

	stripped, err := New(Options{StripHTML: true}).Convert(src)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if strings.Contains(string(stripped), `<div class="note">`) {
		t.Errorf("raw HTML should not survive StripHTML:\n%s", stripped)
	}
}

func TestConvertWithTOC(t *testing.T) {
	r := New(Options{})
	html, tocHTML, err := r.ConvertWithTOC([]byte("# One\n\n## Two\n\ntext\n"))
	if err != nil {
		t.Fatalf("ConvertWithTOC() error = %v", err)
	}
	if !strings.Contains(string(html), ">One</h1>") {
		t.Errorf("content missing heading:\n%s", html)
	}
	if !strings.Contains(string(tocHTML), "#two") {
		t.Errorf("toc missing anchor:\n%s", tocHTML)
	}
}
