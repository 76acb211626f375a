package plugins

import (
	"strings"
	"testing"

	"github.com/aellingwood/janos/internal/store"
)

func TestMarkdownConvertsAndRekeys(t *testing.T) {
	files := store.New()
	addFile(files, "about.md", "# About", nil)
	pc := testContext(t, "production")

	run(t, Markdown(MarkdownOptions{}), files, pc)

	f := files.Get("about.html")
	if f == nil {
		t.Fatal("about.html not present after conversion")
	}
	if files.Has("about.md") {
		t.Error("about.md still present")
	}
	if !strings.Contains(string(f.Contents), "<h1") || !strings.Contains(string(f.Contents), "About") {
		t.Errorf("body = %q, want an h1", f.Contents)
	}
	if f.SourcePath != "about.md" {
		t.Errorf("sourcePath = %q, want about.md", f.SourcePath)
	}
}

func TestMarkdownMergesFrontmatter(t *testing.T) {
	files := store.New()
	addFile(files, "post.md", "---\ntitle: Hello\ndraft: true\n---\nBody text.", nil)
	pc := testContext(t, "production")

	run(t, Markdown(MarkdownOptions{}), files, pc)

	f := files.Get("post.html")
	if f == nil {
		t.Fatal("post.html not present")
	}
	if f.String("title") != "Hello" {
		t.Errorf("title = %q", f.String("title"))
	}
	if !f.Bool("draft") {
		t.Error("draft not merged")
	}
	if strings.Contains(string(f.Contents), "title:") {
		t.Error("frontmatter leaked into body")
	}
}

func TestMarkdownUnclosedFrontmatterIsWarning(t *testing.T) {
	files := store.New()
	original := "---\ntitle: Broken\nno closing delimiter"
	addFile(files, "broken.md", original, nil)
	pc := testContext(t, "production")

	run(t, Markdown(MarkdownOptions{}), files, pc)

	f := files.Get("broken.md")
	if f == nil {
		t.Fatal("file with broken frontmatter was re-keyed or dropped")
	}
	if string(f.Contents) != original {
		t.Error("body was modified despite frontmatter failure")
	}
	if len(pc.Log.Warnings()) == 0 {
		t.Error("expected a warning")
	}
}

func TestMarkdownLeavesNonMatching(t *testing.T) {
	files := store.New()
	addFile(files, "style.css", "body{}", nil)
	pc := testContext(t, "production")

	run(t, Markdown(MarkdownOptions{}), files, pc)

	if !files.Has("style.css") {
		t.Error("non-markdown file was touched")
	}
}

func TestReplaceExt(t *testing.T) {
	tests := []struct{ in, want string }{
		{"a/b.md", "a/b.html"},
		{"a.markdown", "a.html"},
		{"dir.v2/readme.md", "dir.v2/readme.html"},
	}
	for _, tt := range tests {
		if got := replaceExt(tt.in, ".html"); got != tt.want {
			t.Errorf("replaceExt(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
