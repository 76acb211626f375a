package plugins

import (
	"strings"
	"testing"

	"github.com/aellingwood/janos/internal/store"
)

func TestExcerptsSplitsOnMarker(t *testing.T) {
	files := store.New()
	f := addFile(files, "post.html", "<p>Hello.</p>\n<!-- more -->\n<p>Rest.</p>", nil)
	pc := testContext(t, "production")

	run(t, Excerpts(ExcerptsOptions{}), files, pc)

	if got := f.String("excerpt"); got != "<p>Hello.</p>" {
		t.Errorf("excerpt = %q", got)
	}
	body := string(f.Contents)
	if !strings.Contains(body, "<p>Hello.</p>") || !strings.Contains(body, "<p>Rest.</p>") {
		t.Errorf("body lost content: %q", body)
	}
	if strings.Contains(body, "<!-- more -->") {
		t.Error("marker not removed")
	}
}

func TestExcerptsFirstMarkerOnly(t *testing.T) {
	files := store.New()
	f := addFile(files, "post.html", "a<!-- more -->b<!-- more -->c", nil)
	pc := testContext(t, "production")

	run(t, Excerpts(ExcerptsOptions{}), files, pc)

	if f.String("excerpt") != "a" {
		t.Errorf("excerpt = %q, want a", f.String("excerpt"))
	}
	if string(f.Contents) != "ab<!-- more -->c" {
		t.Errorf("body = %q, second marker should survive", f.Contents)
	}
}

func TestExcerptsNoMarker(t *testing.T) {
	files := store.New()
	f := addFile(files, "post.html", "<p>No split here.</p>", nil)
	pc := testContext(t, "production")

	run(t, Excerpts(ExcerptsOptions{}), files, pc)

	if _, ok := f.Metadata["excerpt"]; ok {
		t.Error("file without marker received an excerpt")
	}
}

func TestExcerptsCustomMarkerNoTrim(t *testing.T) {
	files := store.New()
	f := addFile(files, "post.html", "intro \n<!--split-->rest", nil)
	pc := testContext(t, "production")

	noTrim := false
	run(t, Excerpts(ExcerptsOptions{Marker: "<!--split-->", Trim: &noTrim}), files, pc)

	if got := f.String("excerpt"); got != "intro \n" {
		t.Errorf("excerpt = %q, want untrimmed prefix", got)
	}
}
