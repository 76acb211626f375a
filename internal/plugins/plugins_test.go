package plugins

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/aellingwood/janos/internal/pipeline"
	"github.com/aellingwood/janos/internal/store"
)

func testContext(t *testing.T, mode string) *pipeline.Context {
	t.Helper()
	site := &pipeline.Site{
		Title:   "Test Site",
		BaseURL: "https://example.com",
	}
	log := pipeline.NewLogger(io.Discard, true)
	return pipeline.NewContext(site, log, mode)
}

func addFile(s *store.Store, key, contents string, meta map[string]any) *store.File {
	f := store.NewFile(key, []byte(contents))
	for k, v := range meta {
		f.Metadata[k] = v
	}
	s.Set(key, f)
	return f
}

func run(t *testing.T, stage pipeline.Stage, files *store.Store, pc *pipeline.Context) {
	t.Helper()
	if err := stage.Process(context.Background(), files, pc); err != nil {
		t.Fatalf("%s: %v", stage.Name(), err)
	}
}

func TestCompareValues(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		a, b any
		want int
	}{
		{"times", t1, t2, -1},
		{"times equal", t1, t1, 0},
		{"ints", 3, 7, -1},
		{"floats", 2.5, 1.5, 1},
		{"strings", "apple", "zebra", -1},
		{"nil last", nil, "x", 1},
		{"both nil", nil, nil, 0},
		{"date strings", "2024-01-01", "2024-02-01", -1},
	}
	for _, tt := range tests {
		if got := compareValues(tt.a, tt.b); got != tt.want {
			t.Errorf("%s: compareValues = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestSortItemsUndefinedLast(t *testing.T) {
	items := []map[string]any{
		{"title": "no date"},
		{"title": "late", "date": "2024-03-01"},
		{"title": "early", "date": "2024-01-01"},
	}
	sortItems(items, "date", false)

	want := []string{"early", "late", "no date"}
	for i, title := range want {
		if items[i]["title"] != title {
			t.Errorf("items[%d] = %v, want %s", i, items[i]["title"], title)
		}
	}
}

func TestKeyPermalink(t *testing.T) {
	tests := []struct{ key, want string }{
		{"about/index.html", "/about/"},
		{"index.html", "/"},
		{"posts/a.html", "/posts/a.html"},
	}
	for _, tt := range tests {
		if got := keyPermalink(tt.key); got != tt.want {
			t.Errorf("keyPermalink(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
