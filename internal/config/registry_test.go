package config

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/aellingwood/janos/internal/pipeline"
	"github.com/aellingwood/janos/internal/store"
)

func TestRegistryBuildsEveryBuiltin(t *testing.T) {
	r := NewRegistry()
	names := []string{
		"markdown", "publish", "excerpts", "tags", "collections",
		"permalinks", "coordinate", "pagination", "tagpages", "layouts",
		"assets", "cssurls", "inlinesource", "images", "webmentions",
		"feeds", "sitemap", "minify",
	}
	for _, name := range names {
		stage, err := r.Build(StageEntry{Name: name})
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if stage.Name() == "" {
			t.Errorf("%s: empty stage name", name)
		}
	}
}

func TestRegistryUnknownStage(t *testing.T) {
	r := NewRegistry()
	_, err := r.Build(StageEntry{Name: "nonsense"})
	var ce *pipeline.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want ConfigError", err)
	}
}

func TestRegistryRejectsBuiltinOverride(t *testing.T) {
	r := NewRegistry()
	err := r.Register("markdown", func(json.RawMessage) (pipeline.Stage, error) { return nil, nil })
	if err == nil {
		t.Fatal("re-registering a built-in must fail")
	}
}

func TestRegistryUserStage(t *testing.T) {
	r := NewRegistry()
	custom := pipeline.StageFunc("custom", func(ctx context.Context, files *store.Store, pc *pipeline.Context) error {
		return nil
	})
	if err := r.Register("custom", func(json.RawMessage) (pipeline.Stage, error) { return custom, nil }); err != nil {
		t.Fatal(err)
	}
	stage, err := r.Build(StageEntry{Name: "custom"})
	if err != nil || stage.Name() != "custom" {
		t.Fatalf("stage = %v, err = %v", stage, err)
	}
}

func TestRegistryDecodesOptions(t *testing.T) {
	r := NewRegistry()
	stage, err := r.Build(StageEntry{
		Name:    "permalinks",
		Options: json.RawMessage(`{"pattern": "blog/:title"}`),
	})
	if err != nil {
		t.Fatal(err)
	}
	if stage.Name() != "permalinks" {
		t.Errorf("name = %q", stage.Name())
	}
}

func TestRegistryAssetsSingleObject(t *testing.T) {
	r := NewRegistry()
	for _, raw := range []string{
		`{"source": "_assets", "destination": "assets"}`,
		`[{"source": "_assets", "destination": "assets"}]`,
	} {
		if _, err := r.Build(StageEntry{Name: "assets", Options: json.RawMessage(raw)}); err != nil {
			t.Errorf("assets options %s: %v", raw, err)
		}
	}
}

func TestBuildPipelineEndToEnd(t *testing.T) {
	cfg, err := Parse([]byte(`{
		"site": {"title": "T", "baseUrl": "https://example.com"},
		"metadata": {"year": 2025},
		"pipeline": ["markdown", "permalinks"]
	}`))
	if err != nil {
		t.Fatal(err)
	}

	p, err := BuildPipeline(cfg, nil, pipeline.NewLogger(io.Discard, false))
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Stages()) != 2 {
		t.Fatalf("stages = %d", len(p.Stages()))
	}
	if p.Context().Metadata["year"] != float64(2025) {
		t.Errorf("user metadata missing: %v", p.Context().Metadata["year"])
	}

	files := store.New()
	files.Set("about.md", store.NewFile("about.md", []byte("# About")))
	if err := p.Process(context.Background(), files); err != nil {
		t.Fatal(err)
	}
	f := files.Get("about/index.html")
	if f == nil {
		t.Fatalf("keys = %v", files.Keys())
	}
	if f.String("permalink") != "/about/" {
		t.Errorf("permalink = %q", f.String("permalink"))
	}
}
