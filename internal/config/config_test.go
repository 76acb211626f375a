package config

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/aellingwood/janos/internal/pipeline"
)

const minimalConfig = `{
	"site": {"title": "My Site", "baseUrl": "https://example.com"},
	"pipeline": ["markdown", {"permalinks": {"pattern": "blog/:title"}}]
}`

func TestParseMinimal(t *testing.T) {
	cfg, err := Parse([]byte(minimalConfig))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Site.SourceDir != "_src" || cfg.Site.OutputDir != "_site" || cfg.Site.LayoutsDir != "_layouts" {
		t.Errorf("directory defaults not applied: %+v", cfg.Site)
	}
	if cfg.Mode != pipeline.ModeDevelopment {
		t.Errorf("mode = %q, want development default", cfg.Mode)
	}
	if len(cfg.Pipeline) != 2 {
		t.Fatalf("pipeline entries = %d", len(cfg.Pipeline))
	}
	if cfg.Pipeline[0].Name != "markdown" || cfg.Pipeline[0].Options != nil {
		t.Errorf("entry 0 = %+v", cfg.Pipeline[0])
	}
	if cfg.Pipeline[1].Name != "permalinks" || !strings.Contains(string(cfg.Pipeline[1].Options), ":title") {
		t.Errorf("entry 1 = %+v", cfg.Pipeline[1])
	}
}

func TestParseAuthorForms(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  AuthorValue
	}{
		{"string", `"Jane Doe"`, AuthorValue{Name: "Jane Doe"}},
		{"object", `{"name": "Jane", "email": "j@example.com"}`, AuthorValue{Name: "Jane", Email: "j@example.com"}},
	}
	for _, tt := range tests {
		doc := `{"site": {"title": "t", "baseUrl": "u", "author": ` + tt.value + `}, "pipeline": []}`
		cfg, err := Parse([]byte(doc))
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if cfg.Site.Author != tt.want {
			t.Errorf("%s: author = %+v, want %+v", tt.name, cfg.Site.Author, tt.want)
		}
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{"missing title", `{"site": {"baseUrl": "u"}, "pipeline": []}`, "site.title"},
		{"missing baseUrl", `{"site": {"title": "t"}, "pipeline": []}`, "site.baseUrl"},
		{"missing pipeline", `{"site": {"title": "t", "baseUrl": "u"}}`, "pipeline"},
		{"bad mode", `{"site": {"title": "t", "baseUrl": "u"}, "pipeline": [], "mode": "staging"}`, "mode"},
	}
	for _, tt := range tests {
		_, err := Parse([]byte(tt.doc))
		var ce *pipeline.ConfigError
		if !errors.As(err, &ce) {
			t.Fatalf("%s: err = %v, want ConfigError", tt.name, err)
		}
		if ce.Field != tt.field {
			t.Errorf("%s: field = %q, want %q", tt.name, ce.Field, tt.field)
		}
	}
}

func TestStageEntryRejectsMultiKey(t *testing.T) {
	doc := `{"site": {"title": "t", "baseUrl": "u"},
		"pipeline": [{"a": {}, "b": {}}]}`
	if _, err := Parse([]byte(doc)); err == nil {
		t.Fatal("expected error for a two-key pipeline entry")
	}
}

func TestStageEntryRoundTrip(t *testing.T) {
	entries := []StageEntry{
		{Name: "markdown"},
		{Name: "permalinks", Options: json.RawMessage(`{"pattern":":title"}`)},
	}
	data, err := json.Marshal(entries)
	if err != nil {
		t.Fatal(err)
	}
	var back []StageEntry
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back[0].Name != "markdown" || back[1].Name != "permalinks" {
		t.Errorf("round trip = %+v", back)
	}
}

func TestSchemaJSON(t *testing.T) {
	data, err := SchemaJSON()
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("schema is not valid JSON: %v", err)
	}
	props, _ := doc["properties"].(map[string]any)
	for _, key := range []string{"site", "pipeline", "mode"} {
		if _, ok := props[key]; !ok {
			t.Errorf("schema missing property %q", key)
		}
	}
}
