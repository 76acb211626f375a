package config

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
)

// Schema returns the JSON Schema for janos.config.json. Publishing it
// lets editors validate and autocomplete the config.
func Schema() *jsonschema.Schema {
	author := &jsonschema.Schema{
		AnyOf: []*jsonschema.Schema{
			{Type: "string"},
			{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"name":  {Type: "string"},
					"email": {Type: "string"},
					"url":   {Type: "string"},
				},
				Required: []string{"name"},
			},
		},
	}

	site := &jsonschema.Schema{
		Type:        "object",
		Description: "Site identity and directory layout.",
		Properties: map[string]*jsonschema.Schema{
			"title":       {Type: "string"},
			"baseUrl":     {Type: "string"},
			"description": {Type: "string"},
			"language":    {Type: "string"},
			"author":      author,
			"rootpath":    {Type: "string"},
			"sourceDir":   {Type: "string", Default: json.RawMessage(`"_src"`)},
			"outputDir":   {Type: "string", Default: json.RawMessage(`"_site"`)},
			"layoutsDir":  {Type: "string", Default: json.RawMessage(`"_layouts"`)},
		},
		Required: []string{"title", "baseUrl"},
	}

	stageEntry := &jsonschema.Schema{
		AnyOf: []*jsonschema.Schema{
			{Type: "string", Description: "A stage name with default options."},
			{
				Type:          "object",
				Description:   "A single-key object: stage name to stage options.",
				MinProperties: intPtr(1),
				MaxProperties: intPtr(1),
			},
		},
	}

	return &jsonschema.Schema{
		Schema:      "https://json-schema.org/draft/2020-12/schema",
		Title:       "janos configuration",
		Description: "Configuration document for the janos static site generator.",
		Type:        "object",
		Properties: map[string]*jsonschema.Schema{
			"$schema":  {Type: "string"},
			"site":     site,
			"metadata": {Type: "object", Description: "Free-form values merged into the global metadata."},
			"pipeline": {Type: "array", Items: stageEntry},
			"mode": {
				Type: "string",
				Enum: []any{"development", "production"},
			},
		},
		Required: []string{"site", "pipeline"},
	}
}

// SchemaJSON renders the schema document as indented JSON.
func SchemaJSON() ([]byte, error) {
	return json.MarshalIndent(Schema(), "", "  ")
}

func intPtr(n int) *int { return &n }
