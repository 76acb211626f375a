// Package config loads and validates janos.config.json, and builds a
// ready-to-run pipeline from the declarative stage list through a
// registry of stage factories.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aellingwood/janos/internal/pipeline"
)

// Default filenames and directories.
const (
	DefaultFilename   = "janos.config.json"
	DefaultSourceDir  = "_src"
	DefaultOutputDir  = "_site"
	DefaultLayoutsDir = "_layouts"
)

// Config is the parsed configuration document.
type Config struct {
	Schema   string         `json:"$schema,omitempty"`
	Site     SiteConfig     `json:"site"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Pipeline []StageEntry   `json:"pipeline"`
	Mode     string         `json:"mode,omitempty"`
}

// SiteConfig is the site section. Title and BaseURL are required.
type SiteConfig struct {
	Title       string      `json:"title"`
	BaseURL     string      `json:"baseUrl"`
	Description string      `json:"description,omitempty"`
	Language    string      `json:"language,omitempty"`
	Author      AuthorValue `json:"author,omitempty"`
	RootPath    string      `json:"rootpath,omitempty"`
	SourceDir   string      `json:"sourceDir,omitempty"`
	OutputDir   string      `json:"outputDir,omitempty"`
	LayoutsDir  string      `json:"layoutsDir,omitempty"`
}

// AuthorValue accepts both the shorthand string form and the object
// form in JSON.
type AuthorValue struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	URL   string `json:"url,omitempty"`
}

// UnmarshalJSON accepts "Jane Doe" as well as {"name": "Jane Doe"}.
func (a *AuthorValue) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		a.Name = name
		return nil
	}
	type plain AuthorValue
	return json.Unmarshal(data, (*plain)(a))
}

// StageEntry is one pipeline entry: either a bare stage name or a
// single-key object mapping the stage name to its options.
type StageEntry struct {
	Name    string
	Options json.RawMessage
}

// UnmarshalJSON accepts "markdown" and {"permalinks": {...}} forms. An
// object with zero or multiple keys is a configuration error.
func (e *StageEntry) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		e.Name = name
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return &pipeline.ConfigError{Field: "pipeline", Reason: "entry must be a stage name or a single-key object"}
	}
	if len(obj) != 1 {
		return &pipeline.ConfigError{Field: "pipeline", Reason: fmt.Sprintf("entry object must have exactly one key, got %d", len(obj))}
	}
	for name, opts := range obj {
		e.Name = name
		e.Options = opts
	}
	return nil
}

// MarshalJSON writes the compact form back out.
func (e StageEntry) MarshalJSON() ([]byte, error) {
	if len(e.Options) == 0 {
		return json.Marshal(e.Name)
	}
	return json.Marshal(map[string]json.RawMessage{e.Name: e.Options})
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates a configuration document, applying
// defaults for the optional directory settings.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Site.SourceDir == "" {
		c.Site.SourceDir = DefaultSourceDir
	}
	if c.Site.OutputDir == "" {
		c.Site.OutputDir = DefaultOutputDir
	}
	if c.Site.LayoutsDir == "" {
		c.Site.LayoutsDir = DefaultLayoutsDir
	}
	if c.Mode == "" {
		c.Mode = pipeline.ModeDevelopment
	}
}

// Validate checks the required fields and enumerations.
func (c *Config) Validate() error {
	if c.Site.Title == "" {
		return &pipeline.ConfigError{Field: "site.title", Reason: "required"}
	}
	if c.Site.BaseURL == "" {
		return &pipeline.ConfigError{Field: "site.baseUrl", Reason: "required"}
	}
	if c.Mode != pipeline.ModeDevelopment && c.Mode != pipeline.ModeProduction {
		return &pipeline.ConfigError{Field: "mode", Reason: fmt.Sprintf("must be development or production, got %q", c.Mode)}
	}
	if c.Pipeline == nil {
		return &pipeline.ConfigError{Field: "pipeline", Reason: "required"}
	}
	return nil
}

// PipelineSite converts the site section to the pipeline's Site type.
func (c *Config) PipelineSite() *pipeline.Site {
	return &pipeline.Site{
		Title:       c.Site.Title,
		BaseURL:     c.Site.BaseURL,
		Description: c.Site.Description,
		Language:    c.Site.Language,
		RootPath:    c.Site.RootPath,
		Author: pipeline.Author{
			Name:  c.Site.Author.Name,
			Email: c.Site.Author.Email,
			URL:   c.Site.Author.URL,
		},
	}
}
