package pipeline

import (
	"path"
	"strings"
	"time"
)

// Build modes.
const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

// Site holds the site section of the configuration, visible to every
// stage and every template.
type Site struct {
	Title       string
	BaseURL     string
	Description string
	Language    string
	Author      Author
	RootPath    string
}

// Author identifies the site author.
type Author struct {
	Name  string
	Email string
	URL   string
}

// Engine renders templates. The layouts stage requires RenderFile,
// which resolves the template name through the engine's loader; Render
// compiles an inline template source. Extensions lists the file
// extensions (without dot) the engine claims.
type Engine interface {
	Extensions() []string
	Render(src string, data map[string]any) (string, error)
	RenderFile(name string, data map[string]any) (string, error)
}

// Context is the shared pipeline context threaded to every stage as its
// second argument. Stages read and write cross-cutting state through
// Metadata; aggregators write distinct top-level keys.
type Context struct {
	Site     *Site
	Metadata map[string]any
	Log      *Logger
	Mode     string
	Now      time.Time

	engines map[string]Engine
}

// NewContext creates a Context with an initialized metadata map and a
// stderr logger for the given mode.
func NewContext(site *Site, log *Logger, mode string) *Context {
	if site == nil {
		site = &Site{}
	}
	c := &Context{
		Site:     site,
		Metadata: make(map[string]any),
		Log:      log,
		Mode:     mode,
		Now:      time.Now(),
		engines:  make(map[string]Engine),
	}
	c.Metadata["site"] = map[string]any{
		"title":       site.Title,
		"baseUrl":     site.BaseURL,
		"description": site.Description,
		"language":    site.Language,
		"author":      site.Author.Name,
		"rootpath":    site.RootPath,
	}
	c.Metadata["build"] = map[string]any{
		"time": c.Now,
		"mode": mode,
	}
	return c
}

// Development reports whether the pipeline runs in development mode.
func (c *Context) Development() bool {
	return c.Mode != ModeProduction
}

// RegisterEngine records the engine under each of its declared
// extensions.
func (c *Context) RegisterEngine(e Engine) {
	for _, ext := range e.Extensions() {
		c.engines[strings.TrimPrefix(ext, ".")] = e
	}
}

// Engines returns the distinct registered engines.
func (c *Context) Engines() []Engine {
	seen := make(map[Engine]bool, len(c.engines))
	var out []Engine
	for _, e := range c.engines {
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}

// EngineFor returns the engine registered for the extension of name,
// or an EngineNotFoundError.
func (c *Context) EngineFor(name string) (Engine, error) {
	ext := strings.TrimPrefix(path.Ext(name), ".")
	if e, ok := c.engines[ext]; ok {
		return e, nil
	}
	return nil, &EngineNotFoundError{Extension: ext}
}
