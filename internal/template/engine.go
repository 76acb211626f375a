// Package template wraps pongo2 behind the pipeline's engine
// interface. Templates are resolved through a virtual loader backed by
// the pipeline's file store, so {% extends %} and {% include %} names
// refer to layout files living in the store rather than on disk.
package template

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/aellingwood/janos/internal/store"
)

// Extensions a layout name is tried with, in order, when the verbatim
// name does not resolve.
var layoutSuffixes = []string{".njk", ".nunjucks", ".html"}

// RenderError reports a template render failure.
type RenderError struct {
	Template string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("template %q: %v", e.Template, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Engine renders pongo2 templates against the bound file store.
type Engine struct {
	mu     sync.RWMutex
	loader *storeLoader
	set    *pongo2.TemplateSet
}

// NewEngine creates an Engine. The store is bound later, once the
// pipeline has loaded it; rendering before a store is bound fails with
// unresolved template names. Built-in filters (date, readingTime,
// slug) are registered on first construction.
func NewEngine() *Engine {
	registerBuiltinFilters()
	loader := &storeLoader{}
	return &Engine{
		loader: loader,
		set:    pongo2.NewSet("janos", loader),
	}
}

// Extensions lists the file extensions this engine claims.
func (e *Engine) Extensions() []string {
	return []string{"njk", "nunjucks", "html"}
}

// BindStore points the virtual loader at the given file store and
// layouts directory prefix. The layouts stage calls this before
// rendering.
func (e *Engine) BindStore(files *store.Store, layoutsDir string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loader.bind(files, layoutsDir)
}

// Resolve returns the store key the layout name resolves to, trying the
// name verbatim and with the known suffixes, both bare and under the
// layouts directory. The empty string means no candidate exists.
func (e *Engine) Resolve(name string) string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loader.resolve(name)
}

// Render compiles src as an inline template and executes it.
func (e *Engine) Render(src string, data map[string]any) (string, error) {
	if data == nil {
		data = map[string]any{}
	}
	tpl, err := e.set.FromString(src)
	if err != nil {
		return "", &RenderError{Template: "<inline>", Err: err}
	}
	out, err := tpl.Execute(pongo2.Context(data))
	if err != nil {
		return "", &RenderError{Template: "<inline>", Err: err}
	}
	return out, nil
}

// RenderFile loads the named template through the virtual loader and
// executes it.
func (e *Engine) RenderFile(name string, data map[string]any) (string, error) {
	if data == nil {
		data = map[string]any{}
	}
	tpl, err := e.set.FromFile(name)
	if err != nil {
		return "", &RenderError{Template: name, Err: err}
	}
	out, err := tpl.Execute(pongo2.Context(data))
	if err != nil {
		return "", &RenderError{Template: name, Err: err}
	}
	return out, nil
}

// storeLoader is a pongo2 TemplateLoader that reads template bytes out
// of the pipeline's file store.
type storeLoader struct {
	mu    sync.RWMutex
	files *store.Store
	dir   string
}

func (l *storeLoader) bind(files *store.Store, dir string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.files = files
	l.dir = dir
}

// Abs resolves a template name referenced from base. Names are store
// keys, so relative resolution only applies when the name itself does
// not resolve and base has a directory.
func (l *storeLoader) Abs(base, name string) string {
	return name
}

// Get returns a reader for the template bytes under the resolved key.
func (l *storeLoader) Get(p string) (io.Reader, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	key := l.resolveLocked(p)
	if key == "" {
		return nil, fmt.Errorf("template %q not found in file store", p)
	}
	return bytes.NewReader(l.files.Get(key).Contents), nil
}

func (l *storeLoader) resolve(name string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.resolveLocked(name)
}

func (l *storeLoader) resolveLocked(name string) string {
	if l.files == nil || name == "" {
		return ""
	}
	candidates := []string{name}
	for _, suffix := range layoutSuffixes {
		candidates = append(candidates, name+suffix)
	}
	for _, c := range candidates {
		if l.dir != "" {
			if full := path.Join(l.dir, c); l.files.Has(full) {
				return full
			}
		}
		if l.files.Has(c) {
			return c
		}
	}
	return ""
}
