// Package pipeline implements the staged content pipeline at the core
// of janos. A pipeline holds an ordered list of stages; Process runs
// them sequentially over a shared virtual file store. Stage order is
// the only ordering guarantee the pipeline exposes.
package pipeline

import (
	"context"
	"os"

	"github.com/aellingwood/janos/internal/store"
)

// Stage is an ordered transformation over the file store, invoked with
// the store and the shared pipeline context.
type Stage interface {
	Name() string
	Process(ctx context.Context, files *store.Store, pc *Context) error
}

type stageFunc struct {
	name string
	fn   func(ctx context.Context, files *store.Store, pc *Context) error
}

func (s stageFunc) Name() string { return s.name }

func (s stageFunc) Process(ctx context.Context, files *store.Store, pc *Context) error {
	return s.fn(ctx, files, pc)
}

// StageFunc adapts a function to the Stage interface.
func StageFunc(name string, fn func(ctx context.Context, files *store.Store, pc *Context) error) Stage {
	return stageFunc{name: name, fn: fn}
}

// Pipeline holds the ordered stage list, the registered template
// engines, and the global metadata.
type Pipeline struct {
	ctx    *Context
	stages []Stage
}

// New creates a Pipeline for the given site and mode. A nil logger
// gets a default stderr logger whose debug output follows the mode.
func New(site *Site, mode string, log *Logger) *Pipeline {
	if mode == "" {
		mode = ModeDevelopment
	}
	if log == nil {
		log = NewLogger(os.Stderr, mode != ModeProduction)
	}
	return &Pipeline{ctx: NewContext(site, log, mode)}
}

// Use appends a stage. It returns the pipeline for chaining.
func (p *Pipeline) Use(s Stage) *Pipeline {
	p.stages = append(p.stages, s)
	return p
}

// Engine registers a template engine under each of its declared
// extensions. It returns the pipeline for chaining.
func (p *Pipeline) Engine(e Engine) *Pipeline {
	p.ctx.RegisterEngine(e)
	return p
}

// Metadata sets a global-metadata entry visible to all stages and all
// templates. It returns the pipeline for chaining.
func (p *Pipeline) Metadata(key string, value any) *Pipeline {
	p.ctx.Metadata[key] = value
	return p
}

// Context returns the shared pipeline context.
func (p *Pipeline) Context() *Context {
	return p.ctx
}

// Stages returns the configured stages in order.
func (p *Pipeline) Stages() []Stage {
	return p.stages
}

// Process runs each stage in order over the file store. The first
// stage failure aborts the pipeline, wrapped in a PluginError carrying
// the stage name. Cancellation is observed between stages.
func (p *Pipeline) Process(ctx context.Context, files *store.Store) error {
	for _, s := range p.stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.ctx.Log.Debugf("running stage %s", s.Name())
		if err := s.Process(ctx, files, p.ctx); err != nil {
			return &PluginError{Stage: s.Name(), Err: err}
		}
	}
	return nil
}
