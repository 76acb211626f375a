package config

import (
	"encoding/json"
	"fmt"

	"github.com/aellingwood/janos/internal/pipeline"
	"github.com/aellingwood/janos/internal/plugins"
	"github.com/aellingwood/janos/internal/template"
)

// StageFactory builds a stage from its raw JSON options. A nil options
// value means the stage was configured by bare name.
type StageFactory func(options json.RawMessage) (pipeline.Stage, error)

// Registry maps stage names to factories. The zero value is unusable;
// construct with NewRegistry.
type Registry struct {
	factories map[string]StageFactory
	builtin   map[string]bool
}

// NewRegistry returns a registry preloaded with every built-in stage.
func NewRegistry() *Registry {
	r := &Registry{
		factories: make(map[string]StageFactory),
		builtin:   make(map[string]bool),
	}
	for name, factory := range builtinFactories() {
		r.factories[name] = factory
		r.builtin[name] = true
	}
	return r
}

// Register adds a user stage factory. Re-registering a built-in name
// is a configuration error.
func (r *Registry) Register(name string, factory StageFactory) error {
	if r.builtin[name] {
		return &pipeline.ConfigError{Field: "pipeline", Reason: fmt.Sprintf("cannot replace built-in stage %q", name)}
	}
	r.factories[name] = factory
	return nil
}

// Build resolves one stage entry. Unknown names are configuration
// errors.
func (r *Registry) Build(entry StageEntry) (pipeline.Stage, error) {
	factory, ok := r.factories[entry.Name]
	if !ok {
		return nil, &pipeline.ConfigError{Field: "pipeline", Reason: fmt.Sprintf("unknown stage %q", entry.Name)}
	}
	stage, err := factory(entry.Options)
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", entry.Name, err)
	}
	return stage, nil
}

// decode unmarshals raw options into a typed options value, tolerating
// absent options.
func decode[T any](raw json.RawMessage) (T, error) {
	var opts T
	if len(raw) == 0 {
		return opts, nil
	}
	if err := json.Unmarshal(raw, &opts); err != nil {
		return opts, fmt.Errorf("options: %w", err)
	}
	return opts, nil
}

func stageOf[T any](build func(T) pipeline.Stage) StageFactory {
	return func(raw json.RawMessage) (pipeline.Stage, error) {
		opts, err := decode[T](raw)
		if err != nil {
			return nil, err
		}
		return build(opts), nil
	}
}

func builtinFactories() map[string]StageFactory {
	return map[string]StageFactory{
		"markdown":     stageOf(plugins.Markdown),
		"publish":      stageOf(plugins.Publish),
		"excerpts":     stageOf(plugins.Excerpts),
		"tags":         stageOf(plugins.Tags),
		"collections":  stageOf(plugins.Collections),
		"permalinks":   stageOf(plugins.Permalinks),
		"pagination":   stageOf(plugins.Pagination),
		"tagpages":     stageOf(plugins.TagPages),
		"layouts":      stageOf(plugins.Layouts),
		"cssurls":      stageOf(plugins.CSSURLs),
		"inlinesource": stageOf(plugins.InlineSource),
		"images":       stageOf(plugins.Images),
		"webmentions":  stageOf(plugins.Webmentions),
		"feeds":        stageOf(plugins.Feeds),
		"sitemap":      stageOf(plugins.Sitemap),
		"minify":       stageOf(plugins.Minify),
		"coordinate": func(raw json.RawMessage) (pipeline.Stage, error) {
			return plugins.Coordinate(), nil
		},
		"assets": func(raw json.RawMessage) (pipeline.Stage, error) {
			// Accept a single pair or a list of pairs.
			var pairs []plugins.AssetPair
			if len(raw) > 0 {
				if err := json.Unmarshal(raw, &pairs); err != nil {
					var one plugins.AssetPair
					if err := json.Unmarshal(raw, &one); err != nil {
						return nil, fmt.Errorf("options: %w", err)
					}
					pairs = []plugins.AssetPair{one}
				}
			}
			return plugins.Assets(pairs...), nil
		},
	}
}

// BuildPipeline assembles a ready-to-Process pipeline from the parsed
// configuration: site metadata, user metadata, the template engine,
// and every configured stage in order.
func BuildPipeline(cfg *Config, registry *Registry, log *pipeline.Logger) (*pipeline.Pipeline, error) {
	if registry == nil {
		registry = NewRegistry()
	}

	p := pipeline.New(cfg.PipelineSite(), cfg.Mode, log)
	p.Engine(template.NewEngine())
	for k, v := range cfg.Metadata {
		p.Metadata(k, v)
	}

	for _, entry := range cfg.Pipeline {
		stage, err := registry.Build(entry)
		if err != nil {
			return nil, err
		}
		p.Use(stage)
	}
	return p, nil
}
