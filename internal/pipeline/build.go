package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/aellingwood/janos/internal/store"
)

// BuildOptions configures the thin loader around Process.
type BuildOptions struct {
	// Fs is the filesystem the source tree is read from and the output
	// is written to. Defaults to the OS filesystem.
	Fs afero.Fs
	// SourceDir is the content root, e.g. "_src".
	SourceDir string
	// LayoutsDir holds templates; its files are loaded into the store
	// under its base name as a key prefix and never emitted.
	LayoutsDir string
	// OutputDir receives the emitted files.
	OutputDir string
}

// Result summarizes a completed build.
type Result struct {
	FilesProcessed int
	FilesOutput    int
	Duration       time.Duration
	Warnings       []string
	Errors         []string
}

// Build reads the source directory into a file store, runs Process,
// writes the surviving files under the output directory, and returns a
// result summary. Layout files are loaded for the template engine but
// not emitted.
func (p *Pipeline) Build(ctx context.Context, opts BuildOptions) (*Result, error) {
	if err := p.validate(opts); err != nil {
		return nil, err
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}

	start := time.Now()
	files := store.New()

	if err := loadTree(opts.Fs, opts.SourceDir, "", files); err != nil {
		return nil, fmt.Errorf("loading source tree: %w", err)
	}
	layoutsPrefix := ""
	if opts.LayoutsDir != "" {
		layoutsPrefix = path.Base(filepath.ToSlash(opts.LayoutsDir))
		if err := loadTree(opts.Fs, opts.LayoutsDir, layoutsPrefix, files); err != nil {
			return nil, fmt.Errorf("loading layouts: %w", err)
		}
	}

	result := &Result{FilesProcessed: files.Len()}

	if err := p.Process(ctx, files); err != nil {
		result.Errors = append(p.ctx.Log.Errors(), err.Error())
		result.Warnings = p.ctx.Log.Warnings()
		return result, err
	}

	for _, f := range files.Files() {
		if layoutsPrefix != "" && strings.HasPrefix(f.Path, layoutsPrefix+"/") {
			continue
		}
		target := filepath.Join(opts.OutputDir, filepath.FromSlash(f.Path))
		if err := opts.Fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, fmt.Errorf("creating output directory for %s: %w", f.Path, err)
		}
		if err := afero.WriteFile(opts.Fs, target, f.Contents, 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", f.Path, err)
		}
		result.FilesOutput++
	}

	result.Duration = time.Since(start)
	result.Warnings = p.ctx.Log.Warnings()
	result.Errors = p.ctx.Log.Errors()
	return result, nil
}

func (p *Pipeline) validate(opts BuildOptions) error {
	switch {
	case p.ctx.Site.Title == "":
		return &ConfigError{Field: "site.title", Reason: "required"}
	case p.ctx.Site.BaseURL == "":
		return &ConfigError{Field: "site.baseUrl", Reason: "required"}
	case opts.SourceDir == "":
		return &ConfigError{Field: "sourceDir", Reason: "required"}
	case opts.OutputDir == "":
		return &ConfigError{Field: "outputDir", Reason: "required"}
	}
	return nil
}

// loadTree walks root and inserts every regular file into the store,
// keyed relative to root under the given prefix. Hidden directories
// and node_modules are skipped.
func loadTree(fsys afero.Fs, root, prefix string, files *store.Store) error {
	info, err := fsys.Stat(root)
	if err != nil || !info.IsDir() {
		if prefix != "" {
			// A missing layouts directory is tolerated.
			return nil
		}
		return fmt.Errorf("source directory %s: %w", root, err)
	}

	return afero.Walk(fsys, root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		name := filepath.Base(p)
		if info.IsDir() {
			if p != root && (strings.HasPrefix(name, ".") || name == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if prefix != "" {
			key = path.Join(prefix, key)
		}
		contents, err := afero.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}
		files.Set(key, store.NewFile(key, contents))
		return nil
	})
}
