package pipeline

import "fmt"

// ConfigError reports a configuration validation failure, qualified by
// the offending field. It is fatal at construction time.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// PluginError wraps a stage failure with the stage name. Any error a
// stage returns aborts the pipeline wrapped in one of these.
type PluginError struct {
	Stage string
	Err   error
}

func (e *PluginError) Error() string {
	return fmt.Sprintf("stage %q: %v", e.Stage, e.Err)
}

func (e *PluginError) Unwrap() error { return e.Err }

// EngineNotFoundError reports that no template engine is registered for
// a required file extension.
type EngineNotFoundError struct {
	Extension string
}

func (e *EngineNotFoundError) Error() string {
	return fmt.Sprintf("no template engine registered for extension %q", e.Extension)
}

// LayoutNotFoundError reports a layout a file declared that could not
// be resolved in the store. Logged as a warning; the file keeps its
// pre-render body.
type LayoutNotFoundError struct {
	Layout string
	Path   string
}

func (e *LayoutNotFoundError) Error() string {
	return fmt.Sprintf("layout %q for %s not found", e.Layout, e.Path)
}

// FileProcessingError is a per-file stage failure. Stages that declare
// it recoverable log it and continue; otherwise it surfaces wrapped in
// a PluginError.
type FileProcessingError struct {
	Path string
	Err  error
}

func (e *FileProcessingError) Error() string {
	return fmt.Sprintf("processing %s: %v", e.Path, e.Err)
}

func (e *FileProcessingError) Unwrap() error { return e.Err }

// FetchError is a failed network fetch. Always recovered locally with
// a warning.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
