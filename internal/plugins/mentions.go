package plugins

import (
	"context"
	"path"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/aellingwood/janos/internal/pipeline"
	"github.com/aellingwood/janos/internal/store"
	"github.com/aellingwood/janos/internal/webmention"
)

// WebmentionsOptions configures the webmentions stage.
type WebmentionsOptions struct {
	// Endpoint is the JF2 API base, default https://webmention.io/api.
	Endpoint string `json:"endpoint"`
	// CacheDir is the on-disk cache root, default _data/webmentions.
	CacheDir string `json:"cacheDir"`
	// Concurrency bounds the parallel fetches, default 8.
	Concurrency int `json:"concurrency"`
}

// MentionFetcher fetches fresh mentions for a target URL.
// webmention.Client is the production implementation.
type MentionFetcher interface {
	Fetch(ctx context.Context, target string, sinceID *int) ([]webmention.Mention, error)
}

// MentionCache persists per-page caches. webmention.FileCache is the
// production implementation.
type MentionCache interface {
	Read(urlPath string) (*webmention.Cache, error)
	Write(urlPath string, c *webmention.Cache) error
}

type webmentionsStage struct {
	opts    WebmentionsOptions
	fetcher MentionFetcher
	cache   MentionCache
}

// Webmentions returns the stage that fetches new webmentions for every
// content file and stores the merged cache under metadata.webmentions.
// Fetch failures are warnings; the cached value stays in effect and
// the build continues.
func Webmentions(opts WebmentionsOptions) pipeline.Stage {
	endpoint := stringOr(opts.Endpoint, "https://webmention.io/api")
	cacheDir := stringOr(opts.CacheDir, "_data/webmentions")
	return WebmentionsWith(opts, webmention.NewClient(endpoint), webmention.NewFileCache(afero.NewOsFs(), cacheDir))
}

// WebmentionsWith is Webmentions with explicit collaborators.
func WebmentionsWith(opts WebmentionsOptions, fetcher MentionFetcher, cache MentionCache) pipeline.Stage {
	return &webmentionsStage{opts: opts, fetcher: fetcher, cache: cache}
}

func (s *webmentionsStage) Name() string { return "webmentions" }

// mentionPath is the URL path mentions target: the permalink when set,
// otherwise the file key minus its extension with a trailing slash.
func mentionPath(f *store.File) string {
	if p := f.String("permalink"); p != "" {
		return p
	}
	return "/" + strings.TrimSuffix(f.Path, path.Ext(f.Path)) + "/"
}

func (s *webmentionsStage) Process(ctx context.Context, files *store.Store, pc *pipeline.Context) error {
	baseURL := pc.Site.BaseURL
	if baseURL == "" {
		pc.Log.Warnf("webmentions: site.baseUrl is not set, skipping")
		return nil
	}

	// Content files only: those carrying both layout and collection.
	var targets []*store.File
	for _, f := range files.Files() {
		if f.String("layout") != "" && f.Metadata["collection"] != nil {
			targets = append(targets, f)
		}
	}
	if len(targets) == 0 {
		return nil
	}

	merged := make([]*webmention.Cache, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(intOr(s.opts.Concurrency, 8))
	for i, f := range targets {
		g.Go(func() error {
			urlPath := strings.TrimPrefix(mentionPath(f), "/")
			target := absoluteURL(baseURL, "/"+urlPath)

			cache, err := s.cache.Read(urlPath)
			if err != nil {
				pc.Log.Warnf("webmentions: read cache for %s: %v", urlPath, err)
			}
			if cache == nil {
				cache = webmention.Zero()
			}
			merged[i] = cache

			fresh, err := s.fetcher.Fetch(gctx, target, cache.LastWmID)
			if err != nil {
				pc.Log.Warnf("webmentions: %v", &pipeline.FetchError{URL: target, Err: err})
				return nil
			}
			if len(fresh) == 0 {
				return nil
			}

			cache.Merge(fresh)
			if err := s.cache.Write(urlPath, cache); err != nil {
				pc.Log.Warnf("webmentions: write cache for %s: %v", urlPath, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Commit metadata after all tasks have finished.
	for i, f := range targets {
		f.Metadata["webmentions"] = merged[i]
	}
	return nil
}
