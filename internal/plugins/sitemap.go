package plugins

import (
	"context"

	"github.com/aellingwood/janos/internal/pipeline"
	"github.com/aellingwood/janos/internal/pattern"
	"github.com/aellingwood/janos/internal/sitemap"
	"github.com/aellingwood/janos/internal/store"
)

// SitemapOptions configures the sitemap stage.
type SitemapOptions struct {
	// Destination is the output key, default "sitemap.xml".
	Destination string `json:"destination"`
	// Exclusions are glob patterns removed from the enumeration, in
	// addition to the defaults (404/500 pages and underscore-prefixed
	// directories).
	Exclusions []string `json:"exclusions"`
	// ChangeFreq is the default change frequency when a file declares
	// none.
	ChangeFreq string `json:"changefreq"`
	// Priority is the default priority when a file declares none.
	Priority string `json:"priority"`
}

var defaultExclusions = []string{"**/404.html", "**/500.html", "**/_*/**"}

type sitemapStage struct {
	opts SitemapOptions
}

// Sitemap returns the stage that emits a sitemaps.org 0.9 document
// covering every indexable HTML page.
func Sitemap(opts SitemapOptions) pipeline.Stage {
	return &sitemapStage{opts: opts}
}

func (s *sitemapStage) Name() string { return "sitemap" }

func (s *sitemapStage) Process(ctx context.Context, files *store.Store, pc *pipeline.Context) error {
	if pc.Site.BaseURL == "" {
		pc.Log.Warnf("sitemap: site.baseUrl is not set, skipping")
		return nil
	}

	exclusions := append(append([]string{}, defaultExclusions...), s.opts.Exclusions...)

	var entries []sitemap.Entry
	for _, f := range files.Files() {
		if !pattern.Match("**/*.html", f.Path) {
			continue
		}
		if pattern.MatchAny(exclusions, f.Path) {
			continue
		}
		if v, ok := f.Metadata["sitemap"].(bool); ok && !v {
			continue
		}
		if f.Bool("noindex") {
			continue
		}

		entry := sitemap.Entry{
			URL:        absoluteURL(pc.Site.BaseURL, permalinkFor(f)),
			ChangeFreq: stringOr(f.String("changefreq"), s.opts.ChangeFreq),
			Priority:   stringOr(f.String("priority"), s.opts.Priority),
		}
		if t := f.Time("modified"); !t.IsZero() {
			entry.Lastmod = t
		} else {
			entry.Lastmod = f.Time("date")
		}
		entries = append(entries, entry)
	}

	data, err := sitemap.Generate(entries)
	if err != nil {
		return err
	}
	setGenerated(files, stringOr(s.opts.Destination, "sitemap.xml"), data)
	pc.Log.Debugf("sitemap: %d entries", len(entries))
	return nil
}
