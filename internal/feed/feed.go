// Package feed generates RSS 2.0 and Atom 1.0 documents from
// collection items.
package feed

import "time"

// Options configures feed generation.
type Options struct {
	Title       string
	Description string
	Link        string // site URL, e.g. "https://example.com"
	FeedLink    string // feed URL, e.g. "https://example.com/rss.xml"
	Language    string
	Author      string
	BuildTime   time.Time // channel lastBuildDate / feed updated
	FullContent bool      // include full item content alongside the description
}

// Item is a single feed entry.
type Item struct {
	Title       string
	Link        string // absolute permalink
	Description string // summary (typically the excerpt)
	Content     string // full HTML content, used when FullContent is set
	Author      string
	PubDate     time.Time
	GUID        string // typically same as Link
	Categories  []string
}
