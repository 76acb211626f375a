package plugins

import (
	"context"

	"github.com/aellingwood/janos/internal/feed"
	"github.com/aellingwood/janos/internal/pipeline"
	"github.com/aellingwood/janos/internal/store"
)

// FeedsOptions configures the feeds stage.
type FeedsOptions struct {
	// Collection names the source collection, default "posts".
	Collection string `json:"collection"`
	// Limit caps the number of items, default 20.
	Limit int `json:"limit"`
	// Destination is the RSS output key, default "rss.xml".
	Destination string `json:"destination"`
	// Atom is the Atom output key; empty skips the Atom feed.
	Atom string `json:"atom"`
	// DescriptionField is the item description source, default
	// "excerpt".
	DescriptionField string `json:"descriptionField"`
	// ContentField is the full-content source, default "contents".
	ContentField string `json:"contentField"`
	// FullContent embeds the item body as content:encoded CDATA.
	FullContent bool `json:"fullContent"`
}

type feedsStage struct {
	opts FeedsOptions
}

// Feeds returns the stage that emits an RSS 2.0 feed, and optionally
// an Atom 1.0 feed, from the most recent items of a collection. The
// generated files carry layout=false so later stages leave them alone.
func Feeds(opts FeedsOptions) pipeline.Stage {
	return &feedsStage{opts: opts}
}

func (s *feedsStage) Name() string { return "feeds" }

func (s *feedsStage) Process(ctx context.Context, files *store.Store, pc *pipeline.Context) error {
	name := stringOr(s.opts.Collection, "posts")
	items := collectionsFrom(pc)[name]
	if len(items) == 0 {
		pc.Log.Warnf("feeds: collection %s is missing or empty", name)
		return nil
	}

	// Most recent first, regardless of the collection's own order.
	recent := make([]map[string]any, len(items))
	copy(recent, items)
	sortItems(recent, "date", true)
	if limit := intOr(s.opts.Limit, 20); len(recent) > limit {
		recent = recent[:limit]
	}

	descField := stringOr(s.opts.DescriptionField, "excerpt")
	contentField := stringOr(s.opts.ContentField, "contents")

	feedItems := make([]feed.Item, 0, len(recent))
	for _, item := range recent {
		link := absoluteURL(pc.Site.BaseURL, itemPermalink(item))
		fi := feed.Item{
			Title:       toString(item["title"]),
			Link:        link,
			GUID:        link,
			Description: toString(item[descField]),
			PubDate:     store.ToTime(item["date"]),
			Categories:  tagNames(item["tags"]),
		}
		if s.opts.FullContent {
			fi.Content = toString(item[contentField])
		}
		feedItems = append(feedItems, fi)
	}

	opts := feed.Options{
		Title:       pc.Site.Title,
		Description: pc.Site.Description,
		Link:        pc.Site.BaseURL,
		Language:    pc.Site.Language,
		Author:      pc.Site.Author.Name,
		BuildTime:   pc.Now,
		FullContent: s.opts.FullContent,
	}

	rssKey := stringOr(s.opts.Destination, "rss.xml")
	opts.FeedLink = absoluteURL(pc.Site.BaseURL, "/"+rssKey)
	rss, err := feed.GenerateRSS(feedItems, opts)
	if err != nil {
		return err
	}
	setGenerated(files, rssKey, rss)

	if s.opts.Atom != "" {
		opts.FeedLink = absoluteURL(pc.Site.BaseURL, "/"+s.opts.Atom)
		atom, err := feed.GenerateAtom(feedItems, opts)
		if err != nil {
			return err
		}
		setGenerated(files, s.opts.Atom, atom)
	}
	return nil
}

// setGenerated stores a synthesized output file with rendering
// suppressed.
func setGenerated(files *store.Store, key string, data []byte) {
	f := store.NewFile(key, data)
	f.Metadata["layout"] = false
	files.Set(key, f)
}

func itemPermalink(item map[string]any) string {
	if p, ok := item["permalink"].(string); ok && p != "" {
		return p
	}
	if p, ok := item["path"].(string); ok {
		return keyPermalink(p)
	}
	return "/"
}

func tagNames(raw any) []string {
	tags, ok := raw.([]map[string]any)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		if name, ok := t["name"].(string); ok {
			names = append(names, name)
		}
	}
	return names
}
