package feed

import (
	"encoding/xml"
	"time"
)

// atomFeed is the top-level Atom 1.0 XML structure.
type atomFeed struct {
	XMLName  xml.Name    `xml:"feed"`
	Xmlns    string      `xml:"xmlns,attr"`
	Title    string      `xml:"title"`
	Subtitle string      `xml:"subtitle,omitempty"`
	Links    []atomLink  `xml:"link"`
	ID       string      `xml:"id"`
	Updated  string      `xml:"updated"`
	Author   *atomAuthor `xml:"author,omitempty"`
	Entries  []atomEntry `xml:"entry"`
}

// atomLink represents a <link> element.
type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

// atomAuthor represents an <author> element.
type atomAuthor struct {
	Name string `xml:"name"`
}

// atomEntry represents a single <entry> element.
type atomEntry struct {
	Title      string         `xml:"title"`
	Link       atomLink       `xml:"link"`
	ID         string         `xml:"id"`
	Published  string         `xml:"published"`
	Updated    string         `xml:"updated"`
	Summary    *atomText      `xml:"summary,omitempty"`
	Content    *atomText      `xml:"content,omitempty"`
	Categories []atomCategory `xml:"category,omitempty"`
}

// atomText is a text construct with a type attribute.
type atomText struct {
	Type string `xml:"type,attr"`
	Body string `xml:",chardata"`
}

// atomCategory represents a <category> element.
type atomCategory struct {
	Term string `xml:"term,attr"`
}

// GenerateAtom produces an Atom 1.0 document mirroring the RSS feed:
// updated/published carry ISO-8601 times, id is the permalink, summary
// holds the description, and content holds the full HTML body when
// opts.FullContent is set.
func GenerateAtom(items []Item, opts Options) ([]byte, error) {
	entries := make([]atomEntry, 0, len(items))
	for _, item := range items {
		entry := atomEntry{
			Title:     item.Title,
			Link:      atomLink{Href: item.Link, Rel: "alternate"},
			ID:        item.GUID,
			Published: item.PubDate.UTC().Format(time.RFC3339),
			Updated:   item.PubDate.UTC().Format(time.RFC3339),
		}
		if item.Description != "" {
			entry.Summary = &atomText{Type: "html", Body: item.Description}
		}
		if opts.FullContent && item.Content != "" {
			entry.Content = &atomText{Type: "html", Body: item.Content}
		}
		for _, c := range item.Categories {
			entry.Categories = append(entry.Categories, atomCategory{Term: c})
		}
		entries = append(entries, entry)
	}

	buildTime := opts.BuildTime
	if buildTime.IsZero() {
		buildTime = time.Now().UTC()
	}

	doc := atomFeed{
		Xmlns:    "http://www.w3.org/2005/Atom",
		Title:    opts.Title,
		Subtitle: opts.Description,
		Links: []atomLink{
			{Href: opts.Link, Rel: "alternate"},
			{Href: opts.FeedLink, Rel: "self"},
		},
		ID:      opts.Link + "/",
		Updated: buildTime.UTC().Format(time.RFC3339),
		Entries: entries,
	}
	if opts.Author != "" {
		doc.Author = &atomAuthor{Name: opts.Author}
	}

	output, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}

	result := append([]byte(xml.Header), output...)
	return append(result, '\n'), nil
}
