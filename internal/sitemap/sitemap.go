// Package sitemap generates sitemaps.org 0.9 XML documents.
package sitemap

import (
	"encoding/xml"
	"fmt"
	"sort"
	"time"
)

// Entry represents a page in the sitemap.
type Entry struct {
	URL        string
	Lastmod    time.Time
	ChangeFreq string
	Priority   string
}

// urlSet is the root element of a sitemap XML document.
type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []urlTag `xml:"url"`
}

// urlTag represents a single URL entry.
type urlTag struct {
	Loc        string `xml:"loc"`
	Lastmod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Generate produces a sitemap XML document. Entries are sorted by URL
// for deterministic output; lastmod uses the date-only ISO form and is
// omitted for zero times.
func Generate(entries []Entry) ([]byte, error) {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].URL < sorted[j].URL })

	set := urlSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  make([]urlTag, 0, len(sorted)),
	}
	for _, e := range sorted {
		u := urlTag{
			Loc:        e.URL,
			ChangeFreq: e.ChangeFreq,
			Priority:   e.Priority,
		}
		if !e.Lastmod.IsZero() {
			u.Lastmod = e.Lastmod.Format("2006-01-02")
		}
		set.URLs = append(set.URLs, u)
	}

	output, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("sitemap: marshaling: %w", err)
	}

	result := append([]byte(xml.Header), output...)
	return append(result, '\n'), nil
}
