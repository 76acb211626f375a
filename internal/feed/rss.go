package feed

import (
	"encoding/xml"
	"time"
)

// CDATA wraps text in a CDATA section when marshaled to XML.
type CDATA struct {
	Text string `xml:",cdata"`
}

// rssFeed is the top-level RSS 2.0 XML structure.
type rssFeed struct {
	XMLName   xml.Name   `xml:"rss"`
	Version   string     `xml:"version,attr"`
	AtomNS    string     `xml:"xmlns:atom,attr"`
	ContentNS string     `xml:"xmlns:content,attr,omitempty"`
	Channel   rssChannel `xml:"channel"`
}

// rssChannel represents the <channel> element.
type rssChannel struct {
	Title         string      `xml:"title"`
	Link          string      `xml:"link"`
	Description   string      `xml:"description"`
	Language      string      `xml:"language,omitempty"`
	LastBuildDate string      `xml:"lastBuildDate"`
	AtomLink      rssAtomLink `xml:"atom:link"`
	Items         []rssItem   `xml:"item"`
}

// rssAtomLink is the atom:link self-reference element.
type rssAtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

// rssGUID carries the isPermaLink attribute alongside the identifier.
type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// rssItem represents a single <item> element.
type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	GUID        rssGUID  `xml:"guid"`
	PubDate     string   `xml:"pubDate,omitempty"`
	Description string   `xml:"description"`
	Content     *CDATA   `xml:"content:encoded,omitempty"`
	Categories  []string `xml:"category,omitempty"`
}

// GenerateRSS produces an RSS 2.0 document. Items are emitted in the
// order given; the caller supplies them already sorted. When
// opts.FullContent is set, each item additionally carries its full
// content in a CDATA <content:encoded> element.
func GenerateRSS(items []Item, opts Options) ([]byte, error) {
	rssItems := make([]rssItem, 0, len(items))
	for _, item := range items {
		ri := rssItem{
			Title:       item.Title,
			Link:        item.Link,
			GUID:        rssGUID{IsPermaLink: "true", Value: item.GUID},
			Description: item.Description,
			Categories:  item.Categories,
		}
		if !item.PubDate.IsZero() {
			ri.PubDate = item.PubDate.Format(time.RFC1123Z)
		}
		if opts.FullContent && item.Content != "" {
			ri.Content = &CDATA{Text: item.Content}
		}
		rssItems = append(rssItems, ri)
	}

	buildTime := opts.BuildTime
	if buildTime.IsZero() {
		buildTime = time.Now().UTC()
	}

	doc := rssFeed{
		Version: "2.0",
		AtomNS:  "http://www.w3.org/2005/Atom",
		Channel: rssChannel{
			Title:         opts.Title,
			Link:          opts.Link,
			Description:   opts.Description,
			Language:      opts.Language,
			LastBuildDate: buildTime.Format(time.RFC1123Z),
			AtomLink: rssAtomLink{
				Href: opts.FeedLink,
				Rel:  "self",
				Type: "application/rss+xml",
			},
			Items: rssItems,
		},
	}
	if opts.FullContent {
		doc.ContentNS = "http://purl.org/rss/1.0/modules/content/"
	}

	output, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}

	result := append([]byte(xml.Header), output...)
	return append(result, '\n'), nil
}
