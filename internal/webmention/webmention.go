// Package webmention fetches and caches inbound webmentions in the
// JF2 format served by webmention.io-compatible endpoints.
package webmention

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"

	"github.com/spf13/afero"
)

// Webmention properties.
const (
	PropertyReply    = "in-reply-to"
	PropertyLike     = "like-of"
	PropertyRepost   = "repost-of"
	PropertyMention  = "mention-of"
	PropertyBookmark = "bookmark-of"
)

// Author describes who sent a mention.
type Author struct {
	Type  string `json:"type,omitempty"`
	Name  string `json:"name,omitempty"`
	Photo string `json:"photo,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Content is the mention body.
type Content struct {
	Text string `json:"text,omitempty"`
	HTML string `json:"html,omitempty"`
}

// Mention is a single inbound webmention. Endpoints send arbitrary
// extra fields, which are ignored.
type Mention struct {
	ID        int      `json:"wm-id"`
	Source    string   `json:"wm-source"`
	Target    string   `json:"wm-target"`
	Property  string   `json:"wm-property"`
	Received  string   `json:"wm-received"`
	Author    *Author  `json:"author,omitempty"`
	Content   *Content `json:"content,omitempty"`
	Published string   `json:"published,omitempty"`
	URL       string   `json:"url,omitempty"`
}

// Cache is the persisted per-page webmention state.
type Cache struct {
	LastWmID    *int      `json:"lastWmId"`
	Children    []Mention `json:"children"`
	ReplyCount  int       `json:"reply-count"`
	LikeCount   int       `json:"like-count"`
	RepostCount int       `json:"repost-count"`
}

// Zero returns an empty cache.
func Zero() *Cache {
	return &Cache{Children: []Mention{}}
}

// Merge folds freshly fetched mentions into the cache. Children stay
// unique by wm-id; fresh entries win over cached ones with the same
// id. LastWmID advances to the first fresh mention's id (endpoints
// return newest first) and the counts are recomputed. Merging an empty
// fresh list leaves the cache unchanged.
func (c *Cache) Merge(fresh []Mention) {
	if len(fresh) == 0 {
		return
	}

	seen := make(map[int]int, len(c.Children)) // wm-id -> index
	for i, m := range c.Children {
		seen[m.ID] = i
	}
	for _, m := range fresh {
		if i, ok := seen[m.ID]; ok {
			c.Children[i] = m
			continue
		}
		seen[m.ID] = len(c.Children)
		c.Children = append(c.Children, m)
	}

	// Newest first by wm-id for stable output.
	sort.SliceStable(c.Children, func(i, j int) bool {
		return c.Children[i].ID > c.Children[j].ID
	})

	last := fresh[0].ID
	if c.LastWmID == nil || last > *c.LastWmID {
		c.LastWmID = &last
	}

	c.recount()
}

func (c *Cache) recount() {
	c.ReplyCount, c.LikeCount, c.RepostCount = 0, 0, 0
	for _, m := range c.Children {
		switch m.Property {
		case PropertyReply:
			c.ReplyCount++
		case PropertyLike:
			c.LikeCount++
		case PropertyRepost:
			c.RepostCount++
		}
	}
}

// FileCache reads and writes per-page caches beneath a directory,
// at <dir>/<urlPath>webmentions.json.
type FileCache struct {
	fs  afero.Fs
	dir string
}

// NewFileCache creates a FileCache rooted at dir on the given
// filesystem.
func NewFileCache(fs afero.Fs, dir string) *FileCache {
	return &FileCache{fs: fs, dir: dir}
}

func (s *FileCache) cachePath(urlPath string) string {
	return path.Join(s.dir, urlPath, "webmentions.json")
}

// Read returns the cache stored for urlPath, or nil when none exists.
func (s *FileCache) Read(urlPath string) (*Cache, error) {
	p := s.cachePath(urlPath)
	ok, err := afero.Exists(s.fs, p)
	if err != nil || !ok {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, p)
	if err != nil {
		return nil, fmt.Errorf("webmention cache %s: %w", p, err)
	}
	var c Cache
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("webmention cache %s: %w", p, err)
	}
	return &c, nil
}

// Write persists the cache for urlPath, creating directories as
// needed.
func (s *FileCache) Write(urlPath string, c *Cache) error {
	p := s.cachePath(urlPath)
	if err := s.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return fmt.Errorf("webmention cache %s: %w", p, err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("webmention cache %s: %w", p, err)
	}
	return afero.WriteFile(s.fs, p, data, 0o644)
}
