package plugins

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aellingwood/janos/internal/store"
	"github.com/aellingwood/janos/internal/webmention"
)

type fakeFetcher struct {
	mu      sync.Mutex
	targets []string
	sinces  []*int
	fresh   []webmention.Mention
	err     error
}

func (f *fakeFetcher) Fetch(ctx context.Context, target string, sinceID *int) ([]webmention.Mention, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.targets = append(f.targets, target)
	f.sinces = append(f.sinces, sinceID)
	return f.fresh, f.err
}

type memCache struct {
	mu     sync.Mutex
	caches map[string]*webmention.Cache
	writes int
}

func newMemCache() *memCache {
	return &memCache{caches: map[string]*webmention.Cache{}}
}

func (c *memCache) Read(urlPath string) (*webmention.Cache, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.caches[urlPath], nil
}

func (c *memCache) Write(urlPath string, cache *webmention.Cache) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.caches[urlPath] = cache
	c.writes++
	return nil
}

func contentFile(files *store.Store, key, permalink string) *store.File {
	return addFile(files, key, "", map[string]any{
		"layout":     "post.njk",
		"collection": "posts",
		"permalink":  permalink,
	})
}

func TestWebmentionsMergeScenario(t *testing.T) {
	files := store.New()
	f := contentFile(files, "blog/my-post/index.html", "/blog/my-post/")
	pc := testContext(t, "production")

	prev := 20
	cache := newMemCache()
	cache.caches["blog/my-post/"] = &webmention.Cache{
		LastWmID: &prev,
		Children: []webmention.Mention{
			{ID: 10, Property: webmention.PropertyLike},
			{ID: 20, Property: webmention.PropertyReply},
		},
	}
	fetcher := &fakeFetcher{fresh: []webmention.Mention{
		{ID: 25, Property: webmention.PropertyReply},
		{ID: 22, Property: webmention.PropertyRepost},
		{ID: 20, Property: webmention.PropertyReply},
	}}

	run(t, WebmentionsWith(WebmentionsOptions{}, fetcher, cache), files, pc)

	got, ok := f.Metadata["webmentions"].(*webmention.Cache)
	if !ok {
		t.Fatalf("metadata.webmentions = %T", f.Metadata["webmentions"])
	}
	if len(got.Children) != 4 {
		t.Errorf("children = %d, want 4 unique", len(got.Children))
	}
	if got.LastWmID == nil || *got.LastWmID != 25 {
		t.Errorf("lastWmId = %v, want 25", got.LastWmID)
	}
	if got.ReplyCount != 2 || got.RepostCount != 1 || got.LikeCount != 1 {
		t.Errorf("counts = %d/%d/%d", got.ReplyCount, got.LikeCount, got.RepostCount)
	}
	if cache.writes != 1 {
		t.Errorf("writes = %d, want 1", cache.writes)
	}

	if len(fetcher.targets) != 1 || fetcher.targets[0] != "https://example.com/blog/my-post/" {
		t.Errorf("targets = %v", fetcher.targets)
	}
	if fetcher.sinces[0] == nil || *fetcher.sinces[0] != 20 {
		t.Errorf("since = %v, want 20", fetcher.sinces[0])
	}
}

func TestWebmentionsFetchFailureKeepsCache(t *testing.T) {
	files := store.New()
	f := contentFile(files, "p/index.html", "/p/")
	pc := testContext(t, "production")

	prev := 5
	cache := newMemCache()
	cache.caches["p/"] = &webmention.Cache{
		LastWmID: &prev,
		Children: []webmention.Mention{{ID: 5, Property: webmention.PropertyLike}},
	}
	fetcher := &fakeFetcher{err: errors.New("network down")}

	run(t, WebmentionsWith(WebmentionsOptions{}, fetcher, cache), files, pc)

	got := f.Metadata["webmentions"].(*webmention.Cache)
	if len(got.Children) != 1 || *got.LastWmID != 5 {
		t.Errorf("cached value not retained: %+v", got)
	}
	if cache.writes != 0 {
		t.Error("cache written despite fetch failure")
	}
	if len(pc.Log.Warnings()) == 0 {
		t.Error("expected a warning")
	}
}

func TestWebmentionsSelectsContentFilesOnly(t *testing.T) {
	files := store.New()
	contentFile(files, "post/index.html", "/post/")
	addFile(files, "about/index.html", "", map[string]any{"layout": "page.njk"})
	addFile(files, "style.css", "", nil)
	pc := testContext(t, "production")

	fetcher := &fakeFetcher{}
	run(t, WebmentionsWith(WebmentionsOptions{}, fetcher, newMemCache()), files, pc)

	if len(fetcher.targets) != 1 {
		t.Errorf("targets = %v, want only the post", fetcher.targets)
	}
}

func TestWebmentionsZeroCacheOnFirstRun(t *testing.T) {
	files := store.New()
	f := contentFile(files, "p/index.html", "/p/")
	pc := testContext(t, "production")

	fetcher := &fakeFetcher{}
	run(t, WebmentionsWith(WebmentionsOptions{}, fetcher, newMemCache()), files, pc)

	got := f.Metadata["webmentions"].(*webmention.Cache)
	if got == nil || len(got.Children) != 0 || got.LastWmID != nil {
		t.Errorf("zero cache expected, got %+v", got)
	}
	if fetcher.sinces[0] != nil {
		t.Error("since_id should be omitted without a cache")
	}
}
