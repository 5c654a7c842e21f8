package site

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iwilldev/site/posts"
)

// PostCache is a read-through TTL cache over a posts.Store. With ttl <= 0
// every call goes to disk.
type PostCache struct {
	store *posts.Store
	ttl   time.Duration

	mu      sync.RWMutex
	list    []posts.Post
	tags    []string
	fetched time.Time
	entries map[string]cachedPost
}

type cachedPost struct {
	post    posts.Post
	fetched time.Time
}

// NewPostCache creates a PostCache backed by s.
func NewPostCache(s *posts.Store, ttl time.Duration) *PostCache {
	return &PostCache{store: s, ttl: ttl, entries: make(map[string]cachedPost)}
}

// Store returns the underlying post store.
func (c *PostCache) Store() *posts.Store {
	return c.store
}

func (c *PostCache) enabled() bool {
	return c.ttl > 0
}

func (c *PostCache) fresh(t time.Time) bool {
	return time.Since(t) < c.ttl
}

// Invalidate clears the cache so the next read goes to disk.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.list = nil
	c.tags = nil
	c.entries = make(map[string]cachedPost)
	c.mu.Unlock()
}

// ensureLoaded returns the cached list after making sure it is fresh. It
// tries a read lock first and only takes the write lock to reload.
func (c *PostCache) ensureLoaded(ctx context.Context) ([]posts.Post, []string, error) {
	if !c.enabled() {
		list, err := c.store.ListPosts(ctx)
		if err != nil {
			return nil, nil, err
		}
		return list, collectTags(list), nil
	}

	c.mu.RLock()
	if c.list != nil && c.fresh(c.fetched) {
		list, tags := c.list, c.tags
		c.mu.RUnlock()
		return list, tags, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.list != nil && c.fresh(c.fetched) {
		return c.list, c.tags, nil
	}
	list, err := c.store.ListPosts(ctx)
	if err != nil {
		return nil, nil, err
	}
	if list == nil {
		list = []posts.Post{}
	}
	c.list = list
	c.tags = collectTags(list)
	c.fetched = time.Now()
	return c.list, c.tags, nil
}

// ListPosts returns posts newest first, optionally filtered by tag.
func (c *PostCache) ListPosts(ctx context.Context, tag string) ([]posts.Post, error) {
	list, _, err := c.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	if tag == "" {
		return list, nil
	}
	normalized := normalizeTag(tag)
	var filtered []posts.Post
	for _, p := range list {
		for _, t := range p.Tags {
			if normalizeTag(t) == normalized {
				filtered = append(filtered, p)
				break
			}
		}
	}
	return filtered, nil
}

// ListTags returns the distinct tags of all posts, sorted.
func (c *PostCache) ListTags(ctx context.Context) ([]string, error) {
	_, tags, err := c.ensureLoaded(ctx)
	return tags, err
}

// GetPost returns the post for slug in lang ("" for the default language).
// Only successful reads are cached.
func (c *PostCache) GetPost(ctx context.Context, slug, lang string) (posts.Post, error) {
	if !c.enabled() {
		return c.store.GetPost(ctx, slug, lang)
	}
	key := lang + "/" + slug

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.fresh(e.fetched) {
		return e.post, nil
	}

	p, err := c.store.GetPost(ctx, slug, lang)
	if err != nil {
		return posts.Post{}, err
	}
	c.mu.Lock()
	c.entries[key] = cachedPost{post: p, fetched: time.Now()}
	c.mu.Unlock()
	return p, nil
}

// Variants lists the translations available for slug.
func (c *PostCache) Variants(ctx context.Context, slug string) []string {
	return c.store.Variants(ctx, slug)
}

func collectTags(list []posts.Post) []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, p := range list {
		for _, t := range p.Tags {
			n := normalizeTag(t)
			if n == "" {
				continue
			}
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			tags = append(tags, n)
		}
	}
	sort.Strings(tags)
	return tags
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
