package site

import (
	"net/url"
	"path"

	"github.com/iwilldev/site/posts"
)

// BuildURL joins a base URL with path segments. The result always has a
// path, so BuildURL(base) is the site root.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join("/", u.Path, path.Join(pathSegments...))
	return u.String()
}

// FilterRelatedPosts returns up to limit posts that share at least one tag
// with current, in the order given.
func FilterRelatedPosts(current posts.Post, list []posts.Post, limit int) []posts.Post {
	tagSet := make(map[string]struct{})
	for _, t := range current.Tags {
		if tag := normalizeTag(t); tag != "" {
			tagSet[tag] = struct{}{}
		}
	}
	var related []posts.Post
	for _, p := range list {
		if len(related) == limit {
			break
		}
		if p.Slug == current.Slug {
			continue
		}
		for _, t := range p.Tags {
			if _, ok := tagSet[normalizeTag(t)]; ok {
				related = append(related, p)
				break
			}
		}
	}
	return related
}

// latest returns the first n posts of list.
func latest(list []posts.Post, n int) []posts.Post {
	if len(list) > n {
		return list[:n]
	}
	return list
}
