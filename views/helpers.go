package views

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/iwilldev/site/posts"
)

// absURL joins path segments onto base. Root-relative and absolute inputs
// in p are resolved the same way.
func absURL(base string, p string) string {
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	u, err := url.Parse(base)
	if err != nil {
		return base + p
	}
	u.Path = path.Join("/", u.Path, p)
	return u.String()
}

// PostImage is the path of the preview image of p.
func (s Site) PostImage(p posts.Post) string {
	img := "/images/posts/" + url.PathEscape(p.Slug) + ".png"
	if s.translated(p) {
		img += "?lang=" + url.QueryEscape(p.Lang)
	}
	return img
}

// PageImage is the path of the preview image of a static page.
func PageImage(slug string) string {
	return "/images/pages/" + url.PathEscape(slug) + ".png"
}

// PostPath is the canonical path of p, including its language segment for
// translations.
func (s Site) PostPath(p posts.Post) string {
	if !s.translated(p) {
		return p.Link()
	}
	return p.Link() + "/" + url.PathEscape(p.Lang)
}

func (s Site) translated(p posts.Post) bool {
	return p.Lang != "" && p.Lang != s.Lang
}

// TagPath links the feed filtered by tag.
func TagPath(tag string) string {
	return "/feed?tag=" + url.QueryEscape(tag)
}

func tagClass(active bool) string {
	if active {
		return "tag tag-active"
	}
	return "tag"
}

func marshalJSONLD(data map[string]any) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// WebsiteJSONLD produces a Schema.org WebSite block for site.
func WebsiteJSONLD(site Site) string {
	data := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     site.Name,
		"url":      absURL(site.URL, "/"),
	}
	if site.Description != "" {
		data["description"] = site.Description
	}
	if site.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  site.Author,
		}
	}
	return marshalJSONLD(data)
}

// BlogPostingJSONLD produces a Schema.org BlogPosting block for p.
func BlogPostingJSONLD(site Site, p posts.Post) string {
	postURL := absURL(site.URL, site.PostPath(p))
	author := p.Author
	if author == "" {
		author = site.Author
	}
	data := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "BlogPosting",
		"headline":    p.Title,
		"description": p.Description,
		"image":       absURL(site.URL, site.PostImage(p)),
		"url":         postURL,
		"author": map[string]string{
			"@type": "Person",
			"name":  author,
		},
		"publisher": map[string]any{
			"@type": "Organization",
			"name":  site.Name,
			"url":   absURL(site.URL, "/"),
			"logo": map[string]string{
				"@type": "ImageObject",
				"url":   absURL(site.URL, PageImage("index")),
			},
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if p.HasDate() {
		data["datePublished"] = p.Date.UTC().Format(time.RFC3339)
	}
	if p.Lang != "" {
		data["inLanguage"] = p.Lang
	}
	if len(p.Tags) > 0 {
		data["keywords"] = strings.Join(p.Tags, ", ")
	}
	return marshalJSONLD(data)
}

// writer accumulates the first write error so view code can stay linear.
type writer struct {
	out io.Writer
	err error
}

func (w *writer) raw(parts ...string) {
	for _, s := range parts {
		if w.err != nil {
			return
		}
		_, w.err = io.WriteString(w.out, s)
	}
}

func (w *writer) text(s string) {
	w.raw(templ.EscapeString(s))
}

func (w *writer) attr(name, value string) {
	w.raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

// href writes an href attribute, replacing unsafe schemes.
func (w *writer) href(u string) {
	w.attr("href", string(templ.URL(u)))
}

func (w *writer) render(ctx context.Context, c templ.Component) {
	if w.err != nil || c == nil {
		return
	}
	w.err = c.Render(ctx, w.out)
}

func component(fn func(ctx context.Context, w *writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{out: out}
		fn(ctx, w)
		return w.err
	})
}
