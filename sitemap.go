package site

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iwilldev/site/posts"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc      string `xml:"loc"`
	LastMod  string `xml:"lastmod,omitempty"`
	Priority string `xml:"priority"`
}

// staticPages are the non-post routes listed in the sitemap, in order.
var staticPages = []struct {
	Slug, Path, Priority string
}{
	{"index", "/", "1.00"},
	{"path", "/path", "0.80"},
	{"feed", "/feed", "0.80"},
	{"links", "/links", "0.80"},
}

func (a *App) handleSitemap(c echo.Context) error {
	list, err := a.Posts.ListPosts(c.Request().Context(), "")
	if err != nil {
		return err
	}
	return a.renderSitemap(c, list)
}

func (a *App) renderSitemap(c echo.Context, list []posts.Post) error {
	base := a.Config.URL
	var newest time.Time
	for _, p := range list {
		if p.Date.After(newest) {
			newest = p.Date
		}
	}
	urls := make([]sitemapURL, 0, len(staticPages)+len(list))
	for _, page := range staticPages {
		u := sitemapURL{Loc: BuildURL(base, page.Path), Priority: page.Priority}
		if !newest.IsZero() {
			u.LastMod = newest.UTC().Format(time.RFC3339)
		}
		urls = append(urls, u)
	}
	for _, p := range list {
		u := sitemapURL{Loc: BuildURL(base, p.Link()), Priority: "0.7"}
		if p.HasDate() {
			u.LastMod = p.Date.UTC().Format(time.RFC3339)
		}
		urls = append(urls, u)
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
