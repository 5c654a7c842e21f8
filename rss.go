package site

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iwilldev/site/posts"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string     `xml:"title"`
	Link        string     `xml:"link"`
	Description string     `xml:"description"`
	PubDate     string     `xml:"pubDate,omitempty"`
	GUID        string     `xml:"guid"`
	Categories  []string   `xml:"category"`
	Enclosure   *enclosure `xml:"enclosure"`
}

type enclosure struct {
	URL  string `xml:"url,attr"`
	Type string `xml:"type,attr"`
}

func (a *App) handleRSS(c echo.Context) error {
	list, err := a.Posts.ListPosts(c.Request().Context(), "")
	if err != nil {
		return err
	}
	return a.renderRSS(c, list)
}

func (a *App) renderRSS(c echo.Context, list []posts.Post) error {
	base := a.Config.URL
	items := make([]rssItem, 0, len(list))
	for _, p := range list {
		pubDate := ""
		if p.HasDate() {
			pubDate = p.Date.Format(time.RFC1123Z)
		}
		postURL := BuildURL(base, p.Link())
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        postURL,
			Description: p.Description,
			PubDate:     pubDate,
			GUID:        postURL,
			Categories:  p.Tags,
			Enclosure: &enclosure{
				URL:  BuildURL(base, "images", "posts", p.Slug+".png"),
				Type: "image/png",
			},
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        BuildURL(base),
			Description: a.Config.Description,
			Language:    a.Config.Lang,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(feed)
}
