package site

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iwilldev/site/locale"
	"github.com/iwilldev/site/posts"
	"github.com/iwilldev/site/views"
)

const (
	latestPostCount  = 3
	relatedPostCount = 2
)

// pageMeta builds the head metadata of a static page.
func (a *App) pageMeta(slug, path, title string) views.PageMeta {
	return views.PageMeta{
		Title:       title + " - " + a.Config.Name + " | " + a.Config.Tagline,
		Description: a.Config.Description,
		Path:        path,
		Image:       views.PageImage(slug),
		JSONLD:      []string{views.WebsiteJSONLD(a.site)},
	}
}

func (a *App) handleHome(c echo.Context) error {
	list, err := a.Posts.ListPosts(c.Request().Context(), "")
	if err != nil {
		return err
	}
	meta := a.pageMeta("index", "/", "Início")
	return Render(c, views.Home(a.site, meta, latest(list, latestPostCount)))
}

func (a *App) handlePath(c echo.Context) error {
	return Render(c, views.Path(a.site, a.pageMeta("path", "/path", "Experiência / Projetos")))
}

func (a *App) handleLinks(c echo.Context) error {
	return Render(c, views.Links(a.site, a.pageMeta("links", "/links", "Links")))
}

func (a *App) handleFeed(c echo.Context) error {
	ctx := c.Request().Context()
	tag := normalizeTag(c.QueryParam("tag"))
	list, err := a.Posts.ListPosts(ctx, tag)
	if err != nil {
		return err
	}
	tags, err := a.Posts.ListTags(ctx)
	if err != nil {
		return err
	}
	page := views.FeedPage{
		Posts:     list,
		Tags:      tags,
		ActiveTag: tag,
		Labels:    locale.For(a.Config.Lang),
	}
	return Render(c, views.Feed(a.site, a.pageMeta("feed", "/feed", "Feed"), page))
}

func (a *App) handlePost(c echo.Context) error {
	post, err := a.Posts.GetPost(c.Request().Context(), c.Param("slug"), "")
	if err != nil {
		return err
	}
	return a.renderPost(c, post)
}

// handlePostVariant serves a translation. Anything that is not an existing,
// non-default translation redirects to the original post.
func (a *App) handlePostVariant(c echo.Context) error {
	slug := c.Param("slug")
	original := "/feed/" + url.PathEscape(slug)

	lang, ok := locale.Match(c.Param("lang"), a.languages())
	if !ok || lang == a.Config.Lang {
		return c.Redirect(http.StatusFound, original)
	}
	post, err := a.Posts.GetPost(c.Request().Context(), slug, lang)
	if errors.Is(err, posts.ErrNotFound) {
		return c.Redirect(http.StatusFound, original)
	}
	if err != nil {
		return err
	}
	return a.renderPost(c, post)
}

func (a *App) renderPost(c echo.Context, post posts.Post) error {
	ctx := c.Request().Context()
	html, err := a.markdown.Render(post.Body)
	if err != nil {
		return fmt.Errorf("post %s: %w", post.Slug, err)
	}
	page := views.PostPage{
		Post:     post,
		HTML:     html,
		Labels:   locale.For(post.Lang),
		Original: post.Lang == a.Config.Lang,
	}
	if page.Original {
		page.Variants = a.servableVariants(ctx, post.Slug)
		if list, err := a.Posts.ListPosts(ctx, ""); err == nil {
			page.Related = FilterRelatedPosts(post, list, relatedPostCount)
		} else {
			a.Logger.Warn("related posts unavailable", zap.Error(err))
		}
	}

	author := post.Author
	if author == "" {
		author = a.Config.Author
	}
	description := post.Description
	if page.Original {
		description = page.Labels.Byline(post.Date, author, post.ReadingTime)
	}
	meta := views.PageMeta{
		Title:       post.Title + " - Feed - " + a.Config.Name,
		Description: description,
		Path:        a.site.PostPath(post),
		Image:       a.site.PostImage(post),
		OGType:      "article",
		JSONLD:      []string{views.BlogPostingJSONLD(a.site, post)},
	}
	c.Response().Header().Set("Cache-Control", cachePost)
	return Render(c, views.Post(a.site, meta, page))
}

// languages are the variant languages the site can label.
func (a *App) languages() []string {
	return locale.Supported()
}

// servableVariants lists the translations of slug that handlePostVariant
// serves instead of redirecting.
func (a *App) servableVariants(ctx context.Context, slug string) []string {
	var langs []string
	for _, v := range a.Posts.Variants(ctx, slug) {
		if m, ok := locale.Match(v, a.languages()); ok && m == v && m != a.Config.Lang {
			langs = append(langs, v)
		}
	}
	return langs
}

func (a *App) handleChromaCSS(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "text/css; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return a.markdown.WriteCSS(c.Response())
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nAllow: /\n\nSitemap: " + BuildURL(a.Config.URL, "sitemap.xml") + "\n"
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	// The client went away; there is no one to answer.
	if errors.Is(err, context.Canceled) && c.Request().Context().Err() != nil {
		return
	}
	c.Response().Header().Set("Cache-Control", cacheNoStore)

	code := http.StatusInternalServerError
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		code = he.Code
	case errors.Is(err, posts.ErrNotFound):
		code = http.StatusNotFound
	}

	switch {
	case code == http.StatusNotFound:
		_ = RenderStatus(c, http.StatusNotFound, views.NotFound(a.site))
	case code >= 500:
		a.Logger.Error("server error",
			zap.Error(err),
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
		)
		detail := ""
		if a.Config.IsDevelopment() {
			detail = err.Error()
		}
		_ = RenderStatus(c, code, views.ServerError(a.site, detail))
	default:
		a.Echo.DefaultHTTPErrorHandler(err, c)
	}
}
