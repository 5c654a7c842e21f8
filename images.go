package site

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iwilldev/site/imagecache"
	"github.com/iwilldev/site/locale"
	"github.com/iwilldev/site/ogimage"
	"github.com/iwilldev/site/posts"
)

// renderTimeout bounds one shared preview render.
const renderTimeout = 30 * time.Second

var errRenderLimited = echo.NewHTTPError(http.StatusTooManyRequests, "too many image renders, try again later")

// imageSlug strips the mandatory .png suffix from the :file parameter.
func imageSlug(c echo.Context) (string, bool) {
	slug, ok := strings.CutSuffix(c.Param("file"), ".png")
	return slug, ok && slug != ""
}

func (a *App) handlePostImage(c echo.Context) error {
	slug, ok := imageSlug(c)
	if !ok {
		return echo.ErrNotFound
	}
	post, err := a.previewPost(c.Request().Context(), slug, c.QueryParam("lang"))
	if err != nil {
		return err
	}
	key := imagecache.PostKey(post.Lang, post.Slug, post.Checksum)
	img, err := a.renderImage(c, key, func(ctx context.Context) *ogimage.Template {
		return a.compositor.BuildPost(ctx, post)
	})
	if err != nil {
		return err
	}
	return sendPNG(c, img)
}

func (a *App) handlePageImage(c echo.Context) error {
	slug, ok := imageSlug(c)
	if !ok {
		return echo.ErrNotFound
	}
	title := a.Config.PageTitle(slug)
	key := imagecache.PageKey(slug, title)
	img, err := a.renderImage(c, key, func(context.Context) *ogimage.Template {
		return a.compositor.BuildPage(title)
	})
	if err != nil {
		return err
	}
	return sendPNG(c, img)
}

// previewPost finds the post a preview image is drawn for. An unknown or
// missing translation falls back to the default language.
func (a *App) previewPost(ctx context.Context, slug, rawLang string) (posts.Post, error) {
	lang := ""
	if rawLang != "" {
		if m, ok := locale.Match(rawLang, a.languages()); ok && m != a.Config.Lang {
			lang = m
		}
	}
	post, err := a.Posts.GetPost(ctx, slug, lang)
	if lang != "" && errors.Is(err, posts.ErrNotFound) {
		post, err = a.Posts.GetPost(ctx, slug, "")
	}
	return post, err
}

// PostPreview builds the preview template of a post without rendering it.
func (a *App) PostPreview(ctx context.Context, slug, lang string) (*ogimage.Template, error) {
	post, err := a.previewPost(ctx, slug, lang)
	if err != nil {
		return nil, err
	}
	return a.compositor.BuildPost(ctx, post), nil
}

// PagePreview builds the preview template of a static page.
func (a *App) PagePreview(slug string) *ogimage.Template {
	return a.compositor.BuildPage(a.Config.PageTitle(slug))
}

// Rasterizer returns the rasterizer used for preview images.
func (a *App) Rasterizer() *ogimage.Rasterizer {
	return a.rasterizer
}

// renderedImage is an encoded preview. Degraded images were drawn without
// an optional part such as a background that failed to load.
type renderedImage struct {
	data     []byte
	degraded bool
}

// renderImage returns the PNG for key from the image cache or renders it.
// Renders are rate-limited per client and concurrent renders of one key
// share a single pass that runs detached from any one request, bounded by
// renderTimeout. Degraded renders are served but not cached. Cache failures
// are logged and otherwise ignored.
func (a *App) renderImage(c echo.Context, key string, build func(context.Context) *ogimage.Template) (renderedImage, error) {
	ctx := c.Request().Context()
	if a.images != nil {
		data, ok, err := a.images.Get(ctx, key)
		if err != nil {
			a.Logger.Warn("image cache read failed", zap.String("key", key), zap.Error(err))
		}
		if ok {
			return renderedImage{data: data}, nil
		}
	}

	if !a.limiter.Allow(c.RealIP()) {
		return renderedImage{}, errRenderLimited
	}

	ch := a.renders.DoChan(key, func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), renderTimeout)
		defer cancel()
		tpl := build(rctx)
		data, err := a.rasterizer.Rasterize(rctx, tpl)
		if err != nil {
			return nil, err
		}
		switch {
		case tpl.Degraded:
			a.Logger.Info("degraded image not cached", zap.String("key", key))
		case a.images != nil:
			if err := a.images.Put(rctx, key, data); err != nil {
				a.Logger.Warn("image cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
		return renderedImage{data: data, degraded: tpl.Degraded}, nil
	})

	select {
	case <-ctx.Done():
		return renderedImage{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return renderedImage{}, fmt.Errorf("render image %s: %w", key, res.Err)
		}
		a.Logger.Debug("image rendered", zap.String("key", key), zap.Bool("shared", res.Shared))
		return res.Val.(renderedImage), nil
	}
}

// sendPNG writes img. Degraded images get a short lifetime so edge and
// browser caches pick up the complete render once it succeeds.
func sendPNG(c echo.Context, img renderedImage) error {
	cc := cacheImmutable
	if img.degraded {
		cc = cacheDegraded
	}
	c.Response().Header().Set("Cache-Control", cc)
	return c.Blob(http.StatusOK, "image/png", img.data)
}
