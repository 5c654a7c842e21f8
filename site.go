// Package site serves the iwill.dev portfolio and blog: static pages, posts
// read from markdown files, and generated preview images for both.
package site

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/iwilldev/site/imagecache"
	"github.com/iwilldev/site/markdown"
	"github.com/iwilldev/site/ogimage"
	"github.com/iwilldev/site/posts"
	"github.com/iwilldev/site/views"
)

// App wires together the post store, renderers, image pipeline, handlers
// and middleware.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Posts  *PostCache
	Logger *zap.Logger

	markdown   *markdown.Renderer
	compositor *ogimage.Compositor
	rasterizer *ogimage.Rasterizer
	assets     *ogimage.Assets
	images     *imagecache.Store // nil when the image cache is disabled
	renders    singleflight.Group
	limiter    *RenderLimiter
	staticDir  string
	site       views.Site
}

// New builds the App. Font and logo assets are loaded here; failing to load
// them is fatal.
func New(cfg SiteConfig, opts ...Option) (*App, error) {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Logger:    zap.NewNop(),
		staticDir: cfg.StaticDir,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.assets == nil {
		assets, err := ogimage.LoadAssets(cfg.FontPath, cfg.LogoPath)
		if err != nil {
			return nil, fmt.Errorf("site: %w", err)
		}
		a.assets = assets
	}

	store := posts.NewStore(cfg.PostsDir,
		posts.WithLogger(a.Logger),
		posts.WithDefaultLanguage(cfg.Lang),
	)
	a.Posts = NewPostCache(store, cfg.PostCacheTTL)
	a.markdown = markdown.New(markdown.WithStyle(cfg.CodeStyle))

	bgOpts := []ogimage.BackgroundOption{}
	if cfg.RemoteBackgrounds {
		bgOpts = append(bgOpts, ogimage.WithRemote(cfg.RemoteFetchTimeout))
	}
	a.compositor = ogimage.NewCompositor(a.assets,
		ogimage.NewBackgrounds(cfg.BackgroundsDir, bgOpts...),
		ogimage.WithSiteName(cfg.Name),
		ogimage.WithDefaultAuthor(cfg.Author),
		ogimage.WithTagline(cfg.Name+" | "+strings.TrimSuffix(cfg.Tagline, ".")),
		ogimage.WithLogger(a.Logger),
	)
	a.rasterizer = ogimage.NewRasterizer(a.assets)

	if cfg.ImageCachePath != "" {
		images, err := imagecache.Open(cfg.ImageCachePath)
		if err != nil {
			return nil, fmt.Errorf("site: %w", err)
		}
		a.images = images
	}
	a.limiter = NewRenderLimiter(cfg.RenderRate, cfg.RenderBurst, 10*time.Minute)

	a.site = views.Site{
		Name:        cfg.Name,
		URL:         cfg.URL,
		Description: cfg.Description,
		Author:      cfg.Author,
		Tagline:     cfg.Tagline,
		Lang:        cfg.Lang,
		Bio:         cfg.Bio,
		Experience:  cfg.Experience,
		Links:       cfg.Links,
	}

	a.Echo.HideBanner = true
	a.Echo.HidePort = true
	a.Echo.Debug = cfg.IsDevelopment()
	a.Echo.Server.ReadTimeout = cfg.ReadTimeout
	a.Echo.Server.WriteTimeout = cfg.WriteTimeout

	a.setupMiddleware()
	a.setupRoutes()
	return a, nil
}

// Start listens on Config.Addr until Shutdown is called.
func (a *App) Start() error {
	a.Logger.Info("server starting",
		zap.String("addr", a.Config.Addr),
		zap.String("env", a.Config.Env),
		zap.String("posts", a.Config.PostsDir),
	)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Embedded defaults are registered before the static directory so they
	// win over the /public/* wildcard.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/site.css", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.GET("/public/chroma.css", a.handleChromaCSS)
	e.Static("/public", a.staticDir)

	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/rss.xml", a.handleRSS)

	e.GET("/", a.handleHome)
	e.GET("/path", a.handlePath)
	e.GET("/links", a.handleLinks)
	e.GET("/feed", a.handleFeed)
	e.GET("/feed/:slug", a.handlePost)
	e.GET("/feed/:slug/:lang", a.handlePostVariant)

	e.GET("/images/posts/:file", a.handlePostImage)
	e.GET("/images/pages/:file", a.handlePageImage)
}

// Close releases the image cache and stops the limiter janitor.
func (a *App) Close() error {
	a.limiter.Stop()
	if a.images != nil {
		return a.images.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
