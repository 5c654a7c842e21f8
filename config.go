package site

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iwilldev/site/internal/yamlutil"
	"github.com/iwilldev/site/ogimage"
	"github.com/iwilldev/site/views"
)

// SiteConfig holds all configuration for the site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // default "iwill.dev"
	URL         string `yaml:"url"`         // canonical URL (default "https://iwill.dev")
	Description string `yaml:"description"` // meta description of static pages
	Author      string `yaml:"author"`      // fallback author of posts
	Tagline     string `yaml:"tagline"`
	Lang        string `yaml:"lang"` // language of the posts directory root (default "pt")
	Env         string `yaml:"env"`  // "development" or "production"

	Addr           string `yaml:"addr"`            // listen address (default ":3000")
	PostsDir       string `yaml:"posts_dir"`       // default "content/posts"
	StaticDir      string `yaml:"static_dir"`      // default "public"
	BackgroundsDir string `yaml:"backgrounds_dir"` // default "public/backgrounds"
	FontPath       string `yaml:"font_path"`       // empty uses the bundled Go Medium font
	LogoPath       string `yaml:"logo_path"`       // empty uses the bundled logo
	CodeStyle      string `yaml:"code_style"`      // chroma style name
	ImageCachePath string `yaml:"image_cache_path"`

	RemoteBackgrounds bool    `yaml:"remote_backgrounds"`
	RenderRate        float64 `yaml:"render_rate"`  // image renders per second per IP; < 0 disables the limit
	RenderBurst       int     `yaml:"render_burst"` // default 10

	PostCacheTTL       time.Duration `yaml:"-"` // 0 disables the post cache
	ReadTimeout        time.Duration `yaml:"-"`
	WriteTimeout       time.Duration `yaml:"-"`
	RemoteFetchTimeout time.Duration `yaml:"-"`

	PageTitles map[string]string  `yaml:"page_titles"`
	Bio        []string           `yaml:"bio"`
	Experience []views.Experience `yaml:"experience"`
	Links      []views.Link       `yaml:"links"`
}

// fileConfig is the on-disk shape; durations are written as "5m".
type fileConfig struct {
	SiteConfig         `yaml:",inline"`
	PostCacheTTL       string `yaml:"post_cache_ttl"`
	ReadTimeout        string `yaml:"read_timeout"`
	WriteTimeout       string `yaml:"write_timeout"`
	RemoteFetchTimeout string `yaml:"remote_fetch_timeout"`
}

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

var defaultPageTitles = map[string]string{
	"index": "iwill.dev",
	"path":  "Experiência / Projetos - iwill.dev",
	"feed":  "Feed - iwill.dev",
	"links": "Links - iwill.dev",
}

var defaultBio = []string{
	"Oi! Eu sou o William Gonçalves 👋",
	"Desenvolvedor Web apaixonado por criar experiências digitais que unem tecnologia, design e propósito. 🎯",
	"Com experiência em Front-End moderno (React, Vue, TypeScript) e um carinho especial por Design Systems, ajudo produtos a se tornarem mais bonitos, eficientes e humanos. ✨",
	"Nos bastidores, venho expandindo minha atuação para o universo do Back-End, construindo uma visão mais completa do desenvolvimento de produtos. 🛠️",
	"Além dos códigos e interfaces, sou pai, flamenguista e entusiasta da vida criativa. 🎨",
}

var defaultLinks = []views.Link{
	{Label: "Telefone", URL: "tel:+5521965443935"},
	{Label: "E-mail", URL: "mailto:iwilldev@outlook.com"},
	{Label: "WhatsApp", URL: "https://wa.me/5521965443935"},
	{Label: "Telegram", URL: "https://t.me/iwilldev"},
	{Label: "Instagram", URL: "https://instagram.com/iwilldev"},
	{Label: "LinkedIn", URL: "https://www.linkedin.com/in/iwilldev/"},
	{Label: "GitHub", URL: "https://github.com/iwilldev"},
	{Label: "DEVTO", URL: "https://dev.to/iwilldev"},
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = ogimage.DefaultSiteName
	}
	if c.URL == "" {
		c.URL = "https://iwill.dev"
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Description == "" {
		c.Description = "Desenvolvedor front-end aprendendo em público e compartilhando conteúdo técnico prático e didático."
	}
	if c.Author == "" {
		c.Author = ogimage.DefaultAuthor
	}
	if c.Tagline == "" {
		c.Tagline = "Construindo soluções que aproximam pessoas e tecnologias."
	}
	if c.Lang == "" {
		c.Lang = "pt"
	}
	c.Lang = strings.ToLower(c.Lang)
	if c.Env == "" {
		c.Env = EnvProduction
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.PostsDir == "" {
		c.PostsDir = "content/posts"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.BackgroundsDir == "" {
		c.BackgroundsDir = "public/backgrounds"
	}
	if c.RenderRate == 0 {
		c.RenderRate = 2
	}
	if c.RenderBurst == 0 {
		c.RenderBurst = 10
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 30 * time.Second
	}
	if c.RemoteFetchTimeout == 0 {
		c.RemoteFetchTimeout = 3 * time.Second
	}
	titles := make(map[string]string, len(defaultPageTitles))
	for k, v := range defaultPageTitles {
		titles[k] = v
	}
	for k, v := range c.PageTitles {
		titles[k] = v
	}
	c.PageTitles = titles
	if c.Bio == nil {
		c.Bio = defaultBio
	}
	if c.Links == nil {
		c.Links = defaultLinks
	}
}

// IsDevelopment reports whether the site runs with development settings.
func (c SiteConfig) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// PageTitle returns the preview title of a static page, falling back to the
// site name.
func (c SiteConfig) PageTitle(slug string) string {
	if t, ok := c.PageTitles[slug]; ok && t != "" {
		return t
	}
	return c.Name
}

// LoadConfig reads path (a missing file is not an error), applies
// environment overrides and fills defaults.
func LoadConfig(path string) (SiteConfig, error) {
	var fc fileConfig
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return SiteConfig{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yamlutil.Unmarshal(data, &fc); err != nil {
				return SiteConfig{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	cfg := fc.SiteConfig
	for _, d := range []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"post_cache_ttl", fc.PostCacheTTL, &cfg.PostCacheTTL},
		{"read_timeout", fc.ReadTimeout, &cfg.ReadTimeout},
		{"write_timeout", fc.WriteTimeout, &cfg.WriteTimeout},
		{"remote_fetch_timeout", fc.RemoteFetchTimeout, &cfg.RemoteFetchTimeout},
	} {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return SiteConfig{}, fmt.Errorf("parse config %s: %s: %w", path, d.name, err)
		}
		*d.dst = v
	}

	cfg.URL = EnvOr("SITE_URL", cfg.URL)
	cfg.Addr = EnvOr("SITE_ADDR", cfg.Addr)
	cfg.Env = EnvOr("SITE_ENV", cfg.Env)
	cfg.PostsDir = EnvOr("POSTS_DIR", cfg.PostsDir)
	cfg.ImageCachePath = EnvOr("IMAGE_CACHE_PATH", cfg.ImageCachePath)

	cfg.setDefaults()
	return cfg, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithLogger sets the application logger (default zap.NewNop).
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithAssets supplies preloaded font and logo assets instead of reading
// FontPath and LogoPath.
func WithAssets(assets *ogimage.Assets) Option {
	return func(a *App) {
		a.assets = assets
	}
}

// WithStaticDir sets the directory served under /public (default cfg.StaticDir).
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}
