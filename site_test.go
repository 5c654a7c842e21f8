package site

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// setupPosts writes a default-language post with an English translation
// and a second post without one.
func setupPosts(t *testing.T, dir string) {
	t.Helper()
	body := strings.TrimSpace(strings.Repeat("palavra ", 150))
	writeFile(t, filepath.Join(dir, "hello-world.md"), `---
title: Olá Mundo
date: 2025-06-21
description: Primeiro post do blog
tags: [go, web]
---

`+body+"\n")
	writeFile(t, filepath.Join(dir, "en", "hello-world.md"), `---
title: Hello World
date: 2025-06-21
description: First post of the blog
tags: [go, web]
---

Hello there.
`)
	writeFile(t, filepath.Join(dir, "second.md"), `---
title: Segundo
date: 2025-01-10
description: Outro post
tags: [design]
---

Conteúdo.
`)
}

func newTestApp(t *testing.T, mutate ...func(*SiteConfig)) *App {
	t.Helper()
	dir := t.TempDir()
	postsDir := filepath.Join(dir, "posts")
	setupPosts(t, postsDir)
	cfg := SiteConfig{
		URL:            "https://iwill.dev",
		PostsDir:       postsDir,
		StaticDir:      filepath.Join(dir, "public"),
		BackgroundsDir: filepath.Join(dir, "backgrounds"),
	}
	for _, m := range mutate {
		m(&cfg)
	}
	app, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { app.Close() })
	return app
}

func get(t *testing.T, app *App, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	return rec
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body: %.300s", rec.Code, want, rec.Body.String())
	}
}

func TestPostImage(t *testing.T) {
	app := newTestApp(t)
	rec := get(t, app, "/images/posts/hello-world.png")
	assertStatus(t, rec, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "public, immutable, no-transform, max-age=31536000" {
		t.Errorf("Cache-Control = %q", cc)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), pngMagic) {
		t.Errorf("body is not a PNG: % x", rec.Body.Bytes()[:8])
	}
}

func TestPostImageTranslationFallsBack(t *testing.T) {
	app := newTestApp(t)
	for _, target := range []string{
		"/images/posts/hello-world.png?lang=en",
		"/images/posts/second.png?lang=en",
		"/images/posts/second.png?lang=zz",
	} {
		rec := get(t, app, target)
		assertStatus(t, rec, http.StatusOK)
	}
}

func TestPostImageNotFound(t *testing.T) {
	app := newTestApp(t)
	for _, target := range []string{
		"/images/posts/missing-slug.png",
		"/images/posts/hello-world",
		"/images/posts/.png",
	} {
		rec := get(t, app, target)
		assertStatus(t, rec, http.StatusNotFound)
		if cc := rec.Header().Get("Cache-Control"); cc != "no-store" {
			t.Errorf("%s: Cache-Control = %q, want no-store", target, cc)
		}
	}
}

func TestPageImage(t *testing.T) {
	app := newTestApp(t)
	for _, slug := range []string{"index", "path", "feed", "links", "unknown"} {
		rec := get(t, app, "/images/pages/"+slug+".png")
		assertStatus(t, rec, http.StatusOK)
		if !bytes.HasPrefix(rec.Body.Bytes(), pngMagic) {
			t.Errorf("%s: body is not a PNG", slug)
		}
	}
}

func TestImageRendersAreRateLimited(t *testing.T) {
	app := newTestApp(t, func(c *SiteConfig) {
		c.RenderRate = 0.001
		c.RenderBurst = 1
	})
	assertStatus(t, get(t, app, "/images/pages/index.png"), http.StatusOK)
	assertStatus(t, get(t, app, "/images/pages/index.png"), http.StatusTooManyRequests)
}

func TestImageCacheHitsSkipRendering(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "cache", "images.db")
	app := newTestApp(t, func(c *SiteConfig) {
		c.RenderRate = 0.001
		c.RenderBurst = 1
		c.ImageCachePath = cachePath
	})
	first := get(t, app, "/images/posts/hello-world.png")
	assertStatus(t, first, http.StatusOK)
	second := get(t, app, "/images/posts/hello-world.png")
	assertStatus(t, second, http.StatusOK)
	if !bytes.Equal(first.Body.Bytes(), second.Body.Bytes()) {
		t.Error("cached image differs from the rendered one")
	}
	// A different key still needs a render and the bucket is empty.
	assertStatus(t, get(t, app, "/images/pages/feed.png"), http.StatusTooManyRequests)
}

func TestPostPage(t *testing.T) {
	app := newTestApp(t)
	rec := get(t, app, "/feed/hello-world")
	assertStatus(t, rec, http.StatusOK)
	if cc := rec.Header().Get("Cache-Control"); cc != "max-age=300, s-maxage=3600" {
		t.Errorf("Cache-Control = %q", cc)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"<title>Olá Mundo - Feed - iwill.dev</title>",
		`content="Publicado em 21 de junho de 2025 por William Gonçalves - 2 minutos de leitura"`,
		`<meta property="og:type" content="article">`,
		`<meta property="og:image" content="https://iwill.dev/images/posts/hello-world.png">`,
		`href="/feed/hello-world/en" hreflang="en"`,
		"Também disponível em inglês",
		`"@type":"BlogPosting"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("post page missing %q", want)
		}
	}
}

func TestPostPageNotFound(t *testing.T) {
	app := newTestApp(t)
	for _, target := range []string{"/feed/missing-slug", "/feed/..%2Fetc"} {
		rec := get(t, app, target)
		assertStatus(t, rec, http.StatusNotFound)
		if !strings.Contains(rec.Body.String(), "<h1>404</h1>") {
			t.Errorf("%s: 404 page not rendered", target)
		}
	}
}

func TestPostVariant(t *testing.T) {
	app := newTestApp(t)
	rec := get(t, app, "/feed/hello-world/en")
	assertStatus(t, rec, http.StatusOK)
	body := rec.Body.String()
	if !strings.Contains(body, "<h1>Hello World</h1>") {
		t.Errorf("variant title missing")
	}
	if !strings.Contains(body, `content="First post of the blog"`) {
		t.Errorf("variant should use its description as meta description")
	}
	if !strings.Contains(body, `href="/feed/hello-world" hreflang="pt"`) {
		t.Errorf("variant should link back to the original")
	}
}

func TestPostPageListsOnlyServableVariants(t *testing.T) {
	app := newTestApp(t)
	writeFile(t, filepath.Join(app.Config.PostsDir, "es", "hello-world.md"), `---
title: Hola Mundo
date: 2025-06-21
---

Hola.
`)
	body := get(t, app, "/feed/hello-world").Body.String()
	if strings.Contains(body, "/feed/hello-world/es") {
		t.Error("post page links a translation the variant route redirects away from")
	}
	if !strings.Contains(body, `href="/feed/hello-world/en"`) {
		t.Error("supported translation link missing")
	}
}

func TestPostVariantRedirects(t *testing.T) {
	app := newTestApp(t)
	tests := []struct {
		target   string
		location string
	}{
		{"/feed/hello-world/xx", "/feed/hello-world"},
		{"/feed/hello-world/pt", "/feed/hello-world"},
		{"/feed/hello-world/pt-BR", "/feed/hello-world"},
		{"/feed/second/en", "/feed/second"},
		{"/feed/missing-slug/en", "/feed/missing-slug"},
	}
	for _, tt := range tests {
		rec := get(t, app, tt.target)
		if rec.Code != http.StatusFound {
			t.Errorf("%s: status = %d, want 302", tt.target, rec.Code)
			continue
		}
		if loc := rec.Header().Get("Location"); loc != tt.location {
			t.Errorf("%s: Location = %q, want %q", tt.target, loc, tt.location)
		}
	}
}

func TestStaticPages(t *testing.T) {
	app := newTestApp(t)
	tests := []struct {
		target string
		want   string
	}{
		{"/", "Oi! Eu sou o William Gonçalves"},
		{"/path", "Experiência / Projetos"},
		{"/links", `href="https://github.com/iwilldev"`},
		{"/feed", `href="/feed/second"`},
	}
	for _, tt := range tests {
		rec := get(t, app, tt.target)
		assertStatus(t, rec, http.StatusOK)
		if !strings.Contains(rec.Body.String(), tt.want) {
			t.Errorf("%s: body missing %q", tt.target, tt.want)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("%s: Content-Type = %q", tt.target, ct)
		}
	}
}

func TestHomeListsLatestPosts(t *testing.T) {
	app := newTestApp(t)
	body := get(t, app, "/").Body.String()
	first := strings.Index(body, `href="/feed/hello-world"`)
	second := strings.Index(body, `href="/feed/second"`)
	if first < 0 || second < 0 || first > second {
		t.Errorf("home should list posts newest first (hello-world at %d, second at %d)", first, second)
	}
}

func TestFeedTagFilter(t *testing.T) {
	app := newTestApp(t)
	rec := get(t, app, "/feed?tag=GO")
	assertStatus(t, rec, http.StatusOK)
	body := rec.Body.String()
	if !strings.Contains(body, `href="/feed/hello-world"`) {
		t.Error("tagged post missing")
	}
	if strings.Contains(body, `href="/feed/second"`) {
		t.Error("untagged post should be filtered out")
	}
	if !strings.Contains(body, `class="tag tag-active" href="/feed?tag=go"`) {
		t.Error("active tag not highlighted")
	}
}

func TestTrailingSlashRedirect(t *testing.T) {
	app := newTestApp(t)
	rec := get(t, app, "/feed/")
	if rec.Code != http.StatusMovedPermanently {
		t.Fatalf("status = %d, want 301", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/feed" {
		t.Errorf("Location = %q", loc)
	}
}

func TestSitemap(t *testing.T) {
	app := newTestApp(t)
	rec := get(t, app, "/sitemap.xml")
	assertStatus(t, rec, http.StatusOK)
	if cc := rec.Header().Get("Cache-Control"); cc != "public, max-age=3600" {
		t.Errorf("Cache-Control = %q", cc)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		"<url><loc>https://iwill.dev/</loc><lastmod>2025-06-21T00:00:00Z</lastmod><priority>1.00</priority></url>",
		"<url><loc>https://iwill.dev/links</loc><lastmod>2025-06-21T00:00:00Z</lastmod><priority>0.80</priority></url>",
		"<url><loc>https://iwill.dev/feed/second</loc><lastmod>2025-01-10T00:00:00Z</lastmod><priority>0.7</priority></url>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("sitemap missing %q in %s", want, body)
		}
	}
}

func TestRSS(t *testing.T) {
	app := newTestApp(t)
	rec := get(t, app, "/rss.xml")
	assertStatus(t, rec, http.StatusOK)
	body := rec.Body.String()
	for _, want := range []string{
		"<title>Olá Mundo</title>",
		"<link>https://iwill.dev/feed/hello-world</link>",
		"<category>design</category>",
		`<enclosure url="https://iwill.dev/images/posts/second.png" type="image/png"></enclosure>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("rss missing %q", want)
		}
	}
}

func TestStylesheets(t *testing.T) {
	app := newTestApp(t)
	rec := get(t, app, "/public/chroma.css")
	assertStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), ".chroma") {
		t.Error("chroma stylesheet missing classes")
	}
	rec = get(t, app, "/public/site.css")
	assertStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), ".code-block-wrapper") {
		t.Error("embedded site stylesheet not served")
	}
}

func TestRobots(t *testing.T) {
	app := newTestApp(t)
	rec := get(t, app, "/robots.txt")
	assertStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "Sitemap: https://iwill.dev/sitemap.xml") {
		t.Errorf("robots.txt = %q", rec.Body.String())
	}
}

func TestNewFailsOnMissingFont(t *testing.T) {
	_, err := New(SiteConfig{FontPath: filepath.Join(t.TempDir(), "missing.ttf")})
	if err == nil {
		t.Fatal("New should fail when the font cannot be read")
	}
}

func TestSampleContent(t *testing.T) {
	app, err := New(SiteConfig{PostsDir: "content/posts", StaticDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()
	assertStatus(t, get(t, app, "/feed/hello-world"), http.StatusOK)
	assertStatus(t, get(t, app, "/feed/hello-world/en"), http.StatusOK)
}
