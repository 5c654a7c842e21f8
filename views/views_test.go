package views

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	"github.com/iwilldev/site/locale"
	"github.com/iwilldev/site/posts"
)

var testSite = Site{
	Name:        "iwill.dev",
	URL:         "https://iwill.dev",
	Description: "Desenvolvedor front-end",
	Author:      "William Gonçalves",
	Tagline:     "Construindo soluções",
	Lang:        "pt",
	Bio:         []string{"Oi!"},
	Links:       []Link{{Label: "GitHub", URL: "https://github.com/iwilldev"}},
}

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return buf.String()
}

func samplePost() posts.Post {
	return posts.Post{
		Slug:        "hello-world",
		Title:       "Hello <World>",
		Description: "Primeiro post",
		Date:        time.Date(2025, 6, 21, 0, 0, 0, 0, time.UTC),
		Tags:        []string{"go", "web"},
		Lang:        "pt",
		ReadingTime: 2,
	}
}

func TestLayoutHeadTags(t *testing.T) {
	meta := PageMeta{Title: `A "quoted" title`, Description: "desc", Path: "/feed", Image: "/images/pages/feed.png"}
	got := renderString(t, Layout(testSite, meta, nil))
	for _, want := range []string{
		"<title>A &#34;quoted&#34; title</title>",
		`<link rel="canonical" href="https://iwill.dev/feed">`,
		`<meta property="og:image" content="https://iwill.dev/images/pages/feed.png">`,
		`<meta property="og:type" content="website">`,
		`<a href="/feed" aria-current="page">`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("layout missing %q in:\n%s", want, got)
		}
	}
}

func TestLinksSanitizesUnsafeURLs(t *testing.T) {
	site := testSite
	site.Links = append(site.Links, Link{Label: "bad", URL: "javascript:alert(1)"})
	got := renderString(t, Links(site, PageMeta{Title: "Links"}))
	if strings.Contains(got, "javascript:") {
		t.Errorf("unsafe link rendered: %s", got)
	}
	if !strings.Contains(got, `href="https://github.com/iwilldev"`) {
		t.Errorf("safe link missing: %s", got)
	}
}

func TestPostPageEscapesTitleAndLinksVariants(t *testing.T) {
	page := PostPage{
		Post:     samplePost(),
		HTML:     "<p>body</p>",
		Labels:   locale.For("pt"),
		Variants: []string{"en"},
		Original: true,
	}
	got := renderString(t, Post(testSite, PageMeta{Title: "t"}, page))
	if !strings.Contains(got, "<h1>Hello &lt;World&gt;</h1>") {
		t.Errorf("title not escaped: %s", got)
	}
	if !strings.Contains(got, `<div class="prose"><p>body</p></div>`) {
		t.Errorf("body missing: %s", got)
	}
	if !strings.Contains(got, `href="/feed/hello-world/en"`) {
		t.Errorf("variant link missing: %s", got)
	}
	if !strings.Contains(got, "2 minutos de leitura") {
		t.Errorf("reading time missing: %s", got)
	}
}

func TestPostVariantLinksBackToOriginal(t *testing.T) {
	p := samplePost()
	p.Lang = "en"
	page := PostPage{Post: p, Labels: locale.For("en")}
	got := renderString(t, Post(testSite, PageMeta{Title: "t"}, page))
	if !strings.Contains(got, `href="/feed/hello-world" hreflang="pt"`) {
		t.Errorf("link to original missing: %s", got)
	}
	if !strings.Contains(got, `src="/images/posts/hello-world.png?lang=en"`) {
		t.Errorf("variant image should carry lang: %s", got)
	}
}

func TestFeedEmpty(t *testing.T) {
	got := renderString(t, Feed(testSite, PageMeta{Title: "Feed"}, FeedPage{Labels: locale.For("pt")}))
	if !strings.Contains(got, "Nenhum post encontrado.") {
		t.Errorf("empty feed message missing: %s", got)
	}
}

func TestBlogPostingJSONLD(t *testing.T) {
	var data map[string]any
	if err := json.Unmarshal([]byte(BlogPostingJSONLD(testSite, samplePost())), &data); err != nil {
		t.Fatalf("invalid JSON-LD: %v", err)
	}
	if data["@type"] != "BlogPosting" {
		t.Errorf("@type = %v", data["@type"])
	}
	if data["image"] != "https://iwill.dev/images/posts/hello-world.png" {
		t.Errorf("image = %v", data["image"])
	}
	if data["datePublished"] != "2025-06-21T00:00:00Z" {
		t.Errorf("datePublished = %v", data["datePublished"])
	}
	author, _ := data["author"].(map[string]any)
	if author["name"] != "William Gonçalves" {
		t.Errorf("author = %v", data["author"])
	}
}

func TestJSONLDEscapesScriptClose(t *testing.T) {
	p := samplePost()
	p.Title = "</script><script>alert(1)</script>"
	if ld := BlogPostingJSONLD(testSite, p); strings.Contains(ld, "</script>") {
		t.Errorf("JSON-LD can close its script tag: %s", ld)
	}
}
