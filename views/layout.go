package views

import (
	"context"

	"github.com/a-h/templ"
)

var navItems = []struct{ Label, Path string }{
	{"Início", "/"},
	{"Experiência", "/path"},
	{"Feed", "/feed"},
	{"Links", "/links"},
}

// Layout wraps body in the document shell with the head tags for meta.
func Layout(site Site, meta PageMeta, body templ.Component) templ.Component {
	return component(func(ctx context.Context, w *writer) {
		canonical := absURL(site.URL, meta.Path)
		ogType := meta.OGType
		if ogType == "" {
			ogType = "website"
		}
		w.raw("<!doctype html><html")
		w.attr("lang", site.Lang)
		w.raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		w.raw("<title>")
		w.text(meta.Title)
		w.raw("</title>")
		w.raw(`<meta name="description"`)
		w.attr("content", meta.Description)
		w.raw(`><link rel="canonical"`)
		w.attr("href", canonical)
		w.raw(">")
		for _, m := range [][2]string{
			{"og:title", meta.Title},
			{"og:description", meta.Description},
			{"og:type", ogType},
			{"og:url", canonical},
			{"og:site_name", site.Name},
		} {
			w.raw(`<meta`)
			w.attr("property", m[0])
			w.attr("content", m[1])
			w.raw(">")
		}
		if meta.Image != "" {
			image := absURL(site.URL, meta.Image)
			w.raw(`<meta property="og:image"`)
			w.attr("content", image)
			w.raw(`><meta property="og:image:width" content="1200"><meta property="og:image:height" content="630">`)
			w.raw(`<meta name="twitter:card" content="summary_large_image"><meta name="twitter:image"`)
			w.attr("content", image)
			w.raw(">")
		}
		w.raw(`<link rel="alternate" type="application/rss+xml"`)
		w.attr("title", site.Name)
		w.raw(` href="/rss.xml">`)
		w.raw(`<link rel="stylesheet" href="/public/site.css"><link rel="stylesheet" href="/public/chroma.css">`)
		for _, ld := range meta.JSONLD {
			// marshalled JSON escapes <, > and &, so it cannot close the tag.
			w.raw(`<script type="application/ld+json">`, ld, "</script>")
		}
		w.raw(`</head><body><header class="site-header"><a class="brand" href="/">`)
		w.text(site.Name)
		w.raw("</a><nav>")
		for _, item := range navItems {
			w.raw("<a")
			w.href(item.Path)
			if item.Path == meta.Path {
				w.raw(` aria-current="page"`)
			}
			w.raw(">")
			w.text(item.Label)
			w.raw("</a>")
		}
		w.raw(`</nav></header><main class="container">`)
		w.render(ctx, body)
		w.raw(`</main><footer class="site-footer"><p>`)
		w.text(site.Author)
		w.raw(" · ")
		w.text(site.Tagline)
		w.raw("</p></footer></body></html>")
	})
}
