package views

import (
	"context"
	"net/url"

	"github.com/a-h/templ"
)

// Post renders a single post page.
func Post(site Site, meta PageMeta, page PostPage) templ.Component {
	p := page.Post
	labels := page.Labels
	return Layout(site, meta, component(func(ctx context.Context, w *writer) {
		w.raw(`<article class="post"`)
		w.attr("lang", p.Lang)
		w.raw(`><header class="post-header"><h1>`)
		w.text(p.Title)
		w.raw("</h1>")
		if p.Description != "" {
			w.raw(`<p class="post-description">`)
			w.text(p.Description)
			w.raw("</p>")
		}
		author := p.Author
		if author == "" {
			author = site.Author
		}
		w.raw(`<p class="post-meta">`)
		if line := labels.PublishedOn(p.Date, author); line != "" {
			w.text(line)
			w.raw(" · ")
		}
		w.text(labels.ReadingTime(p.ReadingTime))
		w.raw("</p>")
		translations(w, site, page)
		w.raw(`<img class="post-image" width="1200" height="630" decoding="async"`)
		w.attr("src", site.PostImage(p))
		w.attr("alt", p.Title)
		w.raw(`></header><div class="prose">`)
		w.raw(page.HTML)
		w.raw("</div>")
		tagList(w, p.Tags, "")
		w.raw("</article>")
		if len(page.Related) > 0 {
			w.raw(`<section class="related"><h2>Veja também</h2><div class="grid">`)
			for _, r := range page.Related {
				postCard(w, site, r, labels)
			}
			w.raw("</div></section>")
		}
	}))
}

func translations(w *writer, site Site, page PostPage) {
	p := page.Post
	if !page.Original {
		w.raw(`<p class="translations"><a`)
		w.href(p.Link())
		w.attr("hreflang", site.Lang)
		w.raw(">")
		w.text(page.Labels.AlsoAvailableIn(site.Lang))
		w.raw("</a></p>")
		return
	}
	if len(page.Variants) == 0 {
		return
	}
	w.raw(`<p class="translations">`)
	for _, lang := range page.Variants {
		w.raw("<a")
		w.href(p.Link() + "/" + url.PathEscape(lang))
		w.attr("hreflang", lang)
		w.raw(">")
		w.text(page.Labels.AlsoAvailableIn(lang))
		w.raw("</a> ")
	}
	w.raw("</p>")
}
