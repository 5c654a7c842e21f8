package views

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/iwilldev/site/locale"
	"github.com/iwilldev/site/posts"
)

func postCard(w *writer, site Site, p posts.Post, labels locale.Labels) {
	w.raw(`<article class="card"><a class="card-link"`)
	w.href(site.PostPath(p))
	w.raw(`><img class="card-image" width="1200" height="630" loading="lazy" decoding="async"`)
	w.attr("src", site.PostImage(p))
	w.attr("alt", p.Title)
	w.raw("><h2>")
	w.text(p.Title)
	w.raw("</h2></a>")
	if p.Description != "" {
		w.raw("<p>")
		w.text(p.Description)
		w.raw("</p>")
	}
	w.raw(`<p class="card-meta">`)
	if p.HasDate() {
		w.raw("<time")
		w.attr("datetime", p.Date.Format("2006-01-02"))
		w.raw(">")
		w.text(labels.ShortDate(p.Date))
		w.raw("</time> · ")
	}
	w.text(labels.ReadingTime(p.ReadingTime))
	w.raw("</p>")
	tagList(w, p.Tags, "")
	w.raw("</article>")
}

func tagList(w *writer, tags []string, active string) {
	if len(tags) == 0 {
		return
	}
	w.raw(`<ul class="tags">`)
	for _, t := range tags {
		w.raw("<li><a")
		w.attr("class", tagClass(t == active))
		w.href(TagPath(t))
		w.raw(">#")
		w.text(t)
		w.raw("</a></li>")
	}
	w.raw("</ul>")
}

// Home renders the landing page with the bio and the latest posts.
func Home(site Site, meta PageMeta, latest []posts.Post) templ.Component {
	labels := locale.For(site.Lang)
	return Layout(site, meta, component(func(ctx context.Context, w *writer) {
		w.raw(`<section class="hero"><h1>`)
		w.text(site.Name)
		w.raw(`</h1><p class="tagline">`)
		w.text(site.Tagline)
		w.raw(`</p></section><section id="sobre" class="bio">`)
		for _, para := range site.Bio {
			w.raw("<p>")
			w.text(para)
			w.raw("</p>")
		}
		w.raw("</section>")
		if len(latest) > 0 {
			w.raw(`<section class="latest"><h2>Últimos posts</h2><div class="grid">`)
			for _, p := range latest {
				postCard(w, site, p, labels)
			}
			w.raw(`</div><p><a href="/feed">Ver todos</a></p></section>`)
		}
	}))
}

// Path renders the experience timeline.
func Path(site Site, meta PageMeta) templ.Component {
	return Layout(site, meta, component(func(ctx context.Context, w *writer) {
		w.raw(`<h1>Experiência / Projetos</h1><ol class="timeline">`)
		for _, e := range site.Experience {
			w.raw(`<li class="timeline-item"><details><summary><h2>`)
			w.text(e.JobTitle)
			w.raw(`</h2><p class="timeline-meta">`)
			w.text(e.Company + " | " + e.StartDate + " - " + e.EndDate)
			if e.JobType != "" {
				w.text(" (" + e.JobType + ")")
			}
			w.raw(`</p><span class="more">Ver mais</span></summary><div class="timeline-body">`)
			w.raw(e.Description)
			w.raw("</div></details></li>")
		}
		w.raw("</ol>")
	}))
}

// Links renders the contact links.
func Links(site Site, meta PageMeta) templ.Component {
	return Layout(site, meta, component(func(ctx context.Context, w *writer) {
		w.raw(`<h1>Links</h1><ul class="links">`)
		for _, l := range site.Links {
			w.raw("<li><a")
			w.href(l.URL)
			w.raw(` target="_blank" rel="noopener noreferrer">`)
			w.text(l.Label)
			w.raw("</a></li>")
		}
		w.raw("</ul>")
	}))
}

// Feed renders the post index.
func Feed(site Site, meta PageMeta, page FeedPage) templ.Component {
	return Layout(site, meta, component(func(ctx context.Context, w *writer) {
		w.raw("<h1>Blog</h1>")
		if len(page.Tags) > 0 {
			w.raw(`<nav class="tag-filter"><a`)
			w.attr("class", tagClass(page.ActiveTag == ""))
			w.raw(` href="/feed">Todos</a>`)
			tagList(w, page.Tags, page.ActiveTag)
			w.raw("</nav>")
		}
		if len(page.Posts) == 0 {
			w.raw(`<p class="empty">Nenhum post encontrado.</p>`)
			return
		}
		w.raw(`<div class="grid"`)
		w.attr("data-count", strconv.Itoa(len(page.Posts)))
		w.raw(">")
		for _, p := range page.Posts {
			postCard(w, site, p, page.Labels)
		}
		w.raw("</div>")
	}))
}
