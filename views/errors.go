package views

import (
	"context"

	"github.com/a-h/templ"
)

// NotFound renders the 404 page.
func NotFound(site Site) templ.Component {
	meta := PageMeta{
		Title:       "Página não encontrada - " + site.Name,
		Description: site.Description,
		Path:        "/",
		Image:       PageImage("index"),
	}
	return Layout(site, meta, component(func(ctx context.Context, w *writer) {
		w.raw(`<section class="error"><h1>404</h1><p>Essa página não existe ou foi movida.</p><p><a href="/feed">Voltar para o feed</a></p></section>`)
	}))
}

// ServerError renders the 5xx page. detail is shown only when non-empty.
func ServerError(site Site, detail string) templ.Component {
	meta := PageMeta{
		Title:       "Erro - " + site.Name,
		Description: site.Description,
		Path:        "/",
	}
	return Layout(site, meta, component(func(ctx context.Context, w *writer) {
		w.raw(`<section class="error"><h1>Algo deu errado</h1><p>Tente novamente em alguns instantes.</p>`)
		if detail != "" {
			w.raw("<pre>")
			w.text(detail)
			w.raw("</pre>")
		}
		w.raw("</section>")
	}))
}
