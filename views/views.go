// Package views renders the site's pages from embedded html/template files
// and exposes them as templ components through spacetraveling.ViewFuncs.
package views

import (
	"embed"
	"html/template"

	"github.com/a-h/templ"

	"github.com/eringen/spacetraveling"
)

//go:embed templates/*.html
var files embed.FS

var pages = template.Must(template.New("views").Funcs(template.FuncMap{
	"postPath": spacetraveling.PostPath,
	"jsonld":   func(s string) template.JS { return template.JS(s) },
}).ParseFS(files, "templates/*.html"))

// errorView feeds the error page, which shares the layout with other pages.
type errorView struct {
	Site    spacetraveling.SiteConfig
	Meta    spacetraveling.PageMeta
	Heading string
	Message string
}

// New returns the ViewFuncs for the default pt-BR theme.
func New() spacetraveling.ViewFuncs {
	return spacetraveling.ViewFuncs{
		Home: func(v spacetraveling.HomeView) templ.Component {
			return page("home.html", v)
		},
		MorePosts: func(v spacetraveling.MoreView) templ.Component {
			return page("more.html", v)
		},
		Post: func(v spacetraveling.PostView) templ.Component {
			return page("post.html", v)
		},
		PostPartial: func(v spacetraveling.PostView) templ.Component {
			return page("post_partial.html", v)
		},
		Loading: func(v spacetraveling.LoadingView) templ.Component {
			return page("loading.html", v)
		},
		NotFound: func(site spacetraveling.SiteConfig) templ.Component {
			return page("error.html", errorView{
				Site:    site,
				Meta:    spacetraveling.PageMeta{Title: "Página não encontrada | " + site.Name, OGType: "website"},
				Heading: "Página não encontrada",
				Message: "O post que você procura não existe ou foi removido.",
			})
		},
		ServerError: func(site spacetraveling.SiteConfig) templ.Component {
			return page("error.html", errorView{
				Site:    site,
				Meta:    spacetraveling.PageMeta{Title: "Erro | " + site.Name, OGType: "website"},
				Heading: "Algo deu errado",
				Message: "Tente novamente em alguns instantes.",
			})
		},
	}
}

func page(name string, data any) templ.Component {
	return templ.FromGoHTML(pages.Lookup(name), data)
}
