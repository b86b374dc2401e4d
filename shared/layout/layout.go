package layout

import (
	"html/template"

	"github.com/dracory/slidebase/shared/urls"
	hb "github.com/gouniverse/hb"
)

// Options bundles parameters for rendering the full HTML layout.
type Options struct {
	Title       string
	BasePath    string
	ActionParam string
	MainHTML    string
	// FileManagement is shown in the footer so operators can tell the variants apart.
	FileManagement bool
	ExtraHead      []hb.TagInterface
	ExtraBodyEnd   []hb.TagInterface
}

// RenderWith builds the full HTML page and returns it as a safe HTML string.
func RenderWith(o Options) template.HTML {
	home := urls.PageBrowser(o.BasePath, o.ActionParam)

	headChildren := []hb.TagInterface{
		hb.NewTag("meta").Attr("charset", "utf-8"),
		hb.NewTag("meta").Attr("name", "viewport").Attr("content", "width=device-width, initial-scale=1"),
		hb.NewTag("title").Text(o.Title + " · SlideBase"),
		hb.StyleURL(urls.AssetCSS(o.BasePath, o.ActionParam)),
	}
	headChildren = append(headChildren, o.ExtraHead...)

	nav := hb.Nav().Class("sb-nav").Children([]hb.TagInterface{
		hb.A().Href(home).Text("Tables"),
		hb.A().Href(urls.Healthz(o.BasePath, o.ActionParam)).Text("Health"),
		hb.A().Href(urls.Readyz(o.BasePath, o.ActionParam)).Text("Ready"),
	})

	header := hb.Header().
		Class("sb-header").
		Child(
			hb.Div().
				Class("sb-container").
				Children([]hb.TagInterface{
					hb.Heading1().
						Class("sb-title").
						Child(hb.A().Href(home).Text("SlideBase")),
					nav,
				}),
		)

	main := hb.Main().Class("sb-main").
		Child(hb.Div().Class("sb-container").
			Child(hb.Raw(o.MainHTML)))

	footer := hb.Footer().Class("sb-footer sb-container").Child(
		hb.NewTag("small").
			Child(hb.Text("File management: ")).
			ChildIf(o.FileManagement, hb.Text("ON")).
			ChildIf(!o.FileManagement, hb.Text("OFF")),
	)

	bodyChildren := []hb.TagInterface{header, main, footer}
	bodyChildren = append(bodyChildren, o.ExtraBodyEnd...)

	html := hb.NewTag("html").
		Attr("lang", "en").
		Children([]hb.TagInterface{
			hb.NewTag("head").Children(headChildren),
			hb.NewTag("body").Children(bodyChildren),
		})

	return template.HTML("<!doctype html>" + html.ToHTML())
}
