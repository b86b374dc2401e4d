package page_browser

import (
	"embed"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/dracory/slidebase/internal/browser"
	"github.com/dracory/slidebase/shared"
	layout "github.com/dracory/slidebase/shared/layout"
	"github.com/dracory/slidebase/shared/types"
	"github.com/dracory/slidebase/shared/urls"
	"github.com/gouniverse/cdn"
	hb "github.com/gouniverse/hb"
)

// DefaultTitle is the default page title
const DefaultTitle = "Database Browser"

//go:embed script.js styles.css
var embeddedFS embed.FS

// TokenFunc issues the CSRF token the page sends back with every event.
type TokenFunc func(w http.ResponseWriter, r *http.Request) string

// pageBrowserController serves the table browser page
type pageBrowserController struct {
	config types.Config
	token  TokenFunc
}

// New creates a new pageBrowserController instance
func New(config types.Config, token TokenFunc) *pageBrowserController {
	return &pageBrowserController{config: config, token: token}
}

// ServeHTTP renders the page
func (h *pageBrowserController) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	csrfToken := ""
	if h.token != nil {
		csrfToken = h.token(w, r)
	}

	page := Handle(h.config.BasePath, h.config.ActionParam, h.config.FileManagement, csrfToken)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(page))
}

// ServeJS writes the page script.
func ServeJS(w http.ResponseWriter) {
	shared.ServeEmbedded(w, embeddedFS, "script.js", "application/javascript; charset=utf-8")
}

// ServeCSS writes the page stylesheet.
func ServeCSS(w http.ResponseWriter) {
	shared.ServeEmbedded(w, embeddedFS, "styles.css", "text/css; charset=utf-8")
}

// Handle renders the full page.
func Handle(basePath, actionParam string, fileManagement bool, csrfToken string) template.HTML {
	appConfig := map[string]string{
		"viewURL":   urls.APIView(basePath, actionParam),
		"csrfToken": csrfToken,
	}

	extraBody := []hb.TagInterface{
		hb.ScriptURL(cdn.Sweetalert2_11()),
		hb.Script("window.slidebase = " + string(toJSON(appConfig)) + ";"),
		hb.ScriptURL(urls.AssetJS(basePath, actionParam)),
	}

	return layout.RenderWith(layout.Options{
		Title:          DefaultTitle,
		BasePath:       basePath,
		ActionParam:    actionParam,
		FileManagement: fileManagement,
		MainHTML:       mainHTML(fileManagement),
		ExtraBodyEnd:   extraBody,
	})
}

func mainHTML(fileManagement bool) string {
	sections := []hb.TagInterface{}

	if fileManagement {
		uploadForm := hb.NewTag("form").
			Attr("id", string(browser.UploadForm)).
			Attr("data-event", string(browser.EventUpload)).
			Attr("enctype", "multipart/form-data").
			Children([]hb.TagInterface{
				hb.NewTag("input").
					Attr("type", "file").
					Attr("id", string(browser.FileInput)).
					Attr("name", "file").
					Attr("accept", ".pptx").
					Attr("multiple", "multiple"),
				hb.NewTag("button").Attr("type", "submit").Class("btn btn-primary").Text("Upload"),
			})

		clearBtn := hb.NewTag("button").
			Attr("type", "button").
			Attr("id", string(browser.ClearButton)).
			Class("btn btn-danger").
			Attr("data-event", string(browser.EventClearDatabase)).
			Attr("data-confirm", browser.MsgClearConfirm).
			Text(browser.LabelClearButton)

		sections = append(sections,
			card("Upload Presentations",
				uploadForm,
				hb.Div().Attr("id", string(browser.UploadStatus))),
			card("Uploaded Files",
				hb.Div().Attr("id", string(browser.FilesList)).Child(loading(browser.MsgLoadingFiles))),
			card("Clear Data",
				clearBtn,
				hb.Div().Attr("id", string(browser.ClearStatus))),
		)
	}

	sections = append(sections,
		card("Database Tables",
			hb.Div().Attr("id", string(browser.TablesList)).Child(loading(browser.MsgLoadingTables))),
		hb.NewTag("section").
			Attr("id", string(browser.RecordsSection)).
			Attr("hidden", "hidden").
			Class("card records-section").
			Children([]hb.TagInterface{
				hb.Div().Class("records-header").Children([]hb.TagInterface{
					hb.Heading2().Attr("id", string(browser.TableTitle)),
					hb.NewTag("button").
						Attr("type", "button").
						Class("btn btn-secondary").
						Attr("data-event", string(browser.EventCloseRecords)).
						Text("Close"),
				}),
				hb.Div().Attr("id", string(browser.RecordsContainer)),
			}),
	)

	return hb.Div().Class("sb-browser").Children(sections).ToHTML()
}

func card(title string, children ...hb.TagInterface) hb.TagInterface {
	return hb.NewTag("section").Class("card").
		Child(hb.Heading2().Text(title)).
		Children(children)
}

func loading(msg string) hb.TagInterface {
	return hb.Div().Class("loading").Text(msg)
}

func toJSON(v any) template.JS {
	b, err := json.Marshal(v)
	if err != nil {
		return template.JS("{}")
	}
	return template.JS(b)
}
