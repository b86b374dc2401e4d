package api_view

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/dracory/api"
	"github.com/dracory/slidebase/internal/browser"
	"github.com/samber/lo"
	"github.com/starfederation/datastar-go/datastar"
)

// DefaultMaxMemory is the multipart memory budget before files spill to disk.
const DefaultMaxMemory = 32 << 20

// ViewSource returns the controller of the session behind r.
type ViewSource func(w http.ResponseWriter, r *http.Request) *browser.Controller

// ViewAPI turns posted page events into controller dispatches. Region patches
// are streamed as server-sent events, or returned in one envelope for callers
// that do not accept a stream.
type ViewAPI struct {
	views     ViewSource
	maxMemory int64
	logger    *slog.Logger
}

// Option configures ViewAPI.
type Option func(*ViewAPI)

// WithMaxMemory sets the multipart memory budget.
func WithMaxMemory(n int64) Option {
	return func(h *ViewAPI) { h.maxMemory = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *ViewAPI) { h.logger = l }
}

// New creates a new ViewAPI handler
func New(views ViewSource, opts ...Option) *ViewAPI {
	h := &ViewAPI{views: views, maxMemory: DefaultMaxMemory, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *ViewAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.Respond(w, r, api.Error("method not allowed"))
		return
	}

	ev, confirmed, err := h.parseEvent(r)
	if err != nil {
		api.Respond(w, r, api.Error(err.Error()))
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	view := h.views(w, r)
	if err := view.Check(ev); err != nil {
		h.logger.Warn("view event rejected",
			slog.String("event", string(ev.Name)),
			slog.String("error", err.Error()))
		api.Respond(w, r, api.Error(err.Error()))
		return
	}

	if wantsStream(r) {
		doc := newStreamDocument(datastar.NewSSE(w, r), h.logger)
		state, _ := view.Dispatch(r.Context(), ev, doc, browser.Answer(confirmed))
		doc.Finish(state)
		return
	}

	frame := browser.NewFrame()
	state, err := view.Dispatch(r.Context(), ev, frame, browser.Answer(confirmed))
	if err != nil {
		api.Respond(w, r, api.Error(err.Error()))
		return
	}

	api.Respond(w, r, api.SuccessWithData("ok", map[string]any{
		"patches": frame.Patches(),
		"alerts":  frame.Alerts(),
		"state":   state,
	}))
}

// wantsStream reports whether the caller reads patches as server-sent events.
// Other callers get the whole frame in one JSON envelope.
func wantsStream(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}

func (h *ViewAPI) parseEvent(r *http.Request) (browser.Event, bool, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(h.maxMemory); err != nil {
			return browser.Event{}, false, errors.New("invalid multipart body")
		}
	} else if err := r.ParseForm(); err != nil {
		return browser.Event{}, false, errors.New("invalid form body")
	}

	ev := browser.Event{
		Name:     browser.EventName(strings.TrimSpace(r.FormValue("event"))),
		Table:    strings.TrimSpace(r.FormValue("table")),
		FileName: r.FormValue("file_name"),
	}
	if ev.Name == "" {
		return ev, false, errors.New("event is required")
	}

	if raw := r.FormValue("file_id"); raw != "" {
		id, err := browser.ParseFileID(raw)
		if err != nil {
			return ev, false, err
		}
		ev.FileID = id
	}

	if r.MultipartForm != nil {
		ev.Files = uploadFiles(r.MultipartForm.File["file"])
	}

	confirmed, _ := strconv.ParseBool(r.FormValue("confirmed"))
	return ev, confirmed, nil
}

// uploadFiles skips the empty entry browsers send when no file is chosen.
func uploadFiles(headers []*multipart.FileHeader) []browser.UploadFile {
	picked := lo.Filter(headers, func(fh *multipart.FileHeader, _ int) bool {
		return fh.Filename != ""
	})
	return lo.Map(picked, func(fh *multipart.FileHeader, _ int) browser.UploadFile {
		return browser.UploadFile{
			Name: fh.Filename,
			Open: func() (io.ReadCloser, error) { return fh.Open() },
		}
	})
}
