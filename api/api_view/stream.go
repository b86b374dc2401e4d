package api_view

import (
	"encoding/json"
	"log/slog"

	"github.com/dracory/slidebase/internal/browser"
	"github.com/starfederation/datastar-go/datastar"
)

// streamDocument forwards every patch to the page as a server-sent event the
// moment the controller applies it, so loading and busy states are visible
// while the backend call is still running.
type streamDocument struct {
	sse    *datastar.ServerSentEventGenerator
	logger *slog.Logger
	closed bool
}

func newStreamDocument(sse *datastar.ServerSentEventGenerator, logger *slog.Logger) *streamDocument {
	return &streamDocument{sse: sse, logger: logger}
}

// Apply sends region HTML as an inner element patch. Every other change goes
// through the page's apply hook.
func (d *streamDocument) Apply(p browser.Patch) {
	if p.ID != "" && p.HTML != nil && *p.HTML != "" {
		d.check(d.sse.PatchElements(*p.HTML,
			datastar.WithSelectorID(string(p.ID)),
			datastar.WithModeInner()))
		p.HTML = nil
		if p == (browser.Patch{ID: p.ID}) {
			return
		}
	}
	d.call("apply", p)
}

func (d *streamDocument) Alert(message string) {
	d.call("alert", message)
}

// Finish publishes the view state once the listener is done.
func (d *streamDocument) Finish(state browser.ViewState) {
	d.check(d.sse.MarshalAndPatchSignals(map[string]any{"state": state}))
}

// call runs window.slidebase.<fn>(arg) in the page. json.Marshal escapes
// angle brackets, so the argument cannot close the script element.
func (d *streamDocument) call(fn string, arg any) {
	b, err := json.Marshal(arg)
	if err != nil {
		d.check(err)
		return
	}
	d.check(d.sse.ExecuteScript("window.slidebase." + fn + "(" + string(b) + ");"))
}

func (d *streamDocument) check(err error) {
	if err == nil || d.closed {
		return
	}
	d.closed = true
	d.logger.Debug("view stream stopped", slog.String("error", err.Error()))
}
