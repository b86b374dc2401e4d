package page_browser

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dracory/slidebase/shared/types"
	"github.com/stretchr/testify/assert"
)

func TestHandleAnchors(t *testing.T) {
	page := string(Handle("/admin", "action", true, "tok"))

	for _, id := range []string{
		"tables-list", "records-section", "records-container", "table-title",
		"files-list", "upload-form", "pptx-file", "upload-status", "clear-status", "clear-btn",
	} {
		assert.Contains(t, page, `id="`+id+`"`, id)
	}
	assert.Contains(t, page, "/admin?action=api_view")
	assert.Contains(t, page, `"csrfToken":"tok"`)
	assert.Contains(t, page, "/admin?action=asset_js")
	assert.True(t, strings.HasPrefix(page, "<!doctype html>"))
}

func TestHandleWithoutFileManagement(t *testing.T) {
	page := string(Handle("/", "do", false, ""))

	assert.Contains(t, page, `id="tables-list"`)
	assert.Contains(t, page, `id="records-section"`)
	assert.NotContains(t, page, `id="upload-form"`)
	assert.NotContains(t, page, `id="clear-btn"`)
	assert.NotContains(t, page, `id="files-list"`)
	assert.Contains(t, page, "/?do=api_view")
}

func TestServeHTTP(t *testing.T) {
	issued := false
	h := New(types.Config{BasePath: "/", ActionParam: "action", FileManagement: true}, func(w http.ResponseWriter, r *http.Request) string {
		issued = true
		return "abc"
	})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.True(t, issued)
	assert.Contains(t, rr.Body.String(), "Database Tables")
}

func TestAssets(t *testing.T) {
	rr := httptest.NewRecorder()
	ServeJS(rr)
	assert.Contains(t, rr.Header().Get("Content-Type"), "javascript")
	assert.Contains(t, rr.Body.String(), "data-event")
	assert.Contains(t, rr.Body.String(), "datastar-patch-elements")
	assert.Contains(t, rr.Body.String(), "text/event-stream")

	rr = httptest.NewRecorder()
	ServeCSS(rr)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/css")
	assert.Contains(t, rr.Body.String(), ".table-card")
}
