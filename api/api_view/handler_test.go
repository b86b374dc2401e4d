package api_view_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dracory/slidebase/api/api_view"
	"github.com/dracory/slidebase/internal/browser"
	"github.com/dracory/slidebase/internal/dbapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Patches []browser.Patch `json:"patches"`
		Alerts  []string        `json:"alerts"`
		State   struct {
			CurrentTable string `json:"current_table"`
		} `json:"state"`
	} `json:"data"`
}

type backend struct {
	mu      sync.Mutex
	calls   []string
	uploads []string
	// clearGate holds /db/clear open until it is closed.
	clearGate chan struct{}
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.calls = append(b.calls, r.Method+" "+r.URL.Path)
	b.mu.Unlock()

	switch {
	case r.URL.Path == "/db/tables":
		_, _ = io.WriteString(w, `{"tables":[{"name":"users","display_name":"Users","count":1}]}`)
	case r.URL.Path == "/db/table/users":
		_, _ = io.WriteString(w, `{"table":"users","count":1,"records":[{"id":1,"username":"alice"}]}`)
	case r.URL.Path == "/db/files":
		_, _ = io.WriteString(w, `{"files":[]}`)
	case r.URL.Path == "/db/upload":
		_, fh, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":"No file provided"}`)
			return
		}
		b.mu.Lock()
		b.uploads = append(b.uploads, fh.Filename)
		b.mu.Unlock()
		_, _ = io.WriteString(w, `{"message":"ok","slide_count":1,"url_count":0}`)
	case r.URL.Path == "/db/clear":
		if b.clearGate != nil {
			<-b.clearGate
		}
		_, _ = io.WriteString(w, `{"message":"ok","files_deleted":1,"slides_deleted":2,"urls_deleted":3}`)
	case strings.HasPrefix(r.URL.Path, "/db/files/"):
		_, _ = io.WriteString(w, `{"slides_deleted":1,"url_count":2}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"Endpoint not found"}`)
	}
}

func (b *backend) called(call string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.calls {
		if c == call {
			return true
		}
	}
	return false
}

func setup(t *testing.T, opts browser.Options) (*api_view.ViewAPI, *backend) {
	t.Helper()
	be := &backend{}
	srv := httptest.NewServer(be)
	t.Cleanup(srv.Close)

	view := browser.New(dbapi.NewClient(srv.URL), opts)
	h := api_view.New(func(http.ResponseWriter, *http.Request) *browser.Controller { return view })
	return h, be
}

func post(t *testing.T, h http.Handler, form url.Values) envelope {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/?action=api_view", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return env
}

func htmlFor(env envelope, id browser.RegionID) string {
	out := ""
	for _, p := range env.Data.Patches {
		if p.ID == id && p.HTML != nil {
			out = *p.HTML
		}
	}
	return out
}

func TestRejectsGet(t *testing.T) {
	h, _ := setup(t, browser.Options{})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.Equal(t, "error", env.Status)
}

func TestEventValidation(t *testing.T) {
	h, _ := setup(t, browser.Options{})

	tests := []struct {
		name string
		form url.Values
		msg  string
	}{
		{"missing event", url.Values{}, "event is required"},
		{"unknown event", url.Values{"event": {"explode"}}, "unknown event"},
		{"file events disabled", url.Values{"event": {"clear_database"}}, "unknown event"},
		{"bad file id", url.Values{"event": {"delete_file"}, "file_id": {"abc"}}, "invalid event"},
		{"select without table", url.Values{"event": {"select_table"}}, "invalid event"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := post(t, h, tt.form)
			assert.Equal(t, "error", env.Status)
			assert.Contains(t, env.Message, tt.msg)
		})
	}
}

func TestSelectTable(t *testing.T) {
	h, _ := setup(t, browser.Options{})

	env := post(t, h, url.Values{"event": {"select_table"}, "table": {"users"}})
	require.Equal(t, "success", env.Status)
	assert.Equal(t, "users", env.Data.State.CurrentTable)
	assert.Contains(t, htmlFor(env, browser.RecordsContainer), "alice")

	env = post(t, h, url.Values{"event": {"close_records"}})
	assert.Equal(t, "", env.Data.State.CurrentTable)
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	h, be := setup(t, browser.Options{FileManagement: true})

	env := post(t, h, url.Values{"event": {"delete_file"}, "file_id": {"7"}, "file_name": {"a.pptx"}})
	require.Equal(t, "success", env.Status)
	assert.False(t, be.called("DELETE /db/files/7"))
	assert.Empty(t, env.Data.Patches)

	env = post(t, h, url.Values{"event": {"delete_file"}, "file_id": {"7"}, "file_name": {"a.pptx"}, "confirmed": {"true"}})
	require.Equal(t, "success", env.Status)
	assert.True(t, be.called("DELETE /db/files/7"))
	require.Len(t, env.Data.Alerts, 1)
	assert.Contains(t, env.Data.Alerts[0], "1 slides and 2 URLs removed.")
}

func TestMultipartUpload(t *testing.T) {
	h, be := setup(t, browser.Options{FileManagement: true})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("event", "upload"))
	for _, name := range []string{"one.pptx", "two.pptx"} {
		part, err := mw.CreateFormFile("file", name)
		require.NoError(t, err)
		_, _ = part.Write([]byte("PK"))
	}
	empty, err := mw.CreateFormFile("file", "")
	require.NoError(t, err)
	_, _ = empty.Write(nil)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Equal(t, "success", env.Status)
	assert.Equal(t, []string{"one.pptx", "two.pptx"}, be.uploads)
	assert.Contains(t, htmlFor(env, browser.UploadStatus), "2 file(s) uploaded successfully!")
}

// streamLines posts form with a stream Accept header and returns the
// response lines as they arrive.
func streamLines(t *testing.T, target string, form url.Values) (*http.Response, <-chan string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	lines := make(chan string, 256)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(resp.Body)
		sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()
	return resp, lines
}

func waitForLine(t *testing.T, lines <-chan string, match func(string) bool) string {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatal("stream ended before the expected line")
			}
			if match(line) {
				return line
			}
		case <-timeout:
			t.Fatal("timed out waiting for stream line")
		}
	}
}

func TestClearStreamsBusyStateWhileBackendWorks(t *testing.T) {
	be := &backend{clearGate: make(chan struct{})}
	backendSrv := httptest.NewServer(be)
	t.Cleanup(backendSrv.Close)

	view := browser.New(dbapi.NewClient(backendSrv.URL), browser.Options{FileManagement: true})
	srv := httptest.NewServer(api_view.New(func(http.ResponseWriter, *http.Request) *browser.Controller { return view }))
	t.Cleanup(srv.Close)

	release := sync.OnceFunc(func() { close(be.clearGate) })
	t.Cleanup(release)

	resp, lines := streamLines(t, srv.URL, url.Values{"event": {"clear_database"}, "confirmed": {"true"}})
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	busy := waitForLine(t, lines, func(l string) bool {
		return strings.Contains(l, `"id":"clear-btn"`) && strings.Contains(l, `"disabled":true`)
	})
	assert.Contains(t, busy, `"label":"Clearing..."`)
	waitForLine(t, lines, func(l string) bool { return strings.Contains(l, browser.MsgClearing) })
	assert.True(t, be.called("POST /db/clear"))

	release()

	waitForLine(t, lines, func(l string) bool { return strings.Contains(l, "Database cleared!") })
	restored := waitForLine(t, lines, func(l string) bool {
		return strings.Contains(l, `"id":"clear-btn"`) && strings.Contains(l, `"disabled":false`)
	})
	assert.Contains(t, restored, `"label":"Clear Database"`)
	waitForLine(t, lines, func(l string) bool { return strings.Contains(l, "datastar-patch-signals") })
}

func TestStreamRejectsInvalidEventWithEnvelope(t *testing.T) {
	be := &backend{}
	backendSrv := httptest.NewServer(be)
	t.Cleanup(backendSrv.Close)

	view := browser.New(dbapi.NewClient(backendSrv.URL), browser.Options{})
	srv := httptest.NewServer(api_view.New(func(http.ResponseWriter, *http.Request) *browser.Controller { return view }))
	t.Cleanup(srv.Close)

	resp, lines := streamLines(t, srv.URL, url.Values{"event": {"clear_database"}, "confirmed": {"true"}})
	assert.NotContains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	var body strings.Builder
	for line := range lines {
		body.WriteString(line)
	}
	var env envelope
	require.NoError(t, json.Unmarshal([]byte(body.String()), &env))
	assert.Equal(t, "error", env.Status)
	assert.Contains(t, env.Message, "unknown event")
	assert.False(t, be.called("POST /db/clear"))
}
