package slidebase_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/dracory/slidebase"
	"github.com/dracory/slidebase/internal/dbapi"
	"github.com/dracory/slidebase/internal/devapi"
	"github.com/dracory/slidebase/shared/constants"
	"github.com/dracory/slidebase/shared/session"
	"github.com/dracory/slidebase/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tokenPattern = regexp.MustCompile(`"csrfToken":"([^"]+)"`)

type envelope struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

func testConfig(apiURL string) types.Config {
	return types.Config{
		BasePath:       "/admin",
		ActionParam:    constants.DefaultActionParam,
		SessionSecret:  "test-secret",
		APIBaseURL:     apiURL,
		FileManagement: true,
	}
}

// newBackend starts a seeded dev backend.
func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := devapi.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Seed(context.Background()))

	srv := httptest.NewServer(devapi.NewServer(store, nil).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, h http.Handler, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return env
}

func TestHandlerRoutes(t *testing.T) {
	h := slidebase.New(testConfig("http://127.0.0.1:1")).Handler()

	tests := []struct {
		name        string
		target      string
		status      int
		contentType string
		contains    string
	}{
		{"page by default", "/admin", http.StatusOK, "text/html", "tables-list"},
		{"page by action", "/admin?action=page_browser", http.StatusOK, "text/html", `id="files-list"`},
		{"script", "/admin?action=asset_js", http.StatusOK, "javascript", "data-event"},
		{"styles", "/admin?action=asset_css", http.StatusOK, "text/css", "table-card"},
		{"healthz", "/admin?action=healthz", http.StatusOK, "", `"success"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := get(t, h, tt.target)
			assert.Equal(t, tt.status, rr.Code)
			assert.Contains(t, rr.Header().Get("Content-Type"), tt.contentType)
			assert.Contains(t, rr.Body.String(), tt.contains)
			assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
		})
	}

	t.Run("unknown action redirects", func(t *testing.T) {
		rr := get(t, h, "/admin?action=nope")
		assert.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "/admin?action=page_browser", rr.Header().Get("Location"))
	})
}

func TestPageWithoutFileManagement(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.FileManagement = false
	rr := get(t, slidebase.New(cfg).Handler(), "/admin")

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "tables-list")
	assert.NotContains(t, body, "upload-form")
	assert.NotContains(t, body, "clear-btn")
	assert.Contains(t, body, "File management: OFF")
}

func TestViewRequiresCSRFToken(t *testing.T) {
	h := slidebase.New(testConfig("http://127.0.0.1:1")).Handler()

	req := httptest.NewRequest(http.MethodPost, "/admin?action=api_view", strings.NewReader("event=init"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	env := decode(t, rr)
	assert.Equal(t, "error", env.Status)
}

func TestViewEventsAgainstBackend(t *testing.T) {
	backend := newBackend(t)
	h := slidebase.New(testConfig(backend.URL)).Handler()

	page := get(t, h, "/admin")
	require.Equal(t, http.StatusOK, page.Code)
	m := tokenPattern.FindStringSubmatch(page.Body.String())
	require.Len(t, m, 2, "page should embed a csrf token")
	cookies := page.Result().Cookies()
	require.NotEmpty(t, cookies)

	post := func(form url.Values) envelope {
		req := httptest.NewRequest(http.MethodPost, "/admin?action=api_view", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-CSRF-Token", m[1])
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		return decode(t, rr)
	}

	env := post(url.Values{"event": {"init"}})
	assert.Equal(t, "success", env.Status)
	raw, err := json.Marshal(env.Data["patches"])
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Presentation Files")
	assert.Contains(t, string(raw), "No files uploaded yet")

	env = post(url.Values{"event": {"select_table"}, "table": {"users"}})
	state, ok := env.Data["state"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "users", state["current_table"])
	raw, err = json.Marshal(env.Data["patches"])
	require.NoError(t, err)
	assert.Contains(t, string(raw), "alice@example.com")

	env = post(url.Values{"event": {"close_records"}})
	state, ok = env.Data["state"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "", state["current_table"])
}

func TestReadyz(t *testing.T) {
	t.Run("backend up", func(t *testing.T) {
		backend := newBackend(t)
		rr := get(t, slidebase.New(testConfig(backend.URL)).Handler(), "/admin?action=readyz")
		assert.Equal(t, http.StatusOK, rr.Code)
		env := decode(t, rr)
		assert.Equal(t, "healthy", env.Data["status"])
		assert.Equal(t, "connected", env.Data["database"])
	})

	t.Run("backend down", func(t *testing.T) {
		client := dbapi.NewClient("http://127.0.0.1:1", dbapi.WithHTTPClient(&http.Client{Timeout: time.Second}))
		app := slidebase.New(testConfig("http://unused.invalid"), slidebase.WithClient(client))
		rr := get(t, app.Handler(), "/admin?action=readyz")
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.Equal(t, "error", decode(t, rr).Status)
	})
}

func TestValidate(t *testing.T) {
	cfg := testConfig("http://localhost:5000")
	require.NoError(t, slidebase.Validate(cfg))

	bad := cfg
	bad.SessionSecret = ""
	assert.Error(t, slidebase.Validate(bad))

	bad = cfg
	bad.DisplayTimezone = "Mars/Olympus"
	assert.Error(t, slidebase.Validate(bad))
}

func TestConfiguredActionParam(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.ActionParam = "do"
	h := slidebase.New(cfg).Handler()

	page := get(t, h, "/admin?do=page_browser")
	require.Equal(t, http.StatusOK, page.Code)
	body := page.Body.String()
	assert.Contains(t, body, "/admin?do=api_view")
	assert.Contains(t, body, "/admin?do=asset_js")
	assert.Contains(t, body, "/admin?do=asset_css")
	assert.Contains(t, body, "/admin?do=readyz")
	assert.NotContains(t, body, "action=")

	rr := get(t, h, "/admin?do=nope")
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/admin?do=page_browser", rr.Header().Get("Location"))
}

func TestHandlerPrunesIdleSessions(t *testing.T) {
	h := slidebase.New(testConfig("http://127.0.0.1:1"), slidebase.WithSessionIdle(20*time.Millisecond)).Handler()

	first := get(t, h, "/admin")
	var sid string
	for _, c := range first.Result().Cookies() {
		if c.Name == session.SessionCookieName {
			sid = c.Value
		}
	}
	require.NotEmpty(t, sid)
	_, ok := session.GetSession(sid)
	require.True(t, ok)

	time.Sleep(60 * time.Millisecond)
	get(t, h, "/admin?action=healthz")

	_, ok = session.GetSession(sid)
	assert.False(t, ok, "idle session should be pruned by the handler")
}

func TestViewStreamsThroughRequestLogger(t *testing.T) {
	backend := newBackend(t)
	app := slidebase.New(testConfig(backend.URL))
	srv := httptest.NewServer(slidebase.RequestLogger(nil, app.Handler()))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	page, err := client.Get(srv.URL + "/admin")
	require.NoError(t, err)
	html, err := io.ReadAll(page.Body)
	_ = page.Body.Close()
	require.NoError(t, err)
	m := tokenPattern.FindStringSubmatch(string(html))
	require.Len(t, m, 2)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/admin?action=api_view", strings.NewReader("event=init"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("X-CSRF-Token", m[1])

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")
	assert.Contains(t, string(body), "event: datastar-patch-elements")
	assert.Contains(t, string(body), "#tables-list")
	assert.Contains(t, string(body), "Presentation Files")
	assert.Contains(t, string(body), "event: datastar-patch-signals")
}
