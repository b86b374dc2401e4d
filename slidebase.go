// Package slidebase provides an embeddable admin view for browsing the tables
// and uploaded presentations of a /db backend.
package slidebase

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/dracory/slidebase/api/api_view"
	"github.com/dracory/slidebase/internal/browser"
	"github.com/dracory/slidebase/internal/dbapi"
	"github.com/dracory/slidebase/pages/page_browser"
	"github.com/dracory/slidebase/shared/constants"
	"github.com/dracory/slidebase/shared/session"
	"github.com/dracory/slidebase/shared/types"
	"github.com/dracory/slidebase/shared/urls"
)

const (
	// readyTimeout bounds the backend health probe.
	readyTimeout = 5 * time.Second
	// DefaultSessionIdle is how long an unused browser session is kept.
	DefaultSessionIdle = 12 * time.Hour
	maxPruneInterval   = 10 * time.Minute
)

// App is one mounted admin view.
type App struct {
	config   types.Config
	client   *dbapi.Client
	logger   *slog.Logger
	location *time.Location

	sessionIdle time.Duration
	lastPrune   atomic.Int64
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger used by the handler and the views.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithClient replaces the backend client built from the config.
func WithClient(c *dbapi.Client) Option {
	return func(a *App) { a.client = c }
}

// WithSessionIdle sets how long an unused browser session and its view are
// kept. Zero or less keeps sessions forever.
func WithSessionIdle(d time.Duration) Option {
	return func(a *App) { a.sessionIdle = d }
}

// New creates an App. The configuration should come from LoadConfig.
func New(cfg types.Config, options ...Option) *App {
	if cfg.ActionParam == "" {
		cfg.ActionParam = constants.DefaultActionParam
	}
	if cfg.BasePath == "" {
		cfg.BasePath = constants.DefaultBasePath
	}

	a := &App{config: cfg, logger: slog.Default(), location: time.Local, sessionIdle: DefaultSessionIdle}
	for _, option := range options {
		option(a)
	}

	if a.client == nil {
		a.client = dbapi.NewClient(cfg.APIBaseURL, dbapi.WithTimeout(cfg.APITimeout))
	}
	if cfg.DisplayTimezone != "" {
		if loc, err := time.LoadLocation(cfg.DisplayTimezone); err == nil {
			a.location = loc
		} else {
			a.logger.Warn("unknown display timezone, using local time",
				slog.String("timezone", cfg.DisplayTimezone))
		}
	}
	return a
}

// Config returns the effective configuration.
func (a *App) Config() types.Config { return a.config }

// Handler returns an http.Handler that serves the admin UI.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(a.config.BasePath, a.handleRequest)
	return SecurityHeaders(mux)
}

func (a *App) handleRequest(w http.ResponseWriter, r *http.Request) {
	action := r.URL.Query().Get(a.config.ActionParam)
	a.PruneSessions()

	switch action {
	case "", constants.ActionPageBrowser:
		session.EnsureSession(w, r)
		page_browser.New(a.config, a.issueToken).ServeHTTP(w, r)

	case constants.ActionAPIView:
		if !VerifyCSRF(r, a.config.SessionSecret) {
			WriteError(w, r, http.StatusForbidden, "invalid CSRF token")
			return
		}
		api_view.New(a.viewFor, api_view.WithLogger(a.logger)).ServeHTTP(w, r)

	case constants.ActionAssetJS:
		page_browser.ServeJS(w)

	case constants.ActionAssetCSS:
		page_browser.ServeCSS(w)

	case constants.ActionHealthz:
		WriteSuccess(w, r, http.StatusOK, "ok")

	case constants.ActionReadyz:
		a.ready(w, r)

	default:
		http.Redirect(w, r, urls.PageBrowser(a.config.BasePath, a.config.ActionParam), http.StatusFound)
	}
}

// PruneSessions drops sessions idle for longer than the configured limit.
// The handler calls it on every request; the sweep itself runs at most once
// per interval.
func (a *App) PruneSessions() {
	if a.sessionIdle <= 0 {
		return
	}
	interval := min(a.sessionIdle/4, maxPruneInterval)
	now := time.Now().UnixNano()
	last := a.lastPrune.Load()
	if now-last < int64(interval) || !a.lastPrune.CompareAndSwap(last, now) {
		return
	}
	if n := session.PruneIdle(a.sessionIdle); n > 0 {
		a.logger.Debug("pruned idle sessions",
			slog.Int("removed", n),
			slog.Int("live", session.Count()))
	}
}

func (a *App) issueToken(w http.ResponseWriter, r *http.Request) string {
	return EnsureCSRFCookie(w, r, a.config.SessionSecret)
}

// viewFor returns the controller of the caller's session.
func (a *App) viewFor(w http.ResponseWriter, r *http.Request) *browser.Controller {
	return session.EnsureSession(w, r).View(a.newView)
}

func (a *App) newView() *browser.Controller {
	return browser.New(a.client, browser.Options{
		FileManagement: a.config.FileManagement,
		UnionColumns:   a.config.UnionColumns,
		Location:       a.location,
		Logger:         a.logger,
	})
}

// ready reports whether the backend answers its health check.
func (a *App) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	health, err := a.client.Health(ctx)
	if err != nil {
		a.logger.Warn("backend not ready",
			slog.String("request_id", GetRequestID(r.Context())),
			slog.String("error", err.Error()))
		WriteError(w, r, http.StatusServiceUnavailable, "backend unavailable: "+dbapi.Message(err))
		return
	}

	WriteSuccessWithData(w, r, "ready", map[string]any{
		"backend":  a.client.BaseURL(),
		"status":   health.Status,
		"service":  health.Service,
		"database": health.Database,
	})
}
