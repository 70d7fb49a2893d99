package app

import (
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/cinedesk/cinedesk/internal/admin"
	"github.com/cinedesk/cinedesk/internal/authz"
	"github.com/cinedesk/cinedesk/internal/casts"
	"github.com/cinedesk/cinedesk/internal/dashboard"
	"github.com/cinedesk/cinedesk/internal/i18n"
	"github.com/cinedesk/cinedesk/internal/login"
	"github.com/cinedesk/cinedesk/internal/members"
	"github.com/cinedesk/cinedesk/internal/movies"
	"github.com/cinedesk/cinedesk/internal/session"
	"github.com/cinedesk/cinedesk/internal/shared"
	"github.com/cinedesk/cinedesk/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Store            *session.Store
	CSRF             *shared.CSRFManager
	Policy           authz.Policy
	LoginHandler     *login.Handler
	DashboardHandler *dashboard.Handler
	MoviesHandler    *movies.Handler
	MembersHandler   *members.Handler
	CastsHandler     *casts.Handler
	AdminHandler     *admin.Handler
}

// NewRouter constructs the chi.Router with CineDesk defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
		Store:  params.Store,
		CSRF:   params.CSRF,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mountStatic(r, params.Logger)

	// Language choice is public and survives login/logout via its own cookie.
	r.Get("/lang/{code}", func(w http.ResponseWriter, req *http.Request) {
		if tag, ok := i18n.Parse(chi.URLParam(req, "code")); ok {
			i18n.Persist(w, tag)
		}
		target := "/"
		if ref, err := url.Parse(req.Referer()); err == nil && ref.Path != "" {
			target = ref.Path
		}
		http.Redirect(w, req, target, http.StatusSeeOther)
	})

	params.LoginHandler.MountRoutes(r)

	// The root and every unknown path resolve to the login screen. The login
	// handler forwards an authenticated caller to their dashboard from there.
	toLogin := func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
	r.Get("/", toLogin)
	r.NotFound(toLogin)

	guard := authz.Guard{Policy: params.Policy, Logger: params.Logger}
	r.Group(func(r chi.Router) {
		r.Use(guard.Protect)

		params.DashboardHandler.MountRoutes(r)
		params.MoviesHandler.MountRoutes(r)
		params.MoviesHandler.MountManagerRoutes(r)
		params.MembersHandler.MountRoutes(r)
		params.CastsHandler.MountReadRoutes(r)
		params.CastsHandler.MountWriteRoutes(r)
		params.AdminHandler.MountRoutes(r)

		// Legacy statistics path kept as an alias.
		r.Get("/movies/stats", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/manager/stats", http.StatusSeeOther)
		})
	})

	return r
}

func mountStatic(r chi.Router, logger *slog.Logger) {
	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		logger.Error("static assets unavailable", slog.Any("error", err))
		return
	}
	fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
	r.Get("/static/*", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		fileServer.ServeHTTP(w, req)
	})
}
