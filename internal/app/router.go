package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xe-erp/peppol-web/internal/auth"
	"github.com/xe-erp/peppol-web/internal/moves"
	"github.com/xe-erp/peppol-web/internal/observability"
	"github.com/xe-erp/peppol-web/internal/rbac"
	"github.com/xe-erp/peppol-web/internal/shared"
	"github.com/xe-erp/peppol-web/internal/view"
	"github.com/xe-erp/peppol-web/jobs"
	"github.com/xe-erp/peppol-web/web"
)

// JobsAdminGroup guards the queue inspector endpoint.
const JobsAdminGroup = "base.group_system"

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Templates      *view.Engine
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	AuthHandler    *auth.Handler
	MovesHandler   *moves.Handler
	JobHandler     *jobs.Handler
	RBACMiddleware rbac.Middleware
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with the application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := shared.SessionFromContext(r.Context()).BackendLogin(); !ok {
			http.Redirect(w, r, rbac.LoginPath, http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/invoices", http.StatusSeeOther)
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	if params.MovesHandler != nil {
		r.Group(func(r chi.Router) {
			r.Use(params.RBACMiddleware.RequireLogin)
			if params.Config != nil {
				r.Use(LimitActions(params.Config.ActionRateLimit, time.Minute))
			}
			params.MovesHandler.MountRoutes(r)
		})
	}
	if params.JobHandler != nil {
		r.Route("/jobs", func(r chi.Router) {
			r.Use(params.RBACMiddleware.RequireGroup(JobsAdminGroup))
			params.JobHandler.MountRoutes(r)
		})
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := web.Static()
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler marks embedded assets cacheable for an hour.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
