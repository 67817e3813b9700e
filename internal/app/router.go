package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/edudash/edudash/internal/access"
	"github.com/edudash/edudash/internal/auth"
	"github.com/edudash/edudash/internal/observability"
	"github.com/edudash/edudash/internal/platform/httpx"
	"github.com/edudash/edudash/internal/school"
	"github.com/edudash/edudash/internal/shared"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	AuthHandler    *auth.Handler
	SchoolHandler  *school.Handler
	Metrics        *observability.Metrics
	Redis          *redis.Client
}

type homeResponse struct {
	Principal  access.Principal `json:"principal"`
	Navigation []school.NavItem `json:"navigation"`
	Login      string           `json:"login,omitempty"`
	Roles      []access.Role    `json:"roles,omitempty"`
}

// NewRouter constructs the chi.Router with dashboard defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
		Redis:          params.Redis,
	}) {
		r.Use(mw)
	}

	if !InTestMode() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Guards redirect here, so it renders for every session state.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		p := shared.PrincipalFromContext(r.Context())
		resp := homeResponse{Principal: p, Navigation: []school.NavItem{}}
		if params.SchoolHandler != nil {
			resp.Navigation = params.SchoolHandler.Navigation(p)
		}
		if !p.Authenticated() {
			resp.Login = "/auth/login"
			resp.Roles = access.Roles()
		}
		httpx.JSON(w, http.StatusOK, resp)
	})

	if params.AuthHandler != nil {
		r.Route("/auth", params.AuthHandler.MountRoutes)
	}
	if params.SchoolHandler != nil {
		params.SchoolHandler.MountRoutes(r)
	}
	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}

	return r
}
