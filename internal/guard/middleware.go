package guard

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/edudash/edudash/internal/access"
	"github.com/edudash/edudash/internal/platform/httpx"
	"github.com/edudash/edudash/internal/shared"
)

// HomePath is where redirected navigation lands.
const HomePath = "/"

// Middleware wires the route guard into chi routers.
type Middleware struct {
	Logger *slog.Logger
	// OnDecision, when set, is told about every evaluated route.
	OnDecision func(r *http.Request, outcome Outcome)
}

// Require renders next only for principals holding one of roles. The guard
// is re-evaluated on every request against the request's session store.
func (m Middleware) Require(roles ...access.Role) func(http.Handler) http.Handler {
	allowed := append([]access.Role(nil), roles...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var view SessionView
			if store := shared.StoreFromContext(r.Context()); store != nil {
				view = store
			}
			outcome := Guard{Session: view}.Evaluate(allowed...)
			if m.OnDecision != nil {
				m.OnDecision(r, outcome)
			}
			switch outcome.Decision {
			case Render:
				next.ServeHTTP(w, r)
			case Redirect:
				if m.Logger != nil {
					m.Logger.Debug("route guard redirect", slog.String("path", r.URL.Path), slog.Any("reason", outcome.Reason))
				}
				m.redirect(w, r, outcome.Reason)
			default:
				pending(w)
			}
		})
	}
}

func (m Middleware) redirect(w http.ResponseWriter, r *http.Request, reason error) {
	if httpx.WantsJSON(r) {
		httpx.RespondError(w, fmt.Errorf("guard %s: %w", r.URL.Path, reason))
		return
	}
	http.Redirect(w, r, HomePath, http.StatusSeeOther)
}

// pending answers with a neutral loading state: neither the protected view
// nor a redirect.
func pending(w http.ResponseWriter) {
	w.Header().Set("Retry-After", "1")
	httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
}
