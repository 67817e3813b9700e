package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/edudash/edudash/internal/access"
	"github.com/edudash/edudash/internal/platform/httpx"
	"github.com/edudash/edudash/internal/shared"
)

// Handler wires HTTP endpoints for the login flow.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	sessions    *shared.SessionManager
	csrfManager *shared.CSRFManager
	validator   *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:      logger,
		service:     service,
		sessions:    sessions,
		csrfManager: csrf,
		validator:   validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/me", h.me)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginForm struct {
	Role string `json:"role" validate:"required,oneof=admin teacher student"`
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	h.respondProfile(w, r, http.StatusOK)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := httpx.DecodeJSON(r, &form); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed body")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed form")
			return
		}
		form.Role = r.PostFormValue("role")
	}
	form.Role = strings.ToLower(strings.TrimSpace(form.Role))

	if err := h.validator.Struct(form); err != nil {
		errs := make(map[string]string)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fieldErr := range verrs {
				errs[strings.ToLower(fieldErr.Field())] = fieldErr.Tag()
			}
		}
		httpx.JSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
		return
	}

	principal, err := h.service.Login(r.Context(), shared.StoreFromContext(r.Context()), form.Role)
	if err != nil {
		if errors.Is(err, access.ErrUnknownRole) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown role")
			return
		}
		h.logError("login", err)
		httpx.RespondError(w, err)
		return
	}
	if h.logger != nil {
		h.logger.Info("login", slog.String("principal", principal.ID), slog.String("role", principal.Role.String()))
	}
	h.respondProfile(w, r, http.StatusOK)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), shared.StoreFromContext(r.Context())); err != nil {
		h.logError("logout", err)
		httpx.RespondError(w, err)
		return
	}
	// The browser session goes with the role. A fresh one, with a new CSRF
	// token, starts on the next request.
	if sess := shared.SessionFromContext(r.Context()); sess != nil && h.sessions != nil {
		h.sessions.Destroy(sess)
		httpx.JSON(w, http.StatusOK, h.service.Profile(shared.PrincipalFromContext(r.Context())))
		return
	}
	h.respondProfile(w, r, http.StatusOK)
}

func (h *Handler) respondProfile(w http.ResponseWriter, r *http.Request, status int) {
	profile := h.service.Profile(shared.PrincipalFromContext(r.Context()))
	if sess := shared.SessionFromContext(r.Context()); sess != nil && h.csrfManager != nil {
		token, err := h.csrfManager.EnsureToken(sess)
		if err != nil {
			h.logError("ensure csrf token", err)
		}
		profile.CSRFToken = token
	}
	httpx.JSON(w, status, profile)
}

func (h *Handler) logError(msg string, err error) {
	if h.logger != nil {
		h.logger.Error(msg, slog.Any("error", err))
	}
}
