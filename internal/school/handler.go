package school

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/edudash/edudash/internal/access"
	"github.com/edudash/edudash/internal/guard"
	"github.com/edudash/edudash/internal/platform/httpx"
	"github.com/edudash/edudash/internal/shared"
)

// Handler exposes the dashboard resources over JSON.
type Handler struct {
	logger  *slog.Logger
	service *Service
	policy  *access.Policy
	guard   guard.Middleware
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service, policy *access.Policy, guard guard.Middleware) *Handler {
	return &Handler{logger: logger, service: service, policy: policy, guard: guard}
}

// MountRoutes registers one route group per resource kind. Each group is
// guarded by the roles the rule table lets read that kind.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route(paths[access.KindAttendance], func(r chi.Router) { mountResource(r, h, h.service.Attendance) })
	r.Route(paths[access.KindResults], func(r chi.Router) {
		mountResource(r, h, h.service.Results.Resource)
		r.Post("/{id}/publish", h.publishResult)
	})
	r.Route(paths[access.KindLessonPlans], func(r chi.Router) { mountResource(r, h, h.service.LessonPlans) })
	r.Route(paths[access.KindRecordings], func(r chi.Router) { mountResource(r, h, h.service.Recordings) })
	r.Route(paths[access.KindContacts], func(r chi.Router) { mountResource(r, h, h.service.Contacts) })
	r.Route(paths[access.KindEvents], func(r chi.Router) { mountResource(r, h, h.service.Events) })
}

// paths maps each kind to its mount point under MountRoutes.
var paths = map[access.ResourceKind]string{
	access.KindAttendance:  "/attendance",
	access.KindResults:     "/results",
	access.KindLessonPlans: "/lesson-plans",
	access.KindRecordings:  "/recordings",
	access.KindContacts:    "/contacts",
	access.KindEvents:      "/events",
}

// NavItem is one sidebar entry of the dashboard shell.
type NavItem struct {
	Kind         access.ResourceKind `json:"kind"`
	Label        string              `json:"label"`
	Path         string              `json:"path"`
	Capabilities []string            `json:"capabilities"`
}

// Navigation lists the sections p may open, in sidebar order.
func (h *Handler) Navigation(p access.Principal) []NavItem {
	items := make([]NavItem, 0, len(paths))
	for _, kind := range access.Kinds() {
		caps := h.policy.Capabilities(p, kind)
		if !caps.Has(access.ActionRead) {
			continue
		}
		items = append(items, NavItem{Kind: kind, Label: Label(kind), Path: paths[kind], Capabilities: caps.Names()})
	}
	return items
}

// ReadersOf returns the roles allowed to read kind.
func ReadersOf(policy *access.Policy, kind access.ResourceKind) []access.Role {
	roles := make([]access.Role, 0, 3)
	for _, role := range access.Roles() {
		if policy.Capabilities(access.Principal{Role: role}, kind).Has(access.ActionRead) {
			roles = append(roles, role)
		}
	}
	return roles
}

// Label renders a kind for display, e.g. "Lesson Plans".
func Label(kind access.ResourceKind) string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(kind), "_", " "))
}

type listResponse[T any] struct {
	Kind         access.ResourceKind `json:"kind"`
	Label        string              `json:"label"`
	Items        []T                 `json:"items"`
	Capabilities []string            `json:"capabilities"`
	Pagination   shared.Pagination   `json:"pagination"`
}

type itemResponse[T any] struct {
	Item         T        `json:"item"`
	Capabilities []string `json:"capabilities"`
}

func mountResource[T Entity[T]](r chi.Router, h *Handler, res *Resource[T]) {
	r.Use(h.guard.Require(ReadersOf(h.policy, res.Kind())...))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		p := shared.PrincipalFromContext(r.Context())
		rows := res.List(r.Context(), p)
		page, perPage := shared.PaginationFromRequest(r)
		pagination := shared.NewPagination(page, perPage, len(rows))
		start, end := pagination.Window()
		httpx.JSON(w, http.StatusOK, listResponse[T]{
			Kind:         res.Kind(),
			Label:        Label(res.Kind()),
			Items:        rows[start:end],
			Capabilities: res.Capabilities(p).Names(),
			Pagination:   pagination,
		})
	})

	r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
		p := shared.PrincipalFromContext(r.Context())
		item, err := res.Get(r.Context(), p, chi.URLParam(r, "id"))
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, itemResponse[T]{Item: item, Capabilities: res.Capabilities(p).Names()})
	})

	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		p := shared.PrincipalFromContext(r.Context())
		var in T
		if err := httpx.DecodeJSON(r, &in); err != nil {
			h.respondError(w, r, fmt.Errorf("%w: %v", ErrValidation, err))
			return
		}
		item, err := res.Create(r.Context(), p, in)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, itemResponse[T]{Item: item, Capabilities: res.Capabilities(p).Names()})
	})

	r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
		p := shared.PrincipalFromContext(r.Context())
		var in T
		if err := httpx.DecodeJSON(r, &in); err != nil {
			h.respondError(w, r, fmt.Errorf("%w: %v", ErrValidation, err))
			return
		}
		item, err := res.Update(r.Context(), p, chi.URLParam(r, "id"), in)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, itemResponse[T]{Item: item, Capabilities: res.Capabilities(p).Names()})
	})

	r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
		p := shared.PrincipalFromContext(r.Context())
		if err := res.Delete(r.Context(), p, chi.URLParam(r, "id")); err != nil {
			h.respondError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func (h *Handler) publishResult(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	item, err := h.service.Results.Publish(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, itemResponse[ExamResult]{Item: item, Capabilities: h.service.Results.Capabilities(p).Names()})
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		err = fmt.Errorf("%w: %s", httpx.ErrNotFound, r.URL.Path)
	case errors.Is(err, ErrValidation):
		err = fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	case errors.Is(err, access.ErrMisconfiguredRule):
		if h.logger != nil {
			h.logger.Error("misconfigured access rule", slog.String("path", r.URL.Path), slog.Any("error", err))
		}
	}
	httpx.RespondError(w, err)
}
