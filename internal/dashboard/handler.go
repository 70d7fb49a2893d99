// Package dashboard serves the per-role landing pages.
package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cinedesk/cinedesk/internal/shared"
	"github.com/cinedesk/cinedesk/internal/stats"
)

// Handler serves role dashboards.
type Handler struct {
	logger   *slog.Logger
	renderer *shared.Renderer
	stats    *stats.Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, renderer *shared.Renderer, statsService *stats.Service) *Handler {
	return &Handler{logger: logger, renderer: renderer, stats: statsService}
}

// MountRoutes registers dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/employee", h.employee)
	r.Get("/manager", h.manager)
	r.Get("/admin", h.admin)
}

type dashboardPage struct {
	Total   int
	HasStat bool
}

func (h *Handler) employee(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, "pages/dashboard_employee.html", "Employee Dashboard", h.loadPage(r), http.StatusOK)
}

func (h *Handler) manager(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, "pages/dashboard_manager.html", "Manager Dashboard", h.loadPage(r), http.StatusOK)
}

func (h *Handler) admin(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, "pages/dashboard_admin.html", "Admin Dashboard", h.loadPage(r), http.StatusOK)
}

// loadPage fetches the headline counter. Dashboards stay usable when the
// Films service is down; the tile is simply hidden.
func (h *Handler) loadPage(r *http.Request) dashboardPage {
	snap, err := h.stats.Snapshot(r.Context())
	if err != nil {
		h.logger.Warn("dashboard stats unavailable", slog.Any("error", err))
		return dashboardPage{}
	}
	return dashboardPage{Total: snap.Total, HasStat: true}
}
