package shared

import (
	"log/slog"
	"net/http"

	"github.com/cinedesk/cinedesk/internal/authz"
	"github.com/cinedesk/cinedesk/internal/i18n"
	"github.com/cinedesk/cinedesk/internal/session"
	"github.com/cinedesk/cinedesk/internal/view"
)

// Renderer assembles the cross-cutting template data (identity, navigation,
// CSRF, flash) so feature handlers only supply their own payload.
type Renderer struct {
	Logger *slog.Logger
	Engine *view.Engine
	CSRF   *CSRFManager
	Policy authz.Policy
}

// Render executes a page template with the shared chrome filled in.
func (rn *Renderer) Render(w http.ResponseWriter, r *http.Request, name, title string, data any, status int) {
	rec := session.RecordFromContext(r.Context())
	csrfToken, _ := rn.CSRF.EnsureToken(r.Context(), rec)
	var flash *session.FlashMessage
	if rec != nil {
		flash = rec.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Principal:   rec.Principal(),
		Nav:         authz.NavEntries(rn.Policy, rec.CurrentRole()),
		Lang:        i18n.Detect(r),
		Data:        data,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := rn.Engine.Render(w, name, viewData); err != nil {
		if rn.Logger != nil {
			rn.Logger.Error("render template", slog.String("template", name), slog.Any("error", err))
		}
	}
}

// RedirectWithFlash queues a flash message and redirects.
func (rn *Renderer) RedirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if rec := session.RecordFromContext(r.Context()); rec != nil {
		rec.AddFlash(session.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
