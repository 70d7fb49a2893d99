// Package casts serves the cast assignment screens backed by the Casts
// service. Reading is open to the catalog roles; mutation is gated more
// tightly by the route table.
package casts

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/cinedesk/cinedesk/internal/authz"
	"github.com/cinedesk/cinedesk/internal/clients/casts"
	"github.com/cinedesk/cinedesk/internal/clients/films"
	"github.com/cinedesk/cinedesk/internal/clients/members"
	"github.com/cinedesk/cinedesk/internal/session"
	"github.com/cinedesk/cinedesk/internal/shared"
)

// Handler serves cast list, detail and CRUD screens.
type Handler struct {
	logger   *slog.Logger
	casts    *casts.Client
	films    *films.Client
	members  *members.Client
	renderer *shared.Renderer
	policy   authz.Policy
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, castsClient *casts.Client, filmsClient *films.Client, membersClient *members.Client, renderer *shared.Renderer, policy authz.Policy) *Handler {
	return &Handler{
		logger:   logger,
		casts:    castsClient,
		films:    filmsClient,
		members:  membersClient,
		renderer: renderer,
		policy:   policy,
		validate: validator.New(),
	}
}

// MountReadRoutes registers the read-only cast surface.
func (h *Handler) MountReadRoutes(r chi.Router) {
	r.Get("/casts", h.list)
	r.Get("/casts/view/{id}", h.show)
}

// MountWriteRoutes registers the mutating cast surface.
func (h *Handler) MountWriteRoutes(r chi.Router) {
	r.Get("/casts/new", h.showCreateForm)
	r.Post("/casts/new", h.create)
	r.Get("/casts/edit/{id}", h.showEditForm)
	r.Post("/casts/edit/{id}", h.update)
	r.Post("/casts/delete/{id}", h.remove)
}

type castForm struct {
	FilmID  int64 `validate:"required,gt=0"`
	ActorID int64 `validate:"required,gt=0"`
}

type listPage struct {
	Casts     []casts.Cast
	CanMutate bool
	Errors    map[string]string
}

type formPage struct {
	Cast   casts.Cast
	Films  []films.Film
	Actors []members.Member
	Action string
	Errors map[string]string
}

type detailPage struct {
	Cast      casts.Cast
	FilmTitle string
	ActorName string
	CanMutate bool
	Errors    map[string]string
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.casts.List(r.Context())
	page := listPage{Casts: list, CanMutate: h.canMutate(r)}
	if err != nil {
		h.logger.Error("list casts", slog.Any("error", err))
		page.Errors = map[string]string{"general": shared.UserSafeMessage(err)}
	}
	h.renderer.Render(w, r, "pages/casts/list.html", "Casts", page, http.StatusOK)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	cast, err := h.casts.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("load cast", slog.Int64("id", id), slog.Any("error", err))
		h.renderer.RedirectWithFlash(w, r, "/casts", "error", shared.UserSafeMessage(err))
		return
	}
	page := detailPage{Cast: cast, CanMutate: h.canMutate(r)}
	if film, err := h.films.Get(r.Context(), cast.FilmID); err == nil {
		page.FilmTitle = film.Title
	} else {
		page.FilmTitle = strconv.FormatInt(cast.FilmID, 10)
	}
	if actor, err := h.members.Get(r.Context(), cast.ActorID); err == nil {
		page.ActorName = actor.Name
	} else {
		page.ActorName = strconv.FormatInt(cast.ActorID, 10)
	}
	h.renderer.Render(w, r, "pages/casts/detail.html", "Cast Assignment", page, http.StatusOK)
}

func (h *Handler) showCreateForm(w http.ResponseWriter, r *http.Request) {
	page := formPage{Action: "/casts/new", Errors: map[string]string{}}
	h.loadOptions(r, &page)
	h.renderer.Render(w, r, "pages/casts/form.html", "Add Cast", page, http.StatusOK)
}

func (h *Handler) showEditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	cast, err := h.casts.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("load cast", slog.Int64("id", id), slog.Any("error", err))
		h.renderer.RedirectWithFlash(w, r, "/casts", "error", shared.UserSafeMessage(err))
		return
	}
	page := formPage{Cast: cast, Action: "/casts/edit/" + strconv.FormatInt(id, 10), Errors: map[string]string{}}
	h.loadOptions(r, &page)
	h.renderer.Render(w, r, "pages/casts/form.html", "Edit Cast", page, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	cast, formErrs := h.parseForm(r)
	if len(formErrs) > 0 {
		page := formPage{Cast: cast, Action: "/casts/new", Errors: formErrs}
		h.loadOptions(r, &page)
		h.renderer.Render(w, r, "pages/casts/form.html", "Add Cast", page, http.StatusUnprocessableEntity)
		return
	}
	if _, err := h.casts.Create(r.Context(), cast); err != nil {
		h.logger.Error("create cast", slog.Any("error", err))
		page := formPage{Cast: cast, Action: "/casts/new", Errors: map[string]string{"general": shared.UserSafeMessage(err)}}
		h.loadOptions(r, &page)
		h.renderer.Render(w, r, "pages/casts/form.html", "Add Cast", page, http.StatusBadGateway)
		return
	}
	h.renderer.RedirectWithFlash(w, r, "/casts", "success", "Cast assignment created.")
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	action := "/casts/edit/" + strconv.FormatInt(id, 10)
	cast, formErrs := h.parseForm(r)
	cast.ID = id
	if len(formErrs) > 0 {
		page := formPage{Cast: cast, Action: action, Errors: formErrs}
		h.loadOptions(r, &page)
		h.renderer.Render(w, r, "pages/casts/form.html", "Edit Cast", page, http.StatusUnprocessableEntity)
		return
	}
	if _, err := h.casts.Update(r.Context(), id, cast); err != nil {
		h.logger.Error("update cast", slog.Int64("id", id), slog.Any("error", err))
		page := formPage{Cast: cast, Action: action, Errors: map[string]string{"general": shared.UserSafeMessage(err)}}
		h.loadOptions(r, &page)
		h.renderer.Render(w, r, "pages/casts/form.html", "Edit Cast", page, http.StatusBadGateway)
		return
	}
	h.renderer.RedirectWithFlash(w, r, "/casts", "success", "Cast assignment updated.")
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.casts.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete cast", slog.Int64("id", id), slog.Any("error", err))
		h.renderer.RedirectWithFlash(w, r, "/casts", "error", shared.UserSafeMessage(err))
		return
	}
	h.renderer.RedirectWithFlash(w, r, "/casts", "success", "Cast assignment deleted.")
}

func (h *Handler) parseForm(r *http.Request) (casts.Cast, map[string]string) {
	formErrs := map[string]string{}
	if err := r.ParseForm(); err != nil {
		formErrs["general"] = "The form could not be read."
		return casts.Cast{}, formErrs
	}

	filmID, _ := strconv.ParseInt(r.PostFormValue("filmId"), 10, 64)
	actorID, _ := strconv.ParseInt(r.PostFormValue("actorId"), 10, 64)
	form := castForm{FilmID: filmID, ActorID: actorID}
	if err := h.validate.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				switch fe.Field() {
				case "FilmID":
					formErrs["filmId"] = "Pick a film."
				case "ActorID":
					formErrs["actorId"] = "Pick an actor."
				}
			}
		} else {
			formErrs["general"] = "The form could not be validated."
		}
	}

	cast := casts.Cast{
		FilmID:  filmID,
		ActorID: actorID,
		Role:    r.PostFormValue("role"),
	}
	if len(formErrs) == 0 {
		return cast, nil
	}
	return cast, formErrs
}

func (h *Handler) loadOptions(r *http.Request, page *formPage) {
	ctx := r.Context()
	var err error
	if page.Films, err = h.films.List(ctx); err != nil {
		h.logger.Warn("load films for cast form", slog.Any("error", err))
	}
	if page.Actors, err = h.members.ListByType(ctx, members.TypeActor); err != nil {
		h.logger.Warn("load actors for cast form", slog.Any("error", err))
	}
}

func (h *Handler) canMutate(r *http.Request) bool {
	rec := session.RecordFromContext(r.Context())
	return authz.CanMutateCasts(h.policy, rec.CurrentRole())
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}
