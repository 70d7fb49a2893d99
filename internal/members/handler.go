// Package members serves the member administration screens for managers.
package members

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/cinedesk/cinedesk/internal/clients/members"
	"github.com/cinedesk/cinedesk/internal/shared"
)

// Handler serves member list, detail and CRUD screens.
type Handler struct {
	logger   *slog.Logger
	members  *members.Client
	renderer *shared.Renderer
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, membersClient *members.Client, renderer *shared.Renderer) *Handler {
	return &Handler{logger: logger, members: membersClient, renderer: renderer, validate: validator.New()}
}

// MountRoutes registers the /members surface.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/members", h.list)
	r.Get("/members/new", h.showCreateForm)
	r.Post("/members/new", h.create)
	r.Get("/members/view/{id}", h.show)
	r.Get("/members/edit/{id}", h.showEditForm)
	r.Post("/members/edit/{id}", h.update)
	r.Post("/members/delete/{id}", h.remove)
}

type memberForm struct {
	Name string `validate:"required"`
	Type string `validate:"required"`
}

type listPage struct {
	Members  []members.Member
	Types    []members.Type
	Selected string
	Errors   map[string]string
}

type formPage struct {
	Member members.Member
	Types  []members.Type
	Action string
	Errors map[string]string
}

type detailPage struct {
	Member   members.Member
	ImageURL string
	Errors   map[string]string
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	selected := r.URL.Query().Get("type")

	var (
		list []members.Member
		err  error
	)
	if t := members.Type(selected); t.Valid() {
		list, err = h.members.ListByType(r.Context(), t)
	} else {
		selected = ""
		list, err = h.members.List(r.Context())
	}

	page := listPage{Members: list, Types: members.Types(), Selected: selected}
	if err != nil {
		h.logger.Error("list members", slog.Any("error", err))
		page.Errors = map[string]string{"general": shared.UserSafeMessage(err)}
	}
	h.renderer.Render(w, r, "pages/members/list.html", "Members", page, http.StatusOK)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	member, err := h.members.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("load member", slog.Int64("id", id), slog.Any("error", err))
		h.renderer.RedirectWithFlash(w, r, "/members", "error", shared.UserSafeMessage(err))
		return
	}
	page := detailPage{Member: member}
	if member.Image != "" {
		page.ImageURL = h.members.ImageURL(id)
	}
	h.renderer.Render(w, r, "pages/members/detail.html", member.Name, page, http.StatusOK)
}

func (h *Handler) showCreateForm(w http.ResponseWriter, r *http.Request) {
	page := formPage{Types: members.Types(), Action: "/members/new", Errors: map[string]string{}}
	h.renderer.Render(w, r, "pages/members/form.html", "Add Member", page, http.StatusOK)
}

func (h *Handler) showEditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	member, err := h.members.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("load member", slog.Int64("id", id), slog.Any("error", err))
		h.renderer.RedirectWithFlash(w, r, "/members", "error", shared.UserSafeMessage(err))
		return
	}
	page := formPage{Member: member, Types: members.Types(), Action: "/members/edit/" + strconv.FormatInt(id, 10), Errors: map[string]string{}}
	h.renderer.Render(w, r, "pages/members/form.html", "Edit Member", page, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	member, formErrs := h.parseForm(r)
	if len(formErrs) > 0 {
		page := formPage{Member: member, Types: members.Types(), Action: "/members/new", Errors: formErrs}
		h.renderer.Render(w, r, "pages/members/form.html", "Add Member", page, http.StatusUnprocessableEntity)
		return
	}
	if _, err := h.members.Create(r.Context(), member); err != nil {
		h.logger.Error("create member", slog.Any("error", err))
		page := formPage{Member: member, Types: members.Types(), Action: "/members/new", Errors: map[string]string{"general": shared.UserSafeMessage(err)}}
		h.renderer.Render(w, r, "pages/members/form.html", "Add Member", page, http.StatusBadGateway)
		return
	}
	h.renderer.RedirectWithFlash(w, r, "/members", "success", "Member created.")
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	action := "/members/edit/" + strconv.FormatInt(id, 10)
	member, formErrs := h.parseForm(r)
	member.ID = id
	if len(formErrs) > 0 {
		page := formPage{Member: member, Types: members.Types(), Action: action, Errors: formErrs}
		h.renderer.Render(w, r, "pages/members/form.html", "Edit Member", page, http.StatusUnprocessableEntity)
		return
	}
	if _, err := h.members.Update(r.Context(), id, member); err != nil {
		h.logger.Error("update member", slog.Int64("id", id), slog.Any("error", err))
		page := formPage{Member: member, Types: members.Types(), Action: action, Errors: map[string]string{"general": shared.UserSafeMessage(err)}}
		h.renderer.Render(w, r, "pages/members/form.html", "Edit Member", page, http.StatusBadGateway)
		return
	}
	h.renderer.RedirectWithFlash(w, r, "/members", "success", "Member updated.")
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.members.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete member", slog.Int64("id", id), slog.Any("error", err))
		h.renderer.RedirectWithFlash(w, r, "/members", "error", shared.UserSafeMessage(err))
		return
	}
	h.renderer.RedirectWithFlash(w, r, "/members", "success", "Member deleted.")
}

func (h *Handler) parseForm(r *http.Request) (members.Member, map[string]string) {
	formErrs := map[string]string{}
	if err := r.ParseForm(); err != nil {
		formErrs["general"] = "The form could not be read."
		return members.Member{}, formErrs
	}

	form := memberForm{
		Name: r.PostFormValue("name"),
		Type: r.PostFormValue("type"),
	}
	if err := h.validate.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				switch fe.Field() {
				case "Name":
					formErrs["name"] = "Name is required."
				case "Type":
					formErrs["type"] = "Pick a member type."
				}
			}
		} else {
			formErrs["general"] = "The form could not be validated."
		}
	}
	memberType := members.Type(form.Type)
	if form.Type != "" && !memberType.Valid() {
		formErrs["type"] = "Pick a member type."
	}

	member := members.Member{
		Name:     form.Name,
		Type:     memberType,
		Image:    r.PostFormValue("image"),
		Birthday: r.PostFormValue("birthday"),
	}
	if len(formErrs) == 0 {
		return member, nil
	}
	return member, formErrs
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}
