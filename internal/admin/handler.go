// Package admin serves the user account administration screens.
package admin

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/cinedesk/cinedesk/internal/clients/users"
	"github.com/cinedesk/cinedesk/internal/session"
	"github.com/cinedesk/cinedesk/internal/shared"
)

// Handler serves the /admin/users surface.
type Handler struct {
	logger   *slog.Logger
	users    *users.Client
	renderer *shared.Renderer
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, usersClient *users.Client, renderer *shared.Renderer) *Handler {
	return &Handler{logger: logger, users: usersClient, renderer: renderer, validate: validator.New()}
}

// MountRoutes registers user administration routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/admin/users", h.list)
	r.Get("/admin/users/new", h.showCreateForm)
	r.Post("/admin/users/new", h.create)
	r.Get("/admin/users/view/{id}", h.show)
	r.Get("/admin/users/edit/{id}", h.showEditForm)
	r.Post("/admin/users/edit/{id}", h.update)
	r.Post("/admin/users/delete/{id}", h.remove)
}

type userForm struct {
	Username string `validate:"required,min=3"`
	Password string
	Type     string `validate:"required"`
	Email    string `validate:"omitempty,email"`
	Phone    string
}

type listPage struct {
	Users  []users.User
	Errors map[string]string
}

type formPage struct {
	User   users.User
	Roles  []session.Role
	Action string
	Errors map[string]string
}

type detailPage struct {
	User   users.User
	Errors map[string]string
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.users.List(r.Context())
	page := listPage{Users: list}
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		page.Errors = map[string]string{"general": shared.UserSafeMessage(err)}
	}
	h.renderer.Render(w, r, "pages/admin/users_list.html", "Users", page, http.StatusOK)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("load user", slog.Int64("id", id), slog.Any("error", err))
		h.renderer.RedirectWithFlash(w, r, "/admin/users", "error", shared.UserSafeMessage(err))
		return
	}
	h.renderer.Render(w, r, "pages/admin/users_detail.html", user.Username, detailPage{User: user}, http.StatusOK)
}

func (h *Handler) showCreateForm(w http.ResponseWriter, r *http.Request) {
	page := formPage{Roles: session.Roles(), Action: "/admin/users/new", Errors: map[string]string{}}
	h.renderer.Render(w, r, "pages/admin/users_form.html", "Add User", page, http.StatusOK)
}

func (h *Handler) showEditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("load user", slog.Int64("id", id), slog.Any("error", err))
		h.renderer.RedirectWithFlash(w, r, "/admin/users", "error", shared.UserSafeMessage(err))
		return
	}
	page := formPage{User: user, Roles: session.Roles(), Action: "/admin/users/edit/" + strconv.FormatInt(id, 10), Errors: map[string]string{}}
	h.renderer.Render(w, r, "pages/admin/users_form.html", "Edit User", page, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	user, formErrs := h.parseForm(r, true)
	if len(formErrs) > 0 {
		page := formPage{User: user, Roles: session.Roles(), Action: "/admin/users/new", Errors: formErrs}
		h.renderer.Render(w, r, "pages/admin/users_form.html", "Add User", page, http.StatusUnprocessableEntity)
		return
	}
	if _, err := h.users.Create(r.Context(), user); err != nil {
		h.logger.Error("create user", slog.Any("error", err))
		page := formPage{User: user, Roles: session.Roles(), Action: "/admin/users/new", Errors: map[string]string{"general": shared.UserSafeMessage(err)}}
		h.renderer.Render(w, r, "pages/admin/users_form.html", "Add User", page, http.StatusBadGateway)
		return
	}
	h.renderer.RedirectWithFlash(w, r, "/admin/users", "success", "User created.")
}

// update saves the profile, then applies a role change through the dedicated
// endpoint. Role changes take effect the next time the account logs in.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	action := "/admin/users/edit/" + strconv.FormatInt(id, 10)
	user, formErrs := h.parseForm(r, false)
	user.ID = id
	if len(formErrs) > 0 {
		page := formPage{User: user, Roles: session.Roles(), Action: action, Errors: formErrs}
		h.renderer.Render(w, r, "pages/admin/users_form.html", "Edit User", page, http.StatusUnprocessableEntity)
		return
	}

	current, err := h.users.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("load user", slog.Int64("id", id), slog.Any("error", err))
		h.renderer.RedirectWithFlash(w, r, "/admin/users", "error", shared.UserSafeMessage(err))
		return
	}

	requestedType := user.Type
	user.Type = current.Type
	if _, err := h.users.Update(r.Context(), id, user); err != nil {
		h.logger.Error("update user", slog.Int64("id", id), slog.Any("error", err))
		page := formPage{User: user, Roles: session.Roles(), Action: action, Errors: map[string]string{"general": shared.UserSafeMessage(err)}}
		h.renderer.Render(w, r, "pages/admin/users_form.html", "Edit User", page, http.StatusBadGateway)
		return
	}
	if requestedType != current.Type {
		if _, err := h.users.SetType(r.Context(), users.User{ID: id, Type: requestedType}); err != nil {
			h.logger.Error("set user type", slog.Int64("id", id), slog.Any("error", err))
			h.renderer.RedirectWithFlash(w, r, "/admin/users", "error", "Profile saved but the role change failed.")
			return
		}
	}
	h.renderer.RedirectWithFlash(w, r, "/admin/users", "success", "User updated.")
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.users.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete user", slog.Int64("id", id), slog.Any("error", err))
		h.renderer.RedirectWithFlash(w, r, "/admin/users", "error", shared.UserSafeMessage(err))
		return
	}
	h.renderer.RedirectWithFlash(w, r, "/admin/users", "success", "User deleted.")
}

func (h *Handler) parseForm(r *http.Request, requirePassword bool) (users.User, map[string]string) {
	formErrs := map[string]string{}
	if err := r.ParseForm(); err != nil {
		formErrs["general"] = "The form could not be read."
		return users.User{}, formErrs
	}

	form := userForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
		Type:     r.PostFormValue("type"),
		Email:    r.PostFormValue("email"),
		Phone:    r.PostFormValue("phone"),
	}
	if err := h.validate.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				switch fe.Field() {
				case "Username":
					formErrs["username"] = "Username must be at least 3 characters."
				case "Type":
					formErrs["type"] = "Pick a role."
				case "Email":
					formErrs["email"] = "Enter a valid email address."
				}
			}
		} else {
			formErrs["general"] = "The form could not be validated."
		}
	}
	if requirePassword && form.Password == "" {
		formErrs["password"] = "Password is required."
	}
	if _, ok := session.ParseRole(form.Type); form.Type != "" && !ok {
		formErrs["type"] = "Pick a role."
	}

	user := users.User{
		Username: form.Username,
		Password: form.Password,
		Type:     form.Type,
		Email:    form.Email,
		Phone:    form.Phone,
	}
	if len(formErrs) == 0 {
		return user, nil
	}
	return user, formErrs
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}
