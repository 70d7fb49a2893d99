// Package login owns the sign-in and sign-out screens.
package login

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/cinedesk/cinedesk/internal/authz"
	"github.com/cinedesk/cinedesk/internal/gateway"
	"github.com/cinedesk/cinedesk/internal/session"
	"github.com/cinedesk/cinedesk/internal/shared"
)

// Handler serves the login form and the logout action.
type Handler struct {
	logger   *slog.Logger
	gateway  *gateway.Gateway
	renderer *shared.Renderer
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, gw *gateway.Gateway, renderer *shared.Renderer) *Handler {
	return &Handler{logger: logger, gateway: gw, renderer: renderer, validate: validator.New()}
}

// MountRoutes registers login routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.submitLogin)
	r.Post("/logout", h.logout)
}

type loginForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type loginPage struct {
	Form   loginForm
	Errors map[string]string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	rec := session.RecordFromContext(r.Context())
	if role := rec.CurrentRole(); role.Valid() {
		http.Redirect(w, r, authz.Home(role), http.StatusSeeOther)
		return
	}
	h.renderer.Render(w, r, "pages/login.html", "Sign in", loginPage{}, http.StatusOK)
}

func (h *Handler) submitLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	form := loginForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	page := loginPage{Form: loginForm{Username: form.Username}, Errors: map[string]string{}}

	if err := h.validate.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				switch fe.Field() {
				case "Username":
					page.Errors["username"] = "Username is required."
				case "Password":
					page.Errors["password"] = "Password is required."
				}
			}
		} else {
			page.Errors["general"] = "Please fill in both fields."
		}
		h.renderer.Render(w, r, "pages/login.html", "Sign in", page, http.StatusUnprocessableEntity)
		return
	}

	rec := session.RecordFromContext(r.Context())
	principal, err := h.gateway.Login(r.Context(), rec, form.Username, form.Password)
	if err != nil {
		var vErr *gateway.ValidationError
		var aErr *gateway.AuthenticationError
		switch {
		case errors.As(err, &vErr):
			page.Errors[vErr.Field] = "This field is required."
		case errors.As(err, &aErr):
			page.Errors["general"] = "Invalid username or password."
		case errors.Is(err, gateway.ErrLoginSuperseded):
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		default:
			if h.logger != nil {
				h.logger.Error("login failed", slog.Any("error", err))
			}
			page.Errors["general"] = shared.UserSafeMessage(err)
		}
		h.renderer.Render(w, r, "pages/login.html", "Sign in", page, http.StatusUnprocessableEntity)
		return
	}

	http.Redirect(w, r, authz.Home(principal.Role), http.StatusSeeOther)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	rec := session.RecordFromContext(r.Context())
	h.gateway.Logout(rec)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
