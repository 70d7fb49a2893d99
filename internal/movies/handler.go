// Package movies serves the catalog screens backed by the Films service.
package movies

import (
	"errors"
	"html/template"
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
	"github.com/cinedesk/cinedesk/internal/stats"
	"github.com/cinedesk/cinedesk/internal/svg"
)

// Handler serves catalog list, CRUD, export and statistics screens.
type Handler struct {
	logger   *slog.Logger
	films    *films.Client
	members  *members.Client
	casts    *casts.Client
	stats    *stats.Service
	renderer *shared.Renderer
	policy   authz.Policy
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, filmsClient *films.Client, membersClient *members.Client, castsClient *casts.Client, statsService *stats.Service, renderer *shared.Renderer, policy authz.Policy) *Handler {
	return &Handler{
		logger:   logger,
		films:    filmsClient,
		members:  membersClient,
		casts:    castsClient,
		stats:    statsService,
		renderer: renderer,
		policy:   policy,
		validate: validator.New(),
	}
}

// MountRoutes registers the /movies surface.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/movies", h.list)
	r.Get("/movies/new", h.showCreateForm)
	r.Post("/movies/new", h.create)
	r.Get("/movies/view/{id}", h.show)
	r.Get("/movies/edit/{id}", h.showEditForm)
	r.Post("/movies/edit/{id}", h.update)
	r.Post("/movies/delete/{id}", h.remove)
	r.Get("/movies/export", h.exportScreen)
	r.Get("/movies/export/{format}", h.exportDownload)
}

// MountManagerRoutes registers the read-only manager surface.
func (h *Handler) MountManagerRoutes(r chi.Router) {
	r.Get("/manager/movies", h.managerList)
	r.Get("/manager/stats", h.statsPage)
}

type filmForm struct {
	Title    string `validate:"required"`
	Year     int    `validate:"required,gte=1888,lte=2100"`
	Type     string
	Category string `validate:"required"`
}

type listPage struct {
	Films     []films.Film
	Query     listQuery
	CanManage bool
	Errors    map[string]string
}

type listQuery struct {
	Title string
	Year  string
}

type formPage struct {
	Film      films.Film
	Action    string
	Errors    map[string]string
	Directors []members.Member
	Writers   []members.Member
	Producers []members.Member
}

type detailPage struct {
	Film      films.Film
	Cast      []casts.Cast
	CanManage bool
	Errors    map[string]string
}

type statsPage struct {
	Total         int
	CategoryChart template.HTML
	YearChart     template.HTML
	Errors        map[string]string
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	query := listQuery{
		Title: r.URL.Query().Get("title"),
		Year:  r.URL.Query().Get("year"),
	}

	var (
		list []films.Film
		err  error
	)
	switch {
	case query.Title != "":
		list, err = h.films.SearchByTitle(r.Context(), query.Title)
	case query.Year != "":
		year, convErr := strconv.Atoi(query.Year)
		if convErr != nil {
			err = convErr
		} else {
			list, err = h.films.SearchByYear(r.Context(), year)
		}
	default:
		list, err = h.films.List(r.Context())
	}

	page := listPage{Films: list, Query: query, CanManage: h.canManage(r)}
	if err != nil {
		h.logger.Error("list films", slog.Any("error", err))
		page.Errors = map[string]string{"general": shared.UserSafeMessage(err)}
	}
	h.renderer.Render(w, r, "pages/movies/list.html", "Movies", page, http.StatusOK)
}

func (h *Handler) managerList(w http.ResponseWriter, r *http.Request) {
	list, err := h.films.List(r.Context())
	page := listPage{Films: list}
	if err != nil {
		h.logger.Error("list films", slog.Any("error", err))
		page.Errors = map[string]string{"general": shared.UserSafeMessage(err)}
	}
	h.renderer.Render(w, r, "pages/movies/manager_list.html", "Movies", page, http.StatusOK)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	film, err := h.films.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("load film", slog.Int64("id", id), slog.Any("error", err))
		h.renderer.RedirectWithFlash(w, r, "/movies", "error", shared.UserSafeMessage(err))
		return
	}
	cast, err := h.casts.ByFilm(r.Context(), id)
	if err != nil {
		h.logger.Warn("load film cast", slog.Int64("id", id), slog.Any("error", err))
	}
	page := detailPage{Film: film, Cast: cast, CanManage: h.canManage(r)}
	h.renderer.Render(w, r, "pages/movies/detail.html", film.Title, page, http.StatusOK)
}

func (h *Handler) showCreateForm(w http.ResponseWriter, r *http.Request) {
	page := formPage{Action: "/movies/new", Errors: map[string]string{}}
	h.loadCrewOptions(r, &page)
	h.renderer.Render(w, r, "pages/movies/form.html", "Add Movie", page, http.StatusOK)
}

func (h *Handler) showEditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	film, err := h.films.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("load film", slog.Int64("id", id), slog.Any("error", err))
		h.renderer.RedirectWithFlash(w, r, "/movies", "error", shared.UserSafeMessage(err))
		return
	}
	page := formPage{Film: film, Action: "/movies/edit/" + strconv.FormatInt(id, 10), Errors: map[string]string{}}
	h.loadCrewOptions(r, &page)
	h.renderer.Render(w, r, "pages/movies/form.html", "Edit Movie", page, http.StatusOK)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	film, formErrs := h.parseForm(r)
	if len(formErrs) > 0 {
		page := formPage{Film: film, Action: "/movies/new", Errors: formErrs}
		h.loadCrewOptions(r, &page)
		h.renderer.Render(w, r, "pages/movies/form.html", "Add Movie", page, http.StatusUnprocessableEntity)
		return
	}
	if _, err := h.films.Create(r.Context(), film); err != nil {
		h.logger.Error("create film", slog.Any("error", err))
		page := formPage{Film: film, Action: "/movies/new", Errors: map[string]string{"general": shared.UserSafeMessage(err)}}
		h.loadCrewOptions(r, &page)
		h.renderer.Render(w, r, "pages/movies/form.html", "Add Movie", page, http.StatusBadGateway)
		return
	}
	h.renderer.RedirectWithFlash(w, r, "/movies", "success", "Movie created.")
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	action := "/movies/edit/" + strconv.FormatInt(id, 10)
	film, formErrs := h.parseForm(r)
	film.ID = id
	if len(formErrs) > 0 {
		page := formPage{Film: film, Action: action, Errors: formErrs}
		h.loadCrewOptions(r, &page)
		h.renderer.Render(w, r, "pages/movies/form.html", "Edit Movie", page, http.StatusUnprocessableEntity)
		return
	}
	if _, err := h.films.Update(r.Context(), id, film); err != nil {
		h.logger.Error("update film", slog.Int64("id", id), slog.Any("error", err))
		page := formPage{Film: film, Action: action, Errors: map[string]string{"general": shared.UserSafeMessage(err)}}
		h.loadCrewOptions(r, &page)
		h.renderer.Render(w, r, "pages/movies/form.html", "Edit Movie", page, http.StatusBadGateway)
		return
	}
	h.renderer.RedirectWithFlash(w, r, "/movies", "success", "Movie updated.")
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.films.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete film", slog.Int64("id", id), slog.Any("error", err))
		h.renderer.RedirectWithFlash(w, r, "/movies", "error", shared.UserSafeMessage(err))
		return
	}
	h.renderer.RedirectWithFlash(w, r, "/movies", "success", "Movie deleted.")
}

func (h *Handler) exportScreen(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, "pages/movies/export.html", "Export Movies", struct{ Errors map[string]string }{}, http.StatusOK)
}

func (h *Handler) exportDownload(w http.ResponseWriter, r *http.Request) {
	format := films.ExportFormat(chi.URLParam(r, "format"))
	if !format.Valid() {
		http.NotFound(w, r)
		return
	}
	payload, err := h.films.Export(r.Context(), format)
	if err != nil {
		h.logger.Error("export films", slog.String("format", string(format)), slog.Any("error", err))
		h.renderer.RedirectWithFlash(w, r, "/movies/export", "error", shared.UserSafeMessage(err))
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename=\"movies."+string(format)+"\"")
	_, _ = w.Write(payload)
}

func (h *Handler) statsPage(w http.ResponseWriter, r *http.Request) {
	snap, err := h.stats.Snapshot(r.Context())
	if err != nil {
		h.logger.Error("load stats", slog.Any("error", err))
		page := statsPage{Errors: map[string]string{"general": shared.UserSafeMessage(err)}}
		h.renderer.Render(w, r, "pages/movies/stats.html", "Movie Statistics", page, http.StatusBadGateway)
		return
	}
	page := statsPage{Total: snap.Total}
	if chart, err := svg.Pie("Movies by category", snap.ByCategory); err == nil {
		page.CategoryChart = chart
	}
	if chart, err := svg.Bars("Movies by year", snap.ByYear); err == nil {
		page.YearChart = chart
	}
	h.renderer.Render(w, r, "pages/movies/stats.html", "Movie Statistics", page, http.StatusOK)
}

// parseForm reads the submitted film and validates it. Crew links are
// optional; an empty select means no assignment.
func (h *Handler) parseForm(r *http.Request) (films.Film, map[string]string) {
	formErrs := map[string]string{}
	if err := r.ParseForm(); err != nil {
		formErrs["general"] = "The form could not be read."
		return films.Film{}, formErrs
	}

	year, _ := strconv.Atoi(r.PostFormValue("year"))
	form := filmForm{
		Title:    r.PostFormValue("title"),
		Year:     year,
		Type:     r.PostFormValue("type"),
		Category: r.PostFormValue("category"),
	}
	if err := h.validate.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				switch fe.Field() {
				case "Title":
					formErrs["title"] = "Title is required."
				case "Year":
					formErrs["year"] = "Enter a valid release year."
				case "Category":
					formErrs["category"] = "Category is required."
				}
			}
		} else {
			formErrs["general"] = "The form could not be validated."
		}
	}

	film := films.Film{
		Title:      form.Title,
		Year:       form.Year,
		Type:       form.Type,
		Category:   form.Category,
		DirectorID: optionalID(r.PostFormValue("directorId")),
		WriterID:   optionalID(r.PostFormValue("writerId")),
		ProducerID: optionalID(r.PostFormValue("producerId")),
		Image1:     r.PostFormValue("image1"),
		Image2:     r.PostFormValue("image2"),
		Image3:     r.PostFormValue("image3"),
	}
	if len(formErrs) == 0 {
		return film, nil
	}
	return film, formErrs
}

// loadCrewOptions populates the form selects. Option load failures degrade to
// empty selects rather than blocking the form.
func (h *Handler) loadCrewOptions(r *http.Request, page *formPage) {
	ctx := r.Context()
	var err error
	if page.Directors, err = h.members.ListByType(ctx, members.TypeDirector); err != nil {
		h.logger.Warn("load directors", slog.Any("error", err))
	}
	if page.Writers, err = h.members.ListByType(ctx, members.TypeWriter); err != nil {
		h.logger.Warn("load writers", slog.Any("error", err))
	}
	if page.Producers, err = h.members.ListByType(ctx, members.TypeProducer); err != nil {
		h.logger.Warn("load producers", slog.Any("error", err))
	}
}

func (h *Handler) canManage(r *http.Request) bool {
	rec := session.RecordFromContext(r.Context())
	return authz.CanManageMovies(h.policy, rec.CurrentRole())
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}

func optionalID(raw string) *int64 {
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}
