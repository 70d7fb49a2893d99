package films_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cinedesk/cinedesk/internal/clients/films"
)

func TestListDecodesCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/all", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]films.Film{{ID: 1, Title: "Alien", Year: 1979, Category: "SCIFI"}})
	}))
	defer srv.Close()

	client := films.NewClient(srv.URL)
	list, err := client.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Alien", list[0].Title)
}

func TestCreateSendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/create", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var film films.Film
		require.NoError(t, json.NewDecoder(r.Body).Decode(&film))
		film.ID = 7
		_ = json.NewEncoder(w).Encode(film)
	}))
	defer srv.Close()

	client := films.NewClient(srv.URL)
	created, err := client.Create(context.Background(), films.Film{Title: "Heat", Year: 1995})
	require.NoError(t, err)
	require.Equal(t, int64(7), created.ID)
}

func TestSearchByTitleEscapesQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search/title/blade%20runner", r.URL.EscapedPath())
		_ = json.NewEncoder(w).Encode([]films.Film{})
	}))
	defer srv.Close()

	client := films.NewClient(srv.URL)
	_, err := client.SearchByTitle(context.Background(), "blade runner")
	require.NoError(t, err)
}

func TestErrorStatusSurfacesWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom with internals", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := films.NewClient(srv.URL)
	_, err := client.List(context.Background())
	require.Error(t, err)
	require.NotContains(t, err.Error(), "boom with internals")
	require.Contains(t, err.Error(), "500")
}

func TestExportRelaysBytes(t *testing.T) {
	payload := []byte("id,title\n1,Alien\n")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/export/csv", r.URL.Path)
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	client := films.NewClient(srv.URL)
	data, err := client.Export(context.Background(), films.ExportCSV)
	require.NoError(t, err)
	require.Equal(t, payload, data)
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	client := films.NewClient("http://127.0.0.1:0")
	_, err := client.Export(context.Background(), films.ExportFormat("pdf"))
	require.Error(t, err)
}

func TestCountByCategory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/stats/byCategory", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]int{"DRAMA": 2})
	}))
	defer srv.Close()

	client := films.NewClient(srv.URL)
	counts, err := client.CountByCategory(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, counts["DRAMA"])
}
