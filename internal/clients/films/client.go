// Package films wraps the remote Films service, the system of record for the
// movie catalog.
package films

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Film mirrors the Films service record.
type Film struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Year       int    `json:"year"`
	Type       string `json:"type"`
	Category   string `json:"category"`
	DirectorID *int64 `json:"directorId,omitempty"`
	WriterID   *int64 `json:"writerId,omitempty"`
	ProducerID *int64 `json:"producerId,omitempty"`
	Image1     string `json:"image1,omitempty"`
	Image2     string `json:"image2,omitempty"`
	Image3     string `json:"image3,omitempty"`
}

// ExportFormat names a server-side export the Films service can produce.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportDocx ExportFormat = "docx"
	ExportJSON ExportFormat = "json"
	ExportXML  ExportFormat = "xml"
)

// ContentType returns the MIME type a browser download should carry.
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportCSV:
		return "text/csv"
	case ExportDocx:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ExportJSON:
		return "application/json"
	case ExportXML:
		return "application/xml"
	}
	return "application/octet-stream"
}

// Valid reports whether the format is one the service supports.
func (f ExportFormat) Valid() bool {
	switch f {
	case ExportCSV, ExportDocx, ExportJSON, ExportXML:
		return true
	}
	return false
}

// Client talks to the Films service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// List returns the whole catalog.
func (c *Client) List(ctx context.Context) ([]Film, error) {
	var films []Film
	if err := c.do(ctx, http.MethodGet, "/all", nil, &films); err != nil {
		return nil, err
	}
	return films, nil
}

// Get fetches a single film.
func (c *Client) Get(ctx context.Context, id int64) (Film, error) {
	var film Film
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/%d", id), nil, &film); err != nil {
		return Film{}, err
	}
	return film, nil
}

// Create registers a new film.
func (c *Client) Create(ctx context.Context, film Film) (Film, error) {
	var created Film
	if err := c.do(ctx, http.MethodPost, "/create", film, &created); err != nil {
		return Film{}, err
	}
	return created, nil
}

// Update replaces an existing film.
func (c *Client) Update(ctx context.Context, id int64, film Film) (Film, error) {
	film.ID = id
	var updated Film
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/%d/update", id), film, &updated); err != nil {
		return Film{}, err
	}
	return updated, nil
}

// Delete removes a film.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/%d/delete", id), nil, nil)
}

// SearchByTitle returns films whose title matches the query.
func (c *Client) SearchByTitle(ctx context.Context, title string) ([]Film, error) {
	var films []Film
	if err := c.do(ctx, http.MethodGet, "/search/title/"+url.PathEscape(title), nil, &films); err != nil {
		return nil, err
	}
	return films, nil
}

// SearchByYear returns films released in the given year.
func (c *Client) SearchByYear(ctx context.Context, year int) ([]Film, error) {
	var films []Film
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/search/year/%d", year), nil, &films); err != nil {
		return nil, err
	}
	return films, nil
}

// Export streams a catalog export in the requested format. The bytes are
// opaque to the front-end; it only relays them to the browser.
func (c *Client) Export(ctx context.Context, format ExportFormat) ([]byte, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/export/"+string(format), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("films service returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// CountByCategory returns the number of films per category.
func (c *Client) CountByCategory(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	if err := c.do(ctx, http.MethodGet, "/stats/byCategory", nil, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// CountByYear returns the number of films per release year.
func (c *Client) CountByYear(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	if err := c.do(ctx, http.MethodGet, "/stats/byYear", nil, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("films service returned status %d", resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
