// Package casts wraps the remote Casts service linking actors to films.
package casts

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

// Cast mirrors the Casts service record.
type Cast struct {
	ID      int64  `json:"id"`
	FilmID  int64  `json:"filmId"`
	ActorID int64  `json:"actorId"`
	Role    string `json:"role,omitempty"`
}

// Client talks to the Casts service.
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

// List returns every cast assignment.
func (c *Client) List(ctx context.Context) ([]Cast, error) {
	var list []Cast
	if err := c.do(ctx, http.MethodGet, "/all", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Get fetches a single cast assignment.
func (c *Client) Get(ctx context.Context, id int64) (Cast, error) {
	var cast Cast
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/%d", id), nil, &cast); err != nil {
		return Cast{}, err
	}
	return cast, nil
}

// Create registers a new cast assignment.
func (c *Client) Create(ctx context.Context, cast Cast) (Cast, error) {
	var created Cast
	if err := c.do(ctx, http.MethodPost, "/create", cast, &created); err != nil {
		return Cast{}, err
	}
	return created, nil
}

// Update replaces an existing cast assignment.
func (c *Client) Update(ctx context.Context, id int64, cast Cast) (Cast, error) {
	cast.ID = id
	var updated Cast
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/%d/update", id), cast, &updated); err != nil {
		return Cast{}, err
	}
	return updated, nil
}

// Delete removes a cast assignment.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/%d/delete", id), nil, nil)
}

// ByFilm returns the cast of one film.
func (c *Client) ByFilm(ctx context.Context, filmID int64) ([]Cast, error) {
	var list []Cast
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/film/%d", filmID), nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ByActor returns every assignment of one actor.
func (c *Client) ByActor(ctx context.Context, actorID int64) ([]Cast, error) {
	var list []Cast
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/actor/%d", actorID), nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ByRole returns every assignment matching a role name.
func (c *Client) ByRole(ctx context.Context, role string) ([]Cast, error) {
	var list []Cast
	if err := c.do(ctx, http.MethodGet, "/role/"+url.PathEscape(role), nil, &list); err != nil {
		return nil, err
	}
	return list, nil
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
		return fmt.Errorf("casts service returned status %d", resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
