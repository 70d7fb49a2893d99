// Package members wraps the remote Members service holding directors,
// writers, producers and actors.
package members

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Type enumerates the member kinds the service recognises.
type Type string

const (
	TypeDirector Type = "DIRECTOR"
	TypeWriter   Type = "WRITER"
	TypeProducer Type = "PRODUCER"
	TypeActor    Type = "ACTOR"
)

// Types returns every member type in a stable order.
func Types() []Type {
	return []Type{TypeDirector, TypeWriter, TypeProducer, TypeActor}
}

// Valid reports whether the type belongs to the enumeration.
func (t Type) Valid() bool {
	switch t {
	case TypeDirector, TypeWriter, TypeProducer, TypeActor:
		return true
	}
	return false
}

// Member mirrors the Members service record.
type Member struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Type     Type   `json:"type"`
	Image    string `json:"image,omitempty"`
	Birthday string `json:"birthday,omitempty"`
}

// Client talks to the Members service.
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

// List returns every member.
func (c *Client) List(ctx context.Context) ([]Member, error) {
	var list []Member
	if err := c.do(ctx, http.MethodGet, "/all", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ListByType returns members of a single kind.
func (c *Client) ListByType(ctx context.Context, t Type) ([]Member, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("unknown member type %q", t)
	}
	var list []Member
	if err := c.do(ctx, http.MethodGet, "/filter/getall/"+string(t), nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Get fetches a single member.
func (c *Client) Get(ctx context.Context, id int64) (Member, error) {
	var member Member
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/%d", id), nil, &member); err != nil {
		return Member{}, err
	}
	return member, nil
}

// Create registers a new member.
func (c *Client) Create(ctx context.Context, member Member) (Member, error) {
	var created Member
	if err := c.do(ctx, http.MethodPost, "/create", member, &created); err != nil {
		return Member{}, err
	}
	return created, nil
}

// Update replaces an existing member.
func (c *Client) Update(ctx context.Context, id int64, member Member) (Member, error) {
	member.ID = id
	var updated Member
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/%d/update", id), member, &updated); err != nil {
		return Member{}, err
	}
	return updated, nil
}

// Delete removes a member.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/%d/delete", id), nil, nil)
}

// ImageURL resolves the member's portrait location on the service.
func (c *Client) ImageURL(id int64) string {
	return fmt.Sprintf("%s/%d/viewImage", c.baseURL, id)
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
		return fmt.Errorf("members service returned status %d", resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
