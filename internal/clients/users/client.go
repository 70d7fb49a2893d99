// Package users wraps the remote Users service consumed for authentication
// and account administration.
package users

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// User mirrors the Users service record. Password is write-only: the service
// never returns it and the front-end never stores it.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	Type     string `json:"type"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Client talks to the Users service.
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

// Authenticate exchanges credentials for a user record. A 4xx from the
// service and a transport failure are both plain errors; the caller decides
// how much to reveal.
func (c *Client) Authenticate(ctx context.Context, username, password string) (User, error) {
	payload := map[string]string{"username": username, "password": password}
	var user User
	if err := c.do(ctx, http.MethodPost, "/auth", payload, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Get fetches a single user by ID.
func (c *Client) Get(ctx context.Context, id int64) (User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/%d", id), nil, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// List returns every user account.
func (c *Client) List(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/all", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Create registers a new user account.
func (c *Client) Create(ctx context.Context, user User) (User, error) {
	var created User
	if err := c.do(ctx, http.MethodPost, "/create", user, &created); err != nil {
		return User{}, err
	}
	return created, nil
}

// Update replaces an existing user account.
func (c *Client) Update(ctx context.Context, id int64, user User) (User, error) {
	user.ID = id
	var updated User
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/%d/update", id), user, &updated); err != nil {
		return User{}, err
	}
	return updated, nil
}

// Delete removes a user account.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/%d/delete", id), nil, nil)
}

// SetType changes a user's role server-side. The change only becomes visible
// client-side after that user logs in again.
func (c *Client) SetType(ctx context.Context, user User) (User, error) {
	var updated User
	if err := c.do(ctx, http.MethodPost, "/setType", user, &updated); err != nil {
		return User{}, err
	}
	return updated, nil
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
		return fmt.Errorf("users service returned status %d", resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
