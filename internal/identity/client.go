// Package identity talks to the external identity provider, a GoTrue
// compatible auth service, on behalf of the server.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dreamrelay/backend/internal/models"
)

// ErrNotConfigured is returned when no provider URL was configured.
var ErrNotConfigured = errors.New("identity provider not configured")

// ProviderError is a non-2xx answer from the provider.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("identity provider: %d %s", e.Status, e.Message)
}

// User is the subset of the provider's user object the server relies on.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

// Identity resolves the display name the same way token claims do.
func (u User) Identity() models.Identity {
	return models.Identity{
		UserID:   u.ID,
		Username: DisplayName(u.UserMetadata, u.Email),
		Email:    u.Email,
	}
}

// DisplayName picks full_name, then name, from the metadata and falls back to
// the e-mail address.
func DisplayName(metadata map[string]any, email string) string {
	for _, key := range []string{"full_name", "name"} {
		if v, ok := metadata[key].(string); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return email
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient returns a client for the provider at baseURL. apiKey is sent as
// the apikey header on every call.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
	}
}

// Login exchanges e-mail and password for a session. The provider's JSON is
// returned untouched.
func (c *Client) Login(ctx context.Context, email, password string) (json.RawMessage, error) {
	body := map[string]string{"email": email, "password": password}
	return c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", body)
}

// Signup registers a user; name is stored as full_name metadata.
func (c *Client) Signup(ctx context.Context, email, password, name string) (json.RawMessage, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
		"data":     map[string]string{"full_name": name},
	}
	return c.do(ctx, http.MethodPost, "/auth/v1/signup", "", body)
}

// Logout revokes the session behind token.
func (c *Client) Logout(ctx context.Context, token string) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/v1/logout", token, nil)
	return err
}

// User resolves token to the user it belongs to.
func (c *Client) User(ctx context.Context, token string) (*User, error) {
	raw, err := c.do(ctx, http.MethodGet, "/auth/v1/user", token, nil)
	if err != nil {
		return nil, err
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if u.ID == "" {
		return nil, &ProviderError{Status: http.StatusUnauthorized, Message: "user not found"}
	}
	return &u, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body any) (json.RawMessage, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ProviderError{Status: resp.StatusCode, Message: errorMessage(data, resp.Status)}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return json.RawMessage("{}"), nil
	}
	return data, nil
}

// errorMessage extracts the provider's error text. GoTrue has used several
// field names over time.
func errorMessage(data []byte, fallback string) string {
	var body map[string]any
	if json.Unmarshal(data, &body) == nil {
		for _, key := range []string{"error_description", "msg", "message", "error"} {
			if v, ok := body[key].(string); ok && v != "" {
				return v
			}
		}
	}
	return fallback
}
