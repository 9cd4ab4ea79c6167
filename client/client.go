// Package client is the Go consumer of the HTTP API: a typed client for
// the user endpoints plus a token manager that keeps the stored session
// fresh in the background.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/connexa-app/connexa/errors"
	"github.com/connexa-app/connexa/store"
)

// AuthResponse is the body of a successful login or refresh.
type AuthResponse struct {
	Message      string          `json:"message"`
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	User         store.Sanitized `json:"user"`
}

// RegisterResponse is the body of a successful registration.
type RegisterResponse struct {
	Message      string          `json:"message"`
	UserID       int64           `json:"userId"`
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	User         store.Sanitized `json:"user"`
}

// Client talks to the HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, name, email, password string) (*RegisterResponse, error) {
	var out RegisterResponse
	err := c.do(ctx, http.MethodPost, "/users/register", "", map[string]string{
		"name": name, "email": email, "password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/users/login", "", map[string]string{
		"email": email, "password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile returns the authenticated user.
func (c *Client) Profile(ctx context.Context, accessToken string) (*store.Sanitized, error) {
	var out struct {
		User store.Sanitized `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/profile", accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Logout revokes the presented token server-side.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/users/logout", accessToken, nil, nil)
}

// Refresh rotates the session and returns the new access token. It
// satisfies the TokenManager's Refresher contract.
func (c *Client) Refresh(ctx context.Context, accessToken string) (string, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/users/refresh", accessToken, nil, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("client: refresh response carried no access token")
	}
	return out.AccessToken, nil
}

// do sends one request and decodes the response. Non-2xx responses are
// decoded into the error envelope and returned as *errors.AppError so
// callers can branch on the code.
func (c *Client) do(ctx context.Context, method, path, bearer string, body, out interface{}) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope apperrors.Response
		if err := json.Unmarshal(data, &envelope); err != nil || envelope.Error == "" {
			return fmt.Errorf("client: %s %s returned %d", method, path, resp.StatusCode)
		}
		return &apperrors.AppError{
			Code:       envelope.Code,
			Message:    envelope.Error,
			Details:    envelope.Details,
			HTTPStatus: resp.StatusCode,
		}
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}
