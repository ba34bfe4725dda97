package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Session describes the admin session held in the client's cookie jar.
type Session struct {
	Username string
}

// AuthAPI logs the client in and out.
type AuthAPI struct {
	c *Client
}

// Auth returns the authentication API.
func (c *Client) Auth() *AuthAPI { return &AuthAPI{c: c} }

type sessionBody struct {
	Authenticated bool `json:"authenticated"`
	User          struct {
		Username string `json:"username"`
	} `json:"user"`
}

// Login authenticates and stores the session cookie. code is the TOTP code
// and may be empty when two-factor login is off.
func (a *AuthAPI) Login(ctx context.Context, username, password, code string) (*Session, error) {
	raw, err := a.c.do(ctx, http.MethodPost, "/api/auth/login", nil, map[string]string{
		"username": username,
		"password": password,
		"code":     code,
	})
	if err != nil {
		return nil, err
	}
	var body sessionBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode login: %w", err)
	}
	return &Session{Username: body.User.Username}, nil
}

// Check validates the current session. An expired or missing session is
// an *Error with Status 401.
func (a *AuthAPI) Check(ctx context.Context) (*Session, error) {
	raw, err := a.c.do(ctx, http.MethodGet, "/api/auth/check", nil, nil)
	if err != nil {
		return nil, err
	}
	var body sessionBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if !body.Authenticated {
		return nil, &Error{Status: http.StatusUnauthorized, Message: "not authenticated"}
	}
	return &Session{Username: body.User.Username}, nil
}

// Logout ends the session.
func (a *AuthAPI) Logout(ctx context.Context) error {
	_, err := a.c.do(ctx, http.MethodGet, "/api/auth/logout", nil, nil)
	return err
}
