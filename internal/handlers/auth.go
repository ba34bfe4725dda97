package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"studiosite/internal/auth"
	"studiosite/internal/metrics"
	"studiosite/internal/middleware"
	"studiosite/internal/respond"
	"studiosite/internal/session"
)

// Auth groups the authentication endpoints.
type Auth struct {
	auth     *auth.Authenticator
	sessions *session.Store
}

// NewAuth creates a new Auth handler group.
func NewAuth(a *auth.Authenticator, sessions *session.Store) *Auth {
	return &Auth{auth: a, sessions: sessions}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Code     string `json:"code,omitempty"`
}

type userInfo struct {
	Username string `json:"username"`
}

// Login handles POST /api/auth/login and sets the session cookie.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respond.Err(w, r, err)
		return
	}
	if req.Username == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "username and password are required")
		return
	}

	if err := a.auth.Authenticate(r.Context(), req.Username, req.Password, req.Code); err != nil {
		if errors.Is(err, auth.ErrCodeRequired) {
			metrics.LoginAttempt("code_required")
			respond.JSON(w, http.StatusUnauthorized, map[string]any{
				"error":      "verification code required",
				"two_factor": true,
			})
			return
		}
		metrics.LoginAttempt("failure")
		slog.Warn("login failed", "username", req.Username, "remote", r.RemoteAddr)
		respond.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	data, err := a.sessions.Create(r.Context(), w, req.Username)
	if err != nil {
		respond.Err(w, r, err)
		return
	}
	metrics.LoginAttempt("success")
	slog.Info("admin logged in", "username", data.Username)
	respond.JSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    userInfo{Username: data.Username},
	})
}

// Logout handles GET and POST /api/auth/logout.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	respond.JSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Check handles GET /api/auth/check.
func (a *Auth) Check(w http.ResponseWriter, r *http.Request) {
	data := middleware.SessionFromCtx(r.Context())
	if data == nil {
		respond.JSON(w, http.StatusUnauthorized, map[string]any{
			"authenticated": false,
			"error":         "not authenticated",
		})
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          userInfo{Username: data.Username},
	})
}
