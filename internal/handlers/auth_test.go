package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"studiosite/internal/auth"
	"studiosite/internal/session"
)

func TestLogin(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantCode   int
		wantCookie bool
	}{
		{"valid", map[string]string{"username": "admin", "password": "s3cret-pass"}, http.StatusOK, true},
		{"wrong password", map[string]string{"username": "admin", "password": "nope"}, http.StatusUnauthorized, false},
		{"unknown user", map[string]string{"username": "root", "password": "s3cret-pass"}, http.StatusUnauthorized, false},
		{"missing password", map[string]string{"username": "admin"}, http.StatusBadRequest, false},
		{"malformed", "{", http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t)
			rec := api.do(t, http.MethodPost, "/api/auth/login", tt.body, false)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body)
			}

			var cookie *http.Cookie
			for _, c := range rec.Result().Cookies() {
				if c.Name == session.CookieName {
					cookie = c
				}
			}
			if (cookie != nil) != tt.wantCookie {
				t.Fatalf("cookie set = %v, want %v", cookie != nil, tt.wantCookie)
			}
			if cookie != nil && !cookie.HttpOnly {
				t.Error("session cookie must be HttpOnly")
			}
			if tt.wantCode == http.StatusUnauthorized && strings.Contains(rec.Body.String(), "password") {
				t.Errorf("failure must not say which credential was wrong: %s", rec.Body)
			}
		})
	}
}

func TestLoginCheckLogout(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/auth/check", nil, false)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous check = %d, want 401", rec.Code)
	}
	var anon map[string]any
	decode(t, rec, &anon)
	if anon["authenticated"] != false {
		t.Errorf("anonymous check body = %v", anon)
	}

	rec = api.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": "s3cret-pass"}, false)
	cookie := rec.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/api/auth/check", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("check with cookie = %d", rec.Code)
	}
	var body struct {
		Authenticated bool `json:"authenticated"`
		User          struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	decode(t, rec, &body)
	if !body.Authenticated || body.User.Username != "admin" {
		t.Errorf("check body = %+v", body)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/auth/logout", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout = %d", rec.Code)
	}
	cleared := rec.Result().Cookies()
	if len(cleared) == 0 || cleared[0].MaxAge >= 0 {
		t.Errorf("logout must expire the cookie, got %+v", cleared)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/auth/check", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("check with logged-out token = %d, want 401", rec.Code)
	}
}

func TestLoginRequiresCodeWhenTwoFactorEnabled(t *testing.T) {
	key, _, err := auth.GenerateTOTP("admin")
	if err != nil {
		t.Fatalf("GenerateTOTP: %v", err)
	}
	verifier, err := auth.NewStaticVerifier("admin", "s3cret-pass", "")
	if err != nil {
		t.Fatal(err)
	}
	h := NewAuth(auth.NewAuthenticator(verifier, key.Secret()), session.NewStore(nil, testSecret, false))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"username":"admin","password":"s3cret-pass"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	var body map[string]any
	decode(t, rec, &body)
	if body["two_factor"] != true {
		t.Errorf("body = %v, want two_factor flag", body)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("no session may be issued without the code")
	}
}
