// Package session issues and validates the admin session cookie. The cookie
// carries an HS256-signed JWT naming a session ID; when a Valkey client is
// configured the session record lives there too, so logout revokes the
// token server-side instead of only clearing the cookie. Without Valkey,
// logged-out session IDs are remembered in process until their tokens
// expire; a restart forgets them.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

const (
	// CookieName is the name of the session cookie sent to the browser.
	CookieName = "studio_session"

	// DefaultTTL is how long a session stays valid.
	DefaultTTL = 24 * time.Hour

	// keyPrefix namespaces session keys in Valkey to avoid collisions.
	keyPrefix = "session:"

	// idLength is the byte length of the random session ID (32 bytes = 64 hex chars).
	idLength = 32

	issuer = "studiosite"
)

// Data is the server-side view of an authenticated session.
type Data struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Claims are the JWT claims stored in the cookie.
type Claims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// Store manages the session lifecycle.
type Store struct {
	client *redis.Client
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time // session ID -> token expiry
}

// NewStore creates a session store. client may be nil, in which case
// sessions are validated from the signed cookie alone. secure marks the
// cookie Secure (serve behind TLS).
func NewStore(client *redis.Client, secret string, secure bool) *Store {
	return &Store{
		client:  client,
		secret:  []byte(secret),
		ttl:     DefaultTTL,
		secure:  secure,
		now:     time.Now,
		revoked: map[string]time.Time{},
	}
}

// Create starts a session for username and sets the session cookie.
func (s *Store) Create(ctx context.Context, w http.ResponseWriter, username string) (*Data, error) {
	id, err := generateID()
	if err != nil {
		return nil, fmt.Errorf("session create: %w", err)
	}

	now := s.now()
	data := &Data{ID: id, Username: username, CreatedAt: now, ExpiresAt: now.Add(s.ttl)}

	if s.client != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("session marshal: %w", err)
		}
		if err := s.client.Set(ctx, keyPrefix+id, payload, s.ttl).Err(); err != nil {
			return nil, fmt.Errorf("session store: %w", err)
		}
	}

	token, err := s.sign(data)
	if err != nil {
		return nil, fmt.Errorf("session sign: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl.Seconds()),
	})
	return data, nil
}

// Get returns the session named by the request cookie, or nil when there
// is no cookie or the token is invalid, expired or revoked.
func (s *Store) Get(ctx context.Context, r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, nil
	}
	claims, err := s.parse(cookie.Value)
	if err != nil {
		return nil, nil
	}

	if s.client == nil {
		if s.isRevoked(claims.SID) {
			return nil, nil
		}
		return &Data{
			ID:        claims.SID,
			Username:  claims.Subject,
			CreatedAt: claims.IssuedAt.Time,
			ExpiresAt: claims.ExpiresAt.Time,
		}, nil
	}

	payload, err := s.client.Get(ctx, keyPrefix+claims.SID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("session unmarshal: %w", err)
	}
	return &data, nil
}

// Destroy revokes the session and clears the cookie.
func (s *Store) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		MaxAge:   -1,
	})

	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}
	claims, err := s.parse(cookie.Value)
	if err != nil {
		return nil
	}
	if s.client == nil {
		s.revoke(claims.SID, claims.ExpiresAt.Time)
		return nil
	}
	if err := s.client.Del(ctx, keyPrefix+claims.SID).Err(); err != nil {
		return fmt.Errorf("session destroy: %w", err)
	}
	return nil
}

// revoke remembers sid until its token expires and drops entries whose
// tokens have already expired.
func (s *Store) revoke(sid string, expires time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, exp := range s.revoked {
		if !exp.After(now) {
			delete(s.revoked, id)
		}
	}
	s.revoked[sid] = expires
}

func (s *Store) isRevoked(sid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[sid]
	return ok
}

func (s *Store) sign(data *Data) (string, error) {
	claims := Claims{
		SID: data.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   data.Username,
			IssuedAt:  jwt.NewNumericDate(data.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(data.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Store) parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.SID == "" {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}

// generateID creates a cryptographically random session identifier.
func generateID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
