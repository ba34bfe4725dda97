// Package auth verifies the site administrator's credentials.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/crypto/bcrypt"

	"studiosite/internal/apperr"
)

// Issuer names the site in authenticator apps.
const Issuer = "Studio Site"

var (
	// ErrInvalidCredentials is returned for a wrong username, password or code.
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", apperr.ErrUnauthorized)
	// ErrCodeRequired is returned when TOTP is enabled and no code was sent.
	ErrCodeRequired = fmt.Errorf("verification code required: %w", apperr.ErrUnauthorized)
)

// Verifier checks a username and password.
type Verifier interface {
	Verify(ctx context.Context, username, password string) bool
}

// StaticVerifier accepts the single configured admin credential.
type StaticVerifier struct {
	username string
	hash     []byte
}

// NewStaticVerifier builds a verifier for username. passwordHash (bcrypt)
// takes precedence; otherwise the plain password is hashed once here so it
// is never compared in plain text.
func NewStaticVerifier(username, password, passwordHash string) (*StaticVerifier, error) {
	if username == "" {
		return nil, errors.New("admin username is empty")
	}
	if passwordHash != "" {
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return nil, fmt.Errorf("admin password hash: %w", err)
		}
		return &StaticVerifier{username: username, hash: []byte(passwordHash)}, nil
	}
	if password == "" {
		return nil, errors.New("admin password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return &StaticVerifier{username: username, hash: hash}, nil
}

func (v *StaticVerifier) Verify(_ context.Context, username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(v.hash, []byte(password)) == nil
	return userOK && passOK
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Authenticator runs the login checks: credentials, then the TOTP code
// when a secret is configured.
type Authenticator struct {
	verifier   Verifier
	totpSecret string
	now        func() time.Time
}

// NewAuthenticator creates an Authenticator. An empty totpSecret disables
// the second factor.
func NewAuthenticator(v Verifier, totpSecret string) *Authenticator {
	return &Authenticator{verifier: v, totpSecret: totpSecret, now: time.Now}
}

// TwoFactor reports whether logins need a TOTP code.
func (a *Authenticator) TwoFactor() bool { return a.totpSecret != "" }

// Authenticate returns nil when the login is accepted.
func (a *Authenticator) Authenticate(ctx context.Context, username, password, code string) error {
	if !a.verifier.Verify(ctx, username, password) {
		return ErrInvalidCredentials
	}
	if a.totpSecret == "" {
		return nil
	}
	if code == "" {
		return ErrCodeRequired
	}
	ok, err := totp.ValidateCustom(code, a.totpSecret, a.now(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil || !ok {
		return ErrInvalidCredentials
	}
	return nil
}

// GenerateTOTP creates a new TOTP secret for account and a QR code PNG of
// its provisioning URL.
func GenerateTOTP(account string) (*otp.Key, []byte, error) {
	key, err := totp.Generate(totp.GenerateOpts{Issuer: Issuer, AccountName: account})
	if err != nil {
		return nil, nil, fmt.Errorf("generate totp: %w", err)
	}
	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		return nil, nil, fmt.Errorf("encode totp qr: %w", err)
	}
	return key, png, nil
}
