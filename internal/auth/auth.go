// Package auth validates and mints the signed session tokens the
// dashboard's login flow issues. Tokens are HS256 JWTs carrying the
// username and role; they arrive either in the "session" cookie or as an
// Authorization bearer.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the session cookie the dashboard sets at login.
const CookieName = "session"

var (
	// ErrInvalidToken covers malformed, unsigned, or wrongly-signed tokens.
	ErrInvalidToken = errors.New("invalid session token")
	// ErrExpiredToken covers structurally valid tokens past their expiry.
	ErrExpiredToken = errors.New("session expired")
)

// Role is the access level carried in a session.
type Role string

const (
	// RoleAdmin may perform write operations.
	RoleAdmin Role = "Admin"
	// RoleViewer may only read.
	RoleViewer Role = "Viewer"
)

// Session is the validated identity attached to a request.
type Session struct {
	Username string
	Role     Role
}

// IsAdmin reports whether the session may perform write operations.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// Service signs and validates session tokens.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// NewService constructs a Service signing with the given secret.
// ttl bounds minted tokens; pass 0 for the 24h default.
func NewService(secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{secret: []byte(secret), ttl: ttl}
}

// Mint issues a signed session token. Used by operator tooling and tests;
// the production login flow lives outside this service.
func (s *Service) Mint(username string, role Role) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"username": username,
		"role":     string(role),
		"iat":      now.Unix(),
		"exp":      now.Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth.Service.Mint: %w", err)
	}
	return signed, nil
}

// Parse validates a token string and returns the session it carries.
// A "Bearer " prefix is tolerated so Authorization header values can be
// passed through unmodified.
func (s *Service) Parse(tokenString string) (Session, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return Session{}, ErrInvalidToken
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Session{}, ErrExpiredToken
		}
		return Session{}, ErrInvalidToken
	}
	if !token.Valid {
		return Session{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Session{}, ErrInvalidToken
	}
	username, ok := claims["username"].(string)
	if !ok || username == "" {
		return Session{}, ErrInvalidToken
	}
	roleStr, ok := claims["role"].(string)
	if !ok || roleStr == "" {
		return Session{}, ErrInvalidToken
	}

	return Session{Username: username, Role: Role(roleStr)}, nil
}

// FromRequest extracts and validates the session from an HTTP request,
// preferring the session cookie and falling back to the Authorization
// header.
func (s *Service) FromRequest(r *http.Request) (Session, error) {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return s.Parse(c.Value)
	}
	if h := r.Header.Get("Authorization"); h != "" {
		return s.Parse(h)
	}
	return Session{}, ErrInvalidToken
}
