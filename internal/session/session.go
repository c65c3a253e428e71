// Package session keeps per-user document-site sessions.
//
// A session is created after a successful login and identified by a signed token
// handed back to the client. Each request resolves its own session from that token and
// carries it in its context; there is no process-wide "current user".
package session

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"docviewer/internal/config"
)

const issuer = "docviewer"

var (
	ErrInvalidToken   = errors.New("invalid session token")
	ErrSessionExpired = errors.New("session expired or revoked")
)

// User describes the signed-in document-site account.
type User struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Email     string `json:"email"`
	LoginName string `json:"loginName"`
}

// Session binds a document-site access token to a user for a bounded time.
type Session struct {
	ID          string    `json:"id"`
	User        User      `json:"user"`
	AccessToken string    `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Manager issues, resolves and revokes sessions.
// Sessions live in a size-bounded registry whose entries expire after the configured TTL.
type Manager struct {
	registry *expirable.LRU[string, *Session]
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

// NewManager builds a Manager. An empty secret is replaced by a random per-process key,
// which invalidates all tokens on restart.
func NewManager(cfg config.SessionConfig) (*Manager, error) {
	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
	}
	ttl := cfg.TTL()
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	size := cfg.MaxEntries
	if size <= 0 {
		size = 1024
	}
	return &Manager{
		registry: expirable.NewLRU[string, *Session](size, nil, ttl),
		secret:   secret,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

// Create registers a new session and returns it with its signed token.
func (m *Manager) Create(accessToken string, user User) (*Session, string, error) {
	if accessToken == "" {
		return nil, "", errors.New("access token is required")
	}
	now := m.now().UTC()
	s := &Session{
		ID:          uuid.NewString(),
		User:        user,
		AccessToken: accessToken,
		CreatedAt:   now,
		ExpiresAt:   now.Add(m.ttl),
	}

	claims := jwt.RegisteredClaims{
		ID:        s.ID,
		Issuer:    issuer,
		Subject:   user.LoginName,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, "", fmt.Errorf("sign session token: %w", err)
	}

	m.registry.Add(s.ID, s)
	return s, signed, nil
}

// Resolve verifies a token and returns the live session it names.
func (m *Manager) Resolve(token string) (*Session, error) {
	id, err := m.parse(token)
	if err != nil {
		return nil, err
	}
	s, ok := m.registry.Get(id)
	if !ok {
		return nil, ErrSessionExpired
	}
	return s, nil
}

// Revoke drops the session named by token. Unknown sessions are ignored.
func (m *Manager) Revoke(token string) error {
	id, err := m.parse(token)
	if err != nil {
		return err
	}
	m.registry.Remove(id)
	return nil
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	return m.registry.Len()
}

func (m *Manager) parse(token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrSessionExpired
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ID == "" {
		return "", ErrInvalidToken
	}
	return claims.ID, nil
}

type ctxKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session carried by ctx, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
