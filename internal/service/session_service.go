package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	appErrors "github.com/mmhmddd/qatra-8eth-sub000/pkg/errors"
)

// SessionStore holds the admin bearer token. An empty token with a nil error means signed out.
type SessionStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// MemorySessionStore keeps the token in process memory.
type MemorySessionStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemorySessionStore constructs an empty store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

// Token implements SessionStore.
func (s *MemorySessionStore) Token(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

// SetToken implements SessionStore.
func (s *MemorySessionStore) SetToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// Clear implements SessionStore.
func (s *MemorySessionStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// SessionService hands out the bearer credential for outbound calls.
type SessionService struct {
	store  SessionStore
	now    func() time.Time
	logger *zap.Logger
}

// NewSessionService wraps a store.
func NewSessionService(store SessionStore, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = NewMemorySessionStore()
	}
	return &SessionService{store: store, now: time.Now, logger: logger}
}

// Credential returns the current token or a local failure: no_credential when signed out,
// auth when the token is a JWT whose exp has already passed (the token is cleared in that case).
func (s *SessionService) Credential(ctx context.Context) (string, error) {
	token, err := s.store.Token(ctx)
	if err != nil {
		s.logger.Warn("session store read failed", zap.Error(err))
		return "", appErrors.Local(appErrors.ErrNoCredential, "")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", appErrors.Local(appErrors.ErrNoCredential, "")
	}
	if s.expired(token) {
		_ = s.Clear(ctx)
		return "", appErrors.Local(appErrors.ErrAuthExpired, "")
	}
	return token, nil
}

// SignIn stores a token issued by the remote API.
func (s *SessionService) SignIn(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return appErrors.Local(appErrors.ErrValidation, "token is required")
	}
	if s.expired(token) {
		return appErrors.Local(appErrors.ErrAuthExpired, "")
	}
	if err := s.store.SetToken(ctx, token); err != nil {
		return appErrors.Wrap(err, appErrors.ErrServer, "failed to store session")
	}
	return nil
}

// Clear drops the stored credential.
func (s *SessionService) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		s.logger.Warn("session clear failed", zap.Error(err))
		return err
	}
	return nil
}

// expired only inspects the exp claim; signature checks belong to the server.
// Opaque (non-JWT) tokens are never considered expired locally.
func (s *SessionService) expired(token string) bool {
	if strings.Count(token, ".") != 2 {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(s.now())
}
