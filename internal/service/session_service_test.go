package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/mmhmddd/qatra-8eth-sub000/pkg/errors"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "admin", "exp": exp.Unix()})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestSessionServiceCredentialMissing(t *testing.T) {
	svc := NewSessionService(NewMemorySessionStore(), nil)

	_, err := svc.Credential(context.Background())

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.KindNoCredential, appErr.Kind)
	assert.True(t, appErr.Local)
}

func TestSessionServiceOpaqueTokenPassesThrough(t *testing.T) {
	store := NewMemorySessionStore()
	svc := NewSessionService(store, nil)
	require.NoError(t, svc.SignIn(context.Background(), " opaque-token "))

	token, err := svc.Credential(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "opaque-token", token)
}

func TestSessionServiceExpiredJWTIsClearedLocally(t *testing.T) {
	store := NewMemorySessionStore()
	_ = store.SetToken(context.Background(), signedToken(t, fixedNow.Add(-time.Minute)))
	svc := NewSessionService(store, nil)
	svc.now = func() time.Time { return fixedNow }

	_, err := svc.Credential(context.Background())

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.KindAuth, appErr.Kind)
	remaining, _ := store.Token(context.Background())
	assert.Empty(t, remaining)
}

func TestSessionServiceLiveJWT(t *testing.T) {
	svc := NewSessionService(NewMemorySessionStore(), nil)
	svc.now = func() time.Time { return fixedNow }
	live := signedToken(t, fixedNow.Add(time.Hour))
	require.NoError(t, svc.SignIn(context.Background(), live))

	token, err := svc.Credential(context.Background())

	require.NoError(t, err)
	assert.Equal(t, live, token)
}

func TestSessionServiceSignInRejectsBlankAndExpired(t *testing.T) {
	svc := NewSessionService(NewMemorySessionStore(), nil)
	svc.now = func() time.Time { return fixedNow }

	assert.Error(t, svc.SignIn(context.Background(), "  "))
	assert.Error(t, svc.SignIn(context.Background(), signedToken(t, fixedNow.Add(-time.Second))))
}
