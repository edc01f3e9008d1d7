package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/mmhmddd/qatra-8eth-sub000/pkg/errors"
)

type fakeSessionManager struct {
	token    string
	signErr  error
	clearErr error
	cleared  bool
}

func (f *fakeSessionManager) SignIn(_ context.Context, token string) error {
	f.token = token
	return f.signErr
}

func (f *fakeSessionManager) Clear(context.Context) error {
	f.cleared = true
	return f.clearErr
}

func sessionRouter(s *fakeSessionManager, after func(context.Context)) http.Handler {
	h := NewSessionHandler(s, after)
	r := newTestRouter()
	r.PUT("/session", h.SignIn)
	r.DELETE("/session", h.SignOut)
	return r
}

func TestSessionHandlerSignInStoresTokenAndRunsHook(t *testing.T) {
	s := &fakeSessionManager{}
	refreshed := false

	rec := perform(sessionRouter(s, func(context.Context) { refreshed = true }), http.MethodPut, "/session", `{"token":"abc"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", s.token)
	assert.True(t, refreshed)
}

func TestSessionHandlerSignInRequiresToken(t *testing.T) {
	s := &fakeSessionManager{}

	rec := perform(sessionRouter(s, nil), http.MethodPut, "/session", `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, s.token)
}

func TestSessionHandlerSignInRejectsExpiredToken(t *testing.T) {
	s := &fakeSessionManager{signErr: appErrors.Local(appErrors.ErrAuthExpired, "")}
	refreshed := false

	rec := perform(sessionRouter(s, func(context.Context) { refreshed = true }), http.MethodPut, "/session", `{"token":"old"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, refreshed)
}

func TestSessionHandlerSignOut(t *testing.T) {
	s := &fakeSessionManager{}

	rec := perform(sessionRouter(s, nil), http.MethodDelete, "/session", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, s.cleared)
}

func TestSessionHandlerSignOutStoreFailure(t *testing.T) {
	s := &fakeSessionManager{clearErr: errors.New("redis down")}

	rec := perform(sessionRouter(s, nil), http.MethodDelete, "/session", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
