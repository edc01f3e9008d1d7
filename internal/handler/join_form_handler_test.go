package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmhmddd/qatra-8eth-sub000/internal/dto"
	appErrors "github.com/mmhmddd/qatra-8eth-sub000/pkg/errors"
)

type fakeSubmitter struct {
	got *dto.JoinRequestSubmission
	err error
}

func (f *fakeSubmitter) Submit(_ context.Context, submission dto.JoinRequestSubmission) (string, error) {
	f.got = &submission
	if f.err != nil {
		return "", f.err
	}
	return "join request received", nil
}

func joinFormRouter(s *fakeSubmitter) http.Handler {
	h := NewJoinFormHandler(s)
	r := newTestRouter()
	r.POST("/join", h.Submit)
	return r
}

func TestJoinFormHandlerSubmitCreated(t *testing.T) {
	s := &fakeSubmitter{}

	rec := perform(joinFormRouter(s), http.MethodPost, "/join", `{"name":"Lina","email":"lina@example.org","phone":"0790000000"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body ActionResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &body))
	assert.Equal(t, "join request received", body.Message)
	require.NotNil(t, s.got)
	assert.Equal(t, "Lina", s.got.Name)
}

func TestJoinFormHandlerMalformedBody(t *testing.T) {
	s := &fakeSubmitter{}

	rec := perform(joinFormRouter(s), http.MethodPost, "/join", `{"name":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, s.got)
}

func TestJoinFormHandlerDuplicateEmailIsConflict(t *testing.T) {
	s := &fakeSubmitter{err: appErrors.Clone(appErrors.ErrDuplicate, "")}

	rec := perform(joinFormRouter(s), http.MethodPost, "/join", `{"name":"Lina"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
}
