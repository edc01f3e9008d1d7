package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmhmddd/qatra-8eth-sub000/internal/models"
	appErrors "github.com/mmhmddd/qatra-8eth-sub000/pkg/errors"
)

type fakeWorkflow struct {
	entities   []models.JoinRequest
	inFlight   string
	fetch      models.ActionResult
	action     models.ActionResult
	fetchCalls int
	lastAction string
	lastID     string
}

func (f *fakeWorkflow) FetchAll(context.Context) models.ActionResult {
	f.fetchCalls++
	return f.fetch
}

func (f *fakeWorkflow) Approve(_ context.Context, id string) models.ActionResult {
	f.lastAction, f.lastID = "approve", id
	return f.action
}

func (f *fakeWorkflow) Reject(_ context.Context, id string) models.ActionResult {
	f.lastAction, f.lastID = "reject", id
	return f.action
}

func (f *fakeWorkflow) Delete(_ context.Context, id string) models.ActionResult {
	f.lastAction, f.lastID = "delete", id
	return f.action
}

func (f *fakeWorkflow) Entities() []models.JoinRequest { return f.entities }

func (f *fakeWorkflow) InFlightID() string { return f.inFlight }

func joinRequestRouter(wf *fakeWorkflow) http.Handler {
	h := NewJoinRequestHandler(wf)
	r := newTestRouter()
	r.GET("/join-requests", h.List)
	r.POST("/join-requests/:id/approve", h.Approve)
	r.POST("/join-requests/:id/reject", h.Reject)
	r.DELETE("/join-requests/:id", h.Delete)
	return r
}

func TestJoinRequestHandlerListReturnsEntitiesWithoutRefresh(t *testing.T) {
	wf := &fakeWorkflow{
		entities: []models.JoinRequest{{ID: "a", Name: "Lina", Status: models.JoinRequestStatusPending}},
		inFlight: "a",
	}

	rec := perform(joinRequestRouter(wf), http.MethodGet, "/join-requests", "")

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	var items []models.JoinRequest
	require.NoError(t, json.Unmarshal(envelope.Data, &items))
	assert.Len(t, items, 1)
	assert.Equal(t, "a", envelope.Meta["inFlightId"])
	assert.Zero(t, wf.fetchCalls)
}

func TestJoinRequestHandlerListRefreshFailure(t *testing.T) {
	wf := &fakeWorkflow{fetch: models.FailureResult(appErrors.Local(appErrors.ErrNoCredential, ""))}

	rec := perform(joinRequestRouter(wf), http.MethodGet, "/join-requests?refresh=true", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrNoCredential.Code, envelope.Error.Code)
	assert.Equal(t, 1, wf.fetchCalls)
}

func TestJoinRequestHandlerApproveSuccess(t *testing.T) {
	result := models.SuccessResult("approved")
	result.AccountEmail = "lina.member@qatra.org"
	wf := &fakeWorkflow{action: result}

	rec := perform(joinRequestRouter(wf), http.MethodPost, "/join-requests/507f1f77bcf86cd799439011/approve", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body ActionResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &body))
	assert.Equal(t, "lina.member@qatra.org", body.AccountEmail)
	assert.Equal(t, "approve", wf.lastAction)
	assert.Equal(t, "507f1f77bcf86cd799439011", wf.lastID)
}

func TestJoinRequestHandlerBusyIsTooManyRequests(t *testing.T) {
	wf := &fakeWorkflow{action: models.FailureResult(appErrors.Local(appErrors.ErrBusy, ""))}

	rec := perform(joinRequestRouter(wf), http.MethodPost, "/join-requests/507f1f77bcf86cd799439011/reject", "")

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "reject", wf.lastAction)
}

func TestJoinRequestHandlerAuthFailureAsksForReauth(t *testing.T) {
	wf := &fakeWorkflow{action: models.FailureResult(appErrors.Clone(appErrors.ErrAuthExpired, ""))}

	rec := perform(joinRequestRouter(wf), http.MethodDelete, "/join-requests/507f1f77bcf86cd799439011", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.NotNil(t, envelope.Error)
	assert.True(t, envelope.Error.ReauthRequired)
	assert.Equal(t, "delete", wf.lastAction)
}
