package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mmhmddd/qatra-8eth-sub000/internal/dto"
	"github.com/mmhmddd/qatra-8eth-sub000/pkg/middleware/requestid"
)

const testID = "507f1f77bcf86cd799439011"

type observerStub struct {
	mu    sync.Mutex
	calls []string
	codes []int
}

func (o *observerStub) ObserveAPIRequest(operation string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, operation)
	o.codes = append(o.codes, status)
}

func TestMemberAPIListJoinRequestsSendsBearerAndRequestID(t *testing.T) {
	var gotAuth, gotReqID, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get(requestid.Header)
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`[{"_id":"a","name":"Lina"},{"id":"b"}]`))
	}))
	defer server.Close()

	observer := &observerStub{}
	repo := NewMemberAPIRepository(server.URL+"/", zaptest.NewLogger(t), WithRequestObserver(observer))

	ctx := requestid.WithValue(context.Background(), "req-123")
	records, err := repo.ListJoinRequests(ctx, "tok")

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Lina", records[0].String("name"))
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "req-123", gotReqID)
	assert.Equal(t, "/api/join-requests", gotPath)
	assert.Equal(t, []string{OpListJoinRequests}, observer.calls)
	assert.Equal(t, []int{http.StatusOK}, observer.codes)
}

func TestMemberAPIApproveDecodesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/join-requests/"+testID+"/approve", r.URL.Path)
		_, _ = w.Write([]byte(`{"message":"approved","email":"lina.volunteer@org.example"}`))
	}))
	defer server.Close()

	repo := NewMemberAPIRepository(server.URL, nil)
	resp, err := repo.ApproveJoinRequest(context.Background(), "tok", testID)

	require.NoError(t, err)
	assert.Equal(t, "approved", resp.Message)
	assert.Equal(t, "lina.volunteer@org.example", resp.Email)
}

func TestMemberAPIErrorBodyIsDecoded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Request already processed","errorCode":"ALREADY_PROCESSED"}`))
	}))
	defer server.Close()

	repo := NewMemberAPIRepository(server.URL, nil)
	_, err := repo.RejectJoinRequest(context.Background(), "tok", testID)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "ALREADY_PROCESSED", apiErr.Code)
	assert.Equal(t, "Request already processed", apiErr.Message)
	assert.Equal(t, OpReject, apiErr.Operation)
}

func TestMemberAPITimeoutReportsStatusZero(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	repo := NewMemberAPIRepository(server.URL, nil, WithTimeout(20*time.Millisecond))
	_, err := repo.DeleteJoinRequest(context.Background(), "tok", testID)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 0, apiErr.Status)
	assert.Equal(t, "request timed out", apiErr.Message)
}

func TestMemberAPIConnectionRefusedReportsStatusZero(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	repo := NewMemberAPIRepository(url, nil)
	_, err := repo.LowLectureReport(context.Background(), "tok")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 0, apiErr.Status)
}

func TestMemberAPISubmitSendsNoCredential(t *testing.T) {
	var gotAuth string
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"message":"received"}`))
	}))
	defer server.Close()

	repo := NewMemberAPIRepository(server.URL, nil)
	resp, err := repo.SubmitJoinRequest(context.Background(), dto.JoinRequestSubmission{
		Name:     "Lina",
		Email:    "lina@example.org",
		Students: []dto.StudentSubmission{{Name: "Omar", Email: "omar@example.org"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "received", resp.Message)
	assert.Empty(t, gotAuth)
	assert.Equal(t, "Lina", body["name"])
	assert.Equal(t, float64(1), body["numberOfStudents"])
}

func TestMemberAPIRemoveFromReport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/low-lecture-members/"+testID, r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"message":"removed"}`))
	}))
	defer server.Close()

	repo := NewMemberAPIRepository(server.URL, nil)
	resp, err := repo.RemoveFromReport(context.Background(), "tok", testID)

	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestMemberAPIMutationWithUnreadableBodyStillSucceeds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>proxy page</html>`))
	}))
	defer server.Close()
	repo := NewMemberAPIRepository(server.URL, zaptest.NewLogger(t))

	approved, err := repo.ApproveJoinRequest(context.Background(), "tok", testID)
	require.NoError(t, err)
	assert.Empty(t, approved.Message)
	assert.Empty(t, approved.Email)

	rejected, err := repo.RejectJoinRequest(context.Background(), "tok", testID)
	require.NoError(t, err)
	assert.Empty(t, rejected.Message)

	_, err = repo.DeleteJoinRequest(context.Background(), "tok", testID)
	require.NoError(t, err)

	removed, err := repo.RemoveFromReport(context.Background(), "tok", testID)
	require.NoError(t, err)
	assert.True(t, removed.Success)
}

func TestMemberAPIReadWithUnreadableBodyFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"members":`))
	}))
	defer server.Close()
	repo := NewMemberAPIRepository(server.URL, nil)

	_, err := repo.ListJoinRequests(context.Background(), "tok")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusOK, apiErr.Status)
	assert.ErrorIs(t, err, errMalformedBody)
}
