package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mmhmddd/qatra-8eth-sub000/internal/dto"
	"github.com/mmhmddd/qatra-8eth-sub000/pkg/middleware/requestid"
)

// DefaultTimeout bounds every outbound request.
const DefaultTimeout = 30 * time.Second

const maxErrorBody = 64 << 10

// Operation names used for logging and metrics labels.
const (
	OpListJoinRequests = "list_join_requests"
	OpListMembers      = "list_members"
	OpGetMember        = "get_member"
	OpApprove          = "approve_join_request"
	OpReject           = "reject_join_request"
	OpDelete           = "delete_join_request"
	OpSubmit           = "submit_join_request"
	OpLowLecture       = "low_lecture_report"
	OpRemoveFromReport = "remove_from_report"
)

// RequestObserver receives timing for every outbound call.
type RequestObserver interface {
	ObserveAPIRequest(operation string, status int, duration time.Duration)
}

// MemberAPIRepository talks to the remote organisation API.
type MemberAPIRepository struct {
	baseURL  string
	client   *http.Client
	timeout  time.Duration
	observer RequestObserver
	logger   *zap.Logger
}

// MemberAPIOption configures the repository.
type MemberAPIOption func(*MemberAPIRepository)

// WithHTTPClient replaces the underlying HTTP client. Its Timeout is overwritten.
func WithHTTPClient(client *http.Client) MemberAPIOption {
	return func(r *MemberAPIRepository) {
		if client != nil {
			r.client = client
		}
	}
}

// WithTimeout overrides the per-request upper bound.
func WithTimeout(timeout time.Duration) MemberAPIOption {
	return func(r *MemberAPIRepository) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// WithRequestObserver records request timings.
func WithRequestObserver(observer RequestObserver) MemberAPIOption {
	return func(r *MemberAPIRepository) {
		r.observer = observer
	}
}

// NewMemberAPIRepository constructs the API client.
func NewMemberAPIRepository(baseURL string, logger *zap.Logger, opts ...MemberAPIOption) *MemberAPIRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &MemberAPIRepository{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		timeout: DefaultTimeout,
		logger:  logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	r.client.Timeout = r.timeout
	return r
}

// ListJoinRequests returns every join request.
func (r *MemberAPIRepository) ListJoinRequests(ctx context.Context, token string) ([]dto.RawRecord, error) {
	var out []dto.RawRecord
	if err := r.do(ctx, OpListJoinRequests, http.MethodGet, "/api/join-requests", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListMembers returns approved members.
func (r *MemberAPIRepository) ListMembers(ctx context.Context, token string) ([]dto.RawRecord, error) {
	var out []dto.RawRecord
	if err := r.do(ctx, OpListMembers, http.MethodGet, "/api/join-requests/members", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMember returns one member.
func (r *MemberAPIRepository) GetMember(ctx context.Context, token, id string) (*dto.MemberEnvelope, error) {
	var out dto.MemberEnvelope
	if err := r.do(ctx, OpGetMember, http.MethodGet, "/api/join-requests/members/"+url.PathEscape(id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ApproveJoinRequest approves a pending request.
func (r *MemberAPIRepository) ApproveJoinRequest(ctx context.Context, token, id string) (*dto.ApproveResponse, error) {
	var out dto.ApproveResponse
	if _, err := r.mutate(ctx, OpApprove, http.MethodPost, "/api/join-requests/"+url.PathEscape(id)+"/approve", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RejectJoinRequest rejects a pending request.
func (r *MemberAPIRepository) RejectJoinRequest(ctx context.Context, token, id string) (*dto.MessageResponse, error) {
	var out dto.MessageResponse
	if _, err := r.mutate(ctx, OpReject, http.MethodPost, "/api/join-requests/"+url.PathEscape(id)+"/reject", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteJoinRequest permanently deletes a request at any status.
func (r *MemberAPIRepository) DeleteJoinRequest(ctx context.Context, token, id string) (*dto.DeleteResponse, error) {
	var out dto.DeleteResponse
	if _, err := r.mutate(ctx, OpDelete, http.MethodDelete, "/api/join-requests/"+url.PathEscape(id), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitJoinRequest posts the public join form. No credential is sent.
func (r *MemberAPIRepository) SubmitJoinRequest(ctx context.Context, submission dto.JoinRequestSubmission) (*dto.MessageResponse, error) {
	body := struct {
		dto.JoinRequestSubmission
		NumberOfStudents int `json:"numberOfStudents"`
	}{submission, submission.NumberOfStudents()}
	var out dto.MessageResponse
	if _, err := r.mutate(ctx, OpSubmit, http.MethodPost, "/api/join-requests", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LowLectureReport returns the current week's low-lecture rows.
func (r *MemberAPIRepository) LowLectureReport(ctx context.Context, token string) (*dto.LowLectureReportResponse, error) {
	var out dto.LowLectureReportResponse
	if err := r.do(ctx, OpLowLecture, http.MethodGet, "/api/low-lecture-members", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveFromReport drops a member from the current week's report without deleting the member.
func (r *MemberAPIRepository) RemoveFromReport(ctx context.Context, token, memberID string) (*dto.SuccessMessageResponse, error) {
	var out dto.SuccessMessageResponse
	readable, err := r.mutate(ctx, OpRemoveFromReport, http.MethodDelete, "/api/low-lecture-members/"+url.PathEscape(memberID), token, nil, &out)
	if err != nil {
		return nil, err
	}
	if !readable {
		out.Success = true
	}
	return &out, nil
}

// mutate runs a state-changing call. Once the server answered 2xx the change is applied, so an
// unreadable body only loses the message: readable is false and dest keeps its zero value.
func (r *MemberAPIRepository) mutate(ctx context.Context, op, method, path, token string, payload, dest interface{}) (readable bool, err error) {
	err = r.do(ctx, op, method, path, token, payload, dest)
	if err != nil && errors.Is(err, errMalformedBody) {
		r.logger.Warn("mutation applied but response body unreadable", zap.String("operation", op), zap.Error(err))
		return false, nil
	}
	return true, err
}

func (r *MemberAPIRepository) do(ctx context.Context, op, method, path, token string, payload, dest interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return &APIError{Operation: op, Status: 0, Message: "encode request body", Err: err}
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return &APIError{Operation: op, Status: 0, Message: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestid.Header, requestid.FromContext(ctx))
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		r.observe(op, 0, time.Since(start))
		r.logger.Warn("api request failed", zap.String("operation", op), zap.Error(err))
		return &APIError{Operation: op, Status: 0, Message: transportMessage(err), Err: err}
	}
	defer resp.Body.Close()
	r.observe(op, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := decodeAPIError(op, resp)
		r.logger.Info("api request rejected",
			zap.String("operation", op),
			zap.Int("status", apiErr.Status),
			zap.String("code", apiErr.Code))
		return apiErr
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil && !errors.Is(err, io.EOF) {
		return &APIError{Operation: op, Status: resp.StatusCode, Message: "malformed response body", Err: fmt.Errorf("%w: decode %s: %v", errMalformedBody, op, err)}
	}
	return nil
}

func (r *MemberAPIRepository) observe(op string, status int, d time.Duration) {
	if r.observer != nil {
		r.observer.ObserveAPIRequest(op, status, d)
	}
}

func decodeAPIError(op string, resp *http.Response) *APIError {
	apiErr := &APIError{Operation: op, Status: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return apiErr
	}
	var body dto.ErrorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(body.Message)
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(body.Error)
	}
	apiErr.Code = strings.TrimSpace(body.Code)
	if apiErr.Code == "" {
		apiErr.Code = strings.TrimSpace(body.ErrorCode)
	}
	return apiErr
}

func transportMessage(err error) string {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return "request timed out"
	}
	return "network error"
}
