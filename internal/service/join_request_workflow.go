package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mmhmddd/qatra-8eth-sub000/internal/dto"
	"github.com/mmhmddd/qatra-8eth-sub000/internal/models"
	appErrors "github.com/mmhmddd/qatra-8eth-sub000/pkg/errors"
	"github.com/mmhmddd/qatra-8eth-sub000/pkg/jobs"
	"github.com/mmhmddd/qatra-8eth-sub000/pkg/validate"
)

// DefaultReconcileDelay is how long an approve or reject waits before the authoritative refetch.
const DefaultReconcileDelay = 1500 * time.Millisecond

const (
	reconcileJobType = "join_requests.reconcile"
	reconcileRetries = 2
)

// JoinRequestAPI is the slice of the remote API the workflow drives.
type JoinRequestAPI interface {
	ListJoinRequests(ctx context.Context, token string) ([]dto.RawRecord, error)
	ApproveJoinRequest(ctx context.Context, token, id string) (*dto.ApproveResponse, error)
	RejectJoinRequest(ctx context.Context, token, id string) (*dto.MessageResponse, error)
	DeleteJoinRequest(ctx context.Context, token, id string) (*dto.DeleteResponse, error)
}

// CredentialProvider hands out the bearer token and forgets it once the server rejects it.
type CredentialProvider interface {
	Credential(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

type mutationKind string

const (
	mutationApprove mutationKind = "approve"
	mutationReject  mutationKind = "reject"
	mutationDelete  mutationKind = "delete"
)

// statusPatch is an optimistic change waiting for a fetch that started after it.
type statusPatch struct {
	status       models.JoinRequestStatus
	accountEmail string
	afterSeq     uint64
}

// JoinRequestWorkflowOption customises the workflow.
type JoinRequestWorkflowOption func(*JoinRequestWorkflow)

// WithReconcileDelay overrides DefaultReconcileDelay.
func WithReconcileDelay(delay time.Duration) JoinRequestWorkflowOption {
	return func(w *JoinRequestWorkflow) {
		if delay >= 0 {
			w.reconcileDelay = delay
		}
	}
}

// WithAfterMutation registers a hook run after every successful approve, reject or delete.
func WithAfterMutation(hook func(ctx context.Context)) JoinRequestWorkflowOption {
	return func(w *JoinRequestWorkflow) {
		w.afterMutation = hook
	}
}

// WithWorkflowMetrics records failures and guard rejections.
func WithWorkflowMetrics(metrics *MetricsService) JoinRequestWorkflowOption {
	return func(w *JoinRequestWorkflow) {
		w.metrics = metrics
	}
}

// JoinRequestWorkflow owns the join request list of one admin session.
//
// At most one approve, reject or delete is in flight across the whole list. Reads are not guarded;
// a read that lands while a mutation is in flight is merged by id so the in-flight row keeps its local copy.
// Approve and reject patch the row optimistically and schedule a reconciling refetch; delete refetches at once.
type JoinRequestWorkflow struct {
	api        JoinRequestAPI
	session    CredentialProvider
	normalizer *Normalizer
	logger     *zap.Logger
	metrics    *MetricsService

	reconcileDelay time.Duration
	afterMutation  func(ctx context.Context)
	queue          *jobs.Queue

	mu         sync.Mutex
	entities   []models.JoinRequest
	inFlightID string
	ticket     uint64
	patches    map[string]statusPatch
	fetchSeq   uint64
	appliedSeq uint64
	closed     bool
}

// NewJoinRequestWorkflow constructs an idle workflow with an empty list. Call Start before mutating.
func NewJoinRequestWorkflow(api JoinRequestAPI, session CredentialProvider, normalizer *Normalizer, logger *zap.Logger, opts ...JoinRequestWorkflowOption) *JoinRequestWorkflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	if normalizer == nil {
		normalizer = NewNormalizer()
	}
	w := &JoinRequestWorkflow{
		api:            api,
		session:        session,
		normalizer:     normalizer,
		logger:         logger,
		reconcileDelay: DefaultReconcileDelay,
		patches:        make(map[string]statusPatch),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.queue = jobs.NewQueue("join-request-reconcile", w.handleReconcile, jobs.QueueConfig{
		Workers:    1,
		BufferSize: 8,
		MaxRetries: reconcileRetries,
		RetryDelay: w.reconcileDelay,
		Logger:     logger,
	})
	return w
}

// Start runs the reconcile dispatcher until ctx is done or Close is called.
func (w *JoinRequestWorkflow) Start(ctx context.Context) {
	w.queue.Start(ctx)
}

// Close detaches the workflow: later responses are discarded and pending reconciles are dropped.
// A reconcile that is already running is waited for, never cancelled.
func (w *JoinRequestWorkflow) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.queue.Stop()
}

// Entities returns a copy of the current list, newest first.
func (w *JoinRequestWorkflow) Entities() []models.JoinRequest {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]models.JoinRequest, len(w.entities))
	for i, e := range w.entities {
		out[i] = e.Clone()
	}
	return out
}

// InFlightID returns the id of the mutation in progress, or "" when idle.
func (w *JoinRequestWorkflow) InFlightID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inFlightID
}

// FetchAll reloads the list from the server.
func (w *JoinRequestWorkflow) FetchAll(ctx context.Context) models.ActionResult {
	token, err := w.session.Credential(ctx)
	if err != nil {
		return w.fail(ctx, "fetch", err)
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return w.fail(ctx, "fetch", appErrors.Local(appErrors.ErrClosed, ""))
	}
	w.fetchSeq++
	seq := w.fetchSeq
	w.mu.Unlock()

	raws, err := w.api.ListJoinRequests(ctx, token)
	if err != nil {
		return w.fail(ctx, "fetch", err)
	}
	fetched := w.normalizer.NormalizeJoinRequests(raws)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return models.FailureResult(appErrors.Local(appErrors.ErrClosed, ""))
	}
	if seq < w.appliedSeq {
		w.logger.Debug("stale join request fetch dropped", zap.Uint64("seq", seq), zap.Uint64("applied", w.appliedSeq))
		return models.SuccessResult("")
	}
	w.appliedSeq = seq
	w.applyPatchesLocked(fetched, seq)
	if w.inFlightID != "" {
		fetched = w.mergeInFlightLocked(fetched)
	}
	w.entities = fetched
	return models.SuccessResult("")
}

// Approve accepts a pending request. On success the row shows Approved and the generated login at once.
func (w *JoinRequestWorkflow) Approve(ctx context.Context, id string) models.ActionResult {
	return w.mutate(ctx, mutationApprove, id)
}

// Reject declines a pending request.
func (w *JoinRequestWorkflow) Reject(ctx context.Context, id string) models.ActionResult {
	return w.mutate(ctx, mutationReject, id)
}

// Delete removes a request or member. The row disappears through the refetch that follows.
func (w *JoinRequestWorkflow) Delete(ctx context.Context, id string) models.ActionResult {
	return w.mutate(ctx, mutationDelete, id)
}

func (w *JoinRequestWorkflow) mutate(ctx context.Context, kind mutationKind, id string) models.ActionResult {
	op := string(kind)
	if !validate.IsValidEntityID(id) {
		return w.fail(ctx, op, appErrors.Local(appErrors.ErrInvalidID, ""))
	}
	token, err := w.session.Credential(ctx)
	if err != nil {
		return w.fail(ctx, op, err)
	}

	ticket, pre := w.acquire(kind, id)
	if pre != nil {
		return w.fail(ctx, op, pre)
	}

	var (
		message      string
		accountEmail string
	)
	switch kind {
	case mutationApprove:
		var resp *dto.ApproveResponse
		if resp, err = w.api.ApproveJoinRequest(ctx, token, id); err == nil {
			message, accountEmail = resp.Message, resp.Email
		}
	case mutationReject:
		var resp *dto.MessageResponse
		if resp, err = w.api.RejectJoinRequest(ctx, token, id); err == nil {
			message = resp.Message
		}
	case mutationDelete:
		var resp *dto.DeleteResponse
		if resp, err = w.api.DeleteJoinRequest(ctx, token, id); err == nil {
			message = resp.Message
		}
	}

	w.mu.Lock()
	if w.ticket == ticket {
		w.inFlightID = ""
	}
	closed := w.closed
	if err == nil && !closed && kind != mutationDelete {
		w.patchLocked(kind, id, accountEmail)
	}
	w.mu.Unlock()

	if err != nil {
		result := w.fail(ctx, op, err)
		if result.Kind == appErrors.KindConflict && !closed {
			w.logger.Info("join request changed on the server, resynchronising", zap.String("id", id), zap.String("action", op))
			if refetch := w.FetchAll(ctx); !refetch.Success {
				w.logger.Warn("resynchronising fetch failed", zap.String("error_code", refetch.ErrorCode))
			}
		}
		return result
	}

	w.logger.Info("join request action succeeded", zap.String("action", op), zap.String("id", id))
	if w.afterMutation != nil {
		w.afterMutation(ctx)
	}

	result := models.SuccessResult(message)
	result.AccountEmail = accountEmail
	if closed {
		return result
	}
	if kind == mutationDelete {
		if refetch := w.FetchAll(ctx); !refetch.Success {
			w.logger.Warn("reconciling fetch after delete failed", zap.String("error_code", refetch.ErrorCode))
		}
		return result
	}
	w.scheduleReconcile(id)
	return result
}

// acquire checks the local preconditions and takes the guard in one critical section.
func (w *JoinRequestWorkflow) acquire(kind mutationKind, id string) (uint64, *appErrors.Error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return 0, appErrors.Local(appErrors.ErrClosed, "")
	}
	if w.inFlightID != "" {
		w.metrics.RecordGuardRejection(GuardScopeWorkflow)
		return 0, appErrors.Local(appErrors.ErrBusy, "")
	}
	idx := w.indexLocked(id)
	if idx < 0 {
		return 0, appErrors.Local(appErrors.ErrNotFound, "")
	}
	if kind != mutationDelete && !w.entities[idx].IsPending() {
		return 0, appErrors.Local(appErrors.ErrProcessed, "")
	}
	w.ticket++
	w.inFlightID = id
	return w.ticket, nil
}

func (w *JoinRequestWorkflow) patchLocked(kind mutationKind, id, accountEmail string) {
	patch := statusPatch{status: models.JoinRequestStatusApproved, accountEmail: accountEmail, afterSeq: w.fetchSeq}
	if kind == mutationReject {
		patch = statusPatch{status: models.JoinRequestStatusRejected, afterSeq: w.fetchSeq}
	}
	w.patches[id] = patch
	if idx := w.indexLocked(id); idx >= 0 {
		applyPatch(&w.entities[idx], patch)
	}
}

// applyPatchesLocked re-applies patches to a fetch that started before they were made and
// drops patches that a later fetch has superseded.
func (w *JoinRequestWorkflow) applyPatchesLocked(fetched []models.JoinRequest, seq uint64) {
	for id, patch := range w.patches {
		if seq > patch.afterSeq {
			delete(w.patches, id)
			continue
		}
		for i := range fetched {
			if fetched[i].ID == id {
				applyPatch(&fetched[i], patch)
			}
		}
	}
}

func (w *JoinRequestWorkflow) mergeInFlightLocked(fetched []models.JoinRequest) []models.JoinRequest {
	idx := w.indexLocked(w.inFlightID)
	if idx < 0 {
		return fetched
	}
	local := w.entities[idx]
	for i := range fetched {
		if fetched[i].ID == local.ID {
			fetched[i] = local
			return fetched
		}
	}
	fetched = append(fetched, local)
	SortNewestFirst(fetched)
	return fetched
}

func (w *JoinRequestWorkflow) indexLocked(id string) int {
	for i := range w.entities {
		if w.entities[i].ID == id {
			return i
		}
	}
	return -1
}

func applyPatch(entity *models.JoinRequest, patch statusPatch) {
	entity.Status = patch.status
	if patch.accountEmail != "" && entity.AccountEmail == "" {
		entity.AccountEmail = patch.accountEmail
	}
}

func (w *JoinRequestWorkflow) scheduleReconcile(id string) {
	job := jobs.Job{ID: uuid.NewString(), Type: reconcileJobType, Payload: id}
	if err := w.queue.EnqueueAfter(job, w.reconcileDelay); err != nil {
		w.logger.Warn("reconcile not scheduled", zap.String("id", id), zap.Error(err))
	}
}

func (w *JoinRequestWorkflow) handleReconcile(ctx context.Context, job jobs.Job) error {
	result := w.FetchAll(context.WithoutCancel(ctx))
	if result.Failed(appErrors.KindAuth) || result.Failed(appErrors.KindNoCredential) || result.ErrorCode == appErrors.ErrClosed.Code {
		// Retrying cannot help until the admin signs in again.
		return nil
	}
	if !result.Success {
		w.logger.Warn("reconciling fetch failed", zap.Any("id", job.Payload), zap.String("error_code", result.ErrorCode))
		return appErrors.Clone(appErrors.ErrServer, result.Message)
	}
	return nil
}

func (w *JoinRequestWorkflow) fail(ctx context.Context, op string, err error) models.ActionResult {
	return recoverFailure(ctx, w.session, w.metrics, w.logger.With(zap.String("component", "join_requests")), op, err)
}
