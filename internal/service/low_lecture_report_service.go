package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/mmhmddd/qatra-8eth-sub000/internal/dto"
	"github.com/mmhmddd/qatra-8eth-sub000/internal/models"
	appErrors "github.com/mmhmddd/qatra-8eth-sub000/pkg/errors"
	"github.com/mmhmddd/qatra-8eth-sub000/pkg/validate"
)

// LowLectureReportAPI is the slice of the remote API behind the weekly report.
type LowLectureReportAPI interface {
	LowLectureReport(ctx context.Context, token string) (*dto.LowLectureReportResponse, error)
	RemoveFromReport(ctx context.Context, token, memberID string) (*dto.SuccessMessageResponse, error)
}

// LowLectureReportService holds the current week's low-lecture rows.
// Removals are guarded per member id, so different rows can be removed concurrently.
// Loads are sequenced: a load that started before a newer applied load is dropped, and a load
// never brings back a row removed after it started.
type LowLectureReportService struct {
	api        LowLectureReportAPI
	session    CredentialProvider
	normalizer *Normalizer
	metrics    *MetricsService
	logger     *zap.Logger

	mu         sync.Mutex
	rows       []models.LowLectureMember
	debug      map[string]interface{}
	inFlight   map[string]struct{}
	loadSeq    uint64
	appliedSeq uint64
	// removed maps a member id to the last load sequence issued when its removal succeeded.
	removed map[string]uint64
}

// NewLowLectureReportService constructs an empty report.
func NewLowLectureReportService(api LowLectureReportAPI, session CredentialProvider, normalizer *Normalizer, metrics *MetricsService, logger *zap.Logger) *LowLectureReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if normalizer == nil {
		normalizer = NewNormalizer()
	}
	return &LowLectureReportService{
		api:        api,
		session:    session,
		normalizer: normalizer,
		metrics:    metrics,
		logger:     logger.With(zap.String("component", "low_lecture_report")),
		inFlight:   make(map[string]struct{}),
		removed:    make(map[string]uint64),
	}
}

// Load replaces the rows with the server's current report.
func (s *LowLectureReportService) Load(ctx context.Context) models.ActionResult {
	token, err := s.session.Credential(ctx)
	if err != nil {
		return s.fail(ctx, "load", err)
	}
	s.mu.Lock()
	s.loadSeq++
	seq := s.loadSeq
	s.mu.Unlock()

	resp, err := s.api.LowLectureReport(ctx, token)
	if err != nil {
		return s.fail(ctx, "load", err)
	}
	if !resp.Success {
		return s.fail(ctx, "load", appErrors.Clone(appErrors.ErrServer, resp.Message))
	}

	rows := make([]models.LowLectureMember, 0, len(resp.Members))
	for _, raw := range resp.Members {
		rows = append(rows, s.normalizer.NormalizeLowLectureMember(raw))
	}
	if len(resp.Debug) > 0 {
		s.logger.Debug("low lecture report diagnostics", zap.Any("debug", resp.Debug))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.appliedSeq {
		s.logger.Debug("stale low lecture report dropped", zap.Uint64("seq", seq), zap.Uint64("applied", s.appliedSeq))
		return models.SuccessResult(resp.Message)
	}
	s.appliedSeq = seq
	s.rows = s.withoutRemovedLocked(rows, seq)
	s.debug = resp.Debug
	return models.SuccessResult(resp.Message)
}

// Rows returns a copy of the current report.
func (s *LowLectureReportService) Rows() []models.LowLectureMember {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.LowLectureMember(nil), s.rows...)
}

// Debug returns the diagnostics the server attached to the last report, if any.
func (s *LowLectureReportService) Debug() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]interface{}, len(s.debug))
	for k, v := range s.debug {
		out[k] = v
	}
	return out
}

// Removing reports whether a removal for memberID is in flight.
func (s *LowLectureReportService) Removing(memberID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inFlight[memberID]
	return ok
}

// RemoveFromReport drops the member's row from this week's report. The member itself is kept.
func (s *LowLectureReportService) RemoveFromReport(ctx context.Context, memberID string) models.ActionResult {
	if !validate.IsValidEntityID(memberID) {
		return s.fail(ctx, "remove", appErrors.Local(appErrors.ErrInvalidID, ""))
	}
	token, err := s.session.Credential(ctx)
	if err != nil {
		return s.fail(ctx, "remove", err)
	}

	s.mu.Lock()
	if _, busy := s.inFlight[memberID]; busy {
		s.mu.Unlock()
		s.metrics.RecordGuardRejection(GuardScopeReport)
		return s.fail(ctx, "remove", appErrors.Local(appErrors.ErrBusy, ""))
	}
	s.inFlight[memberID] = struct{}{}
	s.mu.Unlock()

	resp, err := s.api.RemoveFromReport(ctx, token, memberID)
	if err == nil && !resp.Success {
		err = appErrors.Clone(appErrors.ErrServer, resp.Message)
	}

	s.mu.Lock()
	delete(s.inFlight, memberID)
	if err == nil {
		kept := s.rows[:0:0]
		for _, row := range s.rows {
			if row.ID != memberID {
				kept = append(kept, row)
			}
		}
		s.rows = kept
		s.removed[memberID] = s.loadSeq
	}
	s.mu.Unlock()

	if err != nil {
		return s.fail(ctx, "remove", err)
	}
	s.logger.Info("member removed from low lecture report", zap.String("member_id", memberID))
	return models.SuccessResult(resp.Message)
}

// withoutRemovedLocked drops rows whose removal succeeded after the load seq started.
// Removals older than seq are forgotten: that load already reflects them.
func (s *LowLectureReportService) withoutRemovedLocked(rows []models.LowLectureMember, seq uint64) []models.LowLectureMember {
	for id, removedAt := range s.removed {
		if removedAt < seq {
			delete(s.removed, id)
		}
	}
	if len(s.removed) == 0 {
		return rows
	}
	kept := rows[:0]
	for _, row := range rows {
		if _, gone := s.removed[row.ID]; !gone {
			kept = append(kept, row)
		}
	}
	return kept
}

func (s *LowLectureReportService) fail(ctx context.Context, op string, err error) models.ActionResult {
	return recoverFailure(ctx, s.session, s.metrics, s.logger, op, err)
}
