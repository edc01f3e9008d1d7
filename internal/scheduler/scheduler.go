// Package scheduler re-runs the console's reads on a cron schedule so time-based filtering
// (message display windows, the weekly report) is applied even when nobody refreshes.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mmhmddd/qatra-8eth-sub000/internal/models"
	appErrors "github.com/mmhmddd/qatra-8eth-sub000/pkg/errors"
)

// JoinRequestRefresher reloads the join request list.
type JoinRequestRefresher interface {
	FetchAll(ctx context.Context) models.ActionResult
}

// ReportLoader reloads the low-lecture report.
type ReportLoader interface {
	Load(ctx context.Context) models.ActionResult
}

// Config holds cron specs; an empty spec disables that job.
type Config struct {
	JoinRequestsSpec string
	ReportSpec       string
}

// Scheduler manages the periodic refresh jobs.
type Scheduler struct {
	cron     *cron.Cron
	requests JoinRequestRefresher
	report   ReportLoader
	logger   *zap.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// New registers the jobs. An invalid spec is an error rather than a silently missing job.
func New(cfg Config, requests JoinRequestRefresher, report ReportLoader, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cronLogger := zapCronLogger{sugar: logger.Sugar()}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		requests: requests,
		report:   report,
		logger:   logger,
		ctx:      context.Background(),
	}

	if cfg.JoinRequestsSpec != "" && requests != nil {
		if _, err := s.cron.AddFunc(cfg.JoinRequestsSpec, s.RefreshJoinRequests); err != nil {
			return nil, fmt.Errorf("register join request refresh %q: %w", cfg.JoinRequestsSpec, err)
		}
	}
	if cfg.ReportSpec != "" && report != nil {
		if _, err := s.cron.AddFunc(cfg.ReportSpec, s.RefreshReport); err != nil {
			return nil, fmt.Errorf("register report refresh %q: %w", cfg.ReportSpec, err)
		}
	}
	return s, nil
}

// Start begins the cron scheduler; jobs run with ctx until Stop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()
	s.cron.Start()
	s.logger.Info("refresh scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	done := s.cron.Stop()
	<-done.Done()
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	s.logger.Info("refresh scheduler stopped")
}

// Jobs returns the number of registered jobs.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

// RefreshJoinRequests runs one join request refresh.
func (s *Scheduler) RefreshJoinRequests() {
	s.logResult("join_requests", s.requests.FetchAll(s.context()))
}

// RefreshReport runs one low-lecture report refresh.
func (s *Scheduler) RefreshReport() {
	s.logResult("low_lecture_report", s.report.Load(s.context()))
}

func (s *Scheduler) context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

func (s *Scheduler) logResult(job string, result models.ActionResult) {
	switch {
	case result.Success:
		s.logger.Debug("scheduled refresh completed", zap.String("job", job))
	case result.Kind == appErrors.KindNoCredential:
		// nobody is signed in yet
		s.logger.Debug("scheduled refresh skipped", zap.String("job", job))
	default:
		s.logger.Warn("scheduled refresh failed",
			zap.String("job", job),
			zap.String("error_code", result.ErrorCode),
			zap.String("kind", string(result.Kind)),
		)
	}
}

type zapCronLogger struct {
	sugar *zap.SugaredLogger
}

func (l zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}
