package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mmhmddd/qatra-8eth-sub000/internal/models"
	appErrors "github.com/mmhmddd/qatra-8eth-sub000/pkg/errors"
)

type countingRefresher struct {
	calls  int32
	result models.ActionResult
}

func (c *countingRefresher) FetchAll(context.Context) models.ActionResult {
	atomic.AddInt32(&c.calls, 1)
	return c.result
}

func (c *countingRefresher) Load(context.Context) models.ActionResult {
	atomic.AddInt32(&c.calls, 1)
	return c.result
}

func TestNewRegistersConfiguredJobs(t *testing.T) {
	requests := &countingRefresher{result: models.SuccessResult("")}
	report := &countingRefresher{result: models.SuccessResult("")}

	s, err := New(Config{JoinRequestsSpec: "@every 1m", ReportSpec: "*/15 * * * *"}, requests, report, zaptest.NewLogger(t))

	require.NoError(t, err)
	assert.Equal(t, 2, s.Jobs())
}

func TestNewSkipsEmptySpecs(t *testing.T) {
	s, err := New(Config{JoinRequestsSpec: "@every 1m"}, &countingRefresher{}, &countingRefresher{}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, s.Jobs())
}

func TestNewRejectsInvalidSpec(t *testing.T) {
	_, err := New(Config{JoinRequestsSpec: "every minute"}, &countingRefresher{}, nil, nil)

	assert.Error(t, err)
}

func TestRefreshJobsCallThrough(t *testing.T) {
	requests := &countingRefresher{result: models.FailureResult(appErrors.Local(appErrors.ErrNoCredential, ""))}
	report := &countingRefresher{result: models.FailureResult(appErrors.ErrServer)}
	s, err := New(Config{}, requests, report, zaptest.NewLogger(t))
	require.NoError(t, err)

	s.RefreshJoinRequests()
	s.RefreshReport()

	assert.Equal(t, int32(1), atomic.LoadInt32(&requests.calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&report.calls))
}

func TestSchedulerRunsJobs(t *testing.T) {
	requests := &countingRefresher{result: models.SuccessResult("")}
	s, err := New(Config{JoinRequestsSpec: "@every 1s"}, requests, nil, zaptest.NewLogger(t))
	require.NoError(t, err)

	s.Start(context.Background())
	defer s.Stop()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&requests.calls) >= 1 }, 3*time.Second, 50*time.Millisecond)
}
