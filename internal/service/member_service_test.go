package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmhmddd/qatra-8eth-sub000/internal/dto"
	"github.com/mmhmddd/qatra-8eth-sub000/internal/repository"
	appErrors "github.com/mmhmddd/qatra-8eth-sub000/pkg/errors"
)

type fakeMemberAPI struct {
	members   []dto.RawRecord
	envelope  *dto.MemberEnvelope
	err       error
	listCalls int
	getCalls  int
}

func (f *fakeMemberAPI) ListMembers(context.Context, string) ([]dto.RawRecord, error) {
	f.listCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.members, nil
}

func (f *fakeMemberAPI) GetMember(context.Context, string, string) (*dto.MemberEnvelope, error) {
	f.getCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.envelope, nil
}

func memberWithMessage(displayUntil string) dto.RawRecord {
	return dto.RawRecord{
		"_id":       pendingID,
		"name":      "lina",
		"email":     "lina@example.org",
		"status":    "Approved",
		"createdAt": "2026-03-01T10:00:00Z",
		"messages": []interface{}{
			map[string]interface{}{"_id": "m1", "content": "meeting moved", "displayUntil": displayUntil},
		},
	}
}

func newTestMemberService(t *testing.T, api *fakeMemberAPI, now *time.Time) (*MemberService, *MetricsService) {
	t.Helper()
	session, _ := signedInSession(t)
	metrics := NewMetricsService()
	cache := NewCacheService(NewMemoryCacheRepository(), metrics, time.Minute, nil, true)
	svc := NewMemberService(MemberServiceParams{
		API:        api,
		Session:    session,
		Normalizer: NewNormalizer(WithClock(func() time.Time { return *now })),
		Cache:      cache,
		Metrics:    metrics,
	})
	return svc, metrics
}

func TestMemberServiceListUsesCache(t *testing.T) {
	api := &fakeMemberAPI{members: []dto.RawRecord{memberWithMessage("2026-03-15T00:00:00Z")}}
	now := fixedNow
	svc, metrics := newTestMemberService(t, api, &now)

	first, hit, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, first, 1)

	second, hit, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, api.listCalls)
	assert.InDelta(t, 0.5, metrics.Snapshot().CacheHitRatio, 0.001)
}

func TestMemberServiceCacheHitStillDropsExpiredMessages(t *testing.T) {
	api := &fakeMemberAPI{members: []dto.RawRecord{memberWithMessage("2026-03-14T12:30:00Z")}}
	now := fixedNow
	svc, _ := newTestMemberService(t, api, &now)

	fresh, _, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, fresh[0].Messages, 1)

	now = fixedNow.Add(30 * time.Minute)
	cached, hit, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Empty(t, cached[0].Messages)
}

func TestMemberServiceInvalidateForcesReload(t *testing.T) {
	api := &fakeMemberAPI{members: []dto.RawRecord{memberWithMessage("")}}
	now := fixedNow
	svc, _ := newTestMemberService(t, api, &now)

	_, _, err := svc.List(context.Background())
	require.NoError(t, err)
	svc.Invalidate(context.Background())
	_, hit, err := svc.List(context.Background())
	require.NoError(t, err)

	assert.False(t, hit)
	assert.Equal(t, 2, api.listCalls)
}

func TestMemberServiceGet(t *testing.T) {
	api := &fakeMemberAPI{envelope: &dto.MemberEnvelope{Success: true, Member: memberWithMessage("")}}
	now := fixedNow
	svc, _ := newTestMemberService(t, api, &now)

	member, hit, err := svc.Get(context.Background(), pendingID)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "lina", member.Name)

	_, hit, err = svc.Get(context.Background(), pendingID)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, api.getCalls)
}

func TestMemberServiceGetInvalidID(t *testing.T) {
	api := &fakeMemberAPI{}
	now := fixedNow
	svc, _ := newTestMemberService(t, api, &now)

	_, _, err := svc.Get(context.Background(), "not-an-id")

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.KindValidation, appErr.Kind)
	assert.True(t, appErr.Local)
	assert.Zero(t, api.getCalls)
}

func TestMemberServiceGetUnsuccessfulEnvelope(t *testing.T) {
	api := &fakeMemberAPI{envelope: &dto.MemberEnvelope{Success: false, Message: "member not found"}}
	now := fixedNow
	svc, _ := newTestMemberService(t, api, &now)

	_, _, err := svc.Get(context.Background(), pendingID)

	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestMemberServiceListNotFound(t *testing.T) {
	api := &fakeMemberAPI{err: &repository.APIError{Operation: "list_members", Status: 404, Message: "no members"}}
	now := fixedNow
	svc, _ := newTestMemberService(t, api, &now)

	_, _, err := svc.List(context.Background())

	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
