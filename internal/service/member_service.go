package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mmhmddd/qatra-8eth-sub000/internal/dto"
	"github.com/mmhmddd/qatra-8eth-sub000/internal/models"
	appErrors "github.com/mmhmddd/qatra-8eth-sub000/pkg/errors"
	"github.com/mmhmddd/qatra-8eth-sub000/pkg/validate"
)

const (
	memberCachePattern = "members:*"
	memberListCacheKey = "members:list"
)

// MemberAPI is the slice of the remote API behind the member directory.
type MemberAPI interface {
	ListMembers(ctx context.Context, token string) ([]dto.RawRecord, error)
	GetMember(ctx context.Context, token, id string) (*dto.MemberEnvelope, error)
}

// MemberServiceParams groups constructor dependencies.
type MemberServiceParams struct {
	API        MemberAPI
	Session    CredentialProvider
	Normalizer *Normalizer
	Cache      *CacheService
	Metrics    *MetricsService
	Logger     *zap.Logger
	CacheTTL   time.Duration
}

// MemberService reads approved members. Raw payloads are cached, never normalized ones,
// so message expiry is evaluated again on every read.
type MemberService struct {
	api        MemberAPI
	session    CredentialProvider
	normalizer *Normalizer
	cache      *CacheService
	metrics    *MetricsService
	logger     *zap.Logger
	cacheTTL   time.Duration
}

// NewMemberService constructs a MemberService.
func NewMemberService(params MemberServiceParams) *MemberService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	normalizer := params.Normalizer
	if normalizer == nil {
		normalizer = NewNormalizer()
	}
	return &MemberService{
		api:        params.API,
		session:    params.Session,
		normalizer: normalizer,
		cache:      params.Cache,
		metrics:    params.Metrics,
		logger:     logger.With(zap.String("component", "members")),
		cacheTTL:   params.CacheTTL,
	}
}

// List returns approved members, newest first, and whether the cache served them.
func (s *MemberService) List(ctx context.Context) ([]models.JoinRequest, bool, error) {
	token, err := s.session.Credential(ctx)
	if err != nil {
		return nil, false, s.fail(ctx, "list_members", err)
	}

	var raws []dto.RawRecord
	if s.cache.Get(ctx, memberListCacheKey, &raws) {
		return s.normalizer.NormalizeJoinRequests(raws), true, nil
	}

	raws, err = s.api.ListMembers(ctx, token)
	if err != nil {
		return nil, false, s.fail(ctx, "list_members", err)
	}
	s.cache.Set(ctx, memberListCacheKey, raws, s.cacheTTL)
	return s.normalizer.NormalizeJoinRequests(raws), false, nil
}

// Get returns one member by id.
func (s *MemberService) Get(ctx context.Context, id string) (*models.JoinRequest, bool, error) {
	if !validate.IsValidEntityID(id) {
		return nil, false, s.fail(ctx, "get_member", appErrors.Local(appErrors.ErrInvalidID, ""))
	}
	token, err := s.session.Credential(ctx)
	if err != nil {
		return nil, false, s.fail(ctx, "get_member", err)
	}

	cacheKey := fmt.Sprintf("members:detail:%s", id)
	var raw dto.RawRecord
	if s.cache.Get(ctx, cacheKey, &raw) {
		member := s.normalizer.NormalizeJoinRequest(raw)
		return &member, true, nil
	}

	envelope, err := s.api.GetMember(ctx, token, id)
	if err != nil {
		return nil, false, s.fail(ctx, "get_member", err)
	}
	if !envelope.Success || envelope.Member == nil {
		return nil, false, s.fail(ctx, "get_member", appErrors.Clone(appErrors.ErrNotFound, envelope.Message))
	}
	s.cache.Set(ctx, cacheKey, envelope.Member, s.cacheTTL)
	member := s.normalizer.NormalizeJoinRequest(envelope.Member)
	return &member, false, nil
}

// Invalidate drops every cached member payload.
func (s *MemberService) Invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, memberCachePattern)
}

func (s *MemberService) fail(ctx context.Context, op string, err error) error {
	return classifyAndRecord(ctx, s.session, s.metrics, s.logger, op, err)
}
