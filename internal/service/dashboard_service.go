package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campusdocs/doctrack-api/internal/dto"
	"github.com/campusdocs/doctrack-api/internal/models"
	appErrors "github.com/campusdocs/doctrack-api/pkg/errors"
)

type dashboardStore interface {
	Summary(ctx context.Context, scope models.DashboardScope) (*models.DashboardSummary, error)
}

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type cacheLookupRecorder interface {
	RecordCacheLookup(hit bool)
}

// DashboardService serves per-viewer summary counts with a Redis cache in
// front. Cache keys are scoped per viewer so invalidation can sweep them all.
type DashboardService struct {
	store       dashboardStore
	cache       dashboardCache
	ttl         time.Duration
	roleConfigs map[models.UserRole]models.RoleConfig
	metrics     cacheLookupRecorder
	logger      *zap.Logger
}

// NewDashboardService constructs a dashboard service. The metrics recorder is
// optional.
func NewDashboardService(store dashboardStore, cache dashboardCache, ttl time.Duration, metrics cacheLookupRecorder, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &DashboardService{
		store:       store,
		cache:       cache,
		ttl:         ttl,
		roleConfigs: models.DefaultRoleConfigs(),
		metrics:     metrics,
		logger:      logger,
	}
}

// Summary returns the viewer-scoped counts, served from cache when fresh.
func (s *DashboardService) Summary(ctx context.Context, viewer *models.JWTClaims) (*dto.DashboardResponse, error) {
	if viewer == nil {
		return nil, appErrors.ErrUnauthorized
	}
	key := fmt.Sprintf("dashboard:summary:%s", viewer.UserID)

	if s.cache != nil {
		var cached dto.DashboardResponse
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			cached.CacheHit = true
			s.recordLookup(true)
			return &cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
	}
	s.recordLookup(false)

	summary, err := s.store.Summary(ctx, DashboardScopeFor(viewer))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute dashboard summary")
	}
	resp := &dto.DashboardResponse{
		Summary:   *summary,
		Dashboard: s.roleConfigs[viewer.Role],
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, resp, s.ttl); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return resp, nil
}

func (s *DashboardService) recordLookup(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheLookup(hit)
	}
}

// Invalidate drops cached summaries matching the pattern. It satisfies the
// workflow engine's cacheInvalidator.
func (s *DashboardService) Invalidate(ctx context.Context, pattern string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.DeleteByPattern(ctx, pattern)
}
