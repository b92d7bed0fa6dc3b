package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/workorder-service/internal/domain"
	"github.com/spec-kit/workorder-service/internal/events"
	"github.com/spec-kit/workorder-service/internal/repository"
)

const (
	dashboardCacheKey = "dashboard:summary"
	dashboardCacheTTL = 60 * time.Second
)

// DashboardSummary aggregates order counts for the landing page.
type DashboardSummary struct {
	Totals    map[string]int64            `json:"totals"`
	ByKind    map[string]map[string]int64 `json:"by_kind"`
	Pending   int64                       `json:"pending"`
	Resolved  int64                       `json:"resolved"`
	Generated time.Time                   `json:"generated_at"`
}

// DashboardService serves cached status aggregates.
type DashboardService struct {
	orders repository.WorkOrderRepository
	cache  *redis.Client
	logger *zap.Logger
}

// NewDashboardService builds the service. The cache client may be nil,
// in which case every call hits Postgres.
func NewDashboardService(orders repository.WorkOrderRepository, cache *redis.Client, dispatcher events.Dispatcher, logger *zap.Logger) *DashboardService {
	s := &DashboardService{orders: orders, cache: cache, logger: logger}

	// Any registration or status change makes the cached summary stale.
	invalidate := func(ctx context.Context, _ events.Event) error {
		s.Invalidate(ctx)
		return nil
	}
	dispatcher.Subscribe(events.EventOrderRegistered, invalidate)
	dispatcher.Subscribe(events.EventOrderStatusChanged, invalidate)

	return s
}

// Summary returns the aggregate, served from Redis when fresh.
func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, dashboardCacheKey).Bytes()
		if err == nil {
			var cached DashboardSummary
			if unmarshalErr := json.Unmarshal(raw, &cached); unmarshalErr == nil {
				return &cached, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
	}

	summary, err := s.build(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, marshalErr := json.Marshal(summary); marshalErr == nil {
			if err := s.cache.Set(ctx, dashboardCacheKey, raw, dashboardCacheTTL).Err(); err != nil {
				s.logger.Warn("dashboard cache write failed", zap.Error(err))
			}
		}
	}
	return summary, nil
}

// Invalidate drops the cached summary.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, dashboardCacheKey).Err(); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func (s *DashboardService) build(ctx context.Context) (*DashboardSummary, error) {
	counts, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	summary := &DashboardSummary{
		Totals:    map[string]int64{},
		ByKind:    map[string]map[string]int64{},
		Generated: time.Now().UTC(),
	}
	for _, row := range counts {
		kind := string(row.Kind)
		status := string(row.Status)
		summary.Totals[status] += row.Count
		if summary.ByKind[kind] == nil {
			summary.ByKind[kind] = map[string]int64{}
		}
		summary.ByKind[kind][status] += row.Count

		switch row.Status {
		case domain.OrderStatusOpen, domain.OrderStatusAwaitingParts:
			summary.Pending += row.Count
		case domain.OrderStatusAwaitingPickup, domain.OrderStatusDelivered:
			summary.Resolved += row.Count
		}
	}
	return summary, nil
}
