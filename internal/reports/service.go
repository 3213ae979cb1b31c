package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	dashboardCacheTTL = 10 * time.Minute
	revenueMonths     = 12
	cycleTimeMonths   = 3
)

// Service builds dashboards, caching them in Redis. Concurrent builds for
// the same tenant collapse into one query pass via singleflight.
type Service struct {
	repo   *Repository
	cache  *redis.Client
	logger *slog.Logger
	group  singleflight.Group
}

// NewService builds a Service instance.
func NewService(repo *Repository, cache *redis.Client, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

func dashboardKey(tenantID int64) string {
	return fmt.Sprintf("reports:dashboard:%d", tenantID)
}

// Dashboard returns the tenant's headline figures, from cache when fresh.
func (s *Service) Dashboard(ctx context.Context, tenantID int64) (Dashboard, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, dashboardKey(tenantID)).Bytes()
		if err == nil {
			var d Dashboard
			if err := json.Unmarshal(raw, &d); err == nil {
				return d, nil
			}
		}
	}

	v, err, _ := s.group.Do(dashboardKey(tenantID), func() (any, error) {
		return s.build(ctx, tenantID)
	})
	if err != nil {
		return Dashboard{}, err
	}
	return v.(Dashboard), nil
}

// Refresh rebuilds and recaches the dashboard, bypassing the cached copy.
// Used by the warmup job.
func (s *Service) Refresh(ctx context.Context, tenantID int64) (Dashboard, error) {
	return s.build(ctx, tenantID)
}

// TenantIDs lists active tenants for warmup.
func (s *Service) TenantIDs(ctx context.Context) ([]int64, error) {
	return s.repo.TenantIDs(ctx)
}

func (s *Service) build(ctx context.Context, tenantID int64) (Dashboard, error) {
	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := s.repo.StageCounts(gctx, tenantID)
		d.StageCounts = counts
		return err
	})
	g.Go(func() error {
		revenue, err := s.repo.MonthlyRevenue(gctx, tenantID, revenueMonths)
		d.Revenue = revenue
		return err
	})
	g.Go(func() error {
		ct, err := s.repo.CycleTime(gctx, tenantID, cycleTimeMonths)
		d.CycleTime = ct
		return err
	})
	g.Go(func() error {
		low, err := s.repo.LowStock(gctx, tenantID)
		d.LowStock = low
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	d.GeneratedAt = time.Now().UTC()

	if s.cache != nil {
		raw, err := json.Marshal(d)
		if err == nil {
			if err := s.cache.Set(ctx, dashboardKey(tenantID), raw, dashboardCacheTTL).Err(); err != nil {
				s.logger.Warn("cache dashboard", slog.Int64("tenant_id", tenantID), slog.Any("error", err))
			}
		}
	}
	return d, nil
}
