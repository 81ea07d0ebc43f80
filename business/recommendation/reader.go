package recommendation

import (
	"context"
	"fmt"
	"vintnercrm/domain"
	"vintnercrm/pkg/logger"
)

type RecoReadRepository interface {
	GetRun(ctx context.Context, runID string) (domain.RecoRun, error)
	ListRuns(ctx context.Context, limit int) ([]domain.RecoRun, error)
	ListItemsByRun(ctx context.Context, runID string, limit, offset int) ([]domain.RecoItem, error)
	LatestItemsForCustomer(ctx context.Context, customerCode string) ([]domain.RecoItem, error)
	ListAuditsByRun(ctx context.Context, runID string) ([]domain.RecoAudit, error)
}

// ItemCache is the read-through cache for latest-per-customer lookups.
type ItemCache interface {
	Get(ctx context.Context, customerCode string) ([]domain.RecoItem, bool)
	Set(ctx context.Context, customerCode string, items []domain.RecoItem) error
	InvalidateAll(ctx context.Context) error
}

// Reader is the serving side of the recommendation store: run metadata,
// per-run listings and the cached latest-per-customer lookup.
type Reader struct {
	repo  RecoReadRepository
	cache ItemCache
}

func NewReader(repo RecoReadRepository, cache ItemCache) *Reader {
	return &Reader{
		repo:  repo,
		cache: cache,
	}
}

// LatestForCustomer serves the customer's current recommendations, cache
// first. A cache miss falls through to Postgres and writes back.
func (r *Reader) LatestForCustomer(ctx context.Context, customerCode string) ([]domain.RecoItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if r.cache != nil {
		if items, ok := r.cache.Get(ctx, customerCode); ok {
			return items, nil
		}
	}

	items, err := r.repo.LatestItemsForCustomer(ctx, customerCode)
	if err != nil {
		return nil, fmt.Errorf("latest items: %w", err)
	}

	if r.cache != nil && len(items) > 0 {
		if err := r.cache.Set(ctx, customerCode, items); err != nil {
			logger.Warn("reco_cache_set_failed", "customer", customerCode, "error", err)
		}
	}

	return items, nil
}

// InvalidateCache drops all cached lookups. Called after a batch run.
func (r *Reader) InvalidateCache(ctx context.Context) {
	if r.cache == nil {
		return
	}
	if err := r.cache.InvalidateAll(ctx); err != nil {
		logger.Warn("reco_cache_invalidate_failed", "error", err)
	}
}

func (r *Reader) GetRun(ctx context.Context, runID string) (domain.RecoRun, error) {
	if err := ctx.Err(); err != nil {
		return domain.RecoRun{}, fmt.Errorf("context error: %w", err)
	}
	return r.repo.GetRun(ctx, runID)
}

func (r *Reader) ListRuns(ctx context.Context, limit int) ([]domain.RecoRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	return r.repo.ListRuns(ctx, limit)
}

func (r *Reader) ListItemsByRun(ctx context.Context, runID string, limit, offset int) ([]domain.RecoItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	return r.repo.ListItemsByRun(ctx, runID, limit, offset)
}

func (r *Reader) ListAuditsByRun(ctx context.Context, runID string) ([]domain.RecoAudit, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	return r.repo.ListAuditsByRun(ctx, runID)
}
