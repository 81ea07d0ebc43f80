package postgres

import (
	"context"
	"errors"
	"fmt"
	"vintnercrm/domain"

	"gorm.io/gorm"
)

type RecoRepository struct {
	DB *gorm.DB
}

func NewRecoRepository(db *gorm.DB) *RecoRepository {
	return &RecoRepository{DB: db}
}

// ---- Runs ----

func (r *RecoRepository) CreateRun(ctx context.Context, run *domain.RecoRun) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("failed to create reco run: %w", err)
	}

	return nil
}

func (r *RecoRepository) FinishRun(ctx context.Context, run *domain.RecoRun) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	updateData := map[string]interface{}{
		"status":             run.Status,
		"eligible_customers": run.EligibleCustomers,
		"skipped_customers":  run.SkippedCustomers,
		"failed_customers":   run.FailedCustomers,
		"duration_seconds":   run.DurationSeconds,
		"summary":            run.Summary,
	}

	result := r.DB.WithContext(ctx).
		Model(&domain.RecoRun{}).
		Where("run_id = ?", run.RunID).
		Updates(updateData)
	if result.Error != nil {
		return fmt.Errorf("failed to finish reco run: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("reco run not found")
	}

	return nil
}

func (r *RecoRepository) GetRun(ctx context.Context, runID string) (domain.RecoRun, error) {
	if err := ctx.Err(); err != nil {
		return domain.RecoRun{}, fmt.Errorf("context error: %w", err)
	}

	var run domain.RecoRun
	err := r.DB.WithContext(ctx).First(&run, "run_id = ?", runID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RecoRun{}, errors.New("reco run not found")
		}
		return domain.RecoRun{}, fmt.Errorf("failed to find reco run: %w", err)
	}

	return run, nil
}

func (r *RecoRepository) ListRuns(ctx context.Context, limit int) ([]domain.RecoRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if limit <= 0 {
		limit = 20
	}

	var runs []domain.RecoRun
	err := r.DB.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reco runs: %w", err)
	}

	return runs, nil
}

// ---- Items ----

func (r *RecoRepository) SaveItems(ctx context.Context, items []domain.RecoItem) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if len(items) == 0 {
		return nil
	}

	if err := r.DB.WithContext(ctx).Create(&items).Error; err != nil {
		return fmt.Errorf("failed to save reco items: %w", err)
	}

	return nil
}

func (r *RecoRepository) ListItemsByRun(ctx context.Context, runID string, limit, offset int) ([]domain.RecoItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var items []domain.RecoItem
	q := r.DB.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("customer_code ASC, rank ASC").
		Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list reco items: %w", err)
	}

	return items, nil
}

// LatestItemsForCustomer returns the customer's recommendations from the most
// recent completed run that produced any for them.
func (r *RecoRepository) LatestItemsForCustomer(ctx context.Context, customerCode string) ([]domain.RecoItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	subQuery := r.DB.
		Model(&domain.RecoItem{}).
		Select("reco_items.run_id").
		Joins("JOIN reco_runs ON reco_runs.run_id = reco_items.run_id").
		Where("reco_items.customer_code = ? AND reco_runs.status = ?", customerCode, "DONE").
		Order("reco_runs.created_at DESC").
		Limit(1)

	var items []domain.RecoItem
	err := r.DB.WithContext(ctx).
		Where("customer_code = ? AND run_id = (?)", customerCode, subQuery).
		Order("rank ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find latest reco items: %w", err)
	}

	return items, nil
}

// ---- Audits ----

func (r *RecoRepository) SaveAudit(ctx context.Context, audit domain.RecoAudit) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(&audit).Error; err != nil {
		return fmt.Errorf("failed to save reco audit: %w", err)
	}

	return nil
}

func (r *RecoRepository) ListAuditsByRun(ctx context.Context, runID string) ([]domain.RecoAudit, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var audits []domain.RecoAudit
	err := r.DB.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("customer_code ASC").
		Find(&audits).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reco audits: %w", err)
	}

	return audits, nil
}
