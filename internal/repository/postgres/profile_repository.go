package postgres

import (
	"context"
	"errors"
	"fmt"
	"vintnercrm/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository struct {
	DB *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

// Upsert keeps exactly one profile row per customer, refreshed on every run.
func (r *ProfileRepository) Upsert(ctx context.Context, profile domain.CustomerProfile) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer_code"}},
			UpdateAll: true,
		},
	).Create(&profile).Error; err != nil {
		return fmt.Errorf("failed to upsert customer profile: %w", err)
	}

	return nil
}

func (r *ProfileRepository) GetByCustomer(ctx context.Context, customerCode string) (domain.CustomerProfile, error) {
	if err := ctx.Err(); err != nil {
		return domain.CustomerProfile{}, fmt.Errorf("context error: %w", err)
	}

	var profile domain.CustomerProfile
	err := r.DB.WithContext(ctx).First(&profile, "customer_code = ?", customerCode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.CustomerProfile{}, errors.New("profile not found")
		}
		return domain.CustomerProfile{}, fmt.Errorf("failed to find profile: %w", err)
	}

	return profile, nil
}

func (r *ProfileRepository) ListBySegment(ctx context.Context, segment string, limit, offset int) ([]domain.CustomerProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var profiles []domain.CustomerProfile
	err := r.DB.WithContext(ctx).
		Where("segment = ?", segment).
		Order("customer_code ASC").
		Limit(limit).
		Offset(offset).
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles by segment: %w", err)
	}

	return profiles, nil
}

type segmentCountRow struct {
	Segment string
	Count   int64
}

func (r *ProfileRepository) CountBySegment(ctx context.Context) (map[string]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var rows []segmentCountRow
	err := r.DB.WithContext(ctx).
		Model(&domain.CustomerProfile{}).
		Select("segment, COUNT(*) AS count").
		Group("segment").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count segments: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Segment] = row.Count
	}

	return counts, nil
}
