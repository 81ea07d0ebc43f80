package postgres

import (
	"context"
	"errors"
	"fmt"
	"vintnercrm/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RecoConfigRepository struct {
	DB *gorm.DB
}

func NewRecoConfigRepository(db *gorm.DB) *RecoConfigRepository {
	return &RecoConfigRepository{DB: db}
}

// GetConfig returns the stored override row for a profile. found is false
// when no row exists; the caller falls back to defaults.
func (r *RecoConfigRepository) GetConfig(ctx context.Context, profile string) (domain.RecoConfig, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.RecoConfig{}, false, fmt.Errorf("context error: %w", err)
	}

	var cfg domain.RecoConfig
	err := r.DB.WithContext(ctx).First(&cfg, "profile = ?", profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.RecoConfig{}, false, nil
	}
	if err != nil {
		return domain.RecoConfig{}, false, fmt.Errorf("failed to query reco_configs: %w", err)
	}

	return cfg, true, nil
}

func (r *RecoConfigRepository) UpsertConfig(ctx context.Context, cfg domain.RecoConfig) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "profile"}},
			UpdateAll: true,
		},
	).Create(&cfg).Error; err != nil {
		return fmt.Errorf("failed to upsert reco config: %w", err)
	}

	return nil
}
