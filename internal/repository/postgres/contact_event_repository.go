package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"
	"vintnercrm/domain"

	"gorm.io/gorm"
)

type ContactEventRepository struct {
	DB *gorm.DB
}

func NewContactEventRepository(db *gorm.DB) *ContactEventRepository {
	return &ContactEventRepository{
		DB: db,
	}
}

func (r *ContactEventRepository) Create(ctx context.Context, event *domain.ContactEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create contact event: %w", err)
	}

	return nil
}

// LastContactDate returns the most recent outbound contact for a customer,
// or nil when the customer was never contacted.
func (r *ContactEventRepository) LastContactDate(ctx context.Context, customerCode string) (*time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var event domain.ContactEvent
	err := r.DB.WithContext(ctx).
		Where("customer_code = ?", customerCode).
		Order("contact_date DESC").
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find last contact: %w", err)
	}

	return &event.ContactDate, nil
}

func (r *ContactEventRepository) ListByCustomer(ctx context.Context, customerCode string, limit int) ([]domain.ContactEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var events []domain.ContactEvent
	q := r.DB.WithContext(ctx).
		Where("customer_code = ?", customerCode).
		Order("contact_date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list contact events: %w", err)
	}

	return events, nil
}
