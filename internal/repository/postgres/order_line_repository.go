package postgres

import (
	"context"
	"fmt"
	"vintnercrm/domain"

	"gorm.io/gorm"
)

type OrderLineRepository struct {
	DB *gorm.DB
}

func NewOrderLineRepository(db *gorm.DB) *OrderLineRepository {
	return &OrderLineRepository{
		DB: db,
	}
}

func (r *OrderLineRepository) CreateBatch(ctx context.Context, lines []domain.OrderLine) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	if err := r.DB.WithContext(ctx).CreateInBatches(lines, 500).Error; err != nil {
		return fmt.Errorf("failed to create order lines: %w", err)
	}

	return nil
}

// ListByCustomer returns the full purchase history of one customer, oldest
// first. An unknown customer yields an empty slice, not an error.
func (r *OrderLineRepository) ListByCustomer(ctx context.Context, customerCode string) ([]domain.OrderLine, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var lines []domain.OrderLine
	err := r.DB.WithContext(ctx).
		Where("customer_code = ?", customerCode).
		Order("order_date ASC, id ASC").
		Find(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list order lines: %w", err)
	}

	return lines, nil
}

// ListCustomerCodes returns the distinct customer codes present in the order
// history, sorted so batch runs walk customers in a stable order. limit 0
// means no limit.
func (r *OrderLineRepository) ListCustomerCodes(ctx context.Context, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var codes []string
	q := r.DB.WithContext(ctx).
		Model(&domain.OrderLine{}).
		Distinct("customer_code").
		Order("customer_code ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Pluck("customer_code", &codes).Error; err != nil {
		return nil, fmt.Errorf("failed to list customer codes: %w", err)
	}

	return codes, nil
}
