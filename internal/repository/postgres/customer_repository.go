package postgres

import (
	"context"
	"errors"
	"fmt"
	"vintnercrm/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomerRepository struct {
	DB *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{
		DB: db,
	}
}

// Upsert inserts or refreshes a customer keyed by customer_code.
func (r *CustomerRepository) Upsert(ctx context.Context, customer *domain.Customer) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer_code"}},
			UpdateAll: true,
		},
	).Create(customer).Error; err != nil {
		return fmt.Errorf("failed to upsert customer: %w", err)
	}

	return nil
}

func (r *CustomerRepository) FindByCode(ctx context.Context, customerCode string) (domain.Customer, error) {
	if err := ctx.Err(); err != nil {
		return domain.Customer{}, fmt.Errorf("context error: %w", err)
	}

	var customer domain.Customer
	err := r.DB.WithContext(ctx).First(&customer, "customer_code = ?", customerCode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Customer{}, errors.New("customer not found")
		}
		return domain.Customer{}, fmt.Errorf("failed to find customer: %w", err)
	}

	return customer, nil
}

func (r *CustomerRepository) FindAll(ctx context.Context, limit, offset int) ([]domain.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var customers []domain.Customer
	q := r.DB.WithContext(ctx).Order("customer_code ASC").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("failed to find customers: %w", err)
	}

	return customers, nil
}

// FindContactable returns customers eligible for outreach: not bounced, not
// opted out, not soft deleted.
func (r *CustomerRepository) FindContactable(ctx context.Context) ([]domain.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var customers []domain.Customer
	err := r.DB.WithContext(ctx).
		Where("is_contactable = ? AND is_bounced = ? AND is_optout = ?", true, false, false).
		Order("customer_code ASC").
		Find(&customers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find contactable customers: %w", err)
	}

	return customers, nil
}
