package customers

import (
	"context"
	"fmt"
	"time"
	"vintnercrm/domain"
	"vintnercrm/pkg/logger"
)

// CustomerRepository contract interface
type CustomerRepository interface {
	Upsert(ctx context.Context, customer *domain.Customer) error
	FindByCode(ctx context.Context, customerCode string) (domain.Customer, error)
	FindAll(ctx context.Context, limit, offset int) ([]domain.Customer, error)
}

// ContactEventRepository contract interface
type ContactEventRepository interface {
	Create(ctx context.Context, event *domain.ContactEvent) error
	ListByCustomer(ctx context.Context, customerCode string, limit int) ([]domain.ContactEvent, error)
	LastContactDate(ctx context.Context, customerCode string) (*time.Time, error)
}

type Service struct {
	customerRepo CustomerRepository
	contactRepo  ContactEventRepository
}

func NewService(customerRepo CustomerRepository, contactRepo ContactEventRepository) *Service {
	return &Service{
		customerRepo: customerRepo,
		contactRepo:  contactRepo,
	}
}

func (s *Service) GetCustomer(ctx context.Context, customerCode string) (domain.Customer, error) {
	customer, err := s.customerRepo.FindByCode(ctx, customerCode)
	if err != nil {
		logger.Error("Failed to get customer", err)
		return domain.Customer{}, err
	}
	return customer, nil
}

func (s *Service) ListCustomers(ctx context.Context, limit, offset int) ([]domain.Customer, error) {
	return s.customerRepo.FindAll(ctx, limit, offset)
}

func (s *Service) UpsertCustomer(ctx context.Context, customer *domain.Customer) error {
	if customer.CustomerCode == "" {
		return fmt.Errorf("missing customer code")
	}
	if err := s.customerRepo.Upsert(ctx, customer); err != nil {
		logger.Error("Failed to upsert customer", err)
		return err
	}
	return nil
}

// RecordContact stores an outbound contact. The silence window check reads
// these rows, so campaign tools must record every send here.
func (s *Service) RecordContact(ctx context.Context, event *domain.ContactEvent) error {
	if event.CustomerCode == "" || event.ContactDate.IsZero() {
		return fmt.Errorf("missing customer code or contact date")
	}
	if err := s.contactRepo.Create(ctx, event); err != nil {
		logger.Error("Failed to record contact", err)
		return err
	}
	return nil
}

func (s *Service) ContactHistory(ctx context.Context, customerCode string, limit int) ([]domain.ContactEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	return s.contactRepo.ListByCustomer(ctx, customerCode, limit)
}
