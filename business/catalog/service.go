package catalog

import (
	"context"
	"fmt"
	"vintnercrm/domain"
	"vintnercrm/pkg/logger"
)

// ProductRepository contract interface
type ProductRepository interface {
	Upsert(ctx context.Context, product *domain.Product) error
	FindByKey(ctx context.Context, productKey string) (domain.Product, error)
	FindAll(ctx context.Context) ([]domain.Product, error)
	FindAllActive(ctx context.Context) ([]domain.Product, error)
}

type Service struct {
	productRepo ProductRepository
}

func NewService(productRepo ProductRepository) *Service {
	return &Service{productRepo: productRepo}
}

func (s *Service) GetProduct(ctx context.Context, productKey string) (domain.Product, error) {
	product, err := s.productRepo.FindByKey(ctx, productKey)
	if err != nil {
		logger.Error("Failed to get product", err)
		return domain.Product{}, err
	}
	return product, nil
}

func (s *Service) ListProducts(ctx context.Context, activeOnly bool) ([]domain.Product, error) {
	if activeOnly {
		return s.productRepo.FindAllActive(ctx)
	}
	return s.productRepo.FindAll(ctx)
}

func (s *Service) UpsertProduct(ctx context.Context, product *domain.Product) error {
	if product.ProductKey == "" {
		return fmt.Errorf("missing product key")
	}
	if err := s.productRepo.Upsert(ctx, product); err != nil {
		logger.Error("Failed to upsert product", err)
		return err
	}
	return nil
}
