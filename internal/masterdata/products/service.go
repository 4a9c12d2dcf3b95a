package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/chromatex/dyehouse/internal/masterdata/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

// GetByName looks a product up by its normalized name.
func (s *Service) GetByName(ctx context.Context, name string) (Product, error) {
	name = shared.NormalizeProductName(name)
	if name == "" {
		return Product{}, shared.ErrRequiredField
	}
	return s.repo.GetByName(ctx, name)
}

func (s *Service) Create(ctx context.Context, product Product) (Product, error) {
	product.Name = shared.NormalizeProductName(product.Name)
	if err := s.validate(product); err != nil {
		return Product{}, err
	}
	return s.repo.Create(ctx, product)
}

func (s *Service) Update(ctx context.Context, id int64, product Product) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	product.Name = shared.NormalizeProductName(product.Name)
	if err := s.validate(product); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, product)
}

// Delete removes a product unless detail lines or ledger rows still reference it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	count, err := s.repo.UsageCount(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return err
		}
		return fmt.Errorf("products: usage count: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: product has %d transaction rows", shared.ErrInUse, count)
	}
	return s.repo.Delete(ctx, id)
}
