package suppliers

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromatex/dyehouse/internal/masterdata/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Supplier, error) {
	if id <= 0 {
		return Supplier{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

// GetByCode looks a supplier up by its unique code.
func (s *Service) GetByCode(ctx context.Context, code string) (Supplier, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Supplier{}, shared.ErrRequiredField
	}
	return s.repo.GetByCode(ctx, code)
}

func (s *Service) Create(ctx context.Context, supplier Supplier) (Supplier, error) {
	supplier.Name = shared.NormalizeSupplierName(supplier.Name)
	if err := s.validate(supplier); err != nil {
		return Supplier{}, err
	}
	return s.repo.Create(ctx, supplier)
}

func (s *Service) Update(ctx context.Context, id int64, supplier Supplier) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	supplier.Name = shared.NormalizeSupplierName(supplier.Name)
	if err := s.validate(supplier); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, supplier)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	count, err := s.repo.UsageCount(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: supplier has %d purchasing documents", shared.ErrInUse, count)
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(sup Supplier) error {
	if strings.TrimSpace(sup.Code) == "" {
		return shared.ErrRequiredField
	}
	if strings.TrimSpace(sup.Name) == "" {
		return shared.ErrRequiredField
	}
	return nil
}
