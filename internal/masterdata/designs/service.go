package designs

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Design, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Design, error) {
	if id <= 0 {
		return Design{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

// GetByCode looks a design up by its normalized code.
func (s *Service) GetByCode(ctx context.Context, code string) (Design, error) {
	code = shared.NormalizeDesignCode(code)
	if code == "" {
		return Design{}, shared.ErrRequiredField
	}
	return s.repo.GetByCode(ctx, code)
}

func (s *Service) Create(ctx context.Context, design Design) (Design, error) {
	design.Code = shared.NormalizeDesignCode(design.Code)
	if strings.TrimSpace(design.Code) == "" {
		return Design{}, shared.ErrRequiredField
	}
	return s.repo.Create(ctx, design)
}

func (s *Service) Update(ctx context.Context, id int64, design Design) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	design.Code = shared.NormalizeDesignCode(design.Code)
	if strings.TrimSpace(design.Code) == "" {
		return shared.ErrRequiredField
	}
	return s.repo.Update(ctx, id, design)
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
		return fmt.Errorf("%w: design has %d color kitchen entries", shared.ErrInUse, count)
	}
	return s.repo.Delete(ctx, id)
}
