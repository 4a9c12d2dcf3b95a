package products

import (
	"strings"

	"github.com/chromatex/dyehouse/internal/masterdata/shared"
)

func (s *Service) validate(p Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return shared.ErrRequiredField
	}
	return nil
}
