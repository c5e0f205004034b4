package application

import (
	"context"
	"fmt"

	"github.com/ledgerstack/erp-core/internal/domain"
	"github.com/ledgerstack/erp-core/pkg/logging"
)

// AvailabilityApplicationService computes buildable-product rankings from
// subpart definitions and warehouse stock
type AvailabilityApplicationService struct {
	subparts domain.SubpartRepository
	skus     domain.SKURepository
	logger   *logging.Logger
}

// NewAvailabilityApplicationService creates a new AvailabilityApplicationService
func NewAvailabilityApplicationService(
	subparts domain.SubpartRepository,
	skus domain.SKURepository,
	logger *logging.Logger,
) *AvailabilityApplicationService {
	return &AvailabilityApplicationService{
		subparts: subparts,
		skus:     skus,
		logger:   logger,
	}
}

// GetAvailability computes for each of the owner's products how many finished
// units current stock supports, ranked descending and truncated to topN
func (s *AvailabilityApplicationService) GetAvailability(ctx context.Context, query GetAvailabilityQuery) ([]AvailabilityDTO, error) {
	subparts, err := s.subparts.FindByOwner(ctx, query.OwnerID)
	if err != nil {
		s.logger.Error("Failed to list subparts", "error", err)
		return nil, fmt.Errorf("failed to list subparts: %w", err)
	}
	skus, err := s.skus.FindByOwner(ctx, query.OwnerID)
	if err != nil {
		s.logger.Error("Failed to list SKUs", "error", err)
		return nil, fmt.Errorf("failed to list SKUs: %w", err)
	}

	byProduct := make(map[string][]*domain.Subpart)
	names := make(map[string]string)
	order := make([]string, 0)
	for _, sp := range subparts {
		if _, seen := byProduct[sp.ProductID]; !seen {
			order = append(order, sp.ProductID)
		}
		byProduct[sp.ProductID] = append(byProduct[sp.ProductID], sp)
		names[sp.ProductID] = sp.Product
	}

	availabilities := make([]domain.ProductAvailability, 0, len(order))
	for _, productID := range order {
		availabilities = append(availabilities, domain.ProductAvailability{
			ProductID: productID,
			Product:   names[productID],
			Buildable: domain.BuildableQuantity(byProduct[productID], skus),
		})
	}

	ranked := domain.RankAvailability(availabilities, query.TopN)
	dtos := make([]AvailabilityDTO, 0, len(ranked))
	for _, a := range ranked {
		dtos = append(dtos, AvailabilityDTO{ProductID: a.ProductID, Product: a.Product, Buildable: a.Buildable})
	}
	return dtos, nil
}
