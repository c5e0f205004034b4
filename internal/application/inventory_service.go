package application

import (
	"context"
	"fmt"

	"github.com/ledgerstack/erp-core/internal/domain"
	"github.com/ledgerstack/erp-core/pkg/errors"
	"github.com/ledgerstack/erp-core/pkg/logging"
	"github.com/ledgerstack/erp-core/pkg/mongodb"
)

// InventoryApplicationService handles subpart definitions, SKU authoring and
// the reconciliation of produced stock into storage locations
type InventoryApplicationService struct {
	skus      domain.SKURepository
	subparts  domain.SubpartRepository
	events    domain.ProductionEventRepository
	publisher domain.EventPublisher
	logger    *logging.Logger
}

// NewInventoryApplicationService creates a new InventoryApplicationService
func NewInventoryApplicationService(
	skus domain.SKURepository,
	subparts domain.SubpartRepository,
	events domain.ProductionEventRepository,
	publisher domain.EventPublisher,
	logger *logging.Logger,
) *InventoryApplicationService {
	return &InventoryApplicationService{
		skus:      skus,
		subparts:  subparts,
		events:    events,
		publisher: publisher,
		logger:    logger,
	}
}

// Reconcile lands produced stock in the warehouse. It first tries an atomic
// in-place increment of an existing part tuple; when no SKU holds the tuple it
// routes the stock to the owner's staging SKU, creating it if needed. The
// returned IsNew flag tells callers whether a staging SKU was created.
func (s *InventoryApplicationService) Reconcile(ctx context.Context, ownerID, productID, groupID, subpartID, partName, color string, quantity int) (*ReconcileResultDTO, error) {
	if quantity <= 0 {
		return nil, errors.ErrValidation("quantity must be positive")
	}
	if color == "" {
		color = domain.DefaultPartColor
	}

	// Branch 1: some SKU already holds the exact tuple
	sku, err := s.skus.IncrementPart(ctx, ownerID, productID, subpartID, partName, color, quantity)
	if err != nil {
		s.logger.Error("Failed to increment stock", "subpartId", subpartID, "partName", partName, "error", err)
		return nil, fmt.Errorf("failed to increment stock: %w", err)
	}
	if sku != nil {
		s.publishReconciled(ctx, sku, productID, subpartID, partName, color, quantity, sku.Staging)
		s.logger.Info("Incremented existing stock", "skuId", sku.ID.Hex(), "location", sku.Location, "quantity", quantity)
		return &ReconcileResultDTO{
			SKUID:    sku.ID.Hex(),
			Location: sku.Location,
			IsNew:    false,
			Message:  "quantity updated in existing SKU",
		}, nil
	}

	// Branch 2: locate or create the owner's staging SKU
	sku, err = s.skus.FindStaging(ctx, ownerID, groupID)
	if err != nil {
		s.logger.Error("Failed to look up staging SKU", "groupId", groupID, "error", err)
		return nil, fmt.Errorf("failed to look up staging SKU: %w", err)
	}

	isNew := false
	if sku == nil {
		sku, isNew, err = s.createStagingSKU(ctx, ownerID, groupID)
		if err != nil {
			return nil, err
		}
	}

	// Branch 3: append the produced part to the staging SKU
	if err := sku.AddStock(productID, subpartID, partName, color, quantity); err != nil {
		return nil, errors.MapDomainError(err)
	}
	if err := s.skus.Update(ctx, ownerID, sku); err != nil {
		s.logger.Error("Failed to save staging SKU", "skuId", sku.ID.Hex(), "error", err)
		return nil, fmt.Errorf("failed to save staging SKU: %w", err)
	}

	s.publishReconciled(ctx, sku, productID, subpartID, partName, color, quantity, true)
	message := "stock staged in existing Unallocated SKU"
	if isNew {
		message = "new Unallocated SKU created"
	}
	s.logger.Info("Staged produced stock", "skuId", sku.ID.Hex(), "location", sku.Location, "isNew", isNew, "quantity", quantity)
	return &ReconcileResultDTO{
		SKUID:    sku.ID.Hex(),
		Location: sku.Location,
		IsNew:    isNew,
		Message:  message,
	}, nil
}

// createStagingSKU inserts the owner's staging SKU. On a location collision it
// first re-reads the owner's staging slot, so a concurrent insert by the same
// owner is adopted rather than duplicated; only a collision with another
// owner's SKU falls back to the owner-suffixed location. The bool reports
// whether a SKU was actually inserted.
func (s *InventoryApplicationService) createStagingSKU(ctx context.Context, ownerID, groupID string) (*domain.SKU, bool, error) {
	sku := domain.NewStagingSKU(groupID, ownerID)
	err := s.skus.Save(ctx, sku)
	if err == nil {
		return sku, true, nil
	}
	if !mongodb.IsDuplicateKey(err) {
		s.logger.Error("Failed to create staging SKU", "location", sku.Location, "error", err)
		return nil, false, fmt.Errorf("failed to create staging SKU: %w", err)
	}

	existing, findErr := s.skus.FindStaging(ctx, ownerID, groupID)
	if findErr != nil {
		s.logger.Error("Failed to re-read staging SKU after collision", "groupId", groupID, "error", findErr)
		return nil, false, fmt.Errorf("failed to create staging SKU: %w", findErr)
	}
	if existing != nil {
		s.logger.Info("Adopted concurrently created staging SKU", "skuId", existing.ID.Hex(), "location", existing.Location)
		return existing, false, nil
	}

	sku.Location = domain.StagingLocationFor(ownerID)
	if err := s.skus.Save(ctx, sku); err != nil {
		s.logger.Error("Failed to create suffixed staging SKU", "location", sku.Location, "error", err)
		return nil, false, fmt.Errorf("failed to create staging SKU: %w", err)
	}
	s.logger.Warn("Staging location taken, used owner-suffixed fallback", "location", sku.Location)
	return sku, true, nil
}

func (s *InventoryApplicationService) publishReconciled(ctx context.Context, sku *domain.SKU, productID, subpartID, partName, color string, quantity int, staged bool) {
	if s.publisher == nil {
		return
	}
	sku.RecordReconciliation(productID, subpartID, partName, color, quantity, staged)
	for _, event := range sku.GetDomainEvents() {
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish event", "eventType", event.EventType(), "error", err)
		}
	}
	sku.ClearDomainEvents()
}

// CreateSubpart defines a new subpart for a product
func (s *InventoryApplicationService) CreateSubpart(ctx context.Context, cmd CreateSubpartCommand) (*SubpartDTO, error) {
	parts := make([]domain.PartVariant, 0, len(cmd.Parts))
	for _, p := range cmd.Parts {
		parts = append(parts, domain.PartVariant{PartName: p.PartName, Quantity: p.Quantity, Color: p.Color})
	}

	subpart, err := domain.NewSubpart(cmd.ProductID, cmd.Product, cmd.Machine, parts, cmd.OwnerID)
	if err != nil {
		return nil, errors.MapDomainError(err)
	}
	if err := s.subparts.Save(ctx, subpart); err != nil {
		s.logger.Error("Failed to create subpart", "product", cmd.Product, "error", err)
		return nil, fmt.Errorf("failed to create subpart: %w", err)
	}

	s.logger.Info("Created subpart", "subpartId", subpart.ID.Hex(), "product", cmd.Product)
	return ToSubpartDTO(subpart), nil
}

// GetSubpart retrieves one subpart definition
func (s *InventoryApplicationService) GetSubpart(ctx context.Context, ownerID, id string) (*SubpartDTO, error) {
	subpart, err := s.subparts.FindByID(ctx, ownerID, id)
	if err != nil {
		s.logger.Error("Failed to get subpart", "subpartId", id, "error", err)
		return nil, fmt.Errorf("failed to get subpart: %w", err)
	}
	if subpart == nil {
		return nil, errors.ErrNotFound("subpart")
	}
	return ToSubpartDTO(subpart), nil
}

// ListSubparts lists the owner's subpart definitions
func (s *InventoryApplicationService) ListSubparts(ctx context.Context, ownerID string) ([]SubpartDTO, error) {
	subparts, err := s.subparts.FindByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("Failed to list subparts", "error", err)
		return nil, fmt.Errorf("failed to list subparts: %w", err)
	}
	return ToSubpartDTOs(subparts), nil
}

// UpdateSubpart replaces a subpart's machine and part variants
func (s *InventoryApplicationService) UpdateSubpart(ctx context.Context, cmd UpdateSubpartCommand) (*SubpartDTO, error) {
	subpart, err := s.subparts.FindByID(ctx, cmd.OwnerID, cmd.SubpartID)
	if err != nil {
		s.logger.Error("Failed to get subpart", "subpartId", cmd.SubpartID, "error", err)
		return nil, fmt.Errorf("failed to get subpart: %w", err)
	}
	if subpart == nil {
		return nil, errors.ErrNotFound("subpart")
	}

	parts := make([]domain.PartVariant, 0, len(cmd.Parts))
	for _, p := range cmd.Parts {
		parts = append(parts, domain.PartVariant{PartName: p.PartName, Quantity: p.Quantity, Color: p.Color})
	}
	replacement, err := domain.NewSubpart(subpart.ProductID, subpart.Product, cmd.Machine, parts, subpart.CreatedBy)
	if err != nil {
		return nil, errors.MapDomainError(err)
	}

	subpart.Machine = replacement.Machine
	subpart.Parts = replacement.Parts
	subpart.UpdatedAt = replacement.UpdatedAt
	if err := s.subparts.Update(ctx, cmd.OwnerID, subpart); err != nil {
		s.logger.Error("Failed to update subpart", "subpartId", cmd.SubpartID, "error", err)
		return nil, fmt.Errorf("failed to update subpart: %w", err)
	}

	s.logger.Info("Updated subpart", "subpartId", cmd.SubpartID)
	return ToSubpartDTO(subpart), nil
}

// DeleteSubpart removes a subpart definition. Deletion is refused while any
// production record references the subpart, to keep aggregates explainable.
func (s *InventoryApplicationService) DeleteSubpart(ctx context.Context, ownerID, id string) error {
	subpart, err := s.subparts.FindByID(ctx, ownerID, id)
	if err != nil {
		s.logger.Error("Failed to get subpart", "subpartId", id, "error", err)
		return fmt.Errorf("failed to get subpart: %w", err)
	}
	if subpart == nil {
		return errors.ErrNotFound("subpart")
	}

	inUse, err := s.events.ExistsForSubpart(ctx, ownerID, id)
	if err != nil {
		s.logger.Error("Failed to check subpart usage", "subpartId", id, "error", err)
		return fmt.Errorf("failed to check subpart usage: %w", err)
	}
	if inUse {
		return errors.ErrConflict("subpart has recorded production and cannot be deleted")
	}

	if err := s.subparts.Delete(ctx, ownerID, id); err != nil {
		s.logger.Error("Failed to delete subpart", "subpartId", id, "error", err)
		return fmt.Errorf("failed to delete subpart: %w", err)
	}
	s.logger.Info("Deleted subpart", "subpartId", id)
	return nil
}

// CreateSKU authors a SKU at a physical location. Saving is refused while any
// of the selected subparts still sits in one of the owner's staging SKUs:
// stock must be explicitly moved out of staging first. The check covers only
// the subparts referenced by the new SKU, not all staged stock.
func (s *InventoryApplicationService) CreateSKU(ctx context.Context, cmd CreateSKUCommand) (*SKUDTO, error) {
	if err := s.checkStagedSubparts(ctx, cmd.OwnerID, cmd.Products); err != nil {
		return nil, err
	}

	products := make([]domain.ProductEntry, 0, len(cmd.Products))
	for _, prod := range cmd.Products {
		parts := make([]domain.PartEntry, 0, len(prod.Parts))
		for _, part := range prod.Parts {
			color := part.Color
			if color == "" {
				color = domain.DefaultPartColor
			}
			parts = append(parts, domain.PartEntry{
				SubpartID: part.SubpartID,
				PartName:  part.PartName,
				Color:     color,
				Quantity:  part.Quantity,
			})
		}
		products = append(products, domain.ProductEntry{ProductID: prod.ProductID, Parts: parts})
	}

	sku, err := domain.NewSKU(cmd.Location, cmd.GroupID, products, cmd.OwnerID)
	if err != nil {
		return nil, errors.MapDomainError(err)
	}

	if err := s.skus.Save(ctx, sku); err != nil {
		if mongodb.IsDuplicateKey(err) {
			return nil, errors.ErrConflict(fmt.Sprintf("location %q is already in use", cmd.Location))
		}
		s.logger.Error("Failed to create SKU", "location", cmd.Location, "error", err)
		return nil, fmt.Errorf("failed to create SKU: %w", err)
	}

	s.logger.Info("Created SKU", "skuId", sku.ID.Hex(), "location", cmd.Location)
	return ToSKUDTO(sku), nil
}

// checkStagedSubparts rejects authoring when any selected subpart still has
// stock in one of the owner's staging SKUs
func (s *InventoryApplicationService) checkStagedSubparts(ctx context.Context, ownerID string, products []ProductEntry) error {
	staging, err := s.skus.FindAllStaging(ctx, ownerID)
	if err != nil {
		s.logger.Error("Failed to list staging SKUs", "error", err)
		return fmt.Errorf("failed to list staging SKUs: %w", err)
	}
	if len(staging) == 0 {
		return nil
	}

	for _, prod := range products {
		for _, part := range prod.Parts {
			for _, sku := range staging {
				if sku.HoldsSubpart(part.SubpartID) {
					return errors.ErrConflict(fmt.Sprintf(
						"subpart %s has unallocated stock in %q; move it out of staging first",
						part.SubpartID, sku.Location))
				}
			}
		}
	}
	return nil
}

// GetSKU retrieves one SKU
func (s *InventoryApplicationService) GetSKU(ctx context.Context, ownerID, id string) (*SKUDTO, error) {
	sku, err := s.skus.FindByID(ctx, ownerID, id)
	if err != nil {
		s.logger.Error("Failed to get SKU", "skuId", id, "error", err)
		return nil, fmt.Errorf("failed to get SKU: %w", err)
	}
	if sku == nil {
		return nil, errors.ErrNotFound("SKU")
	}
	return ToSKUDTO(sku), nil
}

// ListSKUs lists the owner's SKUs
func (s *InventoryApplicationService) ListSKUs(ctx context.Context, ownerID string) ([]SKUDTO, error) {
	skus, err := s.skus.FindByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("Failed to list SKUs", "error", err)
		return nil, fmt.Errorf("failed to list SKUs: %w", err)
	}
	return ToSKUDTOs(skus), nil
}

// ListStagingSKUs lists the owner's staging SKUs holding unallocated stock
func (s *InventoryApplicationService) ListStagingSKUs(ctx context.Context, ownerID string) ([]SKUDTO, error) {
	skus, err := s.skus.FindAllStaging(ctx, ownerID)
	if err != nil {
		s.logger.Error("Failed to list staging SKUs", "error", err)
		return nil, fmt.Errorf("failed to list staging SKUs: %w", err)
	}
	return ToSKUDTOs(skus), nil
}

// UpdateSKU replaces a SKU's location and contents
func (s *InventoryApplicationService) UpdateSKU(ctx context.Context, cmd UpdateSKUCommand) (*SKUDTO, error) {
	sku, err := s.skus.FindByID(ctx, cmd.OwnerID, cmd.SKUID)
	if err != nil {
		s.logger.Error("Failed to get SKU", "skuId", cmd.SKUID, "error", err)
		return nil, fmt.Errorf("failed to get SKU: %w", err)
	}
	if sku == nil {
		return nil, errors.ErrNotFound("SKU")
	}
	if sku.Staging {
		return nil, errors.ErrValidation("staging SKUs are system-managed and cannot be edited directly")
	}
	if err := s.checkStagedSubparts(ctx, cmd.OwnerID, cmd.Products); err != nil {
		return nil, err
	}

	products := make([]domain.ProductEntry, 0, len(cmd.Products))
	for _, prod := range cmd.Products {
		parts := make([]domain.PartEntry, 0, len(prod.Parts))
		for _, part := range prod.Parts {
			color := part.Color
			if color == "" {
				color = domain.DefaultPartColor
			}
			parts = append(parts, domain.PartEntry{
				SubpartID: part.SubpartID,
				PartName:  part.PartName,
				Color:     color,
				Quantity:  part.Quantity,
			})
		}
		products = append(products, domain.ProductEntry{ProductID: prod.ProductID, Parts: parts})
	}

	replacement, err := domain.NewSKU(cmd.Location, sku.GroupID, products, sku.CreatedBy)
	if err != nil {
		return nil, errors.MapDomainError(err)
	}

	sku.Location = replacement.Location
	sku.Products = replacement.Products
	sku.UpdatedAt = replacement.UpdatedAt
	if err := s.skus.Update(ctx, cmd.OwnerID, sku); err != nil {
		if mongodb.IsDuplicateKey(err) {
			return nil, errors.ErrConflict(fmt.Sprintf("location %q is already in use", cmd.Location))
		}
		s.logger.Error("Failed to update SKU", "skuId", cmd.SKUID, "error", err)
		return nil, fmt.Errorf("failed to update SKU: %w", err)
	}

	s.logger.Info("Updated SKU", "skuId", cmd.SKUID, "location", cmd.Location)
	return ToSKUDTO(sku), nil
}

// DeleteSKU removes a SKU. Staging SKUs still holding stock are protected.
func (s *InventoryApplicationService) DeleteSKU(ctx context.Context, ownerID, id string) error {
	sku, err := s.skus.FindByID(ctx, ownerID, id)
	if err != nil {
		s.logger.Error("Failed to get SKU", "skuId", id, "error", err)
		return fmt.Errorf("failed to get SKU: %w", err)
	}
	if sku == nil {
		return errors.ErrNotFound("SKU")
	}
	if sku.Staging && len(sku.SubpartIDs()) > 0 {
		return errors.ErrConflict("staging SKU still holds unallocated stock")
	}

	if err := s.skus.Delete(ctx, ownerID, id); err != nil {
		s.logger.Error("Failed to delete SKU", "skuId", id, "error", err)
		return fmt.Errorf("failed to delete SKU: %w", err)
	}
	s.logger.Info("Deleted SKU", "skuId", id)
	return nil
}
