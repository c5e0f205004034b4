package application

import (
	"context"
	"fmt"
	"time"

	"github.com/ledgerstack/erp-core/internal/domain"
	"github.com/ledgerstack/erp-core/pkg/errors"
	"github.com/ledgerstack/erp-core/pkg/logging"
)

// ProductionApplicationService records production output and projects it into
// warehouse stock
type ProductionApplicationService struct {
	events    domain.ProductionEventRepository
	subparts  domain.SubpartRepository
	inventory *InventoryApplicationService
	publisher domain.EventPublisher
	logger    *logging.Logger
}

// NewProductionApplicationService creates a new ProductionApplicationService
func NewProductionApplicationService(
	events domain.ProductionEventRepository,
	subparts domain.SubpartRepository,
	inventory *InventoryApplicationService,
	publisher domain.EventPublisher,
	logger *logging.Logger,
) *ProductionApplicationService {
	return &ProductionApplicationService{
		events:    events,
		subparts:  subparts,
		inventory: inventory,
		publisher: publisher,
		logger:    logger,
	}
}

// Record persists a production event, aggregating quantity into the existing
// record for the same (unit, group, product, subpart, part, date) bucket. The
// warehouse projection runs afterwards; if it fails the production event stays
// committed and the failure is returned as a warning, never as an error.
func (s *ProductionApplicationService) Record(ctx context.Context, cmd RecordProductionCommand) (*ProductionResultDTO, error) {
	subpart, err := s.subparts.FindByID(ctx, cmd.OwnerID, cmd.SubpartID)
	if err != nil {
		s.logger.Error("Failed to get subpart", "subpartId", cmd.SubpartID, "error", err)
		return nil, fmt.Errorf("failed to get subpart: %w", err)
	}
	if subpart == nil {
		return nil, errors.ErrNotFound("subpart")
	}
	if cmd.PartIndex >= len(subpart.Parts) {
		return nil, errors.ErrValidation(fmt.Sprintf("part index %d out of range for subpart", cmd.PartIndex))
	}
	variant := subpart.Parts[cmd.PartIndex]

	key := domain.ProductionKey{
		UnitName:     cmd.UnitName,
		ProductGroup: cmd.ProductGroup,
		Product:      cmd.Product,
		SubpartID:    cmd.SubpartID,
		PartIndex:    cmd.PartIndex,
		Date:         cmd.Date,
	}
	event, err := domain.NewProductionEvent(key, cmd.Quantity, cmd.OwnerID)
	if err != nil {
		return nil, errors.MapDomainError(err)
	}

	stored, err := s.events.Record(ctx, event)
	if err != nil {
		s.logger.Error("Failed to record production", "unitName", cmd.UnitName, "subpartId", cmd.SubpartID, "error", err)
		return nil, fmt.Errorf("failed to record production: %w", err)
	}

	s.publishRecorded(ctx, stored, variant.PartName)
	s.logger.Info("Recorded production output",
		"unitName", cmd.UnitName, "subpartId", cmd.SubpartID, "partName", variant.PartName,
		"quantity", cmd.Quantity, "aggregated", stored.Quantity)

	result := &ProductionResultDTO{
		EventID:  stored.ID.Hex(),
		Quantity: stored.Quantity,
		Date:     stored.Key.Date,
	}

	// Warehouse projection: best effort, the recorded output is already durable
	reconciliation, err := s.inventory.Reconcile(ctx, cmd.OwnerID, cmd.ProductID, cmd.ProductGroup, cmd.SubpartID, variant.PartName, variant.Color, cmd.Quantity)
	if err != nil {
		s.logger.Warn("Stock reconciliation failed after production record",
			"subpartId", cmd.SubpartID, "partName", variant.PartName, "error", err)
		s.publishReconcileFailure(ctx, cmd, variant, err)
		result.Warning = fmt.Sprintf("production recorded but stock update failed: %v", err)
		return result, nil
	}
	result.Reconciliation = reconciliation

	return result, nil
}

func (s *ProductionApplicationService) publishRecorded(ctx context.Context, event *domain.ProductionEvent, partName string) {
	if s.publisher == nil {
		return
	}
	recorded := &domain.ProductionRecordedEvent{
		EventID:      event.ID.Hex(),
		UnitName:     event.Key.UnitName,
		ProductGroup: event.Key.ProductGroup,
		Product:      event.Key.Product,
		SubpartID:    event.Key.SubpartID,
		PartName:     partName,
		Quantity:     event.Quantity,
		Date:         event.Key.Date,
		RecordedAt:   event.UpdatedAt,
	}
	if err := s.publisher.Publish(ctx, recorded); err != nil {
		s.logger.Warn("Failed to publish event", "eventType", recorded.EventType(), "error", err)
	}
}

func (s *ProductionApplicationService) publishReconcileFailure(ctx context.Context, cmd RecordProductionCommand, variant domain.PartVariant, cause error) {
	if s.publisher == nil {
		return
	}
	failed := &domain.ReconciliationFailedEvent{
		ProductID: cmd.ProductID,
		SubpartID: cmd.SubpartID,
		PartName:  variant.PartName,
		Color:     variant.Color,
		Quantity:  cmd.Quantity,
		Reason:    cause.Error(),
		FailedAt:  time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, failed); err != nil {
		s.logger.Warn("Failed to publish event", "eventType", failed.EventType(), "error", err)
	}
}

// ListByOwner lists the owner's aggregated production records
func (s *ProductionApplicationService) ListByOwner(ctx context.Context, ownerID string) ([]ProductionEventDTO, error) {
	events, err := s.events.FindByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("Failed to list production records", "error", err)
		return nil, fmt.Errorf("failed to list production records: %w", err)
	}
	return ToProductionEventDTOs(events), nil
}

// ListByDate lists the owner's production records for one day
func (s *ProductionApplicationService) ListByDate(ctx context.Context, ownerID, date string) ([]ProductionEventDTO, error) {
	if _, err := time.Parse(domain.ProductionDateLayout, date); err != nil {
		return nil, errors.ErrValidation("date must be in YYYY-MM-DD format")
	}
	events, err := s.events.FindByDate(ctx, ownerID, date)
	if err != nil {
		s.logger.Error("Failed to list production records", "date", date, "error", err)
		return nil, fmt.Errorf("failed to list production records: %w", err)
	}
	return ToProductionEventDTOs(events), nil
}
