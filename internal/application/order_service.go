package application

import (
	"context"
	"fmt"

	"github.com/ledgerstack/erp-core/internal/domain"
	"github.com/ledgerstack/erp-core/pkg/errors"
	"github.com/ledgerstack/erp-core/pkg/logging"
)

// OrderApplicationService manages customer orders and their derived status
type OrderApplicationService struct {
	orders    domain.OrderRepository
	publisher domain.EventPublisher
	logger    *logging.Logger
}

// NewOrderApplicationService creates a new OrderApplicationService
func NewOrderApplicationService(
	orders domain.OrderRepository,
	publisher domain.EventPublisher,
	logger *logging.Logger,
) *OrderApplicationService {
	return &OrderApplicationService{
		orders:    orders,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateOrder creates a customer order
func (s *OrderApplicationService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*OrderDTO, error) {
	lines := make([]domain.OrderLine, 0, len(cmd.Lines))
	for _, line := range cmd.Lines {
		lines = append(lines, domain.OrderLine{
			ProductID: line.ProductID,
			Product:   line.Product,
			Quantity:  line.Quantity,
			Status:    domain.LineStatus(line.Status),
		})
	}

	order, err := domain.NewOrder(cmd.Company, lines, cmd.OwnerID)
	if err != nil {
		return nil, errors.MapDomainError(err)
	}

	events := order.GetDomainEvents()
	if err := s.orders.Save(ctx, order); err != nil {
		s.logger.Error("Failed to create order", "company", cmd.Company, "error", err)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	order.ClearDomainEvents()

	if s.publisher != nil {
		for _, event := range events {
			if err := s.publisher.Publish(ctx, event); err != nil {
				s.logger.Warn("Failed to publish event", "eventType", event.EventType(), "error", err)
			}
		}
	}

	s.logger.Info("Created order", "orderId", order.ID.Hex(), "company", cmd.Company, "lines", len(lines))
	return ToOrderDTO(order), nil
}

// GetOrder retrieves one order
func (s *OrderApplicationService) GetOrder(ctx context.Context, ownerID, id string) (*OrderDTO, error) {
	order, err := s.orders.FindByID(ctx, ownerID, id)
	if err != nil {
		s.logger.Error("Failed to get order", "orderId", id, "error", err)
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, errors.ErrNotFound("order")
	}
	return ToOrderDTO(order), nil
}

// ListOrders lists the owner's orders
func (s *OrderApplicationService) ListOrders(ctx context.Context, ownerID string) ([]OrderDTO, error) {
	orders, err := s.orders.FindByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("Failed to list orders", "error", err)
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return ToOrderDTOs(orders), nil
}

// UpdateOrderLine moves one line to a new status; the order's overall status
// is derived, never stored
func (s *OrderApplicationService) UpdateOrderLine(ctx context.Context, cmd UpdateOrderLineCommand) (*OrderDTO, error) {
	order, err := s.orders.FindByID(ctx, cmd.OwnerID, cmd.OrderID)
	if err != nil {
		s.logger.Error("Failed to get order", "orderId", cmd.OrderID, "error", err)
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, errors.ErrNotFound("order")
	}

	if err := order.UpdateLineStatus(cmd.LineIndex, domain.LineStatus(cmd.Status)); err != nil {
		return nil, errors.MapDomainError(err)
	}
	if err := s.orders.Update(ctx, cmd.OwnerID, order); err != nil {
		s.logger.Error("Failed to update order", "orderId", cmd.OrderID, "error", err)
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.logger.Info("Updated order line", "orderId", cmd.OrderID, "lineIndex", cmd.LineIndex, "status", cmd.Status)
	return ToOrderDTO(order), nil
}

// DeleteOrder removes an order
func (s *OrderApplicationService) DeleteOrder(ctx context.Context, ownerID, id string) error {
	order, err := s.orders.FindByID(ctx, ownerID, id)
	if err != nil {
		s.logger.Error("Failed to get order", "orderId", id, "error", err)
		return fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return errors.ErrNotFound("order")
	}

	if err := s.orders.Delete(ctx, ownerID, id); err != nil {
		s.logger.Error("Failed to delete order", "orderId", id, "error", err)
		return fmt.Errorf("failed to delete order: %w", err)
	}
	s.logger.Info("Deleted order", "orderId", id)
	return nil
}
