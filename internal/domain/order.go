package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LineStatus is the fulfilment status of one order line
type LineStatus string

const (
	LineStatusPending      LineStatus = "pending"
	LineStatusConfirmed    LineStatus = "confirmed"
	LineStatusInProduction LineStatus = "in_production"
	LineStatusReady        LineStatus = "ready"
	LineStatusShipped      LineStatus = "shipped"
	LineStatusDelivered    LineStatus = "delivered"
	LineStatusCancelled    LineStatus = "cancelled"
)

// IsValid checks if the line status is valid
func (s LineStatus) IsValid() bool {
	switch s {
	case LineStatusPending, LineStatusConfirmed, LineStatusInProduction,
		LineStatusReady, LineStatusShipped, LineStatusDelivered, LineStatusCancelled:
		return true
	default:
		return false
	}
}

// OrderStatus is the aggregate status derived from an order's line statuses
type OrderStatus string

const (
	OrderStatusPending      OrderStatus = "pending"
	OrderStatusConfirmed    OrderStatus = "confirmed"
	OrderStatusInProduction OrderStatus = "in_production"
	OrderStatusReady        OrderStatus = "ready"
	OrderStatusShipped      OrderStatus = "shipped"
	OrderStatusDelivered    OrderStatus = "delivered"
)

// OverallStatus derives the order status from its line statuses. Rules are
// evaluated top to bottom; the first match wins.
func OverallStatus(lines []LineStatus) OrderStatus {
	if len(lines) == 0 {
		return OrderStatusPending
	}

	allIn := func(allowed ...LineStatus) bool {
		for _, line := range lines {
			found := false
			for _, a := range allowed {
				if line == a {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	}

	anyIs := func(target LineStatus) bool {
		for _, line := range lines {
			if line == target {
				return true
			}
		}
		return false
	}

	switch {
	case allIn(LineStatusDelivered):
		return OrderStatusDelivered
	case allIn(LineStatusShipped, LineStatusDelivered):
		return OrderStatusShipped
	case allIn(LineStatusReady, LineStatusShipped, LineStatusDelivered):
		return OrderStatusReady
	case anyIs(LineStatusInProduction):
		return OrderStatusInProduction
	case anyIs(LineStatusConfirmed):
		return OrderStatusConfirmed
	default:
		return OrderStatusPending
	}
}

// OrderLine is one (product, quantity, status) line of an order
type OrderLine struct {
	ProductID string     `bson:"productId" json:"productId"`
	Product   string     `bson:"product" json:"product"`
	Quantity  int        `bson:"quantity" json:"quantity"`
	Status    LineStatus `bson:"status" json:"status"`
}

// Order is a set of product lines under one company. The overall status is
// never stored; it is recomputed from the lines on every read.
type Order struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Company      string             `bson:"company" json:"company"`
	Lines        []OrderLine        `bson:"lines" json:"lines"`
	CreatedBy    string             `bson:"createdBy" json:"createdBy"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
	DomainEvents []DomainEvent      `bson:"-" json:"-"`
}

// NewOrder validates and creates an order
func NewOrder(company string, lines []OrderLine, createdBy string) (*Order, error) {
	if strings.TrimSpace(company) == "" {
		return nil, ErrMissingCompany
	}
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}

	normalized := make([]OrderLine, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if line.Status == "" {
			line.Status = LineStatusPending
		}
		if !line.Status.IsValid() {
			return nil, ErrInvalidLineStatus
		}
		normalized = append(normalized, line)
	}

	now := time.Now().UTC()
	order := &Order{
		ID:        primitive.NewObjectID(),
		Company:   company,
		Lines:     normalized,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}

	order.DomainEvents = append(order.DomainEvents, &OrderCreatedEvent{
		OrderID:   order.ID.Hex(),
		Company:   company,
		Lines:     len(normalized),
		Status:    string(order.Status()),
		CreatedAt: now,
	})

	return order, nil
}

// Status recomputes the overall order status from the lines
func (o *Order) Status() OrderStatus {
	statuses := make([]LineStatus, len(o.Lines))
	for i, line := range o.Lines {
		statuses[i] = line.Status
	}
	return OverallStatus(statuses)
}

// UpdateLineStatus changes the status of the line at index
func (o *Order) UpdateLineStatus(index int, status LineStatus) error {
	if index < 0 || index >= len(o.Lines) {
		return ErrInvalidLineIndex
	}
	if !status.IsValid() {
		return ErrInvalidLineStatus
	}
	o.Lines[index].Status = status
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// GetDomainEvents returns all domain events
func (o *Order) GetDomainEvents() []DomainEvent {
	return o.DomainEvents
}

// ClearDomainEvents clears all domain events
func (o *Order) ClearDomainEvents() {
	o.DomainEvents = make([]DomainEvent, 0)
}
