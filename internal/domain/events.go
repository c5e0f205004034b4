package domain

import "time"

// DomainEvent represents a domain event interface
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// ProductionRecordedEvent is emitted when a production event is recorded or aggregated
type ProductionRecordedEvent struct {
	EventID      string    `json:"eventId"`
	UnitName     string    `json:"unitName"`
	ProductGroup string    `json:"productGroup"`
	Product      string    `json:"product"`
	SubpartID    string    `json:"subpartId"`
	PartName     string    `json:"partName"`
	Quantity     int       `json:"quantity"`
	Date         string    `json:"date"`
	RecordedAt   time.Time `json:"recordedAt"`
}

func (e *ProductionRecordedEvent) EventType() string     { return "production.output.recorded" }
func (e *ProductionRecordedEvent) OccurredAt() time.Time { return e.RecordedAt }

// StockReconciledEvent is emitted when produced stock lands in a SKU
type StockReconciledEvent struct {
	SKUID        string    `json:"skuId"`
	Location     string    `json:"location"`
	ProductID    string    `json:"productId"`
	SubpartID    string    `json:"subpartId"`
	PartName     string    `json:"partName"`
	Color        string    `json:"color"`
	Quantity     int       `json:"quantity"`
	Staged       bool      `json:"staged"`
	ReconciledAt time.Time `json:"reconciledAt"`
}

func (e *StockReconciledEvent) EventType() string     { return "inventory.stock.reconciled" }
func (e *StockReconciledEvent) OccurredAt() time.Time { return e.ReconciledAt }

// ReconciliationFailedEvent is emitted when a warehouse projection fails.
// The triggering production event stays committed; this event drives retry/alerting.
type ReconciliationFailedEvent struct {
	ProductID string    `json:"productId"`
	SubpartID string    `json:"subpartId"`
	PartName  string    `json:"partName"`
	Color     string    `json:"color"`
	Quantity  int       `json:"quantity"`
	Reason    string    `json:"reason"`
	FailedAt  time.Time `json:"failedAt"`
}

func (e *ReconciliationFailedEvent) EventType() string     { return "inventory.reconciliation.failed" }
func (e *ReconciliationFailedEvent) OccurredAt() time.Time { return e.FailedAt }

// LedgerEntryPostedEvent is emitted when a ledger entry is persisted
type LedgerEntryPostedEvent struct {
	EntryID   string    `json:"entryId"`
	Account   string    `json:"account"`
	Direction string    `json:"direction"`
	Debit     float64   `json:"debit"`
	Credit    float64   `json:"credit"`
	Balance   float64   `json:"balance"`
	VoucherNo string    `json:"voucherNo"`
	PostedAt  time.Time `json:"postedAt"`
}

func (e *LedgerEntryPostedEvent) EventType() string     { return "ledger.entry.posted" }
func (e *LedgerEntryPostedEvent) OccurredAt() time.Time { return e.PostedAt }

// OrderCreatedEvent is emitted when an order is created
type OrderCreatedEvent struct {
	OrderID   string    `json:"orderId"`
	Company   string    `json:"company"`
	Lines     int       `json:"lines"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func (e *OrderCreatedEvent) EventType() string     { return "order.created" }
func (e *OrderCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }
