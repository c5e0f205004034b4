package domain

import "context"

// SKURepository defines the port for SKU persistence
type SKURepository interface {
	// Save persists a SKU document
	Save(ctx context.Context, sku *SKU) error

	// FindByID retrieves a SKU by ID scoped to an owner; (nil, nil) when absent
	FindByID(ctx context.Context, ownerID, id string) (*SKU, error)

	// FindByOwner retrieves all SKUs owned by ownerID
	FindByOwner(ctx context.Context, ownerID string) ([]*SKU, error)

	// FindStaging retrieves the owner's Unallocated SKU for a group; (nil, nil) when absent
	FindStaging(ctx context.Context, ownerID, groupID string) (*SKU, error)

	// FindAllStaging retrieves every Unallocated SKU owned by ownerID
	FindAllStaging(ctx context.Context, ownerID string) ([]*SKU, error)

	// IncrementPart atomically bumps the quantity of an existing exact
	// (product, subpart, partName, color) tuple on any SKU owned by
	// ownerID. Returns the updated SKU, or (nil, nil) when no SKU holds
	// the tuple.
	IncrementPart(ctx context.Context, ownerID, productID, subpartID, partName, color string, quantity int) (*SKU, error)

	// Update replaces a SKU document owned by ownerID
	Update(ctx context.Context, ownerID string, sku *SKU) error

	// Delete removes a SKU owned by ownerID
	Delete(ctx context.Context, ownerID, id string) error
}

// SubpartRepository defines the port for subpart catalog persistence
type SubpartRepository interface {
	Save(ctx context.Context, subpart *Subpart) error
	FindByID(ctx context.Context, ownerID, id string) (*Subpart, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*Subpart, error)
	FindByProduct(ctx context.Context, ownerID, productID string) ([]*Subpart, error)
	Update(ctx context.Context, ownerID string, subpart *Subpart) error
	Delete(ctx context.Context, ownerID, id string) error
}

// ProductionEventRepository defines the port for the production event log
type ProductionEventRepository interface {
	// Record upserts on the aggregation key: inserting a new event or
	// atomically incrementing the quantity of the existing one. Returns
	// the stored event after the write.
	Record(ctx context.Context, event *ProductionEvent) (*ProductionEvent, error)

	FindByOwner(ctx context.Context, ownerID string) ([]*ProductionEvent, error)
	FindByDate(ctx context.Context, ownerID, date string) ([]*ProductionEvent, error)

	// ExistsForSubpart reports whether any event references the subpart
	ExistsForSubpart(ctx context.Context, ownerID, subpartID string) (bool, error)
}

// LedgerEntryRepository defines the port for ledger entry persistence
type LedgerEntryRepository interface {
	// Save persists an immutable entry; entries are never updated or deleted
	Save(ctx context.Context, entry *LedgerEntry) error

	// FindLatest retrieves the most recent entry for (account, direction)
	// ordered by date descending; (nil, nil) when the account has no history
	FindLatest(ctx context.Context, ownerID, account string, direction Direction) (*LedgerEntry, error)

	// FindByAccount retrieves the full history for (account, direction)
	// ordered by date ascending
	FindByAccount(ctx context.Context, ownerID, account string, direction Direction) ([]*LedgerEntry, error)

	// FindByDirection retrieves all entries of one direction ordered by
	// account then date ascending
	FindByDirection(ctx context.Context, ownerID string, direction Direction) ([]*LedgerEntry, error)
}

// QuickEntryRepository defines the port for quick entry persistence
type QuickEntryRepository interface {
	Save(ctx context.Context, entry *QuickEntry) error
	FindByOwner(ctx context.Context, ownerID string) ([]*QuickEntry, error)
}

// OrderRepository defines the port for order persistence
type OrderRepository interface {
	Save(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, ownerID, id string) (*Order, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*Order, error)
	Update(ctx context.Context, ownerID string, order *Order) error
	Delete(ctx context.Context, ownerID, id string) error
}

// EventPublisher defines the port for publishing domain events
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
}
