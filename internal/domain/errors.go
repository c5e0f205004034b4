package domain

import "errors"

// Inventory errors
var (
	ErrSKUNotFound         = errors.New("sku not found")
	ErrSubpartNotFound     = errors.New("subpart not found")
	ErrLocationInUse       = errors.New("location already in use")
	ErrInvalidQuantity     = errors.New("quantity must be positive")
	ErrMissingPartName     = errors.New("part name is required")
	ErrMissingLocation     = errors.New("location is required")
	ErrSubpartInProduction = errors.New("subpart is referenced by production events")
	ErrUnallocatedStock    = errors.New("selected subparts still hold unallocated stock")
	ErrDuplicatePartTuple  = errors.New("part tuple already exists on sku")
)

// Ledger errors
var (
	ErrInvalidDirection   = errors.New("invalid ledger direction")
	ErrInvalidPostingKind = errors.New("invalid posting kind")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrMissingAccount     = errors.New("account is required")
	ErrEntryImmutable     = errors.New("ledger entries are immutable")
	ErrInvalidQuickEntry  = errors.New("invalid quick entry type")
)

// Production errors
var (
	ErrMissingUnitName = errors.New("unit name is required")
	ErrMissingProduct  = errors.New("product is required")
	ErrMissingSubpart  = errors.New("subpart reference is required")
	ErrInvalidDate     = errors.New("invalid production date")
)

// Order errors
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidLineStatus = errors.New("invalid order line status")
	ErrInvalidLineIndex  = errors.New("order line index must be within range")
	ErrEmptyOrder        = errors.New("order must contain at least one line")
	ErrMissingCompany    = errors.New("company is required")
)
