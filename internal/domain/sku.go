package domain

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StagingLocation is the canonical pseudo-location for stock awaiting a physical slot
const StagingLocation = "Unallocated"

// StagingLocationFor returns the owner-suffixed staging location used when the
// canonical one is already taken by another owner
func StagingLocationFor(ownerID string) string {
	return fmt.Sprintf("%s-%s", StagingLocation, ownerID)
}

// PartEntry is a quantity of one colored part held by a SKU product
type PartEntry struct {
	SubpartID string `bson:"subpartId" json:"subpartId"`
	PartName  string `bson:"partName" json:"partName"`
	Color     string `bson:"color" json:"color"`
	Quantity  int    `bson:"quantity" json:"quantity"`
}

// ProductEntry groups the part entries of one product within a SKU
type ProductEntry struct {
	ProductID string      `bson:"productId" json:"productId"`
	Parts     []PartEntry `bson:"parts" json:"parts"`
}

// SKU aggregates product/part quantities held at one physical storage location
type SKU struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Location     string             `bson:"location" json:"location"`
	GroupID      string             `bson:"groupId" json:"groupId"`
	Products     []ProductEntry     `bson:"products" json:"products"`
	Staging      bool               `bson:"staging" json:"staging"`
	CreatedBy    string             `bson:"createdBy" json:"createdBy"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
	DomainEvents []DomainEvent      `bson:"-" json:"-"`
}

// NewSKU creates a user-authored SKU at a physical location
func NewSKU(location, groupID string, products []ProductEntry, createdBy string) (*SKU, error) {
	if strings.TrimSpace(location) == "" {
		return nil, ErrMissingLocation
	}

	for _, prod := range products {
		for _, part := range prod.Parts {
			if strings.TrimSpace(part.PartName) == "" {
				return nil, ErrMissingPartName
			}
			if part.Quantity < 0 {
				return nil, ErrInvalidQuantity
			}
		}
	}

	now := time.Now().UTC()
	return &SKU{
		ID:        primitive.NewObjectID(),
		Location:  location,
		GroupID:   groupID,
		Products:  products,
		Staging:   false,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NewStagingSKU creates the owner's Unallocated SKU for a product group
func NewStagingSKU(groupID, ownerID string) *SKU {
	now := time.Now().UTC()
	return &SKU{
		ID:        primitive.NewObjectID(),
		Location:  StagingLocation,
		GroupID:   groupID,
		Products:  make([]ProductEntry, 0),
		Staging:   true,
		CreatedBy: ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// FindPart returns the indices of the part entry matching the exact tuple,
// or (-1, -1) when absent
func (s *SKU) FindPart(productID, subpartID, partName, color string) (int, int) {
	for pi, prod := range s.Products {
		if prod.ProductID != productID {
			continue
		}
		for qi, part := range prod.Parts {
			if part.SubpartID == subpartID && part.PartName == partName && part.Color == color {
				return pi, qi
			}
		}
	}
	return -1, -1
}

// AddStock appends produced stock to the SKU. If the product already has an
// entry the part record is appended to it; otherwise a new product entry is
// created. Existing exact tuples are incremented instead of duplicated.
func (s *SKU) AddStock(productID, subpartID, partName, color string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	if pi, qi := s.FindPart(productID, subpartID, partName, color); pi >= 0 {
		s.Products[pi].Parts[qi].Quantity += quantity
		s.UpdatedAt = time.Now().UTC()
		return nil
	}

	entry := PartEntry{
		SubpartID: subpartID,
		PartName:  partName,
		Color:     color,
		Quantity:  quantity,
	}

	for pi, prod := range s.Products {
		if prod.ProductID == productID {
			s.Products[pi].Parts = append(s.Products[pi].Parts, entry)
			s.UpdatedAt = time.Now().UTC()
			return nil
		}
	}

	s.Products = append(s.Products, ProductEntry{
		ProductID: productID,
		Parts:     []PartEntry{entry},
	})
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// HoldsSubpart reports whether any product entry references the subpart
func (s *SKU) HoldsSubpart(subpartID string) bool {
	for _, prod := range s.Products {
		for _, part := range prod.Parts {
			if part.SubpartID == subpartID {
				return true
			}
		}
	}
	return false
}

// SubpartIDs returns the distinct subpart references held by the SKU
func (s *SKU) SubpartIDs() []string {
	seen := make(map[string]bool)
	ids := make([]string, 0)
	for _, prod := range s.Products {
		for _, part := range prod.Parts {
			if !seen[part.SubpartID] {
				seen[part.SubpartID] = true
				ids = append(ids, part.SubpartID)
			}
		}
	}
	return ids
}

// addDomainEvent adds a domain event
func (s *SKU) addDomainEvent(event DomainEvent) {
	s.DomainEvents = append(s.DomainEvents, event)
}

// RecordReconciliation attaches a stock-reconciled event to the aggregate
func (s *SKU) RecordReconciliation(productID, subpartID, partName, color string, quantity int, staged bool) {
	s.addDomainEvent(&StockReconciledEvent{
		SKUID:        s.ID.Hex(),
		Location:     s.Location,
		ProductID:    productID,
		SubpartID:    subpartID,
		PartName:     partName,
		Color:        color,
		Quantity:     quantity,
		Staged:       staged,
		ReconciledAt: time.Now().UTC(),
	})
}

// GetDomainEvents returns all domain events
func (s *SKU) GetDomainEvents() []DomainEvent {
	return s.DomainEvents
}

// ClearDomainEvents clears all domain events
func (s *SKU) ClearDomainEvents() {
	s.DomainEvents = make([]DomainEvent, 0)
}
