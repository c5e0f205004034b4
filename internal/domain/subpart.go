package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultPartColor is applied when a part variant omits its color
const DefaultPartColor = "Black"

// PartVariant is one colored part consumed per finished product unit
type PartVariant struct {
	PartName string `bson:"partName" json:"partName"`
	// Quantity is the number of this part consumed per one product unit
	Quantity int    `bson:"quantity" json:"quantity"`
	Color    string `bson:"color" json:"color"`
}

// Subpart is a component type with its colored part variants
type Subpart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID string             `bson:"productId" json:"productId"`
	Product   string             `bson:"product" json:"product"`
	Machine   string             `bson:"machine,omitempty" json:"machine,omitempty"`
	Parts     []PartVariant      `bson:"parts" json:"parts"`
	CreatedBy string             `bson:"createdBy" json:"createdBy"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewSubpart creates a subpart definition, defaulting missing part colors
func NewSubpart(productID, product, machine string, parts []PartVariant, createdBy string) (*Subpart, error) {
	if strings.TrimSpace(product) == "" {
		return nil, ErrMissingProduct
	}

	normalized := make([]PartVariant, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p.PartName) == "" {
			return nil, ErrMissingPartName
		}
		if p.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		if p.Color == "" {
			p.Color = DefaultPartColor
		}
		normalized = append(normalized, p)
	}

	now := time.Now().UTC()
	return &Subpart{
		ID:        primitive.NewObjectID(),
		ProductID: productID,
		Product:   product,
		Machine:   machine,
		Parts:     normalized,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Variant returns the part variant with the given name, if defined
func (s *Subpart) Variant(partName string) (PartVariant, bool) {
	for _, p := range s.Parts {
		if p.PartName == partName {
			return p, true
		}
	}
	return PartVariant{}, false
}
