package domain

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductionDateLayout is the day-granular date format used for aggregation
const ProductionDateLayout = "2006-01-02"

// ProductionKey identifies the aggregation bucket of production output.
// Repeated events for the same key increment one record instead of
// creating duplicates.
type ProductionKey struct {
	UnitName     string `bson:"unitName" json:"unitName"`
	ProductGroup string `bson:"productGroup" json:"productGroup"`
	Product      string `bson:"product" json:"product"`
	SubpartID    string `bson:"subpartId" json:"subpartId"`
	PartIndex    int    `bson:"partIndex" json:"partIndex"`
	Date         string `bson:"date" json:"date"`
}

// ProductionEvent records that quantity units of a part were produced on a
// date at a named unit. Append-only; aggregated per ProductionKey.
type ProductionEvent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Key       ProductionKey      `bson:",inline" json:"key"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	CreatedBy string             `bson:"createdBy" json:"createdBy"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NewProductionEvent validates and creates a production event
func NewProductionEvent(key ProductionKey, quantity int, createdBy string) (*ProductionEvent, error) {
	if strings.TrimSpace(key.UnitName) == "" {
		return nil, ErrMissingUnitName
	}
	if strings.TrimSpace(key.Product) == "" {
		return nil, ErrMissingProduct
	}
	if strings.TrimSpace(key.SubpartID) == "" {
		return nil, ErrMissingSubpart
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if _, err := time.Parse(ProductionDateLayout, key.Date); err != nil {
		return nil, ErrInvalidDate
	}

	now := time.Now().UTC()
	return &ProductionEvent{
		ID:        primitive.NewObjectID(),
		Key:       key,
		Quantity:  quantity,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
