package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ledgerstack/erp-core/internal/domain"
)

// ProductionEventRepository persists aggregated production records
type ProductionEventRepository struct {
	collection *mongo.Collection
}

// NewProductionEventRepository creates a new ProductionEventRepository
func NewProductionEventRepository(db *mongo.Database) *ProductionEventRepository {
	repo := &ProductionEventRepository{collection: db.Collection("production_events")}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *ProductionEventRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		// one record per aggregation bucket; Record relies on this to upsert
		{
			Keys: bson.D{
				{Key: "createdBy", Value: 1},
				{Key: "unitName", Value: 1},
				{Key: "productGroup", Value: 1},
				{Key: "product", Value: 1},
				{Key: "subpartId", Value: 1},
				{Key: "partIndex", Value: 1},
				{Key: "date", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "createdBy", Value: 1}, {Key: "date", Value: -1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Record increments the aggregation bucket for the event's key, inserting the
// record on first sight, and returns the stored state after the update
func (r *ProductionEventRepository) Record(ctx context.Context, event *domain.ProductionEvent) (*domain.ProductionEvent, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"createdBy":    event.CreatedBy,
		"unitName":     event.Key.UnitName,
		"productGroup": event.Key.ProductGroup,
		"product":      event.Key.Product,
		"subpartId":    event.Key.SubpartID,
		"partIndex":    event.Key.PartIndex,
		"date":         event.Key.Date,
	}
	update := bson.M{
		"$inc": bson.M{"quantity": event.Quantity},
		"$set": bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored domain.ProductionEvent
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return nil, fmt.Errorf("failed to record production event: %w", err)
	}
	return &stored, nil
}

// FindByOwner returns the owner's production records newest-day-first
func (r *ProductionEventRepository) FindByOwner(ctx context.Context, ownerID string) ([]*domain.ProductionEvent, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"createdBy": ownerID},
		options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find production events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*domain.ProductionEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode production events: %w", err)
	}
	return events, nil
}

// FindByDate returns the owner's production records for one day
func (r *ProductionEventRepository) FindByDate(ctx context.Context, ownerID, date string) ([]*domain.ProductionEvent, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"createdBy": ownerID, "date": date})
	if err != nil {
		return nil, fmt.Errorf("failed to find production events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*domain.ProductionEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode production events: %w", err)
	}
	return events, nil
}

// ExistsForSubpart reports whether the subpart has any recorded production
func (r *ProductionEventRepository) ExistsForSubpart(ctx context.Context, ownerID, subpartID string) (bool, error) {
	err := r.collection.FindOne(ctx, bson.M{"createdBy": ownerID, "subpartId": subpartID},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check production events: %w", err)
	}
	return true, nil
}
