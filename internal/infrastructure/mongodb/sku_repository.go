package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ledgerstack/erp-core/internal/domain"
)

// SKURepository persists SKU aggregates
type SKURepository struct {
	collection *mongo.Collection
}

// NewSKURepository creates a new SKURepository
func NewSKURepository(db *mongo.Database) *SKURepository {
	repo := &SKURepository{collection: db.Collection("skus")}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *SKURepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		// the location namespace is global so staging-slot races surface as
		// duplicate key errors and resolve via the suffix retry
		{Keys: bson.D{{Key: "location", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "createdBy", Value: 1}, {Key: "staging", Value: 1}}},
		{Keys: bson.D{{Key: "products.parts.subpartId", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Save inserts a new SKU. A unique index violation on location is returned
// unwrapped so callers can detect it.
func (r *SKURepository) Save(ctx context.Context, sku *domain.SKU) error {
	sku.UpdatedAt = time.Now().UTC()
	if _, err := r.collection.InsertOne(ctx, sku); err != nil {
		return err
	}
	return nil
}

// FindByID returns the owner's SKU or (nil, nil) when absent
func (r *SKURepository) FindByID(ctx context.Context, ownerID, id string) (*domain.SKU, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var sku domain.SKU
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID, "createdBy": ownerID}).Decode(&sku)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find SKU: %w", err)
	}
	return &sku, nil
}

// FindByOwner returns all of the owner's SKUs
func (r *SKURepository) FindByOwner(ctx context.Context, ownerID string) ([]*domain.SKU, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"createdBy": ownerID},
		options.Find().SetSort(bson.D{{Key: "location", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find SKUs: %w", err)
	}
	defer cursor.Close(ctx)

	var skus []*domain.SKU
	if err := cursor.All(ctx, &skus); err != nil {
		return nil, fmt.Errorf("failed to decode SKUs: %w", err)
	}
	return skus, nil
}

// FindStaging returns the owner's staging SKU for a product group, or (nil, nil)
func (r *SKURepository) FindStaging(ctx context.Context, ownerID, groupID string) (*domain.SKU, error) {
	var sku domain.SKU
	err := r.collection.FindOne(ctx, bson.M{
		"createdBy": ownerID,
		"staging":   true,
		"groupId":   groupID,
	}).Decode(&sku)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find staging SKU: %w", err)
	}
	return &sku, nil
}

// FindAllStaging returns every staging SKU of the owner
func (r *SKURepository) FindAllStaging(ctx context.Context, ownerID string) ([]*domain.SKU, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"createdBy": ownerID, "staging": true})
	if err != nil {
		return nil, fmt.Errorf("failed to find staging SKUs: %w", err)
	}
	defer cursor.Close(ctx)

	var skus []*domain.SKU
	if err := cursor.All(ctx, &skus); err != nil {
		return nil, fmt.Errorf("failed to decode staging SKUs: %w", err)
	}
	return skus, nil
}

// IncrementPart atomically bumps the quantity of the exact part tuple in
// whichever SKU of the owner holds it, returning the updated SKU or (nil, nil)
// when no SKU holds the tuple
func (r *SKURepository) IncrementPart(ctx context.Context, ownerID, productID, subpartID, partName, color string, quantity int) (*domain.SKU, error) {
	filter := bson.M{
		"createdBy": ownerID,
		"products": bson.M{"$elemMatch": bson.M{
			"productId": productID,
			"parts": bson.M{"$elemMatch": bson.M{
				"subpartId": subpartID,
				"partName":  partName,
				"color":     color,
			}},
		}},
	}
	update := bson.M{
		"$inc": bson.M{"products.$[p].parts.$[q].quantity": quantity},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().
		SetArrayFilters(options.ArrayFilters{Filters: []interface{}{
			bson.M{"p.productId": productID},
			bson.M{
				"q.subpartId": subpartID,
				"q.partName":  partName,
				"q.color":     color,
			},
		}}).
		SetReturnDocument(options.After)

	var sku domain.SKU
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&sku)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to increment part quantity: %w", err)
	}
	return &sku, nil
}

// Update replaces the owner's SKU document
func (r *SKURepository) Update(ctx context.Context, ownerID string, sku *domain.SKU) error {
	sku.UpdatedAt = time.Now().UTC()
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": sku.ID, "createdBy": ownerID}, sku)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrSKUNotFound
	}
	return nil
}

// Delete removes the owner's SKU
func (r *SKURepository) Delete(ctx context.Context, ownerID, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrSKUNotFound
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID, "createdBy": ownerID})
	if err != nil {
		return fmt.Errorf("failed to delete SKU: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrSKUNotFound
	}
	return nil
}
