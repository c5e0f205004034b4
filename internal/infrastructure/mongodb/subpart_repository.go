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

// SubpartRepository persists subpart definitions
type SubpartRepository struct {
	collection *mongo.Collection
}

// NewSubpartRepository creates a new SubpartRepository
func NewSubpartRepository(db *mongo.Database) *SubpartRepository {
	repo := &SubpartRepository{collection: db.Collection("subparts")}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *SubpartRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdBy", Value: 1}, {Key: "productId", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Save inserts a new subpart
func (r *SubpartRepository) Save(ctx context.Context, subpart *domain.Subpart) error {
	if _, err := r.collection.InsertOne(ctx, subpart); err != nil {
		return fmt.Errorf("failed to save subpart: %w", err)
	}
	return nil
}

// FindByID returns the owner's subpart or (nil, nil) when absent
func (r *SubpartRepository) FindByID(ctx context.Context, ownerID, id string) (*domain.Subpart, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var subpart domain.Subpart
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID, "createdBy": ownerID}).Decode(&subpart)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find subpart: %w", err)
	}
	return &subpart, nil
}

// FindByOwner returns all of the owner's subparts
func (r *SubpartRepository) FindByOwner(ctx context.Context, ownerID string) ([]*domain.Subpart, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"createdBy": ownerID},
		options.Find().SetSort(bson.D{{Key: "product", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find subparts: %w", err)
	}
	defer cursor.Close(ctx)

	var subparts []*domain.Subpart
	if err := cursor.All(ctx, &subparts); err != nil {
		return nil, fmt.Errorf("failed to decode subparts: %w", err)
	}
	return subparts, nil
}

// FindByProduct returns the owner's subparts for one product
func (r *SubpartRepository) FindByProduct(ctx context.Context, ownerID, productID string) ([]*domain.Subpart, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"createdBy": ownerID, "productId": productID})
	if err != nil {
		return nil, fmt.Errorf("failed to find subparts: %w", err)
	}
	defer cursor.Close(ctx)

	var subparts []*domain.Subpart
	if err := cursor.All(ctx, &subparts); err != nil {
		return nil, fmt.Errorf("failed to decode subparts: %w", err)
	}
	return subparts, nil
}

// Update replaces the owner's subpart document
func (r *SubpartRepository) Update(ctx context.Context, ownerID string, subpart *domain.Subpart) error {
	subpart.UpdatedAt = time.Now().UTC()
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": subpart.ID, "createdBy": ownerID}, subpart)
	if err != nil {
		return fmt.Errorf("failed to update subpart: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrSubpartNotFound
	}
	return nil
}

// Delete removes the owner's subpart
func (r *SubpartRepository) Delete(ctx context.Context, ownerID, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrSubpartNotFound
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID, "createdBy": ownerID})
	if err != nil {
		return fmt.Errorf("failed to delete subpart: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrSubpartNotFound
	}
	return nil
}
