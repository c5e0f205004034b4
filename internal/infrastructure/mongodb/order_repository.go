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

// OrderRepository persists customer orders
type OrderRepository struct {
	collection *mongo.Collection
}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository(db *mongo.Database) *OrderRepository {
	repo := &OrderRepository{collection: db.Collection("orders")}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *OrderRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdBy", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "company", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Save inserts a new order
func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	if _, err := r.collection.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}
	return nil
}

// FindByID returns the owner's order or (nil, nil) when absent
func (r *OrderRepository) FindByID(ctx context.Context, ownerID, id string) (*domain.Order, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var order domain.Order
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID, "createdBy": ownerID}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return &order, nil
}

// FindByOwner returns the owner's orders newest-first
func (r *OrderRepository) FindByOwner(ctx context.Context, ownerID string) ([]*domain.Order, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"createdBy": ownerID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []*domain.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

// Update replaces the owner's order document
func (r *OrderRepository) Update(ctx context.Context, ownerID string, order *domain.Order) error {
	order.UpdatedAt = time.Now().UTC()
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": order.ID, "createdBy": ownerID}, order)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// Delete removes the owner's order
func (r *OrderRepository) Delete(ctx context.Context, ownerID, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrOrderNotFound
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID, "createdBy": ownerID})
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}
