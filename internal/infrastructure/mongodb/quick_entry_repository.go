package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ledgerstack/erp-core/internal/domain"
)

// QuickEntryRepository persists manual ledger-adjustment requests
type QuickEntryRepository struct {
	collection *mongo.Collection
}

// NewQuickEntryRepository creates a new QuickEntryRepository
func NewQuickEntryRepository(db *mongo.Database) *QuickEntryRepository {
	repo := &QuickEntryRepository{collection: db.Collection("quick_entries")}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *QuickEntryRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdBy", Value: 1}, {Key: "date", Value: -1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Save inserts a quick entry
func (r *QuickEntryRepository) Save(ctx context.Context, entry *domain.QuickEntry) error {
	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to save quick entry: %w", err)
	}
	return nil
}

// FindByOwner returns the owner's quick entries newest-first
func (r *QuickEntryRepository) FindByOwner(ctx context.Context, ownerID string) ([]*domain.QuickEntry, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"createdBy": ownerID},
		options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find quick entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*domain.QuickEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode quick entries: %w", err)
	}
	return entries, nil
}
