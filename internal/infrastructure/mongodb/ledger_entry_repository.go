package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ledgerstack/erp-core/internal/domain"
)

// LedgerEntryRepository persists immutable ledger postings. There is no
// update or delete: corrections are posted as new entries.
type LedgerEntryRepository struct {
	collection *mongo.Collection
}

// NewLedgerEntryRepository creates a new LedgerEntryRepository
func NewLedgerEntryRepository(db *mongo.Database) *LedgerEntryRepository {
	repo := &LedgerEntryRepository{collection: db.Collection("ledger_entries")}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *LedgerEntryRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "entryId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{
			{Key: "createdBy", Value: 1},
			{Key: "account", Value: 1},
			{Key: "direction", Value: 1},
			{Key: "createdAt", Value: -1},
		}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Save appends a new ledger entry
func (r *LedgerEntryRepository) Save(ctx context.Context, entry *domain.LedgerEntry) error {
	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to save ledger entry: %w", err)
	}
	return nil
}

// FindLatest returns the account's newest entry in one direction, or
// (nil, nil) when the account has no history. The _id sort breaks ties
// between entries sharing the same millisecond timestamp.
func (r *LedgerEntryRepository) FindLatest(ctx context.Context, ownerID, account string, direction domain.Direction) (*domain.LedgerEntry, error) {
	var entry domain.LedgerEntry
	err := r.collection.FindOne(ctx,
		bson.M{"createdBy": ownerID, "account": account, "direction": direction},
		options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}),
	).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest ledger entry: %w", err)
	}
	return &entry, nil
}

// FindByAccount returns the account's entries oldest-first
func (r *LedgerEntryRepository) FindByAccount(ctx context.Context, ownerID, account string, direction domain.Direction) ([]*domain.LedgerEntry, error) {
	cursor, err := r.collection.Find(ctx,
		bson.M{"createdBy": ownerID, "account": account, "direction": direction},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find ledger entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*domain.LedgerEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode ledger entries: %w", err)
	}
	return entries, nil
}

// FindByDirection returns the owner's entries in one direction, grouped by
// account through the sort so per-account rollups see oldest-first order
func (r *LedgerEntryRepository) FindByDirection(ctx context.Context, ownerID string, direction domain.Direction) ([]*domain.LedgerEntry, error) {
	cursor, err := r.collection.Find(ctx,
		bson.M{"createdBy": ownerID, "direction": direction},
		options.Find().SetSort(bson.D{{Key: "account", Value: 1}, {Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find ledger entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*domain.LedgerEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode ledger entries: %w", err)
	}
	return entries, nil
}
