package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerstack/erp-core/internal/domain"
	"github.com/ledgerstack/erp-core/internal/infrastructure/mongodb"
	storage "github.com/ledgerstack/erp-core/pkg/mongodb"
	sharedtesting "github.com/ledgerstack/erp-core/pkg/testing"
)

func setupTestDatabase(t *testing.T) *testContext {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	mongoContainer, err := sharedtesting.NewMongoDBContainer(ctx)
	require.NoError(t, err)

	client, err := mongoContainer.GetClient(ctx)
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := client.Disconnect(ctx); err != nil {
			t.Logf("Failed to disconnect MongoDB client: %v", err)
		}
		if err := mongoContainer.Close(ctx); err != nil {
			t.Logf("Failed to close MongoDB container: %v", err)
		}
	})

	db := client.Database("test_erp_core_db")
	return &testContext{
		skus:       mongodb.NewSKURepository(db),
		subparts:   mongodb.NewSubpartRepository(db),
		production: mongodb.NewProductionEventRepository(db),
		ledger:     mongodb.NewLedgerEntryRepository(db),
	}
}

type testContext struct {
	skus       *mongodb.SKURepository
	subparts   *mongodb.SubpartRepository
	production *mongodb.ProductionEventRepository
	ledger     *mongodb.LedgerEntryRepository
}

func buildTestSKU(t *testing.T, location, owner string) *domain.SKU {
	t.Helper()
	sku, err := domain.NewSKU(location, "group-1", []domain.ProductEntry{
		{
			ProductID: "prod-1",
			Parts: []domain.PartEntry{
				{SubpartID: "sp-1", PartName: "Lid", Color: "Black", Quantity: 10},
			},
		},
	}, owner)
	require.NoError(t, err)
	return sku
}

func TestSKURepository_SaveAndFind(t *testing.T) {
	repos := setupTestDatabase(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	t.Run("Save and find by ID", func(t *testing.T) {
		sku := buildTestSKU(t, "Rack-A1", "owner-1")
		require.NoError(t, repos.skus.Save(ctx, sku))

		found, err := repos.skus.FindByID(ctx, "owner-1", sku.ID.Hex())
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Rack-A1", found.Location)
		assert.Equal(t, 10, found.Products[0].Parts[0].Quantity)
	})

	t.Run("Find is scoped to the owner", func(t *testing.T) {
		sku := buildTestSKU(t, "Rack-A2", "owner-1")
		require.NoError(t, repos.skus.Save(ctx, sku))

		found, err := repos.skus.FindByID(ctx, "owner-2", sku.ID.Hex())
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("Duplicate location surfaces as duplicate key", func(t *testing.T) {
		first := buildTestSKU(t, "Rack-A3", "owner-1")
		require.NoError(t, repos.skus.Save(ctx, first))

		// The location index is global, so even another owner collides.
		second := buildTestSKU(t, "Rack-A3", "owner-2")
		err := repos.skus.Save(ctx, second)
		require.Error(t, err)
		assert.True(t, storage.IsDuplicateKey(err))
	})
}

func TestSKURepository_IncrementPart(t *testing.T) {
	repos := setupTestDatabase(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sku := buildTestSKU(t, "Rack-B1", "owner-1")
	require.NoError(t, repos.skus.Save(ctx, sku))

	t.Run("Increments an existing exact tuple", func(t *testing.T) {
		updated, err := repos.skus.IncrementPart(ctx, "owner-1", "prod-1", "sp-1", "Lid", "Black", 5)
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, 15, updated.Products[0].Parts[0].Quantity)
	})

	t.Run("Color is part of the tuple identity", func(t *testing.T) {
		updated, err := repos.skus.IncrementPart(ctx, "owner-1", "prod-1", "sp-1", "Lid", "Blue", 5)
		require.NoError(t, err)
		assert.Nil(t, updated)
	})

	t.Run("Unknown tuple returns nil without error", func(t *testing.T) {
		updated, err := repos.skus.IncrementPart(ctx, "owner-1", "prod-9", "sp-9", "Handle", "Black", 1)
		require.NoError(t, err)
		assert.Nil(t, updated)
	})

	t.Run("Does not cross owner boundaries", func(t *testing.T) {
		updated, err := repos.skus.IncrementPart(ctx, "owner-2", "prod-1", "sp-1", "Lid", "Black", 5)
		require.NoError(t, err)
		assert.Nil(t, updated)
	})
}

func TestSKURepository_Staging(t *testing.T) {
	repos := setupTestDatabase(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	staging := domain.NewStagingSKU("group-1", "owner-1")
	require.NoError(t, staging.AddStock("prod-1", "sp-1", "Lid", "Black", 4))
	require.NoError(t, repos.skus.Save(ctx, staging))

	t.Run("FindStaging returns the owner's staging SKU", func(t *testing.T) {
		found, err := repos.skus.FindStaging(ctx, "owner-1", "group-1")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.True(t, found.Staging)
		assert.Equal(t, domain.StagingLocation, found.Location)
	})

	t.Run("FindStaging for another owner is empty", func(t *testing.T) {
		found, err := repos.skus.FindStaging(ctx, "owner-2", "group-1")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("FindAllStaging skips physical SKUs", func(t *testing.T) {
		physical := buildTestSKU(t, "Rack-C1", "owner-1")
		require.NoError(t, repos.skus.Save(ctx, physical))

		all, err := repos.skus.FindAllStaging(ctx, "owner-1")
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.True(t, all[0].Staging)
	})
}

func TestSubpartRepository_CRUD(t *testing.T) {
	repos := setupTestDatabase(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	subpart, err := domain.NewSubpart("prod-1", "Bottle", "Molder-3", []domain.PartVariant{
		{PartName: "Lid", Quantity: 2, Color: "Red"},
	}, "owner-1")
	require.NoError(t, err)
	require.NoError(t, repos.subparts.Save(ctx, subpart))

	t.Run("Find by ID and by product", func(t *testing.T) {
		found, err := repos.subparts.FindByID(ctx, "owner-1", subpart.ID.Hex())
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Bottle", found.Product)

		byProduct, err := repos.subparts.FindByProduct(ctx, "owner-1", "prod-1")
		require.NoError(t, err)
		assert.Len(t, byProduct, 1)
	})

	t.Run("Update and delete", func(t *testing.T) {
		subpart.Machine = "Molder-4"
		require.NoError(t, repos.subparts.Update(ctx, "owner-1", subpart))

		found, err := repos.subparts.FindByID(ctx, "owner-1", subpart.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, "Molder-4", found.Machine)

		require.NoError(t, repos.subparts.Delete(ctx, "owner-1", subpart.ID.Hex()))
		found, err = repos.subparts.FindByID(ctx, "owner-1", subpart.ID.Hex())
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestProductionEventRepository_Record(t *testing.T) {
	repos := setupTestDatabase(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	key := domain.ProductionKey{
		UnitName:     "Unit-1",
		ProductGroup: "group-1",
		Product:      "prod-1",
		SubpartID:    "sp-1",
		PartIndex:    0,
		Date:         "2025-03-10",
	}

	t.Run("Same key aggregates into one record", func(t *testing.T) {
		first, err := domain.NewProductionEvent(key, 10, "owner-1")
		require.NoError(t, err)
		stored, err := repos.production.Record(ctx, first)
		require.NoError(t, err)
		assert.Equal(t, 10, stored.Quantity)

		second, err := domain.NewProductionEvent(key, 5, "owner-1")
		require.NoError(t, err)
		stored, err = repos.production.Record(ctx, second)
		require.NoError(t, err)
		assert.Equal(t, 15, stored.Quantity)

		events, err := repos.production.FindByOwner(ctx, "owner-1")
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("Different date is a different bucket", func(t *testing.T) {
		nextDay := key
		nextDay.Date = "2025-03-11"
		event, err := domain.NewProductionEvent(nextDay, 3, "owner-1")
		require.NoError(t, err)
		stored, err := repos.production.Record(ctx, event)
		require.NoError(t, err)
		assert.Equal(t, 3, stored.Quantity)

		byDate, err := repos.production.FindByDate(ctx, "owner-1", "2025-03-11")
		require.NoError(t, err)
		require.Len(t, byDate, 1)
		assert.Equal(t, 3, byDate[0].Quantity)
	})

	t.Run("ExistsForSubpart", func(t *testing.T) {
		exists, err := repos.production.ExistsForSubpart(ctx, "owner-1", "sp-1")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repos.production.ExistsForSubpart(ctx, "owner-1", "sp-unused")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestLedgerEntryRepository_Ordering(t *testing.T) {
	repos := setupTestDatabase(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	post := func(amount, lastBalance float64, side domain.Side) *domain.LedgerEntry {
		entry, err := domain.NewLedgerEntry("Acme Suppliers", domain.DirectionPayable, side, amount, lastBalance, "V-1", "", "", "owner-1")
		require.NoError(t, err)
		require.NoError(t, repos.ledger.Save(ctx, entry))
		// createdAt has millisecond precision in storage; keep the ordering unambiguous
		time.Sleep(5 * time.Millisecond)
		return entry
	}

	post(1200, 0, domain.SideDebit)    // balance 1200
	post(500, 1200, domain.SideCredit) // balance 700

	t.Run("FindLatest returns the newest entry", func(t *testing.T) {
		latest, err := repos.ledger.FindLatest(ctx, "owner-1", "Acme Suppliers", domain.DirectionPayable)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, 700.0, latest.Balance)
	})

	t.Run("FindLatest for an unknown account is empty", func(t *testing.T) {
		latest, err := repos.ledger.FindLatest(ctx, "owner-1", "Nobody", domain.DirectionPayable)
		require.NoError(t, err)
		assert.Nil(t, latest)
	})

	t.Run("FindByAccount returns oldest first", func(t *testing.T) {
		entries, err := repos.ledger.FindByAccount(ctx, "owner-1", "Acme Suppliers", domain.DirectionPayable)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, 1200.0, entries[0].Balance)
		assert.Equal(t, 700.0, entries[1].Balance)
	})

	t.Run("FindLatest breaks same-millisecond ties by insertion order", func(t *testing.T) {
		stamp := time.Now().UTC().Truncate(time.Millisecond)
		for i, balance := range []float64{50, 90} {
			entry, err := domain.NewLedgerEntry("Tied Traders", domain.DirectionPayable, domain.SideDebit, 40, balance-40, fmt.Sprintf("T-%d", i), "", "", "owner-1")
			require.NoError(t, err)
			entry.CreatedAt = stamp
			require.NoError(t, repos.ledger.Save(ctx, entry))
		}

		latest, err := repos.ledger.FindLatest(ctx, "owner-1", "Tied Traders", domain.DirectionPayable)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, 90.0, latest.Balance)
	})

	t.Run("FindByDirection separates payable from receivable", func(t *testing.T) {
		receivable, err := domain.NewLedgerEntry("Acme Suppliers", domain.DirectionReceivable, domain.SideDebit, 300, 0, "V-2", "", "", "owner-1")
		require.NoError(t, err)
		require.NoError(t, repos.ledger.Save(ctx, receivable))

		entries, err := repos.ledger.FindByDirection(ctx, "owner-1", domain.DirectionReceivable)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, 300.0, entries[0].Balance)
	})
}
