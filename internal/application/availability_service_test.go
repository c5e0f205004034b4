package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerstack/erp-core/internal/domain"
)

func TestGetAvailability(t *testing.T) {
	bottle, err := domain.NewSubpart("p1", "Bottle", "Molder-1", []domain.PartVariant{
		{PartName: "Lid", Quantity: 2, Color: "Red"},
		{PartName: "Body", Quantity: 1, Color: "Red"},
	}, "owner-1")
	require.NoError(t, err)
	jar, err := domain.NewSubpart("p2", "Jar", "Molder-2", []domain.PartVariant{
		{PartName: "Cap", Quantity: 1, Color: "Black"},
	}, "owner-1")
	require.NoError(t, err)
	tray, err := domain.NewSubpart("p3", "Tray", "Molder-2", []domain.PartVariant{
		{PartName: "Base", Quantity: 1, Color: "Black"},
	}, "owner-1")
	require.NoError(t, err)

	rack, err := domain.NewSKU("Rack-A", "group-1", []domain.ProductEntry{
		{ProductID: "p1", Parts: []domain.PartEntry{
			{SubpartID: bottle.ID.Hex(), PartName: "Lid", Color: "Red", Quantity: 5},
			{SubpartID: bottle.ID.Hex(), PartName: "Body", Color: "Red", Quantity: 9},
		}},
		{ProductID: "p2", Parts: []domain.PartEntry{
			{SubpartID: jar.ID.Hex(), PartName: "Cap", Color: "Black", Quantity: 12},
		}},
	}, "owner-1")
	require.NoError(t, err)
	staging := domain.NewStagingSKU("group-1", "owner-1")
	require.NoError(t, staging.AddStock("p1", bottle.ID.Hex(), "Lid", "Red", 3))

	subparts := &fakeSubpartRepo{subparts: []*domain.Subpart{bottle, jar, tray}}
	skus := &fakeSKURepo{skus: []*domain.SKU{rack, staging}}
	svc := NewAvailabilityApplicationService(subparts, skus, testLogger())

	t.Run("ranks products by buildable quantity", func(t *testing.T) {
		list, err := svc.GetAvailability(context.Background(), GetAvailabilityQuery{OwnerID: "owner-1"})
		require.NoError(t, err)
		require.Len(t, list, 3)

		// Jar: 12/1 = 12; Bottle: min(8/2, 9/1) = 4; Tray: no stock = 0
		assert.Equal(t, "Jar", list[0].Product)
		assert.Equal(t, 12, list[0].Buildable)
		assert.Equal(t, "Bottle", list[1].Product)
		assert.Equal(t, 4, list[1].Buildable)
		assert.Equal(t, "Tray", list[2].Product)
		assert.Equal(t, 0, list[2].Buildable)
	})

	t.Run("truncates to topN", func(t *testing.T) {
		list, err := svc.GetAvailability(context.Background(), GetAvailabilityQuery{OwnerID: "owner-1", TopN: 1})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Jar", list[0].Product)
	})

	t.Run("owner with no subparts gets an empty list", func(t *testing.T) {
		list, err := svc.GetAvailability(context.Background(), GetAvailabilityQuery{OwnerID: "owner-2"})
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}
