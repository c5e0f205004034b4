package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerstack/erp-core/internal/domain"
)

func newInventoryService(skus *fakeSKURepo, subparts *fakeSubpartRepo, events *fakeProductionRepo) *InventoryApplicationService {
	if subparts == nil {
		subparts = &fakeSubpartRepo{}
	}
	if events == nil {
		events = &fakeProductionRepo{}
	}
	return NewInventoryApplicationService(skus, subparts, events, &fakePublisher{}, testLogger())
}

func TestReconcile_IncrementsExistingTuple(t *testing.T) {
	sku, err := domain.NewSKU("Rack-A", "group-1", []domain.ProductEntry{
		{ProductID: "p1", Parts: []domain.PartEntry{
			{SubpartID: "sp1", PartName: "Lid", Color: "Red", Quantity: 5},
		}},
	}, "owner-1")
	require.NoError(t, err)
	repo := &fakeSKURepo{skus: []*domain.SKU{sku}}
	svc := newInventoryService(repo, nil, nil)

	result, err := svc.Reconcile(context.Background(), "owner-1", "p1", "group-1", "sp1", "Lid", "Red", 3)
	require.NoError(t, err)

	assert.False(t, result.IsNew)
	assert.Equal(t, "Rack-A", result.Location)
	assert.Equal(t, 8, sku.Products[0].Parts[0].Quantity)
	// no staging SKU was created
	staging, _ := repo.FindAllStaging(context.Background(), "owner-1")
	assert.Empty(t, staging)
}

func TestReconcile_StagesIntoExistingUnallocatedSKU(t *testing.T) {
	staging := domain.NewStagingSKU("group-1", "owner-1")
	repo := &fakeSKURepo{skus: []*domain.SKU{staging}}
	svc := newInventoryService(repo, nil, nil)

	result, err := svc.Reconcile(context.Background(), "owner-1", "p1", "group-1", "sp1", "Lid", "Red", 5)
	require.NoError(t, err)

	assert.False(t, result.IsNew)
	assert.Equal(t, domain.StagingLocation, result.Location)
	require.Len(t, staging.Products, 1)
	assert.Equal(t, 5, staging.Products[0].Parts[0].Quantity)
}

func TestReconcile_CreatesStagingSKU(t *testing.T) {
	repo := &fakeSKURepo{}
	svc := newInventoryService(repo, nil, nil)

	result, err := svc.Reconcile(context.Background(), "owner-1", "p1", "group-1", "sp1", "Lid", "Red", 5)
	require.NoError(t, err)

	assert.True(t, result.IsNew)
	assert.Equal(t, domain.StagingLocation, result.Location)
	require.Len(t, repo.skus, 1)
	assert.True(t, repo.skus[0].Staging)
}

func TestReconcile_RetriesWithOwnerSuffixOnLocationConflict(t *testing.T) {
	// another owner already claimed the canonical staging location
	other := domain.NewStagingSKU("group-9", "owner-2")
	repo := &fakeSKURepo{skus: []*domain.SKU{other}}
	svc := newInventoryService(repo, nil, nil)

	result, err := svc.Reconcile(context.Background(), "owner-1", "p1", "group-1", "sp1", "Lid", "Red", 5)
	require.NoError(t, err)

	assert.True(t, result.IsNew)
	assert.Equal(t, domain.StagingLocationFor("owner-1"), result.Location)
}

func TestReconcile_AdoptsConcurrentlyCreatedStagingSKU(t *testing.T) {
	// the owner's staging SKU lands between the lookup and the insert
	racing := domain.NewStagingSKU("group-1", "owner-1")
	repo := &fakeSKURepo{skus: []*domain.SKU{racing}, stagingMissOnce: true}
	svc := newInventoryService(repo, nil, nil)

	result, err := svc.Reconcile(context.Background(), "owner-1", "p1", "group-1", "sp1", "Lid", "Red", 5)
	require.NoError(t, err)

	// the stock joins the winner instead of a second suffixed SKU
	assert.False(t, result.IsNew)
	assert.Equal(t, domain.StagingLocation, result.Location)
	require.Len(t, repo.skus, 1)
	require.Len(t, racing.Products, 1)
	assert.Equal(t, 5, racing.Products[0].Parts[0].Quantity)
}

func TestReconcile_DefaultsColor(t *testing.T) {
	repo := &fakeSKURepo{}
	svc := newInventoryService(repo, nil, nil)

	_, err := svc.Reconcile(context.Background(), "owner-1", "p1", "group-1", "sp1", "Lid", "", 5)
	require.NoError(t, err)

	require.Len(t, repo.skus, 1)
	assert.Equal(t, domain.DefaultPartColor, repo.skus[0].Products[0].Parts[0].Color)
}

func TestReconcile_RejectsNonPositiveQuantity(t *testing.T) {
	svc := newInventoryService(&fakeSKURepo{}, nil, nil)

	_, err := svc.Reconcile(context.Background(), "owner-1", "p1", "group-1", "sp1", "Lid", "Red", 0)
	assert.Error(t, err)
}

func TestReconcile_PropagatesStorageFailure(t *testing.T) {
	repo := &fakeSKURepo{incrementErr: errors.New("connection reset")}
	svc := newInventoryService(repo, nil, nil)

	_, err := svc.Reconcile(context.Background(), "owner-1", "p1", "group-1", "sp1", "Lid", "Red", 5)
	assert.Error(t, err)
}

func TestCreateSKU_RejectsWhenSelectedSubpartIsStaged(t *testing.T) {
	staging := domain.NewStagingSKU("group-1", "owner-1")
	require.NoError(t, staging.AddStock("p1", "sp1", "Lid", "Red", 5))
	repo := &fakeSKURepo{skus: []*domain.SKU{staging}}
	svc := newInventoryService(repo, nil, nil)

	_, err := svc.CreateSKU(context.Background(), CreateSKUCommand{
		OwnerID:  "owner-1",
		Location: "Rack-A",
		Products: []ProductEntry{
			{ProductID: "p1", Parts: []PartEntry{{SubpartID: "sp1", PartName: "Lid", Quantity: 5}}},
		},
	})
	assert.Error(t, err)
}

func TestCreateSKU_AllowsUnrelatedSubparts(t *testing.T) {
	staging := domain.NewStagingSKU("group-1", "owner-1")
	require.NoError(t, staging.AddStock("p1", "sp1", "Lid", "Red", 5))
	repo := &fakeSKURepo{skus: []*domain.SKU{staging}}
	svc := newInventoryService(repo, nil, nil)

	// the staged-stock check covers only the subparts referenced by this SKU
	dto, err := svc.CreateSKU(context.Background(), CreateSKUCommand{
		OwnerID:  "owner-1",
		Location: "Rack-A",
		Products: []ProductEntry{
			{ProductID: "p2", Parts: []PartEntry{{SubpartID: "sp2", PartName: "Body", Quantity: 3}}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Rack-A", dto.Location)
	assert.False(t, dto.Staging)
}

func TestCreateSKU_RejectsDuplicateLocation(t *testing.T) {
	existing, err := domain.NewSKU("Rack-A", "group-1", nil, "owner-1")
	require.NoError(t, err)
	repo := &fakeSKURepo{skus: []*domain.SKU{existing}}
	svc := newInventoryService(repo, nil, nil)

	_, err = svc.CreateSKU(context.Background(), CreateSKUCommand{
		OwnerID:  "owner-1",
		Location: "Rack-A",
		Products: []ProductEntry{},
	})
	assert.Error(t, err)
}

func TestUpdateSKU_RefusesStagingSKU(t *testing.T) {
	staging := domain.NewStagingSKU("group-1", "owner-1")
	repo := &fakeSKURepo{skus: []*domain.SKU{staging}}
	svc := newInventoryService(repo, nil, nil)

	_, err := svc.UpdateSKU(context.Background(), UpdateSKUCommand{
		OwnerID:  "owner-1",
		SKUID:    staging.ID.Hex(),
		Location: "Rack-Z",
		Products: []ProductEntry{},
	})
	assert.Error(t, err)
}

func TestDeleteSKU_ProtectsStagingWithStock(t *testing.T) {
	staging := domain.NewStagingSKU("group-1", "owner-1")
	require.NoError(t, staging.AddStock("p1", "sp1", "Lid", "Red", 5))
	repo := &fakeSKURepo{skus: []*domain.SKU{staging}}
	svc := newInventoryService(repo, nil, nil)

	err := svc.DeleteSKU(context.Background(), "owner-1", staging.ID.Hex())
	assert.Error(t, err)
	require.Len(t, repo.skus, 1)
}

func TestDeleteSubpart_RefusedWhileProductionExists(t *testing.T) {
	subpart, err := domain.NewSubpart("p1", "Bottle", "Molder-1", []domain.PartVariant{
		{PartName: "Lid", Quantity: 1},
	}, "owner-1")
	require.NoError(t, err)
	subparts := &fakeSubpartRepo{subparts: []*domain.Subpart{subpart}}

	event, err := domain.NewProductionEvent(domain.ProductionKey{
		UnitName:  "Unit-1",
		Product:   "Bottle",
		SubpartID: subpart.ID.Hex(),
		Date:      "2025-03-10",
	}, 10, "owner-1")
	require.NoError(t, err)
	events := &fakeProductionRepo{events: []*domain.ProductionEvent{event}}

	svc := newInventoryService(&fakeSKURepo{}, subparts, events)

	err = svc.DeleteSubpart(context.Background(), "owner-1", subpart.ID.Hex())
	assert.Error(t, err)
	require.Len(t, subparts.subparts, 1)
}

func TestSubpartCRUD(t *testing.T) {
	subparts := &fakeSubpartRepo{}
	svc := newInventoryService(&fakeSKURepo{}, subparts, nil)

	dto, err := svc.CreateSubpart(context.Background(), CreateSubpartCommand{
		OwnerID:   "owner-1",
		ProductID: "p1",
		Product:   "Bottle",
		Machine:   "Molder-1",
		Parts:     []PartVariant{{PartName: "Lid", Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPartColor, dto.Parts[0].Color)

	got, err := svc.GetSubpart(context.Background(), "owner-1", dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bottle", got.Product)

	list, err := svc.ListSubparts(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.GetSubpart(context.Background(), "owner-1", "000000000000000000000000")
	assert.Error(t, err)

	require.NoError(t, svc.DeleteSubpart(context.Background(), "owner-1", dto.ID))
	assert.Empty(t, subparts.subparts)
}
