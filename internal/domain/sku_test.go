package domain

import (
	"testing"
)

func TestNewSKU(t *testing.T) {
	tests := []struct {
		name        string
		location    string
		products    []ProductEntry
		expectError bool
	}{
		{
			name:     "valid sku",
			location: "Rack-A",
			products: []ProductEntry{
				{ProductID: "p1", Parts: []PartEntry{{SubpartID: "sp1", PartName: "Lid", Color: "Red", Quantity: 5}}},
			},
			expectError: false,
		},
		{
			name:        "missing location",
			location:    "   ",
			products:    nil,
			expectError: true,
		},
		{
			name:     "missing part name",
			location: "Rack-A",
			products: []ProductEntry{
				{ProductID: "p1", Parts: []PartEntry{{SubpartID: "sp1", PartName: "", Quantity: 5}}},
			},
			expectError: true,
		},
		{
			name:     "negative quantity",
			location: "Rack-A",
			products: []ProductEntry{
				{ProductID: "p1", Parts: []PartEntry{{SubpartID: "sp1", PartName: "Lid", Quantity: -1}}},
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sku, err := NewSKU(tt.location, "group-1", tt.products, "user-1")

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sku.Staging {
				t.Errorf("user-authored sku must not be staging")
			}
			if sku.Location != tt.location {
				t.Errorf("expected location %s, got %s", tt.location, sku.Location)
			}
		})
	}
}

func TestNewStagingSKU(t *testing.T) {
	sku := NewStagingSKU("group-1", "user-1")

	if sku.Location != StagingLocation {
		t.Errorf("expected location %s, got %s", StagingLocation, sku.Location)
	}
	if !sku.Staging {
		t.Errorf("expected staging flag set")
	}
	if len(sku.Products) != 0 {
		t.Errorf("expected empty products, got %d", len(sku.Products))
	}
}

func TestStagingLocationFor(t *testing.T) {
	if got := StagingLocationFor("owner-7"); got != "Unallocated-owner-7" {
		t.Errorf("expected Unallocated-owner-7, got %s", got)
	}
}

func TestSKU_AddStock(t *testing.T) {
	sku := NewStagingSKU("group-1", "user-1")

	if err := sku.AddStock("p1", "sp1", "Lid", "Red", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sku.Products) != 1 || len(sku.Products[0].Parts) != 1 {
		t.Fatalf("expected one product with one part")
	}

	// same tuple increments in place
	if err := sku.AddStock("p1", "sp1", "Lid", "Red", 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := sku.Products[0].Parts[0].Quantity; got != 8 {
		t.Errorf("expected quantity 8, got %d", got)
	}
	if len(sku.Products[0].Parts) != 1 {
		t.Errorf("increment must not duplicate the part entry")
	}

	// new part under existing product appends to its part list
	if err := sku.AddStock("p1", "sp1", "Lid", "Blue", 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sku.Products) != 1 {
		t.Errorf("expected single product entry, got %d", len(sku.Products))
	}
	if len(sku.Products[0].Parts) != 2 {
		t.Errorf("expected 2 part entries, got %d", len(sku.Products[0].Parts))
	}

	// unseen product creates a new product entry
	if err := sku.AddStock("p2", "sp2", "Body", "Black", 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sku.Products) != 2 {
		t.Errorf("expected 2 product entries, got %d", len(sku.Products))
	}

	if err := sku.AddStock("p1", "sp1", "Lid", "Red", 0); err != ErrInvalidQuantity {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestSKU_FindPart(t *testing.T) {
	sku := NewStagingSKU("group-1", "user-1")
	if err := sku.AddStock("p1", "sp1", "Lid", "Red", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pi, qi := sku.FindPart("p1", "sp1", "Lid", "Red")
	if pi != 0 || qi != 0 {
		t.Errorf("expected (0,0), got (%d,%d)", pi, qi)
	}

	// color is part of the identity tuple
	pi, qi = sku.FindPart("p1", "sp1", "Lid", "Blue")
	if pi != -1 || qi != -1 {
		t.Errorf("expected (-1,-1), got (%d,%d)", pi, qi)
	}
}

func TestSKU_HoldsSubpartAndSubpartIDs(t *testing.T) {
	sku := NewStagingSKU("group-1", "user-1")
	_ = sku.AddStock("p1", "sp1", "Lid", "Red", 5)
	_ = sku.AddStock("p1", "sp1", "Lid", "Blue", 2)
	_ = sku.AddStock("p2", "sp2", "Body", "Black", 1)

	if !sku.HoldsSubpart("sp1") {
		t.Errorf("expected sku to hold sp1")
	}
	if sku.HoldsSubpart("sp9") {
		t.Errorf("did not expect sku to hold sp9")
	}

	ids := sku.SubpartIDs()
	if len(ids) != 2 {
		t.Errorf("expected 2 distinct subpart ids, got %d", len(ids))
	}
}

func TestSKU_RecordReconciliation(t *testing.T) {
	sku := NewStagingSKU("group-1", "user-1")
	sku.RecordReconciliation("p1", "sp1", "Lid", "Red", 5, true)

	events := sku.GetDomainEvents()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].EventType() != "inventory.stock.reconciled" {
		t.Errorf("unexpected event type %s", events[0].EventType())
	}

	sku.ClearDomainEvents()
	if len(sku.GetDomainEvents()) != 0 {
		t.Errorf("expected events cleared")
	}
}
