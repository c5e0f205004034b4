package domain

import (
	"testing"
)

func TestNewProductionEvent(t *testing.T) {
	validKey := ProductionKey{
		UnitName:     "Unit-1",
		ProductGroup: "Bottles",
		Product:      "Bottle 500ml",
		SubpartID:    "sp1",
		PartIndex:    0,
		Date:         "2025-03-10",
	}

	tests := []struct {
		name        string
		mutate      func(k ProductionKey) ProductionKey
		quantity    int
		expectError bool
	}{
		{
			name:     "valid event",
			mutate:   func(k ProductionKey) ProductionKey { return k },
			quantity: 10,
		},
		{
			name:        "missing unit name",
			mutate:      func(k ProductionKey) ProductionKey { k.UnitName = " "; return k },
			quantity:    10,
			expectError: true,
		},
		{
			name:        "missing product",
			mutate:      func(k ProductionKey) ProductionKey { k.Product = ""; return k },
			quantity:    10,
			expectError: true,
		},
		{
			name:        "missing subpart",
			mutate:      func(k ProductionKey) ProductionKey { k.SubpartID = ""; return k },
			quantity:    10,
			expectError: true,
		},
		{
			name:        "zero quantity",
			mutate:      func(k ProductionKey) ProductionKey { return k },
			quantity:    0,
			expectError: true,
		},
		{
			name:        "negative quantity",
			mutate:      func(k ProductionKey) ProductionKey { return k },
			quantity:    -3,
			expectError: true,
		},
		{
			name:        "malformed date",
			mutate:      func(k ProductionKey) ProductionKey { k.Date = "10/03/2025"; return k },
			quantity:    10,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := NewProductionEvent(tt.mutate(validKey), tt.quantity, "user-1")

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if event.Quantity != tt.quantity {
				t.Errorf("expected quantity %d, got %d", tt.quantity, event.Quantity)
			}
			if event.Key != validKey {
				t.Errorf("key was not preserved")
			}
		})
	}
}

func TestNewSubpart(t *testing.T) {
	tests := []struct {
		name        string
		product     string
		parts       []PartVariant
		expectError bool
	}{
		{
			name:    "valid subpart",
			product: "Bottle 500ml",
			parts: []PartVariant{
				{PartName: "Lid", Quantity: 2, Color: "Red"},
				{PartName: "Body", Quantity: 1},
			},
		},
		{
			name:        "missing product",
			product:     "",
			parts:       []PartVariant{{PartName: "Lid", Quantity: 1}},
			expectError: true,
		},
		{
			name:        "missing part name",
			product:     "Bottle 500ml",
			parts:       []PartVariant{{PartName: "", Quantity: 1}},
			expectError: true,
		},
		{
			name:        "zero per-unit quantity",
			product:     "Bottle 500ml",
			parts:       []PartVariant{{PartName: "Lid", Quantity: 0}},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subpart, err := NewSubpart("p1", tt.product, "Molder-1", tt.parts, "user-1")

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if subpart.Parts[1].Color != DefaultPartColor {
				t.Errorf("expected omitted color defaulted to %s, got %s", DefaultPartColor, subpart.Parts[1].Color)
			}
		})
	}
}

func TestSubpart_Variant(t *testing.T) {
	subpart, err := NewSubpart("p1", "Bottle 500ml", "Molder-1", []PartVariant{
		{PartName: "Lid", Quantity: 2, Color: "Red"},
	}, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v, ok := subpart.Variant("Lid"); !ok || v.Quantity != 2 {
		t.Errorf("expected Lid variant with quantity 2")
	}
	if _, ok := subpart.Variant("Handle"); ok {
		t.Errorf("did not expect Handle variant")
	}
}
