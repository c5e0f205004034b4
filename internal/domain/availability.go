package domain

import "sort"

// ProductAvailability is the buildable quantity derived for one product
type ProductAvailability struct {
	ProductID string `json:"productId"`
	Product   string `json:"product"`
	Buildable int    `json:"buildable"`
}

// AvailableInWarehouse sums the quantity held for (subpartID, partName)
// across every SKU entry regardless of location, staging included.
func AvailableInWarehouse(skus []*SKU, subpartID, partName string) int {
	total := 0
	for _, sku := range skus {
		for _, prod := range sku.Products {
			for _, part := range prod.Parts {
				if part.SubpartID == subpartID && part.PartName == partName {
					total += part.Quantity
				}
			}
		}
	}
	return total
}

// BuildableQuantity computes how many finished products the warehouse stock
// supports: the minimum over every required part of
// floor(available / perUnitRequirement). A product with no subparts defined
// yields 0, and a part with no stock forces 0.
func BuildableQuantity(subparts []*Subpart, skus []*SKU) int {
	if len(subparts) == 0 {
		return 0
	}

	buildable := -1
	for _, sp := range subparts {
		if len(sp.Parts) == 0 {
			return 0
		}
		for _, variant := range sp.Parts {
			if variant.Quantity <= 0 {
				return 0
			}
			available := AvailableInWarehouse(skus, sp.ID.Hex(), variant.PartName)
			possible := available / variant.Quantity
			if buildable < 0 || possible < buildable {
				buildable = possible
			}
		}
	}

	if buildable < 0 {
		return 0
	}
	return buildable
}

// RankAvailability sorts availabilities descending by buildable quantity and
// truncates to topN after sorting. topN <= 0 returns the full sorted list.
func RankAvailability(list []ProductAvailability, topN int) []ProductAvailability {
	ranked := make([]ProductAvailability, len(list))
	copy(ranked, list)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Buildable > ranked[j].Buildable
	})

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
