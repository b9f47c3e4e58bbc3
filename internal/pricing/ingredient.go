package pricing

// ResolveUnitPrice derives the effective unit price of an ingredient from
// its recorded purchase transaction. An ingredient without a positive
// purchased quantity has no derivable price: the result is 0 with
// incomplete set, never a division fault.
func ResolveUnitPrice(ing Ingredient) (price float64, incomplete bool) {
	if ing.PurchasedQuantity <= 0 {
		return 0, true
	}
	return ing.TotalPurchasePrice / ing.PurchasedQuantity, false
}

// ResolveUnitPriceFrom resolves an ingredient's unit price with a supplier
// item as fallback. Recorded purchase data always wins; only when the
// ingredient has no usable purchase does the supplier quote apply,
// normalized from the item's packaging factor onto the ingredient's. The
// result is incomplete when neither source yields a price.
func ResolveUnitPriceFrom(ing Ingredient, item SupplierItem) (price float64, incomplete bool) {
	if price, incomplete = ResolveUnitPrice(ing); !incomplete {
		return price, false
	}
	if item.UnitPrice <= 0 {
		return 0, true
	}
	normalized, skipped := Normalize(item.UnitPrice, item.ConversionFactor, ing.ConversionFactor)
	if skipped {
		return 0, true
	}
	return normalized, false
}

// WithSupplierQuote fills an ingredient's missing purchase data from its
// supplier quote. When the recorded purchase already resolves, or the quote
// itself cannot (zero price, skipped normalization), the ingredient comes
// back unchanged. Otherwise the fallback price becomes a synthetic one-unit
// purchase, so every downstream resolution sees the supplier-backed price.
func WithSupplierQuote(ing Ingredient, item SupplierItem) Ingredient {
	if _, incomplete := ResolveUnitPrice(ing); !incomplete {
		return ing
	}
	price, incomplete := ResolveUnitPriceFrom(ing, item)
	if incomplete {
		return ing
	}
	ing.PurchasedQuantity = 1
	ing.TotalPurchasePrice = price
	return ing
}

// AsIngredient re-expresses a costed recipe as a processed ingredient so it
// can appear on other recipes' lines. The conversion factor is fixed at 1
// and the recipe's total cost over its portion count becomes the purchase
// transaction, so ResolveUnitPrice yields cost per portion with no special
// casing downstream.
func AsIngredient(r Recipe, report CostReport) Ingredient {
	portions := r.PortionCount
	if portions < 1 {
		portions = 1
	}
	return Ingredient{
		ID:                 r.ID,
		Code:               r.Code,
		Name:               r.Name,
		Unit:               UnitCount,
		Kind:               Processed,
		PurchasedQuantity:  float64(portions),
		TotalPurchasePrice: report.TotalCost,
		ConversionFactor:   1,
	}
}
