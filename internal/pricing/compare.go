package pricing

import (
	"math"
	"time"
)

// significantPercent is the absolute percent difference above which a
// comparison is flagged significant.
const significantPercent = 5.0

// Compare measures an ingredient's computed unit price against a supplier
// quote. The system price is normalized onto the supplier item's packaging
// factor when both factors are known; otherwise raw unit prices are compared
// and the result is flagged Unnormalized. A zero on either side short-cuts
// to InsufficientData rather than dividing by zero.
func Compare(ing Ingredient, item SupplierItem) PriceComparison {
	cmp := PriceComparison{SupplierUnitPrice: item.UnitPrice}

	systemPrice, _ := ResolveUnitPrice(ing)
	if ing.ConversionFactor > 0 && item.ConversionFactor > 0 {
		systemPrice, _ = Normalize(systemPrice, ing.ConversionFactor, item.ConversionFactor)
	} else {
		cmp.Unnormalized = true
	}
	cmp.SystemUnitPrice = systemPrice

	if ing.Unit != "" && item.Unit != "" && ing.Unit != item.Unit {
		cmp.UnitMismatch = true
	}

	if systemPrice <= 0 || item.UnitPrice <= 0 {
		cmp.InsufficientData = true
		return cmp
	}

	cmp.PercentDifference = ((systemPrice - item.UnitPrice) / item.UnitPrice) * 100
	cmp.CheaperInSystem = cmp.PercentDifference < 0
	cmp.Significant = math.Abs(cmp.PercentDifference) > significantPercent

	return cmp
}

// Comparator wraps Compare with a best-effort change-log emission. The
// Record callback is owned by the caller; it runs only when a comparison is
// significant, and nothing it does, including panicking, affects the
// returned PriceComparison.
type Comparator struct {
	Record func(PriceChange)

	// Now stamps emitted records; nil means time.Now in UTC.
	Now func() time.Time
}

// Compare runs the pure comparison and emits a PriceChange when the result
// is significant.
func (c *Comparator) Compare(ing Ingredient, item SupplierItem) PriceComparison {
	cmp := Compare(ing, item)
	if !cmp.Significant || c.Record == nil {
		return cmp
	}

	direction := DirectionIncrease
	if cmp.PercentDifference < 0 {
		direction = DirectionDecrease
	}

	change := PriceChange{
		Timestamp:      c.now(),
		IngredientCode: ing.Code,
		IngredientName: ing.Name,
		PreviousPrice:  item.UnitPrice,
		NewPrice:       cmp.SystemUnitPrice,
		PercentChange:  cmp.PercentDifference,
		SupplierName:   item.SupplierName,
		Direction:      direction,
	}

	func() {
		defer func() { _ = recover() }()
		c.Record(change)
	}()

	return cmp
}

func (c *Comparator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now().UTC()
}
