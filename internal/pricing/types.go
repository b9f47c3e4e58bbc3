package pricing

import "time"

// Unit tags the measurement base of a record. An empty Unit means the base
// was never captured for that record.
type Unit string

const (
	UnitMass    Unit = "mass"
	UnitVolume  Unit = "volume"
	UnitCount   Unit = "count"
	UnitPackage Unit = "package"
)

// ValidUnit reports whether u is one of the supported measurement bases.
func ValidUnit(u Unit) bool {
	switch u {
	case UnitMass, UnitVolume, UnitCount, UnitPackage:
		return true
	}
	return false
}

// Kind distinguishes raw purchased ingredients from processed ones, i.e.
// recipes reused as an ingredient in other recipes.
type Kind string

const (
	Raw       Kind = "raw"
	Processed Kind = "processed"
)

// ValidKind reports whether k is a supported ingredient kind.
func ValidKind(k Kind) bool {
	return k == Raw || k == Processed
}

// Ingredient is a purchasable input as recorded by the catalog. The price
// fields describe a single purchase transaction; the effective unit price is
// always derived, never stored.
type Ingredient struct {
	ID                 int64
	Code               string
	Name               string
	Unit               Unit
	Kind               Kind
	PurchasedQuantity  float64
	TotalPurchasePrice float64
	ConversionFactor   float64
	SupplierID         int64
	SupplierItemID     int64
}

// SupplierLinked reports whether the ingredient is bound to a supplier
// catalog item.
func (i Ingredient) SupplierLinked() bool {
	return i.SupplierID > 0 && i.SupplierItemID > 0
}

// SupplierItem is a supplier catalog entry quoting a price per packaged unit.
type SupplierItem struct {
	ID               int64
	Code             string
	Name             string
	Unit             Unit
	UnitPrice        float64
	ConversionFactor float64
	SupplierName     string
}

// RecipeLine ties a quantity of one ingredient into a recipe. Line order is
// irrelevant to costing.
type RecipeLine struct {
	IngredientID int64
	Quantity     float64
}

// Recipe is a costed preparation. ConversionFactor is fixed at 1 for
// processed recipes so they can feed back into other recipes as ingredients.
type Recipe struct {
	ID               int64
	Code             string
	Name             string
	PortionCount     int
	ConversionFactor float64
	Lines            []RecipeLine
}

// CostReport is the derived cost of one recipe. It is a projection of the
// records handed to ComputeCost and is never persisted.
type CostReport struct {
	TotalCost       float64
	CostPerPortion  float64
	SuggestedPrices map[float64]float64
	Incomplete      bool
}

// PriceComparison is the derived comparison between an ingredient's computed
// unit price and a supplier quote.
//
// Unnormalized means the packaging factors could not be reconciled and raw
// unit prices were compared instead. InsufficientData means one of the two
// prices was zero; PercentDifference is meaningless in that case and
// Significant is always false. UnitMismatch means both records carry a
// measurement base and the bases differ, so the ratio compares apples to
// oranges even when the arithmetic succeeded.
type PriceComparison struct {
	SystemUnitPrice   float64
	SupplierUnitPrice float64
	PercentDifference float64
	CheaperInSystem   bool
	Significant       bool
	Unnormalized      bool
	InsufficientData  bool
	UnitMismatch      bool
}

// Direction values for a PriceChange.
const (
	DirectionIncrease = "increase"
	DirectionDecrease = "decrease"
)

// PriceChange is the audit record emitted when a comparison crosses the
// significance threshold. PreviousPrice is the supplier quote, NewPrice the
// normalized system price.
type PriceChange struct {
	Timestamp      time.Time
	IngredientCode string
	IngredientName string
	PreviousPrice  float64
	NewPrice       float64
	PercentChange  float64
	SupplierName   string
	Direction      string
}
