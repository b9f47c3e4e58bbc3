package pricing

import (
	"errors"
	"testing"
)

func TestComputeCost_ReferenceScenario(t *testing.T) {
	// 45.00 for 3 units -> 15.00/unit; 2 units in the recipe, 5 portions.
	ingredients := map[int64]Ingredient{
		1: {ID: 1, PurchasedQuantity: 3, TotalPurchasePrice: 45.00},
	}
	r := Recipe{
		PortionCount: 5,
		Lines:        []RecipeLine{{IngredientID: 1, Quantity: 2}},
	}

	report, err := ComputeCost(r, ingredients, []float64{0.20, 0.25, 0.30})
	if err != nil {
		t.Fatalf("ComputeCost returned error: %v", err)
	}

	if report.Incomplete {
		t.Fatalf("expected complete costing")
	}
	nearlyEqual(t, "total cost", report.TotalCost, 30.00)
	nearlyEqual(t, "cost per portion", report.CostPerPortion, 6.00)
	nearlyEqual(t, "price at 20%", report.SuggestedPrices[0.20], 150.00)
	nearlyEqual(t, "price at 25%", report.SuggestedPrices[0.25], 120.00)
	nearlyEqual(t, "price at 30%", report.SuggestedPrices[0.30], 100.00)
}

func TestComputeCost_TotalIsSumOverResolvableLines(t *testing.T) {
	ingredients := map[int64]Ingredient{
		1: {ID: 1, PurchasedQuantity: 2, TotalPurchasePrice: 10},   // 5.00/unit
		2: {ID: 2, PurchasedQuantity: 4, TotalPurchasePrice: 2},    // 0.50/unit
		3: {ID: 3, PurchasedQuantity: 10, TotalPurchasePrice: 120}, // 12.00/unit
	}
	r := Recipe{
		PortionCount: 2,
		Lines: []RecipeLine{
			{IngredientID: 1, Quantity: 1.5},
			{IngredientID: 2, Quantity: 3},
			{IngredientID: 3, Quantity: 0.25},
		},
	}

	report, err := ComputeCost(r, ingredients, nil)
	if err != nil {
		t.Fatalf("ComputeCost returned error: %v", err)
	}

	nearlyEqual(t, "total cost", report.TotalCost, 1.5*5+3*0.5+0.25*12)
	nearlyEqual(t, "cost per portion", report.CostPerPortion, report.TotalCost/2)
	if report.Incomplete {
		t.Fatalf("expected complete costing")
	}
}

func TestComputeCost_UnknownIngredientSkipsLineAndFlagsIncomplete(t *testing.T) {
	ingredients := map[int64]Ingredient{
		1: {ID: 1, PurchasedQuantity: 1, TotalPurchasePrice: 8},
	}
	r := Recipe{
		PortionCount: 1,
		Lines: []RecipeLine{
			{IngredientID: 1, Quantity: 2},
			{IngredientID: 99, Quantity: 100},
		},
	}

	report, err := ComputeCost(r, ingredients, nil)
	if err != nil {
		t.Fatalf("ComputeCost returned error: %v", err)
	}

	if !report.Incomplete {
		t.Fatalf("expected incomplete costing")
	}
	nearlyEqual(t, "total cost", report.TotalCost, 16)
}

func TestComputeCost_UnpricedIngredientFlagsIncompleteWithoutContributing(t *testing.T) {
	ingredients := map[int64]Ingredient{
		1: {ID: 1, PurchasedQuantity: 1, TotalPurchasePrice: 8},
		2: {ID: 2, PurchasedQuantity: 0, TotalPurchasePrice: 50},
	}
	r := Recipe{
		PortionCount: 4,
		Lines: []RecipeLine{
			{IngredientID: 1, Quantity: 1},
			{IngredientID: 2, Quantity: 10},
		},
	}

	report, err := ComputeCost(r, ingredients, nil)
	if err != nil {
		t.Fatalf("ComputeCost returned error: %v", err)
	}

	if !report.Incomplete {
		t.Fatalf("expected incomplete costing")
	}
	nearlyEqual(t, "total cost", report.TotalCost, 8)
	nearlyEqual(t, "cost per portion", report.CostPerPortion, 2)
}

func TestComputeCost_PortionCountClampedToOne(t *testing.T) {
	ingredients := map[int64]Ingredient{
		1: {ID: 1, PurchasedQuantity: 1, TotalPurchasePrice: 9},
	}

	for _, portions := range []int{0, -3} {
		r := Recipe{
			PortionCount: portions,
			Lines:        []RecipeLine{{IngredientID: 1, Quantity: 1}},
		}
		report, err := ComputeCost(r, ingredients, nil)
		if err != nil {
			t.Fatalf("ComputeCost returned error: %v", err)
		}
		nearlyEqual(t, "cost per portion", report.CostPerPortion, 9)
	}
}

func TestComputeCost_InvalidFractionFailsWhole(t *testing.T) {
	ingredients := map[int64]Ingredient{
		1: {ID: 1, PurchasedQuantity: 1, TotalPurchasePrice: 9},
	}
	r := Recipe{PortionCount: 1, Lines: []RecipeLine{{IngredientID: 1, Quantity: 1}}}

	_, err := ComputeCost(r, ingredients, []float64{0.25, 1.5})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
