package pricing

// ComputeCost aggregates a recipe's ingredient lines into a CostReport over
// a snapshot of the ingredient catalog. Lines whose ingredient is missing
// from the snapshot, or whose ingredient has no derivable unit price,
// contribute nothing and mark the report incomplete; the partial total is
// still returned so the caller can show a provisional cost while signaling
// the gap.
//
// fractions drive the suggested sale prices; nil selects the default CMV
// targets. The only error path is an out-of-range fraction.
func ComputeCost(r Recipe, ingredients map[int64]Ingredient, fractions []float64) (CostReport, error) {
	report := CostReport{}

	for _, line := range r.Lines {
		ing, ok := ingredients[line.IngredientID]
		if !ok {
			report.Incomplete = true
			continue
		}
		unitPrice, incomplete := ResolveUnitPrice(ing)
		if incomplete {
			report.Incomplete = true
			continue
		}
		report.TotalCost += line.Quantity * unitPrice
	}

	// PortionCount <= 0 is a boundary validation concern; here it is only
	// clamped so the division can never fault.
	portions := r.PortionCount
	if portions < 1 {
		portions = 1
	}
	report.CostPerPortion = report.TotalCost / float64(portions)

	prices, err := SuggestPrices(report.TotalCost, fractions)
	if err != nil {
		return CostReport{}, err
	}
	report.SuggestedPrices = prices

	return report, nil
}
