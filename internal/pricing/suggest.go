package pricing

import "fmt"

// DefaultTargetFractions are the standard CMV targets: ingredient cost at
// most 20%, 25% or 30% of the sale price.
var DefaultTargetFractions = []float64{0.20, 0.25, 0.30}

// SuggestPrices maps a recipe's total cost to suggested sale prices, one per
// target cost-to-revenue fraction: price = totalCost / fraction, so a lower
// fraction always yields a higher price. nil or empty fractions select
// DefaultTargetFractions. Any fraction outside (0, 1] fails the whole call
// with a ValidationError; there is no partial result.
func SuggestPrices(totalCost float64, fractions []float64) (map[float64]float64, error) {
	if len(fractions) == 0 {
		fractions = DefaultTargetFractions
	}

	prices := make(map[float64]float64, len(fractions))
	for _, f := range fractions {
		if f <= 0 || f > 1 {
			return nil, &ValidationError{
				Field:  "targetFraction",
				Reason: fmt.Sprintf("fração %v fora do intervalo (0, 1]", f),
			}
		}
		prices[f] = totalCost / f
	}

	return prices, nil
}
