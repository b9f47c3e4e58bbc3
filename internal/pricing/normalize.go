package pricing

import "math"

// Normalize re-expresses a price quoted under sourceFactor on the basis of
// targetFactor. A factor counts base units per packaged unit (a 750 ml
// bottle has factor 0.75 against a liter base), so scaling by target/source
// puts two prices on a common basis without naming the base unit.
//
// When either factor is not strictly positive no conversion is attempted:
// the original price comes back unchanged and skipped is true. Callers must
// surface that state as "comparison unavailable", never as a silent zero.
func Normalize(price, sourceFactor, targetFactor float64) (normalized float64, skipped bool) {
	if sourceFactor <= 0 || targetFactor <= 0 {
		return price, true
	}
	return (targetFactor * price) / sourceFactor, false
}

// Round2 rounds to two decimal places. Presentation only: internal
// arithmetic keeps full precision so rounding error does not compound
// across recipe aggregation.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
