package pricing

import (
	"errors"
	"testing"
)

func TestSuggestPrices_DividesCostByFraction(t *testing.T) {
	prices, err := SuggestPrices(30.00, []float64{0.20, 0.25, 0.30})
	if err != nil {
		t.Fatalf("SuggestPrices returned error: %v", err)
	}

	nearlyEqual(t, "price at 20%", prices[0.20], 150.00)
	nearlyEqual(t, "price at 25%", prices[0.25], 120.00)
	nearlyEqual(t, "price at 30%", prices[0.30], 100.00)
}

func TestSuggestPrices_DefaultsWhenNoFractionsGiven(t *testing.T) {
	prices, err := SuggestPrices(10, nil)
	if err != nil {
		t.Fatalf("SuggestPrices returned error: %v", err)
	}

	if len(prices) != len(DefaultTargetFractions) {
		t.Fatalf("expected %d prices, got %d", len(DefaultTargetFractions), len(prices))
	}
	for _, f := range DefaultTargetFractions {
		nearlyEqual(t, "default price", prices[f], 10/f)
	}
}

func TestSuggestPrices_StrictlyDecreasingInFraction(t *testing.T) {
	fractions := []float64{0.05, 0.10, 0.20, 0.25, 0.30, 0.50, 0.99, 1}

	prices, err := SuggestPrices(42.42, fractions)
	if err != nil {
		t.Fatalf("SuggestPrices returned error: %v", err)
	}

	for i := 1; i < len(fractions); i++ {
		lower, higher := fractions[i-1], fractions[i]
		if prices[lower] <= prices[higher] {
			t.Fatalf("price(%v) = %v not greater than price(%v) = %v",
				lower, prices[lower], higher, prices[higher])
		}
	}
}

func TestSuggestPrices_FractionOutsideUnitIntervalRejected(t *testing.T) {
	for _, f := range []float64{0, -0.2, 1.01, 5} {
		prices, err := SuggestPrices(10, []float64{0.25, f})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("fraction %v: expected ValidationError, got %v", f, err)
		}
		if prices != nil {
			t.Fatalf("fraction %v: expected no partial result, got %v", f, prices)
		}
	}
}

func TestSuggestPrices_FractionOfOneKeepsCost(t *testing.T) {
	prices, err := SuggestPrices(19.90, []float64{1})
	if err != nil {
		t.Fatalf("SuggestPrices returned error: %v", err)
	}
	nearlyEqual(t, "price at 100%", prices[1], 19.90)
}
