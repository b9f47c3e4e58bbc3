package main

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/MatheusLuisLorscheiter/precificador-receitas-iogar-sub000/internal/pricing"
)

func TestIngredientComparison_NormalizedScenarioWritesAuditRecord(t *testing.T) {
	t.Parallel()
	srv, handler, database := newTestServer(t)

	supplierID, itemID := insertSupplierItem(t, database, "Boa Mesa", "AZ-750", 4.00, 0.75)
	ingID, err := srv.store.CreateIngredient(pricing.Ingredient{
		Code: "AZE-001", Name: "Azeite extra virgem", Unit: pricing.UnitVolume,
		PurchasedQuantity: 1, TotalPurchasePrice: 6.00, ConversionFactor: 1.0,
		SupplierID: supplierID, SupplierItemID: itemID,
	})
	if err != nil {
		t.Fatalf("create ingredient: %v", err)
	}

	rec := doJSON(t, handler, http.MethodGet, "/ingredients/"+strconv.FormatInt(ingID, 10)+"/comparison", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("comparison status = %d, body %s", rec.Code, rec.Body.String())
	}

	var view struct {
		SystemUnitPrice   float64 `json:"system_unit_price"`
		SupplierUnitPrice float64 `json:"supplier_unit_price"`
		PercentDifference float64 `json:"percent_difference"`
		CheaperInSystem   bool    `json:"cheaper_in_system"`
		Significant       bool    `json:"significant"`
		SupplierName      string  `json:"supplier_name"`
	}
	decodeBody(t, rec, &view)

	assertFloat(t, "system_unit_price", view.SystemUnitPrice, 4.50)
	assertFloat(t, "supplier_unit_price", view.SupplierUnitPrice, 4.00)
	assertFloat(t, "percent_difference", view.PercentDifference, 12.5)
	if view.CheaperInSystem {
		t.Fatalf("expected system to be more expensive")
	}
	if !view.Significant {
		t.Fatalf("expected significant comparison")
	}
	if view.SupplierName != "Boa Mesa" {
		t.Fatalf("supplier_name = %q", view.SupplierName)
	}

	changes, err := srv.audit.Recent(10)
	if err != nil {
		t.Fatalf("read audit log: %v", err)
	}
	if len(changes) != 1 {
		t.Fatalf("expected 1 audit record, got %d", len(changes))
	}
	change := changes[0]
	if change.IngredientCode != "AZE-001" || change.Direction != pricing.DirectionIncrease {
		t.Fatalf("unexpected audit record: %+v", change)
	}
	assertFloat(t, "previous_price", change.PreviousPrice, 4.00)
	assertFloat(t, "new_price", change.NewPrice, 4.50)
	if change.SupplierName != "Boa Mesa" {
		t.Fatalf("audit supplier_name = %q", change.SupplierName)
	}

	listed := doJSON(t, handler, http.MethodGet, "/price-changes?limit=5", nil)
	if listed.Code != http.StatusOK {
		t.Fatalf("price-changes status = %d", listed.Code)
	}
	var views []struct {
		IngredientCode string `json:"ingredient_code"`
		Direction      string `json:"direction"`
		Timestamp      string `json:"timestamp"`
	}
	decodeBody(t, listed, &views)
	if len(views) != 1 || views[0].IngredientCode != "AZE-001" {
		t.Fatalf("unexpected price-changes listing: %+v", views)
	}
	if views[0].Timestamp == "" {
		t.Fatalf("expected ISO-8601 timestamp in listing")
	}
}

func TestIngredientComparison_InsufficientDataDoesNotEmit(t *testing.T) {
	t.Parallel()
	srv, handler, database := newTestServer(t)

	supplierID, itemID := insertSupplierItem(t, database, "Boa Mesa", "TP-2KG", 4.00, 0.75)
	ingID, err := srv.store.CreateIngredient(pricing.Ingredient{
		Code: "TOM-001", Name: "Tomate pelado", Unit: pricing.UnitVolume,
		PurchasedQuantity: 0, TotalPurchasePrice: 0, ConversionFactor: 1,
		SupplierID: supplierID, SupplierItemID: itemID,
	})
	if err != nil {
		t.Fatalf("create ingredient: %v", err)
	}

	rec := doJSON(t, handler, http.MethodGet, "/ingredients/"+strconv.FormatInt(ingID, 10)+"/comparison", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("comparison status = %d, body %s", rec.Code, rec.Body.String())
	}

	var view struct {
		InsufficientData bool `json:"insufficient_data"`
		Significant      bool `json:"significant"`
	}
	decodeBody(t, rec, &view)
	if !view.InsufficientData || view.Significant {
		t.Fatalf("expected insufficient data without significance, got %+v", view)
	}

	changes, err := srv.audit.Recent(10)
	if err != nil {
		t.Fatalf("read audit log: %v", err)
	}
	if len(changes) != 0 {
		t.Fatalf("insufficient data must not emit audit records, got %+v", changes)
	}
}

func TestPriceChanges_MalformedLimitRejected(t *testing.T) {
	t.Parallel()
	_, handler, _ := newTestServer(t)

	for _, raw := range []string{"abc", "-1", "1.5"} {
		rec := doJSON(t, handler, http.MethodGet, "/price-changes?limit="+raw, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("limit=%q status = %d, want 400", raw, rec.Code)
		}
	}

	rec := doJSON(t, handler, http.MethodGet, "/price-changes", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("default listing status = %d", rec.Code)
	}
}

func TestIngredientComparison_UnlinkedIngredientRejected(t *testing.T) {
	t.Parallel()
	srv, handler, _ := newTestServer(t)

	ingID, err := srv.store.CreateIngredient(pricing.Ingredient{
		Code: "FAR-001", Name: "Farinha", PurchasedQuantity: 1, TotalPurchasePrice: 8, ConversionFactor: 1,
	})
	if err != nil {
		t.Fatalf("create ingredient: %v", err)
	}

	rec := doJSON(t, handler, http.MethodGet, "/ingredients/"+strconv.FormatInt(ingID, 10)+"/comparison", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
