package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MatheusLuisLorscheiter/precificador-receitas-iogar-sub000/internal/catalog"
	"github.com/MatheusLuisLorscheiter/precificador-receitas-iogar-sub000/internal/pricing"
)

type ingredientView struct {
	ID                 int64   `json:"id"`
	Code               string  `json:"code"`
	Name               string  `json:"name"`
	Unit               string  `json:"unit,omitempty"`
	Kind               string  `json:"kind"`
	PurchasedQuantity  float64 `json:"purchased_quantity"`
	TotalPurchasePrice float64 `json:"total_purchase_price"`
	ConversionFactor   float64 `json:"conversion_factor"`
	SupplierID         int64   `json:"supplier_id,omitempty"`
	SupplierItemID     int64   `json:"supplier_item_id,omitempty"`
	UnitPrice          float64 `json:"unit_price"`
	Incomplete         bool    `json:"incomplete"`
}

type ingredientPayload struct {
	Code               string  `json:"code"`
	Name               string  `json:"name"`
	Unit               string  `json:"unit"`
	Kind               string  `json:"kind"`
	PurchasedQuantity  float64 `json:"purchased_quantity"`
	TotalPurchasePrice float64 `json:"total_purchase_price"`
	ConversionFactor   float64 `json:"conversion_factor"`
	SupplierID         int64   `json:"supplier_id"`
	SupplierItemID     int64   `json:"supplier_item_id"`
}

type supplierItemView struct {
	ID               int64   `json:"id"`
	Code             string  `json:"code"`
	Name             string  `json:"name"`
	Unit             string  `json:"unit,omitempty"`
	UnitPrice        float64 `json:"unit_price"`
	ConversionFactor float64 `json:"conversion_factor"`
}

type supplierView struct {
	ID    int64              `json:"id"`
	Name  string             `json:"name"`
	Items []supplierItemView `json:"items"`
}

type recipeLinePayload struct {
	IngredientID int64   `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
}

type recipePayload struct {
	Code         string              `json:"code"`
	Name         string              `json:"name"`
	PortionCount int                 `json:"portion_count"`
	Lines        []recipeLinePayload `json:"lines"`
}

type recipeView struct {
	ID           int64               `json:"id"`
	Code         string              `json:"code"`
	Name         string              `json:"name"`
	PortionCount int                 `json:"portion_count"`
	Lines        []recipeLinePayload `json:"lines,omitempty"`
}

type costReportView struct {
	RecipeID        int64              `json:"recipe_id"`
	Code            string             `json:"code"`
	Name            string             `json:"name"`
	TotalCost       float64            `json:"total_cost"`
	CostPerPortion  float64            `json:"cost_per_portion"`
	SuggestedPrices map[string]float64 `json:"suggested_prices"`
	Incomplete      bool               `json:"incomplete"`
}

type comparisonView struct {
	IngredientCode    string  `json:"ingredient_code"`
	SupplierName      string  `json:"supplier_name"`
	SupplierItemCode  string  `json:"supplier_item_code"`
	SystemUnitPrice   float64 `json:"system_unit_price"`
	SupplierUnitPrice float64 `json:"supplier_unit_price"`
	PercentDifference float64 `json:"percent_difference"`
	CheaperInSystem   bool    `json:"cheaper_in_system"`
	Significant       bool    `json:"significant"`
	Unnormalized      bool    `json:"unnormalized"`
	InsufficientData  bool    `json:"insufficient_data"`
	UnitMismatch      bool    `json:"unit_mismatch"`
}

type priceChangeView struct {
	Timestamp      string  `json:"timestamp"`
	IngredientCode string  `json:"ingredient_code"`
	IngredientName string  `json:"ingredient_name"`
	PreviousPrice  float64 `json:"previous_price"`
	NewPrice       float64 `json:"new_price"`
	PercentChange  float64 `json:"percent_change"`
	SupplierName   string  `json:"supplier_name"`
	Direction      string  `json:"direction"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleIngredientsList(w http.ResponseWriter, r *http.Request) {
	ingredients, err := s.store.ListIngredients()
	if err != nil {
		respondStoreError(w, err)
		return
	}

	views := make([]ingredientView, 0, len(ingredients))
	for _, ing := range ingredients {
		views = append(views, s.ingredientView(ing))
	}
	respondJSON(w, http.StatusOK, views)
}

func (s *server) handleIngredientsCreate(w http.ResponseWriter, r *http.Request) {
	var payload ingredientPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}

	id, err := s.store.CreateIngredient(payloadToIngredient(0, payload))
	if err != nil {
		respondStoreError(w, err)
		return
	}

	ing, err := s.store.IngredientByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, s.ingredientView(ing))
}

func (s *server) handleIngredientGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "id inválido")
		return
	}

	ing, err := s.store.IngredientByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.ingredientView(ing))
}

func (s *server) handleIngredientUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "id inválido")
		return
	}

	var payload ingredientPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}

	if err := s.store.UpdateIngredient(payloadToIngredient(id, payload)); err != nil {
		respondStoreError(w, err)
		return
	}

	ing, err := s.store.IngredientByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.ingredientView(ing))
}

func (s *server) handleIngredientComparison(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "id inválido")
		return
	}

	ing, err := s.store.IngredientByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if !ing.SupplierLinked() {
		respondError(w, http.StatusBadRequest, "ingrediente não possui item de fornecedor vinculado")
		return
	}

	item, err := s.store.SupplierItemByID(ing.SupplierItemID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	comparator := &pricing.Comparator{Record: s.recordPriceChange}
	cmp := comparator.Compare(ing, item)

	respondJSON(w, http.StatusOK, comparisonView{
		IngredientCode:    ing.Code,
		SupplierName:      item.SupplierName,
		SupplierItemCode:  item.Code,
		SystemUnitPrice:   pricing.Round2(cmp.SystemUnitPrice),
		SupplierUnitPrice: pricing.Round2(cmp.SupplierUnitPrice),
		PercentDifference: pricing.Round2(cmp.PercentDifference),
		CheaperInSystem:   cmp.CheaperInSystem,
		Significant:       cmp.Significant,
		Unnormalized:      cmp.Unnormalized,
		InsufficientData:  cmp.InsufficientData,
		UnitMismatch:      cmp.UnitMismatch,
	})
}

// recordPriceChange is the comparator's audit sink. Appends are best-effort:
// a failure is logged and the comparison response is unaffected.
func (s *server) recordPriceChange(change pricing.PriceChange) {
	if err := s.audit.Append(change); err != nil {
		log.Printf("warning: failed to record price change for %s: %v", change.IngredientCode, err)
	}
}

func (s *server) handleSuppliersList(w http.ResponseWriter, r *http.Request) {
	suppliers, err := s.store.ListSuppliers()
	if err != nil {
		respondStoreError(w, err)
		return
	}

	views := make([]supplierView, 0, len(suppliers))
	for _, sup := range suppliers {
		view := supplierView{ID: sup.ID, Name: sup.Name, Items: make([]supplierItemView, 0, len(sup.Items))}
		for _, item := range sup.Items {
			view.Items = append(view.Items, supplierItemView{
				ID:               item.ID,
				Code:             item.Code,
				Name:             item.Name,
				Unit:             string(item.Unit),
				UnitPrice:        item.UnitPrice,
				ConversionFactor: item.ConversionFactor,
			})
		}
		views = append(views, view)
	}
	respondJSON(w, http.StatusOK, views)
}

func (s *server) handleRecipesList(w http.ResponseWriter, r *http.Request) {
	recipes, err := s.store.ListRecipes()
	if err != nil {
		respondStoreError(w, err)
		return
	}

	views := make([]recipeView, 0, len(recipes))
	for _, rec := range recipes {
		views = append(views, recipeView{ID: rec.ID, Code: rec.Code, Name: rec.Name, PortionCount: rec.PortionCount})
	}
	respondJSON(w, http.StatusOK, views)
}

func (s *server) handleRecipesCreate(w http.ResponseWriter, r *http.Request) {
	var payload recipePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}

	recipe := pricing.Recipe{
		Code:         payload.Code,
		Name:         payload.Name,
		PortionCount: payload.PortionCount,
	}
	for _, line := range payload.Lines {
		recipe.Lines = append(recipe.Lines, pricing.RecipeLine{
			IngredientID: line.IngredientID,
			Quantity:     line.Quantity,
		})
	}

	id, err := s.store.CreateRecipe(recipe)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	created, err := s.store.RecipeByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, recipeToView(created))
}

func (s *server) handleRecipeUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "id inválido")
		return
	}

	var payload recipePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}

	recipe := pricing.Recipe{
		ID:           id,
		Code:         payload.Code,
		Name:         payload.Name,
		PortionCount: payload.PortionCount,
	}
	for _, line := range payload.Lines {
		recipe.Lines = append(recipe.Lines, pricing.RecipeLine{
			IngredientID: line.IngredientID,
			Quantity:     line.Quantity,
		})
	}

	if err := s.store.UpdateRecipe(recipe); err != nil {
		respondStoreError(w, err)
		return
	}

	updated, err := s.store.RecipeByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, recipeToView(updated))
}

func (s *server) handleRecipeGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "id inválido")
		return
	}

	recipe, err := s.store.RecipeByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, recipeToView(recipe))
}

func (s *server) handleRecipeCost(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "id inválido")
		return
	}

	targets := s.targets
	if raw := strings.TrimSpace(r.URL.Query().Get("targets")); raw != "" {
		targets, err = parseTargets(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	recipe, err := s.store.RecipeByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	snapshot, err := s.store.IngredientSnapshot()
	if err != nil {
		respondStoreError(w, err)
		return
	}

	report, err := pricing.ComputeCost(recipe, snapshot, targets)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	suggested := make(map[string]float64, len(report.SuggestedPrices))
	for fraction, price := range report.SuggestedPrices {
		suggested[fmt.Sprintf("%.2f", fraction)] = pricing.Round2(price)
	}

	respondJSON(w, http.StatusOK, costReportView{
		RecipeID:        recipe.ID,
		Code:            recipe.Code,
		Name:            recipe.Name,
		TotalCost:       pricing.Round2(report.TotalCost),
		CostPerPortion:  pricing.Round2(report.CostPerPortion),
		SuggestedPrices: suggested,
		Incomplete:      report.Incomplete,
	})
}

// handleRecipeAsIngredient materializes a costed recipe as a processed
// catalog ingredient, so other recipes can list it on their lines. The
// recipe must cost completely; a provisional total would bake the gap into
// every downstream recipe.
func (s *server) handleRecipeAsIngredient(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "id inválido")
		return
	}

	recipe, err := s.store.RecipeByID(id)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	snapshot, err := s.store.IngredientSnapshot()
	if err != nil {
		respondStoreError(w, err)
		return
	}

	report, err := pricing.ComputeCost(recipe, snapshot, nil)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if report.Incomplete {
		respondError(w, http.StatusBadRequest, "custo da receita está incompleto")
		return
	}

	ing := pricing.AsIngredient(recipe, report)
	ing.ID = 0
	newID, err := s.store.CreateIngredient(ing)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	created, err := s.store.IngredientByID(newID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, s.ingredientView(created))
}

func (s *server) handlePriceChanges(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, "limit deve ser um número inteiro não negativo")
			return
		}
		limit = parsed
	}

	changes, err := s.audit.Recent(limit)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	views := make([]priceChangeView, 0, len(changes))
	for _, c := range changes {
		views = append(views, priceChangeView{
			Timestamp:      c.Timestamp.UTC().Format(time.RFC3339),
			IngredientCode: c.IngredientCode,
			IngredientName: c.IngredientName,
			PreviousPrice:  pricing.Round2(c.PreviousPrice),
			NewPrice:       pricing.Round2(c.NewPrice),
			PercentChange:  pricing.Round2(c.PercentChange),
			SupplierName:   c.SupplierName,
			Direction:      c.Direction,
		})
	}
	respondJSON(w, http.StatusOK, views)
}

// ingredientView renders an ingredient with its effective unit price. When
// the recorded purchase cannot resolve one and the ingredient is linked to a
// supplier item, the quote is applied as fallback; a failed item lookup
// leaves the plain (incomplete) view.
func (s *server) ingredientView(ing pricing.Ingredient) ingredientView {
	view := ingredientToView(ing)
	if !view.Incomplete || !ing.SupplierLinked() {
		return view
	}
	item, err := s.store.SupplierItemByID(ing.SupplierItemID)
	if err != nil {
		return view
	}
	price, incomplete := pricing.ResolveUnitPriceFrom(ing, item)
	view.UnitPrice = pricing.Round2(price)
	view.Incomplete = incomplete
	return view
}

func ingredientToView(ing pricing.Ingredient) ingredientView {
	price, incomplete := pricing.ResolveUnitPrice(ing)
	return ingredientView{
		ID:                 ing.ID,
		Code:               ing.Code,
		Name:               ing.Name,
		Unit:               string(ing.Unit),
		Kind:               string(ing.Kind),
		PurchasedQuantity:  ing.PurchasedQuantity,
		TotalPurchasePrice: ing.TotalPurchasePrice,
		ConversionFactor:   ing.ConversionFactor,
		SupplierID:         ing.SupplierID,
		SupplierItemID:     ing.SupplierItemID,
		UnitPrice:          pricing.Round2(price),
		Incomplete:         incomplete,
	}
}

func payloadToIngredient(id int64, payload ingredientPayload) pricing.Ingredient {
	return pricing.Ingredient{
		ID:                 id,
		Code:               strings.TrimSpace(payload.Code),
		Name:               strings.TrimSpace(payload.Name),
		Unit:               pricing.Unit(payload.Unit),
		Kind:               pricing.Kind(payload.Kind),
		PurchasedQuantity:  payload.PurchasedQuantity,
		TotalPurchasePrice: payload.TotalPurchasePrice,
		ConversionFactor:   payload.ConversionFactor,
		SupplierID:         payload.SupplierID,
		SupplierItemID:     payload.SupplierItemID,
	}
}

func recipeToView(recipe pricing.Recipe) recipeView {
	view := recipeView{
		ID:           recipe.ID,
		Code:         recipe.Code,
		Name:         recipe.Name,
		PortionCount: recipe.PortionCount,
	}
	for _, line := range recipe.Lines {
		view.Lines = append(view.Lines, recipeLinePayload{
			IngredientID: line.IngredientID,
			Quantity:     line.Quantity,
		})
	}
	return view
}

// parseTargets parses the ?targets= override, e.g. "0.2,0.25". Range checks
// happen in the engine; only syntax is validated here.
func parseTargets(raw string) ([]float64, error) {
	parts := strings.Split(raw, ",")
	targets := make([]float64, 0, len(parts))
	for _, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("targets deve ser uma lista de frações numéricas")
		}
		targets = append(targets, value)
	}
	return targets, nil
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id inválido")
	}
	return id, nil
}

func respondStoreError(w http.ResponseWriter, err error) {
	var verr *pricing.ValidationError
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		respondError(w, http.StatusNotFound, "registro não encontrado")
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, verr.Error())
	case strings.Contains(err.Error(), "UNIQUE constraint failed"):
		respondError(w, http.StatusConflict, "código já cadastrado")
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "erro interno")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
