// Package catalog is the record store behind the costing engine: ingredient,
// supplier and recipe rows go in, plain pricing records come out. All derived
// values (unit prices, cost reports, comparisons) stay out of the database.
package catalog

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/MatheusLuisLorscheiter/precificador-receitas-iogar-sub000/internal/pricing"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("registro não encontrado")

// Store provides access to the catalog tables.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListIngredients() ([]pricing.Ingredient, error) {
	rows, err := s.db.Query(`
		SELECT id, code, name, unit, kind,
			purchased_quantity, total_purchase_price, conversion_factor,
			COALESCE(supplier_id, 0), COALESCE(supplier_item_id, 0)
		FROM ingredients
		ORDER BY code COLLATE NOCASE
	`)
	if err != nil {
		return nil, fmt.Errorf("query ingredients: %w", err)
	}
	defer rows.Close()

	ingredients := make([]pricing.Ingredient, 0)
	for rows.Next() {
		ing, err := scanIngredient(rows)
		if err != nil {
			return nil, err
		}
		ingredients = append(ingredients, ing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ingredients: %w", err)
	}

	return ingredients, nil
}

func (s *Store) IngredientByID(id int64) (pricing.Ingredient, error) {
	row := s.db.QueryRow(`
		SELECT id, code, name, unit, kind,
			purchased_quantity, total_purchase_price, conversion_factor,
			COALESCE(supplier_id, 0), COALESCE(supplier_item_id, 0)
		FROM ingredients
		WHERE id = ?
	`, id)

	ing, err := scanIngredient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return pricing.Ingredient{}, ErrNotFound
	}
	if err != nil {
		return pricing.Ingredient{}, err
	}
	return ing, nil
}

// IngredientSnapshot loads the complete ingredient catalog keyed by id, the
// form the costing engine consumes. Supplier-linked ingredients without
// usable purchase data get their linked quote applied as fallback, so
// costing resolves them instead of flagging the recipe incomplete.
func (s *Store) IngredientSnapshot() (map[int64]pricing.Ingredient, error) {
	ingredients, err := s.ListIngredients()
	if err != nil {
		return nil, err
	}

	snapshot := make(map[int64]pricing.Ingredient, len(ingredients))
	for _, ing := range ingredients {
		if _, incomplete := pricing.ResolveUnitPrice(ing); incomplete && ing.SupplierLinked() {
			item, err := s.SupplierItemByID(ing.SupplierItemID)
			if err != nil && !errors.Is(err, ErrNotFound) {
				return nil, err
			}
			if err == nil {
				ing = pricing.WithSupplierQuote(ing, item)
			}
		}
		snapshot[ing.ID] = ing
	}
	return snapshot, nil
}

func (s *Store) CreateIngredient(ing pricing.Ingredient) (int64, error) {
	if err := validateIngredient(ing); err != nil {
		return 0, err
	}

	result, err := s.db.Exec(`
		INSERT INTO ingredients (
			code, name, unit, kind,
			purchased_quantity, total_purchase_price, conversion_factor,
			supplier_id, supplier_item_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		ing.Code, ing.Name, string(ing.Unit), string(normalizeKind(ing.Kind)),
		ing.PurchasedQuantity, ing.TotalPurchasePrice, ing.ConversionFactor,
		nullableID(ing.SupplierID), nullableID(ing.SupplierItemID),
	)
	if err != nil {
		return 0, fmt.Errorf("insert ingredient: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read ingredient id: %w", err)
	}
	return id, nil
}

func (s *Store) UpdateIngredient(ing pricing.Ingredient) error {
	if err := validateIngredient(ing); err != nil {
		return err
	}

	result, err := s.db.Exec(`
		UPDATE ingredients
		SET
			code = ?,
			name = ?,
			unit = ?,
			kind = ?,
			purchased_quantity = ?,
			total_purchase_price = ?,
			conversion_factor = ?,
			supplier_id = ?,
			supplier_item_id = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`,
		ing.Code, ing.Name, string(ing.Unit), string(normalizeKind(ing.Kind)),
		ing.PurchasedQuantity, ing.TotalPurchasePrice, ing.ConversionFactor,
		nullableID(ing.SupplierID), nullableID(ing.SupplierItemID),
		ing.ID,
	)
	if err != nil {
		return fmt.Errorf("update ingredient: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update ingredient: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Supplier groups a supplier row with its catalog items.
type Supplier struct {
	ID    int64
	Name  string
	Items []pricing.SupplierItem
}

func (s *Store) ListSuppliers() ([]Supplier, error) {
	rows, err := s.db.Query(`SELECT id, name FROM suppliers ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("query suppliers: %w", err)
	}
	defer rows.Close()

	suppliers := make([]Supplier, 0)
	for rows.Next() {
		var sup Supplier
		if err := rows.Scan(&sup.ID, &sup.Name); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		suppliers = append(suppliers, sup)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate suppliers: %w", err)
	}

	for i := range suppliers {
		items, err := s.listSupplierItems(suppliers[i].ID, suppliers[i].Name)
		if err != nil {
			return nil, err
		}
		suppliers[i].Items = items
	}

	return suppliers, nil
}

func (s *Store) listSupplierItems(supplierID int64, supplierName string) ([]pricing.SupplierItem, error) {
	rows, err := s.db.Query(`
		SELECT id, code, name, unit, unit_price, conversion_factor
		FROM supplier_items
		WHERE supplier_id = ?
		ORDER BY code COLLATE NOCASE
	`, supplierID)
	if err != nil {
		return nil, fmt.Errorf("query supplier items: %w", err)
	}
	defer rows.Close()

	items := make([]pricing.SupplierItem, 0)
	for rows.Next() {
		var item pricing.SupplierItem
		var unit string
		if err := rows.Scan(&item.ID, &item.Code, &item.Name, &unit, &item.UnitPrice, &item.ConversionFactor); err != nil {
			return nil, fmt.Errorf("scan supplier item: %w", err)
		}
		item.Unit = pricing.Unit(unit)
		item.SupplierName = supplierName
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate supplier items: %w", err)
	}

	return items, nil
}

// SupplierItemByID loads one catalog item together with its supplier's name.
func (s *Store) SupplierItemByID(id int64) (pricing.SupplierItem, error) {
	var item pricing.SupplierItem
	var unit string
	err := s.db.QueryRow(`
		SELECT si.id, si.code, si.name, si.unit, si.unit_price, si.conversion_factor, s.name
		FROM supplier_items si
		JOIN suppliers s ON s.id = si.supplier_id
		WHERE si.id = ?
	`, id).Scan(&item.ID, &item.Code, &item.Name, &unit, &item.UnitPrice, &item.ConversionFactor, &item.SupplierName)
	if errors.Is(err, sql.ErrNoRows) {
		return pricing.SupplierItem{}, ErrNotFound
	}
	if err != nil {
		return pricing.SupplierItem{}, fmt.Errorf("query supplier item: %w", err)
	}
	item.Unit = pricing.Unit(unit)
	return item, nil
}

func (s *Store) ListRecipes() ([]pricing.Recipe, error) {
	rows, err := s.db.Query(`
		SELECT id, code, name, portion_count, conversion_factor
		FROM recipes
		ORDER BY code COLLATE NOCASE
	`)
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	defer rows.Close()

	recipes := make([]pricing.Recipe, 0)
	for rows.Next() {
		var r pricing.Recipe
		if err := rows.Scan(&r.ID, &r.Code, &r.Name, &r.PortionCount, &r.ConversionFactor); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipes: %w", err)
	}

	return recipes, nil
}

// RecipeByID loads a recipe with its lines.
func (s *Store) RecipeByID(id int64) (pricing.Recipe, error) {
	var r pricing.Recipe
	err := s.db.QueryRow(`
		SELECT id, code, name, portion_count, conversion_factor
		FROM recipes
		WHERE id = ?
	`, id).Scan(&r.ID, &r.Code, &r.Name, &r.PortionCount, &r.ConversionFactor)
	if errors.Is(err, sql.ErrNoRows) {
		return pricing.Recipe{}, ErrNotFound
	}
	if err != nil {
		return pricing.Recipe{}, fmt.Errorf("query recipe: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT ingredient_id, quantity
		FROM recipe_lines
		WHERE recipe_id = ?
		ORDER BY id
	`, id)
	if err != nil {
		return pricing.Recipe{}, fmt.Errorf("query recipe lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line pricing.RecipeLine
		if err := rows.Scan(&line.IngredientID, &line.Quantity); err != nil {
			return pricing.Recipe{}, fmt.Errorf("scan recipe line: %w", err)
		}
		r.Lines = append(r.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return pricing.Recipe{}, fmt.Errorf("iterate recipe lines: %w", err)
	}

	return r, nil
}

// CreateRecipe inserts a recipe and its lines in one transaction.
func (s *Store) CreateRecipe(r pricing.Recipe) (int64, error) {
	if err := validateRecipe(r); err != nil {
		return 0, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin recipe transaction: %w", err)
	}

	factor := r.ConversionFactor
	if factor <= 0 {
		factor = 1
	}

	result, err := tx.Exec(`
		INSERT INTO recipes (code, name, portion_count, conversion_factor)
		VALUES (?, ?, ?, ?)
	`, r.Code, r.Name, r.PortionCount, factor)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("insert recipe: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("read recipe id: %w", err)
	}

	for _, line := range r.Lines {
		if _, err := tx.Exec(`
			INSERT INTO recipe_lines (recipe_id, ingredient_id, quantity)
			VALUES (?, ?, ?)
		`, id, line.IngredientID, line.Quantity); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert recipe line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit recipe transaction: %w", err)
	}

	return id, nil
}

// UpdateRecipe replaces a recipe and its lines in one transaction.
func (s *Store) UpdateRecipe(r pricing.Recipe) error {
	if err := validateRecipe(r); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin recipe transaction: %w", err)
	}

	factor := r.ConversionFactor
	if factor <= 0 {
		factor = 1
	}

	result, err := tx.Exec(`
		UPDATE recipes
		SET code = ?, name = ?, portion_count = ?, conversion_factor = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, r.Code, r.Name, r.PortionCount, factor, r.ID)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("update recipe: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("update recipe: %w", err)
	}
	if affected == 0 {
		_ = tx.Rollback()
		return ErrNotFound
	}

	if _, err := tx.Exec(`DELETE FROM recipe_lines WHERE recipe_id = ?`, r.ID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete recipe lines: %w", err)
	}

	for _, line := range r.Lines {
		if _, err := tx.Exec(`
			INSERT INTO recipe_lines (recipe_id, ingredient_id, quantity)
			VALUES (?, ?, ?)
		`, r.ID, line.IngredientID, line.Quantity); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert recipe line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit recipe transaction: %w", err)
	}

	return nil
}

func scanIngredient(row interface{ Scan(...any) error }) (pricing.Ingredient, error) {
	var ing pricing.Ingredient
	var unit, kind string
	err := row.Scan(
		&ing.ID, &ing.Code, &ing.Name, &unit, &kind,
		&ing.PurchasedQuantity, &ing.TotalPurchasePrice, &ing.ConversionFactor,
		&ing.SupplierID, &ing.SupplierItemID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return pricing.Ingredient{}, err
	}
	if err != nil {
		return pricing.Ingredient{}, fmt.Errorf("scan ingredient: %w", err)
	}
	ing.Unit = pricing.Unit(unit)
	ing.Kind = pricing.Kind(kind)
	return ing, nil
}

func nullableID(id int64) any {
	if id <= 0 {
		return nil
	}
	return id
}

func normalizeKind(k pricing.Kind) pricing.Kind {
	if k == "" {
		return pricing.Raw
	}
	return k
}

// validateIngredient enforces the hard record invariants before storage.
// A zero purchased quantity is legal (the engine flags it incomplete) and
// so is a zero conversion factor (unknown); negative amounts are not.
func validateIngredient(ing pricing.Ingredient) error {
	if ing.Code == "" {
		return &pricing.ValidationError{Field: "code", Reason: "código é obrigatório"}
	}
	if ing.Name == "" {
		return &pricing.ValidationError{Field: "name", Reason: "nome é obrigatório"}
	}
	if ing.Unit != "" && !pricing.ValidUnit(ing.Unit) {
		return &pricing.ValidationError{Field: "unit", Reason: "unidade de medida desconhecida"}
	}
	if ing.Kind != "" && !pricing.ValidKind(ing.Kind) {
		return &pricing.ValidationError{Field: "kind", Reason: "tipo de ingrediente desconhecido"}
	}
	if ing.PurchasedQuantity < 0 {
		return &pricing.ValidationError{Field: "purchasedQuantity", Reason: "quantidade comprada não pode ser negativa"}
	}
	if ing.TotalPurchasePrice < 0 {
		return &pricing.ValidationError{Field: "totalPurchasePrice", Reason: "preço total não pode ser negativo"}
	}
	if ing.ConversionFactor < 0 {
		return &pricing.ValidationError{Field: "conversionFactor", Reason: "fator de conversão não pode ser negativo"}
	}
	return nil
}

func validateRecipe(r pricing.Recipe) error {
	if r.Code == "" {
		return &pricing.ValidationError{Field: "code", Reason: "código é obrigatório"}
	}
	if r.Name == "" {
		return &pricing.ValidationError{Field: "name", Reason: "nome é obrigatório"}
	}
	if r.PortionCount <= 0 {
		return &pricing.ValidationError{Field: "portionCount", Reason: "número de porções deve ser maior que 0"}
	}
	for _, line := range r.Lines {
		if line.IngredientID <= 0 {
			return &pricing.ValidationError{Field: "ingredientId", Reason: "linha de receita exige um ingrediente"}
		}
		if line.Quantity <= 0 {
			return &pricing.ValidationError{Field: "quantity", Reason: "quantidade da linha deve ser maior que 0"}
		}
	}
	return nil
}
