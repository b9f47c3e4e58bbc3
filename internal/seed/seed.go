// Package seed inserts a small sample catalog on first startup so a fresh
// development database has something to cost: one supplier with two catalog
// items, three ingredients (one supplier-linked, one without purchase data)
// and two recipes.
package seed

import (
	"database/sql"
	"errors"
	"fmt"
)

const defaultSupplierName = "Distribuidora Boa Mesa"

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run executes the startup seed in an idempotent way.
func Run(db *sql.DB) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	supplierID, err := ensureSupplier(tx, &stats)
	if err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	itemIDs, err := ensureSupplierItems(tx, supplierID, &stats)
	if err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	ingredientIDs, err := ensureIngredients(tx, supplierID, itemIDs, &stats)
	if err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureRecipes(tx, ingredientIDs, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureSupplier(tx *sql.Tx, stats *Stats) (int64, error) {
	var id int64
	err := tx.QueryRow(`SELECT id FROM suppliers WHERE name = ? LIMIT 1`, defaultSupplierName).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("check supplier existence: %w", err)
	}

	result, err := tx.Exec(`INSERT INTO suppliers (name) VALUES (?)`, defaultSupplierName)
	if err != nil {
		return 0, fmt.Errorf("insert supplier: %w", err)
	}
	id, err = result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read supplier id: %w", err)
	}
	stats.Inserts++
	return id, nil
}

func ensureSupplierItems(tx *sql.Tx, supplierID int64, stats *Stats) (map[string]int64, error) {
	items := []struct {
		code, name, unit string
		unitPrice        float64
		factor           float64
	}{
		{"AZ-750", "Azeite extra virgem 750ml", "volume", 4.00, 0.75},
		{"FT-5KG", "Farinha de trigo tipo 1 5kg", "mass", 21.50, 5},
	}

	ids := make(map[string]int64, len(items))
	for _, item := range items {
		var id int64
		err := tx.QueryRow(`
			SELECT id FROM supplier_items
			WHERE supplier_id = ? AND code = ?
			LIMIT 1
		`, supplierID, item.code).Scan(&id)
		if err == nil {
			ids[item.code] = id
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("check supplier item existence: %w", err)
		}

		result, err := tx.Exec(`
			INSERT INTO supplier_items (supplier_id, code, name, unit, unit_price, conversion_factor)
			VALUES (?, ?, ?, ?, ?, ?)
		`, supplierID, item.code, item.name, item.unit, item.unitPrice, item.factor)
		if err != nil {
			return nil, fmt.Errorf("insert supplier item: %w", err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("read supplier item id: %w", err)
		}
		ids[item.code] = id
		stats.Inserts++
	}

	return ids, nil
}

func ensureIngredients(tx *sql.Tx, supplierID int64, itemIDs map[string]int64, stats *Stats) (map[string]int64, error) {
	ingredients := []struct {
		code, name, unit string
		quantity, total  float64
		factor           float64
		supplierItemCode string
	}{
		{"FAR-001", "Farinha de trigo", "mass", 3, 45.00, 1, ""},
		{"AZE-001", "Azeite extra virgem", "volume", 1, 6.00, 1, "AZ-750"},
		// No purchase recorded yet: exercises the incomplete-costing path.
		{"TOM-001", "Tomate pelado", "mass", 0, 0, 1, ""},
	}

	ids := make(map[string]int64, len(ingredients))
	for _, ing := range ingredients {
		var id int64
		err := tx.QueryRow(`SELECT id FROM ingredients WHERE code = ? LIMIT 1`, ing.code).Scan(&id)
		if err == nil {
			ids[ing.code] = id
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("check ingredient existence: %w", err)
		}

		var linkSupplier, linkItem any
		if ing.supplierItemCode != "" {
			linkSupplier = supplierID
			linkItem = itemIDs[ing.supplierItemCode]
		}

		result, err := tx.Exec(`
			INSERT INTO ingredients (
				code, name, unit, kind,
				purchased_quantity, total_purchase_price, conversion_factor,
				supplier_id, supplier_item_id
			) VALUES (?, ?, ?, 'raw', ?, ?, ?, ?, ?)
		`, ing.code, ing.name, ing.unit, ing.quantity, ing.total, ing.factor, linkSupplier, linkItem)
		if err != nil {
			return nil, fmt.Errorf("insert ingredient: %w", err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("read ingredient id: %w", err)
		}
		ids[ing.code] = id
		stats.Inserts++
	}

	return ids, nil
}

func ensureRecipes(tx *sql.Tx, ingredientIDs map[string]int64, stats *Stats) error {
	recipes := []struct {
		code, name string
		portions   int
		lines      []struct {
			ingredientCode string
			quantity       float64
		}
	}{
		{
			code: "REC-001", name: "Massa fresca da casa", portions: 5,
			lines: []struct {
				ingredientCode string
				quantity       float64
			}{
				{"FAR-001", 2},
			},
		},
		{
			code: "REC-002", name: "Molho de tomate", portions: 8,
			lines: []struct {
				ingredientCode string
				quantity       float64
			}{
				{"TOM-001", 4},
				{"AZE-001", 0.2},
			},
		},
	}

	for _, r := range recipes {
		var exists bool
		if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM recipes WHERE code = ? LIMIT 1)`, r.code).Scan(&exists); err != nil {
			return fmt.Errorf("check recipe existence: %w", err)
		}
		if exists {
			continue
		}

		result, err := tx.Exec(`
			INSERT INTO recipes (code, name, portion_count, conversion_factor)
			VALUES (?, ?, ?, 1)
		`, r.code, r.name, r.portions)
		if err != nil {
			return fmt.Errorf("insert recipe: %w", err)
		}
		recipeID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("read recipe id: %w", err)
		}

		for _, line := range r.lines {
			if _, err := tx.Exec(`
				INSERT INTO recipe_lines (recipe_id, ingredient_id, quantity)
				VALUES (?, ?, ?)
			`, recipeID, ingredientIDs[line.ingredientCode], line.quantity); err != nil {
				return fmt.Errorf("insert recipe line: %w", err)
			}
		}
		stats.Inserts++
	}

	return nil
}
