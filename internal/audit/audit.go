// Package audit persists the append-only price-change log. Rows are never
// updated or deleted; the log is the only externally observable artifact of
// the costing engine.
package audit

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/MatheusLuisLorscheiter/precificador-receitas-iogar-sub000/internal/pricing"
)

// Log appends and reads price-change records.
type Log struct {
	db *sql.DB
}

// NewLog wraps an open database handle.
func NewLog(db *sql.DB) *Log {
	return &Log{db: db}
}

// Append stores one price change. Timestamps are stored as ISO-8601 (RFC
// 3339) strings in UTC; a zero timestamp is stamped with the current time.
func (l *Log) Append(change pricing.PriceChange) error {
	stamp := change.Timestamp
	if stamp.IsZero() {
		stamp = time.Now()
	}

	_, err := l.db.Exec(`
		INSERT INTO price_changes (
			changed_at, ingredient_code, ingredient_name,
			previous_price, new_price, percent_change,
			supplier_name, direction
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		stamp.UTC().Format(time.RFC3339),
		change.IngredientCode, change.IngredientName,
		change.PreviousPrice, change.NewPrice, change.PercentChange,
		change.SupplierName, change.Direction,
	)
	if err != nil {
		return fmt.Errorf("insert price change: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (l *Log) Recent(limit int) ([]pricing.PriceChange, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := l.db.Query(`
		SELECT changed_at, ingredient_code, ingredient_name,
			previous_price, new_price, percent_change,
			supplier_name, direction
		FROM price_changes
		ORDER BY changed_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query price changes: %w", err)
	}
	defer rows.Close()

	changes := make([]pricing.PriceChange, 0)
	for rows.Next() {
		var c pricing.PriceChange
		var stamp string
		if err := rows.Scan(
			&stamp, &c.IngredientCode, &c.IngredientName,
			&c.PreviousPrice, &c.NewPrice, &c.PercentChange,
			&c.SupplierName, &c.Direction,
		); err != nil {
			return nil, fmt.Errorf("scan price change: %w", err)
		}
		c.Timestamp, err = time.Parse(time.RFC3339, stamp)
		if err != nil {
			return nil, fmt.Errorf("parse price change timestamp: %w", err)
		}
		changes = append(changes, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price changes: %w", err)
	}

	return changes, nil
}
