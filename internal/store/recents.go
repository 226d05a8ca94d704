// Package store keeps the device-local side state: recently picked products,
// goal overrides and key/value settings.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/kcal-sync/internal/model"
)

// RecentLimit caps the recent products list.
const RecentLimit = 20

// selectedAtLayout is fixed width so the column sorts as text.
const selectedAtLayout = "2006-01-02T15:04:05.000000000Z"

// Recents is the most-recent-first list of picked products.
type Recents struct {
	DB    *sql.DB
	Limit int
}

func (r *Recents) limit() int {
	if r.Limit <= 0 {
		return RecentLimit
	}
	return r.Limit
}

// Remember moves p to the front of the list and trims the tail past the cap.
func (r *Recents) Remember(ctx context.Context, p model.RecentProduct) error {
	id := strings.TrimSpace(p.ProductID)
	if id == "" {
		return fmt.Errorf("product id is required")
	}
	if p.SelectedAt.IsZero() {
		p.SelectedAt = time.Now()
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin recent products tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO recent_products(product_id, name, brand, selected_at)
VALUES(?, ?, ?, ?)
ON CONFLICT(product_id) DO UPDATE SET name=excluded.name, brand=excluded.brand, selected_at=excluded.selected_at
`, id, strings.TrimSpace(p.Name), strings.TrimSpace(p.Brand), p.SelectedAt.UTC().Format(selectedAtLayout))
	if err != nil {
		return fmt.Errorf("upsert recent product %q: %w", id, err)
	}
	_, err = tx.ExecContext(ctx, `
DELETE FROM recent_products WHERE product_id NOT IN (
  SELECT product_id FROM recent_products ORDER BY selected_at DESC, product_id ASC LIMIT ?
)`, r.limit())
	if err != nil {
		return fmt.Errorf("trim recent products: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit recent products: %w", err)
	}
	return nil
}

// List returns the recent products, newest first.
func (r *Recents) List(ctx context.Context) ([]model.RecentProduct, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT product_id, name, brand, selected_at
FROM recent_products
ORDER BY selected_at DESC, product_id ASC
LIMIT ?`, r.limit())
	if err != nil {
		return nil, fmt.Errorf("list recent products: %w", err)
	}
	defer rows.Close()
	out := make([]model.RecentProduct, 0)
	for rows.Next() {
		var p model.RecentProduct
		var selected string
		if err := rows.Scan(&p.ProductID, &p.Name, &p.Brand, &selected); err != nil {
			return nil, fmt.Errorf("scan recent product: %w", err)
		}
		p.SelectedAt, err = time.Parse(selectedAtLayout, selected)
		if err != nil {
			return nil, fmt.Errorf("parse selected_at for %q: %w", p.ProductID, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent products: %w", err)
	}
	return out, nil
}

func (r *Recents) Clear(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM recent_products`); err != nil {
		return fmt.Errorf("clear recent products: %w", err)
	}
	return nil
}
