package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent and valid on both SQLite and PostgreSQL.
// Append new migrations at the end.
var migrations = []string{
	// Migration 1: discount candidates are looked up by scope column.
	`CREATE INDEX IF NOT EXISTS idx_discounts_variant ON discounts(variant_id)`,
	`CREATE INDEX IF NOT EXISTS idx_discounts_product ON discounts(product_id)`,
	`CREATE INDEX IF NOT EXISTS idx_discounts_company ON discounts(company_id)`,
	// Migration 2: order history per owner and item lookups per order.
	`CREATE INDEX IF NOT EXISTS idx_checkouts_owner ON checkouts(owner_kind, owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_checkout_items_checkout ON checkout_items(checkout_id)`,
	// Migration 3: catalog listings filter by owner.
	`CREATE INDEX IF NOT EXISTS idx_products_company ON products(company_id)`,
	`CREATE INDEX IF NOT EXISTS idx_variants_product ON variants(product_id)`,
}

// migrate runs the post-schema migrations.
func migrate(db *sqlx.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}
	return nil
}
