package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// ProfitLedger keeps the derived profit of each order item. Recording the
// same item twice overwrites the earlier figures.
type ProfitLedger interface {
	Record(ctx context.Context, itemID int64, totalPrice decimal.Decimal, totalCost decimal.NullDecimal) error
}

// Profit is the ledger entry of one order item.
type Profit struct {
	ItemID     int64               `db:"checkout_item_id" json:"item_id"`
	TotalPrice decimal.Decimal     `db:"total_price" json:"total_price"`
	TotalCost  decimal.NullDecimal `db:"total_cost" json:"total_cost"`
	Profit     decimal.NullDecimal `db:"profit" json:"profit"`
}

// SQLProfitLedger stores profits in the profits table.
type SQLProfitLedger struct {
	DB *sqlx.DB
}

// Record upserts the profit of one order item. Profit is unknown while the
// cost is.
func (l *SQLProfitLedger) Record(ctx context.Context, itemID int64, totalPrice decimal.Decimal, totalCost decimal.NullDecimal) error {
	var profit decimal.NullDecimal
	if totalCost.Valid {
		profit = decimal.NewNullDecimal(totalPrice.Sub(totalCost.Decimal))
	}

	_, err := exec(ctx, l.DB,
		`INSERT INTO profits (checkout_item_id, total_price, total_cost, profit) VALUES (?, ?, ?, ?)
		 ON CONFLICT (checkout_item_id) DO UPDATE SET
		     total_price = excluded.total_price,
		     total_cost = excluded.total_cost,
		     profit = excluded.profit,
		     updated_at = CURRENT_TIMESTAMP`,
		itemID, totalPrice, totalCost, profit,
	)
	if err != nil {
		return fmt.Errorf("recording profit: %w", err)
	}
	return nil
}

// GetProfit returns the ledger entry of an order item, or nil.
func GetProfit(ctx context.Context, db *sqlx.DB, itemID int64) (*Profit, error) {
	p := &Profit{}
	err := get(ctx, db, p,
		`SELECT checkout_item_id, total_price, total_cost, profit FROM profits WHERE checkout_item_id = ?`, itemID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting profit: %w", err)
	}
	return p, nil
}
