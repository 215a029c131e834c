package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/erazemk/trznica/internal/model"
)

// ItemCorrection overwrites the quantity, price and cost of one order item.
type ItemCorrection struct {
	ID             int64               `json:"id"`
	Quantity       int                 `json:"quantity"`
	Price          decimal.Decimal     `json:"price"`
	PurchasedPrice decimal.NullDecimal `json:"purchased_price"`
}

// OrderCorrection is an admin's correction of an existing order. A nil
// ShipmentCharges keeps the stored charges.
type OrderCorrection struct {
	Items           []ItemCorrection `json:"items"`
	ShipmentCharges *decimal.Decimal `json:"shipment_charges"`
}

// GetOrder returns an order with its items. Returns nil if it does not exist.
func GetOrder(ctx context.Context, db *sqlx.DB, id int64) (*model.Order, error) {
	o := &model.Order{}
	err := get(ctx, db, o, `SELECT * FROM checkouts WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting order: %w", err)
	}

	o.Items, err = orderItems(ctx, db, id)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// ListOrders returns orders newest first, either all of them or only the
// ones placed by owner.
func ListOrders(ctx context.Context, db *sqlx.DB, owner *model.Actor) ([]model.Order, error) {
	query := `SELECT * FROM checkouts`
	var args []any
	if owner != nil {
		query += ` WHERE owner_kind = ? AND owner_id = ?`
		args = append(args, string(owner.Kind), owner.ID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	orders := []model.Order{}
	if err := sel(ctx, db, &orders, query, args...); err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	for i := range orders {
		items, err := orderItems(ctx, db, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func orderItems(ctx context.Context, q queryer, orderID int64) ([]model.OrderItem, error) {
	items := []model.OrderItem{}
	if err := sel(ctx, q, &items, `SELECT * FROM checkout_items WHERE checkout_id = ? ORDER BY id`, orderID); err != nil {
		return nil, fmt.Errorf("listing order items: %w", err)
	}
	return items, nil
}

// UpdateOrderStatus moves an order along its status machine.
func UpdateOrderStatus(ctx context.Context, db *sqlx.DB, id int64, status string) (*model.Order, error) {
	if !model.ValidOrderStatus(status) {
		return nil, Invalid("status must be 'pending', 'delivered', 'cancelled' or 'refunded'")
	}

	err := withTx(ctx, db, func(tx *sqlx.Tx) error {
		var current string
		err := get(ctx, tx, &current, `SELECT status FROM checkouts WHERE id = ?`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("order not found")
		}
		if err != nil {
			return fmt.Errorf("getting order status: %w", err)
		}
		if !model.CanTransition(current, status) {
			return Invalid(fmt.Sprintf("cannot change status from %s to %s", current, status))
		}

		_, err = exec(ctx, tx,
			`UPDATE checkouts SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			status, id,
		)
		if err != nil {
			return fmt.Errorf("updating order status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return GetOrder(ctx, db, id)
}

// DeleteOrder deletes a pending order together with its items.
func DeleteOrder(ctx context.Context, db *sqlx.DB, id int64) error {
	return withTx(ctx, db, func(tx *sqlx.Tx) error {
		var status string
		err := get(ctx, tx, &status, `SELECT status FROM checkouts WHERE id = ?`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("order not found")
		}
		if err != nil {
			return fmt.Errorf("getting order status: %w", err)
		}
		if status != model.OrderPending {
			return Invalid("only pending orders can be deleted")
		}

		if _, err := exec(ctx, tx, `DELETE FROM checkout_items WHERE checkout_id = ?`, id); err != nil {
			return fmt.Errorf("deleting order items: %w", err)
		}
		if _, err := exec(ctx, tx, `DELETE FROM checkouts WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting order: %w", err)
		}
		return nil
	})
}

// UpdateOrder applies an admin correction. The stored total is recomputed
// from the corrected items in the same transaction. Once committed, the
// ledger is told about every corrected item.
func UpdateOrder(ctx context.Context, db *sqlx.DB, ledger ProfitLedger, id int64, c OrderCorrection) (*model.Order, error) {
	seen := map[int64]bool{}
	for _, ic := range c.Items {
		if ic.Quantity < 1 {
			return nil, Invalid("quantity must be at least 1")
		}
		if ic.Price.IsNegative() || (ic.PurchasedPrice.Valid && ic.PurchasedPrice.Decimal.IsNegative()) {
			return nil, Invalid("prices must not be negative")
		}
		if seen[ic.ID] {
			return nil, Invalid(fmt.Sprintf("item %d is corrected twice", ic.ID))
		}
		seen[ic.ID] = true
	}
	if c.ShipmentCharges != nil && c.ShipmentCharges.IsNegative() {
		return nil, Invalid("shipment_charges must not be negative")
	}

	var corrected []model.OrderItem
	err := withTx(ctx, db, func(tx *sqlx.Tx) error {
		corrected = corrected[:0]

		var shipment decimal.Decimal
		err := get(ctx, tx, &shipment, `SELECT shipment_charges FROM checkouts WHERE id = ?`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("order not found")
		}
		if err != nil {
			return fmt.Errorf("getting order: %w", err)
		}
		if c.ShipmentCharges != nil {
			shipment = *c.ShipmentCharges
		}

		for _, ic := range c.Items {
			result, err := exec(ctx, tx,
				`UPDATE checkout_items SET quantity = ?, price = ?, purchased_price = ?
				 WHERE id = ? AND checkout_id = ?`,
				ic.Quantity, ic.Price, ic.PurchasedPrice, ic.ID, id,
			)
			if err != nil {
				return fmt.Errorf("correcting order item: %w", err)
			}
			if n, _ := result.RowsAffected(); n == 0 {
				return notFound(fmt.Sprintf("order item %d not found", ic.ID))
			}
		}

		items, err := orderItems(ctx, tx, id)
		if err != nil {
			return err
		}
		for _, it := range items {
			if seen[it.ID] {
				corrected = append(corrected, it)
			}
		}

		_, err = exec(ctx, tx,
			`UPDATE checkouts SET shipment_charges = ?, total = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			shipment, model.OrderTotal(items, shipment), id,
		)
		if err != nil {
			return fmt.Errorf("updating order total: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var errs []error
	for i := range corrected {
		it := &corrected[i]
		if err := ledger.Record(ctx, it.ID, it.LineTotal(), it.LineCost()); err != nil {
			errs = append(errs, fmt.Errorf("recording profit of item %d: %w", it.ID, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return GetOrder(ctx, db, id)
}
