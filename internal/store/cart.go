package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/erazemk/trznica/internal/model"
)

// CartKind describes one of the parallel carts. Every cart operation is
// written once against this descriptor.
type CartKind struct {
	Name  string
	Owner model.ActorKind

	table       string
	ownerColumn string
	animals     bool
	priceColumn string
}

// The three carts.
var (
	ProductCart = CartKind{
		Name:        "product",
		Owner:       model.ActorCustomer,
		table:       "cart_items",
		ownerColumn: "user_id",
		priceColumn: "customer_price",
	}
	AnimalCart = CartKind{
		Name:        "animal",
		Owner:       model.ActorCustomer,
		table:       "animal_cart_items",
		ownerColumn: "user_id",
		animals:     true,
	}
	PartnerCart = CartKind{
		Name:        "partner",
		Owner:       model.ActorPartner,
		table:       "partner_cart_items",
		ownerColumn: "partner_id",
		priceColumn: "dealer_price",
	}
)

// CartKindsFor returns every cart an owner of the given kind has.
func CartKindsFor(owner model.ActorKind) []CartKind {
	var kinds []CartKind
	for _, k := range []CartKind{ProductCart, AnimalCart, PartnerCart} {
		if k.Owner == owner {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// AddToCart puts one unit of ref into the owner's cart. An existing line is
// incremented by one in the same statement that would otherwise insert it.
func AddToCart(ctx context.Context, db *sqlx.DB, kind CartKind, ownerID int64, ref model.ItemRef) (*model.CartItem, error) {
	if kind.animals && !ref.IsAnimal() {
		return nil, Invalid("animal_id is required")
	}
	if !kind.animals && !ref.IsProduct() {
		return nil, Invalid("product_id and variant_id are required")
	}

	ok, err := actorExists(ctx, db, model.Actor{Kind: kind.Owner, ID: ownerID})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound("cart owner not found")
	}

	if err := checkCartable(ctx, db, kind, ref); err != nil {
		return nil, err
	}

	var (
		query string
		args  []any
	)
	if kind.animals {
		query = `INSERT INTO ` + kind.table + ` (` + kind.ownerColumn + `, animal_id, quantity) VALUES (?, ?, 1)
		 ON CONFLICT (` + kind.ownerColumn + `, animal_id)
		 DO UPDATE SET quantity = ` + kind.table + `.quantity + 1
		 RETURNING id, quantity`
		args = []any{ownerID, ref.AnimalID}
	} else {
		query = `INSERT INTO ` + kind.table + ` (` + kind.ownerColumn + `, product_id, variant_id, quantity) VALUES (?, ?, ?, 1)
		 ON CONFLICT (` + kind.ownerColumn + `, product_id, variant_id)
		 DO UPDATE SET quantity = ` + kind.table + `.quantity + 1
		 RETURNING id, quantity`
		args = []any{ownerID, ref.ProductID, ref.VariantID}
	}

	item := &model.CartItem{}
	if err := get(ctx, db, item, query, args...); err != nil {
		return nil, fmt.Errorf("adding to %s cart: %w", kind.Name, err)
	}
	return item, nil
}

// UpdateCartItem sets the quantity of one of the owner's cart lines.
func UpdateCartItem(ctx context.Context, db *sqlx.DB, kind CartKind, ownerID, itemID int64, quantity int) (*model.CartItem, error) {
	if quantity < 1 {
		return nil, Invalid("quantity must be at least 1")
	}

	item := &model.CartItem{}
	err := get(ctx, db, item,
		`UPDATE `+kind.table+` SET quantity = ? WHERE id = ? AND `+kind.ownerColumn+` = ? RETURNING id, quantity`,
		quantity, itemID, ownerID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("cart item not found")
	}
	if err != nil {
		return nil, fmt.Errorf("updating %s cart item: %w", kind.Name, err)
	}
	return item, nil
}

// RemoveCartItem deletes one of the owner's cart lines. Removing a line that
// is already gone succeeds and reports false; a line owned by someone else is
// not found.
func RemoveCartItem(ctx context.Context, db *sqlx.DB, kind CartKind, ownerID, itemID int64) (bool, error) {
	result, err := exec(ctx, db,
		`DELETE FROM `+kind.table+` WHERE id = ? AND `+kind.ownerColumn+` = ?`,
		itemID, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("removing %s cart item: %w", kind.Name, err)
	}
	if n, _ := result.RowsAffected(); n > 0 {
		return true, nil
	}

	var exists bool
	if err := get(ctx, db, &exists, `SELECT EXISTS (SELECT 1 FROM `+kind.table+` WHERE id = ?)`, itemID); err != nil {
		return false, fmt.Errorf("checking %s cart item: %w", kind.Name, err)
	}
	if exists {
		return false, notFound("cart item not found")
	}
	return false, nil
}

// ListCart returns the owner's cart lines, newest first, joined with live
// catalog data and priced with the discount live at now.
func ListCart(ctx context.Context, db *sqlx.DB, kind CartKind, ownerID int64, now time.Time) ([]model.CartLine, error) {
	return cartLines(ctx, db, kind, ownerID, now)
}

func cartLines(ctx context.Context, q queryer, kind CartKind, ownerID int64, now time.Time) ([]model.CartLine, error) {
	var query string
	if kind.animals {
		query = `SELECT ci.id, ci.quantity, ci.created_at,
		        NULL AS product_id, NULL AS variant_id, ci.animal_id,
		        a.name AS item_name, '' AS variant_name, '' AS image_url,
		        NULL AS company_id, '' AS company_name,
		        a.is_active, FALSE AS out_of_stock,
		        a.price AS unit_price, NULL AS cost_price
		 FROM ` + kind.table + ` ci
		 JOIN animals a ON a.id = ci.animal_id
		 WHERE ci.` + kind.ownerColumn + ` = ?
		 ORDER BY ci.created_at DESC, ci.id DESC`
	} else {
		query = `SELECT ci.id, ci.quantity, ci.created_at,
		        ci.product_id, ci.variant_id, NULL AS animal_id,
		        p.name AS item_name, v.name AS variant_name, p.image_url,
		        p.company_id, COALESCE(c.name, '') AS company_name,
		        p.is_active, p.out_of_stock,
		        v.` + kind.priceColumn + ` AS unit_price, v.company_price AS cost_price
		 FROM ` + kind.table + ` ci
		 JOIN products p ON p.id = ci.product_id
		 JOIN variants v ON v.id = ci.variant_id
		 LEFT JOIN companies c ON c.id = p.company_id
		 WHERE ci.` + kind.ownerColumn + ` = ?
		 ORDER BY ci.created_at DESC, ci.id DESC`
	}

	lines := []model.CartLine{}
	if err := sel(ctx, q, &lines, query, ownerID); err != nil {
		return nil, fmt.Errorf("listing %s cart: %w", kind.Name, err)
	}

	for i := range lines {
		if err := priceLine(ctx, q, &lines[i], now); err != nil {
			return nil, err
		}
	}
	return lines, nil
}

// priceLine fills in the live price, discount and line total of l.
func priceLine(ctx context.Context, q queryer, l *model.CartLine, now time.Time) error {
	l.Price, l.Discount = l.UnitPrice.Round(2), nil
	if l.ProductID != nil && l.VariantID != nil {
		price, applied, err := ResolveDiscount(ctx, q, pricingRef(*l.ProductID, *l.VariantID, l.CompanyID), l.UnitPrice, now)
		if err != nil {
			return err
		}
		l.Price, l.Discount = price, applied
	}
	l.LineTotal = l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
	return nil
}

// clearCart deletes every line of the owner's cart.
func clearCart(ctx context.Context, q queryer, kind CartKind, ownerID int64) error {
	if _, err := exec(ctx, q, `DELETE FROM `+kind.table+` WHERE `+kind.ownerColumn+` = ?`, ownerID); err != nil {
		return fmt.Errorf("clearing %s cart: %w", kind.Name, err)
	}
	return nil
}

// checkCartable makes sure ref exists and can be bought right now.
func checkCartable(ctx context.Context, q queryer, kind CartKind, ref model.ItemRef) error {
	if kind.animals {
		var active bool
		err := get(ctx, q, &active, `SELECT is_active FROM animals WHERE id = ?`, ref.AnimalID)
		if errors.Is(err, sql.ErrNoRows) {
			return notFound("animal not found")
		}
		if err != nil {
			return fmt.Errorf("getting animal: %w", err)
		}
		if !active {
			return Invalid("animal is not available")
		}
		return nil
	}

	var p model.Product
	err := get(ctx, q, &p,
		`SELECT p.is_active, p.out_of_stock
		 FROM variants v JOIN products p ON p.id = v.product_id
		 WHERE v.id = ? AND v.product_id = ?`,
		ref.VariantID, ref.ProductID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound("product variant not found")
	}
	if err != nil {
		return fmt.Errorf("getting product variant: %w", err)
	}
	if !p.Orderable() {
		return Invalid("product is not available")
	}
	return nil
}
