package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/erazemk/trznica/internal/model"
)

// CheckoutRequest is what a cart owner submits to place an order.
type CheckoutRequest struct {
	model.Shipping
	PaymentMethod   string          `json:"payment_method"`
	ShipmentCharges decimal.Decimal `json:"shipment_charges"`
	IdempotencyKey  string          `json:"idempotency_key"`
}

// ManualOrderLine is one line of an admin-created order.
type ManualOrderLine struct {
	model.ItemRef
	Quantity int `json:"quantity"`
}

// ManualOrderRequest is an order entered by an admin without a cart.
type ManualOrderRequest struct {
	model.Shipping
	PaymentMethod   string            `json:"payment_method"`
	ShipmentCharges decimal.Decimal   `json:"shipment_charges"`
	CustomerID      *int64            `json:"customer_id"`
	Lines           []ManualOrderLine `json:"lines"`
}

// Checkout turns every cart the owner has into one pending order and empties
// those carts. Reading the carts, writing the order and clearing the carts
// happen in one transaction, so either all of it happens or none of it.
// A repeated idempotency key returns the order it already produced.
func Checkout(ctx context.Context, db *sqlx.DB, owner model.Actor, req CheckoutRequest) (*model.Order, error) {
	if err := validateOrderHeader(req.Shipping, req.PaymentMethod, req.ShipmentCharges); err != nil {
		return nil, err
	}
	if req.IdempotencyKey != "" {
		if _, err := uuid.Parse(req.IdempotencyKey); err != nil {
			return nil, Invalid("idempotency_key must be a UUID")
		}
	}

	kinds := CartKindsFor(owner.Kind)
	if len(kinds) == 0 {
		return nil, Invalid("account has no cart")
	}

	var orderID int64
	err := withTx(ctx, db, func(tx *sqlx.Tx) error {
		orderID = 0
		now := time.Now()

		if req.IdempotencyKey != "" {
			id, err := orderByKey(ctx, tx, owner, req.IdempotencyKey)
			if err != nil || id != 0 {
				orderID = id
				return err
			}
		}

		var lines []model.CartLine
		for _, kind := range kinds {
			kl, err := cartLines(ctx, tx, kind, owner.ID, now)
			if err != nil {
				return err
			}
			lines = append(lines, kl...)
		}
		if len(lines) == 0 {
			return Invalid("cart is empty")
		}

		items := make([]model.OrderItem, 0, len(lines))
		subtotals := map[int64]decimal.Decimal{}
		for i := range lines {
			l := &lines[i]
			if !l.Orderable() {
				return Invalid(fmt.Sprintf("%s is no longer available", l.ItemName))
			}
			items = append(items, snapshotLine(l))
			if l.CompanyID != nil {
				subtotals[*l.CompanyID] = subtotals[*l.CompanyID].Add(l.LineTotal)
			}
		}

		if err := checkPayment(ctx, tx, req.PaymentMethod, subtotals); err != nil {
			return err
		}

		order := &model.Order{
			OwnerKind:       string(owner.Kind),
			OwnerID:         &owner.ID,
			City:            req.City,
			Address:         req.Address,
			Contact:         req.Contact,
			PaymentMethod:   req.PaymentMethod,
			ShipmentCharges: req.ShipmentCharges,
			Items:           items,
		}
		if req.IdempotencyKey != "" {
			order.IdempotencyKey = &req.IdempotencyKey
		}
		if err := insertOrder(ctx, tx, order); err != nil {
			return err
		}

		for _, kind := range kinds {
			if err := clearCart(ctx, tx, kind, owner.ID); err != nil {
				return err
			}
		}

		orderID = order.ID
		return nil
	})
	if err != nil && req.IdempotencyKey != "" && isUniqueViolation(err) {
		// A concurrent checkout with the same key won the race.
		orderID, err = orderByKey(ctx, db, owner, req.IdempotencyKey)
		if err == nil && orderID == 0 {
			err = conflict("idempotency key already used")
		}
	}
	if err != nil {
		return nil, err
	}

	return GetOrder(ctx, db, orderID)
}

// CreateManualOrder records an order entered by an admin. Lines are priced
// the same way as a checkout, but no cart is touched.
func CreateManualOrder(ctx context.Context, db *sqlx.DB, req ManualOrderRequest) (*model.Order, error) {
	if err := validateOrderHeader(req.Shipping, req.PaymentMethod, req.ShipmentCharges); err != nil {
		return nil, err
	}
	if len(req.Lines) == 0 {
		return nil, Invalid("at least one line is required")
	}

	var orderID int64
	err := withTx(ctx, db, func(tx *sqlx.Tx) error {
		now := time.Now()

		order := &model.Order{
			City:            req.City,
			Address:         req.Address,
			Contact:         req.Contact,
			PaymentMethod:   req.PaymentMethod,
			ShipmentCharges: req.ShipmentCharges,
		}
		if req.CustomerID != nil {
			ok, err := actorExists(ctx, tx, model.Actor{Kind: model.ActorCustomer, ID: *req.CustomerID})
			if err != nil {
				return err
			}
			if !ok {
				return notFound("customer not found")
			}
			order.OwnerKind = string(model.ActorCustomer)
			order.OwnerID = req.CustomerID
		}

		subtotals := map[int64]decimal.Decimal{}
		for _, ml := range req.Lines {
			if ml.Quantity < 1 {
				return Invalid("quantity must be at least 1")
			}
			l, err := manualLine(ctx, tx, ml, now)
			if err != nil {
				return err
			}
			order.Items = append(order.Items, snapshotLine(l))
			if l.CompanyID != nil {
				subtotals[*l.CompanyID] = subtotals[*l.CompanyID].Add(l.LineTotal)
			}
		}

		if err := checkPayment(ctx, tx, req.PaymentMethod, subtotals); err != nil {
			return err
		}
		if err := insertOrder(ctx, tx, order); err != nil {
			return err
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return GetOrder(ctx, db, orderID)
}

func validateOrderHeader(s model.Shipping, method string, shipment decimal.Decimal) error {
	if field := s.Missing(); field != "" {
		return Invalid(field + " is required")
	}
	if !model.ValidPaymentMethod(method) {
		return Invalid("payment_method must be 'cash_on_delivery', 'bank_transfer' or 'card'")
	}
	if shipment.IsNegative() {
		return Invalid("shipment_charges must not be negative")
	}
	return nil
}

// checkPayment rejects the order unless every involved company accepts the
// payment method and its share of the order reaches its minimum amount.
func checkPayment(ctx context.Context, q queryer, method string, subtotals map[int64]decimal.Decimal) error {
	for companyID, subtotal := range subtotals {
		s, err := paymentSettings(ctx, q, companyID)
		if err != nil {
			return err
		}
		if !s.Enabled(method) {
			return Invalid(fmt.Sprintf("payment method %s is not accepted", method))
		}
		if subtotal.LessThan(s.MinOrderAmount) {
			return Invalid(fmt.Sprintf("order amount is below the minimum of %s", s.MinOrderAmount.StringFixed(2)))
		}
	}
	return nil
}

// snapshotLine freezes the live price of a cart line into an order item.
func snapshotLine(l *model.CartLine) model.OrderItem {
	item := model.OrderItem{
		ProductID:          l.ProductID,
		VariantID:          l.VariantID,
		AnimalID:           l.AnimalID,
		ItemName:           l.ItemName,
		Quantity:           l.Quantity,
		Price:              l.Price,
		PurchasedPrice:     l.CostPrice,
		DiscountPercentage: decimal.Zero,
	}
	if l.VariantName != "" {
		item.ItemName += " (" + l.VariantName + ")"
	}
	if l.Discount != nil {
		item.DiscountPercentage = l.Discount.Percentage
	}
	return item
}

// manualLine loads the catalog entity behind a manual order line and prices it
// at the customer price.
func manualLine(ctx context.Context, q queryer, ml ManualOrderLine, now time.Time) (*model.CartLine, error) {
	l := &model.CartLine{Quantity: ml.Quantity}

	switch {
	case ml.IsAnimal():
		err := get(ctx, q, l,
			`SELECT id AS animal_id, name AS item_name, is_active, price AS unit_price
			 FROM animals WHERE id = ?`, ml.AnimalID,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("animal not found")
		}
		if err != nil {
			return nil, fmt.Errorf("getting animal: %w", err)
		}
	case ml.IsProduct():
		err := get(ctx, q, l,
			`SELECT p.id AS product_id, v.id AS variant_id, p.name AS item_name, v.name AS variant_name,
			        p.company_id, p.is_active, p.out_of_stock,
			        v.customer_price AS unit_price, v.company_price AS cost_price
			 FROM variants v JOIN products p ON p.id = v.product_id
			 WHERE v.id = ? AND v.product_id = ?`, ml.VariantID, ml.ProductID,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("product variant not found")
		}
		if err != nil {
			return nil, fmt.Errorf("getting product variant: %w", err)
		}
	default:
		return nil, Invalid("each line needs either product_id and variant_id or animal_id")
	}

	if !l.Orderable() {
		return nil, Invalid(fmt.Sprintf("%s is not available", l.ItemName))
	}
	if err := priceLine(ctx, q, l, now); err != nil {
		return nil, err
	}
	return l, nil
}

// insertOrder writes the order header and its items, setting their IDs.
func insertOrder(ctx context.Context, q queryer, o *model.Order) error {
	o.Reference = uuid.NewString()
	o.Status = model.OrderPending
	o.Total = model.OrderTotal(o.Items, o.ShipmentCharges)

	id, err := insertID(ctx, q,
		`INSERT INTO checkouts (reference, owner_kind, owner_id, status, city, address, contact,
		                        payment_method, shipment_charges, total, idempotency_key)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.Reference, o.OwnerKind, o.OwnerID, o.Status, o.City, o.Address, o.Contact,
		o.PaymentMethod, o.ShipmentCharges, o.Total, o.IdempotencyKey,
	)
	if err != nil {
		return fmt.Errorf("creating order: %w", err)
	}
	o.ID = id

	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = id
		it.ID, err = insertID(ctx, q,
			`INSERT INTO checkout_items (checkout_id, product_id, variant_id, animal_id, item_name,
			                             quantity, price, purchased_price, discount_percentage)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, it.ProductID, it.VariantID, it.AnimalID, it.ItemName,
			it.Quantity, it.Price, it.PurchasedPrice, it.DiscountPercentage,
		)
		if err != nil {
			return fmt.Errorf("creating order item: %w", err)
		}
	}
	return nil
}

// orderByKey returns the ID of the order an idempotency key produced, or 0.
// A key used by a different owner is a conflict.
func orderByKey(ctx context.Context, q queryer, owner model.Actor, key string) (int64, error) {
	var row struct {
		ID        int64  `db:"id"`
		OwnerKind string `db:"owner_kind"`
		OwnerID   *int64 `db:"owner_id"`
	}
	err := get(ctx, q, &row, `SELECT id, owner_kind, owner_id FROM checkouts WHERE idempotency_key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("looking up idempotency key: %w", err)
	}
	if row.OwnerKind != string(owner.Kind) || row.OwnerID == nil || *row.OwnerID != owner.ID {
		return 0, conflict("idempotency key already used")
	}
	return row.ID, nil
}
