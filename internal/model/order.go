package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses.
const (
	OrderPending   = "pending"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
	OrderRefunded  = "refunded"
)

var orderTransitions = map[string][]string{
	OrderPending:   {OrderDelivered, OrderCancelled},
	OrderDelivered: {OrderRefunded},
}

// ValidOrderStatus reports whether status is a known order status.
func ValidOrderStatus(status string) bool {
	switch status {
	case OrderPending, OrderDelivered, OrderCancelled, OrderRefunded:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order is an immutable purchase record. Only its status and its items'
// quantity, price and cost can be changed afterwards.
type Order struct {
	ID              int64           `db:"id" json:"id"`
	Reference       string          `db:"reference" json:"reference"`
	OwnerKind       string          `db:"owner_kind" json:"owner_kind,omitempty"`
	OwnerID         *int64          `db:"owner_id" json:"owner_id,omitempty"`
	Status          string          `db:"status" json:"status"`
	City            string          `db:"city" json:"city"`
	Address         string          `db:"address" json:"address"`
	Contact         string          `db:"contact" json:"contact"`
	PaymentMethod   string          `db:"payment_method" json:"payment_method"`
	ShipmentCharges decimal.Decimal `db:"shipment_charges" json:"shipment_charges"`
	Total           decimal.Decimal `db:"total" json:"total"`
	IdempotencyKey  *string         `db:"idempotency_key" json:"-"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`

	Items []OrderItem `db:"-" json:"items"`
}

// OrderItem snapshots the price of one line at order time.
type OrderItem struct {
	ID                 int64               `db:"id" json:"id"`
	OrderID            int64               `db:"checkout_id" json:"order_id"`
	ProductID          *int64              `db:"product_id" json:"product_id,omitempty"`
	VariantID          *int64              `db:"variant_id" json:"variant_id,omitempty"`
	AnimalID           *int64              `db:"animal_id" json:"animal_id,omitempty"`
	ItemName           string              `db:"item_name" json:"item_name"`
	Quantity           int                 `db:"quantity" json:"quantity"`
	Price              decimal.Decimal     `db:"price" json:"price"`
	PurchasedPrice     decimal.NullDecimal `db:"purchased_price" json:"purchased_price"`
	DiscountPercentage decimal.Decimal     `db:"discount_percentage" json:"discount_percentage"`
}

// LineTotal is price times quantity.
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// LineCost is purchased price times quantity, when the cost is known.
func (i *OrderItem) LineCost() decimal.NullDecimal {
	if !i.PurchasedPrice.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(i.PurchasedPrice.Decimal.Mul(decimal.NewFromInt(int64(i.Quantity))))
}

// OrderTotal sums the line totals and adds the shipment charges.
func OrderTotal(items []OrderItem, shipment decimal.Decimal) decimal.Decimal {
	total := shipment
	for i := range items {
		total = total.Add(items[i].LineTotal())
	}
	return total
}

// Shipping is where an order goes and whom to call.
type Shipping struct {
	City    string `json:"city"`
	Address string `json:"address"`
	Contact string `json:"contact"`
}

// Missing returns the name of the first empty field, or "".
func (s Shipping) Missing() string {
	switch {
	case s.City == "":
		return "city"
	case s.Address == "":
		return "address"
	case s.Contact == "":
		return "contact"
	}
	return ""
}
