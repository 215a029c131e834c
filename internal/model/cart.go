package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemRef points at what a cart line or order line holds: either a product
// variant or an animal, never both.
type ItemRef struct {
	ProductID int64 `json:"product_id,omitempty"`
	VariantID int64 `json:"variant_id,omitempty"`
	AnimalID  int64 `json:"animal_id,omitempty"`
}

// IsAnimal reports whether the reference targets an animal.
func (r ItemRef) IsAnimal() bool {
	return r.AnimalID > 0 && r.ProductID == 0 && r.VariantID == 0
}

// IsProduct reports whether the reference targets a product variant.
func (r ItemRef) IsProduct() bool {
	return r.ProductID > 0 && r.VariantID > 0 && r.AnimalID == 0
}

// CartItem is one stored cart row.
type CartItem struct {
	ID       int64 `db:"id" json:"id"`
	Quantity int   `db:"quantity" json:"quantity"`
}

// CartLine is a cart row joined with live catalog data and the live discount.
type CartLine struct {
	ID          int64               `db:"id" json:"id"`
	Quantity    int                 `db:"quantity" json:"quantity"`
	CreatedAt   time.Time           `db:"created_at" json:"created_at"`
	ProductID   *int64              `db:"product_id" json:"product_id,omitempty"`
	VariantID   *int64              `db:"variant_id" json:"variant_id,omitempty"`
	AnimalID    *int64              `db:"animal_id" json:"animal_id,omitempty"`
	ItemName    string              `db:"item_name" json:"item_name"`
	VariantName string              `db:"variant_name" json:"variant_name,omitempty"`
	ImageURL    string              `db:"image_url" json:"image_url,omitempty"`
	CompanyID   *int64              `db:"company_id" json:"company_id,omitempty"`
	CompanyName string              `db:"company_name" json:"company_name,omitempty"`
	Active      bool                `db:"is_active" json:"-"`
	OutOfStock  bool                `db:"out_of_stock" json:"-"`
	UnitPrice   decimal.Decimal     `db:"unit_price" json:"unit_price"`
	CostPrice   decimal.NullDecimal `db:"cost_price" json:"-"`

	Discount  *AppliedDiscount `db:"-" json:"discount,omitempty"`
	Price     decimal.Decimal  `db:"-" json:"price"`
	LineTotal decimal.Decimal  `db:"-" json:"line_total"`
}

// Orderable reports whether the line's catalog entity can still be bought.
func (l *CartLine) Orderable() bool {
	return l.Active && !l.OutOfStock
}

// Ref returns the item reference of the line.
func (l *CartLine) Ref() ItemRef {
	var ref ItemRef
	if l.ProductID != nil {
		ref.ProductID = *l.ProductID
	}
	if l.VariantID != nil {
		ref.VariantID = *l.VariantID
	}
	if l.AnimalID != nil {
		ref.AnimalID = *l.AnimalID
	}
	return ref
}
