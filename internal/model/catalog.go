package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Company sells products on the marketplace.
type Company struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Partner is a veterinarian, sales agent or farmer.
type Partner struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Kind         string    `db:"kind" json:"kind"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	ReferralCode string    `db:"referral_code" json:"referral_code"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Product is a catalog entry. Only active products can be carted or ordered.
type Product struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	ImageURL    string    `db:"image_url" json:"image_url,omitempty"`
	Active      bool      `db:"is_active" json:"is_active"`
	OutOfStock  bool      `db:"out_of_stock" json:"out_of_stock"`
	CompanyID   *int64    `db:"company_id" json:"company_id,omitempty"`
	PartnerID   *int64    `db:"partner_id" json:"partner_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	Variants []Variant `db:"-" json:"variants,omitempty"`
}

// Orderable reports whether the product may be added to a cart or an order.
func (p *Product) Orderable() bool {
	return p.Active && !p.OutOfStock
}

// Variant carries the pricing and inventory of one product option.
type Variant struct {
	ID            int64           `db:"id" json:"id"`
	ProductID     int64           `db:"product_id" json:"product_id"`
	Name          string          `db:"name" json:"name"`
	CustomerPrice decimal.Decimal `db:"customer_price" json:"customer_price"`
	CompanyPrice  decimal.Decimal `db:"company_price" json:"company_price"`
	DealerPrice   decimal.Decimal `db:"dealer_price" json:"dealer_price"`
	Inventory     int             `db:"inventory" json:"inventory"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`

	// Live discount, populated on catalog reads.
	Discount *AppliedDiscount `db:"-" json:"discount,omitempty"`
}

// VariantPricing is the mutable price set of a variant.
type VariantPricing struct {
	CustomerPrice decimal.Decimal `json:"customer_price"`
	CompanyPrice  decimal.Decimal `json:"company_price"`
	DealerPrice   decimal.Decimal `json:"dealer_price"`
}

// Validate rejects negative prices.
func (p VariantPricing) Validate() error {
	if p.CustomerPrice.IsNegative() || p.CompanyPrice.IsNegative() || p.DealerPrice.IsNegative() {
		return errNegativePrice
	}
	return nil
}

// Animal is livestock listed by a farmer partner.
type Animal struct {
	ID        int64           `db:"id" json:"id"`
	PartnerID int64           `db:"partner_id" json:"partner_id"`
	Name      string          `db:"name" json:"name"`
	Breed     string          `db:"breed" json:"breed,omitempty"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Active    bool            `db:"is_active" json:"is_active"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
