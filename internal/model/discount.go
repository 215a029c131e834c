package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	errNegativePrice   = errors.New("prices must not be negative")
	errDiscountScope   = errors.New("exactly one of variant_id, product_id or company_id must be set")
	errDiscountPercent = errors.New("percentage must be between 0 and 100")
	errDiscountWindow  = errors.New("start_date must not be after end_date")
)

// Discount scopes.
const (
	ScopeVariant = "variant"
	ScopeProduct = "product"
	ScopeCompany = "company"
)

// Discount is a percentage off, valid in [StartDate, EndDate] while active,
// scoped to exactly one of a variant, a product or a company.
type Discount struct {
	ID         int64           `db:"id" json:"id"`
	Percentage decimal.Decimal `db:"percentage" json:"percentage"`
	StartDate  time.Time       `db:"start_date" json:"start_date"`
	EndDate    time.Time       `db:"end_date" json:"end_date"`
	Active     bool            `db:"is_active" json:"is_active"`
	VariantID  *int64          `db:"variant_id" json:"variant_id,omitempty"`
	ProductID  *int64          `db:"product_id" json:"product_id,omitempty"`
	CompanyID  *int64          `db:"company_id" json:"company_id,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// Scope returns which catalog level the discount applies to, or "" when the
// scope fields are not mutually exclusive.
func (d *Discount) Scope() string {
	set := 0
	scope := ""
	if d.VariantID != nil {
		set++
		scope = ScopeVariant
	}
	if d.ProductID != nil {
		set++
		scope = ScopeProduct
	}
	if d.CompanyID != nil {
		set++
		scope = ScopeCompany
	}
	if set != 1 {
		return ""
	}
	return scope
}

// Validate checks scope exclusivity, percentage range and window order.
func (d *Discount) Validate() error {
	if d.Scope() == "" {
		return errDiscountScope
	}
	if d.Percentage.IsNegative() || d.Percentage.GreaterThan(decimal.NewFromInt(100)) {
		return errDiscountPercent
	}
	if d.StartDate.After(d.EndDate) {
		return errDiscountWindow
	}
	return nil
}

// AppliedDiscount is the discount resolved for one line at read or checkout time.
type AppliedDiscount struct {
	DiscountID int64           `json:"discount_id"`
	Scope      string          `json:"scope"`
	Percentage decimal.Decimal `json:"percentage"`
	Price      decimal.Decimal `json:"price"`
}
