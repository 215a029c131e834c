// Package pricing decides which discount applies to a catalog line and what
// the line costs after it.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/trznica/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Ref identifies the line a discount is resolved for.
type Ref struct {
	ProductID int64
	VariantID int64
	CompanyID *int64
}

// Active reports whether d is switched on and now falls inside its window.
// Both window ends are inclusive.
func Active(d *model.Discount, now time.Time) bool {
	return d.Active && !now.Before(d.StartDate) && !now.After(d.EndDate)
}

// Select picks the discount for ref out of candidates. Variant scope beats
// product scope, which beats company scope, whatever the percentages. Within a
// level the highest percentage wins; ties go to the earliest candidate.
func Select(candidates []model.Discount, ref Ref, now time.Time) (model.Discount, bool) {
	levels := []func(*model.Discount) bool{
		func(d *model.Discount) bool {
			return d.Scope() == model.ScopeVariant && *d.VariantID == ref.VariantID
		},
		func(d *model.Discount) bool {
			return d.Scope() == model.ScopeProduct && *d.ProductID == ref.ProductID
		},
		func(d *model.Discount) bool {
			return ref.CompanyID != nil && d.Scope() == model.ScopeCompany && *d.CompanyID == *ref.CompanyID
		},
	}

	for _, matches := range levels {
		var best *model.Discount
		for i := range candidates {
			d := &candidates[i]
			if !matches(d) || !Active(d, now) {
				continue
			}
			if best == nil || d.Percentage.GreaterThan(best.Percentage) {
				best = d
			}
		}
		if best != nil {
			return *best, true
		}
	}
	return model.Discount{}, false
}

// Apply returns price reduced by percentage, rounded half-up to cents.
func Apply(price, percentage decimal.Decimal) decimal.Decimal {
	return price.Mul(hundred.Sub(percentage)).Div(hundred).Round(2)
}

// Resolve selects the discount for ref and prices it. A line without a
// discount keeps its price rounded to cents and a nil discount.
func Resolve(candidates []model.Discount, ref Ref, price decimal.Decimal, now time.Time) (decimal.Decimal, *model.AppliedDiscount) {
	d, ok := Select(candidates, ref, now)
	if !ok {
		return price.Round(2), nil
	}
	discounted := Apply(price, d.Percentage)
	return discounted, &model.AppliedDiscount{
		DiscountID: d.ID,
		Scope:      d.Scope(),
		Percentage: d.Percentage,
		Price:      discounted,
	}
}
