package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/trznica/internal/model"
)

func ptr(v int64) *int64 { return &v }

func pct(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

var now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func window(d model.Discount) model.Discount {
	d.Active = true
	d.StartDate = now.Add(-24 * time.Hour)
	d.EndDate = now.Add(24 * time.Hour)
	return d
}

func TestSelectVariantBeatsCompany(t *testing.T) {
	ref := Ref{ProductID: 1, VariantID: 10, CompanyID: ptr(100)}
	discounts := []model.Discount{
		window(model.Discount{ID: 1, Percentage: pct(50), CompanyID: ptr(100)}),
		window(model.Discount{ID: 2, Percentage: pct(5), VariantID: ptr(10)}),
	}

	d, ok := Select(discounts, ref, now)
	require.True(t, ok)
	assert.Equal(t, int64(2), d.ID)
	assert.True(t, d.Percentage.Equal(pct(5)))
}

func TestSelectProductBeatsCompany(t *testing.T) {
	ref := Ref{ProductID: 1, VariantID: 10, CompanyID: ptr(100)}
	discounts := []model.Discount{
		window(model.Discount{ID: 1, Percentage: pct(20), CompanyID: ptr(100)}),
		window(model.Discount{ID: 2, Percentage: pct(10), ProductID: ptr(1)}),
	}

	d, ok := Select(discounts, ref, now)
	require.True(t, ok)
	assert.True(t, d.Percentage.Equal(pct(10)))
}

func TestSelectHighestPercentageWithinLevel(t *testing.T) {
	ref := Ref{ProductID: 1, VariantID: 10}
	discounts := []model.Discount{
		window(model.Discount{ID: 1, Percentage: pct(10), ProductID: ptr(1)}),
		window(model.Discount{ID: 2, Percentage: pct(30), ProductID: ptr(1)}),
		window(model.Discount{ID: 3, Percentage: pct(15), ProductID: ptr(1)}),
	}

	d, ok := Select(discounts, ref, now)
	require.True(t, ok)
	assert.Equal(t, int64(2), d.ID)
}

func TestSelectIgnoresOtherItems(t *testing.T) {
	ref := Ref{ProductID: 1, VariantID: 10, CompanyID: ptr(100)}
	discounts := []model.Discount{
		window(model.Discount{ID: 1, Percentage: pct(10), VariantID: ptr(11)}),
		window(model.Discount{ID: 2, Percentage: pct(10), ProductID: ptr(2)}),
		window(model.Discount{ID: 3, Percentage: pct(10), CompanyID: ptr(101)}),
	}

	_, ok := Select(discounts, ref, now)
	assert.False(t, ok)
}

func TestSelectCompanyNeedsOwningCompany(t *testing.T) {
	ref := Ref{ProductID: 1, VariantID: 10}
	discounts := []model.Discount{
		window(model.Discount{ID: 1, Percentage: pct(10), CompanyID: ptr(100)}),
	}

	_, ok := Select(discounts, ref, now)
	assert.False(t, ok)
}

func TestSelectInactiveOrOutOfWindow(t *testing.T) {
	ref := Ref{ProductID: 1, VariantID: 10}
	base := window(model.Discount{ID: 1, Percentage: pct(10), VariantID: ptr(10)})

	_, ok := Select([]model.Discount{base}, ref, now)
	require.True(t, ok)

	inactive := base
	inactive.Active = false
	_, ok = Select([]model.Discount{inactive}, ref, now)
	assert.False(t, ok, "inactive discount must not apply")

	_, ok = Select([]model.Discount{base}, ref, base.EndDate.Add(time.Second))
	assert.False(t, ok, "expired discount must not apply")

	_, ok = Select([]model.Discount{base}, ref, base.StartDate.Add(-time.Second))
	assert.False(t, ok, "future discount must not apply")

	_, ok = Select([]model.Discount{base}, ref, base.EndDate)
	assert.True(t, ok, "window end is inclusive")
}

func TestSelectFallsThroughInactiveLevel(t *testing.T) {
	ref := Ref{ProductID: 1, VariantID: 10, CompanyID: ptr(100)}
	variant := window(model.Discount{ID: 1, Percentage: pct(40), VariantID: ptr(10)})
	variant.Active = false
	discounts := []model.Discount{
		variant,
		window(model.Discount{ID: 2, Percentage: pct(20), CompanyID: ptr(100)}),
	}

	d, ok := Select(discounts, ref, now)
	require.True(t, ok)
	assert.Equal(t, int64(2), d.ID)
}

func TestSelectIsIdempotent(t *testing.T) {
	ref := Ref{ProductID: 1, VariantID: 10, CompanyID: ptr(100)}
	discounts := []model.Discount{
		window(model.Discount{ID: 1, Percentage: pct(20), CompanyID: ptr(100)}),
		window(model.Discount{ID: 2, Percentage: pct(10), ProductID: ptr(1)}),
	}
	before := append([]model.Discount(nil), discounts...)

	first, ok1 := Select(discounts, ref, now)
	second, ok2 := Select(discounts, ref, now)
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, first, second)
	assert.Equal(t, before, discounts)
}

func TestApply(t *testing.T) {
	tests := []struct {
		price, percentage, want string
	}{
		{"1000", "10", "900"},
		{"1000", "0", "1000"},
		{"1000", "100", "0"},
		{"19.99", "15", "16.99"},
		{"0.05", "50", "0.03"},
		{"10.01", "50", "5.01"},
		{"33.33", "33.333", "22.22"},
	}

	for _, tt := range tests {
		got := Apply(decimal.RequireFromString(tt.price), decimal.RequireFromString(tt.percentage))
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
			"Apply(%s, %s) = %s, want %s", tt.price, tt.percentage, got, tt.want)
	}
}

func TestResolve(t *testing.T) {
	ref := Ref{ProductID: 1, VariantID: 10, CompanyID: ptr(100)}
	discounts := []model.Discount{
		window(model.Discount{ID: 7, Percentage: pct(10), VariantID: ptr(10)}),
	}

	price, applied := Resolve(discounts, ref, decimal.NewFromInt(1000), now)
	require.NotNil(t, applied)
	assert.True(t, price.Equal(decimal.NewFromInt(900)))
	assert.Equal(t, model.ScopeVariant, applied.Scope)
	assert.Equal(t, int64(7), applied.DiscountID)

	price, applied = Resolve(nil, ref, decimal.NewFromInt(1000), now)
	assert.Nil(t, applied)
	assert.True(t, price.Equal(decimal.NewFromInt(1000)))
}
