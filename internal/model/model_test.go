package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestActorKindValid(t *testing.T) {
	for _, k := range []ActorKind{ActorAdmin, ActorCompany, ActorPartner, ActorCustomer} {
		assert.True(t, k.Valid(), k)
	}
	assert.False(t, ActorKind("").Valid())
	assert.False(t, ActorKind("root").Valid())

	a := Actor{Kind: ActorPartner, ID: 3}
	assert.True(t, a.Is(ActorCustomer, ActorPartner))
	assert.False(t, a.Is(ActorAdmin))
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"short", true},
		{"1234567", true},
		{"12345678", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		assert.Equal(t, tt.wantErr, err != nil, "ValidatePassword(%q) = %v", tt.password, err)
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{OrderPending, OrderDelivered, true},
		{OrderPending, OrderCancelled, true},
		{OrderDelivered, OrderRefunded, true},
		{OrderDelivered, OrderPending, false},
		{OrderCancelled, OrderDelivered, false},
		{OrderRefunded, OrderPending, false},
		{OrderPending, OrderPending, false},
		{OrderPending, OrderRefunded, false},
		{"unknown", OrderDelivered, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestDiscountValidate(t *testing.T) {
	id := int64(1)
	now := time.Now()

	d := Discount{Percentage: decimal.NewFromInt(10), StartDate: now, EndDate: now.Add(time.Hour), ProductID: &id}
	assert.NoError(t, d.Validate())
	assert.Equal(t, ScopeProduct, d.Scope())

	noScope := d
	noScope.ProductID = nil
	assert.Error(t, noScope.Validate())

	twoScopes := d
	twoScopes.CompanyID = &id
	assert.Equal(t, "", twoScopes.Scope())
	assert.Error(t, twoScopes.Validate())

	tooMuch := d
	tooMuch.Percentage = decimal.NewFromInt(101)
	assert.Error(t, tooMuch.Validate())

	backwards := d
	backwards.StartDate, backwards.EndDate = d.EndDate, d.StartDate
	assert.Error(t, backwards.Validate())
}

func TestOrderTotal(t *testing.T) {
	items := []OrderItem{
		{Quantity: 2, Price: decimal.RequireFromString("450.50")},
		{Quantity: 1, Price: decimal.RequireFromString("99")},
	}
	total := OrderTotal(items, decimal.NewFromInt(50))
	assert.True(t, total.Equal(decimal.RequireFromString("1050")), total.String())

	cost := (&OrderItem{Quantity: 3, PurchasedPrice: decimal.NewNullDecimal(decimal.NewFromInt(7))}).LineCost()
	assert.True(t, cost.Valid)
	assert.True(t, cost.Decimal.Equal(decimal.NewFromInt(21)))
	assert.False(t, (&OrderItem{Quantity: 3}).LineCost().Valid)
}

func TestItemRef(t *testing.T) {
	assert.True(t, ItemRef{ProductID: 1, VariantID: 2}.IsProduct())
	assert.False(t, ItemRef{ProductID: 1}.IsProduct())
	assert.False(t, ItemRef{ProductID: 1, VariantID: 2, AnimalID: 3}.IsProduct())
	assert.True(t, ItemRef{AnimalID: 3}.IsAnimal())
	assert.False(t, ItemRef{AnimalID: 3, VariantID: 1}.IsAnimal())
}

func TestPaymentSettingsEnabled(t *testing.T) {
	s := DefaultPaymentSettings(1)
	assert.True(t, s.Enabled(PaymentCard))
	s.Card = false
	assert.False(t, s.Enabled(PaymentCard))
	assert.True(t, s.Enabled(PaymentCashOnDelivery))
	assert.False(t, s.Enabled("barter"))
}
