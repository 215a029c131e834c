package store

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/trznica/internal/model"
)

func TestAddToCartTwiceIncrements(t *testing.T) {
	f := newFixture(t)

	first, err := AddToCart(f.ctx, f.db, ProductCart, f.customer.ID, f.ref())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Quantity)

	second, err := AddToCart(f.ctx, f.db, ProductCart, f.customer.ID, f.ref())
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.Quantity)

	lines, err := ListCart(f.ctx, f.db, ProductCart, f.customer.ID, time.Now())
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestAddToCartMissingEntities(t *testing.T) {
	f := newFixture(t)

	_, err := AddToCart(f.ctx, f.db, ProductCart, 999, f.ref())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = AddToCart(f.ctx, f.db, ProductCart, f.customer.ID, model.ItemRef{ProductID: f.product.ID, VariantID: 999})
	assert.ErrorIs(t, err, ErrNotFound)

	_, otherVariant := f.addProduct(t, f.company.ID, "Koruza", "3")
	_, err = AddToCart(f.ctx, f.db, ProductCart, f.customer.ID, model.ItemRef{ProductID: f.product.ID, VariantID: otherVariant.ID})
	assert.ErrorIs(t, err, ErrNotFound, "variant of another product")

	_, err = AddToCart(f.ctx, f.db, AnimalCart, f.customer.ID, model.ItemRef{AnimalID: 999})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = AddToCart(f.ctx, f.db, ProductCart, f.customer.ID, model.ItemRef{AnimalID: 1})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAddToCartInactiveProduct(t *testing.T) {
	f := newFixture(t)

	no := false
	_, err := UpdateProductFlags(f.ctx, f.db, f.admin, f.product.ID, ProductFlags{Active: &no})
	require.NoError(t, err)

	_, err = AddToCart(f.ctx, f.db, ProductCart, f.customer.ID, f.ref())
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestUpdateCartItem(t *testing.T) {
	f := newFixture(t)

	item, err := AddToCart(f.ctx, f.db, ProductCart, f.customer.ID, f.ref())
	require.NoError(t, err)

	for _, q := range []int{0, -3} {
		_, err = UpdateCartItem(f.ctx, f.db, ProductCart, f.customer.ID, item.ID, q)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}

	lines, err := ListCart(f.ctx, f.db, ProductCart, f.customer.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, lines[0].Quantity, "rejected update leaves quantity unchanged")

	stranger, err := CreateCustomer(f.ctx, f.db, "Bor", "bor@example.com", "hash")
	require.NoError(t, err)
	_, err = UpdateCartItem(f.ctx, f.db, ProductCart, stranger.ID, item.ID, 5)
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := UpdateCartItem(f.ctx, f.db, ProductCart, f.customer.ID, item.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Quantity)
}

func TestRemoveCartItem(t *testing.T) {
	f := newFixture(t)

	item, err := AddToCart(f.ctx, f.db, ProductCart, f.customer.ID, f.ref())
	require.NoError(t, err)

	stranger, err := CreateCustomer(f.ctx, f.db, "Bor", "bor@example.com", "hash")
	require.NoError(t, err)
	_, err = RemoveCartItem(f.ctx, f.db, ProductCart, stranger.ID, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	removed, err := RemoveCartItem(f.ctx, f.db, ProductCart, f.customer.ID, item.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = RemoveCartItem(f.ctx, f.db, ProductCart, f.customer.ID, item.ID)
	require.NoError(t, err)
	assert.False(t, removed, "second remove is a no-op")
}

func TestListCartNewestFirstWithLivePrices(t *testing.T) {
	f := newFixture(t)
	_, second := f.addProduct(t, f.company.ID, "Koruza", "19.99")
	f.discount(t, "15", onCompany(f.company.ID))

	_, err := AddToCart(f.ctx, f.db, ProductCart, f.customer.ID, f.ref())
	require.NoError(t, err)
	_, err = AddToCart(f.ctx, f.db, ProductCart, f.customer.ID, model.ItemRef{ProductID: second.ProductID, VariantID: second.ID})
	require.NoError(t, err)
	_, err = AddToCart(f.ctx, f.db, ProductCart, f.customer.ID, model.ItemRef{ProductID: second.ProductID, VariantID: second.ID})
	require.NoError(t, err)

	lines, err := ListCart(f.ctx, f.db, ProductCart, f.customer.ID, time.Now())
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, "Koruza", lines[0].ItemName)
	assert.Equal(t, "Agro", lines[0].CompanyName)
	require.NotNil(t, lines[0].Discount)
	assertMoney(t, "16.99", lines[0].Price)
	assertMoney(t, "33.98", lines[0].LineTotal)
	assertMoney(t, "850", lines[1].Price)

	// Live pricing: once the discount window closes the cart shows full price.
	lines, err = ListCart(f.ctx, f.db, ProductCart, f.customer.ID, time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.Nil(t, lines[1].Discount)
	assertMoney(t, "1000", lines[1].Price)
}

func TestAnimalCart(t *testing.T) {
	f := newFixture(t)

	a, err := CreateAnimal(f.ctx, f.db, f.partner.ID, AnimalInput{Name: "Liska", Price: decimal.NewFromInt(1500)})
	require.NoError(t, err)

	for range 2 {
		_, err = AddToCart(f.ctx, f.db, AnimalCart, f.customer.ID, model.ItemRef{AnimalID: a.ID})
		require.NoError(t, err)
	}

	lines, err := ListCart(f.ctx, f.db, AnimalCart, f.customer.ID, time.Now())
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	require.NotNil(t, lines[0].AnimalID)
	assert.Nil(t, lines[0].ProductID)
	assertMoney(t, "3000", lines[0].LineTotal)

	products, err := ListCart(f.ctx, f.db, ProductCart, f.customer.ID, time.Now())
	require.NoError(t, err)
	assert.Empty(t, products, "carts are independent")
}

func TestPartnerCartUsesDealerPrice(t *testing.T) {
	f := newFixture(t)

	_, err := AddToCart(f.ctx, f.db, PartnerCart, f.partner.ID, f.ref())
	require.NoError(t, err)

	_, err = AddToCart(f.ctx, f.db, PartnerCart, 999, f.ref())
	assert.ErrorIs(t, err, ErrNotFound)

	lines, err := ListCart(f.ctx, f.db, PartnerCart, f.partner.ID, time.Now())
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assertMoney(t, "800", lines[0].Price)
}

func TestCartKindsFor(t *testing.T) {
	assert.Equal(t, []CartKind{ProductCart, AnimalCart}, CartKindsFor(model.ActorCustomer))
	assert.Equal(t, []CartKind{PartnerCart}, CartKindsFor(model.ActorPartner))
	assert.Empty(t, CartKindsFor(model.ActorAdmin))
}
