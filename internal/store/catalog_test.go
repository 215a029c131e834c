package store

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/trznica/internal/model"
)

func TestCreateProductOwnership(t *testing.T) {
	f := newFixture(t)

	other, err := CreateCompany(f.ctx, f.db, "Other", "other@example.com", "hash")
	require.NoError(t, err)

	// A company cannot create products for someone else.
	p, err := CreateProduct(f.ctx, f.db, f.companyActor(), ProductInput{Name: "Koruza", CompanyID: &other.ID})
	require.NoError(t, err)
	require.NotNil(t, p.CompanyID)
	assert.Equal(t, f.company.ID, *p.CompanyID)
	assert.True(t, p.Active)

	p, err = CreateProduct(f.ctx, f.db, f.admin, ProductInput{Name: "Koruza", CompanyID: &other.ID})
	require.NoError(t, err)
	assert.Equal(t, other.ID, *p.CompanyID)

	missing := int64(999)
	_, err = CreateProduct(f.ctx, f.db, f.admin, ProductInput{Name: "Koruza", CompanyID: &missing})
	assert.ErrorIs(t, err, ErrNotFound)

	p, err = CreateProduct(f.ctx, f.db, f.partnerActor(), ProductInput{Name: "Mleko"})
	require.NoError(t, err)
	assert.Nil(t, p.CompanyID)
	require.NotNil(t, p.PartnerID)
	assert.Equal(t, f.partner.ID, *p.PartnerID)

	_, err = CreateProduct(f.ctx, f.db, f.companyActor(), ProductInput{})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestUpdateVariantPricingOwnership(t *testing.T) {
	f := newFixture(t)

	other, err := CreateCompany(f.ctx, f.db, "Other", "other@example.com", "hash")
	require.NoError(t, err)

	pricing := model.VariantPricing{
		CustomerPrice: decimal.NewFromInt(1200),
		CompanyPrice:  decimal.NewFromInt(700),
		DealerPrice:   decimal.NewFromInt(900),
	}

	_, err = UpdateVariantPricing(f.ctx, f.db, model.Actor{Kind: model.ActorCompany, ID: other.ID}, f.variant.ID, pricing)
	assert.ErrorIs(t, err, ErrNotFound)

	v, err := GetVariant(f.ctx, f.db, f.variant.ID)
	require.NoError(t, err)
	assertMoney(t, "1000", v.CustomerPrice)

	v, err = UpdateVariantPricing(f.ctx, f.db, f.companyActor(), f.variant.ID, pricing)
	require.NoError(t, err)
	assertMoney(t, "1200", v.CustomerPrice)
	assertMoney(t, "700", v.CompanyPrice)
	assertMoney(t, "900", v.DealerPrice)

	pricing.DealerPrice = decimal.NewFromInt(-1)
	_, err = UpdateVariantPricing(f.ctx, f.db, f.companyActor(), f.variant.ID, pricing)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = UpdateVariantPricing(f.ctx, f.db, f.companyActor(), 999, model.VariantPricing{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProductFlags(t *testing.T) {
	f := newFixture(t)

	no, yes := false, true
	p, err := UpdateProductFlags(f.ctx, f.db, f.companyActor(), f.product.ID, ProductFlags{Active: &no})
	require.NoError(t, err)
	assert.False(t, p.Active)
	assert.False(t, p.OutOfStock)

	p, err = UpdateProductFlags(f.ctx, f.db, f.admin, f.product.ID, ProductFlags{OutOfStock: &yes})
	require.NoError(t, err)
	assert.False(t, p.Active, "unset flags are kept")
	assert.True(t, p.OutOfStock)

	_, err = UpdateProductFlags(f.ctx, f.db, f.partnerActor(), f.product.ID, ProductFlags{Active: &yes})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListProductsActiveOnly(t *testing.T) {
	f := newFixture(t)

	hidden, _ := f.addProduct(t, f.company.ID, "Skrito", "5")
	no := false
	_, err := UpdateProductFlags(f.ctx, f.db, f.companyActor(), hidden.ID, ProductFlags{Active: &no})
	require.NoError(t, err)

	products, err := ListProducts(f.ctx, f.db, ProductFilter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, f.product.ID, products[0].ID)

	products, err = ListProducts(f.ctx, f.db, ProductFilter{CompanyID: &f.company.ID})
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestSetAllInStock(t *testing.T) {
	f := newFixture(t)

	other, err := CreateCompany(f.ctx, f.db, "Other", "other@example.com", "hash")
	require.NoError(t, err)
	otherProduct, _ := f.addProduct(t, other.ID, "Koruza", "10")

	yes := true
	for _, id := range []int64{f.product.ID, otherProduct.ID} {
		_, err := UpdateProductFlags(f.ctx, f.db, f.admin, id, ProductFlags{OutOfStock: &yes})
		require.NoError(t, err)
	}

	n, err := SetAllInStock(f.ctx, f.db, &f.company.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	p, _ := GetProduct(f.ctx, f.db, otherProduct.ID, time.Now())
	assert.True(t, p.OutOfStock, "other company's product untouched")

	n, err = SetAllInStock(f.ctx, f.db, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	p, _ = GetProduct(f.ctx, f.db, otherProduct.ID, time.Now())
	assert.False(t, p.OutOfStock)
}

func TestGetProductCarriesLiveDiscount(t *testing.T) {
	f := newFixture(t)
	f.discount(t, "10", onVariant(f.variant.ID))

	p, err := GetProduct(f.ctx, f.db, f.product.ID, time.Now())
	require.NoError(t, err)
	require.Len(t, p.Variants, 1)
	require.NotNil(t, p.Variants[0].Discount)
	assertMoney(t, "900", p.Variants[0].Discount.Price)

	p, err = GetProduct(f.ctx, f.db, f.product.ID, time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.Nil(t, p.Variants[0].Discount, "window has closed")

	p, err = GetProduct(f.ctx, f.db, 999, time.Now())
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestAnimals(t *testing.T) {
	f := newFixture(t)

	a, err := CreateAnimal(f.ctx, f.db, f.partner.ID, AnimalInput{Name: "Liska", Breed: "cika", Price: decimal.NewFromInt(1500)})
	require.NoError(t, err)
	assert.True(t, a.Active)
	assertMoney(t, "1500", a.Price)

	vet, err := CreatePartner(f.ctx, f.db, "Vet", model.PartnerVeterinarian, "vet@example.com", "hash")
	require.NoError(t, err)
	_, err = CreateAnimal(f.ctx, f.db, vet.ID, AnimalInput{Name: "Mucka", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = SetAnimalActive(f.ctx, f.db, vet.ID, a.ID, false)
	assert.ErrorIs(t, err, ErrNotFound)

	a, err = SetAnimalActive(f.ctx, f.db, f.partner.ID, a.ID, false)
	require.NoError(t, err)
	assert.False(t, a.Active)

	animals, err := ListAnimals(f.ctx, f.db, true)
	require.NoError(t, err)
	assert.Empty(t, animals)
}
