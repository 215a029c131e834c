package store

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/trznica/internal/db"
	"github.com/erazemk/trznica/internal/model"
)

// fixture is a small marketplace: one company selling one product with one
// variant, one customer and one farmer partner.
type fixture struct {
	ctx      context.Context
	db       *sqlx.DB
	admin    model.Actor
	company  *model.Company
	customer *model.Customer
	partner  *model.Partner
	product  *model.Product
	variant  *model.Variant
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		ctx:   context.Background(),
		db:    db.NewTestDB(t),
		admin: model.Actor{Kind: model.ActorAdmin, ID: 1},
	}

	var err error
	f.company, err = CreateCompany(f.ctx, f.db, "Agro", "agro@example.com", "hash")
	require.NoError(t, err)
	f.customer, err = CreateCustomer(f.ctx, f.db, "Ana", "ana@example.com", "hash")
	require.NoError(t, err)
	f.partner, err = CreatePartner(f.ctx, f.db, "Kmetija Novak", model.PartnerFarmer, "novak@example.com", "hash")
	require.NoError(t, err)

	f.product, f.variant = f.addProduct(t, f.company.ID, "Seno", "1000")
	return f
}

func (f *fixture) companyActor() model.Actor {
	return model.Actor{Kind: model.ActorCompany, ID: f.company.ID}
}

func (f *fixture) customerActor() model.Actor {
	return model.Actor{Kind: model.ActorCustomer, ID: f.customer.ID}
}

func (f *fixture) partnerActor() model.Actor {
	return model.Actor{Kind: model.ActorPartner, ID: f.partner.ID}
}

// addProduct creates an active product of the company with one variant
// priced at customerPrice. Company price is half of it, dealer price 80%.
func (f *fixture) addProduct(t *testing.T, companyID int64, name, customerPrice string) (*model.Product, *model.Variant) {
	t.Helper()

	actor := model.Actor{Kind: model.ActorCompany, ID: companyID}
	p, err := CreateProduct(f.ctx, f.db, actor, ProductInput{Name: name})
	require.NoError(t, err)

	price := decimal.RequireFromString(customerPrice)
	v, err := AddVariant(f.ctx, f.db, actor, p.ID, VariantInput{
		Name:      "standard",
		Inventory: 10,
		VariantPricing: model.VariantPricing{
			CustomerPrice: price,
			CompanyPrice:  price.Div(decimal.NewFromInt(2)),
			DealerPrice:   price.Mul(decimal.RequireFromString("0.8")),
		},
	})
	require.NoError(t, err)
	return p, v
}

func (f *fixture) ref() model.ItemRef {
	return model.ItemRef{ProductID: f.product.ID, VariantID: f.variant.ID}
}

// discount creates an active discount whose window covers now.
func (f *fixture) discount(t *testing.T, pct string, scope func(*model.Discount)) *model.Discount {
	t.Helper()

	d := model.Discount{
		Percentage: decimal.RequireFromString(pct),
		StartDate:  time.Now().Add(-time.Hour),
		EndDate:    time.Now().Add(time.Hour),
		Active:     true,
	}
	scope(&d)

	created, err := CreateDiscount(f.ctx, f.db, f.admin, d)
	require.NoError(t, err)
	return created
}

func onVariant(id int64) func(*model.Discount) {
	return func(d *model.Discount) { d.VariantID = &id }
}

func onProduct(id int64) func(*model.Discount) {
	return func(d *model.Discount) { d.ProductID = &id }
}

func onCompany(id int64) func(*model.Discount) {
	return func(d *model.Discount) { d.CompanyID = &id }
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "expected %s, got %s", want, got)
}

func shipping() model.Shipping {
	return model.Shipping{City: "Ljubljana", Address: "Trg 1", Contact: "040 123 456"}
}
