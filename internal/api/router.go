package api

import (
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/trznica/internal/model"
	"github.com/erazemk/trznica/internal/store"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sqlx.DB, jwtSecret string, tokenTTL time.Duration) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret, TokenTTL: tokenTTL}
	accountsHandler := &AccountsHandler{DB: db}
	catalogHandler := &CatalogHandler{DB: db}
	discountsHandler := &DiscountsHandler{DB: db}
	checkoutHandler := &CheckoutHandler{DB: db}
	ordersHandler := &OrdersHandler{DB: db, Ledger: &store.SQLProfitLedger{DB: db}}
	paymentsHandler := &PaymentsHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	only := func(h http.HandlerFunc, kinds ...model.ActorKind) http.Handler {
		return authMW(RequireActor(kinds...)(h))
	}
	admin := model.ActorAdmin
	company := model.ActorCompany
	partner := model.ActorPartner
	customer := model.ActorCustomer

	// Public.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("GET /api/products", catalogHandler.ListProducts)
	mux.HandleFunc("GET /api/products/{id}", catalogHandler.GetProduct)
	mux.HandleFunc("GET /api/animals", catalogHandler.ListAnimals)
	mux.HandleFunc("GET /api/companies", accountsHandler.ListCompanies)

	// Any session.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Carts: one handler type per cart kind.
	carts := []struct {
		prefix string
		kind   store.CartKind
	}{
		{"/api/cart", store.ProductCart},
		{"/api/animal-cart", store.AnimalCart},
		{"/api/partner-cart", store.PartnerCart},
	}
	for _, c := range carts {
		h := &CartHandler{DB: db, Kind: c.kind}
		mux.Handle("GET "+c.prefix, only(h.List, c.kind.Owner))
		mux.Handle("POST "+c.prefix, only(h.Add, c.kind.Owner))
		mux.Handle("PUT "+c.prefix+"/{id}", only(h.Update, c.kind.Owner))
		mux.Handle("DELETE "+c.prefix+"/{id}", only(h.Remove, c.kind.Owner))
	}

	// Checkout and own orders.
	mux.Handle("POST /api/checkout", only(checkoutHandler.Checkout, customer))
	mux.Handle("POST /api/partner/checkout", only(checkoutHandler.Checkout, partner))
	mux.Handle("GET /api/orders", only(ordersHandler.ListMine, customer, partner))
	mux.Handle("GET /api/orders/{id}", only(ordersHandler.GetMine, customer, partner))

	// Partner catalog.
	mux.Handle("POST /api/partner/products", only(catalogHandler.CreateProduct, partner))
	mux.Handle("PUT /api/partner/products/{id}", only(catalogHandler.UpdateProduct, partner))
	mux.Handle("POST /api/partner/products/{id}/variants", only(catalogHandler.AddVariant, partner))
	mux.Handle("PUT /api/partner/variants/{id}/pricing", only(catalogHandler.UpdatePricing, partner))
	mux.Handle("POST /api/partner/animals", only(catalogHandler.CreateAnimal, partner))
	mux.Handle("PUT /api/partner/animals/{id}", only(catalogHandler.UpdateAnimal, partner))

	// Company catalog, discounts and payments.
	mux.Handle("POST /api/company/products", only(catalogHandler.CreateProduct, company))
	mux.Handle("PUT /api/company/products/{id}", only(catalogHandler.UpdateProduct, company))
	mux.Handle("POST /api/company/products/{id}/variants", only(catalogHandler.AddVariant, company))
	mux.Handle("PUT /api/company/variants/{id}/pricing", only(catalogHandler.UpdatePricing, company))
	mux.Handle("POST /api/company/products/in-stock", only(catalogHandler.MarkInStock, company))
	mux.Handle("GET /api/company/discounts", only(discountsHandler.List, company))
	mux.Handle("POST /api/company/discounts", only(discountsHandler.Create, company))
	mux.Handle("PUT /api/company/discounts/{id}", only(discountsHandler.SetActive, company))
	mux.Handle("GET /api/company/payment-settings", only(paymentsHandler.Get, company))
	mux.Handle("PUT /api/company/payment-settings", only(paymentsHandler.Save, company))

	// Admin.
	mux.Handle("POST /api/admin/companies", only(accountsHandler.CreateCompany, admin))
	mux.Handle("GET /api/admin/partners", only(accountsHandler.ListPartners, admin))
	mux.Handle("POST /api/admin/partners", only(accountsHandler.CreatePartner, admin))
	mux.Handle("POST /api/admin/products", only(catalogHandler.CreateProduct, admin))
	mux.Handle("PUT /api/admin/products/{id}", only(catalogHandler.UpdateProduct, admin))
	mux.Handle("POST /api/admin/products/{id}/variants", only(catalogHandler.AddVariant, admin))
	mux.Handle("PUT /api/admin/variants/{id}/pricing", only(catalogHandler.UpdatePricing, admin))
	mux.Handle("POST /api/admin/products/in-stock", only(catalogHandler.MarkInStock, admin))
	mux.Handle("GET /api/admin/discounts", only(discountsHandler.List, admin))
	mux.Handle("POST /api/admin/discounts", only(discountsHandler.Create, admin))
	mux.Handle("PUT /api/admin/discounts/{id}", only(discountsHandler.SetActive, admin))
	mux.Handle("GET /api/admin/orders", only(ordersHandler.List, admin))
	mux.Handle("POST /api/admin/orders", only(ordersHandler.CreateManual, admin))
	mux.Handle("GET /api/admin/orders/{id}", only(ordersHandler.Get, admin))
	mux.Handle("PUT /api/admin/orders/{id}", only(ordersHandler.Update, admin))
	mux.Handle("PUT /api/admin/orders/{id}/status", only(ordersHandler.UpdateStatus, admin))
	mux.Handle("DELETE /api/admin/orders/{id}", only(ordersHandler.Delete, admin))

	return mux
}
