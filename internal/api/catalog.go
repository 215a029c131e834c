package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/trznica/internal/model"
	"github.com/erazemk/trznica/internal/store"
)

// CatalogHandler handles products, variants and animals. Write endpoints are
// mounted once per owning actor kind; ownership comes from the token.
type CatalogHandler struct {
	DB *sqlx.DB
}

type animalFlagsRequest struct {
	Active *bool `json:"is_active"`
}

// ListProducts handles GET /api/products. Only active products are listed.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := store.ListProducts(r.Context(), h.DB, store.ProductFilter{ActiveOnly: true})
	if err != nil {
		storeError(w, err, "failed to list products")
		return
	}
	jsonResponse(w, http.StatusOK, products)
}

// GetProduct handles GET /api/products/{id}.
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := store.GetProduct(r.Context(), h.DB, id, time.Now())
	if err != nil {
		storeError(w, err, "failed to get product")
		return
	}
	if product == nil || !product.Active {
		jsonError(w, http.StatusNotFound, "product not found")
		return
	}
	jsonResponse(w, http.StatusOK, product)
}

// CreateProduct handles POST /api/{admin,company,partner}/products.
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req store.ProductInput
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a := actor(r)
	product, err := store.CreateProduct(r.Context(), h.DB, a, req)
	if err != nil {
		storeError(w, err, "failed to create product")
		return
	}

	slog.Info("product created", "product", product.ID, "by", a.Kind, "id", a.ID)
	jsonResponse(w, http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/{admin,company,partner}/products/{id}.
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req store.ProductFlags
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := store.UpdateProductFlags(r.Context(), h.DB, actor(r), id, req)
	if err != nil {
		storeError(w, err, "failed to update product")
		return
	}
	jsonResponse(w, http.StatusOK, product)
}

// AddVariant handles POST /api/{admin,company,partner}/products/{id}/variants.
func (h *CatalogHandler) AddVariant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req store.VariantInput
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	variant, err := store.AddVariant(r.Context(), h.DB, actor(r), id, req)
	if err != nil {
		storeError(w, err, "failed to add variant")
		return
	}
	jsonResponse(w, http.StatusCreated, variant)
}

// UpdatePricing handles PUT /api/{admin,company,partner}/variants/{id}/pricing.
func (h *CatalogHandler) UpdatePricing(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid variant id")
		return
	}

	var req model.VariantPricing
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a := actor(r)
	variant, err := store.UpdateVariantPricing(r.Context(), h.DB, a, id, req)
	if err != nil {
		storeError(w, err, "failed to update pricing")
		return
	}

	slog.Info("variant pricing updated", "variant", id, "by", a.Kind, "id", a.ID)
	jsonResponse(w, http.StatusOK, variant)
}

// MarkInStock handles POST /api/{admin,company}/products/in-stock. Admins
// restock the whole catalog, companies only their own products.
func (h *CatalogHandler) MarkInStock(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	var companyID *int64
	if a.Kind == model.ActorCompany {
		companyID = &a.ID
	}

	n, err := store.SetAllInStock(r.Context(), h.DB, companyID)
	if err != nil {
		storeError(w, err, "failed to mark products in stock")
		return
	}

	slog.Info("products marked in stock", "count", n, "by", a.Kind, "id", a.ID)
	jsonResponse(w, http.StatusOK, map[string]int64{"updated": n})
}

// ListAnimals handles GET /api/animals.
func (h *CatalogHandler) ListAnimals(w http.ResponseWriter, r *http.Request) {
	animals, err := store.ListAnimals(r.Context(), h.DB, true)
	if err != nil {
		storeError(w, err, "failed to list animals")
		return
	}
	jsonResponse(w, http.StatusOK, animals)
}

// CreateAnimal handles POST /api/partner/animals.
func (h *CatalogHandler) CreateAnimal(w http.ResponseWriter, r *http.Request) {
	var req store.AnimalInput
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a := actor(r)
	animal, err := store.CreateAnimal(r.Context(), h.DB, a.ID, req)
	if err != nil {
		storeError(w, err, "failed to create animal")
		return
	}

	slog.Info("animal listed", "animal", animal.ID, "partner", a.ID)
	jsonResponse(w, http.StatusCreated, animal)
}

// UpdateAnimal handles PUT /api/partner/animals/{id}.
func (h *CatalogHandler) UpdateAnimal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid animal id")
		return
	}

	var req animalFlagsRequest
	if err := decodeJSON(r, &req); err != nil || req.Active == nil {
		jsonError(w, http.StatusBadRequest, "is_active required")
		return
	}

	animal, err := store.SetAnimalActive(r.Context(), h.DB, actor(r).ID, id, *req.Active)
	if err != nil {
		storeError(w, err, "failed to update animal")
		return
	}
	jsonResponse(w, http.StatusOK, animal)
}
