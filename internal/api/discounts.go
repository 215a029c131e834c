package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/erazemk/trznica/internal/model"
	"github.com/erazemk/trznica/internal/store"
)

// DiscountsHandler handles discount endpoints for admins and companies.
type DiscountsHandler struct {
	DB *sqlx.DB
}

type createDiscountRequest struct {
	Percentage decimal.Decimal `json:"percentage"`
	StartDate  time.Time       `json:"start_date"`
	EndDate    time.Time       `json:"end_date"`
	Active     *bool           `json:"is_active"`
	VariantID  *int64          `json:"variant_id"`
	ProductID  *int64          `json:"product_id"`
	CompanyID  *int64          `json:"company_id"`
}

type toggleDiscountRequest struct {
	Active *bool `json:"is_active"`
}

// List handles GET /api/{admin,company}/discounts.
func (h *DiscountsHandler) List(w http.ResponseWriter, r *http.Request) {
	var companyID *int64
	if a := actor(r); a.Kind == model.ActorCompany {
		companyID = &a.ID
	}

	discounts, err := store.ListDiscounts(r.Context(), h.DB, companyID)
	if err != nil {
		storeError(w, err, "failed to list discounts")
		return
	}
	jsonResponse(w, http.StatusOK, discounts)
}

// Create handles POST /api/{admin,company}/discounts.
func (h *DiscountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDiscountRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d := model.Discount{
		Percentage: req.Percentage,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Active:     req.Active == nil || *req.Active,
		VariantID:  req.VariantID,
		ProductID:  req.ProductID,
		CompanyID:  req.CompanyID,
	}

	a := actor(r)
	created, err := store.CreateDiscount(r.Context(), h.DB, a, d)
	if err != nil {
		storeError(w, err, "failed to create discount")
		return
	}

	slog.Info("discount created", "discount", created.ID, "scope", created.Scope(),
		"percentage", created.Percentage, "by", a.Kind, "id", a.ID)
	jsonResponse(w, http.StatusCreated, created)
}

// SetActive handles PUT /api/{admin,company}/discounts/{id}.
func (h *DiscountsHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid discount id")
		return
	}

	var req toggleDiscountRequest
	if err := decodeJSON(r, &req); err != nil || req.Active == nil {
		jsonError(w, http.StatusBadRequest, "is_active required")
		return
	}

	d, err := store.SetDiscountActive(r.Context(), h.DB, actor(r), id, *req.Active)
	if err != nil {
		storeError(w, err, "failed to update discount")
		return
	}

	slog.Info("discount toggled", "discount", id, "active", d.Active)
	jsonResponse(w, http.StatusOK, d)
}
