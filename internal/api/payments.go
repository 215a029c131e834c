package api

import (
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/trznica/internal/model"
	"github.com/erazemk/trznica/internal/store"
)

// PaymentsHandler handles a company's payment settings.
type PaymentsHandler struct {
	DB *sqlx.DB
}

// Get handles GET /api/company/payment-settings.
func (h *PaymentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := store.GetPaymentSettings(r.Context(), h.DB, actor(r).ID)
	if err != nil {
		storeError(w, err, "failed to get payment settings")
		return
	}
	jsonResponse(w, http.StatusOK, s)
}

// Save handles PUT /api/company/payment-settings.
func (h *PaymentsHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req model.PaymentSettings
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.CompanyID = actor(r).ID

	s, err := store.SavePaymentSettings(r.Context(), h.DB, req)
	if err != nil {
		storeError(w, err, "failed to save payment settings")
		return
	}
	jsonResponse(w, http.StatusOK, s)
}
