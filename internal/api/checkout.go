package api

import (
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/erazemk/trznica/internal/store"
)

// CheckoutHandler turns carts into orders.
type CheckoutHandler struct {
	DB *sqlx.DB
}

type checkoutResponse struct {
	ID        int64           `json:"id"`
	Reference string          `json:"reference"`
	Total     decimal.Decimal `json:"total"`
}

// Checkout handles POST /api/checkout and POST /api/partner/checkout.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req store.CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a := actor(r)
	order, err := store.Checkout(r.Context(), h.DB, a, req)
	if err != nil {
		storeError(w, err, "failed to check out")
		return
	}

	slog.Info("order created", "owner", a.Kind, "id", a.ID, "order", order.Reference, "total", order.Total)
	jsonResponse(w, http.StatusOK, checkoutResponse{ID: order.ID, Reference: order.Reference, Total: order.Total})
}
