package api

import (
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/trznica/internal/store"
)

// OrdersHandler handles order reads for owners and order administration.
type OrdersHandler struct {
	DB     *sqlx.DB
	Ledger store.ProfitLedger
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// ListMine handles GET /api/orders.
func (h *OrdersHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	orders, err := store.ListOrders(r.Context(), h.DB, &a)
	if err != nil {
		storeError(w, err, "failed to list orders")
		return
	}
	jsonResponse(w, http.StatusOK, orders)
}

// GetMine handles GET /api/orders/{id}. Other owners' orders are not found.
func (h *OrdersHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := store.GetOrder(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get order")
		return
	}
	a := actor(r)
	if order == nil || order.OwnerKind != string(a.Kind) || order.OwnerID == nil || *order.OwnerID != a.ID {
		jsonError(w, http.StatusNotFound, "order not found")
		return
	}
	jsonResponse(w, http.StatusOK, order)
}

// List handles GET /api/admin/orders.
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := store.ListOrders(r.Context(), h.DB, nil)
	if err != nil {
		storeError(w, err, "failed to list orders")
		return
	}
	jsonResponse(w, http.StatusOK, orders)
}

// Get handles GET /api/admin/orders/{id}.
func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := store.GetOrder(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get order")
		return
	}
	if order == nil {
		jsonError(w, http.StatusNotFound, "order not found")
		return
	}
	jsonResponse(w, http.StatusOK, order)
}

// CreateManual handles POST /api/admin/orders.
func (h *OrdersHandler) CreateManual(w http.ResponseWriter, r *http.Request) {
	var req store.ManualOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := store.CreateManualOrder(r.Context(), h.DB, req)
	if err != nil {
		storeError(w, err, "failed to create order")
		return
	}

	slog.Info("manual order created", "order", order.Reference, "total", order.Total, "by", GetClaims(r.Context()).Name)
	jsonResponse(w, http.StatusCreated, order)
}

// UpdateStatus handles PUT /api/admin/orders/{id}/status.
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := store.UpdateOrderStatus(r.Context(), h.DB, id, req.Status)
	if err != nil {
		storeError(w, err, "failed to update order status")
		return
	}

	slog.Info("order status changed", "order", order.Reference, "status", order.Status, "by", GetClaims(r.Context()).Name)
	jsonResponse(w, http.StatusOK, order)
}

// Update handles PUT /api/admin/orders/{id}.
func (h *OrdersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req store.OrderCorrection
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := store.UpdateOrder(r.Context(), h.DB, h.Ledger, id, req)
	if err != nil {
		storeError(w, err, "failed to update order")
		return
	}

	slog.Info("order corrected", "order", order.Reference, "items", len(req.Items), "total", order.Total,
		"by", GetClaims(r.Context()).Name)
	jsonResponse(w, http.StatusOK, order)
}

// Delete handles DELETE /api/admin/orders/{id}.
func (h *OrdersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	if err := store.DeleteOrder(r.Context(), h.DB, id); err != nil {
		storeError(w, err, "failed to delete order")
		return
	}

	slog.Info("order deleted", "order", id, "by", GetClaims(r.Context()).Name)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "order deleted"})
}
