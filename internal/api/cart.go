package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/trznica/internal/model"
	"github.com/erazemk/trznica/internal/store"
)

// CartHandler serves one cart kind. The same handler type is mounted once
// per kind.
type CartHandler struct {
	DB   *sqlx.DB
	Kind store.CartKind
}

type updateCartRequest struct {
	Quantity int `json:"quantity"`
}

// List handles GET on the cart.
func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	lines, err := store.ListCart(r.Context(), h.DB, h.Kind, actor(r).ID, time.Now())
	if err != nil {
		storeError(w, err, "failed to list cart")
		return
	}
	jsonResponse(w, http.StatusOK, lines)
}

// Add handles POST on the cart. Each call adds exactly one unit.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req model.ItemRef
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	owner := actor(r).ID
	item, err := store.AddToCart(r.Context(), h.DB, h.Kind, owner, req)
	if err != nil {
		storeError(w, err, "failed to add to cart")
		return
	}

	slog.Debug("added to cart", "cart", h.Kind.Name, "owner", owner, "item", item.ID, "quantity", item.Quantity)
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT on a cart line.
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid cart item id")
		return
	}

	var req updateCartRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := store.UpdateCartItem(r.Context(), h.DB, h.Kind, actor(r).ID, id, req.Quantity)
	if err != nil {
		storeError(w, err, "failed to update cart item")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Remove handles DELETE on a cart line. Removing a line twice succeeds.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid cart item id")
		return
	}

	removed, err := store.RemoveCartItem(r.Context(), h.DB, h.Kind, actor(r).ID, id)
	if err != nil {
		storeError(w, err, "failed to remove cart item")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]bool{"removed": removed})
}
