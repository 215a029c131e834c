package api

import (
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/trznica/internal/store"
)

// AccountsHandler handles company and partner accounts.
type AccountsHandler struct {
	DB *sqlx.DB
}

type createAccountRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Kind     string `json:"kind"`
}

// ListCompanies handles GET /api/companies.
func (h *AccountsHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := store.ListCompanies(r.Context(), h.DB)
	if err != nil {
		storeError(w, err, "failed to list companies")
		return
	}
	jsonResponse(w, http.StatusOK, companies)
}

// CreateCompany handles POST /api/admin/companies.
func (h *AccountsHandler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	hash, ok := hashPassword(w, req.Password)
	if !ok {
		return
	}

	company, err := store.CreateCompany(r.Context(), h.DB, req.Name, req.Email, hash)
	if err != nil {
		storeError(w, err, "failed to create company")
		return
	}

	slog.Info("company created", "company", company.Name, "by", GetClaims(r.Context()).Name)
	jsonResponse(w, http.StatusCreated, company)
}

// ListPartners handles GET /api/admin/partners.
func (h *AccountsHandler) ListPartners(w http.ResponseWriter, r *http.Request) {
	partners, err := store.ListPartners(r.Context(), h.DB)
	if err != nil {
		storeError(w, err, "failed to list partners")
		return
	}
	jsonResponse(w, http.StatusOK, partners)
}

// CreatePartner handles POST /api/admin/partners.
func (h *AccountsHandler) CreatePartner(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	hash, ok := hashPassword(w, req.Password)
	if !ok {
		return
	}

	partner, err := store.CreatePartner(r.Context(), h.DB, req.Name, req.Kind, req.Email, hash)
	if err != nil {
		storeError(w, err, "failed to create partner")
		return
	}

	slog.Info("partner created", "partner", partner.Name, "kind", partner.Kind, "by", GetClaims(r.Context()).Name)
	jsonResponse(w, http.StatusCreated, partner)
}
