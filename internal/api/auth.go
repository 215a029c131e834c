package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/trznica/internal/auth"
	"github.com/erazemk/trznica/internal/model"
	"github.com/erazemk/trznica/internal/store"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	DB        *sqlx.DB
	JWTSecret string
	TokenTTL  time.Duration
}

type loginRequest struct {
	Kind     model.ActorKind `json:"kind"`
	Login    string          `json:"login"`
	Password string          `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	Actor model.Actor `json:"actor"`
	Name  string      `json:"name"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Login == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "login and password required")
		return
	}
	if !req.Kind.Valid() {
		jsonError(w, http.StatusBadRequest, "kind must be 'admin', 'company', 'partner' or 'customer'")
		return
	}

	creds, err := store.GetCredentials(r.Context(), h.DB, req.Kind, req.Login)
	if err != nil {
		storeError(w, err, "internal error")
		return
	}
	if creds == nil {
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(req.Password)); err != nil {
		slog.Warn("login failed", "kind", req.Kind, "login", req.Login, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	a := model.Actor{Kind: creds.Kind, ID: creds.ID}
	token, err := auth.GenerateToken(h.JWTSecret, a, creds.Name, h.TokenTTL)
	if err != nil {
		slog.Error("generating token", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	slog.Info("logged in", "kind", a.Kind, "id", a.ID)
	jsonResponse(w, http.StatusOK, loginResponse{Token: token, Actor: a, Name: creds.Name})
}

// Register handles POST /api/auth/register. It creates a customer account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	hash, ok := hashPassword(w, req.Password)
	if !ok {
		return
	}

	customer, err := store.CreateCustomer(r.Context(), h.DB, req.Name, req.Email, hash)
	if err != nil {
		storeError(w, err, "failed to register")
		return
	}

	slog.Info("customer registered", "customer", customer.ID)
	jsonResponse(w, http.StatusCreated, customer)
}

// Logout handles POST /api/auth/logout. The current token stays revoked
// until it would have expired anyway.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	expires := time.Now().Add(auth.TokenExpiry)
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}

	if err := store.RevokeToken(r.Context(), h.DB, claims.ID, expires); err != nil {
		slog.Error("revoking token", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to log out")
		return
	}

	slog.Info("logged out", "kind", claims.ActorKind, "id", claims.ActorID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// hashPassword validates and hashes a password for a new account.
func hashPassword(w http.ResponseWriter, password string) (string, bool) {
	if err := model.ValidatePassword(password); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return "", false
	}
	return string(hash), true
}
