package model

import (
	"fmt"
	"slices"
	"time"
)

// ActorKind identifies which kind of principal a session belongs to.
type ActorKind string

// Actor kinds.
const (
	ActorAdmin    ActorKind = "admin"
	ActorCompany  ActorKind = "company"
	ActorPartner  ActorKind = "partner"
	ActorCustomer ActorKind = "customer"
)

// Valid reports whether k is a known actor kind.
func (k ActorKind) Valid() bool {
	switch k {
	case ActorAdmin, ActorCompany, ActorPartner, ActorCustomer:
		return true
	}
	return false
}

// Actor is the authenticated principal acting on a request.
type Actor struct {
	Kind ActorKind `json:"kind"`
	ID   int64     `json:"id"`
}

// Is reports whether the actor is one of the given kinds.
func (a Actor) Is(kinds ...ActorKind) bool {
	return slices.Contains(kinds, a.Kind)
}

// Partner kinds.
const (
	PartnerVeterinarian = "veterinarian"
	PartnerSalesAgent   = "sales_agent"
	PartnerFarmer       = "farmer"
)

// ValidPartnerKind reports whether kind is a known partner kind.
func ValidPartnerKind(kind string) bool {
	return kind == PartnerVeterinarian || kind == PartnerSalesAgent || kind == PartnerFarmer
}

// Admin is a platform administrator.
type Admin struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Customer is a shopper with a product cart and an animal cart.
type Customer struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Credentials is what login needs to know about any actor.
type Credentials struct {
	Kind         ActorKind `db:"-"`
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	PasswordHash string    `db:"password_hash"`
}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// ValidatePassword checks password policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}
