package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/erazemk/trznica/internal/model"
)

// AnimalInput holds the fields of a new animal listing.
type AnimalInput struct {
	Name   string          `json:"name"`
	Breed  string          `json:"breed"`
	Price  decimal.Decimal `json:"price"`
	Active *bool           `json:"is_active"`
}

// CreateAnimal lists an animal for a farmer partner.
func CreateAnimal(ctx context.Context, db *sqlx.DB, partnerID int64, in AnimalInput) (*model.Animal, error) {
	if in.Name == "" {
		return nil, Invalid("name is required")
	}
	if in.Price.IsNegative() {
		return nil, Invalid("price must not be negative")
	}

	partner, err := GetPartner(ctx, db, partnerID)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, notFound("partner not found")
	}
	if partner.Kind != model.PartnerFarmer {
		return nil, Invalid("only farmers can list animals")
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}

	id, err := insertID(ctx, db,
		`INSERT INTO animals (partner_id, name, breed, price, is_active) VALUES (?, ?, ?, ?, ?)`,
		partnerID, in.Name, in.Breed, in.Price, active,
	)
	if err != nil {
		return nil, fmt.Errorf("creating animal: %w", err)
	}
	return GetAnimal(ctx, db, id)
}

// GetAnimal returns an animal by ID.
func GetAnimal(ctx context.Context, db *sqlx.DB, id int64) (*model.Animal, error) {
	a := &model.Animal{}
	err := get(ctx, db, a, `SELECT * FROM animals WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting animal: %w", err)
	}
	return a, nil
}

// ListAnimals returns animal listings, optionally only active ones.
func ListAnimals(ctx context.Context, db *sqlx.DB, activeOnly bool) ([]model.Animal, error) {
	query := `SELECT * FROM animals`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	animals := []model.Animal{}
	if err := sel(ctx, db, &animals, query); err != nil {
		return nil, fmt.Errorf("listing animals: %w", err)
	}
	return animals, nil
}

// SetAnimalActive shows or hides one of the partner's animals.
func SetAnimalActive(ctx context.Context, db *sqlx.DB, partnerID, id int64, active bool) (*model.Animal, error) {
	result, err := exec(ctx, db,
		`UPDATE animals SET is_active = ? WHERE id = ? AND partner_id = ?`,
		active, id, partnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating animal: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, notFound("animal not found")
	}
	return GetAnimal(ctx, db, id)
}
