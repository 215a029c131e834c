package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/trznica/internal/model"
)

// referralAttempts bounds regeneration of colliding referral codes.
const referralAttempts = 10

const referralAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CreateAdmin creates an administrator account.
func CreateAdmin(ctx context.Context, db *sqlx.DB, username, passwordHash string) (*model.Admin, error) {
	id, err := insertID(ctx, db,
		`INSERT INTO admins (username, password_hash) VALUES (?, ?)`,
		username, passwordHash,
	)
	if isUniqueViolation(err) {
		return nil, conflict("username already taken")
	}
	if err != nil {
		return nil, fmt.Errorf("creating admin: %w", err)
	}

	a := &model.Admin{}
	if err := get(ctx, db, a, `SELECT * FROM admins WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("getting admin: %w", err)
	}
	return a, nil
}

// CountAdmins returns the number of administrator accounts.
func CountAdmins(ctx context.Context, db *sqlx.DB) (int, error) {
	var n int
	if err := get(ctx, db, &n, `SELECT COUNT(*) FROM admins`); err != nil {
		return 0, fmt.Errorf("counting admins: %w", err)
	}
	return n, nil
}

// CreateCustomer registers a customer.
func CreateCustomer(ctx context.Context, db *sqlx.DB, name, email, passwordHash string) (*model.Customer, error) {
	email = normalizeEmail(email)
	if name == "" || email == "" {
		return nil, Invalid("name and email are required")
	}

	id, err := insertID(ctx, db,
		`INSERT INTO users (name, email, password_hash) VALUES (?, ?, ?)`,
		name, email, passwordHash,
	)
	if isUniqueViolation(err) {
		return nil, conflict("email already registered")
	}
	if err != nil {
		return nil, fmt.Errorf("creating customer: %w", err)
	}
	return GetCustomer(ctx, db, id)
}

// GetCustomer returns a customer by ID.
func GetCustomer(ctx context.Context, db *sqlx.DB, id int64) (*model.Customer, error) {
	c := &model.Customer{}
	err := get(ctx, db, c, `SELECT * FROM users WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting customer: %w", err)
	}
	return c, nil
}

// CreateCompany creates a selling company.
func CreateCompany(ctx context.Context, db *sqlx.DB, name, email, passwordHash string) (*model.Company, error) {
	email = normalizeEmail(email)
	if name == "" || email == "" {
		return nil, Invalid("name and email are required")
	}

	id, err := insertID(ctx, db,
		`INSERT INTO companies (name, email, password_hash) VALUES (?, ?, ?)`,
		name, email, passwordHash,
	)
	if isUniqueViolation(err) {
		return nil, conflict("email already registered")
	}
	if err != nil {
		return nil, fmt.Errorf("creating company: %w", err)
	}
	return GetCompany(ctx, db, id)
}

// GetCompany returns a company by ID.
func GetCompany(ctx context.Context, db *sqlx.DB, id int64) (*model.Company, error) {
	c := &model.Company{}
	err := get(ctx, db, c, `SELECT * FROM companies WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting company: %w", err)
	}
	return c, nil
}

// ListCompanies returns all companies.
func ListCompanies(ctx context.Context, db *sqlx.DB) ([]model.Company, error) {
	companies := []model.Company{}
	if err := sel(ctx, db, &companies, `SELECT * FROM companies ORDER BY name, id`); err != nil {
		return nil, fmt.Errorf("listing companies: %w", err)
	}
	return companies, nil
}

// CreatePartner creates a partner with a fresh referral code. A code that
// collides with an existing one is regenerated.
func CreatePartner(ctx context.Context, db *sqlx.DB, name, kind, email, passwordHash string) (*model.Partner, error) {
	email = normalizeEmail(email)
	if name == "" || email == "" {
		return nil, Invalid("name and email are required")
	}
	if !model.ValidPartnerKind(kind) {
		return nil, Invalid("kind must be 'veterinarian', 'sales_agent' or 'farmer'")
	}

	var exists bool
	if err := get(ctx, db, &exists, `SELECT EXISTS (SELECT 1 FROM partners WHERE email = ?)`, email); err != nil {
		return nil, fmt.Errorf("checking partner email: %w", err)
	}
	if exists {
		return nil, conflict("email already registered")
	}

	for range referralAttempts {
		code, err := referralCode()
		if err != nil {
			return nil, fmt.Errorf("generating referral code: %w", err)
		}

		id, err := insertID(ctx, db,
			`INSERT INTO partners (name, kind, email, password_hash, referral_code) VALUES (?, ?, ?, ?, ?)`,
			name, kind, email, passwordHash, code,
		)
		if isUniqueViolation(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("creating partner: %w", err)
		}
		return GetPartner(ctx, db, id)
	}

	return nil, conflict("could not allocate a unique referral code")
}

// GetPartner returns a partner by ID.
func GetPartner(ctx context.Context, db *sqlx.DB, id int64) (*model.Partner, error) {
	p := &model.Partner{}
	err := get(ctx, db, p, `SELECT * FROM partners WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting partner: %w", err)
	}
	return p, nil
}

// ListPartners returns all partners.
func ListPartners(ctx context.Context, db *sqlx.DB) ([]model.Partner, error) {
	partners := []model.Partner{}
	if err := sel(ctx, db, &partners, `SELECT * FROM partners ORDER BY name, id`); err != nil {
		return nil, fmt.Errorf("listing partners: %w", err)
	}
	return partners, nil
}

// GetCredentials looks up the login record of an actor. Admins log in with
// their username, everyone else with their email. Returns nil if no such
// account exists.
func GetCredentials(ctx context.Context, db *sqlx.DB, kind model.ActorKind, login string) (*model.Credentials, error) {
	var query string
	switch kind {
	case model.ActorAdmin:
		query = `SELECT id, username AS name, password_hash FROM admins WHERE username = ?`
	case model.ActorCustomer:
		query = `SELECT id, name, password_hash FROM users WHERE email = ?`
		login = normalizeEmail(login)
	case model.ActorCompany:
		query = `SELECT id, name, password_hash FROM companies WHERE email = ?`
		login = normalizeEmail(login)
	case model.ActorPartner:
		query = `SELECT id, name, password_hash FROM partners WHERE email = ?`
		login = normalizeEmail(login)
	default:
		return nil, Invalid("unknown account kind")
	}

	c := &model.Credentials{Kind: kind}
	err := get(ctx, db, c, query, login)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting credentials: %w", err)
	}
	return c, nil
}

// actorExists reports whether the account behind actor is present.
func actorExists(ctx context.Context, q queryer, actor model.Actor) (bool, error) {
	var table string
	switch actor.Kind {
	case model.ActorAdmin:
		table = "admins"
	case model.ActorCustomer:
		table = "users"
	case model.ActorCompany:
		table = "companies"
	case model.ActorPartner:
		table = "partners"
	default:
		return false, nil
	}

	var exists bool
	err := get(ctx, q, &exists, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = ?)`, actor.ID)
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", actor.Kind, err)
	}
	return exists, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func referralCode() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = referralAlphabet[int(b)%len(referralAlphabet)]
	}
	return string(buf), nil
}
