package db

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// sqliteSchema is the full SQLite schema. Money is kept as TEXT so decimal
// values round-trip exactly.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS admins (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS companies (
    id            INTEGER PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS partners (
    id            INTEGER PRIMARY KEY,
    name          TEXT NOT NULL,
    kind          TEXT NOT NULL CHECK (kind IN ('veterinarian', 'sales_agent', 'farmer')),
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    referral_code TEXT NOT NULL UNIQUE,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS products (
    id           INTEGER PRIMARY KEY,
    name         TEXT NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    image_url    TEXT NOT NULL DEFAULT '',
    is_active    BOOLEAN NOT NULL DEFAULT 1,
    out_of_stock BOOLEAN NOT NULL DEFAULT 0,
    company_id   INTEGER REFERENCES companies(id) ON DELETE SET NULL,
    partner_id   INTEGER REFERENCES partners(id) ON DELETE SET NULL,
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS variants (
    id             INTEGER PRIMARY KEY,
    product_id     INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
    name           TEXT NOT NULL,
    customer_price TEXT NOT NULL DEFAULT '0',
    company_price  TEXT NOT NULL DEFAULT '0',
    dealer_price   TEXT NOT NULL DEFAULT '0',
    inventory      INTEGER NOT NULL DEFAULT 0,
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS animals (
    id         INTEGER PRIMARY KEY,
    partner_id INTEGER NOT NULL REFERENCES partners(id) ON DELETE CASCADE,
    name       TEXT NOT NULL,
    breed      TEXT NOT NULL DEFAULT '',
    price      TEXT NOT NULL DEFAULT '0',
    is_active  BOOLEAN NOT NULL DEFAULT 1,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS discounts (
    id         INTEGER PRIMARY KEY,
    percentage TEXT NOT NULL,
    start_date DATETIME NOT NULL,
    end_date   DATETIME NOT NULL,
    is_active  BOOLEAN NOT NULL DEFAULT 1,
    variant_id INTEGER REFERENCES variants(id) ON DELETE CASCADE,
    product_id INTEGER REFERENCES products(id) ON DELETE CASCADE,
    company_id INTEGER REFERENCES companies(id) ON DELETE CASCADE,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS cart_items (
    id         INTEGER PRIMARY KEY,
    user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
    variant_id INTEGER NOT NULL REFERENCES variants(id) ON DELETE CASCADE,
    quantity   INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 1),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (user_id, product_id, variant_id)
);

CREATE TABLE IF NOT EXISTS animal_cart_items (
    id         INTEGER PRIMARY KEY,
    user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    animal_id  INTEGER NOT NULL REFERENCES animals(id) ON DELETE CASCADE,
    quantity   INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 1),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (user_id, animal_id)
);

CREATE TABLE IF NOT EXISTS partner_cart_items (
    id         INTEGER PRIMARY KEY,
    partner_id INTEGER NOT NULL REFERENCES partners(id) ON DELETE CASCADE,
    product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
    variant_id INTEGER NOT NULL REFERENCES variants(id) ON DELETE CASCADE,
    quantity   INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 1),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (partner_id, product_id, variant_id)
);

CREATE TABLE IF NOT EXISTS company_payment_settings (
    company_id       INTEGER PRIMARY KEY REFERENCES companies(id) ON DELETE CASCADE,
    cash_on_delivery BOOLEAN NOT NULL DEFAULT 1,
    bank_transfer    BOOLEAN NOT NULL DEFAULT 1,
    card             BOOLEAN NOT NULL DEFAULT 1,
    min_order_amount TEXT NOT NULL DEFAULT '0'
);

CREATE TABLE IF NOT EXISTS checkouts (
    id               INTEGER PRIMARY KEY,
    reference        TEXT NOT NULL UNIQUE,
    owner_kind       TEXT NOT NULL DEFAULT '',
    owner_id         INTEGER,
    status           TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'delivered', 'cancelled', 'refunded')),
    city             TEXT NOT NULL,
    address          TEXT NOT NULL,
    contact          TEXT NOT NULL,
    payment_method   TEXT NOT NULL,
    shipment_charges TEXT NOT NULL DEFAULT '0',
    total            TEXT NOT NULL,
    idempotency_key  TEXT UNIQUE,
    created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS checkout_items (
    id                  INTEGER PRIMARY KEY,
    checkout_id         INTEGER NOT NULL REFERENCES checkouts(id) ON DELETE CASCADE,
    product_id          INTEGER REFERENCES products(id) ON DELETE SET NULL,
    variant_id          INTEGER REFERENCES variants(id) ON DELETE SET NULL,
    animal_id           INTEGER REFERENCES animals(id) ON DELETE SET NULL,
    item_name           TEXT NOT NULL,
    quantity            INTEGER NOT NULL CHECK (quantity >= 1),
    price               TEXT NOT NULL,
    purchased_price     TEXT,
    discount_percentage TEXT NOT NULL DEFAULT '0'
);

CREATE TABLE IF NOT EXISTS profits (
    checkout_item_id INTEGER PRIMARY KEY REFERENCES checkout_items(id) ON DELETE CASCADE,
    total_price      TEXT NOT NULL,
    total_cost       TEXT,
    profit           TEXT,
    updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// postgresSchema mirrors sqliteSchema with native PostgreSQL types.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS admins (
    id            BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS users (
    id            BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS companies (
    id            BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS partners (
    id            BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    name          TEXT NOT NULL,
    kind          TEXT NOT NULL CHECK (kind IN ('veterinarian', 'sales_agent', 'farmer')),
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    referral_code TEXT NOT NULL UNIQUE,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS products (
    id           BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    name         TEXT NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    image_url    TEXT NOT NULL DEFAULT '',
    is_active    BOOLEAN NOT NULL DEFAULT TRUE,
    out_of_stock BOOLEAN NOT NULL DEFAULT FALSE,
    company_id   BIGINT REFERENCES companies(id) ON DELETE SET NULL,
    partner_id   BIGINT REFERENCES partners(id) ON DELETE SET NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS variants (
    id             BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    product_id     BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
    name           TEXT NOT NULL,
    customer_price NUMERIC(12,2) NOT NULL DEFAULT 0,
    company_price  NUMERIC(12,2) NOT NULL DEFAULT 0,
    dealer_price   NUMERIC(12,2) NOT NULL DEFAULT 0,
    inventory      INTEGER NOT NULL DEFAULT 0,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS animals (
    id         BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    partner_id BIGINT NOT NULL REFERENCES partners(id) ON DELETE CASCADE,
    name       TEXT NOT NULL,
    breed      TEXT NOT NULL DEFAULT '',
    price      NUMERIC(12,2) NOT NULL DEFAULT 0,
    is_active  BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS discounts (
    id         BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    percentage NUMERIC(6,3) NOT NULL,
    start_date TIMESTAMPTZ NOT NULL,
    end_date   TIMESTAMPTZ NOT NULL,
    is_active  BOOLEAN NOT NULL DEFAULT TRUE,
    variant_id BIGINT REFERENCES variants(id) ON DELETE CASCADE,
    product_id BIGINT REFERENCES products(id) ON DELETE CASCADE,
    company_id BIGINT REFERENCES companies(id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS cart_items (
    id         BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
    variant_id BIGINT NOT NULL REFERENCES variants(id) ON DELETE CASCADE,
    quantity   INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 1),
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (user_id, product_id, variant_id)
);

CREATE TABLE IF NOT EXISTS animal_cart_items (
    id         BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    animal_id  BIGINT NOT NULL REFERENCES animals(id) ON DELETE CASCADE,
    quantity   INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 1),
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (user_id, animal_id)
);

CREATE TABLE IF NOT EXISTS partner_cart_items (
    id         BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    partner_id BIGINT NOT NULL REFERENCES partners(id) ON DELETE CASCADE,
    product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
    variant_id BIGINT NOT NULL REFERENCES variants(id) ON DELETE CASCADE,
    quantity   INTEGER NOT NULL DEFAULT 1 CHECK (quantity >= 1),
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (partner_id, product_id, variant_id)
);

CREATE TABLE IF NOT EXISTS company_payment_settings (
    company_id       BIGINT PRIMARY KEY REFERENCES companies(id) ON DELETE CASCADE,
    cash_on_delivery BOOLEAN NOT NULL DEFAULT TRUE,
    bank_transfer    BOOLEAN NOT NULL DEFAULT TRUE,
    card             BOOLEAN NOT NULL DEFAULT TRUE,
    min_order_amount NUMERIC(12,2) NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS checkouts (
    id               BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    reference        TEXT NOT NULL UNIQUE,
    owner_kind       TEXT NOT NULL DEFAULT '',
    owner_id         BIGINT,
    status           TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'delivered', 'cancelled', 'refunded')),
    city             TEXT NOT NULL,
    address          TEXT NOT NULL,
    contact          TEXT NOT NULL,
    payment_method   TEXT NOT NULL,
    shipment_charges NUMERIC(12,2) NOT NULL DEFAULT 0,
    total            NUMERIC(12,2) NOT NULL,
    idempotency_key  TEXT UNIQUE,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS checkout_items (
    id                  BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    checkout_id         BIGINT NOT NULL REFERENCES checkouts(id) ON DELETE CASCADE,
    product_id          BIGINT REFERENCES products(id) ON DELETE SET NULL,
    variant_id          BIGINT REFERENCES variants(id) ON DELETE SET NULL,
    animal_id           BIGINT REFERENCES animals(id) ON DELETE SET NULL,
    item_name           TEXT NOT NULL,
    quantity            INTEGER NOT NULL CHECK (quantity >= 1),
    price               NUMERIC(12,2) NOT NULL,
    purchased_price     NUMERIC(12,2),
    discount_percentage NUMERIC(6,3) NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS profits (
    checkout_item_id BIGINT PRIMARY KEY REFERENCES checkout_items(id) ON DELETE CASCADE,
    total_price      NUMERIC(14,2) NOT NULL,
    total_cost       NUMERIC(14,2),
    profit           NUMERIC(14,2),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at TIMESTAMPTZ NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sqlx.DB) error {
	schema := sqliteSchema
	if IsPostgres(db) {
		schema = postgresSchema
	}

	for i, stmt := range statements(schema) {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema (statement %d): %w", i+1, err)
		}
	}

	return migrate(db)
}

// statements splits a schema script into its individual statements.
func statements(script string) []string {
	var out []string
	for _, s := range strings.Split(script, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
