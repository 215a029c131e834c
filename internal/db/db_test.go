package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSchemaIdempotent(t *testing.T) {
	database := NewTestDB(t)

	require.NoError(t, EnsureSchema(database))
	require.NoError(t, EnsureSchema(database))

	var n int
	require.NoError(t, database.Get(&n, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'checkouts'`))
	assert.Equal(t, 1, n)
}

func TestOpenFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trznica.sqlite3")

	database, err := Open(path)
	require.NoError(t, err)
	defer database.Close()

	assert.False(t, IsPostgres(database))
	require.NoError(t, EnsureSchema(database))

	var mode string
	require.NoError(t, database.Get(&mode, `PRAGMA journal_mode`))
	assert.Equal(t, "wal", mode)
}

func TestForeignKeysEnforced(t *testing.T) {
	database := NewTestDB(t)

	_, err := database.Exec(`INSERT INTO variants (product_id, name) VALUES (999, 'x')`)
	assert.Error(t, err)
}

func TestCartUniqueness(t *testing.T) {
	database := NewTestDB(t)

	database.MustExec(`INSERT INTO users (name, email, password_hash) VALUES ('a', 'a@example.com', 'x')`)
	database.MustExec(`INSERT INTO products (name) VALUES ('Seno')`)
	database.MustExec(`INSERT INTO variants (product_id, name) VALUES (1, '20 kg')`)
	database.MustExec(`INSERT INTO cart_items (user_id, product_id, variant_id) VALUES (1, 1, 1)`)

	_, err := database.Exec(`INSERT INTO cart_items (user_id, product_id, variant_id) VALUES (1, 1, 1)`)
	assert.Error(t, err)

	_, err = database.Exec(`UPDATE cart_items SET quantity = 0`)
	assert.Error(t, err, "quantity must stay positive")
}

func TestCheckoutItemStatusConstraint(t *testing.T) {
	database := NewTestDB(t)

	_, err := database.Exec(`INSERT INTO checkouts (reference, status, city, address, contact, payment_method, total)
		VALUES ('r', 'shipped', 'c', 'a', 'p', 'card', '0')`)
	assert.Error(t, err)
}

func TestStatements(t *testing.T) {
	got := statements("CREATE TABLE a (x INT);\n\n  CREATE TABLE b (y INT);\n")
	assert.Equal(t, []string{"CREATE TABLE a (x INT)", "CREATE TABLE b (y INT)"}, got)
}
