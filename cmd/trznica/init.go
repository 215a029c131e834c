package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/url"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/trznica/internal/db"
	"github.com/erazemk/trznica/internal/store"
)

var adminUser string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database and the first admin account",
	Long: `Create the database schema and an admin account with a random password.

A SQLite database file must not exist yet. A PostgreSQL database must not
have an admin account yet.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	initCmd.Flags().StringVarP(&adminUser, "user", "u", "admin", "admin username")
	serveCmd.Flags().StringVarP(&adminUser, "user", "u", "admin", "admin username on first run")
}

func runInit(ctx context.Context, out io.Writer) error {
	fresh := !db.IsPostgresDSN(cfg.DB)
	if fresh {
		if _, err := os.Stat(cfg.DB); err == nil {
			return fmt.Errorf("database file %s already exists", cfg.DB)
		}
	}

	database, err := openDatabase(cfg.DB)
	if err != nil {
		return err
	}
	defer database.Close()

	password, err := bootstrapAdmin(ctx, database, adminUser)
	if err != nil {
		if fresh {
			database.Close()
			os.Remove(cfg.DB)
		}
		return err
	}
	if password == "" {
		return errors.New("an admin account already exists")
	}

	printInitResult(out, cfg.DB, adminUser, password)
	return nil
}

// openDatabase opens the database and ensures its schema.
func openDatabase(dsn string) (*sqlx.DB, error) {
	database, err := db.Open(dsn)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	return database, nil
}

// bootstrapAdmin creates the first admin account and returns its password.
// It does nothing and returns "" when an admin already exists.
func bootstrapAdmin(ctx context.Context, database *sqlx.DB, username string) (string, error) {
	n, err := store.CountAdmins(ctx, database)
	if err != nil {
		return "", err
	}
	if n > 0 {
		return "", nil
	}

	password, err := generatePassword(16)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	if _, err := store.CreateAdmin(ctx, database, username, string(hash)); err != nil {
		return "", fmt.Errorf("creating admin: %w", err)
	}
	return password, nil
}

func printInitResult(out io.Writer, dsn, username, password string) {
	fmt.Fprintf(out, "Database ready: %s\n", redactDSN(dsn))
	fmt.Fprintln(out, "Schema initialized.")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Admin account created:")
	fmt.Fprintf(out, "  Username: %s\n", username)
	fmt.Fprintf(out, "  Password: %s\n", password)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Save this password. It cannot be recovered.")
}

// redactDSN hides the password of a database URL.
func redactDSN(dsn string) string {
	if !db.IsPostgresDSN(dsn) {
		return dsn
	}
	u, err := url.Parse(dsn)
	if err != nil {
		return "postgres://..."
	}
	return u.Redacted()
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
