package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/findersfee/internal/auth"
	"github.com/erazemk/findersfee/internal/claims"
	"github.com/erazemk/findersfee/internal/config"
	"github.com/erazemk/findersfee/internal/db"
	"github.com/erazemk/findersfee/internal/logging"
	"github.com/erazemk/findersfee/internal/model"
	"github.com/erazemk/findersfee/internal/notify"
	"github.com/erazemk/findersfee/internal/registry"
	"github.com/erazemk/findersfee/internal/store"
)

var errNotInitialized = errors.New("database not initialized, run findersfee init first")

func runInit(cmd *cobra.Command, _ []string) error {
	cfg, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := os.Stat(cfg.DBPath); err == nil {
		return fmt.Errorf("database file %s already exists", cfg.DBPath)
	}

	database, password, err := initDatabase(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	database.Close()

	printInitResult(cfg.DBPath, cfg.AdminEmail, password)
	return nil
}

// initDatabase creates a new database, ensures the schema, and creates the admin account.
func initDatabase(ctx context.Context, cfg config.Config) (*sql.DB, string, error) {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, "", fmt.Errorf("opening database: %w", err)
	}
	fail := func(err error) (*sql.DB, string, error) {
		database.Close()
		os.Remove(cfg.DBPath)
		return nil, "", err
	}

	if err := db.EnsureSchema(database); err != nil {
		return fail(fmt.Errorf("ensuring schema: %w", err))
	}

	password, err := generatePassword(16)
	if err != nil {
		return fail(fmt.Errorf("generating password: %w", err))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fail(fmt.Errorf("hashing password: %w", err))
	}

	u, err := store.CreateUser(ctx, database, cfg.AdminEmail, string(hash), "Administrator", "", model.RoleAdmin)
	if err != nil {
		return fail(fmt.Errorf("creating admin account: %w", err))
	}
	if err := store.UpsertProfileRole(ctx, database, u.ID, model.RoleAdmin); err != nil {
		return fail(fmt.Errorf("creating admin profile: %w", err))
	}
	return database, password, nil
}

// printInitResult prints the database initialization result to stdout.
func printInitResult(dbPath, email, password string) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Email:    %s\n", email)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("It can be changed after signing in.")
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

// openExisting opens an initialized database.
func openExisting(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, errNotInitialized
	}
	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	return database, nil
}

func runPromote(cmd *cobra.Command, args []string) error {
	cfg, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	database, err := openExisting(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx := cmd.Context()
	u, err := store.GetUserByEmail(ctx, database, args[0])
	if err != nil {
		return err
	}
	if u == nil {
		return fmt.Errorf("no account with email %s", args[0])
	}
	if err := auth.NewRoleResolver(database).SetRole(ctx, u.ID, model.RoleAdmin); err != nil {
		return err
	}
	fmt.Printf("%s is now an admin\n", u.Email)
	return nil
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	cfg, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	database, err := openExisting(cfg.DBPath)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx := cmd.Context()
	admin, err := store.GetUserByEmail(ctx, database, cfg.AdminEmail)
	if err != nil {
		return err
	}
	if admin == nil {
		return fmt.Errorf("admin account %s not found", cfg.AdminEmail)
	}

	roles := auth.NewRoleResolver(database)
	items := registry.New(database, roles, logging.New("registry"))
	engine := claims.New(database, items, notify.New(database, logging.New("notify")), roles, logging.New("claims"))

	report, err := engine.Reconcile(ctx, model.IdentityOf(admin))
	if err != nil {
		return err
	}
	fmt.Printf("Reconciled: %d resolved, %d still failing\n", report.Resolved, report.Failed)
	return nil
}
