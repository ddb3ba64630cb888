package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"os"

	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/founditapp/foundit/internal/config"
	"github.com/founditapp/foundit/internal/db"
	"github.com/founditapp/foundit/internal/store"
)

var initCommand = &cli.Command{
	Name:  "init",
	Usage: "Create the database and bootstrap an admin account",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "admin-email",
			Usage: "Email for the bootstrap admin account",
			Value: "admin@foundit.local",
		},
	},
	Action: initDatabase,
}

func initDatabase(cCtx *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.DatabasePath); err == nil {
		return fmt.Errorf("database %s already exists", cfg.DatabasePath)
	}

	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		os.Remove(cfg.DatabasePath)
		return fmt.Errorf("running migrations: %w", err)
	}

	password, err := generatePassword(16)
	if err != nil {
		os.Remove(cfg.DatabasePath)
		return fmt.Errorf("generating password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		os.Remove(cfg.DatabasePath)
		return fmt.Errorf("hashing password: %w", err)
	}

	email := cCtx.String("admin-email")
	admin, err := store.CreateUser(context.Background(), database, "Admin", email, string(hash), true)
	if err != nil {
		os.Remove(cfg.DatabasePath)
		return fmt.Errorf("creating admin user: %w", err)
	}

	fmt.Printf("Database created: %s\n", cfg.DatabasePath)
	fmt.Printf("Admin account:\n")
	fmt.Printf("  Email:    %s\n", admin.Email)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println("Save this password — it cannot be recovered.")
	return nil
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
