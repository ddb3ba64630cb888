// Package seed fills a fresh database with the demo catalog used in
// development: a handful of users and the usual lost-and-found suspects.
package seed

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/founditapp/foundit/internal/model"
	"github.com/founditapp/foundit/internal/store"
)

// DemoPassword is the password every seeded account gets.
const DemoPassword = "password123"

type userSeed struct {
	Name  string
	Email string
}

var demoUsers = []userSeed{
	{Name: "Alex Rivera", Email: "alex.rivera+seed@example.com"},
	{Name: "John Doe", Email: "john.doe+seed@example.com"},
	{Name: "Jane Smith", Email: "jane.smith+seed@example.com"},
	{Name: "Mike Johnson", Email: "mike.johnson+seed@example.com"},
	{Name: "Sarah Wilson", Email: "sarah.wilson+seed@example.com"},
}

type itemSeed struct {
	Title       string
	Description string
	Category    string
	Location    string
	Date        string
	Type        string
	Reporter    string
}

var demoItems = []itemSeed{
	{
		Title:       "Black Leather Wallet",
		Description: "Contains ID cards and some cash. Lost near Central Park.",
		Category:    "Wallet",
		Location:    "Central Park, NYC",
		Date:        "2024-01-15",
		Type:        model.ItemTypeLost,
		Reporter:    "john.doe+seed@example.com",
	},
	{
		Title:       "iPhone 15 Pro",
		Description: "Space black, has a clear case. Found on subway.",
		Category:    "Electronics",
		Location:    "Subway Station B",
		Date:        "2024-01-14",
		Type:        model.ItemTypeFound,
		Reporter:    "jane.smith+seed@example.com",
	},
	{
		Title:       "Car Keys - Toyota",
		Description: "Toyota key fob with house keys attached.",
		Category:    "Keys",
		Location:    "Coffee Shop on 5th Ave",
		Date:        "2024-01-13",
		Type:        model.ItemTypeLost,
		Reporter:    "mike.johnson+seed@example.com",
	},
	{
		Title:       "Blue Backpack",
		Description: "North Face backpack with laptop inside.",
		Category:    "Bags",
		Location:    "Library Main Hall",
		Date:        "2024-01-12",
		Type:        model.ItemTypeFound,
		Reporter:    "sarah.wilson+seed@example.com",
	},
}

// Run upserts the demo users and inserts their items. Existing users are
// left alone, so seeding twice only duplicates the catalog items.
func Run(ctx context.Context, db *sql.DB) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing demo password: %w", err)
	}

	users := make(map[string]*model.User, len(demoUsers))
	for _, u := range demoUsers {
		existing, err := store.GetUserByEmail(ctx, db, u.Email)
		if err != nil {
			return fmt.Errorf("looking up demo user %s: %w", u.Email, err)
		}
		if existing != nil {
			users[u.Email] = existing
			continue
		}

		created, err := store.CreateUser(ctx, db, u.Name, u.Email, string(hash), false)
		if err != nil {
			return fmt.Errorf("creating demo user %s: %w", u.Email, err)
		}
		users[u.Email] = created
	}

	for _, it := range demoItems {
		reporter := users[it.Reporter]
		if reporter == nil {
			return fmt.Errorf("demo item %q references unknown user %s", it.Title, it.Reporter)
		}

		if _, err := store.CreateItem(ctx, db, &model.Item{
			Title:         it.Title,
			Description:   it.Description,
			Category:      it.Category,
			Location:      it.Location,
			Date:          it.Date,
			Contact:       reporter.Email,
			Type:          it.Type,
			Status:        model.ItemStatusPending,
			ReporterID:    reporter.ID,
			ReporterName:  reporter.Name,
			ReporterEmail: reporter.Email,
		}); err != nil {
			return fmt.Errorf("creating demo item %q: %w", it.Title, err)
		}
	}

	return nil
}
