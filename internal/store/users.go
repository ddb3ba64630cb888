package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/founditapp/foundit/internal/model"
)

// CreateUser creates a new account.
func CreateUser(ctx context.Context, db *sql.DB, name, email, passwordHash string, isAdmin bool) (*model.User, error) {
	id := newID()
	_, err := db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, is_admin) VALUES (?, ?, ?, ?, ?)`,
		id, name, email, passwordHash, isAdmin,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, db *sql.DB, id string) (*model.User, error) {
	u := &model.User{}
	var avatar sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, avatar, is_admin, is_blocked, created_at, deleted_at
		 FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &avatar, &u.IsAdmin, &u.IsBlocked, &u.CreatedAt, &u.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	u.Avatar = avatar.String
	return u, nil
}

// GetUserByEmail returns the active user for an email address.
func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*model.User, error) {
	u := &model.User{}
	var avatar sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, avatar, is_admin, is_blocked, created_at, deleted_at
		 FROM users WHERE email = ? AND deleted_at IS NULL`, email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &avatar, &u.IsAdmin, &u.IsBlocked, &u.CreatedAt, &u.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	u.Avatar = avatar.String
	return u, nil
}

// ListUsers returns all non-deleted users.
func ListUsers(ctx context.Context, db *sql.DB) ([]model.User, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, email, password_hash, avatar, is_admin, is_blocked, created_at, deleted_at
		 FROM users WHERE deleted_at IS NULL ORDER BY created_at, rowid`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		var avatar sql.NullString
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &avatar, &u.IsAdmin, &u.IsBlocked, &u.CreatedAt, &u.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		u.Avatar = avatar.String
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUserProfile updates a user's display name and avatar.
func UpdateUserProfile(ctx context.Context, db *sql.DB, id, name, avatar string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET name = ?, avatar = ? WHERE id = ? AND deleted_at IS NULL`,
		name, avatar, id,
	)
	if err != nil {
		return fmt.Errorf("updating user profile: %w", err)
	}
	return nil
}

// SetUserBlocked blocks or unblocks a user. Blocking is idempotent.
func SetUserBlocked(ctx context.Context, db *sql.DB, id string, blocked bool) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET is_blocked = ? WHERE id = ? AND deleted_at IS NULL`,
		blocked, id,
	)
	if err != nil {
		return fmt.Errorf("setting user blocked: %w", err)
	}
	return nil
}

// DeleteUser soft-deletes a user.
func DeleteUser(ctx context.Context, db *sql.DB, id string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}

// GetUserStats returns report counters for one user's profile page.
func GetUserStats(ctx context.Context, db *sql.DB, email string) (*model.UserStats, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT type, status, COUNT(*) FROM items
		 WHERE reporter_email = ? AND deleted_at IS NULL
		 GROUP BY type, status`, email,
	)
	if err != nil {
		return nil, fmt.Errorf("getting user stats: %w", err)
	}
	defer rows.Close()

	stats := &model.UserStats{}
	for rows.Next() {
		var itemType, status string
		var count int
		if err := rows.Scan(&itemType, &status, &count); err != nil {
			return nil, fmt.Errorf("scanning user stats: %w", err)
		}

		bucket := &stats.ItemsReported
		if itemType == model.ItemTypeFound {
			bucket = &stats.ItemsFound
		}
		if status == model.ItemStatusCompleted {
			bucket.Completed += count
		} else {
			bucket.InProcess += count
		}
	}
	return stats, rows.Err()
}

// GetGlobalStats returns the public landing-page counters.
func GetGlobalStats(ctx context.Context, db *sql.DB) (*model.GlobalStats, error) {
	stats := &model.GlobalStats{}
	err := db.QueryRowContext(ctx,
		`SELECT
		    (SELECT COUNT(*) FROM items WHERE deleted_at IS NULL),
		    (SELECT COUNT(*) FROM items WHERE deleted_at IS NULL AND status = 'completed'),
		    (SELECT COUNT(*) FROM users WHERE deleted_at IS NULL)`,
	).Scan(&stats.ItemsReported, &stats.ItemsReturned, &stats.ActiveUsers)
	if err != nil {
		return nil, fmt.Errorf("getting global stats: %w", err)
	}
	return stats, nil
}
