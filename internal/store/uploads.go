package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// SaveUpload stores a processed image blob and returns its key.
func SaveUpload(ctx context.Context, db *sql.DB, data []byte, mime string) (string, error) {
	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO uploads (id, data, mime) VALUES (?, ?, ?)`,
		id, data, mime,
	)
	if err != nil {
		return "", fmt.Errorf("saving upload: %w", err)
	}
	return id, nil
}

// GetUpload returns an uploaded image blob and its MIME type.
func GetUpload(ctx context.Context, db *sql.DB, id string) ([]byte, string, error) {
	var data []byte
	var mime string
	err := db.QueryRowContext(ctx,
		`SELECT data, mime FROM uploads WHERE id = ?`, id,
	).Scan(&data, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting upload: %w", err)
	}
	return data, mime, nil
}
