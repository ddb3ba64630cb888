package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/founditapp/foundit/internal/model"
)

// CreateItem creates a new lost/found report. The caller fills the
// descriptive fields and reporter identity; status starts pending.
func CreateItem(ctx context.Context, db *sql.DB, item *model.Item) (*model.Item, error) {
	id := newID()
	_, err := db.ExecContext(ctx,
		`INSERT INTO items (id, title, description, category, location, date, contact, image_url,
		                    type, status, reporter_id, reporter_name, reporter_email)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 'pending', ?, ?, ?)`,
		id, item.Title, item.Description, item.Category, item.Location, item.Date,
		item.Contact, item.ImageURL, item.Type, item.ReporterID, item.ReporterName, item.ReporterEmail,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	return GetItem(ctx, db, id)
}

func scanItem(row interface{ Scan(...any) error }) (*model.Item, error) {
	item := &model.Item{}
	var description, category, location, date, contact, imageURL, imageMime sql.NullString
	err := row.Scan(&item.ID, &item.Title, &description, &category, &location, &date,
		&contact, &imageURL, &imageMime, &item.Type, &item.Status,
		&item.ReporterID, &item.ReporterName, &item.ReporterEmail,
		&item.CreatedAt, &item.UpdatedAt, &item.DeletedAt)
	if err != nil {
		return nil, err
	}
	item.Description = description.String
	item.Category = category.String
	item.Location = location.String
	item.Date = date.String
	item.Contact = contact.String
	item.ImageURL = imageURL.String
	item.ImageMime = imageMime.String
	return item, nil
}

const itemColumns = `id, title, description, category, location, date, contact, image_url,
	image_mime, type, status, reporter_id, reporter_name, reporter_email,
	created_at, updated_at, deleted_at`

// GetItem returns an item by ID, including soft-deleted ones.
func GetItem(ctx context.Context, db *sql.DB, id string) (*model.Item, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns non-deleted items newest first, optionally filtered by
// type, status, and a case-insensitive search over title and location.
func ListItems(ctx context.Context, db *sql.DB, itemType, status, search string) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE deleted_at IS NULL`
	var args []any

	if itemType != "" {
		query += ` AND type = ?`
		args = append(args, itemType)
	}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	if search != "" {
		query += ` AND (title LIKE ? COLLATE NOCASE OR location LIKE ? COLLATE NOCASE)`
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// DeleteItem soft-deletes an item.
func DeleteItem(ctx context.Context, db *sql.DB, id string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// SetItemImage stores an item's photo.
func SetItemImage(ctx context.Context, db *sql.DB, id string, image []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	return nil
}

// GetItemImage returns an item's photo and MIME type.
func GetItemImage(ctx context.Context, db *sql.DB, id string) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM items WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}
