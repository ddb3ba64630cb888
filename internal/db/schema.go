package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema. Entity IDs are client-opaque strings
// (nanoids), upload keys are UUIDs.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    avatar        TEXT,
    is_admin      INTEGER NOT NULL DEFAULT 0,
    is_blocked    INTEGER NOT NULL DEFAULT 0,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_active
    ON users(email) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS items (
    id             TEXT PRIMARY KEY,
    title          TEXT NOT NULL,
    description    TEXT,
    category       TEXT,
    location       TEXT,
    date           TEXT,
    contact        TEXT,
    image_url      TEXT,
    image          BLOB,
    image_mime     TEXT,
    type           TEXT NOT NULL CHECK (type IN ('lost', 'found')),
    status         TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'accepted', 'completed')),
    reporter_id    TEXT NOT NULL REFERENCES users(id),
    reporter_name  TEXT NOT NULL,
    reporter_email TEXT NOT NULL,
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at     DATETIME
);

CREATE INDEX IF NOT EXISTS idx_items_type ON items(type) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS claims (
    id              TEXT PRIMARY KEY,
    item_id         TEXT NOT NULL REFERENCES items(id),
    item_title      TEXT NOT NULL,
    claimer_id      TEXT NOT NULL REFERENCES users(id),
    claimer_name    TEXT NOT NULL,
    claimer_email   TEXT NOT NULL,
    claimer_phone   TEXT,
    proof_image_url TEXT,
    description     TEXT,
    status          TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'accepted', 'rejected', 'done')),
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_claims_item ON claims(item_id);
CREATE INDEX IF NOT EXISTS idx_claims_claimer ON claims(claimer_email);

CREATE TABLE IF NOT EXISTS notifications (
    id           TEXT PRIMARY KEY,
    user_id      TEXT NOT NULL REFERENCES users(id),
    type         TEXT NOT NULL,
    claim_id     TEXT,
    item_id      TEXT,
    item_title   TEXT,
    sender_name  TEXT,
    sender_email TEXT,
    message      TEXT NOT NULL,
    read         INTEGER NOT NULL DEFAULT 0,
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, read);

CREATE TABLE IF NOT EXISTS messages (
    id             TEXT PRIMARY KEY,
    claim_id       TEXT NOT NULL REFERENCES claims(id),
    sender_email   TEXT NOT NULL,
    receiver_email TEXT NOT NULL,
    content        TEXT NOT NULL,
    read           INTEGER NOT NULL DEFAULT 0,
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_messages_claim ON messages(claim_id);

CREATE TABLE IF NOT EXISTS reports (
    id             TEXT PRIMARY KEY,
    item_id        TEXT NOT NULL REFERENCES items(id),
    item_title     TEXT NOT NULL,
    reporter_name  TEXT NOT NULL,
    reporter_email TEXT NOT NULL,
    reason         TEXT,
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS uploads (
    id         TEXT PRIMARY KEY,
    data       BLOB NOT NULL,
    mime       TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
