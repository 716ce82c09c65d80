package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// EnsureCredentialSchema creates the platform_credentials table if missing.
// Safe to call at startup.
func EnsureCredentialSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ddl := `CREATE TABLE IF NOT EXISTS platform_credentials (
		id BIGSERIAL PRIMARY KEY,
		user_id TEXT NOT NULL,
		platform TEXT NOT NULL,
		account_id TEXT NOT NULL,
		access_token TEXT NOT NULL,
		refresh_token TEXT NOT NULL DEFAULT '',
		expires_at TIMESTAMPTZ NULL,
		scopes TEXT NOT NULL DEFAULT '',
		page_id TEXT NULL,
		page_name TEXT NULL,
		token_type TEXT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		UNIQUE (user_id, platform, account_id)
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create platform_credentials: %w", err)
	}
	return nil
}

// EnsurePublishSchema creates the publish_records table if missing.
func EnsurePublishSchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ddl := `CREATE TABLE IF NOT EXISTS publish_records (
		id BIGSERIAL PRIMARY KEY,
		request_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		platform TEXT NOT NULL,
		status TEXT NOT NULL,
		post_id TEXT NULL,
		error_code TEXT NULL,
		error_message TEXT NULL,
		page_name TEXT NULL,
		attempt_count INT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		UNIQUE (user_id, platform)
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create publish_records: %w", err)
	}
	return nil
}
