package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/leave-engine/internal/pkg/database"
)

// Profiles and settings are stored as JSONB documents. Only the columns used
// for lookup, locking and ordering are broken out.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS leave_profiles (
		id          TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL UNIQUE,
		document    JSONB NOT NULL,
		version     BIGINT NOT NULL DEFAULT 1,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_leave_profiles_created_at ON leave_profiles (created_at)`,
	`CREATE TABLE IF NOT EXISTS leave_settings (
		id         SMALLINT PRIMARY KEY CHECK (id = 1),
		document   JSONB NOT NULL,
		version    BIGINT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates the leave tables when they do not exist yet.
func Migrate(ctx context.Context, db *database.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
