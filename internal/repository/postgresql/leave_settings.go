package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/leave-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// settingsRowID is the primary key of the only leave_settings row.
const settingsRowID = 1

type leaveSettingsRepositoryImpl struct {
	db *database.DB
}

func NewLeaveSettingsRepository(db *database.DB) leave.SettingsRepository {
	return &leaveSettingsRepositoryImpl{db: db}
}

// Get implements leave.SettingsRepository.
func (r *leaveSettingsRepositoryImpl) Get(ctx context.Context) (leave.LeaveSettings, error) {
	if err := r.ensure(ctx); err != nil {
		return leave.LeaveSettings{}, err
	}

	q := GetQuerier(ctx, r.db)
	return scanSettings(q.QueryRow(ctx, `SELECT document, version FROM leave_settings WHERE id = $1`, settingsRowID))
}

// Update implements leave.SettingsRepository.
func (r *leaveSettingsRepositoryImpl) Update(ctx context.Context, fn func(settings *leave.LeaveSettings) error) (leave.LeaveSettings, error) {
	if err := r.ensure(ctx); err != nil {
		return leave.LeaveSettings{}, err
	}

	var updated leave.LeaveSettings
	err := WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		settings, err := scanSettings(tx.QueryRow(ctx,
			`SELECT document, version FROM leave_settings WHERE id = $1 FOR UPDATE`, settingsRowID))
		if err != nil {
			return err
		}

		if err := fn(&settings); err != nil {
			return err
		}

		settings.Version++
		settings.UpdatedAt = time.Now()
		document, err := json.Marshal(settings)
		if err != nil {
			return fmt.Errorf("encode leave settings: %w", err)
		}

		_, err = tx.Exec(ctx,
			`UPDATE leave_settings SET document = $1, version = $2, updated_at = $3 WHERE id = $4`,
			document, settings.Version, settings.UpdatedAt, settingsRowID)
		if err != nil {
			return err
		}

		updated = settings
		return nil
	})
	if err != nil {
		return leave.LeaveSettings{}, err
	}

	return updated, nil
}

// ensure inserts the empty singleton if it is missing.
func (r *leaveSettingsRepositoryImpl) ensure(ctx context.Context) error {
	now := time.Now()
	document, err := json.Marshal(leave.LeaveSettings{
		LeavePolicy: []leave.LeavePolicy{},
		Holidays:    []leave.Holiday{},
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return fmt.Errorf("encode leave settings: %w", err)
	}

	q := GetQuerier(ctx, r.db)
	_, err = q.Exec(ctx, `
		INSERT INTO leave_settings (id, document, version, created_at, updated_at)
		VALUES ($1, $2, 1, $3, $3)
		ON CONFLICT (id) DO NOTHING
	`, settingsRowID, document, now)
	return err
}

func scanSettings(row pgx.Row) (leave.LeaveSettings, error) {
	var (
		document []byte
		version  int64
	)
	if err := row.Scan(&document, &version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveSettings{}, fmt.Errorf("leave settings row missing: %w", err)
		}
		return leave.LeaveSettings{}, err
	}

	var settings leave.LeaveSettings
	if err := json.Unmarshal(document, &settings); err != nil {
		return leave.LeaveSettings{}, fmt.Errorf("decode leave settings: %w", err)
	}
	settings.Version = version
	if settings.LeavePolicy == nil {
		settings.LeavePolicy = []leave.LeavePolicy{}
	}
	if settings.Holidays == nil {
		settings.Holidays = []leave.Holiday{}
	}
	return settings, nil
}
