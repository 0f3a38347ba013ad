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

type leaveProfileRepositoryImpl struct {
	db *database.DB
}

func NewLeaveProfileRepository(db *database.DB) leave.ProfileRepository {
	return &leaveProfileRepositoryImpl{db: db}
}

// Create implements leave.ProfileRepository.
func (r *leaveProfileRepositoryImpl) Create(ctx context.Context, profile leave.LeaveProfile) (leave.LeaveProfile, bool, error) {
	q := GetQuerier(ctx, r.db)

	profile.Version = 1
	document, err := json.Marshal(profile)
	if err != nil {
		return leave.LeaveProfile{}, false, fmt.Errorf("encode leave profile: %w", err)
	}

	query := `
		INSERT INTO leave_profiles (id, employee_id, document, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (employee_id) DO NOTHING
	`
	tag, err := q.Exec(ctx, query, profile.ID, profile.EmployeeID, document, profile.Version, profile.CreatedAt, profile.UpdatedAt)
	if err != nil {
		return leave.LeaveProfile{}, false, err
	}

	if tag.RowsAffected() == 0 {
		existing, err := r.GetByEmployeeID(ctx, profile.EmployeeID)
		if err != nil {
			return leave.LeaveProfile{}, false, err
		}
		return existing, false, nil
	}

	return profile, true, nil
}

// GetByEmployeeID implements leave.ProfileRepository.
func (r *leaveProfileRepositoryImpl) GetByEmployeeID(ctx context.Context, employeeID string) (leave.LeaveProfile, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT document, version FROM leave_profiles WHERE employee_id = $1`
	return scanProfile(q.QueryRow(ctx, query, employeeID))
}

// Update implements leave.ProfileRepository. The row lock taken by
// SELECT ... FOR UPDATE serializes concurrent writers of the same employee.
func (r *leaveProfileRepositoryImpl) Update(ctx context.Context, employeeID string, fn func(profile *leave.LeaveProfile) error) (leave.LeaveProfile, error) {
	var updated leave.LeaveProfile

	err := WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		query := `SELECT document, version FROM leave_profiles WHERE employee_id = $1 FOR UPDATE`
		profile, err := scanProfile(tx.QueryRow(ctx, query, employeeID))
		if err != nil {
			return err
		}

		if err := fn(&profile); err != nil {
			return err
		}

		profile.Version++
		profile.UpdatedAt = time.Now()
		document, err := json.Marshal(profile)
		if err != nil {
			return fmt.Errorf("encode leave profile: %w", err)
		}

		updateQuery := `
			UPDATE leave_profiles
			SET document = $1, version = $2, updated_at = $3
			WHERE employee_id = $4
		`
		if _, err := tx.Exec(ctx, updateQuery, document, profile.Version, profile.UpdatedAt, employeeID); err != nil {
			return err
		}

		updated = profile
		return nil
	})
	if err != nil {
		return leave.LeaveProfile{}, err
	}

	return updated, nil
}

// List implements leave.ProfileRepository.
func (r *leaveProfileRepositoryImpl) List(ctx context.Context) ([]leave.LeaveProfile, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT document, version FROM leave_profiles ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []leave.LeaveProfile{}
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return profiles, nil
}

func scanProfile(row pgx.Row) (leave.LeaveProfile, error) {
	var (
		document []byte
		version  int64
	)
	if err := row.Scan(&document, &version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveProfile{}, leave.ErrProfileNotFound
		}
		return leave.LeaveProfile{}, err
	}

	var profile leave.LeaveProfile
	if err := json.Unmarshal(document, &profile); err != nil {
		return leave.LeaveProfile{}, fmt.Errorf("decode leave profile: %w", err)
	}
	profile.Version = version
	if profile.LeaveRequests == nil {
		profile.LeaveRequests = []leave.LeaveRequest{}
	}
	if profile.AuditLog == nil {
		profile.AuditLog = []leave.AuditEntry{}
	}
	return profile, nil
}
