package leave

import (
	"context"
)

// ProfileRepository persists one LeaveProfile document per employee.
type ProfileRepository interface {
	// Create stores a new profile. If one already exists for the employee the
	// stored profile is returned with created == false.
	Create(ctx context.Context, profile LeaveProfile) (stored LeaveProfile, created bool, err error)
	GetByEmployeeID(ctx context.Context, employeeID string) (LeaveProfile, error)
	// Update loads the profile, applies fn and persists the result atomically
	// with respect to other updates of the same employee. Nothing is written
	// when fn returns an error.
	Update(ctx context.Context, employeeID string, fn func(profile *LeaveProfile) error) (LeaveProfile, error)
	List(ctx context.Context) ([]LeaveProfile, error)
}

// SettingsRepository persists the LeaveSettings singleton.
type SettingsRepository interface {
	// Get returns the settings, creating an empty record on first access.
	Get(ctx context.Context) (LeaveSettings, error)
	Update(ctx context.Context, fn func(settings *LeaveSettings) error) (LeaveSettings, error)
}
