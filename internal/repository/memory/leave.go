package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
)

// leaveProfileRepositoryImpl keeps profiles in process memory. A single lock
// serializes writers, so Update is atomic for every employee at once.
type leaveProfileRepositoryImpl struct {
	mu       sync.RWMutex
	profiles map[string]leave.LeaveProfile
	order    []string
}

func NewLeaveProfileRepository() leave.ProfileRepository {
	return &leaveProfileRepositoryImpl{
		profiles: make(map[string]leave.LeaveProfile),
	}
}

// Create implements leave.ProfileRepository.
func (r *leaveProfileRepositoryImpl) Create(ctx context.Context, profile leave.LeaveProfile) (leave.LeaveProfile, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.profiles[profile.EmployeeID]; ok {
		return existing.Clone(), false, nil
	}

	profile.Version = 1
	r.profiles[profile.EmployeeID] = profile.Clone()
	r.order = append(r.order, profile.EmployeeID)
	return profile.Clone(), true, nil
}

// GetByEmployeeID implements leave.ProfileRepository.
func (r *leaveProfileRepositoryImpl) GetByEmployeeID(ctx context.Context, employeeID string) (leave.LeaveProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.profiles[employeeID]
	if !ok {
		return leave.LeaveProfile{}, leave.ErrProfileNotFound
	}
	return profile.Clone(), nil
}

// Update implements leave.ProfileRepository.
func (r *leaveProfileRepositoryImpl) Update(ctx context.Context, employeeID string, fn func(profile *leave.LeaveProfile) error) (leave.LeaveProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.profiles[employeeID]
	if !ok {
		return leave.LeaveProfile{}, leave.ErrProfileNotFound
	}

	working := stored.Clone()
	if err := fn(&working); err != nil {
		return leave.LeaveProfile{}, err
	}

	working.Version = stored.Version + 1
	working.UpdatedAt = time.Now()
	r.profiles[employeeID] = working.Clone()
	return working, nil
}

// List implements leave.ProfileRepository. Profiles come back in creation order.
func (r *leaveProfileRepositoryImpl) List(ctx context.Context) ([]leave.LeaveProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profiles := make([]leave.LeaveProfile, 0, len(r.order))
	for _, employeeID := range r.order {
		profiles = append(profiles, r.profiles[employeeID].Clone())
	}
	return profiles, nil
}

type leaveSettingsRepositoryImpl struct {
	mu       sync.Mutex
	settings *leave.LeaveSettings
}

func NewLeaveSettingsRepository() leave.SettingsRepository {
	return &leaveSettingsRepositoryImpl{}
}

// Get implements leave.SettingsRepository.
func (r *leaveSettingsRepositoryImpl) Get(ctx context.Context) (leave.LeaveSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load().Clone(), nil
}

// Update implements leave.SettingsRepository.
func (r *leaveSettingsRepositoryImpl) Update(ctx context.Context, fn func(settings *leave.LeaveSettings) error) (leave.LeaveSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.load()
	working := stored.Clone()
	if err := fn(&working); err != nil {
		return leave.LeaveSettings{}, err
	}

	working.Version = stored.Version + 1
	working.UpdatedAt = time.Now()
	saved := working.Clone()
	r.settings = &saved
	return working, nil
}

// load returns the singleton, creating it on first access. Callers hold mu.
func (r *leaveSettingsRepositoryImpl) load() leave.LeaveSettings {
	if r.settings == nil {
		now := time.Now()
		r.settings = &leave.LeaveSettings{
			LeavePolicy: []leave.LeavePolicy{},
			Holidays:    []leave.Holiday{},
			Version:     1,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}
	return *r.settings
}
