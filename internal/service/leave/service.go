package leave

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/cmlabs-hris/leave-engine/internal/domain/user"
)

// defaultEmployeeName labels profiles created implicitly on first read.
const defaultEmployeeName = "Employee"

type LeaveServiceImpl struct {
	leave.ProfileRepository
	leave.SettingsRepository
	requestService *RequestService
	reportService  *ReportService
	now            func() time.Time
}

func NewLeaveService(
	profileRepo leave.ProfileRepository,
	settingsRepo leave.SettingsRepository,
	requestService *RequestService,
	reportService *ReportService,
) leave.LeaveService {
	return &LeaveServiceImpl{
		ProfileRepository:  profileRepo,
		SettingsRepository: settingsRepo,
		requestService:     requestService,
		reportService:      reportService,
		now:                time.Now,
	}
}

// CreateProfile implements leave.LeaveService.
func (l *LeaveServiceImpl) CreateProfile(ctx context.Context, principal user.Principal, req leave.CreateProfileRequest) (leave.CreateProfileResponse, error) {
	if err := authorize(principal, user.PermissionProfileManage); err != nil {
		return leave.CreateProfileResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.CreateProfileResponse{}, err
	}

	profile, err := l.newProfile(req.EmployeeID, req.EmployeeName, req.DepartmentID, principal.ID)
	if err != nil {
		return leave.CreateProfileResponse{}, err
	}

	stored, created, err := l.ProfileRepository.Create(ctx, profile)
	if err != nil {
		return leave.CreateProfileResponse{}, fmt.Errorf("failed to create leave profile: %w", err)
	}

	return leave.CreateProfileResponse{Profile: stored, Created: created}, nil
}

// SetProfileActive implements leave.LeaveService.
func (l *LeaveServiceImpl) SetProfileActive(ctx context.Context, principal user.Principal, req leave.SetProfileActiveRequest) (leave.LeaveProfile, error) {
	if err := authorize(principal, user.PermissionProfileManage); err != nil {
		return leave.LeaveProfile{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveProfile{}, err
	}

	return l.ProfileRepository.Update(ctx, req.EmployeeID, func(profile *leave.LeaveProfile) error {
		profile.IsActive = *req.IsActive
		profile.UpdatedBy = &principal.ID

		action := "Profile Deactivated"
		if profile.IsActive {
			action = "Profile Activated"
		}
		profile.Audit(action, principal.ID, l.now())
		return nil
	})
}

// GetEmployeeLeaves implements leave.LeaveService.
func (l *LeaveServiceImpl) GetEmployeeLeaves(ctx context.Context, principal user.Principal, employeeID string) (leave.EmployeeLeavesResponse, error) {
	if err := authorizeOwner(principal, user.PermissionLeaveViewOwn, employeeID); err != nil {
		return leave.EmployeeLeavesResponse{}, err
	}

	profile, err := l.getOrCreateProfile(ctx, employeeID, principal.ID)
	if err != nil {
		return leave.EmployeeLeavesResponse{}, err
	}

	settings, err := l.SettingsRepository.Get(ctx)
	if err != nil {
		return leave.EmployeeLeavesResponse{}, fmt.Errorf("failed to get leave settings: %w", err)
	}

	return leave.EmployeeLeavesResponse{
		Leaves:   profile.LeaveRequests,
		Balance:  profile.LeaveBalance,
		Holidays: settings.Holidays,
	}, nil
}

// ApplyLeave implements leave.LeaveService.
func (l *LeaveServiceImpl) ApplyLeave(ctx context.Context, principal user.Principal, req leave.ApplyLeaveRequest) (leave.ApplyLeaveResponse, error) {
	if err := authorizeOwner(principal, user.PermissionLeaveCreate, req.EmployeeID); err != nil {
		return leave.ApplyLeaveResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.ApplyLeaveResponse{}, err
	}

	return l.requestService.Apply(ctx, req)
}

// UpdateLeaveStatus implements leave.LeaveService.
func (l *LeaveServiceImpl) UpdateLeaveStatus(ctx context.Context, principal user.Principal, req leave.UpdateStatusRequest) (leave.UpdateStatusResponse, error) {
	if err := authorize(principal, user.PermissionLeaveApprove); err != nil {
		return leave.UpdateStatusResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.UpdateStatusResponse{}, err
	}

	return l.requestService.UpdateStatus(ctx, principal.ID, req)
}

// AddHoliday implements leave.LeaveService.
func (l *LeaveServiceImpl) AddHoliday(ctx context.Context, principal user.Principal, req leave.AddHolidayRequest) (leave.Holiday, error) {
	if err := authorize(principal, user.PermissionSettingsManage); err != nil {
		return leave.Holiday{}, err
	}
	if err := req.Validate(); err != nil {
		return leave.Holiday{}, err
	}

	holidayID, err := newID()
	if err != nil {
		return leave.Holiday{}, err
	}
	holidayDate, _ := time.Parse("2006-01-02", req.HolidayDate)
	holiday := leave.Holiday{
		HolidayID:   holidayID,
		HolidayName: req.HolidayName,
		HolidayDate: holidayDate,
		HolidayType: leave.HolidayType(req.HolidayType),
		IsOptional:  req.IsOptional,
	}

	_, err = l.SettingsRepository.Update(ctx, func(settings *leave.LeaveSettings) error {
		settings.Holidays = append(settings.Holidays, holiday)
		return nil
	})
	if err != nil {
		return leave.Holiday{}, fmt.Errorf("failed to add holiday: %w", err)
	}

	return holiday, nil
}

// ReplacePolicy implements leave.LeaveService.
func (l *LeaveServiceImpl) ReplacePolicy(ctx context.Context, principal user.Principal, req leave.ReplacePolicyRequest) (leave.LeaveSettings, error) {
	if err := authorize(principal, user.PermissionSettingsManage); err != nil {
		return leave.LeaveSettings{}, err
	}

	policies := req.Policies
	if policies == nil {
		policies = []leave.LeavePolicy{}
	}

	settings, err := l.SettingsRepository.Update(ctx, func(settings *leave.LeaveSettings) error {
		settings.LeavePolicy = policies
		return nil
	})
	if err != nil {
		return leave.LeaveSettings{}, fmt.Errorf("failed to replace leave policy: %w", err)
	}

	return settings, nil
}

// GetSettings implements leave.LeaveService.
func (l *LeaveServiceImpl) GetSettings(ctx context.Context, principal user.Principal) (leave.LeaveSettings, error) {
	if err := authorize(principal, user.PermissionSettingsManage); err != nil {
		return leave.LeaveSettings{}, err
	}

	settings, err := l.SettingsRepository.Get(ctx)
	if err != nil {
		return leave.LeaveSettings{}, fmt.Errorf("failed to get leave settings: %w", err)
	}
	return settings, nil
}

// CalendarView implements leave.LeaveService.
func (l *LeaveServiceImpl) CalendarView(ctx context.Context, principal user.Principal) ([]leave.CalendarEvent, error) {
	if err := authorize(principal, user.PermissionCalendarView); err != nil {
		return nil, err
	}
	return l.reportService.CalendarView(ctx)
}

// LeaveStats implements leave.LeaveService.
func (l *LeaveServiceImpl) LeaveStats(ctx context.Context, principal user.Principal, now time.Time) (leave.LeaveStatsResponse, error) {
	if err := authorize(principal, user.PermissionReportsView); err != nil {
		return leave.LeaveStatsResponse{}, err
	}
	return l.reportService.Stats(ctx, now)
}

// AllLeaveRequests implements leave.LeaveService.
func (l *LeaveServiceImpl) AllLeaveRequests(ctx context.Context, principal user.Principal) ([]leave.LeaveRequestView, error) {
	if err := authorize(principal, user.PermissionLeaveViewAll); err != nil {
		return nil, err
	}
	return l.reportService.AllRequests(ctx)
}

// ExportLeaveRequests implements leave.LeaveService.
func (l *LeaveServiceImpl) ExportLeaveRequests(ctx context.Context, principal user.Principal, w io.Writer) error {
	if err := authorize(principal, user.PermissionReportsExport); err != nil {
		return err
	}
	return l.reportService.Export(ctx, w)
}

func (l *LeaveServiceImpl) getOrCreateProfile(ctx context.Context, employeeID, createdBy string) (leave.LeaveProfile, error) {
	profile, err := l.ProfileRepository.GetByEmployeeID(ctx, employeeID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, leave.ErrProfileNotFound) {
		return leave.LeaveProfile{}, fmt.Errorf("failed to get leave profile: %w", err)
	}

	profile, err = l.newProfile(employeeID, defaultEmployeeName, nil, createdBy)
	if err != nil {
		return leave.LeaveProfile{}, err
	}
	stored, _, err := l.ProfileRepository.Create(ctx, profile)
	if err != nil {
		return leave.LeaveProfile{}, fmt.Errorf("failed to create leave profile: %w", err)
	}
	return stored, nil
}

func (l *LeaveServiceImpl) newProfile(employeeID, employeeName string, departmentID *string, createdBy string) (leave.LeaveProfile, error) {
	id, err := newID()
	if err != nil {
		return leave.LeaveProfile{}, err
	}
	now := l.now()
	return leave.LeaveProfile{
		ID:            id,
		EmployeeID:    employeeID,
		EmployeeName:  employeeName,
		DepartmentID:  departmentID,
		LeaveRequests: []leave.LeaveRequest{},
		LeaveBalance:  leave.DefaultLeaveBalance(),
		AuditLog:      []leave.AuditEntry{},
		IsActive:      true,
		CreatedBy:     &createdBy,
		UpdatedBy:     &createdBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func authorize(principal user.Principal, permission user.Permission) error {
	if !principal.Can(permission) {
		return fmt.Errorf("%w: required '%s', but role is '%s'", user.ErrInsufficientPermissions, permission, principal.Role)
	}
	return nil
}

// authorizeOwner additionally restricts non-admins to their own employee id.
func authorizeOwner(principal user.Principal, permission user.Permission, employeeID string) error {
	if err := authorize(principal, permission); err != nil {
		return err
	}
	if !principal.CanActFor(employeeID) {
		return user.ErrNotResourceOwner
	}
	return nil
}
